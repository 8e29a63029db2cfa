package cmd

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"

	"sshreg/internal/color"
)

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the registry file in your editor",
	Long: `Open the backing registry file in the configured editor.

The registry is a plain key-value file and hand edits are a supported
workflow: unrecognized lines are preserved by every mutation and skipped
by every scanner. Note that manual edits bypass the automatic .bak copy.

The editor comes from the tool settings, which default to $EDITOR.

Examples:
  sshreg edit             # Open the registry file
  sshreg edit --path      # Just print the file path`,
	RunE: func(cmd *cobra.Command, args []string) error {
		pathOnly, _ := cmd.Flags().GetBool("path")
		return runEditCommand(cmd.OutOrStdout(), pathOnly)
	},
}

func runEditCommand(output io.Writer, pathOnly bool) error {
	store, settings, err := openStore()
	if err != nil {
		return err
	}

	if pathOnly {
		fmt.Fprintln(output, store.Path())
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(store.Path()), 0700); err != nil {
		return fmt.Errorf("❌ Failed to create registry directory: %w", err)
	}

	fmt.Fprintf(output, "%s\n", color.InfoMessage("Opening %s with %s (manual edits skip the .bak copy)", store.Path(), settings.Editor))

	editor := exec.Command(settings.Editor, store.Path())
	editor.Stdin = os.Stdin
	editor.Stdout = os.Stdout
	editor.Stderr = os.Stderr
	if err := editor.Run(); err != nil {
		return fmt.Errorf("❌ Editor exited with error: %w", err)
	}
	return nil
}

func init() {
	editCmd.Flags().Bool("path", false, "Print the registry file path instead of opening it")

	setColorHelp(editCmd)
}
