package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"sshreg/internal/color"
	"sshreg/internal/registry"
)

var removeCmd = &cobra.Command{
	Use:   "remove <server-name>",
	Short: "Remove a server record",
	Long: `Remove a server record with optional confirmation prompt.

This command will:
  • Display the record to be removed
  • Ask for confirmation before deletion (unless --yes is used)
  • Strip the record's comment line and every one of its key-value lines
  • Copy the registry file to its .bak sibling before rewriting

Examples:
  sshreg remove production-api      # Interactive confirmation
  sshreg remove old-server --yes    # Non-interactive deletion
  sshreg remove test-server -y      # Short flag version`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRemoveCommand(cmd, args, cmd.OutOrStdout())
	},
}

func runRemoveCommand(cmd *cobra.Command, args []string, output io.Writer) error {
	serverName := args[0]

	store, _, err := openStore()
	if err != nil {
		return err
	}

	record, err := store.Get(serverName)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return fmt.Errorf("❌ Server '%s' not found. Use 'sshreg list' to see available servers", serverName)
		}
		return fmt.Errorf("❌ Failed to load server: %w", err)
	}

	skipConfirmation, _ := cmd.Flags().GetBool("yes")

	if !skipConfirmation {
		fmt.Fprintf(output, "%s\n", color.InfoMessage("Server to remove:"))
		fmt.Fprintf(output, "   Name: %s\n", record.Name)
		fmt.Fprintf(output, "   Host: %s:%d\n", record.Host, record.Port)
		fmt.Fprintf(output, "   User: %s\n", record.User)
		fmt.Fprintf(output, "   Auth: %s\n", record.Auth)
		if record.KeyPath != "" {
			fmt.Fprintf(output, "   Key Path: %s\n", record.KeyPath)
		}
		fmt.Fprintf(output, "\n")

		fmt.Fprint(output, "Are you sure you want to remove this server? (y/n): ")

		scanner := bufio.NewScanner(os.Stdin)
		if !scanner.Scan() {
			return fmt.Errorf("failed to read confirmation")
		}

		confirmation := strings.TrimSpace(strings.ToLower(scanner.Text()))
		if confirmation != "y" && confirmation != "yes" {
			fmt.Fprintf(output, "%s\n", color.InfoMessage("Removal cancelled."))
			return nil
		}
	}

	if err := store.Remove(serverName); err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return fmt.Errorf("❌ Server '%s' not found", serverName)
		}
		return fmt.Errorf("❌ Failed to remove server: %w", err)
	}

	fmt.Fprintf(output, "%s\n", color.SuccessMessage("Server '%s' removed successfully!", serverName))
	return nil
}

func init() {
	removeCmd.Flags().BoolP("yes", "y", false, "Skip confirmation prompt and remove the server")

	setColorHelp(removeCmd)
}
