package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sshreg/internal/color"
)

var rootCmd = &cobra.Command{
	Use:   "sshreg",
	Short: "Flat-file SSH server registry with connection probing",
	Long: `SSHREG maintains a registry of SSH server connection profiles in a
single human-editable key-value file and can verify that a stored
profile still connects and authenticates.

Records live in ~/.sshreg/servers.env as plain SSH_SERVER_<NAME>_<FIELD>
lines, safe to inspect and edit by hand. Every mutation first copies the
file to servers.env.bak.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(connectCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(editCmd)
}

// setColorHelp installs the colored help renderer on a command.
func setColorHelp(cmd *cobra.Command) {
	cmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		helpText := ""
		if len(cmd.Long) > 0 {
			helpText += cmd.Long + "\n\n"
		}
		helpText += cmd.UsageString()
		fmt.Fprint(cmd.OutOrStdout(), color.FormatHelp(helpText))
	})
}
