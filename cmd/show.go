package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"sshreg/internal/color"
	"sshreg/internal/registry"
)

var showCmd = &cobra.Command{
	Use:   "show <server-name>",
	Short: "Show one resolved server record",
	Long: `Show the fully resolved record for one server.

The port defaults to 22 when the stored value is absent or unparsable.
Passwords are masked; use the registry file directly if you need the raw
value.

Examples:
  sshreg show production-api
  sshreg show web-server`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runShowCommand(args, cmd.OutOrStdout())
	},
}

func runShowCommand(args []string, output io.Writer) error {
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

	fmt.Fprintf(output, "%s\n", color.InfoMessage("Server '%s'", record.Name))
	fmt.Fprintf(output, "   Host: %s:%d\n", record.Host, record.Port)
	fmt.Fprintf(output, "   User: %s\n", record.User)
	switch record.Auth {
	case registry.AuthKey:
		fmt.Fprintf(output, "   Auth: key (%s)\n", record.KeyPath)
	case registry.AuthPassword:
		fmt.Fprintf(output, "   Auth: password (%s)\n", maskSecret(record.Password))
	default:
		fmt.Fprintf(output, "   Auth: none stored\n")
	}
	if record.Description != "" {
		fmt.Fprintf(output, "   Description: %s\n", record.Description)
	}
	if record.DefaultDir != "" {
		fmt.Fprintf(output, "   Default Dir: %s\n", record.DefaultDir)
	}
	if !record.Complete() {
		fmt.Fprintf(output, "%s\n", color.WarningMessage("Record is incomplete (host and user are both required); it cannot be probed"))
	}
	return nil
}

func init() {
	setColorHelp(showCmd)
}
