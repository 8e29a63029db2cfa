package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"sshreg/internal/color"
	"sshreg/internal/registry"
)

var updateCmd = &cobra.Command{
	Use:   "update <server-name>",
	Short: "Replace an existing server record",
	Long: `Replace an existing server record with new values.

An update is a full replacement, not a merge: every line of the old record
is removed and a fresh block is written with exactly the values supplied
here. Omitted optional fields (description, default directory) are dropped
from the record even if the old record had them.

The registry file is copied to its .bak sibling before the rewrite.

Examples:
  sshreg update web-server --host web2.example.com --user webuser --auth-type key --key-path ~/.ssh/web_key
  sshreg update db-server --host db.example.com --user dbuser --auth-type password --port 2222 --default-dir /var/lib/db`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runUpdateCommand(cmd, args, cmd.OutOrStdout())
	},
}

func runUpdateCommand(cmd *cobra.Command, args []string, output io.Writer) error {
	serverName := args[0]
	if err := registry.ValidateName(serverName); err != nil {
		return fmt.Errorf("❌ %w", err)
	}

	store, _, err := openStore()
	if err != nil {
		return err
	}

	for _, required := range []string{"host", "user", "auth-type"} {
		if !cmd.Flags().Changed(required) {
			return fmt.Errorf("❌ --%s is required", required)
		}
	}

	host, _ := cmd.Flags().GetString("host")
	user, _ := cmd.Flags().GetString("user")
	authType, _ := cmd.Flags().GetString("auth-type")
	port, _ := cmd.Flags().GetInt("port")
	keyPath, _ := cmd.Flags().GetString("key-path")
	description, _ := cmd.Flags().GetString("description")
	defaultDir, _ := cmd.Flags().GetString("default-dir")

	if host == "" {
		return fmt.Errorf("❌ Host cannot be empty")
	}
	if user == "" {
		return fmt.Errorf("❌ User cannot be empty")
	}
	if authType != "key" && authType != "password" {
		return fmt.Errorf("❌ Authentication type must be 'key' or 'password', got: %s", authType)
	}
	if authType == "key" && keyPath == "" {
		return fmt.Errorf("❌ --key-path is required when auth-type is 'key'")
	}
	if port <= 0 || port > 65535 {
		return fmt.Errorf("❌ Invalid port: %d. Port must be between 1 and 65535", port)
	}

	authValue := keyPath
	if authType == "password" {
		fmt.Fprintf(output, "Enter password for %s@%s: ", user, host)
		passwordBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(output)
		if err != nil {
			return fmt.Errorf("❌ Failed to read password: %w", err)
		}
		if len(passwordBytes) == 0 {
			return fmt.Errorf("❌ Password cannot be empty for password authentication")
		}
		authValue = string(passwordBytes)
	}

	err = store.Update(serverName, host, user, registry.AuthMethod(authType), authValue, port, description, defaultDir)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return fmt.Errorf("❌ Server '%s' not found. Use 'sshreg add %s' to create it", serverName, serverName)
		}
		return fmt.Errorf("❌ Failed to update server: %w", err)
	}

	fmt.Fprintf(output, "%s\n", color.SuccessMessage("Server '%s' updated successfully!", serverName))
	return nil
}

func init() {
	updateCmd.Flags().StringP("host", "H", "", "Hostname/IP address of the server (required)")
	updateCmd.Flags().IntP("port", "p", 22, "SSH port")
	updateCmd.Flags().StringP("user", "u", "", "Username for authentication (required)")
	updateCmd.Flags().StringP("auth-type", "a", "", "Authentication method - 'key' or 'password' (required)")
	updateCmd.Flags().StringP("key-path", "k", "", "Path to SSH key file (required if auth-type is 'key')")
	updateCmd.Flags().StringP("description", "d", "", "Free-text description of the server")
	updateCmd.Flags().StringP("default-dir", "D", "", "Remote working directory for subsequent commands")

	setColorHelp(updateCmd)
}
