package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"sshreg/internal/color"
	"sshreg/internal/registry"
)

var addCmd = &cobra.Command{
	Use:   "add <server-name>",
	Short: "Add a new server record",
	Long: `Add a new server record with CLI flags or interactive prompts.

You can provide all connection details using flags for non-interactive usage,
or omit them to be prompted interactively.

Server names must start with a letter and may contain letters, digits,
underscores and hyphens. Adding a name that already exists is rejected.

The record is appended to the registry file as plain key-value lines; the
previous file content is copied to a .bak sibling first.

Examples:
  # Interactive mode
  sshreg add production-api

  # Non-interactive with key authentication
  sshreg add web-server --host web.example.com --user webuser --auth-type key --key-path ~/.ssh/web_key

  # Non-interactive with password authentication
  sshreg add db-server --host db.example.com --user dbuser --auth-type password --port 2222`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAddCommand(cmd, args, cmd.OutOrStdout())
	},
}

func runAddCommand(cmd *cobra.Command, args []string, output io.Writer) error {
	serverName := strings.TrimSpace(args[0])
	if err := registry.ValidateName(serverName); err != nil {
		return fmt.Errorf("❌ %w", err)
	}

	store, _, err := openStore()
	if err != nil {
		return err
	}

	usingFlags := cmd.Flags().Changed("host") || cmd.Flags().Changed("user") || cmd.Flags().Changed("auth-type")

	var host, user, authType, keyPath, description string
	var port int

	if usingFlags {
		if !cmd.Flags().Changed("host") {
			return fmt.Errorf("❌ --host is required for non-interactive mode")
		}
		if !cmd.Flags().Changed("user") {
			return fmt.Errorf("❌ --user is required for non-interactive mode")
		}
		if !cmd.Flags().Changed("auth-type") {
			return fmt.Errorf("❌ --auth-type is required for non-interactive mode")
		}

		host, _ = cmd.Flags().GetString("host")
		user, _ = cmd.Flags().GetString("user")
		authType, _ = cmd.Flags().GetString("auth-type")
		port, _ = cmd.Flags().GetInt("port")
		keyPath, _ = cmd.Flags().GetString("key-path")
		description, _ = cmd.Flags().GetString("description")

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
	} else {
		scanner := bufio.NewScanner(os.Stdin)

		fmt.Fprintf(output, "Adding server '%s'\n\n", serverName)

		fmt.Fprint(output, "Host: ")
		if !scanner.Scan() {
			return fmt.Errorf("failed to read host")
		}
		host = strings.TrimSpace(scanner.Text())
		if host == "" {
			return fmt.Errorf("❌ Host is required")
		}

		fmt.Fprint(output, "Port (default: 22): ")
		if !scanner.Scan() {
			return fmt.Errorf("failed to read port")
		}
		portStr := strings.TrimSpace(scanner.Text())
		if portStr == "" {
			portStr = "22"
		}
		port, err = strconv.Atoi(portStr)
		if err != nil || port <= 0 || port > 65535 {
			return fmt.Errorf("❌ Invalid port: %s. Port must be between 1 and 65535", portStr)
		}

		fmt.Fprint(output, "User: ")
		if !scanner.Scan() {
			return fmt.Errorf("failed to read user")
		}
		user = strings.TrimSpace(scanner.Text())
		if user == "" {
			return fmt.Errorf("❌ User is required")
		}

		fmt.Fprint(output, "Authentication type (key/password): ")
		if !scanner.Scan() {
			return fmt.Errorf("failed to read auth type")
		}
		authType = strings.TrimSpace(strings.ToLower(scanner.Text()))
		if authType != "key" && authType != "password" {
			return fmt.Errorf("❌ Authentication type must be 'key' or 'password', got: %s", authType)
		}

		if authType == "key" {
			fmt.Fprint(output, "SSH key path: ")
			if !scanner.Scan() {
				return fmt.Errorf("failed to read key path")
			}
			keyPath = strings.TrimSpace(scanner.Text())
			if keyPath == "" {
				return fmt.Errorf("❌ SSH key path is required for key authentication")
			}
		}

		fmt.Fprint(output, "Description (optional): ")
		if !scanner.Scan() {
			return fmt.Errorf("failed to read description")
		}
		description = strings.TrimSpace(scanner.Text())
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

	if err := store.Add(serverName, host, user, registry.AuthMethod(authType), authValue, port, description); err != nil {
		if errors.Is(err, registry.ErrAlreadyExists) {
			return fmt.Errorf("❌ Server '%s' already exists. Use 'sshreg update %s' to change it", serverName, serverName)
		}
		return fmt.Errorf("❌ Failed to add server: %w", err)
	}

	fmt.Fprintf(output, "\n%s\n", color.SuccessMessage("Server '%s' added successfully!", serverName))
	fmt.Fprintf(output, "%s\n", color.InfoText("Use 'sshreg probe %s' to verify the connection", serverName))
	return nil
}

func init() {
	addCmd.Flags().StringP("host", "H", "", "Hostname/IP address of the server (required for non-interactive)")
	addCmd.Flags().IntP("port", "p", 22, "SSH port")
	addCmd.Flags().StringP("user", "u", "", "Username for authentication (required for non-interactive)")
	addCmd.Flags().StringP("auth-type", "a", "", "Authentication method - 'key' or 'password' (required for non-interactive)")
	addCmd.Flags().StringP("key-path", "k", "", "Path to SSH key file (required if auth-type is 'key')")
	addCmd.Flags().StringP("description", "d", "", "Free-text description of the server")

	setColorHelp(addCmd)
}
