package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"

	"github.com/spf13/cobra"

	"sshreg/internal/probe"
	"sshreg/internal/registry"
)

var connectCmd = &cobra.Command{
	Use:   "connect <server-name>",
	Short: "Open an interactive SSH session to a server",
	Long: `Open an interactive SSH session using the system ssh client.

This command will:
  • Load and resolve the server record
  • Build the ssh invocation from the stored host, port, user and key
  • Start in the record's default directory when one is stored
  • Hand the terminal over to ssh for the duration of the session

Password records require the sshpass helper to be installed; without it
the command fails before anything is executed.

Examples:
  sshreg connect production-api
  sshreg connect staging-db
  sshreg connect jump-host`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConnectCommand(args, cmd.OutOrStdout())
	},
}

func runConnectCommand(args []string, output io.Writer) error {
	serverName := args[0]

	store, settings, err := openStore()
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
	if !record.Complete() {
		return fmt.Errorf("❌ Server '%s' is missing host or user; fix it with 'sshreg update %s'", serverName, serverName)
	}

	command, cmdArgs, err := buildSSHInvocation(record, settings.Shell)
	if err != nil {
		return err
	}

	fmt.Fprintf(output, "🔌 Connecting to %s (%s@%s:%d)...\n",
		record.Name, record.User, record.Host, record.Port)

	session := exec.Command(command, cmdArgs...)
	session.Stdin = os.Stdin
	session.Stdout = os.Stdout
	session.Stderr = os.Stderr
	if err := session.Run(); err != nil {
		return fmt.Errorf("❌ SSH session ended with error: %w", err)
	}
	return nil
}

// buildSSHInvocation maps a record to a system ssh (or sshpass-wrapped
// ssh) command line. shell is the configured fallback login shell used
// when the remote side exports no SHELL of its own.
func buildSSHInvocation(record *registry.ServerRecord, shell string) (string, []string, error) {
	sshArgs := []string{fmt.Sprintf("%s@%s", record.User, record.Host)}
	if record.Port != 22 {
		sshArgs = append(sshArgs, "-p", strconv.Itoa(record.Port))
	}
	if record.Auth == registry.AuthKey && record.KeyPath != "" {
		expanded, err := probe.ExpandPath(record.KeyPath)
		if err != nil {
			return "", nil, fmt.Errorf("❌ Failed to expand key path: %w", err)
		}
		sshArgs = append(sshArgs, "-i", expanded)
	}
	sshArgs = append(sshArgs, "-o", "ServerAliveInterval=60", "-o", "ServerAliveCountMax=3")

	// Start the remote shell in the stored default directory.
	if record.DefaultDir != "" {
		if shell == "" {
			shell = "/bin/sh"
		}
		sshArgs = append(sshArgs, "-t", fmt.Sprintf("cd %q && exec ${SHELL:-%s} -l", record.DefaultDir, shell))
	}

	if record.Auth == registry.AuthPassword {
		if _, err := exec.LookPath("sshpass"); err != nil {
			return "", nil, fmt.Errorf("❌ %w: install sshpass to connect to password-authenticated servers", probe.ErrMissingCapability)
		}
		return "sshpass", append([]string{"-p", record.Password, "ssh"}, sshArgs...), nil
	}
	return "ssh", sshArgs, nil
}

func init() {
	setColorHelp(connectCmd)
}
