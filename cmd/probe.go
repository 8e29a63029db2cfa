package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"sshreg/internal/color"
	"sshreg/internal/history"
	"sshreg/internal/probe"
	"sshreg/internal/registry"
)

var probeCmd = &cobra.Command{
	Use:     "probe <server-name>",
	Aliases: []string{"test"},
	Short:   "Verify that a server record still connects",
	Long: `Run a single-shot liveness probe against a registered server.

The probe dials the stored host and port with a short connect timeout,
authenticates with the stored key or password, and runs a trivial remote
no-op command. It never retries; the verdict is reported per attempt and
recorded in the local probe history.

Host key verification is disabled for probes — the registry stores ad-hoc
operator targets, so usability won over TOFU strictness here.

Records missing host or user are rejected before any network I/O.

Examples:
  sshreg probe production-api
  sshreg probe web-server --timeout 5s
  sshreg probe db-server --verbose`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		timeout, _ := cmd.Flags().GetDuration("timeout")
		verbose, _ := cmd.Flags().GetBool("verbose")
		return runProbeCommand(args, cmd.OutOrStdout(), timeout, verbose)
	},
}

func runProbeCommand(args []string, output io.Writer, timeout time.Duration, verbose bool) error {
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

	if timeout <= 0 {
		timeout = settings.ProbeTimeout
	}

	// A record can be complete yet carry no credential (empty KEYPATH and
	// PASSWORD lines). Ask for a one-off password instead of failing; it
	// is used for this probe only, never written back to the registry.
	if _, ok := record.Credential(); !ok && record.Complete() {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return fmt.Errorf("❌ Cannot probe '%s': %w: no credential stored and no terminal to prompt on", serverName, probe.ErrIncompleteRecord)
		}
		fmt.Fprintf(output, "Enter password for %s@%s: ", record.User, record.Host)
		passwordBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(output)
		if err != nil {
			return fmt.Errorf("❌ Failed to read password: %w", err)
		}
		if len(passwordBytes) == 0 {
			return fmt.Errorf("❌ Password cannot be empty for password authentication")
		}
		record.Password = string(passwordBytes)
		record.Auth = registry.AuthPassword
	}

	prober := probe.New(probe.WithTimeout(timeout))

	fmt.Fprintf(output, "🔌 Probing %s (%s@%s:%d)...\n",
		record.Name, record.User, record.Host, record.Port)

	start := time.Now()
	result, probeErr := prober.Probe(record)

	// Probe history is best-effort; a recording failure never fails the
	// probe itself.
	if log, err := history.Open(settings.HistoryFile); err == nil {
		entry := history.ProbeEntry{
			ServerName: record.Name,
			Host:       record.Host,
			User:       record.User,
			Port:       record.Port,
			AuthMethod: string(record.Auth),
			Status:     history.StatusSuccess,
			StartTime:  start,
			DurationMs: time.Since(start).Milliseconds(),
		}
		if probeErr != nil {
			entry.Status = history.StatusFailed
			entry.ErrorMessage = probeErr.Error()
		}
		if _, err := log.Record(entry); err != nil {
			fmt.Fprintf(output, "%s\n", color.WarningMessage("Failed to record probe history: %v", err))
		}
		log.Close()
	} else {
		fmt.Fprintf(output, "%s\n", color.WarningMessage("Failed to open probe history: %v", err))
	}

	if probeErr != nil {
		if verbose && result != nil && strings.TrimSpace(result.Output) != "" {
			fmt.Fprintf(output, "--- captured output ---\n%s\n", result.Output)
		}
		switch {
		case errors.Is(probeErr, probe.ErrIncompleteRecord):
			return fmt.Errorf("❌ Cannot probe '%s': %w", serverName, probeErr)
		case errors.Is(probeErr, probe.ErrMissingCapability):
			return fmt.Errorf("❌ Cannot probe '%s': %w", serverName, probeErr)
		default:
			fmt.Fprintf(output, "%s\n", color.ErrorMessage("Server '%s' is not reachable", record.Name))
			return fmt.Errorf("probe failed for '%s': %w", serverName, probeErr)
		}
	}

	fmt.Fprintf(output, "%s\n", color.SuccessMessage("Server '%s' is reachable (%.0f ms)", record.Name, float64(result.Duration.Milliseconds())))
	if verbose && strings.TrimSpace(result.Output) != "" {
		fmt.Fprintf(output, "--- captured output ---\n%s\n", result.Output)
	}
	return nil
}

func init() {
	probeCmd.Flags().DurationP("timeout", "t", 0, "Connect timeout (default from settings, 10s)")
	probeCmd.Flags().BoolP("verbose", "v", false, "Print captured remote output for diagnostics")

	setColorHelp(probeCmd)
}
