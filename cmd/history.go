package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"sshreg/internal/color"
	"sshreg/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show probe attempt history",
	Long: `Show past probe attempts recorded in the local history database.

Every 'sshreg probe' run is logged with its outcome, duration and error
message. Use --stats for per-server aggregates instead of the raw list.

Examples:
  sshreg history                         # Recent probes, newest first
  sshreg history --server production-api # One server only
  sshreg history --status failed         # Failed attempts only
  sshreg history --stats                 # Success rate per server`,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, _ := cmd.Flags().GetString("server")
		status, _ := cmd.Flags().GetString("status")
		limit, _ := cmd.Flags().GetInt("limit")
		stats, _ := cmd.Flags().GetBool("stats")
		return runHistoryCommand(cmd.OutOrStdout(), server, status, limit, stats)
	},
}

func runHistoryCommand(output io.Writer, server, status string, limit int, stats bool) error {
	_, settings, err := openStore()
	if err != nil {
		return err
	}

	log, err := history.Open(settings.HistoryFile)
	if err != nil {
		return fmt.Errorf("❌ Failed to open probe history: %w", err)
	}
	defer log.Close()

	if stats {
		return printProbeStats(output, log, server)
	}

	entries, err := log.List(history.Filter{
		ServerName: server,
		Status:     status,
		Limit:      limit,
	})
	if err != nil {
		return fmt.Errorf("❌ Failed to query probe history: %w", err)
	}

	if len(entries) == 0 {
		fmt.Fprintln(output, color.InfoMessage("No probe history recorded."))
		fmt.Fprintln(output, color.InfoText("Use 'sshreg probe <server-name>' to run a probe."))
		return nil
	}

	w := tabwriter.NewWriter(output, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tSERVER\tTARGET\tAUTH\tSTATUS\tDURATION\tERROR")
	for _, entry := range entries {
		errMsg := entry.ErrorMessage
		if errMsg == "" {
			errMsg = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s@%s:%d\t%s\t%s\t%dms\t%s\n",
			entry.StartTime.Local().Format(time.DateTime),
			entry.ServerName,
			entry.User, entry.Host, entry.Port,
			entry.AuthMethod,
			entry.Status,
			entry.DurationMs,
			errMsg,
		)
	}
	w.Flush()
	return nil
}

func printProbeStats(output io.Writer, log *history.Log, server string) error {
	stats, err := log.StatsByServer(server)
	if err != nil {
		return fmt.Errorf("❌ Failed to query probe stats: %w", err)
	}
	if len(stats) == 0 {
		fmt.Fprintln(output, color.InfoMessage("No probe history recorded."))
		return nil
	}

	w := tabwriter.NewWriter(output, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SERVER\tPROBES\tSUCCESS RATE\tAVG DURATION\tLAST PROBE")
	for _, s := range stats {
		fmt.Fprintf(w, "%s\t%d\t%.0f%%\t%.0fms\t%s\n",
			s.ServerName,
			s.Total,
			s.SuccessRate*100,
			s.AvgDurationMs,
			s.LastProbe.Local().Format(time.DateTime),
		)
	}
	w.Flush()
	return nil
}

func init() {
	historyCmd.Flags().StringP("server", "s", "", "Filter by server name")
	historyCmd.Flags().String("status", "", "Filter by status (success, failed)")
	historyCmd.Flags().IntP("limit", "l", 20, "Maximum number of entries to show")
	historyCmd.Flags().Bool("stats", false, "Show per-server aggregates instead of raw attempts")

	setColorHelp(historyCmd)
}
