package cmd

import (
	"fmt"
	"io"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"sshreg/internal/color"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all registered servers",
	Long: `List all registered servers with their connection details in a formatted table.

Names come out lowercased, deduplicated and sorted ascending regardless of
their order in the registry file.

Examples:
  sshreg list                   # Formatted table of all servers
  sshreg list --names           # Bare names, one per line, for scripting
  sshreg list | grep production # Filter production servers`,
	RunE: func(cmd *cobra.Command, args []string) error {
		namesOnly, _ := cmd.Flags().GetBool("names")
		return runListCommand(cmd.OutOrStdout(), namesOnly)
	},
}

func runListCommand(output io.Writer, namesOnly bool) error {
	store, _, err := openStore()
	if err != nil {
		return err
	}

	names, err := store.ListNames()
	if err != nil {
		return fmt.Errorf("❌ Failed to read registry: %w", err)
	}

	if namesOnly {
		for name := range names {
			fmt.Fprintln(output, name)
		}
		return nil
	}

	all := slices.Collect(names)
	if len(all) == 0 {
		fmt.Fprintln(output, color.InfoMessage("No servers registered."))
		fmt.Fprintln(output, color.InfoText("Use 'sshreg add <server-name>' to add a server."))
		return nil
	}

	count := 0
	w := tabwriter.NewWriter(output, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tHOST:PORT\tUSER\tAUTH\tDESCRIPTION")
	fmt.Fprintln(w, "----\t---------\t----\t----\t-----------")

	for _, name := range all {
		record, err := store.Get(name)
		if err != nil {
			continue
		}
		description := record.Description
		if description == "" {
			description = "-"
		}
		auth := string(record.Auth)
		if auth == "" {
			auth = "-"
		}
		fmt.Fprintf(w, "%s\t%s:%d\t%s\t%s\t%s\n",
			record.Name,
			record.Host, record.Port,
			record.User,
			auth,
			description,
		)
		count++
	}
	w.Flush()

	fmt.Fprintf(output, "\n%s\n", color.InfoMessage("All registered servers: %d server(s)", count))
	fmt.Fprintln(output, color.InfoText("Use 'sshreg probe <server-name>' to verify a connection"))
	return nil
}

func init() {
	listCmd.Flags().BoolP("names", "n", false, "Print bare server names only")

	setColorHelp(listCmd)
}
