package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"sshreg/internal/color"
	"sshreg/internal/registry"
)

var (
	importFormat       string
	importOverwrite    bool
	importSkipExisting bool
)

var importCmd = &cobra.Command{
	Use:   "import [flags] <file>",
	Short: "Import server records from YAML or JSON",
	Long: `Import server records from a file produced by 'sshreg export' (or
hand-written in the same shape).

Each record is validated and applied through the regular registry
operations, so name rules, duplicate checks and the pre-mutation backup
all hold. Existing servers are skipped by default (--skip-existing);
--overwrite replaces them instead, and --skip-existing=false turns a
collision into a hard error.

Examples:
  sshreg import servers.yaml             # Add new servers, skip existing
  sshreg import servers.json --overwrite # Replace existing servers too`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runImportCommand(args, cmd.OutOrStdout())
	},
}

func runImportCommand(args []string, output io.Writer) error {
	inputPath := args[0]

	store, _, err := openStore()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("❌ Failed to read import file: %w", err)
	}

	format := importFormat
	if format == "" {
		format = detectTransferFormat(inputPath)
	}

	var doc exportDocument
	switch format {
	case "yaml":
		err = yaml.Unmarshal(data, &doc)
	case "json":
		err = json.Unmarshal(data, &doc)
	default:
		return fmt.Errorf("❌ Unsupported import format: %s (supported: yaml, json)", format)
	}
	if err != nil {
		return fmt.Errorf("❌ Failed to parse import file: %w", err)
	}

	imported, replaced, skipped := 0, 0, 0
	for _, rec := range doc.Servers {
		if err := registry.ValidateName(rec.Name); err != nil {
			fmt.Fprintf(output, "%s\n", color.WarningMessage("Skipping '%s': %v", rec.Name, err))
			skipped++
			continue
		}
		auth, err := authMethodFromString(rec.AuthType)
		if err != nil {
			fmt.Fprintf(output, "%s\n", color.WarningMessage("Skipping '%s': %v", rec.Name, err))
			skipped++
			continue
		}
		authValue := rec.KeyPath
		if auth == registry.AuthPassword {
			authValue = rec.Password
		}

		err = store.Add(rec.Name, rec.Host, rec.User, auth, authValue, rec.Port, rec.Description)
		if errors.Is(err, registry.ErrAlreadyExists) {
			switch {
			case importOverwrite:
				err = store.Update(rec.Name, rec.Host, rec.User, auth, authValue, rec.Port, rec.Description, rec.DefaultDir)
				if err == nil {
					replaced++
					continue
				}
			case importSkipExisting:
				fmt.Fprintf(output, "%s\n", color.InfoMessage("Skipping '%s': already exists", rec.Name))
				skipped++
				continue
			default:
				return fmt.Errorf("❌ Server '%s' already exists (pass --overwrite to replace or --skip-existing to keep it)", rec.Name)
			}
		}
		if err != nil {
			fmt.Fprintf(output, "%s\n", color.WarningMessage("Skipping '%s': %v", rec.Name, err))
			skipped++
			continue
		}
		imported++

		// Add has no default-dir parameter; a stored directory needs the
		// full-replace path to land in the record.
		if rec.DefaultDir != "" {
			if err := store.Update(rec.Name, rec.Host, rec.User, auth, authValue, rec.Port, rec.Description, rec.DefaultDir); err != nil {
				fmt.Fprintf(output, "%s\n", color.WarningMessage("Imported '%s' without default_dir: %v", rec.Name, err))
			}
		}
	}

	fmt.Fprintf(output, "%s\n", color.SuccessMessage("Import complete: %d added, %d replaced, %d skipped", imported, replaced, skipped))
	return nil
}

func init() {
	importCmd.Flags().StringVarP(&importFormat, "format", "f", "", "Input format (yaml, json) - auto-detected if not specified")
	importCmd.Flags().BoolVar(&importOverwrite, "overwrite", false, "Replace servers that already exist")
	importCmd.Flags().BoolVar(&importSkipExisting, "skip-existing", true, "Keep existing servers and import only new ones")

	setColorHelp(importCmd)
}
