package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"sshreg/internal/color"
	"sshreg/internal/registry"
)

// exportDocument is the portable on-disk shape shared by export and
// import.
type exportDocument struct {
	Servers []exportRecord `yaml:"servers" json:"servers"`
}

type exportRecord struct {
	Name        string `yaml:"name" json:"name"`
	Host        string `yaml:"host" json:"host"`
	User        string `yaml:"user" json:"user"`
	Port        int    `yaml:"port" json:"port"`
	AuthType    string `yaml:"auth_type" json:"auth_type"`
	KeyPath     string `yaml:"key_path,omitempty" json:"key_path,omitempty"`
	Password    string `yaml:"password,omitempty" json:"password,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	DefaultDir  string `yaml:"default_dir,omitempty" json:"default_dir,omitempty"`
}

var exportFormat string

var exportCmd = &cobra.Command{
	Use:   "export [flags] <file>",
	Short: "Export server records to YAML or JSON",
	Long: `Export every server record to a YAML or JSON file.

The format is detected from the file extension and can be forced with
--format. Passwords are exported verbatim — they already live in the
plain-text registry file — so treat the export with the same care.

Examples:
  sshreg export servers.yaml              # Export all to YAML
  sshreg export servers.json              # Export all to JSON
  sshreg export --format json backup.txt  # Force JSON format`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExportCommand(args, cmd.OutOrStdout())
	},
}

func runExportCommand(args []string, output io.Writer) error {
	outputPath := args[0]

	store, _, err := openStore()
	if err != nil {
		return err
	}

	format := exportFormat
	if format == "" {
		format = detectTransferFormat(outputPath)
	}
	if format != "yaml" && format != "json" {
		return fmt.Errorf("❌ Unsupported export format: %s (supported: yaml, json)", format)
	}

	names, err := store.ListNames()
	if err != nil {
		return fmt.Errorf("❌ Failed to read registry: %w", err)
	}

	doc := exportDocument{Servers: []exportRecord{}}
	for name := range names {
		record, err := store.Get(name)
		if err != nil {
			continue
		}
		doc.Servers = append(doc.Servers, exportRecord{
			Name:        record.Name,
			Host:        record.Host,
			User:        record.User,
			Port:        record.Port,
			AuthType:    string(record.Auth),
			KeyPath:     record.KeyPath,
			Password:    record.Password,
			Description: record.Description,
			DefaultDir:  record.DefaultDir,
		})
	}

	var data []byte
	if format == "yaml" {
		data, err = yaml.Marshal(doc)
	} else {
		data, err = json.MarshalIndent(doc, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("❌ Failed to encode export: %w", err)
	}

	if err := os.WriteFile(outputPath, data, 0600); err != nil {
		return fmt.Errorf("❌ Failed to write export file: %w", err)
	}

	fmt.Fprintf(output, "%s\n", color.SuccessMessage("Exported %d server(s) to %s", len(doc.Servers), outputPath))
	return nil
}

// detectTransferFormat maps a file extension to an export/import format,
// defaulting to yaml.
func detectTransferFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json"
	default:
		return "yaml"
	}
}

// authMethodFromString validates a portable auth_type value.
func authMethodFromString(authType string) (registry.AuthMethod, error) {
	switch authType {
	case "key":
		return registry.AuthKey, nil
	case "password":
		return registry.AuthPassword, nil
	default:
		return "", fmt.Errorf("auth_type must be 'key' or 'password', got %q", authType)
	}
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "Output format (yaml, json) - auto-detected if not specified")

	setColorHelp(exportCmd)
}
