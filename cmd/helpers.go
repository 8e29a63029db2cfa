package cmd

import (
	"fmt"

	"sshreg/internal/config"
	"sshreg/internal/registry"
)

// openStore loads settings and binds the registry store to the configured
// backing file.
func openStore() (*registry.Store, config.Settings, error) {
	settings, err := config.Load()
	if err != nil {
		return nil, config.Settings{}, fmt.Errorf("❌ Failed to load settings: %w", err)
	}
	return registry.NewStore(settings.RegistryFile), settings, nil
}

// maskSecret hides all but the fact that a value exists.
func maskSecret(value string) string {
	if value == "" {
		return "-"
	}
	return "********"
}
