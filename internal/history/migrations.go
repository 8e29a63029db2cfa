package history

import (
	"fmt"
	"sort"
)

// Migration is one versioned schema change.
type Migration struct {
	Version     int
	Description string
	Up          string
}

func getMigrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "Initial probe history schema",
			Up: `
				CREATE TABLE IF NOT EXISTS schema_migrations (
					version INTEGER PRIMARY KEY,
					description TEXT NOT NULL,
					applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
				);

				CREATE TABLE IF NOT EXISTS probe_history (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					server_name TEXT NOT NULL,
					host TEXT NOT NULL,
					user TEXT NOT NULL,
					port INTEGER NOT NULL,
					auth_method TEXT NOT NULL,
					status TEXT NOT NULL,
					error_message TEXT,
					start_time DATETIME NOT NULL,
					duration_ms INTEGER NOT NULL DEFAULT 0,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				);
			`,
		},
		{
			Version:     2,
			Description: "Probe history indexes",
			Up: `
				CREATE INDEX IF NOT EXISTS idx_probe_history_server ON probe_history(server_name);
				CREATE INDEX IF NOT EXISTS idx_probe_history_status ON probe_history(status);
				CREATE INDEX IF NOT EXISTS idx_probe_history_start_time ON probe_history(start_time);
			`,
		},
	}
}

func (l *Log) runMigrations() error {
	currentVersion, err := l.getCurrentVersion()
	if err != nil {
		return err
	}

	migrations := getMigrations()
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}
		if err := l.applyMigration(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}
	}
	return nil
}

func (l *Log) getCurrentVersion() (int, error) {
	_, err := l.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to create migrations table: %w", err)
	}

	var version int
	err = l.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to get current schema version: %w", err)
	}
	return version, nil
}

func (l *Log) applyMigration(migration Migration) error {
	tx, err := l.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start migration transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(migration.Up); err != nil {
		return fmt.Errorf("failed to execute migration %d: %w", migration.Version, err)
	}
	if _, err := tx.Exec(
		"INSERT OR REPLACE INTO schema_migrations (version, description) VALUES (?, ?)",
		migration.Version, migration.Description,
	); err != nil {
		return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
	}
	return tx.Commit()
}
