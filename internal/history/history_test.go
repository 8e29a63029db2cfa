package history

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestLog(t *testing.T) *Log {
	t.Helper()
	log, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { log.Close() })
	return log
}

func sampleEntry(server, status string) ProbeEntry {
	return ProbeEntry{
		ServerName: server,
		Host:       "example.com",
		User:       "deploy",
		Port:       22,
		AuthMethod: "key",
		Status:     status,
		StartTime:  time.Now().UTC(),
		DurationMs: 40,
	}
}

func TestRecordAndList(t *testing.T) {
	log := openTestLog(t)

	if _, err := log.Record(sampleEntry("web", StatusSuccess)); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	failed := sampleEntry("web", StatusFailed)
	failed.ErrorMessage = "connection refused"
	if _, err := log.Record(failed); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if _, err := log.Record(sampleEntry("db", StatusSuccess)); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	all, err := log.List(Filter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("List returned %d entries, want 3", len(all))
	}

	webOnly, err := log.List(Filter{ServerName: "web"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(webOnly) != 2 {
		t.Errorf("server filter matched %d entries, want 2", len(webOnly))
	}

	failures, err := log.List(Filter{Status: StatusFailed})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(failures) != 1 || failures[0].ErrorMessage != "connection refused" {
		t.Errorf("status filter = %+v", failures)
	}

	limited, err := log.List(Filter{Limit: 1})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("limit ignored, got %d entries", len(limited))
	}
}

func TestStatsByServer(t *testing.T) {
	log := openTestLog(t)

	for range 3 {
		if _, err := log.Record(sampleEntry("web", StatusSuccess)); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}
	if _, err := log.Record(sampleEntry("web", StatusFailed)); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	stats, err := log.StatsByServer("web")
	if err != nil {
		t.Fatalf("StatsByServer failed: %v", err)
	}
	if len(stats) != 1 {
		t.Fatalf("expected one stats row, got %d", len(stats))
	}
	s := stats[0]
	if s.Total != 4 || s.Successful != 3 {
		t.Errorf("totals = %d/%d, want 3/4", s.Successful, s.Total)
	}
	if s.SuccessRate != 0.75 {
		t.Errorf("success rate = %v, want 0.75", s.SuccessRate)
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	log, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, err := log.Record(sampleEntry("web", StatusSuccess)); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	log.Close()

	// Reopening runs migrations again against the existing schema.
	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	entries, err := reopened.List(Filter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("existing data lost across reopen: %d entries", len(entries))
	}
}
