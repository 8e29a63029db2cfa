package registry

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "servers.env"))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

func TestAddThenListNames(t *testing.T) {
	store := newTestStore(t)

	if err := store.Add("Web-Server", "example.com", "deploy", AuthKey, "~/.ssh/id_ed25519", 22, ""); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := store.Add("alpha", "a.example.com", "root", AuthPassword, "hunter2", 2222, "first box"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	seq, err := store.ListNames()
	if err != nil {
		t.Fatalf("ListNames failed: %v", err)
	}
	names := slices.Collect(seq)

	want := []string{"alpha", "web-server"}
	if !slices.Equal(names, want) {
		t.Errorf("ListNames = %v, want %v (lowercased, sorted)", names, want)
	}

	// The sequence is restartable: a second pass yields the same names.
	if again := slices.Collect(seq); !slices.Equal(again, want) {
		t.Errorf("second iteration = %v, want %v", again, want)
	}
}

func TestAddDuplicateRejectedWithoutMutation(t *testing.T) {
	store := newTestStore(t)

	if err := store.Add("web", "example.com", "deploy", AuthKey, "~/.ssh/key", 22, ""); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	before := readFile(t, store.Path())

	err := store.Add("web", "other.com", "eve", AuthPassword, "x", 22, "")
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	if after := readFile(t, store.Path()); after != before {
		t.Errorf("file changed on rejected Add:\nbefore: %q\nafter: %q", before, after)
	}
}

func TestUpdateAbsentFailsWithoutMutation(t *testing.T) {
	store := newTestStore(t)
	if err := store.Add("web", "example.com", "deploy", AuthKey, "k", 22, ""); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	before := readFile(t, store.Path())

	err := store.Update("ghost", "h", "u", AuthKey, "k", 22, "", "")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if after := readFile(t, store.Path()); after != before {
		t.Errorf("file changed on rejected Update")
	}
}

func TestRemoveAbsentFailsWithoutMutation(t *testing.T) {
	store := newTestStore(t)
	if err := store.Add("web", "example.com", "deploy", AuthKey, "k", 22, ""); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	before := readFile(t, store.Path())

	if err := store.Remove("ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if after := readFile(t, store.Path()); after != before {
		t.Errorf("file changed on rejected Remove")
	}
}

func TestRoundTripFields(t *testing.T) {
	store := newTestStore(t)
	desc := `staging "primary" box`

	if err := store.Add("stage", "stage.example.com", "ops", AuthKey, "/keys/stage", 2222, desc); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	checks := []struct {
		field string
		want  string
	}{
		{FieldHost, "stage.example.com"},
		{FieldUser, "ops"},
		{FieldPort, "2222"},
		{FieldKeyPath, "/keys/stage"},
		{FieldDescription, desc},
	}
	for _, c := range checks {
		got, ok, err := store.Field("stage", c.field)
		if err != nil {
			t.Fatalf("Field(%s) failed: %v", c.field, err)
		}
		if !ok {
			t.Fatalf("Field(%s) reported absent", c.field)
		}
		if got != c.want {
			t.Errorf("Field(%s) = %q, want %q", c.field, got, c.want)
		}
	}

	// Case of the lookup name must not matter.
	if got, ok, _ := store.Field("STAGE", FieldHost); !ok || got != "stage.example.com" {
		t.Errorf("uppercase lookup = (%q, %v)", got, ok)
	}
}

func TestFieldAbsentIsNotAnError(t *testing.T) {
	store := newTestStore(t)
	if err := store.Add("web", "example.com", "deploy", AuthKey, "k", 22, ""); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	value, ok, err := store.Field("web", FieldDescription)
	if err != nil {
		t.Fatalf("Field failed: %v", err)
	}
	if ok || value != "" {
		t.Errorf("expected absent description, got (%q, %v)", value, ok)
	}
}

func TestUpdateIsFullReplace(t *testing.T) {
	store := newTestStore(t)
	if err := store.Add("web", "example.com", "deploy", AuthPassword, "secret", 22, "old description"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	// Omit the description, switch auth method, add a default dir.
	if err := store.Update("web", "web2.example.com", "admin", AuthKey, "/keys/web", 2200, "", "/srv/web"); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if _, ok, _ := store.Field("web", FieldDescription); ok {
		t.Error("description survived an update that omitted it")
	}
	if _, ok, _ := store.Field("web", FieldPassword); ok {
		t.Error("password survived a switch to key auth")
	}

	record, err := store.Get("web")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if record.Host != "web2.example.com" || record.User != "admin" || record.Port != 2200 {
		t.Errorf("unexpected record after update: %+v", record)
	}
	if record.Auth != AuthKey || record.KeyPath != "/keys/web" {
		t.Errorf("auth not replaced: %+v", record)
	}
	if record.DefaultDir != "/srv/web" {
		t.Errorf("default dir = %q, want /srv/web", record.DefaultDir)
	}

	// Exactly one record block remains.
	content := readFile(t, store.Path())
	if n := strings.Count(content, "SSH_SERVER_WEB_HOST="); n != 1 {
		t.Errorf("found %d host lines after update, want 1", n)
	}
	if n := strings.Count(content, "# Server: web"); n != 1 {
		t.Errorf("found %d comment lines after update, want 1", n)
	}
}

func TestRemoveStripsCommentAndAllLines(t *testing.T) {
	store := newTestStore(t)
	if err := store.Add("web", "example.com", "deploy", AuthKey, "k", 22, "desc"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := store.Add("db", "db.example.com", "dba", AuthPassword, "pw", 5432, ""); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if err := store.Remove("web"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	content := readFile(t, store.Path())
	if strings.Contains(content, "SSH_SERVER_WEB_") {
		t.Error("key lines for removed server remain")
	}
	if strings.Contains(content, "# Server: web\n") {
		t.Error("comment line for removed server remains")
	}
	if !strings.Contains(content, "SSH_SERVER_DB_HOST=db.example.com") {
		t.Error("unrelated record was damaged by Remove")
	}

	// Second removal: NotFound, and the file stays as the first call
	// left it.
	before := readFile(t, store.Path())
	if err := store.Remove("web"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second Remove, got %v", err)
	}
	if after := readFile(t, store.Path()); after != before {
		t.Error("second Remove mutated the file")
	}
}

func TestRemoveSparesUnderscoreExtendedNames(t *testing.T) {
	store := newTestStore(t)
	if err := store.Add("web", "example.com", "deploy", AuthKey, "k", 22, ""); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := store.Add("web_server", "ws.example.com", "ops", AuthPassword, "pw", 2222, "frontend"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if err := store.Remove("web"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	rec, err := store.Get("web_server")
	if err != nil {
		t.Fatalf("Get(web_server) after Remove(web) failed: %v", err)
	}
	if rec.Host != "ws.example.com" || rec.User != "ops" || rec.Port != 2222 || rec.Description != "frontend" {
		t.Errorf("web_server record damaged: %+v", rec)
	}

	content := readFile(t, store.Path())
	if !strings.Contains(content, "# Server: web_server\n") {
		t.Error("comment line for web_server was stripped")
	}

	seq, err := store.ListNames()
	if err != nil {
		t.Fatalf("ListNames failed: %v", err)
	}
	if names := slices.Collect(seq); !slices.Equal(names, []string{"web_server"}) {
		t.Errorf("ListNames = %v, want [web_server]", names)
	}
}

func TestUpdateSparesUnderscoreExtendedNames(t *testing.T) {
	store := newTestStore(t)
	if err := store.Add("web", "example.com", "deploy", AuthKey, "k", 22, ""); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := store.Add("web_server", "ws.example.com", "ops", AuthPassword, "pw", 2222, "frontend"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if err := store.Update("web", "new.example.com", "deploy", AuthKey, "k", 22, "", ""); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	rec, err := store.Get("web_server")
	if err != nil {
		t.Fatalf("Get(web_server) after Update(web) failed: %v", err)
	}
	if rec.Host != "ws.example.com" || rec.Password != "pw" {
		t.Errorf("web_server record damaged: %+v", rec)
	}
	if updated, err := store.Get("web"); err != nil || updated.Host != "new.example.com" {
		t.Errorf("Get(web) = %+v, %v, want host new.example.com", updated, err)
	}
}

func TestBackupTakenBeforeMutation(t *testing.T) {
	store := newTestStore(t)
	if err := store.Add("web", "example.com", "deploy", AuthKey, "k", 22, ""); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	// First Add has nothing to back up.
	if _, err := os.Stat(store.BackupPath()); !os.IsNotExist(err) {
		t.Fatalf("unexpected backup after first Add: %v", err)
	}

	before := readFile(t, store.Path())
	if err := store.Remove("web"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	backup := readFile(t, store.BackupPath())
	if backup != before {
		t.Errorf("backup does not match pre-mutation file:\nbackup: %q\nbefore: %q", backup, before)
	}
}

func TestTolerantParsingSkipsForeignLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "servers.env")
	content := strings.Join([]string{
		"# hand-written header",
		"EDITOR=vim",
		"SSH_SERVER_WEB_HOST=example.com",
		"SSH_SERVER_WEB_USER=deploy",
		"not a key value line at all",
		"SSH_SERVER_WEB_PORT=not-a-number",
		"",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to seed file: %v", err)
	}

	store := NewStore(path)
	seq, err := store.ListNames()
	if err != nil {
		t.Fatalf("ListNames failed: %v", err)
	}
	if names := slices.Collect(seq); !slices.Equal(names, []string{"web"}) {
		t.Errorf("ListNames = %v, want [web]", names)
	}

	record, err := store.Get("web")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if record.Port != 22 {
		t.Errorf("unparsable port resolved to %d, want default 22", record.Port)
	}

	// Mutations must leave foreign lines alone.
	if err := store.Add("db", "db.example.com", "dba", AuthKey, "k", 22, ""); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	after := readFile(t, path)
	if !strings.Contains(after, "EDITOR=vim") || !strings.Contains(after, "# hand-written header") {
		t.Error("hand-written lines were dropped by a mutation")
	}
}

func TestGetResolvesAuthMethod(t *testing.T) {
	store := newTestStore(t)
	if err := store.Add("keyed", "h", "u", AuthKey, "/k", 22, ""); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := store.Add("passed", "h", "u", AuthPassword, "pw", 22, ""); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	keyed, _ := store.Get("keyed")
	if keyed.Auth != AuthKey || keyed.KeyPath != "/k" || keyed.Password != "" {
		t.Errorf("keyed record resolved wrong: %+v", keyed)
	}
	passed, _ := store.Get("passed")
	if passed.Auth != AuthPassword || passed.Password != "pw" || passed.KeyPath != "" {
		t.Errorf("password record resolved wrong: %+v", passed)
	}

	if _, err := store.Get("ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(ghost) = %v, want ErrNotFound", err)
	}
}

func TestAddRejectsUnknownAuthMethod(t *testing.T) {
	store := newTestStore(t)
	if err := store.Add("web", "h", "u", AuthMethod("agent"), "", 22, ""); err == nil {
		t.Fatal("expected error for unknown auth method")
	}
	if _, err := os.Stat(store.Path()); !os.IsNotExist(err) {
		t.Error("file was created despite rejected Add")
	}
}

func TestListNamesEmptyRegistry(t *testing.T) {
	store := newTestStore(t)
	seq, err := store.ListNames()
	if err != nil {
		t.Fatalf("ListNames failed: %v", err)
	}
	if names := slices.Collect(seq); len(names) != 0 {
		t.Errorf("expected no names, got %v", names)
	}
}
