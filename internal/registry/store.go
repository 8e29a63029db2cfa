package registry

import (
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

// BackupSuffix is appended to the backing file path for the
// single-generation pre-mutation backup.
const BackupSuffix = ".bak"

// Store is the file-backed server registry. Every operation re-reads the
// backing file; there is no in-memory cache, so external edits between
// calls are picked up. Concurrent writers race and the last writer wins —
// this is a single-operator tool.
type Store struct {
	path string
}

// NewStore binds a store to a backing file path. The file is created on
// first mutation.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// BackupPath returns the path of the pre-mutation backup copy.
func (s *Store) BackupPath() string {
	return s.path + BackupSuffix
}

// ListNames returns every server name found in the backing file as a
// restartable sequence: lowercase, deduplicated, sorted ascending
// regardless of file order.
func (s *Store) ListNames() (iter.Seq[string], error) {
	lines, err := s.readLines()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var names []string
	for _, line := range lines {
		name := nameFromLine(line)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	slices.Sort(names)

	return slices.Values(names), nil
}

// Field fetches one decoded field value. The second return is false when
// no line for the field exists; absence is not an error.
func (s *Store) Field(name, field string) (string, bool, error) {
	lines, err := s.readLines()
	if err != nil {
		return "", false, err
	}
	return fieldFromLines(lines, name, field)
}

// Get resolves a full record. It fails with ErrNotFound when the host
// line is missing. The port defaults to 22 when absent or unparsable and
// the auth method is inferred from which credential line exists (key path
// wins when both are present).
func (s *Store) Get(name string) (*ServerRecord, error) {
	lines, err := s.readLines()
	if err != nil {
		return nil, err
	}
	if !hasRecord(lines, name) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	rec := &ServerRecord{Name: strings.ToLower(name), Port: 22}
	if v, ok, _ := fieldFromLines(lines, name, FieldHost); ok {
		rec.Host = v
	}
	if v, ok, _ := fieldFromLines(lines, name, FieldUser); ok {
		rec.User = v
	}
	if v, ok, _ := fieldFromLines(lines, name, FieldPort); ok {
		if port, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && port > 0 {
			rec.Port = port
		}
	}
	if v, ok, _ := fieldFromLines(lines, name, FieldKeyPath); ok {
		rec.KeyPath = v
	}
	if v, ok, _ := fieldFromLines(lines, name, FieldPassword); ok {
		rec.Password = v
	}
	if v, ok, _ := fieldFromLines(lines, name, FieldDescription); ok {
		rec.Description = v
	}
	if v, ok, _ := fieldFromLines(lines, name, FieldDefaultDir); ok {
		rec.DefaultDir = v
	}

	switch {
	case rec.KeyPath != "":
		rec.Auth = AuthKey
	case rec.Password != "":
		rec.Auth = AuthPassword
	}
	return rec, nil
}

// Add appends a new record. It fails with ErrAlreadyExists when a host
// line for the name is already present, leaving the file untouched. The
// backup copy is taken before any line is written.
func (s *Store) Add(name, host, user string, auth AuthMethod, authValue string, port int, description string) error {
	block, err := recordBlock(name, host, user, auth, authValue, port, description, "")
	if err != nil {
		return err
	}

	lines, err := s.readLines()
	if err != nil {
		return err
	}
	if hasRecord(lines, name) {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, name)
	}

	if err := s.backup(); err != nil {
		return err
	}
	return s.writeLines(append(lines, block...))
}

// Update replaces a record wholesale: the comment line and every
// SSH_SERVER_<NAME>_* line are removed, then a fresh block is appended in
// the fixed field order. Fields omitted from the call are dropped even if
// the old record had them. Fails with ErrNotFound when the record does
// not exist.
func (s *Store) Update(name, host, user string, auth AuthMethod, authValue string, port int, description, defaultDir string) error {
	block, err := recordBlock(name, host, user, auth, authValue, port, description, defaultDir)
	if err != nil {
		return err
	}

	lines, err := s.readLines()
	if err != nil {
		return err
	}
	if !hasRecord(lines, name) {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	if err := s.backup(); err != nil {
		return err
	}
	kept := stripRecord(lines, name)
	return s.writeLines(append(kept, block...))
}

// Remove deletes a record, its comment line included. Fails with
// ErrNotFound when the record does not exist; a second Remove on the same
// name therefore mutates nothing.
func (s *Store) Remove(name string) error {
	lines, err := s.readLines()
	if err != nil {
		return err
	}
	if !hasRecord(lines, name) {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	if err := s.backup(); err != nil {
		return err
	}
	return s.writeLines(stripRecord(lines, name))
}

// backup copies the entire backing file to its .bak sibling, overwriting
// any prior backup. This runs before every destructive rewrite and is the
// sole rollback mechanism; a copy failure aborts the mutation. A missing
// backing file (first ever Add) is the only case where the copy is
// skipped.
func (s *Store) backup() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read registry for backup: %w", err)
	}
	if err := os.WriteFile(s.BackupPath(), data, 0600); err != nil {
		return fmt.Errorf("failed to write backup file: %w", err)
	}
	return nil
}

func (s *Store) readLines() ([]string, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read registry file: %w", err)
	}

	lines := strings.Split(string(data), "\n")
	// A trailing newline produces one empty final element; drop it so
	// rewrites don't accumulate blank lines.
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines, nil
}

func (s *Store) writeLines(lines []string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create registry directory: %w", err)
	}

	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(s.path, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}

// hasRecord reports record existence by the presence of the host line,
// which every well-formed record has.
func hasRecord(lines []string, name string) bool {
	prefix := DeriveKey(name, FieldHost) + "="
	for _, line := range lines {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}

// fieldFromLines scans for the first line carrying the derived key and
// decodes its value. Unrecognized lines are skipped, never rejected.
func fieldFromLines(lines []string, name, field string) (string, bool, error) {
	prefix := DeriveKey(name, field) + "="
	for _, line := range lines {
		if strings.HasPrefix(line, prefix) {
			return DecodeValue(line[len(prefix):]), true, nil
		}
	}
	return "", false, nil
}

// stripRecord drops the record's comment line and every field line the
// record owns. Ownership is field-exact, never prefix-based.
func stripRecord(lines []string, name string) []string {
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if isFieldLineFor(line, name) || isCommentFor(line, name) {
			continue
		}
		kept = append(kept, line)
	}
	return kept
}

// recordBlock renders a record as its on-disk lines in the fixed field
// order: comment, HOST, USER, PORT, credential, DESCRIPTION and
// DEFAULT_DIR when non-empty.
func recordBlock(name, host, user string, auth AuthMethod, authValue string, port int, description, defaultDir string) ([]string, error) {
	if auth != AuthKey && auth != AuthPassword {
		return nil, fmt.Errorf("auth method must be %q or %q, got %q", AuthKey, AuthPassword, auth)
	}
	if port <= 0 {
		port = 22
	}

	lines := []string{
		commentLine(name),
		DeriveKey(name, FieldHost) + "=" + encodeValue(FieldHost, host),
		DeriveKey(name, FieldUser) + "=" + encodeValue(FieldUser, user),
		DeriveKey(name, FieldPort) + "=" + strconv.Itoa(port),
	}
	if auth == AuthKey {
		lines = append(lines, DeriveKey(name, FieldKeyPath)+"="+encodeValue(FieldKeyPath, authValue))
	} else {
		lines = append(lines, DeriveKey(name, FieldPassword)+"="+encodeValue(FieldPassword, authValue))
	}
	if description != "" {
		lines = append(lines, DeriveKey(name, FieldDescription)+"="+encodeValue(FieldDescription, description))
	}
	if defaultDir != "" {
		lines = append(lines, DeriveKey(name, FieldDefaultDir)+"="+encodeValue(FieldDefaultDir, defaultDir))
	}
	return lines, nil
}
