package registry

import (
	"errors"
	"fmt"
	"strings"
)

// AuthMethod selects how a server authenticates. Exactly one credential
// (key path or password) is stored per record.
type AuthMethod string

const (
	AuthKey      AuthMethod = "key"
	AuthPassword AuthMethod = "password"
)

// Errors returned by registry operations. Callers match with errors.Is.
var (
	ErrAlreadyExists = errors.New("server already exists")
	ErrNotFound      = errors.New("server not found")
	ErrInvalidName   = errors.New("invalid server name")
)

// ServerRecord is one server's full set of connection attributes as
// resolved from the backing file. Name is always the lowercase canonical
// form.
type ServerRecord struct {
	Name        string
	Host        string
	User        string
	Port        int
	Auth        AuthMethod
	KeyPath     string
	Password    string
	Description string
	DefaultDir  string
}

// Complete reports whether the record carries enough identity to attempt
// a connection. Records missing host or user are treated as absent for
// connection purposes.
func (r *ServerRecord) Complete() bool {
	return strings.TrimSpace(r.Host) != "" && strings.TrimSpace(r.User) != ""
}

// Credential returns the value governing authentication and whether any
// credential is present at all.
func (r *ServerRecord) Credential() (string, bool) {
	if r.KeyPath != "" {
		return r.KeyPath, true
	}
	if r.Password != "" {
		return r.Password, true
	}
	return "", false
}

// ValidateName checks a candidate server name. Names are used both as the
// unique registry key and as a segment of the derived storage key, so the
// character set is restricted. Each violation carries a distinct
// user-facing reason; all of them match ErrInvalidName.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidName)
	}
	first := name[0]
	if !isLetter(first) {
		return fmt.Errorf("%w: name must start with a letter", ErrInvalidName)
	}
	for i := 1; i < len(name); i++ {
		c := name[i]
		if !isLetter(c) && !isDigit(c) && c != '_' && c != '-' {
			return fmt.Errorf("%w: only letters, digits, '_' and '-' are allowed", ErrInvalidName)
		}
	}
	return nil
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
