package registry

import (
	"regexp"
	"strings"
)

// Field names as they appear in derived keys. The on-disk order of a
// record's lines is fixed: HOST, USER, PORT, KEYPATH or PASSWORD,
// DESCRIPTION, DEFAULT_DIR.
const (
	FieldHost        = "HOST"
	FieldUser        = "USER"
	FieldPort        = "PORT"
	FieldKeyPath     = "KEYPATH"
	FieldPassword    = "PASSWORD"
	FieldDescription = "DESCRIPTION"
	FieldDefaultDir  = "DEFAULT_DIR"
)

const keyPrefix = "SSH_SERVER_"

// recordFields are the only field segments a record can own. Line
// ownership checks match them exactly: names may contain underscores, so
// a bare prefix check would claim lines of any server whose name extends
// another's (web vs web_server).
var recordFields = []string{
	FieldHost, FieldUser, FieldPort, FieldKeyPath, FieldPassword, FieldDescription, FieldDefaultDir,
}

// hostLinePattern identifies the one line every record is guaranteed to
// have. The captured segment, lowercased, is the canonical display name.
var hostLinePattern = regexp.MustCompile(`^SSH_SERVER_(.+)_HOST=`)

// DeriveKey maps a server name and field to the storage key used in the
// backing file. Case of the stored name is not preserved in the key.
func DeriveKey(name, field string) string {
	return keyPrefix + strings.ToUpper(name) + "_" + strings.ToUpper(field)
}

// DecodeValue strips a single matching pair of outer double quotes and
// returns the interior verbatim, embedded quotes included. Unquoted text
// passes through unchanged. Descriptions may contain arbitrary
// characters, so no unescaping or reinterpretation happens here.
func DecodeValue(raw string) string {
	if len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"' {
		return raw[1 : len(raw)-1]
	}
	return raw
}

// encodeValue renders a field value for storage. Only descriptions are
// quoted; every other field is written verbatim.
func encodeValue(field, value string) string {
	if field == FieldDescription {
		return `"` + value + `"`
	}
	return value
}

// nameFromLine extracts the canonical lowercase server name from a host
// line, or "" when the line is not a host line. Lines that don't match
// are skipped by all scanners, never treated as errors, so hand-edited
// files keep parsing.
func nameFromLine(line string) string {
	m := hostLinePattern.FindStringSubmatch(line)
	if m == nil {
		return ""
	}
	return strings.ToLower(m[1])
}

// commentLine is the free-text line written before a record's fields.
func commentLine(name string) string {
	return "# Server: " + name
}

// isCommentFor reports whether a line is the comment belonging to name,
// compared case-insensitively since the comment keeps the caller's
// spelling while keys are uppercased.
func isCommentFor(line, name string) bool {
	return strings.EqualFold(strings.TrimSpace(line), "# Server: "+name)
}

// isFieldLineFor reports whether a line stores one of name's fields. The
// text between the name segment and '=' must be a known field name
// exactly, so removing "web" leaves every "web_server" line untouched.
func isFieldLineFor(line, name string) bool {
	prefix := keyPrefix + strings.ToUpper(name) + "_"
	if !strings.HasPrefix(line, prefix) {
		return false
	}
	rest := line[len(prefix):]
	for _, field := range recordFields {
		if strings.HasPrefix(rest, field+"=") {
			return true
		}
	}
	return false
}
