// Package probe verifies reachability and authentication for one
// resolved server record without establishing a persistent session.
package probe

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/crypto/ssh"

	"sshreg/internal/registry"
)

// Probe error kinds. A capability failure is distinct from a connection
// failure: it happens before any dial.
var (
	ErrIncompleteRecord  = errors.New("record is incomplete")
	ErrMissingCapability = errors.New("password authentication is not available")
	ErrConnectionFailed  = errors.New("connection failed")
)

// DefaultTimeout bounds the transport-level connect. There is no
// caller-supplied cancellation; this is the only timeout.
const DefaultTimeout = 10 * time.Second

// livenessCommand is the trivial remote no-op run to verify the session.
const livenessCommand = "true"

// Session is one established connection able to run the liveness command.
type Session interface {
	Run(command string) ([]byte, error)
	Close() error
}

// Transport dials SSH connections. It is an interface so tests can
// substitute a stub and verify that incomplete records trigger zero
// network I/O.
type Transport interface {
	// SupportsPassword reports whether the transport can perform
	// password authentication at all.
	SupportsPassword() bool
	Dial(addr string, config *ssh.ClientConfig) (Session, error)
}

// Prober performs single-shot, synchronous liveness probes. No retry is
// ever attempted; retry policy belongs to the caller.
type Prober struct {
	transport Transport
	timeout   time.Duration
}

// Option configures a Prober.
type Option func(*Prober)

// WithTransport substitutes the SSH transport. Used by tests.
func WithTransport(t Transport) Option {
	return func(p *Prober) { p.transport = t }
}

// WithTimeout overrides the connect timeout.
func WithTimeout(d time.Duration) Option {
	return func(p *Prober) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// New returns a Prober backed by the real SSH transport unless options
// say otherwise.
func New(opts ...Option) *Prober {
	p := &Prober{
		transport: sshTransport{},
		timeout:   DefaultTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Result carries diagnostics from a probe attempt. Output holds the
// combined output of the liveness command for callers that want verbose
// reporting.
type Result struct {
	Duration time.Duration
	Output   string
}

// Probe checks that the record's server is reachable and the stored
// credential authenticates. Host key verification is intentionally
// disabled: the registry stores ad-hoc operator targets and usability
// won over TOFU strictness here.
func (p *Prober) Probe(rec *registry.ServerRecord) (*Result, error) {
	if !rec.Complete() {
		return nil, fmt.Errorf("%w: host and user are required", ErrIncompleteRecord)
	}

	var auth ssh.AuthMethod
	switch {
	case rec.KeyPath != "":
		keyAuth, err := newKeyAuth(rec.KeyPath)
		if err != nil {
			return nil, err
		}
		auth = keyAuth
	case rec.Password != "":
		if !p.transport.SupportsPassword() {
			return nil, fmt.Errorf("%w for %s", ErrMissingCapability, rec.Name)
		}
		auth = ssh.Password(rec.Password)
	default:
		return nil, fmt.Errorf("%w: no key path or password stored", ErrIncompleteRecord)
	}

	port := rec.Port
	if port <= 0 {
		port = 22
	}
	config := &ssh.ClientConfig{
		User:            rec.User,
		Auth:            []ssh.AuthMethod{auth},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         p.timeout,
	}
	addr := rec.Host + ":" + strconv.Itoa(port)

	start := time.Now()
	session, err := p.transport.Dial(addr, config)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConnectionFailed, addr, err)
	}
	defer session.Close()

	output, err := session.Run(livenessCommand)
	result := &Result{
		Duration: time.Since(start),
		Output:   string(output),
	}
	if err != nil {
		return result, fmt.Errorf("%w: liveness command on %s: %v", ErrConnectionFailed, addr, err)
	}
	return result, nil
}
