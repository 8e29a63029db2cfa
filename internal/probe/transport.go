package probe

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/ssh"
	"golang.org/x/term"
)

// sshTransport is the production Transport over golang.org/x/crypto/ssh.
type sshTransport struct{}

func (sshTransport) SupportsPassword() bool { return true }

func (sshTransport) Dial(addr string, config *ssh.ClientConfig) (Session, error) {
	client, err := ssh.Dial("tcp", addr, config)
	if err != nil {
		return nil, err
	}
	return &sshSession{client: client}, nil
}

type sshSession struct {
	client *ssh.Client
}

func (s *sshSession) Run(command string) ([]byte, error) {
	session, err := s.client.NewSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	defer session.Close()
	return session.CombinedOutput(command)
}

func (s *sshSession) Close() error {
	return s.client.Close()
}

// newKeyAuth loads a private key from disk and returns a public-key auth
// method. Encrypted keys fall back to a passphrase prompt when stdin is a
// terminal.
func newKeyAuth(keyPath string) (ssh.AuthMethod, error) {
	expanded, err := ExpandPath(keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to expand key path: %w", err)
	}

	keyBytes, err := os.ReadFile(expanded)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key: %w", err)
	}

	signer, err := ssh.ParsePrivateKey(keyBytes)
	if err == nil {
		return ssh.PublicKeys(signer), nil
	}

	if _, encrypted := err.(*ssh.PassphraseMissingError); !encrypted {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, fmt.Errorf("private key %s is passphrase protected and no terminal is available", keyPath)
	}

	fmt.Print("Enter passphrase for key: ")
	passphrase, perr := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if perr != nil {
		return nil, fmt.Errorf("failed to read passphrase: %w", perr)
	}
	signer, err = ssh.ParsePrivateKeyWithPassphrase(keyBytes, passphrase)
	if err != nil {
		return nil, fmt.Errorf("failed to parse encrypted private key: %w", err)
	}
	return ssh.PublicKeys(signer), nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	if path == "~" {
		return homeDir, nil
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir, path[2:]), nil
	}
	return path, nil
}
