package auth

import (
	"errors"
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	gossh "golang.org/x/crypto/ssh"
)

// ErrNoKeys is returned when a key file holds no parseable keys, or
// when saving an empty set would truncate one to nothing.
var ErrNoKeys = errors.New("file has no keys")

// KeyFileManager reads and writes one authorized_keys-format file.
type KeyFileManager struct {
	path string
}

// NewKeyFileManager manages the file at path.
func NewKeyFileManager(path string) *KeyFileManager {
	return &KeyFileManager{path: path}
}

// Path returns the managed file path.
func (m *KeyFileManager) Path() string { return m.path }

// Load parses the file and returns its keys indexed by SHA256
// fingerprint. Unparseable lines are logged and skipped.
func (m *KeyFileManager) Load() (map[string]gossh.PublicKey, error) {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return nil, fmt.Errorf("I/O error: %w", err)
	}

	keys := make(map[string]gossh.PublicKey)
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, _, _, _, err := gossh.ParseAuthorizedKey([]byte(line))
		if err != nil {
			log.Warnf("skipping unparseable key at %s:%d: %v", m.path, i+1, err)
			continue
		}
		keys[gossh.FingerprintSHA256(key)] = key
	}
	if len(keys) == 0 {
		return nil, ErrNoKeys
	}
	return keys, nil
}

// Save truncates the file and writes every key, one per line.
func (m *KeyFileManager) Save(keys map[string]gossh.PublicKey) error {
	if len(keys) == 0 {
		return ErrNoKeys
	}
	var b strings.Builder
	for _, key := range keys {
		b.Write(gossh.MarshalAuthorizedKey(key))
	}
	if err := os.WriteFile(m.path, []byte(b.String()), 0o600); err != nil {
		return fmt.Errorf("I/O error: %w", err)
	}
	return nil
}
