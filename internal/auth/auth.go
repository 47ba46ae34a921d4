// Package auth tracks who may connect, who operates the server and
// who is banned. Keys are always compared by SHA256 fingerprint.
package auth

import (
	"errors"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
	gossh "golang.org/x/crypto/ssh"
)

var (
	ErrNoWhitelist = errors.New("no whitelist file in the server configuration")
	ErrNoOplist    = errors.New("no oplist file in the server configuration")
)

// Auth is the server's authorization state: operator keys, trusted
// keys for whitelist mode and TTL-bounded bans.
type Auth struct {
	mu sync.Mutex

	whitelistEnabled bool
	whitelistFile    *KeyFileManager
	oplistFile       *KeyFileManager

	operators map[string]gossh.PublicKey
	trusted   map[string]gossh.PublicKey

	bannedUsernames    *TimedSet
	bannedFingerprints *TimedSet
}

// New builds the auth state. Either path may be empty; the matching
// load/save operations then fail with a sentinel. Providing a
// whitelist file enables whitelist mode for new connections.
func New(oplistPath, whitelistPath string) (*Auth, error) {
	a := &Auth{
		operators:          make(map[string]gossh.PublicKey),
		trusted:            make(map[string]gossh.PublicKey),
		bannedUsernames:    NewTimedSet(),
		bannedFingerprints: NewTimedSet(),
	}
	if oplistPath != "" {
		a.oplistFile = NewKeyFileManager(oplistPath)
		keys, err := a.oplistFile.Load()
		if err != nil {
			return nil, err
		}
		a.operators = keys
	}
	if whitelistPath != "" {
		a.whitelistFile = NewKeyFileManager(whitelistPath)
		keys, err := a.whitelistFile.Load()
		if err != nil {
			return nil, err
		}
		a.trusted = keys
		a.whitelistEnabled = true
	}
	return a, nil
}

// IsEnabled reports whether whitelist mode applies to new
// connections.
func (a *Auth) IsEnabled() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.whitelistEnabled
}

// Enable turns whitelist mode on.
func (a *Auth) Enable() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.whitelistEnabled = true
}

// Disable turns whitelist mode off.
func (a *Auth) Disable() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.whitelistEnabled = false
}

// HasOperators reports whether any operator key is known.
func (a *Auth) HasOperators() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.operators) > 0
}

// IsOp reports whether key belongs to an operator.
func (a *Auth) IsOp(key gossh.PublicKey) bool {
	if key == nil {
		return false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.operators[gossh.FingerprintSHA256(key)]
	return ok
}

// IsTrusted reports whether key is on the whitelist.
func (a *Auth) IsTrusted(key gossh.PublicKey) bool {
	if key == nil {
		return false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.trusted[gossh.FingerprintSHA256(key)]
	return ok
}

// AddOperator grants operator rights to key.
func (a *Auth) AddOperator(key gossh.PublicKey) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.operators[gossh.FingerprintSHA256(key)] = key
}

// RemoveOperator revokes operator rights from key.
func (a *Auth) RemoveOperator(key gossh.PublicKey) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.operators, gossh.FingerprintSHA256(key))
}

// AddTrustedKey puts key on the whitelist.
func (a *Auth) AddTrustedKey(key gossh.PublicKey) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.trusted[gossh.FingerprintSHA256(key)] = key
}

// RemoveTrustedKey drops key from the whitelist.
func (a *Auth) RemoveTrustedKey(key gossh.PublicKey) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.trusted, gossh.FingerprintSHA256(key))
}

// TrustedKeys returns a snapshot of the whitelist, indexed by
// fingerprint.
func (a *Auth) TrustedKeys() map[string]gossh.PublicKey {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make(map[string]gossh.PublicKey, len(a.trusted))
	for fp, k := range a.trusted {
		out[fp] = k
	}
	return out
}

// Operators returns a snapshot of the operator keys, indexed by
// fingerprint.
func (a *Auth) Operators() map[string]gossh.PublicKey {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make(map[string]gossh.PublicKey, len(a.operators))
	for fp, k := range a.operators {
		out[fp] = k
	}
	return out
}

// LoadTrustedKeys reads the whitelist file, either merging into or
// replacing the in-memory set.
func (a *Auth) LoadTrustedKeys(replace bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.whitelistFile == nil {
		return ErrNoWhitelist
	}
	keys, err := a.whitelistFile.Load()
	if err != nil {
		return err
	}
	if replace {
		a.trusted = keys
		return nil
	}
	for fp, k := range keys {
		a.trusted[fp] = k
	}
	return nil
}

// SaveTrustedKeys writes the in-memory whitelist back to its file.
func (a *Auth) SaveTrustedKeys() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.whitelistFile == nil {
		return ErrNoWhitelist
	}
	return a.whitelistFile.Save(a.trusted)
}

// LoadOperators reads the oplist file, either merging into or
// replacing the in-memory set.
func (a *Auth) LoadOperators(replace bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.oplistFile == nil {
		return ErrNoOplist
	}
	keys, err := a.oplistFile.Load()
	if err != nil {
		return err
	}
	if replace {
		a.operators = keys
		return nil
	}
	for fp, k := range keys {
		a.operators[fp] = k
	}
	return nil
}

// SaveOperators writes the in-memory operator set back to its file.
func (a *Auth) SaveOperators() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.oplistFile == nil {
		return ErrNoOplist
	}
	return a.oplistFile.Save(a.operators)
}

// BanUsername bans a name for the given lifetime.
func (a *Auth) BanUsername(name string, ttl time.Duration) {
	a.bannedUsernames.Insert(name, ttl)
}

// BanFingerprint bans a key fingerprint for the given lifetime.
func (a *Auth) BanFingerprint(fp string, ttl time.Duration) {
	a.bannedFingerprints.Insert(fp, ttl)
}

// CheckBans reports whether the username or the key is banned.
func (a *Auth) CheckBans(username string, key gossh.PublicKey) bool {
	if a.bannedUsernames.Contains(username) {
		return true
	}
	if key != nil && a.bannedFingerprints.Contains(gossh.FingerprintSHA256(key)) {
		return true
	}
	return false
}

// Banned lists the active ban conditions: usernames and
// fingerprints.
func (a *Auth) Banned() ([]string, []string) {
	return a.bannedUsernames.Items(), a.bannedFingerprints.Items()
}

// StartSweeper schedules a minutely sweep of expired bans and
// returns the running scheduler.
func (a *Auth) StartSweeper() *cron.Cron {
	c := cron.New()
	if _, err := c.AddFunc("@every 1m", func() {
		a.bannedUsernames.Sweep()
		a.bannedFingerprints.Sweep()
	}); err != nil {
		log.Errorf("schedule ban sweep: %v", err)
	}
	c.Start()
	return c
}
