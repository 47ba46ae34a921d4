package sshd

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"fmt"
	"os"

	"github.com/gliderlabs/ssh"
	log "github.com/sirupsen/logrus"
	gossh "golang.org/x/crypto/ssh"
)

// hostSigner loads the host key from path, generating and saving a
// fresh ed25519 key when the file does not exist yet. An empty path
// yields an ephemeral key that changes on every start.
func hostSigner(path string) (ssh.Signer, error) {
	if path == "" {
		log.Warn("no identity file configured, using an ephemeral host key")
		_, priv, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return nil, fmt.Errorf("generate host key: %w", err)
		}
		return gossh.NewSignerFromKey(priv)
	}

	pemBytes, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return generateHostKey(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read host key %s: %w", path, err)
	}
	signer, err := gossh.ParsePrivateKey(pemBytes)
	if err != nil {
		return nil, fmt.Errorf("parse host key %s: %w", path, err)
	}
	return signer, nil
}

func generateHostKey(path string) (ssh.Signer, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate host key: %w", err)
	}
	block, err := gossh.MarshalPrivateKey(priv, "")
	if err != nil {
		return nil, fmt.Errorf("encode host key: %w", err)
	}
	if err := os.WriteFile(path, pem.EncodeToMemory(block), 0o600); err != nil {
		return nil, fmt.Errorf("save host key %s: %w", path, err)
	}
	log.WithField("path", path).Info("generated a new host key")
	return gossh.NewSignerFromKey(priv)
}
