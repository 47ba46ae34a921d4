// Package motd loads the message of the day and keeps it fresh while
// the server runs.
package motd

import (
	"fmt"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"

	"github.com/unrenamed/chatd-sub000/internal/utils"
)

// Default is the MOTD used when no file is configured.
const Default = "Welcome to the chat room!"

// Load reads a MOTD file and normalizes its line endings for raw
// terminal output.
func Load(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read motd file: %w", err)
	}
	return Normalize(string(b)), nil
}

// Normalize rewrites any line ending style into the CRLF form the
// session renderer emits.
func Normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.TrimRight(s, "\n")
	return strings.ReplaceAll(s, "\n", utils.Newline)
}

// Watch reloads the MOTD file on every write and hands the new text
// to onReload. Reload failures are logged and the previous MOTD stays
// in effect. The returned watcher must be closed by the caller.
func Watch(path string, onReload func(string)) (*fsnotify.Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create motd watcher: %w", err)
	}
	if err := w.Add(path); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch motd file: %w", err)
	}

	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) {
					continue
				}
				text, err := Load(path)
				if err != nil {
					log.Warnf("motd reload failed: %v", err)
					continue
				}
				log.WithField("path", path).Info("motd reloaded")
				onReload(text)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warnf("motd watcher: %v", err)
			}
		}
	}()
	return w, nil
}
