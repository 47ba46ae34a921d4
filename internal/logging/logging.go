// Package logging configures the process-wide logrus logger. Every
// line follows one pattern so the output stays grep-friendly:
//
//	2006-01-02 15:04:05 | LEVEL | file.go:42 — message
package logging

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Formatter renders entries in the fixed pipe-separated layout. The
// level column is always 5 characters wide.
type Formatter struct{}

// Format implements logrus.Formatter.
func (f *Formatter) Format(entry *log.Entry) ([]byte, error) {
	var b bytes.Buffer

	level := strings.ToUpper(entry.Level.String())
	if level == "WARNING" {
		level = "WARN"
	}
	if len(level) > 5 {
		level = level[:5]
	}

	caller := "?:0"
	if entry.Caller != nil {
		caller = fmt.Sprintf("%s:%d", filepath.Base(entry.Caller.File), entry.Caller.Line)
	}

	fmt.Fprintf(&b, "%s | %-5s | %s — %s",
		entry.Time.Format("2006-01-02 15:04:05"), level, caller, entry.Message)

	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, entry.Data[k])
	}

	b.WriteByte('\n')
	return b.Bytes(), nil
}

// Setup wires the global logger. verbosity counts the -d flags:
// 0 is Info, 1 is Debug, anything higher is Trace. When logFile is
// non-empty the output is duplicated there.
func Setup(verbosity int, logFile string) error {
	log.SetFormatter(&Formatter{})
	log.SetReportCaller(true)

	switch {
	case verbosity <= 0:
		log.SetLevel(log.InfoLevel)
	case verbosity == 1:
		log.SetLevel(log.DebugLevel)
	default:
		log.SetLevel(log.TraceLevel)
	}

	var out io.Writer = os.Stderr
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		out = io.MultiWriter(os.Stderr, f)
	}
	log.SetOutput(out)
	return nil
}
