// Package utils holds small helpers shared across the chat server:
// name sanitization, human-readable durations and substring search.
package utils

import (
	"regexp"

	"golang.org/x/text/unicode/norm"
)

// Newline is the line terminator used on the wire. Terminals expect
// the carriage return after the newline when rendering raw output.
const Newline = "\n\r"

const maxNameLength = 16

var nameStripRe = regexp.MustCompile(`[^\w.-]`)

// SanitizeName normalizes s, strips every character outside
// [A-Za-z0-9_.-] and truncates the result to 16 bytes.
func SanitizeName(s string) string {
	s = norm.NFKC.String(s)
	s = nameStripRe.ReplaceAllString(s, "")
	if len(s) > maxNameLength {
		s = s[:maxNameLength]
	}
	return s
}
