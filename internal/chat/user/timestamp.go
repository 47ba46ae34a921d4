package user

import "strings"

// TimestampMode controls the optional UTC prefix on rendered
// messages.
type TimestampMode string

const (
	TimestampTime     TimestampMode = "time"
	TimestampDateTime TimestampMode = "datetime"
	TimestampOff      TimestampMode = "off"
)

// TimestampModes lists the modes in declaration order.
func TimestampModes() []TimestampMode {
	return []TimestampMode{TimestampTime, TimestampDateTime, TimestampOff}
}

// TimestampModeFromPrefix resolves the first mode whose name starts
// with prefix.
func TimestampModeFromPrefix(prefix string) (TimestampMode, bool) {
	for _, m := range TimestampModes() {
		if strings.HasPrefix(string(m), prefix) {
			return m, true
		}
	}
	return "", false
}

func (m TimestampMode) String() string { return string(m) }

// Layout returns the Go time layout for the mode, empty for off.
func (m TimestampMode) Layout() string {
	switch m {
	case TimestampTime:
		return "15:04"
	case TimestampDateTime:
		return "2006-01-02 15:04:05"
	default:
		return ""
	}
}
