package utils

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// HumanDuration renders d in compact human form: "2days 3h 4m 5s".
// Sub-second precision is dropped. A zero duration renders as "0s".
func HumanDuration(d time.Duration) string {
	secs := int64(d.Seconds())
	if secs <= 0 {
		return "0s"
	}

	days := secs / 86400
	hours := (secs % 86400) / 3600
	mins := (secs % 3600) / 60
	secs = secs % 60

	var parts []string
	if days == 1 {
		parts = append(parts, "1day")
	} else if days > 1 {
		parts = append(parts, fmt.Sprintf("%ddays", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if mins > 0 {
		parts = append(parts, fmt.Sprintf("%dm", mins))
	}
	if secs > 0 {
		parts = append(parts, fmt.Sprintf("%ds", secs))
	}
	return strings.Join(parts, " ")
}

var durationPartRe = regexp.MustCompile(`^(\d+)(s|sec|secs|seconds?|m|min|mins|minutes?|h|hr|hrs|hours?|d|days?)$`)

// ParseHumanDuration parses durations like "30s", "5m", "2h", "1d" or
// "1h 30m". It accepts the unit spellings humans actually type.
func ParseHumanDuration(s string) (time.Duration, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0, errors.New("empty duration")
	}

	var total time.Duration
	for _, f := range fields {
		m := durationPartRe.FindStringSubmatch(f)
		if m == nil {
			return 0, fmt.Errorf("cannot parse duration %q", f)
		}
		n, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return 0, err
		}
		switch m[2][0] {
		case 's':
			total += time.Duration(n) * time.Second
		case 'm':
			total += time.Duration(n) * time.Minute
		case 'h':
			total += time.Duration(n) * time.Hour
		case 'd':
			total += time.Duration(n) * 24 * time.Hour
		}
	}
	return total, nil
}
