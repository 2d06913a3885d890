package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	secondsOnlyPattern = regexp.MustCompile(`^(\d+)$`)
	minutesPattern     = regexp.MustCompile(`^(\d+):(\d+)$`)
	hoursPattern       = regexp.MustCompile(`^(\d+):(\d+):(\d+)$`)
)

// DurationLabel is a display-ready rendering of a raw duration string.
type DurationLabel struct {
	Label   string `json:"label"`
	Clock   string `json:"clock"`
	Seconds int    `json:"seconds"`
}

// ParseDurationSeconds converts "SS", "MM:SS" or "H:MM:SS" into whole seconds.
// Empty or unrecognised input yields 0.
func ParseDurationSeconds(duration string) int {
	trimmed := strings.TrimSpace(duration)
	if trimmed == "" {
		return 0
	}

	if matches := secondsOnlyPattern.FindStringSubmatch(trimmed); matches != nil {
		return atoi(matches[1])
	}
	if matches := minutesPattern.FindStringSubmatch(trimmed); matches != nil {
		return atoi(matches[1])*60 + atoi(matches[2])
	}
	if matches := hoursPattern.FindStringSubmatch(trimmed); matches != nil {
		return atoi(matches[1])*3600 + atoi(matches[2])*60 + atoi(matches[3])
	}
	return 0
}

// FormatDuration renders a raw duration as "1 h 2 min 3 sec" and "01:02:03".
func FormatDuration(duration string) DurationLabel {
	total := ParseDurationSeconds(duration)
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	labelParts := make([]string, 0, 3)
	clockParts := make([]string, 0, 3)
	if hours > 0 {
		labelParts = append(labelParts, fmt.Sprintf("%d h", hours))
		clockParts = append(clockParts, fmt.Sprintf("%02d", hours))
	}
	if minutes > 0 || hours > 0 {
		labelParts = append(labelParts, fmt.Sprintf("%d min", minutes))
	}
	labelParts = append(labelParts, fmt.Sprintf("%d sec", seconds))
	clockParts = append(clockParts, fmt.Sprintf("%02d", minutes), fmt.Sprintf("%02d", seconds))

	return DurationLabel{
		Label:   strings.Join(labelParts, " "),
		Clock:   strings.Join(clockParts, ":"),
		Seconds: total,
	}
}

// ViewOf pairs a record with its parsed duration.
func ViewOf(r VideoRecord) VideoView {
	return VideoView{VideoRecord: r, DurationInfo: FormatDuration(r.Duration)}
}

// atoi returns 0 for values that overflow int.
func atoi(digits string) int {
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return n
}
