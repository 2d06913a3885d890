package orchestrator

import (
	"regexp"
	"strings"
)

var profileHandle = regexp.MustCompile(`@([^/?#]+)`)

// NormalizeUsername accepts "name", "@name" or a full profile link and
// returns the bare handle. Links without a handle are returned trimmed.
func NormalizeUsername(input string) string {
	username := strings.TrimSpace(input)
	if strings.Contains(username, "tiktok.com/") {
		if match := profileHandle.FindStringSubmatch(username); match != nil {
			return match[1]
		}
		return username
	}
	return strings.TrimPrefix(username, "@")
}
