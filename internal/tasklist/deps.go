package tasklist

import "strings"

// ParseDependencies splits a comma separated list of task ids.
// Segments are trimmed and empty ones dropped; order and duplicates are kept.
// The result is never nil.
func ParseDependencies(text string) []string {
	deps := []string{}
	if text == "" {
		return deps
	}
	for _, part := range strings.Split(text, ",") {
		if id := strings.TrimSpace(part); id != "" {
			deps = append(deps, id)
		}
	}
	return deps
}
