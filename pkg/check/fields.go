package check

import "strings"

// normalizeField trims and case-folds a matching field (title, author).
func normalizeField(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// trimField trims a content field without case-folding it.
func trimField(s string) string {
	return strings.TrimSpace(s)
}

// ownerToken extracts the owning author from a stored author field,
// dropping any trailing shared marker.
func ownerToken(stored string) string {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(stored)))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
