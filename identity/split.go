package identity

import "strings"

// SplitContributors splits an author header such as
// "Jane <jane@example.com>, Bob (@bob)" into individual contributor strings.
// Commas inside <>, () or [] do not split.
func SplitContributors(field string) []string {
	var (
		parts []string
		depth int
		start int
	)
	for i, r := range field {
		switch r {
		case '<', '(', '[':
			depth++
		case '>', ')', ']':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = appendTrimmed(parts, field[start:i])
				start = i + 1
			}
		}
	}
	return appendTrimmed(parts, field[start:])
}

func appendTrimmed(parts []string, s string) []string {
	if s = strings.TrimSpace(s); s != "" {
		parts = append(parts, s)
	}
	return parts
}
