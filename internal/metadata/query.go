package metadata

import "strings"

// Query describes one identify request from the host.
type Query struct {
	Title       string
	Authors     []string
	Identifiers map[string]string
}

// Identifier returns the trimmed identifier value for kind, or "".
func (q Query) Identifier(kind string) string {
	for k, v := range q.Identifiers {
		if strings.EqualFold(k, kind) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// FreeText joins title and authors into a single search key.
func (q Query) FreeText() string {
	parts := make([]string, 0, len(q.Authors)+1)
	if t := strings.TrimSpace(q.Title); t != "" {
		parts = append(parts, t)
	}
	for _, a := range q.Authors {
		if a = strings.TrimSpace(a); a != "" {
			parts = append(parts, a)
		}
	}
	return strings.Join(parts, " ")
}

// IsEmpty reports whether the query carries nothing to search for.
func (q Query) IsEmpty() bool {
	return q.FreeText() == "" && q.Identifier(IdentifierISBN) == "" && q.Identifier(IdentifierBooksTW) == ""
}
