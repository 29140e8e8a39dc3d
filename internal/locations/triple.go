package locations

import (
	"strings"
)

const tripleSeparator = "-"

// Triple is the textual key of a location: category, name and block.
// Missing trailing parts are empty strings.
type Triple struct {
	Category string
	Name     string
	Block    string
}

// ParseTriple splits s on "-" and keeps the first three parts.
func ParseTriple(s string) Triple {
	parts := strings.SplitN(s, tripleSeparator, 4)
	var t Triple
	if len(parts) > 0 {
		t.Category = strings.TrimSpace(parts[0])
	}
	if len(parts) > 1 {
		t.Name = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 {
		t.Block = strings.TrimSpace(parts[2])
	}
	return t
}

// String joins the parts back with "-", dropping empty trailing parts.
func (t Triple) String() string {
	parts := []string{t.Category, t.Name, t.Block}
	end := len(parts)
	for end > 1 && parts[end-1] == "" {
		end--
	}
	return strings.Join(parts[:end], tripleSeparator)
}

// IsZero reports whether no category was given.
func (t Triple) IsZero() bool {
	return t.Category == ""
}
