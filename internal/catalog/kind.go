package catalog

import (
	"fmt"
)

// Kind selects one of the admin managed name lists.
type Kind string

const (
	KindTags         Kind = "tags"
	KindDesignations Kind = "designations"
	KindOccupations  Kind = "occupations"
)

func (k Kind) table() string {
	return string(k)
}

func (k Kind) singular() string {
	switch k {
	case KindTags:
		return "tag"
	case KindDesignations:
		return "designation"
	case KindOccupations:
		return "occupation"
	}
	return "entry"
}

// ParseKind validates the path segment naming a catalog.
func ParseKind(value string) (Kind, error) {
	switch Kind(value) {
	case KindTags, KindDesignations, KindOccupations:
		return Kind(value), nil
	}
	return "", fmt.Errorf("unknown catalog %q", value)
}
