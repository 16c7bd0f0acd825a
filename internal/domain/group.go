package domain

import (
	"strings"
	"time"
)

// Group is a taxonomy unit members are assigned to. Name is unique
// case-insensitively; Subgroups are unique case-insensitively within the
// group, order not meaningful.
type Group struct {
	ID        string
	Name      string
	Subgroups []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasSubgroup reports whether name matches one of the group's subgroups,
// ignoring case.
func (g *Group) HasSubgroup(name string) bool {
	for _, sub := range g.Subgroups {
		if strings.EqualFold(sub, name) {
			return true
		}
	}
	return false
}

// FindGroupByName resolves a group by case-insensitive name from a snapshot.
func FindGroupByName(groups []Group, name string) (*Group, bool) {
	for i := range groups {
		if strings.EqualFold(groups[i].Name, name) {
			return &groups[i], true
		}
	}
	return nil, false
}

func normalizeEnum(value string) string {
	return strings.ToUpper(strings.TrimSpace(value))
}
