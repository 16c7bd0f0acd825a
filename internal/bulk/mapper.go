package bulk

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/spec-kit/roster-service/internal/domain"
)

// RowError is one per-row finding. Advisory errors accompany a row that
// still produced a candidate; fatal ones mean the row was skipped. Row
// numbers are 1-based over data rows (the header row is not counted).
type RowError struct {
	Row      int    `json:"row"`
	Message  string `json:"message"`
	Advisory bool   `json:"advisory"`
}

func fatalRowError(row int, format string, args ...any) RowError {
	return RowError{Row: row, Message: fmt.Sprintf(format, args...)}
}

func advisoryRowError(row int, format string, args ...any) RowError {
	return RowError{Row: row, Message: fmt.Sprintf(format, args...), Advisory: true}
}

var emailShape = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// dateLayouts are tried in order when coercing date-like cells.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"Jan 2, 2006",
}

func parseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// splitList turns a comma-separated cell into an ordered list, trimming
// entries and dropping empties. Duplicates are kept.
func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// canonicalHeaders maps accepted header spellings to field identifiers.
// Lookup is case-insensitive; headers not listed here are ignored.
var canonicalHeaders = map[string]domain.Field{
	"name":           domain.FieldName,
	"role":           domain.FieldTitle,
	"title":          domain.FieldTitle,
	"email":          domain.FieldEmail,
	"status":         domain.FieldStatus,
	"membertype":     domain.FieldMemberType,
	"academylevel":   domain.FieldAcademyLevel,
	"phone":          domain.FieldPhone,
	"address":        domain.FieldAddress,
	"bio":            domain.FieldBio,
	"gender":         domain.FieldGender,
	"birthdate":      domain.FieldBirthDate,
	"datejoined":     domain.FieldDateJoined,
	"groupname":      domain.FieldGroupName,
	"subgroup":       domain.FieldSubgroup,
	"affiliations":   domain.FieldAffiliations,
	"achievements":   domain.FieldAchievements,
	"certifications": domain.FieldCertifications,
	"sessions":       domain.FieldSessions,
}

// MapParams bundles the inputs for mapping one data row.
type MapParams struct {
	Headers []string
	Values  []string
	Groups  []domain.Group
	// Allowed restricts which recognized fields the row may supply; nil
	// allows all. Columns outside the set are ignored, matching how the
	// permission resolver gates direct edits.
	Allowed map[domain.Field]struct{}
	Now     time.Time
	Row     int
}

func (p MapParams) fieldAllowed(field domain.Field) bool {
	if p.Allowed == nil {
		return true
	}
	_, ok := p.Allowed[field]
	return ok
}

// MapRow validates and coerces one data row into a candidate member.
// A nil candidate means the row was rejected; errs then holds the fatal
// finding. A non-nil candidate may still carry advisory errors.
func MapRow(p MapParams) (*domain.Member, []RowError) {
	if len(p.Values) != len(p.Headers) {
		return nil, []RowError{fatalRowError(p.Row,
			"column count mismatch: header has %d columns, row has %d",
			len(p.Headers), len(p.Values))}
	}

	cells := make(map[domain.Field]string, len(p.Headers))
	for i, header := range p.Headers {
		field, ok := canonicalHeaders[strings.ToLower(strings.TrimSpace(header))]
		if !ok {
			continue
		}
		if !p.fieldAllowed(field) {
			continue
		}
		cells[field] = p.Values[i]
	}

	name := strings.TrimSpace(cells[domain.FieldName])
	if name == "" {
		return nil, []RowError{fatalRowError(p.Row, "required field name is missing or blank")}
	}

	email := strings.TrimSpace(cells[domain.FieldEmail])
	if email != "" && !emailShape.MatchString(email) {
		return nil, []RowError{fatalRowError(p.Row, "invalid email %q", email)}
	}

	candidate := &domain.Member{
		Name:           name,
		Title:          strings.TrimSpace(cells[domain.FieldTitle]),
		Email:          email,
		Status:         domain.ParseMemberStatus(cells[domain.FieldStatus]),
		MemberType:     domain.ParseMemberType(cells[domain.FieldMemberType]),
		AcademyLevel:   domain.ParseAcademyLevel(cells[domain.FieldAcademyLevel]),
		Phone:          strings.TrimSpace(cells[domain.FieldPhone]),
		Address:        strings.TrimSpace(cells[domain.FieldAddress]),
		Bio:            strings.TrimSpace(cells[domain.FieldBio]),
		Gender:         strings.TrimSpace(cells[domain.FieldGender]),
		Affiliations:   splitList(cells[domain.FieldAffiliations]),
		Achievements:   splitList(cells[domain.FieldAchievements]),
		Certifications: splitList(cells[domain.FieldCertifications]),
		Sessions:       splitList(cells[domain.FieldSessions]),
	}

	if birth, ok := parseDate(cells[domain.FieldBirthDate]); ok {
		candidate.BirthDate = &birth
	}
	if joined, ok := parseDate(cells[domain.FieldDateJoined]); ok {
		candidate.DateJoined = joined
	} else {
		candidate.DateJoined = p.Now
	}

	var errs []RowError
	groupName := strings.TrimSpace(cells[domain.FieldGroupName])
	if groupName != "" {
		group, found := domain.FindGroupByName(p.Groups, groupName)
		if !found {
			errs = append(errs, advisoryRowError(p.Row,
				"group %q not found, member unassigned", groupName))
		} else {
			candidate.GroupID = group.ID
			subgroup := strings.TrimSpace(cells[domain.FieldSubgroup])
			if subgroup != "" && group.HasSubgroup(subgroup) {
				candidate.Subgroup = subgroup
			}
		}
	}

	return candidate, errs
}
