package dto

import (
	"time"

	"github.com/spec-kit/roster-service/internal/domain"
)

// MemberRequest payload for create/update.
type MemberRequest struct {
	Name           string     `json:"name"`
	Title          string     `json:"title"`
	Email          string     `json:"email"`
	Status         string     `json:"status"`
	MemberType     string     `json:"member_type"`
	AcademyLevel   string     `json:"academy_level"`
	Phone          string     `json:"phone"`
	Address        string     `json:"address"`
	Bio            string     `json:"bio"`
	Gender         string     `json:"gender"`
	BirthDate      *time.Time `json:"birth_date"`
	DateJoined     *time.Time `json:"date_joined"`
	GroupID        string     `json:"group_id"`
	Subgroup       string     `json:"subgroup"`
	Affiliations   []string   `json:"affiliations"`
	Achievements   []string   `json:"achievements"`
	Certifications []string   `json:"certifications"`
	Sessions       []string   `json:"sessions"`
}

// LogEntryResponse is one history note.
type LogEntryResponse struct {
	Note string    `json:"note"`
	At   time.Time `json:"at"`
}

// MemberSummary response for lists.
type MemberSummary struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	Title      string              `json:"title"`
	Email      string              `json:"email"`
	Status     domain.MemberStatus `json:"status"`
	MemberType domain.MemberType   `json:"member_type"`
	GroupID    string              `json:"group_id,omitempty"`
	Subgroup   string              `json:"subgroup,omitempty"`
	DateJoined time.Time           `json:"date_joined"`
}

// MemberDetailResponse provides the full record including history.
type MemberDetailResponse struct {
	ID                   string              `json:"id"`
	Name                 string              `json:"name"`
	Title                string              `json:"title"`
	Email                string              `json:"email"`
	Status               domain.MemberStatus `json:"status"`
	MemberType           domain.MemberType   `json:"member_type"`
	AcademyLevel         domain.AcademyLevel `json:"academy_level"`
	Phone                string              `json:"phone"`
	Address              string              `json:"address"`
	Bio                  string              `json:"bio"`
	Gender               string              `json:"gender"`
	BirthDate            *time.Time          `json:"birth_date"`
	DateJoined           time.Time           `json:"date_joined"`
	GroupID              string              `json:"group_id,omitempty"`
	Subgroup             string              `json:"subgroup,omitempty"`
	Affiliations         []string            `json:"affiliations"`
	Achievements         []string            `json:"achievements"`
	Certifications       []string            `json:"certifications"`
	Sessions             []string            `json:"sessions"`
	ActivityLog          []LogEntryResponse  `json:"activity_log"`
	CommunicationsLog    []LogEntryResponse  `json:"communications_log"`
	CoachComments        []LogEntryResponse  `json:"coach_comments"`
	SessionCancellations []LogEntryResponse  `json:"session_cancellations"`
	PhotoLinks           []string            `json:"photo_links"`
	CreatedAt            time.Time           `json:"created_at"`
	UpdatedAt            time.Time           `json:"updated_at"`
}
