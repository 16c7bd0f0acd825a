package domain

import "time"

// MemberStatus enumerates membership lifecycle states.
type MemberStatus string

const (
	MemberStatusActive    MemberStatus = "ACTIVE"
	MemberStatusPending   MemberStatus = "PENDING"
	MemberStatusInactive  MemberStatus = "INACTIVE"
	MemberStatusSuspended MemberStatus = "SUSPENDED"
)

// DefaultMemberStatus is applied when an imported value is unrecognized.
const DefaultMemberStatus = MemberStatusPending

// MemberType enumerates enrollment categories.
type MemberType string

const (
	MemberTypeRegular  MemberType = "REGULAR"
	MemberTypeHonorary MemberType = "HONORARY"
	MemberTypeAlumni   MemberType = "ALUMNI"
	MemberTypeGuest    MemberType = "GUEST"
)

// DefaultMemberType is applied when an imported value is unrecognized.
const DefaultMemberType = MemberTypeRegular

// AcademyLevel enumerates training tiers.
type AcademyLevel string

const (
	AcademyLevelNone         AcademyLevel = "NONE"
	AcademyLevelBeginner     AcademyLevel = "BEGINNER"
	AcademyLevelIntermediate AcademyLevel = "INTERMEDIATE"
	AcademyLevelAdvanced     AcademyLevel = "ADVANCED"
	AcademyLevelElite        AcademyLevel = "ELITE"
)

// DefaultAcademyLevel is applied when an imported value is unrecognized.
const DefaultAcademyLevel = AcademyLevelNone

// LogEntry is one human-readable history note. History slices on Member are
// ordered newest-first and are append-only: mutations prepend, nothing ever
// truncates or reorders them.
type LogEntry struct {
	Note string    `json:"note"`
	At   time.Time `json:"at"`
}

// Member is the roster aggregate. ID is immutable once assigned; Email, when
// present, is the natural key used to match import rows to existing records.
type Member struct {
	ID           string
	Name         string
	Title        string
	Email        string
	Status       MemberStatus
	MemberType   MemberType
	AcademyLevel AcademyLevel
	Phone        string
	Address      string
	Bio          string
	Gender       string
	BirthDate    *time.Time
	DateJoined   time.Time
	GroupID      string
	Subgroup     string

	Affiliations   []string
	Achievements   []string
	Certifications []string
	Sessions       []string

	ActivityLog          []LogEntry
	CommunicationsLog    []LogEntry
	CoachComments        []LogEntry
	SessionCancellations []LogEntry
	PhotoLinks           []string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PrependActivity records a new activity note at the head of the log.
func (m *Member) PrependActivity(note string, at time.Time) {
	m.ActivityLog = append([]LogEntry{{Note: note, At: at}}, m.ActivityLog...)
}

// PrependCommunication records a new communications note at the head of the log.
func (m *Member) PrependCommunication(note string, at time.Time) {
	m.CommunicationsLog = append([]LogEntry{{Note: note, At: at}}, m.CommunicationsLog...)
}

// ParseMemberStatus clamps an arbitrary cell value to a known status.
func ParseMemberStatus(value string) MemberStatus {
	switch MemberStatus(normalizeEnum(value)) {
	case MemberStatusActive:
		return MemberStatusActive
	case MemberStatusPending:
		return MemberStatusPending
	case MemberStatusInactive:
		return MemberStatusInactive
	case MemberStatusSuspended:
		return MemberStatusSuspended
	default:
		return DefaultMemberStatus
	}
}

// ParseMemberType clamps an arbitrary cell value to a known member type.
func ParseMemberType(value string) MemberType {
	switch MemberType(normalizeEnum(value)) {
	case MemberTypeRegular:
		return MemberTypeRegular
	case MemberTypeHonorary:
		return MemberTypeHonorary
	case MemberTypeAlumni:
		return MemberTypeAlumni
	case MemberTypeGuest:
		return MemberTypeGuest
	default:
		return DefaultMemberType
	}
}

// ParseAcademyLevel clamps an arbitrary cell value to a known academy level.
func ParseAcademyLevel(value string) AcademyLevel {
	switch AcademyLevel(normalizeEnum(value)) {
	case AcademyLevelNone:
		return AcademyLevelNone
	case AcademyLevelBeginner:
		return AcademyLevelBeginner
	case AcademyLevelIntermediate:
		return AcademyLevelIntermediate
	case AcademyLevelAdvanced:
		return AcademyLevelAdvanced
	case AcademyLevelElite:
		return AcademyLevelElite
	default:
		return DefaultAcademyLevel
	}
}
