package domain

// Role enumerates the closed set of operator roles. The permission catalog
// in internal/rbac assigns each role its capability overrides and parent.
type Role string

const (
	RoleOwner     Role = "OWNER"
	RoleManager   Role = "MANAGER"
	RoleCoach     Role = "COACH"
	RoleAssistant Role = "ASSISTANT"
	RoleRegistrar Role = "REGISTRAR"
	RoleViewer    Role = "VIEWER"
)

// Capability is a named boolean permission.
type Capability string

const (
	CapViewMembers   Capability = "canViewMembers"
	CapEditMembers   Capability = "canEditMembers"
	CapDeleteMembers Capability = "canDeleteMembers"
	CapManageGroups  Capability = "canManageGroups"
	CapImportMembers Capability = "canImportMembers"
	CapExportMembers Capability = "canExportMembers"
)

// Field identifies one writable member field, named after its CSV header.
type Field string

const (
	FieldName           Field = "name"
	FieldTitle          Field = "role"
	FieldEmail          Field = "email"
	FieldStatus         Field = "status"
	FieldMemberType     Field = "memberType"
	FieldAcademyLevel   Field = "academyLevel"
	FieldPhone          Field = "phone"
	FieldAddress        Field = "address"
	FieldBio            Field = "bio"
	FieldGender         Field = "gender"
	FieldBirthDate      Field = "birthdate"
	FieldDateJoined     Field = "dateJoined"
	FieldGroupName      Field = "groupName"
	FieldSubgroup       Field = "subgroup"
	FieldAffiliations   Field = "affiliations"
	FieldAchievements   Field = "achievements"
	FieldCertifications Field = "certifications"
	FieldSessions       Field = "sessions"
)

// ParseRole maps a role identifier to the enum, reporting whether it is one
// of the known roles.
func ParseRole(value string) (Role, bool) {
	switch Role(normalizeEnum(value)) {
	case RoleOwner:
		return RoleOwner, true
	case RoleManager:
		return RoleManager, true
	case RoleCoach:
		return RoleCoach, true
	case RoleAssistant:
		return RoleAssistant, true
	case RoleRegistrar:
		return RoleRegistrar, true
	case RoleViewer:
		return RoleViewer, true
	default:
		return "", false
	}
}
