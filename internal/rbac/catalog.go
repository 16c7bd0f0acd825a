package rbac

import "github.com/spec-kit/roster-service/internal/domain"

// FieldSet is the set of member fields a role may write. All short-circuits
// membership checks; a nil Fields map with All false means an explicitly
// empty set, while an absent FieldSet on a RoleSpec means "inherit".
type FieldSet struct {
	All    bool
	Fields map[domain.Field]struct{}
}

// Contains reports whether the set grants the field.
func (fs *FieldSet) Contains(field domain.Field) bool {
	if fs == nil {
		return false
	}
	if fs.All {
		return true
	}
	_, ok := fs.Fields[field]
	return ok
}

// NewFieldSet builds an explicit field set.
func NewFieldSet(fields ...domain.Field) *FieldSet {
	set := make(map[domain.Field]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return &FieldSet{Fields: set}
}

// AllFields is the wildcard editable-field set.
func AllFields() *FieldSet {
	return &FieldSet{All: true}
}

// RoleSpec declares one role: only what differs from the parent needs to be
// present. Capabilities holds overrides, not the full table; EditableFields
// is nil when the role inherits its parent's set.
type RoleSpec struct {
	Parent         *domain.Role
	Capabilities   map[domain.Capability]bool
	EditableFields *FieldSet
}

// Catalog maps each role to its spec. The parent graph must be a forest:
// walking Parent links always terminates. Catalogs are fixed at process
// start and never mutated.
type Catalog map[domain.Role]RoleSpec

func roleRef(r domain.Role) *domain.Role {
	return &r
}

// DefaultCatalog is the compiled-in production permission table.
//
// Owner is the root of the main tree; Manager narrows deletion, Coach and
// Registrar narrow further for their duties, Assistant sits under Coach.
// Viewer is a standalone read-only root: everything it does not declare
// fails closed.
func DefaultCatalog() Catalog {
	return Catalog{
		domain.RoleOwner: {
			Capabilities: map[domain.Capability]bool{
				domain.CapViewMembers:   true,
				domain.CapEditMembers:   true,
				domain.CapDeleteMembers: true,
				domain.CapManageGroups:  true,
				domain.CapImportMembers: true,
				domain.CapExportMembers: true,
			},
			EditableFields: AllFields(),
		},
		domain.RoleManager: {
			Parent: roleRef(domain.RoleOwner),
			Capabilities: map[domain.Capability]bool{
				domain.CapDeleteMembers: false,
			},
		},
		domain.RoleCoach: {
			Parent: roleRef(domain.RoleManager),
			Capabilities: map[domain.Capability]bool{
				domain.CapImportMembers: false,
				domain.CapManageGroups:  false,
			},
			EditableFields: NewFieldSet(
				domain.FieldStatus,
				domain.FieldAcademyLevel,
				domain.FieldAchievements,
				domain.FieldCertifications,
				domain.FieldSessions,
			),
		},
		domain.RoleAssistant: {
			Parent: roleRef(domain.RoleCoach),
			Capabilities: map[domain.Capability]bool{
				domain.CapExportMembers: false,
			},
			EditableFields: NewFieldSet(
				domain.FieldPhone,
				domain.FieldAddress,
				domain.FieldEmail,
			),
		},
		domain.RoleRegistrar: {
			Parent: roleRef(domain.RoleManager),
			EditableFields: NewFieldSet(
				domain.FieldName,
				domain.FieldTitle,
				domain.FieldEmail,
				domain.FieldPhone,
				domain.FieldAddress,
				domain.FieldStatus,
				domain.FieldMemberType,
				domain.FieldGroupName,
				domain.FieldSubgroup,
				domain.FieldDateJoined,
				domain.FieldBirthDate,
				domain.FieldGender,
				domain.FieldAffiliations,
			),
		},
		domain.RoleViewer: {
			Capabilities: map[domain.Capability]bool{
				domain.CapViewMembers: true,
			},
		},
	}
}
