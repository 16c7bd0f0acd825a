package rbac

import "github.com/spec-kit/roster-service/internal/domain"

// Resolver answers capability and field-edit questions against a catalog.
// Resolution is side-effect-free and cheap (chains are at most a few roles
// deep), so callers may invoke it per field on every request.
type Resolver struct {
	catalog Catalog
}

// NewResolver builds a resolver over the given catalog.
func NewResolver(catalog Catalog) *Resolver {
	return &Resolver{catalog: catalog}
}

// HasCapability walks the role's inheritance chain and returns the nearest
// explicit override for the capability. An exhausted chain, or an unknown
// role, fails closed.
func (r *Resolver) HasCapability(role domain.Role, cap domain.Capability) bool {
	current := role
	for {
		spec, ok := r.catalog[current]
		if !ok {
			return false
		}
		if value, ok := spec.Capabilities[cap]; ok {
			return value
		}
		if spec.Parent == nil {
			return false
		}
		current = *spec.Parent
	}
}

// CanEditField reports whether the role may write the given member field.
// The role must resolve CapEditMembers true; the field is then checked
// against the nearest ancestor (including the role itself) that declares an
// editable-field set. A wildcard set grants every field.
func (r *Resolver) CanEditField(role domain.Role, field domain.Field) bool {
	if !r.HasCapability(role, domain.CapEditMembers) {
		return false
	}
	current := role
	for {
		spec, ok := r.catalog[current]
		if !ok {
			return false
		}
		if spec.EditableFields != nil {
			return spec.EditableFields.Contains(field)
		}
		if spec.Parent == nil {
			return false
		}
		current = *spec.Parent
	}
}

// EditableFields materializes the set of importable fields for a role from
// the full field list. The bulk mapper consumes this so the import path
// enforces exactly what the resolver grants.
func (r *Resolver) EditableFields(role domain.Role) map[domain.Field]struct{} {
	all := []domain.Field{
		domain.FieldName,
		domain.FieldTitle,
		domain.FieldEmail,
		domain.FieldStatus,
		domain.FieldMemberType,
		domain.FieldAcademyLevel,
		domain.FieldPhone,
		domain.FieldAddress,
		domain.FieldBio,
		domain.FieldGender,
		domain.FieldBirthDate,
		domain.FieldDateJoined,
		domain.FieldGroupName,
		domain.FieldSubgroup,
		domain.FieldAffiliations,
		domain.FieldAchievements,
		domain.FieldCertifications,
		domain.FieldSessions,
	}
	allowed := make(map[domain.Field]struct{}, len(all))
	for _, field := range all {
		if r.CanEditField(role, field) {
			allowed[field] = struct{}{}
		}
	}
	return allowed
}
