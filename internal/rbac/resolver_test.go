package rbac

import (
	"testing"

	"github.com/spec-kit/roster-service/internal/domain"
)

// testCatalog builds a three-level chain where the grandchild re-enables a
// capability its parent disabled:
//
//	root (edit=true, delete=true, fields ALL)
//	 └─ middle (delete=false, fields {name,email})
//	     └─ leaf (delete=true)
func testCatalog() Catalog {
	root := domain.Role("ROOT")
	middle := domain.Role("MIDDLE")
	return Catalog{
		root: {
			Capabilities: map[domain.Capability]bool{
				domain.CapEditMembers:   true,
				domain.CapDeleteMembers: true,
				domain.CapExportMembers: true,
			},
			EditableFields: AllFields(),
		},
		middle: {
			Parent: &root,
			Capabilities: map[domain.Capability]bool{
				domain.CapDeleteMembers: false,
			},
			EditableFields: NewFieldSet(domain.FieldName, domain.FieldEmail),
		},
		domain.Role("LEAF"): {
			Parent: &middle,
			Capabilities: map[domain.Capability]bool{
				domain.CapDeleteMembers: true,
			},
		},
	}
}

func TestHasCapability(t *testing.T) {
	resolver := NewResolver(testCatalog())

	tests := []struct {
		name string
		role domain.Role
		cap  domain.Capability
		want bool
	}{
		{
			name: "explicit value on role itself",
			role: "ROOT",
			cap:  domain.CapDeleteMembers,
			want: true,
		},
		{
			name: "override nearest wins over ancestor",
			role: "MIDDLE",
			cap:  domain.CapDeleteMembers,
			want: false,
		},
		{
			name: "grandchild re-enables what parent disabled",
			role: "LEAF",
			cap:  domain.CapDeleteMembers,
			want: true,
		},
		{
			name: "inherited from grandparent through silent parent",
			role: "LEAF",
			cap:  domain.CapExportMembers,
			want: true,
		},
		{
			name: "chain exhausted fails closed",
			role: "LEAF",
			cap:  domain.CapImportMembers,
			want: false,
		},
		{
			name: "unknown role fails closed",
			role: "GHOST",
			cap:  domain.CapEditMembers,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolver.HasCapability(tt.role, tt.cap); got != tt.want {
				t.Errorf("HasCapability(%s, %s) = %v, want %v", tt.role, tt.cap, got, tt.want)
			}
		})
	}
}

func TestHasCapabilityDeterministic(t *testing.T) {
	resolver := NewResolver(testCatalog())
	caps := []domain.Capability{
		domain.CapViewMembers,
		domain.CapEditMembers,
		domain.CapDeleteMembers,
		domain.CapManageGroups,
		domain.CapImportMembers,
		domain.CapExportMembers,
	}

	for _, role := range []domain.Role{"ROOT", "MIDDLE", "LEAF", "GHOST"} {
		for _, cap := range caps {
			first := resolver.HasCapability(role, cap)
			for i := 0; i < 3; i++ {
				if resolver.HasCapability(role, cap) != first {
					t.Fatalf("HasCapability(%s, %s) not deterministic", role, cap)
				}
			}
		}
	}
}

func TestCanEditField(t *testing.T) {
	catalog := testCatalog()
	// Role with editable fields declared but editing capability disabled.
	catalog["FROZEN"] = RoleSpec{
		Capabilities: map[domain.Capability]bool{
			domain.CapEditMembers: false,
		},
		EditableFields: AllFields(),
	}
	resolver := NewResolver(catalog)

	tests := []struct {
		name  string
		role  domain.Role
		field domain.Field
		want  bool
	}{
		{
			name:  "wildcard grants any field",
			role:  "ROOT",
			field: domain.FieldBio,
			want:  true,
		},
		{
			name:  "field in own set",
			role:  "MIDDLE",
			field: domain.FieldEmail,
			want:  true,
		},
		{
			name:  "field outside own set",
			role:  "MIDDLE",
			field: domain.FieldBio,
			want:  false,
		},
		{
			name:  "leaf inherits nearest ancestor set",
			role:  "LEAF",
			field: domain.FieldName,
			want:  true,
		},
		{
			name:  "leaf does not reach grandparent wildcard",
			role:  "LEAF",
			field: domain.FieldBio,
			want:  false,
		},
		{
			name:  "edit capability false blocks every field",
			role:  "FROZEN",
			field: domain.FieldName,
			want:  false,
		},
		{
			name:  "unknown role blocked",
			role:  "GHOST",
			field: domain.FieldName,
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolver.CanEditField(tt.role, tt.field); got != tt.want {
				t.Errorf("CanEditField(%s, %s) = %v, want %v", tt.role, tt.field, got, tt.want)
			}
		})
	}
}

func TestDefaultCatalog(t *testing.T) {
	resolver := NewResolver(DefaultCatalog())

	tests := []struct {
		name string
		role domain.Role
		cap  domain.Capability
		want bool
	}{
		{"owner deletes", domain.RoleOwner, domain.CapDeleteMembers, true},
		{"manager cannot delete", domain.RoleManager, domain.CapDeleteMembers, false},
		{"manager imports via owner", domain.RoleManager, domain.CapImportMembers, true},
		{"coach cannot import", domain.RoleCoach, domain.CapImportMembers, false},
		{"registrar imports", domain.RoleRegistrar, domain.CapImportMembers, true},
		{"assistant cannot export", domain.RoleAssistant, domain.CapExportMembers, false},
		{"viewer views only", domain.RoleViewer, domain.CapViewMembers, true},
		{"viewer cannot edit", domain.RoleViewer, domain.CapEditMembers, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolver.HasCapability(tt.role, tt.cap); got != tt.want {
				t.Errorf("HasCapability(%s, %s) = %v, want %v", tt.role, tt.cap, got, tt.want)
			}
		})
	}

	if !resolver.CanEditField(domain.RoleRegistrar, domain.FieldGroupName) {
		t.Error("registrar should edit groupName")
	}
	if resolver.CanEditField(domain.RoleRegistrar, domain.FieldSessions) {
		t.Error("registrar should not edit sessions")
	}
	if resolver.CanEditField(domain.RoleViewer, domain.FieldName) {
		t.Error("viewer should not edit any field")
	}
}
