package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/roster-service/internal/domain"
	"github.com/spec-kit/roster-service/internal/events"
	"github.com/spec-kit/roster-service/internal/rbac"
	"github.com/spec-kit/roster-service/internal/repository"
)

type groupFixture struct {
	members *repository.MemoryMemberRepository
	groups  *repository.MemoryGroupRepository
	service *GroupService
}

func newGroupFixture(t *testing.T) *groupFixture {
	t.Helper()
	members := repository.NewMemoryMemberRepository(0)
	groups := repository.NewMemoryGroupRepository(0)
	svc := NewGroupService(GroupDependencies{
		GroupRepo:  groups,
		MemberRepo: members,
		Resolver:   rbac.NewResolver(rbac.DefaultCatalog()),
		Dispatcher: events.NewInMemoryDispatcher(),
		Logger:     zap.NewNop(),
	})
	return &groupFixture{members: members, groups: groups, service: svc}
}

func TestCreateGroupUniqueness(t *testing.T) {
	f := newGroupFixture(t)
	ctx := context.Background()

	if _, err := f.service.CreateGroup(ctx, domain.RoleManager, "Juniors"); err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	if _, err := f.service.CreateGroup(ctx, domain.RoleManager, "  juniors "); domainCode(err) != "CONFLICT" {
		t.Fatalf("duplicate name err = %v, want CONFLICT", err)
	}
	if _, err := f.service.CreateGroup(ctx, domain.RoleCoach, "Seniors"); domainCode(err) != "FORBIDDEN" {
		t.Fatalf("coach err = %v, want FORBIDDEN", err)
	}
}

func TestRenameGroup(t *testing.T) {
	f := newGroupFixture(t)
	ctx := context.Background()

	juniors, err := f.service.CreateGroup(ctx, domain.RoleOwner, "Juniors")
	if err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	if _, err := f.service.CreateGroup(ctx, domain.RoleOwner, "Seniors"); err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}

	// Renaming to the same name with different casing is allowed.
	if _, err := f.service.RenameGroup(ctx, domain.RoleOwner, juniors.ID, "JUNIORS"); err != nil {
		t.Fatalf("case-only rename: %v", err)
	}
	if _, err := f.service.RenameGroup(ctx, domain.RoleOwner, juniors.ID, "seniors"); domainCode(err) != "CONFLICT" {
		t.Fatalf("rename onto taken name err = %v, want CONFLICT", err)
	}
}

func TestDeleteGroupUnassignsMembers(t *testing.T) {
	f := newGroupFixture(t)
	ctx := context.Background()

	group, err := f.service.CreateGroup(ctx, domain.RoleOwner, "Juniors")
	if err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	member := domain.Member{ID: "m1", Name: "Jane", GroupID: group.ID, Subgroup: "Red"}
	if err := f.members.Create(ctx, &member); err != nil {
		t.Fatalf("seed member: %v", err)
	}

	if err := f.service.DeleteGroup(ctx, domain.RoleOwner, group.ID); err != nil {
		t.Fatalf("DeleteGroup: %v", err)
	}

	got, err := f.members.GetByID(ctx, "m1")
	if err != nil {
		t.Fatalf("member must survive group deletion: %v", err)
	}
	if got.GroupID != "" || got.Subgroup != "" {
		t.Fatalf("member still references deleted group: %q/%q", got.GroupID, got.Subgroup)
	}
}

func TestSubgroups(t *testing.T) {
	f := newGroupFixture(t)
	ctx := context.Background()

	group, err := f.service.CreateGroup(ctx, domain.RoleOwner, "Juniors")
	if err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	if _, err := f.service.AddSubgroup(ctx, domain.RoleOwner, group.ID, "Red"); err != nil {
		t.Fatalf("AddSubgroup: %v", err)
	}
	if _, err := f.service.AddSubgroup(ctx, domain.RoleOwner, group.ID, "red"); domainCode(err) != "CONFLICT" {
		t.Fatalf("duplicate subgroup err = %v, want CONFLICT", err)
	}

	member := domain.Member{ID: "m1", Name: "Jane", GroupID: group.ID, Subgroup: "Red"}
	if err := f.members.Create(ctx, &member); err != nil {
		t.Fatalf("seed member: %v", err)
	}

	got, err := f.service.RemoveSubgroup(ctx, domain.RoleOwner, group.ID, "RED")
	if err != nil {
		t.Fatalf("RemoveSubgroup: %v", err)
	}
	if len(got.Subgroups) != 0 {
		t.Fatalf("subgroups = %v, want empty", got.Subgroups)
	}

	m, err := f.members.GetByID(ctx, "m1")
	if err != nil {
		t.Fatalf("member lookup: %v", err)
	}
	if m.Subgroup != "" || m.GroupID != group.ID {
		t.Fatalf("member after subgroup removal: group=%q subgroup=%q", m.GroupID, m.Subgroup)
	}

	if _, err := f.service.RemoveSubgroup(ctx, domain.RoleOwner, group.ID, "Red"); domainCode(err) != "NOT_FOUND" {
		t.Fatalf("removing absent subgroup err = %v, want NOT_FOUND", err)
	}
}
