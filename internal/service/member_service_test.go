package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/roster-service/internal/domain"
	"github.com/spec-kit/roster-service/internal/events"
	"github.com/spec-kit/roster-service/internal/rbac"
	"github.com/spec-kit/roster-service/internal/repository"
)

type memberFixture struct {
	members *repository.MemoryMemberRepository
	groups  *repository.MemoryGroupRepository
	service *MemberService
}

func newMemberFixture(t *testing.T) *memberFixture {
	t.Helper()
	members := repository.NewMemoryMemberRepository(0)
	groups := repository.NewMemoryGroupRepository(0)
	svc := NewMemberService(MemberDependencies{
		MemberRepo: members,
		GroupRepo:  groups,
		Resolver:   rbac.NewResolver(rbac.DefaultCatalog()),
		Dispatcher: events.NewInMemoryDispatcher(),
		Clock:      testClock,
		Logger:     zap.NewNop(),
	})
	return &memberFixture{members: members, groups: groups, service: svc}
}

func (f *memberFixture) seedGroup(t *testing.T, g domain.Group) {
	t.Helper()
	if err := f.groups.Create(context.Background(), &g); err != nil {
		t.Fatalf("seed group: %v", err)
	}
}

func TestCreateMember(t *testing.T) {
	f := newMemberFixture(t)
	f.seedGroup(t, domain.Group{ID: "g-juniors", Name: "Juniors", Subgroups: []string{"Red", "Blue"}})
	ctx := context.Background()

	member, err := f.service.CreateMember(ctx, domain.RoleOwner, MemberInput{
		Name:         "Jane Doe",
		Email:        "jane@club.org",
		Status:       domain.MemberStatusActive,
		AcademyLevel: domain.AcademyLevelBeginner,
		GroupID:      "g-juniors",
		Subgroup:     "Red",
	})
	if err != nil {
		t.Fatalf("CreateMember: %v", err)
	}
	if member.ID == "" {
		t.Fatal("expected a minted id")
	}
	if member.GroupID != "g-juniors" || member.Subgroup != "Red" {
		t.Fatalf("group assignment = %q/%q", member.GroupID, member.Subgroup)
	}
	if !member.DateJoined.Equal(testClock.at) {
		t.Fatalf("DateJoined = %v, want clock default", member.DateJoined)
	}
	if len(member.ActivityLog) != 1 || member.ActivityLog[0].Note != "record created" {
		t.Fatalf("activity log = %+v", member.ActivityLog)
	}

	stored, err := f.members.GetByID(ctx, member.ID)
	if err != nil {
		t.Fatalf("stored record missing: %v", err)
	}
	if stored.Name != "Jane Doe" {
		t.Fatalf("stored name = %q", stored.Name)
	}
}

func TestCreateMemberRejections(t *testing.T) {
	tests := []struct {
		name     string
		actor    domain.Role
		input    MemberInput
		wantCode string
	}{
		{"viewer may not edit", domain.RoleViewer, MemberInput{Name: "X"}, "FORBIDDEN"},
		{"name required", domain.RoleOwner, MemberInput{Name: "  "}, "VALIDATION_FAILED"},
		{"bad email", domain.RoleOwner, MemberInput{Name: "X", Email: "not-an-email"}, "VALIDATION_FAILED"},
		{"unknown group", domain.RoleOwner, MemberInput{Name: "X", GroupID: "nope"}, "VALIDATION_FAILED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newMemberFixture(t)
			_, err := f.service.CreateMember(context.Background(), tt.actor, tt.input)
			if domainCode(err) != tt.wantCode {
				t.Fatalf("CreateMember err = %v, want code %s", err, tt.wantCode)
			}
		})
	}
}

func TestUpdateMemberFieldGating(t *testing.T) {
	f := newMemberFixture(t)
	ctx := context.Background()

	member, err := f.service.CreateMember(ctx, domain.RoleOwner, MemberInput{
		Name:         "Jane Doe",
		Email:        "jane@club.org",
		Bio:          "original bio",
		AcademyLevel: domain.AcademyLevelBeginner,
	})
	if err != nil {
		t.Fatalf("CreateMember: %v", err)
	}

	// Coach may write status and academy level but not name or bio.
	updated, err := f.service.UpdateMember(ctx, domain.RoleCoach, member.ID, MemberInput{
		Name:         "Renamed",
		Bio:          "rewritten",
		Status:       domain.MemberStatusSuspended,
		AcademyLevel: domain.AcademyLevelElite,
	})
	if err != nil {
		t.Fatalf("UpdateMember: %v", err)
	}
	if updated.Name != "Jane Doe" || updated.Bio != "original bio" {
		t.Fatalf("coach wrote locked fields: name=%q bio=%q", updated.Name, updated.Bio)
	}
	if updated.Status != domain.MemberStatusSuspended || updated.AcademyLevel != domain.AcademyLevelElite {
		t.Fatalf("coach writes not applied: status=%q level=%q", updated.Status, updated.AcademyLevel)
	}
	if len(updated.ActivityLog) < 2 || updated.ActivityLog[0].Note != "record updated" {
		t.Fatalf("activity log = %+v", updated.ActivityLog)
	}
}

func TestDeleteMember(t *testing.T) {
	f := newMemberFixture(t)
	ctx := context.Background()

	member, err := f.service.CreateMember(ctx, domain.RoleOwner, MemberInput{Name: "Jane Doe"})
	if err != nil {
		t.Fatalf("CreateMember: %v", err)
	}

	// Manager inherits edit but deletion is narrowed off.
	if err := f.service.DeleteMember(ctx, domain.RoleManager, member.ID); domainCode(err) != "FORBIDDEN" {
		t.Fatalf("manager delete err = %v, want FORBIDDEN", err)
	}
	if err := f.service.DeleteMember(ctx, domain.RoleOwner, member.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if _, err := f.members.GetByID(ctx, member.ID); err == nil {
		t.Fatal("record still present after delete")
	}
}

func TestExportCSV(t *testing.T) {
	f := newMemberFixture(t)
	f.seedGroup(t, domain.Group{ID: "g-juniors", Name: "Juniors", Subgroups: []string{"Red"}})
	ctx := context.Background()

	birth := time.Date(2010, 6, 15, 0, 0, 0, 0, time.UTC)
	if _, err := f.service.CreateMember(ctx, domain.RoleOwner, MemberInput{
		Name:      `Doe, Jane`,
		Email:     "jane@club.org",
		BirthDate: &birth,
		GroupID:   "g-juniors",
		Subgroup:  "Red",
	}); err != nil {
		t.Fatalf("CreateMember: %v", err)
	}

	if _, err := f.service.ExportCSV(ctx, domain.RoleAssistant); domainCode(err) != "FORBIDDEN" {
		t.Fatal("assistant export must be refused")
	}

	csv, err := f.service.ExportCSV(ctx, domain.RoleOwner)
	if err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}
	lines := strings.Split(strings.TrimRight(csv, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("export lines = %d, want header + 1 row", len(lines))
	}
	if !strings.HasPrefix(lines[0], "name,role,email") {
		t.Fatalf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], `"Doe, Jane"`) {
		t.Fatalf("comma in name must be quoted: %q", lines[1])
	}
	if !strings.Contains(lines[1], "Juniors") || !strings.Contains(lines[1], "2010-06-15") {
		t.Fatalf("row = %q", lines[1])
	}
}
