package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/roster-service/internal/domain"
	"github.com/spec-kit/roster-service/internal/events"
	"github.com/spec-kit/roster-service/internal/rbac"
	"github.com/spec-kit/roster-service/internal/repository"
	apperrors "github.com/spec-kit/roster-service/pkg/util"
)

// GroupService manages the group/subgroup taxonomy.
type GroupService struct {
	groups     repository.GroupRepository
	members    repository.MemberRepository
	resolver   *rbac.Resolver
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// GroupDependencies bundles collaborators for the group service.
type GroupDependencies struct {
	GroupRepo  repository.GroupRepository
	MemberRepo repository.MemberRepository
	Resolver   *rbac.Resolver
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewGroupService constructs the service.
func NewGroupService(deps GroupDependencies) *GroupService {
	return &GroupService{
		groups:     deps.GroupRepo,
		members:    deps.MemberRepo,
		resolver:   deps.Resolver,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// CreateGroup adds a group with a case-insensitively unique name.
func (s *GroupService) CreateGroup(ctx context.Context, actor domain.Role, name string) (*domain.Group, error) {
	if !s.resolver.HasCapability(actor, domain.CapManageGroups) {
		return nil, apperrors.NewForbidden("role may not manage groups")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("group name is required", nil)
	}
	if _, err := s.groups.GetByName(ctx, name); err == nil {
		return nil, apperrors.NewConflict("group name already in use", map[string]any{"name": name})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	group := &domain.Group{ID: uuid.NewString(), Name: name}
	if err := s.groups.Create(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

// RenameGroup changes a group's name, keeping case-insensitive uniqueness.
func (s *GroupService) RenameGroup(ctx context.Context, actor domain.Role, id, name string) (*domain.Group, error) {
	if !s.resolver.HasCapability(actor, domain.CapManageGroups) {
		return nil, apperrors.NewForbidden("role may not manage groups")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("group name is required", nil)
	}

	group, err := s.groups.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if other, err := s.groups.GetByName(ctx, name); err == nil && other.ID != group.ID {
		return nil, apperrors.NewConflict("group name already in use", map[string]any{"name": name})
	} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	group.Name = name
	if err := s.groups.Update(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

// DeleteGroup removes a group. Members referencing it are unassigned, never
// deleted.
func (s *GroupService) DeleteGroup(ctx context.Context, actor domain.Role, id string) error {
	if !s.resolver.HasCapability(actor, domain.CapManageGroups) {
		return apperrors.NewForbidden("role may not manage groups")
	}

	group, err := s.groups.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.members.ClearGroup(ctx, group.ID); err != nil {
		return err
	}
	if err := s.groups.Delete(ctx, group.ID); err != nil {
		return err
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:    uuid.NewString(),
			Type:  events.EventGroupDeleted,
			Actor: actor,
			Payload: events.GroupDeletedPayload{
				GroupID: group.ID,
				Name:    group.Name,
			},
		})
	}
	return nil
}

// AddSubgroup adds a case-insensitively unique subgroup name to a group.
func (s *GroupService) AddSubgroup(ctx context.Context, actor domain.Role, groupID, name string) (*domain.Group, error) {
	if !s.resolver.HasCapability(actor, domain.CapManageGroups) {
		return nil, apperrors.NewForbidden("role may not manage groups")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("subgroup name is required", nil)
	}

	group, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.HasSubgroup(name) {
		return nil, apperrors.NewConflict("subgroup already exists", map[string]any{"name": name})
	}

	group.Subgroups = append(group.Subgroups, name)
	if err := s.groups.Update(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

// RemoveSubgroup drops a subgroup and clears it from members referencing it.
func (s *GroupService) RemoveSubgroup(ctx context.Context, actor domain.Role, groupID, name string) (*domain.Group, error) {
	if !s.resolver.HasCapability(actor, domain.CapManageGroups) {
		return nil, apperrors.NewForbidden("role may not manage groups")
	}

	group, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.HasSubgroup(name) {
		return nil, apperrors.NewNotFound("subgroup", map[string]any{"name": name})
	}

	kept := group.Subgroups[:0]
	for _, sub := range group.Subgroups {
		if !strings.EqualFold(sub, name) {
			kept = append(kept, sub)
		}
	}
	group.Subgroups = kept

	if err := s.members.ClearSubgroup(ctx, group.ID, name); err != nil {
		return nil, err
	}
	if err := s.groups.Update(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

// ListGroups returns the taxonomy snapshot.
func (s *GroupService) ListGroups(ctx context.Context) ([]domain.Group, error) {
	return s.groups.List(ctx)
}

// GetGroup loads one group.
func (s *GroupService) GetGroup(ctx context.Context, id string) (*domain.Group, error) {
	return s.groups.GetByID(ctx, id)
}
