package service

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/roster-service/internal/bulk"
	"github.com/spec-kit/roster-service/internal/domain"
	"github.com/spec-kit/roster-service/internal/events"
	"github.com/spec-kit/roster-service/internal/rbac"
	"github.com/spec-kit/roster-service/internal/repository"
	apperrors "github.com/spec-kit/roster-service/pkg/util"
)

var emailShape = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// MemberService coordinates member record workflows.
type MemberService struct {
	members    repository.MemberRepository
	groups     repository.GroupRepository
	resolver   *rbac.Resolver
	dispatcher events.Dispatcher
	clock      bulk.Clock
	logger     *zap.Logger
}

// MemberDependencies bundles collaborators for the member service.
type MemberDependencies struct {
	MemberRepo repository.MemberRepository
	GroupRepo  repository.GroupRepository
	Resolver   *rbac.Resolver
	Dispatcher events.Dispatcher
	Clock      bulk.Clock
	Logger     *zap.Logger
}

// NewMemberService constructs the service.
func NewMemberService(deps MemberDependencies) *MemberService {
	clock := deps.Clock
	if clock == nil {
		clock = bulk.SystemClock{}
	}
	return &MemberService{
		members:    deps.MemberRepo,
		groups:     deps.GroupRepo,
		resolver:   deps.Resolver,
		dispatcher: deps.Dispatcher,
		clock:      clock,
		logger:     deps.Logger,
	}
}

// MemberInput describes an edit payload. All editable fields are supplied
// whole; the per-field permission check runs against the acting role.
type MemberInput struct {
	Name         string
	Title        string
	Email        string
	Status       domain.MemberStatus
	MemberType   domain.MemberType
	AcademyLevel domain.AcademyLevel
	Phone        string
	Address      string
	Bio          string
	Gender       string
	BirthDate    *time.Time
	DateJoined   *time.Time
	GroupID      string
	Subgroup     string

	Affiliations   []string
	Achievements   []string
	Certifications []string
	Sessions       []string
}

// CreateMember mints a record and seeds its activity log.
func (s *MemberService) CreateMember(ctx context.Context, actor domain.Role, input MemberInput) (*domain.Member, error) {
	if !s.resolver.HasCapability(actor, domain.CapEditMembers) {
		return nil, apperrors.NewForbidden("role may not edit members")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.NewValidationError("name is required", nil)
	}

	now := s.clock.Now()
	member := &domain.Member{
		ID:        uuid.NewString(),
		Status:    domain.DefaultMemberStatus,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.applyInput(ctx, actor, member, input); err != nil {
		return nil, err
	}
	if member.DateJoined.IsZero() {
		member.DateJoined = now
	}
	member.PrependActivity("record created", now)

	if err := s.members.Create(ctx, member); err != nil {
		return nil, err
	}
	s.publish(ctx, events.EventMemberCreated, actor, events.MemberChangedPayload{
		MemberID: member.ID,
		Name:     member.Name,
		Email:    member.Email,
	})
	return member, nil
}

// UpdateMember overwrites the editable fields of an existing record and
// prepends an audit entry. The id and history collections are untouched.
func (s *MemberService) UpdateMember(ctx context.Context, actor domain.Role, id string, input MemberInput) (*domain.Member, error) {
	if !s.resolver.HasCapability(actor, domain.CapEditMembers) {
		return nil, apperrors.NewForbidden("role may not edit members")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.NewValidationError("name is required", nil)
	}

	member, err := s.members.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyInput(ctx, actor, member, input); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	member.UpdatedAt = now
	member.PrependActivity("record updated", now)

	if err := s.members.Update(ctx, member); err != nil {
		return nil, err
	}
	s.publish(ctx, events.EventMemberUpdated, actor, events.MemberChangedPayload{
		MemberID: member.ID,
		Name:     member.Name,
		Email:    member.Email,
	})
	return member, nil
}

// DeleteMember removes a record. References from other records are cleared
// by the store, not cascaded.
func (s *MemberService) DeleteMember(ctx context.Context, actor domain.Role, id string) error {
	if !s.resolver.HasCapability(actor, domain.CapDeleteMembers) {
		return apperrors.NewForbidden("role may not delete members")
	}

	member, err := s.members.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.members.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, events.EventMemberDeleted, actor, events.MemberChangedPayload{
		MemberID: member.ID,
		Name:     member.Name,
		Email:    member.Email,
	})
	return nil
}

// GetMember loads one record.
func (s *MemberService) GetMember(ctx context.Context, id string) (*domain.Member, error) {
	return s.members.GetByID(ctx, id)
}

// ListMembers lists records with filters applied.
func (s *MemberService) ListMembers(ctx context.Context, filter repository.MemberFilter) ([]domain.Member, error) {
	return s.members.List(ctx, filter)
}

// exportHeaders is the column order for CSV export; it round-trips through
// the import mapper.
var exportHeaders = []string{
	"name", "role", "email", "status", "memberType", "academyLevel",
	"phone", "address", "bio", "gender", "birthdate", "dateJoined",
	"groupName", "subgroup", "affiliations", "achievements",
	"certifications", "sessions",
}

// ExportCSV renders the full roster in the bulk-import wire format.
func (s *MemberService) ExportCSV(ctx context.Context, actor domain.Role) (string, error) {
	if !s.resolver.HasCapability(actor, domain.CapExportMembers) {
		return "", apperrors.NewForbidden("role may not export members")
	}

	members, err := s.members.Snapshot(ctx)
	if err != nil {
		return "", err
	}
	groups, err := s.groups.List(ctx)
	if err != nil {
		return "", err
	}
	groupNames := make(map[string]string, len(groups))
	for _, group := range groups {
		groupNames[group.ID] = group.Name
	}

	var sb strings.Builder
	sb.WriteString(bulk.FormatLine(exportHeaders))
	sb.WriteByte('\n')
	for i := range members {
		sb.WriteString(bulk.FormatLine(exportRow(&members[i], groupNames)))
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}

func exportRow(m *domain.Member, groupNames map[string]string) []string {
	birth := ""
	if m.BirthDate != nil {
		birth = m.BirthDate.Format("2006-01-02")
	}
	joined := ""
	if !m.DateJoined.IsZero() {
		joined = m.DateJoined.Format("2006-01-02")
	}
	return []string{
		m.Name,
		m.Title,
		m.Email,
		string(m.Status),
		string(m.MemberType),
		string(m.AcademyLevel),
		m.Phone,
		m.Address,
		m.Bio,
		m.Gender,
		birth,
		joined,
		groupNames[m.GroupID],
		m.Subgroup,
		strings.Join(m.Affiliations, ", "),
		strings.Join(m.Achievements, ", "),
		strings.Join(m.Certifications, ", "),
		strings.Join(m.Sessions, ", "),
	}
}

// applyInput overwrites the member's editable fields from the input,
// enforcing the per-field permission for the acting role. Group assignment
// is validated against the taxonomy; an unknown subgroup is dropped.
func (s *MemberService) applyInput(ctx context.Context, actor domain.Role, member *domain.Member, input MemberInput) error {
	type fieldWrite struct {
		field domain.Field
		write func()
	}

	email := strings.TrimSpace(input.Email)
	if email != "" && !emailShape.MatchString(email) {
		return apperrors.NewValidationError("invalid email", map[string]any{"email": email})
	}

	writes := []fieldWrite{
		{domain.FieldName, func() { member.Name = strings.TrimSpace(input.Name) }},
		{domain.FieldTitle, func() { member.Title = strings.TrimSpace(input.Title) }},
		{domain.FieldEmail, func() { member.Email = email }},
		{domain.FieldStatus, func() { member.Status = domain.ParseMemberStatus(string(input.Status)) }},
		{domain.FieldMemberType, func() { member.MemberType = domain.ParseMemberType(string(input.MemberType)) }},
		{domain.FieldAcademyLevel, func() { member.AcademyLevel = domain.ParseAcademyLevel(string(input.AcademyLevel)) }},
		{domain.FieldPhone, func() { member.Phone = strings.TrimSpace(input.Phone) }},
		{domain.FieldAddress, func() { member.Address = strings.TrimSpace(input.Address) }},
		{domain.FieldBio, func() { member.Bio = strings.TrimSpace(input.Bio) }},
		{domain.FieldGender, func() { member.Gender = strings.TrimSpace(input.Gender) }},
		{domain.FieldBirthDate, func() { member.BirthDate = input.BirthDate }},
		{domain.FieldAffiliations, func() { member.Affiliations = input.Affiliations }},
		{domain.FieldAchievements, func() { member.Achievements = input.Achievements }},
		{domain.FieldCertifications, func() { member.Certifications = input.Certifications }},
		{domain.FieldSessions, func() { member.Sessions = input.Sessions }},
	}
	for _, w := range writes {
		if s.resolver.CanEditField(actor, w.field) {
			w.write()
		}
	}

	if input.DateJoined != nil && s.resolver.CanEditField(actor, domain.FieldDateJoined) {
		member.DateJoined = *input.DateJoined
	}

	if s.resolver.CanEditField(actor, domain.FieldGroupName) {
		if input.GroupID == "" {
			member.GroupID = ""
			member.Subgroup = ""
		} else {
			group, err := s.groups.GetByID(ctx, input.GroupID)
			if err != nil {
				return apperrors.NewValidationError("unknown group", map[string]any{"group_id": input.GroupID})
			}
			member.GroupID = group.ID
			member.Subgroup = ""
			if input.Subgroup != "" && group.HasSubgroup(input.Subgroup) &&
				s.resolver.CanEditField(actor, domain.FieldSubgroup) {
				member.Subgroup = input.Subgroup
			}
		}
	}

	return nil
}

func (s *MemberService) publish(ctx context.Context, eventType events.EventType, actor domain.Role, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Actor:     actor,
		Timestamp: s.clock.Now(),
		Payload:   payload,
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil && s.logger != nil {
		s.logger.Warn("event publish failed", zap.Error(err), zap.String("type", string(eventType)))
	}
}
