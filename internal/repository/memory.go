package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/roster-service/internal/domain"
)

// memory.go holds in-memory implementations of the store interfaces. They
// back the service when Postgres/Redis are not configured and are the
// fixture-free substrate for service tests. An optional per-call latency
// simulates a storage round-trip.

func cloneMember(m domain.Member) domain.Member {
	out := m
	out.Affiliations = append([]string(nil), m.Affiliations...)
	out.Achievements = append([]string(nil), m.Achievements...)
	out.Certifications = append([]string(nil), m.Certifications...)
	out.Sessions = append([]string(nil), m.Sessions...)
	out.ActivityLog = append([]domain.LogEntry(nil), m.ActivityLog...)
	out.CommunicationsLog = append([]domain.LogEntry(nil), m.CommunicationsLog...)
	out.CoachComments = append([]domain.LogEntry(nil), m.CoachComments...)
	out.SessionCancellations = append([]domain.LogEntry(nil), m.SessionCancellations...)
	out.PhotoLinks = append([]string(nil), m.PhotoLinks...)
	return out
}

func cloneGroup(g domain.Group) domain.Group {
	out := g
	out.Subgroups = append([]string(nil), g.Subgroups...)
	return out
}

// MemoryMemberRepository is a map-backed MemberRepository.
type MemoryMemberRepository struct {
	mu      sync.RWMutex
	members map[string]domain.Member
	latency time.Duration
}

// NewMemoryMemberRepository builds an empty in-memory member store.
func NewMemoryMemberRepository(latency time.Duration) *MemoryMemberRepository {
	return &MemoryMemberRepository{
		members: make(map[string]domain.Member),
		latency: latency,
	}
}

func (r *MemoryMemberRepository) simulate(ctx context.Context) error {
	if r.latency <= 0 {
		return ctx.Err()
	}
	select {
	case <-time.After(r.latency):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *MemoryMemberRepository) Create(ctx context.Context, member *domain.Member) error {
	if err := r.simulate(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members[member.ID] = cloneMember(*member)
	return nil
}

func (r *MemoryMemberRepository) Update(ctx context.Context, member *domain.Member) error {
	if err := r.simulate(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[member.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.members[member.ID] = cloneMember(*member)
	return nil
}

func (r *MemoryMemberRepository) GetByID(ctx context.Context, id string) (*domain.Member, error) {
	if err := r.simulate(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	member, ok := r.members[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := cloneMember(member)
	return &out, nil
}

func (r *MemoryMemberRepository) FindByEmail(ctx context.Context, email string) (*domain.Member, error) {
	if err := r.simulate(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, member := range r.sortedLocked() {
		if member.Email != "" && strings.EqualFold(member.Email, email) {
			out := cloneMember(member)
			return &out, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *MemoryMemberRepository) List(ctx context.Context, filter MemberFilter) ([]domain.Member, error) {
	if err := r.simulate(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []domain.Member
	for _, member := range r.sortedLocked() {
		if filter.Search != nil && *filter.Search != "" {
			needle := strings.ToLower(*filter.Search)
			if !strings.Contains(strings.ToLower(member.Name), needle) &&
				!strings.Contains(strings.ToLower(member.Email), needle) {
				continue
			}
		}
		if filter.Status != nil && member.Status != *filter.Status {
			continue
		}
		if filter.GroupID != nil && member.GroupID != *filter.GroupID {
			continue
		}
		result = append(result, cloneMember(member))
	}

	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return nil, nil
		}
		result = result[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (r *MemoryMemberRepository) Snapshot(ctx context.Context) ([]domain.Member, error) {
	if err := r.simulate(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := make([]domain.Member, 0, len(r.members))
	for _, member := range r.members {
		members = append(members, cloneMember(member))
	}
	sort.Slice(members, func(i, j int) bool {
		if members[i].CreatedAt.Equal(members[j].CreatedAt) {
			return members[i].ID < members[j].ID
		}
		return members[i].CreatedAt.Before(members[j].CreatedAt)
	})
	return members, nil
}

func (r *MemoryMemberRepository) Delete(ctx context.Context, id string) error {
	if err := r.simulate(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.members, id)
	return nil
}

func (r *MemoryMemberRepository) ApplyBatch(ctx context.Context, inserts []domain.Member, updates []domain.Member) error {
	if err := r.simulate(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, member := range inserts {
		r.members[member.ID] = cloneMember(member)
	}
	for _, member := range updates {
		r.members[member.ID] = cloneMember(member)
	}
	return nil
}

func (r *MemoryMemberRepository) ClearGroup(ctx context.Context, groupID string) error {
	if err := r.simulate(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, member := range r.members {
		if member.GroupID == groupID {
			member.GroupID = ""
			member.Subgroup = ""
			r.members[id] = member
		}
	}
	return nil
}

func (r *MemoryMemberRepository) ClearSubgroup(ctx context.Context, groupID, subgroup string) error {
	if err := r.simulate(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, member := range r.members {
		if member.GroupID == groupID && strings.EqualFold(member.Subgroup, subgroup) {
			member.Subgroup = ""
			r.members[id] = member
		}
	}
	return nil
}

// sortedLocked returns members ordered by creation time for deterministic
// scan order. Caller holds at least a read lock.
func (r *MemoryMemberRepository) sortedLocked() []domain.Member {
	members := make([]domain.Member, 0, len(r.members))
	for _, member := range r.members {
		members = append(members, member)
	}
	sort.Slice(members, func(i, j int) bool {
		if members[i].CreatedAt.Equal(members[j].CreatedAt) {
			return members[i].ID < members[j].ID
		}
		return members[i].CreatedAt.Before(members[j].CreatedAt)
	})
	return members
}

// MemoryGroupRepository is a map-backed GroupRepository.
type MemoryGroupRepository struct {
	mu      sync.RWMutex
	groups  map[string]domain.Group
	latency time.Duration
}

// NewMemoryGroupRepository builds an empty in-memory group store.
func NewMemoryGroupRepository(latency time.Duration) *MemoryGroupRepository {
	return &MemoryGroupRepository{
		groups:  make(map[string]domain.Group),
		latency: latency,
	}
}

func (r *MemoryGroupRepository) simulate(ctx context.Context) error {
	if r.latency <= 0 {
		return ctx.Err()
	}
	select {
	case <-time.After(r.latency):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *MemoryGroupRepository) Create(ctx context.Context, group *domain.Group) error {
	if err := r.simulate(ctx); err != nil {
		return err
	}
	now := time.Now()
	group.CreatedAt = now
	group.UpdatedAt = now
	r.mu.Lock()
	defer r.mu.Unlock()
	r.groups[group.ID] = cloneGroup(*group)
	return nil
}

func (r *MemoryGroupRepository) Update(ctx context.Context, group *domain.Group) error {
	if err := r.simulate(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.groups[group.ID]; !ok {
		return pgx.ErrNoRows
	}
	group.UpdatedAt = time.Now()
	r.groups[group.ID] = cloneGroup(*group)
	return nil
}

func (r *MemoryGroupRepository) GetByID(ctx context.Context, id string) (*domain.Group, error) {
	if err := r.simulate(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	group, ok := r.groups[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := cloneGroup(group)
	return &out, nil
}

func (r *MemoryGroupRepository) GetByName(ctx context.Context, name string) (*domain.Group, error) {
	if err := r.simulate(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, group := range r.groups {
		if strings.EqualFold(group.Name, name) {
			out := cloneGroup(group)
			return &out, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *MemoryGroupRepository) List(ctx context.Context) ([]domain.Group, error) {
	if err := r.simulate(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	groups := make([]domain.Group, 0, len(r.groups))
	for _, group := range r.groups {
		groups = append(groups, cloneGroup(group))
	}
	sort.Slice(groups, func(i, j int) bool {
		return strings.ToLower(groups[i].Name) < strings.ToLower(groups[j].Name)
	})
	return groups, nil
}

func (r *MemoryGroupRepository) Delete(ctx context.Context, id string) error {
	if err := r.simulate(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.groups[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.groups, id)
	return nil
}

type pendingEntry struct {
	pending   PendingImport
	expiresAt time.Time
}

// MemoryPendingImportRepository is a map-backed PendingImportRepository with
// TTL semantics, used when Redis is not configured.
type MemoryPendingImportRepository struct {
	mu      sync.Mutex
	entries map[string]pendingEntry
	digests map[string]pendingEntry
}

// NewMemoryPendingImportRepository builds an empty in-memory preview store.
func NewMemoryPendingImportRepository() *MemoryPendingImportRepository {
	return &MemoryPendingImportRepository{
		entries: make(map[string]pendingEntry),
		digests: make(map[string]pendingEntry),
	}
}

func (r *MemoryPendingImportRepository) Put(ctx context.Context, pending *PendingImport, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[pending.ID] = pendingEntry{pending: *pending, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (r *MemoryPendingImportRepository) Get(ctx context.Context, id string) (*PendingImport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[id]
	if !ok || time.Now().After(entry.expiresAt) {
		delete(r.entries, id)
		return nil, ErrPendingImportNotFound
	}
	pending := entry.pending
	return &pending, nil
}

func (r *MemoryPendingImportRepository) Delete(ctx context.Context, pending *PendingImport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, pending.ID)
	if pending.Digest != "" {
		delete(r.digests, pending.Digest)
	}
	return nil
}

func (r *MemoryPendingImportRepository) ClaimDigest(ctx context.Context, digest, id string, ttl time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry, ok := r.digests[digest]; ok && time.Now().Before(entry.expiresAt) {
		return false, nil
	}
	r.digests[digest] = pendingEntry{expiresAt: time.Now().Add(ttl)}
	return true, nil
}
