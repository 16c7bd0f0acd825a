package service

import (
	"context"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"

	"github.com/spec-kit/roster-service/internal/bulk"
	"github.com/spec-kit/roster-service/internal/config"
	"github.com/spec-kit/roster-service/internal/domain"
	"github.com/spec-kit/roster-service/internal/events"
	"github.com/spec-kit/roster-service/internal/observability"
	"github.com/spec-kit/roster-service/internal/rbac"
	"github.com/spec-kit/roster-service/internal/repository"
	apperrors "github.com/spec-kit/roster-service/pkg/util"
)

// ImportService runs the bulk-import pipeline: preview a reconciliation,
// park it for human review, then apply or discard it. Nothing touches the
// record store until Confirm.
type ImportService struct {
	members    repository.MemberRepository
	groups     repository.GroupRepository
	pending    repository.PendingImportRepository
	resolver   *rbac.Resolver
	importer   *bulk.Importer
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	cfg        config.ImportConfig
}

// ImportDependencies bundles collaborators for the import service.
type ImportDependencies struct {
	MemberRepo  repository.MemberRepository
	GroupRepo   repository.GroupRepository
	PendingRepo repository.PendingImportRepository
	Resolver    *rbac.Resolver
	Clock       bulk.Clock
	Dispatcher  events.Dispatcher
	Metrics     *observability.Metrics
	Logger      *zap.Logger
}

// NewImportService constructs the service.
func NewImportService(cfg config.ImportConfig, deps ImportDependencies) *ImportService {
	return &ImportService{
		members:    deps.MemberRepo,
		groups:     deps.GroupRepo,
		pending:    deps.PendingRepo,
		resolver:   deps.Resolver,
		importer:   bulk.NewImporter(deps.Clock),
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		cfg:        cfg,
	}
}

// ImportPreview is the structured summary shown for confirmation.
type ImportPreview struct {
	ImportID     string
	FileName     string
	Inserted     int
	Updated      int
	ErrorCount   int
	SampleErrors []bulk.RowError
	ExpiresAt    time.Time
}

// Preview parses and reconciles an uploaded payload against the current
// snapshot and parks the result for confirmation. The acting role gates both
// the operation and, per field, what the rows may supply.
func (s *ImportService) Preview(ctx context.Context, actor domain.Role, fileName string, payload []byte) (*ImportPreview, error) {
	if !s.resolver.HasCapability(actor, domain.CapImportMembers) {
		return nil, apperrors.NewForbidden("role may not import members")
	}
	if s.cfg.MaxUploadBytes > 0 && int64(len(payload)) > s.cfg.MaxUploadBytes {
		return nil, apperrors.NewValidationError("file too large", map[string]any{
			"max_bytes": s.cfg.MaxUploadBytes,
		})
	}
	if strings.TrimSpace(string(payload)) == "" {
		return nil, apperrors.NewValidationError("file is empty", nil)
	}

	digest := payloadDigest(payload)
	importID := uuid.NewString()
	ttl := s.cfg.PreviewTTL()

	claimed, err := s.pending.ClaimDigest(ctx, digest, importID, ttl)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, apperrors.NewConflict("an identical file is already pending review", nil)
	}

	groups, err := s.groups.List(ctx)
	if err != nil {
		return nil, err
	}
	existing, err := s.members.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	allowed := s.resolver.EditableFields(actor)
	result := s.importer.Process(string(payload), groups, existing, allowed)

	entry := &repository.PendingImport{
		ID:        importID,
		Role:      actor,
		FileName:  fileName,
		Digest:    digest,
		Result:    result,
		CreatedAt: s.importer.Clock.Now(),
	}
	if err := s.pending.Put(ctx, entry, ttl); err != nil {
		return nil, err
	}

	s.logger.Info("import previewed",
		zap.String("import_id", importID),
		zap.String("file", fileName),
		zap.Int("new", len(result.New)),
		zap.Int("updated", len(result.Updated)),
		zap.Int("errors", len(result.Errors)),
	)
	return s.preview(entry, ttl), nil
}

// Confirm applies a parked reconciliation atomically and drops the preview.
func (s *ImportService) Confirm(ctx context.Context, actor domain.Role, importID string) (*ImportPreview, error) {
	if !s.resolver.HasCapability(actor, domain.CapImportMembers) {
		return nil, apperrors.NewForbidden("role may not import members")
	}

	entry, err := s.pending.Get(ctx, importID)
	if err != nil {
		if err == repository.ErrPendingImportNotFound {
			return nil, apperrors.NewNotFound("pending import", map[string]any{"import_id": importID})
		}
		return nil, err
	}

	updates := make([]domain.Member, 0, len(entry.Result.Updated))
	for _, pair := range entry.Result.Updated {
		updates = append(updates, pair.Merged)
	}
	if err := s.members.ApplyBatch(ctx, entry.Result.New, updates); err != nil {
		return nil, err
	}
	if err := s.pending.Delete(ctx, entry); err != nil && s.logger != nil {
		s.logger.Warn("failed to drop applied preview", zap.Error(err))
	}

	s.metrics.RecordImport(len(entry.Result.New), len(updates), len(entry.Result.Errors))
	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventImportApplied,
			Actor:     actor,
			Timestamp: s.importer.Clock.Now(),
			Payload: events.ImportAppliedPayload{
				ImportID: entry.ID,
				FileName: entry.FileName,
				Inserted: len(entry.Result.New),
				Updated:  len(updates),
				Errors:   len(entry.Result.Errors),
			},
		})
	}
	return s.preview(entry, 0), nil
}

// Discard drops a parked preview without side effects.
func (s *ImportService) Discard(ctx context.Context, actor domain.Role, importID string) error {
	if !s.resolver.HasCapability(actor, domain.CapImportMembers) {
		return apperrors.NewForbidden("role may not import members")
	}

	entry, err := s.pending.Get(ctx, importID)
	if err != nil {
		if err == repository.ErrPendingImportNotFound {
			return apperrors.NewNotFound("pending import", map[string]any{"import_id": importID})
		}
		return err
	}
	if err := s.pending.Delete(ctx, entry); err != nil {
		return err
	}
	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventImportDiscarded,
			Actor:     actor,
			Timestamp: s.importer.Clock.Now(),
			Payload: events.ImportAppliedPayload{
				ImportID: entry.ID,
				FileName: entry.FileName,
			},
		})
	}
	return nil
}

func (s *ImportService) preview(entry *repository.PendingImport, ttl time.Duration) *ImportPreview {
	limit := s.cfg.ErrorPreviewLimit
	if limit <= 0 {
		limit = 5
	}
	sample := entry.Result.Errors
	if len(sample) > limit {
		sample = sample[:limit]
	}

	preview := &ImportPreview{
		ImportID:     entry.ID,
		FileName:     entry.FileName,
		Inserted:     len(entry.Result.New),
		Updated:      len(entry.Result.Updated),
		ErrorCount:   len(entry.Result.Errors),
		SampleErrors: sample,
	}
	if ttl > 0 {
		preview.ExpiresAt = entry.CreatedAt.Add(ttl)
	}
	return preview
}

func payloadDigest(payload []byte) string {
	sum := blake2b.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
