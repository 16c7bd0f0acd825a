package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/roster-service/internal/bulk"
	"github.com/spec-kit/roster-service/internal/domain"
)

// ErrPendingImportNotFound is returned when a preview id is unknown or its
// TTL has elapsed.
var ErrPendingImportNotFound = errors.New("pending import not found")

// PendingImport is a computed reconciliation result parked between preview
// and explicit confirmation. Nothing in it has been persisted.
type PendingImport struct {
	ID        string      `json:"id"`
	Role      domain.Role `json:"role"`
	FileName  string      `json:"fileName"`
	Digest    string      `json:"digest"`
	Result    bulk.Result `json:"result"`
	CreatedAt time.Time   `json:"createdAt"`
}

// PendingImportRepository stores previews awaiting confirmation. ClaimDigest
// reserves a payload digest so the same bytes cannot produce two overlapping
// previews.
type PendingImportRepository interface {
	Put(ctx context.Context, pending *PendingImport, ttl time.Duration) error
	Get(ctx context.Context, id string) (*PendingImport, error)
	Delete(ctx context.Context, pending *PendingImport) error
	ClaimDigest(ctx context.Context, digest, id string, ttl time.Duration) (bool, error)
}

const (
	pendingImportKeyPrefix = "import:pending:"
	importDigestKeyPrefix  = "import:digest:"
)

type redisPendingImportRepository struct {
	client *redis.Client
}

// NewPendingImportRepository builds the redis-backed store.
func NewPendingImportRepository(client *redis.Client) PendingImportRepository {
	return &redisPendingImportRepository{client: client}
}

func (r *redisPendingImportRepository) Put(ctx context.Context, pending *PendingImport, ttl time.Duration) error {
	payload, err := json.Marshal(pending)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, pendingImportKeyPrefix+pending.ID, payload, ttl).Err()
}

func (r *redisPendingImportRepository) Get(ctx context.Context, id string) (*PendingImport, error) {
	payload, err := r.client.Get(ctx, pendingImportKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrPendingImportNotFound
		}
		return nil, err
	}
	var pending PendingImport
	if err := json.Unmarshal(payload, &pending); err != nil {
		return nil, err
	}
	return &pending, nil
}

func (r *redisPendingImportRepository) Delete(ctx context.Context, pending *PendingImport) error {
	keys := []string{pendingImportKeyPrefix + pending.ID}
	if pending.Digest != "" {
		keys = append(keys, importDigestKeyPrefix+pending.Digest)
	}
	return r.client.Del(ctx, keys...).Err()
}

func (r *redisPendingImportRepository) ClaimDigest(ctx context.Context, digest, id string, ttl time.Duration) (bool, error) {
	return r.client.SetNX(ctx, importDigestKeyPrefix+digest, id, ttl).Result()
}
