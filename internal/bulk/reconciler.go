package bulk

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/roster-service/internal/domain"
)

// Clock abstracts the current-time source so reconciliation stays a pure
// function of its inputs.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall-clock implementation.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

const (
	importCreatedNote = "created via import"
	importUpdatedNote = "record updated via bulk import"
)

// UpdatedPair couples a merged candidate with its pre-merge original.
type UpdatedPair struct {
	Merged   domain.Member
	Original domain.Member
}

// Result partitions one import batch. Nothing here has been persisted; the
// caller reviews and commits explicitly.
type Result struct {
	New     []domain.Member
	Updated []UpdatedPair
	Errors  []RowError
}

// Reconcile matches candidates against the existing snapshot by email
// (case-insensitive, first match in scan order) and splits them into inserts
// and merged updates. It never mutates its inputs.
func Reconcile(candidates []domain.Member, existing []domain.Member, clock Clock) Result {
	now := clock.Now()

	var result Result
	for _, candidate := range candidates {
		original, matched := matchByEmail(existing, candidate.Email)
		if matched {
			result.Updated = append(result.Updated, UpdatedPair{
				Merged:   mergeUpdate(candidate, *original, now),
				Original: *original,
			})
			continue
		}
		result.New = append(result.New, newRecord(candidate, now))
	}
	return result
}

func matchByEmail(existing []domain.Member, email string) (*domain.Member, bool) {
	if email == "" {
		return nil, false
	}
	for i := range existing {
		if strings.EqualFold(existing[i].Email, email) {
			return &existing[i], true
		}
	}
	return nil, false
}

// mergeUpdate overlays the candidate's fields onto the original: the row's
// values win even when empty. The history collections are the exception —
// import rows never supply them, so the original's are preserved in full
// with one synthesized audit entry prepended to the activity and
// communications logs.
func mergeUpdate(candidate, original domain.Member, now time.Time) domain.Member {
	merged := candidate
	merged.ID = original.ID
	merged.CreatedAt = original.CreatedAt
	merged.UpdatedAt = now

	merged.ActivityLog = prependLog(original.ActivityLog, importUpdatedNote, now)
	merged.CommunicationsLog = prependLog(original.CommunicationsLog, importUpdatedNote, now)
	merged.CoachComments = append([]domain.LogEntry(nil), original.CoachComments...)
	merged.SessionCancellations = append([]domain.LogEntry(nil), original.SessionCancellations...)
	merged.PhotoLinks = append([]string(nil), original.PhotoLinks...)

	return merged
}

func newRecord(candidate domain.Member, now time.Time) domain.Member {
	record := candidate
	record.ID = uuid.NewString()
	record.CreatedAt = now
	record.UpdatedAt = now
	record.ActivityLog = []domain.LogEntry{{Note: importCreatedNote, At: now}}
	record.CommunicationsLog = []domain.LogEntry{{Note: importCreatedNote, At: now}}
	return record
}

func prependLog(log []domain.LogEntry, note string, at time.Time) []domain.LogEntry {
	out := make([]domain.LogEntry, 0, len(log)+1)
	out = append(out, domain.LogEntry{Note: note, At: at})
	return append(out, log...)
}

// Importer runs the full text-to-result pipeline: parse, map, reconcile.
type Importer struct {
	Clock Clock
}

// NewImporter builds an importer; a nil clock defaults to the system clock.
func NewImporter(clock Clock) *Importer {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Importer{Clock: clock}
}

// Process turns raw delimited text into a reconciliation result against the
// given group and member snapshots. Per-row findings are collected, never
// raised: one bad row never aborts the batch. allowed restricts which fields
// rows may supply (nil means all).
func (imp *Importer) Process(text string, groups []domain.Group, existing []domain.Member, allowed map[domain.Field]struct{}) Result {
	doc := ParseDocument(text)
	now := imp.Clock.Now()

	var candidates []domain.Member
	var errs []RowError
	for i, row := range doc.Rows {
		candidate, rowErrs := MapRow(MapParams{
			Headers: doc.Headers,
			Values:  row,
			Groups:  groups,
			Allowed: allowed,
			Now:     now,
			Row:     i + 1,
		})
		errs = append(errs, rowErrs...)
		if candidate != nil {
			candidates = append(candidates, *candidate)
		}
	}

	result := Reconcile(candidates, existing, imp.Clock)
	result.Errors = append(errs, result.Errors...)
	return result
}
