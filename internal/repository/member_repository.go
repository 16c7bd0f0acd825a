package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/roster-service/internal/domain"
)

// MemberFilter captures listing parameters.
type MemberFilter struct {
	Search  *string
	Status  *domain.MemberStatus
	GroupID *string
	Limit   int
	Offset  int
}

// MemberRepository encapsulates member persistence. Snapshot and FindByEmail
// feed the reconciliation engine; ApplyBatch commits a confirmed import in
// one transaction.
type MemberRepository interface {
	Create(ctx context.Context, member *domain.Member) error
	Update(ctx context.Context, member *domain.Member) error
	GetByID(ctx context.Context, id string) (*domain.Member, error)
	FindByEmail(ctx context.Context, email string) (*domain.Member, error)
	List(ctx context.Context, filter MemberFilter) ([]domain.Member, error)
	Snapshot(ctx context.Context) ([]domain.Member, error)
	Delete(ctx context.Context, id string) error
	ApplyBatch(ctx context.Context, inserts []domain.Member, updates []domain.Member) error
	ClearGroup(ctx context.Context, groupID string) error
	ClearSubgroup(ctx context.Context, groupID, subgroup string) error
}

type memberRepository struct {
	pool *pgxpool.Pool
}

// NewMemberRepository instantiates repository.
func NewMemberRepository(pool *pgxpool.Pool) MemberRepository {
	return &memberRepository{pool: pool}
}

const memberColumns = `id, name, title, email, status, member_type, academy_level,
       phone, address, bio, gender, birth_date, date_joined, group_id, subgroup,
       affiliations, achievements, certifications, sessions,
       activity_log, communications_log, coach_comments, session_cancellations,
       photo_links, created_at, updated_at`

func (r *memberRepository) Create(ctx context.Context, member *domain.Member) error {
	const query = `
        INSERT INTO members (id, name, title, email, status, member_type, academy_level,
            phone, address, bio, gender, birth_date, date_joined, group_id, subgroup,
            affiliations, achievements, certifications, sessions,
            activity_log, communications_log, coach_comments, session_cancellations,
            photo_links, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26)`
	_, err := r.pool.Exec(ctx, query, memberArgs(member)...)
	return err
}

func (r *memberRepository) Update(ctx context.Context, member *domain.Member) error {
	const query = `
        UPDATE members SET name=$2, title=$3, email=$4, status=$5, member_type=$6,
            academy_level=$7, phone=$8, address=$9, bio=$10, gender=$11, birth_date=$12,
            date_joined=$13, group_id=$14, subgroup=$15, affiliations=$16, achievements=$17,
            certifications=$18, sessions=$19, activity_log=$20, communications_log=$21,
            coach_comments=$22, session_cancellations=$23, photo_links=$24,
            created_at=$25, updated_at=$26
        WHERE id=$1`
	cmd, err := r.pool.Exec(ctx, query, memberArgs(member)...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *memberRepository) GetByID(ctx context.Context, id string) (*domain.Member, error) {
	query := fmt.Sprintf(`SELECT %s FROM members WHERE id=$1`, memberColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *memberRepository) FindByEmail(ctx context.Context, email string) (*domain.Member, error) {
	query := fmt.Sprintf(`SELECT %s FROM members WHERE LOWER(email)=LOWER($1) LIMIT 1`, memberColumns)
	return r.fetchSingle(ctx, query, email)
}

func (r *memberRepository) List(ctx context.Context, filter MemberFilter) ([]domain.Member, error) {
	conditions := []string{"TRUE"}
	args := []any{}
	idx := 1

	if filter.Search != nil && *filter.Search != "" {
		conditions = append(conditions,
			fmt.Sprintf("(name ILIKE $%d OR email ILIKE $%d)", idx, idx))
		args = append(args, "%"+*filter.Search+"%")
		idx++
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status=$%d", idx))
		args = append(args, *filter.Status)
		idx++
	}
	if filter.GroupID != nil {
		conditions = append(conditions, fmt.Sprintf("group_id=$%d", idx))
		args = append(args, *filter.GroupID)
		idx++
	}

	query := fmt.Sprintf(`SELECT %s FROM members WHERE %s ORDER BY name ASC`,
		memberColumns, strings.Join(conditions, " AND "))
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", idx, idx+1)
		args = append(args, filter.Limit, filter.Offset)
	}

	return r.fetchMany(ctx, query, args...)
}

func (r *memberRepository) Snapshot(ctx context.Context) ([]domain.Member, error) {
	query := fmt.Sprintf(`SELECT %s FROM members ORDER BY created_at ASC`, memberColumns)
	return r.fetchMany(ctx, query)
}

func (r *memberRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM members WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ApplyBatch persists a confirmed reconciliation result atomically.
func (r *memberRepository) ApplyBatch(ctx context.Context, inserts []domain.Member, updates []domain.Member) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const insertQuery = `
        INSERT INTO members (id, name, title, email, status, member_type, academy_level,
            phone, address, bio, gender, birth_date, date_joined, group_id, subgroup,
            affiliations, achievements, certifications, sessions,
            activity_log, communications_log, coach_comments, session_cancellations,
            photo_links, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26)`
	const updateQuery = `
        UPDATE members SET name=$2, title=$3, email=$4, status=$5, member_type=$6,
            academy_level=$7, phone=$8, address=$9, bio=$10, gender=$11, birth_date=$12,
            date_joined=$13, group_id=$14, subgroup=$15, affiliations=$16, achievements=$17,
            certifications=$18, sessions=$19, activity_log=$20, communications_log=$21,
            coach_comments=$22, session_cancellations=$23, photo_links=$24,
            created_at=$25, updated_at=$26
        WHERE id=$1`

	for i := range inserts {
		if _, err := tx.Exec(ctx, insertQuery, memberArgs(&inserts[i])...); err != nil {
			return err
		}
	}
	for i := range updates {
		if _, err := tx.Exec(ctx, updateQuery, memberArgs(&updates[i])...); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *memberRepository) ClearGroup(ctx context.Context, groupID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE members SET group_id=NULL, subgroup='' WHERE group_id=$1`, groupID)
	return err
}

func (r *memberRepository) ClearSubgroup(ctx context.Context, groupID, subgroup string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE members SET subgroup='' WHERE group_id=$1 AND LOWER(subgroup)=LOWER($2)`,
		groupID, subgroup)
	return err
}

func (r *memberRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Member, error) {
	row := r.pool.QueryRow(ctx, query, arg)
	member, err := scanMember(row)
	if err != nil {
		return nil, err
	}
	return member, nil
}

func (r *memberRepository) fetchMany(ctx context.Context, query string, args ...any) ([]domain.Member, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Member
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *member)
	}
	return result, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMember(row rowScanner) (*domain.Member, error) {
	var member domain.Member
	var groupID *string
	if err := row.Scan(
		&member.ID,
		&member.Name,
		&member.Title,
		&member.Email,
		&member.Status,
		&member.MemberType,
		&member.AcademyLevel,
		&member.Phone,
		&member.Address,
		&member.Bio,
		&member.Gender,
		&member.BirthDate,
		&member.DateJoined,
		&groupID,
		&member.Subgroup,
		&member.Affiliations,
		&member.Achievements,
		&member.Certifications,
		&member.Sessions,
		&member.ActivityLog,
		&member.CommunicationsLog,
		&member.CoachComments,
		&member.SessionCancellations,
		&member.PhotoLinks,
		&member.CreatedAt,
		&member.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if groupID != nil {
		member.GroupID = *groupID
	}
	return &member, nil
}

func memberArgs(m *domain.Member) []any {
	var groupID *string
	if m.GroupID != "" {
		groupID = &m.GroupID
	}
	return []any{
		m.ID,
		m.Name,
		m.Title,
		m.Email,
		m.Status,
		m.MemberType,
		m.AcademyLevel,
		m.Phone,
		m.Address,
		m.Bio,
		m.Gender,
		m.BirthDate,
		m.DateJoined,
		groupID,
		m.Subgroup,
		m.Affiliations,
		m.Achievements,
		m.Certifications,
		m.Sessions,
		m.ActivityLog,
		m.CommunicationsLog,
		m.CoachComments,
		m.SessionCancellations,
		m.PhotoLinks,
		m.CreatedAt,
		m.UpdatedAt,
	}
}
