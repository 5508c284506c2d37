package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"matrimony-service/internal/models"
)

// InterestRepository abstracts interest persistence.
type InterestRepository interface {
	Create(ctx context.Context, interest models.Interest) (models.Interest, error)
	Get(ctx context.Context, id string) (models.Interest, error)
	Respond(ctx context.Context, id string, status models.InterestStatus, message *string, at time.Time) (models.Interest, error)
	Withdraw(ctx context.Context, id string, at time.Time) (models.Interest, error)
	MarkRead(ctx context.Context, id string, at time.Time) (models.Interest, error)
	ListReceived(ctx context.Context, userID string, status *models.InterestStatus) ([]models.Interest, error)
	ListSent(ctx context.Context, userID string, status *models.InterestStatus) ([]models.Interest, error)
	Stats(ctx context.Context, userID string) (models.InterestStats, error)
	HasAccepted(ctx context.Context, userA, userB string) (bool, error)
	AcceptedCounterparts(ctx context.Context, userID string) ([]string, error)
}

// InterestRepo is a sqlx implementation of InterestRepository.
type InterestRepo struct {
	db *sqlx.DB
}

// NewInterestRepo constructs an InterestRepo.
func NewInterestRepo(db *sqlx.DB) *InterestRepo {
	return &InterestRepo{db: db}
}

const interestColumns = `id, from_user, to_user, pair_key, status, message, is_read, responded_at, expires_at, created_at, updated_at`

const uniqueViolation = "23505"

// Create inserts a pending interest. The pair_key constraint makes the
// uniqueness check and the insert one statement, so opposite-direction
// creates cannot both succeed.
func (r *InterestRepo) Create(ctx context.Context, in models.Interest) (models.Interest, error) {
	query := `INSERT INTO interests (id, from_user, to_user, pair_key, status, message, is_read, expires_at, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        ON CONFLICT (pair_key) DO NOTHING
        RETURNING ` + interestColumns

	var out models.Interest
	err := r.db.QueryRowxContext(ctx, query,
		in.ID, in.FromUser, in.ToUser, models.PairKey(in.FromUser, in.ToUser), string(in.Status),
		in.Message, in.IsRead, in.ExpiresAt, in.CreatedAt, in.UpdatedAt,
	).StructScan(&out)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Interest{}, models.ErrDuplicateRelationship
		}
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return models.Interest{}, models.ErrDuplicateRelationship
		}
		return models.Interest{}, fmt.Errorf("create interest: %w", err)
	}
	return out, nil
}

// Get fetches an interest by id.
func (r *InterestRepo) Get(ctx context.Context, id string) (models.Interest, error) {
	var out models.Interest
	err := r.db.GetContext(ctx, &out, `SELECT `+interestColumns+` FROM interests WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Interest{}, models.ErrInterestNotFound
	}
	if err != nil {
		var pqErr *pq.Error
		// invalid_text_representation: the id is not a UUID.
		if errors.As(err, &pqErr) && pqErr.Code == "22P02" {
			return models.Interest{}, models.ErrInterestNotFound
		}
		return models.Interest{}, fmt.Errorf("get interest: %w", err)
	}
	return out, nil
}

// Respond moves a pending interest to accepted or rejected. A nil message keeps the existing one.
func (r *InterestRepo) Respond(ctx context.Context, id string, status models.InterestStatus, message *string, at time.Time) (models.Interest, error) {
	query := `UPDATE interests
        SET status=$2, responded_at=$3, is_read=TRUE, message=COALESCE($4, message), updated_at=$3
        WHERE id=$1 AND status='pending'
        RETURNING ` + interestColumns
	return r.transition(ctx, "respond to interest", query, id, string(status), at, message)
}

// Withdraw moves a pending interest to withdrawn.
func (r *InterestRepo) Withdraw(ctx context.Context, id string, at time.Time) (models.Interest, error) {
	query := `UPDATE interests
        SET status='withdrawn', updated_at=$2
        WHERE id=$1 AND status='pending'
        RETURNING ` + interestColumns
	return r.transition(ctx, "withdraw interest", query, id, at)
}

func (r *InterestRepo) transition(ctx context.Context, op, query string, args ...any) (models.Interest, error) {
	var out models.Interest
	err := r.db.QueryRowxContext(ctx, query, args...).StructScan(&out)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Interest{}, models.ErrInvalidTransition
	}
	if err != nil {
		return models.Interest{}, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// MarkRead sets is_read. Calling it on an already read interest changes nothing.
func (r *InterestRepo) MarkRead(ctx context.Context, id string, at time.Time) (models.Interest, error) {
	query := `UPDATE interests
        SET is_read=TRUE, updated_at=CASE WHEN is_read THEN updated_at ELSE $2 END
        WHERE id=$1
        RETURNING ` + interestColumns
	var out models.Interest
	err := r.db.QueryRowxContext(ctx, query, id, at).StructScan(&out)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Interest{}, models.ErrInterestNotFound
	}
	if err != nil {
		return models.Interest{}, fmt.Errorf("mark interest read: %w", err)
	}
	return out, nil
}

// ListReceived returns interests addressed to the user, newest first.
func (r *InterestRepo) ListReceived(ctx context.Context, userID string, status *models.InterestStatus) ([]models.Interest, error) {
	return r.list(ctx, "to_user", userID, status)
}

// ListSent returns interests sent by the user, newest first.
func (r *InterestRepo) ListSent(ctx context.Context, userID string, status *models.InterestStatus) ([]models.Interest, error) {
	return r.list(ctx, "from_user", userID, status)
}

func (r *InterestRepo) list(ctx context.Context, column, userID string, status *models.InterestStatus) ([]models.Interest, error) {
	var statusArg *string
	if status != nil {
		s := string(*status)
		statusArg = &s
	}
	query := `SELECT ` + interestColumns + ` FROM interests
        WHERE ` + column + `=$1 AND ($2::text IS NULL OR status=$2)
        ORDER BY created_at DESC, id DESC`

	interests := []models.Interest{}
	if err := r.db.SelectContext(ctx, &interests, query, userID, statusArg); err != nil {
		return nil, fmt.Errorf("list interests by %s: %w", column, err)
	}
	return interests, nil
}

type statRow struct {
	Direction string                `db:"direction"`
	Status    models.InterestStatus `db:"status"`
	Count     int                   `db:"n"`
}

// Stats aggregates the user's interests by direction and status.
func (r *InterestRepo) Stats(ctx context.Context, userID string) (models.InterestStats, error) {
	query := `SELECT CASE WHEN from_user=$1 THEN 'sent' ELSE 'received' END AS direction, status, COUNT(*) AS n
        FROM interests
        WHERE from_user=$1 OR to_user=$1
        GROUP BY 1, 2`

	var rows []statRow
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return models.InterestStats{}, fmt.Errorf("interest stats: %w", err)
	}

	var stats models.InterestStats
	for _, row := range rows {
		if row.Direction == "sent" {
			stats.Sent.Add(row.Status, row.Count)
		} else {
			stats.Received.Add(row.Status, row.Count)
		}
	}

	err := r.db.GetContext(ctx, &stats.Unread, `SELECT COUNT(*) FROM interests WHERE to_user=$1 AND status='pending' AND is_read=FALSE`, userID)
	if err != nil {
		return models.InterestStats{}, fmt.Errorf("unread interest count: %w", err)
	}
	return stats, nil
}

// HasAccepted reports whether the pair has an accepted interest in either direction.
func (r *InterestRepo) HasAccepted(ctx context.Context, userA, userB string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(
        SELECT 1 FROM interests
        WHERE status='accepted'
          AND ((from_user=$1 AND to_user=$2) OR (from_user=$2 AND to_user=$1)))`
	err := r.db.GetContext(ctx, &exists, query, userA, userB)
	if err != nil {
		return false, fmt.Errorf("check accepted interest: %w", err)
	}
	return exists, nil
}

// AcceptedCounterparts lists users the given user is matched with.
func (r *InterestRepo) AcceptedCounterparts(ctx context.Context, userID string) ([]string, error) {
	query := `SELECT CASE WHEN from_user=$1 THEN to_user ELSE from_user END
        FROM interests
        WHERE status='accepted' AND (from_user=$1 OR to_user=$1)`
	ids := []string{}
	if err := r.db.SelectContext(ctx, &ids, query, userID); err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	return ids, nil
}
