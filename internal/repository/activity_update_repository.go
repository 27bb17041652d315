package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/activity-tracker-api/internal/models"
	"github.com/noah-isme/activity-tracker-api/pkg/database"
)

const activityUpdateSelect = `SELECT au.id, au.daily_activity_id, au.user_id, COALESCE(u.name, '') AS user_name,
        au.status, au.remark, au.created_at
FROM activity_updates au
LEFT JOIN users u ON u.id = au.user_id`

// ActivityUpdateRepository persists the append-only update log.
type ActivityUpdateRepository struct {
	db *sqlx.DB
}

// NewActivityUpdateRepository constructs the repository.
func NewActivityUpdateRepository(db *sqlx.DB) *ActivityUpdateRepository {
	return &ActivityUpdateRepository{db: db}
}

// Append writes a new log entry and then refreshes the owning daily activity's
// status and remark in the same transaction. The daily activity row is locked
// first so concurrent appends serialize; sql.ErrNoRows means it does not exist.
// A nil remark keeps the daily activity's previous remark.
func (r *ActivityUpdateRepository) Append(ctx context.Context, update *models.ActivityUpdate) (*models.ActivityUpdate, error) {
	if update.ID == "" {
		update.ID = uuid.NewString()
	}
	now := time.Now().UTC()

	var stored models.ActivityUpdate
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var lockedID string
		if err := tx.GetContext(ctx, &lockedID, `SELECT id FROM daily_activities WHERE id = $1 FOR UPDATE`, update.DailyActivityID); err != nil {
			if err == sql.ErrNoRows {
				return err
			}
			return fmt.Errorf("lock daily activity: %w", err)
		}

		// created_at is strictly later than the previous entry, even when the clock
		// steps back or two appends share a microsecond.
		const insert = `INSERT INTO activity_updates (id, daily_activity_id, user_id, status, remark, created_at)
VALUES ($1, $2, $3, $4, $5, GREATEST($6::timestamptz, COALESCE((SELECT MAX(created_at) FROM activity_updates WHERE daily_activity_id = $2) + interval '1 microsecond', $6::timestamptz)))
RETURNING id, daily_activity_id, user_id, status, remark, created_at,
        COALESCE((SELECT name FROM users WHERE users.id = activity_updates.user_id), '') AS user_name`
		if err := tx.GetContext(ctx, &stored, insert, update.ID, update.DailyActivityID, update.UserID, update.Status, update.Remark, now); err != nil {
			return fmt.Errorf("insert activity update: %w", err)
		}

		const project = `UPDATE daily_activities SET status = $2, remark = COALESCE($3, remark), updated_at = $4 WHERE id = $1`
		if _, err := tx.ExecContext(ctx, project, update.DailyActivityID, update.Status, update.Remark, now); err != nil {
			return fmt.Errorf("project activity update: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

// ListByDailyActivity returns one occurrence's full history, newest first.
func (r *ActivityUpdateRepository) ListByDailyActivity(ctx context.Context, dailyActivityID string) ([]models.ActivityUpdate, error) {
	query := activityUpdateSelect + `
WHERE au.daily_activity_id = $1
ORDER BY au.created_at DESC, au.id DESC`
	var rows []models.ActivityUpdate
	if err := r.db.SelectContext(ctx, &rows, query, dailyActivityID); err != nil {
		return nil, fmt.Errorf("list activity updates: %w", err)
	}
	return rows, nil
}

// ListForDailyActivities returns every update for the given occurrences, newest first.
func (r *ActivityUpdateRepository) ListForDailyActivities(ctx context.Context, dailyActivityIDs []string) ([]models.ActivityUpdate, error) {
	if len(dailyActivityIDs) == 0 {
		return nil, nil
	}
	query := activityUpdateSelect + `
WHERE au.daily_activity_id = ANY($1)
ORDER BY au.created_at DESC, au.id DESC`
	var rows []models.ActivityUpdate
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(dailyActivityIDs)); err != nil {
		return nil, fmt.Errorf("list activity updates for batch: %w", err)
	}
	return rows, nil
}

// ListByMaster returns updates across every occurrence of a master activity.
func (r *ActivityUpdateRepository) ListByMaster(ctx context.Context, masterID string, limit int) ([]models.MasterActivityUpdate, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	const query = `SELECT au.id, au.daily_activity_id, au.user_id, COALESCE(u.name, '') AS user_name,
        au.status, au.remark, au.created_at, da.activity_date
FROM activity_updates au
JOIN daily_activities da ON da.id = au.daily_activity_id
LEFT JOIN users u ON u.id = au.user_id
WHERE da.master_activity_id = $1
ORDER BY au.created_at DESC, au.id DESC
LIMIT $2`
	var rows []models.MasterActivityUpdate
	if err := r.db.SelectContext(ctx, &rows, query, masterID, limit); err != nil {
		return nil, fmt.Errorf("list master activity history: %w", err)
	}
	return rows, nil
}
