package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/activity-tracker-api/internal/models"
	"github.com/noah-isme/activity-tracker-api/pkg/database"
)

const dailyActivitySelect = `SELECT da.id, da.master_activity_id, da.activity_date, da.status, da.position, da.remark,
        da.created_at, da.updated_at, ma.title, ma.description
FROM daily_activities da
JOIN master_activities ma ON ma.id = da.master_activity_id`

// DailyActivityRepository handles persistence for per-date activity occurrences.
type DailyActivityRepository struct {
	db *sqlx.DB
}

// NewDailyActivityRepository constructs the repository.
func NewDailyActivityRepository(db *sqlx.DB) *DailyActivityRepository {
	return &DailyActivityRepository{db: db}
}

// ListByDate returns the date's occurrences ordered for board rendering.
func (r *DailyActivityRepository) ListByDate(ctx context.Context, date time.Time) ([]models.DailyActivityRecord, error) {
	query := dailyActivitySelect + `
WHERE da.activity_date = $1
ORDER BY da.position ASC, da.created_at ASC, da.id ASC`
	var rows []models.DailyActivityRecord
	if err := r.db.SelectContext(ctx, &rows, query, date); err != nil {
		return nil, fmt.Errorf("list daily activities: %w", err)
	}
	return rows, nil
}

// FindByID returns one occurrence or sql.ErrNoRows.
func (r *DailyActivityRepository) FindByID(ctx context.Context, id string) (*models.DailyActivityRecord, error) {
	query := dailyActivitySelect + `
WHERE da.id = $1`
	var row models.DailyActivityRecord
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find daily activity: %w", err)
	}
	return &row, nil
}

// CountActiveByDate reports how many active masters already have an occurrence
// for a date.
func (r *DailyActivityRepository) CountActiveByDate(ctx context.Context, date time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM daily_activities da
JOIN master_activities ma ON ma.id = da.master_activity_id
WHERE da.activity_date = $1 AND ma.active = TRUE`
	var total int
	if err := r.db.GetContext(ctx, &total, query, date); err != nil {
		return 0, fmt.Errorf("count daily activities: %w", err)
	}
	return total, nil
}

// Materialize inserts one pending occurrence per master ID for the date, positioned by
// slice index. Existing (master, date) pairs are left untouched; the number of rows
// actually created is returned.
func (r *DailyActivityRepository) Materialize(ctx context.Context, date time.Time, masterIDs []string) (int, error) {
	if len(masterIDs) == 0 {
		return 0, nil
	}
	const query = `INSERT INTO daily_activities (id, master_activity_id, activity_date, status, position, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $6)
ON CONFLICT (master_activity_id, activity_date) DO NOTHING RETURNING id`

	created := 0
	now := time.Now().UTC()
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		for position, masterID := range masterIDs {
			var insertedID string
			err := tx.QueryRowxContext(ctx, query, uuid.NewString(), masterID, date, models.ActivityStatusPending, position, now).Scan(&insertedID)
			if err == sql.ErrNoRows {
				continue
			}
			if err != nil {
				return fmt.Errorf("materialize daily activity for master %s: %w", masterID, err)
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}

// ApplyMove sets status and position for one occurrence on the given date.
// It reports false when no row matched the (id, date) pair.
func (r *DailyActivityRepository) ApplyMove(ctx context.Context, id string, date time.Time, status models.ActivityStatus, position int) (bool, error) {
	const query = `UPDATE daily_activities SET status = $3, position = $4, updated_at = $5
WHERE id = $1 AND activity_date = $2`
	res, err := r.db.ExecContext(ctx, query, id, date, status, position, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("move daily activity %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("move daily activity %s: %w", id, err)
	}
	return affected > 0, nil
}
