package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/activity-tracker-api/internal/models"
	"github.com/noah-isme/activity-tracker-api/pkg/database"
)

const masterActivityColumns = `ma.id, ma.title, ma.description, ma.created_by, u.name AS creator_name, ma.active, ma.created_at, ma.updated_at`

// MasterActivityRepository persists the master activity catalog.
type MasterActivityRepository struct {
	db *sqlx.DB
}

// NewMasterActivityRepository constructs the repository.
func NewMasterActivityRepository(db *sqlx.DB) *MasterActivityRepository {
	return &MasterActivityRepository{db: db}
}

// List returns master activities matching the filter, newest first.
func (r *MasterActivityRepository) List(ctx context.Context, filter models.MasterActivityFilter) ([]models.MasterActivity, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if search := strings.TrimSpace(filter.Search); search != "" {
		where = append(where, fmt.Sprintf("(ma.title ILIKE $%d OR ma.description ILIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+search+"%")
	}
	if filter.Active != nil {
		where = append(where, fmt.Sprintf("ma.active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	query := fmt.Sprintf(`SELECT %s
FROM master_activities ma
LEFT JOIN users u ON u.id = ma.created_by
WHERE %s
ORDER BY ma.created_at DESC, ma.id DESC`, masterActivityColumns, strings.Join(where, " AND "))

	var rows []models.MasterActivity
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list master activities: %w", err)
	}
	return rows, nil
}

// FindByID returns one master activity or sql.ErrNoRows.
func (r *MasterActivityRepository) FindByID(ctx context.Context, id string) (*models.MasterActivity, error) {
	query := fmt.Sprintf(`SELECT %s
FROM master_activities ma
LEFT JOIN users u ON u.id = ma.created_by
WHERE ma.id = $1`, masterActivityColumns)
	var master models.MasterActivity
	if err := r.db.GetContext(ctx, &master, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find master activity: %w", err)
	}
	return &master, nil
}

// ListActiveIDs returns active master IDs in materialization order.
func (r *MasterActivityRepository) ListActiveIDs(ctx context.Context) ([]string, error) {
	const query = `SELECT id FROM master_activities WHERE active = TRUE ORDER BY created_at ASC, id ASC`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query); err != nil {
		return nil, fmt.Errorf("list active master activities: %w", err)
	}
	return ids, nil
}

// Create inserts a master activity and its occurrence for the given date in one transaction.
// The occurrence is appended after the date's existing rows.
func (r *MasterActivityRepository) Create(ctx context.Context, master *models.MasterActivity, date time.Time) error {
	now := time.Now().UTC()
	if master.ID == "" {
		master.ID = uuid.NewString()
	}
	master.Active = true
	master.CreatedAt = now
	master.UpdatedAt = now

	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		const insertMaster = `INSERT INTO master_activities (id, title, description, created_by, active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
		if _, err := tx.ExecContext(ctx, insertMaster, master.ID, master.Title, master.Description, master.CreatedBy, master.Active, master.CreatedAt, master.UpdatedAt); err != nil {
			return fmt.Errorf("insert master activity: %w", err)
		}

		const insertDaily = `INSERT INTO daily_activities (id, master_activity_id, activity_date, status, position, created_at, updated_at)
VALUES ($1, $2, $3, $4, (SELECT COUNT(*) FROM daily_activities WHERE activity_date = $3), $5, $5)
ON CONFLICT (master_activity_id, activity_date) DO NOTHING`
		if _, err := tx.ExecContext(ctx, insertDaily, uuid.NewString(), master.ID, date, models.ActivityStatusPending, now); err != nil {
			return fmt.Errorf("insert today's daily activity: %w", err)
		}
		return nil
	})
}

// Update replaces title and description.
func (r *MasterActivityRepository) Update(ctx context.Context, id, title string, description *string) error {
	const query = `UPDATE master_activities SET title = $2, description = $3, updated_at = $4 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, title, description, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update master activity: %w", err)
	}
	return requireAffected(res)
}

// SetActive toggles the soft-delete flag.
func (r *MasterActivityRepository) SetActive(ctx context.Context, id string, active bool) error {
	const query = `UPDATE master_activities SET active = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, active, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set master activity active: %w", err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
