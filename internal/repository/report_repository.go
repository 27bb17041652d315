package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/activity-tracker-api/internal/models"
)

// ReportRepository runs the read-only scans behind the report aggregator.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository constructs the repository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// ActivityRows returns daily activities with activity_date inside the filter window.
// A user filter keeps only activities that user has updated.
func (r *ReportRepository) ActivityRows(ctx context.Context, filter models.ReportFilter) ([]models.ReportActivityRow, error) {
	where := []string{"da.activity_date >= $1", "da.activity_date <= $2"}
	args := []interface{}{filter.From, filter.To}
	if filter.Status != nil {
		where = append(where, fmt.Sprintf("da.status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.UserID != "" {
		where = append(where, fmt.Sprintf("EXISTS (SELECT 1 FROM activity_updates au WHERE au.daily_activity_id = da.id AND au.user_id = $%d)", len(args)+1))
		args = append(args, filter.UserID)
	}
	query := fmt.Sprintf(`SELECT da.id AS daily_activity_id, da.master_activity_id, ma.title, da.activity_date, da.status
FROM daily_activities da
JOIN master_activities ma ON ma.id = da.master_activity_id
WHERE %s
ORDER BY da.activity_date ASC, da.position ASC, da.id ASC`, strings.Join(where, " AND "))

	var rows []models.ReportActivityRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("report activity rows: %w", err)
	}
	return rows, nil
}

// UpdateRows returns updates whose daily activity falls inside the filter window.
func (r *ReportRepository) UpdateRows(ctx context.Context, filter models.ReportFilter) ([]models.ReportUpdateRow, error) {
	where := []string{"da.activity_date >= $1", "da.activity_date <= $2"}
	args := []interface{}{filter.From, filter.To}
	if filter.Status != nil {
		where = append(where, fmt.Sprintf("da.status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.UserID != "" {
		where = append(where, fmt.Sprintf("au.user_id = $%d", len(args)+1))
		args = append(args, filter.UserID)
	}
	query := fmt.Sprintf(`SELECT au.daily_activity_id, au.user_id, au.status, da.activity_date
FROM activity_updates au
JOIN daily_activities da ON da.id = au.daily_activity_id
WHERE %s
ORDER BY da.activity_date ASC, au.created_at ASC`, strings.Join(where, " AND "))

	var rows []models.ReportUpdateRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("report update rows: %w", err)
	}
	return rows, nil
}
