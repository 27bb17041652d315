package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/activity-tracker-api/internal/dto"
	"github.com/noah-isme/activity-tracker-api/internal/models"
	appErrors "github.com/noah-isme/activity-tracker-api/pkg/errors"
	"github.com/noah-isme/activity-tracker-api/pkg/export"
)

type reportRepository interface {
	ActivityRows(ctx context.Context, filter models.ReportFilter) ([]models.ReportActivityRow, error)
	UpdateRows(ctx context.Context, filter models.ReportFilter) ([]models.ReportUpdateRow, error)
}

type reportUserLister interface {
	ListActive(ctx context.Context) ([]models.User, error)
}

// ReportConfig tunes report windows and caching.
type ReportConfig struct {
	MaxRangeDays int
	DefaultDays  int
	CacheTTL     time.Duration
}

// ReportService aggregates completion statistics over a date window.
type ReportService struct {
	repo   reportRepository
	users  reportUserLister
	cache  *CacheService
	logger *zap.Logger
	cfg    ReportConfig
}

// ReportFile is a rendered export ready to stream.
type ReportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// NewReportService constructs the service.
func NewReportService(repo reportRepository, users reportUserLister, cache *CacheService, logger *zap.Logger, cfg ReportConfig) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxRangeDays <= 0 {
		cfg.MaxRangeDays = 366
	}
	if cfg.DefaultDays <= 0 {
		cfg.DefaultDays = 7
	}
	return &ReportService{repo: repo, users: users, cache: cache, logger: logger, cfg: cfg}
}

// Aggregate computes the report for the requested window. Missing bounds default
// to the week ending today. The flag reports whether the result came from cache.
func (s *ReportService) Aggregate(ctx context.Context, req dto.ReportRequest, today time.Time) (*dto.ReportResponse, bool, error) {
	filter, err := s.resolveFilter(req, today)
	if err != nil {
		return nil, false, err
	}

	key := cacheKey(filter)
	var cached dto.ReportResponse
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, true, nil
	}

	report, err := s.build(ctx, filter)
	if err != nil {
		return nil, false, err
	}
	_ = s.cache.Set(ctx, key, report, s.cfg.CacheTTL)
	return report, false, nil
}

// Export renders the report as csv, pdf or xlsx.
func (s *ReportService) Export(ctx context.Context, req dto.ReportRequest, format string, today time.Time) (*ReportFile, error) {
	renderer, err := export.RendererFor(export.Format(strings.ToLower(strings.TrimSpace(format))))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnsupportedFormat.Code, appErrors.ErrUnsupportedFormat.Status, "unsupported export format")
	}
	report, _, err := s.Aggregate(ctx, req, today)
	if err != nil {
		return nil, err
	}

	doc := reportDocument(report)
	body, err := renderer.Render(doc)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
	}
	s.logger.Info("report exported",
		zap.String("format", renderer.Extension()),
		zap.String("from", report.Filters.From),
		zap.String("to", report.Filters.To),
		zap.Int("bytes", len(body)),
	)
	return &ReportFile{
		Filename:    fmt.Sprintf("activity-report_%s_%s.%s", report.Filters.From, report.Filters.To, renderer.Extension()),
		ContentType: renderer.ContentType(),
		Body:        body,
	}, nil
}

func (s *ReportService) resolveFilter(req dto.ReportRequest, today time.Time) (models.ReportFilter, error) {
	fields := map[string]string{}
	to := DateOnly(today)
	if strings.TrimSpace(req.To) != "" {
		parsed, err := ParseDate(req.To)
		if err != nil {
			fields["end_date"] = "must be YYYY-MM-DD"
		}
		to = parsed
	}
	from := to.AddDate(0, 0, -s.cfg.DefaultDays)
	if strings.TrimSpace(req.From) != "" {
		parsed, err := ParseDate(req.From)
		if err != nil {
			fields["start_date"] = "must be YYYY-MM-DD"
		}
		from = parsed
	}

	filter := models.ReportFilter{From: from, To: to, UserID: strings.TrimSpace(req.UserID)}
	if filter.UserID != "" && !validID(filter.UserID) {
		fields["user_id"] = "must be a valid id"
	}
	if req.Status != nil && strings.TrimSpace(*req.Status) != "" {
		status := models.ActivityStatus(strings.TrimSpace(*req.Status))
		if !status.Valid() {
			fields["status"] = "must be one of pending, in_progress, done"
		}
		filter.Status = &status
	}
	if len(fields) == 0 {
		if from.After(to) {
			fields["start_date"] = "must not be after end_date"
		} else if days := daysBetween(from, to); days > s.cfg.MaxRangeDays {
			fields["end_date"] = fmt.Sprintf("range must not exceed %d days", s.cfg.MaxRangeDays)
		}
	}
	if len(fields) > 0 {
		return models.ReportFilter{}, appErrors.Validation("invalid report filters", fields)
	}
	return filter, nil
}

func (s *ReportService) build(ctx context.Context, filter models.ReportFilter) (*dto.ReportResponse, error) {
	activities, err := s.repo.ActivityRows(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report activities")
	}
	updates, err := s.repo.UpdateRows(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report updates")
	}
	users, err := s.users.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load team members")
	}
	if filter.UserID != "" {
		users = filterUsers(users, filter.UserID)
	}
	return aggregateReport(filter, activities, updates, users), nil
}

// aggregateReport is the pure aggregation over the scanned rows.
func aggregateReport(filter models.ReportFilter, activities []models.ReportActivityRow, updates []models.ReportUpdateRow, users []models.User) *dto.ReportResponse {
	days := daysBetween(filter.From, filter.To)
	report := &dto.ReportResponse{
		Filters: dto.ReportFilters{
			From:   filter.From.Format(models.DateLayout),
			To:     filter.To.Format(models.DateLayout),
			UserID: filter.UserID,
		},
		StatusDistribution: make(map[string]int, len(models.ActivityStatuses)),
		TeamPerformance:    make([]dto.TeamPerformanceRow, 0, len(users)),
		ActivityBreakdown:  []dto.ActivityBreakdownRow{},
		DailyTrend:         make([]dto.DailyTrendBucket, 0, days),
	}
	if filter.Status != nil {
		status := string(*filter.Status)
		report.Filters.Status = &status
	}
	for _, status := range models.ActivityStatuses {
		report.StatusDistribution[string(status)] = 0
	}

	trendIndex := make(map[string]int, days)
	for i := 0; i < days; i++ {
		day := filter.From.AddDate(0, 0, i)
		key := day.Format(models.DateLayout)
		trendIndex[key] = i
		report.DailyTrend = append(report.DailyTrend, dto.DailyTrendBucket{Date: key, Label: day.Format("Jan 2")})
	}

	masterOf := make(map[string]string, len(activities))
	breakdown := map[string]*dto.ActivityBreakdownRow{}
	for _, a := range activities {
		masterOf[a.DailyActivityID] = a.MasterActivityID
		done := a.Status == models.ActivityStatusDone

		report.Stats.TotalActivities++
		report.StatusDistribution[string(a.Status)]++
		if done {
			report.Stats.CompletedActivities++
		}

		row, ok := breakdown[a.MasterActivityID]
		if !ok {
			row = &dto.ActivityBreakdownRow{MasterActivityID: a.MasterActivityID, Title: a.Title}
			breakdown[a.MasterActivityID] = row
		}
		row.TotalActivities++
		if done {
			row.CompletedActivities++
		}

		if i, ok := trendIndex[a.ActivityDate.Format(models.DateLayout)]; ok {
			report.DailyTrend[i].Total++
			if done {
				report.DailyTrend[i].Completed++
			}
		}
	}

	perUser := map[string]*dto.TeamPerformanceRow{}
	for _, u := range users {
		perUser[u.ID] = &dto.TeamPerformanceRow{
			UserID:     u.ID,
			Name:       u.Name,
			Position:   u.Position,
			Department: u.Department,
			Avatar:     avatarInitials(u.Name),
		}
	}
	for _, u := range updates {
		done := u.Status == models.ActivityStatusDone
		report.Stats.TotalUpdates++
		if done {
			report.Stats.CompletedUpdates++
		}
		if row, ok := perUser[u.UserID]; ok {
			row.TotalUpdates++
			if done {
				row.CompletedUpdates++
			}
		}
		if masterID, ok := masterOf[u.DailyActivityID]; ok {
			breakdown[masterID].TotalUpdates++
		}
		if i, ok := trendIndex[u.ActivityDate.Format(models.DateLayout)]; ok {
			report.DailyTrend[i].Updates++
		}
	}

	report.Stats.CompletionRate = rate(report.Stats.CompletedActivities, report.Stats.TotalActivities)
	if days > 0 {
		report.Stats.AvgDailyUpdates = round(float64(report.Stats.TotalUpdates)/float64(days), 1)
	}

	for _, u := range users {
		row := perUser[u.ID]
		row.CompletionRate = rate(row.CompletedUpdates, row.TotalUpdates)
		report.TeamPerformance = append(report.TeamPerformance, *row)
	}
	sort.SliceStable(report.TeamPerformance, func(i, j int) bool {
		a, b := report.TeamPerformance[i], report.TeamPerformance[j]
		if a.CompletionRate != b.CompletionRate {
			return a.CompletionRate > b.CompletionRate
		}
		return a.Name < b.Name
	})

	for _, row := range breakdown {
		row.CompletionRate = rate(row.CompletedActivities, row.TotalActivities)
		report.ActivityBreakdown = append(report.ActivityBreakdown, *row)
	}
	sort.Slice(report.ActivityBreakdown, func(i, j int) bool {
		a, b := report.ActivityBreakdown[i], report.ActivityBreakdown[j]
		if a.TotalActivities != b.TotalActivities {
			return a.TotalActivities > b.TotalActivities
		}
		if a.Title != b.Title {
			return a.Title < b.Title
		}
		return a.MasterActivityID < b.MasterActivityID
	})

	for i := range report.DailyTrend {
		report.DailyTrend[i].CompletionRate = rate(report.DailyTrend[i].Completed, report.DailyTrend[i].Total)
	}
	return report
}

func reportDocument(report *dto.ReportResponse) export.Document {
	summary := export.Dataset{
		Name:    "Summary",
		Headers: []string{"Metric", "Value"},
		Rows: []map[string]string{
			{"Metric": "Period", "Value": report.Filters.From + " to " + report.Filters.To},
			{"Metric": "Total activities", "Value": fmt.Sprint(report.Stats.TotalActivities)},
			{"Metric": "Completed activities", "Value": fmt.Sprint(report.Stats.CompletedActivities)},
			{"Metric": "Total updates", "Value": fmt.Sprint(report.Stats.TotalUpdates)},
			{"Metric": "Completed updates", "Value": fmt.Sprint(report.Stats.CompletedUpdates)},
			{"Metric": "Completion rate (%)", "Value": formatRate(report.Stats.CompletionRate)},
			{"Metric": "Average daily updates", "Value": fmt.Sprintf("%.1f", report.Stats.AvgDailyUpdates)},
		},
	}

	team := export.Dataset{Name: "Team Performance", Headers: []string{"Name", "Department", "Total Updates", "Completed", "Completion Rate (%)"}}
	for _, row := range report.TeamPerformance {
		team.Rows = append(team.Rows, map[string]string{
			"Name":                row.Name,
			"Department":          deref(row.Department),
			"Total Updates":       fmt.Sprint(row.TotalUpdates),
			"Completed":           fmt.Sprint(row.CompletedUpdates),
			"Completion Rate (%)": formatRate(row.CompletionRate),
		})
	}

	activities := export.Dataset{Name: "Activity Breakdown", Headers: []string{"Activity", "Occurrences", "Completed", "Updates", "Completion Rate (%)"}}
	for _, row := range report.ActivityBreakdown {
		activities.Rows = append(activities.Rows, map[string]string{
			"Activity":            row.Title,
			"Occurrences":         fmt.Sprint(row.TotalActivities),
			"Completed":           fmt.Sprint(row.CompletedActivities),
			"Updates":             fmt.Sprint(row.TotalUpdates),
			"Completion Rate (%)": formatRate(row.CompletionRate),
		})
	}

	trend := export.Dataset{Name: "Daily Trend", Headers: []string{"Date", "Total", "Completed", "Updates", "Completion Rate (%)"}}
	for _, bucket := range report.DailyTrend {
		trend.Rows = append(trend.Rows, map[string]string{
			"Date":                bucket.Date,
			"Total":               fmt.Sprint(bucket.Total),
			"Completed":           fmt.Sprint(bucket.Completed),
			"Updates":             fmt.Sprint(bucket.Updates),
			"Completion Rate (%)": formatRate(bucket.CompletionRate),
		})
	}

	return export.Document{
		Title:    fmt.Sprintf("Activity Report %s - %s", report.Filters.From, report.Filters.To),
		Datasets: []export.Dataset{summary, team, activities, trend},
	}
}

func cacheKey(filter models.ReportFilter) string {
	status := "all"
	if filter.Status != nil {
		status = string(*filter.Status)
	}
	user := filter.UserID
	if user == "" {
		user = "all"
	}
	return fmt.Sprintf("%s%s:%s:%s:%s", reportCachePrefix, filter.From.Format(models.DateLayout), filter.To.Format(models.DateLayout), user, status)
}

// daysBetween counts calendar days in [from, to].
func daysBetween(from, to time.Time) int {
	if to.Before(from) {
		return 0
	}
	return int(to.Sub(from).Hours()/24) + 1
}

func rate(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return round(float64(part)/float64(total)*100, 2)
}

func round(value float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(value*scale) / scale
}

func formatRate(value float64) string {
	return fmt.Sprintf("%.2f", value)
}

// avatarInitials returns the first two letters of the name, upper-cased.
func avatarInitials(name string) string {
	runes := []rune(strings.TrimSpace(name))
	if len(runes) > 2 {
		runes = runes[:2]
	}
	return strings.ToUpper(string(runes))
}

func filterUsers(users []models.User, id string) []models.User {
	for _, u := range users {
		if u.ID == id {
			return []models.User{u}
		}
	}
	return []models.User{}
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
