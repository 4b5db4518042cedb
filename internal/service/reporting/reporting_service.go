// Package reporting aggregates stock and distribution analytics for the
// dashboard and the nightly snapshot.
package reporting

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/rifqipratama/sibat/internal/domain/models"
	"github.com/rifqipratama/sibat/internal/repository/sheets"
)

const (
	dateLayout      = "2006-01-02"
	stockSheetRange = "Stock!A:F"
	trendDays       = 30
)

// Period selects the dashboard reporting window.
type Period string

const (
	PeriodToday  Period = "today"
	PeriodWeek   Period = "week"
	PeriodMonth  Period = "month"
	PeriodCustom Period = "custom"
)

// Store is the persistence surface the reporting service reads from.
type Store interface {
	StockSummary(ctx context.Context) (models.StockSummary, error)
	PartnerStock(ctx context.Context) ([]models.StockRecord, error)
	StatusCounts(ctx context.Context, from, to time.Time) (models.DashboardStats, error)
	TopProvinces(ctx context.Context, from, to time.Time, limit int) ([]models.ProvinceCount, error)
	DailyTrends(ctx context.Context, since time.Time) ([]models.DailyTrend, error)
	PartnerPerformance(ctx context.Context, limit int) ([]models.PartnerPerformance, error)
	ProvincePerformance(ctx context.Context, limit int) ([]models.ProvincePerformance, error)
	Metrics(ctx context.Context) (models.AnalyticsMetrics, error)
	UpsertDailySnapshot(ctx context.Context, snap models.DailySnapshot) error
	CountActions(ctx context.Context, action string, from, to time.Time) (int, error)
}

// Service exposes stock and analytics reads plus the daily snapshot job.
type Service struct {
	store    Store
	exporter sheets.Exporter
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires a reporting service. The exporter may be nil when the
// Google Sheets export is not configured.
func NewService(store Store, exporter sheets.Exporter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, exporter: exporter, logger: logger, now: time.Now}
}

// StockSummary sums the ledgers of all active partners.
func (s *Service) StockSummary(ctx context.Context) (models.StockSummary, error) {
	return s.store.StockSummary(ctx)
}

// PartnerStock returns the per-partner ledger rows.
func (s *Service) PartnerStock(ctx context.Context) ([]models.StockRecord, error) {
	return s.store.PartnerStock(ctx)
}

// Window resolves a reporting period to a half-open [from, to) range.
// Custom periods take explicit start/end dates (end inclusive).
func (s *Service) Window(period Period, startDate, endDate string) (time.Time, time.Time, error) {
	return WindowAt(s.now(), period, startDate, endDate)
}

// WindowAt is Window anchored at an explicit reference time.
func WindowAt(now time.Time, period Period, startDate, endDate string) (time.Time, time.Time, error) {
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	switch period {
	case PeriodWeek:
		weekStart := today.AddDate(0, 0, -int(today.Weekday()))
		return weekStart, today.AddDate(0, 0, 1), nil
	case PeriodMonth:
		monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
		return monthStart, today.AddDate(0, 0, 1), nil
	case PeriodCustom:
		start, err := time.Parse(dateLayout, startDate)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid start_date %q: %w", startDate, err)
		}
		end, err := time.Parse(dateLayout, endDate)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid end_date %q: %w", endDate, err)
		}
		return start, end.AddDate(0, 0, 1), nil
	case PeriodToday, "":
		return today, today.AddDate(0, 0, 1), nil
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("unknown period %q", period)
	}
}

// DashboardStats summarizes protocols within the window plus the top-5
// provinces by volume.
func (s *Service) DashboardStats(ctx context.Context, from, to time.Time) (models.DashboardStats, error) {
	stats, err := s.store.StatusCounts(ctx, from, to)
	if err != nil {
		return models.DashboardStats{}, err
	}
	top, err := s.store.TopProvinces(ctx, from, to, 5)
	if err != nil {
		return models.DashboardStats{}, err
	}
	stats.TopProvinces = top
	return stats, nil
}

// Analytics bundles trends, performance rankings and aggregate metrics
// for the analytics page.
func (s *Service) Analytics(ctx context.Context) (models.Analytics, error) {
	since := s.now().UTC().AddDate(0, 0, -trendDays)

	trends, err := s.store.DailyTrends(ctx, since)
	if err != nil {
		return models.Analytics{}, err
	}
	partners, err := s.store.PartnerPerformance(ctx, 10)
	if err != nil {
		return models.Analytics{}, err
	}
	for i := range partners {
		partners[i].UsageRate = rate(partners[i].UsedProtocols, partners[i].TotalProtocols)
	}
	provinces, err := s.store.ProvincePerformance(ctx, 10)
	if err != nil {
		return models.Analytics{}, err
	}
	for i := range provinces {
		provinces[i].UsageRate = rate(provinces[i].Used, provinces[i].Count)
	}
	metrics, err := s.store.Metrics(ctx)
	if err != nil {
		return models.Analytics{}, err
	}

	return models.Analytics{
		DailyTrends:         trends,
		PartnerPerformance:  partners,
		ProvincePerformance: provinces,
		Metrics:             metrics,
	}, nil
}

// SnapshotDaily persists the analytics_daily row for the given day and,
// when an exporter is configured, appends the stock summary to the sheet.
func (s *Service) SnapshotDaily(ctx context.Context, day time.Time) error {
	day = day.UTC()
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	stats, err := s.store.StatusCounts(ctx, from, to)
	if err != nil {
		return err
	}
	scans, err := s.store.CountActions(ctx, "scan_confirm", from, to)
	if err != nil {
		return err
	}

	snap := models.DailySnapshot{
		Date:           from.Format(dateLayout),
		TotalProtocols: stats.Total,
		CreatedCount:   stats.Created,
		DeliveredCount: stats.Delivered,
		UsedCount:      stats.Used,
		ScanCount:      scans,
	}
	if err := s.store.UpsertDailySnapshot(ctx, snap); err != nil {
		return err
	}

	if s.exporter == nil {
		return nil
	}
	summary, err := s.store.StockSummary(ctx)
	if err != nil {
		return err
	}
	values := []interface{}{
		snap.Date,
		summary.TotalAllocated,
		summary.TotalUsed,
		summary.TotalAvailable,
		summary.ActivePartners,
		snap.ScanCount,
	}
	if err := s.exporter.AppendRow(ctx, stockSheetRange, values); err != nil {
		// The snapshot row is already committed; the export retries tomorrow.
		s.logger.Warn("stock sheet export failed", zap.Error(err))
	}
	return nil
}

func rate(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)*10000/float64(total)) / 100
}
