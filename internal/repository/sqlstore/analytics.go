package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/rifqipratama/sibat/internal/domain/models"
)

// StatusCounts tallies protocols per status created within [from, to).
func (s *Store) StatusCounts(ctx context.Context, from, to time.Time) (models.DashboardStats, error) {
	rows, err := s.db.QueryContext(ctx, s.q(
		`SELECT status, COUNT(*) FROM protocols
		 WHERE created_at >= ? AND created_at < ?
		 GROUP BY status`), fmtTime(from), fmtTime(to))
	if err != nil {
		return models.DashboardStats{}, fmt.Errorf("status counts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var stats models.DashboardStats
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return models.DashboardStats{}, fmt.Errorf("scan status count: %w", err)
		}
		stats.Total += count
		switch models.ProtocolStatus(status) {
		case models.StatusCreated:
			stats.Created = count
		case models.StatusDelivered:
			stats.Delivered = count
		case models.StatusUsed:
			stats.Used = count
		}
	}
	return stats, rows.Err()
}

// TopProvinces ranks provinces by protocols created within [from, to).
func (s *Store) TopProvinces(ctx context.Context, from, to time.Time, limit int) ([]models.ProvinceCount, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := s.db.QueryContext(ctx, s.q(
		`SELECT province_code, COUNT(*) AS n FROM protocols
		 WHERE created_at >= ? AND created_at < ?
		 GROUP BY province_code ORDER BY n DESC LIMIT ?`), fmtTime(from), fmtTime(to), limit)
	if err != nil {
		return nil, fmt.Errorf("top provinces: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.ProvinceCount
	for rows.Next() {
		var pc models.ProvinceCount
		if err := rows.Scan(&pc.ProvinceCode, &pc.Count); err != nil {
			return nil, fmt.Errorf("scan province count: %w", err)
		}
		if p, ok := models.ProvinceByCode(pc.ProvinceCode); ok {
			pc.Name = p.Name
		} else {
			pc.Name = pc.ProvinceCode
		}
		out = append(out, pc)
	}
	return out, rows.Err()
}

// DailyTrends groups protocol creation per day since the given time.
// Timestamps are RFC3339 text, so the first ten characters are the date.
func (s *Store) DailyTrends(ctx context.Context, since time.Time) ([]models.DailyTrend, error) {
	rows, err := s.db.QueryContext(ctx, s.q(
		`SELECT substr(created_at, 1, 10) AS day,
		        COUNT(*),
		        SUM(CASE WHEN status = 'created' THEN 1 ELSE 0 END),
		        SUM(CASE WHEN status = 'delivered' THEN 1 ELSE 0 END),
		        SUM(CASE WHEN status = 'terpakai' THEN 1 ELSE 0 END),
		        COUNT(DISTINCT partner_id)
		 FROM protocols
		 WHERE created_at >= ?
		 GROUP BY substr(created_at, 1, 10)
		 ORDER BY day DESC`), fmtTime(since))
	if err != nil {
		return nil, fmt.Errorf("daily trends: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var trends []models.DailyTrend
	for rows.Next() {
		var t models.DailyTrend
		if err := rows.Scan(&t.Date, &t.Total, &t.Created, &t.Delivered, &t.Used, &t.UniquePartners); err != nil {
			return nil, fmt.Errorf("scan daily trend: %w", err)
		}
		trends = append(trends, t)
	}
	return trends, rows.Err()
}

// PartnerPerformance ranks active partners with at least one protocol by
// distribution volume. Usage rates are derived by the caller-facing layer.
func (s *Store) PartnerPerformance(ctx context.Context, limit int) ([]models.PartnerPerformance, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, s.q(
		`SELECT pt.name, pt.type, pt.code, pt.province_code,
		        COUNT(p.id),
		        SUM(CASE WHEN p.status = 'terpakai' THEN 1 ELSE 0 END)
		 FROM partners pt
		 JOIN protocols p ON pt.id = p.partner_id
		 WHERE pt.is_active = 1
		 GROUP BY pt.id, pt.name, pt.type, pt.code, pt.province_code
		 ORDER BY COUNT(p.id) DESC
		 LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("partner performance: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.PartnerPerformance
	for rows.Next() {
		var pp models.PartnerPerformance
		if err := rows.Scan(&pp.PartnerName, &pp.PartnerType, &pp.PartnerCode, &pp.ProvinceCode, &pp.TotalProtocols, &pp.UsedProtocols); err != nil {
			return nil, fmt.Errorf("scan partner performance: %w", err)
		}
		out = append(out, pp)
	}
	return out, rows.Err()
}

// ProvincePerformance aggregates protocol outcomes per province.
func (s *Store) ProvincePerformance(ctx context.Context, limit int) ([]models.ProvincePerformance, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, s.q(
		`SELECT province_code,
		        COUNT(*),
		        SUM(CASE WHEN status = 'created' THEN 1 ELSE 0 END),
		        SUM(CASE WHEN status = 'delivered' THEN 1 ELSE 0 END),
		        SUM(CASE WHEN status = 'terpakai' THEN 1 ELSE 0 END),
		        COUNT(DISTINCT partner_id)
		 FROM protocols
		 GROUP BY province_code
		 ORDER BY COUNT(*) DESC
		 LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("province performance: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.ProvincePerformance
	for rows.Next() {
		var pp models.ProvincePerformance
		if err := rows.Scan(&pp.ProvinceCode, &pp.Count, &pp.Created, &pp.Delivered, &pp.Used, &pp.ActivePartners); err != nil {
			return nil, fmt.Errorf("scan province performance: %w", err)
		}
		out = append(out, pp)
	}
	return out, rows.Err()
}

// Metrics returns whole-history aggregate figures.
func (s *Store) Metrics(ctx context.Context) (models.AnalyticsMetrics, error) {
	row := s.db.QueryRowContext(ctx, s.q(
		`SELECT COUNT(id),
		        COUNT(DISTINCT province_code),
		        COUNT(DISTINCT partner_id),
		        COUNT(DISTINCT substr(created_at, 1, 10)),
		        COALESCE(SUM(CASE WHEN status = 'terpakai' THEN 1 ELSE 0 END), 0),
		        COALESCE(MIN(created_at), ''),
		        COALESCE(MAX(created_at), '')
		 FROM protocols`))

	var (
		m           models.AnalyticsMetrics
		activeDays  int
		usedTotal   int
		first, last string
	)
	if err := row.Scan(&m.TotalProtocols, &m.UniqueProvinces, &m.ActivePartners, &activeDays, &usedTotal, &first, &last); err != nil {
		return models.AnalyticsMetrics{}, fmt.Errorf("metrics: %w", err)
	}
	if activeDays > 0 {
		m.AvgPerDay = float64(m.TotalProtocols) / float64(activeDays)
	}
	if m.TotalProtocols > 0 {
		m.CompletionRate = float64(usedTotal) * 100 / float64(m.TotalProtocols)
	}
	m.FirstProtocol = parseTime(first)
	m.LatestProtocol = parseTime(last)
	return m, nil
}

// UpsertDailySnapshot writes or replaces the analytics_daily row for one date.
func (s *Store) UpsertDailySnapshot(ctx context.Context, snap models.DailySnapshot) error {
	if _, err := s.db.ExecContext(ctx, s.q(
		`INSERT INTO analytics_daily (date, total_protocols, created_count, delivered_count, terpakai_count, scan_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (date) DO UPDATE SET
		   total_protocols = excluded.total_protocols,
		   created_count = excluded.created_count,
		   delivered_count = excluded.delivered_count,
		   terpakai_count = excluded.terpakai_count,
		   scan_count = excluded.scan_count`),
		snap.Date, snap.TotalProtocols, snap.CreatedCount, snap.DeliveredCount, snap.UsedCount, snap.ScanCount, fmtTime(time.Now())); err != nil {
		return fmt.Errorf("upsert daily snapshot: %w", err)
	}
	return nil
}
