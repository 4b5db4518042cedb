package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rifqipratama/sibat/internal/domain/models"
)

// GetStock returns the ledger row of one partner.
func (s *Store) GetStock(ctx context.Context, partnerID int64) (models.StockRecord, error) {
	row := s.db.QueryRowContext(ctx, s.q(
		`SELECT id, partner_id, total_allocated, total_used, total_available, last_updated
		 FROM stock_tracking WHERE partner_id = ?`), partnerID)

	var (
		rec     models.StockRecord
		updated string
	)
	err := row.Scan(&rec.ID, &rec.PartnerID, &rec.TotalAllocated, &rec.TotalUsed, &rec.TotalAvailable, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return models.StockRecord{}, fmt.Errorf("stock ledger for partner %d: %w", partnerID, ErrNotFound)
	}
	if err != nil {
		return models.StockRecord{}, fmt.Errorf("scan stock: %w", err)
	}
	rec.LastUpdated = parseTime(updated)
	return rec, nil
}

// PartnerStock returns the ledger of every active partner, ordered by
// partner name.
func (s *Store) PartnerStock(ctx context.Context) ([]models.StockRecord, error) {
	rows, err := s.db.QueryContext(ctx, s.q(
		`SELECT st.id, st.partner_id, p.name, p.type, p.code, p.province_code,
		        st.total_allocated, st.total_used, st.total_available, st.last_updated
		 FROM stock_tracking st
		 JOIN partners p ON st.partner_id = p.id
		 WHERE p.is_active = 1
		 ORDER BY p.name`))
	if err != nil {
		return nil, fmt.Errorf("partner stock: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []models.StockRecord
	for rows.Next() {
		var (
			rec     models.StockRecord
			updated string
		)
		if err := rows.Scan(&rec.ID, &rec.PartnerID, &rec.PartnerName, &rec.PartnerType, &rec.PartnerCode, &rec.ProvinceCode,
			&rec.TotalAllocated, &rec.TotalUsed, &rec.TotalAvailable, &updated); err != nil {
			return nil, fmt.Errorf("scan stock row: %w", err)
		}
		rec.LastUpdated = parseTime(updated)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// StockSummary sums the ledgers of all active partners.
func (s *Store) StockSummary(ctx context.Context) (models.StockSummary, error) {
	row := s.db.QueryRowContext(ctx, s.q(
		`SELECT COALESCE(SUM(st.total_allocated), 0),
		        COALESCE(SUM(st.total_used), 0),
		        COALESCE(SUM(st.total_available), 0),
		        COUNT(*)
		 FROM stock_tracking st
		 JOIN partners p ON st.partner_id = p.id
		 WHERE p.is_active = 1`))

	var sum models.StockSummary
	if err := row.Scan(&sum.TotalAllocated, &sum.TotalUsed, &sum.TotalAvailable, &sum.ActivePartners); err != nil {
		return models.StockSummary{}, fmt.Errorf("stock summary: %w", err)
	}
	return sum, nil
}
