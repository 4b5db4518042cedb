package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rifqipratama/sibat/internal/domain/models"
)

// CreatePartner inserts a partner together with its zero-count stock
// ledger in one transaction and returns the new partner id.
func (s *Store) CreatePartner(ctx context.Context, p models.Partner) (int64, error) {
	now := fmtTime(time.Now())
	var id int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, s.q(
			`INSERT INTO partners (name, type, code, province_code, address, phone, email, is_active, created_at, updated_at, created_by)
			 VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?, ?, ?) RETURNING id`),
			p.Name, string(p.Type), p.Code, p.ProvinceCode, p.Address, p.Phone, p.Email, now, now, p.CreatedBy)
		if err := row.Scan(&id); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("partner code %s: %w", p.Code, ErrDuplicate)
			}
			return fmt.Errorf("insert partner: %w", err)
		}
		if _, err := tx.ExecContext(ctx, s.q(
			`INSERT INTO stock_tracking (partner_id, total_allocated, total_used, total_available, last_updated)
			 VALUES (?, 0, 0, 0, ?)`), id, now); err != nil {
			return fmt.Errorf("init stock tracking: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// GetPartner fetches one partner by id.
func (s *Store) GetPartner(ctx context.Context, id int64) (models.Partner, error) {
	row := s.db.QueryRowContext(ctx, s.q(
		`SELECT id, name, type, code, province_code, address, phone, email, is_active, created_at, updated_at, created_by
		 FROM partners WHERE id = ?`), id)
	return scanPartner(row)
}

// ListPartners returns every partner, newest first.
func (s *Store) ListPartners(ctx context.Context) ([]models.Partner, error) {
	rows, err := s.db.QueryContext(ctx, s.q(
		`SELECT id, name, type, code, province_code, address, phone, email, is_active, created_at, updated_at, created_by
		 FROM partners ORDER BY created_at DESC`))
	if err != nil {
		return nil, fmt.Errorf("list partners: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var partners []models.Partner
	for rows.Next() {
		p, err := scanPartner(rows)
		if err != nil {
			return nil, err
		}
		partners = append(partners, p)
	}
	return partners, rows.Err()
}

// ListPartnersByProvince returns the active partners of one province,
// ordered by name.
func (s *Store) ListPartnersByProvince(ctx context.Context, provinceCode string) ([]models.Partner, error) {
	rows, err := s.db.QueryContext(ctx, s.q(
		`SELECT id, name, type, code, province_code, address, phone, email, is_active, created_at, updated_at, created_by
		 FROM partners WHERE province_code = ? AND is_active = 1 ORDER BY name`), provinceCode)
	if err != nil {
		return nil, fmt.Errorf("list partners by province: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var partners []models.Partner
	for rows.Next() {
		p, err := scanPartner(rows)
		if err != nil {
			return nil, err
		}
		partners = append(partners, p)
	}
	return partners, rows.Err()
}

// SetPartnerActive flips the soft-delete flag.
func (s *Store) SetPartnerActive(ctx context.Context, id int64, active bool) error {
	flag := 0
	if active {
		flag = 1
	}
	res, err := s.db.ExecContext(ctx, s.q(
		`UPDATE partners SET is_active = ?, updated_at = ? WHERE id = ?`), flag, fmtTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("update partner status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("partner %d: %w", id, ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPartner(row rowScanner) (models.Partner, error) {
	var (
		p                    models.Partner
		ptype                string
		active               int
		createdAt, updatedAt string
	)
	err := row.Scan(&p.ID, &p.Name, &ptype, &p.Code, &p.ProvinceCode, &p.Address, &p.Phone, &p.Email, &active, &createdAt, &updatedAt, &p.CreatedBy)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Partner{}, fmt.Errorf("partner: %w", ErrNotFound)
	}
	if err != nil {
		return models.Partner{}, fmt.Errorf("scan partner: %w", err)
	}
	p.Type = models.PartnerType(ptype)
	p.IsActive = active == 1
	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updatedAt)
	return p, nil
}
