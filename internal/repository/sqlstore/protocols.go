package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rifqipratama/sibat/internal/domain/models"
)

// CreateProtocolBatch inserts every row of a batch and increments the
// owning partner's ledger inside a single transaction. Any failure,
// including a code collision, rolls back the whole batch so the ledger
// is never partially incremented.
func (s *Store) CreateProtocolBatch(ctx context.Context, batch []models.Protocol) error {
	if len(batch) == 0 {
		return nil
	}
	partnerID := batch[0].PartnerID
	qty := len(batch)

	return s.withTx(ctx, func(tx *sql.Tx) error {
		insert := s.q(
			`INSERT INTO protocols (code, province_code, partner_id, status, created_at, created_by, updated_by)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`)
		for _, p := range batch {
			if _, err := tx.ExecContext(ctx, insert,
				p.Code, p.ProvinceCode, p.PartnerID, string(p.Status), fmtTime(p.CreatedAt), p.CreatedBy, p.CreatedBy); err != nil {
				if isUniqueViolation(err) {
					return fmt.Errorf("protocol code %s: %w", p.Code, ErrDuplicate)
				}
				return fmt.Errorf("insert protocol: %w", err)
			}
		}
		// Relative update so concurrent batches cannot lose increments.
		res, err := tx.ExecContext(ctx, s.q(
			`UPDATE stock_tracking
			 SET total_allocated = total_allocated + ?,
			     total_available = total_available + ?,
			     last_updated = ?
			 WHERE partner_id = ?`), qty, qty, fmtTime(time.Now()), partnerID)
		if err != nil {
			return fmt.Errorf("increment stock: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("stock ledger for partner %d: %w", partnerID, ErrNotFound)
		}
		return nil
	})
}

// UpdateProtocolStatus writes the new status and, when usedDelta is
// non-zero, applies the ledger delta in the same transaction. A failure
// of either write rolls back both.
func (s *Store) UpdateProtocolStatus(ctx context.Context, id int64, status models.ProtocolStatus, updatedBy int64, partnerID int64, usedDelta int) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, s.q(
			`UPDATE protocols SET status = ?, updated_by = ? WHERE id = ?`), string(status), updatedBy, id)
		if err != nil {
			return fmt.Errorf("update protocol status: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("protocol %d: %w", id, ErrNotFound)
		}

		if partnerID == 0 || usedDelta == 0 {
			return nil
		}
		if _, err := tx.ExecContext(ctx, s.q(
			`UPDATE stock_tracking
			 SET total_used = total_used + ?,
			     total_available = total_available - ?,
			     last_updated = ?
			 WHERE partner_id = ?`), usedDelta, usedDelta, fmtTime(time.Now()), partnerID); err != nil {
			return fmt.Errorf("apply stock delta: %w", err)
		}
		return nil
	})
}

const protocolColumns = `p.id, p.code, p.province_code, p.partner_id, p.status, p.created_at, p.created_by, p.updated_by,
	 COALESCE(pt.name, ''), COALESCE(pt.code, '')`

// GetProtocol fetches one protocol by id with its partner names joined in.
func (s *Store) GetProtocol(ctx context.Context, id int64) (models.Protocol, error) {
	row := s.db.QueryRowContext(ctx, s.q(
		`SELECT `+protocolColumns+`
		 FROM protocols p LEFT JOIN partners pt ON p.partner_id = pt.id
		 WHERE p.id = ?`), id)
	return scanProtocol(row)
}

// GetProtocolByCode fetches one protocol by its generated code.
func (s *Store) GetProtocolByCode(ctx context.Context, code string) (models.Protocol, error) {
	row := s.db.QueryRowContext(ctx, s.q(
		`SELECT `+protocolColumns+`
		 FROM protocols p LEFT JOIN partners pt ON p.partner_id = pt.id
		 WHERE p.code = ?`), code)
	return scanProtocol(row)
}

// ListProtocols returns protocols created within [from, to), newest
// first, capped at limit.
func (s *Store) ListProtocols(ctx context.Context, from, to time.Time, limit int) ([]models.Protocol, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, s.q(
		`SELECT `+protocolColumns+`
		 FROM protocols p LEFT JOIN partners pt ON p.partner_id = pt.id
		 WHERE p.created_at >= ? AND p.created_at < ?
		 ORDER BY p.id DESC LIMIT ?`), fmtTime(from), fmtTime(to), limit)
	if err != nil {
		return nil, fmt.Errorf("list protocols: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var protocols []models.Protocol
	for rows.Next() {
		p, err := scanProtocol(rows)
		if err != nil {
			return nil, err
		}
		protocols = append(protocols, p)
	}
	return protocols, rows.Err()
}

func scanProtocol(row rowScanner) (models.Protocol, error) {
	var (
		p         models.Protocol
		status    string
		createdAt string
	)
	err := row.Scan(&p.ID, &p.Code, &p.ProvinceCode, &p.PartnerID, &status, &createdAt, &p.CreatedBy, &p.UpdatedBy, &p.PartnerName, &p.PartnerCode)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Protocol{}, fmt.Errorf("protocol: %w", ErrNotFound)
	}
	if err != nil {
		return models.Protocol{}, fmt.Errorf("scan protocol: %w", err)
	}
	p.Status = models.ProtocolStatus(status)
	p.CreatedAt = parseTime(createdAt)
	return p, nil
}
