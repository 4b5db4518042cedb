package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/rifqipratama/sibat/internal/domain/models"
)

// InsertActivity appends one audit entry.
func (s *Store) InsertActivity(ctx context.Context, entry models.ActivityLog) error {
	if _, err := s.db.ExecContext(ctx, s.q(
		`INSERT INTO activity_logs (user_id, action, target_type, target_id, details, ip_address, user_agent, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		entry.UserID, entry.Action, entry.TargetType, entry.TargetID, entry.Details, entry.IPAddress, entry.UserAgent, fmtTime(time.Now())); err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

// RecentActivity returns the latest audit entries with usernames joined in.
func (s *Store) RecentActivity(ctx context.Context, limit int) ([]models.ActivityLog, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, s.q(
		`SELECT al.id, al.user_id, COALESCE(u.username, ''), al.action, al.target_type, al.target_id, al.details, al.ip_address, al.user_agent, al.created_at
		 FROM activity_logs al
		 LEFT JOIN users u ON al.user_id = u.id
		 ORDER BY al.id DESC LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("recent activity: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []models.ActivityLog
	for rows.Next() {
		var (
			e         models.ActivityLog
			createdAt string
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.Username, &e.Action, &e.TargetType, &e.TargetID, &e.Details, &e.IPAddress, &e.UserAgent, &createdAt); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CountActions counts audit entries for one action within [from, to).
func (s *Store) CountActions(ctx context.Context, action string, from, to time.Time) (int, error) {
	row := s.db.QueryRowContext(ctx, s.q(
		`SELECT COUNT(*) FROM activity_logs WHERE action = ? AND created_at >= ? AND created_at < ?`),
		action, fmtTime(from), fmtTime(to))
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count actions: %w", err)
	}
	return n, nil
}
