package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rifqipratama/sibat/internal/domain/models"
)

// CreateUser inserts a staff account and returns its id.
func (s *Store) CreateUser(ctx context.Context, u models.User) (int64, error) {
	var id int64
	row := s.db.QueryRowContext(ctx, s.q(
		`INSERT INTO users (username, email, password_hash, full_name, role, is_active, created_at, created_by)
		 VALUES (?, ?, ?, ?, ?, 1, ?, ?) RETURNING id`),
		u.Username, u.Email, u.PasswordHash, u.FullName, string(u.Role), fmtTime(time.Now()), u.CreatedBy)
	if err := row.Scan(&id); err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("username or email taken: %w", ErrDuplicate)
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}
	return id, nil
}

// GetUser fetches one account by id.
func (s *Store) GetUser(ctx context.Context, id int64) (models.User, error) {
	row := s.db.QueryRowContext(ctx, s.q(userSelect+` WHERE id = ?`), id)
	return scanUser(row)
}

// GetUserByUsername fetches one account by username.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	row := s.db.QueryRowContext(ctx, s.q(userSelect+` WHERE username = ?`), username)
	return scanUser(row)
}

// ListUsers returns every account, newest first.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, s.q(userSelect+` ORDER BY created_at DESC`))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// SetUserActive flips the account's active flag.
func (s *Store) SetUserActive(ctx context.Context, id int64, active bool) error {
	flag := 0
	if active {
		flag = 1
	}
	res, err := s.db.ExecContext(ctx, s.q(`UPDATE users SET is_active = ? WHERE id = ?`), flag, id)
	if err != nil {
		return fmt.Errorf("update user status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	return nil
}

// UpdateUserPassword replaces the stored bcrypt hash.
func (s *Store) UpdateUserPassword(ctx context.Context, id int64, hash string) error {
	res, err := s.db.ExecContext(ctx, s.q(`UPDATE users SET password_hash = ? WHERE id = ?`), hash, id)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	return nil
}

// TouchLastLogin stamps the account's last successful login.
func (s *Store) TouchLastLogin(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, s.q(`UPDATE users SET last_login = ? WHERE id = ?`), fmtTime(time.Now()), id); err != nil {
		return fmt.Errorf("touch last login: %w", err)
	}
	return nil
}

const userSelect = `SELECT id, username, email, password_hash, full_name, role, is_active, created_at, last_login, created_by FROM users`

func scanUser(row rowScanner) (models.User, error) {
	var (
		u                    models.User
		role                 string
		active               int
		createdAt, lastLogin string
	)
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FullName, &role, &active, &createdAt, &lastLogin, &u.CreatedBy)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, fmt.Errorf("user: %w", ErrNotFound)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("scan user: %w", err)
	}
	u.Role = models.Role(role)
	u.IsActive = active == 1
	u.CreatedAt = parseTime(createdAt)
	u.LastLogin = parseTime(lastLogin)
	return u, nil
}
