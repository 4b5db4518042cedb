// Package auth handles staff login, bearer sessions and user management.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/rifqipratama/sibat/internal/domain/models"
	"github.com/rifqipratama/sibat/internal/repository/sqlstore"
)

var (
	// ErrInvalidCredentials covers unknown usernames, wrong passwords and
	// deactivated accounts without distinguishing them to the caller.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrInvalidSession indicates a missing, expired or revoked token.
	ErrInvalidSession = errors.New("invalid or expired session")
	// ErrInvalidRole indicates an unknown role value.
	ErrInvalidRole = errors.New("invalid role")
	// ErrPasswordMismatch indicates the confirmation did not match.
	ErrPasswordMismatch = errors.New("passwords do not match")
	// ErrPasswordTooShort indicates a password under six characters.
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
)

const sessionTTL = 24 * time.Hour

// Session is an issued bearer token. Tokens are held server-side and
// die with the process.
type Session struct {
	Token     string      `json:"token"`
	UserID    int64       `json:"user_id"`
	Username  string      `json:"username"`
	FullName  string      `json:"full_name"`
	Role      models.Role `json:"role"`
	ExpiresAt time.Time   `json:"expires_at"`
}

type sessionEntry struct {
	userID    int64
	expiresAt time.Time
}

// Service authenticates staff and manages accounts.
type Service struct {
	store  *sqlstore.Store
	logger *zap.Logger
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]sessionEntry
}

// NewService wires an auth service instance.
func NewService(store *sqlstore.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:    store,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]sessionEntry),
	}
}

// EnsureDefaultAdmin seeds the admin account on first start so a fresh
// database is usable.
func (s *Service) EnsureDefaultAdmin(ctx context.Context, password string) error {
	if _, err := s.store.GetUserByUsername(ctx, "admin"); err == nil {
		return nil
	} else if !errors.Is(err, sqlstore.ErrNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	_, err = s.store.CreateUser(ctx, models.User{
		Username:     "admin",
		Email:        "admin@system.local",
		PasswordHash: string(hash),
		FullName:     "System Administrator",
		Role:         models.RoleAdmin,
	})
	if err != nil {
		return fmt.Errorf("seed admin user: %w", err)
	}
	s.logger.Info("default admin account created")
	return nil
}

// Login verifies credentials against active accounts and issues a token.
func (s *Service) Login(ctx context.Context, username, password string) (Session, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sqlstore.ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, err
	}
	if !user.IsActive {
		return Session{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return Session{}, ErrInvalidCredentials
	}

	if err := s.store.TouchLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn("failed to stamp last login", zap.Int64("user_id", user.ID), zap.Error(err))
	}

	token, err := newToken()
	if err != nil {
		return Session{}, err
	}
	expires := s.now().Add(sessionTTL)

	s.mu.Lock()
	s.sessions[token] = sessionEntry{userID: user.ID, expiresAt: expires}
	s.mu.Unlock()

	return Session{
		Token:     token,
		UserID:    user.ID,
		Username:  user.Username,
		FullName:  user.FullName,
		Role:      user.Role,
		ExpiresAt: expires,
	}, nil
}

// Authenticate resolves a bearer token to its user, re-checking the
// account is still active.
func (s *Service) Authenticate(ctx context.Context, token string) (models.User, error) {
	s.mu.Lock()
	entry, ok := s.sessions[token]
	if ok && s.now().After(entry.expiresAt) {
		delete(s.sessions, token)
		ok = false
	}
	s.mu.Unlock()
	if !ok {
		return models.User{}, ErrInvalidSession
	}

	user, err := s.store.GetUser(ctx, entry.userID)
	if err != nil || !user.IsActive {
		s.Logout(token)
		return models.User{}, ErrInvalidSession
	}
	return user, nil
}

// Logout revokes a token.
func (s *Service) Logout(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// CreateUser registers a staff account (admin only, enforced by the
// HTTP layer).
func (s *Service) CreateUser(ctx context.Context, actor models.User, input models.NewUserInput) (models.User, error) {
	if input.Password != input.ConfirmPassword {
		return models.User{}, ErrPasswordMismatch
	}
	if len(input.Password) < 6 {
		return models.User{}, ErrPasswordTooShort
	}
	if !models.ValidRole(input.Role) {
		return models.User{}, fmt.Errorf("%w: %q", ErrInvalidRole, input.Role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hash),
		FullName:     input.FullName,
		Role:         input.Role,
		IsActive:     true,
		CreatedBy:    actor.ID,
	}
	id, err := s.store.CreateUser(ctx, user)
	if err != nil {
		return models.User{}, err
	}
	user.ID = id
	return user, nil
}

// ListUsers returns every account.
func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.store.ListUsers(ctx)
}

// ToggleUserStatus flips an account between active and deactivated.
func (s *Service) ToggleUserStatus(ctx context.Context, id int64) (models.User, error) {
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	if err := s.store.SetUserActive(ctx, id, !user.IsActive); err != nil {
		return models.User{}, err
	}
	user.IsActive = !user.IsActive
	return user, nil
}

// ResetPassword assigns a random password to the account and returns it
// once; only the bcrypt hash is stored.
func (s *Service) ResetPassword(ctx context.Context, id int64) (string, error) {
	if _, err := s.store.GetUser(ctx, id); err != nil {
		return "", err
	}

	password, err := randomPassword(10)
	if err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	if err := s.store.UpdateUserPassword(ctx, id, string(hash)); err != nil {
		return "", err
	}
	s.logger.Info("password reset", zap.String("user_id", strconv.FormatInt(id, 10)))
	return password, nil
}

func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

const passwordAlphabet = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func randomPassword(length int) (string, error) {
	out := make([]byte, length)
	max := big.NewInt(int64(len(passwordAlphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate password: %w", err)
		}
		out[i] = passwordAlphabet[n.Int64()]
	}
	return string(out), nil
}
