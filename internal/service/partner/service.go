// Package partner manages recipient health facilities.
package partner

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rifqipratama/sibat/internal/domain/models"
)

var (
	// ErrInvalidType indicates the facility category is not in the enum.
	ErrInvalidType = errors.New("invalid partner type")
	// ErrInvalidCode indicates the short code is not alphanumeric.
	ErrInvalidCode = errors.New("partner code must be alphanumeric")
	// ErrInvalidProvince indicates the province code is not in the fixed table.
	ErrInvalidProvince = errors.New("invalid province code")
	// ErrMissingFields indicates a required field is empty.
	ErrMissingFields = errors.New("name, type, code and province are required")
)

// Store is the persistence surface the partner service needs.
type Store interface {
	CreatePartner(ctx context.Context, p models.Partner) (int64, error)
	GetPartner(ctx context.Context, id int64) (models.Partner, error)
	ListPartners(ctx context.Context) ([]models.Partner, error)
	ListPartnersByProvince(ctx context.Context, provinceCode string) ([]models.Partner, error)
	SetPartnerActive(ctx context.Context, id int64, active bool) error
}

// AuditRecorder appends best-effort activity entries.
type AuditRecorder interface {
	Record(ctx context.Context, actor models.User, action, targetType, targetID, details string)
}

// Service registers and manages partners.
type Service struct {
	store  Store
	audit  AuditRecorder
	logger *zap.Logger
}

// NewService wires a partner service instance.
func NewService(store Store, recorder AuditRecorder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, audit: recorder, logger: logger}
}

// Create validates and registers a new partner. The zero-count stock
// ledger is created in the same transaction by the store.
func (s *Service) Create(ctx context.Context, actor models.User, input models.NewPartnerInput) (models.Partner, error) {
	if input.Name == "" || input.Type == "" || input.Code == "" || input.ProvinceCode == "" {
		return models.Partner{}, ErrMissingFields
	}
	if !models.ValidPartnerType(input.Type) {
		return models.Partner{}, fmt.Errorf("%w: %q", ErrInvalidType, input.Type)
	}
	if !alphanumericCode(input.Code) {
		return models.Partner{}, fmt.Errorf("%w: %q", ErrInvalidCode, input.Code)
	}
	if _, ok := models.ProvinceByCode(input.ProvinceCode); !ok {
		return models.Partner{}, fmt.Errorf("%w: %q", ErrInvalidProvince, input.ProvinceCode)
	}

	p := models.Partner{
		Name:         input.Name,
		Type:         input.Type,
		Code:         strings.ToUpper(input.Code),
		ProvinceCode: input.ProvinceCode,
		Address:      input.Address,
		Phone:        input.Phone,
		Email:        input.Email,
		IsActive:     true,
		CreatedBy:    actor.ID,
	}

	id, err := s.store.CreatePartner(ctx, p)
	if err != nil {
		return models.Partner{}, err
	}
	p.ID = id
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt

	if s.audit != nil {
		s.audit.Record(ctx, actor, "create_partner", "partner", strconv.FormatInt(id, 10), p.Code)
	}
	s.logger.Info("partner created", zap.Int64("id", id), zap.String("code", p.Code))
	return p, nil
}

// ToggleStatus flips a partner between active and deactivated. Partners
// are never hard-deleted.
func (s *Service) ToggleStatus(ctx context.Context, actor models.User, id int64) (models.Partner, error) {
	p, err := s.store.GetPartner(ctx, id)
	if err != nil {
		return models.Partner{}, err
	}
	if err := s.store.SetPartnerActive(ctx, id, !p.IsActive); err != nil {
		return models.Partner{}, err
	}
	p.IsActive = !p.IsActive

	action := "deactivate_partner"
	if p.IsActive {
		action = "activate_partner"
	}
	if s.audit != nil {
		s.audit.Record(ctx, actor, action, "partner", strconv.FormatInt(id, 10), p.Code)
	}
	return p, nil
}

// Get fetches one partner.
func (s *Service) Get(ctx context.Context, id int64) (models.Partner, error) {
	return s.store.GetPartner(ctx, id)
}

// List returns every partner, newest first.
func (s *Service) List(ctx context.Context) ([]models.Partner, error) {
	return s.store.ListPartners(ctx)
}

// ListByProvince returns the active partners of one province.
func (s *Service) ListByProvince(ctx context.Context, provinceCode string) ([]models.Partner, error) {
	if _, ok := models.ProvinceByCode(provinceCode); !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidProvince, provinceCode)
	}
	return s.store.ListPartnersByProvince(ctx, provinceCode)
}

// alphanumericCode accepts letters and digits; dashes and underscores are
// allowed as separators.
func alphanumericCode(code string) bool {
	stripped := strings.Map(func(r rune) rune {
		if r == '-' || r == '_' {
			return -1
		}
		return r
	}, code)
	if stripped == "" {
		return false
	}
	for _, r := range stripped {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		default:
			return false
		}
	}
	return true
}
