// Package protocol implements the code generation and status/stock engine
// for distributed kits.
package protocol

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rifqipratama/sibat/internal/domain/models"
	"github.com/rifqipratama/sibat/internal/events"
	"github.com/rifqipratama/sibat/internal/metrics"
	"github.com/rifqipratama/sibat/internal/service/audit"
)

// Batch size limits enforced before any generation happens.
const (
	MinBatchSize = 1
	MaxBatchSize = 100
)

var (
	// ErrInvalidProvince indicates the province code is not in the fixed table.
	ErrInvalidProvince = errors.New("invalid province code")
	// ErrInvalidQuantity indicates the batch size is outside [1, 100].
	ErrInvalidQuantity = errors.New("quantity must be between 1 and 100")
	// ErrPartnerInactive indicates the partner is unknown or deactivated.
	ErrPartnerInactive = errors.New("invalid or inactive partner")
	// ErrInvalidStatus indicates the requested status is not in the enum.
	ErrInvalidStatus = errors.New("invalid protocol status")
	// ErrInvalidAction indicates an unknown scanner action.
	ErrInvalidAction = errors.New("invalid scan action")
)

// Store is the persistence surface the engine needs. Multi-row operations
// (batch insert + ledger increment; status write + ledger delta) must be
// atomic inside the implementation.
type Store interface {
	GetPartner(ctx context.Context, id int64) (models.Partner, error)
	CreateProtocolBatch(ctx context.Context, batch []models.Protocol) error
	GetProtocol(ctx context.Context, id int64) (models.Protocol, error)
	GetProtocolByCode(ctx context.Context, code string) (models.Protocol, error)
	UpdateProtocolStatus(ctx context.Context, id int64, status models.ProtocolStatus, updatedBy, partnerID int64, usedDelta int) error
	ListProtocols(ctx context.Context, from, to time.Time, limit int) ([]models.Protocol, error)
}

// BatchResult reports a successful CreateBatch call.
type BatchResult struct {
	Codes        []string `json:"codes"`
	Quantity     int      `json:"quantity"`
	PartnerName  string   `json:"partner"`
	ProvinceCode string   `json:"province"`
}

// Service is the status/stock engine.
type Service struct {
	store     Store
	generator *Generator
	events    events.Broadcaster
	audit     *audit.Recorder
	logger    *zap.Logger
	now       func() time.Time
}

// NewService wires the engine.
func NewService(store Store, generator *Generator, broadcaster events.Broadcaster, recorder *audit.Recorder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if broadcaster == nil {
		broadcaster = events.NopBroadcaster{}
	}
	return &Service{
		store:     store,
		generator: generator,
		events:    broadcaster,
		audit:     recorder,
		logger:    logger,
		now:       time.Now,
	}
}

// CreateBatch mints qty protocol codes for an active partner and inserts
// them with status created; the partner's ledger rises by qty in the same
// transaction. A code collision fails the whole batch; retrying mints a
// fresh disambiguator.
func (s *Service) CreateBatch(ctx context.Context, actor models.User, provinceCode string, partnerID int64, qty int) (BatchResult, error) {
	if _, ok := models.ProvinceByCode(provinceCode); !ok {
		return BatchResult{}, fmt.Errorf("province %q: %w", provinceCode, ErrInvalidProvince)
	}
	if qty < MinBatchSize || qty > MaxBatchSize {
		return BatchResult{}, fmt.Errorf("quantity %d: %w", qty, ErrInvalidQuantity)
	}

	partner, err := s.store.GetPartner(ctx, partnerID)
	if err != nil {
		return BatchResult{}, fmt.Errorf("partner %d: %w", partnerID, ErrPartnerInactive)
	}
	if !partner.IsActive {
		return BatchResult{}, fmt.Errorf("partner %d: %w", partnerID, ErrPartnerInactive)
	}

	codes := s.generator.Codes(provinceCode, partner.Code, qty)
	createdAt := s.now()
	batch := make([]models.Protocol, 0, qty)
	for _, code := range codes {
		batch = append(batch, models.Protocol{
			Code:         code,
			ProvinceCode: provinceCode,
			PartnerID:    partnerID,
			Status:       models.StatusCreated,
			CreatedAt:    createdAt,
			CreatedBy:    actor.ID,
		})
	}

	if err := s.store.CreateProtocolBatch(ctx, batch); err != nil {
		return BatchResult{}, err
	}

	metrics.BatchesCreated.Inc()
	metrics.ProtocolsCreated.Add(float64(qty))

	result := BatchResult{
		Codes:        codes,
		Quantity:     qty,
		PartnerName:  partner.Name,
		ProvinceCode: provinceCode,
	}
	s.events.Emit(events.EventProtocolCreated, result)
	if s.audit != nil {
		s.audit.Record(ctx, actor, "create_protocol_batch", "protocol", strings.Join(codes, ","),
			fmt.Sprintf("%d protocol(s) for partner %s", qty, partner.Code))
	}

	s.logger.Info("protocol batch created",
		zap.Int("quantity", qty),
		zap.String("province", provinceCode),
		zap.Int64("partner_id", partnerID))
	return result, nil
}

// SetStatus writes a new status on one protocol and applies the implied
// ledger delta in the same transaction. Any of the three statuses may be
// set from any other; only enum membership is validated.
func (s *Service) SetStatus(ctx context.Context, actor models.User, id int64, rawStatus string) (models.Protocol, error) {
	status, err := models.ParseStatus(rawStatus)
	if err != nil {
		return models.Protocol{}, fmt.Errorf("%w: %q", ErrInvalidStatus, rawStatus)
	}

	p, err := s.store.GetProtocol(ctx, id)
	if err != nil {
		return models.Protocol{}, err
	}

	updated, err := s.transition(ctx, actor, p, status)
	if err != nil {
		return models.Protocol{}, err
	}

	if s.audit != nil {
		s.audit.Record(ctx, actor, "update_status", "protocol", strconv.FormatInt(id, 10),
			fmt.Sprintf("%s -> %s", p.Status, status))
	}
	return updated, nil
}

// ConfirmScan resolves a scanned code, maps the requested action to its
// target status and runs the same transition path as SetStatus.
func (s *Service) ConfirmScan(ctx context.Context, actor models.User, code string, action models.ScanAction) (models.Protocol, error) {
	status, err := action.TargetStatus()
	if err != nil {
		return models.Protocol{}, fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}

	p, err := s.store.GetProtocolByCode(ctx, code)
	if err != nil {
		return models.Protocol{}, err
	}

	updated, err := s.transition(ctx, actor, p, status)
	if err != nil {
		return models.Protocol{}, err
	}

	metrics.ScanConfirmations.WithLabelValues(string(action)).Inc()
	if s.audit != nil {
		s.audit.Record(ctx, actor, "scan_confirm", "protocol", code,
			fmt.Sprintf("%s -> %s", p.Status, status))
	}
	return updated, nil
}

// transition applies the status write plus the used-counter delta rule:
// +1 entering terpakai, -1 leaving it, 0 otherwise. The store commits
// both mutations atomically, so a ledger failure fails the operation.
func (s *Service) transition(ctx context.Context, actor models.User, p models.Protocol, status models.ProtocolStatus) (models.Protocol, error) {
	delta := models.UsedDelta(p.Status, status)
	if err := s.store.UpdateProtocolStatus(ctx, p.ID, status, actor.ID, p.PartnerID, delta); err != nil {
		return models.Protocol{}, err
	}

	metrics.StatusTransitions.WithLabelValues(string(status)).Inc()
	s.events.Emit(events.EventStatusUpdated, map[string]any{
		"id":         p.ID,
		"code":       p.Code,
		"old_status": p.Status,
		"new_status": status,
	})

	updated := p
	updated.Status = status
	updated.UpdatedBy = actor.ID
	return updated, nil
}

// GetByCode resolves one protocol for the public scan lookup.
func (s *Service) GetByCode(ctx context.Context, code string) (models.Protocol, error) {
	return s.store.GetProtocolByCode(ctx, code)
}

// ListRecent returns protocols created within [from, to), newest first.
func (s *Service) ListRecent(ctx context.Context, from, to time.Time, limit int) ([]models.Protocol, error) {
	return s.store.ListProtocols(ctx, from, to, limit)
}
