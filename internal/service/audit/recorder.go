// Package audit appends best-effort activity entries. Failures are logged
// and never surface to the calling operation.
package audit

import (
	"context"

	"go.uber.org/zap"

	"github.com/rifqipratama/sibat/internal/domain/models"
	"github.com/rifqipratama/sibat/internal/repository/sqlstore"
)

// Recorder writes append-only activity_logs rows.
type Recorder struct {
	store  *sqlstore.Store
	logger *zap.Logger
}

// NewRecorder wires a recorder instance.
func NewRecorder(store *sqlstore.Store, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{store: store, logger: logger}
}

// Record appends one entry. Errors are swallowed after logging so audit
// problems never fail the operation being audited.
func (r *Recorder) Record(ctx context.Context, actor models.User, action, targetType, targetID, details string) {
	entry := models.ActivityLog{
		UserID:     actor.ID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Details:    details,
	}
	if err := r.store.InsertActivity(ctx, entry); err != nil {
		r.logger.Error("failed to record activity", zap.String("action", action), zap.Error(err))
	}
}

// Recent returns the latest entries for the admin activity feed.
func (r *Recorder) Recent(ctx context.Context, limit int) ([]models.ActivityLog, error) {
	return r.store.RecentActivity(ctx, limit)
}
