package auditlog

import (
	"context"

	"itinventory/pkg/models"
	"itinventory/pkg/security"

	"go.uber.org/zap"
)

type Auditable interface {
	CreateLogView() models.AuditLog
}

// Store persists audit entries.
type Store interface {
	PersistLog(ctx context.Context, auditLog models.AuditLog, data interface{}) error
}

// Logger is what services depend on.
type Logger interface {
	Log(ctx context.Context, action string, data interface{}, item Auditable)
}

type Auditlog struct {
	store  Store
	logger *zap.Logger
}

func NewAuditLog(store Store, logger *zap.Logger) *Auditlog {
	return &Auditlog{store: store, logger: logger}
}

// Log records action against item. A failed write is logged and swallowed so
// it never fails the business operation that triggered it.
func (a *Auditlog) Log(ctx context.Context, action string, data interface{}, item Auditable) {
	auditLog := item.CreateLogView()
	auditLog.Action = action
	auditLog.UserID = security.UserIDFromContext(ctx)

	if err := a.store.PersistLog(context.WithoutCancel(ctx), auditLog, data); err != nil {
		a.logger.Error("Unable to create audit log entry",
			zap.String("resource_type", auditLog.ResourceType),
			zap.Int("resource_id", auditLog.ResourceID),
			zap.String("action", action),
			zap.Error(err),
		)
		return
	}

	a.logger.Debug("Created audit log entry",
		zap.String("resource_type", auditLog.ResourceType),
		zap.Int("resource_id", auditLog.ResourceID),
		zap.String("action", action),
	)
}

// Nop discards every entry.
type Nop struct{}

func (Nop) Log(context.Context, string, interface{}, Auditable) {}
