package audit

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/uptrace/bun"

	"setuptrack/infrastructure/sqlite"
	"setuptrack/models"
)

// Entity types recorded in the audit trail.
const (
	EntitySetup   = "setup"
	EntityCell    = "cell"
	EntityCatalog = "catalog"
	EntityUser    = "user"
)

// Service writes immutable audit-trail rows for mutating operations.
type Service struct{}

func NewService() *Service {
	return &Service{}
}

// Write records one action inside the caller transaction.
func (s *Service) Write(ctx context.Context, tx bun.Tx, username, action, entityType, entityID string, before, after any) error {
	beforeJSON, err := marshal(before)
	if err != nil {
		return err
	}
	afterJSON, err := marshal(after)
	if err != nil {
		return err
	}
	log := &models.AuditLog{
		Username:   username,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		BeforeJSON: beforeJSON,
		AfterJSON:  afterJSON,
	}
	_, err = tx.NewInsert().Model(log).Exec(ctx)
	return err
}

// Record opens its own write transaction. The audit trail is advisory: a
// failure is logged, never propagated to the caller's operation.
func (s *Service) Record(ctx context.Context, db *sqlite.DB, username, action, entityType, entityID string, before, after any) {
	if s == nil || db == nil {
		return
	}
	err := db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return s.Write(ctx, tx, username, action, entityType, entityID, before, after)
	})
	if err != nil {
		slog.Error("audit record failed",
			slog.String("action", action),
			slog.String("entity_type", entityType),
			slog.String("entity_id", entityID),
			slog.Any("err", err))
	}
}

func marshal(v any) (string, error) {
	if v == nil {
		return "", nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
