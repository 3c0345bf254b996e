package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/uptrace/bun"

	"viewer/models"
)

// Entity types recorded in audit_logs.
const (
	EntityAction     = "actions"
	EntityScreenshot = "screenshots"
	EntityItemsList  = "items_list"
)

// Service writes audit records inside the caller transaction so they
// commit or roll back with the change they describe.
type Service struct{}

func NewService() *Service {
	return &Service{}
}

func (s *Service) Write(ctx context.Context, tx bun.Tx, action, entityType, entityID string, before, after any) error {
	if s == nil {
		return nil
	}
	beforeJSON, err := marshal(before)
	if err != nil {
		return fmt.Errorf("marshal audit before: %w", err)
	}
	afterJSON, err := marshal(after)
	if err != nil {
		return fmt.Errorf("marshal audit after: %w", err)
	}
	entry := &models.AuditLog{
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		BeforeJSON: beforeJSON,
		AfterJSON:  afterJSON,
	}
	_, err = tx.NewInsert().Model(entry).Exec(ctx)
	return err
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
