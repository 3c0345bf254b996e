package actions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"viewer/infrastructure/audit"
	"viewer/infrastructure/sqlite"
	"viewer/models"
)

// RecordAction queues action for the bot: the previous pending action is
// marked executed, the new one is stored as pending and the status history
// gets the action name. It returns the stored action and status.
func RecordAction(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, action string) (models.Action, models.Status, error) {
	stored := models.Action{Ref: uuid.NewString(), Action: action}
	status := models.Status{CurrentStatus: action}

	err := db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		var before models.Status
		err := tx.NewSelect().Model(&before).Order("id DESC").Limit(1).Scan(ctx)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("load previous status: %w", err)
		}

		if _, err := tx.NewUpdate().
			Model((*models.Action)(nil)).
			Set("executed = ?", true).
			Where("id = (SELECT id FROM actions WHERE executed = ? ORDER BY created_at DESC, id DESC LIMIT 1)", false).
			Exec(ctx); err != nil {
			return fmt.Errorf("mark pending action executed: %w", err)
		}

		if _, err := tx.NewInsert().Model(&stored).Returning("*").Exec(ctx); err != nil {
			return fmt.Errorf("insert action: %w", err)
		}
		if _, err := tx.NewInsert().Model(&status).Returning("*").Exec(ctx); err != nil {
			return fmt.Errorf("insert status: %w", err)
		}

		var prev any
		if before.ID != 0 {
			prev = map[string]string{"status": before.CurrentStatus}
		}
		return auditSvc.Write(ctx, tx, "action."+action, audit.EntityAction, stored.Ref, prev, map[string]string{"status": action})
	})
	if err != nil {
		return models.Action{}, models.Status{}, err
	}
	return stored, status, nil
}

// LoadCurrentStatus returns the newest status row, or UnknownStatus when
// none was written yet.
func LoadCurrentStatus(ctx context.Context, db *sqlite.DB) (models.Status, error) {
	var status models.Status
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().Model(&status).Order("id DESC").Limit(1).Scan(ctx)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return models.Status{CurrentStatus: UnknownStatus}, nil
	}
	if err != nil {
		return models.Status{}, fmt.Errorf("load status: %w", err)
	}
	return status, nil
}

// LoadRecentActions lists the newest actions first.
func LoadRecentActions(ctx context.Context, db *sqlite.DB, limit int) ([]models.Action, error) {
	out := make([]models.Action, 0, limit)
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().Model(&out).Order("created_at DESC", "id DESC").Limit(limit).Scan(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("load actions: %w", err)
	}
	return out, nil
}

// LoadPendingAction returns the newest action the bot has not picked up.
func LoadPendingAction(ctx context.Context, db *sqlite.DB) (*models.Action, error) {
	var action models.Action
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().Model(&action).Where("executed = ?", false).Order("created_at DESC", "id DESC").Limit(1).Scan(ctx)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load pending action: %w", err)
	}
	return &action, nil
}
