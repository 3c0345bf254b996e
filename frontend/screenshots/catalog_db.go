package screenshots

import (
	"context"
	"fmt"
	"strings"

	"github.com/uptrace/bun"

	"viewer/infrastructure/audit"
	"viewer/infrastructure/sqlite"
	"viewer/models"
)

// SearchItems returns structured items whose title contains f.Query within
// the selected categories, cheapest first and newest first on equal prices.
// A blank query returns nothing.
func SearchItems(ctx context.Context, db *sqlite.DB, f ItemSearchFilter) ([]models.StructuredItem, error) {
	rows := make([]models.StructuredItem, 0)
	if f.Query == "" || len(f.Categories) == 0 {
		return rows, nil
	}
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().
			Model(&rows).
			Where("si.category IN (?)", bun.In(f.Categories)).
			Where("si.title LIKE ?", "%"+f.Query+"%").
			OrderExpr(`CAST(REPLACE(REPLACE(si.price, ',', ''), ' ', '') AS REAL) ASC`).
			Order("si.created_at DESC", "si.id DESC").
			Limit(ItemSearchLimit).
			Scan(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("search items: %w", err)
	}
	return rows, nil
}

// LoadItemsList returns the tracked items grouped by category.
func LoadItemsList(ctx context.Context, db *sqlite.DB) ([]models.TrackedItem, error) {
	rows := make([]models.TrackedItem, 0)
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().Model(&rows).Order("il.category ASC", "il.id ASC").Scan(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("load items list: %w", err)
	}
	return rows, nil
}

// ImportItemsList upserts tracked items keyed by (name, category). An
// existing entry keeps its id and takes the new min_price.
func ImportItemsList(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, in []TrackedItemInput) (int, error) {
	if len(in) == 0 {
		return 0, nil
	}
	rows := make([]models.TrackedItem, 0, len(in))
	for _, it := range in {
		rows = append(rows, models.TrackedItem{
			Name:     strings.TrimSpace(it.Name),
			Category: it.Category,
			MinPrice: it.MinPrice,
		})
	}
	err := db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		for i := range rows {
			_, err := tx.NewInsert().
				Model(&rows[i]).
				On("CONFLICT (name, category) DO UPDATE").
				Set("min_price = EXCLUDED.min_price").
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("upsert %q: %w", rows[i].Name, err)
			}
		}
		return auditSvc.Write(ctx, tx, "items_list.import", audit.EntityItemsList, "", nil, map[string]any{
			"items": len(rows),
		})
	})
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}
