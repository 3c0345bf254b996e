package screenshots

import (
	"context"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/uptrace/bun"

	"viewer/infrastructure/audit"
	"viewer/infrastructure/sqlite"
	"viewer/models"
)

const numericPriceExpr = `CAST(REPLACE(REPLACE(fi.price, ',', ''), ' ', '') AS REAL)`

// applyFilter restricts q to screenshots with at least one matching item.
// Price bounds that do not parse as numbers are ignored.
func applyFilter(q *bun.SelectQuery, f ListFilter) *bun.SelectQuery {
	if !f.active() {
		return q
	}
	pattern := "%" + f.Search + "%"
	cond := `EXISTS (SELECT 1 FROM structured_items fi WHERE fi.screenshot_id = sc.id
  AND (fi.title LIKE ? OR fi.owner LIKE ? OR fi.price LIKE ? OR fi.title_short LIKE ?)`
	args := []any{pattern, pattern, pattern, pattern}
	if v, err := strconv.ParseFloat(strings.TrimSpace(f.MinPrice), 64); err == nil {
		cond += " AND " + numericPriceExpr + " >= ?"
		args = append(args, v)
	}
	if v, err := strconv.ParseFloat(strings.TrimSpace(f.MaxPrice), 64); err == nil {
		cond += " AND " + numericPriceExpr + " <= ?"
		args = append(args, v)
	}
	return q.Where(cond+")", args...)
}

func orderItems(q *bun.SelectQuery) *bun.SelectQuery {
	return q.Order("si.created_at ASC", "si.id ASC")
}

// ListScreenshots returns one page of screenshots, newest first, with their
// items but without image blobs. Out-of-range pages clamp to the last page.
func ListScreenshots(ctx context.Context, db *sqlite.DB, f ListFilter) (ListResult, error) {
	result := ListResult{Page: f.Page}
	if result.Page < 1 {
		result.Page = 1
	}
	list := make([]models.Screenshot, 0, ResultsPerPage)

	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		total, err := applyFilter(tx.NewSelect().Model((*models.Screenshot)(nil)), f).Count(ctx)
		if err != nil {
			return fmt.Errorf("count screenshots: %w", err)
		}
		result.TotalCount = total
		result.TotalPages = (total + ResultsPerPage - 1) / ResultsPerPage
		if result.TotalPages == 0 {
			result.TotalPages = 1
		}
		if result.Page > result.TotalPages {
			result.Page = result.TotalPages
		}

		q := tx.NewSelect().
			Model(&list).
			ExcludeColumn("image_data").
			Relation("Items", orderItems).
			Order("sc.created_at DESC", "sc.id DESC").
			Limit(ResultsPerPage).
			Offset((result.Page - 1) * ResultsPerPage)
		if err := applyFilter(q, f).Scan(ctx); err != nil {
			return fmt.Errorf("list screenshots: %w", err)
		}
		return nil
	})
	if err != nil {
		return ListResult{}, err
	}
	result.Screenshots = list
	return result, nil
}

// LoadScreenshot loads one screenshot with its image and items. A missing
// row returns sql.ErrNoRows.
func LoadScreenshot(ctx context.Context, db *sqlite.DB, id int64) (models.Screenshot, error) {
	var s models.Screenshot
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().
			Model(&s).
			Relation("Items", orderItems).
			Where("sc.id = ?", id).
			Scan(ctx)
	})
	return s, err
}

// LoadScreenshotImage returns only the stored image bytes.
func LoadScreenshotImage(ctx context.Context, db *sqlite.DB, id int64) ([]byte, error) {
	var s models.Screenshot
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().
			Model(&s).
			Column("id", "image_data").
			Where("sc.id = ?", id).
			Scan(ctx)
	})
	return s.ImageData, err
}

// LoadScreenshotItems returns the items of a screenshot in recognition
// order, or sql.ErrNoRows when the screenshot does not exist.
func LoadScreenshotItems(ctx context.Context, db *sqlite.DB, id int64) ([]models.StructuredItem, error) {
	rows := make([]models.StructuredItem, 0)
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().Model((*models.Screenshot)(nil)).Where("sc.id = ?", id).Exists(ctx)
		if err != nil {
			return err
		}
		if !exists {
			return sql.ErrNoRows
		}
		return orderItems(tx.NewSelect().Model(&rows).Where("si.screenshot_id = ?", id)).Scan(ctx)
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// SaveScreenshot stores an ingested screenshot and its items in one
// transaction.
func SaveScreenshot(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, req IngestRequest) (models.Screenshot, error) {
	var blob []byte
	if payload := strings.TrimSpace(req.ImageBase64); payload != "" {
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return models.Screenshot{}, ErrInvalidImage
		}
		blob = decoded
	}

	jsonData := ""
	if len(req.Items) > 0 {
		encoded, err := json.Marshal(req.Items)
		if err != nil {
			return models.Screenshot{}, fmt.Errorf("encode items: %w", err)
		}
		jsonData = string(encoded)
	}

	s := models.Screenshot{
		ImagePath: strings.TrimSpace(req.ImagePath),
		ImageData: blob,
		OCRText:   req.OCRText,
		DebugInfo: req.DebugInfo,
		JSONData:  jsonData,
		RawText:   req.RawText,
	}

	err := db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(&s).Returning("*").Exec(ctx); err != nil {
			return fmt.Errorf("insert screenshot: %w", err)
		}
		if len(req.Items) > 0 {
			rows := toStructuredItems(s.ID, req.Items)
			if _, err := tx.NewInsert().Model(&rows).Returning("*").Exec(ctx); err != nil {
				return fmt.Errorf("insert items: %w", err)
			}
			s.Items = rows
		}
		return auditSvc.Write(ctx, tx, "screenshot.ingest", audit.EntityScreenshot, strconv.FormatInt(s.ID, 10), nil, map[string]any{
			"image_path": s.ImagePath,
			"items":      len(s.Items),
		})
	})
	if err != nil {
		return models.Screenshot{}, err
	}
	return s, nil
}
