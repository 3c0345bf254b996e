package screenshots

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"runtime"
	"strconv"
	"testing"

	"viewer/frontend/items"
	"viewer/infrastructure/audit"
	"viewer/infrastructure/sqlite"
)

func openScreenshotsTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "screenshots-test.db")
	db, err := sqlite.OpenDB(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("runtime caller unavailable")
	}
	migrationsDir := filepath.Join(filepath.Dir(file), "..", "..", "infrastructure", "sqlite", "migrations")
	if err := sqlite.ApplyMigrations(context.Background(), db, migrationsDir); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return db
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 4, 3))
	for x := 0; x < 4; x++ {
		for y := 0; y < 3; y++ {
			img.Set(x, y, color.NRGBA{R: uint8(60 * x), G: 120, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func seedScreenshot(t *testing.T, db *sqlite.DB, path string, list ...items.Item) int64 {
	t.Helper()
	s, err := SaveScreenshot(context.Background(), db, audit.NewService(), IngestRequest{
		ImagePath:   path,
		ImageBase64: base64.StdEncoding.EncodeToString(testPNG(t)),
		OCRText:     "ocr " + path,
		DebugInfo:   "debug " + path,
		RawText:     "raw " + path,
		Items:       list,
	})
	if err != nil {
		t.Fatalf("save screenshot %s: %v", path, err)
	}
	return s.ID
}

func TestItemList_AcceptsArrayObjectAndNull(t *testing.T) {
	cases := []struct {
		name string
		body string
		want int
	}{
		{"array", `{"items":[{"title":"A"},{"title":"B"}]}`, 2},
		{"object", `{"items":{"title":"A","price":"10"}}`, 1},
		{"null", `{"items":null}`, 0},
		{"missing", `{}`, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var req IngestRequest
			if err := json.Unmarshal([]byte(tc.body), &req); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if len(req.Items) != tc.want {
				t.Fatalf("expected %d items, got %d", tc.want, len(req.Items))
			}
		})
	}
}

func TestSaveScreenshot_StoresImageAndItems(t *testing.T) {
	db := openScreenshotsTestDB(t)
	id := seedScreenshot(t, db, "shots/1.png",
		items.Item{Title: "Sword", Enhancement: "+1", Price: "1 500", Owner: "bob"},
		items.Item{Title: "Shield", Enhancement: "+1", Price: "900", Category: items.CategorySellEquipment},
	)

	s, err := LoadScreenshot(context.Background(), db, id)
	if err != nil {
		t.Fatalf("load screenshot: %v", err)
	}
	if !bytes.Equal(s.ImageData, testPNG(t)) {
		t.Fatalf("stored image differs from ingested one")
	}
	if len(s.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(s.Items))
	}
	if s.Items[0].Title != "Sword" || s.Items[1].Title != "Shield" {
		t.Fatalf("items out of order: %s, %s", s.Items[0].Title, s.Items[1].Title)
	}
	if s.Items[0].Category != items.CategoryUnknown {
		t.Fatalf("expected blank category to default to unknown, got %q", s.Items[0].Category)
	}
	if s.JSONData == "" {
		t.Fatalf("expected json_data to hold the ingested items")
	}
}

func TestSaveScreenshot_RejectsBadBase64(t *testing.T) {
	db := openScreenshotsTestDB(t)
	_, err := SaveScreenshot(context.Background(), db, nil, IngestRequest{ImagePath: "x.png", ImageBase64: "%%%"})
	if !errors.Is(err, ErrInvalidImage) {
		t.Fatalf("expected ErrInvalidImage, got %v", err)
	}
}

func TestLoadScreenshot_MissingIsErrNoRows(t *testing.T) {
	db := openScreenshotsTestDB(t)
	if _, err := LoadScreenshot(context.Background(), db, 42); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
	if _, err := LoadScreenshotItems(context.Background(), db, 42); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows for items, got %v", err)
	}
}

func TestListScreenshots_PaginatesNewestFirstAndClamps(t *testing.T) {
	db := openScreenshotsTestDB(t)
	var ids []int64
	for i := 0; i < ResultsPerPage+3; i++ {
		ids = append(ids, seedScreenshot(t, db, "shot-"+strconv.Itoa(i)+".png", items.Item{Title: "Item", Price: "10"}))
	}

	first, err := ListScreenshots(context.Background(), db, ListFilter{Page: 1})
	if err != nil {
		t.Fatalf("list page 1: %v", err)
	}
	if first.TotalCount != ResultsPerPage+3 || first.TotalPages != 2 {
		t.Fatalf("unexpected totals count=%d pages=%d", first.TotalCount, first.TotalPages)
	}
	if len(first.Screenshots) != ResultsPerPage {
		t.Fatalf("expected %d rows, got %d", ResultsPerPage, len(first.Screenshots))
	}
	if first.Screenshots[0].ID != ids[len(ids)-1] {
		t.Fatalf("expected newest screenshot first, got %d", first.Screenshots[0].ID)
	}
	if len(first.Screenshots[0].ImageData) != 0 {
		t.Fatalf("expected list rows without image data")
	}
	if len(first.Screenshots[0].Items) != 1 {
		t.Fatalf("expected items to be loaded with the list")
	}

	clamped, err := ListScreenshots(context.Background(), db, ListFilter{Page: 9})
	if err != nil {
		t.Fatalf("list page 9: %v", err)
	}
	if clamped.Page != 2 || len(clamped.Screenshots) != 3 {
		t.Fatalf("expected clamp to page 2 with 3 rows, got page=%d rows=%d", clamped.Page, len(clamped.Screenshots))
	}
}

func TestListScreenshots_SearchAndPriceFilter(t *testing.T) {
	db := openScreenshotsTestDB(t)
	swordID := seedScreenshot(t, db, "a.png", items.Item{Title: "Long Sword", Price: "1,500", Owner: "alice"})
	seedScreenshot(t, db, "b.png", items.Item{Title: "Bow", Price: "300", Owner: "bob"})
	seedScreenshot(t, db, "c.png")

	bySearch, err := ListScreenshots(context.Background(), db, ListFilter{Search: "sword", Page: 1})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if bySearch.TotalCount != 1 || bySearch.Screenshots[0].ID != swordID {
		t.Fatalf("expected only the sword screenshot, got %+v", bySearch)
	}

	byOwner, err := ListScreenshots(context.Background(), db, ListFilter{Search: "bob", Page: 1})
	if err != nil {
		t.Fatalf("search owner: %v", err)
	}
	if byOwner.TotalCount != 1 {
		t.Fatalf("expected 1 match by owner, got %d", byOwner.TotalCount)
	}

	byPrice, err := ListScreenshots(context.Background(), db, ListFilter{MinPrice: "1000", Page: 1})
	if err != nil {
		t.Fatalf("price filter: %v", err)
	}
	if byPrice.TotalCount != 1 || byPrice.Screenshots[0].ID != swordID {
		t.Fatalf("expected only the sword screenshot above 1000, got count=%d", byPrice.TotalCount)
	}

	byRange, err := ListScreenshots(context.Background(), db, ListFilter{MinPrice: "100", MaxPrice: "500", Page: 1})
	if err != nil {
		t.Fatalf("price range: %v", err)
	}
	if byRange.TotalCount != 1 {
		t.Fatalf("expected 1 screenshot between 100 and 500, got %d", byRange.TotalCount)
	}

	all, err := ListScreenshots(context.Background(), db, ListFilter{Page: 1})
	if err != nil {
		t.Fatalf("unfiltered: %v", err)
	}
	if all.TotalCount != 3 {
		t.Fatalf("expected screenshots without items in the unfiltered list, got %d", all.TotalCount)
	}
}
