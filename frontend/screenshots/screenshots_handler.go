package screenshots

import (
	"bytes"
	"database/sql"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/blake2b"

	"viewer/frontend/actions"
	"viewer/frontend/items"
	"viewer/frontend/modals"
	"viewer/infrastructure/audit"
	"viewer/infrastructure/cache"
	"viewer/infrastructure/sqlite"
	"viewer/models"
)

// ListPageQueryHandler handles GET /. The tab parameter picks the main
// screenshot list, the item search or the tracked items list.
func ListPageQueryHandler(db *sqlite.DB, statusCache *cache.StatusCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		data := PageData{Tab: q.Get("tab")}

		switch data.Tab {
		case TabItemSearch:
			data.ItemSearch = ParseItemSearchFilter(q)
			results, err := SearchItems(r.Context(), db, data.ItemSearch)
			if err != nil {
				slog.Error("item search failed", slog.Any("err", err))
				http.Error(w, "DB error", http.StatusInternalServerError)
				return
			}
			data.ItemResults = results
		case TabItemsList:
			list, err := LoadItemsList(r.Context(), db)
			if err != nil {
				slog.Error("load items list failed", slog.Any("err", err))
				http.Error(w, "DB error", http.StatusInternalServerError)
				return
			}
			data.ItemsList = list
		default:
			data.Tab = TabMain
			data.Filter = ListFilter{
				Search:   strings.TrimSpace(q.Get("search")),
				MinPrice: strings.TrimSpace(q.Get("min_price")),
				MaxPrice: strings.TrimSpace(q.Get("max_price")),
				Page:     1,
			}
			if p, err := strconv.Atoi(q.Get("page")); err == nil && p > 0 {
				data.Filter.Page = p
			}
			result, err := ListScreenshots(r.Context(), db, data.Filter)
			if err != nil {
				slog.Error("list screenshots failed", slog.Any("err", err))
				http.Error(w, "DB error", http.StatusInternalServerError)
				return
			}
			data.Result = result
		}

		loadControlPanel(r, db, statusCache, &data)

		var page bytes.Buffer
		if err := ListPage(data).Render(r.Context(), &page); err != nil {
			slog.Error("render list page failed", slog.Any("err", err))
			http.Error(w, "failed to render page", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := items.HighlightCheapestItemsHTML(&page, w); err != nil {
			slog.Error("highlight list page failed", slog.Any("err", err))
		}
	}
}

// loadControlPanel fills the status panel fields. Failures degrade to an
// unknown status and no action history.
func loadControlPanel(r *http.Request, db *sqlite.DB, statusCache *cache.StatusCache, data *PageData) {
	status, ok := statusCache.Get()
	if !ok {
		var err error
		status, err = actions.LoadCurrentStatus(r.Context(), db)
		if err != nil {
			slog.Error("load status failed", slog.Any("err", err))
			status = models.Status{CurrentStatus: actions.UnknownStatus}
		} else {
			statusCache.Set(status)
		}
	}
	data.Status = status

	recent, err := actions.LoadRecentActions(r.Context(), db, RecentActionsLimit)
	if err != nil {
		slog.Error("load recent actions failed", slog.Any("err", err))
		recent = nil
	}
	data.RecentActions = recent

	pending, err := actions.LoadPendingAction(r.Context(), db)
	if err != nil {
		slog.Error("load pending action failed", slog.Any("err", err))
		pending = nil
	}
	data.PendingAction = pending
}

func parseScreenshotID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid screenshot id")
	}
	return id, nil
}

// loadForRequest writes the error response itself and reports whether the
// caller should continue.
func loadForRequest(w http.ResponseWriter, r *http.Request, db *sqlite.DB) (models.Screenshot, bool) {
	id, err := parseScreenshotID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return models.Screenshot{}, false
	}
	s, err := LoadScreenshot(r.Context(), db, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.NotFound(w, r)
			return models.Screenshot{}, false
		}
		slog.Error("load screenshot failed", slog.Int64("id", id), slog.Any("err", err))
		http.Error(w, "failed to load screenshot", http.StatusInternalServerError)
		return models.Screenshot{}, false
	}
	return s, true
}

// ImageModalQueryHandler handles GET /screenshots/{id}/image-modal and
// returns the opened image modal as a fragment.
func ImageModalQueryHandler(db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := loadForRequest(w, r, db)
		if !ok {
			return
		}
		var page modals.Page
		page.OpenImageModal(base64.StdEncoding.EncodeToString(s.ImageData), strconv.FormatInt(s.ID, 10), modalInfo(s), ToItems(s.Items))

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := modals.ImageModalView(page.Image).Render(r.Context(), w); err != nil {
			slog.Error("render image modal failed", slog.Int64("id", s.ID), slog.Any("err", err))
		}
	}
}

// DetailModalQueryHandler handles GET /screenshots/{id}/detail-modal. The
// modal is opened through the same data attribute contract the list rows
// carry.
func DetailModalQueryHandler(db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := loadForRequest(w, r, db)
		if !ok {
			return
		}
		attrs, err := modals.NewDataAttributes(
			s.RawText,
			strconv.FormatInt(s.ID, 10),
			base64.StdEncoding.EncodeToString(s.ImageData),
			s.ImagePath,
			s.DebugInfo,
			ToItems(s.Items),
		)
		if err != nil {
			slog.Error("encode detail attributes failed", slog.Int64("id", s.ID), slog.Any("err", err))
			http.Error(w, "failed to render modal", http.StatusInternalServerError)
			return
		}
		var page modals.Page
		page.OpenDetailModalFromData(attrs)

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := modals.DetailModalView(page.Detail).Render(r.Context(), w); err != nil {
			slog.Error("render detail modal failed", slog.Int64("id", s.ID), slog.Any("err", err))
		}
	}
}

func imageETag(blob []byte) string {
	sum := blake2b.Sum256(blob)
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}

// ImageQueryHandler handles GET /screenshots/{id}/image.png.
func ImageQueryHandler(db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseScreenshotID(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		blob, err := LoadScreenshotImage(r.Context(), db, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				http.NotFound(w, r)
				return
			}
			slog.Error("load image failed", slog.Int64("id", id), slog.Any("err", err))
			http.Error(w, "failed to load image", http.StatusInternalServerError)
			return
		}
		if len(blob) == 0 {
			http.NotFound(w, r)
			return
		}

		etag := imageETag(blob)
		w.Header().Set("ETag", etag)
		w.Header().Set("Cache-Control", "private, max-age=3600")
		if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("Content-Type", http.DetectContentType(blob))
		_, _ = w.Write(blob)
	}
}

// IngestCommandHandler handles POST /api/screenshots.
func IngestCommandHandler(db *sqlite.DB, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxIngestBytes)
		var req IngestRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			slog.Warn("decode ingest failed", slog.Any("err", err))
			http.Error(w, "invalid json body", http.StatusBadRequest)
			return
		}

		s, err := SaveScreenshot(r.Context(), db, auditSvc, req)
		if err != nil {
			if errors.Is(err, ErrInvalidImage) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			slog.Error("save screenshot failed", slog.Any("err", err))
			http.Error(w, "failed to save screenshot", http.StatusInternalServerError)
			return
		}
		slog.Info("screenshot ingested", slog.Int64("id", s.ID), slog.Int("items", len(s.Items)))

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Location", "/screenshots/"+strconv.FormatInt(s.ID, 10)+"/detail-modal")
		w.WriteHeader(http.StatusCreated)
		if err := json.NewEncoder(w).Encode(IngestResponse{
			ID:        s.ID,
			ItemCount: len(s.Items),
			CreatedAt: formatRFC3339(s.CreatedAt),
		}); err != nil {
			slog.Error("encode ingest response failed", slog.Any("err", err))
		}
	}
}

// ItemsListImportCommandHandler handles POST /api/items-list. The body is
// a JSON array of tracked items; every entry needs a name and a known
// category.
func ItemsListImportCommandHandler(db *sqlite.DB, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxIngestBytes)
		var in []TrackedItemInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, "invalid json body", http.StatusBadRequest)
			return
		}
		for i, it := range in {
			if strings.TrimSpace(it.Name) == "" {
				http.Error(w, fmt.Sprintf("item %d: name is required", i), http.StatusBadRequest)
				return
			}
			if !IsKnownCategory(it.Category) {
				http.Error(w, fmt.Sprintf("item %d: unknown category %q", i, it.Category), http.StatusBadRequest)
				return
			}
		}

		n, err := ImportItemsList(r.Context(), db, auditSvc, in)
		if err != nil {
			slog.Error("import items list failed", slog.Any("err", err))
			http.Error(w, "failed to import items list", http.StatusInternalServerError)
			return
		}
		slog.Info("items list imported", slog.Int("items", n))

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(ItemsListImportResponse{Imported: n}); err != nil {
			slog.Error("encode import response failed", slog.Any("err", err))
		}
	}
}

// ItemsCSVHandler handles GET /screenshots/{id}/items.csv.
func ItemsCSVHandler(db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseScreenshotID(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		rows, err := LoadScreenshotItems(r.Context(), db, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				http.NotFound(w, r)
				return
			}
			slog.Error("load items failed", slog.Int64("id", id), slog.Any("err", err))
			http.Error(w, "failed to load items", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", "attachment; filename=screenshot-"+strconv.FormatInt(id, 10)+"-items.csv")
		if err := writeItemsCSV(w, ToItems(rows)); err != nil {
			slog.Error("write items csv failed", slog.Int64("id", id), slog.Any("err", err))
		}
	}
}

// ReportPDFHandler handles GET /screenshots/{id}/report.pdf.
func ReportPDFHandler(db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := loadForRequest(w, r, db)
		if !ok {
			return
		}
		pdfBytes, err := renderScreenshotReportPDF(s, time.Now())
		if err != nil {
			slog.Error("render report pdf failed", slog.Int64("id", s.ID), slog.Any("err", err))
			http.Error(w, "failed to render pdf", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", "inline; filename=screenshot-"+strconv.FormatInt(s.ID, 10)+".pdf")
		_, _ = w.Write(pdfBytes)
	}
}
