package actions

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"viewer/frontend/items"
	"viewer/infrastructure/audit"
	"viewer/infrastructure/cache"
	"viewer/infrastructure/sqlite"
	"viewer/models"
)

// ActionCommandHandler handles POST /{action}.
func ActionCommandHandler(db *sqlite.DB, auditSvc *audit.Service, statusCache *cache.StatusCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		action := chi.URLParam(r, "action")
		if !IsKnownAction(action) {
			http.NotFound(w, r)
			return
		}

		stored, status, err := RecordAction(r.Context(), db, auditSvc, action)
		if err != nil {
			slog.Error("record action failed", slog.String("action", action), slog.Any("err", err))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		statusCache.Set(status)
		slog.Info("action queued", slog.String("action", action), slog.String("ref", stored.Ref))

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

// StatusQueryHandler handles GET /status.
func StatusQueryHandler(db *sqlite.DB, statusCache *cache.StatusCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, ok := statusCache.Get()
		if !ok {
			var err error
			status, err = LoadCurrentStatus(r.Context(), db)
			if err != nil {
				slog.Error("load status failed", slog.Any("err", err))
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}
			statusCache.Set(status)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		if err := json.NewEncoder(w).Encode(toStatusResponse(status)); err != nil {
			slog.Error("encode status failed", slog.Any("err", err))
		}
	}
}

func toStatusResponse(s models.Status) StatusResponse {
	resp := StatusResponse{Status: s.CurrentStatus, Label: items.FormatStatus(s.CurrentStatus)}
	if !s.UpdatedAt.IsZero() {
		resp.UpdatedAt = s.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return resp
}
