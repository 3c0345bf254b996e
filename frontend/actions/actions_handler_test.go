package actions

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"viewer/infrastructure/audit"
	"viewer/infrastructure/cache"
)

func newActionsRouter(t *testing.T) (http.Handler, *cache.StatusCache) {
	t.Helper()
	db := openActionsTestDB(t)
	statusCache := cache.NewStatusCache(0)
	r := chi.NewRouter()
	r.Get("/status", StatusQueryHandler(db, statusCache))
	r.Post("/{action}", ActionCommandHandler(db, audit.NewService(), statusCache))
	return r, statusCache
}

func TestActionCommandHandler_KnownActionUpdatesStatus(t *testing.T) {
	router, statusCache := newActionsRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/start", nil)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if strings.TrimSpace(rec.Body.String()) != "OK" {
		t.Fatalf("expected OK body, got %q", rec.Body.String())
	}
	cached, ok := statusCache.Get()
	if !ok || cached.CurrentStatus != ActionStart {
		t.Fatalf("expected cached status start, got %+v (ok=%v)", cached, ok)
	}

	statusRec := httptest.NewRecorder()
	router.ServeHTTP(statusRec, httptest.NewRequest(http.MethodGet, "/status", nil))
	var resp StatusResponse
	if err := json.Unmarshal(statusRec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if resp.Status != ActionStart {
		t.Fatalf("expected status start, got %q", resp.Status)
	}
	if resp.UpdatedAt == "" {
		t.Fatalf("expected updatedAt to be set")
	}
}

func TestActionCommandHandler_UnknownActionIs404(t *testing.T) {
	router, _ := newActionsRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/explode", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestStatusQueryHandler_UnknownBeforeAnyAction(t *testing.T) {
	router, _ := newActionsRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected json content type, got %q", ct)
	}
	var resp StatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if resp.Status != UnknownStatus {
		t.Fatalf("expected unknown, got %q", resp.Status)
	}
}

func TestDispatcher_AgainstActionHandler(t *testing.T) {
	router, statusCache := newActionsRouter(t)
	ts := httptest.NewServer(router)
	defer ts.Close()

	alerts := &alertRecorder{}
	refreshed := make(chan struct{}, 1)
	d := NewDispatcher(ts.URL, ts.Client())
	d.RefreshDelay = 1
	d.Alert = alerts.alert
	d.Refresh = func() { refreshed <- struct{}{} }

	d.SendAction(context.Background(), ActionStop)
	d.Wait()

	if len(alerts.all()) != 0 {
		t.Fatalf("unexpected alerts %v", alerts.all())
	}
	select {
	case <-refreshed:
	default:
		t.Fatalf("expected refresh after successful dispatch")
	}
	if cached, _ := statusCache.Get(); cached.CurrentStatus != ActionStop {
		t.Fatalf("expected status stop, got %q", cached.CurrentStatus)
	}
}
