package http

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/uptrace/bun"

	"viewer/frontend/actions"
	"viewer/infrastructure/audit"
	"viewer/infrastructure/cache"
	"viewer/infrastructure/metrics"
	"viewer/infrastructure/sqlite"
)

type integrationEnv struct {
	server  *httptest.Server
	db      *sqlite.DB
	metrics *metrics.PriceMetrics
}

func setupIntegrationServer(t *testing.T) (*integrationEnv, *http.Client) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "server-integration.db")
	db, err := sqlite.OpenDB(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("runtime caller unavailable")
	}
	migrationsDir := filepath.Join(filepath.Dir(file), "..", "sqlite", "migrations")
	if err := sqlite.ApplyMigrations(context.Background(), db, migrationsDir); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	m := metrics.NewPriceMetrics()
	s := NewServer("127.0.0.1:0", db, cache.NewStatusCache(time.Minute), audit.NewService(), m)
	ts := httptest.NewServer(s.Handler())
	env := &integrationEnv{server: ts, db: db, metrics: m}
	t.Cleanup(func() {
		env.server.Close()
		_ = env.db.Close()
	})
	return env, ts.Client()
}

func get(t *testing.T, client *http.Client, baseURL, path string) *http.Response {
	t.Helper()
	resp, err := client.Get(baseURL + path)
	if err != nil {
		t.Fatalf("GET %s failed: %v", path, err)
	}
	return resp
}

func postJSON(t *testing.T, client *http.Client, baseURL, path string, body []byte) *http.Response {
	t.Helper()
	resp, err := client.Post(baseURL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s failed: %v", path, err)
	}
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(b)
}

func pngBase64(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func countActions(t *testing.T, db *sqlite.DB, executed bool) int64 {
	t.Helper()
	var n int64
	err := db.WithReadTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		return tx.NewRaw(`SELECT COUNT(*) FROM actions WHERE executed = ?`, executed).Scan(ctx, &n)
	})
	if err != nil {
		t.Fatalf("count actions: %v", err)
	}
	return n
}

func TestHealthAndAssets(t *testing.T) {
	env, client := setupIntegrationServer(t)

	resp := get(t, client, env.server.URL, "/health")
	if body := readBody(t, resp); resp.StatusCode != http.StatusOK || body != "ok" {
		t.Fatalf("expected health ok, got %d %q", resp.StatusCode, body)
	}
	if resp.Header.Get("X-Frame-Options") != "DENY" {
		t.Fatalf("expected secure headers on responses")
	}

	resp = get(t, client, env.server.URL, "/assets/app.css")
	if body := readBody(t, resp); resp.StatusCode != http.StatusOK || !strings.Contains(body, ".cheapest") {
		t.Fatalf("expected embedded stylesheet, got %d", resp.StatusCode)
	}
}

func TestCSRFPostWithoutJSONRejected(t *testing.T) {
	env, client := setupIntegrationServer(t)

	resp, err := client.PostForm(env.server.URL+"/start", url.Values{"x": {"1"}})
	if err != nil {
		t.Fatalf("POST /start failed: %v", err)
	}
	_ = readBody(t, resp)
	if resp.StatusCode != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415 for form post, got %d", resp.StatusCode)
	}
	if n := countActions(t, env.db, false); n != 0 {
		t.Fatalf("expected no action recorded, got %d", n)
	}
}

func TestCSRFPostWithJSONCharsetAccepted(t *testing.T) {
	env, client := setupIntegrationServer(t)

	resp, err := client.Post(env.server.URL+"/stop", "application/json; charset=utf-8", nil)
	if err != nil {
		t.Fatalf("POST /stop failed: %v", err)
	}
	_ = readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestUnknownActionNotFound(t *testing.T) {
	env, client := setupIntegrationServer(t)

	resp := postJSON(t, client, env.server.URL, "/launch", nil)
	_ = readBody(t, resp)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestDispatcherDrivesStatusEndpoint(t *testing.T) {
	env, client := setupIntegrationServer(t)

	var alerts []string
	statusAfterRefresh := ""
	d := actions.NewDispatcher(env.server.URL, client)
	d.RefreshDelay = 10 * time.Millisecond
	d.Alert = func(msg string) { alerts = append(alerts, msg) }
	d.Refresh = func() {
		resp, err := client.Get(env.server.URL + "/status")
		if err != nil {
			t.Errorf("GET /status failed: %v", err)
			return
		}
		defer resp.Body.Close()
		var status actions.StatusResponse
		if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
			t.Errorf("decode status: %v", err)
			return
		}
		statusAfterRefresh = status.Status
	}

	d.SendAction(context.Background(), actions.ActionStart)
	d.Wait()
	d.SendAction(context.Background(), actions.ActionRestart)
	d.Wait()

	if len(alerts) != 0 {
		t.Fatalf("unexpected alerts %v", alerts)
	}
	if statusAfterRefresh != actions.ActionRestart {
		t.Fatalf("expected status restart after refresh, got %q", statusAfterRefresh)
	}
	if pending, executed := countActions(t, env.db, false), countActions(t, env.db, true); pending != 1 || executed != 1 {
		t.Fatalf("expected 1 pending and 1 executed action, got %d/%d", pending, executed)
	}
}

func TestServerEndToEndCoreFlow(t *testing.T) {
	env, client := setupIntegrationServer(t)

	body, _ := json.Marshal(map[string]any{
		"image_path":   "captures/market.png",
		"image_base64": pngBase64(t),
		"ocr_text":     "ocr",
		"debug_info":   "debug",
		"raw_text":     "raw",
		"items": []map[string]any{
			{"title": "Bow", "enhancement": "+2", "price": "3 000", "category": "buy_equipment"},
			{"title": "Bow", "enhancement": "+2", "price": "2 500", "category": "buy_equipment"},
			{"title": "Bow pack", "enhancement": "+2", "price": "9 000", "package": true},
		},
	})
	resp := postJSON(t, client, env.server.URL, "/api/screenshots", body)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, readBody(t, resp))
	}
	var created struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal([]byte(readBody(t, resp)), &created); err != nil {
		t.Fatalf("decode ingest response: %v", err)
	}
	id := strconv.FormatInt(created.ID, 10)

	resp = get(t, client, env.server.URL, "/?search=bow")
	page := readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected list page 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(page, `id="screenshot-`+id+`"`) {
		t.Fatalf("expected screenshot row on list page")
	}
	if strings.Count(page, `class="cheapest"`) != 1 || strings.Count(page, `class="cheapest-package"`) != 1 {
		t.Fatalf("expected highlighted rows on list page")
	}
	if !strings.Contains(page, "💰 Скупка (экипировка)") {
		t.Fatalf("expected formatted category on list page")
	}

	for _, path := range []string{"/image.png", "/image-modal", "/detail-modal", "/items.csv", "/report.pdf"} {
		resp = get(t, client, env.server.URL, "/screenshots/"+id+path)
		if b := readBody(t, resp); resp.StatusCode != http.StatusOK || len(b) == 0 {
			t.Fatalf("expected non-empty 200 for %s, got %d", path, resp.StatusCode)
		}
	}

	resp = get(t, client, env.server.URL, "/?search=nothing-matches")
	page = readBody(t, resp)
	if strings.Contains(page, `id="screenshot-`+id+`"`) {
		t.Fatalf("expected search to filter out the screenshot")
	}
}

func TestItemTabsAndPriceMetrics(t *testing.T) {
	env, client := setupIntegrationServer(t)

	body, _ := json.Marshal(map[string]any{
		"image_path": "captures/coins.png",
		"items": []map[string]any{
			{"title": "gold coin", "price": "1 200", "category": "buy_consumables"},
			{"title": "gold coin", "price": "900", "category": "buy_consumables"},
			{"title": "gold coin", "price": "700", "category": "sell_consumables"},
		},
	})
	resp := postJSON(t, client, env.server.URL, "/api/screenshots", body)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, readBody(t, resp))
	}
	_ = readBody(t, resp)

	resp = get(t, client, env.server.URL, "/?tab=item_search&item_search=gold&category_buy_consumables=1")
	page := readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if strings.Count(page, "<td>gold coin</td>") != 2 {
		t.Fatalf("expected only the two buy_consumables rows:\n%s", page)
	}
	if strings.Index(page, "<td>900</td>") > strings.Index(page, "<td>1 200</td>") {
		t.Fatalf("expected cheaper row first")
	}

	list, _ := json.Marshal([]map[string]any{
		{"name": "gold coin", "category": "buy_consumables", "min_price": 800},
		{"name": "silver coin", "category": "sell_consumables"},
	})
	resp = postJSON(t, client, env.server.URL, "/api/items-list", list)
	if got := readBody(t, resp); resp.StatusCode != http.StatusOK || !strings.Contains(got, `"imported":2`) {
		t.Fatalf("expected import of two items, got %d %s", resp.StatusCode, got)
	}
	resp = get(t, client, env.server.URL, "/?tab=items_list")
	if page := readBody(t, resp); !strings.Contains(page, "<td>silver coin</td>") || !strings.Contains(page, "<td>800</td>") {
		t.Fatalf("expected tracked items on the items list tab:\n%s", page)
	}

	if err := env.metrics.Refresh(context.Background(), env.db); err != nil {
		t.Fatalf("refresh metrics: %v", err)
	}
	resp = get(t, client, env.server.URL, "/metrics")
	out := readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from /metrics, got %d", resp.StatusCode)
	}
	for _, want := range []string{
		`gold_coin_min_price{category="buy_consumables"} 900`,
		`gold_coin_min_price{category="sell_consumables"} 700`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in /metrics:\n%s", want, out)
		}
	}
}
