package actions

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

// DefaultRefreshDelay is how long the dispatcher waits after a successful
// action before refreshing the status.
const DefaultRefreshDelay = time.Second

// Alert texts shown when a dispatch fails.
const (
	alertHTTPFailure    = "Ошибка при отправке действия: %d"
	alertNetworkFailure = "Ошибка сети при отправке действия"
)

// Dispatcher posts control actions to a viewer server. Every call is
// independent: no retries, no debounce, no queue.
type Dispatcher struct {
	prefix string
	client *http.Client

	// RefreshDelay defaults to DefaultRefreshDelay when zero.
	RefreshDelay time.Duration
	// Refresh runs after a successful dispatch when set.
	Refresh func()
	// Alert receives user-facing failure messages; failures are only
	// logged when it is nil.
	Alert func(msg string)

	wg sync.WaitGroup
}

// NewDispatcher targets baseURL, e.g. "http://localhost:8080". A nil client
// uses http.DefaultClient.
func NewDispatcher(baseURL string, client *http.Client) *Dispatcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Dispatcher{
		prefix: strings.TrimRight(baseURL, "/") + "/",
		client: client,
	}
}

// SendAction posts action in the background and returns at once. The
// action name is appended to the path as is.
func (d *Dispatcher) SendAction(ctx context.Context, action string) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.send(ctx, action)
	}()
}

// Wait blocks until every dispatched action, including its delayed
// refresh, has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) send(ctx context.Context, action string) {
	slog.Debug("sending action", slog.String("action", action))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.prefix+action, http.NoBody)
	if err != nil {
		slog.Error("build action request", slog.String("action", action), slog.Any("err", err))
		d.alert(alertNetworkFailure)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		slog.Error("action request failed", slog.String("action", action), slog.Any("err", err))
		d.alert(alertNetworkFailure)
		return
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		slog.Error("action rejected", slog.String("action", action), slog.Int("status", resp.StatusCode))
		d.alert(fmt.Sprintf(alertHTTPFailure, resp.StatusCode))
		return
	}
	slog.Debug("action sent", slog.String("action", action))

	delay := d.RefreshDelay
	if delay <= 0 {
		delay = DefaultRefreshDelay
	}
	time.Sleep(delay)
	if d.Refresh != nil {
		d.Refresh()
	}
}

func (d *Dispatcher) alert(msg string) {
	if d.Alert == nil {
		slog.Warn("action alert", slog.String("msg", msg))
		return
	}
	d.Alert(msg)
}
