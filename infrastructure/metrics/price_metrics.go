package metrics

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/bun"

	"viewer/infrastructure/sqlite"
)

// Defaults for the watched item.
const (
	DefaultTitle           = "gold coin"
	DefaultCategory        = "buy_consumables"
	DefaultRefreshInterval = 30 * time.Second
)

// CategoryPrices is one aggregated row of the price query.
type CategoryPrices struct {
	Category    string  `bun:"category"`
	Screenshots int64   `bun:"screenshots"`
	AvgPrice    float64 `bun:"avg_price"`
	MinPrice    float64 `bun:"min_price"`
	MaxPrice    float64 `bun:"max_price"`
	Prices      int64   `bun:"prices"`
}

// Every screenshot that shows the watched item contributes its three lowest
// positive prices; the result is aggregated per item category.
const pricesQuery = `
WITH matched AS (
  SELECT DISTINCT screenshot_id
  FROM structured_items
  WHERE title = ? AND category = ?
),
priced AS (
  SELECT si.screenshot_id, si.category,
    CAST(REPLACE(REPLACE(si.price, ',', ''), ' ', '') AS REAL) AS price_numeric
  FROM structured_items si
  INNER JOIN matched m ON m.screenshot_id = si.screenshot_id
  WHERE si.price != ''
    AND CAST(REPLACE(REPLACE(si.price, ',', ''), ' ', '') AS REAL) > 0
),
ranked AS (
  SELECT screenshot_id, category, price_numeric,
    ROW_NUMBER() OVER (PARTITION BY screenshot_id ORDER BY price_numeric ASC) AS price_rank
  FROM priced
),
per_screenshot AS (
  SELECT screenshot_id, category,
    COUNT(*) AS prices_count,
    AVG(price_numeric) AS avg_min_3,
    MIN(price_numeric) AS min_price,
    MAX(price_numeric) AS max_of_min_3
  FROM ranked
  WHERE price_rank <= 3
  GROUP BY screenshot_id, category
)
SELECT category,
  COUNT(*) AS screenshots,
  AVG(avg_min_3) AS avg_price,
  MIN(min_price) AS min_price,
  MAX(max_of_min_3) AS max_price,
  SUM(prices_count) AS prices
FROM per_screenshot
GROUP BY category
ORDER BY category`

// PriceMetrics exports price gauges for one watched item on its own
// registry.
type PriceMetrics struct {
	Title    string
	Category string

	registry *prometheus.Registry
	avg      *prometheus.GaugeVec
	min      *prometheus.GaugeVec
	max      *prometheus.GaugeVec
	count    *prometheus.GaugeVec
}

func NewPriceMetrics() *PriceMetrics {
	m := &PriceMetrics{
		Title:    DefaultTitle,
		Category: DefaultCategory,
		registry: prometheus.NewRegistry(),
		avg: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "gold_coin_avg_min_3_prices",
			Help: "Average of the three lowest prices per screenshot.",
		}, []string{"category"}),
		min: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "gold_coin_min_price",
			Help: "Lowest observed price.",
		}, []string{"category"}),
		max: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "gold_coin_max_price_of_min_3",
			Help: "Highest of the three lowest prices per screenshot.",
		}, []string{"category"}),
		count: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "gold_coin_prices_count",
			Help: "Number of prices that fed the aggregates.",
		}, []string{"category"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.avg, m.min, m.max, m.count,
	)
	return m
}

// Load runs the aggregate query without touching the gauges.
func (m *PriceMetrics) Load(ctx context.Context, db *sqlite.DB) ([]CategoryPrices, error) {
	rows := make([]CategoryPrices, 0)
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewRaw(pricesQuery, m.Title, m.Category).Scan(ctx, &rows)
	})
	if err != nil {
		return nil, fmt.Errorf("load price metrics: %w", err)
	}
	return rows, nil
}

// Refresh reloads the gauges. Categories missing from the new result are
// dropped.
func (m *PriceMetrics) Refresh(ctx context.Context, db *sqlite.DB) error {
	rows, err := m.Load(ctx, db)
	if err != nil {
		return err
	}
	m.avg.Reset()
	m.min.Reset()
	m.max.Reset()
	m.count.Reset()
	for _, r := range rows {
		m.avg.WithLabelValues(r.Category).Set(r.AvgPrice)
		m.min.WithLabelValues(r.Category).Set(r.MinPrice)
		m.max.WithLabelValues(r.Category).Set(r.MaxPrice)
		m.count.WithLabelValues(r.Category).Set(float64(r.Prices))
	}
	slog.Debug("price metrics refreshed", slog.String("title", m.Title), slog.Int("categories", len(rows)))
	return nil
}

// Run refreshes once and then every interval until ctx is done.
func (m *PriceMetrics) Run(ctx context.Context, db *sqlite.DB, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	if err := m.Refresh(ctx, db); err != nil {
		slog.Error("refresh price metrics failed", slog.Any("err", err))
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.Refresh(ctx, db); err != nil {
				slog.Error("refresh price metrics failed", slog.Any("err", err))
			}
		}
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *PriceMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
