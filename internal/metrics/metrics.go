// Package metrics registers Prometheus metrics for the bot and serves
// them on a dedicated address.
package metrics

import (
	"context"
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the trading bot.
type Metrics struct {
	TicksTotal   prometheus.Counter
	DroppedTicks prometheus.Counter
	WSReconnects prometheus.Counter

	TradesTotal *prometheus.CounterVec // labels: reason
	Score       prometheus.Gauge
	PositionUp  prometheus.Gauge // 1 when a position is open
	EvalDur     prometheus.Histogram
}

// New registers and returns all bot metrics.
func New() *Metrics {
	m := &Metrics{
		TicksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "paperbot_ticks_total",
			Help: "Total ticks received from the price feed",
		}),
		DroppedTicks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "paperbot_dropped_ticks_total",
			Help: "Ticks dropped (malformed message or full channel)",
		}),
		WSReconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "paperbot_ws_reconnects_total",
			Help: "Price feed reconnection attempts",
		}),
		TradesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "paperbot_trades_total",
			Help: "Closed trades by exit reason",
		}, []string{"reason"}),
		Score: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "paperbot_composite_score",
			Help: "Latest composite signal score (0-100)",
		}),
		PositionUp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "paperbot_position_open",
			Help: "Whether a position is currently open (0 or 1)",
		}),
		EvalDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "paperbot_evaluate_duration_seconds",
			Help:    "Per-tick evaluate-and-maybe-trade latency",
			Buckets: []float64{0.000005, 0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005},
		}),
	}

	prometheus.MustRegister(
		m.TicksTotal,
		m.DroppedTicks,
		m.WSReconnects,
		m.TradesTotal,
		m.Score,
		m.PositionUp,
		m.EvalDur,
	)

	return m
}

// Server exposes /metrics over HTTP.
type Server struct {
	srv *http.Server
}

// NewServer creates the metrics server for the given address.
func NewServer(addr string) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &Server{srv: &http.Server{Addr: addr, Handler: mux}}
}

// Start launches the server in a goroutine.
func (s *Server) Start() {
	go func() {
		log.Printf("[metrics] server listening on %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("[metrics] server error: %v", err)
		}
	}()
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) {
	s.srv.Shutdown(ctx)
}
