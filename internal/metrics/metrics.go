package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TicksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "ticks_total", Help: "Count of market ticks ingested"},
		[]string{"symbol"},
	)
	CandlesClosedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "candles_closed_total", Help: "Candles closed and appended to history"},
		[]string{"symbol"},
	)
	DecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "decisions_total", Help: "Strategy decisions by label"},
		[]string{"symbol", "decision"},
	)
	FetchErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "fetch_errors_total", Help: "Failed market data fetches"},
		[]string{"symbol"},
	)
	PortfolioValue = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "portfolio_value", Help: "Current portfolio value marked at the latest price"},
		[]string{"symbol"},
	)
)

func init() {
	prometheus.MustRegister(TicksTotal, CandlesClosedTotal, DecisionsTotal, FetchErrorsTotal, PortfolioValue)
}

func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
