// Package metrics exposes Prometheus gauges/counters for a running
// simulation, in the teacher's metrics.go style (NewGaugeVec/NewCounterVec
// registered in init(), served by promhttp at /metrics).
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"candlesim/internal/account"
	"candlesim/internal/orderbook"
)

var (
	balanceGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "candlesim_balance",
		Help: "Current simulated account balance.",
	})

	positionQty = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "candlesim_position_qty",
		Help: "Current position size by side.",
	}, []string{"side"})

	ordersTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "candlesim_orders_total",
		Help: "Order lifecycle transitions by action.",
	}, []string{"action", "position_side"})

	liquidationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "candlesim_liquidations_total",
		Help: "Number of liquidation events emitted.",
	})
)

func init() {
	prometheus.MustRegister(balanceGauge, positionQty, ordersTotal, liquidationsTotal)
}

// Recorder is an account.Observer that mirrors state into the package's
// Prometheus collectors.
type Recorder struct{}

// NewRecorder returns a metrics Recorder ready to Subscribe to an
// account.Account.
func NewRecorder() Recorder { return Recorder{} }

func (Recorder) OnAccountUpdate(balance decimal.Decimal, long, short account.Position) {
	f, _ := balance.Float64()
	balanceGauge.Set(f)
	positionQty.WithLabelValues("long").Set(long.Qty)
	positionQty.WithLabelValues("short").Set(short.Qty)
}

func (Recorder) OnOrderUpdate(o orderbook.Order) {
	ordersTotal.WithLabelValues(string(o.Action), string(o.PositionSide)).Inc()
	if o.Action == orderbook.Liquidation {
		liquidationsTotal.Inc()
	}
}
