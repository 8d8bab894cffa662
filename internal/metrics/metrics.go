// Package metrics exposes the bot's Prometheus metrics:
//   - bot_ticks_total                 – price updates consumed from the feed
//   - bot_signals_total{signal}       – classified signals (BUY|SELL|NONE)
//   - bot_orders_total{side,result}   – order attempts by side and outcome
//   - bot_reloads_total{result}       – reconciliation cycles by outcome
//   - bot_balance_value{asset}        – notional value of held balances (gauge)
//
// Registered in init() and served at /metrics in text exposition format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Ticks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_ticks_total",
			Help: "Price updates consumed from the market feed",
		},
	)

	Signals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_signals_total",
			Help: "Signals classified from full price windows",
		},
		[]string{"signal"},
	)

	Orders = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_orders_total",
			Help: "Order attempts by side and outcome",
		},
		[]string{"side", "result"},
	)

	Reloads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_reloads_total",
			Help: "Reconciliation cycles by outcome",
		},
		[]string{"result"},
	)

	BalanceValue = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bot_balance_value",
			Help: "Notional value of held balances in quote-asset terms",
		},
		[]string{"asset"},
	)
)

func init() {
	prometheus.MustRegister(Ticks, Signals, Orders, Reloads, BalanceValue)
}

// Handler serves the registered metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
