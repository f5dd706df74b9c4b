// Package metrics exposes Prometheus metrics for a running grid engine:
//
//   - grid_order_updates_total{status}  order updates dispatched to the engine
//   - grid_quotes_total                  market quotes dispatched to the engine
//   - grid_feed_errors_total             non-fatal quote feed errors
//   - grid_position                      signed net position
//   - grid_average_price                 average entry price (0 when flat)
//   - grid_live_orders{role}             live orders per role
//   - grid_state{state}                  1 for the current engine state, 0 otherwise
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rxtech-lab/argo-grid/internal/grid"
	"github.com/rxtech-lab/argo-grid/internal/types"
)

var states = []grid.State{grid.StateFlat, grid.StateLadderActive, grid.StateOneSided, grid.StateCooldown}

// Recorder owns a private registry so that several runners, or tests, do not
// collide on the global one.
type Recorder struct {
	registry *prometheus.Registry

	orderUpdates *prometheus.CounterVec
	quotes       prometheus.Counter
	feedErrors   prometheus.Counter
	position     prometheus.Gauge
	averagePrice prometheus.Gauge
	liveOrders   *prometheus.GaugeVec
	state        *prometheus.GaugeVec
}

// NewRecorder creates a recorder with every metric registered. Metrics carry
// a constant symbol label.
func NewRecorder(symbol string) *Recorder {
	labels := prometheus.Labels{"symbol": symbol}

	r := &Recorder{
		registry: prometheus.NewRegistry(),
		orderUpdates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "grid_order_updates_total",
				Help:        "Order updates dispatched to the engine",
				ConstLabels: labels,
			},
			[]string{"status"},
		),
		quotes: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "grid_quotes_total",
			Help:        "Market quotes dispatched to the engine",
			ConstLabels: labels,
		}),
		feedErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "grid_feed_errors_total",
			Help:        "Non-fatal quote feed errors",
			ConstLabels: labels,
		}),
		position: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "grid_position",
			Help:        "Signed net position",
			ConstLabels: labels,
		}),
		averagePrice: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "grid_average_price",
			Help:        "Average entry price of the net position",
			ConstLabels: labels,
		}),
		liveOrders: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name:        "grid_live_orders",
				Help:        "Live orders per role",
				ConstLabels: labels,
			},
			[]string{"role"},
		),
		state: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name:        "grid_state",
				Help:        "Engine state indicator (1 for the current state)",
				ConstLabels: labels,
			},
			[]string{"state"},
		),
	}

	r.registry.MustRegister(
		r.orderUpdates,
		r.quotes,
		r.feedErrors,
		r.position,
		r.averagePrice,
		r.liveOrders,
		r.state,
	)

	return r
}

// ObserveOrderUpdate counts an order update by status.
func (r *Recorder) ObserveOrderUpdate(update types.OrderUpdate) {
	r.orderUpdates.WithLabelValues(string(update.Status)).Inc()
}

// ObserveQuote counts a dispatched quote.
func (r *Recorder) ObserveQuote() {
	r.quotes.Inc()
}

// ObserveFeedError counts a non-fatal feed error.
func (r *Recorder) ObserveFeedError() {
	r.feedErrors.Inc()
}

// ObserveSnapshot refreshes the position, order and state gauges.
func (r *Recorder) ObserveSnapshot(snapshot grid.Snapshot) {
	r.position.Set(snapshot.Position)
	r.averagePrice.Set(snapshot.AveragePrice)

	r.liveOrders.WithLabelValues(string(types.OrderRoleLongEntry)).Set(float64(snapshot.LongEntries))
	r.liveOrders.WithLabelValues(string(types.OrderRoleShortEntry)).Set(float64(snapshot.ShortEntries))
	r.liveOrders.WithLabelValues(string(types.OrderRoleProfit)).Set(float64(snapshot.ProfitOrders))
	r.liveOrders.WithLabelValues(string(types.OrderRoleStop)).Set(float64(snapshot.StopOrders))

	for _, state := range states {
		value := 0.0
		if state == snapshot.State {
			value = 1
		}

		r.state.WithLabelValues(string(state)).Set(value)
	}
}

// Handler serves the registry in the Prometheus text exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
