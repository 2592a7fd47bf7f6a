// Package metrics exports world state and action counts to Prometheus.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/talgya/clearing/internal/world"
)

// Metrics holds the collectors for one simulation.
type Metrics struct {
	amount  *prometheus.GaugeVec
	bound   *prometheus.GaugeVec
	tick    prometheus.Gauge
	crowd   prometheus.Gauge
	actions *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		amount: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "clearing_resource_amount",
			Help: "Current amount of each world resource",
		}, []string{"resource"}),
		bound: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "clearing_resource_bound",
			Help: "Current bound of each world resource",
		}, []string{"resource"}),
		tick: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "clearing_tick",
			Help: "Most recent tick observed",
		}),
		crowd: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "clearing_overcrowding",
			Help: "People over the cleared-land bound",
		}),
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clearing_actions_total",
			Help: "Discrete actions by title and whether they applied",
		}, []string{"action", "applied"}),
	}
	reg.MustRegister(m.amount, m.bound, m.tick, m.crowd, m.actions)
	return m
}

// Observe records the world's resource levels at tick.
func (m *Metrics) Observe(tick uint64, w world.World) {
	set := func(name string, amount, bound float64) {
		m.amount.WithLabelValues(name).Set(amount)
		m.bound.WithLabelValues(name).Set(bound)
	}
	set("people", w.People.Amount(), w.People.Bound())
	set("food", w.Food.Amount(), w.Food.Bound())
	set("land", w.Land.Amount(), w.Land.Bound())
	set("wild", w.Wild.Amount(), w.Wild.Bound())
	set("hermit", w.Hermit.Amount(), w.Hermit.Bound())

	m.tick.Set(float64(tick))
	m.crowd.Set(w.Overcrowding())
}

// Action counts one discrete action.
func (m *Metrics) Action(out world.Outcome) {
	m.actions.WithLabelValues(out.Title, strconv.FormatBool(out.Applied)).Inc()
}
