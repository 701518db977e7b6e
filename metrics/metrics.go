package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result label values.
const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultError    = "error"
)

type Metrics struct {
	registry *prometheus.Registry

	SlotsCreated prometheus.Counter
	Bookings     *prometheus.CounterVec
	TokenAuth    *prometheus.CounterVec
}

// New registers the scheduling counters and the Go runtime collectors on a
// private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		SlotsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mentorship",
			Name:      "slots_created_total",
			Help:      "Availability slots published by mentors.",
		}),
		Bookings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mentorship",
			Name:      "bookings_total",
			Help:      "Booking attempts by result.",
		}, []string{"result"}),
		TokenAuth: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mentorship",
			Name:      "token_auth_total",
			Help:      "Mentee token authentications by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.SlotsCreated,
		m.Bookings,
		m.TokenAuth,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
