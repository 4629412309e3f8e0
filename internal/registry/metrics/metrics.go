package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the registry domain counters.
type Metrics struct {
	Registrations     prometheus.Counter
	Gifts             prometheus.Counter
	Renewals          prometheus.Counter
	Transfers         prometheus.Counter
	ProvisionFailures prometheus.Counter
	SeasonsCreated    prometheus.Counter
	SeasonsCompleted  prometheus.Counter
}

// New creates the registry metrics on the default registerer.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith creates the registry metrics on the given registerer. Tests use a
// private registry so suites do not collide on metric names.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Registrations: factory.NewCounter(prometheus.CounterOpts{
			Name: "registrar_registrations_total",
			Help: "Total number of successful name registrations",
		}),
		Gifts: factory.NewCounter(prometheus.CounterOpts{
			Name: "registrar_gifts_total",
			Help: "Total number of admin gifts and allowlisted creations",
		}),
		Renewals: factory.NewCounter(prometheus.CounterOpts{
			Name: "registrar_renewals_total",
			Help: "Total number of name renewals",
		}),
		Transfers: factory.NewCounter(prometheus.CounterOpts{
			Name: "registrar_transfers_total",
			Help: "Total number of ownership transfers",
		}),
		ProvisionFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "registrar_provision_failures_total",
			Help: "Total number of failed provisioning calls",
		}),
		SeasonsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "registrar_seasons_created_total",
			Help: "Total number of registration seasons created",
		}),
		SeasonsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "registrar_seasons_completed_total",
			Help: "Total number of seasons that reached capacity",
		}),
	}
}
