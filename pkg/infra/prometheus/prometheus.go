package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var registry = prometheus.NewRegistry()

var registerer = prometheus.WrapRegistererWith(nil, registry)

var (
	TicketsOpenedTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticketd_tickets_opened_total",
			Help: "Total number of tickets opened",
		},
		[]string{"category"},
	)

	TicketsArchivedTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticketd_tickets_archived_total",
			Help: "Total number of tickets archived",
		},
		[]string{"trigger"}, // manual, inactivity, member_left
	)

	InactivityWarningsTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticketd_inactivity_warnings_total",
			Help: "Inactivity warnings emitted by the sweep",
		},
		[]string{"branch"}, // team_busy, owner_absent
	)

	NotificationsTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticketd_notifications_total",
			Help: "Manual notification attempts through the cooldown gate",
		},
		[]string{"kind", "outcome"}, // support/author, allowed/denied
	)

	OpenTickets = promauto.With(registerer).NewGauge(
		prometheus.GaugeOpts{
			Name: "ticketd_open_tickets",
			Help: "Number of tickets currently open",
		},
	)
)

// Archival trigger labels.
const (
	TriggerManual     = "manual"
	TriggerInactivity = "inactivity"
	TriggerMemberLeft = "member_left"
)

func Initialize() {
	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	prometheus.DefaultRegisterer = registry
	prometheus.DefaultGatherer = registry
}
