// Package metrics holds the Prometheus collectors of the purchase workflow.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Purchase outcomes used as the "outcome" label.
const (
	OutcomeCommitted      = "committed"
	OutcomeFlightNotFound = "flight_not_found"
	OutcomeSeatsExhausted = "seats_exhausted"
	OutcomeError          = "error"
)

var (
	purchases = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "aviacao",
		Name:      "purchases_total",
		Help:      "Ticket purchase attempts by outcome.",
	}, []string{"outcome"})

	purchaseDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "aviacao",
		Name:      "purchase_duration_seconds",
		Help:      "Time spent in the purchase transaction, lock waits included.",
		Buckets:   prometheus.DefBuckets,
	})

	ticketsIssued = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "aviacao",
		Name:      "tickets_issued_total",
		Help:      "Tickets committed, by seat class.",
	}, []string{"class"})
)

// ObservePurchase records one finished purchase attempt.
func ObservePurchase(outcome string, took time.Duration) {
	purchases.WithLabelValues(outcome).Inc()
	purchaseDuration.Observe(took.Seconds())
}

// TicketsIssued adds n committed tickets of the given class.
func TicketsIssued(class string, n int) {
	if n > 0 {
		ticketsIssued.WithLabelValues(class).Add(float64(n))
	}
}

// Handler serves the default registry.
func Handler() http.Handler { return promhttp.Handler() }
