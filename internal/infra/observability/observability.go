// Package observability holds the Prometheus metrics exported at /metrics.
// All counters are registered once at init via promauto; call sites record
// events through the helpers so the label sets stay consistent.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "drip"

var (
	collectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "collections_total",
		Help:      "Successful source collections, by source kind.",
	}, []string{"kind"})

	collectionsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "collections_rejected_total",
		Help:      "Collections refused because the source was still cooling down.",
	})

	creditsEarned = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "credits_earned_total",
		Help:      "Currency units credited across all accounts.",
	})

	spendsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "spends_rejected_total",
		Help:      "Debits refused for insufficient funds.",
	})

	tierUpgrades = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tier_upgrades_total",
		Help:      "Paid tier purchases, by tier name.",
	}, []string{"tier"})

	sweepRuns = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sweep_runs_total",
		Help:      "Auto-collect sweep executions.",
	})

	sweepCollections = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sweep_collections_total",
		Help:      "Collections performed by the auto-collect sweeper.",
	})
)

// RecordCollection counts one successful collection of the given kind.
func RecordCollection(kind string) { collectionsTotal.WithLabelValues(kind).Inc() }

// RecordCollectionRejected counts a cooldown refusal.
func RecordCollectionRejected() { collectionsRejected.Inc() }

// RecordCredit adds earned currency to the running total.
func RecordCredit(amount int64) {
	if amount > 0 {
		creditsEarned.Add(float64(amount))
	}
}

// RecordSpendRejected counts an overdraft refusal.
func RecordSpendRejected() { spendsRejected.Inc() }

// RecordTierUpgrade counts a tier purchase.
func RecordTierUpgrade(tier string) { tierUpgrades.WithLabelValues(tier).Inc() }

// RecordSweep counts one sweeper run and the collections it performed.
func RecordSweep(collected int) {
	sweepRuns.Inc()
	sweepCollections.Add(float64(collected))
}
