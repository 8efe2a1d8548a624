package round

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hedera-core/txcore/core/status"
)

// Metrics collects per-round and per-transaction counters for scraping by
// an external Prometheus server. All fields are safe for concurrent use.
type Metrics struct {
	roundsExecuted  prometheus.Counter
	roundsAborted   prometheus.Counter
	handled         *prometheus.CounterVec
	migrationSteps  prometheus.Counter
	cacheDuplicates prometheus.Counter
}

// NewMetrics constructs and registers a Metrics set against reg. Pass
// prometheus.NewRegistry() for an isolated registry in tests, or
// prometheus.DefaultRegisterer in production wiring.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		roundsExecuted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "txcore_rounds_executed_total",
			Help: "Consensus rounds completed without an ISS.",
		}),
		roundsAborted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "txcore_rounds_aborted_total",
			Help: "Consensus rounds aborted on a fatal state error.",
		}),
		handled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "txcore_user_transactions_handled_total",
			Help: "User transactions handled, labeled by final record status.",
		}, []string{"status"}),
		migrationSteps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "txcore_migration_steps_total",
			Help: "Migration steps successfully published.",
		}),
		cacheDuplicates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "txcore_record_cache_duplicates_total",
			Help: "Transactions rejected as duplicates by the record cache.",
		}),
	}
	reg.MustRegister(m.roundsExecuted, m.roundsAborted, m.handled, m.migrationSteps, m.cacheDuplicates)
	return m
}

func (m *Metrics) observeRoundCompleted()          { m.roundsExecuted.Inc() }
func (m *Metrics) observeRoundAborted()             { m.roundsAborted.Inc() }
func (m *Metrics) observeMigrationStep()            { m.migrationSteps.Inc() }
func (m *Metrics) observeCacheDuplicate()           { m.cacheDuplicates.Inc() }
func (m *Metrics) observeHandled(s status.Code)     { m.handled.WithLabelValues(s.String()).Inc() }
