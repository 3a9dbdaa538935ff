// Package metrics holds the Prometheus collectors of the storage layer.
// They live on a private registry so that embedding programs decide
// whether and where to expose them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds every devboard collector
var Registry = prometheus.NewRegistry()

var (
	// QueryDuration observes the duration of every SQL statement
	QueryDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "devboard",
		Subsystem: "store",
		Name:      "query_duration_seconds",
		Help:      "Duration of SQL statements issued by the storage layer.",
		Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.2, 0.5, 1, 5},
	})

	// VersionConflicts counts optimistic lock failures per entity kind
	VersionConflicts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "devboard",
		Name:      "version_conflicts_total",
		Help:      "Optimistic concurrency conflicts by entity kind.",
	}, []string{"entity"})

	// TemplateImportRollbacks counts template imports that were rolled back
	TemplateImportRollbacks = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "devboard",
		Name:      "template_import_rollbacks_total",
		Help:      "Template imports rolled back after a failed step.",
	})

	// CascadeDeletedRows counts rows removed by project deletion per table
	CascadeDeletedRows = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "devboard",
		Name:      "cascade_deleted_rows_total",
		Help:      "Rows removed by cascading project deletion, by table.",
	}, []string{"table"})
)

func init() {
	Registry.MustRegister(QueryDuration, VersionConflicts, TemplateImportRollbacks, CascadeDeletedRows)
}
