package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_GathersAllCollectors(t *testing.T) {
	VersionConflicts.WithLabelValues("epic").Inc()
	CascadeDeletedRows.WithLabelValues("epics").Add(3)
	TemplateImportRollbacks.Inc()
	QueryDuration.Observe(0.01)

	families, err := Registry.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "devboard_version_conflicts_total")
	assert.Contains(t, names, "devboard_cascade_deleted_rows_total")
	assert.Contains(t, names, "devboard_template_import_rollbacks_total")
	assert.Contains(t, names, "devboard_store_query_duration_seconds")
}

func TestVersionConflicts_CountsPerEntity(t *testing.T) {
	before := testutil.ToFloat64(VersionConflicts.WithLabelValues("prompt"))
	VersionConflicts.WithLabelValues("prompt").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(VersionConflicts.WithLabelValues("prompt")))
}
