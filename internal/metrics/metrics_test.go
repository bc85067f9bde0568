package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/KaramelBytes/incidentclean-cli/internal/clean"
	"github.com/KaramelBytes/incidentclean-cli/internal/dataset"
	"github.com/KaramelBytes/incidentclean-cli/internal/pipeline"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSummary() *pipeline.Summary {
	return &pipeline.Summary{
		RunID:   "run-1",
		Status:  pipeline.StatusSuccess,
		RowsIn:  5,
		RowsOut: 3,
		Stages: []pipeline.StageResult{
			{Name: pipeline.StageNormalize, Status: pipeline.StatusSuccess},
			{Name: pipeline.StageFilter, Status: pipeline.StatusSuccess, Filter: &dataset.FilterResult{RowsRemoved: 1}},
			{Name: pipeline.StageDedup, Status: pipeline.StatusSuccess, Duplicates: 1},
			{Name: pipeline.StageSex, Status: pipeline.StatusSuccess, Duration: 900 * time.Microsecond, Clean: &clean.Result{Column: "sex", Changed: 2, Blanked: 1}},
			{Name: pipeline.StageSpecies, Status: pipeline.StatusSkipped},
		},
	}
}

func TestObserve(t *testing.T) {
	r := New()
	r.Observe(sampleSummary())
	r.Observe(sampleSummary())
	r.Observe(nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.runs.WithLabelValues(pipeline.StatusSuccess)))
	assert.Equal(t, 10.0, testutil.ToFloat64(r.rows.WithLabelValues("in")))
	assert.Equal(t, 6.0, testutil.ToFloat64(r.rows.WithLabelValues("out")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.removed.WithLabelValues(pipeline.StageFilter)))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.removed.WithLabelValues(pipeline.StageDedup)))
	assert.Equal(t, 4.0, testutil.ToFloat64(r.changed.WithLabelValues(pipeline.StageSex, "sex")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.blanked.WithLabelValues(pipeline.StageSex, "sex")))
	// normalize, filter, dedup and sex; the skipped species stage has no series.
	assert.Equal(t, 4, testutil.CollectAndCount(r.duration))
}

func TestWriteTextfile(t *testing.T) {
	r := New()
	r.Observe(sampleSummary())
	path := filepath.Join(t.TempDir(), "incidentclean.prom")
	require.NoError(t, r.WriteTextfile(path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(b)
	for _, want := range []string{
		`incidentclean_runs_total{status="success"} 1`,
		`incidentclean_values_changed_total{column="sex",stage="clean_sex"} 2`,
		`incidentclean_rows_removed_total{stage="deduplicate"} 1`,
		`incidentclean_stage_duration_seconds_sum{stage="clean_sex"} 0.0009`,
		`incidentclean_stage_duration_seconds_bucket{stage="clean_sex",le="0.001"} 1`,
	} {
		assert.True(t, strings.Contains(text, want), "missing %q in:\n%s", want, text)
	}
}
