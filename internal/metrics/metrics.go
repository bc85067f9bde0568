// Package metrics turns pipeline run summaries into Prometheus series. The
// CLI writes them in the node_exporter textfile format so batch runs can be
// scraped after they exit.
package metrics

import (
	"fmt"

	"github.com/KaramelBytes/incidentclean-cli/internal/pipeline"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "incidentclean"

// Recorder owns a private registry with the run series.
type Recorder struct {
	reg      *prometheus.Registry
	runs     *prometheus.CounterVec
	rows     *prometheus.CounterVec
	removed  *prometheus.CounterVec
	changed  *prometheus.CounterVec
	blanked  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// New registers the series on a fresh registry.
func New() *Recorder {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Pipeline runs by final status.",
		}, []string{"status"}),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_total",
			Help:      "Rows entering and leaving the pipeline.",
		}, []string{"direction"}),
		removed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_removed_total",
			Help:      "Rows dropped by the filter and deduplicate stages.",
		}, []string{"stage"}),
		changed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "values_changed_total",
			Help:      "Cells altered by each cleaning stage.",
		}, []string{"stage", "column"}),
		blanked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "values_blanked_total",
			Help:      "Cells set to missing by each cleaning stage.",
		}, []string{"stage", "column"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time per pipeline stage.",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		}, []string{"stage"}),
	}
	r.reg.MustRegister(r.runs, r.rows, r.removed, r.changed, r.blanked, r.duration)
	return r
}

// Observe adds one run. Skipped stages are not recorded.
func (r *Recorder) Observe(sum *pipeline.Summary) {
	if sum == nil {
		return
	}
	r.runs.WithLabelValues(sum.Status).Inc()
	r.rows.WithLabelValues("in").Add(float64(sum.RowsIn))
	r.rows.WithLabelValues("out").Add(float64(sum.RowsOut))
	for _, st := range sum.Stages {
		if st.Status == pipeline.StatusSkipped {
			continue
		}
		r.duration.WithLabelValues(st.Name).Observe(st.Duration.Seconds())
		switch {
		case st.Filter != nil:
			r.removed.WithLabelValues(st.Name).Add(float64(st.Filter.RowsRemoved))
		case st.Name == pipeline.StageDedup:
			r.removed.WithLabelValues(st.Name).Add(float64(st.Duplicates))
		case st.Clean != nil:
			r.changed.WithLabelValues(st.Name, st.Clean.Column).Add(float64(st.Clean.Changed))
			r.blanked.WithLabelValues(st.Name, st.Clean.Column).Add(float64(st.Clean.Blanked))
		}
	}
}

// WriteTextfile writes all series to path in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
