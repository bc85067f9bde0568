// Package pipeline runs the cleaning stages over one dataset in a fixed
// order: normalize column names, drop sparse rows and columns, drop
// duplicates, then the five field cleaners.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/KaramelBytes/incidentclean-cli/internal/clean"
	"github.com/KaramelBytes/incidentclean-cli/internal/dataset"
	"github.com/KaramelBytes/incidentclean-cli/internal/logger"
	"github.com/google/uuid"
)

// Stage names, in execution order.
const (
	StageNormalize = "normalize_columns"
	StageFilter    = "filter_sparse"
	StageDedup     = "deduplicate"
	StageSex       = "clean_sex"
	StageCountry   = "clean_country"
	StageFatal     = "clean_fatal"
	StageType      = "clean_type"
	StageSpecies   = "clean_species"
)

// Execution status values
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusSkipped = "skipped"
)

// Common errors
var (
	// ErrNilDataset is returned when Run is given no dataset.
	ErrNilDataset = errors.New("dataset is nil")
	// ErrUnknownStage is returned when Config.Skip names no stage.
	ErrUnknownStage = errors.New("unknown stage")
)

// Stages returns the stage names in execution order.
func Stages() []string {
	return []string{StageNormalize, StageFilter, StageDedup, StageSex, StageCountry, StageFatal, StageType, StageSpecies}
}

// Config holds the per-run settings.
type Config struct {
	RowMinNonNull int
	ColMinNonNull int
	Renames       []dataset.Rename
	// Skip lists stage names not to run.
	Skip []string
	// Summaries computes fatality and gender counts after cleaning.
	Summaries bool
}

// StageError reports which stage failed.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("stage %s: %v", e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

// StageResult is the outcome of one stage.
type StageResult struct {
	Name       string                `json:"name"`
	Status     string                `json:"status"`
	DurationMS int64                 `json:"duration_ms"`
	Duration   time.Duration         `json:"-"`
	Columns    []string              `json:"columns,omitempty"`
	Filter     *dataset.FilterResult `json:"filter,omitempty"`
	Duplicates int                   `json:"duplicates_removed,omitempty"`
	Clean      *clean.Result         `json:"clean,omitempty"`
	Error      string                `json:"error,omitempty"`
}

// Summary describes a whole run.
type Summary struct {
	RunID      string          `json:"run_id"`
	Status     string          `json:"status"`
	StartedAt  time.Time       `json:"started_at"`
	DurationMS int64           `json:"duration_ms"`
	RowsIn     int             `json:"rows_in"`
	RowsOut    int             `json:"rows_out"`
	ColumnsIn  int             `json:"columns_in"`
	ColumnsOut int             `json:"columns_out"`
	Stages     []StageResult   `json:"stages"`
	Fatality   *clean.Fatality `json:"fatality,omitempty"`
	Gender     *clean.Gender   `json:"gender,omitempty"`
}

// Stage returns the result for a stage name.
func (s *Summary) Stage(name string) (StageResult, bool) {
	for _, st := range s.Stages {
		if st.Name == name {
			return st, true
		}
	}
	return StageResult{}, false
}

type stageFunc func(ds *dataset.Dataset, res *StageResult) error

// Run executes every stage not in cfg.Skip and stops at the first error.
// The dataset is modified in place; a failed stage leaves the changes of the
// stages before it. The Summary is returned in both cases.
func Run(ctx context.Context, ds *dataset.Dataset, cfg Config, vocab clean.Vocabulary) (*Summary, error) {
	sum := &Summary{RunID: uuid.NewString(), Status: StatusError, StartedAt: time.Now()}
	if ds == nil {
		return sum, ErrNilDataset
	}
	for _, s := range cfg.Skip {
		if !slices.Contains(Stages(), s) {
			return sum, fmt.Errorf("skip %q: %w (stages: %v)", s, ErrUnknownStage, Stages())
		}
	}
	if err := vocab.Validate(); err != nil {
		return sum, err
	}
	sum.RowsIn, sum.ColumnsIn = ds.Len(), ds.Width()
	log := logger.WithRun(sum.RunID)
	log.Info("pipeline started", slog.Int("rows", ds.Len()), slog.Int("columns", ds.Width()))

	c := clean.New(vocab)
	stages := []struct {
		name string
		fn   stageFunc
	}{
		{StageNormalize, func(ds *dataset.Dataset, res *StageResult) error {
			res.Columns = dataset.NormalizeColumns(ds, cfg.Renames)
			return nil
		}},
		{StageFilter, func(ds *dataset.Dataset, res *StageResult) error {
			fr := dataset.FilterSparse(ds, cfg.RowMinNonNull, cfg.ColMinNonNull)
			res.Filter = &fr
			return nil
		}},
		{StageDedup, func(ds *dataset.Dataset, res *StageResult) error {
			res.Duplicates = dataset.Deduplicate(ds)
			return nil
		}},
		{StageSex, cleaner(c.CleanSex)},
		{StageCountry, cleaner(c.CleanCountry)},
		{StageFatal, cleaner(c.CleanFatal)},
		{StageType, cleaner(c.CleanType)},
		{StageSpecies, cleaner(c.CleanSpecies)},
	}

	for _, st := range stages {
		res := StageResult{Name: st.name, Status: StatusSuccess}
		stageLog := logger.WithStage(sum.RunID, st.name)
		if slices.Contains(cfg.Skip, st.name) {
			res.Status = StatusSkipped
			sum.Stages = append(sum.Stages, res)
			stageLog.Debug("stage skipped")
			continue
		}
		if err := ctx.Err(); err != nil {
			return sum.finish(ds), &StageError{Stage: st.name, Err: err}
		}
		start := time.Now()
		err := st.fn(ds, &res)
		res.Duration = time.Since(start)
		res.DurationMS = res.Duration.Milliseconds()
		if err != nil {
			res.Status, res.Error = StatusError, err.Error()
			sum.Stages = append(sum.Stages, res)
			stageLog.Error("stage failed", slog.Duration("duration", res.Duration), slog.String("error", err.Error()))
			return sum.finish(ds), &StageError{Stage: st.name, Err: err}
		}
		sum.Stages = append(sum.Stages, res)
		stageLog.Info("stage completed", append(res.logAttrs(), slog.Int("rows", ds.Len()), slog.Int("width", ds.Width()), slog.Duration("duration", res.Duration))...)
	}

	if cfg.Summaries {
		v := c.Vocabulary()
		f, err := clean.FatalitySummary(ds, v.Columns.Fatal)
		if err != nil {
			return sum.finish(ds), fmt.Errorf("fatality summary: %w", err)
		}
		g, err := clean.GenderSummary(ds, v.Columns.Sex)
		if err != nil {
			return sum.finish(ds), fmt.Errorf("gender summary: %w", err)
		}
		sum.Fatality, sum.Gender = &f, &g
	}

	sum.Status = StatusSuccess
	sum.finish(ds)
	log.Info("pipeline completed", slog.Int("rows", sum.RowsOut), slog.Int("columns", sum.ColumnsOut), slog.Int64("duration_ms", sum.DurationMS))
	return sum, nil
}

// logAttrs returns the stage-specific counts for the completion record.
func (r StageResult) logAttrs() []any {
	var attrs []any
	if r.Columns != nil {
		attrs = append(attrs, slog.Any("columns", r.Columns))
	}
	if r.Filter != nil {
		attrs = append(attrs, slog.Int("rows_removed", r.Filter.RowsRemoved), slog.Int("columns_removed", r.Filter.ColumnsRemoved))
	}
	if r.Name == StageDedup {
		attrs = append(attrs, slog.Int("duplicates_removed", r.Duplicates))
	}
	if r.Clean != nil {
		attrs = append(attrs, slog.String("column", r.Clean.Column), slog.Int("changed", r.Clean.Changed), slog.Int("blanked", r.Clean.Blanked))
	}
	return attrs
}

func cleaner(fn func(*dataset.Dataset) (clean.Result, error)) stageFunc {
	return func(ds *dataset.Dataset, res *StageResult) error {
		r, err := fn(ds)
		if err != nil {
			return err
		}
		res.Clean = &r
		return nil
	}
}

func (s *Summary) finish(ds *dataset.Dataset) *Summary {
	s.RowsOut, s.ColumnsOut = ds.Len(), ds.Width()
	s.DurationMS = time.Since(s.StartedAt).Milliseconds()
	return s
}
