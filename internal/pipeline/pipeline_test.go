package pipeline

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/KaramelBytes/incidentclean-cli/internal/clean"
	"github.com/KaramelBytes/incidentclean-cli/internal/dataset"
	"github.com/KaramelBytes/incidentclean-cli/internal/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	T = dataset.Text
	M = dataset.Missing
)

func rawAttacks(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds := dataset.New("Case Number", "Type", "Country", "Sex ", "Fatal (Y/N)", "Species ", "Notes")
	rows := [][]dataset.Value{
		{T("ND.1"), T("Unprovoked"), T(" usa"), T("Male"), T("N"), T("White shark"), M},
		{T("ND.2"), T("Boat"), T("australia "), T("F "), T("Y"), T("Tiger shark 3m"), M},
		{T("ND.2"), T("Boat"), T("australia "), T("F "), T("Y"), T("Tiger shark 3m"), M},
		{M, M, M, M, M, M, M},
		{T("ND.5"), T("Invalid"), T("BRAZIL"), T("lli"), dataset.Number(2017), T("Invalid"), M},
	}
	for _, r := range rows {
		require.NoError(t, ds.Append(r...))
	}
	return ds
}

func testConfig() Config {
	return Config{
		RowMinNonNull: 2,
		ColMinNonNull: 1,
		Renames:       []dataset.Rename{{From: "fatal_(y/n)", To: "fatal"}},
		Summaries:     true,
	}
}

func changed(t *testing.T, sum *Summary, stage string) int {
	t.Helper()
	st, ok := sum.Stage(stage)
	require.True(t, ok, stage)
	require.NotNil(t, st.Clean, stage)
	return st.Clean.Changed
}

func TestRunAllStages(t *testing.T) {
	ds := rawAttacks(t)
	sum, err := Run(context.Background(), ds, testConfig(), clean.DefaultVocabulary())
	require.NoError(t, err)

	_, err = uuid.Parse(sum.RunID)
	assert.NoError(t, err)
	assert.Equal(t, StatusSuccess, sum.Status)
	assert.Equal(t, 5, sum.RowsIn)
	assert.Equal(t, 7, sum.ColumnsIn)
	assert.Equal(t, 3, sum.RowsOut)
	assert.Equal(t, 6, sum.ColumnsOut)
	require.Len(t, sum.Stages, len(Stages()))
	for i, st := range sum.Stages {
		assert.Equal(t, Stages()[i], st.Name)
		assert.Equal(t, StatusSuccess, st.Status)
	}

	norm, _ := sum.Stage(StageNormalize)
	assert.Equal(t, []string{"case_number", "type", "country", "sex", "fatal", "species", "notes"}, norm.Columns)
	filter, _ := sum.Stage(StageFilter)
	assert.Equal(t, dataset.FilterResult{RowsRemoved: 1, ColumnsRemoved: 1}, *filter.Filter)
	dedup, _ := sum.Stage(StageDedup)
	assert.Equal(t, 1, dedup.Duplicates)

	assert.Equal(t, 2, changed(t, sum, StageSex))
	assert.Equal(t, 2, changed(t, sum, StageCountry))
	assert.Equal(t, 1, changed(t, sum, StageFatal))
	assert.Equal(t, 2, changed(t, sum, StageType))
	assert.Equal(t, 3, changed(t, sum, StageSpecies))

	assert.Equal(t, []int{0, 1, 2}, ds.Index())
	species, err := ds.Column("species")
	require.NoError(t, err)
	assert.Equal(t, []dataset.Value{T("White"), T("Tiger"), M}, species)

	require.NotNil(t, sum.Fatality)
	assert.Equal(t, clean.Fatality{Fatal: 1, Survived: 1}, *sum.Fatality)
	require.NotNil(t, sum.Gender)
	assert.Equal(t, clean.Gender{Female: 1, Male: 1}, *sum.Gender)
}

func TestRunLogsStageCounts(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	logger.SetFormat(logger.FormatJSON)
	logger.SetLevel(slog.LevelInfo)
	t.Cleanup(func() { logger.SetOutput(nil) })

	sum, err := Run(context.Background(), rawAttacks(t), testConfig(), clean.DefaultVocabulary())
	require.NoError(t, err)

	completed := map[string]map[string]any{}
	sc := bufio.NewScanner(&buf)
	for sc.Scan() {
		var rec map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &rec))
		if rec["msg"] == "stage completed" {
			completed[rec["stage"].(string)] = rec
		}
	}
	require.Len(t, completed, len(Stages()))

	norm := completed[StageNormalize]
	assert.Equal(t, sum.RunID, norm["run_id"])
	assert.Equal(t, []any{"case_number", "type", "country", "sex", "fatal", "species", "notes"}, norm["columns"])
	assert.Equal(t, float64(1), completed[StageFilter]["rows_removed"])
	assert.Equal(t, float64(1), completed[StageFilter]["columns_removed"])
	assert.Equal(t, float64(1), completed[StageDedup]["duplicates_removed"])
	assert.Equal(t, "species", completed[StageSpecies]["column"])
	assert.Equal(t, float64(3), completed[StageSpecies]["changed"])
}

func TestRunKeepsSubMillisecondDurations(t *testing.T) {
	ds := dataset.New("sex")
	require.NoError(t, ds.Append(T("M")))
	cfg := Config{Skip: []string{StageCountry, StageFatal, StageType, StageSpecies}}
	sum, err := Run(context.Background(), ds, cfg, clean.DefaultVocabulary())
	require.NoError(t, err)

	st, ok := sum.Stage(StageSex)
	require.True(t, ok)
	assert.Positive(t, st.Duration)
	assert.Equal(t, st.Duration.Milliseconds(), st.DurationMS)
}

func TestRunSkipsStages(t *testing.T) {
	ds := rawAttacks(t)
	cfg := testConfig()
	cfg.Skip = []string{StageDedup, StageSpecies}
	sum, err := Run(context.Background(), ds, cfg, clean.DefaultVocabulary())
	require.NoError(t, err)

	assert.Equal(t, 4, sum.RowsOut)
	st, _ := sum.Stage(StageSpecies)
	assert.Equal(t, StatusSkipped, st.Status)
	assert.Nil(t, st.Clean)

	species, err := ds.Column("species")
	require.NoError(t, err)
	assert.Equal(t, T("White shark"), species[0])
}

func TestRunRejectsUnknownStage(t *testing.T) {
	cfg := testConfig()
	cfg.Skip = []string{"clean_age"}
	_, err := Run(context.Background(), rawAttacks(t), cfg, clean.DefaultVocabulary())
	assert.ErrorIs(t, err, ErrUnknownStage)
}

func TestRunStopsAtMissingColumn(t *testing.T) {
	ds := dataset.New("Sex", "Country")
	require.NoError(t, ds.Append(T("M"), T("usa")))

	cfg := Config{Summaries: true}
	sum, err := Run(context.Background(), ds, cfg, clean.DefaultVocabulary())
	require.Error(t, err)
	assert.ErrorIs(t, err, dataset.ErrColumnNotFound)

	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StageFatal, se.Stage)
	assert.Equal(t, StatusError, sum.Status)

	last := sum.Stages[len(sum.Stages)-1]
	assert.Equal(t, StageFatal, last.Name)
	assert.Equal(t, StatusError, last.Status)
	assert.Contains(t, last.Error, "column 'fatal' not found")

	sex, err := ds.Column("sex")
	require.NoError(t, err)
	assert.Equal(t, T("m"), sex[0])
}

func TestRunHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, rawAttacks(t), testConfig(), clean.DefaultVocabulary())
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRunNilDataset(t *testing.T) {
	_, err := Run(context.Background(), nil, testConfig(), clean.DefaultVocabulary())
	assert.ErrorIs(t, err, ErrNilDataset)
}

func TestRunValidatesVocabulary(t *testing.T) {
	v := clean.DefaultVocabulary()
	v.Columns.Species = ""
	_, err := Run(context.Background(), rawAttacks(t), testConfig(), v)
	assert.ErrorContains(t, err, "invalid vocabulary")
}
