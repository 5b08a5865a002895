package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MetricRecipes/internal/config"
	"MetricRecipes/internal/ledger"
	"MetricRecipes/internal/metrics"
	"MetricRecipes/internal/model"
	"MetricRecipes/internal/notifier"
	"MetricRecipes/internal/pantry"
	"MetricRecipes/internal/recorder"
)

func testSource() *pantry.MockSource {
	return &pantry.MockSource{Data: map[string]model.Series{
		"MRR": {
			"2015-01-31": nil,
			"2015-02-28": model.Reading(14257.34),
		},
		"Expenses": {
			"2015-01-31": model.Reading(9000),
			"2015-02-28": model.Reading(9349.45),
		},
	}}
}

func newTestScheduler(t *testing.T, source pantry.Source, rec recorder.Recorder) *Scheduler {
	t.Helper()
	cfg := &config.Config{}
	cfg.Schedule.DateMode = config.DateModeMonthEnd
	cfg.Schedule.DateLayout = "2006-01-02"
	cfg.Recipes = []model.RecipeDef{
		{Name: "Net Revenue", Formula: "[MRR] - [Expenses]", Ingredients: []string{"MRR", "Expenses"}},
		{Name: "Cover", Formula: "[Expenses] / [Cash]", Ingredients: []string{"Expenses", "Cash"}},
		{Name: "Broken", Formula: "[MRR] + [Ghost]", Ingredients: []string{"MRR"}},
		{Name: "Doubled", Formula: "([MRR] + [MRR]) * 1", Ingredients: []string{"MRR"}},
	}

	lm, err := ledger.NewManager(filepath.Join(t.TempDir(), "ledger.json"), cfg.Schedule.DateLayout)
	require.NoError(t, err)
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}

	s := NewScheduler(context.Background(), cfg, pantry.New(source), lm,
		notifier.NewTelegramNotifier("", "", ""), rec, metrics.New())
	s.Now = func() time.Time { return time.Date(2015, time.March, 10, 6, 0, 0, 0, time.UTC) }
	return s
}

func resultFor(t *testing.T, results []model.RecipeResult, name string) model.RecipeResult {
	t.Helper()
	for _, r := range results {
		if r.Recipe == name {
			return r
		}
	}
	t.Fatalf("no result for %s", name)
	return model.RecipeResult{}
}

func TestRunNow(t *testing.T) {
	s := newTestScheduler(t, testSource(), nil)
	run := s.RunNow(context.Background(), "2015-02-28", recorder.TriggerManual)

	require.Len(t, run.Results, 4)
	assert.Equal(t, "Net Revenue", run.Results[0].Recipe, "results keep configuration order")
	assert.Equal(t, recorder.TriggerManual, run.Trigger)
	assert.False(t, run.FinishedAt.Before(run.StartedAt))

	net := resultFor(t, run.Results, "Net Revenue")
	assert.Equal(t, model.KindNumber, net.Kind)
	assert.Equal(t, 4907.89, net.Value)

	// Cash is not in the source, so its dates are unknown.
	assert.Equal(t, model.KindUnknown, resultFor(t, run.Results, "Cover").Kind)

	broken := resultFor(t, run.Results, "Broken")
	assert.Equal(t, model.KindFailed, broken.Kind)
	assert.Contains(t, broken.Error, "Ghost")

	assert.Equal(t, 28514.68, resultFor(t, run.Results, "Doubled").Value)

	latest, ok := s.Ledger.Latest("Net Revenue")
	require.True(t, ok)
	assert.Equal(t, 4907.89, latest.Value)
	assert.Equal(t, run.ID, s.Ledger.GetState().LastRunID)
}

func TestRunNow_NoValueDate(t *testing.T) {
	s := newTestScheduler(t, testSource(), nil)
	run := s.RunNow(context.Background(), "2015-01-31", recorder.TriggerManual)

	assert.Equal(t, model.KindNoValue, resultFor(t, run.Results, "Net Revenue").Kind)
	assert.Equal(t, model.KindNoValue, resultFor(t, run.Results, "Doubled").Kind)
	assert.Equal(t, model.KindUnknown, resultFor(t, run.Results, "Cover").Kind)
}

func TestRunNow_SourceFailure(t *testing.T) {
	src := testSource()
	src.Err = errors.New("connection refused")
	s := newTestScheduler(t, src, nil)

	run := s.RunNow(context.Background(), "2015-02-28", recorder.TriggerManual)
	for _, res := range run.Results {
		assert.Equal(t, model.KindFailed, res.Kind, res.Recipe)
		assert.Contains(t, res.Error, "connection refused")
	}
}

func TestHandleCommand_Value(t *testing.T) {
	s := newTestScheduler(t, testSource(), nil)
	ctx := context.Background()

	assert.Contains(t, s.HandleCommand(ctx, "/value Net Revenue 2015-02-28"), "4907.89")
	// Without a date the previous month end is used.
	assert.Contains(t, s.HandleCommand(ctx, "/value Net Revenue"), "2015-02-28: 4907.89")
	assert.Contains(t, s.HandleCommand(ctx, "/value Net Revenue 2015-01-31"), "no value")
	assert.Contains(t, s.HandleCommand(ctx, "/value Net Revenue 1999-12-31"), "unknown")
	assert.Contains(t, s.HandleCommand(ctx, "/value Gross"), "Unknown recipe")
}

func TestHandleCommand_Postfix(t *testing.T) {
	s := newTestScheduler(t, testSource(), nil)
	ctx := context.Background()

	reply := s.HandleCommand(ctx, "/postfix Doubled")
	assert.Contains(t, reply, "infix: <code>( [MRR] + [MRR] ) * 1</code>")
	assert.Contains(t, reply, "postfix: <code>[MRR] [MRR] + 1 *</code>")

	assert.Contains(t, s.HandleCommand(ctx, "/postfix Broken"), "unknown ingredient")
}

func TestHandleCommand_RunAndLatest(t *testing.T) {
	s := newTestScheduler(t, testSource(), nil)
	ctx := context.Background()

	assert.Contains(t, s.HandleCommand(ctx, "/latest"), "No runs recorded yet")
	assert.Contains(t, s.HandleCommand(ctx, "/run 28/02/2015"), "Invalid date")

	assert.Empty(t, s.HandleCommand(ctx, "/run"))
	latest := s.HandleCommand(ctx, "/latest")
	assert.Contains(t, latest, "Net Revenue @ 2015-02-28: 4907.89")
	assert.Contains(t, latest, "Broken @ 2015-02-28: failed")
}

func TestHandleCommand_History(t *testing.T) {
	rec, err := recorder.NewSQLiteRecorder(filepath.Join(t.TempDir(), "recipes.db"))
	require.NoError(t, err)
	defer rec.Close()

	s := newTestScheduler(t, testSource(), rec)
	ctx := context.Background()
	s.RunNow(ctx, "2015-01-31", recorder.TriggerManual)
	s.RunNow(ctx, "2015-02-28", recorder.TriggerManual)

	reply := s.HandleCommand(ctx, "/history Net Revenue")
	assert.Contains(t, reply, "2015-02-28: 4907.89")
	assert.Contains(t, reply, "2015-01-31: no value")
	assert.Less(t, strings.Index(reply, "2015-02-28"), strings.Index(reply, "2015-01-31"), "newest first")
}

func TestHandleCommand_Help(t *testing.T) {
	s := newTestScheduler(t, testSource(), nil)
	assert.Contains(t, s.HandleCommand(context.Background(), "hello"), "/value")
	assert.Contains(t, s.HandleCommand(context.Background(), "/recipes"), "[MRR] - [Expenses]")
}
