package recorder

import (
	"time"

	"github.com/google/uuid"

	"MetricRecipes/internal/model"
)

// Trigger types for evaluation runs.
const (
	TriggerScheduled = "SCHEDULED"
	TriggerManual    = "MANUAL"
	TriggerCommand   = "COMMAND"
)

// Run holds every recipe result produced by one evaluation run.
type Run struct {
	ID         string
	DateKey    string
	Trigger    string
	StartedAt  time.Time
	FinishedAt time.Time
	Results    []model.RecipeResult
}

// NewRun starts a run with a fresh identifier.
func NewRun(dateKey, trigger string) *Run {
	return &Run{
		ID:        uuid.NewString(),
		DateKey:   dateKey,
		Trigger:   trigger,
		StartedAt: time.Now(),
	}
}

// Counts tallies the run's results by outcome kind.
func (r *Run) Counts() map[model.OutcomeKind]int {
	counts := make(map[model.OutcomeKind]int, 4)
	for _, res := range r.Results {
		counts[res.Kind]++
	}
	return counts
}

// Recorder persists evaluation history for analysis.
type Recorder interface {
	RecordRun(run *Run) error
	History(recipe string, limit int) ([]model.RecipeResult, error)
	Close() error
}
