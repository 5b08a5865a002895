package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"MetricRecipes/internal/config"
	"MetricRecipes/internal/ledger"
	"MetricRecipes/internal/metrics"
	"MetricRecipes/internal/model"
	"MetricRecipes/internal/notifier"
	"MetricRecipes/internal/pantry"
	"MetricRecipes/internal/recipe"
	"MetricRecipes/internal/recorder"
)

// maxConcurrentRecipes bounds how many recipes a run gathers and evaluates at once.
const maxConcurrentRecipes = 4

// Scheduler runs recipe evaluations on a cron schedule and on demand.
type Scheduler struct {
	Cron     *cron.Cron
	Config   *config.Config
	Pantry   *pantry.Pantry
	Ledger   *ledger.Manager
	Notifier *notifier.TelegramNotifier
	Recorder recorder.Recorder
	Metrics  *metrics.Metrics
	Ctx      context.Context
	Now      func() time.Time
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, cfg *config.Config, p *pantry.Pantry, lm *ledger.Manager,
	tn *notifier.TelegramNotifier, rec recorder.Recorder, m *metrics.Metrics) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Config:   cfg,
		Pantry:   p,
		Ledger:   lm,
		Notifier: tn,
		Recorder: rec,
		Metrics:  m,
		Ctx:      ctx,
		Now:      time.Now,
	}
}

// Register adds the scheduled evaluation run.
func (s *Scheduler) Register() error {
	if _, err := s.Cron.AddFunc(s.Config.Schedule.Cron, s.scheduledTask); err != nil {
		return fmt.Errorf("register evaluation task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

func (s *Scheduler) scheduledTask() {
	if inv, ok := s.Pantry.Source.(interface{ Invalidate() }); ok {
		inv.Invalidate()
	}
	dateKey := s.Config.DateKey(s.Now())
	log.Printf("[INFO] running scheduled evaluation for %s", dateKey)
	s.RunNow(s.Ctx, dateKey, recorder.TriggerScheduled)
}

// RunNow evaluates every configured recipe for dateKey, then records the run,
// updates the ledger and sends the report.
func (s *Scheduler) RunNow(ctx context.Context, dateKey, trigger string) *recorder.Run {
	run := recorder.NewRun(dateKey, trigger)
	run.Results = make([]model.RecipeResult, len(s.Config.Recipes))

	var g errgroup.Group
	g.SetLimit(maxConcurrentRecipes)
	for i, def := range s.Config.Recipes {
		g.Go(func() error {
			run.Results[i] = s.EvaluateRecipe(ctx, def, dateKey)
			return nil
		})
	}
	g.Wait()
	run.FinishedAt = time.Now()

	for _, res := range run.Results {
		s.Metrics.Evaluations.WithLabelValues(res.Recipe, string(res.Kind)).Inc()
	}
	s.Metrics.ObserveRun(run.StartedAt, run.FinishedAt)

	if err := s.Recorder.RecordRun(run); err != nil {
		log.Printf("[ERROR] record run %s: %v", run.ID, err)
	}
	s.Ledger.Apply(run.ID, run.FinishedAt, run.Results)

	counts := run.Counts()
	log.Printf("[INFO] run %s (%s) for %s: %d numbers, %d no value, %d unknown, %d failed",
		run.ID, trigger, dateKey, counts[model.KindNumber], counts[model.KindNoValue],
		counts[model.KindUnknown], counts[model.KindFailed])

	s.trySend(ctx, notifier.FormatRunReport(run))
	return run
}

// EvaluateRecipe gathers a recipe's ingredients and computes its value for
// dateKey. Construction and gathering failures are reported as KindFailed.
func (s *Scheduler) EvaluateRecipe(ctx context.Context, def model.RecipeDef, dateKey string) model.RecipeResult {
	res := model.RecipeResult{Recipe: def.Name, DateKey: dateKey}

	ingredients, err := s.Pantry.Gather(ctx, def)
	if err != nil {
		log.Printf("[ERROR] gather %s: %v", def.Name, err)
		res.Kind, res.Error = model.KindFailed, err.Error()
		return res
	}
	r, err := recipe.New(def.Formula, ingredients)
	if err != nil {
		log.Printf("[ERROR] build %s: %v", def.Name, err)
		res.Kind, res.Error = model.KindFailed, err.Error()
		return res
	}

	out := r.ValueFor(dateKey)
	res.Kind = out.Kind()
	if v, ok := out.Float(); ok {
		res.Value = v
	}
	return res
}

func (s *Scheduler) trySend(ctx context.Context, text string) {
	if err := s.Notifier.SendWithRetry(ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
