package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"MetricRecipes/internal/ledger"
	"MetricRecipes/internal/metrics"
	"MetricRecipes/internal/notifier"
	"MetricRecipes/internal/pantry"
	"MetricRecipes/internal/recorder"
	"MetricRecipes/internal/scheduler"
)

var runOnStart bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run scheduled evaluations and answer Telegram commands",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&runOnStart, "run-on-start", os.Getenv("RUN_ON_START") == "true",
		"evaluate every recipe immediately after starting")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log.Println("[INFO] recipes starting...")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	source, closeSource, err := openSource(cfg)
	if err != nil {
		return err
	}
	defer closeSource()
	log.Printf("[INFO] ingredient source: %s", source.Name())

	lm, err := ledger.NewManager(cfg.Ledger.StateFile, cfg.Schedule.DateLayout)
	if err != nil {
		return err
	}
	names := make([]string, len(cfg.Recipes))
	for i, r := range cfg.Recipes {
		names[i] = r.Name
	}
	lm.Forget(names)

	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)

	var rec recorder.Recorder
	sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
	if err != nil {
		log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
		rec = recorder.NewNoopRecorder()
	} else {
		rec = sr
		defer sr.Close()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.New()
	if cfg.Metrics.Listen != "" {
		go m.Serve(ctx, cfg.Metrics.Listen)
	}

	sched := scheduler.NewScheduler(ctx, cfg, pantry.New(source), lm, tn, rec, m)
	if err := sched.Register(); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	go tn.StartPolling(ctx, sched.HandleCommand)

	if runOnStart {
		log.Println("[INFO] run-on-start enabled, evaluating now")
		go sched.RunNow(ctx, cfg.DateKey(sched.Now()), recorder.TriggerManual)
	}

	log.Printf("[INFO] recipes is running with %d recipes. Press Ctrl+C to stop.", len(cfg.Recipes))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] recipes stopped")
	return nil
}
