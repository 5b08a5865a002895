package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"MetricRecipes/internal/config"
	"MetricRecipes/internal/pantry"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "recipes",
	Short: "Evaluate business metric recipes over recorded ingredient series",
	Long: `recipes evaluates formulas such as "[MRR] - [Expenses]" against dated
ingredient series, on a schedule or on demand.

Examples:
  recipes serve                          # run the scheduler and Telegram bot
  recipes eval "Net Revenue" 2015-02-28  # evaluate one recipe
  recipes postfix "1 / 2 - 3 * 4 + 5"    # show evaluation order
  recipes import data/ingredients.yaml   # load readings into SQLite`,
	SilenceUsage: true,
}

func init() {
	defaultPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultPath = v
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultPath, "path to the YAML config file")
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// openSource builds the ingredient source the config selects. The returned
// func releases it.
func openSource(cfg *config.Config) (pantry.Source, func(), error) {
	switch cfg.Source.Kind {
	case config.SourceHTTP:
		return pantry.NewHTTPSource(cfg.Source.BaseURL, cfg.Source.APIKey, cfg.Proxy,
			cfg.Source.CacheTTL, cfg.Source.RatePerSec), func() {}, nil
	case config.SourceSQLite:
		src, err := pantry.NewSQLiteSource(sqlitePath(cfg))
		if err != nil {
			return nil, nil, err
		}
		return src, func() { src.Close() }, nil
	default:
		src, err := pantry.NewFileSource(cfg.Source.Path)
		if err != nil {
			return nil, nil, err
		}
		return src, func() {}, nil
	}
}

func sqlitePath(cfg *config.Config) string {
	if cfg.Source.Kind == config.SourceSQLite && cfg.Source.Path != "" {
		return cfg.Source.Path
	}
	return cfg.Database.SQLitePath
}
