package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"MetricRecipes/internal/model"
)

// Source kinds.
const (
	SourceFile   = "file"
	SourceSQLite = "sqlite"
	SourceHTTP   = "http"
)

// Date modes decide which date key a scheduled run evaluates.
const (
	DateModeToday    = "today"
	DateModeMonthEnd = "month_end" // last day of the previous month
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Source struct {
		Kind       string        `yaml:"kind" validate:"oneof=file sqlite http"`
		Path       string        `yaml:"path"`
		BaseURL    string        `yaml:"base_url" validate:"omitempty,url"`
		APIKey     string        `yaml:"api_key"`
		CacheTTL   time.Duration `yaml:"cache_ttl"`
		RatePerSec float64       `yaml:"rate_per_sec" validate:"gte=0"`
	} `yaml:"source"`
	Schedule struct {
		Cron       string `yaml:"cron"`
		DateMode   string `yaml:"date_mode" validate:"oneof=today month_end"`
		DateLayout string `yaml:"date_layout"`
	} `yaml:"schedule"`
	Ledger struct {
		StateFile string `yaml:"state_file"`
	} `yaml:"ledger"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Metrics struct {
		Listen string `yaml:"listen"`
	} `yaml:"metrics"`
	Proxy   string            `yaml:"proxy"`
	Recipes []model.RecipeDef `yaml:"recipes" validate:"dive"`
}

// envOverrides mirrors the overridable scalar fields of Config, flattened so
// that envconfig reads RECIPES_<NAME> variables.
type envOverrides struct {
	TelegramBotToken string        `envconfig:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID   string        `envconfig:"TELEGRAM_CHAT_ID"`
	SourceKind       string        `envconfig:"SOURCE_KIND"`
	SourcePath       string        `envconfig:"SOURCE_PATH"`
	SourceBaseURL    string        `envconfig:"SOURCE_BASE_URL"`
	SourceAPIKey     string        `envconfig:"SOURCE_API_KEY"`
	SourceCacheTTL   time.Duration `envconfig:"SOURCE_CACHE_TTL"`
	Cron             string        `envconfig:"CRON"`
	DateMode         string        `envconfig:"DATE_MODE"`
	LedgerStateFile  string        `envconfig:"LEDGER_STATE_FILE"`
	SQLitePath       string        `envconfig:"SQLITE_PATH"`
	MetricsListen    string        `envconfig:"METRICS_LISTEN"`
	Proxy            string        `envconfig:"HTTPS_PROXY"`
}

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "RECIPES"

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	cfg.applyEnv(&env)
	cfg.applyDefaults()

	return cfg, nil
}

func (c *Config) applyEnv(env *envOverrides) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&c.Telegram.BotToken, env.TelegramBotToken)
	set(&c.Telegram.ChatID, env.TelegramChatID)
	set(&c.Source.Kind, env.SourceKind)
	set(&c.Source.Path, env.SourcePath)
	set(&c.Source.BaseURL, env.SourceBaseURL)
	set(&c.Source.APIKey, env.SourceAPIKey)
	set(&c.Schedule.Cron, env.Cron)
	set(&c.Schedule.DateMode, env.DateMode)
	set(&c.Ledger.StateFile, env.LedgerStateFile)
	set(&c.Database.SQLitePath, env.SQLitePath)
	set(&c.Metrics.Listen, env.MetricsListen)
	set(&c.Proxy, env.Proxy)
	if env.SourceCacheTTL > 0 {
		c.Source.CacheTTL = env.SourceCacheTTL
	}
}

func (c *Config) applyDefaults() {
	if c.Source.Kind == "" {
		c.Source.Kind = SourceFile
	}
	if c.Source.Path == "" && c.Source.Kind == SourceFile {
		c.Source.Path = "data/ingredients.yaml"
	}
	if c.Source.CacheTTL == 0 {
		c.Source.CacheTTL = 10 * time.Minute
	}
	if c.Schedule.Cron == "" {
		c.Schedule.Cron = "0 0 6 * * *"
	}
	if c.Schedule.DateMode == "" {
		c.Schedule.DateMode = DateModeMonthEnd
	}
	if c.Schedule.DateLayout == "" {
		c.Schedule.DateLayout = "2006-01-02"
	}
	if c.Ledger.StateFile == "" {
		c.Ledger.StateFile = "data/ledger.json"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/recipes.db"
	}
}

// Validate checks that all required fields are set and recipe definitions are usable.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Source.Kind == SourceHTTP && c.Source.BaseURL == "" {
		return fmt.Errorf("source.base_url is required for http source")
	}
	if len(c.Recipes) == 0 {
		return fmt.Errorf("at least one recipe is required")
	}
	seen := make(map[string]bool, len(c.Recipes))
	for _, r := range c.Recipes {
		if seen[r.Name] {
			return fmt.Errorf("duplicate recipe %q", r.Name)
		}
		seen[r.Name] = true
	}
	return nil
}

// Recipe returns the definition with the given name.
func (c *Config) Recipe(name string) (model.RecipeDef, bool) {
	for _, r := range c.Recipes {
		if r.Name == name {
			return r, true
		}
	}
	return model.RecipeDef{}, false
}

// DateKey returns the date key a run at now should evaluate.
func (c *Config) DateKey(now time.Time) string {
	if c.Schedule.DateMode == DateModeMonthEnd {
		firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return firstOfMonth.AddDate(0, 0, -1).Format(c.Schedule.DateLayout)
	}
	return now.Format(c.Schedule.DateLayout)
}
