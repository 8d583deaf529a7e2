package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/dyike/GammaPulse/internal/models"
)

// Analysis providers.
const (
	ProviderOpenRouter = "openrouter"
	ProviderDeepSeek   = "deepseek"
)

// Market data providers.
const (
	MarketDataFMP   = "fmp"
	MarketDataYahoo = "yahoo"
)

// Config carries everything one pipeline run needs. The credential
// fields are mandatory; everything else falls back to a default.
type Config struct {
	// Credentials.
	IndicatorTokenSecret string `json:"-"`
	FMPAPIKey            string `json:"-"`
	OpenRouterAPIKey     string `json:"-"`
	TelegramBotToken     string `json:"-"`
	TelegramChatID       string `json:"telegram_chat_id"`
	DeepSeekAPIKey       string `json:"-"`

	// Pipeline options.
	Symbol             string `json:"symbol"`
	HistoryDays        int    `json:"history_days"`
	AnalysisProvider   string `json:"analysis_provider"`
	AnalysisModel      string `json:"analysis_model"`
	MarketDataProvider string `json:"market_data_provider"`

	// Per-call budgets.
	IndicatorTimeout  time.Duration `json:"indicator_timeout"`
	MarketDataTimeout time.Duration `json:"market_data_timeout"`
	AnalysisTimeout   time.Duration `json:"analysis_timeout"`
	NotifyTimeout     time.Duration `json:"notify_timeout"`

	// Observability.
	LogFile   string `json:"log_file"`
	LogLevel  string `json:"log_level"`
	EinoDebug bool   `json:"eino_debug"`

	// envProblems records optional env overrides that failed to parse.
	// The defaults stay in place; Validate reports the problems.
	envProblems []string
}

func DefaultConfig() *Config {
	return &Config{
		Symbol:             "SPX",
		HistoryDays:        30,
		AnalysisProvider:   ProviderOpenRouter,
		AnalysisModel:      "", // empty means the provider default
		MarketDataProvider: MarketDataFMP,

		IndicatorTimeout:  30 * time.Second,
		MarketDataTimeout: 30 * time.Second,
		AnalysisTimeout:   60 * time.Second,
		NotifyTimeout:     10 * time.Second,

		LogFile:  "gammapulse.log",
		LogLevel: "info",
	}
}

// Load reads .env when present, overlays process environment variables
// on the defaults, and validates the result. It runs before anything
// touches the network.
func Load() (*Config, error) {
	cfg := LoadUnchecked()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadUnchecked loads like Load but skips validation, for surfaces that
// inspect a possibly incomplete environment.
func LoadUnchecked() *Config {
	_ = godotenv.Load()

	cfg := DefaultConfig()
	cfg.loadFromEnv()
	return cfg
}

func (c *Config) loadFromEnv() {
	c.IndicatorTokenSecret = strings.TrimSpace(os.Getenv("SPOTGAMMA_TOKEN_SECRET"))
	c.FMPAPIKey = strings.TrimSpace(os.Getenv("FMP_API_KEY"))
	c.OpenRouterAPIKey = strings.TrimSpace(os.Getenv("OPENROUTER_API_KEY"))
	c.TelegramBotToken = strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN"))
	c.TelegramChatID = strings.TrimSpace(os.Getenv("TELEGRAM_CHAT_ID"))
	c.DeepSeekAPIKey = strings.TrimSpace(os.Getenv("DEEPSEEK_API_KEY"))

	if val := os.Getenv("GAMMAPULSE_SYMBOL"); val != "" {
		c.Symbol = strings.ToUpper(strings.TrimSpace(val))
	}
	if val := os.Getenv("GAMMAPULSE_HISTORY_DAYS"); val != "" {
		if days, err := strconv.Atoi(val); err == nil {
			c.HistoryDays = days
		} else {
			c.envProblems = append(c.envProblems,
				fmt.Sprintf("GAMMAPULSE_HISTORY_DAYS: %q is not an integer", val))
		}
	}
	if val := os.Getenv("ANALYSIS_PROVIDER"); val != "" {
		c.AnalysisProvider = strings.ToLower(strings.TrimSpace(val))
	}
	if val := os.Getenv("ANALYSIS_MODEL"); val != "" {
		c.AnalysisModel = strings.TrimSpace(val)
	}
	if val := os.Getenv("MARKET_DATA_PROVIDER"); val != "" {
		c.MarketDataProvider = strings.ToLower(strings.TrimSpace(val))
	}

	timeouts := []struct {
		key    string
		target *time.Duration
	}{
		{"INDICATOR_TIMEOUT", &c.IndicatorTimeout},
		{"MARKET_DATA_TIMEOUT", &c.MarketDataTimeout},
		{"ANALYSIS_TIMEOUT", &c.AnalysisTimeout},
		{"NOTIFY_TIMEOUT", &c.NotifyTimeout},
	}
	for _, to := range timeouts {
		val := os.Getenv(to.key)
		if val == "" {
			continue
		}
		if d, err := time.ParseDuration(val); err == nil {
			*to.target = d
		} else {
			c.envProblems = append(c.envProblems,
				fmt.Sprintf("%s: %q is not a duration", to.key, val))
		}
	}

	if val := os.Getenv("LOG_FILE"); val != "" {
		c.LogFile = val
	}
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.LogLevel = strings.ToLower(strings.TrimSpace(val))
	}
	if val := os.Getenv("EINO_DEBUG"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.EinoDebug = enabled
		} else {
			c.envProblems = append(c.envProblems,
				fmt.Sprintf("EINO_DEBUG: %q is not a boolean", val))
		}
	}
}

// Validate checks the credential set up front and reports every missing
// key in one error, so a broken environment is fixed in a single round.
// Optional overrides that did not parse fail here too.
func (c *Config) Validate() error {
	required := map[string]string{
		"SPOTGAMMA_TOKEN_SECRET": c.IndicatorTokenSecret,
		"FMP_API_KEY":            c.FMPAPIKey,
		"OPENROUTER_API_KEY":     c.OpenRouterAPIKey,
		"TELEGRAM_BOT_TOKEN":     c.TelegramBotToken,
		"TELEGRAM_CHAT_ID":       c.TelegramChatID,
	}
	if c.AnalysisProvider == ProviderDeepSeek {
		required["DEEPSEEK_API_KEY"] = c.DeepSeekAPIKey
	}

	var missing []string
	for key, val := range required {
		if strings.TrimSpace(val) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return &models.ConfigError{Missing: missing}
	}

	if len(c.envProblems) > 0 {
		return fmt.Errorf("invalid configuration overrides: %s", strings.Join(c.envProblems, "; "))
	}

	switch c.AnalysisProvider {
	case ProviderOpenRouter, ProviderDeepSeek:
	default:
		return fmt.Errorf("unknown analysis provider %q", c.AnalysisProvider)
	}
	switch c.MarketDataProvider {
	case MarketDataFMP, MarketDataYahoo:
	default:
		return fmt.Errorf("unknown market data provider %q", c.MarketDataProvider)
	}
	if c.HistoryDays <= 0 {
		return fmt.Errorf("history days must be positive, got %d", c.HistoryDays)
	}

	return nil
}

// Write persists the configuration as a .env file. Only set values are
// written, so defaults stay implicit.
func (c *Config) Write(path string) error {
	values := map[string]string{
		"SPOTGAMMA_TOKEN_SECRET": c.IndicatorTokenSecret,
		"FMP_API_KEY":            c.FMPAPIKey,
		"OPENROUTER_API_KEY":     c.OpenRouterAPIKey,
		"TELEGRAM_BOT_TOKEN":     c.TelegramBotToken,
		"TELEGRAM_CHAT_ID":       c.TelegramChatID,
	}
	if c.DeepSeekAPIKey != "" {
		values["DEEPSEEK_API_KEY"] = c.DeepSeekAPIKey
	}
	if c.Symbol != "" && c.Symbol != "SPX" {
		values["GAMMAPULSE_SYMBOL"] = c.Symbol
	}
	if c.AnalysisProvider != "" && c.AnalysisProvider != ProviderOpenRouter {
		values["ANALYSIS_PROVIDER"] = c.AnalysisProvider
	}
	if c.AnalysisModel != "" {
		values["ANALYSIS_MODEL"] = c.AnalysisModel
	}
	if c.MarketDataProvider != "" && c.MarketDataProvider != MarketDataFMP {
		values["MARKET_DATA_PROVIDER"] = c.MarketDataProvider
	}

	return godotenv.Write(values, path)
}
