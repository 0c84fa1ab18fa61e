package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/spreads/risk"
)

// Config represents the complete application configuration
type Config struct {
	Account AccountConfig `json:"account" yaml:"account"`
	Risk    RiskConfig    `json:"risk" yaml:"risk"`
	Trading TradingConfig `json:"trading" yaml:"trading"`
	Market  MarketConfig  `json:"market" yaml:"market"`
	Storage StorageConfig `json:"storage" yaml:"storage"`
	Journal JournalConfig `json:"journal" yaml:"journal"`
	Sync    SyncConfig    `json:"sync" yaml:"sync"`
	Server  ServerConfig  `json:"server" yaml:"server"`
	Log     LogConfig     `json:"log" yaml:"log"`
	Report  ReportConfig  `json:"report" yaml:"report"`
}

// AccountConfig seeds a new account
type AccountConfig struct {
	StartingBalance float64 `json:"starting_balance" yaml:"starting_balance"`
	Currency        string  `json:"currency" yaml:"currency"`
}

// RiskConfig is the per-trade cap and the risk level thresholds
type RiskConfig struct {
	MaxRiskPercent    float64 `json:"max_risk_percent" yaml:"max_risk_percent"`
	LowRiskPercent    float64 `json:"low_risk_percent" yaml:"low_risk_percent"`
	MediumRiskPercent float64 `json:"medium_risk_percent" yaml:"medium_risk_percent"`
}

type TradingConfig struct {
	DefaultDTE int `json:"default_dte" yaml:"default_dte"`
	MinDTE     int `json:"min_dte" yaml:"min_dte"`
	MaxDTE     int `json:"max_dte" yaml:"max_dte"`
}

// MarketConfig configures the market data provider
type MarketConfig struct {
	BaseURL           string        `json:"base_url" yaml:"base_url"`
	APIKeyEnv         string        `json:"api_key_env" yaml:"api_key_env"`
	RequestsPerMinute int           `json:"requests_per_minute" yaml:"requests_per_minute"`
	QuoteTTL          time.Duration `json:"quote_ttl" yaml:"quote_ttl"`
	CalendarTTL       time.Duration `json:"calendar_ttl" yaml:"calendar_ttl"`
	Timeout           time.Duration `json:"timeout" yaml:"timeout"`
}

type StorageConfig struct {
	DBPath string `json:"db_path" yaml:"db_path"`
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type        string `json:"type" yaml:"type"` // "csv", "sqlite" or "none"
	TradesFile  string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	BalanceFile string `json:"balance_file,omitempty" yaml:"balance_file,omitempty"`
	DBPath      string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// SyncConfig names the environment variables holding the Google OAuth client
type SyncConfig struct {
	ClientIDEnv     string `json:"client_id_env" yaml:"client_id_env"`
	ClientSecretEnv string `json:"client_secret_env" yaml:"client_secret_env"`
	RedirectURL     string `json:"redirect_url" yaml:"redirect_url"`
}

type ServerConfig struct {
	Addr              string  `json:"addr" yaml:"addr"`
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`
	Burst             int     `json:"burst" yaml:"burst"`
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"` // "json" or "console"
}

type ReportConfig struct {
	Style string `json:"style" yaml:"style"`
	Width int    `json:"width" yaml:"width"`
}

var ErrMissingCredentials = errors.New("google oauth client credentials are not set")

// LoadFromFile loads configuration from a file (JSON or YAML). Fields the
// file leaves out keep their defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		cfg = Default()
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Load returns the defaults when path is empty, otherwise LoadFromFile.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	return LoadFromFile(path)
}

// SaveToFile saves configuration to a file (YAML for .yaml/.yml, else JSON)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Account.Currency == "" {
		return fmt.Errorf("account.currency is required")
	}
	if c.Account.StartingBalance <= 0 {
		return fmt.Errorf("account.starting_balance must be positive")
	}
	if c.Risk.MaxRiskPercent <= 0 || c.Risk.MaxRiskPercent > 1 {
		return fmt.Errorf("risk.max_risk_percent must be between 0 and 1")
	}
	if c.Risk.LowRiskPercent <= 0 || c.Risk.MediumRiskPercent <= c.Risk.LowRiskPercent {
		return fmt.Errorf("risk.low_risk_percent must be positive and below risk.medium_risk_percent")
	}
	if c.Trading.MinDTE < 1 || c.Trading.MaxDTE > 365 || c.Trading.MinDTE > c.Trading.MaxDTE {
		return fmt.Errorf("trading.min_dte and trading.max_dte must satisfy 1 <= min <= max <= 365")
	}
	if c.Trading.DefaultDTE < c.Trading.MinDTE || c.Trading.DefaultDTE > c.Trading.MaxDTE {
		return fmt.Errorf("trading.default_dte must be between trading.min_dte and trading.max_dte")
	}
	if c.Market.BaseURL == "" {
		return fmt.Errorf("market.base_url is required")
	}
	if c.Market.RequestsPerMinute <= 0 {
		return fmt.Errorf("market.requests_per_minute must be positive")
	}
	if c.Market.QuoteTTL < 0 || c.Market.CalendarTTL < 0 || c.Market.Timeout <= 0 {
		return fmt.Errorf("market.quote_ttl and market.calendar_ttl must not be negative and market.timeout must be positive")
	}
	if c.Storage.DBPath == "" {
		return fmt.Errorf("storage.db_path is required")
	}
	switch c.Journal.Type {
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.BalanceFile == "" {
			return fmt.Errorf("journal trades_file and balance_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	case "none":
	default:
		return fmt.Errorf("journal.type must be 'csv', 'sqlite' or 'none'")
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Server.RequestsPerSecond <= 0 || c.Server.Burst <= 0 {
		return fmt.Errorf("server.requests_per_second and server.burst must be positive")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error")
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		return fmt.Errorf("log.format must be 'json' or 'console'")
	}
	return nil
}

// Policy is the risk policy the account enforces.
func (c *Config) Policy() risk.Policy {
	return risk.Policy{
		MaxRiskPct: c.Risk.MaxRiskPercent,
		LowPct:     c.Risk.LowRiskPercent,
		MediumPct:  c.Risk.MediumRiskPercent,
	}
}

// APIKey returns the market data key from the environment, or "".
func (c *Config) APIKey() string {
	return strings.TrimSpace(os.Getenv(c.Market.APIKeyEnv))
}

// OAuthCredentials returns the Google client id and secret from the
// environment.
func (c *Config) OAuthCredentials() (clientID, clientSecret string, err error) {
	clientID = strings.TrimSpace(os.Getenv(c.Sync.ClientIDEnv))
	clientSecret = strings.TrimSpace(os.Getenv(c.Sync.ClientSecretEnv))
	if clientID == "" || clientSecret == "" {
		return "", "", fmt.Errorf("%w: set %s and %s", ErrMissingCredentials, c.Sync.ClientIDEnv, c.Sync.ClientSecretEnv)
	}
	return clientID, clientSecret, nil
}

// LoadEnv loads .env style files into the environment without overriding
// variables that are already set. Missing files are skipped.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load env file %s: %w", p, err)
		}
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			StartingBalance: 3000,
			Currency:        "USD",
		},
		Risk: RiskConfig{
			MaxRiskPercent:    0.15,
			LowRiskPercent:    10,
			MediumRiskPercent: 25,
		},
		Trading: TradingConfig{
			DefaultDTE: 30,
			MinDTE:     7,
			MaxDTE:     60,
		},
		Market: MarketConfig{
			BaseURL:           "https://finnhub.io/api/v1",
			APIKeyEnv:         "FINNHUB_API_KEY",
			RequestsPerMinute: 50,
			QuoteTTL:          5 * time.Minute,
			CalendarTTL:       time.Hour,
			Timeout:           30 * time.Second,
		},
		Storage: StorageConfig{
			DBPath: "./spreads.sqlite",
		},
		Journal: JournalConfig{
			Type:        "csv",
			TradesFile:  "./trades.csv",
			BalanceFile: "./balance.csv",
		},
		Sync: SyncConfig{
			ClientIDEnv:     "GOOGLE_CLIENT_ID",
			ClientSecretEnv: "GOOGLE_CLIENT_SECRET",
			RedirectURL:     "http://127.0.0.1:8085/oauth/callback",
		},
		Server: ServerConfig{
			Addr:              ":8080",
			RequestsPerSecond: 10,
			Burst:             20,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Report: ReportConfig{
			Style: "notty",
			Width: 100,
		},
	}
}
