// Package config loads the finasync configuration: a YAML file, then
// environment variables, then command line flags, each layer overriding the
// previous one.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the configuration file looked up when none is given.
const DefaultFile = "finasync.yaml"

// Modes of stage execution.
const (
	ModeRules = "rules"
	ModeLLM   = "llm"
)

// Store backends.
const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

type Config struct {
	// Mode selects rule based stages or Gemini driven ones.
	Mode      string  `yaml:"mode"`
	Model     string  `yaml:"model"`
	Income    float64 `yaml:"income"`
	OutputDir string  `yaml:"output-dir"`
	Store     Store   `yaml:"store"`
	Ingest    Ingest  `yaml:"ingest"`
	EODHD     EODHD   `yaml:"eodhd"`
	Upload    Upload  `yaml:"upload"`
}

// Store configures the finding store.
type Store struct {
	Backend string `yaml:"backend"`
	// Path is the JSON file of the file backend.
	Path string `yaml:"path"`
	// DSN is the database of the sqlite and postgres backends.
	DSN string `yaml:"dsn"`
	// App, User and Session scope the findings of session backends.
	App     string `yaml:"app"`
	User    string `yaml:"user"`
	Session string `yaml:"session"`
}

type Ingest struct {
	PDFMaxChars int `yaml:"pdf-max-chars"`
}

type EODHD struct {
	APIKey  string `yaml:"api-key"`
	BaseURL string `yaml:"base-url"`
}

// Upload configures the optional remote upload. An empty URL disables it.
type Upload struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Mode:      ModeRules,
		Model:     "gemini-2.5-flash-lite",
		Income:    5000,
		OutputDir: ".",
		Store: Store{
			Backend: BackendFile,
			Path:    "monthly_cache.json",
			DSN:     "fina_sync.db",
			App:     "FinaSyncApp",
			User:    "user_default",
			Session: "monthly_finance_session",
		},
		Ingest: Ingest{PDFMaxChars: 10000},
		EODHD: EODHD{
			APIKey:  "demo",
			BaseURL: "https://eodhd.com/api",
		},
	}
}

// Load reads the configuration file at path on top of the defaults. A missing
// file is not an error when path is DefaultFile.
func Load(path string) (*Config, error) {
	c := Default()
	if path == "" {
		path = DefaultFile
	}
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && path == DefaultFile {
			return c, nil
		}
		return nil, fmt.Errorf("error loading configuration file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(content, c); err != nil {
		return nil, fmt.Errorf("error parsing configuration file %s: %w", path, err)
	}
	return c, c.Validate()
}

// Environment variables read by ApplyEnv.
const (
	EnvMode        = "FINASYNC_MODE"
	EnvModel       = "FINASYNC_MODEL"
	EnvIncome      = "FINASYNC_INCOME"
	EnvOutputDir   = "FINASYNC_OUTPUT_DIR"
	EnvStore       = "FINASYNC_STORE"
	EnvStorePath   = "FINASYNC_STORE_PATH"
	EnvStoreDSN    = "FINASYNC_STORE_DSN"
	EnvSession     = "FINASYNC_SESSION"
	EnvEODHDAPIKey = "EODHD_API_KEY"
	EnvUploadURL   = "FINASYNC_UPLOAD_URL"
	EnvUploadToken = "FINASYNC_UPLOAD_TOKEN"
)

// ApplyEnv overrides c with the environment variables that are set. getenv is
// usually os.Getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	set := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	set(&c.Mode, EnvMode)
	set(&c.Model, EnvModel)
	set(&c.OutputDir, EnvOutputDir)
	set(&c.Store.Backend, EnvStore)
	set(&c.Store.Path, EnvStorePath)
	set(&c.Store.DSN, EnvStoreDSN)
	set(&c.Store.Session, EnvSession)
	set(&c.EODHD.APIKey, EnvEODHDAPIKey)
	set(&c.Upload.URL, EnvUploadURL)
	set(&c.Upload.Token, EnvUploadToken)
	if v := getenv(EnvIncome); v != "" {
		income, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvIncome, v, err)
		}
		c.Income = income
	}
	return c.Validate()
}

// Validate checks enumerated values.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeRules, ModeLLM:
	default:
		return fmt.Errorf("unknown mode %q, expected %q or %q", c.Mode, ModeRules, ModeLLM)
	}
	switch c.Store.Backend {
	case BackendFile, BackendMemory, BackendSQLite, BackendPostgres:
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.Ingest.PDFMaxChars <= 0 {
		return fmt.Errorf("pdf-max-chars must be positive, got %d", c.Ingest.PDFMaxChars)
	}
	return nil
}

// IncomeDecimal returns the monthly income savings are computed from.
func (c *Config) IncomeDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.Income)
}
