package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	configPathEnv         = "NEWS_SCANNER_CONFIG"
	ledgerPathEnv         = "NEWS_SCANNER_LEDGER"
	classifierEndpointEnv = "CLASSIFIER_ENDPOINT"
	classifierModelEnv    = "CLASSIFIER_MODEL"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging    LoggingConfig    `yaml:"logging"`
	Ledger     LedgerConfig     `yaml:"ledger"`
	Downloader DownloaderConfig `yaml:"downloader"`
	Extractor  ExtractorConfig  `yaml:"extractor"`
	Cleaner    CleanerConfig    `yaml:"cleaner"`
	Ingest     IngestConfig     `yaml:"ingest"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Processing ProcessingConfig `yaml:"processing"`
	Feeds      []FeedConfig     `yaml:"feeds"`
}

// LoggingConfig selects the console log level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// LedgerConfig locates the master CSV.
type LedgerConfig struct {
	Path string `yaml:"path"`
}

// DownloaderConfig tunes HTTP fetching, retries and per-host politeness.
type DownloaderConfig struct {
	TimeoutSeconds int     `yaml:"timeoutSeconds"`
	MaxAttempts    int     `yaml:"maxAttempts"`
	BackoffSeconds float64 `yaml:"backoffSeconds"`
	BackoffCap     float64 `yaml:"backoffCapSeconds"`
	HostDelay      float64 `yaml:"hostDelaySeconds"`
	UserAgent      string  `yaml:"userAgent"`
}

// Timeout resolves the request timeout as a duration.
func (d DownloaderConfig) Timeout() time.Duration {
	if d.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(d.TimeoutSeconds) * time.Second
}

// ExtractorConfig tunes the strategy chain acceptance rule.
type ExtractorConfig struct {
	MinTextLength   int                 `yaml:"minTextLength"`
	DomainSelectors map[string][]string `yaml:"domainSelectors"`
}

// CleanerConfig tunes the deterministic text normalization pass.
type CleanerConfig struct {
	RemovePatterns     []string `yaml:"removePatterns"`
	MaxConsecutiveGaps int      `yaml:"maxConsecutiveNewlines"`
}

// IngestConfig tunes feed parsing and filtering.
type IngestConfig struct {
	RetentionDays int      `yaml:"retentionDays"`
	Keywords      []string `yaml:"keywords"`
}

// ClassifierConfig defines how to contact the classification service.
type ClassifierConfig struct {
	Endpoint               string   `yaml:"endpoint"`
	Model                  string   `yaml:"model"`
	CredentialVars         []string `yaml:"credentialVars"`
	TimeoutSeconds         int      `yaml:"timeoutSeconds"`
	DefaultCooldownSeconds int      `yaml:"defaultCooldownSeconds"`
	SaveEvery              int      `yaml:"saveEvery"`
}

// Timeout resolves the classification call timeout as a duration.
func (c ClassifierConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ProcessingConfig bounds the worker pools.
type ProcessingConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// FeedConfig describes a single outlet with its feed URIs.
type FeedConfig struct {
	Name     string   `yaml:"name"`
	URLs     []string `yaml:"urls"`
	Origin   string   `yaml:"origin"`
	Language string   `yaml:"language"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
// A .env file alongside the process is honored for credential variables.
func Load() Config {
	_ = godotenv.Load()

	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

// LoadFile reads a specific YAML file, merged over defaults.
func LoadFile(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := defaultConfig()

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	var fileCfg Config
	if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
		return cfg, err
	}

	cfg = mergeConfig(cfg, fileCfg)
	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(ledgerPathEnv); v != "" {
		c.Ledger.Path = v
	}

	if v := os.Getenv(classifierEndpointEnv); v != "" {
		c.Classifier.Endpoint = v
	}

	if v := os.Getenv(classifierModelEnv); v != "" {
		c.Classifier.Model = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}

	if override.Ledger.Path != "" {
		base.Ledger = override.Ledger
	}

	if override.Downloader.TimeoutSeconds > 0 {
		base.Downloader.TimeoutSeconds = override.Downloader.TimeoutSeconds
	}
	if override.Downloader.MaxAttempts > 0 {
		base.Downloader.MaxAttempts = override.Downloader.MaxAttempts
	}
	if override.Downloader.BackoffSeconds > 0 {
		base.Downloader.BackoffSeconds = override.Downloader.BackoffSeconds
	}
	if override.Downloader.BackoffCap > 0 {
		base.Downloader.BackoffCap = override.Downloader.BackoffCap
	}
	if override.Downloader.HostDelay > 0 {
		base.Downloader.HostDelay = override.Downloader.HostDelay
	}
	if override.Downloader.UserAgent != "" {
		base.Downloader.UserAgent = override.Downloader.UserAgent
	}

	if override.Extractor.MinTextLength > 0 {
		base.Extractor.MinTextLength = override.Extractor.MinTextLength
	}
	if len(override.Extractor.DomainSelectors) > 0 {
		base.Extractor.DomainSelectors = override.Extractor.DomainSelectors
	}

	if len(override.Cleaner.RemovePatterns) > 0 {
		base.Cleaner.RemovePatterns = override.Cleaner.RemovePatterns
	}
	if override.Cleaner.MaxConsecutiveGaps > 0 {
		base.Cleaner.MaxConsecutiveGaps = override.Cleaner.MaxConsecutiveGaps
	}

	if override.Ingest.RetentionDays != 0 {
		base.Ingest.RetentionDays = override.Ingest.RetentionDays
	}
	if len(override.Ingest.Keywords) > 0 {
		base.Ingest.Keywords = override.Ingest.Keywords
	}

	if override.Classifier.Endpoint != "" {
		base.Classifier.Endpoint = override.Classifier.Endpoint
	}
	if override.Classifier.Model != "" {
		base.Classifier.Model = override.Classifier.Model
	}
	if len(override.Classifier.CredentialVars) > 0 {
		base.Classifier.CredentialVars = override.Classifier.CredentialVars
	}
	if override.Classifier.TimeoutSeconds > 0 {
		base.Classifier.TimeoutSeconds = override.Classifier.TimeoutSeconds
	}
	if override.Classifier.DefaultCooldownSeconds > 0 {
		base.Classifier.DefaultCooldownSeconds = override.Classifier.DefaultCooldownSeconds
	}
	if override.Classifier.SaveEvery > 0 {
		base.Classifier.SaveEvery = override.Classifier.SaveEvery
	}

	if override.Processing.Concurrency > 0 {
		base.Processing = override.Processing
	}

	if len(override.Feeds) > 0 {
		base.Feeds = override.Feeds
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Ledger:  LedgerConfig{Path: "data/articles.csv"},
		Downloader: DownloaderConfig{
			TimeoutSeconds: 15,
			MaxAttempts:    3,
			BackoffSeconds: 2,
			BackoffCap:     10,
			HostDelay:      1,
			UserAgent:      "Mozilla/5.0 (compatible; NewsScanner/1.0; +http://localhost)",
		},
		Extractor: ExtractorConfig{MinTextLength: 200},
		Cleaner:   CleanerConfig{MaxConsecutiveGaps: 2},
		Ingest:    IngestConfig{RetentionDays: 14},
		Classifier: ClassifierConfig{
			Endpoint:               "https://api.groq.com/openai/v1/chat/completions",
			Model:                  "llama-3.3-70b-versatile",
			CredentialVars:         []string{"CLASSIFIER_API_KEY", "CLASSIFIER_API_KEY_2", "CLASSIFIER_API_KEY_3", "CLASSIFIER_API_KEY_4"},
			TimeoutSeconds:         30,
			DefaultCooldownSeconds: 60,
			SaveEvery:              10,
		},
		Processing: ProcessingConfig{Concurrency: 5},
	}
}
