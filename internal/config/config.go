package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv    = "NEWS_INGEST_CONFIG"
	databaseDSNEnv   = "DATABASE_DSN"
	rewriteAPIKeyEnv = "REWRITE_API_KEY"
	rewriteModelEnv  = "REWRITE_MODEL"
	serverPortEnv    = "PORT"
)

// Config holds high-level settings required across the application.
type Config struct {
	Storage Storage `yaml:"storage"`
	Rewrite Rewrite `yaml:"rewrite"`
	Sitemap Sitemap `yaml:"sitemap"`
	Sweeps  Sweeps  `yaml:"sweeps"`
	Server  Server  `yaml:"server"`
	Logging Logging `yaml:"logging"`
	Feeds   []Feed  `yaml:"feeds"`
}

// Storage selects the article store backend. A non-empty DSN switches the
// store from the JSON file to Postgres.
type Storage struct {
	FilePath string `yaml:"filePath"`
	DSN      string `yaml:"dsn"`
}

// Rewrite defines how to contact the external content-rewriting service.
type Rewrite struct {
	Endpoint         string  `yaml:"endpoint"`
	Model            string  `yaml:"model"`
	APIKey           string  `yaml:"apiKey"`
	Prompt           string  `yaml:"prompt"`
	MaxTokens        int     `yaml:"maxTokens"`
	Temperature      float64 `yaml:"temperature"`
	TopP             float64 `yaml:"topP"`
	MaxContentChars  int     `yaml:"maxContentChars"`
	MaxResponseBytes int64   `yaml:"maxResponseBytes"`
	BatchSize        int     `yaml:"batchSize"`
}

// Sitemap configures the exported sitemap documents and site-level SEO.
type Sitemap struct {
	SiteURL         string   `yaml:"siteUrl"`
	PublicationName string   `yaml:"publicationName"`
	Language        string   `yaml:"language"`
	OutputDir       string   `yaml:"outputDir"`
	MaxURLs         int      `yaml:"maxUrls"`
	Keywords        []string `yaml:"keywords"`
}

// Sweeps defines how often each periodic pass runs.
type Sweeps struct {
	IngestInterval  Duration `yaml:"ingestInterval"`
	RewriteInterval Duration `yaml:"rewriteInterval"`
	ExportInterval  Duration `yaml:"exportInterval"`
}

// Duration makes time.Duration usable in YAML ("30m", "24h").
type Duration time.Duration

// UnmarshalYAML parses the standard Go duration syntax.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Std converts back to time.Duration for ticker wiring.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Server configures the HTTP API.
type Server struct {
	Port        string   `yaml:"port"`
	CorsOrigins []string `yaml:"corsOrigins"`
}

// Logging controls the slog handler.
type Logging struct {
	Level string `yaml:"level"`
}

// Feed describes a single RSS source with its parser strategy.
type Feed struct {
	Name   string `yaml:"name"`
	URL    string `yaml:"url"`
	Parser string `yaml:"parser"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
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

	if len(cfg.Feeds) == 0 {
		cfg.Feeds = defaultConfig().Feeds
	}

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Storage.DSN = v
	}

	if v := os.Getenv(rewriteAPIKeyEnv); v != "" {
		c.Rewrite.APIKey = v
	}

	if v := os.Getenv(rewriteModelEnv); v != "" {
		c.Rewrite.Model = v
	}

	if v := os.Getenv(serverPortEnv); v != "" {
		c.Server.Port = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Storage.FilePath != "" {
		base.Storage.FilePath = override.Storage.FilePath
	}
	if override.Storage.DSN != "" {
		base.Storage.DSN = override.Storage.DSN
	}

	if override.Rewrite.Endpoint != "" {
		base.Rewrite.Endpoint = override.Rewrite.Endpoint
	}
	if override.Rewrite.Model != "" {
		base.Rewrite.Model = override.Rewrite.Model
	}
	if override.Rewrite.APIKey != "" {
		base.Rewrite.APIKey = override.Rewrite.APIKey
	}
	if override.Rewrite.Prompt != "" {
		base.Rewrite.Prompt = override.Rewrite.Prompt
	}
	if override.Rewrite.MaxTokens > 0 {
		base.Rewrite.MaxTokens = override.Rewrite.MaxTokens
	}
	if override.Rewrite.Temperature > 0 {
		base.Rewrite.Temperature = override.Rewrite.Temperature
	}
	if override.Rewrite.TopP > 0 {
		base.Rewrite.TopP = override.Rewrite.TopP
	}
	if override.Rewrite.MaxContentChars > 0 {
		base.Rewrite.MaxContentChars = override.Rewrite.MaxContentChars
	}
	if override.Rewrite.MaxResponseBytes > 0 {
		base.Rewrite.MaxResponseBytes = override.Rewrite.MaxResponseBytes
	}
	if override.Rewrite.BatchSize > 0 {
		base.Rewrite.BatchSize = override.Rewrite.BatchSize
	}

	if override.Sitemap.SiteURL != "" {
		base.Sitemap.SiteURL = override.Sitemap.SiteURL
	}
	if override.Sitemap.PublicationName != "" {
		base.Sitemap.PublicationName = override.Sitemap.PublicationName
	}
	if override.Sitemap.Language != "" {
		base.Sitemap.Language = override.Sitemap.Language
	}
	if override.Sitemap.OutputDir != "" {
		base.Sitemap.OutputDir = override.Sitemap.OutputDir
	}
	if override.Sitemap.MaxURLs > 0 {
		base.Sitemap.MaxURLs = override.Sitemap.MaxURLs
	}
	if len(override.Sitemap.Keywords) > 0 {
		base.Sitemap.Keywords = override.Sitemap.Keywords
	}

	if override.Sweeps.IngestInterval > 0 {
		base.Sweeps.IngestInterval = override.Sweeps.IngestInterval
	}
	if override.Sweeps.RewriteInterval > 0 {
		base.Sweeps.RewriteInterval = override.Sweeps.RewriteInterval
	}
	if override.Sweeps.ExportInterval > 0 {
		base.Sweeps.ExportInterval = override.Sweeps.ExportInterval
	}

	if override.Server.Port != "" {
		base.Server.Port = override.Server.Port
	}
	if len(override.Server.CorsOrigins) > 0 {
		base.Server.CorsOrigins = override.Server.CorsOrigins
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if len(override.Feeds) > 0 {
		base.Feeds = override.Feeds
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Storage: Storage{FilePath: "data/articles.json"},
		Rewrite: Rewrite{
			Endpoint:    "https://api.deepseek.com/v1",
			Model:       "deepseek-chat",
			Prompt:      defaultRewritePrompt,
			MaxTokens:   2000,
			Temperature: 0.7,
			TopP:        0.9,
			// The original article body is truncated before submission; the
			// service call dominates sweep latency and cost.
			MaxContentChars:  1000,
			MaxResponseBytes: 1 << 20,
			BatchSize:        50,
		},
		Sitemap: Sitemap{
			SiteURL:         "https://odishanews.example.com",
			PublicationName: "Odisha News",
			Language:        "en",
			OutputDir:       "public",
			MaxURLs:         50000,
			Keywords: []string{
				"Odisha", "Odisha News", "Western Odisha", "Sambalpur",
				"Jharsuguda", "Bhubaneswar", "Odisha Politics",
				"Odisha Economy", "Odisha Development", "Odisha Culture",
			},
		},
		Sweeps: Sweeps{
			IngestInterval:  Duration(30 * time.Minute),
			RewriteInterval: Duration(time.Hour),
			ExportInterval:  Duration(24 * time.Hour),
		},
		Server:  Server{Port: "8080", CorsOrigins: []string{"*"}},
		Logging: Logging{Level: "info"},
		Feeds: []Feed{
			{Name: "Odisha TV", URL: "https://odishatv.in/feed/", Parser: "rss"},
			{Name: "Odisha Bytes", URL: "https://odishabytes.com/feed/", Parser: "odishabytes"},
			{Name: "Dharitri", URL: "https://dharitri.com/feed/", Parser: "dharitri"},
			{Name: "Odisha News Online", URL: "https://odishanewsonline.com/feed/", Parser: "rss"},
			{Name: "The Hindu", URL: "https://www.thehindu.com/odisha/odisha-news/feed/", Parser: "rss"},
			{Name: "New Indian Express", URL: "https://www.newindianexpress.com/states/odisha/feed", Parser: "rss"},
		},
	}
}

const defaultRewritePrompt = `Rewrite this news article in a professional tone, focusing on Odisha-specific context. Include:
1. Detailed analysis of the situation in Odisha
2. Impact on local communities and economy
3. Government's response and initiatives
4. Historical context specific to Odisha
5. Future implications for the region`
