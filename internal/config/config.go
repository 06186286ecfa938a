package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type CommonHTTP struct {
	Timeout   time.Duration `yaml:"timeout"` // whole-request timeout, default 30s
	UserAgent string        `yaml:"user_agent"`
}

type SourceConfig struct {
	Type           string     `yaml:"type"`            // nobel | publicapis | custom
	URL            string     `yaml:"url"`             // overrides the preset URL
	Collection     string     `yaml:"collection"`      // e.g. nobelPrizes
	CategoryPath   string     `yaml:"category_path"`   // e.g. category.en
	RequiredFields []string   `yaml:"required_fields"` // must be present and non-empty
	CaseSensitive  bool       `yaml:"case_sensitive"`  // exact-case category match
	HTTP           CommonHTTP `yaml:"http"`
}

type OutputConfig struct {
	Path           string `yaml:"path"`
	IncludeMetrics *bool  `yaml:"include_metrics"` // default true
}

type PushgatewayConfig struct {
	URL       string        `yaml:"url"` // http://pushgateway:9091
	Job       string        `yaml:"job"` // default: daily_data_fetcher
	Namespace string        `yaml:"namespace"`
	Timeout   time.Duration `yaml:"timeout"`
}

type VictoriaConfig struct {
	URL       string        `yaml:"url"`     // http://victoria-metrics:8428
	Timeout   time.Duration `yaml:"timeout"` // request timeout
	UserAgent string        `yaml:"user_agent"`
}

type LokiConfig struct {
	URL       string        `yaml:"url"`       // http://loki:3100
	TenantID  string        `yaml:"tenant_id"` // optional multi-tenancy
	Job       string        `yaml:"job"`       // label value, default: daily-data-fetcher
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
}

type ArchiveConfig struct {
	Bucket   string `yaml:"bucket"` // empty disables the S3 archive
	Prefix   string `yaml:"prefix"` // default: reports
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"` // optional, e.g. http://localstack:4566
}

type Config struct {
	Source   SourceConfig      `yaml:"source"`
	Category string            `yaml:"category"`
	Output   OutputConfig      `yaml:"output"`
	Push     PushgatewayConfig `yaml:"pushgateway"`
	Victoria VictoriaConfig    `yaml:"victoria"`
	Loki     LokiConfig        `yaml:"loki"`
	Archive  ArchiveConfig     `yaml:"archive"`
}

// Overrides carry command-line values; empty fields leave the config alone.
type Overrides struct {
	SourceType  string
	Category    string
	OutputPath  string
	Pushgateway string
}

const (
	DefaultCategory   = "Chemistry"
	DefaultOutputPath = "/app/output/nobelPrizes.json"
	DefaultSourceType = "nobel"
)

// Load reads the YAML file at path (optional when empty), applies the
// environment, then the overrides, then fills defaults and validates.
func Load(path string, o Overrides) (*Config, error) {
	var c Config
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	}
	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	c.apply(o)
	c.setDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyEnv() error {
	setStr := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	setStr(&c.Source.Type, "SOURCE_TYPE")
	setStr(&c.Source.URL, "SOURCE_URL")
	setStr(&c.Category, "CATEGORY")
	setStr(&c.Output.Path, "OUTPUT_FILE")
	setStr(&c.Push.URL, "PUSHGATEWAY_URL")
	setStr(&c.Victoria.URL, "VICTORIA_URL")
	setStr(&c.Loki.URL, "LOKI_URL")
	setStr(&c.Archive.Bucket, "ARCHIVE_BUCKET")
	setStr(&c.Archive.Region, "AWS_REGION")

	if v := strings.TrimSpace(os.Getenv("REQUIRED_FIELDS")); v != "" {
		c.Source.RequiredFields = splitList(v)
	}
	if v := strings.TrimSpace(os.Getenv("CASE_SENSITIVE")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("CASE_SENSITIVE: %w", err)
		}
		c.Source.CaseSensitive = b
	}
	if v := strings.TrimSpace(os.Getenv("FETCH_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("FETCH_TIMEOUT: %w", err)
		}
		c.Source.HTTP.Timeout = d
	}
	return nil
}

func (c *Config) apply(o Overrides) {
	if o.SourceType != "" {
		c.Source.Type = o.SourceType
	}
	if o.Category != "" {
		c.Category = o.Category
	}
	if o.OutputPath != "" {
		c.Output.Path = o.OutputPath
	}
	if o.Pushgateway != "" {
		c.Push.URL = o.Pushgateway
	}
}

func (c *Config) setDefaults() {
	if c.Source.Type == "" {
		c.Source.Type = DefaultSourceType
	}
	c.Source.Type = strings.ToLower(c.Source.Type)
	if c.Source.HTTP.Timeout == 0 {
		c.Source.HTTP.Timeout = 30 * time.Second
	}
	if c.Category == "" {
		c.Category = DefaultCategory
	}
	if c.Output.Path == "" {
		c.Output.Path = DefaultOutputPath
	}
	if c.Output.IncludeMetrics == nil {
		t := true
		c.Output.IncludeMetrics = &t
	}
	if c.Push.Job == "" {
		c.Push.Job = "daily_data_fetcher"
	}
	if c.Push.Namespace == "" {
		c.Push.Namespace = "data_fetcher"
	}
	if c.Push.Timeout == 0 {
		c.Push.Timeout = 10 * time.Second
	}
	if c.Victoria.Timeout == 0 {
		c.Victoria.Timeout = 10 * time.Second
	}
	if c.Loki.Job == "" {
		c.Loki.Job = "daily-data-fetcher"
	}
	if c.Loki.Timeout == 0 {
		c.Loki.Timeout = 10 * time.Second
	}
	if c.Archive.Prefix == "" {
		c.Archive.Prefix = "reports"
	}
}

// Validate checks what the presets cannot fill in later.
func (c *Config) Validate() error {
	switch c.Source.Type {
	case "nobel", "publicapis":
	case "custom":
		if c.Source.URL == "" {
			return errors.New("source.url is required for custom sources")
		}
		if c.Source.Collection == "" {
			return errors.New("source.collection is required for custom sources")
		}
		if c.Source.CategoryPath == "" {
			return errors.New("source.category_path is required for custom sources")
		}
		if len(c.Source.RequiredFields) == 0 {
			return errors.New("source.required_fields is required for custom sources")
		}
	default:
		return fmt.Errorf("unknown source type: %s", c.Source.Type)
	}
	if strings.TrimSpace(c.Category) == "" {
		return errors.New("category must not be blank")
	}
	if c.Source.HTTP.Timeout < 0 {
		return errors.New("source.http.timeout must not be negative")
	}
	return nil
}

// MetricsEnabled reports whether the report embeds the counts block.
func (c *Config) MetricsEnabled() bool {
	return c.Output.IncludeMetrics == nil || *c.Output.IncludeMetrics
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
