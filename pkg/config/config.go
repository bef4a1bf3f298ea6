// Package config loads and validates configuration for the crawler, indexer
// and querier from YAML files with environment-variable overrides. Positional
// command-line arguments are handled by each command and are never replaced
// by values from here.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration shared by all commands.
type Config struct {
	Crawler  CrawlerConfig  `yaml:"crawler"`
	Indexer  IndexerConfig  `yaml:"indexer"`
	Querier  QuerierConfig  `yaml:"querier"`
	Redis    RedisConfig    `yaml:"redis"`
	Postgres PostgresConfig `yaml:"postgres"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// CrawlerConfig controls fetch politeness and what counts as an internal URL.
type CrawlerConfig struct {
	PolitenessDelay time.Duration `yaml:"politenessDelay"`
	FetchTimeout    time.Duration `yaml:"fetchTimeout"`
	MaxDepthLimit   int           `yaml:"maxDepthLimit"`
	UserAgent       string        `yaml:"userAgent"`
	// InternalPrefix is the URL prefix a link must carry to be crawled.
	// Empty means the scheme and host of the seed URL.
	InternalPrefix string `yaml:"internalPrefix"`
	MaxBodyBytes   int64  `yaml:"maxBodyBytes"`
}

// IndexerConfig controls index construction.
type IndexerConfig struct {
	MinWordLength int `yaml:"minWordLength"`
	LoadWorkers   int `yaml:"loadWorkers"`
}

// QuerierConfig controls the interactive query loop.
type QuerierConfig struct {
	MaxTokens int    `yaml:"maxTokens"`
	Prompt    string `yaml:"prompt"`
}

// RedisConfig holds Redis connection and result-cache parameters.
type RedisConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	PoolSize int           `yaml:"poolSize"`
	CacheTTL time.Duration `yaml:"cacheTTL"`
}

// PostgresConfig holds PostgreSQL connection parameters for the crawl ledger.
type PostgresConfig struct {
	Enabled         bool          `yaml:"enabled"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// KafkaConfig holds Kafka broker, topic and batching settings for analytics.
type KafkaConfig struct {
	Enabled       bool          `yaml:"enabled"`
	Brokers       []string      `yaml:"brokers"`
	Topics        KafkaTopics   `yaml:"topics"`
	BatchSize     int           `yaml:"batchSize"`
	FlushInterval time.Duration `yaml:"flushInterval"`
}

// KafkaTopics maps logical topic names to their Kafka topic strings.
type KafkaTopics struct {
	CrawlEvents string `yaml:"crawlEvents"`
	QueryEvents string `yaml:"queryEvents"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. Missing values keep their defaults.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := defaultConfig()
	applyEnvOverrides(cfg)
	return cfg
}

func defaultConfig() *Config {
	return &Config{
		Crawler: CrawlerConfig{
			PolitenessDelay: time.Second,
			FetchTimeout:    10 * time.Second,
			MaxDepthLimit:   10,
			UserAgent:       "tse-crawler/1.0",
			InternalPrefix:  "http://cs50tse.cs.dartmouth.edu/",
			MaxBodyBytes:    10 << 20,
		},
		Indexer: IndexerConfig{
			MinWordLength: 3,
			LoadWorkers:   4,
		},
		Querier: QuerierConfig{
			MaxTokens: 100,
			Prompt:    "Query? ",
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			PoolSize: 4,
			CacheTTL: 5 * time.Minute,
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "tse",
			User:            "tse",
			Password:        "localdev",
			SSLMode:         "disable",
			MaxOpenConns:    4,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Kafka: KafkaConfig{
			Brokers: []string{"localhost:9092"},
			Topics: KafkaTopics{
				CrawlEvents: "tse.crawl-events",
				QueryEvents: "tse.query-events",
			},
			BatchSize:     100,
			FlushInterval: 5 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Port: 9090,
		},
	}
}

func (c *Config) validate() error {
	if c.Crawler.PolitenessDelay <= 0 {
		return fmt.Errorf("crawler.politenessDelay must be positive, got %v", c.Crawler.PolitenessDelay)
	}
	if c.Crawler.MaxDepthLimit < 0 {
		return fmt.Errorf("crawler.maxDepthLimit must not be negative, got %d", c.Crawler.MaxDepthLimit)
	}
	if c.Indexer.MinWordLength < 1 {
		return fmt.Errorf("indexer.minWordLength must be at least 1, got %d", c.Indexer.MinWordLength)
	}
	if c.Querier.MaxTokens < 1 {
		return fmt.Errorf("querier.maxTokens must be at least 1, got %d", c.Querier.MaxTokens)
	}
	return nil
}

// applyEnvOverrides reads TSE_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TSE_CRAWLER_POLITENESS_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Crawler.PolitenessDelay = d
		}
	}
	if v := os.Getenv("TSE_CRAWLER_FETCH_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Crawler.FetchTimeout = d
		}
	}
	if v, ok := os.LookupEnv("TSE_CRAWLER_INTERNAL_PREFIX"); ok {
		cfg.Crawler.InternalPrefix = v
	}
	if v := os.Getenv("TSE_CRAWLER_USER_AGENT"); v != "" {
		cfg.Crawler.UserAgent = v
	}
	if v := os.Getenv("TSE_REDIS_ENABLED"); v != "" {
		cfg.Redis.Enabled = parseBool(v, cfg.Redis.Enabled)
	}
	if v := os.Getenv("TSE_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("TSE_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("TSE_POSTGRES_ENABLED"); v != "" {
		cfg.Postgres.Enabled = parseBool(v, cfg.Postgres.Enabled)
	}
	if v := os.Getenv("TSE_POSTGRES_HOST"); v != "" {
		cfg.Postgres.Host = v
	}
	if v := os.Getenv("TSE_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.Port = port
		}
	}
	if v := os.Getenv("TSE_POSTGRES_DATABASE"); v != "" {
		cfg.Postgres.Database = v
	}
	if v := os.Getenv("TSE_POSTGRES_USER"); v != "" {
		cfg.Postgres.User = v
	}
	if v := os.Getenv("TSE_POSTGRES_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
	if v := os.Getenv("TSE_KAFKA_ENABLED"); v != "" {
		cfg.Kafka.Enabled = parseBool(v, cfg.Kafka.Enabled)
	}
	if v := os.Getenv("TSE_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("TSE_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("TSE_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("TSE_METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = parseBool(v, cfg.Metrics.Enabled)
	}
	if v := os.Getenv("TSE_METRICS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Metrics.Port = port
		}
	}
}

func parseBool(v string, fallback bool) bool {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
