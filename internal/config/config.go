package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// DefaultArchiveURL is the Zenodo record holding the LamaH-CE daily/hourly bundle.
const DefaultArchiveURL = "https://zenodo.org/record/5153305/files/1_LamaH-CE_daily_hourly.tar.gz"

// Config holds all builder settings, populated from environment variables.
type Config struct {
	DataDir       string
	ArchiveURL    string
	OutletGaugeID int
	RefStartYear  int
	RefEndYear    int

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Kafka build-event notification configuration.
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string
}

// RawDir is where the downloaded archive sub-trees are extracted.
func (c *Config) RawDir() string { return filepath.Join(c.DataDir, "raw") }

// ProcessedDir is where the adjacency and statistics artifacts are persisted.
func (c *Config) ProcessedDir() string { return filepath.Join(c.DataDir, "processed") }

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	outletID, err := parseInt("OUTLET_GAUGE_ID", 399)
	if err != nil {
		return nil, err
	}

	refStart, err := parseInt("REF_START_YEAR", 2000)
	if err != nil {
		return nil, err
	}
	refEnd, err := parseInt("REF_END_YEAR", 2017)
	if err != nil {
		return nil, err
	}

	kafkaBrokers := parseBrokers(os.Getenv("KAFKA_BROKERS"))
	kafkaEnabled := len(kafkaBrokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		DataDir:       envOrDefault("DATA_DIR", "data"),
		ArchiveURL:    envOrDefault("ARCHIVE_URL", DefaultArchiveURL),
		OutletGaugeID: outletID,
		RefStartYear:  refStart,
		RefEndYear:    refEnd,

		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		KafkaEnabled: kafkaEnabled,
		KafkaBrokers: kafkaBrokers,
		KafkaTopic:   envOrDefault("KAFKA_TOPIC", "dataset-build-events"),
	}

	if cfg.ArchiveURL == "" {
		return nil, errors.New("ARCHIVE_URL is required")
	}
	if cfg.OutletGaugeID <= 0 {
		return nil, errors.New("OUTLET_GAUGE_ID must be positive")
	}
	if cfg.RefStartYear > cfg.RefEndYear {
		return nil, errors.New("REF_START_YEAR must not be after REF_END_YEAR")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return n, nil
}

func parseDuration(key, def string) (time.Duration, error) {
	s := envOrDefault(key, def)
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}

func parseBrokers(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}
