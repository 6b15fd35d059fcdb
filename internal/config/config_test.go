package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, DefaultArchiveURL, cfg.ArchiveURL)
	assert.Equal(t, 399, cfg.OutletGaugeID)
	assert.Equal(t, 2000, cfg.RefStartYear)
	assert.Equal(t, 2017, cfg.RefEndYear)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.False(t, cfg.KafkaEnabled)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "dataset-build-events", cfg.KafkaTopic)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("DATA_DIR", "/var/lib/lamah")
	t.Setenv("ARCHIVE_URL", "https://example.com/lamah.tar.gz")
	t.Setenv("OUTLET_GAUGE_ID", "582")
	t.Setenv("REF_START_YEAR", "1990")
	t.Setenv("REF_END_YEAR", "2010")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092")
	t.Setenv("KAFKA_TOPIC", "builds")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/lamah", cfg.DataDir)
	assert.Equal(t, "https://example.com/lamah.tar.gz", cfg.ArchiveURL)
	assert.Equal(t, 582, cfg.OutletGaugeID)
	assert.Equal(t, 1990, cfg.RefStartYear)
	assert.Equal(t, 2010, cfg.RefEndYear)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "builds", cfg.KafkaTopic)
}

func TestLoad_DerivedDirs(t *testing.T) {
	t.Setenv("DATA_DIR", "/data/lamah")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("/data/lamah", "raw"), cfg.RawDir())
	assert.Equal(t, filepath.Join("/data/lamah", "processed"), cfg.ProcessedDir())
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_NegativeShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "-1s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidOutletGaugeID(t *testing.T) {
	t.Setenv("OUTLET_GAUGE_ID", "zero")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OUTLET_GAUGE_ID")
}

func TestLoad_NonPositiveOutletGaugeID(t *testing.T) {
	t.Setenv("OUTLET_GAUGE_ID", "-5")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OUTLET_GAUGE_ID")
}

func TestLoad_ReversedReferencePeriod(t *testing.T) {
	t.Setenv("REF_START_YEAR", "2017")
	t.Setenv("REF_END_YEAR", "2000")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REF_START_YEAR")
}

func TestLoad_KafkaEnabledWithoutBrokers(t *testing.T) {
	t.Setenv("KAFKA_ENABLED", "true")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_BROKERS")
}

func TestLoad_KafkaBrokersImplyEnabled(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "localhost:9092")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.KafkaEnabled)
}

func TestLoad_KafkaExplicitlyDisabled(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "localhost:9092")
	t.Setenv("KAFKA_ENABLED", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.KafkaEnabled)
}
