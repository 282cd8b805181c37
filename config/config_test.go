package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pivolan/sales_analyzer/dataset"
)

func envMap(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(envMap(nil))
	require.NoError(t, err)

	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, dataset.DefaultOptions(), cfg.Synthesis)
	assert.Equal(t, []string{"png"}, cfg.Renderers)
	assert.Equal(t, "charts", cfg.ChartsDir)
	assert.Empty(t, cfg.ExportPath)
	assert.Empty(t, cfg.DbDsn)
	assert.Empty(t, cfg.TgToken)
}

func TestFromEnvOverrides(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{
		"SEED":             "7",
		"START_DATE":       "2023-01-01",
		"END_DATE":         "2023-01-05",
		"SALES_MEAN":       "500.5",
		"SALES_STDDEV":     "10",
		"UNITS_MIN":        "1",
		"UNITS_MAX":        "3",
		"MISSING_FRACTION": "0",
		"CHART_RENDERER":   " PNG, html ,,table",
		"CHARTS_DIR":       "/tmp/out",
		"EXPORT_PATH":      "sales.csv.lz4",
		"DB_DSN":           "default:@tcp(localhost:9004)/default",
		"TG_TOKEN":         "token",
		"TG_CHAT_ID":       "-100123",
	}))
	require.NoError(t, err)

	assert.Equal(t, int64(7), cfg.Seed)
	assert.Equal(t, time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC), cfg.Synthesis.End)
	assert.Equal(t, 500.5, cfg.Synthesis.SalesMean)
	assert.Equal(t, 3, cfg.Synthesis.UnitsMax)
	assert.Zero(t, cfg.Synthesis.MissingFraction)
	assert.Equal(t, []string{"png", "html", "table"}, cfg.Renderers)
	assert.Equal(t, "/tmp/out", cfg.ChartsDir)
	assert.Equal(t, "sales.csv.lz4", cfg.ExportPath)
	assert.Equal(t, int64(-100123), cfg.TgChatID)
}

func TestFromEnvInvalidValues(t *testing.T) {
	_, err := FromEnv(envMap(map[string]string{
		"SEED":       "forty-two",
		"START_DATE": "01/01/2023",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SEED")
	assert.Contains(t, err.Error(), "START_DATE")
}

func TestFromEnvTelegramNeedsChat(t *testing.T) {
	_, err := FromEnv(envMap(map[string]string{"TG_TOKEN": "token"}))
	assert.Error(t, err)
}
