package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"

	"github.com/pivolan/sales_analyzer/dataset"
)

const dateLayout = "2006-01-02"

type Config struct {
	Seed      int64
	Synthesis dataset.Options

	Renderers []string
	ChartsDir string

	ExportPath string
	DbDsn      string
	TgToken    string
	TgChatID   int64
}

var (
	config *Config
	once   sync.Once
)

// GetConfig returns the process-wide configuration. A .env file is optional.
func GetConfig() *Config {
	once.Do(func() {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Fatalf("Error loading .env file: %v", err)
		}
		cfg, err := FromEnv(os.LookupEnv)
		if err != nil {
			log.Fatalf("Error reading configuration: %v", err)
		}
		config = cfg
	})
	return config
}

// FromEnv builds a Config from lookup, falling back to defaults for unset variables.
func FromEnv(lookup func(string) (string, bool)) (*Config, error) {
	r := reader{lookup: lookup}
	defaults := dataset.DefaultOptions()

	cfg := &Config{
		Seed: r.int64("SEED", 42),
		Synthesis: dataset.Options{
			Start:           r.date("START_DATE", defaults.Start),
			End:             r.date("END_DATE", defaults.End),
			SalesMean:       r.float("SALES_MEAN", defaults.SalesMean),
			SalesStdDev:     r.float("SALES_STDDEV", defaults.SalesStdDev),
			UnitsMin:        int(r.int64("UNITS_MIN", int64(defaults.UnitsMin))),
			UnitsMax:        int(r.int64("UNITS_MAX", int64(defaults.UnitsMax))),
			MissingFraction: r.float("MISSING_FRACTION", defaults.MissingFraction),
		},
		Renderers:  r.list("CHART_RENDERER", []string{"png"}),
		ChartsDir:  r.string("CHARTS_DIR", "charts"),
		ExportPath: r.string("EXPORT_PATH", ""),
		DbDsn:      r.string("DB_DSN", ""),
		TgToken:    r.string("TG_TOKEN", ""),
		TgChatID:   r.int64("TG_CHAT_ID", 0),
	}
	if len(r.errs) > 0 {
		return nil, errors.Join(r.errs...)
	}
	if cfg.TgToken != "" && cfg.TgChatID == 0 {
		return nil, errors.New("TG_CHAT_ID is required when TG_TOKEN is set")
	}
	return cfg, nil
}

type reader struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (r *reader) value(key string) (string, bool) {
	v, ok := r.lookup(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (r *reader) fail(key, value string, err error) {
	r.errs = append(r.errs, fmt.Errorf("%s=%q: %w", key, value, err))
}

func (r *reader) string(key, def string) string {
	if v, ok := r.value(key); ok {
		return v
	}
	return def
}

func (r *reader) int64(key string, def int64) int64 {
	v, ok := r.value(key)
	if !ok {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		r.fail(key, v, err)
		return def
	}
	return n
}

func (r *reader) float(key string, def float64) float64 {
	v, ok := r.value(key)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		r.fail(key, v, err)
		return def
	}
	return f
}

func (r *reader) date(key string, def time.Time) time.Time {
	v, ok := r.value(key)
	if !ok {
		return def
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		r.fail(key, v, err)
		return def
	}
	return t
}

func (r *reader) list(key string, def []string) []string {
	v, ok := r.value(key)
	if !ok {
		return def
	}
	var items []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, strings.ToLower(item))
		}
	}
	return items
}
