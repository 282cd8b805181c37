package main

import (
	"errors"
	"log"
	"os"

	uuid "github.com/satori/go.uuid"

	"github.com/pivolan/sales_analyzer/config"
	"github.com/pivolan/sales_analyzer/delivery"
	"github.com/pivolan/sales_analyzer/pipeline"
	"github.com/pivolan/sales_analyzer/plot"
	"github.com/pivolan/sales_analyzer/store"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.GetConfig()

	prefix := "sales_" + uuid.NewV4().String()[:8]
	sink, err := plot.NewSink(cfg.Renderers, cfg.ChartsDir, prefix, os.Stdout)
	if err != nil {
		log.Printf("An error occurred: %v", err)
		return 1
	}

	opts := pipeline.Options{
		Seed:       cfg.Seed,
		Synthesis:  cfg.Synthesis,
		Sink:       sink,
		Out:        os.Stdout,
		ExportPath: cfg.ExportPath,
	}
	if cfg.DbDsn != "" {
		db, err := store.Open(cfg.DbDsn)
		if err != nil {
			log.Printf("An error occurred: %v", err)
			return 1
		}
		opts.Store = db
	}
	if cfg.TgToken != "" {
		tg, err := delivery.NewTelegram(cfg.TgToken, cfg.TgChatID)
		if err != nil {
			log.Printf("An error occurred: %v", err)
			return 1
		}
		opts.Publisher = tg
	}

	if _, err := pipeline.Run(opts); err != nil {
		log.Printf("An error occurred: %v", err)
		var renderErr *plot.RenderError
		if errors.As(err, &renderErr) {
			return 0
		}
		return 1
	}
	return 0
}
