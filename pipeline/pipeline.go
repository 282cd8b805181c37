// Package pipeline runs the analysis stages once, in order, and hands the outcome to the
// optional post stages.
package pipeline

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"time"

	uuid "github.com/satori/go.uuid"

	"github.com/pivolan/sales_analyzer/analysis"
	"github.com/pivolan/sales_analyzer/dataset"
	"github.com/pivolan/sales_analyzer/domain/models"
	"github.com/pivolan/sales_analyzer/export"
	"github.com/pivolan/sales_analyzer/plot"
	"github.com/pivolan/sales_analyzer/report"
)

// RunStore persists a finished run.
type RunStore interface {
	SaveRun(run *models.Run, ds *models.Dataset) error
}

// Publisher delivers the findings text and the chart images somewhere outside the process.
type Publisher interface {
	Publish(text string, charts []plot.RenderedChart) error
}

type chartSource interface {
	Charts() []plot.RenderedChart
}

type Options struct {
	Seed      int64
	Synthesis dataset.Options
	Sink      plot.ChartSink
	Out       io.Writer

	// Optional post stages; zero values switch them off.
	ExportPath string
	Store      RunStore
	Publisher  Publisher
}

type Result struct {
	Run      *models.Run
	Dataset  *models.Dataset
	Clean    *dataset.CleanReport
	Findings string
}

// Run synthesizes, cleans, aggregates and reports. A failing stage stops the run: nothing
// after it is printed, stored or sent.
func Run(opts Options) (*Result, error) {
	start := time.Now()
	runID := uuid.NewV4().String()
	log.Printf("pipeline: run %s started with seed %d", runID, opts.Seed)

	sink := opts.Sink
	if sink == nil {
		sink = plot.NopSink{}
	}
	out := opts.Out
	if out == nil {
		out = io.Discard
	}

	synth, err := dataset.NewSynthesizer(opts.Seed, opts.Synthesis)
	if err != nil {
		return nil, err
	}
	ds := synth.Generate()
	log.Printf("pipeline: %d records synthesized", ds.Len())

	clean, err := dataset.Clean(ds)
	if err != nil {
		return nil, err
	}

	res, err := analysis.Aggregate(ds)
	if err != nil {
		return nil, err
	}

	if err := report.WriteAnalysis(out, ds, clean, res); err != nil {
		return nil, err
	}

	if err := (report.Reporter{Sink: sink}).Render(ds, res); err != nil {
		return nil, err
	}
	if f, ok := sink.(plot.Flusher); ok {
		if err := f.Flush(); err != nil {
			return nil, &plot.RenderError{Chart: "flush", Err: err}
		}
	}

	summary, err := report.Summarize(ds, res)
	if err != nil {
		return nil, err
	}
	var findings bytes.Buffer
	if err := report.WriteFindings(&findings, summary); err != nil {
		return nil, err
	}
	if _, err := out.Write(findings.Bytes()); err != nil {
		return nil, err
	}

	result := &Result{
		Run: &models.Run{
			ID:         runID,
			Seed:       opts.Seed,
			CreatedAt:  start.UTC(),
			Summary:    *summary,
			ByCategory: res.ByCategory,
			ByRegion:   res.ByRegion,
			Monthly:    res.Monthly,
		},
		Dataset:  ds,
		Clean:    clean,
		Findings: findings.String(),
	}

	if opts.ExportPath != "" {
		if err := export.WriteCSV(opts.ExportPath, ds); err != nil {
			return result, fmt.Errorf("export: %w", err)
		}
	}
	if opts.Store != nil {
		if err := opts.Store.SaveRun(result.Run, ds); err != nil {
			return result, fmt.Errorf("store: %w", err)
		}
	}
	if opts.Publisher != nil {
		var charts []plot.RenderedChart
		if src, ok := sink.(chartSource); ok {
			charts = src.Charts()
		}
		if err := opts.Publisher.Publish(result.Findings, charts); err != nil {
			return result, fmt.Errorf("delivery: %w", err)
		}
	}

	log.Printf("pipeline: run %s finished in %s", runID, time.Since(start))
	return result, nil
}
