package dataset

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/pivolan/sales_analyzer/domain/models"
)

var ErrInvalidOptions = errors.New("invalid synthesizer options")

type Options struct {
	Start           time.Time
	End             time.Time
	SalesMean       float64
	SalesStdDev     float64
	UnitsMin        int
	UnitsMax        int // exclusive
	MissingFraction float64
}

func DefaultOptions() Options {
	return Options{
		Start:           time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		End:             time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC),
		SalesMean:       1000,
		SalesStdDev:     200,
		UnitsMin:        10,
		UnitsMax:        100,
		MissingFraction: 0.05,
	}
}

func (o Options) validate() error {
	switch {
	case o.End.Before(o.Start):
		return fmt.Errorf("%w: end date %s is before start date %s", ErrInvalidOptions,
			o.End.Format(time.DateOnly), o.Start.Format(time.DateOnly))
	case o.SalesStdDev < 0:
		return fmt.Errorf("%w: negative sales stddev %v", ErrInvalidOptions, o.SalesStdDev)
	case o.UnitsMax <= o.UnitsMin:
		return fmt.Errorf("%w: units range [%d, %d) is empty", ErrInvalidOptions, o.UnitsMin, o.UnitsMax)
	case o.MissingFraction < 0 || o.MissingFraction > 1:
		return fmt.Errorf("%w: missing fraction %v outside [0, 1]", ErrInvalidOptions, o.MissingFraction)
	}
	return nil
}

// Synthesizer produces the daily sales dataset. Output depends only on the seed and options.
type Synthesizer struct {
	seed int64
	opts Options
}

func NewSynthesizer(seed int64, opts Options) (*Synthesizer, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	opts.Start = truncateDay(opts.Start)
	opts.End = truncateDay(opts.End)
	return &Synthesizer{seed: seed, opts: opts}, nil
}

func (s *Synthesizer) Options() Options {
	return s.opts
}

// Generate builds one record per day of the inclusive date range. Columns are drawn one
// after another (categories, regions, sales, units, missing mask) from a generator seeded
// at the start of every call.
func (s *Synthesizer) Generate() *models.Dataset {
	rng := rand.New(rand.NewSource(s.seed))
	dates := dailyRange(s.opts.Start, s.opts.End)
	n := len(dates)

	records := make([]models.Record, n)
	for i, d := range dates {
		records[i].Date = d
	}
	for i := range records {
		records[i].Category = models.Categories[rng.Intn(len(models.Categories))]
	}
	for i := range records {
		records[i].Region = models.Regions[rng.Intn(len(models.Regions))]
	}
	for i := range records {
		sales := rng.NormFloat64()*s.opts.SalesStdDev + s.opts.SalesMean
		records[i].Sales = &sales
	}
	for i := range records {
		records[i].Units = s.opts.UnitsMin + rng.Intn(s.opts.UnitsMax-s.opts.UnitsMin)
	}
	for i := range records {
		if rng.Float64() < s.opts.MissingFraction {
			records[i].Sales = nil
		}
	}

	return &models.Dataset{Records: records}
}

func dailyRange(start, end time.Time) []time.Time {
	var dates []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
