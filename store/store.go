// Package store persists analysis runs in ClickHouse through its MySQL interface.
package store

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"log"
	"strconv"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pivolan/sales_analyzer/domain/models"
)

const (
	TableRuns          = "sales_runs"
	TableGroupStats    = "sales_group_stats"
	TableMonthlyTotals = "sales_monthly_totals"
	TableRecords       = "sales_records"

	recordsBatch = 5000
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS ` + TableRuns + ` (
	id String,
	seed Int64,
	created_at DateTime,
	record_count Int64,
	start_date Date,
	end_date Date,
	mean_sales Float64,
	min_sales Float64,
	max_sales Float64,
	total_sales Float64,
	best_category String,
	best_category_mean Float64,
	best_region String,
	best_region_mean Float64,
	best_month String,
	best_month_sales Float64
) ENGINE = MergeTree ORDER BY (created_at, id)`,
	`CREATE TABLE IF NOT EXISTS ` + TableGroupStats + ` (
	run_id String,
	dimension String,
	position Int32,
	group_key String,
	count Int64,
	mean Nullable(Float64),
	std_dev Nullable(Float64)
) ENGINE = MergeTree ORDER BY (run_id, dimension, position)`,
	`CREATE TABLE IF NOT EXISTS ` + TableMonthlyTotals + ` (
	run_id String,
	month String,
	count Int64,
	sum Float64
) ENGINE = MergeTree ORDER BY (run_id, month)`,
	`CREATE TABLE IF NOT EXISTS ` + TableRecords + ` (
	run_id String,
	date Date,
	category String,
	region String,
	sales Nullable(Float64),
	units Int64,
	month String
) ENGINE = MergeTree ORDER BY (run_id, date)`,
}

type RunRow struct {
	ID               string    `gorm:"column:id"`
	Seed             int64     `gorm:"column:seed"`
	CreatedAt        time.Time `gorm:"column:created_at"`
	RecordCount      int64     `gorm:"column:record_count"`
	StartDate        time.Time `gorm:"column:start_date"`
	EndDate          time.Time `gorm:"column:end_date"`
	MeanSales        float64   `gorm:"column:mean_sales"`
	MinSales         float64   `gorm:"column:min_sales"`
	MaxSales         float64   `gorm:"column:max_sales"`
	TotalSales       float64   `gorm:"column:total_sales"`
	BestCategory     string    `gorm:"column:best_category"`
	BestCategoryMean float64   `gorm:"column:best_category_mean"`
	BestRegion       string    `gorm:"column:best_region"`
	BestRegionMean   float64   `gorm:"column:best_region_mean"`
	BestMonth        string    `gorm:"column:best_month"`
	BestMonthSales   float64   `gorm:"column:best_month_sales"`
}

func (RunRow) TableName() string { return TableRuns }

// GroupStatRow is one group of one dimension. Mean and StdDev are NULL when there is no data.
type GroupStatRow struct {
	RunID     string   `gorm:"column:run_id"`
	Dimension string   `gorm:"column:dimension"`
	Position  int      `gorm:"column:position"`
	GroupKey  string   `gorm:"column:group_key"`
	Count     int64    `gorm:"column:count"`
	Mean      *float64 `gorm:"column:mean"`
	StdDev    *float64 `gorm:"column:std_dev"`
}

func (GroupStatRow) TableName() string { return TableGroupStats }

type MonthlyTotalRow struct {
	RunID string  `gorm:"column:run_id"`
	Month string  `gorm:"column:month"`
	Count int64   `gorm:"column:count"`
	Sum   float64 `gorm:"column:sum"`
}

func (MonthlyTotalRow) TableName() string { return TableMonthlyTotals }

type Store struct {
	db *gorm.DB
}

// Open connects to ClickHouse over the MySQL protocol, e.g. "default:@tcp(127.0.0.1:9004)/default".
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot connect to clickhouse: %w", err)
	}
	return New(db), nil
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates the tables that do not exist yet.
func (s *Store) Migrate() error {
	for _, ddl := range schema {
		if tx := s.db.Exec(ddl); tx.Error != nil {
			return fmt.Errorf("create table: %w", tx.Error)
		}
	}
	return nil
}

// SaveRun stores the run summary, its group statistics, its monthly totals and, when ds
// is not nil, every record of the dataset.
func (s *Store) SaveRun(run *models.Run, ds *models.Dataset) error {
	if err := s.Migrate(); err != nil {
		return err
	}
	if tx := s.db.Create(NewRunRow(run)); tx.Error != nil {
		return fmt.Errorf("insert %s: %w", TableRuns, tx.Error)
	}
	groups := append(GroupStatRows(run.ID, run.ByCategory), GroupStatRows(run.ID, run.ByRegion)...)
	if len(groups) > 0 {
		if tx := s.db.Create(&groups); tx.Error != nil {
			return fmt.Errorf("insert %s: %w", TableGroupStats, tx.Error)
		}
	}
	monthly := MonthlyTotalRows(run.ID, run.Monthly)
	if len(monthly) > 0 {
		if tx := s.db.Create(&monthly); tx.Error != nil {
			return fmt.Errorf("insert %s: %w", TableMonthlyTotals, tx.Error)
		}
	}
	if ds != nil {
		if err := s.saveRecords(run.ID, ds); err != nil {
			return err
		}
	}
	log.Printf("store: run %s saved (%d groups, %d months)", run.ID, len(groups), len(monthly))
	return nil
}

// saveRecords inserts the dataset in CSV batches.
func (s *Store) saveRecords(runID string, ds *models.Dataset) error {
	b := bytes.NewBufferString("")
	csvWriter := csv.NewWriter(b)
	flush := func() error {
		csvWriter.Flush()
		if b.Len() == 0 {
			return nil
		}
		sql := fmt.Sprintf("INSERT INTO %s FORMAT CSV\n%s", TableRecords, b.String())
		b.Reset()
		if tx := s.db.Exec(sql); tx.Error != nil {
			return fmt.Errorf("insert %s: %w", TableRecords, tx.Error)
		}
		return nil
	}

	for i, r := range ds.Records {
		sales := `\N`
		if r.Sales != nil {
			sales = strconv.FormatFloat(*r.Sales, 'f', -1, 64)
		}
		err := csvWriter.Write([]string{
			runID,
			r.Date.Format("2006-01-02"),
			string(r.Category),
			string(r.Region),
			sales,
			strconv.Itoa(r.Units),
			r.Month,
		})
		if err != nil {
			return err
		}
		if (i+1)%recordsBatch == 0 {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	return flush()
}

func NewRunRow(run *models.Run) *RunRow {
	s := run.Summary
	return &RunRow{
		ID:               run.ID,
		Seed:             run.Seed,
		CreatedAt:        run.CreatedAt,
		RecordCount:      int64(s.RecordCount),
		StartDate:        s.StartDate,
		EndDate:          s.EndDate,
		MeanSales:        s.MeanSales,
		MinSales:         s.MinSales,
		MaxSales:         s.MaxSales,
		TotalSales:       s.TotalSales,
		BestCategory:     s.BestCategory.Key,
		BestCategoryMean: s.BestCategory.Value,
		BestRegion:       s.BestRegion.Key,
		BestRegionMean:   s.BestRegion.Value,
		BestMonth:        s.BestMonth.Key,
		BestMonthSales:   s.BestMonth.Value,
	}
}

func GroupStatRows(runID string, agg models.Aggregate) []GroupStatRow {
	rows := make([]GroupStatRow, len(agg.Groups))
	for i, g := range agg.Groups {
		rows[i] = GroupStatRow{
			RunID:     runID,
			Dimension: agg.Dimension,
			Position:  i,
			GroupKey:  g.Key,
			Count:     int64(g.Count),
			Mean:      nullable(g.Mean),
			StdDev:    nullable(g.StdDev),
		}
	}
	return rows
}

func MonthlyTotalRows(runID string, monthly []models.MonthlyTotal) []MonthlyTotalRow {
	rows := make([]MonthlyTotalRow, len(monthly))
	for i, m := range monthly {
		rows[i] = MonthlyTotalRow{RunID: runID, Month: m.Month, Count: int64(m.Count), Sum: m.Sum}
	}
	return rows
}

func nullable(m models.Metric) *float64 {
	if !m.Valid {
		return nil
	}
	v := m.Value
	return &v
}
