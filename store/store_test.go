package store

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pivolan/sales_analyzer/domain/models"
)

// sqlRecorder is a gorm logger that keeps every statement it traces.
type sqlRecorder struct {
	statements []string
}

func (r *sqlRecorder) LogMode(logger.LogLevel) logger.Interface       { return r }
func (r *sqlRecorder) Info(context.Context, string, ...interface{})  {}
func (r *sqlRecorder) Warn(context.Context, string, ...interface{})  {}
func (r *sqlRecorder) Error(context.Context, string, ...interface{}) {}
func (r *sqlRecorder) Trace(_ context.Context, _ time.Time, fc func() (string, int64), _ error) {
	sql, _ := fc()
	r.statements = append(r.statements, sql)
}

func (r *sqlRecorder) matching(prefix string) []string {
	var found []string
	for _, s := range r.statements {
		if strings.HasPrefix(s, prefix) {
			found = append(found, s)
		}
	}
	return found
}

func dryRunStore(t *testing.T) (*Store, *sqlRecorder) {
	t.Helper()
	rec := &sqlRecorder{}
	db, err := gorm.Open(mysql.New(mysql.Config{
		DSN:                       "default:@tcp(127.0.0.1:9004)/default",
		SkipInitializeWithVersion: true,
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true, SkipDefaultTransaction: true, Logger: rec})
	require.NoError(t, err)
	return New(db), rec
}

func sampleRun() *models.Run {
	day := func(d int) time.Time { return time.Date(2023, 1, d, 0, 0, 0, 0, time.UTC) }
	return &models.Run{
		ID:        "6ba7b810-9dad-11d1-80b4-00c04fd430c8",
		Seed:      42,
		CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Summary: models.Summary{
			RecordCount:  3,
			StartDate:    day(1),
			EndDate:      day(3),
			MeanSales:    20,
			BestCategory: models.Best{Key: "Food", Value: 25},
			BestRegion:   models.Best{Key: "West", Value: 20},
			BestMonth:    models.Best{Key: "2023-01", Value: 60},
		},
		ByCategory: models.Aggregate{Dimension: "category", Groups: []models.GroupStat{
			{Key: "Food", Count: 2, Mean: models.Some(25), StdDev: models.Some(7.07)},
			{Key: "Books", Count: 1, Mean: models.Some(10), StdDev: models.NoData},
			{Key: "Electronics", Count: 0, Mean: models.NoData, StdDev: models.NoData},
		}},
		ByRegion: models.Aggregate{Dimension: "region", Groups: []models.GroupStat{
			{Key: "West", Count: 3, Mean: models.Some(20), StdDev: models.Some(10)},
		}},
		Monthly: []models.MonthlyTotal{{Month: "2023-01", Count: 3, Sum: 60}},
	}
}

func TestGroupStatRowsKeepNoDataAsNull(t *testing.T) {
	rows := GroupStatRows("run", sampleRun().ByCategory)
	require.Len(t, rows, 3)

	assert.Equal(t, 0, rows[0].Position)
	require.NotNil(t, rows[0].Mean)
	assert.Equal(t, 25.0, *rows[0].Mean)

	require.NotNil(t, rows[1].Mean)
	assert.Nil(t, rows[1].StdDev)

	assert.Equal(t, "Electronics", rows[2].GroupKey)
	assert.Equal(t, int64(0), rows[2].Count)
	assert.Nil(t, rows[2].Mean)
	assert.Nil(t, rows[2].StdDev)
}

func TestNewRunRow(t *testing.T) {
	row := NewRunRow(sampleRun())
	assert.Equal(t, int64(3), row.RecordCount)
	assert.Equal(t, "Food", row.BestCategory)
	assert.Equal(t, 60.0, row.BestMonthSales)
	assert.Equal(t, TableRuns, row.TableName())
}

func TestSaveRunStatements(t *testing.T) {
	s, rec := dryRunStore(t)
	a, b := 10.5, 20.0
	ds := &models.Dataset{Records: []models.Record{
		{Date: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), Category: models.Food, Region: models.West, Sales: &a, Units: 11, Month: "2023-01"},
		{Date: time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC), Category: models.Books, Region: models.West, Sales: &b, Units: 12, Month: "2023-01"},
		{Date: time.Date(2023, 1, 3, 0, 0, 0, 0, time.UTC), Category: models.Food, Region: models.West, Units: 13, Month: "2023-01"},
	}}

	require.NoError(t, s.SaveRun(sampleRun(), ds))

	assert.Len(t, rec.matching("CREATE TABLE IF NOT EXISTS"), len(schema))
	for _, table := range []string{TableRuns, TableGroupStats, TableMonthlyTotals} {
		assert.Len(t, rec.matching("INSERT INTO `"+table+"`"), 1, table)
	}

	records := rec.matching("INSERT INTO " + TableRecords + " FORMAT CSV")
	require.Len(t, records, 1)
	assert.Contains(t, records[0], "2023-01-01,Food,West,10.5,11,2023-01")
	assert.Contains(t, records[0], `2023-01-03,Food,West,\N,13,2023-01`)
}

func TestSaveRecordsBatches(t *testing.T) {
	s, rec := dryRunStore(t)
	ds := &models.Dataset{}
	for i := 0; i < recordsBatch+1; i++ {
		v := float64(i)
		ds.Records = append(ds.Records, models.Record{
			Date: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i), Category: models.Books, Region: models.East, Sales: &v,
		})
	}
	require.NoError(t, s.saveRecords("run", ds))
	assert.Len(t, rec.matching("INSERT INTO "+TableRecords), 2)
}
