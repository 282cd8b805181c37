package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pivolan/sales_analyzer/dataset"
	"github.com/pivolan/sales_analyzer/domain/models"
)

func record(date string, c models.Category, r models.Region, sales float64) models.Record {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return models.Record{Date: d, Category: c, Region: r, Sales: &sales, Units: 10}
}

func cleanedYear(t *testing.T) *models.Dataset {
	t.Helper()
	s, err := dataset.NewSynthesizer(42, dataset.DefaultOptions())
	require.NoError(t, err)
	ds := s.Generate()
	_, err = dataset.Clean(ds)
	require.NoError(t, err)
	return ds
}

func TestAggregateCountConservation(t *testing.T) {
	ds := cleanedYear(t)
	res, err := Aggregate(ds)
	require.NoError(t, err)

	assert.Equal(t, ds.Len(), res.ByCategory.TotalCount())
	assert.Equal(t, ds.Len(), res.ByRegion.TotalCount())

	monthly := 0
	for _, m := range res.Monthly {
		monthly += m.Count
	}
	assert.Equal(t, ds.Len(), monthly)
	assert.Len(t, res.Monthly, 12)
	assert.Equal(t, "2023-01", res.Monthly[0].Month)
	assert.Equal(t, "2023-12", res.Monthly[11].Month)
}

func TestAggregateIsIdempotent(t *testing.T) {
	ds := cleanedYear(t)
	first, err := Aggregate(ds)
	require.NoError(t, err)
	second, err := Aggregate(ds)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestAggregateLiteralDataset(t *testing.T) {
	ds := &models.Dataset{Records: []models.Record{
		record("2023-01-30", models.Food, models.West, 10),
		record("2023-01-31", models.Books, models.West, 20),
		record("2023-02-01", models.Food, models.East, 30),
		record("2023-02-02", models.Food, models.East, 41.25),
	}}

	res, err := Aggregate(ds)
	require.NoError(t, err)

	assert.Equal(t, []string{"Food", "Books", "Electronics", "Clothing"}, res.ByCategory.Keys())
	food, ok := res.ByCategory.Get("Food")
	require.True(t, ok)
	assert.Equal(t, 3, food.Count)
	assert.Equal(t, models.Some(27.08), food.Mean)
	assert.True(t, food.StdDev.Valid)
	assert.Equal(t, 15.83, food.StdDev.Value)

	books, _ := res.ByCategory.Get("Books")
	assert.Equal(t, 1, books.Count)
	assert.Equal(t, models.Some(20.0), books.Mean)
	assert.Equal(t, models.NoData, books.StdDev, "single record has no sample stddev")

	assert.Equal(t, []string{"West", "East", "North", "South"}, res.ByRegion.Keys())

	assert.Equal(t, []models.MonthlyTotal{
		{Month: "2023-01", Count: 2, Sum: 30},
		{Month: "2023-02", Count: 2, Sum: 71.25},
	}, res.Monthly)
	assert.Equal(t, "2023-02", ds.Records[3].Month)
}

func TestAggregateEmptyGroupsAreMarked(t *testing.T) {
	ds := &models.Dataset{Records: []models.Record{
		record("2023-03-01", models.Electronics, models.North, 100),
		record("2023-03-02", models.Electronics, models.North, 200),
	}}
	res, err := Aggregate(ds)
	require.NoError(t, err)

	for _, label := range []string{"Clothing", "Books", "Food"} {
		g, ok := res.ByCategory.Get(label)
		require.True(t, ok, label)
		assert.Equal(t, 0, g.Count)
		assert.False(t, g.Mean.Valid)
		assert.False(t, g.StdDev.Valid)
		assert.Equal(t, "no data", g.Mean.String())
	}
	south, ok := res.ByRegion.Get("South")
	require.True(t, ok)
	assert.Equal(t, models.NoData, south.Mean)
}

func TestAggregateRejectsMissingSales(t *testing.T) {
	ds := &models.Dataset{Records: []models.Record{
		record("2023-03-01", models.Electronics, models.North, 100),
		{Date: time.Date(2023, 3, 2, 0, 0, 0, 0, time.UTC), Category: models.Food, Region: models.East},
	}}
	_, err := Aggregate(ds)
	assert.ErrorIs(t, err, ErrUncleanedData)
	for _, rec := range ds.Records {
		assert.Empty(t, rec.Month)
	}
}

func TestAggregateEmptyDataset(t *testing.T) {
	res, err := Aggregate(&models.Dataset{})
	require.NoError(t, err)
	assert.Len(t, res.ByCategory.Groups, len(models.Categories))
	assert.Equal(t, 0, res.ByCategory.TotalCount())
	assert.Empty(t, res.Monthly)
}
