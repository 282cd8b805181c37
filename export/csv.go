// Package export writes the cleaned dataset to CSV, optionally compressed.
package export

import (
	"compress/gzip"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pierrec/lz4"
	"github.com/pivolan/go_utils"

	"github.com/pivolan/sales_analyzer/domain/models"
)

const dateLayout = "2006-01-02"

var Header = []string{"date", "category", "region", "sales", "units", "month"}

// Extensions lists the file extensions WriteCSV and ReadCSV understand.
var Extensions = []string{".csv", ".gz", ".lz4"}

var ErrBadHeader = errors.New("unexpected csv header")

// WriteCSV writes the dataset to path. A .gz or .lz4 extension compresses the file.
func WriteCSV(path string, ds *models.Dataset) error {
	if !go_utils.InArray(filepath.Ext(path), Extensions) {
		return fmt.Errorf("unsupported export extension %q", filepath.Ext(path))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	out, err := compressor(path, file)
	if err != nil {
		return err
	}
	if err := Encode(out, ds); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	log.Printf("export: %d records written to %s", ds.Len(), path)
	return file.Close()
}

// ReadCSV reads a file written by WriteCSV, decompressing it by extension.
func ReadCSV(path string) (*models.Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	in, err := decompressor(path, file)
	if err != nil {
		return nil, err
	}
	return Decode(in)
}

func Encode(w io.Writer, ds *models.Dataset) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Header); err != nil {
		return err
	}
	for _, r := range ds.Records {
		sales := ""
		if r.Sales != nil {
			sales = strconv.FormatFloat(*r.Sales, 'f', -1, 64)
		}
		err := writer.Write([]string{
			r.Date.Format(dateLayout),
			string(r.Category),
			string(r.Region),
			sales,
			strconv.Itoa(r.Units),
			r.Month,
		})
		if err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func Decode(r io.Reader) (*models.Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(Header)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if strings.Join(header, ",") != strings.Join(Header, ",") {
		return nil, fmt.Errorf("%w: %v", ErrBadHeader, header)
	}

	ds := &models.Dataset{}
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rec, err := parseRecord(row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		ds.Records = append(ds.Records, rec)
	}
	return ds, nil
}

func parseRecord(row []string) (models.Record, error) {
	date, err := time.Parse(dateLayout, row[0])
	if err != nil {
		return models.Record{}, err
	}
	rec := models.Record{
		Date:     date,
		Category: models.Category(row[1]),
		Region:   models.Region(row[2]),
		Month:    row[5],
	}
	if !models.IsKnownCategory(rec.Category) {
		return rec, fmt.Errorf("unknown category %q", row[1])
	}
	if !models.IsKnownRegion(rec.Region) {
		return rec, fmt.Errorf("unknown region %q", row[2])
	}
	if row[3] != "" {
		sales, err := strconv.ParseFloat(row[3], 64)
		if err != nil {
			return rec, err
		}
		rec.Sales = &sales
	}
	if rec.Units, err = strconv.Atoi(row[4]); err != nil {
		return rec, err
	}
	return rec, nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

func compressor(path string, w io.Writer) (io.WriteCloser, error) {
	switch filepath.Ext(path) {
	case ".gz":
		return gzip.NewWriter(w), nil
	case ".lz4":
		return lz4.NewWriter(w), nil
	case ".csv":
		return nopCloser{w}, nil
	}
	return nil, fmt.Errorf("unsupported export extension %q", filepath.Ext(path))
}

func decompressor(path string, r io.Reader) (io.Reader, error) {
	switch filepath.Ext(path) {
	case ".gz":
		return gzip.NewReader(r)
	case ".lz4":
		return lz4.NewReader(r), nil
	case ".csv":
		return r, nil
	}
	return nil, fmt.Errorf("unsupported export extension %q", filepath.Ext(path))
}
