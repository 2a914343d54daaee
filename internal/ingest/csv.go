package ingest

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/AngelCh415/adperf/internal/models"
)

// DataFormatError means the input cannot be analyzed at all: required
// columns are missing or a numeric cell does not parse.
type DataFormatError struct {
	Missing []string // required columns absent from the header
	Line    int      // 1-based CSV line of a malformed value
	Column  string
	Value   string
	Err     error
}

func (e *DataFormatError) Error() string {
	if len(e.Missing) > 0 {
		return "missing required columns: " + strings.Join(e.Missing, ", ")
	}
	if e.Line > 0 {
		return fmt.Sprintf("line %d column %s: invalid value %q: %v", e.Line, e.Column, e.Value, e.Err)
	}
	return fmt.Sprintf("malformed input: %v", e.Err)
}

func (e *DataFormatError) Unwrap() error { return e.Err }

// LoadFile reads a CSV file from disk.
func LoadFile(path string) (models.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.Dataset{}, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()
	return ReadCSV(f, filepath.Base(path))
}

// ReadCSV loads the advertising table. Columns are located by header name,
// not position; the schema is checked once before any row is read. Blank
// cells load as zero and are counted in Dataset.Missing.
func ReadCSV(r io.Reader, source string) (models.Dataset, error) {
	reader := csv.NewReader(stripBOM(r))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return models.Dataset{}, &DataFormatError{Missing: append([]string(nil), models.RequiredColumns...)}
		}
		return models.Dataset{}, &DataFormatError{Err: fmt.Errorf("read header: %w", err)}
	}
	cols, err := mapColumns(header)
	if err != nil {
		return models.Dataset{}, err
	}

	ds := models.Dataset{
		Source:  source,
		Rows:    make([]models.Row, 0),
		Missing: make(map[string]int, len(models.RequiredColumns)),
	}
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return models.Dataset{}, &DataFormatError{Err: err}
		}
		line, _ := reader.FieldPos(0)
		row, err := parseRow(rec, cols, line, ds.Missing)
		if err != nil {
			return models.Dataset{}, err
		}
		ds.Rows = append(ds.Rows, row)
	}
	return ds, nil
}

// mapColumns finds each required column in the header. Matching ignores case
// and surrounding space; the first occurrence of a name wins.
func mapColumns(header []string) (map[string]int, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		if _, dup := pos[name]; !dup {
			pos[name] = i
		}
	}
	cols := make(map[string]int, len(models.RequiredColumns))
	var missing []string
	for _, c := range models.RequiredColumns {
		i, ok := pos[c]
		if !ok {
			missing = append(missing, c)
			continue
		}
		cols[c] = i
	}
	if len(missing) > 0 {
		return nil, &DataFormatError{Missing: missing}
	}
	return cols, nil
}

func parseRow(rec []string, cols map[string]int, line int, missing map[string]int) (models.Row, error) {
	cell := func(col string) string {
		i := cols[col]
		if i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var row models.Row
	row.AdID = cell(models.ColAdID)
	if row.AdID == "" {
		missing[models.ColAdID]++
	}
	row.Campaign = cell(models.ColCampaign)
	if row.Campaign == "" {
		missing[models.ColCampaign]++
		row.Campaign = "unknown"
	}

	ints := []struct {
		col string
		dst *int64
	}{
		{models.ColImpressions, &row.Impressions},
		{models.ColClicks, &row.Clicks},
		{models.ColConversions, &row.Conversions},
	}
	for _, f := range ints {
		raw := cell(f.col)
		if raw == "" {
			missing[f.col]++
			continue
		}
		v, err := parseCount(raw)
		if err != nil {
			return models.Row{}, &DataFormatError{Line: line, Column: f.col, Value: raw, Err: err}
		}
		*f.dst = v
	}

	floats := []struct {
		col string
		dst *float64
	}{
		{models.ColCost, &row.Cost},
		{models.ColRevenue, &row.Revenue},
	}
	for _, f := range floats {
		raw := cell(f.col)
		if raw == "" {
			missing[f.col]++
			continue
		}
		v, err := parseAmount(raw)
		if err != nil {
			return models.Row{}, &DataFormatError{Line: line, Column: f.col, Value: raw, Err: err}
		}
		*f.dst = v
	}
	return row, nil
}

// stripBOM drops a leading UTF-8 byte order mark, as spreadsheet exports
// often carry one.
func stripBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if b, err := br.Peek(3); err == nil && bytes.Equal(b, utf8BOM) {
		_, _ = br.Discard(3)
	}
	return br
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Cell magnitude limits. Campaign and overall totals are sums over many
// rows; with these bounds they cannot wrap an int64 or overflow a float64.
const (
	maxCount  = 1e12
	maxAmount = 1e15
)

// parseCount accepts integers, including ones written as "1200.0".
func parseCount(s string) (int64, error) {
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		if v > maxCount || v < -maxCount {
			return 0, errors.New("out of range")
		}
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.New("not a number")
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, errors.New("not a whole number")
	}
	if math.Abs(f) > maxCount {
		return 0, errors.New("out of range")
	}
	return int64(f), nil
}

func parseAmount(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.New("not a number")
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.New("not a finite number")
	}
	if math.Abs(f) > maxAmount {
		return 0, errors.New("out of range")
	}
	return f, nil
}
