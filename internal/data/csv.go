package data

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"quantstarter/internal/panel"
)

const dateLayout = "2006-01-02"

// WritePanelCSV saves a panel in date-indexed wide format: a "date" column
// followed by one column per symbol. NaN cells are written empty. Parent
// directories are created as needed.
func WritePanelCSV(path string, p *panel.Panel) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := append([]string{"date"}, p.Symbols()...)
	if err := w.Write(header); err != nil {
		return err
	}

	record := make([]string, len(header))
	for i := 0; i < p.Len(); i++ {
		record[0] = p.Date(i).Format(dateLayout)
		for j := 0; j < p.NumSymbols(); j++ {
			v := p.At(i, j)
			if math.IsNaN(v) {
				record[j+1] = ""
			} else {
				record[j+1] = strconv.FormatFloat(v, 'g', -1, 64)
			}
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

// ReadPanelCSV loads a panel saved by WritePanelCSV. Empty cells become NaN;
// any other unparsable cell is an error.
func ReadPanelCSV(path string) (*panel.Panel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(rows) < 1 || len(rows[0]) < 2 {
		return nil, fmt.Errorf("reading %s: need a date column and at least one symbol", path)
	}

	symbols := rows[0][1:]
	dates := make([]time.Time, 0, len(rows)-1)
	values := make([][]float64, 0, len(rows)-1)
	for n, rec := range rows[1:] {
		d, err := time.ParseInLocation(dateLayout, rec[0], time.UTC)
		if err != nil {
			return nil, fmt.Errorf("reading %s row %d: bad date %q", path, n+2, rec[0])
		}
		row := make([]float64, len(symbols))
		for j, cell := range rec[1:] {
			if cell == "" {
				row[j] = math.NaN()
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("reading %s row %d: bad value %q for %s", path, n+2, cell, symbols[j])
			}
			row[j] = v
		}
		dates = append(dates, d)
		values = append(values, row)
	}

	return panel.New(dates, symbols, values)
}
