package store

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"

	"quantstarter/internal/panel"
)

// Compile-time interface check.
var _ PanelStore = (*ParquetStore)(nil)

// ParquetStore implements PanelStore using Parquet files on disk, one file
// per panel at <DataDir>/panels/<name>.parquet.
type ParquetStore struct {
	DataDir string
}

// NewParquetStore creates a ParquetStore rooted at the given data directory.
func NewParquetStore(dataDir string) *ParquetStore {
	return &ParquetStore{DataDir: dataDir}
}

// PanelRecord is the Parquet schema for panel cells in long format. Missing
// (NaN) cells are not written; absence encodes them.
type PanelRecord struct {
	Symbol    string  `parquet:"symbol"`
	Timestamp int64   `parquet:"timestamp,timestamp(millisecond)"` // Unix ms
	Value     float64 `parquet:"value"`
}

// WritePanel persists a panel under the given name, replacing any previous
// contents.
func (s *ParquetStore) WritePanel(_ context.Context, name string, p *panel.Panel) error {
	records := PanelToRecords(p)
	if err := writeParquetFile(s.panelPath(name), records); err != nil {
		return fmt.Errorf("writing panel %s: %w", name, err)
	}
	return nil
}

// ReadPanel loads the named panel, reconstructing NaN for absent cells.
func (s *ParquetStore) ReadPanel(_ context.Context, name string) (*panel.Panel, error) {
	records, err := readParquetFile[PanelRecord](s.panelPath(name))
	if err != nil {
		return nil, fmt.Errorf("reading panel %s: %w", name, err)
	}
	return RecordsToPanel(records)
}

// ListPanels returns the names of all stored panels, sorted.
func (s *ParquetStore) ListPanels(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.DataDir, "panels"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".parquet") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".parquet"))
	}
	sort.Strings(names)
	return names, nil
}

// panelPath returns the file path for a named panel.
// Layout: <dataDir>/panels/<name>.parquet
func (s *ParquetStore) panelPath(name string) string {
	return filepath.Join(s.DataDir, "panels", name+".parquet")
}

// WritePanelFile persists a panel to an arbitrary Parquet file path.
func WritePanelFile(path string, p *panel.Panel) error {
	return writeParquetFile(path, PanelToRecords(p))
}

// ReadPanelFile loads a panel from an arbitrary Parquet file path.
func ReadPanelFile(path string) (*panel.Panel, error) {
	records, err := readParquetFile[PanelRecord](path)
	if err != nil {
		return nil, err
	}
	return RecordsToPanel(records)
}

// PanelToRecords flattens a panel into long-format records, skipping NaN
// cells.
func PanelToRecords(p *panel.Panel) []PanelRecord {
	symbols := p.Symbols()
	records := make([]PanelRecord, 0, p.Len()*len(symbols))
	for i := 0; i < p.Len(); i++ {
		ts := p.Date(i).UnixMilli()
		for j, sym := range symbols {
			v := p.At(i, j)
			if math.IsNaN(v) {
				continue
			}
			records = append(records, PanelRecord{Symbol: sym, Timestamp: ts, Value: v})
		}
	}
	return records
}

// RecordsToPanel rebuilds a panel from long-format records. Symbols come out
// sorted; dates ascending; cells with no record are NaN.
func RecordsToPanel(records []PanelRecord) (*panel.Panel, error) {
	dateSet := make(map[int64]struct{})
	symbolSet := make(map[string]struct{})
	for _, r := range records {
		dateSet[r.Timestamp] = struct{}{}
		symbolSet[r.Symbol] = struct{}{}
	}

	stamps := make([]int64, 0, len(dateSet))
	for ts := range dateSet {
		stamps = append(stamps, ts)
	}
	sort.Slice(stamps, func(i, j int) bool { return stamps[i] < stamps[j] })

	symbols := make([]string, 0, len(symbolSet))
	for sym := range symbolSet {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	dateIdx := make(map[int64]int, len(stamps))
	dates := make([]time.Time, len(stamps))
	for i, ts := range stamps {
		dateIdx[ts] = i
		dates[i] = time.UnixMilli(ts).UTC()
	}
	symIdx := make(map[string]int, len(symbols))
	for j, sym := range symbols {
		symIdx[sym] = j
	}

	values := make([][]float64, len(dates))
	for i := range values {
		row := make([]float64, len(symbols))
		for j := range row {
			row[j] = math.NaN()
		}
		values[i] = row
	}
	for _, r := range records {
		values[dateIdx[r.Timestamp]][symIdx[r.Symbol]] = r.Value
	}

	return panel.New(dates, symbols, values)
}

func writeParquetFile[T any](path string, records []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return parquet.WriteFile(path, records)
}

func readParquetFile[T any](path string) ([]T, error) {
	rows, err := parquet.ReadFile[T](path)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
