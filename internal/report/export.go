package report

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/shopspring/decimal"

	"StockLens/internal/model"
	"StockLens/internal/symbol"
)

// ErrIO matches every export write failure.
var ErrIO = errors.New("export failed")

// ExportError reports the file an export could not write.
type ExportError struct {
	Path string
	Err  error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export %s: %v", e.Path, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }

func (e *ExportError) Is(target error) bool { return target == ErrIO }

var (
	statCSVHeader = []string{
		"symbol", "comment", "first_close", "last_close", "total_return_pct",
		"volatility_pct", "max_drawdown_pct", "investment", "ending_value", "profit_loss",
	}
	recordCSVHeader = func() []string {
		h := make([]string, len(recordFields))
		for i, f := range recordFields {
			h[i] = f.header
		}
		return h
	}()
	constituentCSVHeader = []string{"update_date", "code", "name"}
)

func f2(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

// ExportStats writes the batch statistics table as CSV.
func ExportStats(path string, rows []model.StatRow) error {
	records := [][]string{statCSVHeader}
	for _, row := range rows {
		st := row.Stat
		records = append(records, []string{
			row.Symbol.String(), row.Comment,
			f2(st.FirstClose), f2(st.LastClose),
			f2(st.TotalReturn * 100), f2(st.Volatility * 100), f2(st.MaxDrawdown * 100),
			Fixed(st.Investment), Fixed(st.EndingValue), Fixed(st.ProfitLoss),
		})
	}
	return writeCSV(path, records)
}

// ExportRecords writes raw bars as CSV in RecordColumns order. Percent
// columns keep the table's two decimals.
func ExportRecords(path string, bars []model.DailyRecord) error {
	records := [][]string{recordCSVHeader}
	for _, b := range bars {
		records = append(records, []string{
			b.Date.Format(model.DateLayout),
			f2(b.Open), f2(b.High), f2(b.Low), f2(b.Close), f2(b.PreClose),
			strconv.FormatFloat(b.Volume, 'f', 0, 64), f2(b.Amount), f2(b.Turnover), f2(b.PctChange),
		})
	}
	return writeCSV(path, records)
}

// ExportConstituents writes index members as CSV.
func ExportConstituents(path string, members []model.Constituent) error {
	records := [][]string{constituentCSVHeader}
	for _, m := range members {
		records = append(records, []string{m.UpdateDate, m.Symbol.String(), m.Name})
	}
	return writeCSV(path, records)
}

// writeCSV encodes records in memory, writes them to a temporary file next to
// path and renames it into place. path is untouched on failure.
func writeCSV(path string, records [][]string) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(records); err != nil {
		return &ExportError{Path: path, Err: err}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return &ExportError{Path: path, Err: err}
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &ExportError{Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &ExportError{Path: path, Err: err}
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return &ExportError{Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &ExportError{Path: path, Err: err}
	}
	return nil
}

// ReadStatsCSV parses a file written by ExportStats. Percent columns are
// converted back to fractions.
func ReadStatsCSV(r io.Reader) ([]model.StatRow, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read stats csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("read stats csv: missing header")
	}
	if len(records[0]) != len(statCSVHeader) {
		return nil, fmt.Errorf("read stats csv: expected %d columns, got %d", len(statCSVHeader), len(records[0]))
	}

	rows := make([]model.StatRow, 0, len(records)-1)
	for i, rec := range records[1:] {
		line := i + 2
		sym, err := symbol.Resolve(rec[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		var nums [5]float64
		for j := range nums {
			if nums[j], err = strconv.ParseFloat(rec[2+j], 64); err != nil {
				return nil, fmt.Errorf("line %d column %s: %w", line, statCSVHeader[2+j], err)
			}
		}
		var decs [3]decimal.Decimal
		for j := range decs {
			if decs[j], err = decimal.NewFromString(rec[7+j]); err != nil {
				return nil, fmt.Errorf("line %d column %s: %w", line, statCSVHeader[7+j], err)
			}
		}
		rows = append(rows, model.StatRow{
			Symbol:  sym,
			Comment: rec[1],
			Stat: &model.SymbolStat{
				FirstClose:  nums[0],
				LastClose:   nums[1],
				TotalReturn: nums[2] / 100,
				Volatility:  nums[3] / 100,
				MaxDrawdown: nums[4] / 100,
				Investment:  decs[0],
				EndingValue: decs[1],
				ProfitLoss:  decs[2],
			},
		})
	}
	return rows, nil
}
