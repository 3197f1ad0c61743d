// Package report renders market data as terminal tables and CSV files.
package report

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"StockLens/internal/model"
	"StockLens/internal/symbol"
	"StockLens/internal/watchlist"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	numberStyle = cellStyle.Align(lipgloss.Right)
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// Renderer writes human readable tables to Out.
type Renderer struct {
	Out io.Writer
}

// NewRenderer creates a renderer writing to w, or to stdout when w is nil.
func NewRenderer(w io.Writer) *Renderer {
	if w == nil {
		w = os.Stdout
	}
	return &Renderer{Out: w}
}

// newTable builds a bordered table; columns listed in numeric are right aligned.
func newTable(headers []string, numeric ...int) *table.Table {
	right := make(map[int]bool, len(numeric))
	for _, c := range numeric {
		right[c] = true
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case right[col]:
				return numberStyle
			default:
				return cellStyle
			}
		})
}

func (r *Renderer) title(format string, args ...any) {
	fmt.Fprintln(r.Out, titleStyle.Render(fmt.Sprintf(format, args...)))
}

func (r *Renderer) print(t *table.Table) {
	fmt.Fprintln(r.Out, t.String())
}

// StatColumns is the column order of the batch statistics table and its CSV.
var StatColumns = []string{
	"Symbol", "Comment", "First Close", "Last Close", "Total Return",
	"Volatility", "Max Drawdown", "Investment", "Ending Value", "Profit/Loss",
}

// Stats renders one row per symbol in input order.
func (r *Renderer) Stats(rows []model.StatRow) {
	t := newTable(StatColumns, 2, 3, 4, 5, 6, 7, 8, 9)
	for _, row := range rows {
		st := row.Stat
		t.Row(
			row.Symbol.String(), row.Comment,
			Price(st.FirstClose), Price(st.LastClose),
			Percent(st.TotalReturn), Percent(st.Volatility), Percent(st.MaxDrawdown),
			Money(st.Investment), Money(st.EndingValue), Money(st.ProfitLoss),
		)
	}
	r.print(t)
}

// Failures lists batch entries that produced no statistics.
func (r *Renderer) Failures(failures []model.Failure) {
	if len(failures) == 0 {
		return
	}
	r.title("Failed (%d)", len(failures))
	t := newTable([]string{"Symbol", "Comment", "Reason"})
	for _, f := range failures {
		t.Row(f.Symbol.String(), f.Comment, errorStyle.Render(f.Reason))
	}
	r.print(t)
}

// Warnings lists watchlist lines that were skipped.
func (r *Renderer) Warnings(warnings []watchlist.Warning) {
	if len(warnings) == 0 {
		return
	}
	r.title("Skipped watchlist lines (%d)", len(warnings))
	for _, w := range warnings {
		fmt.Fprintln(r.Out, warnStyle.Render("  "+w.String()))
	}
}

// recordFields pairs each k-line table column with its CSV header.
var recordFields = []struct{ column, header string }{
	{"Date", "date"},
	{"Open", "open"},
	{"High", "high"},
	{"Low", "low"},
	{"Close", "close"},
	{"Pre Close", "preclose"},
	{"Volume", "volume"},
	{"Amount", "amount"},
	{"Turnover", "turnover_pct"},
	{"Change", "pct_change"},
}

// RecordColumns is the column order of the k-line table and its CSV.
var RecordColumns = func() []string {
	cols := make([]string, len(recordFields))
	for i, f := range recordFields {
		cols[i] = f.column
	}
	return cols
}()

// Records renders raw bars in input order.
func (r *Renderer) Records(sym symbol.Symbol, rng model.DateRange, freq model.Frequency, records []model.DailyRecord) {
	r.title("%s %s k-line, %s (%d bars)", sym, freq.Label(), rng, len(records))
	if len(records) == 0 {
		fmt.Fprintln(r.Out, "no data in range")
		return
	}
	t := newTable(RecordColumns, 1, 2, 3, 4, 5, 6, 7, 8, 9)
	for _, rec := range records {
		change := "-"
		if rec.PreClose > 0 {
			change = SignedPercent(rec.PctChange)
		}
		turnover := "-"
		if rec.Turnover > 0 {
			turnover = fmt.Sprintf("%.2f%%", rec.Turnover)
		}
		t.Row(
			rec.Date.Format(model.DateLayout),
			Price(rec.Open), Price(rec.High), Price(rec.Low), Price(rec.Close), Price(rec.PreClose),
			Volume(rec.Volume), Amount(rec.Amount), turnover, change,
		)
	}
	r.print(t)
}

// KlineStat renders the summary panel shown under a k-line table.
func (r *Renderer) KlineStat(st *model.SymbolStat) {
	t := newTable([]string{"Metric", "Value"}, 1)
	t.Row("Trading days", strconv.Itoa(st.TradingDays))
	t.Row("Up / Down / Flat", fmt.Sprintf("%d / %d / %d", st.UpDays, st.DownDays, st.FlatDays))
	t.Row("First close", Price(st.FirstClose))
	t.Row("Last close", Price(st.LastClose))
	t.Row("Price change", fmt.Sprintf("%+.2f", st.PriceChange))
	t.Row("Total return", Percent(st.TotalReturn))
	t.Row("Period high / low", Price(st.PeriodHigh)+" / "+Price(st.PeriodLow))
	t.Row("Range position", Percent(st.RangePosition))
	t.Row("Volatility (annual)", Percent(st.Volatility))
	t.Row("Max drawdown", Percent(st.MaxDrawdown))
	t.Row("Avg / max volume", Volume(st.AvgVolume)+" / "+Volume(st.MaxVolume))
	if st.Investment.IsPositive() {
		t.Row("Investment", Money(st.Investment))
		t.Row("Shares bought", st.SharesBought.StringFixed(2))
		t.Row("Ending value", Money(st.EndingValue))
		t.Row("Profit/Loss", Money(st.ProfitLoss))
	}
	r.title("Statistics")
	r.print(t)
}

// Info renders the basic listing record of a company.
func (r *Renderer) Info(info *model.CompanyInfo) {
	r.title("%s %s", info.Symbol, info.Name)
	out := info.OutDate
	if out == "" {
		out = "-"
	}
	t := newTable([]string{"Field", "Value"})
	t.Row("Code", info.Symbol.String())
	t.Row("Name", info.Name)
	t.Row("IPO date", info.IPODate)
	t.Row("Delisting date", out)
	t.Row("Type", info.TypeLabel())
	t.Row("Status", info.StatusLabel())
	if info.Industry != "" {
		t.Row("Industry", info.Industry)
	}
	if info.IndustryClassification != "" {
		t.Row("Classification", info.IndustryClassification)
	}
	r.print(t)
}

// Quotes renders one row per quote.
func (r *Renderer) Quotes(quotes []model.Quote) {
	t := newTable([]string{"Symbol", "Name", "Price", "Change", "Open", "High", "Low", "Prev Close", "Volume", "Time"}, 2, 3, 4, 5, 6, 7, 8)
	for _, q := range quotes {
		at := "-"
		if !q.Time.IsZero() {
			at = q.Time.Format("2006-01-02 15:04:05")
		}
		t.Row(
			q.Symbol.String(), q.Name, Price(q.Price),
			fmt.Sprintf("%+.2f (%s)", q.Change, SignedPercent(q.ChangePct)),
			Price(q.Open), Price(q.High), Price(q.Low), Price(q.PrevClose),
			Volume(q.Volume), at,
		)
	}
	r.print(t)
}

// Finance renders the three statements of a fiscal quarter.
func (r *Renderer) Finance(rec *model.FinancialRecord) {
	r.title("%s financial statements %s", rec.Symbol, rec.Period())
	if rec.Empty() {
		fmt.Fprintln(r.Out, "no financial data for this period")
		return
	}
	sections := []struct {
		name    string
		metrics []model.Metric
	}{
		{"Profitability", rec.Profit},
		{"Balance sheet", rec.Balance},
		{"Cash flow", rec.CashFlow},
	}
	for _, s := range sections {
		if len(s.metrics) == 0 {
			continue
		}
		t := newTable([]string{s.name, "Value"}, 1)
		for _, m := range s.metrics {
			t.Row(m.Name, metricValue(m))
		}
		r.print(t)
	}
}

func metricValue(m model.Metric) string {
	if m.Value == nil {
		return "-"
	}
	v := *m.Value
	if v >= 1e4 || v <= -1e4 {
		return Amount(v)
	}
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// Constituents renders the members of an index followed by their distribution
// across exchanges.
func (r *Renderer) Constituents(index model.Index, members []model.Constituent) {
	r.title("%s (%s) constituents: %d", index.Name, index.Code, len(members))
	t := newTable([]string{"#", "Code", "Name", "Updated"}, 0)
	for i, m := range members {
		t.Row(strconv.Itoa(i+1), m.Symbol.String(), m.Name, m.UpdateDate)
	}
	r.print(t)

	dist := ExchangeDistribution(members)
	d := newTable([]string{"Exchange", "Count", "Share"}, 1, 2)
	for _, ex := range []symbol.Exchange{symbol.Shanghai, symbol.Shenzhen} {
		share := 0.0
		if len(members) > 0 {
			share = float64(dist[ex]) / float64(len(members))
		}
		d.Row(string(ex), strconv.Itoa(dist[ex]), Percent(share))
	}
	r.print(d)
}

// ExchangeDistribution counts members per exchange.
func ExchangeDistribution(members []model.Constituent) map[symbol.Exchange]int {
	out := make(map[symbol.Exchange]int)
	for _, m := range members {
		out[m.Symbol.Exchange]++
	}
	return out
}

// Links prints quote page links for a symbol.
func (r *Renderer) Links(sym symbol.Symbol) {
	for _, l := range sym.Links() {
		fmt.Fprintf(r.Out, "  %s: %s\n", l.Name, l.URL)
	}
}

// Printf writes a plain line.
func (r *Renderer) Printf(format string, args ...any) {
	fmt.Fprintf(r.Out, format, args...)
}
