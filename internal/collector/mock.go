package collector

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"StockLens/internal/model"
	"StockLens/internal/symbol"
)

// MockClient serves generated data for development and tests. Daily, Info and
// Fail override the generated output per canonical symbol string.
type MockClient struct {
	Daily    map[string][]model.DailyRecord
	Info     map[string]*model.CompanyInfo
	Fail     map[string]error
	LoginErr error

	Logins  int
	Logouts int
}

func (m *MockClient) Name() string { return "mock" }

func (m *MockClient) Login(_ context.Context) (Session, error) {
	if m.LoginErr != nil {
		return nil, m.LoginErr
	}
	m.Logins++
	return &mockSession{client: m}, nil
}

type mockSession struct {
	client *MockClient
	closed bool
}

func (s *mockSession) check(sym symbol.Symbol, op string) error {
	if s.closed {
		return serviceError("mock", op, fmt.Errorf("session closed"))
	}
	if err, ok := s.client.Fail[sym.String()]; ok {
		return serviceError("mock", op, err)
	}
	return nil
}

func (s *mockSession) QueryDaily(_ context.Context, sym symbol.Symbol, rng model.DateRange, freq model.Frequency) ([]model.DailyRecord, error) {
	if err := s.check(sym, "query daily"); err != nil {
		return nil, err
	}
	if fixed, ok := s.client.Daily[sym.String()]; ok {
		return fixed, nil
	}
	bars := generateMockBars(sym, rng)
	if freq == model.FreqWeekly || freq == model.FreqMonth {
		bars = aggregateBars(bars, freq)
	}
	return bars, nil
}

func (s *mockSession) QueryInfo(_ context.Context, sym symbol.Symbol) (*model.CompanyInfo, error) {
	if err := s.check(sym, "query info"); err != nil {
		return nil, err
	}
	if info, ok := s.client.Info[sym.String()]; ok {
		return info, nil
	}
	return &model.CompanyInfo{
		Symbol:   sym,
		Name:     "Mock " + sym.Code,
		IPODate:  "2000-01-04",
		Type:     "1",
		Status:   "1",
		Industry: "J66 Monetary Financial Services",
	}, nil
}

func (s *mockSession) QueryFinance(_ context.Context, sym symbol.Symbol, year, quarter int) (*model.FinancialRecord, error) {
	if err := s.check(sym, "query finance"); err != nil {
		return nil, err
	}
	base := mockBasePrice(sym)
	metric := func(name string, v float64) model.Metric { return model.Metric{Name: name, Value: &v} }
	return &model.FinancialRecord{
		Symbol:  sym,
		Year:    year,
		Quarter: quarter,
		Profit: []model.Metric{
			metric("roeAvg", base/200),
			metric("npMargin", base/100),
			metric("netProfit", base*1e8),
			metric("epsTTM", base/10),
		},
		Balance: []model.Metric{
			metric("currentRatio", 1.2),
			metric("liabilityToAsset", 0.55),
			{Name: "quickRatio"},
		},
		CashFlow: []model.Metric{
			metric("CFOToNP", 1.05),
			metric("CFOToOR", 0.18),
		},
	}, nil
}

func (s *mockSession) QueryIndexConstituents(_ context.Context, index model.Index) ([]model.Constituent, error) {
	if s.closed {
		return nil, serviceError("mock", "query index", fmt.Errorf("session closed"))
	}
	codes := []string{"sh.600000", "sh.600036", "sh.601398", "sz.000001", "sz.000002", "sz.300750"}
	out := make([]model.Constituent, 0, len(codes))
	for _, c := range codes {
		sym := symbol.MustResolve(c)
		out = append(out, model.Constituent{UpdateDate: "2024-06-17", Symbol: sym, Name: index.Name + " " + sym.Code})
	}
	return out, nil
}

func (s *mockSession) QueryRealtime(_ context.Context, syms []symbol.Symbol) ([]model.Quote, error) {
	quotes := make([]model.Quote, 0, len(syms))
	for _, sym := range syms {
		if err := s.check(sym, "query realtime"); err != nil {
			return nil, err
		}
		base := mockBasePrice(sym)
		price := base * 1.012
		quotes = append(quotes, model.Quote{
			Symbol:    sym,
			Name:      "Mock " + sym.Code,
			Price:     price,
			PrevClose: base,
			Open:      base * 1.001,
			High:      base * 1.02,
			Low:       base * 0.995,
			Volume:    1000000,
			Change:    price - base,
			ChangePct: (price - base) / base * 100,
		})
	}
	return quotes, nil
}

func (s *mockSession) Logout(_ context.Context) error {
	if !s.closed {
		s.closed = true
		s.client.Logouts++
	}
	return nil
}

// mockBasePrice derives a stable price in 5~105 from the code.
func mockBasePrice(sym symbol.Symbol) float64 {
	n, _ := strconv.Atoi(sym.Code)
	return 5 + float64(n%1000)/10
}

// generateMockBars returns one bar per weekday in rng following a fixed zig-zag.
func generateMockBars(sym symbol.Symbol, rng model.DateRange) []model.DailyRecord {
	base := mockBasePrice(sym)
	var bars []model.DailyRecord
	prev := base
	i := 0
	for d := rng.Start; !d.After(rng.End); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		p := base * (1 + float64(i%7-3)*0.004 + float64(i)*0.001)
		bars = append(bars, model.DailyRecord{
			Date:      d,
			Symbol:    sym,
			Open:      prev,
			High:      max(p, prev) * 1.005,
			Low:       min(p, prev) * 0.995,
			Close:     p,
			PreClose:  prev,
			Volume:    1000000 + float64(i%5)*100000,
			Amount:    p * (1000000 + float64(i%5)*100000),
			Turnover:  0.35,
			PctChange: (p/prev - 1) * 100,
		})
		prev = p
		i++
	}
	return bars
}
