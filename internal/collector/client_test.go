package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"StockLens/internal/model"
	"StockLens/internal/symbol"
)

func TestWithSession_LogoutAfterFailure(t *testing.T) {
	mock := &MockClient{}
	want := errors.New("boom")
	err := WithSession(context.Background(), mock, func(Session) error { return want })
	if !errors.Is(err, want) {
		t.Fatalf("expected fn error, got %v", err)
	}
	if mock.Logins != 1 || mock.Logouts != 1 {
		t.Errorf("expected 1 login and 1 logout, got %d/%d", mock.Logins, mock.Logouts)
	}
}

func TestWithSession_LoginFailure(t *testing.T) {
	mock := &MockClient{LoginErr: errors.New("connection refused")}
	called := false
	err := WithSession(context.Background(), mock, func(Session) error {
		called = true
		return nil
	})
	if !errors.Is(err, ErrDataService) {
		t.Fatalf("expected ErrDataService, got %v", err)
	}
	var dse *DataServiceError
	if !errors.As(err, &dse) || dse.Op != "login" || dse.Provider != "mock" {
		t.Errorf("unexpected error detail: %#v", err)
	}
	if called {
		t.Error("fn must not run without a session")
	}
	if mock.Logouts != 0 {
		t.Errorf("expected no logout, got %d", mock.Logouts)
	}
}

func TestWithSession_CancelledContextStillLogsOut(t *testing.T) {
	mock := &MockClient{}
	ctx, cancel := context.WithCancel(context.Background())
	_ = WithSession(ctx, mock, func(Session) error {
		cancel()
		return ctx.Err()
	})
	if mock.Logouts != 1 {
		t.Errorf("expected logout after cancel, got %d", mock.Logouts)
	}
}

func TestMockClient_FailureInjection(t *testing.T) {
	bad := symbol.MustResolve("sz.000002")
	mock := &MockClient{Fail: map[string]error{bad.String(): errors.New("no data")}}
	rng := model.LastDays(30, time.Date(2024, 6, 28, 0, 0, 0, 0, time.Local))
	err := WithSession(context.Background(), mock, func(s Session) error {
		if _, err := s.QueryDaily(context.Background(), bad, rng, model.FreqDaily); !errors.Is(err, ErrDataService) {
			t.Errorf("expected ErrDataService, got %v", err)
		}
		bars, err := s.QueryDaily(context.Background(), symbol.MustResolve("sh.600000"), rng, model.FreqDaily)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(bars) < 20 {
			t.Errorf("expected about 21 weekday bars, got %d", len(bars))
		}
		for i := 1; i < len(bars); i++ {
			if !bars[i].Date.After(bars[i-1].Date) {
				t.Fatalf("bars not ascending at %d", i)
			}
			if wd := bars[i].Date.Weekday(); wd == time.Saturday || wd == time.Sunday {
				t.Errorf("weekend bar on %s", bars[i].Date.Format(model.DateLayout))
			}
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestMockClient_Deterministic(t *testing.T) {
	rng := model.LastDays(60, time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local))
	sym := symbol.MustResolve("600036")
	a := generateMockBars(sym, rng)
	b := generateMockBars(sym, rng)
	if len(a) != len(b) {
		t.Fatalf("length differs: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("bar %d differs", i)
		}
	}
}

func TestAggregateBars(t *testing.T) {
	day := func(y int, m time.Month, d int, close float64) model.DailyRecord {
		return model.DailyRecord{Date: time.Date(y, m, d, 0, 0, 0, 0, time.Local), Open: close, High: close + 1, Low: close - 1, Close: close, Volume: 10}
	}
	daily := []model.DailyRecord{
		day(2024, 1, 29, 10), day(2024, 1, 30, 12), day(2024, 1, 31, 11),
		day(2024, 2, 1, 13), day(2024, 2, 2, 9),
		day(2024, 2, 5, 14),
	}

	weekly := aggregateBars(daily, model.FreqWeekly)
	if len(weekly) != 2 {
		t.Fatalf("expected 2 weekly bars, got %d", len(weekly))
	}
	w := weekly[0]
	if w.Open != 10 || w.Close != 9 || w.High != 14 || w.Low != 8 || w.Volume != 50 {
		t.Errorf("unexpected first week: %+v", w)
	}
	if w.Date.Day() != 2 {
		t.Errorf("expected week dated on its last day, got %s", w.Date.Format(model.DateLayout))
	}

	monthly := aggregateBars(daily, model.FreqMonth)
	if len(monthly) != 2 || monthly[0].Close != 11 || monthly[1].Open != 13 {
		t.Errorf("unexpected monthly bars: %+v", monthly)
	}
}
