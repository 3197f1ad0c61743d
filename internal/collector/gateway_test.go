package collector

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"StockLens/internal/model"
	"StockLens/internal/symbol"
)

func newGatewayServer(t *testing.T) (*httptest.Server, *int) {
	t.Helper()
	logouts := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/login", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			APIKey string `json:"api_key"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.APIKey != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error_msg":"bad key"}`))
			return
		}
		w.Write([]byte(`{"token":"tok-1"}`))
	})
	auth := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer tok-1" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			next(w, r)
		}
	}
	mux.HandleFunc("/api/v1/logout", auth(func(w http.ResponseWriter, r *http.Request) {
		logouts++
		w.Write([]byte(`{}`))
	}))
	mux.HandleFunc("/api/v1/daily", auth(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("symbol") != "sh.600000" || q.Get("start") != "2024-06-01" || q.Get("frequency") != "d" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		// deliberately out of order
		w.Write([]byte(`[
			{"date":"2024-06-04","open":7.1,"high":7.3,"low":7.0,"close":7.2,"preclose":7.1,"volume":1200,"amount":8640,"turn":0.2,"pctChg":1.4},
			{"date":"2024-06-03","open":7.0,"high":7.2,"low":6.9,"close":7.1,"preclose":7.0,"volume":1000,"amount":7100,"turn":0.1,"pctChg":1.43}
		]`))
	}))
	mux.HandleFunc("/api/v1/stock/basic", auth(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"code":"sh.600000","code_name":"SPDB","ipoDate":"1999-11-10","outDate":"","type":"1","status":"1","industry":"J66"}]`))
	}))
	mux.HandleFunc("/api/v1/finance", auth(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"profit":[{"name":"roeAvg","value":0.08},{"name":"npMargin","value":null}],"balance":[],"cash_flow":[{"name":"CFOToNP","value":1.2}]}`))
	}))
	mux.HandleFunc("/api/v1/index/constituents", auth(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("index") != "sz50" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`[{"updateDate":"2024-06-17","code":"sh.600000","code_name":"SPDB"},{"updateDate":"2024-06-17","code":"sh.601398","code_name":"ICBC"}]`))
	}))
	mux.HandleFunc("/api/v1/quote", auth(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"code":"sh.600000","name":"SPDB","price":7.7,"prev_close":7.0,"open":7.1,"high":7.8,"low":7.0,"volume":5000,"timestamp":1718607600}]`))
	}))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &logouts
}

func TestGatewayClient_Session(t *testing.T) {
	srv, logouts := newGatewayServer(t)
	g := NewGatewayClient(srv.URL+"/", "secret", "")
	sym := symbol.MustResolve("sh.600000")
	ctx := context.Background()

	err := WithSession(ctx, g, func(s Session) error {
		start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.Local)
		rng, _ := model.NewDateRange(start, start.AddDate(0, 0, 10))
		bars, err := s.QueryDaily(ctx, sym, rng, model.FreqDaily)
		if err != nil {
			t.Fatalf("QueryDaily: %v", err)
		}
		if len(bars) != 2 || bars[0].Date.Day() != 3 || bars[1].Close != 7.2 || bars[0].Symbol != sym {
			t.Errorf("unexpected bars: %+v", bars)
		}

		info, err := s.QueryInfo(ctx, sym)
		if err != nil || info.Name != "SPDB" || info.IPODate != "1999-11-10" {
			t.Errorf("unexpected info %+v (%v)", info, err)
		}

		fin, err := s.QueryFinance(ctx, sym, 2023, 4)
		if err != nil {
			t.Fatalf("QueryFinance: %v", err)
		}
		if len(fin.Profit) != 2 || fin.Profit[1].Value != nil || *fin.Profit[0].Value != 0.08 || len(fin.CashFlow) != 1 {
			t.Errorf("unexpected finance: %+v", fin)
		}

		ix, _ := model.LookupIndex("sz50")
		cons, err := s.QueryIndexConstituents(ctx, ix)
		if err != nil || len(cons) != 2 || cons[1].Symbol.String() != "sh.601398" {
			t.Errorf("unexpected constituents %+v (%v)", cons, err)
		}

		quotes, err := s.QueryRealtime(ctx, []symbol.Symbol{sym})
		if err != nil || len(quotes) != 1 {
			t.Fatalf("unexpected quotes %+v (%v)", quotes, err)
		}
		if q := quotes[0]; q.ChangePct < 9.99 || q.ChangePct > 10.01 {
			t.Errorf("expected ~10%% change, got %v", q.ChangePct)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if *logouts != 1 {
		t.Errorf("expected 1 logout, got %d", *logouts)
	}
}

func TestGatewayClient_LoginRejected(t *testing.T) {
	srv, _ := newGatewayServer(t)
	g := NewGatewayClient(srv.URL, "wrong", "")
	_, err := g.Login(context.Background())
	if !errors.Is(err, ErrDataService) {
		t.Fatalf("expected ErrDataService, got %v", err)
	}
}

func TestGatewayClient_HTTPErrorIsDataServiceError(t *testing.T) {
	srv, _ := newGatewayServer(t)
	g := NewGatewayClient(srv.URL, "secret", "")
	sess, err := g.Login(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	ix := model.Index{ID: "nope"}
	_, err = sess.QueryIndexConstituents(context.Background(), ix)
	var dse *DataServiceError
	if !errors.As(err, &dse) || dse.Op != "query index" {
		t.Errorf("expected query index DataServiceError, got %v", err)
	}
}
