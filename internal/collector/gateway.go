package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"StockLens/internal/model"
	"StockLens/internal/symbol"
)

// GatewayClient talks to a REST market data gateway that issues session tokens.
type GatewayClient struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewGatewayClient creates a gateway client with optional proxy support.
func NewGatewayClient(baseURL, apiKey, proxyURL string) *GatewayClient {
	return &GatewayClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Client:  newHTTPClient(proxyURL),
	}
}

func (g *GatewayClient) Name() string { return "gateway" }

// Login exchanges the API key for a session token.
func (g *GatewayClient) Login(ctx context.Context) (Session, error) {
	payload, _ := json.Marshal(map[string]string{"api_key": g.APIKey})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.BaseURL+"/api/v1/login", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := g.Client.Do(req)
	if err != nil {
		return nil, serviceError(g.Name(), "login", err)
	}
	body, err := readBody(resp)
	if err != nil {
		return nil, serviceError(g.Name(), "login", err)
	}
	var result struct {
		Token string `json:"token"`
		Msg   string `json:"error_msg"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, serviceError(g.Name(), "login", fmt.Errorf("decode: %w", err))
	}
	if result.Token == "" {
		return nil, serviceError(g.Name(), "login", fmt.Errorf("no token issued: %s", result.Msg))
	}
	return &gatewaySession{g: g, token: result.Token}, nil
}

type gatewaySession struct {
	g     *GatewayClient
	token string
}

func (s *gatewaySession) do(ctx context.Context, method, path string, query url.Values, op string, out any) error {
	u := s.g.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return serviceError(s.g.Name(), op, err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	resp, err := s.g.Client.Do(req)
	if err != nil {
		return serviceError(s.g.Name(), op, err)
	}
	body, err := readBody(resp)
	if err != nil {
		return serviceError(s.g.Name(), op, err)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return serviceError(s.g.Name(), op, fmt.Errorf("decode: %w", err))
	}
	return nil
}

type gwBar struct {
	Date      string  `json:"date"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	PreClose  float64 `json:"preclose"`
	Volume    float64 `json:"volume"`
	Amount    float64 `json:"amount"`
	Turnover  float64 `json:"turn"`
	PctChange float64 `json:"pctChg"`
}

func (s *gatewaySession) QueryDaily(ctx context.Context, sym symbol.Symbol, rng model.DateRange, freq model.Frequency) ([]model.DailyRecord, error) {
	q := url.Values{}
	q.Set("symbol", sym.String())
	q.Set("start", rng.Start.Format(model.DateLayout))
	q.Set("end", rng.End.Format(model.DateLayout))
	q.Set("frequency", string(freq))
	var raw []gwBar
	if err := s.do(ctx, http.MethodGet, "/api/v1/daily", q, "query daily", &raw); err != nil {
		return nil, err
	}
	bars := make([]model.DailyRecord, 0, len(raw))
	for _, b := range raw {
		d, err := time.ParseInLocation(model.DateLayout, b.Date, time.Local)
		if err != nil {
			return nil, serviceError(s.g.Name(), "query daily", fmt.Errorf("bad date %q: %w", b.Date, err))
		}
		bars = append(bars, model.DailyRecord{
			Date: d, Symbol: sym,
			Open: b.Open, High: b.High, Low: b.Low, Close: b.Close, PreClose: b.PreClose,
			Volume: b.Volume, Amount: b.Amount, Turnover: b.Turnover, PctChange: b.PctChange,
		})
	}
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars, nil
}

func (s *gatewaySession) QueryInfo(ctx context.Context, sym symbol.Symbol) (*model.CompanyInfo, error) {
	var raw []struct {
		Code                   string `json:"code"`
		Name                   string `json:"code_name"`
		IPODate                string `json:"ipoDate"`
		OutDate                string `json:"outDate"`
		Type                   string `json:"type"`
		Status                 string `json:"status"`
		Industry               string `json:"industry"`
		IndustryClassification string `json:"industryClassification"`
	}
	q := url.Values{"symbol": {sym.String()}}
	if err := s.do(ctx, http.MethodGet, "/api/v1/stock/basic", q, "query info", &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, serviceError(s.g.Name(), "query info", fmt.Errorf("no basic info for %s", sym))
	}
	r := raw[0]
	return &model.CompanyInfo{
		Symbol: sym, Name: r.Name, IPODate: r.IPODate, OutDate: r.OutDate,
		Type: r.Type, Status: r.Status, Industry: r.Industry,
		IndustryClassification: r.IndustryClassification,
	}, nil
}

type gwMetric struct {
	Name  string   `json:"name"`
	Value *float64 `json:"value"`
}

func toMetrics(raw []gwMetric) []model.Metric {
	out := make([]model.Metric, len(raw))
	for i, m := range raw {
		out[i] = model.Metric{Name: m.Name, Value: m.Value}
	}
	return out
}

func (s *gatewaySession) QueryFinance(ctx context.Context, sym symbol.Symbol, year, quarter int) (*model.FinancialRecord, error) {
	var raw struct {
		Profit   []gwMetric `json:"profit"`
		Balance  []gwMetric `json:"balance"`
		CashFlow []gwMetric `json:"cash_flow"`
	}
	q := url.Values{}
	q.Set("symbol", sym.String())
	q.Set("year", strconv.Itoa(year))
	q.Set("quarter", strconv.Itoa(quarter))
	if err := s.do(ctx, http.MethodGet, "/api/v1/finance", q, "query finance", &raw); err != nil {
		return nil, err
	}
	return &model.FinancialRecord{
		Symbol: sym, Year: year, Quarter: quarter,
		Profit:   toMetrics(raw.Profit),
		Balance:  toMetrics(raw.Balance),
		CashFlow: toMetrics(raw.CashFlow),
	}, nil
}

func (s *gatewaySession) QueryIndexConstituents(ctx context.Context, index model.Index) ([]model.Constituent, error) {
	var raw []struct {
		UpdateDate string `json:"updateDate"`
		Code       string `json:"code"`
		Name       string `json:"code_name"`
	}
	q := url.Values{"index": {index.ID}}
	if err := s.do(ctx, http.MethodGet, "/api/v1/index/constituents", q, "query index", &raw); err != nil {
		return nil, err
	}
	out := make([]model.Constituent, 0, len(raw))
	for _, r := range raw {
		sym, err := symbol.Resolve(r.Code)
		if err != nil {
			return nil, serviceError(s.g.Name(), "query index", err)
		}
		out = append(out, model.Constituent{UpdateDate: r.UpdateDate, Symbol: sym, Name: r.Name})
	}
	return out, nil
}

func (s *gatewaySession) QueryRealtime(ctx context.Context, syms []symbol.Symbol) ([]model.Quote, error) {
	codes := make([]string, len(syms))
	for i, sym := range syms {
		codes[i] = sym.String()
	}
	var raw []struct {
		Code      string  `json:"code"`
		Name      string  `json:"name"`
		Price     float64 `json:"price"`
		PrevClose float64 `json:"prev_close"`
		Open      float64 `json:"open"`
		High      float64 `json:"high"`
		Low       float64 `json:"low"`
		Volume    float64 `json:"volume"`
		Timestamp int64   `json:"timestamp"`
	}
	q := url.Values{"symbols": {strings.Join(codes, ",")}}
	if err := s.do(ctx, http.MethodGet, "/api/v1/quote", q, "query realtime", &raw); err != nil {
		return nil, err
	}
	quotes := make([]model.Quote, 0, len(raw))
	for _, r := range raw {
		sym, err := symbol.Resolve(r.Code)
		if err != nil {
			return nil, serviceError(s.g.Name(), "query realtime", err)
		}
		quotes = append(quotes, newQuote(sym, r.Name, r.Price, r.PrevClose, r.Open, r.High, r.Low, r.Volume, time.Unix(r.Timestamp, 0)))
	}
	return quotes, nil
}

func (s *gatewaySession) Logout(ctx context.Context) error {
	return s.do(ctx, http.MethodPost, "/api/v1/logout", nil, "logout", nil)
}

func newQuote(sym symbol.Symbol, name string, price, prevClose, open, high, low, volume float64, at time.Time) model.Quote {
	q := model.Quote{
		Symbol: sym, Name: name, Price: price, PrevClose: prevClose,
		Open: open, High: high, Low: low, Volume: volume, Time: at,
	}
	if prevClose > 0 {
		q.Change = price - prevClose
		q.ChangePct = q.Change / prevClose * 100
	}
	return q
}
