package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/simplifiedchinese"

	"StockLens/internal/model"
	"StockLens/internal/symbol"
)

const (
	tencentKlineURL = "http://web.ifzq.gtimg.cn/appstock/app/fqkline/get"
	sinaQuoteURL    = "http://hq.sinajs.cn/list="
	sinaReferer     = "https://finance.sina.com.cn"

	// maxKlineBars caps one fqkline request.
	maxKlineBars = 640
)

var chinaTime = time.FixedZone("CST", 8*3600)

// tencentFields names the numeric columns of an fqkline row after the date.
var tencentFields = [5]string{"open", "close", "high", "low", "volume"}

// PublicClient uses the unauthenticated Tencent k-line and Sina quote endpoints.
// It has no session state; company info, finance and index queries are unsupported.
type PublicClient struct {
	KlineURL string
	QuoteURL string
	Client   *http.Client
}

// NewPublicClient creates a public endpoint client with optional proxy support.
func NewPublicClient(proxyURL string) *PublicClient {
	return &PublicClient{
		KlineURL: tencentKlineURL,
		QuoteURL: sinaQuoteURL,
		Client:   newHTTPClient(proxyURL),
	}
}

func (p *PublicClient) Name() string { return "public" }

func (p *PublicClient) Login(_ context.Context) (Session, error) {
	return &publicSession{p: p}, nil
}

type publicSession struct {
	p *PublicClient
}

func (s *publicSession) get(ctx context.Context, u, op string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, serviceError(s.p.Name(), op, err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Referer", sinaReferer)
	resp, err := s.p.Client.Do(req)
	if err != nil {
		return nil, serviceError(s.p.Name(), op, err)
	}
	body, err := readBody(resp)
	if err != nil {
		return nil, serviceError(s.p.Name(), op, err)
	}
	return body, nil
}

func tencentPeriod(freq model.Frequency) (string, bool) {
	switch freq {
	case model.FreqDaily, "":
		return "day", true
	case model.FreqWeekly:
		return "week", true
	case model.FreqMonth:
		return "month", true
	}
	return "", false
}

// QueryDaily fetches forward-adjusted bars. The endpoint reports volume in
// lots of 100 shares.
func (s *publicSession) QueryDaily(ctx context.Context, sym symbol.Symbol, rng model.DateRange, freq model.Frequency) ([]model.DailyRecord, error) {
	period, ok := tencentPeriod(freq)
	if !ok {
		return nil, serviceError(s.p.Name(), "query daily", fmt.Errorf("%w: %s bars", ErrUnsupported, freq.Label()))
	}
	code := string(sym.Exchange) + sym.Code
	u := fmt.Sprintf("%s?param=%s,%s,%s,%s,%d,qfq", s.p.KlineURL, code, period,
		rng.Start.Format(model.DateLayout), rng.End.Format(model.DateLayout), maxKlineBars)
	body, err := s.get(ctx, u, "query daily")
	if err != nil {
		return nil, err
	}
	bars, err := parseTencentKline(body, code, period, sym)
	if err != nil {
		return nil, serviceError(s.p.Name(), "query daily", err)
	}
	if len(bars) >= maxKlineBars {
		log.Printf("[WARN] %s %s: got %d bars, the request limit; older bars in %s may be missing",
			sym, period, len(bars), rng)
	}
	kept := bars[:0]
	for _, b := range bars {
		if rng.Contains(b.Date) {
			kept = append(kept, b)
		}
	}
	return kept, nil
}

func parseTencentKline(body []byte, code, period string, sym symbol.Symbol) ([]model.DailyRecord, error) {
	var result struct {
		Code int                                   `json:"code"`
		Msg  string                                `json:"msg"`
		Data map[string]map[string]json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode kline: %w", err)
	}
	if result.Code != 0 {
		return nil, fmt.Errorf("api error: code %d %s", result.Code, result.Msg)
	}
	series, ok := result.Data[code]
	if !ok {
		return nil, fmt.Errorf("no kline data for %s", code)
	}
	raw, ok := series["qfq"+period]
	if !ok {
		raw = series[period]
	}
	var rows [][]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &rows); err != nil {
			return nil, fmt.Errorf("decode %s rows: %w", period, err)
		}
	}

	bars := make([]model.DailyRecord, 0, len(rows))
	for _, row := range rows {
		if len(row) < 6 {
			continue
		}
		dateStr, _ := row[0].(string)
		d, err := time.ParseInLocation(model.DateLayout, dateStr, time.Local)
		if err != nil {
			continue
		}
		var v [5]float64
		for i := range v {
			f, err := strconv.ParseFloat(fmt.Sprint(row[i+1]), 64)
			if err != nil {
				return nil, fmt.Errorf("bar %s: invalid %s %v", dateStr, tencentFields[i], row[i+1])
			}
			v[i] = f
		}
		bars = append(bars, model.DailyRecord{
			Date:   d,
			Symbol: sym,
			Open:   v[0],
			Close:  v[1],
			High:   v[2],
			Low:    v[3],
			Volume: v[4] * 100,
		})
	}
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	for i := 1; i < len(bars); i++ {
		prev := bars[i-1].Close
		bars[i].PreClose = prev
		if prev > 0 {
			bars[i].PctChange = (bars[i].Close/prev - 1) * 100
		}
	}
	return bars, nil
}

func (s *publicSession) QueryInfo(context.Context, symbol.Symbol) (*model.CompanyInfo, error) {
	return nil, serviceError(s.p.Name(), "query info", ErrUnsupported)
}

func (s *publicSession) QueryFinance(context.Context, symbol.Symbol, int, int) (*model.FinancialRecord, error) {
	return nil, serviceError(s.p.Name(), "query finance", ErrUnsupported)
}

func (s *publicSession) QueryIndexConstituents(context.Context, model.Index) ([]model.Constituent, error) {
	return nil, serviceError(s.p.Name(), "query index", ErrUnsupported)
}

func (s *publicSession) QueryRealtime(ctx context.Context, syms []symbol.Symbol) ([]model.Quote, error) {
	if len(syms) == 0 {
		return nil, nil
	}
	codes := make([]string, len(syms))
	for i, sym := range syms {
		codes[i] = string(sym.Exchange) + sym.Code
	}
	body, err := s.get(ctx, s.p.QuoteURL+strings.Join(codes, ","), "query realtime")
	if err != nil {
		return nil, err
	}
	utf8Body, err := simplifiedchinese.GBK.NewDecoder().Bytes(body)
	if err != nil {
		return nil, serviceError(s.p.Name(), "query realtime", fmt.Errorf("decode gbk: %w", err))
	}
	byCode := parseSinaQuotes(string(utf8Body))

	quotes := make([]model.Quote, 0, len(syms))
	for i, sym := range syms {
		fields, ok := byCode[codes[i]]
		if !ok {
			log.Printf("[WARN] public: no quote returned for %s", sym)
			continue
		}
		quotes = append(quotes, sinaQuote(sym, fields))
	}
	if len(quotes) == 0 {
		return nil, serviceError(s.p.Name(), "query realtime", fmt.Errorf("no quotes for %s", strings.Join(codes, ",")))
	}
	return quotes, nil
}

func (s *publicSession) Logout(context.Context) error { return nil }

// parseSinaQuotes splits lines of the form
// var hq_str_sh600000="name,open,prevclose,price,high,low,...";
// into their comma separated fields, keyed by exchange code.
func parseSinaQuotes(data string) map[string][]string {
	out := make(map[string][]string)
	for _, line := range strings.Split(data, "\n") {
		name, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		code := strings.TrimPrefix(strings.TrimSpace(name), "var hq_str_")
		start := strings.Index(value, "\"")
		end := strings.LastIndex(value, "\"")
		if start == -1 || end <= start+1 {
			continue
		}
		fields := strings.Split(value[start+1:end], ",")
		if len(fields) < 32 {
			continue
		}
		out[code] = fields
	}
	return out
}

func sinaQuote(sym symbol.Symbol, fields []string) model.Quote {
	f := func(i int) float64 {
		v, _ := strconv.ParseFloat(fields[i], 64)
		return v
	}
	at, err := time.ParseInLocation("2006-01-02 15:04:05", fields[30]+" "+fields[31], chinaTime)
	if err != nil {
		at = time.Now()
	}
	return newQuote(sym, fields[0], f(3), f(2), f(1), f(4), f(5), f(8), at)
}
