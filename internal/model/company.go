package model

import (
	"fmt"
	"time"

	"StockLens/internal/symbol"
)

// CompanyInfo is the basic listing information of a security.
type CompanyInfo struct {
	Symbol                 symbol.Symbol
	Name                   string
	IPODate                string
	OutDate                string // empty while listed
	Type                   string // "1" stock, "2" B share, "3" depositary receipt
	Status                 string // "1" trading, "0" suspended
	Industry               string
	IndustryClassification string
}

// TypeLabel maps the security type code to a readable label.
func (c *CompanyInfo) TypeLabel() string {
	switch c.Type {
	case "1":
		return "Stock"
	case "2":
		return "B Share"
	case "3":
		return "Depositary Receipt"
	case "":
		return "-"
	default:
		return c.Type
	}
}

// StatusLabel maps the trading status code to a readable label.
func (c *CompanyInfo) StatusLabel() string {
	switch c.Status {
	case "1":
		return "Trading"
	case "0":
		return "Suspended"
	case "":
		return "-"
	default:
		return c.Status
	}
}

// Metric is one line of a financial statement. Value is nil when the provider
// returned no figure.
type Metric struct {
	Name  string
	Value *float64
}

// FinancialRecord groups the quarterly statements of one symbol.
type FinancialRecord struct {
	Symbol   symbol.Symbol
	Year     int
	Quarter  int
	Profit   []Metric
	Balance  []Metric
	CashFlow []Metric
}

// Empty reports whether no statement carries any metric.
func (f *FinancialRecord) Empty() bool {
	return f == nil || (len(f.Profit) == 0 && len(f.Balance) == 0 && len(f.CashFlow) == 0)
}

// Period formats the fiscal period as 2023Q4.
func (f *FinancialRecord) Period() string {
	return fmt.Sprintf("%dQ%d", f.Year, f.Quarter)
}

// Quote is a realtime (or provider-defined latest) price snapshot.
type Quote struct {
	Symbol    symbol.Symbol
	Name      string
	Price     float64
	PrevClose float64
	Open      float64
	High      float64
	Low       float64
	Volume    float64
	Change    float64
	ChangePct float64
	Time      time.Time
}

// Index is a supported index whose constituents can be listed.
type Index struct {
	ID   string
	Code string
	Name string
}

// Indexes lists the supported indexes.
var Indexes = []Index{
	{ID: "sz50", Code: "sh.000016", Name: "SSE 50"},
	{ID: "hs300", Code: "sh.000300", Name: "CSI 300"},
	{ID: "zz500", Code: "sh.000905", Name: "CSI 500"},
}

// LookupIndex finds a supported index by its identifier.
func LookupIndex(id string) (Index, error) {
	for _, ix := range Indexes {
		if ix.ID == id {
			return ix, nil
		}
	}
	return Index{}, fmt.Errorf("unknown index %q (want sz50, hs300 or zz500)", id)
}

// Constituent is one member of an index.
type Constituent struct {
	UpdateDate string
	Symbol     symbol.Symbol
	Name       string
}
