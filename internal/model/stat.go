package model

import (
	"github.com/shopspring/decimal"

	"StockLens/internal/symbol"
)

// SymbolStat is the summary of one symbol's price history over a range.
// Fractions (TotalReturn, Volatility, MaxDrawdown) are not multiplied by 100.
type SymbolStat struct {
	TotalReturn float64
	Volatility  float64
	MaxDrawdown float64

	Investment   decimal.Decimal
	EndingValue  decimal.Decimal
	ProfitLoss   decimal.Decimal
	SharesBought decimal.Decimal

	TradingDays int
	UpDays      int
	DownDays    int
	FlatDays    int

	FirstClose  float64
	LastClose   float64
	PriceChange float64
	PeriodHigh  float64
	PeriodLow   float64
	AvgVolume   float64
	MaxVolume   float64

	// RangePosition is where LastClose sits between PeriodLow and PeriodHigh (0.0~1.0).
	RangePosition float64
}

// StatRow pairs a symbol with its summary, in report order.
type StatRow struct {
	Symbol  symbol.Symbol
	Comment string
	Stat    *SymbolStat
}

// Failure is a batch entry that produced no statistics.
type Failure struct {
	Symbol  symbol.Symbol
	Comment string
	Reason  string
}
