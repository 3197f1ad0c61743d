package model

import (
	"fmt"
	"time"

	"StockLens/internal/symbol"
)

// DateLayout is the calendar date format used on the command line, in CSV and on the wire.
const DateLayout = "2006-01-02"

// DailyRecord is one bar of price history for a symbol. For the default daily
// frequency it is one trading day.
type DailyRecord struct {
	Date      time.Time
	Symbol    symbol.Symbol
	Open      float64
	High      float64
	Low       float64
	Close     float64
	PreClose  float64
	Volume    float64 // shares
	Amount    float64 // turnover in CNY
	Turnover  float64 // turnover rate, percent
	PctChange float64 // percent change against PreClose
}

// Frequency is the bar period of a k-line query.
type Frequency string

const (
	Freq5Min   Frequency = "5m"
	Freq15Min  Frequency = "15m"
	Freq30Min  Frequency = "30m"
	Freq60Min  Frequency = "60m"
	FreqDaily  Frequency = "d"
	FreqWeekly Frequency = "w"
	FreqMonth  Frequency = "M"
)

// Frequencies lists every supported frequency in display order.
var Frequencies = []Frequency{Freq5Min, Freq15Min, Freq30Min, Freq60Min, FreqDaily, FreqWeekly, FreqMonth}

// ParseFrequency validates a frequency flag value. Empty means daily.
func ParseFrequency(s string) (Frequency, error) {
	if s == "" {
		return FreqDaily, nil
	}
	for _, f := range Frequencies {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown frequency %q (want one of 5m, 15m, 30m, 60m, d, w, M)", s)
}

// PeriodsPerYear is the annualization factor for bars of this frequency.
// A-share markets trade four hours a day, 252 days a year.
func (f Frequency) PeriodsPerYear() float64 {
	switch f {
	case Freq5Min:
		return 252 * 48
	case Freq15Min:
		return 252 * 16
	case Freq30Min:
		return 252 * 8
	case Freq60Min:
		return 252 * 4
	case FreqWeekly:
		return 52
	case FreqMonth:
		return 12
	default:
		return 252
	}
}

// Label is a human readable name for the frequency.
func (f Frequency) Label() string {
	switch f {
	case Freq5Min, Freq15Min, Freq30Min, Freq60Min:
		return string(f[:len(f)-1]) + "-minute"
	case FreqWeekly:
		return "weekly"
	case FreqMonth:
		return "monthly"
	default:
		return "daily"
	}
}
