package calculator

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"StockLens/internal/model"
)

// TradingDaysPerYear annualizes daily volatility.
const TradingDaysPerYear = 252

// ErrInsufficientData is returned when fewer than two usable bars are available.
var ErrInsufficientData = errors.New("insufficient data")

// Summarize computes the period statistics of daily records sorted ascending by date.
// Records are not re-sorted. Every close must be positive.
func Summarize(records []model.DailyRecord, initial decimal.Decimal) (*model.SymbolStat, error) {
	return SummarizePeriods(records, initial, TradingDaysPerYear)
}

// SummarizePeriods is Summarize for bars of any frequency; periodsPerYear scales
// the per-bar volatility to an annual figure.
func SummarizePeriods(records []model.DailyRecord, initial decimal.Decimal, periodsPerYear float64) (*model.SymbolStat, error) {
	if len(records) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 records, got %d", ErrInsufficientData, len(records))
	}
	closes := extractCloses(records)
	for i, c := range closes {
		if c <= 0 {
			return nil, fmt.Errorf("%w: close %.2f on %s", ErrInsufficientData, c, records[i].Date.Format(model.DateLayout))
		}
	}

	first := decimal.NewFromFloat(closes[0])
	last := decimal.NewFromFloat(closes[len(closes)-1])
	totalReturn := last.Sub(first).Div(first)
	ending := initial.Mul(decimal.NewFromInt(1).Add(totalReturn))

	returns := DailyReturns(closes)
	st := &model.SymbolStat{
		TotalReturn:  totalReturn.InexactFloat64(),
		Volatility:   SampleStdDev(returns) * math.Sqrt(periodsPerYear),
		MaxDrawdown:  MaxDrawdown(closes),
		Investment:   initial,
		EndingValue:  ending,
		ProfitLoss:   ending.Sub(initial),
		SharesBought: initial.Div(first),
		TradingDays:  len(records),
		FirstClose:   closes[0],
		LastClose:    closes[len(closes)-1],
		PriceChange:  closes[len(closes)-1] - closes[0],
	}
	for _, r := range returns {
		switch {
		case r > 0:
			st.UpDays++
		case r < 0:
			st.DownDays++
		default:
			st.FlatDays++
		}
	}
	st.PeriodHigh, st.PeriodLow = periodRange(records)
	st.RangePosition = RangePosition(st.LastClose, st.PeriodHigh, st.PeriodLow)
	st.AvgVolume, st.MaxVolume = volumeStats(records)
	return st, nil
}

// DailyReturns returns close[i]/close[i-1] - 1 for every consecutive pair.
func DailyReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		out[i-1] = closes[i]/closes[i-1] - 1
	}
	return out
}

// SampleStdDev is the n-1 standard deviation; it is 0 for fewer than two values.
func SampleStdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	mean := 0.0
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	ss := 0.0
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}

// MaxDrawdown is the largest peak-to-trough decline as a positive fraction.
func MaxDrawdown(prices []float64) float64 {
	peak := math.Inf(-1)
	worst := 0.0
	for _, p := range prices {
		if p > peak {
			peak = p
		}
		if peak > 0 {
			if dd := 1 - p/peak; dd > worst {
				worst = dd
			}
		}
	}
	return worst
}
