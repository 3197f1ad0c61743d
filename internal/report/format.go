package report

import (
	"fmt"
	"math"
	"strconv"

	"github.com/Rhymond/go-money"
	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

const currency = money.CNY

// Price formats a price with two decimals; "-" for zero.
func Price(v float64) string {
	if v == 0 {
		return "-"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// Percent formats a fraction as a percentage with two decimals.
func Percent(fraction float64) string {
	return fmt.Sprintf("%.2f%%", fraction*100)
}

// SignedPercent formats a value that is already in percent.
func SignedPercent(pct float64) string {
	return fmt.Sprintf("%+.2f%%", pct)
}

// Amount scales large CNY figures to 亿 (1e8) or 万 (1e4).
func Amount(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1e8:
		return fmt.Sprintf("%.2f亿", v/1e8)
	case abs >= 1e4:
		return fmt.Sprintf("%.2f万", v/1e4)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

// Volume formats a share count with thousands separators.
func Volume(v float64) string {
	return humanize.Comma(int64(math.Round(v)))
}

// Money renders a CNY amount with its currency symbol, rounded to the fen.
func Money(d decimal.Decimal) string {
	cur := money.GetCurrency(currency)
	factor := decimal.New(1, int32(cur.Fraction))
	return money.New(d.Mul(factor).Round(0).IntPart(), currency).Display()
}

// Fixed formats a decimal with two places, as used in CSV.
func Fixed(d decimal.Decimal) string {
	return d.StringFixed(2)
}
