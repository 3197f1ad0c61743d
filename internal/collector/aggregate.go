package collector

import (
	"time"

	"StockLens/internal/model"
)

func periodKey(t time.Time, freq model.Frequency) int {
	if freq == model.FreqMonth {
		return t.Year()*100 + int(t.Month())
	}
	year, week := t.ISOWeek()
	return year*100 + week
}

// aggregateBars folds ascending daily bars into weekly or monthly bars. The
// folded bar carries the date of the last trading day in its period.
func aggregateBars(daily []model.DailyRecord, freq model.Frequency) []model.DailyRecord {
	if len(daily) == 0 {
		return nil
	}
	var out []model.DailyRecord
	cur := daily[0]
	key := periodKey(cur.Date, freq)
	for _, d := range daily[1:] {
		if k := periodKey(d.Date, freq); k != key {
			out = append(out, finishBar(cur))
			cur, key = d, k
			continue
		}
		if d.High > cur.High {
			cur.High = d.High
		}
		if d.Low < cur.Low {
			cur.Low = d.Low
		}
		cur.Date = d.Date
		cur.Close = d.Close
		cur.Volume += d.Volume
		cur.Amount += d.Amount
		cur.Turnover += d.Turnover
	}
	return append(out, finishBar(cur))
}

func finishBar(b model.DailyRecord) model.DailyRecord {
	if b.PreClose > 0 {
		b.PctChange = (b.Close/b.PreClose - 1) * 100
	}
	return b
}
