package calculator

import (
	"math"

	"StockLens/internal/model"
)

// periodRange scans every bar and returns the highest high and the lowest low.
// Bars without a positive high or low fall back to their close.
func periodRange(records []model.DailyRecord) (high, low float64) {
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, r := range records {
		h, l := r.High, r.Low
		if h <= 0 {
			h = r.Close
		}
		if l <= 0 {
			l = r.Close
		}
		if h > high {
			high = h
		}
		if l < low {
			low = l
		}
	}
	return high, low
}

// volumeStats returns the average and maximum volume over the bars.
func volumeStats(records []model.DailyRecord) (avg, max float64) {
	if len(records) == 0 {
		return 0, 0
	}
	sum := 0.0
	for _, r := range records {
		sum += r.Volume
		if r.Volume > max {
			max = r.Volume
		}
	}
	return sum / float64(len(records)), max
}

// RangePosition returns where price sits within [low, high] (0.0~1.0).
func RangePosition(price, high, low float64) float64 {
	if high <= low {
		return 0.5
	}
	pos := (price - low) / (high - low)
	return math.Max(0, math.Min(1, pos))
}

func extractCloses(records []model.DailyRecord) []float64 {
	closes := make([]float64, len(records))
	for i, r := range records {
		closes[i] = r.Close
	}
	return closes
}
