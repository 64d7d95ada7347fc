package pipeline

// HistogramBin is one equal-width vote average bin. Bins are half-open
// [Lower, Upper) except the last, which also holds Upper.
type HistogramBin struct {
	Lower float64 `json:"Lower"`
	Upper float64 `json:"Upper"`
	Count int     `json:"Count"`
}

// RatingHistogram buckets vote averages into equal-width bins over the observed
// range. When every value is equal the range is widened by 0.5 on each side.
func RatingHistogram(rows []Row, bins int) []HistogramBin {
	if len(rows) == 0 || bins <= 0 {
		return make([]HistogramBin, 0)
	}

	lo, hi := rows[0].VoteAverage, rows[0].VoteAverage
	for i := range rows {
		v := rows[i].VoteAverage
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if lo == hi {
		lo -= 0.5
		hi += 0.5
	}

	width := (hi - lo) / float64(bins)
	out := make([]HistogramBin, bins)
	for i := range out {
		out[i].Lower = lo + float64(i)*width
		out[i].Upper = lo + float64(i+1)*width
	}
	out[bins-1].Upper = hi

	for i := range rows {
		idx := int((rows[i].VoteAverage - lo) / width)
		if idx >= bins {
			idx = bins - 1
		}
		if idx < 0 {
			idx = 0
		}
		out[idx].Count++
	}
	return out
}
