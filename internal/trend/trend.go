// Package trend turns dated records into time-bucketed series: resampling
// to daily/weekly/monthly/quarterly totals, rolling averages, and a
// least-squares trend line.
package trend

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"taskninja/internal/dataset"
	apperrors "taskninja/internal/errors"
)

// Frequency selects the resampling bucket size.
type Frequency string

const (
	Daily     Frequency = "D"
	Weekly    Frequency = "W"
	Monthly   Frequency = "M"
	Quarterly Frequency = "Q"
)

// ParseFrequency validates a frequency flag value.
func ParseFrequency(s string) (Frequency, error) {
	switch Frequency(s) {
	case Daily, Weekly, Monthly, Quarterly:
		return Frequency(s), nil
	}
	return "", apperrors.InvalidInput(fmt.Sprintf("unknown frequency %q (use D, W, M, or Q)", s))
}

// Point is one bucket of a resampled series.
type Point struct {
	Period time.Time `json:"period"`
	Value  float64   `json:"value"`
}

// Series is an ordered view of resampled values. Only periods present in the
// source data appear; an empty bucket is absent, not zero.
type Series struct {
	Freq   Frequency `json:"freq"`
	Points []Point   `json:"points"`
}

// Labels renders bucket labels appropriate to the frequency.
func (s *Series) Labels() []string {
	labels := make([]string, len(s.Points))
	for i, p := range s.Points {
		labels[i] = formatPeriod(p.Period, s.Freq)
	}
	return labels
}

// Values returns the bucket values in order.
func (s *Series) Values() []float64 {
	vals := make([]float64, len(s.Points))
	for i, p := range s.Points {
		vals[i] = p.Value
	}
	return vals
}

// Resample sums the value column into freq-sized buckets keyed by the date
// column. Rows with a blank or unparsable date are skipped.
func Resample(ds *dataset.Dataset, dateColumn, valueColumn string, freq Frequency) (*Series, error) {
	if !ds.HasColumn(dateColumn) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("input data must contain a %q column", dateColumn))
	}
	if !ds.HasColumn(valueColumn) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("input data must contain a %q column", valueColumn))
	}

	buckets := map[time.Time]float64{}
	skipped := 0
	for i := range ds.Rows {
		t, ok := ds.Date(i, dateColumn)
		if !ok {
			skipped++
			continue
		}
		v, _ := ds.Float(i, valueColumn)
		buckets[bucketStart(t, freq)] += v
	}
	if skipped > 0 {
		slog.Warn("skipped rows without a parsable date", slog.Int("count", skipped))
	}

	periods := make([]time.Time, 0, len(buckets))
	for p := range buckets {
		periods = append(periods, p)
	}
	sort.Slice(periods, func(i, j int) bool { return periods[i].Before(periods[j]) })

	series := &Series{Freq: freq}
	for _, p := range periods {
		series.Points = append(series.Points, Point{Period: p, Value: buckets[p]})
	}
	return series, nil
}

// RollingMean computes the trailing window average. The first window-1
// positions have no value; ok[i] marks which positions do.
func RollingMean(values []float64, window int) (means []float64, ok []bool) {
	means = make([]float64, len(values))
	ok = make([]bool, len(values))
	if window <= 0 {
		return means, ok
	}
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		if i >= window-1 {
			means[i] = sum / float64(window)
			ok[i] = true
		}
	}
	return means, ok
}

// FitLine computes the least-squares line over the values indexed 0..n-1
// and returns its fitted points. A series shorter than two points comes
// back unchanged.
func FitLine(values []float64) []float64 {
	n := len(values)
	fitted := make([]float64, n)
	if n < 2 {
		copy(fitted, values)
		return fitted
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, v := range values {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
	}
	fn := float64(n)
	denom := fn*sumXX - sumX*sumX
	slope := (fn*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / fn

	for i := range fitted {
		fitted[i] = intercept + slope*float64(i)
	}
	return fitted
}

func bucketStart(t time.Time, freq Frequency) time.Time {
	t = t.UTC().Truncate(24 * time.Hour)
	switch freq {
	case Daily:
		return t
	case Weekly:
		// ISO weeks starting Monday
		offset := (int(t.Weekday()) + 6) % 7
		return t.AddDate(0, 0, -offset)
	case Monthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	case Quarterly:
		q := (int(t.Month()) - 1) / 3
		return time.Date(t.Year(), time.Month(q*3+1), 1, 0, 0, 0, 0, time.UTC)
	}
	return t
}

func formatPeriod(t time.Time, freq Frequency) string {
	switch freq {
	case Monthly:
		return t.Format("2006-01")
	case Quarterly:
		return fmt.Sprintf("%d-Q%d", t.Year(), (int(t.Month())-1)/3+1)
	default:
		return t.Format("2006-01-02")
	}
}
