package trend

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskninja/internal/dataset"
)

func datedSales(rows ...[2]string) *dataset.Dataset {
	ds := dataset.New("Date", "Sales")
	for _, r := range rows {
		ds.Append(dataset.Row{"Date": r[0], "Sales": r[1]})
	}
	return ds
}

func TestParseFrequency(t *testing.T) {
	for _, valid := range []string{"D", "W", "M", "Q"} {
		f, err := ParseFrequency(valid)
		require.NoError(t, err)
		assert.Equal(t, Frequency(valid), f)
	}
	_, err := ParseFrequency("Y")
	assert.Error(t, err)
}

func TestResample_Monthly(t *testing.T) {
	ds := datedSales(
		[2]string{"2024-01-05", "100"},
		[2]string{"2024-01-20", "50"},
		[2]string{"2024-02-03", "70"},
		[2]string{"garbage", "999"},
	)

	series, err := Resample(ds, "Date", "Sales", Monthly)
	require.NoError(t, err)

	require.Len(t, series.Points, 2)
	assert.Equal(t, 150.0, series.Points[0].Value)
	assert.Equal(t, 70.0, series.Points[1].Value)
	assert.Equal(t, []string{"2024-01", "2024-02"}, series.Labels())
}

func TestResample_OmitsEmptyBuckets(t *testing.T) {
	ds := datedSales(
		[2]string{"2024-01-05", "100"},
		[2]string{"2024-03-10", "30"},
	)

	series, err := Resample(ds, "Date", "Sales", Monthly)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01", "2024-03"}, series.Labels())
}

func TestResample_Weekly_BucketsOnMonday(t *testing.T) {
	// 2024-01-03 is a Wednesday; its week starts Monday 2024-01-01
	ds := datedSales([2]string{"2024-01-03", "10"})
	series, err := Resample(ds, "Date", "Sales", Weekly)
	require.NoError(t, err)
	require.Len(t, series.Points, 1)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), series.Points[0].Period)
}

func TestResample_Quarterly(t *testing.T) {
	ds := datedSales(
		[2]string{"2024-02-10", "10"},
		[2]string{"2024-05-01", "20"},
	)
	series, err := Resample(ds, "Date", "Sales", Quarterly)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-Q1", "2024-Q2"}, series.Labels())
}

func TestResample_MissingColumn(t *testing.T) {
	ds := dataset.New("Date")
	_, err := Resample(ds, "Date", "Sales", Monthly)
	assert.Error(t, err)
}

func TestRollingMean(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	means, ok := RollingMean(values, 3)

	assert.False(t, ok[0])
	assert.False(t, ok[1])
	assert.True(t, ok[2])
	assert.InDelta(t, 2.0, means[2], 1e-9)
	assert.InDelta(t, 3.0, means[3], 1e-9)
	assert.InDelta(t, 4.0, means[4], 1e-9)
}

func TestRollingMean_WindowLargerThanSeries(t *testing.T) {
	_, ok := RollingMean([]float64{1, 2}, 5)
	assert.Equal(t, []bool{false, false}, ok)
}

func TestFitLine_ExactLinear(t *testing.T) {
	// y = 2x + 1 must fit itself exactly
	values := []float64{1, 3, 5, 7}
	fitted := FitLine(values)
	for i, want := range values {
		assert.InDelta(t, want, fitted[i], 1e-9)
	}
}

func TestFitLine_ShortSeries(t *testing.T) {
	assert.Equal(t, []float64{42}, FitLine([]float64{42}))
	assert.Empty(t, FitLine(nil))
}

func TestSeries_Values(t *testing.T) {
	s := &Series{Points: []Point{{Value: 1}, {Value: 2}}}
	assert.Equal(t, []float64{1, 2}, s.Values())
}
