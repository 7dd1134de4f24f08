package spreadsheet

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractSpreadsheetID(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://docs.google.com/spreadsheets/d/1AbC-d_9xYz/edit#gid=0", "1AbC-d_9xYz"},
		{"https://docs.google.com/spreadsheets/d/1AbC-d_9xYz", "1AbC-d_9xYz"},
		{"https://docs.google.com/spreadsheets/u/0/d/abc123/view", "abc123"},
	}
	for _, tc := range tests {
		got, err := ExtractSpreadsheetID(tc.url)
		require.NoError(t, err, tc.url)
		assert.Equal(t, tc.want, got)
	}
}

func TestExtractSpreadsheetIDMissing(t *testing.T) {
	for _, url := range []string{"", "https://docs.google.com/spreadsheets/", "https://example.com/sheet?id=abc"} {
		_, err := ExtractSpreadsheetID(url)
		assert.ErrorIs(t, err, ErrInvalidURL, url)
	}
}

func TestParseRowsTolerant(t *testing.T) {
	rows := [][]interface{}{
		{"01.02.2024", "70", "18-24", "40"},
		{"bad-date", "50", "", ""},
	}

	series, err := ParseRows(rows)
	require.NoError(t, err)

	require.Len(t, series.Dates, 1)
	require.Len(t, series.Values, 1)
	assert.True(t, series.Dates[0].Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 70.0, series.Values[0])

	require.Len(t, series.AgeSegments, 1)
	assert.Equal(t, "18-24", series.AgeSegments[0].Name)
	assert.Equal(t, 40.0, series.AgeSegments[0].Value)
}

func TestParseRowsSegmentsIndependentOfDates(t *testing.T) {
	rows := [][]interface{}{
		{"Date", "Value", "Age", "Share"},
		{"01.03.2024", "12.5"},
		{"02.03.2024", "n/a", "25-34", "35%"},
		{"", "", "35-44", "20,5"},
		{"03.03.2024", 14.0, "45+", "x"},
	}

	series, err := ParseRows(rows)
	require.NoError(t, err)

	assert.Equal(t, []float64{12.5, 14}, series.Values)
	require.Len(t, series.Dates, 2)
	assert.Equal(t, 3, series.Dates[1].Day())

	require.Len(t, series.AgeSegments, 2)
	assert.Equal(t, "25-34", series.AgeSegments[0].Name)
	assert.Equal(t, 35.0, series.AgeSegments[0].Value)
	assert.Equal(t, 20.5, series.AgeSegments[1].Value)
}

func TestParseRowsNoValidData(t *testing.T) {
	_, err := ParseRows([][]interface{}{{"2024-02-01", "70", "18-24", "40"}})
	assert.ErrorIs(t, err, ErrNoValidData)

	_, err = ParseRows(nil)
	assert.ErrorIs(t, err, ErrNoValidData)
}

func TestSeriesAnalytics(t *testing.T) {
	series, err := ParseRows([][]interface{}{{"01.02.2024", "70", "18-24", "40"}})
	require.NoError(t, err)

	a := series.Analytics()
	assert.Len(t, a.Dates, 1)
	assert.Len(t, a.Values, 1)
	assert.Len(t, a.AgeSegments, 1)
	assert.Nil(t, a.TrendID)
	assert.Nil(t, a.ColorID)
}

func TestParseRowsSkipsNonFiniteNumbers(t *testing.T) {
	rows := [][]interface{}{
		{"01.02.2024", "NaN", "18-24", "Inf"},
		{"02.02.2024", "5", "25-34", "-Inf"},
		{"03.02.2024", "+Inf", "35-44", "30"},
	}

	series, err := ParseRows(rows)
	require.NoError(t, err)

	assert.Equal(t, []float64{5}, series.Values)
	require.Len(t, series.Dates, 1)
	assert.Equal(t, 2, series.Dates[0].Day())
	require.Len(t, series.AgeSegments, 1)
	assert.Equal(t, "35-44", series.AgeSegments[0].Name)
}

func TestParseRowsOnlyNonFiniteIsNoValidData(t *testing.T) {
	_, err := ParseRows([][]interface{}{
		{"01.02.2024", "NaN"},
		{"02.02.2024", "inf"},
		{"03.02.2024", "-Infinity"},
	})
	assert.ErrorIs(t, err, ErrNoValidData)
}
