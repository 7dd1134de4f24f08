package spreadsheet

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"trendscope-backend/models"

	"github.com/pkg/errors"
)

// Sheet dates are day.month.year, e.g. 01.02.2024.
const dateLayout = "02.01.2006"

var (
	ErrInvalidURL  = errors.New("spreadsheet URL does not contain a spreadsheet id")
	ErrNoValidData = errors.New("no valid data found in spreadsheet")

	idPattern = regexp.MustCompile(`/d/([a-zA-Z0-9-_]+)`)
)

// Series is the normalized content of a trend sheet. Dates and Values are
// parallel; AgeSegments are collected independently of them.
type Series struct {
	Dates       []time.Time
	Values      []float64
	AgeSegments []models.AgeSegment
}

// Analytics converts the series into an unowned analytics row.
func (s *Series) Analytics() *models.Analytics {
	return &models.Analytics{
		Dates:       append([]time.Time{}, s.Dates...),
		Values:      append([]float64{}, s.Values...),
		AgeSegments: append([]models.AgeSegment{}, s.AgeSegments...),
	}
}

// ExtractSpreadsheetID pulls the id out of a Google Sheets URL such as
// https://docs.google.com/spreadsheets/d/<id>/edit#gid=0.
func ExtractSpreadsheetID(sheetURL string) (string, error) {
	m := idPattern.FindStringSubmatch(sheetURL)
	if m == nil {
		return "", ErrInvalidURL
	}
	return m[1], nil
}

func cell(row []interface{}, i int) string {
	if i >= len(row) || row[i] == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(row[i]))
}

func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	// NaN and Inf parse but cannot be stored as JSON
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.Errorf("not a finite number: %q", s)
	}
	return v, nil
}

// ParseRows reads rows of four columns: date, trend value, age segment name
// and age segment percent. A row whose date or value does not parse adds
// nothing to the series but may still add a segment, and the reverse. Only an
// empty date/value series is an error.
func ParseRows(rows [][]interface{}) (*Series, error) {
	series := &Series{}

	for _, row := range rows {
		if date, err := time.Parse(dateLayout, cell(row, 0)); err == nil {
			if value, err := parseNumber(cell(row, 1)); err == nil {
				series.Dates = append(series.Dates, date)
				series.Values = append(series.Values, value)
			}
		}

		if name := cell(row, 2); name != "" {
			if pct, err := parseNumber(cell(row, 3)); err == nil {
				series.AgeSegments = append(series.AgeSegments, models.AgeSegment{Name: name, Value: pct})
			}
		}
	}

	if len(series.Dates) == 0 {
		return nil, ErrNoValidData
	}
	return series, nil
}
