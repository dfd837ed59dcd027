// Package usage collects monthly usage rows from the form and from files.
package usage

import (
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jgoulah/carbonform/internal/emissions"
	"github.com/jgoulah/carbonform/pkg/models"
)

// Form field names for the repeatable usage rows
const (
	FieldMonth = "month"
	FieldYear  = "year"
	FieldKWh   = "kwh"
	FieldCost  = "cost"
)

// Row holds one usage row exactly as typed
type Row struct {
	Month string
	Year  string
	KWh   string
	Cost  string
}

// Collector owns the ordered usage rows of the form
type Collector struct {
	rows []Row
}

// NewCollector returns a collector with a single row set to now's month and year
func NewCollector(now time.Time) *Collector {
	c := &Collector{}
	c.InitializeFirstRow(now)
	return c
}

// FromForm rebuilds a collector from parallel month/year/kwh/cost form values.
// Shorter arrays are padded with blanks.
func FromForm(values url.Values) *Collector {
	months := values[FieldMonth]
	years := values[FieldYear]
	kwhs := values[FieldKWh]
	costs := values[FieldCost]

	n := max(len(months), len(years), len(kwhs), len(costs))
	c := &Collector{rows: make([]Row, n)}
	for i := 0; i < n; i++ {
		c.rows[i] = Row{
			Month: at(months, i),
			Year:  at(years, i),
			KWh:   at(kwhs, i),
			Cost:  at(costs, i),
		}
	}
	return c
}

func at(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return ""
}

// Rows returns a copy of the current rows
func (c *Collector) Rows() []Row {
	out := make([]Row, len(c.rows))
	copy(out, c.rows)
	return out
}

// Len returns the number of rows
func (c *Collector) Len() int {
	return len(c.rows)
}

// AddRow appends a blank row
func (c *Collector) AddRow() {
	c.rows = append(c.rows, Row{})
}

// InitializeFirstRow sets the first row's month and year to now, creating it if needed
func (c *Collector) InitializeFirstRow(now time.Time) {
	if len(c.rows) == 0 {
		c.rows = append(c.rows, Row{})
	}
	c.rows[0].Month = strconv.Itoa(int(now.Month()))
	c.rows[0].Year = strconv.Itoa(now.Year())
}

// Collect parses every row in order. The first invalid field stops collection
// with a *emissions.ValidationError naming its row and field.
func (c *Collector) Collect() ([]models.UsageEntry, error) {
	entries := make([]models.UsageEntry, 0, len(c.rows))
	for i, r := range c.rows {
		e, err := r.parse(i + 1)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (r Row) parse(row int) (models.UsageEntry, error) {
	month, err := parseInt(row, "month", r.Month)
	if err != nil {
		return models.UsageEntry{}, err
	}
	year, err := parseInt(row, "year", r.Year)
	if err != nil {
		return models.UsageEntry{}, err
	}
	kwh, err := parseFloat(row, "kWh", r.KWh)
	if err != nil {
		return models.UsageEntry{}, err
	}
	cost, err := parseFloat(row, "cost", r.Cost)
	if err != nil {
		return models.UsageEntry{}, err
	}

	e := models.UsageEntry{Month: month, Year: year, KWh: kwh, Cost: cost}
	if err := emissions.ValidateEntry(row, e); err != nil {
		return models.UsageEntry{}, err
	}
	return e, nil
}

func parseInt(row int, field, raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, &emissions.ValidationError{Row: row, Field: field, Reason: "is required"}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, &emissions.ValidationError{Row: row, Field: field, Value: s, Reason: "is not a whole number"}
	}
	return n, nil
}

func parseFloat(row int, field, raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, &emissions.ValidationError{Row: row, Field: field, Reason: "is required"}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &emissions.ValidationError{Row: row, Field: field, Value: s, Reason: "is not a number"}
	}
	return v, nil
}
