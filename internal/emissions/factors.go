package emissions

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// DefaultFactor is the kg CO2e per kWh used when a zip code matches no range.
const DefaultFactor = 0.5

// SourceDefault is the Match.Source reported for the default factor.
const SourceDefault = "default"

// Range is an inclusive zip code interval with its grid emissions factor
type Range struct {
	Min    int     `json:"min"`
	Max    int     `json:"max"`
	Factor float64 `json:"factor"` // kg CO2e per kWh
}

// Label returns the range as it is printed, e.g. "00000-19999"
func (r Range) Label() string {
	return fmt.Sprintf("%05d-%05d", r.Min, r.Max)
}

// Match is the result of a factor lookup
type Match struct {
	Factor float64
	Source string // Range label, or SourceDefault
	Range  *Range // nil when the default factor was used
}

// FactorTable maps zip code intervals to emissions factors.
// Ranges are kept sorted by Min and never overlap.
type FactorTable struct {
	ranges        []Range
	defaultFactor float64
}

// regionalRanges are illustrative US grid factors, coal-heavy regions first
var regionalRanges = []Range{
	{Min: 0, Max: 19999, Factor: 0.75},
	{Min: 20000, Max: 39999, Factor: 0.65},
	{Min: 40000, Max: 59999, Factor: 0.55},
	{Min: 60000, Max: 79999, Factor: 0.45},
	{Min: 80000, Max: 99999, Factor: 0.35},
}

// DefaultTable is the static regional factor table
var DefaultTable = mustFactorTable(regionalRanges, DefaultFactor)

// NewFactorTable builds a table from ranges in any order.
// It rejects inverted, overlapping or non-positive-factor ranges.
func NewFactorTable(ranges []Range, defaultFactor float64) (*FactorTable, error) {
	if defaultFactor <= 0 {
		return nil, fmt.Errorf("default factor must be positive, got %v", defaultFactor)
	}

	sorted := make([]Range, len(ranges))
	copy(sorted, ranges)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Min < sorted[j].Min })

	for i, r := range sorted {
		if r.Min > r.Max {
			return nil, fmt.Errorf("range %s: min greater than max", r.Label())
		}
		if r.Factor <= 0 {
			return nil, fmt.Errorf("range %s: factor must be positive", r.Label())
		}
		if i > 0 && r.Min <= sorted[i-1].Max {
			return nil, fmt.Errorf("range %s overlaps %s", r.Label(), sorted[i-1].Label())
		}
	}

	return &FactorTable{ranges: sorted, defaultFactor: defaultFactor}, nil
}

func mustFactorTable(ranges []Range, defaultFactor float64) *FactorTable {
	t, err := NewFactorTable(ranges, defaultFactor)
	if err != nil {
		panic(err)
	}
	return t
}

// Ranges returns a copy of the table's ranges in ascending order
func (t *FactorTable) Ranges() []Range {
	out := make([]Range, len(t.ranges))
	copy(out, t.ranges)
	return out
}

// DefaultFactor returns the fallback factor
func (t *FactorTable) DefaultFactor() float64 {
	return t.defaultFactor
}

// Lookup returns the factor for a zip code. Malformed or unmatched zip codes
// fall back to the default factor; neither is an error.
func (t *FactorTable) Lookup(zip string) Match {
	n, ok := ParseZip(zip)
	if !ok {
		return Match{Factor: t.defaultFactor, Source: SourceDefault}
	}

	i := sort.Search(len(t.ranges), func(i int) bool { return t.ranges[i].Max >= n })
	if i < len(t.ranges) && t.ranges[i].Min <= n {
		r := t.ranges[i]
		return Match{Factor: r.Factor, Source: r.Label(), Range: &r}
	}

	return Match{Factor: t.defaultFactor, Source: SourceDefault}
}

// ParseZip parses a US zip code of 1-5 digits, with an optional ZIP+4 suffix.
func ParseZip(zip string) (int, bool) {
	zip = strings.TrimSpace(zip)
	if base, plus4, found := strings.Cut(zip, "-"); found {
		if len(plus4) != 4 || !allDigits(plus4) {
			return 0, false
		}
		zip = base
	}

	if len(zip) == 0 || len(zip) > 5 || !allDigits(zip) {
		return 0, false
	}

	n, err := strconv.Atoi(zip)
	if err != nil {
		return 0, false
	}
	return n, true
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
