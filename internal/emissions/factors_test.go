package emissions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup_RangeBoundaries(t *testing.T) {
	tests := []struct {
		zip        string
		wantFactor float64
		wantSource string
	}{
		{zip: "00000", wantFactor: 0.75, wantSource: "00000-19999"},
		{zip: "19999", wantFactor: 0.75, wantSource: "00000-19999"},
		{zip: "20000", wantFactor: 0.65, wantSource: "20000-39999"},
		{zip: "39999", wantFactor: 0.65, wantSource: "20000-39999"},
		{zip: "40000", wantFactor: 0.55, wantSource: "40000-59999"},
		{zip: "55000", wantFactor: 0.55, wantSource: "40000-59999"},
		{zip: "60000", wantFactor: 0.45, wantSource: "60000-79999"},
		{zip: "79999", wantFactor: 0.45, wantSource: "60000-79999"},
		{zip: "80000", wantFactor: 0.35, wantSource: "80000-99999"},
		{zip: "99999", wantFactor: 0.35, wantSource: "80000-99999"},
		{zip: " 02139 ", wantFactor: 0.75, wantSource: "00000-19999"},
		{zip: "94103-1234", wantFactor: 0.35, wantSource: "80000-99999"},
		{zip: "123", wantFactor: 0.75, wantSource: "00000-19999"},
	}

	for _, tt := range tests {
		t.Run(tt.zip, func(t *testing.T) {
			m := DefaultTable.Lookup(tt.zip)
			assert.Equal(t, tt.wantFactor, m.Factor)
			assert.Equal(t, tt.wantSource, m.Source)
			require.NotNil(t, m.Range)
		})
	}
}

func TestLookup_DefaultFallback(t *testing.T) {
	for _, zip := range []string{"", "abc", "5500a", "123456", "-1", "55000-12", "55000-abcd", "1e4"} {
		t.Run(zip, func(t *testing.T) {
			m := DefaultTable.Lookup(zip)
			assert.Equal(t, DefaultFactor, m.Factor)
			assert.Equal(t, SourceDefault, m.Source)
			assert.Nil(t, m.Range)
		})
	}
}

func TestLookup_GapUsesDefault(t *testing.T) {
	table, err := NewFactorTable([]Range{
		{Min: 50000, Max: 59999, Factor: 0.4},
		{Min: 10000, Max: 19999, Factor: 0.9},
	}, 0.6)
	require.NoError(t, err)

	assert.Equal(t, 0.9, table.Lookup("15000").Factor)
	assert.Equal(t, 0.4, table.Lookup("50000").Factor)
	assert.Equal(t, 0.6, table.Lookup("30000").Factor)
	assert.Equal(t, 0.6, table.Lookup("00001").Factor)
	assert.Equal(t, 0.6, table.Lookup("99999").Factor)

	ranges := table.Ranges()
	require.Len(t, ranges, 2)
	assert.Equal(t, 10000, ranges[0].Min, "ranges are sorted")
}

func TestNewFactorTable_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		ranges []Range
		def    float64
	}{
		{name: "overlap", ranges: []Range{{Min: 0, Max: 100, Factor: 1}, {Min: 100, Max: 200, Factor: 1}}, def: 0.5},
		{name: "inverted", ranges: []Range{{Min: 200, Max: 100, Factor: 1}}, def: 0.5},
		{name: "zero factor", ranges: []Range{{Min: 0, Max: 100, Factor: 0}}, def: 0.5},
		{name: "zero default", ranges: nil, def: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFactorTable(tt.ranges, tt.def)
			assert.Error(t, err)
		})
	}
}

func TestDefaultTable_Shape(t *testing.T) {
	ranges := DefaultTable.Ranges()
	require.Len(t, ranges, 5)
	assert.Equal(t, DefaultFactor, DefaultTable.DefaultFactor())

	ranges[0].Factor = 99
	assert.Equal(t, 0.75, DefaultTable.Lookup("00001").Factor, "Ranges returns a copy")
}
