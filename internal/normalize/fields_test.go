package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		label string
		want  Field
		ok    bool
	}{
		{"Symbol", FieldSymbol, true},
		{"SCRIP", FieldSymbol, true},
		{" scrip ", FieldSymbol, true},
		{"LDCP", FieldPrevClose, true},
		{"Change %", FieldChangePercent, true},
		{"% Change", FieldChangePercent, true},
		{"CHANGE (%)", FieldChangePercent, true},
		{"Change (Rs.)", FieldChange, true},
		{"Current", FieldPrice, true},
		{"Volume", FieldVolume, true},
		{"Turn-over", FieldVolume, true},
		{"Company Name", FieldUnknown, false},
		{"", FieldUnknown, false},
		{"AUTOMOBILE ASSEMBLER", FieldUnknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, ok := Lookup(tt.label)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFlattenHeader(t *testing.T) {
	assert.Equal(t, "BANKS / SCRIP", FlattenHeader([]string{"BANKS", "", "SCRIP"}))
	assert.Equal(t, "Symbol", FlattenHeader([]string{"Symbol", "symbol"}))
	assert.Equal(t, "Volume", FlattenHeader([]string{"Unnamed: 7_level_0", "Volume"}))
	assert.Equal(t, "", FlattenHeader(nil))
}

func TestMatchHeaderFallsBackToLevels(t *testing.T) {
	f, ok := MatchHeader([]string{"CEMENT", "VOLUME"})
	assert.True(t, ok)
	assert.Equal(t, FieldVolume, f)

	_, ok = MatchHeader([]string{"CEMENT", "Remarks"})
	assert.False(t, ok)
}

func TestFieldNumeric(t *testing.T) {
	assert.False(t, FieldSymbol.Numeric())
	assert.False(t, FieldSector.Numeric())
	for _, f := range []Field{FieldPrevClose, FieldOpen, FieldHigh, FieldLow, FieldPrice, FieldChange, FieldChangePercent, FieldVolume} {
		assert.True(t, f.Numeric(), f.String())
	}
}
