package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		raw   string
		want  string
		valid bool
	}{
		{"120.50", "120.5", true},
		{"+1.25", "1.25", true},
		{"-11.50", "-11.5", true},
		{"1.05%", "1.05", true},
		{"1,204,500", "1204500", true},
		{"(3.20)", "-3.2", true},
		{"0", "0", true},
		{"0.00", "0", true},
		{"1.5M", "1500000", true},
		{" 2,000 ", "2000", true},
		{"", "", false},
		{"-", "", false},
		{"N/A", "", false},
		{"abc", "", false},
		{"%", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := ParseDecimal(tt.raw)
			assert.Equal(t, tt.valid, got.Valid)
			if tt.valid {
				assert.Equal(t, tt.want, got.Decimal.String())
			}
		})
	}
}

func TestParseVolume(t *testing.T) {
	v := ParseVolume("500,000")
	assert.True(t, v.Valid)
	assert.EqualValues(t, 500000, v.Int64)

	zero := ParseVolume("0")
	assert.True(t, zero.Valid, "zero is a value, not missing")
	assert.EqualValues(t, 0, zero.Int64)

	assert.False(t, ParseVolume("-5").Valid)
	assert.False(t, ParseVolume("12.5").Valid)
	assert.False(t, ParseVolume("--").Valid)

	assert.False(t, ParseVolume("18446744073709551615").Valid, "beyond int64 is missing")
	assert.False(t, ParseVolume("99999999999999999999").Valid)
	assert.False(t, ParseVolume("99,999,999,999B").Valid)

	largest := ParseVolume("9223372036854775807")
	assert.True(t, largest.Valid)
	assert.EqualValues(t, int64(9223372036854775807), largest.Int64)
}
