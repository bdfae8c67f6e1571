package normalize

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dyike/psxlens/internal/models"
)

var missingTokens = map[string]bool{
	"":    true,
	"-":   true,
	"--":  true,
	"—":   true,
	"n/a": true,
	"na":  true,
	"nil": true,
	"nan": true,
}

var multipliers = map[byte]decimal.Decimal{
	'k': decimal.NewFromInt(1_000),
	'm': decimal.NewFromInt(1_000_000),
	'b': decimal.NewFromInt(1_000_000_000),
}

// ParseDecimal parses a numeric cell. Thousands separators, percent and
// plus signs are stripped, "(1.5)" reads as -1.5 and K/M/B suffixes scale
// the value. Anything else that fails to parse is missing, never zero.
func ParseDecimal(raw string) decimal.NullDecimal {
	s := strings.ToLower(strings.TrimSpace(strings.ReplaceAll(raw, "\u00a0", " ")))
	if missingTokens[s] {
		return decimal.NullDecimal{}
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	s = strings.NewReplacer(",", "", "%", "", " ", "", "+", "").Replace(s)
	if s == "" {
		return decimal.NullDecimal{}
	}

	mult := decimal.NewFromInt(1)
	if m, ok := multipliers[s[len(s)-1]]; ok {
		mult = m
		s = s[:len(s)-1]
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	d = d.Mul(mult)
	if negative {
		d = d.Neg()
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

// ParseVolume parses a share count; negative or fractional values are missing.
func ParseVolume(raw string) models.NullInt64 {
	d := ParseDecimal(raw)
	if !d.Valid || d.Decimal.IsNegative() || !d.Decimal.Equal(d.Decimal.Truncate(0)) {
		return models.NullInt64{}
	}
	// IntPart wraps silently outside the int64 range.
	if !d.Decimal.BigInt().IsInt64() {
		return models.NullInt64{}
	}
	return models.NewNullInt64(d.Decimal.IntPart())
}

func isBlank(raw string) bool {
	return strings.TrimSpace(strings.ReplaceAll(raw, "\u00a0", " ")) == ""
}
