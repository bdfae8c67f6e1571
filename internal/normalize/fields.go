// Package normalize maps raw scraped tables onto the canonical market schema.
package normalize

import (
	"strings"
	"unicode"
)

// Field is a canonical column of the market schema.
type Field int

const (
	FieldUnknown Field = iota
	FieldSymbol
	FieldSector
	FieldPrevClose
	FieldOpen
	FieldHigh
	FieldLow
	FieldPrice
	FieldChange
	FieldChangePercent
	FieldVolume
)

var fieldNames = map[Field]string{
	FieldUnknown:       "unknown",
	FieldSymbol:        "symbol",
	FieldSector:        "sector",
	FieldPrevClose:     "ldcp",
	FieldOpen:          "open",
	FieldHigh:          "high",
	FieldLow:           "low",
	FieldPrice:         "price",
	FieldChange:        "change",
	FieldChangePercent: "change_percent",
	FieldVolume:        "volume",
}

func (f Field) String() string {
	if name, ok := fieldNames[f]; ok {
		return name
	}
	return "unknown"
}

// Numeric reports whether values of f are parsed as numbers.
func (f Field) Numeric() bool {
	return f >= FieldPrevClose && f <= FieldVolume
}

// DefaultSchema is every canonical field in display order.
var DefaultSchema = []Field{
	FieldSymbol,
	FieldSector,
	FieldPrevClose,
	FieldOpen,
	FieldHigh,
	FieldLow,
	FieldPrice,
	FieldChange,
	FieldChangePercent,
	FieldVolume,
}

// synonyms is keyed by the canonical form produced by headerKey.
var synonyms = map[string]Field{
	"symbol":       FieldSymbol,
	"sym":          FieldSymbol,
	"scrip":        FieldSymbol,
	"scripcode":    FieldSymbol,
	"scripname":    FieldSymbol,
	"ticker":       FieldSymbol,
	"code":         FieldSymbol,
	"stock":        FieldSymbol,
	"stockcode":    FieldSymbol,
	"securitycode": FieldSymbol,

	"sector":     FieldSector,
	"sectorname": FieldSector,
	"industry":   FieldSector,

	"ldcp":              FieldPrevClose,
	"prevclose":         FieldPrevClose,
	"previousclose":     FieldPrevClose,
	"lastclose":         FieldPrevClose,
	"lastdayclose":      FieldPrevClose,
	"lastdaycloseprice": FieldPrevClose,

	"open":      FieldOpen,
	"openprice": FieldOpen,
	"opening":   FieldOpen,

	"high":      FieldHigh,
	"highprice": FieldHigh,
	"dayhigh":   FieldHigh,

	"low":      FieldLow,
	"lowprice": FieldLow,
	"daylow":   FieldLow,

	"current":      FieldPrice,
	"currentprice": FieldPrice,
	"last":         FieldPrice,
	"lastprice":    FieldPrice,
	"lastrate":     FieldPrice,
	"ltp":          FieldPrice,
	"price":        FieldPrice,
	"close":        FieldPrice,
	"closeprice":   FieldPrice,
	"rate":         FieldPrice,

	"change":    FieldChange,
	"chg":       FieldChange,
	"netchange": FieldChange,

	"changepct":     FieldChangePercent,
	"pctchange":     FieldChangePercent,
	"chgpct":        FieldChangePercent,
	"pctchg":        FieldChangePercent,
	"changepercent": FieldChangePercent,
	"percentchange": FieldChangePercent,
	"changeinpct":   FieldChangePercent,
	"pct":           FieldChangePercent,
	"percent":       FieldChangePercent,

	"volume":        FieldVolume,
	"vol":           FieldVolume,
	"turnover":      FieldVolume,
	"tradedvolume":  FieldVolume,
	"volumetraded":  FieldVolume,
	"sharestraded":  FieldVolume,
	"totalvolume":   FieldVolume,
	"volumeshares":  FieldVolume,
	"tradedshares":  FieldVolume,
	"totalturnover": FieldVolume,
}

// unit suffixes that may trail a header, e.g. "Change (Rs.)".
var unitSuffixes = []string{"inrs", "rs", "pkr"}

// headerKey lower-cases label, spells out '%' and drops everything that
// is not a letter or digit.
func headerKey(label string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(label) {
		switch {
		case r == '%':
			b.WriteString("pct")
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Lookup matches a single header label against the synonym table.
func Lookup(label string) (Field, bool) {
	key := headerKey(label)
	if key == "" {
		return FieldUnknown, false
	}
	if f, ok := synonyms[key]; ok {
		return f, true
	}
	for _, suffix := range unitSuffixes {
		if trimmed := strings.TrimSuffix(key, suffix); trimmed != key && trimmed != "" {
			if f, ok := synonyms[trimmed]; ok {
				return f, true
			}
		}
	}
	return FieldUnknown, false
}

// FlattenHeader joins the non-empty levels of a column header with " / ",
// collapsing levels that repeat the one above.
func FlattenHeader(levels []string) string {
	parts := make([]string, 0, len(levels))
	for _, l := range levels {
		l = strings.TrimSpace(l)
		if l == "" || strings.HasPrefix(strings.ToLower(l), "unnamed") {
			continue
		}
		if len(parts) > 0 && strings.EqualFold(parts[len(parts)-1], l) {
			continue
		}
		parts = append(parts, l)
	}
	return strings.Join(parts, " / ")
}

// MatchHeader matches a possibly multi-level header: first the flattened
// label, then each level from innermost to outermost.
func MatchHeader(levels []string) (Field, bool) {
	if f, ok := Lookup(FlattenHeader(levels)); ok {
		return f, true
	}
	for i := len(levels) - 1; i >= 0; i-- {
		if f, ok := Lookup(levels[i]); ok {
			return f, true
		}
	}
	return FieldUnknown, false
}
