package models

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// RawTable is one HTML table as it came off the page.
// Headers holds, per column, the header levels from outermost to innermost.
type RawTable struct {
	Index   int        `json:"index"`
	Caption string     `json:"caption,omitempty"`
	Headers [][]string `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// Columns returns the number of columns in the widest row or header.
func (t RawTable) Columns() int {
	n := len(t.Headers)
	for _, row := range t.Rows {
		if len(row) > n {
			n = len(row)
		}
	}
	return n
}

// NullInt64 is an integer that may be missing. A missing value is never zero.
type NullInt64 struct {
	Int64 int64
	Valid bool
}

func NewNullInt64(v int64) NullInt64 {
	return NullInt64{Int64: v, Valid: true}
}

func (n NullInt64) String() string {
	if !n.Valid {
		return "-"
	}
	return strconv.FormatInt(n.Int64, 10)
}

func (n NullInt64) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Int64)
}

// Record is one normalized row of the market summary.
type Record struct {
	Symbol        string              `json:"symbol"`
	Sector        string              `json:"sector,omitempty"`
	PrevClose     decimal.NullDecimal `json:"ldcp"`
	Open          decimal.NullDecimal `json:"open"`
	High          decimal.NullDecimal `json:"high"`
	Low           decimal.NullDecimal `json:"low"`
	Price         decimal.NullDecimal `json:"price"`
	Change        decimal.NullDecimal `json:"change"`
	ChangePercent decimal.NullDecimal `json:"change_percent"`
	Volume        NullInt64           `json:"volume"`

	// ChangePercentDerived is set when the percentage was computed from
	// Change and PrevClose because the source table had no such column.
	ChangePercentDerived bool `json:"change_percent_derived,omitempty"`
	Table                int  `json:"table"`
}

// Snapshot is every record captured by one scrape pass. It is never
// mutated after construction, so it can be shared between goroutines.
type Snapshot struct {
	ID               string    `json:"id"`
	Source           string    `json:"source"`
	CapturedAt       time.Time `json:"captured_at"`
	Records          []Record  `json:"records"`
	TablesSeen       int       `json:"tables_seen"`
	TablesRecognized int       `json:"tables_recognized"`
}

func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Records)
}
