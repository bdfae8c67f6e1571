package normalize

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phuslu/log"
	"github.com/shopspring/decimal"

	"github.com/dyike/psxlens/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Normalizer converts RawTables into Records that conform to a schema.
type Normalizer struct {
	schema   []Field
	inSchema map[Field]bool
	logger   *log.Logger
}

// New returns a Normalizer for schema; an empty schema means DefaultSchema.
// Symbol is always part of the schema.
func New(schema []Field, logger *log.Logger) *Normalizer {
	if len(schema) == 0 {
		schema = DefaultSchema
	}
	in := map[Field]bool{FieldSymbol: true}
	for _, f := range schema {
		in[f] = true
	}
	return &Normalizer{schema: schema, inSchema: in, logger: logger}
}

// columnMap is the position of each matched field in a table.
type columnMap map[Field]int

func (m columnMap) accepted() bool {
	if _, ok := m[FieldSymbol]; !ok {
		return false
	}
	for f := range m {
		if f.Numeric() {
			return true
		}
	}
	return false
}

func (n *Normalizer) mapColumns(tableIndex int, headers [][]string) columnMap {
	cols := columnMap{}
	for i, levels := range headers {
		f, ok := MatchHeader(levels)
		if !ok || !n.inSchema[f] {
			continue
		}
		if first, dup := cols[f]; dup {
			n.logger.Warn().
				Int("table", tableIndex).
				Str("field", f.String()).
				Int("kept_column", first).
				Int("ignored_column", i).
				Str("ignored_header", FlattenHeader(levels)).
				Msg("ambiguous header, keeping first column")
			continue
		}
		cols[f] = i
	}
	return cols
}

// Normalize returns the records of t, or ok=false when t is not a market
// table (navigation widgets and the like). Skipping is not an error.
func (n *Normalizer) Normalize(t models.RawTable) ([]models.Record, bool) {
	rows := t.Rows
	cols := n.mapColumns(t.Index, t.Headers)

	// Some pages render the real header as the first body row.
	if !cols.accepted() && len(rows) > 0 {
		promoted := make([][]string, len(rows[0]))
		for i, v := range rows[0] {
			promoted[i] = []string{v}
		}
		if alt := n.mapColumns(t.Index, promoted); alt.accepted() {
			cols = alt
			rows = rows[1:]
		}
	}

	if !cols.accepted() {
		n.logger.Debug().Int("table", t.Index).Str("caption", t.Caption).Msg("table does not match market schema, skipping")
		return nil, false
	}

	sector := sectorHint(t)
	_, hasPct := cols[FieldChangePercent]

	records := make([]models.Record, 0, len(rows))
	for _, row := range rows {
		rec, ok := n.buildRecord(row, cols)
		if !ok {
			continue
		}
		rec.Table = t.Index
		if rec.Sector == "" {
			rec.Sector = sector
		}
		if !hasPct && n.inSchema[FieldChangePercent] {
			deriveChangePercent(&rec)
		}
		records = append(records, rec)
	}
	return records, true
}

func (n *Normalizer) buildRecord(row []string, cols columnMap) (models.Record, bool) {
	cell := func(f Field) (string, bool) {
		i, ok := cols[f]
		if !ok || i >= len(row) {
			return "", false
		}
		return row[i], true
	}

	symbol, _ := cell(FieldSymbol)
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return models.Record{}, false
	}
	// Long tables repeat their header row every few lines.
	if f, ok := Lookup(symbol); ok && f == FieldSymbol {
		return models.Record{}, false
	}

	// A row whose numeric cells are all blank is a section label, not a quote.
	anyNumeric := false
	for f, i := range cols {
		if f.Numeric() && i < len(row) && !isBlank(row[i]) {
			anyNumeric = true
			break
		}
	}
	if !anyNumeric {
		return models.Record{}, false
	}

	rec := models.Record{Symbol: symbol}
	if v, ok := cell(FieldSector); ok {
		rec.Sector = strings.TrimSpace(v)
	}
	decimals := map[Field]*decimal.NullDecimal{
		FieldPrevClose:     &rec.PrevClose,
		FieldOpen:          &rec.Open,
		FieldHigh:          &rec.High,
		FieldLow:           &rec.Low,
		FieldPrice:         &rec.Price,
		FieldChange:        &rec.Change,
		FieldChangePercent: &rec.ChangePercent,
	}
	for f, dst := range decimals {
		if v, ok := cell(f); ok {
			*dst = ParseDecimal(v)
		}
	}
	if v, ok := cell(FieldVolume); ok {
		rec.Volume = ParseVolume(v)
	}
	return rec, true
}

func deriveChangePercent(rec *models.Record) {
	if !rec.Change.Valid || !rec.PrevClose.Valid || rec.PrevClose.Decimal.IsZero() {
		return
	}
	pct := rec.Change.Decimal.Div(rec.PrevClose.Decimal).Mul(hundred).Round(2)
	rec.ChangePercent = decimal.NullDecimal{Decimal: pct, Valid: true}
	rec.ChangePercentDerived = true
}

// sectorHint is the label shared by the outermost header level of every
// column (a sector banner spanning the table), else the caption.
func sectorHint(t models.RawTable) string {
	if len(t.Headers) > 0 && len(t.Headers[0]) > 1 {
		top := strings.TrimSpace(t.Headers[0][0])
		shared := top != ""
		for _, levels := range t.Headers[1:] {
			if len(levels) == 0 || !strings.EqualFold(strings.TrimSpace(levels[0]), top) {
				shared = false
				break
			}
		}
		if _, isField := Lookup(top); shared && !isField {
			return top
		}
	}
	return strings.TrimSpace(t.Caption)
}

// NormalizeAll builds a snapshot from every recognized table. It fails with
// a SchemaError only when no table yields records.
func (n *Normalizer) NormalizeAll(source string, tables []models.RawTable) (*models.Snapshot, error) {
	snap := &models.Snapshot{
		ID:         uuid.NewString(),
		Source:     source,
		CapturedAt: time.Now(),
		TablesSeen: len(tables),
	}

	seen := make(map[string]int)
	for _, t := range tables {
		records, ok := n.Normalize(t)
		if !ok {
			continue
		}
		snap.TablesRecognized++
		for _, r := range records {
			key := strings.ToUpper(r.Symbol)
			if first, dup := seen[key]; dup {
				n.logger.Warn().
					Str("symbol", r.Symbol).
					Int("first_table", first).
					Int("table", r.Table).
					Msg("duplicate symbol, lookups use the first occurrence")
			} else {
				seen[key] = r.Table
			}
			snap.Records = append(snap.Records, r)
		}
	}

	if len(snap.Records) == 0 {
		return nil, &models.SchemaError{Tables: len(tables)}
	}

	n.logger.Info().
		Str("snapshot", snap.ID).
		Int("tables", snap.TablesSeen).
		Int("recognized", snap.TablesRecognized).
		Int("records", len(snap.Records)).
		Msg("snapshot normalized")

	return snap, nil
}
