// Package analytics computes read-only views over a market snapshot.
//
// Every function copies the records it returns, so results can be handed
// out freely while the snapshot itself stays untouched and shareable
// across goroutines without locking.
package analytics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dyike/psxlens/internal/models"
)

const (
	TaskOverview      = "market overview"
	TaskTopGainers    = "top gainers"
	TaskTopLosers     = "top losers"
	TaskTopVolume     = "top volume"
	TaskSymbol        = "symbol snapshot"
	TaskCompareVolume = "volume comparison"
)

// Result is a derived view over one snapshot.
type Result struct {
	Task       string          `json:"task"`
	SnapshotID string          `json:"snapshot_id"`
	CapturedAt time.Time       `json:"captured_at"`
	Records    []models.Record `json:"records"`
	Summary    *Summary        `json:"summary,omitempty"`
	Warnings   []string        `json:"warnings,omitempty"`
}

// Record returns the first record of the result, for single-symbol views.
func (r *Result) Record() (models.Record, bool) {
	if r == nil || len(r.Records) == 0 {
		return models.Record{}, false
	}
	return r.Records[0], true
}

// Summary holds market-wide figures for the overview.
type Summary struct {
	Records       int             `json:"records"`
	Advancers     int             `json:"advancers"`
	Decliners     int             `json:"decliners"`
	Unchanged     int             `json:"unchanged"`
	MissingChange int             `json:"missing_change"`
	TotalVolume   int64           `json:"total_volume"`
	Sectors       []SectorSummary `json:"sectors"`
}

type SectorSummary struct {
	Sector            string          `json:"sector"`
	Records           int             `json:"records"`
	Volume            int64           `json:"volume"`
	MeanChangePercent decimal.Decimal `json:"mean_change_percent"`
	withChange        int
}

// Engine answers analytics queries against a single snapshot.
type Engine struct {
	snap *models.Snapshot
}

func NewEngine(snap *models.Snapshot) *Engine {
	return &Engine{snap: snap}
}

func (e *Engine) newResult(task string) *Result {
	res := &Result{Task: task}
	if e.snap != nil {
		res.SnapshotID = e.snap.ID
		res.CapturedAt = e.snap.CapturedAt
	}
	return res
}

func (e *Engine) records() []models.Record {
	if e.snap == nil {
		return nil
	}
	return e.snap.Records
}

// filtered copies the records that satisfy keep.
func (e *Engine) filtered(keep func(models.Record) bool) []models.Record {
	var out []models.Record
	for _, r := range e.records() {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func limit(records []models.Record, n int) []models.Record {
	if n < 0 {
		n = 0
	}
	if len(records) > n {
		return records[:n]
	}
	return records
}

func bySymbol(a, b models.Record) bool {
	return strings.ToUpper(a.Symbol) < strings.ToUpper(b.Symbol)
}

// TopGainers returns at most n records by change percent, highest first.
// Records without a change percent are excluded; ties go to the lower symbol.
func (e *Engine) TopGainers(n int) *Result {
	return e.rankByChange(TaskTopGainers, n, true)
}

// TopLosers is TopGainers in ascending order.
func (e *Engine) TopLosers(n int) *Result {
	return e.rankByChange(TaskTopLosers, n, false)
}

func (e *Engine) rankByChange(task string, n int, desc bool) *Result {
	recs := e.filtered(func(r models.Record) bool { return r.ChangePercent.Valid })
	sort.SliceStable(recs, func(i, j int) bool {
		a, b := recs[i].ChangePercent.Decimal, recs[j].ChangePercent.Decimal
		if c := a.Cmp(b); c != 0 {
			if desc {
				return c > 0
			}
			return c < 0
		}
		if desc {
			return bySymbol(recs[i], recs[j])
		}
		return bySymbol(recs[j], recs[i])
	})

	res := e.newResult(task)
	res.Records = limit(recs, n)
	return res
}

// TopByVolume returns at most n records by traded volume, highest first.
func (e *Engine) TopByVolume(n int) *Result {
	recs := e.filtered(func(r models.Record) bool { return r.Volume.Valid })
	sortByVolume(recs)

	res := e.newResult(TaskTopVolume)
	res.Records = limit(recs, n)
	return res
}

func sortByVolume(recs []models.Record) {
	sort.SliceStable(recs, func(i, j int) bool {
		a, b := recs[i].Volume, recs[j].Volume
		if a.Valid != b.Valid {
			return a.Valid
		}
		if a.Int64 != b.Int64 {
			return a.Int64 > b.Int64
		}
		return bySymbol(recs[i], recs[j])
	})
}

// lookup returns the first record whose symbol equals symbol ignoring case
// and how many records share it.
func (e *Engine) lookup(symbol string) (models.Record, int) {
	var (
		first models.Record
		count int
	)
	for _, r := range e.records() {
		if strings.EqualFold(r.Symbol, symbol) {
			if count == 0 {
				first = r
			}
			count++
		}
	}
	return first, count
}

// SnapshotFor returns the record for symbol. Duplicates resolve to the
// first one seen and add a warning.
func (e *Engine) SnapshotFor(symbol string) (*Result, error) {
	symbol = strings.TrimSpace(symbol)
	rec, count := e.lookup(symbol)
	if count == 0 {
		return nil, &models.NotFoundError{Symbols: []string{symbol}}
	}

	res := e.newResult(TaskSymbol)
	res.Records = []models.Record{rec}
	if count > 1 {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("symbol %s appears %d times in the snapshot; showing the first (table %d)", rec.Symbol, count, rec.Table))
	}
	return res, nil
}

// CompareVolume orders the given symbols by volume, highest first, with
// missing volumes last. Unknown symbols become warnings; if none is known
// the result is a NotFoundError.
func (e *Engine) CompareVolume(symbols []string) (*Result, error) {
	res := e.newResult(TaskCompareVolume)

	var missing []string
	picked := make(map[string]bool)
	for _, s := range symbols {
		s = strings.TrimSpace(s)
		key := strings.ToUpper(s)
		if s == "" || picked[key] {
			continue
		}
		picked[key] = true

		rec, count := e.lookup(s)
		if count == 0 {
			missing = append(missing, s)
			continue
		}
		if count > 1 {
			res.Warnings = append(res.Warnings, fmt.Sprintf("symbol %s appears %d times; using the first", rec.Symbol, count))
		}
		if !rec.Volume.Valid {
			res.Warnings = append(res.Warnings, fmt.Sprintf("symbol %s has no volume", rec.Symbol))
		}
		res.Records = append(res.Records, rec)
	}

	if len(res.Records) == 0 {
		if len(missing) == 0 {
			return nil, fmt.Errorf("no symbols to compare")
		}
		return nil, &models.NotFoundError{Symbols: missing}
	}
	for _, s := range missing {
		res.Warnings = append(res.Warnings, fmt.Sprintf("symbol %s not found", s))
	}

	sortByVolume(res.Records)
	return res, nil
}

// Overview summarizes market breadth and sector activity and lists the n
// most traded records.
func (e *Engine) Overview(n int) *Result {
	sum := &Summary{}
	sectors := make(map[string]*SectorSummary)
	sectorSums := make(map[string]decimal.Decimal)

	for _, r := range e.records() {
		sum.Records++

		name := r.Sector
		if name == "" {
			name = "UNCLASSIFIED"
		}
		sec, ok := sectors[name]
		if !ok {
			sec = &SectorSummary{Sector: name}
			sectors[name] = sec
		}
		sec.Records++

		if r.Volume.Valid {
			sum.TotalVolume += r.Volume.Int64
			sec.Volume += r.Volume.Int64
		}

		if !r.ChangePercent.Valid && !r.Change.Valid {
			sum.MissingChange++
		} else {
			sign := r.Change.Decimal.Sign()
			if !r.Change.Valid {
				sign = r.ChangePercent.Decimal.Sign()
			}
			switch {
			case sign > 0:
				sum.Advancers++
			case sign < 0:
				sum.Decliners++
			default:
				sum.Unchanged++
			}
		}

		if r.ChangePercent.Valid {
			sectorSums[name] = sectorSums[name].Add(r.ChangePercent.Decimal)
			sec.withChange++
		}
	}

	for name, sec := range sectors {
		if sec.withChange > 0 {
			sec.MeanChangePercent = sectorSums[name].Div(decimal.NewFromInt(int64(sec.withChange))).Round(2)
		}
		sum.Sectors = append(sum.Sectors, *sec)
	}
	sort.Slice(sum.Sectors, func(i, j int) bool {
		if sum.Sectors[i].Volume != sum.Sectors[j].Volume {
			return sum.Sectors[i].Volume > sum.Sectors[j].Volume
		}
		return sum.Sectors[i].Sector < sum.Sectors[j].Sector
	})

	res := e.newResult(TaskOverview)
	res.Summary = sum
	res.Records = e.TopByVolume(n).Records
	return res
}
