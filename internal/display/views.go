package display

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/dyike/psxlens/internal/analytics"
	"github.com/dyike/psxlens/internal/models"
	"github.com/dyike/psxlens/internal/service"
)

// RecordView is the machine-readable form of a record. Missing values are null.
type RecordView struct {
	Symbol               string  `json:"symbol" yaml:"symbol"`
	Sector               string  `json:"sector,omitempty" yaml:"sector,omitempty"`
	LDCP                 *string `json:"ldcp" yaml:"ldcp"`
	Open                 *string `json:"open" yaml:"open"`
	High                 *string `json:"high" yaml:"high"`
	Low                  *string `json:"low" yaml:"low"`
	Current              *string `json:"current" yaml:"current"`
	Change               *string `json:"change" yaml:"change"`
	ChangePercent        *string `json:"change_percent" yaml:"change_percent"`
	ChangePercentDerived bool    `json:"change_percent_derived,omitempty" yaml:"change_percent_derived,omitempty"`
	Volume               *int64  `json:"volume" yaml:"volume"`
}

type SectorView struct {
	Sector            string `json:"sector" yaml:"sector"`
	Records           int    `json:"records" yaml:"records"`
	Volume            int64  `json:"volume" yaml:"volume"`
	MeanChangePercent string `json:"mean_change_percent" yaml:"mean_change_percent"`
}

type SummaryView struct {
	Records       int          `json:"records" yaml:"records"`
	Advancers     int          `json:"advancers" yaml:"advancers"`
	Decliners     int          `json:"decliners" yaml:"decliners"`
	Unchanged     int          `json:"unchanged" yaml:"unchanged"`
	MissingChange int          `json:"missing_change" yaml:"missing_change"`
	TotalVolume   int64        `json:"total_volume" yaml:"total_volume"`
	Sectors       []SectorView `json:"sectors" yaml:"sectors"`
}

type ResponseView struct {
	Task        string       `json:"task" yaml:"task"`
	SnapshotID  string       `json:"snapshot_id,omitempty" yaml:"snapshot_id,omitempty"`
	CapturedAt  string       `json:"captured_at,omitempty" yaml:"captured_at,omitempty"`
	Records     []RecordView `json:"records" yaml:"records"`
	Summary     *SummaryView `json:"summary,omitempty" yaml:"summary,omitempty"`
	Explanation string       `json:"explanation,omitempty" yaml:"explanation,omitempty"`
	Warnings    []string     `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

func optDecimal(d decimal.NullDecimal) *string {
	if !d.Valid {
		return nil
	}
	s := d.Decimal.String()
	return &s
}

func NewRecordView(r models.Record) RecordView {
	v := RecordView{
		Symbol:               r.Symbol,
		Sector:               r.Sector,
		LDCP:                 optDecimal(r.PrevClose),
		Open:                 optDecimal(r.Open),
		High:                 optDecimal(r.High),
		Low:                  optDecimal(r.Low),
		Current:              optDecimal(r.Price),
		Change:               optDecimal(r.Change),
		ChangePercent:        optDecimal(r.ChangePercent),
		ChangePercentDerived: r.ChangePercentDerived,
	}
	if r.Volume.Valid {
		vol := r.Volume.Int64
		v.Volume = &vol
	}
	return v
}

func newSummaryView(s *analytics.Summary) *SummaryView {
	if s == nil {
		return nil
	}
	v := &SummaryView{
		Records:       s.Records,
		Advancers:     s.Advancers,
		Decliners:     s.Decliners,
		Unchanged:     s.Unchanged,
		MissingChange: s.MissingChange,
		TotalVolume:   s.TotalVolume,
	}
	for _, sec := range s.Sectors {
		v.Sectors = append(v.Sectors, SectorView{
			Sector:            sec.Sector,
			Records:           sec.Records,
			Volume:            sec.Volume,
			MeanChangePercent: sec.MeanChangePercent.StringFixed(2),
		})
	}
	return v
}

func NewResponseView(resp *service.Response) ResponseView {
	v := ResponseView{
		Records:     []RecordView{},
		Explanation: resp.Explanation,
		Warnings:    resp.Warnings,
	}
	if res := resp.Result; res != nil {
		v.Task = res.Task
		v.SnapshotID = res.SnapshotID
		if !res.CapturedAt.IsZero() {
			v.CapturedAt = res.CapturedAt.Format(time.RFC3339)
		}
		for _, r := range res.Records {
			v.Records = append(v.Records, NewRecordView(r))
		}
		v.Summary = newSummaryView(res.Summary)
	}
	return v
}

func WriteJSON(w io.Writer, resp *service.Response) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewResponseView(resp)); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

func WriteYAML(w io.Writer, resp *service.Response) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(NewResponseView(resp)); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}
