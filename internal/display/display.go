// Package display renders analytics responses for the terminal.
package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"

	"github.com/dyike/psxlens/internal/analytics"
	"github.com/dyike/psxlens/internal/models"
	"github.com/dyike/psxlens/internal/service"
)

const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			MarginBottom(1)

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))

	headerCellStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#3B82F6")).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	upStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	downStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))

	explanationStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("#F59E0B")).
				Padding(1, 2).
				Width(80)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F59E0B"))
)

var recordHeaders = []string{"#", "SYMBOL", "SECTOR", "LDCP", "OPEN", "HIGH", "LOW", "CURRENT", "CHANGE", "CHANGE %", "VOLUME"}

// Printer writes responses in one output format.
type Printer struct {
	out    io.Writer
	format string
}

func NewPrinter(out io.Writer, format string) (*Printer, error) {
	switch format {
	case "", FormatTable:
		format = FormatTable
	case FormatJSON, FormatYAML:
	default:
		return nil, fmt.Errorf("unknown output format %q (want table, json or yaml)", format)
	}
	return &Printer{out: out, format: format}, nil
}

func (p *Printer) Print(resp *service.Response) error {
	switch p.format {
	case FormatJSON:
		return WriteJSON(p.out, resp)
	case FormatYAML:
		return WriteYAML(p.out, resp)
	}
	_, err := fmt.Fprintln(p.out, RenderResponse(resp))
	return err
}

// RenderResponse is the full terminal view: title, summary, records,
// explanation and warnings.
func RenderResponse(resp *service.Response) string {
	var sections []string
	if res := resp.Result; res != nil {
		sections = append(sections, renderTitle(res))
		if res.Summary != nil {
			sections = append(sections, RenderSummary(res.Summary))
		}
		sections = append(sections, RenderRecords(res.Records))
	}
	if resp.Explanation != "" {
		sections = append(sections, explanationStyle.Render(resp.Explanation))
	}
	if len(resp.Warnings) > 0 {
		sections = append(sections, RenderWarnings(resp.Warnings))
	}
	return strings.Join(sections, "\n")
}

func renderTitle(res *analytics.Result) string {
	title := titleStyle.Render(strings.ToUpper(res.Task))
	if res.CapturedAt.IsZero() {
		return title
	}
	meta := metaStyle.Render(fmt.Sprintf("captured %s  snapshot %s", res.CapturedAt.Format("2006-01-02 15:04:05"), res.SnapshotID))
	return lipgloss.JoinVertical(lipgloss.Left, title, meta)
}

func cell(d decimal.NullDecimal) string {
	if !d.Valid {
		return "-"
	}
	return d.Decimal.StringFixed(2)
}

// RenderRecords draws records as a bordered table. Missing values show as "-".
func RenderRecords(records []models.Record) string {
	if len(records) == 0 {
		return metaStyle.Render("no records")
	}

	rows := make([][]string, 0, len(records))
	for i, r := range records {
		pct := cell(r.ChangePercent)
		if r.ChangePercentDerived {
			pct += "*"
		}
		sector := r.Sector
		if sector == "" {
			sector = "-"
		}
		rows = append(rows, []string{
			fmt.Sprint(i + 1), r.Symbol, sector,
			cell(r.PrevClose), cell(r.Open), cell(r.High), cell(r.Low), cell(r.Price),
			cell(r.Change), pct, r.Volume.String(),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(metaStyle).
		Headers(recordHeaders...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerCellStyle
			}
			if (col == 8 || col == 9) && row >= 0 && row < len(records) {
				switch records[row].Change.Decimal.Sign() {
				case 1:
					return upStyle.Padding(0, 1)
				case -1:
					return downStyle.Padding(0, 1)
				}
			}
			return cellStyle
		})
	return t.String()
}

// RenderSummary draws market breadth and the sector breakdown.
func RenderSummary(s *analytics.Summary) string {
	breadth := fmt.Sprintf("%d records  %s  %s  %d unchanged  %d without change  total volume %d",
		s.Records,
		upStyle.Render(fmt.Sprintf("%d advancers", s.Advancers)),
		downStyle.Render(fmt.Sprintf("%d decliners", s.Decliners)),
		s.Unchanged, s.MissingChange, s.TotalVolume)

	rows := make([][]string, 0, len(s.Sectors))
	for _, sec := range s.Sectors {
		rows = append(rows, []string{sec.Sector, fmt.Sprint(sec.Records), fmt.Sprint(sec.Volume), sec.MeanChangePercent.StringFixed(2)})
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(metaStyle).
		Headers("SECTOR", "RECORDS", "VOLUME", "MEAN CHANGE %").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerCellStyle
			}
			return cellStyle
		})
	return lipgloss.JoinVertical(lipgloss.Left, breadth, t.String())
}

func RenderWarnings(warnings []string) string {
	lines := make([]string, len(warnings))
	for i, w := range warnings {
		lines[i] = warningStyle.Render("warning: " + w)
	}
	return strings.Join(lines, "\n")
}

func Error(w io.Writer, err error) {
	fmt.Fprintln(w, downStyle.Bold(true).Render("error: "+err.Error()))
}

func Info(w io.Writer, message string) {
	fmt.Fprintln(w, lipgloss.NewStyle().Foreground(lipgloss.Color("#3B82F6")).Render(message))
}

func Success(w io.Writer, message string) {
	fmt.Fprintln(w, upStyle.Render(message))
}
