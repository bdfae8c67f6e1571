package explain

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/dyike/psxlens/internal/analytics"
	"github.com/dyike/psxlens/internal/models"
)

func formatDecimal(d decimal.NullDecimal) string {
	if !d.Valid {
		return "-"
	}
	return d.Decimal.StringFixed(2)
}

// FormatData renders only the numbers of res as a plain text table. No raw
// HTML or records outside the result ever reach the prompt.
func FormatData(res *analytics.Result) string {
	if res == nil {
		return "(no records)"
	}
	var b strings.Builder

	if s := res.Summary; s != nil {
		fmt.Fprintf(&b, "Market breadth: %d records, %d advancers, %d decliners, %d unchanged, %d without change data\n",
			s.Records, s.Advancers, s.Decliners, s.Unchanged, s.MissingChange)
		fmt.Fprintf(&b, "Total volume: %d\n\n", s.TotalVolume)

		tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "SECTOR\tRECORDS\tVOLUME\tMEAN CHANGE %")
		for _, sec := range s.Sectors {
			fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", sec.Sector, sec.Records, sec.Volume, sec.MeanChangePercent.StringFixed(2))
		}
		tw.Flush()
		b.WriteString("\n")
	}

	if len(res.Records) > 0 {
		derived := false
		tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "RANK\tSYMBOL\tSECTOR\tLDCP\tOPEN\tHIGH\tLOW\tCURRENT\tCHANGE\tCHANGE %\tVOLUME")
		for i, r := range res.Records {
			pct := formatDecimal(r.ChangePercent)
			if r.ChangePercentDerived {
				pct += "*"
				derived = true
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				i+1, r.Symbol, sectorOrDash(r),
				formatDecimal(r.PrevClose), formatDecimal(r.Open), formatDecimal(r.High), formatDecimal(r.Low),
				formatDecimal(r.Price), formatDecimal(r.Change), pct, r.Volume.String())
		}
		tw.Flush()
		if derived {
			b.WriteString("* change % computed from CHANGE / LDCP\n")
		}
	}

	if b.Len() == 0 {
		return "(no records)"
	}
	return strings.TrimRight(b.String(), "\n")
}

func sectorOrDash(r models.Record) string {
	if r.Sector == "" {
		return "-"
	}
	return r.Sector
}
