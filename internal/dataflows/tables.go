package dataflows

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/dyike/psxlens/internal/models"
)

const headingSelector = "h1, h2, h3, h4, h5, h6"

type cell struct {
	text    string
	colSpan int
	rowSpan int
}

type tableRow struct {
	cells  []cell
	header bool
}

// ParseTables extracts every <table> in the document in page order.
// Tables without any non-empty cell are dropped.
func ParseTables(doc string) ([]models.RawTable, error) {
	root, err := goquery.NewDocumentFromReader(strings.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var tables []models.RawTable
	root.Find("table").Each(func(i int, s *goquery.Selection) {
		t := parseTable(s)
		if len(t.Headers) == 0 && len(t.Rows) == 0 {
			return
		}
		t.Index = i
		tables = append(tables, t)
	})
	return tables, nil
}

func parseTable(s *goquery.Selection) models.RawTable {
	rows := collectRows(s)
	grid := layoutGrid(rows)

	// Leading header rows become header levels; anything after the first
	// data row is data even if it uses <th>.
	headerCount := 0
	for headerCount < len(rows) && rows[headerCount].header {
		headerCount++
	}

	width := 0
	for _, r := range grid {
		if len(r) > width {
			width = len(r)
		}
	}

	t := models.RawTable{Caption: tableCaption(s)}
	if headerCount > 0 {
		t.Headers = make([][]string, width)
		for c := 0; c < width; c++ {
			levels := make([]string, 0, headerCount)
			for h := 0; h < headerCount; h++ {
				levels = append(levels, at(grid[h], c))
			}
			t.Headers[c] = levels
		}
	}

	for _, r := range grid[headerCount:] {
		if blank(r) {
			continue
		}
		row := make([]string, width)
		copy(row, r)
		t.Rows = append(t.Rows, row)
	}
	return t
}

// collectRows walks the direct row containers of the table so nested
// tables don't leak rows into their parent.
func collectRows(table *goquery.Selection) []tableRow {
	var rows []tableRow
	addRow := func(tr *goquery.Selection, inHead bool) {
		var cells []cell
		allTH := true
		tr.ChildrenFiltered("td, th").Each(func(_ int, c *goquery.Selection) {
			if goquery.NodeName(c) != "th" {
				allTH = false
			}
			cells = append(cells, cell{
				text:    cleanCellText(c.Text()),
				colSpan: spanAttr(c, "colspan"),
				rowSpan: spanAttr(c, "rowspan"),
			})
		})
		if len(cells) == 0 {
			return
		}
		rows = append(rows, tableRow{cells: cells, header: inHead || allTH})
	}

	table.Children().Each(func(_ int, child *goquery.Selection) {
		switch goquery.NodeName(child) {
		case "tr":
			addRow(child, false)
		case "thead":
			child.ChildrenFiltered("tr").Each(func(_ int, tr *goquery.Selection) { addRow(tr, true) })
		case "tbody", "tfoot":
			child.ChildrenFiltered("tr").Each(func(_ int, tr *goquery.Selection) { addRow(tr, false) })
		}
	})
	return rows
}

// layoutGrid places cells on a virtual grid honoring colspan and rowspan.
// Header cells are repeated over every slot they cover so each column
// carries its full header path; spanned data slots stay empty except for
// rowspans, which repeat the value downwards.
func layoutGrid(rows []tableRow) [][]string {
	grid := make([][]string, len(rows))
	filled := make([][]bool, len(rows))

	ensure := func(r, c int) {
		for len(grid[r]) <= c {
			grid[r] = append(grid[r], "")
			filled[r] = append(filled[r], false)
		}
	}

	for r, row := range rows {
		col := 0
		for _, cl := range row.cells {
			for col < len(filled[r]) && filled[r][col] {
				col++
			}
			for dr := 0; dr < cl.rowSpan && r+dr < len(rows); dr++ {
				for dc := 0; dc < cl.colSpan; dc++ {
					ensure(r+dr, col+dc)
					text := cl.text
					if dc > 0 && !row.header {
						text = ""
					}
					grid[r+dr][col+dc] = text
					filled[r+dr][col+dc] = true
				}
			}
			col += cl.colSpan
		}
	}
	return grid
}

func tableCaption(s *goquery.Selection) string {
	if c := cleanCellText(s.ChildrenFiltered("caption").First().Text()); c != "" {
		return c
	}
	// Walk up a couple of wrappers looking for the closest preceding heading.
	node := s
	for depth := 0; depth < 3 && node.Length() > 0; depth++ {
		if h := node.PrevAllFiltered(headingSelector).First(); h.Length() > 0 {
			return cleanCellText(h.Text())
		}
		node = node.Parent()
		if name := goquery.NodeName(node); name == "" || name == "body" || name == "#document" {
			break
		}
	}
	return ""
}

func spanAttr(s *goquery.Selection, name string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s.AttrOr(name, "1")))
	if err != nil || n < 1 {
		return 1
	}
	// Guard against absurd spans in broken markup.
	if n > 100 {
		return 100
	}
	return n
}

func cleanCellText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.Join(strings.Fields(s), " ")
}

func at(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func blank(row []string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}
