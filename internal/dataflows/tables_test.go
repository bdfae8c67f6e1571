package dataflows

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sectorPage = `<html><body>
<div class="nav"><table><tr><td>Home</td><td>Listings</td></tr></table></div>
<div>
  <h4>AUTOMOBILE ASSEMBLER</h4>
  <div class="table-responsive">
    <table>
      <thead>
        <tr><th colspan="8">AUTOMOBILE ASSEMBLER</th></tr>
        <tr><th>SCRIP</th><th>LDCP</th><th>OPEN</th><th>HIGH</th><th>LOW</th><th>CURRENT</th><th>CHANGE</th><th>VOLUME</th></tr>
      </thead>
      <tbody>
        <tr><td>HCAR</td><td>250.10</td><td>251.00</td><td>255.00</td><td>249.00</td><td>254.00</td><td>3.90</td><td>1,204,500</td></tr>
        <tr><td>INDU</td><td>1,610.00</td><td>1,600.00</td><td>1,615.00</td><td>1,590.00</td><td>1,598.50</td><td>-11.50</td><td>45,300</td></tr>
        <tr><td></td><td></td><td></td><td></td><td></td><td></td><td></td><td></td></tr>
      </tbody>
    </table>
  </div>
</div>
</body></html>`

func TestParseTablesMultiLevelHeaders(t *testing.T) {
	tables, err := ParseTables(sectorPage)
	require.NoError(t, err)
	require.Len(t, tables, 2)

	nav := tables[0]
	assert.Empty(t, nav.Headers)
	assert.Equal(t, [][]string{{"Home", "Listings"}}, nav.Rows)

	sector := tables[1]
	assert.Equal(t, 1, sector.Index)
	assert.Equal(t, "AUTOMOBILE ASSEMBLER", sector.Caption)
	require.Len(t, sector.Headers, 8)
	assert.Equal(t, []string{"AUTOMOBILE ASSEMBLER", "SCRIP"}, sector.Headers[0])
	assert.Equal(t, []string{"AUTOMOBILE ASSEMBLER", "VOLUME"}, sector.Headers[7])

	require.Len(t, sector.Rows, 2, "blank rows are dropped")
	assert.Equal(t, "HCAR", sector.Rows[0][0])
	assert.Equal(t, "1,204,500", sector.Rows[0][7])
}

func TestParseTablesSpans(t *testing.T) {
	doc := `<table>
		<caption> Banks </caption>
		<tr><th rowspan="2">Symbol</th><th colspan="2">Price</th></tr>
		<tr><th>Last</th><th>Change %</th></tr>
		<tr><td>HBL</td><td>120.50</td><td>1.05%</td></tr>
		<tr><td colspan="2">MCB</td><td>0.5%</td></tr>
	</table>`

	tables, err := ParseTables(doc)
	require.NoError(t, err)
	require.Len(t, tables, 1)

	tbl := tables[0]
	assert.Equal(t, "Banks", tbl.Caption)
	assert.Equal(t, [][]string{
		{"Symbol", "Symbol"},
		{"Price", "Last"},
		{"Price", "Change %"},
	}, tbl.Headers)
	assert.Equal(t, []string{"MCB", "", "0.5%"}, tbl.Rows[1])
}

func TestParseTablesIgnoresNestedRows(t *testing.T) {
	doc := `<table>
		<tr><th>Symbol</th><th>Volume</th></tr>
		<tr><td>OGDC<table><tr><td>inner</td></tr></table></td><td>10</td></tr>
	</table>`

	tables, err := ParseTables(doc)
	require.NoError(t, err)
	require.Len(t, tables, 2)
	assert.Len(t, tables[0].Rows, 1)
	assert.Equal(t, "10", tables[0].Rows[0][1])
}

func TestParseTablesNoTables(t *testing.T) {
	tables, err := ParseTables("<html><body><p>maintenance</p></body></html>")
	require.NoError(t, err)
	assert.Empty(t, tables)
}
