package utils

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyike/psxlens/internal/models"
)

func sampleRecords() []models.Record {
	return []models.Record{
		{
			Symbol:        "HBL",
			Sector:        "COMMERCIAL BANKS",
			PrevClose:     decimal.NewNullDecimal(decimal.RequireFromString("120.50")),
			Price:         decimal.NewNullDecimal(decimal.RequireFromString("121.75")),
			Change:        decimal.NewNullDecimal(decimal.RequireFromString("1.25")),
			ChangePercent: decimal.NewNullDecimal(decimal.RequireFromString("1.04")),
			Volume:        models.NewNullInt64(1234567),
			Table:         3,
		},
		{Symbol: "PPL", Volume: models.NewNullInt64(0)},
	}
}

func TestWriteRecordsCSV(t *testing.T) {
	recs := sampleRecords()
	recs[0].ChangePercentDerived = true

	var buf bytes.Buffer
	require.NoError(t, WriteRecordsCSV(&buf, recs))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, csvHeaders, rows[0])
	assert.Equal(t, []string{"HBL", "COMMERCIAL BANKS", "120.5", "", "", "", "121.75", "1.25", "1.04", "yes", "1234567", "3"}, rows[1])
	assert.Equal(t, "", rows[2][2], "missing stays empty")
	assert.Equal(t, "0", rows[2][10], "zero volume is kept")
}

func TestWriteSnapshotCSV(t *testing.T) {
	dir := t.TempDir()
	snap := &models.Snapshot{
		ID:         "snap",
		CapturedAt: time.Date(2026, 10, 16, 15, 30, 0, 0, time.UTC),
		Records:    sampleRecords(),
	}

	path, err := NewCSVManager(dir).WriteSnapshotCSV(snap)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "csv", "market", "psx_snapshot_2_records_20261016_153000.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "HBL,COMMERCIAL BANKS")
}
