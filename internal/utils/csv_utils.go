package utils

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dyike/psxlens/internal/models"
)

var csvHeaders = []string{
	"Symbol", "Sector", "LDCP", "Open", "High", "Low", "Current",
	"Change", "Change %", "Change % Derived", "Volume", "Table",
}

type CSVManager struct {
	basePath string
}

func NewCSVManager(basePath string) *CSVManager {
	return &CSVManager{
		basePath: basePath,
	}
}

// WriteSnapshotCSV writes snap under basePath/csv/market and returns the file path.
func (c *CSVManager) WriteSnapshotCSV(snap *models.Snapshot) (string, error) {
	dirPath := filepath.Join(c.basePath, "csv", "market")
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	captured := snap.CapturedAt
	if captured.IsZero() {
		captured = time.Now()
	}
	filename := fmt.Sprintf("psx_snapshot_%d_records_%s.csv", snap.Len(), captured.Format("20060102_150405"))
	filePath := filepath.Join(dirPath, filename)

	file, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	if err := WriteRecordsCSV(file, snap.Records); err != nil {
		return "", err
	}
	return filePath, nil
}

// WriteRecordsCSV writes records with a header row. Missing values are
// written as empty cells so they never read back as zero.
func WriteRecordsCSV(w io.Writer, records []models.Record) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeaders); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for _, r := range records {
		volume := ""
		if r.Volume.Valid {
			volume = r.Volume.String()
		}
		derived := ""
		if r.ChangePercentDerived {
			derived = "yes"
		}
		row := []string{
			r.Symbol,
			r.Sector,
			csvDecimal(r.PrevClose),
			csvDecimal(r.Open),
			csvDecimal(r.High),
			csvDecimal(r.Low),
			csvDecimal(r.Price),
			csvDecimal(r.Change),
			csvDecimal(r.ChangePercent),
			derived,
			volume,
			fmt.Sprint(r.Table),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func csvDecimal(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}
