package storage

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/leplonghi/horamed-sub006/internal/domain"
)

var stockCSVHeader = []string{"item_id", "units_left", "projected_end_at", "updated_at"}

// EncodeStockCSV renders stock records as CSV with RFC 3339 timestamps.
// Records without a projection get an empty projected_end_at.
func EncodeStockCSV(records []domain.StockRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(stockCSVHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, rec := range records {
		projected := ""
		if rec.ProjectedEndAt != nil {
			projected = rec.ProjectedEndAt.UTC().Format(time.RFC3339)
		}
		row := []string{
			rec.ItemID,
			strconv.Itoa(rec.UnitsLeft),
			projected,
			rec.UpdatedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row for %s: %w", rec.ItemID, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
