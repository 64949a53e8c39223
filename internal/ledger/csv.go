package ledger

import (
	"encoding/csv"
	"fmt"
	"io"

	"controlly/internal/core"
)

var csvHeader = []string{"date", "type", "description", "category", "amount"}

// WriteCSV writes txs in list order, one row per transaction.
func WriteCSV(w io.Writer, txs []core.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, t := range txs {
		row := []string{
			t.Date.String(),
			string(t.Type),
			t.Description,
			t.Category,
			t.Amount.String(),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %s: %w", t.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
