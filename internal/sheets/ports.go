package sheets

import (
	"context"
	"strconv"
	"time"

	"budget/internal/core"
)

// LedgerRow is one line of the exported ledger: what happened to which entry.
type LedgerRow struct {
	Event       string
	EntryID     int64
	Date        core.Date
	Description string
	Amount      core.Money
	Category    string
	Timestamp   time.Time
}

// Values renders the row in column order: event, entry id, date,
// description, amount, category, timestamp.
func (r LedgerRow) Values() []any {
	date := r.Date.String()
	amount := ""
	if r.Event != "entry.deleted" {
		amount = r.Amount.String()
	}
	return []any{
		r.Event,
		strconv.FormatInt(r.EntryID, 10),
		date,
		r.Description,
		amount,
		r.Category,
		r.Timestamp.UTC().Format(time.RFC3339),
	}
}

// Header names the ledger columns.
var Header = []any{"Event", "Entry", "Date", "Description", "Amount", "Category", "Recorded At"}

// LedgerWriter is the outbound port for mirroring budget changes.
type LedgerWriter interface {
	AppendRow(ctx context.Context, row LedgerRow) (ref string, err error)
}
