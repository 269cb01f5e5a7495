package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"budget/internal/sheets"
)

// Ledger keeps rows in memory. Used when no spreadsheet is configured and in tests.
type Ledger struct {
	mu   sync.Mutex
	rows []sheets.LedgerRow
	fail error
}

var _ sheets.LedgerWriter = (*Ledger)(nil)

func New() *Ledger {
	return &Ledger{}
}

func (l *Ledger) AppendRow(_ context.Context, row sheets.LedgerRow) (string, error) {
	if row.Event == "" {
		return "", errors.New("ledger row needs an event")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fail != nil {
		return "", l.fail
	}
	l.rows = append(l.rows, row)
	return fmt.Sprintf("mem:%d", len(l.rows)), nil
}

// Rows returns a copy of the appended rows.
func (l *Ledger) Rows() []sheets.LedgerRow {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]sheets.LedgerRow(nil), l.rows...)
}

// FailWith makes subsequent appends return err; nil restores normal behaviour.
func (l *Ledger) FailWith(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fail = err
}
