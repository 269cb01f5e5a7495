package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"budget/internal/amqp"
	"budget/internal/core"
	"budget/internal/log"
	"budget/internal/sheets"
)

// EntryFinder loads the current state of an entry. *storage.Store satisfies it.
type EntryFinder interface {
	FindEntry(ctx context.Context, id int64) (core.Entry, error)
}

// LedgerWorker mirrors budget events into an append-only ledger.
type LedgerWorker struct {
	entries EntryFinder
	ledger  sheets.LedgerWriter
	logger  *log.Logger

	processed atomic.Int64
	skipped   atomic.Int64
}

func NewLedgerWorker(entries EntryFinder, ledger sheets.LedgerWriter, logger *log.Logger) *LedgerWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &LedgerWorker{
		entries: entries,
		ledger:  ledger,
		logger:  logger.WithComponent(log.ComponentWorker),
	}
}

// HandleEvent writes one ledger row for evt. A returned error makes the
// consumer requeue the message.
func (w *LedgerWorker) HandleEvent(ctx context.Context, evt *amqp.BudgetEvent) error {
	row := sheets.LedgerRow{
		Event:     string(evt.Type),
		EntryID:   evt.EntryID,
		Timestamp: evt.Timestamp,
	}

	switch evt.Type {
	case amqp.EntryCreated, amqp.EntryUpdated:
		e, err := w.entries.FindEntry(ctx, evt.EntryID)
		if errors.Is(err, core.ErrNotFound) {
			// deleted before we got here; its own event records that
			w.skipped.Add(1)
			w.logger.InfoContext(ctx, "Entry gone, skipping event",
				log.FieldEventID, evt.ID, log.FieldEntryID, evt.EntryID)
			return nil
		}
		if err != nil {
			return fmt.Errorf("load entry %d: %w", evt.EntryID, err)
		}
		row.Date = e.Date
		row.Description = e.Description
		row.Amount = e.Amount
		row.Category = e.Category
	case amqp.EntryDeleted:
	case amqp.CategoryDeleted:
		row.Description = fmt.Sprintf("category %d deleted, entries moved to %s", evt.CategoryID, core.UncategorizedName)
		row.Category = core.UncategorizedName
	default:
		w.skipped.Add(1)
		w.logger.WarnContext(ctx, "Unknown event type", log.FieldEventType, evt.Type)
		return nil
	}

	ref, err := w.ledger.AppendRow(ctx, row)
	if err != nil {
		return fmt.Errorf("append ledger row: %w", err)
	}
	w.processed.Add(1)
	w.logger.InfoContext(ctx, "Ledger updated",
		log.FieldEventID, evt.ID,
		log.FieldEventType, evt.Type,
		log.FieldEntryID, evt.EntryID,
		"ref", ref)
	return nil
}

// Stats reports how many events were written and skipped.
func (w *LedgerWorker) Stats() (processed, skipped int64) {
	return w.processed.Load(), w.skipped.Load()
}
