package worker

import (
	"context"
	"errors"
	"testing"

	"budget/internal/amqp"
	"budget/internal/core"
	"budget/internal/log"
	"budget/internal/sheets/memory"
)

type fakeEntries map[int64]core.Entry

func (f fakeEntries) FindEntry(_ context.Context, id int64) (core.Entry, error) {
	if id < 0 {
		return core.Entry{}, errors.New("connection reset")
	}
	e, ok := f[id]
	if !ok {
		return core.Entry{}, core.ErrNotFound
	}
	return e, nil
}

func newWorker() (*LedgerWorker, *memory.Ledger) {
	entries := fakeEntries{
		1: {ID: 1, Description: "Lunch", Amount: core.Money{Cents: 1202}, CategoryID: 1, Category: "Food", Date: core.NewDate(2023, 1, 11)},
	}
	ledger := memory.New()
	return NewLedgerWorker(entries, ledger, log.Discard()), ledger
}

func TestHandleEntryCreated(t *testing.T) {
	w, ledger := newWorker()
	if err := w.HandleEvent(context.Background(), amqp.NewEntryEvent(amqp.EntryCreated, 1, 1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rows := ledger.Rows()
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	r := rows[0]
	if r.Event != "entry.created" || r.Description != "Lunch" || r.Amount.String() != "12.02" || r.Category != "Food" || r.Date.String() != "2023-01-11" {
		t.Fatalf("unexpected row %+v", r)
	}
	if p, s := w.Stats(); p != 1 || s != 0 {
		t.Fatalf("stats %d/%d", p, s)
	}
}

func TestHandleMissingEntryIsSkipped(t *testing.T) {
	w, ledger := newWorker()
	if err := w.HandleEvent(context.Background(), amqp.NewEntryEvent(amqp.EntryUpdated, 99, 1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ledger.Rows()) != 0 {
		t.Fatal("no row expected for a vanished entry")
	}
	if _, s := w.Stats(); s != 1 {
		t.Fatalf("skipped %d", s)
	}
}

func TestHandleDeleteEvents(t *testing.T) {
	w, ledger := newWorker()
	ctx := context.Background()
	if err := w.HandleEvent(ctx, amqp.NewEntryEvent(amqp.EntryDeleted, 7, 0)); err != nil {
		t.Fatal(err)
	}
	if err := w.HandleEvent(ctx, amqp.NewCategoryEvent(amqp.CategoryDeleted, 3)); err != nil {
		t.Fatal(err)
	}
	rows := ledger.Rows()
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Event != "entry.deleted" || rows[0].EntryID != 7 {
		t.Errorf("unexpected delete row %+v", rows[0])
	}
	if rows[1].Event != "category.deleted" || rows[1].Category != core.UncategorizedName {
		t.Errorf("unexpected category row %+v", rows[1])
	}
}

func TestHandleErrorsRequeue(t *testing.T) {
	w, ledger := newWorker()
	ctx := context.Background()

	if err := w.HandleEvent(ctx, amqp.NewEntryEvent(amqp.EntryCreated, -1, 1)); err == nil {
		t.Fatal("store failure should surface")
	}

	ledger.FailWith(errors.New("quota"))
	if err := w.HandleEvent(ctx, amqp.NewEntryEvent(amqp.EntryCreated, 1, 1)); err == nil {
		t.Fatal("ledger failure should surface")
	}
}
