package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"budget/internal/core"
	"budget/internal/sheets"
)

func TestLedgerAppendAndRows(t *testing.T) {
	l := New()
	ref, err := l.AppendRow(context.Background(), sheets.LedgerRow{
		Event:       "entry.created",
		EntryID:     1,
		Date:        core.NewDate(2023, 1, 11),
		Description: "Lunch",
		Amount:      core.Money{Cents: 1202},
		Category:    "Food",
		Timestamp:   time.Now(),
	})
	if err != nil || ref != "mem:1" {
		t.Fatalf("unexpected append: ref=%q err=%v", ref, err)
	}

	rows := l.Rows()
	if len(rows) != 1 || rows[0].Description != "Lunch" {
		t.Fatalf("unexpected rows %+v", rows)
	}
	rows[0].Description = "changed"
	if l.Rows()[0].Description != "Lunch" {
		t.Fatal("Rows must return a copy")
	}
}

func TestLedgerRejectsEmptyEvent(t *testing.T) {
	if _, err := New().AppendRow(context.Background(), sheets.LedgerRow{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestLedgerFailWith(t *testing.T) {
	l := New()
	boom := errors.New("quota exceeded")
	l.FailWith(boom)
	if _, err := l.AppendRow(context.Background(), sheets.LedgerRow{Event: "entry.deleted"}); !errors.Is(err, boom) {
		t.Fatalf("expected %v, got %v", boom, err)
	}
	l.FailWith(nil)
	if _, err := l.AppendRow(context.Background(), sheets.LedgerRow{Event: "entry.deleted"}); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
}
