package core

import (
	"strings"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false},
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2023-01-11")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.String() != "2023-01-11" {
		t.Fatalf("got %s", d)
	}

	today, err := ParseDate("  ")
	if err != nil {
		t.Fatalf("empty date should default to today: %v", err)
	}
	if today.String() != Today().String() {
		t.Fatalf("expected today, got %s", today)
	}

	for _, bad := range []string{"2023-13-01", "11/01/2023", "2023-1-1", "yesterday"} {
		if _, err := ParseDate(bad); err != ErrInvalidDate {
			t.Fatalf("%q expected ErrInvalidDate, got %v", bad, err)
		}
	}
}

func TestNormalizeCategoryName(t *testing.T) {
	cases := map[string]string{
		"food":              "Food",
		"  new   CATEGORY ": "New Category",
		"eating out":        "Eating Out",
		"Uncategorized":     "Uncategorized",
		"":                  "",
	}
	for in, want := range cases {
		if got := NormalizeCategoryName(in); got != want {
			t.Errorf("NormalizeCategoryName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsUncategorized(t *testing.T) {
	if !IsUncategorized("uncategorized ") {
		t.Fatal("expected case-insensitive match")
	}
	if IsUncategorized("Food") {
		t.Fatal("unexpected match")
	}
}

func TestEntryValidate(t *testing.T) {
	good := Entry{
		Description: "Lunch",
		Amount:      Money{Cents: 1202},
		CategoryID:  1,
		Date:        NewDate(2023, 1, 11),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Entry{
		{Description: "", Amount: Money{Cents: 1}, CategoryID: 1, Date: NewDate(2023, 1, 1)},
		{Description: strings.Repeat("a", 256), Amount: Money{Cents: 1}, CategoryID: 1, Date: NewDate(2023, 1, 1)},
		{Description: "a", Amount: Money{Cents: -1}, CategoryID: 1, Date: NewDate(2023, 1, 1)},
		{Description: "a", Amount: Money{Cents: MaxAmountCents + 1}, CategoryID: 1, Date: NewDate(2023, 1, 1)},
		{Description: "a", Amount: Money{Cents: 1}, CategoryID: 0, Date: NewDate(2023, 1, 1)},
		{Description: "a", Amount: Money{Cents: 1}, CategoryID: 1},
	}
	for i, e := range bads {
		if err := e.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestCategoryProgressPercent(t *testing.T) {
	cases := []struct {
		p    CategoryProgress
		want int
	}{
		{CategoryProgress{MaxAmount: Money{10000}, Spent: Money{2558}}, 25},
		{CategoryProgress{MaxAmount: Money{10000}, Spent: Money{20000}}, 100},
		{CategoryProgress{MaxAmount: Money{0}, Spent: Money{0}}, 0},
		{CategoryProgress{MaxAmount: Money{0}, Spent: Money{5}}, 100},
	}
	for i, tc := range cases {
		if got := tc.p.Percent(); got != tc.want {
			t.Errorf("case %d: got %d want %d", i, got, tc.want)
		}
	}
	if !(CategoryProgress{Remaining: Money{-1}}).Over() {
		t.Error("negative remaining should be over budget")
	}
}
