package core

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// UncategorizedName is the sentinel category that absorbs entries whose
// category was deleted.
const UncategorizedName = "Uncategorized"

const (
	MaxDescriptionLength  = 255
	MaxCategoryNameLength = 100
)

type (
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Category struct {
		ID        int64
		Name      string
		MaxAmount Money
	}

	Entry struct {
		ID          int64
		Description string
		Amount      Money
		CategoryID  int64
		Category    string // resolved category name, filled on reads
		Date        Date
	}

	// CategoryProgress is a category with its spending for one period.
	CategoryProgress struct {
		ID        int64
		Name      string
		MaxAmount Money
		Spent     Money
		Remaining Money
	}

	// Overview is everything the budget page shows for one period.
	Overview struct {
		Period       Period
		Categories   []CategoryProgress
		Recent       []Entry
		TotalSpent   Money
		TotalCap     Money
		Remaining    Money
		MonthlyTotal Money
		YearToDate   Money
	}
)

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateCategory = errors.New("category name already exists")
	ErrProtectedCategory = errors.New("the uncategorized category cannot be deleted")
	ErrInvalidDay        = errors.New("invalid day")
	ErrInvalidMonth      = errors.New("invalid month")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidDate       = errors.New("invalid date")
	ErrMissingCategory   = errors.New("entry needs a category")
)

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// String renders the date as YYYY-MM-DD, the format used in forms and storage.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(time.DateOnly)
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current UTC calendar day.
func Today() Date {
	return DateOf(time.Now())
}

// DateOf truncates t to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate accepts YYYY-MM-DD. An empty string yields today.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Today(), nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// NormalizeCategoryName collapses whitespace and title-cases every word,
// so "  new   CATEGORY" becomes "New Category".
func NormalizeCategoryName(name string) string {
	joined := strings.Join(strings.Fields(name), " ")
	return cases.Title(language.Und).String(joined)
}

// IsUncategorized reports whether name refers to the sentinel category.
func IsUncategorized(name string) bool {
	return strings.EqualFold(strings.TrimSpace(name), UncategorizedName)
}

func (e Entry) Validate() error {
	if n := utf8.RuneCountInString(e.Description); n < 1 || n > MaxDescriptionLength {
		return ErrDescriptionLength
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if e.CategoryID <= 0 {
		return ErrMissingCategory
	}
	return e.Date.Validate()
}

func (c Category) Validate() error {
	if n := utf8.RuneCountInString(c.Name); n < 1 || n > MaxCategoryNameLength {
		return ErrCategoryNameLength
	}
	return c.MaxAmount.Validate()
}

// Over reports whether spending exceeded the cap.
func (p CategoryProgress) Over() bool {
	return p.Remaining.Cents < 0
}

// Percent returns spent/cap as 0..100, clamped; a zero cap counts as full
// once anything was spent.
func (p CategoryProgress) Percent() int {
	if p.MaxAmount.Cents <= 0 {
		if p.Spent.Cents > 0 {
			return 100
		}
		return 0
	}
	pct := p.Spent.Cents * 100 / p.MaxAmount.Cents
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return int(pct)
}
