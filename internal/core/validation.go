package core

import "unicode/utf8"

// ValidationError is a rule violation with a message fit to show in a form.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

var (
	ErrDescriptionLength = &ValidationError{
		Field:   "description",
		Message: "Expense description must be between 1 and 255 characters.",
	}
	ErrAmountFormat = &ValidationError{
		Field:   "amount",
		Message: "Enter a valid amount between 0.00 and 9999.99.",
	}
	ErrCategoryNameLength = &ValidationError{
		Field:   "category",
		Message: "Category name must be between 1 and 100 characters.",
	}
	ErrCategoryExists = &ValidationError{
		Field:   "category",
		Message: "Category name already exists.",
	}
	ErrDateFormat = &ValidationError{
		Field:   "date",
		Message: "Enter a valid date (YYYY-MM-DD).",
	}
)

// EntryInput is the raw entry form.
type EntryInput struct {
	Description string
	Amount      string
	Category    string
	Date        string
}

// CategoryInput is the raw category form.
type CategoryInput struct {
	Name   string
	Amount string
}

// ValidDescription reports whether s has 1..255 characters.
func ValidDescription(s string) bool {
	n := utf8.RuneCountInString(s)
	return n >= 1 && n <= MaxDescriptionLength
}

// ValidCategoryName reports whether s has 1..100 characters once
// normalized. Title-casing can lengthen a name ("ß" becomes "Ss").
func ValidCategoryName(s string) bool {
	n := utf8.RuneCountInString(NormalizeCategoryName(s))
	return n >= 1 && n <= MaxCategoryNameLength
}

// Validate checks description, amount, category and date in that order and
// returns the first violation.
func (in EntryInput) Validate() *ValidationError {
	if !ValidDescription(in.Description) {
		return ErrDescriptionLength
	}
	if !ValidAmount(in.Amount) {
		return ErrAmountFormat
	}
	if !ValidCategoryName(in.Category) {
		return ErrCategoryNameLength
	}
	if _, err := ParseDate(in.Date); err != nil {
		return ErrDateFormat
	}
	return nil
}

// Entry converts a validated form into an Entry; categoryID is resolved by the caller.
func (in EntryInput) Entry(categoryID int64) (Entry, error) {
	amount, err := ParseAmount(in.Amount)
	if err != nil {
		return Entry{}, err
	}
	date, err := ParseDate(in.Date)
	if err != nil {
		return Entry{}, err
	}
	return Entry{
		Description: in.Description,
		Amount:      amount,
		CategoryID:  categoryID,
		Date:        date,
	}, nil
}

// Validate checks name length, collision and amount in that order. Whether
// the name is taken is looked up by the caller.
func (in CategoryInput) Validate(nameTaken bool) *ValidationError {
	if !ValidCategoryName(in.Name) {
		return ErrCategoryNameLength
	}
	if nameTaken {
		return ErrCategoryExists
	}
	if !ValidAmount(in.Amount) {
		return ErrAmountFormat
	}
	return nil
}
