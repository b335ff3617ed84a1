package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TxType = "Income"
	Expense TxType = "Expense"

	// CategoryOther is a filter keyword only. Front-ends must resolve it to a
	// concrete label before a transaction is stored.
	CategoryOther = "Other"
)

type (
	// TxType classifies a transaction as money in or money out.
	TxType string

	// Date is a calendar date with no time-of-day component, anchored at UTC midnight.
	Date struct {
		time.Time
	}

	// Transaction is a single ledger entry. ID is assigned by the store on
	// append and is the durable identity used for deletion.
	Transaction struct {
		ID       int64
		Amount   Money
		Category string
		Date     Date
		Type     TxType
	}
)

// PredefinedCategories are the built-in category labels. Anything else is
// classified as "Other" by filtering, without being renamed in storage.
var PredefinedCategories = []string{"Salary", "Groceries", "Furniture", "Rent", "Recreation"}

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrInvalidDate      = errors.New("invalid date")
	ErrEmptyCategory    = errors.New("empty category")
	ErrReservedCategory = errors.New(`category "Other" is reserved for filtering`)
)

// IsPredefinedCategory reports whether c is one of the built-in labels.
func IsPredefinedCategory(c string) bool {
	for _, p := range PredefinedCategories {
		if c == p {
			return true
		}
	}
	return false
}

// ParseTxType validates a type string coming from the boundary.
func ParseTxType(s string) (TxType, error) {
	switch TxType(s) {
	case Income, Expense:
		return TxType(s), nil
	default:
		return "", ErrInvalidType
	}
}

func (t TxType) Valid() bool {
	return t == Income || t == Expense
}

const (
	isoDateLayout     = "2006-01-02"
	displayDateLayout = "01/02/2006"
)

// NewDate creates a Date from year, month, day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseISODate parses the persisted form YYYY-MM-DD.
func ParseISODate(s string) (Date, error) {
	t, err := time.Parse(isoDateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// ParseDisplayDate parses the front-end form MM/DD/YYYY.
func ParseDisplayDate(s string) (Date, error) {
	t, err := time.Parse(displayDateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// ISO returns the persisted form YYYY-MM-DD.
func (d Date) ISO() string {
	return d.Format(isoDateLayout)
}

// Display returns the presentation form MM/DD/YYYY.
func (d Date) Display() string {
	return d.Format(displayDateLayout)
}

// MarshalJSON encodes the date in its persisted form.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.ISO() + `"`), nil
}

// UnmarshalJSON decodes a date from its persisted form.
func (d *Date) UnmarshalJSON(b []byte) error {
	parsed, err := ParseISODate(strings.Trim(string(b), `"`))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if t.Category == CategoryOther {
		return ErrReservedCategory
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	return nil
}
