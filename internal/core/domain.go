package core

import (
	"errors"
	"strings"
	"time"
)

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

const (
	CategoryFood          Category = "food"
	CategoryTransport     Category = "transport"
	CategoryBills         Category = "bills"
	CategoryEntertainment Category = "entertainment"
	CategoryHealth        Category = "health"
	CategoryShopping      Category = "shopping"
	CategorySalary        Category = "salary"
	CategoryOther         Category = "other"
)

type (
	TransactionType string

	Category string

	// Date is a calendar date; time-of-day carries no meaning.
	Date struct {
		time.Time
	}

	// Transaction is one immutable ledger record. Records are appended by
	// an add command and removed by id; they are never updated in place.
	Transaction struct {
		ID          string          `json:"id"`
		Description string          `json:"description"`
		Amount      Money           `json:"amount"`
		Type        TransactionType `json:"type"`
		Category    Category        `json:"category"`
		Date        Date            `json:"date"`
	}

	// Draft is a transaction payload before an identifier is assigned.
	Draft struct {
		Description string
		Amount      Money
		Type        TransactionType
		Category    Category
		Date        Date
	}

	// Badge is a one-way achievement flag. Once earned it is never revoked.
	Badge struct {
		Name        string    `json:"name"`
		Description string    `json:"description"`
		Icon        string    `json:"icon"`
		EarnedAt    time.Time `json:"earned_at"`
	}

	// Budget is a per-category spending limit. The spent side is derived
	// from the ledger on read, never stored.
	Budget struct {
		ID       string   `json:"id"`
		Category Category `json:"category"`
		Limit    Money    `json:"limit"`
	}

	// Goal is a named savings target.
	Goal struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Target   Money  `json:"target"`
		Current  Money  `json:"current"`
		Deadline Date   `json:"deadline"`
		Icon     string `json:"icon"`
	}

	// Snapshot is the durable shape handed to persistence backends.
	Snapshot struct {
		Transactions []Transaction `json:"transactions"`
		Points       int           `json:"points"`
		Badges       []Badge       `json:"badges"`
		Budgets      []Budget      `json:"budgets"`
		Goals        []Goal        `json:"goals"`
	}
)

// ValidationError reports a rejected draft field. The in-memory state is
// untouched when one is returned; the caller may fix the draft and resubmit.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

var (
	ErrEmptyDescription = &ValidationError{Field: "description", Reason: "must not be empty"}
	ErrInvalidAmount    = &ValidationError{Field: "amount", Reason: "must be a positive amount"}
	ErrInvalidType      = &ValidationError{Field: "type", Reason: "must be income or expense"}
	ErrInvalidCategory  = &ValidationError{Field: "category", Reason: "unknown category"}
	ErrInvalidDate      = &ValidationError{Field: "date", Reason: "must be a valid calendar date"}

	// ErrNotFound is reserved for read-single-record operations.
	// Delete is idempotent and never returns it.
	ErrNotFound = errors.New("not found")
)

// ExpenseCategories lists the categories a user may pick for an expense,
// in display order.
var ExpenseCategories = []Category{
	CategoryFood,
	CategoryTransport,
	CategoryBills,
	CategoryEntertainment,
	CategoryHealth,
	CategoryShopping,
	CategoryOther,
}

func (t TransactionType) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

func (c Category) Valid() bool {
	switch c {
	case CategoryFood, CategoryTransport, CategoryBills, CategoryEntertainment,
		CategoryHealth, CategoryShopping, CategorySalary, CategoryOther:
		return true
	}
	return false
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current calendar date in UTC.
func Today() Date {
	now := time.Now().UTC()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
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

// Normalize fills in the implied parts of a draft: descriptions are trimmed
// and income always lands in the salary category.
func (d Draft) Normalize() Draft {
	d.Description = strings.TrimSpace(d.Description)
	if d.Type == TypeIncome {
		d.Category = CategorySalary
	}
	return d
}

func (d Draft) Validate() error {
	if len(strings.TrimSpace(d.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(d.Description) > 255 {
		return &ValidationError{Field: "description", Reason: "too long (max 255 characters)"}
	}
	if err := d.Amount.Validate(); err != nil {
		return err
	}
	if !d.Type.Valid() {
		return ErrInvalidType
	}
	if !d.Category.Valid() {
		return ErrInvalidCategory
	}
	if d.Type == TypeExpense && d.Category == CategorySalary {
		return &ValidationError{Field: "category", Reason: "salary is reserved for income"}
	}
	return d.Date.Validate()
}

func (b Budget) Validate() error {
	if !b.Category.Valid() || b.Category == CategorySalary {
		return ErrInvalidCategory
	}
	return b.Limit.Validate()
}

func (g Goal) Validate() error {
	if len(strings.TrimSpace(g.Name)) == 0 {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if err := g.Target.Validate(); err != nil {
		return err
	}
	if g.Current.Cents < 0 {
		return &ValidationError{Field: "current", Reason: "must not be negative"}
	}
	return nil
}

// Clone returns a deep copy so callers can hand snapshots across ownership
// boundaries without aliasing the store's slices.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{Points: s.Points}
	out.Transactions = append([]Transaction(nil), s.Transactions...)
	out.Badges = append([]Badge(nil), s.Badges...)
	out.Budgets = append([]Budget(nil), s.Budgets...)
	out.Goals = append([]Goal(nil), s.Goals...)
	return out
}
