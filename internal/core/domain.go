package core

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"

	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"

	// DateLayout is the persisted wire format for transaction dates.
	DateLayout = "2006-01-02"

	// DefaultBudget is the monthly budget applied when no settings exist yet.
	DefaultBudget = 2000

	maxNoteLength = 200
)

type (
	TransactionType string

	Theme string

	Date struct {
		time.Time
	}

	// Amount is a monetary value. Persisted ledgers may carry amounts as
	// either JSON numbers or numeric strings, so it accepts both on read
	// and always writes back a number.
	Amount float64

	// Transaction is a single recorded income or expense event. Records are
	// immutable once written; the only mutation is whole-record deletion.
	Transaction struct {
		ID       string          `json:"id"`
		Type     TransactionType `json:"type"`
		Amount   Amount          `json:"amount"`
		Category string          `json:"category"`
		Date     Date            `json:"date"`
		Note     string          `json:"note"`
	}

	// Settings holds the persisted user preferences.
	Settings struct {
		Budget float64 `json:"budget"`
		Theme  Theme   `json:"theme"`
	}
)

var (
	ErrMissingID       = errors.New("missing transaction id")
	ErrInvalidType     = errors.New("invalid transaction type")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrUnknownCategory = errors.New("unknown category")
	ErrInvalidDate     = errors.New("invalid date")
	ErrNoteTooLong     = errors.New("note too long (max 200 characters)")
	ErrInvalidBudget   = errors.New("invalid budget")
	ErrInvalidTheme    = errors.New("invalid theme")
)

// Category taxonomy is closed per transaction type; anything outside it is
// rejected at the boundary rather than silently accepted.
var (
	incomeCategories = []string{
		"Salary", "Freelance", "Investments", "Gifts", "Other",
	}
	expenseCategories = []string{
		"Food", "Transport", "Housing", "Utilities", "Entertainment",
		"Shopping", "Health", "Education", "Other",
	}
)

// Categories returns the allowed categories for a transaction type, in
// presentation order. The returned slice is a copy.
func Categories(t TransactionType) []string {
	var src []string
	switch t {
	case Income:
		src = incomeCategories
	case Expense:
		src = expenseCategories
	default:
		return nil
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// ValidCategory reports whether category belongs to the taxonomy for t.
func ValidCategory(t TransactionType, category string) bool {
	var src []string
	switch t {
	case Income:
		src = incomeCategories
	case Expense:
		src = expenseCategories
	default:
		return false
	}
	for _, c := range src {
		if c == category {
			return true
		}
	}
	return false
}

func (t TransactionType) Validate() error {
	switch t {
	case Income, Expense:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidType, string(t))
}

// NewDate creates a Date from year, month, day at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses the YYYY-MM-DD wire format.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(DateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s, err := strconv.Unquote(string(b))
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDate, string(b))
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	v := float64(a)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		// JSON has no encoding for these; persist a defined zero instead.
		return []byte("0"), nil
	}
	return []byte(strconv.FormatFloat(v, 'f', -1, 64)), nil
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	s := string(b)
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = unquoted
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, string(b))
	}
	*a = Amount(v)
	return nil
}

// Validate checks a transaction against the boundary rules: a well-formed
// type, a strictly positive finite amount, a category from the closed
// taxonomy for that type, and a real date.
func (t Transaction) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return ErrMissingID
	}
	if err := t.Type.Validate(); err != nil {
		return err
	}
	v := float64(t.Amount)
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return ErrInvalidAmount
	}
	if !ValidCategory(t.Type, t.Category) {
		return fmt.Errorf("%w: %q for type %s", ErrUnknownCategory, t.Category, t.Type)
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if len(t.Note) > maxNoteLength {
		return ErrNoteTooLong
	}
	return nil
}

// DefaultSettings returns the settings used when none have been persisted.
func DefaultSettings() Settings {
	return Settings{Budget: DefaultBudget, Theme: ThemeLight}
}

func (t Theme) Validate() error {
	switch t {
	case ThemeLight, ThemeDark:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidTheme, string(t))
}

// Toggle returns the opposite theme.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

func (s Settings) Validate() error {
	if math.IsNaN(s.Budget) || math.IsInf(s.Budget, 0) || s.Budget < 0 {
		return ErrInvalidBudget
	}
	return s.Theme.Validate()
}
