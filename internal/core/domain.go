package core

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	Daily   Period = "daily"
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
)

// MinDescriptionLength is the minimum number of characters of a trimmed description.
const MinDescriptionLength = 2

type (
	// Category is one of the fixed expense categories.
	Category string

	// Period identifies the budget period type.
	Period string

	Expense struct {
		ID          string
		OwnerID     string
		Amount      int64 // whole Rupiah
		Description string
		Category    Category
		OccurredAt  time.Time
		CreatedAt   time.Time
	}

	Budget struct {
		Amount int64
		SetAt  time.Time
	}
)

// Categories lists the closed set of categories in display order.
var Categories = []Category{
	"makanan", "minuman", "transportasi", "bensin", "parkir",
	"belanja", "kesehatan", "hiburan", "pendidikan", "langganan",
	"donasi", "zakat", "investasi", "kosmetik",
	"perawatan", "rumah", "listrik", "air", "internet",
	"lainnya",
}

// Periods lists the budget period types.
var Periods = []Period{Daily, Weekly, Monthly}

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrShortDescription  = errors.New("description too short")
	ErrUnknownCategory   = errors.New("unknown category")
	ErrInvalidPeriod     = errors.New("invalid budget period")
	ErrInvalidBudget     = errors.New("invalid budget amount")
	ErrMissingOwner      = errors.New("missing expense owner")
	ErrMissingOccurredAt = errors.New("missing expense time")
)

// ParseCategory matches text exactly against the known categories.
func ParseCategory(text string) (Category, bool) {
	for _, c := range Categories {
		if string(c) == text {
			return c, true
		}
	}
	return "", false
}

func (c Category) Valid() bool {
	_, ok := ParseCategory(string(c))
	return ok
}

func (c Category) String() string {
	return string(c)
}

// ParsePeriod parses daily, weekly or monthly.
func ParsePeriod(s string) (Period, error) {
	p := Period(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", ErrInvalidPeriod
	}
	return p, nil
}

func (p Period) Valid() bool {
	switch p {
	case Daily, Weekly, Monthly:
		return true
	default:
		return false
	}
}

// Label returns the Indonesian name of the period.
func (p Period) Label() string {
	switch p {
	case Daily:
		return "Harian"
	case Weekly:
		return "Mingguan"
	case Monthly:
		return "Bulanan"
	default:
		return string(p)
	}
}

// ValidDescription reports whether the trimmed description is long enough.
func ValidDescription(desc string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(desc)) >= MinDescriptionLength
}

func (e Expense) Validate() error {
	if e.Amount <= 0 {
		return ErrInvalidAmount
	}
	if !ValidDescription(e.Description) {
		return ErrShortDescription
	}
	if !e.Category.Valid() {
		return ErrUnknownCategory
	}
	if e.OwnerID == "" {
		return ErrMissingOwner
	}
	if e.OccurredAt.IsZero() {
		return ErrMissingOccurredAt
	}
	return nil
}

func (b Budget) Validate() error {
	if b.Amount <= 0 {
		return ErrInvalidBudget
	}
	return nil
}
