package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TimestampLayout is the textual form of created_at / updated_at (local time, second precision).
const TimestampLayout = "2006-01-02 15:04:05"

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// Direction tells which way a debt points.
type Direction string

const (
	// YouOwe means the user is the debtor.
	YouOwe Direction = "you_owe"
	// TheyOwe means the user is the creditor.
	TheyOwe Direction = "they_owe"
)

// Valid reports whether d is one of the two enum literals.
func (d Direction) Valid() bool {
	return d == YouOwe || d == TheyOwe
}

// DebtRecord is a single ledger entry as stored in the debt table.
// swagger:model DebtRecord
type DebtRecord struct {
	ID        int64           `db:"id" json:"id"`
	Person    string          `db:"person" json:"person"`
	Amount    decimal.Decimal `db:"amount" json:"amount"`
	Direction Direction       `db:"direction" json:"direction"`
	Note      string          `db:"note" json:"note"`
	// CreatedAt is nil for legacy rows or tables without the column.
	CreatedAt *string `db:"created_at" json:"created_at"`
	UpdatedAt *string `db:"updated_at" json:"updated_at"`
}

// DebtInput carries the mutable fields of a record, already validated by the caller.
type DebtInput struct {
	Person    string
	Amount    decimal.Decimal
	Direction Direction
	Note      string
}

// DebtFilter narrows a listing. Empty fields are ignored.
type DebtFilter struct {
	// Search is a case-insensitive substring matched against person or note.
	Search    string
	Person    string
	Direction Direction
}

// SortKey names a listing order.
type SortKey string

const (
	SortDate      SortKey = "date"
	SortAmount    SortKey = "amount"
	SortPerson    SortKey = "person"
	SortDirection SortKey = "direction"
)

// DebtSort is a key plus direction. Ties are always broken by id ascending.
type DebtSort struct {
	Key  SortKey
	Desc bool
}

// DefaultSort is newest first.
var DefaultSort = DebtSort{Key: SortDate, Desc: true}

// ParseSort converts the key/order query values, falling back to DefaultSort parts when unknown.
func ParseSort(key, order string) DebtSort {
	s := DefaultSort
	switch SortKey(strings.ToLower(strings.TrimSpace(key))) {
	case SortAmount:
		s.Key = SortAmount
	case SortPerson:
		s.Key = SortPerson
	case SortDirection:
		s.Key = SortDirection
	}
	if strings.EqualFold(strings.TrimSpace(order), "asc") {
		s.Desc = false
	}
	return s
}

// Order returns "asc" or "desc".
func (s DebtSort) Order() string {
	if s.Desc {
		return "desc"
	}
	return "asc"
}
