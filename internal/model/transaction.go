package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MatchSource records how a transaction got its category.
type MatchSource string

const (
	SourceKeywordMatch   MatchSource = "keyword-match"
	SourceAmountMatch    MatchSource = "amount-match"
	SourceManualOverride MatchSource = "manual-override"
	SourceUnclassified   MatchSource = "unclassified"
)

// Uncategorized is the category assigned when no rule matches.
const Uncategorized = "uncategorized"

// Transaction represents one statement line. Amount fields are null when the
// corresponding field on the statement is blank; sign is conveyed by which of
// debit/credit is populated, never by a signed value.
type Transaction struct {
	ID           string
	BookingDate  time.Time
	BookingTime  string // raw clock string from the export, not interpreted
	ValueDate    time.Time
	ClearingDate string // raw, not interpreted
	Currency     string
	Debit        decimal.NullDecimal
	Credit       decimal.NullDecimal
	SingleAmount decimal.NullDecimal
	Balance      decimal.NullDecimal
	Reference    string // bank transaction number, not guaranteed unique or present
	Description1 string
	Description2 string
	Description3 string
	Footnotes    string
	Category     string
	Source       MatchSource
}

// SearchText returns the text keyword matching runs against. Non-empty
// descriptive fields are joined with a newline so a keyword can never match
// across a field boundary.
func (t Transaction) SearchText() string {
	var out string
	for _, s := range []string{t.Description1, t.Description2, t.Description3, t.Footnotes} {
		if s == "" {
			continue
		}
		if out != "" {
			out += "\n"
		}
		out += s
	}
	return out
}

// ClassificationRecord is the per-row diagnostic the engine emits. Row is the
// index within the classified batch; stable IDs do not exist yet at
// classification time.
type ClassificationRecord struct {
	Row      int
	Category string
	Keyword  string // empty unless Source is keyword-match
	Source   MatchSource
}
