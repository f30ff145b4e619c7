// Package numparse converts Swiss-locale numeric strings into decimals.
// Statement exports use ' as a thousands separator and . as the decimal
// separator, and never encode signed numbers in amount fields.
package numparse

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrMalformed reports a numeric field that is not a valid non-negative
// decimal numeral after grouping characters are stripped.
var ErrMalformed = errors.New("malformed number")

// Grouping is the Swiss thousands separator.
const Grouping = "'"

var numeral = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)

// Parse converts a statement amount field to a decimal. Empty or
// whitespace-only input means the field is absent on the statement and yields
// a null value. Grouping characters may appear at any position and are
// removed before parsing.
func Parse(text string) (decimal.NullDecimal, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return decimal.NullDecimal{}, nil
	}

	s = strings.ReplaceAll(s, Grouping, "")
	if !numeral.MatchString(s) {
		return decimal.NullDecimal{}, fmt.Errorf("%w: %q", ErrMalformed, text)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("%w: %q: %v", ErrMalformed, text, err)
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}, nil
}
