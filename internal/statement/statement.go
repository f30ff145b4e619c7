// Package statement reads Swiss bank statement exports and reads/writes the
// classified output CSV. Exports are ;-delimited, UTF-8, and carry free-form
// preamble lines (account holder, IBAN, export date) before the real column
// header.
package statement

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jm-glowienke/fluffy-octo-spoon/internal/model"
	"github.com/jm-glowienke/fluffy-octo-spoon/internal/numparse"
)

// Delimiter used by the bank export and by the classified output.
const Delimiter = ';'

// ExpectedColumns are the column names of the bank export, in order.
var ExpectedColumns = []string{
	"Abschlussdatum",
	"Abschlusszeit",
	"Buchungsdatum",
	"Valutadatum",
	"Währung",
	"Belastung",
	"Gutschrift",
	"Einzelbetrag",
	"Saldo",
	"Transaktions-Nr.",
	"Beschreibung1",
	"Beschreibung2",
	"Beschreibung3",
	"Fussnoten",
}

const (
	inBookingDate = iota
	inBookingTime
	inValueDate
	inClearingDate
	inCurrency
	inDebit
	inCredit
	inSingleAmount
	inBalance
	inReference
	inDesc1
	inDesc2
	inDesc3
	inFootnotes
)

// Exports have used both ISO and short Swiss date forms.
var dateFormats = []string{"2006-01-02", "02.01.06"}

// RowWarning reports a recovered per-row anomaly: the row is still emitted
// with the offending amount set to null.
type RowWarning struct {
	Row   int // 1-based line within the data section, header excluded
	Field string
	Value string
	Err   error
}

func (w RowWarning) String() string {
	return fmt.Sprintf("row %d: %s %q: %v", w.Row, w.Field, w.Value, w.Err)
}

// Parse reads a raw bank export. Preamble lines before the column header are
// skipped; the header is the first line whose ;-split fields match at least
// 80% of the expected column names. Malformed amount fields become null plus
// a RowWarning; a malformed date aborts, since row identity depends on it.
func Parse(r io.Reader) ([]model.Transaction, []RowWarning, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, nil, fmt.Errorf("reading statement: %w", err)
	}

	start := headerIndex(lines)
	if start < 0 {
		return nil, nil, fmt.Errorf("could not find the column headers in the statement")
	}

	cr := csv.NewReader(strings.NewReader(strings.Join(lines[start:], "\n")))
	cr.Comma = Delimiter
	cr.FieldsPerRecord = len(ExpectedColumns)

	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("reading statement CSV: %w", err)
	}

	var txns []model.Transaction
	var warnings []RowWarning
	for i, rec := range records[1:] {
		txn, rowWarns, err := parseRow(i+1, rec)
		if err != nil {
			return nil, nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		warnings = append(warnings, rowWarns...)
		txns = append(txns, txn)
	}
	return txns, warnings, nil
}

func parseRow(row int, rec []string) (model.Transaction, []RowWarning, error) {
	bookingDate, err := parseDate(rec[inBookingDate])
	if err != nil {
		return model.Transaction{}, nil, fmt.Errorf("parsing booking date %q: %w", rec[inBookingDate], err)
	}
	valueDate, err := parseDate(rec[inValueDate])
	if err != nil {
		return model.Transaction{}, nil, fmt.Errorf("parsing value date %q: %w", rec[inValueDate], err)
	}

	txn := model.Transaction{
		BookingDate:  bookingDate,
		BookingTime:  rec[inBookingTime],
		ValueDate:    valueDate,
		ClearingDate: rec[inClearingDate],
		Currency:     rec[inCurrency],
		Reference:    rec[inReference],
		Description1: rec[inDesc1],
		Description2: rec[inDesc2],
		Description3: rec[inDesc3],
		Footnotes:    rec[inFootnotes],
	}

	var warnings []RowWarning
	amounts := []struct {
		field string
		col   int
		dst   *decimal.NullDecimal
	}{
		{"debit_amount", inDebit, &txn.Debit},
		{"credit_amount", inCredit, &txn.Credit},
		{"single_amount", inSingleAmount, &txn.SingleAmount},
		{"balance", inBalance, &txn.Balance},
	}
	for _, a := range amounts {
		d, err := numparse.Parse(rec[a.col])
		if err != nil {
			warnings = append(warnings, RowWarning{Row: row, Field: a.field, Value: rec[a.col], Err: err})
			continue
		}
		*a.dst = d
	}
	return txn, warnings, nil
}

func parseDate(s string) (time.Time, error) {
	var lastErr error
	for _, f := range dateFormats {
		t, err := time.Parse(f, strings.TrimSpace(s))
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// headerIndex finds the line most plausibly holding the column names.
func headerIndex(lines []string) int {
	threshold := float64(len(ExpectedColumns)) * 0.8
	expected := make(map[string]bool, len(ExpectedColumns))
	for _, c := range ExpectedColumns {
		expected[c] = true
	}
	for i, line := range lines {
		matches := 0
		for _, col := range strings.Split(strings.TrimSpace(line), string(Delimiter)) {
			if expected[strings.Trim(col, `"`)] {
				matches++
			}
		}
		if float64(matches) >= threshold {
			return i
		}
	}
	return -1
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}
