package statement

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jm-glowienke/fluffy-octo-spoon/internal/model"
)

// Header is the column header of the classified output CSV.
const Header = "booking_date;booking_time;value_date;clearing_date;currency;debit_amount;credit_amount;single_amount;balance;reference_number;description_1;description_2;description_3;footnotes;id;category;match_source"

const (
	numFields  = 17
	dateFormat = "2006-01-02"

	colBookingDate  = 0
	colBookingTime  = 1
	colValueDate    = 2
	colClearingDate = 3
	colCurrency     = 4
	colDebit        = 5
	colCredit       = 6
	colSingleAmount = 7
	colBalance      = 8
	colReference    = 9
	colDesc1        = 10
	colDesc2        = 11
	colDesc3        = 12
	colFootnotes    = 13
	colID           = 14
	colCategory     = 15
	colSource       = 16
)

// ReadOutput reads a previously written classified output.
func ReadOutput(r io.Reader) ([]model.Transaction, error) {
	cr := csv.NewReader(r)
	cr.Comma = Delimiter
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading classified CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var txns []model.Transaction
	for i, rec := range records[1:] {
		txn, err := UnmarshalTransaction(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

// ReadOutputFile reads a classified output file. A missing file means no
// prior run exists and yields nil without error.
func ReadOutputFile(path string) ([]model.Transaction, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening classified output %s: %w", path, err)
	}
	defer f.Close()

	txns, err := ReadOutput(f)
	if err != nil {
		return nil, fmt.Errorf("reading classified output %s: %w", path, err)
	}
	return txns, nil
}

// WriteOutput writes the merged batch, including the header row.
func WriteOutput(w io.Writer, txns []model.Transaction) error {
	cw := csv.NewWriter(w)
	cw.Comma = Delimiter
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, string(Delimiter))); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, txn := range txns {
		if err := cw.Write(MarshalTransaction(txn)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// WriteOutputFile writes the merged batch to path atomically: the data goes
// to a temp file in the same directory and is renamed into place, so a
// failed run never leaves a partial output behind for the next run to read
// back as its prior batch.
func WriteOutputFile(path string, txns []model.Transaction) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp output: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteOutput(tmp, txns); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp output: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing output %s: %w", path, err)
	}
	return nil
}

// MarshalTransaction converts a transaction to a CSV row.
func MarshalTransaction(t model.Transaction) []string {
	row := make([]string, numFields)
	row[colBookingDate] = t.BookingDate.Format(dateFormat)
	row[colBookingTime] = t.BookingTime
	row[colValueDate] = t.ValueDate.Format(dateFormat)
	row[colClearingDate] = t.ClearingDate
	row[colCurrency] = t.Currency
	row[colDebit] = amountString(t.Debit)
	row[colCredit] = amountString(t.Credit)
	row[colSingleAmount] = amountString(t.SingleAmount)
	if t.Balance.Valid {
		row[colBalance] = t.Balance.Decimal.String()
	}
	row[colReference] = t.Reference
	row[colDesc1] = t.Description1
	row[colDesc2] = t.Description2
	row[colDesc3] = t.Description3
	row[colFootnotes] = t.Footnotes
	row[colID] = t.ID
	row[colCategory] = t.Category
	row[colSource] = string(t.Source)
	return row
}

// UnmarshalTransaction converts a CSV row back to a transaction.
func UnmarshalTransaction(rec []string) (model.Transaction, error) {
	if len(rec) != numFields {
		return model.Transaction{}, fmt.Errorf("expected %d fields, got %d", numFields, len(rec))
	}

	bookingDate, err := time.Parse(dateFormat, rec[colBookingDate])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing booking_date %q: %w", rec[colBookingDate], err)
	}
	valueDate, err := time.Parse(dateFormat, rec[colValueDate])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing value_date %q: %w", rec[colValueDate], err)
	}

	txn := model.Transaction{
		ID:           rec[colID],
		BookingDate:  bookingDate,
		BookingTime:  rec[colBookingTime],
		ValueDate:    valueDate,
		ClearingDate: rec[colClearingDate],
		Currency:     rec[colCurrency],
		Reference:    rec[colReference],
		Description1: rec[colDesc1],
		Description2: rec[colDesc2],
		Description3: rec[colDesc3],
		Footnotes:    rec[colFootnotes],
		Category:     rec[colCategory],
		Source:       model.MatchSource(rec[colSource]),
	}

	fields := []struct {
		name string
		col  int
		dst  *decimal.NullDecimal
	}{
		{"debit_amount", colDebit, &txn.Debit},
		{"credit_amount", colCredit, &txn.Credit},
		{"single_amount", colSingleAmount, &txn.SingleAmount},
		{"balance", colBalance, &txn.Balance},
	}
	for _, f := range fields {
		if rec[f.col] == "" {
			continue
		}
		d, err := decimal.NewFromString(rec[f.col])
		if err != nil {
			return model.Transaction{}, fmt.Errorf("parsing %s %q: %w", f.name, rec[f.col], err)
		}
		*f.dst = decimal.NullDecimal{Decimal: d, Valid: true}
	}
	return txn, nil
}

func amountString(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.StringFixed(2)
}
