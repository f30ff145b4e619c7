// Package reconcile merges a freshly classified batch against the previous
// run's output. Reprocessing must be idempotent and non-destructive: stable
// IDs survive, user-corrected categories survive, and rows no longer present
// in the statement drop out.
package reconcile

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jm-glowienke/fluffy-octo-spoon/internal/id"
	"github.com/jm-glowienke/fluffy-octo-spoon/internal/model"
)

// Warning kinds for collision diagnostics.
const (
	WarnPriorClaimed   = "prior-already-claimed"
	WarnAmbiguousPrior = "ambiguous-prior-match"
)

// Warning describes one reconciliation collision. Collisions degrade
// (first match in input order wins) instead of aborting the run.
type Warning struct {
	Kind    string
	Row     int    // new-batch row index
	PriorID string // prior transaction involved
	Detail  string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: row %d, prior %s: %s", w.Kind, w.Row, w.PriorID, w.Detail)
}

// Error signals that the new batch was empty while a prior batch exists.
// It is a caller-visible warning condition, not a crash: the empty merged
// batch is still the correct output if the statement genuinely has no rows.
type Error struct {
	PriorCount int
}

func (e *Error) Error() string {
	return fmt.Sprintf("new batch is empty but prior batch has %d transactions", e.PriorCount)
}

// Reconcile merges newBatch against prior. Matched transactions keep their
// prior ID; a prior category that is neither uncategorized nor what
// classification just produced is preserved as a manual override. Unmatched
// transactions get a deterministic content-derived ID. The merged batch
// contains exactly the new-batch rows, in input order.
func Reconcile(newBatch, prior []model.Transaction) ([]model.Transaction, []Warning, error) {
	if len(newBatch) == 0 && len(prior) > 0 {
		return nil, nil, &Error{PriorCount: len(prior)}
	}

	buckets := make(map[string][]int, len(prior))
	for j, p := range prior {
		k := baseKey(p)
		buckets[k] = append(buckets[k], j)
	}

	claimed := make([]bool, len(prior))
	occurrences := make(map[string]int)
	merged := make([]model.Transaction, 0, len(newBatch))
	var warnings []Warning

	for i, txn := range newBatch {
		var open, taken []int
		for _, j := range buckets[baseKey(txn)] {
			if !pairMatches(txn, prior[j]) {
				continue
			}
			if claimed[j] {
				taken = append(taken, j)
			} else {
				open = append(open, j)
			}
		}

		if len(open) > 0 {
			j := open[0]
			claimed[j] = true
			for _, extra := range open[1:] {
				warnings = append(warnings, Warning{
					Kind:    WarnAmbiguousPrior,
					Row:     i,
					PriorID: prior[extra].ID,
					Detail:  fmt.Sprintf("also matches prior %s; keeping first match %s", prior[extra].ID, prior[j].ID),
				})
			}
			merged = append(merged, carryOver(txn, prior[j]))
			continue
		}

		for _, j := range taken {
			warnings = append(warnings, Warning{
				Kind:    WarnPriorClaimed,
				Row:     i,
				PriorID: prior[j].ID,
				Detail:  "prior transaction already matched by an earlier row; assigning a new ID",
			})
		}

		fp := fingerprint(txn)
		n := occurrences[fp]
		occurrences[fp] = n + 1
		txn.ID = id.ForFingerprint(fp, n)
		merged = append(merged, txn)
	}

	return merged, warnings, nil
}

// carryOver applies the prior transaction's identity and, when the user
// corrected it, category to the freshly classified row.
func carryOver(txn, prior model.Transaction) model.Transaction {
	txn.ID = prior.ID
	if prior.Category != model.Uncategorized && prior.Category != txn.Category {
		txn.Category = prior.Category
		txn.Source = model.SourceManualOverride
	}
	return txn
}

// pairMatches implements the identity rule for two rows that already share a
// base key: the reference number decides when both sides have one, otherwise
// the descriptive text must match exactly.
func pairMatches(a, b model.Transaction) bool {
	if a.Reference != "" && b.Reference != "" {
		return a.Reference == b.Reference
	}
	return descKey(a) == descKey(b)
}

// baseKey joins the date, currency, amount, and balance identity fields.
// Null amounts are distinct from zero amounts.
func baseKey(t model.Transaction) string {
	return strings.Join([]string{
		t.BookingDate.Format("2006-01-02"),
		t.ValueDate.Format("2006-01-02"),
		t.Currency,
		nullString(t.Debit),
		nullString(t.Credit),
		nullString(t.Balance),
	}, "|")
}

func descKey(t model.Transaction) string {
	return strings.Join([]string{t.Description1, t.Description2, t.Description3, t.Footnotes}, "\x1f")
}

// fingerprint is the content hashed into a new transaction's ID.
func fingerprint(t model.Transaction) string {
	return baseKey(t) + "|" + t.Reference + "|" + descKey(t)
}

func nullString(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}
