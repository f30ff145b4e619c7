// Package classify applies the category mapping to a batch of transactions.
package classify

import (
	"github.com/jm-glowienke/fluffy-octo-spoon/internal/category"
	"github.com/jm-glowienke/fluffy-octo-spoon/internal/model"
)

// Classify assigns a category and match source to every transaction in the
// batch and emits one ClassificationRecord per row. Keyword matching runs
// first; amount rules apply only on a keyword miss. Manual overrides are
// never produced here, only by reconciliation against a prior batch.
func Classify(batch []model.Transaction, mapping *category.Mapping) ([]model.Transaction, []model.ClassificationRecord) {
	out := make([]model.Transaction, len(batch))
	records := make([]model.ClassificationRecord, len(batch))

	for i, txn := range batch {
		cat, keyword, ok := mapping.Resolve(txn.SearchText())
		switch {
		case ok:
			txn.Category = cat
			txn.Source = model.SourceKeywordMatch
		default:
			if amountCat, matched := mapping.ResolveAmount(txn.Debit, txn.Credit); matched {
				txn.Category = amountCat
				txn.Source = model.SourceAmountMatch
			} else {
				txn.Category = model.Uncategorized
				txn.Source = model.SourceUnclassified
			}
		}

		out[i] = txn
		records[i] = model.ClassificationRecord{
			Row:      i,
			Category: txn.Category,
			Keyword:  keyword,
			Source:   txn.Source,
		}
	}
	return out, records
}
