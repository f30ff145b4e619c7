// Package report aggregates a classified batch into per-month category
// totals, the figures the spending dashboard is built from.
package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jm-glowienke/fluffy-octo-spoon/internal/model"
)

// MonthlyCategorySum is the absolute amount spent or received for one
// category in one booking month.
type MonthlyCategorySum struct {
	Month    string // "YYYY-MM"
	Category string
	Total    decimal.Decimal
}

// MonthlySums aggregates the batch by booking month and category, sorted by
// month then category. Each transaction contributes its single amount when
// present, otherwise whichever of credit/debit is populated; amounts are
// summed as absolute values.
func MonthlySums(txns []model.Transaction) []MonthlyCategorySum {
	type key struct {
		month    string
		category string
	}
	totals := make(map[key]decimal.Decimal)

	for _, t := range txns {
		amount, ok := transactionAmount(t)
		if !ok {
			continue
		}
		k := key{month: t.BookingDate.Format("2006-01"), category: t.Category}
		totals[k] = totals[k].Add(amount.Abs())
	}

	sums := make([]MonthlyCategorySum, 0, len(totals))
	for k, total := range totals {
		sums = append(sums, MonthlyCategorySum{Month: k.month, Category: k.category, Total: total})
	}
	sort.Slice(sums, func(i, j int) bool {
		if sums[i].Month != sums[j].Month {
			return sums[i].Month < sums[j].Month
		}
		return sums[i].Category < sums[j].Category
	})
	return sums
}

func transactionAmount(t model.Transaction) (decimal.Decimal, bool) {
	switch {
	case t.SingleAmount.Valid:
		return t.SingleAmount.Decimal, true
	case t.Credit.Valid:
		return t.Credit.Decimal, true
	case t.Debit.Valid:
		return t.Debit.Decimal, true
	default:
		return decimal.Decimal{}, false
	}
}
