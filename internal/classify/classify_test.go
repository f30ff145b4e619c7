package classify

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jm-glowienke/fluffy-octo-spoon/internal/category"
	"github.com/jm-glowienke/fluffy-octo-spoon/internal/model"
)

func testMapping(t *testing.T) *category.Mapping {
	t.Helper()
	m, err := category.Parse([]byte(`
categories:
  Groceries:
    - migros
  Transport:
    - sbb
amount_rules:
  - category: Salary
    min_credit: "3000"
`))
	require.NoError(t, err)
	return m
}

func dec(s string) decimal.NullDecimal {
	d, _ := decimal.NewFromString(s)
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

func TestClassify_FirstMatchWins(t *testing.T) {
	batch := []model.Transaction{
		{Description1: "MIGROS SBB KIOSK"},
	}

	got, records := Classify(batch, testMapping(t))
	require.Len(t, got, 1)
	assert.Equal(t, "Groceries", got[0].Category)
	assert.Equal(t, model.SourceKeywordMatch, got[0].Source)

	require.Len(t, records, 1)
	assert.Equal(t, 0, records[0].Row)
	assert.Equal(t, "migros", records[0].Keyword)
}

func TestClassify_SearchesAllDescriptiveFields(t *testing.T) {
	batch := []model.Transaction{
		{Description1: "Zahlung", Description3: "SBB Billett"},
		{Footnotes: "Kauf MIGROS Filiale"},
	}

	got, _ := Classify(batch, testMapping(t))
	assert.Equal(t, "Transport", got[0].Category)
	assert.Equal(t, "Groceries", got[1].Category)
}

func TestClassify_NoCrossFieldMatch(t *testing.T) {
	// "sbb" split across two fields must not match.
	batch := []model.Transaction{
		{Description1: "ZAHLUNG S", Description2: "BB AG"},
	}

	got, _ := Classify(batch, testMapping(t))
	assert.Equal(t, model.Uncategorized, got[0].Category)
	assert.Equal(t, model.SourceUnclassified, got[0].Source)
}

func TestClassify_AmountRuleFallback(t *testing.T) {
	batch := []model.Transaction{
		{Description1: "LOHN ARBEITGEBER AG", Credit: dec("5200.00")},
	}

	got, records := Classify(batch, testMapping(t))
	assert.Equal(t, "Salary", got[0].Category)
	assert.Equal(t, model.SourceAmountMatch, got[0].Source)
	assert.Empty(t, records[0].Keyword)
}

func TestClassify_KeywordBeatsAmountRule(t *testing.T) {
	batch := []model.Transaction{
		{Description1: "MIGROS GROSSEINKAUF", Credit: dec("5000.00")},
	}

	got, _ := Classify(batch, testMapping(t))
	assert.Equal(t, "Groceries", got[0].Category)
	assert.Equal(t, model.SourceKeywordMatch, got[0].Source)
}

func TestClassify_TotalCategorization(t *testing.T) {
	batch := []model.Transaction{
		{Description1: "MIGROS"},
		{Description1: "unbekannt"},
		{},
	}

	got, records := Classify(batch, testMapping(t))
	require.Len(t, records, len(batch))
	for i, txn := range got {
		assert.NotEmpty(t, txn.Category, "row %d", i)
		assert.NotEmpty(t, txn.Source, "row %d", i)
	}
}

func TestClassify_DoesNotMutateInput(t *testing.T) {
	batch := []model.Transaction{{Description1: "MIGROS"}}

	_, _ = Classify(batch, testMapping(t))
	assert.Empty(t, batch[0].Category)
	assert.Empty(t, batch[0].Source)
}
