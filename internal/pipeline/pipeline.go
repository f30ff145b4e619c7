// Package pipeline sequences classification and reconciliation over one
// statement run and owns the logging of decisions and conflicts. A run is a
// pure function of (new rows, prior rows, mapping); the merged batch is only
// handed out after the full merge completes.
package pipeline

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/jm-glowienke/fluffy-octo-spoon/internal/category"
	"github.com/jm-glowienke/fluffy-octo-spoon/internal/classify"
	"github.com/jm-glowienke/fluffy-octo-spoon/internal/model"
	"github.com/jm-glowienke/fluffy-octo-spoon/internal/reconcile"
)

// Summary gives the run counts and the recovered anomalies.
type Summary struct {
	Classified       int // keyword matches in the merged output
	AmountClassified int // amount-rule matches
	Uncategorized    int
	Overridden       int // prior manual corrections carried over
	Added            int // transactions not present in the prior batch
	Dropped          int // prior transactions absent from the new statement
	Warnings         []string
}

// Result is the complete outcome of one run.
type Result struct {
	Transactions []model.Transaction
	Records      []model.ClassificationRecord
	Summary      Summary
}

// Run classifies newBatch, reconciles it against prior, and returns the
// merged batch plus summary. A reconcile.Error is returned alongside a valid
// (empty) result; callers decide whether to abort.
func Run(newBatch, prior []model.Transaction, mapping *category.Mapping, log zerolog.Logger) (*Result, error) {
	res := &Result{}

	for _, d := range mapping.Duplicates() {
		log.Warn().
			Str("keyword", d.Keyword).
			Str("first_category", d.First).
			Str("second_category", d.Second).
			Msg("keyword declared under two categories; first declaration wins")
		res.Summary.Warnings = append(res.Summary.Warnings,
			"duplicate keyword "+d.Keyword+" in "+d.First+" and "+d.Second)
	}

	classified, records := classify.Classify(newBatch, mapping)
	res.Records = records

	merged, warnings, err := reconcile.Reconcile(classified, prior)
	var rerr *reconcile.Error
	if err != nil && !errors.As(err, &rerr) {
		return nil, err
	}
	if rerr != nil {
		log.Warn().Int("prior_count", rerr.PriorCount).Msg(rerr.Error())
		res.Summary.Warnings = append(res.Summary.Warnings, rerr.Error())
	}
	for _, w := range warnings {
		log.Warn().
			Str("kind", w.Kind).
			Int("row", w.Row).
			Str("prior_id", w.PriorID).
			Msg(w.Detail)
		res.Summary.Warnings = append(res.Summary.Warnings, w.String())
	}
	res.Transactions = merged

	// Merged output preserves new-batch order, so record rows line up with
	// merged rows and can be logged with their final IDs.
	for _, rec := range records {
		ev := log.Debug().
			Int("row", rec.Row).
			Str("category", rec.Category).
			Str("source", string(rec.Source))
		if rec.Keyword != "" {
			ev = ev.Str("keyword", rec.Keyword)
		}
		if rec.Row < len(merged) {
			ev = ev.Str("id", merged[rec.Row].ID)
		}
		ev.Msg("classified transaction")
	}

	tally(res, prior)

	log.Info().
		Int("transactions", len(res.Transactions)).
		Int("classified", res.Summary.Classified).
		Int("amount_classified", res.Summary.AmountClassified).
		Int("uncategorized", res.Summary.Uncategorized).
		Int("overridden", res.Summary.Overridden).
		Int("added", res.Summary.Added).
		Int("dropped", res.Summary.Dropped).
		Int("warnings", len(res.Summary.Warnings)).
		Msg("run complete")

	if rerr != nil {
		return res, rerr
	}
	return res, nil
}

func tally(res *Result, prior []model.Transaction) {
	priorIDs := make(map[string]bool, len(prior))
	for _, p := range prior {
		priorIDs[p.ID] = true
	}
	mergedIDs := make(map[string]bool, len(res.Transactions))

	for _, t := range res.Transactions {
		mergedIDs[t.ID] = true
		switch t.Source {
		case model.SourceKeywordMatch:
			res.Summary.Classified++
		case model.SourceAmountMatch:
			res.Summary.AmountClassified++
		case model.SourceManualOverride:
			res.Summary.Overridden++
		case model.SourceUnclassified:
			res.Summary.Uncategorized++
		}
		if !priorIDs[t.ID] {
			res.Summary.Added++
		}
	}
	for _, p := range prior {
		if !mergedIDs[p.ID] {
			res.Summary.Dropped++
		}
	}
}
