package commands

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jm-glowienke/fluffy-octo-spoon/internal/auditlog"
	"github.com/jm-glowienke/fluffy-octo-spoon/internal/category"
	"github.com/jm-glowienke/fluffy-octo-spoon/internal/config"
	"github.com/jm-glowienke/fluffy-octo-spoon/internal/logging"
	"github.com/jm-glowienke/fluffy-octo-spoon/internal/pipeline"
	"github.com/jm-glowienke/fluffy-octo-spoon/internal/reconcile"
	"github.com/jm-glowienke/fluffy-octo-spoon/internal/statement"
)

func newClassifyCommand() *cobra.Command {
	var mappingPath string
	var inputPath string
	var outputPath string
	var auditPath string

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify a bank statement and merge it with the previous output",
		Long: `Classify reads a raw bank statement export, assigns a category to every
transaction via the keyword mapping, and merges the result with the previous
classified output at the same path: stable IDs and manually corrected
categories are preserved across runs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClassify(mappingPath, inputPath, outputPath, auditPath)
		},
	}

	cmd.Flags().StringVar(&mappingPath, "mapping", "", "category mapping YAML file (required)")
	_ = cmd.MarkFlagRequired("mapping")
	cmd.Flags().StringVar(&inputPath, "input", "", "raw bank statement CSV (required)")
	_ = cmd.MarkFlagRequired("input")
	cmd.Flags().StringVar(&outputPath, "output", "", "classified output CSV, also read as the prior batch (required)")
	_ = cmd.MarkFlagRequired("output")
	cmd.Flags().StringVar(&auditPath, "audit-log", "", "append classification decisions to this CSV")

	return cmd
}

func runClassify(mappingPath, inputPath, outputPath, auditPath string) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	log := logging.New(cfg)

	// A broken mapping is fatal before any row is touched.
	mapping, err := category.Load(mappingPath)
	if err != nil {
		return fmt.Errorf("loading category mapping: %w", err)
	}

	in, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("opening statement: %w", err)
	}
	defer in.Close()

	newBatch, rowWarns, err := statement.Parse(in)
	if err != nil {
		return fmt.Errorf("parsing statement %s: %w", inputPath, err)
	}
	for _, w := range rowWarns {
		log.Warn().
			Int("row", w.Row).
			Str("field", w.Field).
			Str("value", w.Value).
			Msg("malformed amount; field treated as absent")
	}

	prior, err := statement.ReadOutputFile(outputPath)
	if err != nil {
		return err
	}
	if prior != nil {
		log.Info().Int("count", len(prior)).Str("path", outputPath).Msg("loaded prior classified output")
	}

	res, err := pipeline.Run(newBatch, prior, mapping, log)
	var rerr *reconcile.Error
	if err != nil && !errors.As(err, &rerr) {
		return err
	}
	// A reconcile signal is already logged; the merged batch is still the
	// correct output for the statement as given.

	if err := statement.WriteOutputFile(outputPath, res.Transactions); err != nil {
		return err
	}
	log.Info().Str("path", outputPath).Int("count", len(res.Transactions)).Msg("wrote classified output")

	if auditPath != "" {
		if err := appendAudit(auditPath, res); err != nil {
			return err
		}
	}
	return nil
}

func appendAudit(path string, res *pipeline.Result) error {
	now := time.Now().UTC()
	entries := make([]auditlog.Entry, 0, len(res.Transactions))
	for _, rec := range res.Records {
		if rec.Row >= len(res.Transactions) {
			continue
		}
		txn := res.Transactions[rec.Row]
		entries = append(entries, auditlog.Entry{
			Timestamp:     now,
			TransactionID: txn.ID,
			Category:      txn.Category,
			Keyword:       rec.Keyword,
			Source:        txn.Source,
		})
	}
	if err := auditlog.Append(path, entries); err != nil {
		return fmt.Errorf("appending audit log: %w", err)
	}
	return nil
}
