package commands_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jm-glowienke/fluffy-octo-spoon/internal/auditlog"
	"github.com/jm-glowienke/fluffy-octo-spoon/internal/model"
	"github.com/jm-glowienke/fluffy-octo-spoon/internal/statement"
)

var binaryPath string

func TestMain(m *testing.M) {
	// Build the binary once for all tests.
	tmpDir, err := os.MkdirTemp("", "fos-test-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(tmpDir)

	binaryPath = filepath.Join(tmpDir, "fos")
	cmd := exec.Command("go", "build", "-o", binaryPath, "../../cmd/fos")
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		panic("failed to build binary: " + err.Error())
	}

	os.Exit(m.Run())
}

func runFos(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

func copyFixture(t *testing.T, name, dst string) {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("../../testdata", name))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(dst, data, 0o644))
}

// setup copies the statement and mapping fixtures into a temp dir and
// returns the per-file paths.
func setup(t *testing.T) (mapping, input, output string) {
	t.Helper()
	dir := t.TempDir()
	mapping = filepath.Join(dir, "category_mapping.yaml")
	input = filepath.Join(dir, "transactions.csv")
	output = filepath.Join(dir, "classified_transactions.csv")
	copyFixture(t, "category_mapping.yaml", mapping)
	copyFixture(t, "swiss_statement.csv", input)
	return mapping, input, output
}

func TestClassify_FirstRun(t *testing.T) {
	mapping, input, output := setup(t)

	_, err := runFos(t, "classify", "--mapping", mapping, "--input", input, "--output", output)
	require.NoError(t, err)

	txns, err := statement.ReadOutputFile(output)
	require.NoError(t, err)
	require.Len(t, txns, 4)

	assert.Equal(t, "Groceries", txns[0].Category)
	assert.Equal(t, model.SourceKeywordMatch, txns[0].Source)
	assert.Equal(t, "Transport", txns[1].Category)
	// No keyword matches the salary row; the amount rule picks it up.
	assert.Equal(t, "Salary", txns[2].Category)
	assert.Equal(t, model.SourceAmountMatch, txns[2].Source)
	assert.Equal(t, "Dining", txns[3].Category)

	seen := make(map[string]bool)
	for i, txn := range txns {
		require.NotEmpty(t, txn.ID, "row %d", i)
		assert.False(t, seen[txn.ID], "row %d: duplicate id", i)
		seen[txn.ID] = true
	}
}

func TestClassify_RerunIsIdempotent(t *testing.T) {
	mapping, input, output := setup(t)

	_, err := runFos(t, "classify", "--mapping", mapping, "--input", input, "--output", output)
	require.NoError(t, err)
	first, err := statement.ReadOutputFile(output)
	require.NoError(t, err)

	_, err = runFos(t, "classify", "--mapping", mapping, "--input", input, "--output", output)
	require.NoError(t, err)
	second, err := statement.ReadOutputFile(output)
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID, "row %d id churned", i)
		assert.Equal(t, first[i].Category, second[i].Category, "row %d category churned", i)
	}
}

func TestClassify_RerunPreservesManualCorrection(t *testing.T) {
	mapping, input, output := setup(t)

	_, err := runFos(t, "classify", "--mapping", mapping, "--input", input, "--output", output)
	require.NoError(t, err)

	// User corrects the first row's category in the saved output.
	txns, err := statement.ReadOutputFile(output)
	require.NoError(t, err)
	corrected := txns[0]
	txns[0].Category = "Vacation"
	require.NoError(t, statement.WriteOutputFile(output, txns))

	_, err = runFos(t, "classify", "--mapping", mapping, "--input", input, "--output", output)
	require.NoError(t, err)

	after, err := statement.ReadOutputFile(output)
	require.NoError(t, err)
	assert.Equal(t, corrected.ID, after[0].ID)
	assert.Equal(t, "Vacation", after[0].Category)
	assert.Equal(t, model.SourceManualOverride, after[0].Source)
}

func TestClassify_AuditLog(t *testing.T) {
	mapping, input, output := setup(t)
	audit := filepath.Join(filepath.Dir(output), "audit-log.csv")

	_, err := runFos(t, "classify", "--mapping", mapping, "--input", input, "--output", output, "--audit-log", audit)
	require.NoError(t, err)

	entries, err := auditlog.Read(audit)
	require.NoError(t, err)
	require.Len(t, entries, 4)
	assert.Equal(t, "Groceries", entries[0].Category)
	assert.Equal(t, "migros", entries[0].Keyword)
}

func TestClassify_InvalidMappingIsFatal(t *testing.T) {
	dir := t.TempDir()
	mapping := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(mapping, []byte("Groceries: []\n"), 0o644))
	input := filepath.Join(dir, "transactions.csv")
	copyFixture(t, "swiss_statement.csv", input)
	output := filepath.Join(dir, "classified.csv")

	out, err := runFos(t, "classify", "--mapping", mapping, "--input", input, "--output", output)
	require.Error(t, err)
	assert.Contains(t, out, "invalid category mapping")

	// Nothing was written.
	_, statErr := os.Stat(output)
	assert.True(t, os.IsNotExist(statErr))
}

func TestValidate(t *testing.T) {
	mapping, _, _ := setup(t)

	out, err := runFos(t, "validate", "--mapping", mapping)
	require.NoError(t, err)
	assert.Contains(t, out, "3 categories, 5 keywords, 2 amount rules")
}

func TestReport(t *testing.T) {
	mapping, input, output := setup(t)

	_, err := runFos(t, "classify", "--mapping", mapping, "--input", input, "--output", output)
	require.NoError(t, err)

	out, err := runFos(t, "report", "--input", output)
	require.NoError(t, err)
	assert.Contains(t, out, "2025-01")
	assert.Contains(t, out, "Groceries")
	assert.Contains(t, out, "12.50")
	assert.Contains(t, out, "Salary")
}

func TestReport_MissingInput(t *testing.T) {
	_, err := runFos(t, "report", "--input", filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
}
