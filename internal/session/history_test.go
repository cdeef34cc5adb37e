package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dannysarco/llm-token-optimizer/internal/pricing"
)

func testRecord(t *testing.T, originalTokens, optimizedTokens int) Record {
	t.Helper()
	return NewRecord(pricing.Default, "long original", "short", originalTokens, optimizedTokens, 100, 50)
}

func TestNewRecordInvariants(t *testing.T) {
	r := testRecord(t, 100, 75)

	assert.NotEmpty(t, r.ID)
	assert.False(t, r.CreatedAt.IsZero())
	assert.InDelta(t, 0.0003, r.InputCostUSD, 1e-12)
	assert.InDelta(t, 0.00075, r.OutputCostUSD, 1e-12)
	assert.InDelta(t, 0.00105, r.TotalCostUSD, 1e-12)
	assert.InDelta(t, r.InputCostUSD+r.OutputCostUSD, r.TotalCostUSD, 1e-15)
	assert.Equal(t, 25, r.TokensSaved)
	assert.InDelta(t, 25*3.00/1_000_000, r.CostSavedUSD, 1e-12)
}

func TestNewRecordNegativeSavings(t *testing.T) {
	// The model made the prompt longer. No special-casing: savings go
	// negative and so does the saved cost.
	r := testRecord(t, 50, 80)
	assert.Equal(t, -30, r.TokensSaved)
	assert.Less(t, r.CostSavedUSD, 0.0)
	assert.InDelta(t, 0.00105, r.TotalCostUSD, 1e-12)
}

func TestLoadMissingFile(t *testing.T) {
	h := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Zero(t, h.Len())
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	h := Load(path)
	assert.Zero(t, h.Len())
}

func TestAppendPersistsAndReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	h := Load(path)

	r1 := testRecord(t, 100, 75)
	r2 := testRecord(t, 200, 90)
	require.NoError(t, h.Append(r1))
	require.NoError(t, h.Append(r2))

	// Every mutation rewrites the file; a fresh load sees both, in order.
	h2 := Load(path)
	require.Equal(t, 2, h2.Len())
	assert.Equal(t, r1.ID, h2.Records()[0].ID)
	assert.Equal(t, r2.ID, h2.Records()[1].ID)
}

func TestClearResetsMemoryAndDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	h := Load(path)
	require.NoError(t, h.Append(testRecord(t, 10, 5)))
	require.NoError(t, h.Clear())

	assert.Zero(t, h.Len())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(data))
	assert.Zero(t, Load(path).Len())
}

func TestExportRoundTrip(t *testing.T) {
	dir := t.TempDir()
	h := Load(filepath.Join(dir, "history.json"))
	require.NoError(t, h.Append(testRecord(t, 100, 75)))
	require.NoError(t, h.Append(testRecord(t, 40, 60)))

	out := filepath.Join(dir, ExportFilename(time.Now()))
	require.NoError(t, h.Export(out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var exported []Record
	require.NoError(t, json.Unmarshal(data, &exported))

	inMem, err := json.Marshal(h.Records())
	require.NoError(t, err)
	onDisk, err := json.Marshal(exported)
	require.NoError(t, err)
	assert.JSONEq(t, string(inMem), string(onDisk))
}

func TestExportFilename(t *testing.T) {
	ts := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "optimizations-2026-08-26.json", ExportFilename(ts))
}

func TestAggregates(t *testing.T) {
	h := Load(filepath.Join(t.TempDir(), "history.json"))
	require.NoError(t, h.Append(testRecord(t, 100, 75)))
	require.NoError(t, h.Append(testRecord(t, 100, 120)))

	s := h.Aggregates()
	assert.Equal(t, 2, s.Count)
	assert.InDelta(t, 2*0.00105, s.TotalCostUSD, 1e-12)
	assert.Equal(t, 25-20, s.TokensSaved)
}

func TestCumulativeCostsNonDecreasing(t *testing.T) {
	h := Load(filepath.Join(t.TempDir(), "history.json"))
	for i := 0; i < 5; i++ {
		require.NoError(t, h.Append(testRecord(t, 100, 75)))
	}

	series := h.CumulativeCosts()
	require.Len(t, series, 5)
	var sum float64
	for i, v := range series {
		sum += h.Records()[i].TotalCostUSD
		assert.InDelta(t, sum, v, 1e-12)
		if i > 0 {
			assert.GreaterOrEqual(t, v, series[i-1])
		}
	}
}
