package connectors

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFundamentals = `name: Test Co
revenues: 10000
ebit: 1500
bookEquity: 5000
bookDebt: 2000
cash: 1000
sharesOutstanding: 500
stockPrice: 40
effectiveTaxRate: 0.18
rndExpense: 500
rndHistory: [400, 300]
`

func writeFundamentals(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
}

func TestFileConnectorFetch(t *testing.T) {
	dir := t.TempDir()
	writeFundamentals(t, dir, "TST.yaml", sampleFundamentals)

	c := NewFileConnector(dir, nil)
	company, err := c.Fetch("TST")
	require.NoError(t, err)

	assert.Equal(t, "Test Co", company.Name)
	assert.Equal(t, "TST", company.Ticker) // filled from the request
	assert.Equal(t, 10000.0, company.Revenues)
	assert.Equal(t, 1500.0, company.EBIT)
	assert.Equal(t, 500.0, company.SharesOutstanding)
	require.NotNil(t, company.EffectiveTaxRate)
	assert.Equal(t, 0.18, *company.EffectiveTaxRate)
	assert.Equal(t, []float64{400, 300}, company.RnDHistory)
}

func TestFileConnectorCaseInsensitiveTicker(t *testing.T) {
	dir := t.TempDir()
	writeFundamentals(t, dir, "TST.yaml", sampleFundamentals)

	c := NewFileConnector(dir, nil)
	company, err := c.Fetch("  tst ")
	require.NoError(t, err)
	assert.Equal(t, "TST", company.Ticker)
}

func TestFileConnectorShortExtension(t *testing.T) {
	dir := t.TempDir()
	writeFundamentals(t, dir, "TST.yml", sampleFundamentals)

	c := NewFileConnector(dir, nil)
	_, err := c.Fetch("TST")
	require.NoError(t, err)
}

func TestFileConnectorNotFound(t *testing.T) {
	c := NewFileConnector(t.TempDir(), nil)
	_, err := c.Fetch("MISSING")
	require.Error(t, err)

	var notFound *NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "MISSING", notFound.Ticker)
}

func TestFileConnectorEmptyTicker(t *testing.T) {
	c := NewFileConnector(t.TempDir(), nil)
	_, err := c.Fetch("   ")
	require.Error(t, err)
}

func TestFileConnectorMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	writeFundamentals(t, dir, "BAD.yaml", "revenues: [not a number\n")

	c := NewFileConnector(dir, nil)
	_, err := c.Fetch("BAD")
	require.Error(t, err)

	var notFound *NotFoundError
	assert.False(t, errors.As(err, &notFound))
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register(NewFileConnector(t.TempDir(), nil))

	c, err := r.Get("file")
	require.NoError(t, err)
	assert.Equal(t, "file", c.Name())

	_, err = r.Get("bloomberg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file")
}
