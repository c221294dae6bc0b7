package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fcff-tools/ginzu/internal/connectors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRequest = `{
  "company": {
    "name": "Test Co",
    "revenues": 10000,
    "ebit": 1500,
    "bookEquity": 5000,
    "bookDebt": 2000,
    "cash": 1000,
    "sharesOutstanding": 500,
    "stockPrice": 40
  },
  "assumptions": {
    "revGrowthY1": 0.10,
    "revCAGRY2To5": 0.08
  }
}`

const sampleConfigYAML = `company:
  name: Test Co
  ticker: TST
  revenues: 10000
  ebit: 1500
  bookEquity: 5000
  bookDebt: 2000
  cash: 1000
  sharesOutstanding: 500
  stockPrice: 40
assumptions:
  revGrowthY1: 0.10
`

func newTestHandler(t *testing.T, registry *connectors.Registry) http.Handler {
	t.Helper()
	return NewHandler(nil, registry, 0, "test")
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) valuationResponse {
	t.Helper()
	var resp valuationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHandleValuation(t *testing.T) {
	h := newTestHandler(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/valuation", strings.NewReader(sampleRequest))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decodeResponse(t, rec)
	assert.Equal(t, "Test Co", resp.Company)

	vps, ok := resp.Outputs["estimatedValuePerShare"].(float64)
	require.True(t, ok, "estimatedValuePerShare missing or null")
	assert.Greater(t, vps, 0.0)

	revenues, ok := resp.Outputs["revenues"].([]interface{})
	require.True(t, ok)
	assert.Len(t, revenues, 11)
}

func TestHandleValuationRejectsBadInputs(t *testing.T) {
	h := newTestHandler(t, nil)

	// Zero shares outstanding violates the engine's input contract.
	body := `{"company": {"revenues": 1000, "sharesOutstanding": 0}}`
	req := httptest.NewRequest(http.MethodPost, "/api/valuation", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "shares outstanding")
}

func TestHandleValuationRejectsMalformedJSON(t *testing.T) {
	h := newTestHandler(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/valuation", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleValuationMethodNotAllowed(t *testing.T) {
	h := newTestHandler(t, nil)

	req := httptest.NewRequest(http.MethodPut, "/api/valuation", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleValuationUpload(t *testing.T) {
	h := newTestHandler(t, nil)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "config.yaml")
	require.NoError(t, err)
	_, err = part.Write([]byte(sampleConfigYAML))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/valuation/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decodeResponse(t, rec)
	assert.Equal(t, "Test Co", resp.Company)
	assert.Equal(t, "TST", resp.Ticker)
}

func TestHandleValuationUploadMissingFile(t *testing.T) {
	h := newTestHandler(t, nil)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("other", "value"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/valuation/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing configuration file")
}

func TestHandleValuationByTicker(t *testing.T) {
	dir := t.TempDir()
	fundamentals := `name: Ticker Co
revenues: 10000
ebit: 1500
bookEquity: 5000
bookDebt: 2000
cash: 1000
sharesOutstanding: 500
stockPrice: 40
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "TCO.yaml"), []byte(fundamentals), 0o644))

	registry := connectors.NewRegistry()
	registry.Register(connectors.NewFileConnector(dir, nil))
	h := newTestHandler(t, registry)

	req := httptest.NewRequest(http.MethodGet, "/api/valuation/tco", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decodeResponse(t, rec)
	assert.Equal(t, "Ticker Co", resp.Company)
	assert.Equal(t, "TCO", resp.Ticker)
}

func TestHandleValuationByTickerNotFound(t *testing.T) {
	registry := connectors.NewRegistry()
	registry.Register(connectors.NewFileConnector(t.TempDir(), nil))
	h := newTestHandler(t, registry)

	req := httptest.NewRequest(http.MethodGet, "/api/valuation/MISSING", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleValuationByTickerNoConnectors(t *testing.T) {
	h := newTestHandler(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/valuation/TST", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleValuationByTickerUnknownConnector(t *testing.T) {
	registry := connectors.NewRegistry()
	registry.Register(connectors.NewFileConnector(t.TempDir(), nil))
	h := newTestHandler(t, registry)

	req := httptest.NewRequest(http.MethodGet, "/api/valuation/TST?connector=bloomberg", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleVersion(t *testing.T) {
	h := newTestHandler(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/version", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "test", resp["version"])
}

func TestHandleValuationUploadTooLarge(t *testing.T) {
	h := NewHandler(nil, nil, 128, "test")

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "config.yaml")
	require.NoError(t, err)
	_, err = part.Write(bytes.Repeat([]byte("a"), 4096))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/valuation/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}
