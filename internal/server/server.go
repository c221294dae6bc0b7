// Package server exposes the valuation pipeline over HTTP: a JSON endpoint
// for inline company data, a YAML upload endpoint matching the CLI config
// format, and a by-ticker endpoint backed by a data connector.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fcff-tools/ginzu/internal/builder"
	"github.com/fcff-tools/ginzu/internal/config"
	"github.com/fcff-tools/ginzu/internal/connectors"
	"github.com/fcff-tools/ginzu/internal/valuation"
	"github.com/fcff-tools/ginzu/pkg/constants"
	"github.com/fcff-tools/ginzu/pkg/mathutil"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type handler struct {
	logger        *zap.Logger
	registry      *connectors.Registry
	maxUploadSize int64
	version       string
}

// NewHandler constructs the HTTP handler that serves the valuation API.
// The registry may be nil when no data connectors are configured; the
// by-ticker endpoint then reports an error.
func NewHandler(logger *zap.Logger, registry *connectors.Registry, maxUploadSize int64, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:        logger,
		registry:      registry,
		maxUploadSize: maxUploadSize,
		version:       trimmedVersion,
	}

	r := mux.NewRouter()
	r.HandleFunc("/api/valuation", h.handleValuation).Methods(http.MethodPost)
	r.HandleFunc("/api/valuation/upload", h.handleValuationUpload).Methods(http.MethodPost)
	r.HandleFunc("/api/valuation/{ticker}", h.handleValuationByTicker).Methods(http.MethodGet)
	r.HandleFunc("/api/version", h.handleVersion).Methods(http.MethodGet)

	return r
}

// valuationRequest is the JSON payload for the inline endpoint.
type valuationRequest struct {
	Company     config.Company     `json:"company"`
	Assumptions config.Assumptions `json:"assumptions"`
}

// valuationResponse wraps the sanitized engine outputs. Series and scalars
// are encoded through interface{} so that non-finite values become null
// rather than breaking the JSON encoder.
type valuationResponse struct {
	Company  string                 `json:"company,omitempty"`
	Ticker   string                 `json:"ticker,omitempty"`
	Warnings []string               `json:"warnings,omitempty"`
	Duration string                 `json:"duration"`
	Outputs  map[string]interface{} `json:"outputs"`
}

func (h *handler) handleValuation(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	op := "server.handleValuation"

	if h.maxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	}

	var req valuationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request exceeds limit of %d bytes", h.maxUploadSize), op)
			return
		}
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return
	}

	h.runValuation(w, req.Company, req.Assumptions, "", start, op)
}

func (h *handler) handleValuationUpload(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	op := "server.handleValuationUpload"

	if h.maxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	}
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds limit of %d bytes", h.maxUploadSize), op)
			return
		}
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse upload: %v", err), op)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "missing configuration file", op)
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			h.logger.Warn("failed to close uploaded file",
				zap.String("op", op),
				zap.Error(closeErr),
			)
		}
	}()

	conf, err := config.LoadConfigurationFromReader(file)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	h.runValuation(w, conf.Company, conf.Assumptions, conf.Company.Ticker, start, op)
}

func (h *handler) handleValuationByTicker(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	op := "server.handleValuationByTicker"
	ticker := mux.Vars(r)["ticker"]

	if h.registry == nil {
		h.respondError(w, http.StatusServiceUnavailable, "no data connectors configured", op)
		return
	}

	connectorName := r.URL.Query().Get("connector")
	if connectorName == "" {
		connectorName = "file"
	}
	connector, err := h.registry.Get(connectorName)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	company, err := connector.Fetch(ticker)
	if err != nil {
		var notFound *connectors.NotFoundError
		if errors.As(err, &notFound) {
			h.respondError(w, http.StatusNotFound, err.Error(), op)
			return
		}
		h.respondError(w, http.StatusInternalServerError, err.Error(), op)
		return
	}

	h.runValuation(w, *company, config.Assumptions{}, company.Ticker, start, op)
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) runValuation(w http.ResponseWriter, company config.Company, assumptions config.Assumptions, ticker string, start time.Time, op string) {
	inputs := builder.Build(h.logger, company, assumptions)
	warnings := builder.Warnings(inputs)

	outputs, err := valuation.Compute(inputs)
	if err != nil {
		var inputErr *valuation.InputError
		if errors.As(err, &inputErr) {
			h.respondError(w, http.StatusBadRequest, err.Error(), op)
			return
		}
		h.respondError(w, http.StatusInternalServerError, err.Error(), op)
		return
	}

	elapsed := time.Since(start)
	response := valuationResponse{
		Company:  company.Name,
		Ticker:   ticker,
		Warnings: warnings,
		Duration: elapsed.String(),
		Outputs:  sanitizeOutputs(outputs),
	}

	h.logger.Info("valuation computed",
		zap.String("op", op),
		zap.String("company", company.Name),
		zap.Float64("valuePerShare", outputs.EstimatedValuePerShare),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, response)
}

// sanitizeOutputs re-encodes engine outputs with non-finite values mapped to
// null. encoding/json rejects NaN and infinity outright, and a division by a
// zero stock price legitimately produces them.
func sanitizeOutputs(o *valuation.Outputs) map[string]interface{} {
	return map[string]interface{}{
		"revenues":        mathutil.SanitizeSlice(o.Revenues),
		"growthRates":     mathutil.SanitizeSlice(o.GrowthRates),
		"margins":         mathutil.SanitizeSlice(o.Margins),
		"ebit":            mathutil.SanitizeSlice(o.EBIT),
		"taxRates":        mathutil.SanitizeSlice(o.TaxRates),
		"nol":             mathutil.SanitizeSlice(o.NOL),
		"ebitAfterTax":    mathutil.SanitizeSlice(o.EBITAfterTax),
		"reinvestment":    mathutil.SanitizeSlice(o.Reinvestment),
		"fcff":            mathutil.SanitizeSlice(o.FCFF),
		"wacc":            mathutil.SanitizeSlice(o.WACC),
		"discountFactors": mathutil.SanitizeSlice(o.DiscountFactors),
		"pvFcff":          mathutil.SanitizeSlice(o.PVFCFF),

		"pv10y":            mathutil.SanitizeValue(o.PV10Y),
		"terminalCashFlow": mathutil.SanitizeValue(o.TerminalCashFlow),
		"terminalValue":    mathutil.SanitizeValue(o.TerminalValue),
		"pvTerminalValue":  mathutil.SanitizeValue(o.PVTerminalValue),
		"pvSum":            mathutil.SanitizeValue(o.PVSum),

		"probabilityOfFailure":   mathutil.SanitizeValue(o.ProbabilityOfFailure),
		"proceedsIfFailure":      mathutil.SanitizeValue(o.ProceedsIfFailure),
		"valueOfOperatingAssets": mathutil.SanitizeValue(o.ValueOfOperatingAssets),

		"debt":                   mathutil.SanitizeValue(o.Debt),
		"cashAdjusted":           mathutil.SanitizeValue(o.CashAdjusted),
		"valueOfEquity":          mathutil.SanitizeValue(o.ValueOfEquity),
		"optionsValue":           mathutil.SanitizeValue(o.OptionsValue),
		"valueOfEquityCommon":    mathutil.SanitizeValue(o.ValueOfEquityCommon),
		"estimatedValuePerShare": mathutil.SanitizeValue(o.EstimatedValuePerShare),
		"priceAsPercentOfValue":  mathutil.SanitizeValue(o.PriceAsPercentOfValue),
	}
}

func (h *handler) respondError(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("valuation request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
