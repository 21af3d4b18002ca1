package interfaces

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"windpark-cloud/internal/audit"
	"windpark-cloud/internal/auth"
	settlementapp "windpark-cloud/internal/settlement/application"
	settlement "windpark-cloud/internal/settlement/domain"
)

// Reporter renders a settlement statement export for an id. Implemented by
// the report subpackage; optional.
type Reporter interface {
	Serve(w http.ResponseWriter, r *http.Request, settlementID string)
}

// SettlementHandler handles the settlement calculation APIs under
// /api/v1/settlements.
type SettlementHandler struct {
	service     *settlementapp.RecalculationService
	auditLogger audit.Logger
	reporter    Reporter
	log         zerolog.Logger
}

// NewSettlementHandler constructs a handler. reporter may be nil, which
// disables the report route.
func NewSettlementHandler(service *settlementapp.RecalculationService, auditLogger audit.Logger, reporter Reporter, log zerolog.Logger) (*SettlementHandler, error) {
	if service == nil {
		return nil, errors.New("settlement handler: nil service")
	}
	return &SettlementHandler{service: service, auditLogger: auditLogger, reporter: reporter, log: log}, nil
}

// ServeHTTP routes settlement requests.
func (h *SettlementHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/settlements/")
	if rest == r.URL.Path || rest == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	if id, ok := strings.CutSuffix(rest, "/recalculate"); ok && r.Method == http.MethodPost {
		h.handleRecalculate(w, r, id)
		return
	}
	if id, ok := strings.CutSuffix(rest, "/report"); ok && r.Method == http.MethodGet {
		if h.reporter == nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.logAction(r, "settlement.report", id, nil)
		h.reporter.Serve(w, r, id)
		return
	}
	if r.Method == http.MethodGet && !strings.Contains(rest, "/") {
		h.handleGet(w, r, rest)
		return
	}
	w.WriteHeader(http.StatusNotFound)
}

func (h *SettlementHandler) handleRecalculate(w http.ResponseWriter, r *http.Request, id string) {
	result, err := h.service.Recalculate(r.Context(), id)
	h.logAction(r, "settlement.recalculate", id, err)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recalculationResponse(result))
}

func (h *SettlementHandler) handleGet(w http.ResponseWriter, r *http.Request, id string) {
	record, items, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"settlement": settlementPayload(record),
		"line_items": lineItemPayloads(items),
		"audit":      record.Audit,
	})
}

// writeError maps domain errors to HTTP statuses. Unknown errors become 500
// without leaking internals.
func (h *SettlementHandler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, settlement.ErrNotFound):
		http.Error(w, "settlement not found", http.StatusNotFound)
	case errors.Is(err, settlement.ErrInvalidStatus):
		http.Error(w, "settlement status does not allow recalculation", http.StatusConflict)
	case errors.Is(err, settlement.ErrNoProductionData):
		http.Error(w, "no production data for this period", http.StatusUnprocessableEntity)
	case errors.Is(err, settlement.ErrUnknownPolicy),
		errors.Is(err, settlement.ErrSmoothingFactorRange),
		errors.Is(err, settlement.ErrToleranceRange):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.log.Error().Err(err).Msg("settlement request failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (h *SettlementHandler) logAction(r *http.Request, action, settlementID string, err error) {
	if h.auditLogger == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	entry := audit.Entry{
		TenantID:     auth.TenantIDFromContext(r.Context()),
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       action,
		SettlementID: settlementID,
		Outcome:      outcome,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	}
	if logErr := h.auditLogger.Log(r.Context(), entry); logErr != nil {
		h.log.Warn().Err(logErr).Msg("audit log write failed")
	}
}

func recalculationResponse(result *settlementapp.RecalculationResult) map[string]any {
	warnings := make([]map[string]string, 0, len(result.Warnings))
	for _, warning := range result.Warnings {
		warnings = append(warnings, map[string]string{
			"turbine_id": warning.TurbineID,
			"reason":     warning.Reason,
		})
	}
	return map[string]any{
		"settlement": settlementPayload(result.Settlement),
		"line_items": lineItemPayloads(result.LineItems),
		"audit":      result.Audit,
		"warnings":   warnings,
	}
}

func settlementPayload(s *settlement.Settlement) map[string]any {
	return map[string]any{
		"id":               s.ID,
		"park_id":          s.ParkID,
		"year":             s.Year,
		"month":            s.Month,
		"period":           s.PeriodLabel(),
		"total_revenue":    s.TotalRevenue,
		"currency":         s.Currency,
		"policy":           s.Policy,
		"smoothing_factor": s.SmoothingFactor,
		"tolerance_pct":    s.TolerancePct,
		"status":           s.Status,
		"calculated_at":    s.CalculatedAt,
	}
}

func lineItemPayloads(items []settlement.LineItem) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		payload := map[string]any{
			"turbine_id":           item.TurbineID,
			"turbine_label":        item.TurbineLabel,
			"operator_fund_id":     item.OperatorFundID,
			"operator_fund_label":  item.OperatorFundLabel,
			"production_kwh":       item.ProductionKWh,
			"production_share_pct": item.ProductionSharePct,
			"amount":               item.Amount,
			"description":          item.Description,
		}
		if item.AverageKWh != nil {
			payload["average_kwh"] = *item.AverageKWh
		}
		if item.DeviationKWh != nil {
			payload["deviation_kwh"] = *item.DeviationKWh
		}
		if item.ToleranceAdjustment != nil {
			payload["tolerance_adjustment"] = *item.ToleranceAdjustment
		}
		out = append(out, payload)
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
