package report

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"windpark-cloud/internal/observability/metrics"
	settlementapp "windpark-cloud/internal/settlement/application"
	settlement "windpark-cloud/internal/settlement/domain"
)

// Handler serves settlement statement exports. A statement can only be
// exported once the settlement has been calculated.
type Handler struct {
	service *settlementapp.RecalculationService
	log     zerolog.Logger
}

// NewHandler constructs a report handler.
func NewHandler(service *settlementapp.RecalculationService, log zerolog.Logger) (*Handler, error) {
	if service == nil {
		return nil, errors.New("report handler: nil service")
	}
	return &Handler{service: service, log: log}, nil
}

// Serve renders the settlement statement in the requested format
// (?format=pdf|xlsx, default pdf).
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request, settlementID string) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "pdf"
	}

	record, items, err := h.service.Get(r.Context(), settlementID)
	if err != nil {
		metrics.ObserveReport(format, metrics.ResultError)
		if errors.Is(err, settlement.ErrNotFound) {
			http.Error(w, "settlement not found", http.StatusNotFound)
			return
		}
		h.log.Error().Err(err).Msg("report load failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if record.Status == settlement.StatusDraft {
		metrics.ObserveReport(format, metrics.ResultError)
		http.Error(w, "settlement has not been calculated yet", http.StatusConflict)
		return
	}

	var payload []byte
	var contentType, filename string
	switch format {
	case "pdf":
		payload, err = BuildPDF(record, items)
		contentType = "application/pdf"
		filename = fmt.Sprintf("settlement-%s-%s.pdf", record.ParkID, record.PeriodLabel())
	case "xlsx":
		payload, err = BuildXLSX(record, items)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		filename = fmt.Sprintf("settlement-%s-%s.xlsx", record.ParkID, record.PeriodLabel())
	default:
		metrics.ObserveReport(format, metrics.ResultError)
		http.Error(w, "unsupported format", http.StatusBadRequest)
		return
	}
	if err != nil {
		metrics.ObserveReport(format, metrics.ResultError)
		h.log.Error().Err(err).Str("format", format).Msg("report render failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	metrics.ObserveReport(format, metrics.ResultSuccess)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}
