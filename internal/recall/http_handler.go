package recall

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/mfgpilot/traceability/internal/domain"
	"github.com/mfgpilot/traceability/internal/trace"
)

type Handler struct {
	simulator *Simulator
}

func NewHTTPHandler(simulator *Simulator) http.Handler {
	return &Handler{simulator: simulator}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/simulate"):
		h.handleSimulate(w, r)
		return
	default:
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
}

type simulatePayload struct {
	LPID                 string `json:"lp_id"`
	BatchNumber          string `json:"batch_number"`
	MaxDepth             *int   `json:"max_depth"`
	IncludeShipped       *bool  `json:"include_shipped"`
	IncludeReversed      bool   `json:"include_reversed"`
	IncludeNotifications *bool  `json:"include_notifications"`
}

func (p simulatePayload) toRequest() (Request, error) {
	req := Request{
		BatchNumber:          strings.TrimSpace(p.BatchNumber),
		MaxDepth:             trace.DefaultMaxDepth,
		IncludeShipped:       true,
		IncludeReversed:      p.IncludeReversed,
		IncludeNotifications: true,
	}
	if id := strings.TrimSpace(p.LPID); id != "" {
		parsed, err := uuid.Parse(id)
		if err != nil {
			return Request{}, fmt.Errorf("%w: invalid lp_id: %v", domain.ErrInvalidInput, err)
		}
		req.LPID = &parsed
	}
	if p.MaxDepth != nil {
		req.MaxDepth = *p.MaxDepth
	}
	if p.IncludeShipped != nil {
		req.IncludeShipped = *p.IncludeShipped
	}
	if p.IncludeNotifications != nil {
		req.IncludeNotifications = *p.IncludeNotifications
	}
	return req, nil
}

func (h *Handler) handleSimulate(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	var payload simulatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, fmt.Sprintf("invalid payload: %v", err), http.StatusBadRequest)
		return
	}
	req, err := payload.toRequest()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	result, err := h.simulator.Simulate(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrStoreUnavailable):
		http.Error(w, err.Error(), http.StatusBadGateway)
	default:
		// Partial trace timeouts and aggregation failures are internal
		// failures of the report, not client errors.
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}
