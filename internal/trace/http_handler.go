package trace

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/mfgpilot/traceability/internal/domain"
)

type Handler struct {
	service *Service
}

func NewHTTPHandler(service *Service) http.Handler {
	return &Handler{service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/full"):
		h.handleFullTree(w, r)
		return
	case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/workorder"):
		h.handleWorkOrder(w, r)
		return
	case r.Method == http.MethodPost:
		h.handleTrace(w, r)
		return
	default:
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
}

type tracePayload struct {
	Direction       string `json:"direction"`
	LPID            string `json:"lp_id"`
	BatchNumber     string `json:"batch_number"`
	MaxDepth        *int   `json:"max_depth"`
	IncludeShipped  *bool  `json:"include_shipped"`
	IncludeReversed bool   `json:"include_reversed"`
}

// toRequest applies the wire defaults: max_depth 20 when absent,
// include_shipped true when absent, include_reversed false.
func (p tracePayload) toRequest() (Request, error) {
	req := Request{
		Direction:       domain.TraceDirection(strings.TrimSpace(p.Direction)),
		BatchNumber:     strings.TrimSpace(p.BatchNumber),
		MaxDepth:        DefaultMaxDepth,
		IncludeShipped:  true,
		IncludeReversed: p.IncludeReversed,
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
	return req, nil
}

func (h *Handler) handleTrace(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	var payload tracePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, fmt.Sprintf("invalid payload: %v", err), http.StatusBadRequest)
		return
	}
	req, err := payload.toRequest()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	result, err := h.service.Trace(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleFullTree(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	var payload tracePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, fmt.Sprintf("invalid payload: %v", err), http.StatusBadRequest)
		return
	}
	// Direction is chosen per side by the service; accept an empty one here.
	if payload.Direction == "" {
		payload.Direction = string(domain.TraceBackward)
	}
	req, err := payload.toRequest()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	result, err := h.service.FullTree(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleWorkOrder(w http.ResponseWriter, r *http.Request) {
	reference := strings.TrimSpace(r.URL.Query().Get("reference"))
	result, err := h.service.WorkOrderGenealogy(r.Context(), reference)
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
