package api

import (
	"net/http"

	"github.com/oplozada/estadistica/internal/adapters/loader"
)

// AdjustHandler handles rank adjustment requests.
type AdjustHandler struct {
	deps Dependencies
}

// NewAdjustHandler creates a new adjust handler.
func NewAdjustHandler(deps Dependencies) *AdjustHandler {
	return &AdjustHandler{deps: deps}
}

type adjustRequest struct {
	Scores []any `json:"scores"`
}

type adjustResponse struct {
	Ranks         []float64 `json:"ranks"`
	TieCorrection float64   `json:"tie_correction"`
}

// HandleAdjust handles POST /adjust requests.
func (h *AdjustHandler) HandleAdjust(w http.ResponseWriter, r *http.Request) {
	const op = "api.adjust"
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	var req adjustRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeServiceError(r.Context(), w, op, err)
		return
	}
	row, err := loader.FromRow(req.Scores)
	if err != nil {
		writeServiceError(r.Context(), w, op, err)
		return
	}

	adjusted, err := h.deps.Adjust(r.Context(), row)
	if err != nil {
		writeServiceError(r.Context(), w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, adjustResponse{
		Ranks:         append([]float64{}, adjusted.Ranks()...),
		TieCorrection: adjusted.TieCorrection(),
	})
}
