package api

import (
	"net/http"

	"github.com/oplozada/estadistica/internal/adapters/loader"
)

// EvaluateHandler handles synchronous evaluation requests.
type EvaluateHandler struct {
	deps Dependencies
}

// NewEvaluateHandler creates a new evaluate handler.
func NewEvaluateHandler(deps Dependencies) *EvaluateHandler {
	return &EvaluateHandler{deps: deps}
}

// matrixRequest is the body of POST /evaluate and POST /analyses. Cells are
// decoded loosely so a non-numeric cell is reported with its position.
type matrixRequest struct {
	Scores [][]any `json:"scores"`
	Alpha  float64 `json:"alpha"`
}

// HandleEvaluate handles POST /evaluate requests.
func (h *EvaluateHandler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	const op = "api.evaluate"
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	var req matrixRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeServiceError(r.Context(), w, op, err)
		return
	}
	scores, err := loader.FromValues(req.Scores)
	if err != nil {
		writeServiceError(r.Context(), w, op, err)
		return
	}

	res, err := h.deps.Evaluate(r.Context(), scores, req.Alpha)
	if err != nil {
		writeServiceError(r.Context(), w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
