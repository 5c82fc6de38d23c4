package api

import (
	"fmt"
	"net/http"

	"github.com/oplozada/estadistica/internal/adapters/loader"
	"github.com/oplozada/estadistica/internal/domain/model"
)

// AnalysesHandler handles asynchronous analysis requests.
type AnalysesHandler struct {
	deps Dependencies
}

// NewAnalysesHandler creates a new analyses handler.
func NewAnalysesHandler(deps Dependencies) *AnalysesHandler {
	return &AnalysesHandler{deps: deps}
}

type submitResponse struct {
	ID        string       `json:"id"`
	Status    model.Status `json:"status"`
	Duplicate bool         `json:"duplicate"`
}

// HandleCollection handles POST /analyses (submit) and GET /analyses (list,
// optionally filtered by ?status=).
func (h *AnalysesHandler) HandleCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.submit(w, r)
	case http.MethodGet:
		h.list(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", fmt.Errorf("%w: %s", ErrMethodNotAllowed, r.Method))
	}
}

func (h *AnalysesHandler) submit(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit_analysis"
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

	a, duplicate, err := h.deps.Submit(r.Context(), scores, req.Alpha)
	if err != nil {
		writeServiceError(r.Context(), w, op, err)
		return
	}
	status := http.StatusAccepted
	if duplicate {
		status = http.StatusOK
	}
	w.Header().Set("Location", "/analyses/"+a.ID)
	writeJSON(w, status, submitResponse{ID: a.ID, Status: a.Status, Duplicate: duplicate})
}

func (h *AnalysesHandler) list(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_analyses"
	status := model.Status(r.URL.Query().Get("status"))
	switch status {
	case "", model.StatusPending, model.StatusDone, model.StatusFailed:
	default:
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: unknown status %q", ErrBadRequest, status))
		return
	}

	analyses, err := h.deps.Analyses(r.Context(), status)
	if err != nil {
		writeServiceError(r.Context(), w, op, err)
		return
	}
	for i := range analyses {
		analyses[i].Scores = nil
	}
	writeJSON(w, http.StatusOK, analyses)
}

// HandleItem handles GET /analyses/{id} requests.
func (h *AnalysesHandler) HandleItem(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_analysis"
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	id := pathID(r.URL.Path, "/analyses/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: missing analysis id", ErrBadRequest))
		return
	}

	a, err := h.deps.Analysis(r.Context(), id)
	if err != nil {
		writeServiceError(r.Context(), w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}
