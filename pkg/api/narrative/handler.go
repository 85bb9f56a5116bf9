// Package narrative exposes the commentary endpoint.
package narrative

import (
	"encoding/json"
	"net/http"

	core "findash/pkg/core/narrative"
	"findash/pkg/core/report"
)

// Handler holds dependencies for narrative endpoints. The generator is built
// lazily so the server can start without a model API key.
type Handler struct {
	Store    *report.MemoryStore
	renderer *core.Renderer
}

// NewHandler creates a new narrative handler.
func NewHandler(store *report.MemoryStore) *Handler {
	return &Handler{
		Store:    store,
		renderer: core.NewRenderer(),
	}
}

type narrativeRequest struct {
	ReportID string `json:"reportId"`
}

type narrativeResponse struct {
	ReportID string `json:"reportId"`
	Markdown string `json:"markdown"`
	HTML     string `json:"html"`
}

// HandleGenerate writes model commentary for one report and returns it as
// markdown plus sanitized HTML.
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != "POST" {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req narrativeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	rep, err := h.Store.Get(req.ReportID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	gen, err := core.NewGenerator(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	defer gen.Close()

	markdown, err := gen.Generate(r.Context(), rep.Data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	html, err := h.renderer.Render(markdown)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(narrativeResponse{
		ReportID: rep.ID,
		Markdown: markdown,
		HTML:     html,
	})
}
