// Package upload exposes the batch processing endpoint.
package upload

import (
	"encoding/json"
	"errors"
	"net/http"

	"findash/pkg/core/pipeline"
)

// Handler holds dependencies for the upload endpoint.
type Handler struct {
	Orchestrator *pipeline.Orchestrator
}

// NewHandler creates a new upload handler.
func NewHandler(orch *pipeline.Orchestrator) *Handler {
	return &Handler{Orchestrator: orch}
}

type batchRequest struct {
	Files []struct {
		Name string `json:"name"`
		Text string `json:"text"`
	} `json:"files"`
}

// HandleBatch runs one upload batch. The whole batch fails on the first bad
// document; the response body carries per-file statuses either way.
func (h *Handler) HandleBatch(w http.ResponseWriter, r *http.Request) {
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

	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	files := make([]pipeline.File, 0, len(req.Files))
	for _, f := range req.Files {
		files = append(files, pipeline.File{Name: f.Name, Text: f.Text})
	}

	result, err := h.Orchestrator.RunBatch(r.Context(), files)
	w.Header().Set("Content-Type", "application/json")

	if err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, pipeline.ErrEmptyBatch) || errors.Is(err, pipeline.ErrTooManyFiles) {
			status = http.StatusBadRequest
		}
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error":  err.Error(),
			"result": result,
		})
		return
	}

	json.NewEncoder(w).Encode(result)
}
