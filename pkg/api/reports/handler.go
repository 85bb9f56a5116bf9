// Package reports exposes the report history endpoints.
package reports

import (
	"encoding/json"
	"net/http"

	"findash/pkg/core/report"
)

// Handler holds dependencies for report endpoints.
type Handler struct {
	Store *report.MemoryStore
}

// NewHandler creates a new reports handler.
func NewHandler(store *report.MemoryStore) *Handler {
	return &Handler{Store: store}
}

func cors(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

// HandleList returns report summaries, newest first.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	cors(w)
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.Store.List())
}

// HandleGet returns one full report by ?id=. Without an id it returns the
// currently selected report.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	cors(w)
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	id := r.URL.Query().Get("id")
	var rep *report.Report
	if id == "" {
		rep = h.Store.Selected()
		if rep == nil {
			http.Error(w, "no reports available", http.StatusNotFound)
			return
		}
	} else {
		var err error
		rep, err = h.Store.Get(id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rep)
}

type selectRequest struct {
	ID string `json:"id"`
}

// HandleSelect moves the selection pointer.
func (h *Handler) HandleSelect(w http.ResponseWriter, r *http.Request) {
	cors(w)
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != "POST" {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.Store.Select(req.ID); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.Store.List())
}

// HandleDelete removes one report by id.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	cors(w)
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != "POST" && r.Method != "DELETE" {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.Store.Delete(req.ID); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.Store.List())
}

// HandleClear drops the whole history.
func (h *Handler) HandleClear(w http.ResponseWriter, r *http.Request) {
	cors(w)
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != "POST" {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.Store.Clear()
	w.WriteHeader(http.StatusNoContent)
}
