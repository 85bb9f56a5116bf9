package report

import (
	"fmt"
	"sync"
)

// MaxReports bounds the history. Oldest entries are evicted first.
const MaxReports = 5

// MemoryStore is the session-scoped report history. Newest first, capped at
// MaxReports, with a selection pointer the dashboard follows.
type MemoryStore struct {
	mu       sync.RWMutex
	reports  []*Report
	selected string // report ID, "" when empty

	listeners []func()
}

// NewMemoryStore creates an empty report store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Add prepends a report and selects it. When the store is full the oldest
// report falls off the end.
func (s *MemoryStore) Add(r *Report) {
	s.mu.Lock()
	s.reports = append([]*Report{r}, s.reports...)
	if len(s.reports) > MaxReports {
		s.reports = s.reports[:MaxReports]
	}
	s.selected = r.ID
	s.mu.Unlock()
	s.notify()
}

// Get retrieves a report by ID.
func (s *MemoryStore) Get(id string) (*Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.reports {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, fmt.Errorf("report '%s' not found", id)
}

// Selected returns the currently selected report, or nil when the store is
// empty.
func (s *MemoryStore) Selected() *Report {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.reports {
		if r.ID == s.selected {
			return r
		}
	}
	return nil
}

// Select moves the selection pointer.
func (s *MemoryStore) Select(id string) error {
	s.mu.Lock()
	found := false
	for _, r := range s.reports {
		if r.ID == id {
			found = true
			break
		}
	}
	if !found {
		s.mu.Unlock()
		return fmt.Errorf("report '%s' not found", id)
	}
	s.selected = id
	s.mu.Unlock()
	s.notify()
	return nil
}

// Delete removes a report. When the selected report is deleted the selection
// falls back to the newest remaining report.
func (s *MemoryStore) Delete(id string) error {
	s.mu.Lock()
	idx := -1
	for i, r := range s.reports {
		if r.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("report '%s' not found", id)
	}
	s.reports = append(s.reports[:idx], s.reports[idx+1:]...)
	if s.selected == id {
		s.selected = ""
		if len(s.reports) > 0 {
			s.selected = s.reports[0].ID
		}
	}
	s.mu.Unlock()
	s.notify()
	return nil
}

// Clear drops every report and the selection.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	s.reports = nil
	s.selected = ""
	s.mu.Unlock()
	s.notify()
}

// List returns summaries newest first.
func (s *MemoryStore) List() []Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Summary, 0, len(s.reports))
	for _, r := range s.reports {
		out = append(out, Summary{
			ID:          r.ID,
			FileName:    r.FileName,
			CompanyName: r.CompanyName,
			FiscalYear:  r.FiscalYear,
			IsMerged:    r.IsMerged,
			UploadedAt:  r.UploadedAt,
			Selected:    r.ID == s.selected,
		})
	}
	return out
}

// Len returns the number of stored reports.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.reports)
}

// Subscribe registers a callback invoked after every mutation. Used by the
// API layer to push history updates.
func (s *MemoryStore) Subscribe(fn func()) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *MemoryStore) notify() {
	s.mu.RLock()
	listeners := make([]func(), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.RUnlock()

	for _, fn := range listeners {
		fn()
	}
}
