package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"findash/pkg/core/extract"
	"findash/pkg/core/report"
)

// fixtureExtractor serves canned payloads keyed by file name instead of
// calling a live model.
type fixtureExtractor struct {
	payloads map[string]string
}

func (f *fixtureExtractor) Extract(ctx context.Context, fileName string, text string) (*extract.Document, error) {
	payload, ok := f.payloads[fileName]
	if !ok {
		return nil, fmt.Errorf("extraction failed for %s", fileName)
	}
	doc, err := extract.DecodePayload(payload)
	if err != nil {
		return nil, err
	}
	if doc.Record != nil {
		doc.Record.SourceFile = fileName
	}
	return doc, nil
}

func singlePeriodPayload(company string, year string, revenue float64) string {
	return fmt.Sprintf(`{"companyName": %q, "fiscalYear": %q, "revenue": %v, "netProfit": %v}`,
		company, year, revenue, revenue/10)
}

func newTestOrchestrator(payloads map[string]string) (*Orchestrator, *report.MemoryStore) {
	store := report.NewMemoryStore()
	orch := NewOrchestrator(&fixtureExtractor{payloads: payloads}, store)
	return orch, store
}

func TestRunBatchSingleFile(t *testing.T) {
	orch, store := newTestOrchestrator(map[string]string{
		"nahdi_2024.txt": singlePeriodPayload("AL NAHDI MEDICAL COMPANY", "2024", 8713.7),
	})

	result, err := orch.RunBatch(context.Background(), []File{{Name: "nahdi_2024.txt", Text: "..."}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Report == nil {
		t.Fatal("expected a report")
	}
	if result.Report.CompanyName != "Nahdi Medical Company" {
		t.Errorf("company: %q", result.Report.CompanyName)
	}
	if len(result.Report.Data.Years) != 1 || result.Report.Data.Years[0] != "2024" {
		t.Errorf("years: %v", result.Report.Data.Years)
	}
	if store.Len() != 1 {
		t.Errorf("store should hold the report, got %d", store.Len())
	}
	if result.Files[0].Status != "ok" {
		t.Errorf("file status: %+v", result.Files)
	}
}

func TestRunBatchMergesMultipleFiles(t *testing.T) {
	orch, _ := newTestOrchestrator(map[string]string{
		"r2022.txt": singlePeriodPayload("NAHDI MEDICAL", "2022", 2000),
		"r2024.txt": singlePeriodPayload("NAHDI MEDICAL COMPANY", "2024", 4000),
		"r2023.txt": singlePeriodPayload("NAHDI MEDICAL", "2023", 3000),
	})

	result, err := orch.RunBatch(context.Background(), []File{
		{Name: "r2024.txt"}, {Name: "r2022.txt"}, {Name: "r2023.txt"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ds := result.Report.Data
	wantYears := []string{"2022", "2023", "2024"}
	for i, y := range wantYears {
		if ds.Years[i] != y {
			t.Errorf("years[%d]: expected %s, got %s", i, y, ds.Years[i])
		}
	}
	// Canonical name comes from the chronologically last record.
	if ds.CompanyName != "Nahdi Medical Company" {
		t.Errorf("company: %q", ds.CompanyName)
	}
	if !result.Report.IsMerged {
		t.Error("multi-file report should be merged")
	}
	if len(ds.Sources) != 3 || ds.Sources[2].File != "r2024.txt" {
		t.Errorf("sources: %+v", ds.Sources)
	}
}

func TestRunBatchAbortsOnFirstFailure(t *testing.T) {
	orch, store := newTestOrchestrator(map[string]string{
		"good1.txt": singlePeriodPayload("X", "2022", 2000),
		"good2.txt": singlePeriodPayload("X", "2024", 4000),
	})

	result, err := orch.RunBatch(context.Background(), []File{
		{Name: "good1.txt"}, {Name: "broken.txt"}, {Name: "good2.txt"},
	})
	if err == nil {
		t.Fatal("expected batch to fail")
	}

	if store.Len() != 0 {
		t.Errorf("no report should be stored on abort, got %d", store.Len())
	}

	wantStatuses := []string{"ok", "failed", "skipped"}
	for i, want := range wantStatuses {
		if result.Files[i].Status != want {
			t.Errorf("files[%d]: expected %s, got %s", i, want, result.Files[i].Status)
		}
	}
	if result.Files[1].Error == "" {
		t.Error("failed file should carry the error message")
	}
}

func TestRunBatchRejectsEmpty(t *testing.T) {
	orch, _ := newTestOrchestrator(nil)
	_, err := orch.RunBatch(context.Background(), nil)
	if !errors.Is(err, ErrEmptyBatch) {
		t.Errorf("expected ErrEmptyBatch, got %v", err)
	}
}

func TestRunBatchRejectsTooManyFiles(t *testing.T) {
	orch, _ := newTestOrchestrator(nil)
	files := make([]File, MaxBatchFiles+1)
	for i := range files {
		files[i] = File{Name: fmt.Sprintf("f%d.txt", i)}
	}
	_, err := orch.RunBatch(context.Background(), files)
	if !errors.Is(err, ErrTooManyFiles) {
		t.Errorf("expected ErrTooManyFiles, got %v", err)
	}
}

func TestRunBatchMergedPayloadPassthrough(t *testing.T) {
	orch, _ := newTestOrchestrator(map[string]string{
		"export.json": `{
			"companyName": "AL NAHDI MEDICAL COMPANY",
			"years": ["2022", "2023"],
			"revenue": [2000, 3000]
		}`,
	})

	result, err := orch.RunBatch(context.Background(), []File{{Name: "export.json"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ds := result.Report.Data
	if ds.CompanyName != "Nahdi Medical Company" {
		t.Errorf("passthrough must re-normalize name, got %q", ds.CompanyName)
	}
	if len(ds.Years) != 2 || ds.Revenue[1] != 3000 {
		t.Errorf("passthrough must keep the series, got %+v", ds)
	}
}

func TestRunBatchMixedMergedAndSingle(t *testing.T) {
	orch, _ := newTestOrchestrator(map[string]string{
		"export.json": `{
			"companyName": "Nahdi Medical Company",
			"years": ["2022", "2023"],
			"revenue": [2000, 3000]
		}`,
		"r2024.txt": singlePeriodPayload("NAHDI MEDICAL COMPANY", "2024", 4000),
	})

	result, err := orch.RunBatch(context.Background(), []File{
		{Name: "export.json"}, {Name: "r2024.txt"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ds := result.Report.Data
	if len(ds.Years) != 3 || ds.Years[2] != "2024" {
		t.Errorf("expected combined 3-year dataset, got %v", ds.Years)
	}
}
