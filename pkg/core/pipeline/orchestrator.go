// Package pipeline orchestrates the upload flow: extract each document,
// normalize, merge, and store the resulting report.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"findash/pkg/core/extract"
	"findash/pkg/core/merge"
	"findash/pkg/core/report"
	"findash/pkg/core/transform"
)

// MaxBatchFiles caps one upload batch.
const MaxBatchFiles = 3

// ErrTooManyFiles is returned when a batch exceeds MaxBatchFiles.
var ErrTooManyFiles = fmt.Errorf("too many files: a batch holds at most %d", MaxBatchFiles)

// ErrEmptyBatch is returned when a batch holds no files.
var ErrEmptyBatch = errors.New("empty batch: nothing to process")

// DocumentExtractor turns one document's text into a structured payload.
// Implementations may call a live model or serve cached fixtures in tests.
type DocumentExtractor interface {
	Extract(ctx context.Context, fileName string, text string) (*extract.Document, error)
}

// File is one uploaded document: a name and its plain text.
type File struct {
	Name string
	Text string
}

// FileStatus is the per-file outcome inside a batch.
type FileStatus struct {
	File   string `json:"file"`
	Status string `json:"status"` // "ok", "failed", "skipped"
	Error  string `json:"error,omitempty"`
}

// BatchResult is the full outcome of one batch run. On failure Report is nil
// and Files records which document broke the batch.
type BatchResult struct {
	Report *report.Report `json:"report,omitempty"`
	Files  []FileStatus   `json:"files"`
}

// Orchestrator manages the end-to-end upload flow:
// extraction -> transform -> merge -> store.
type Orchestrator struct {
	extractor   DocumentExtractor
	transformer *transform.Transformer
	store       *report.MemoryStore
	repo        *report.Repo // nil when persistence is disabled
}

// NewOrchestrator creates an orchestrator with all required dependencies.
func NewOrchestrator(extractor DocumentExtractor, store *report.MemoryStore) *Orchestrator {
	return &Orchestrator{
		extractor:   extractor,
		transformer: transform.NewTransformer(),
		store:       store,
	}
}

// SetRepository enables Postgres persistence of finished reports.
func (o *Orchestrator) SetRepository(repo *report.Repo) {
	o.repo = repo
}

// RunBatch processes up to MaxBatchFiles documents sequentially. The batch is
// all-or-nothing: the first failing document aborts it, the remaining files
// are marked skipped, and no report is stored.
func (o *Orchestrator) RunBatch(ctx context.Context, files []File) (*BatchResult, error) {
	if len(files) == 0 {
		return nil, ErrEmptyBatch
	}
	if len(files) > MaxBatchFiles {
		return nil, ErrTooManyFiles
	}

	fmt.Printf("[PIPELINE] Starting batch of %d file(s)...\n", len(files))
	start := time.Now()

	result := &BatchResult{Files: make([]FileStatus, 0, len(files))}

	var records []*extract.PeriodRecord
	var soleDataset *extract.Dataset

	for i, f := range files {
		fmt.Printf("[PIPELINE] Extracting %s (%d/%d)...\n", f.Name, i+1, len(files))

		doc, err := o.extractor.Extract(ctx, f.Name, f.Text)
		if err != nil {
			return o.abort(result, files, i, err), err
		}

		if doc.IsMerged() {
			ds := o.transformer.Passthrough(doc.Dataset)
			if len(files) == 1 {
				soleDataset = ds
			} else {
				// A merged payload inside a larger batch contributes its
				// periods to the combined merge.
				records = append(records, merge.Explode(ds)...)
			}
		} else {
			records = append(records, o.transformer.Transform(doc.Record))
		}

		result.Files = append(result.Files, FileStatus{File: f.Name, Status: "ok"})
	}

	var ds *extract.Dataset
	if soleDataset != nil {
		ds = soleDataset
	} else if len(files) == 1 && len(records) == 1 {
		ds = transform.WrapDataset(records[0])
	} else {
		var err error
		ds, err = merge.Merge(records)
		if err != nil {
			return result, fmt.Errorf("merge failed: %w", err)
		}
	}

	rep := report.New(batchName(files), ds)
	o.store.Add(rep)

	if o.repo != nil {
		if err := o.repo.Save(ctx, rep); err != nil {
			fmt.Printf("[PIPELINE] Warning: failed to persist report %s: %v\n", rep.ID, err)
		}
	}

	result.Report = rep
	fmt.Printf("[PIPELINE] Batch completed in %v: %s (%s)\n", time.Since(start), rep.CompanyName, rep.FiscalYear)
	return result, nil
}

// abort records the failing file and marks the rest skipped.
func (o *Orchestrator) abort(result *BatchResult, files []File, failedAt int, err error) *BatchResult {
	fmt.Printf("[PIPELINE] Aborting batch: %s failed: %v\n", files[failedAt].Name, err)
	result.Files = append(result.Files, FileStatus{File: files[failedAt].Name, Status: "failed", Error: err.Error()})
	for _, f := range files[failedAt+1:] {
		result.Files = append(result.Files, FileStatus{File: f.Name, Status: "skipped"})
	}
	return result
}

// batchName labels single uploads by file and merges by file count.
func batchName(files []File) string {
	if len(files) == 1 {
		return files[0].Name
	}
	return fmt.Sprintf("%s (+%d more)", files[0].Name, len(files)-1)
}
