// Package report holds processed upload results and the session-scoped store
// the dashboard reads from.
package report

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"findash/pkg/core/extract"
)

// Report is one processed upload: a merged dataset plus display metadata.
type Report struct {
	ID          string    `json:"id"`
	FileName    string    `json:"fileName"`
	CompanyName string    `json:"companyName"`
	FiscalYear  string    `json:"fiscalYear"` // latest year, or "2021-2024" style span
	IsMerged    bool      `json:"isMerged"`
	UploadedAt  time.Time `json:"uploadedAt"`

	Data *extract.Dataset `json:"data"`
}

// New builds a Report around a dataset, deriving the display metadata.
func New(fileName string, ds *extract.Dataset) *Report {
	r := &Report{
		ID:          uuid.NewString(),
		FileName:    fileName,
		CompanyName: ds.CompanyName,
		FiscalYear:  ds.LatestYear(),
		IsMerged:    len(ds.Years) > 1,
		UploadedAt:  time.Now(),
		Data:        ds,
	}
	if r.IsMerged {
		r.FiscalYear = ds.Years[0] + "-" + ds.Years[len(ds.Years)-1]
	}
	return r
}

// Summary is the listing shape: metadata without the dataset payload.
type Summary struct {
	ID          string    `json:"id"`
	FileName    string    `json:"fileName"`
	CompanyName string    `json:"companyName"`
	FiscalYear  string    `json:"fiscalYear"`
	IsMerged    bool      `json:"isMerged"`
	UploadedAt  time.Time `json:"uploadedAt"`
	Selected    bool      `json:"selected"`
}

// SpanYears reports whether the fiscal-year label covers multiple years.
func (r *Report) SpanYears() bool {
	return strings.Contains(r.FiscalYear, "-")
}
