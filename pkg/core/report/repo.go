package report

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// Repo persists reports to Postgres so a dashboard session can be restored.
type Repo struct{}

// NewRepo creates a new repository instance.
func NewRepo() *Repo {
	return &Repo{}
}

// Save upserts a report keyed by ID. The dataset rides in a JSONB column.
//
// Schema assumption:
// CREATE TABLE IF NOT EXISTS reports (
//   id TEXT PRIMARY KEY,
//   company_name TEXT,
//   report_json JSONB,
//   updated_at TIMESTAMPTZ
// );
func (r *Repo) Save(ctx context.Context, rep *Report) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}

	jsonData, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	query := `
		INSERT INTO reports (id, company_name, report_json, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id)
		DO UPDATE SET
			company_name = EXCLUDED.company_name,
			report_json = EXCLUDED.report_json,
			updated_at = EXCLUDED.updated_at;
	`

	_, err = pool.Exec(ctx, query, rep.ID, rep.CompanyName, jsonData, time.Now())
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}

	return nil
}

// Load retrieves a persisted report by ID.
func (r *Repo) Load(ctx context.Context, id string) (*Report, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	query := `SELECT report_json FROM reports WHERE id = $1`

	var jsonData []byte
	err := pool.QueryRow(ctx, query, id).Scan(&jsonData)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("no report found for id %s", id)
		}
		return nil, fmt.Errorf("failed to load report: %w", err)
	}

	var rep Report
	if err := json.Unmarshal(jsonData, &rep); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}

	return &rep, nil
}

// LoadRecent retrieves the most recently saved reports for a company, newest
// first, capped at limit.
func (r *Repo) LoadRecent(ctx context.Context, companyName string, limit int) ([]*Report, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	query := `
		SELECT report_json FROM reports
		WHERE company_name = $1
		ORDER BY updated_at DESC
		LIMIT $2
	`

	rows, err := pool.Query(ctx, query, companyName, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	var out []*Report
	for rows.Next() {
		var jsonData []byte
		if err := rows.Scan(&jsonData); err != nil {
			return nil, fmt.Errorf("failed to scan report row: %w", err)
		}
		var rep Report
		if err := json.Unmarshal(jsonData, &rep); err != nil {
			return nil, fmt.Errorf("failed to unmarshal report: %w", err)
		}
		out = append(out, &rep)
	}
	return out, rows.Err()
}
