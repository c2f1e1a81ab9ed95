package repository

import (
	"context"
	"fmt"

	"github.com/Shivanand-hulikatti/event-wallet-ticketing/internal/model"
)

const reportColumns = `id, event_id, organizer_id, type, title, parameters, created_at`

// CreateReport inserts a report. Parameters are stored as JSONB.
func (q *queries) CreateReport(ctx context.Context, r *model.Report) error {
	params := r.Parameters
	if len(params) == 0 {
		params = []byte(`{}`)
	}
	_, err := q.db.Exec(ctx,
		`INSERT INTO reports (`+reportColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		r.ID, r.EventID, r.OrganizerID, r.Type, r.Title, string(params), r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

// ListReportsByEvent returns the reports of an event, newest first.
func (q *queries) ListReportsByEvent(ctx context.Context, eventID string) ([]model.Report, error) {
	return q.queryReports(ctx, `WHERE event_id = $1`, eventID)
}

// ListReportsByOrganizer returns the reports kept for an organizer, newest
// first.
func (q *queries) ListReportsByOrganizer(ctx context.Context, organizerID string) ([]model.Report, error) {
	return q.queryReports(ctx, `WHERE organizer_id = $1`, organizerID)
}

func (q *queries) queryReports(ctx context.Context, where string, args ...any) ([]model.Report, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+reportColumns+` FROM reports `+where+` ORDER BY created_at DESC, seq DESC`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var out []model.Report
	for rows.Next() {
		var (
			r      model.Report
			params []byte
		)
		if err := rows.Scan(&r.ID, &r.EventID, &r.OrganizerID, &r.Type, &r.Title, &params, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		r.Parameters = params
		out = append(out, r)
	}
	return out, rows.Err()
}
