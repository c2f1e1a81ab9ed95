package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/Shivanand-hulikatti/event-wallet-ticketing/internal/model"
)

const eventColumns = `id, organizer_id, title, description, category, start_date, end_date,
	location, max_capacity, current_capacity, is_active, created_at, updated_at`

const ticketColumns = `id, event_id, type, price, quantity, remaining_count, benefits, created_at`

func scanEvent(row pgx.Row) (*model.Event, error) {
	var e model.Event
	err := row.Scan(&e.ID, &e.OrganizerID, &e.Title, &e.Description, &e.Category, &e.StartDate, &e.EndDate,
		&e.Location, &e.MaxCapacity, &e.CurrentCapacity, &e.IsActive, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func scanTicket(row pgx.Row) (*model.Ticket, error) {
	var t model.Ticket
	err := row.Scan(&t.ID, &t.EventID, &t.Type, &t.Price, &t.Quantity, &t.RemainingCount, &t.Benefits, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateEvent inserts the event row. Tickets are inserted separately.
func (q *queries) CreateEvent(ctx context.Context, e *model.Event) error {
	_, err := q.db.Exec(ctx,
		`INSERT INTO events (`+eventColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		e.ID, e.OrganizerID, e.Title, e.Description, e.Category, e.StartDate, e.EndDate,
		e.Location, e.MaxCapacity, e.CurrentCapacity, e.IsActive, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// CreateTicket inserts one ticket type of an event.
func (q *queries) CreateTicket(ctx context.Context, t *model.Ticket) error {
	_, err := q.db.Exec(ctx,
		`INSERT INTO tickets (`+ticketColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		t.ID, t.EventID, t.Type, t.Price, t.Quantity, t.RemainingCount, t.Benefits, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert ticket: %w", err)
	}
	return nil
}

// GetEvent returns a single event with its tickets or model.ErrNotFound.
func (q *queries) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	e, err := scanEvent(q.db.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "event")
	}
	events := []model.Event{*e}
	if err := q.attachTickets(ctx, events); err != nil {
		return nil, err
	}
	return &events[0], nil
}

// GetEventForUpdate acquires an exclusive row-level lock on the event so
// concurrent edits of capacity settings are serialised. Tickets are not
// loaded.
func (q *queries) GetEventForUpdate(ctx context.Context, id string) (*model.Event, error) {
	e, err := scanEvent(q.db.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, notFound(err, "event")
	}
	return e, nil
}

// ListEvents returns all events ordered by creation time descending.
func (q *queries) ListEvents(ctx context.Context) ([]model.Event, error) {
	return q.queryEvents(ctx, `SELECT `+eventColumns+` FROM events ORDER BY created_at DESC`)
}

// SearchEvents returns active events matching the filters. Price filtering
// is left to the caller because it depends on every ticket of the event.
func (q *queries) SearchEvents(ctx context.Context, f model.EventSearch) ([]model.Event, error) {
	var (
		where = []string{"is_active = TRUE"}
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		where = append(where, strings.ReplaceAll(cond, "?", "$"+strconv.Itoa(len(args))))
	}
	if f.Category != "" {
		add("category = ?", f.Category)
	}
	if f.StartFrom != nil {
		add("start_date >= ?", *f.StartFrom)
	}
	if f.EndUntil != nil {
		add("end_date <= ?", *f.EndUntil)
	}
	if f.Location != "" {
		add("location ILIKE '%' || ? || '%'", f.Location)
	}

	sql := `SELECT ` + eventColumns + ` FROM events WHERE ` + strings.Join(where, " AND ") + ` ORDER BY start_date ASC`
	return q.queryEvents(ctx, sql, args...)
}

func (q *queries) queryEvents(ctx context.Context, sql string, args ...any) ([]model.Event, error) {
	rows, err := q.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := q.attachTickets(ctx, events); err != nil {
		return nil, err
	}
	return events, nil
}

// attachTickets loads the tickets of all given events with one query.
func (q *queries) attachTickets(ctx context.Context, events []model.Event) error {
	if len(events) == 0 {
		return nil
	}
	ids := make([]string, len(events))
	index := make(map[string]int, len(events))
	for i := range events {
		ids[i] = events[i].ID
		index[events[i].ID] = i
		events[i].Tickets = []model.Ticket{}
	}

	rows, err := q.db.Query(ctx,
		`SELECT `+ticketColumns+` FROM tickets WHERE event_id = ANY($1::uuid[]) ORDER BY created_at ASC, price ASC`,
		ids,
	)
	if err != nil {
		return fmt.Errorf("list tickets: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return fmt.Errorf("scan ticket: %w", err)
		}
		i := index[t.EventID]
		events[i].Tickets = append(events[i].Tickets, *t)
	}
	return rows.Err()
}

// UpdateEvent writes the editable event fields. The capacity counter is
// owned by OccupySeat and ReleaseSeat and is not written here.
func (q *queries) UpdateEvent(ctx context.Context, e *model.Event) error {
	tag, err := q.db.Exec(ctx,
		`UPDATE events
		 SET title = $2, description = $3, category = $4, start_date = $5, end_date = $6,
		     location = $7, max_capacity = $8, is_active = $9, updated_at = $10
		 WHERE id = $1`,
		e.ID, e.Title, e.Description, e.Category, e.StartDate, e.EndDate,
		e.Location, e.MaxCapacity, e.IsActive, e.UpdatedAt,
	)
	if err != nil {
		if _, _, ok := constraintViolation(err); ok {
			return fmt.Errorf("update event: %w", model.ErrInvalidState)
		}
		return fmt.Errorf("update event: %w", err)
	}
	return expectOne(tag, "event")
}

// DeleteEvent hard-deletes the event. Tickets, registrations, payments and
// reports go with it through ON DELETE CASCADE.
func (q *queries) DeleteEvent(ctx context.Context, id string) error {
	tag, err := q.db.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return expectOne(tag, "event")
}

// GetTicket returns a ticket scoped to its event.
func (q *queries) GetTicket(ctx context.Context, eventID, ticketID string) (*model.Ticket, error) {
	t, err := scanTicket(q.db.QueryRow(ctx,
		`SELECT `+ticketColumns+` FROM tickets WHERE id = $1 AND event_id = $2`,
		ticketID, eventID,
	))
	if err != nil {
		return nil, notFound(err, "ticket")
	}
	return t, nil
}

// TakeTicket claims one ticket with an atomic conditional decrement.
//
// A read-then-write of remaining_count lets two transactions both observe
// the last ticket and both claim it. The guarded UPDATE below takes the row
// lock and re-evaluates remaining_count > 0 against the latest committed
// value, so of two racing callers exactly one sees a row affected.
func (q *queries) TakeTicket(ctx context.Context, eventID, ticketID string) error {
	tag, err := q.db.Exec(ctx,
		`UPDATE tickets SET remaining_count = remaining_count - 1
		 WHERE id = $1 AND event_id = $2 AND remaining_count > 0`,
		ticketID, eventID,
	)
	if err != nil {
		return fmt.Errorf("take ticket: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	if _, err := q.GetTicket(ctx, eventID, ticketID); err != nil {
		return err
	}
	return fmt.Errorf("ticket: %w", model.ErrSoldOut)
}

// ReturnTicket gives one ticket back to inventory.
func (q *queries) ReturnTicket(ctx context.Context, ticketID string) error {
	tag, err := q.db.Exec(ctx,
		`UPDATE tickets SET remaining_count = remaining_count + 1
		 WHERE id = $1 AND remaining_count < quantity`,
		ticketID,
	)
	if err != nil {
		return fmt.Errorf("return ticket: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("ticket %s already at full inventory: %w", ticketID, model.ErrInvalidState)
	}
	return nil
}

// OccupySeat counts one more attendee against the event's max capacity.
func (q *queries) OccupySeat(ctx context.Context, eventID string) error {
	tag, err := q.db.Exec(ctx,
		`UPDATE events SET current_capacity = current_capacity + 1
		 WHERE id = $1 AND current_capacity < max_capacity`,
		eventID,
	)
	if err != nil {
		return fmt.Errorf("occupy seat: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	found, err := q.exists(ctx, "events", eventID)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("event: %w", model.ErrNotFound)
	}
	return fmt.Errorf("event is fully booked: %w", model.ErrSoldOut)
}

// ReleaseSeat frees one attendee slot of the event.
func (q *queries) ReleaseSeat(ctx context.Context, eventID string) error {
	tag, err := q.db.Exec(ctx,
		`UPDATE events SET current_capacity = current_capacity - 1
		 WHERE id = $1 AND current_capacity > 0`,
		eventID,
	)
	if err != nil {
		return fmt.Errorf("release seat: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("event %s has no occupied seats: %w", eventID, model.ErrInvalidState)
	}
	return nil
}
