package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"communitypulse/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{DB: db}
}

// attendees_count is derived from the event's RSVPs on every read.
const eventColumns = `e.id, e.title, e.description, e.category, e.start_datetime,
		e.end_datetime, e.location_address, e.status, e.organizer_id,
		(SELECT COALESCE(SUM(r.num_people), 0) FROM rsvps r WHERE r.event_id = e.id) AS attendees_count,
		e.created_at, e.updated_at`

func scanEvent(row interface{ Scan(...any) error }) (*domain.Event, error) {
	e := &domain.Event{}
	var desc sql.NullString
	var end sql.NullTime
	err := row.Scan(
		&e.ID, &e.Title, &desc, &e.Category, &e.StartDatetime,
		&end, &e.LocationAddress, &e.Status, &e.OrganizerID,
		&e.AttendeesCount, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if desc.Valid {
		e.Description = desc.String
	}
	if end.Valid {
		t := end.Time
		e.EndDatetime = &t
	}
	return e, nil
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (title, description, category, start_datetime, end_datetime, location_address, status, organizer_id, created_at, updated_at)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		e.Title, e.Description, e.Category, e.StartDatetime, e.EndDatetime,
		e.LocationAddress, string(e.Status), e.OrganizerID, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events e WHERE e.id = $1`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) List(ctx context.Context, filter domain.EventFilter, params domain.PaginationParams) ([]*domain.Event, int, error) {
	conditions := []string{`e.status = 'APPROVED'`}
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Category != "" {
		conditions = append(conditions, `e.category ILIKE `+arg("%"+filter.Category+"%"))
	}
	if filter.Location != "" {
		conditions = append(conditions, `e.location_address ILIKE `+arg("%"+filter.Location+"%"))
	}
	if filter.DateFrom != nil {
		conditions = append(conditions, `e.start_datetime >= `+arg(*filter.DateFrom))
	}
	if filter.DateTo != nil {
		conditions = append(conditions, `e.start_datetime <= `+arg(*filter.DateTo))
	}
	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM events e WHERE ` + where
	if err := r.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + eventColumns + ` FROM events e WHERE ` + where +
		` ORDER BY e.start_datetime ASC LIMIT ` + arg(params.PerPage) + ` OFFSET ` + arg(params.Offset())
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, e)
	}
	return events, total, rows.Err()
}

func (r *eventRepository) listWhere(ctx context.Context, where, order string, args ...any) ([]*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events e WHERE ` + where + ` ORDER BY ` + order
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *eventRepository) ListPending(ctx context.Context) ([]*domain.Event, error) {
	return r.listWhere(ctx, `e.status = 'PENDING'`, `e.created_at DESC`)
}

func (r *eventRepository) ListByOrganizerID(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	return r.listWhere(ctx, `e.organizer_id = $1`, `e.start_datetime DESC`, organizerID)
}

func (r *eventRepository) ListRSVPdByUserID(ctx context.Context, userID string) ([]*domain.Event, error) {
	return r.listWhere(ctx,
		`e.status = 'APPROVED' AND EXISTS (SELECT 1 FROM rsvps r WHERE r.event_id = e.id AND r.user_id = $1)`,
		`e.start_datetime ASC`, userID)
}

func (r *eventRepository) ListApprovedStartingBetween(ctx context.Context, from, to time.Time) ([]*domain.Event, error) {
	return r.listWhere(ctx,
		`e.status = 'APPROVED' AND e.start_datetime >= $1 AND e.start_datetime < $2`,
		`e.start_datetime ASC`, from, to)
}

func (r *eventRepository) Update(ctx context.Context, e *domain.Event) error {
	query := `
		UPDATE events
		SET title = $2, description = NULLIF($3, ''), category = $4,
			start_datetime = $5, end_datetime = $6, location_address = $7,
			status = $8, updated_at = $9
		WHERE id = $1
	`
	result, err := r.DB.ExecContext(ctx, query,
		e.ID, e.Title, e.Description, e.Category,
		e.StartDatetime, e.EndDatetime, e.LocationAddress,
		string(e.Status), e.UpdatedAt,
	)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventRepository) TransitionStatus(ctx context.Context, id string, from, to domain.EventStatus) (*domain.Event, error) {
	query := `
		UPDATE events e
		SET status = $3, updated_at = now()
		WHERE e.id = $1 AND e.status = $2
		RETURNING ` + eventColumns
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id, string(from), string(to)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

// Cancel cancels in a single conditional update so a concurrent status
// change cannot slip between a read and the write. Zero affected rows means
// the event is either gone or already CANCELLED; the follow-up existence
// check tells the two apart.
func (r *eventRepository) Cancel(ctx context.Context, id string) (*domain.Event, error) {
	query := `
		UPDATE events e
		SET status = $2, updated_at = now()
		WHERE e.id = $1 AND e.status <> $2
		RETURNING ` + eventColumns
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id, string(domain.StatusCancelled)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			var exists bool
			if err := r.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)`, id).Scan(&exists); err != nil {
				return nil, err
			}
			if !exists {
				return nil, domain.ErrNotFound
			}
			return nil, fmt.Errorf("event is already cancelled: %w", domain.ErrInvalidInput)
		}
		return nil, err
	}
	return e, nil
}

// Delete removes the event and its RSVPs in one transaction. The rsvps FK
// also cascades; the explicit delete keeps the invariant visible and covered
// even against schemas missing the cascade.
func (r *eventRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM rsvps WHERE event_id = $1`, id); err != nil {
		return err
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return tx.Commit()
}
