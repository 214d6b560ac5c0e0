package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"communitypulse/internal/domain"
)

type rsvpRepository struct {
	DB *sql.DB
}

func NewRSVPRepository(db *sql.DB) domain.RSVPRepository {
	return &rsvpRepository{DB: db}
}

const rsvpColumns = `id, event_id, user_id, guest_name, guest_email, guest_phone, num_people, created_at`

func scanRSVP(row interface{ Scan(...any) error }) (*domain.RSVP, error) {
	r := &domain.RSVP{}
	var userID, guestName, guestEmail, guestPhone sql.NullString
	err := row.Scan(&r.ID, &r.EventID, &userID, &guestName, &guestEmail, &guestPhone, &r.NumPeople, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	if userID.Valid {
		r.UserID = &userID.String
	}
	if guestName.Valid {
		r.GuestName = &guestName.String
	}
	if guestEmail.Valid {
		r.GuestEmail = &guestEmail.String
	}
	if guestPhone.Valid {
		r.GuestPhone = &guestPhone.String
	}
	return r, nil
}

func (r *rsvpRepository) Create(ctx context.Context, rsvp *domain.RSVP) error {
	query := `
		INSERT INTO rsvps (event_id, user_id, guest_name, guest_email, guest_phone, num_people, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		rsvp.EventID, rsvp.UserID, rsvp.GuestName, rsvp.GuestEmail, rsvp.GuestPhone,
		rsvp.NumPeople, rsvp.CreatedAt,
	).Scan(&rsvp.ID)
	if err != nil {
		// The partial unique indexes on (event_id, user_id) and
		// (event_id, guest_email) back the one-RSVP invariant under
		// concurrent submissions.
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return domain.ErrAlreadyRSVPd
		}
		return err
	}
	return nil
}

func (r *rsvpRepository) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.RSVP, error) {
	query := `SELECT ` + rsvpColumns + ` FROM rsvps WHERE event_id = $1 AND user_id = $2`
	rsvp, err := scanRSVP(r.DB.QueryRowContext(ctx, query, eventID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return rsvp, nil
}

func (r *rsvpRepository) GetByEventAndGuestEmail(ctx context.Context, eventID, guestEmail string) (*domain.RSVP, error) {
	query := `SELECT ` + rsvpColumns + ` FROM rsvps WHERE event_id = $1 AND guest_email = $2 AND user_id IS NULL`
	rsvp, err := scanRSVP(r.DB.QueryRowContext(ctx, query, eventID, guestEmail))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return rsvp, nil
}

func (r *rsvpRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.RSVP, error) {
	query := `SELECT ` + rsvpColumns + ` FROM rsvps WHERE event_id = $1 ORDER BY created_at ASC`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rsvps := make([]*domain.RSVP, 0)
	for rows.Next() {
		rsvp, err := scanRSVP(rows)
		if err != nil {
			return nil, err
		}
		rsvps = append(rsvps, rsvp)
	}
	return rsvps, rows.Err()
}

func (r *rsvpRepository) DeleteByEventAndUser(ctx context.Context, eventID, userID string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM rsvps WHERE event_id = $1 AND user_id = $2`, eventID, userID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *rsvpRepository) DeleteByEventAndGuestEmail(ctx context.Context, eventID, guestEmail string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM rsvps WHERE event_id = $1 AND guest_email = $2 AND user_id IS NULL`, eventID, guestEmail)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
