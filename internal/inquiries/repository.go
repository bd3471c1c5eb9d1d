package inquiries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when an inquiry id has no row.
var ErrNotFound = errors.New("inquiry not found")

type Repository interface {
	Create(ctx context.Context, inquiry *Inquiry) error
	GetByID(ctx context.Context, id uuid.UUID) (*Inquiry, error)
	ListByListing(ctx context.Context, listingID uuid.UUID, status *string) ([]Inquiry, error)
	Update(ctx context.Context, inquiry *Inquiry) error
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, inquiry *Inquiry) error {
	query := `
		INSERT INTO inquiries (
			id, listing_id, buyer_name, buyer_email, buyer_phone, message,
			status, note, created_at, updated_at
		) VALUES (
			:id, :listing_id, :buyer_name, :buyer_email, :buyer_phone, :message,
			:status, :note, :created_at, :updated_at
		)`
	_, err := r.db.NamedExecContext(ctx, query, inquiry)
	return err
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Inquiry, error) {
	var inquiry Inquiry
	err := r.db.GetContext(ctx, &inquiry, "SELECT * FROM inquiries WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &inquiry, nil
}

func (r *postgresRepository) ListByListing(ctx context.Context, listingID uuid.UUID, status *string) ([]Inquiry, error) {
	query := "SELECT * FROM inquiries WHERE listing_id = $1"
	args := []interface{}{listingID}
	if status != nil {
		query += fmt.Sprintf(" AND status = $%d", len(args)+1)
		args = append(args, *status)
	}
	query += " ORDER BY created_at DESC"

	var out []Inquiry
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *postgresRepository) Update(ctx context.Context, inquiry *Inquiry) error {
	query := `
		UPDATE inquiries SET
			status = :status, note = :note, updated_at = :updated_at
		WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, inquiry)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
