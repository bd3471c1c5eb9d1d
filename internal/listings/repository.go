package listings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when a listing id has no row.
var ErrNotFound = errors.New("listing not found")

type Repository interface {
	Create(ctx context.Context, listing *Listing) error
	GetByID(ctx context.Context, id uuid.UUID) (*Listing, error)
	List(ctx context.Context, filter ListingFilter) ([]Listing, error)
	Update(ctx context.Context, listing *Listing) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountByStatus(ctx context.Context) (map[string]int, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, listing *Listing) error {
	query := `
		INSERT INTO listings (
			id, vendor_id, vendor_email, title, description, price, currency, lat, lng,
			status, created_at, updated_at
		) VALUES (
			:id, :vendor_id, :vendor_email, :title, :description, :price, :currency, :lat, :lng,
			:status, :created_at, :updated_at
		)`
	_, err := r.db.NamedExecContext(ctx, query, listing)
	return err
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Listing, error) {
	var listing Listing
	err := r.db.GetContext(ctx, &listing, "SELECT * FROM listings WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *postgresRepository) List(ctx context.Context, filter ListingFilter) ([]Listing, error) {
	query := "SELECT * FROM listings WHERE 1=1"
	var args []interface{}
	argCount := 1

	if filter.VendorID != nil {
		query += fmt.Sprintf(" AND vendor_id = $%d", argCount)
		args = append(args, *filter.VendorID)
		argCount++
	}
	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argCount)
		args = append(args, *filter.Status)
		argCount++
	}
	if filter.MinPrice != nil {
		query += fmt.Sprintf(" AND price >= $%d", argCount)
		args = append(args, *filter.MinPrice)
		argCount++
	}
	if filter.MaxPrice != nil {
		query += fmt.Sprintf(" AND price <= $%d", argCount)
		args = append(args, *filter.MaxPrice)
		argCount++
	}

	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argCount)
		args = append(args, filter.Limit)
		argCount++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argCount)
		args = append(args, filter.Offset)
	}

	var out []Listing
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *postgresRepository) Update(ctx context.Context, listing *Listing) error {
	query := `
		UPDATE listings SET
			vendor_email = :vendor_email, title = :title, description = :description, price = :price,
			currency = :currency, lat = :lat, lng = :lng, status = :status,
			updated_at = :updated_at
		WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, listing)
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

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM listings WHERE id = $1", id)
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

func (r *postgresRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryxContext(ctx, "SELECT status, COUNT(*) FROM listings GROUP BY status")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}
