package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/localhands/marketplace-api/internal/domain"
	"github.com/localhands/marketplace-api/internal/search"
)

// ListingRepository encapsulates listing persistence.
type ListingRepository interface {
	Create(ctx context.Context, listing *domain.Listing) error
	// Update and Delete only touch a row owned by listing.ProviderID / providerID and
	// return pgx.ErrNoRows otherwise.
	Update(ctx context.Context, listing *domain.Listing) error
	Delete(ctx context.Context, id, providerID string) error
	GetByID(ctx context.Context, id string) (*domain.Listing, error)
	GetView(ctx context.Context, id string) (*domain.ListingView, error)
	ListByProvider(ctx context.Context, providerID string) ([]domain.Listing, error)
	Search(ctx context.Context, criteria search.Criteria) ([]domain.ListingView, int, error)
}

const listingColumns = `sl.id, sl.provider_id, sl.service_name, sl.description, sl.category, sl.price,
               sl.availability, sl.location_city, sl.location_zip, sl.image_url, sl.created_at, sl.updated_at`

type listingRepository struct {
	db DB
}

// NewListingRepository instantiates the Postgres repository.
func NewListingRepository(db DB) ListingRepository {
	return &listingRepository{db: db}
}

func (r *listingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	const query = `
        INSERT INTO service_listings (provider_id, service_name, description, category, price, availability, location_city, location_zip, image_url)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`

	availability, err := listing.Availability.Encode()
	if err != nil {
		return fmt.Errorf("encode availability: %w", err)
	}
	return r.db.QueryRow(ctx, query,
		listing.ProviderID,
		listing.ServiceName,
		listing.Description,
		string(listing.Category),
		listing.Price,
		availability,
		listing.LocationCity,
		listing.LocationZip,
		listing.ImageURL,
	).Scan(&listing.ID, &listing.CreatedAt, &listing.UpdatedAt)
}

func (r *listingRepository) Update(ctx context.Context, listing *domain.Listing) error {
	const query = `
        UPDATE service_listings SET service_name=$1, description=$2, category=$3, price=$4,
            availability=$5, location_city=$6, location_zip=$7, image_url=$8, updated_at=NOW()
        WHERE id=$9 AND provider_id=$10`

	availability, err := listing.Availability.Encode()
	if err != nil {
		return fmt.Errorf("encode availability: %w", err)
	}
	cmd, err := r.db.Exec(ctx, query,
		listing.ServiceName,
		listing.Description,
		string(listing.Category),
		listing.Price,
		availability,
		listing.LocationCity,
		listing.LocationZip,
		listing.ImageURL,
		listing.ID,
		listing.ProviderID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *listingRepository) Delete(ctx context.Context, id, providerID string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM service_listings WHERE id=$1 AND provider_id=$2`, id, providerID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *listingRepository) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM service_listings sl WHERE sl.id=$1`
	listing, err := scanListing(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	return listing, nil
}

func (r *listingRepository) GetView(ctx context.Context, id string) (*domain.ListingView, error) {
	query := `SELECT ` + listingColumns + `, u.username
        FROM service_listings sl
        JOIN users u ON u.id = sl.provider_id
        WHERE sl.id=$1`
	return scanListingView(r.db.QueryRow(ctx, query, id))
}

func (r *listingRepository) ListByProvider(ctx context.Context, providerID string) ([]domain.Listing, error) {
	query := `SELECT ` + listingColumns + `
        FROM service_listings sl
        WHERE sl.provider_id=$1
        ORDER BY sl.created_at DESC, sl.id DESC`
	rows, err := r.db.Query(ctx, query, providerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Listing{}
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *listing)
	}
	return result, rows.Err()
}

func (r *listingRepository) Search(ctx context.Context, criteria search.Criteria) ([]domain.ListingView, int, error) {
	q := buildSearchQuery(criteria)

	rows, err := r.db.Query(ctx, q.listSQL, q.listArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	listings := []domain.ListingView{}
	for rows.Next() {
		view, err := scanListingView(rows)
		if err != nil {
			return nil, 0, err
		}
		listings = append(listings, *view)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int64
	if err := r.db.QueryRow(ctx, q.countSQL, q.countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}
	return listings, int(total), nil
}

func scanListing(row pgx.Row) (*domain.Listing, error) {
	var (
		listing      domain.Listing
		category     string
		availability []byte
	)
	if err := row.Scan(
		&listing.ID,
		&listing.ProviderID,
		&listing.ServiceName,
		&listing.Description,
		&category,
		&listing.Price,
		&availability,
		&listing.LocationCity,
		&listing.LocationZip,
		&listing.ImageURL,
		&listing.CreatedAt,
		&listing.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return finishListing(&listing, category, availability)
}

func scanListingView(row pgx.Row) (*domain.ListingView, error) {
	var (
		view         domain.ListingView
		category     string
		availability []byte
	)
	if err := row.Scan(
		&view.ID,
		&view.ProviderID,
		&view.ServiceName,
		&view.Description,
		&category,
		&view.Price,
		&availability,
		&view.LocationCity,
		&view.LocationZip,
		&view.ImageURL,
		&view.CreatedAt,
		&view.UpdatedAt,
		&view.ProviderName,
	); err != nil {
		return nil, err
	}
	if _, err := finishListing(&view.Listing, category, availability); err != nil {
		return nil, err
	}
	return &view, nil
}

func finishListing(listing *domain.Listing, category string, availability []byte) (*domain.Listing, error) {
	listing.Category = domain.Category(category)
	parsed, err := domain.ParseAvailability(availability)
	if err != nil {
		return nil, fmt.Errorf("listing %s availability: %w", listing.ID, err)
	}
	listing.Availability = parsed
	return listing, nil
}
