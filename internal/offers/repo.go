package offers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/vendorhub-backend/internal/repo"
	"github.com/angelmondragon/vendorhub-backend/pkg/db/models"
	"github.com/angelmondragon/vendorhub-backend/pkg/enums"
	"github.com/angelmondragon/vendorhub-backend/pkg/pagination"
)

// Repository persists offers and their price rows.
type Repository struct {
	repo.Base
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return NewRepository(tx)
}

// ListOffersParams captures the knobs for the site-scoped offer listing.
type ListOffersParams struct {
	SiteID        uuid.UUID
	Limit         int
	Cursor        *pagination.Cursor
	AvailableOnly bool
}

// CreateOffer inserts a new offer with its product links.
func (r *Repository) CreateOffer(ctx context.Context, offer *models.Offer) (*models.Offer, error) {
	if err := r.DB(ctx).Create(offer).Error; err != nil {
		return nil, err
	}
	return offer, nil
}

// UpdateOffer saves offer field changes.
func (r *Repository) UpdateOffer(ctx context.Context, offer *models.Offer) (*models.Offer, error) {
	if err := r.DB(ctx).Save(offer).Error; err != nil {
		return nil, err
	}
	return offer, nil
}

// FindByID loads an offer with products, scoped to its site.
func (r *Repository) FindByID(ctx context.Context, siteID, offerID uuid.UUID) (*models.Offer, error) {
	var offer models.Offer
	err := r.DB(ctx).
		Preload("Products").
		First(&offer, "id = ? AND site_id = ?", offerID, siteID).Error
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

// FindBySKU loads an offer by its site-scoped SKU.
func (r *Repository) FindBySKU(ctx context.Context, siteID uuid.UUID, sku string) (*models.Offer, error) {
	var offer models.Offer
	err := r.DB(ctx).
		Preload("Products").
		First(&offer, "site_id = ? AND sku = ?", siteID, sku).Error
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

// FindBySlug loads an offer by its slug within a site.
func (r *Repository) FindBySlug(ctx context.Context, siteID uuid.UUID, slug string) (*models.Offer, error) {
	var offer models.Offer
	err := r.DB(ctx).
		Preload("Products").
		First(&offer, "site_id = ? AND slug = ?", siteID, slug).Error
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

// ListOffers returns one page of offers ordered newest first.
func (r *Repository) ListOffers(ctx context.Context, params ListOffersParams) ([]models.Offer, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.DB(ctx).Model(&models.Offer{}).Preload("Products").Where("site_id = ?", params.SiteID)
	if params.AvailableOnly {
		query = query.Where("available = ?", true)
	}
	query = r.Keyset(query, params.Cursor)

	var offers []models.Offer
	if err := query.Limit(limit).Find(&offers).Error; err != nil {
		return nil, nil, err
	}

	if len(offers) > normalized {
		next := offers[normalized]
		offers = offers[:normalized]
		return offers, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return offers, nil, nil
}

// CreatePrice inserts a price row for an offer.
func (r *Repository) CreatePrice(ctx context.Context, price *models.Price) (*models.Price, error) {
	if err := r.DB(ctx).Create(price).Error; err != nil {
		return nil, err
	}
	return price, nil
}

// ActivePrice resolves the winning price row for an offer in one currency at
// the given instant: highest priority first, then the most recently started
// window, then lowest id as the final deterministic key.
func (r *Repository) ActivePrice(ctx context.Context, offerID uuid.UUID, currency enums.Currency, now time.Time) (*models.Price, error) {
	var price models.Price
	err := r.DB(ctx).
		Where("offer_id = ? AND currency = ?", offerID, currency).
		Where("start_date <= ?", now).
		Where("end_date IS NULL OR end_date >= ?", now).
		Order("priority DESC, start_date DESC, id ASC").
		First(&price).Error
	if err != nil {
		return nil, err
	}
	return &price, nil
}

// HasActivePrice reports whether any price row covers the currency right now.
func (r *Repository) HasActivePrice(ctx context.Context, offerID uuid.UUID, currency enums.Currency, now time.Time) (bool, error) {
	var count int64
	err := r.DB(ctx).
		Model(&models.Price{}).
		Where("offer_id = ? AND currency = ?", offerID, currency).
		Where("start_date <= ?", now).
		Where("end_date IS NULL OR end_date >= ?", now).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListPrices returns all price rows for an offer, newest window first.
func (r *Repository) ListPrices(ctx context.Context, offerID uuid.UUID) ([]models.Price, error) {
	var prices []models.Price
	err := r.DB(ctx).
		Where("offer_id = ?", offerID).
		Order("priority DESC, start_date DESC").
		Find(&prices).Error
	if err != nil {
		return nil, err
	}
	return prices, nil
}
