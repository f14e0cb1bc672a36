package wishlist

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/vendorhub-backend/internal/repo"
	"github.com/angelmondragon/vendorhub-backend/pkg/db/models"
)

// Repository persists wishlists and their offer links.
type Repository struct {
	repo.Base
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Create inserts a new wishlist.
func (r *Repository) Create(ctx context.Context, list *models.Wishlist) (*models.Wishlist, error) {
	if err := r.DB(ctx).Create(list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// FindByID loads a wishlist with its items and their offers, scoped to the
// owning profile.
func (r *Repository) FindByID(ctx context.Context, profileID, listID uuid.UUID) (*models.Wishlist, error) {
	var list models.Wishlist
	err := r.DB(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("wishlist_items.created_at ASC")
		}).
		Preload("Items.Offer").
		Preload("Items.Offer.Products").
		First(&list, "id = ? AND profile_id = ?", listID, profileID).Error
	if err != nil {
		return nil, err
	}
	return &list, nil
}

// ListByProfile returns all of a profile's wishlists, oldest first, without
// item preloads.
func (r *Repository) ListByProfile(ctx context.Context, profileID uuid.UUID) ([]models.Wishlist, error) {
	var lists []models.Wishlist
	err := r.DB(ctx).
		Where("profile_id = ?", profileID).
		Order("created_at ASC, id ASC").
		Find(&lists).Error
	if err != nil {
		return nil, err
	}
	return lists, nil
}

// Delete removes a wishlist and its items.
func (r *Repository) Delete(ctx context.Context, profileID, listID uuid.UUID) error {
	result := r.DB(ctx).
		Where("id = ? AND profile_id = ?", listID, profileID).
		Delete(&models.Wishlist{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return r.DB(ctx).Where("wishlist_id = ?", listID).Delete(&models.WishlistItem{}).Error
}

// CreateItem links an offer into a wishlist.
func (r *Repository) CreateItem(ctx context.Context, item *models.WishlistItem) (*models.WishlistItem, error) {
	if err := r.DB(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteItem unlinks an offer from a wishlist.
func (r *Repository) DeleteItem(ctx context.Context, listID, offerID uuid.UUID) error {
	result := r.DB(ctx).
		Where("wishlist_id = ? AND offer_id = ?", listID, offerID).
		Delete(&models.WishlistItem{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
