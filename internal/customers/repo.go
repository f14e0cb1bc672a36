package customers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/vendorhub-backend/internal/repo"
	"github.com/angelmondragon/vendorhub-backend/pkg/db/models"
)

// Repository persists customer profiles and their addresses.
type Repository struct {
	repo.Base
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// FindByUserAndSite loads the profile for one user on one site.
func (r *Repository) FindByUserAndSite(ctx context.Context, userID, siteID uuid.UUID) (*models.CustomerProfile, error) {
	var profile models.CustomerProfile
	err := r.DB(ctx).
		Preload("User").
		First(&profile, "user_id = ? AND site_id = ?", userID, siteID).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// FindByID loads a profile by primary key.
// FindSiteByDomain loads the tenant row behind a request's site domain.
func (r *Repository) FindSiteByDomain(ctx context.Context, domain string) (*models.Site, error) {
	var site models.Site
	if err := r.DB(ctx).First(&site, "domain = ?", domain).Error; err != nil {
		return nil, err
	}
	return &site, nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.CustomerProfile, error) {
	var profile models.CustomerProfile
	if err := r.DB(ctx).Preload("User").First(&profile, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// Create inserts a new profile row.
func (r *Repository) Create(ctx context.Context, profile *models.CustomerProfile) (*models.CustomerProfile, error) {
	if err := r.DB(ctx).Create(profile).Error; err != nil {
		return nil, err
	}
	return profile, nil
}

// Save persists profile field changes.
func (r *Repository) Save(ctx context.Context, profile *models.CustomerProfile) error {
	return r.DB(ctx).Save(profile).Error
}

// CreateAddress inserts an address attached to a profile.
func (r *Repository) CreateAddress(ctx context.Context, address *models.Address) (*models.Address, error) {
	if err := r.DB(ctx).Create(address).Error; err != nil {
		return nil, err
	}
	return address, nil
}

// ListAddresses returns all addresses for a profile, newest first.
func (r *Repository) ListAddresses(ctx context.Context, profileID uuid.UUID) ([]models.Address, error) {
	var addresses []models.Address
	err := r.DB(ctx).
		Where("profile_id = ?", profileID).
		Order("created_at DESC").
		Find(&addresses).Error
	if err != nil {
		return nil, err
	}
	return addresses, nil
}

// FindAddress loads one address scoped to a profile.
func (r *Repository) FindAddress(ctx context.Context, profileID, addressID uuid.UUID) (*models.Address, error) {
	var address models.Address
	err := r.DB(ctx).First(&address, "id = ? AND profile_id = ?", addressID, profileID).Error
	if err != nil {
		return nil, err
	}
	return &address, nil
}

// DeleteAddress removes one address scoped to a profile.
func (r *Repository) DeleteAddress(ctx context.Context, profileID, addressID uuid.UUID) error {
	return r.DB(ctx).
		Where("id = ? AND profile_id = ?", addressID, profileID).
		Delete(&models.Address{}).Error
}
