package receipts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/vendorhub-backend/internal/repo"
	"github.com/angelmondragon/vendorhub-backend/pkg/db/models"
	"github.com/angelmondragon/vendorhub-backend/pkg/enums"
	"github.com/angelmondragon/vendorhub-backend/pkg/pagination"
)

// Repository reads the post-purchase entitlement records.
type Repository struct {
	repo.Base
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// ListByProfileParams captures the knobs for the per-profile listing.
type ListByProfileParams struct {
	ProfileID uuid.UUID
	Limit     int
	Cursor    *pagination.Cursor
}

// ListByProfile returns one page of a profile's receipts, newest first.
func (r *Repository) ListByProfile(ctx context.Context, params ListByProfileParams) ([]models.Receipt, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.DB(ctx).Model(&models.Receipt{}).Where("profile_id = ?", params.ProfileID)
	query = r.Keyset(query, params.Cursor)

	var rows []models.Receipt
	if err := query.Limit(limit).Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	if len(rows) > normalized {
		next := rows[normalized]
		rows = rows[:normalized]
		return rows, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return rows, nil, nil
}

// FindByID loads a single receipt scoped to its owning profile.
func (r *Repository) FindByID(ctx context.Context, profileID, receiptID uuid.UUID) (*models.Receipt, error) {
	var receipt models.Receipt
	err := r.DB(ctx).First(&receipt, "id = ? AND profile_id = ?", receiptID, profileID).Error
	if err != nil {
		return nil, err
	}
	return &receipt, nil
}

// ListForProduct returns every completed receipt a profile holds for one
// product, ignoring validity windows.
func (r *Repository) ListForProduct(ctx context.Context, profileID, productID uuid.UUID) ([]models.Receipt, error) {
	var rows []models.Receipt
	err := r.DB(ctx).
		Where("profile_id = ? AND product_id = ?", profileID, productID).
		Where("status = ?", enums.ReceiptStatusCompleted).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
