package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/vendorhub-backend/internal/repo"
	"github.com/angelmondragon/vendorhub-backend/pkg/db/models"
	"github.com/angelmondragon/vendorhub-backend/pkg/enums"
)

// Repository persists cart-phase invoices and their order items.
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

// FindCartInvoice loads the open cart for (profile, site) with its items.
func (r *Repository) FindCartInvoice(ctx context.Context, profileID, siteID uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.DB(ctx).
		Preload("OrderItems").
		Preload("OrderItems.Offer").
		First(&invoice, "profile_id = ? AND site_id = ? AND status = ?",
			profileID, siteID, enums.InvoiceStatusCart).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// CreateInvoice inserts a new invoice row.
func (r *Repository) CreateInvoice(ctx context.Context, invoice *models.Invoice) (*models.Invoice, error) {
	if err := r.DB(ctx).Create(invoice).Error; err != nil {
		return nil, err
	}
	return invoice, nil
}

// SaveInvoice persists invoice field changes without touching associations.
func (r *Repository) SaveInvoice(ctx context.Context, invoice *models.Invoice) error {
	return r.DB(ctx).Omit("OrderItems").Save(invoice).Error
}

// FindOrderItem loads the line for (invoice, offer).
func (r *Repository) FindOrderItem(ctx context.Context, invoiceID, offerID uuid.UUID) (*models.OrderItem, error) {
	var item models.OrderItem
	err := r.DB(ctx).First(&item, "invoice_id = ? AND offer_id = ?", invoiceID, offerID).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateOrderItem inserts a new line.
func (r *Repository) CreateOrderItem(ctx context.Context, item *models.OrderItem) (*models.OrderItem, error) {
	if err := r.DB(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// SaveOrderItem persists line field changes.
func (r *Repository) SaveOrderItem(ctx context.Context, item *models.OrderItem) error {
	return r.DB(ctx).Omit("Offer").Save(item).Error
}

// DeleteOrderItem removes a line.
func (r *Repository) DeleteOrderItem(ctx context.Context, itemID uuid.UUID) error {
	return r.DB(ctx).Delete(&models.OrderItem{}, "id = ?", itemID).Error
}

// ListOrderItems returns the invoice lines with the offer, its member
// products, and their classifications, in insertion order.
func (r *Repository) ListOrderItems(ctx context.Context, invoiceID uuid.UUID) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := r.DB(ctx).
		Preload("Offer").
		Preload("Offer.Products").
		Preload("Offer.Products.Classifications").
		Where("invoice_id = ?", invoiceID).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
