package checkout

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/vendorhub-backend/internal/repo"
	"github.com/angelmondragon/vendorhub-backend/pkg/db/models"
	"github.com/angelmondragon/vendorhub-backend/pkg/enums"
)

// Repository persists the post-cart invoice lifecycle: status moves,
// payments, and the receipts written on completion.
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

// FindLatestByStatus loads the profile's most recent invoice in the status.
func (r *Repository) FindLatestByStatus(ctx context.Context, profileID, siteID uuid.UUID, status enums.InvoiceStatus) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.DB(ctx).
		Where("profile_id = ? AND site_id = ? AND status = ?", profileID, siteID, status).
		Order("created_at DESC, id DESC").
		First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// TransitionInvoice flips the invoice status only while the row still holds
// the expected one, so concurrent requests cannot both win the same move.
// Extra column updates ride along in the same statement. Reports whether
// the row actually moved.
func (r *Repository) TransitionInvoice(ctx context.Context, invoiceID uuid.UUID, from, to enums.InvoiceStatus, extra map[string]any) (bool, error) {
	updates := map[string]any{"status": to}
	for column, value := range extra {
		updates[column] = value
	}

	result := r.DB(ctx).Model(&models.Invoice{}).
		Where("id = ? AND status = ?", invoiceID, from).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListOrderItems returns the invoice lines with offers and member products.
func (r *Repository) ListOrderItems(ctx context.Context, invoiceID uuid.UUID) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := r.DB(ctx).
		Preload("Offer").
		Preload("Offer.Products").
		Where("invoice_id = ?", invoiceID).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// CreatePayment records one charge attempt.
func (r *Repository) CreatePayment(ctx context.Context, payment *models.Payment) (*models.Payment, error) {
	if err := r.DB(ctx).Create(payment).Error; err != nil {
		return nil, err
	}
	return payment, nil
}

// CreateReceipt inserts one entitlement record.
func (r *Repository) CreateReceipt(ctx context.Context, receipt *models.Receipt) (*models.Receipt, error) {
	if err := r.DB(ctx).Create(receipt).Error; err != nil {
		return nil, err
	}
	return receipt, nil
}
