package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/vendorhub-backend/pkg/enums"
)

// Receipt is the post-purchase entitlement record, created once per purchased
// order item. Its validity window is independent of the offer's availability
// window.
type Receipt struct {
	ID          uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProfileID   uuid.UUID           `gorm:"column:profile_id;type:uuid;not null;index:receipts_profile_id_idx"`
	OrderItemID uuid.UUID           `gorm:"column:order_item_id;type:uuid;not null;index:receipts_order_item_id_idx"`
	ProductID   *uuid.UUID          `gorm:"column:product_id;type:uuid;index:receipts_product_id_idx"`
	StartDate   *time.Time          `gorm:"column:start_date"`
	EndDate     *time.Time          `gorm:"column:end_date"`
	AutoRenew   bool                `gorm:"column:auto_renew;not null;default:false"`
	Transaction string              `gorm:"column:transaction"`
	Status      enums.ReceiptStatus `gorm:"column:status;not null;default:'queued'"`
	VendorNotes string              `gorm:"column:vendor_notes"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// ValidAt reports whether the entitlement window covers the given instant.
func (r Receipt) ValidAt(now time.Time) bool {
	if r.StartDate != nil && now.Before(*r.StartDate) {
		return false
	}
	if r.EndDate != nil && now.After(*r.EndDate) {
		return false
	}
	return true
}
