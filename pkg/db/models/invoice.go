package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/vendorhub-backend/pkg/enums"
)

// Invoice starts life as the open cart for a profile and becomes the
// immutable purchase record after checkout. Subtotal, tax, and total are
// derived from the order items and recomputed inside every mutating
// transaction.
type Invoice struct {
	ID                uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProfileID         uuid.UUID           `gorm:"column:profile_id;type:uuid;not null;index:invoices_profile_id_idx"`
	SiteID            uuid.UUID           `gorm:"column:site_id;type:uuid;not null;index:invoices_site_id_idx"`
	Status            enums.InvoiceStatus `gorm:"column:status;not null;default:'cart'"`
	OrderedDate       *time.Time          `gorm:"column:ordered_date"`
	Currency          enums.Currency      `gorm:"column:currency;not null;default:'usd'"`
	Subtotal          decimal.Decimal     `gorm:"column:subtotal;type:numeric(12,2);not null;default:0"`
	Tax               decimal.Decimal     `gorm:"column:tax;type:numeric(12,2);not null;default:0"`
	Total             decimal.Decimal     `gorm:"column:total;type:numeric(12,2);not null;default:0"`
	ShippingAddressID *uuid.UUID          `gorm:"column:shipping_address_id;type:uuid"`
	CustomerNotes     string              `gorm:"column:customer_notes"`
	VendorNotes       string              `gorm:"column:vendor_notes"`
	OrderItems        []OrderItem         `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
