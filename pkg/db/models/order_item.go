package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem links an offer into an invoice. While the invoice is in cart
// status the (invoice, offer) pair is unique; adding the same offer again
// increments quantity. UnitPrice is a snapshot of the price resolved when the
// item entered the cart and survives later price edits; PriceID records which
// price row applied, or is null when the MSRP fallback was used.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	InvoiceID uuid.UUID       `gorm:"column:invoice_id;type:uuid;not null;uniqueIndex:order_items_invoice_offer_key"`
	OfferID   uuid.UUID       `gorm:"column:offer_id;type:uuid;not null;uniqueIndex:order_items_invoice_offer_key;index:order_items_offer_id_idx"`
	Quantity  int             `gorm:"column:quantity;not null;default:1"`
	PriceID   *uuid.UUID      `gorm:"column:price_id;type:uuid"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Offer     *Offer          `gorm:"foreignKey:OfferID"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// LineTotal returns unit price times quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
