package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/vendorhub-backend/pkg/enums"
	"github.com/angelmondragon/vendorhub-backend/pkg/types"
)

// Offer wraps one product or a bundle of products into a sellable unit with
// its own validity window and price rows. Name and slug are derived by the
// write path when left blank.
type Offer struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SiteID      uuid.UUID         `gorm:"column:site_id;type:uuid;not null;index:offers_site_id_idx;uniqueIndex:offers_site_sku_key"`
	SKU         string            `gorm:"column:sku;not null;uniqueIndex:offers_site_sku_key"`
	Name        string            `gorm:"column:name;not null"`
	Slug        string            `gorm:"column:slug;not null;index"`
	Products    []Product         `gorm:"many2many:offer_products"`
	StartDate   time.Time         `gorm:"column:start_date;not null"`
	EndDate     *time.Time        `gorm:"column:end_date"`
	Terms       enums.OfferTerm   `gorm:"column:terms;not null;default:'perpetual'"`
	TermDetails types.TermDetails `gorm:"column:term_details;type:jsonb;serializer:json"`
	Available   bool              `gorm:"column:available;not null;default:false"`
	Prices      []Price           `gorm:"foreignKey:OfferID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// ActiveAt reports whether the offer window covers the given instant.
func (o Offer) ActiveAt(now time.Time) bool {
	if now.Before(o.StartDate) {
		return false
	}
	if o.EndDate != nil && now.After(*o.EndDate) {
		return false
	}
	return true
}
