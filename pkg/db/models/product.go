package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/vendorhub-backend/pkg/types"
)

// Product is the static descriptive catalog entry. Sellable pricing and
// availability windows live on Offer; the MSRP column is only the fallback
// price table.
type Product struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SiteID          uuid.UUID           `gorm:"column:site_id;type:uuid;not null;index:products_site_id_idx;uniqueIndex:products_site_sku_key"`
	SKU             string              `gorm:"column:sku;not null;uniqueIndex:products_site_sku_key"`
	Name            string              `gorm:"column:name;not null"`
	Slug            string              `gorm:"column:slug;not null;index"`
	Available       bool                `gorm:"column:available;not null;default:false"`
	Description     string              `gorm:"column:description"`
	MSRP            types.MSRP          `gorm:"column:msrp;type:jsonb;serializer:json"`
	Classifications []ProductClassifier `gorm:"many2many:product_classifications"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
