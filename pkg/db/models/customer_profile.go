package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/vendorhub-backend/pkg/enums"
)

// CustomerProfile holds purchasing state for a user on one site. Invoices,
// receipts, and wishlists attach here rather than to the user directly.
type CustomerProfile struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID      `gorm:"column:user_id;type:uuid;not null;uniqueIndex:customer_profiles_user_site_key"`
	SiteID    uuid.UUID      `gorm:"column:site_id;type:uuid;not null;uniqueIndex:customer_profiles_user_site_key"`
	Currency  enums.Currency `gorm:"column:currency;not null;default:'usd'"`
	User      *User          `gorm:"foreignKey:UserID"`
	Addresses []Address      `gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
