package models

import (
	"time"

	"github.com/google/uuid"
)

// Wishlist is a named collection of offers a profile is watching,
// independent of the cart and purchase lifecycle.
type Wishlist struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProfileID uuid.UUID      `gorm:"column:profile_id;type:uuid;not null;uniqueIndex:wishlists_profile_name_key"`
	Name      string         `gorm:"column:name;not null;uniqueIndex:wishlists_profile_name_key"`
	Items     []WishlistItem `gorm:"foreignKey:WishlistID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
