package models

import (
	"time"

	"github.com/google/uuid"
)

// WishlistItem links an offer into a wishlist.
type WishlistItem struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	WishlistID uuid.UUID `gorm:"column:wishlist_id;type:uuid;not null;uniqueIndex:wishlist_items_wishlist_offer_key"`
	OfferID    uuid.UUID `gorm:"column:offer_id;type:uuid;not null;uniqueIndex:wishlist_items_wishlist_offer_key;index:wishlist_items_offer_id_idx"`
	Offer      *Offer    `gorm:"foreignKey:OfferID"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}
