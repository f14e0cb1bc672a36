package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/vendorhub-backend/pkg/enums"
)

// Price is one time-windowed cost entry for an offer. Rows may overlap;
// resolution picks the highest priority among the active ones.
type Price struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OfferID   uuid.UUID       `gorm:"column:offer_id;type:uuid;not null;index:prices_offer_id_idx"`
	Cost      decimal.Decimal `gorm:"column:cost;type:numeric(12,2);not null"`
	Currency  enums.Currency  `gorm:"column:currency;not null;default:'usd'"`
	StartDate time.Time       `gorm:"column:start_date;not null"`
	EndDate   *time.Time      `gorm:"column:end_date"`
	Priority  int             `gorm:"column:priority;not null;default:0"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// ActiveAt reports whether the price window covers the given instant.
func (p Price) ActiveAt(now time.Time) bool {
	if now.Before(p.StartDate) {
		return false
	}
	if p.EndDate != nil && now.After(*p.EndDate) {
		return false
	}
	return true
}
