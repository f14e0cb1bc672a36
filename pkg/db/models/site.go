package models

import (
	"time"

	"github.com/google/uuid"
)

// Site is an explicit tenant row. Every catalog and cart query carries a site
// identifier; there is no ambient current-site singleton.
type Site struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Domain    string    `gorm:"column:domain;not null;uniqueIndex"`
	Name      string    `gorm:"column:name;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
