package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment records one charge attempt against an invoice, successful or not.
type Payment struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	InvoiceID   uuid.UUID       `gorm:"column:invoice_id;type:uuid;not null;index:payments_invoice_id_idx"`
	ProfileID   *uuid.UUID      `gorm:"column:profile_id;type:uuid"`
	Transaction string          `gorm:"column:transaction;not null"`
	Provider    string          `gorm:"column:provider;not null"`
	Amount      decimal.Decimal `gorm:"column:amount;type:numeric(12,2);not null"`
	Result      string          `gorm:"column:result"`
	Success     bool            `gorm:"column:success;not null;default:false"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
}
