package models

import "github.com/google/uuid"

// ProductClassifier tags products with a tax-relevant category such as
// "Digital Goods" or "Food".
type ProductClassifier struct {
	ID      uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name    string    `gorm:"column:name;not null;uniqueIndex"`
	Taxable bool      `gorm:"column:taxable;not null;default:false"`
}
