package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DynamicEntity is the single record type managed by the application.
type DynamicEntity struct {
	ID           int             `json:"id" gorm:"primaryKey;autoIncrement"`
	Name         string          `json:"name" gorm:"size:100;not null" validate:"required,notblank,max=100"`
	Description  string          `json:"description" gorm:"size:500" validate:"max=500"`
	Category     string          `json:"category" gorm:"size:50;not null;index" validate:"required,notblank,max=50"`
	Price        decimal.Decimal `json:"price" gorm:"type:decimal(18,2);not null" validate:"required"`
	Quantity     int             `json:"quantity" gorm:"not null" validate:"gte=0,lte=10000"`
	IsActive     bool            `json:"is_active" gorm:"not null"`
	CreatedDate  time.Time       `json:"created_date" gorm:"not null"`
	ModifiedDate *time.Time      `json:"modified_date,omitempty"`
}

// TableName pins the table name regardless of the naming strategy.
func (DynamicEntity) TableName() string {
	return "dynamic_entities"
}

// NewDynamicEntity returns an entity with the field defaults applied:
// active, and created now (UTC).
func NewDynamicEntity() *DynamicEntity {
	return &DynamicEntity{
		IsActive:    true,
		CreatedDate: time.Now().UTC(),
	}
}
