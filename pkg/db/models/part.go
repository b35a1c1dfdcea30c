package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Part is a purchasable component type with a price and a per-rack storage cap.
type Part struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Name       string          `gorm:"column:name;not null;uniqueIndex:ux_parts_name"`
	Price      decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	MaxPerRack int             `gorm:"column:max_per_rack;not null"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
