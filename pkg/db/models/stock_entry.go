package models

import (
	"time"

	"github.com/google/uuid"
)

// StockEntry tracks the physical quantity of a part stored in one rack.
// Rows are created on first receive and deleted when the quantity reaches zero.
type StockEntry struct {
	PartID    uuid.UUID `gorm:"column:part_id;type:uuid;primaryKey"`
	RackID    uuid.UUID `gorm:"column:rack_id;type:uuid;primaryKey"`
	Quantity  int       `gorm:"column:quantity;not null;default:0"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
