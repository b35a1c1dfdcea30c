package models

import (
	"time"

	"github.com/google/uuid"
)

// Reservation is the quantity of a part a project has claimed, independent of
// physical rack location. Rows are deleted en masse when picking completes.
type Reservation struct {
	ProjectID uuid.UUID `gorm:"column:project_id;type:uuid;primaryKey"`
	PartID    uuid.UUID `gorm:"column:part_id;type:uuid;primaryKey"`
	Quantity  int       `gorm:"column:quantity;not null"`
	Reserved  bool      `gorm:"column:reserved;not null;default:true"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
