package models

import (
	"time"

	"github.com/google/uuid"
)

// Rack is one addressable storage slot, keyed by row/column/level.
//
// Capacity is declared on the rack but receiving only enforces the part's own
// per-rack limit; the field is informational today.
type Rack struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Row       int       `gorm:"column:row_num;not null;uniqueIndex:ux_racks_position,priority:1"`
	Column    int       `gorm:"column:col_num;not null;uniqueIndex:ux_racks_position,priority:2"`
	Level     int       `gorm:"column:level_num;not null;uniqueIndex:ux_racks_position,priority:3"`
	Capacity  int       `gorm:"column:capacity;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
