package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/raktarhub/raktarhub-backend/pkg/enums"
)

// ProjectStatusLog is the append-only history of observed status transitions.
// Rows are never updated or deleted.
type ProjectStatusLog struct {
	ID        uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	ProjectID uuid.UUID           `gorm:"column:project_id;type:uuid;not null;index:ix_project_status_logs_project"`
	Status    enums.ProjectStatus `gorm:"column:status;not null"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime"`
}
