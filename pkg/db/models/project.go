package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/raktarhub/raktarhub-backend/pkg/enums"
)

// Project is one installation job moving through the lifecycle
// new -> draft -> {wait, scheduled} -> inprogress -> {completed, failed}.
type Project struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	CustomerName  string              `gorm:"column:customer_name;not null"`
	Location      string              `gorm:"column:location;not null"`
	Description   string              `gorm:"column:description;not null;default:''"`
	Status        enums.ProjectStatus `gorm:"column:status;not null"`
	EstimatedTime *int                `gorm:"column:estimated_time"`
	WorkFee       *decimal.Decimal    `gorm:"column:work_fee;type:numeric(12,2)"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
