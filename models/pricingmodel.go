package models

import (
	"time"

	"gorm.io/datatypes"
)

// PricingModel stores one billing-model configuration. ModelType selects which
// variant of the pricing config is meaningful; Config holds exactly that
// variant's fields (see the pricing package for decode/validate).
type PricingModel struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	OrgID       string         `json:"org_id" gorm:"index;not null"`
	Name        string         `json:"name" gorm:"not null"`
	Description string         `json:"description"`
	ModelType   string         `json:"model_type" gorm:"type:VARCHAR(20);not null"`
	Config      datatypes.JSON `json:"config" gorm:"type:jsonb"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}
