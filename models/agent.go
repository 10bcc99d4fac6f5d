package models

import "time"

type Agent struct {
	ID             uint   `json:"id" gorm:"primaryKey"`
	OrgID          string `json:"org_id" gorm:"index;not null"`
	Name           string `json:"name" gorm:"not null"`
	Description    string `json:"description"`
	Status         string `json:"status" gorm:"type:VARCHAR(20);default:'active'"` // "active" | "paused"
	PricingModelID *uint  `json:"pricing_model_id"`
	// Units metered for this agent in the current period; input to invoice generation.
	MonthlyUsageUnits int       `json:"monthly_usage_units"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
