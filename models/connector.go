package models

import (
	"time"

	"gorm.io/datatypes"
)

// Connector is an integration endpoint usage data is pulled from.
type Connector struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	OrgID        string         `json:"org_id" gorm:"index;not null"`
	Name         string         `json:"name" gorm:"not null"`
	Provider     string         `json:"provider" gorm:"type:VARCHAR(40)"` // e.g. "openai", "anthropic", "custom"
	Endpoint     string         `json:"endpoint"`
	Config       datatypes.JSON `json:"config" gorm:"type:jsonb"`
	Active       bool           `json:"active" gorm:"default:true"`
	LastTestedAt *time.Time     `json:"last_tested_at"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// ExtractionRun records one usage extraction triggered against a connector.
type ExtractionRun struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	ConnectorID uint       `json:"connector_id" gorm:"index"`
	Status      string     `json:"status" gorm:"type:VARCHAR(20)"` // "running" | "completed" | "failed"
	RecordCount int        `json:"record_count"`
	StartedAt   time.Time  `json:"started_at"`
	FinishedAt  *time.Time `json:"finished_at"`
}
