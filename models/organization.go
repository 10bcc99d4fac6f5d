package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Organization is the tenant scope: nearly every query filters by its id.
type Organization struct {
	Id        string    `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null;unique"`
	OwnerId   string    `json:"-" gorm:"index"`
	Owner     User      `json:"-" gorm:"foreignKey:OwnerId;references:Id"`
	CreatedAt time.Time `json:"created_at"`
}

func (org *Organization) BeforeCreate(tx *gorm.DB) (err error) {
	// UUID version 4
	org.Id = uuid.NewString()
	return
}
