package models

import "time"

// APIKey holds only the prefix and a sha256 hash of the secret. The full token
// is returned exactly once, on create, and never persisted.
type APIKey struct {
	ID         uint       `json:"id" gorm:"primaryKey"`
	OrgID      string     `json:"org_id" gorm:"index;not null"`
	Name       string     `json:"name" gorm:"not null"`
	KeyPrefix  string     `json:"key_prefix" gorm:"size:16;not null"`
	KeyHash    string     `json:"-" gorm:"size:64;uniqueIndex;not null"`
	LastUsedAt *time.Time `json:"last_used_at"`
	CreatedAt  time.Time  `json:"created_at"`
}
