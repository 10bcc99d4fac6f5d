package database

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Data is isolated per organization by column, not by schema: every tenant
// query goes through OrgScope.

// OrgScope filters a query to one organization.
func OrgScope(orgID string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("org_id = ?", orgID)
	}
}

// RequestDB returns the DB handle for a request: the per-request transaction
// if middlewares.RequestTx opened one, else the shared connection.
func RequestDB(c *fiber.Ctx) (*gorm.DB, error) {
	if v := c.Locals("tx"); v != nil {
		if tx, ok := v.(*gorm.DB); ok && tx != nil {
			return tx, nil
		}
	}
	if DB == nil {
		return nil, errors.New("database not initialized")
	}
	return DB, nil
}

// RequestOrg resolves the organization scoping a request: explicit org_id
// query param first, then the token's default org.
func RequestOrg(c *fiber.Ctx) (string, error) {
	if org := strings.TrimSpace(c.Query("org_id")); org != "" {
		return org, nil
	}
	if org, ok := c.Locals("orgID").(string); ok && strings.TrimSpace(org) != "" {
		return org, nil
	}
	return "", errors.New("organization scope missing")
}
