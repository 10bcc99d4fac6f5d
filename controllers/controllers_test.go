package controllers_test

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"metering-backend/database"
	"metering-backend/middlewares"
)

// newMockGorm opens a GORM handle backed by sqlmock so tests can assert the
// SQL the handlers actually emit, org predicates included.
func newMockGorm(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return gdb, mock
}

// newTestApp wires a fiber app the way routes.Setup does for protected routes,
// with the auth locals and request DB stubbed to the given handle. The token
// org is "org-b"; requests for another org must pass ?org_id=.
func newTestApp(db *gorm.DB) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: middlewares.ErrorHandler})
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", "user-b")
		c.Locals("orgID", "org-b")
		c.Locals("tx", db)
		return c.Next()
	})
	return app
}

// swapGlobalDB points database.DB at the mock for handlers that open their own
// short transactions, restoring the previous handle afterwards.
func swapGlobalDB(t *testing.T, db *gorm.DB) {
	t.Helper()
	prev := database.DB
	database.DB = db
	t.Cleanup(func() { database.DB = prev })
}
