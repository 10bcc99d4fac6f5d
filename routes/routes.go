package routes

import (
	"github.com/gofiber/fiber/v2"

	"metering-backend/controllers"
	"metering-backend/middlewares"
)

// Register wires all HTTP routes.
func Register(app *fiber.App) {
	api := app.Group("/api")

	// Public auth endpoints
	api.Post("/auth/signup", controllers.Signup)
	api.Post("/auth/login", controllers.Login)
	api.Post("/auth/logout", controllers.Logout)

	// Protected endpoints (JWT auth)
	protected := api.Group("")
	protected.Use(middlewares.IsAuthenticatedHeader())

	// Idempotency guard FIRST (not tied to request TX)
	protected.Use(middlewares.Idempotency())

	// Then per-request transaction (commits/rolls back around the handler)
	protected.Use(middlewares.RequestTx())

	// Organizations
	protected.Get("/organizations", controllers.GetOrganizations)
	protected.Post("/organization", controllers.CreateOrganization)

	// Agents
	protected.Get("/agents", controllers.GetAgents)
	protected.Post("/agent", controllers.CreateAgent)
	protected.Put("/agents/:id", controllers.UpdateAgent)
	protected.Delete("/agents/:id", controllers.DeleteAgent)

	// Pricing models (tagged-union config)
	protected.Get("/pricing-models", controllers.GetPricingModels)
	protected.Post("/pricing-model", controllers.CreatePricingModel)
	protected.Put("/pricing-models/:id", controllers.UpdatePricingModel)
	protected.Delete("/pricing-models/:id", controllers.DeletePricingModel)
	protected.Post("/pricing-models/preview", controllers.PreviewPricingModel)

	// Invoices (generated monthly; mutated only via status transitions)
	protected.Get("/invoices", controllers.GetInvoices)
	protected.Get("/invoices/analytics", controllers.GetInvoiceAnalytics)
	protected.Get("/invoices/:id", controllers.GetInvoice)
	protected.Post("/invoices/generate/monthly", controllers.GenerateMonthlyInvoice)
	protected.Post("/invoices/pay/bulk", controllers.BulkPayInvoices)
	protected.Post("/invoices/:id/pay", controllers.PayInvoice)
	protected.Post("/invoices/:id/cancel", controllers.CancelInvoice)
	protected.Get("/invoices/:id/pdf", controllers.DownloadInvoicePDF)

	// API keys (secret returned once, on create)
	protected.Get("/api-keys", controllers.GetAPIKeys)
	protected.Get("/api-keys/organization/all", controllers.GetAllOrgAPIKeys)
	protected.Post("/api-key", controllers.CreateAPIKey)
	protected.Delete("/api-keys/:id", controllers.DeleteAPIKey)

	// Integration connectors
	protected.Get("/integration/connectors", controllers.GetConnectors)
	protected.Post("/integration/connectors", controllers.CreateConnector)
	protected.Put("/integration/connectors/:id", controllers.UpdateConnector)
	protected.Delete("/integration/connectors/:id", controllers.DeleteConnector)
	protected.Post("/integration/connectors/:id/test", controllers.TestConnector)
	protected.Post("/integration/connectors/:id/extract", controllers.ExtractConnector)
}
