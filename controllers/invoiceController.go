package controllers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"metering-backend/billing"
	"metering-backend/database"
	"metering-backend/middlewares"
	"metering-backend/models"
	"metering-backend/pricing"
	"metering-backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// GetInvoices lists an org's invoices, newest first. Supports ?status= and a
// free-text ?q= over invoice_number and notes.
func GetInvoices(c *fiber.Ctx) error {
	orgID, err := database.RequestOrg(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	db, err := database.RequestDB(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal Error"})
	}

	query := db.Scopes(database.OrgScope(orgID)).
		Preload("LineItems").
		Order("issue_date DESC, id DESC")

	// Status is filtered in SQL so the limit never hides older matches.
	status := c.Query("status", billing.StatusAll)
	if status != "" && status != billing.StatusAll {
		query = query.Where("status = ?", status)
	}

	limit := utils.ParseIntDefault(c.Query("limit"), 100)
	if limit > 0 {
		query = query.Limit(limit)
	}

	var invoices []models.Invoice
	if err := query.Find(&invoices).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not load invoices",
			"error":   err.Error(),
		})
	}

	invoices = billing.Filter(invoices, billing.StatusAll, c.Query("q"))

	return c.JSON(fiber.Map{
		"invoices": invoices,
		"message":  "success",
	})
}

func GetInvoice(c *fiber.Ctx) error {
	orgID, err := database.RequestOrg(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	db, err := database.RequestDB(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal Error"})
	}

	var invoice models.Invoice
	if err := db.Scopes(database.OrgScope(orgID)).
		Preload("LineItems").First(&invoice, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Invoice not found"})
	}
	return c.JSON(invoice)
}

// GetInvoiceAnalytics reduces the org's invoices into the dashboard summary.
func GetInvoiceAnalytics(c *fiber.Ctx) error {
	orgID, err := database.RequestOrg(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	db, err := database.RequestDB(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal Error"})
	}

	var invoices []models.Invoice
	if err := db.Scopes(database.OrgScope(orgID)).Preload("LineItems").Find(&invoices).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not load invoices",
			"error":   err.Error(),
		})
	}

	summary := billing.Summarize(invoices)
	return c.JSON(fiber.Map{
		"summary":         summary,
		"monthly_revenue": summary.RecentMonths(6),
	})
}

// GenerateMonthlyInvoice builds one invoice for an org and billing month from
// its agents' pricing configs. A second generation for the same org+month hits
// the per-org invoice_number unique index and returns 409.
func GenerateMonthlyInvoice(c *fiber.Ctx) error {
	orgID, err := database.RequestOrg(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	month := utils.ParseIntDefault(c.Query("month"), 0)
	year := utils.ParseIntDefault(c.Query("year"), 0)
	if month < 1 || month > 12 || year < 2000 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid month/year"})
	}

	db, err := database.RequestDB(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal Error"})
	}

	var exists models.Invoice
	if err := db.Scopes(database.OrgScope(orgID)).
		Where("invoice_number = ?", billing.MonthlyInvoiceNumber(orgID, month, year)).
		First(&exists).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "Invoice for this month already exists",
			"invoice": exists,
		})
	}

	var agents []models.Agent
	if err := db.Scopes(database.OrgScope(orgID)).
		Where("status = ? AND pricing_model_id IS NOT NULL", "active").
		Find(&agents).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not load agents",
			"error":   err.Error(),
		})
	}

	var billable []billing.AgentBilling
	for _, agent := range agents {
		var pm models.PricingModel
		if err := db.First(&pm, "id = ?", *agent.PricingModelID).Error; err != nil {
			continue
		}
		cfg, err := pricing.Decode(pm.ModelType, pm.Config)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Corrupt pricing config",
				"error":   err.Error(),
			})
		}
		billable = append(billable, billing.AgentBilling{Agent: agent, Config: cfg})
	}

	invoice, err := billing.BuildMonthlyInvoice(orgID, month, year, billable)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	if err := db.Create(&invoice).Error; err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "Could not create invoice",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(invoice)
}

type payDTO struct {
	PaymentMethod string     `json:"payment_method" validate:"required"`
	PaymentDate   *time.Time `json:"payment_date"`
	Reference     string     `json:"reference"`
}

// PayInvoice records a payment and flips the invoice to paid. The response
// carries the refreshed invoice so a caller holding a detail view never shows
// a stale status after its own mutation.
func PayInvoice(c *fiber.Ctx) error {
	var dto payDTO
	if err := middlewares.BindAndValidate(c, &dto); err != nil {
		return err
	}

	orgID, err := database.RequestOrg(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	db, err := database.RequestDB(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal Error"})
	}

	var invoice models.Invoice
	if err := db.Scopes(database.OrgScope(orgID)).
		First(&invoice, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Invoice not found"})
	}

	switch invoice.Status {
	case models.InvoiceStatusPending, models.InvoiceStatusProcessing, models.InvoiceStatusOverdue:
		// payable
	case models.InvoiceStatusPaid:
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "Invoice already paid"})
	default:
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": fmt.Sprintf("Invoice in status %q cannot be paid", invoice.Status),
		})
	}

	paidAt := time.Now().UTC()
	if dto.PaymentDate != nil {
		paidAt = *dto.PaymentDate
	}

	payment := models.Payment{
		InvoiceID: invoice.ID,
		Amount:    invoice.TotalAmount,
		Method:    dto.PaymentMethod,
		Reference: dto.Reference,
		PaidAt:    paidAt,
	}
	if err := db.Create(&payment).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not record payment",
			"error":   err.Error(),
		})
	}

	updates := map[string]any{
		"status":         models.InvoiceStatusPaid,
		"payment_method": dto.PaymentMethod,
		"payment_date":   paidAt,
	}
	if err := db.Model(&invoice).Updates(updates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not update invoice",
			"error":   err.Error(),
		})
	}

	db.Preload("LineItems").First(&invoice, invoice.ID)
	return c.JSON(fiber.Map{
		"invoice": invoice,
		"payment": payment,
	})
}

// CancelInvoice moves a pending invoice to cancelled.
func CancelInvoice(c *fiber.Ctx) error {
	orgID, err := database.RequestOrg(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	db, err := database.RequestDB(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal Error"})
	}

	var invoice models.Invoice
	if err := db.Scopes(database.OrgScope(orgID)).
		First(&invoice, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Invoice not found"})
	}
	if invoice.Status != models.InvoiceStatusPending {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": fmt.Sprintf("Invoice in status %q cannot be cancelled", invoice.Status),
		})
	}

	if err := db.Model(&invoice).Update("status", models.InvoiceStatusCancelled).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not cancel invoice",
			"error":   err.Error(),
		})
	}
	invoice.Status = models.InvoiceStatusCancelled
	return c.JSON(invoice)
}

type bulkPayDTO struct {
	IDs           []uint `json:"ids" validate:"required,min=1"`
	PaymentMethod string `json:"payment_method"`
}

// BulkPayInvoices pays a batch of pending invoices, reporting the outcome per
// id instead of failing the whole batch on the first error. Each item runs in
// its own transaction; a failed item rolls back alone and cannot poison the
// rest of the batch.
func BulkPayInvoices(c *fiber.Ctx) error {
	var dto bulkPayDTO
	if err := middlewares.BindAndValidate(c, &dto); err != nil {
		return err
	}
	method := dto.PaymentMethod
	if method == "" {
		method = "manual"
	}

	orgID, err := database.RequestOrg(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	paidAt := time.Now().UTC()
	paid := make([]uint, 0, len(dto.IDs))
	failed := make(map[uint]string)

	for _, id := range dto.IDs {
		err := database.DB.Transaction(func(tx *gorm.DB) error {
			var invoice models.Invoice
			if err := tx.Scopes(database.OrgScope(orgID)).
				First(&invoice, "id = ?", id).Error; err != nil {
				return fmt.Errorf("not found")
			}
			if invoice.Status != models.InvoiceStatusPending {
				return fmt.Errorf("status %q is not payable in bulk", invoice.Status)
			}
			payment := models.Payment{
				InvoiceID: invoice.ID,
				Amount:    invoice.TotalAmount,
				Method:    method,
				PaidAt:    paidAt,
			}
			if err := tx.Create(&payment).Error; err != nil {
				return err
			}
			return tx.Model(&invoice).Updates(map[string]any{
				"status":         models.InvoiceStatusPaid,
				"payment_method": method,
				"payment_date":   paidAt,
			}).Error
		})
		if err != nil {
			failed[id] = err.Error()
			continue
		}
		paid = append(paid, id)
	}

	status := fiber.StatusOK
	if len(paid) == 0 && len(failed) > 0 {
		status = fiber.StatusBadRequest
	}
	return c.Status(status).JSON(fiber.Map{
		"paid":   paid,
		"failed": failed,
	})
}

// DownloadInvoicePDF streams the rendered PDF from the external renderer. PDF
// generation itself is delegated; this endpoint only proxies bytes.
func DownloadInvoicePDF(c *fiber.Ctx) error {
	orgID, err := database.RequestOrg(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	db, err := database.RequestDB(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal Error"})
	}

	var invoice models.Invoice
	if err := db.Scopes(database.OrgScope(orgID)).
		First(&invoice, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Invoice not found"})
	}

	base := os.Getenv("PDF_SERVICE_URL")
	if base == "" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"message": "PDF service not configured"})
	}

	resp, err := http.Get(fmt.Sprintf("%s/render/invoice/%d", base, invoice.ID))
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"message": "PDF service unreachable",
			"error":   err.Error(),
		})
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": "PDF service error"})
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": "PDF read failed"})
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="invoice_%s.pdf"`, invoice.InvoiceNumber))
	return c.Send(body)
}
