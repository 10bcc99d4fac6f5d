package billing

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"metering-backend/models"
	"metering-backend/pricing"
	"metering-backend/utils"
)

// Tax applied to generated invoices.
const taxRate = 0.2

// AgentBilling pairs an agent with its decoded pricing config for generation.
type AgentBilling struct {
	Agent  models.Agent
	Config pricing.Config
}

// BuildMonthlyInvoice assembles the invoice for one org and billing month from
// the agents' pricing configs and metered usage. It computes line items,
// subtotal, tax and total in one pass; persistence is the caller's concern.
func BuildMonthlyInvoice(orgID string, month, year int, agents []AgentBilling) (models.Invoice, error) {
	if month < 1 || month > 12 {
		return models.Invoice{}, fmt.Errorf("invalid month %d", month)
	}

	issueDate := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)

	var items []models.InvoiceLineItem
	var subtotal float64

	for _, ab := range agents {
		if ab.Config == nil {
			continue
		}
		for _, line := range ab.Config.Charge(ab.Agent.MonthlyUsageUnits) {
			meta, err := json.Marshal(line.Metadata)
			if err != nil {
				return models.Invoice{}, fmt.Errorf("marshal line metadata: %w", err)
			}
			amount := utils.Round2(line.Amount)
			items = append(items, models.InvoiceLineItem{
				Description:   fmt.Sprintf("%s: %s", ab.Agent.Name, line.Description),
				Quantity:      line.Quantity,
				UnitPrice:     utils.Round2(line.UnitPrice),
				Amount:        amount,
				ItemType:      line.ItemType,
				ReferenceID:   strconv.FormatUint(uint64(ab.Agent.ID), 10),
				ReferenceType: "agent",
				Metadata:      meta,
			})
			subtotal += amount
		}
	}

	subtotal = utils.Round2(subtotal)
	tax := utils.Round2(subtotal * taxRate)

	return models.Invoice{
		InvoiceNumber: MonthlyInvoiceNumber(orgID, month, year),
		OrgID:         orgID,
		IssueDate:     issueDate,
		DueDate:       issueDate.AddDate(0, 0, 30),
		Amount:        subtotal,
		TaxAmount:     tax,
		TotalAmount:   utils.Round2(subtotal + tax),
		Currency:      "USD",
		Status:        models.InvoiceStatusPending,
		LineItems:     items,
	}, nil
}

// MonthlyInvoiceNumber is deterministic per org+month, which makes duplicate
// generation fail on the invoice_number unique index.
func MonthlyInvoiceNumber(orgID string, month, year int) string {
	short := orgID
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("INV-%d%02d-%s", year, month, short)
}
