package billing

import (
	"strings"

	"metering-backend/models"
)

// StatusAll disables status filtering.
const StatusAll = "all"

// Filter returns the invoices matching the status filter and free-text query.
// The query matches invoice_number or notes, case-insensitively. Input order
// is preserved; status "all" and an empty query pass everything through.
func Filter(invoices []models.Invoice, status, query string) []models.Invoice {
	query = strings.ToLower(strings.TrimSpace(query))

	out := make([]models.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		if status != "" && status != StatusAll && inv.Status != status {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(inv.InvoiceNumber), query) &&
			!strings.Contains(strings.ToLower(inv.Notes), query) {
			continue
		}
		out = append(out, inv)
	}
	return out
}
