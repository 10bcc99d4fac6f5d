// Package billing holds the pure billing logic: invoice analytics aggregation,
// list filtering and selection, line-item metadata variants, and monthly
// line-item generation. Nothing here touches the network or the database.
package billing

import (
	"sort"

	"metering-backend/models"
	"metering-backend/utils"
)

// TypeBreakdown is the per-item-type rollup of line-item amounts.
type TypeBreakdown struct {
	Value      float64 `json:"value"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"` // of total revenue
}

// MethodBreakdown is the per-payment-method rollup over paid invoices.
type MethodBreakdown struct {
	Count int     `json:"count"`
	Value float64 `json:"value"`
}

// MonthRevenue is the revenue rollup for one calendar month.
type MonthRevenue struct {
	Month string  `json:"month"` // "2025-01"
	Value float64 `json:"value"`
	Count int     `json:"count"`
}

// Summary is the dashboard analytics derived from a set of invoices.
type Summary struct {
	TotalRevenue     float64 `json:"total_revenue"`
	PaidRevenue      float64 `json:"paid_revenue"`
	PendingRevenue   float64 `json:"pending_revenue"`
	AvgInvoiceAmount float64 `json:"avg_invoice_amount"`
	CollectionRate   float64 `json:"collection_rate"` // % of invoices paid, by count

	BillingTypeBreakdown   map[string]TypeBreakdown   `json:"billing_type_breakdown"`
	PaymentMethodBreakdown map[string]MethodBreakdown `json:"payment_method_breakdown"`
	MonthlyRevenue         []MonthRevenue             `json:"monthly_revenue"`
}

// Summarize reduces invoices and their line items into the dashboard summary.
// Pure and order-independent: the same input always yields the same output.
// An empty input yields zero sums and rates, never a division by zero.
func Summarize(invoices []models.Invoice) Summary {
	s := Summary{
		BillingTypeBreakdown:   make(map[string]TypeBreakdown),
		PaymentMethodBreakdown: make(map[string]MethodBreakdown),
	}

	paidCount := 0
	monthly := make(map[string]MonthRevenue)

	for i := range invoices {
		inv := &invoices[i]
		s.TotalRevenue += inv.TotalAmount

		switch inv.Status {
		case models.InvoiceStatusPaid:
			s.PaidRevenue += inv.TotalAmount
			paidCount++
			method := inv.PaymentMethod
			if method == "" {
				method = "Unknown"
			}
			mb := s.PaymentMethodBreakdown[method]
			mb.Count++
			mb.Value += inv.TotalAmount
			s.PaymentMethodBreakdown[method] = mb
		case models.InvoiceStatusPending:
			s.PendingRevenue += inv.TotalAmount
		}

		key := inv.IssueDate.Format("2006-01")
		m := monthly[key]
		m.Month = key
		m.Value += inv.TotalAmount
		m.Count++
		monthly[key] = m

		for _, item := range inv.LineItems {
			tb := s.BillingTypeBreakdown[item.ItemType]
			tb.Value += item.Amount
			tb.Count++
			s.BillingTypeBreakdown[item.ItemType] = tb
		}
	}

	if n := len(invoices); n > 0 {
		s.AvgInvoiceAmount = utils.Round2(s.TotalRevenue / float64(n))
		s.CollectionRate = utils.Round2(float64(paidCount) / float64(n) * 100)
	}

	if s.TotalRevenue > 0 {
		for t, tb := range s.BillingTypeBreakdown {
			tb.Percentage = utils.Round2(tb.Value / s.TotalRevenue * 100)
			s.BillingTypeBreakdown[t] = tb
		}
	}

	s.MonthlyRevenue = make([]MonthRevenue, 0, len(monthly))
	for _, m := range monthly {
		s.MonthlyRevenue = append(s.MonthlyRevenue, m)
	}
	// Most recent month first; the "2006-01" key sorts lexically.
	sort.Slice(s.MonthlyRevenue, func(i, j int) bool {
		return s.MonthlyRevenue[i].Month > s.MonthlyRevenue[j].Month
	})

	return s
}

// RecentMonths caps the monthly rollup at the n most recent months.
func (s Summary) RecentMonths(n int) []MonthRevenue {
	if len(s.MonthlyRevenue) <= n {
		return s.MonthlyRevenue
	}
	return s.MonthlyRevenue[:n]
}
