package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metering-backend/models"
)

func invoiceOn(date string, status string, total float64) models.Invoice {
	t, _ := time.Parse("2006-01-02", date)
	return models.Invoice{IssueDate: t, Status: status, TotalAmount: total}
}

func TestSummarizeBasics(t *testing.T) {
	invoices := []models.Invoice{
		invoiceOn("2025-06-01", models.InvoiceStatusPaid, 100),
		invoiceOn("2025-06-15", models.InvoiceStatusPending, 50),
	}

	s := Summarize(invoices)

	assert.Equal(t, 150.0, s.TotalRevenue)
	assert.Equal(t, 100.0, s.PaidRevenue)
	assert.Equal(t, 50.0, s.PendingRevenue)
	assert.Equal(t, 75.0, s.AvgInvoiceAmount)
	assert.Equal(t, 50.0, s.CollectionRate)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)

	assert.Zero(t, s.TotalRevenue)
	assert.Zero(t, s.PaidRevenue)
	assert.Zero(t, s.PendingRevenue)
	assert.Zero(t, s.AvgInvoiceAmount)
	assert.Zero(t, s.CollectionRate)
	assert.Empty(t, s.BillingTypeBreakdown)
	assert.Empty(t, s.PaymentMethodBreakdown)
	assert.Empty(t, s.MonthlyRevenue)
}

func TestCollectionRateBounds(t *testing.T) {
	testCases := []struct {
		name     string
		statuses []string
		want     float64
	}{
		{name: "none_paid", statuses: []string{"pending", "overdue"}, want: 0},
		{name: "all_paid", statuses: []string{"paid", "paid"}, want: 100},
		{name: "one_third", statuses: []string{"paid", "pending", "cancelled"}, want: 33.33},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var invoices []models.Invoice
			for _, st := range tc.statuses {
				invoices = append(invoices, invoiceOn("2025-01-01", st, 10))
			}
			s := Summarize(invoices)
			assert.Equal(t, tc.want, s.CollectionRate)
			assert.GreaterOrEqual(t, s.CollectionRate, 0.0)
			assert.LessOrEqual(t, s.CollectionRate, 100.0)
		})
	}
}

func TestBillingTypeBreakdownConservation(t *testing.T) {
	inv1 := invoiceOn("2025-03-01", models.InvoiceStatusPaid, 180)
	inv1.LineItems = []models.InvoiceLineItem{
		{ItemType: models.ItemTypeSubscription, Amount: 100},
		{ItemType: models.ItemTypeUsage, Amount: 50},
	}
	inv2 := invoiceOn("2025-03-20", models.InvoiceStatusPending, 36)
	inv2.LineItems = []models.InvoiceLineItem{
		{ItemType: models.ItemTypeUsage, Amount: 20},
		{ItemType: models.ItemTypeOutcome, Amount: 10},
	}
	// No line items: counts toward revenue, contributes nothing to the breakdown.
	inv3 := invoiceOn("2025-03-25", models.InvoiceStatusPending, 12)

	s := Summarize([]models.Invoice{inv1, inv2, inv3})

	var groupTotal float64
	var groupCount int
	for _, tb := range s.BillingTypeBreakdown {
		groupTotal += tb.Value
		groupCount += tb.Count
	}
	assert.Equal(t, 180.0, groupTotal) // 100+50+20+10: nothing dropped or double-counted
	assert.Equal(t, 4, groupCount)

	assert.Equal(t, 100.0, s.BillingTypeBreakdown[models.ItemTypeSubscription].Value)
	assert.Equal(t, 70.0, s.BillingTypeBreakdown[models.ItemTypeUsage].Value)
	assert.Equal(t, 2, s.BillingTypeBreakdown[models.ItemTypeUsage].Count)
	assert.Equal(t, 228.0, s.TotalRevenue)
}

func TestPaymentMethodBreakdown(t *testing.T) {
	paidCard := invoiceOn("2025-02-01", models.InvoiceStatusPaid, 100)
	paidCard.PaymentMethod = "card"
	paidNoMethod := invoiceOn("2025-02-02", models.InvoiceStatusPaid, 40)
	pending := invoiceOn("2025-02-03", models.InvoiceStatusPending, 999)
	pending.PaymentMethod = "card" // not paid: must be excluded

	s := Summarize([]models.Invoice{paidCard, paidNoMethod, pending})

	require.Len(t, s.PaymentMethodBreakdown, 2)
	assert.Equal(t, MethodBreakdown{Count: 1, Value: 100}, s.PaymentMethodBreakdown["card"])
	assert.Equal(t, MethodBreakdown{Count: 1, Value: 40}, s.PaymentMethodBreakdown["Unknown"])
}

func TestMonthlyRevenueOrdering(t *testing.T) {
	var invoices []models.Invoice
	months := []string{"2024-09-05", "2025-01-10", "2024-11-20", "2025-03-01", "2024-12-31", "2025-02-14", "2024-10-01", "2025-03-15"}
	for _, d := range months {
		invoices = append(invoices, invoiceOn(d, models.InvoiceStatusPaid, 10))
	}

	s := Summarize(invoices)

	require.Len(t, s.MonthlyRevenue, 7)
	for i := 1; i < len(s.MonthlyRevenue); i++ {
		assert.Greater(t, s.MonthlyRevenue[i-1].Month, s.MonthlyRevenue[i].Month)
	}

	recent := s.RecentMonths(6)
	require.Len(t, recent, 6)
	assert.Equal(t, "2025-03", recent[0].Month)
	assert.Equal(t, 20.0, recent[0].Value)
	assert.Equal(t, 2, recent[0].Count)
	assert.Equal(t, "2024-10", recent[5].Month)
}

func TestSummarizeIdempotent(t *testing.T) {
	invoices := []models.Invoice{
		invoiceOn("2025-06-01", models.InvoiceStatusPaid, 100),
		invoiceOn("2025-05-15", models.InvoiceStatusPending, 50),
	}
	assert.Equal(t, Summarize(invoices), Summarize(invoices))
}
