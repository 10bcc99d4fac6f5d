package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metering-backend/models"
)

func testInvoices() []models.Invoice {
	return []models.Invoice{
		{ID: 1, InvoiceNumber: "INV-202501-alpha", Status: models.InvoiceStatusPaid, Notes: "January usage"},
		{ID: 2, InvoiceNumber: "INV-202502-alpha", Status: models.InvoiceStatusPending, Notes: "February usage"},
		{ID: 3, InvoiceNumber: "INV-202503-alpha", Status: models.InvoiceStatusPending, Notes: "disputed by customer"},
		{ID: 4, InvoiceNumber: "INV-202504-alpha", Status: models.InvoiceStatusOverdue, Notes: ""},
	}
}

func TestFilter(t *testing.T) {
	invoices := testInvoices()

	testCases := []struct {
		name    string
		status  string
		query   string
		wantIDs []uint
	}{
		{name: "all_empty_query_passthrough", status: StatusAll, query: "", wantIDs: []uint{1, 2, 3, 4}},
		{name: "empty_status_passthrough", status: "", query: "", wantIDs: []uint{1, 2, 3, 4}},
		{name: "status_pending", status: models.InvoiceStatusPending, query: "", wantIDs: []uint{2, 3}},
		{name: "query_matches_number", status: StatusAll, query: "202503", wantIDs: []uint{3}},
		{name: "query_matches_notes_case_insensitive", status: StatusAll, query: "FEBRUARY", wantIDs: []uint{2}},
		{name: "status_and_query", status: models.InvoiceStatusPending, query: "disputed", wantIDs: []uint{3}},
		{name: "no_match", status: StatusAll, query: "zzz", wantIDs: []uint{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Filter(invoices, tc.status, tc.query)
			ids := make([]uint, 0, len(got))
			for _, inv := range got {
				ids = append(ids, inv.ID)
			}
			assert.Equal(t, tc.wantIDs, ids) // order preserved
		})
	}
}

func TestFilterDoesNotMutateInput(t *testing.T) {
	invoices := testInvoices()
	_ = Filter(invoices, models.InvoiceStatusPending, "usage")
	require.Len(t, invoices, 4)
	assert.Equal(t, uint(1), invoices[0].ID)
}

func TestSelectionToggle(t *testing.T) {
	sel := NewSelection()
	assert.Zero(t, sel.Len())

	sel.Toggle(2)
	assert.True(t, sel.Contains(2))
	sel.Toggle(2)
	assert.False(t, sel.Contains(2))
	assert.Zero(t, sel.Len())
}

func TestSelectAllPendingExactSubset(t *testing.T) {
	invoices := testInvoices()
	sel := NewSelection()

	// Pre-existing picks must be replaced, including non-pending ones.
	sel.Toggle(1)
	sel.Toggle(4)

	sel.SelectAllPending(invoices)

	assert.Equal(t, []uint{2, 3}, sel.IDs())
	assert.False(t, sel.Contains(1))
	assert.False(t, sel.Contains(4))

	// Select-all over a filtered view only considers that view.
	filtered := Filter(invoices, StatusAll, "disputed")
	sel.SelectAllPending(filtered)
	assert.Equal(t, []uint{3}, sel.IDs())

	sel.Clear()
	assert.Zero(t, sel.Len())
	assert.Empty(t, sel.IDs())
}
