package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metering-backend/models"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *Session) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	session := &Session{CurrentOrgID: "org-42", path: filepath.Join(t.TempDir(), "session.json")}
	c := New(srv.URL, WithSession(session), WithHTTPClient(srv.Client()))
	c.SetToken("test-token")
	return c, session
}

func TestListInvoicesSendsAuthAndOrgScope(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "/api/invoices", r.URL.Path)
		assert.Equal(t, "org-42", r.URL.Query().Get("org_id"))
		assert.Equal(t, "pending", r.URL.Query().Get("status"))

		json.NewEncoder(w).Encode(map[string]any{
			"invoices": []models.Invoice{
				{ID: 1, InvoiceNumber: "INV-202501-org-42", Status: "pending", TotalAmount: 120},
			},
		})
	})
	c, _ := newTestClient(t, handler)

	invoices, err := c.ListInvoices(context.Background(), "pending")
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, uint(1), invoices[0].ID)
	assert.Empty(t, c.LastError())
}

func TestListInvoicesSurfacesBackendMessage(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"message": "organization scope missing"})
	})
	c, _ := newTestClient(t, handler)

	_, err := c.ListInvoices(context.Background(), "")
	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "organization scope missing", apiErr.Message)
	assert.Contains(t, c.LastError(), "organization scope missing")
}

func TestPayInvoiceReturnsRefreshedDetail(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/invoices/9/pay", r.URL.Path)
		assert.Equal(t, "org-42", r.URL.Query().Get("org_id"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "manual", body["payment_method"])
		assert.NotEmpty(t, body["payment_date"])

		json.NewEncoder(w).Encode(map[string]any{
			"invoice": models.Invoice{ID: 9, Status: models.InvoiceStatusPaid, PaymentMethod: "manual"},
		})
	})
	c, _ := newTestClient(t, handler)

	inv, err := c.PayInvoice(context.Background(), 9)
	require.NoError(t, err)
	// The caller's detail view swaps in this invoice: never stale after its own mutation.
	assert.Equal(t, models.InvoiceStatusPaid, inv.Status)
}

func TestBulkPayCollectsPerItemResults(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/2/") {
			w.WriteHeader(http.StatusConflict)
			json.NewEncoder(w).Encode(map[string]string{"message": "Invoice already paid"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"invoice": models.Invoice{Status: models.InvoiceStatusPaid},
		})
	})
	c, _ := newTestClient(t, handler)

	paid, failed := c.BulkPayInvoices(context.Background(), []uint{1, 2, 3})

	sort.Slice(paid, func(i, j int) bool { return paid[i] < paid[j] })
	assert.Equal(t, []uint{1, 3}, paid)
	require.Len(t, failed, 1)
	assert.ErrorContains(t, failed[2], "Invoice already paid")
}

func TestDownloadPDF(t *testing.T) {
	pdf := []byte("%PDF-1.4 fake")
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/invoices/5/pdf", r.URL.Path)
		w.Header().Set("Content-Type", "application/pdf")
		w.Write(pdf)
	})
	c, _ := newTestClient(t, handler)

	dir := t.TempDir()
	path, err := c.DownloadPDF(context.Background(), 5, "INV-202506-org-42", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "invoice_INV-202506-org-42.pdf"), path)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, pdf, got)

	// The temp file must be gone: only the final artifact remains.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "invoice_INV-202506-org-42.pdf", entries[0].Name())
}

func TestDownloadPDFFailureLeavesNothingBehind(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	c, _ := newTestClient(t, handler)

	dir := t.TempDir()
	_, err := c.DownloadPDF(context.Background(), 5, "INV-X", dir)
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestGenerateMonthlyInFlightGuard(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case started <- struct{}{}:
		default:
		}
		<-release // reads return immediately once closed
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(models.Invoice{ID: 11, Status: models.InvoiceStatusPending})
	})
	c, _ := newTestClient(t, handler)

	done := make(chan error, 1)
	go func() {
		_, err := c.GenerateMonthlyInvoice(context.Background(), 6, 2025)
		done <- err
	}()
	<-started

	// Second trigger while the first is still running must refuse, not duplicate.
	_, err := c.GenerateMonthlyInvoice(context.Background(), 6, 2025)
	assert.ErrorIs(t, err, ErrInFlight)

	close(release)
	require.NoError(t, <-done)

	// After completion the action is free again.
	_, err = c.GenerateMonthlyInvoice(context.Background(), 7, 2025)
	require.NoError(t, err)
}

func TestGenerateMonthlyRecordsAndReturnsError(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"message": "Invoice for this month already exists"})
	})
	c, _ := newTestClient(t, handler)

	_, err := c.GenerateMonthlyInvoice(context.Background(), 6, 2025)
	require.Error(t, err)
	// Dual-channel: the caller gets the error AND it is recorded for banners.
	assert.Contains(t, c.LastError(), "already exists")
}

func TestSessionPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "session.json")

	s, err := LoadSession(path)
	require.NoError(t, err)
	assert.Empty(t, s.CurrentOrgID) // missing file is a fresh session

	require.NoError(t, s.SwitchOrg("org-99"))

	restored, err := LoadSession(path)
	require.NoError(t, err)
	assert.Equal(t, "org-99", restored.CurrentOrgID)
	assert.True(t, restored.SidebarExpanded)
}

func TestLoginInstallsTokenAndOrg(t *testing.T) {
	var gotAuth string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			json.NewEncoder(w).Encode(map[string]string{"token": "fresh-token", "org_id": "org-7"})
		case "/api/organizations":
			gotAuth = r.Header.Get("Authorization")
			json.NewEncoder(w).Encode(map[string]any{"organizations": []models.Organization{}})
		default:
			http.NotFound(w, r)
		}
	})

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	session := &Session{path: filepath.Join(t.TempDir(), "session.json")}
	c := New(srv.URL, WithSession(session))

	require.NoError(t, c.Login(context.Background(), "a@b.co", "hunter22"))
	assert.Equal(t, "org-7", session.CurrentOrgID)

	// Subsequent requests carry the fresh token.
	_, err := c.ListOrganizations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer fresh-token", gotAuth)
}
