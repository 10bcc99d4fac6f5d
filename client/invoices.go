package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"metering-backend/billing"
	"metering-backend/models"
)

type invoiceListResponse struct {
	Invoices []models.Invoice `json:"invoices"`
}

// ListInvoices fetches the current org's invoices, optionally filtered by
// status ("all" or "" disables the filter).
func (c *Client) ListInvoices(ctx context.Context, status string) ([]models.Invoice, error) {
	q := url.Values{}
	q.Set("org_id", c.orgID())
	if status != "" && status != billing.StatusAll {
		q.Set("status", status)
	}

	req, err := c.newRequest(ctx, http.MethodGet, "/api/invoices", q, nil)
	if err != nil {
		return nil, c.recordErr(err)
	}
	var out invoiceListResponse
	if err := c.do(req, &out); err != nil {
		return nil, c.recordErr(err)
	}
	c.recordErr(nil)
	return out.Invoices, nil
}

func (c *Client) GetInvoice(ctx context.Context, id uint) (models.Invoice, error) {
	q := url.Values{}
	q.Set("org_id", c.orgID())
	req, err := c.newRequest(ctx, http.MethodGet, fmt.Sprintf("/api/invoices/%d", id), q, nil)
	if err != nil {
		return models.Invoice{}, c.recordErr(err)
	}
	var inv models.Invoice
	if err := c.do(req, &inv); err != nil {
		return models.Invoice{}, c.recordErr(err)
	}
	c.recordErr(nil)
	return inv, nil
}

type analyticsResponse struct {
	Summary billing.Summary `json:"summary"`
}

// GetAnalytics fetches the dashboard summary for the current org.
func (c *Client) GetAnalytics(ctx context.Context) (billing.Summary, error) {
	q := url.Values{}
	q.Set("org_id", c.orgID())
	req, err := c.newRequest(ctx, http.MethodGet, "/api/invoices/analytics", q, nil)
	if err != nil {
		return billing.Summary{}, c.recordErr(err)
	}
	var out analyticsResponse
	if err := c.do(req, &out); err != nil {
		return billing.Summary{}, c.recordErr(err)
	}
	c.recordErr(nil)
	return out.Summary, nil
}

// GenerateMonthlyInvoice creates the invoice for the given billing month. The
// error is both returned and recorded on LastError, and a second call while
// one is running fails fast with ErrInFlight.
func (c *Client) GenerateMonthlyInvoice(ctx context.Context, month, year int) (models.Invoice, error) {
	if err := c.guard.begin("generate"); err != nil {
		return models.Invoice{}, err
	}
	defer c.guard.end("generate")

	q := url.Values{}
	q.Set("org_id", c.orgID())
	q.Set("month", strconv.Itoa(month))
	q.Set("year", strconv.Itoa(year))

	req, err := c.newRequest(ctx, http.MethodPost, "/api/invoices/generate/monthly", q, nil)
	if err != nil {
		return models.Invoice{}, c.recordErr(err)
	}
	var inv models.Invoice
	if err := c.do(req, &inv); err != nil {
		return models.Invoice{}, c.recordErr(err)
	}
	c.recordErr(nil)
	return inv, nil
}

type payResponse struct {
	Invoice models.Invoice `json:"invoice"`
}

// PayInvoice records a manual payment dated now and returns the refreshed
// invoice, so a caller holding the detail view can replace it directly instead
// of re-fetching.
func (c *Client) PayInvoice(ctx context.Context, id uint) (models.Invoice, error) {
	body := map[string]any{
		"payment_method": "manual",
		"payment_date":   time.Now().UTC(),
	}
	q := url.Values{}
	q.Set("org_id", c.orgID())
	req, err := c.newRequest(ctx, http.MethodPost, fmt.Sprintf("/api/invoices/%d/pay", id), q, body)
	if err != nil {
		return models.Invoice{}, c.recordErr(err)
	}
	var out payResponse
	if err := c.do(req, &out); err != nil {
		return models.Invoice{}, c.recordErr(err)
	}
	c.recordErr(nil)
	return out.Invoice, nil
}

// BulkPayInvoices pays each id concurrently and reports failures per id. All
// requests run to completion; a failed item never aborts the rest.
func (c *Client) BulkPayInvoices(ctx context.Context, ids []uint) (paid []uint, failed map[uint]error) {
	failed = make(map[uint]error)

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)

	for _, id := range ids {
		id := id
		g.Go(func() error {
			_, err := c.PayInvoice(ctx, id)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed[id] = err
			} else {
				paid = append(paid, id)
			}
			return nil // collected, not propagated
		})
	}
	_ = g.Wait()
	return paid, failed
}

// DownloadPDF fetches the invoice PDF into dir as invoice_{number}.pdf,
// writing through a temp file that is always removed on failure. Returns the
// final path.
func (c *Client) DownloadPDF(ctx context.Context, id uint, invoiceNumber, dir string) (string, error) {
	q := url.Values{}
	q.Set("org_id", c.orgID())
	req, err := c.newRequest(ctx, http.MethodGet, fmt.Sprintf("/api/invoices/%d/pdf", id), q, nil)
	if err != nil {
		return "", c.recordErr(err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", c.recordErr(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", c.recordErr(&APIError{StatusCode: resp.StatusCode, Message: "PDF download failed"})
	}

	tmp, err := os.CreateTemp(dir, "invoice-*.pdf.tmp")
	if err != nil {
		return "", c.recordErr(err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return "", c.recordErr(err)
	}
	if err := tmp.Close(); err != nil {
		return "", c.recordErr(err)
	}

	final := filepath.Join(dir, fmt.Sprintf("invoice_%s.pdf", invoiceNumber))
	if err := os.Rename(tmpName, final); err != nil {
		return "", c.recordErr(err)
	}
	c.recordErr(nil)
	return final, nil
}
