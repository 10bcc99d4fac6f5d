package models

import (
	"time"

	"gorm.io/datatypes"
)

// Invoice statuses. Transitions: pending/processing/overdue -> paid via a
// payment; pending -> cancelled; anything else is backend-rejected.
const (
	InvoiceStatusPending    = "pending"
	InvoiceStatusPaid       = "paid"
	InvoiceStatusOverdue    = "overdue"
	InvoiceStatusCancelled  = "cancelled"
	InvoiceStatusProcessing = "processing"
	InvoiceStatusFailed     = "failed"
)

// Line-item billing types.
const (
	ItemTypeSubscription = "subscription"
	ItemTypeUsage        = "usage"
	ItemTypeOutcome      = "outcome"
	ItemTypeWorkflow     = "workflow"
)

// Invoice is the current state of a billing document. Invoices are created by
// monthly generation and mutated only through status transitions; they are
// never deleted.
type Invoice struct {
	ID uint `json:"id" gorm:"primaryKey"`
	// Invoice numbers are unique per org, not globally: the generated number
	// embeds only a prefix of the org id, so two orgs may collide on it.
	InvoiceNumber string `json:"invoice_number" gorm:"uniqueIndex:idx_invoices_org_number,priority:2"`
	OrgID         string `json:"org_id" gorm:"index;not null;uniqueIndex:idx_invoices_org_number,priority:1"`

	IssueDate   time.Time  `json:"issue_date"`
	DueDate     time.Time  `json:"due_date"`
	PaymentDate *time.Time `json:"payment_date"`

	// total_amount = amount + tax_amount by convention; never validated here.
	Amount      float64 `json:"amount" gorm:"type:numeric(12,2)"`
	TaxAmount   float64 `json:"tax_amount" gorm:"type:numeric(12,2)"`
	TotalAmount float64 `json:"total_amount" gorm:"type:numeric(12,2)"`
	Currency    string  `json:"currency" gorm:"type:VARCHAR(3);default:'USD'"`

	Status        string `json:"status" gorm:"type:VARCHAR(20);index;default:'pending'"`
	PaymentMethod string `json:"payment_method,omitempty"`
	Notes         string `json:"notes"`

	LineItems []InvoiceLineItem `json:"line_items" gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"created_at"`
}

// InvoiceLineItem is one billable entry, owned by its invoice. Metadata holds
// the item_type-specific fields (see billing.DecodeMetadata); unknown keys are
// tolerated and ignored.
type InvoiceLineItem struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	InvoiceID   uint    `json:"-" gorm:"index"` // fast join
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price" gorm:"type:numeric(12,2)"`
	Amount      float64 `json:"amount" gorm:"type:numeric(12,2)"`
	ItemType    string  `json:"item_type" gorm:"type:VARCHAR(20);index"`

	ReferenceID   string `json:"reference_id,omitempty"`
	ReferenceType string `json:"reference_type,omitempty"`

	Metadata datatypes.JSON `json:"metadata" gorm:"type:jsonb"`
}

// Payment is the record behind a paid invoice; kept even if the invoice is
// later disputed.
type Payment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	InvoiceID uint      `json:"invoice_id" gorm:"index:idx_payments_invoice_paid_at,priority:1"`
	Amount    float64   `json:"amount" gorm:"type:numeric(12,2)"`
	Method    string    `json:"method"`
	Reference string    `json:"reference"`
	PaidAt    time.Time `json:"paid_at" gorm:"index:idx_payments_invoice_paid_at,priority:2"`
	CreatedAt time.Time `json:"created_at"`
}
