package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PurchaseOrder struct {
	ID            int                 `json:"id" db:"id"`
	PONumber      string              `json:"po_number" db:"po_number"`
	VendorID      *int                `json:"vendor_id" db:"vendor_id"`
	VendorName    *string             `json:"vendor_name,omitempty" db:"vendor_name"`
	OrderDate     *time.Time          `json:"order_date,omitempty" db:"order_date"`
	InvoiceNumber *string             `json:"invoice_number,omitempty" db:"invoice_number"`
	TotalAmount   decimal.NullDecimal `json:"total_amount" db:"total_amount"`
	Currency      *string             `json:"currency,omitempty" db:"currency"`
	Notes         *string             `json:"notes,omitempty" db:"notes"`
	CreatedAt     time.Time           `json:"created_at" db:"created_at"`
}

func (p *PurchaseOrder) CreateLogView() AuditLog {
	return AuditLog{
		ResourceID:   p.ID,
		ResourceType: "purchase_order",
	}
}

type PONumberMigration struct {
	OldPONumber     string `json:"old_po_number"`
	NewPONumber     string `json:"new_po_number"`
	PurchaseOrderID int    `json:"purchase_order_id"`
	AssetsUpdated   int    `json:"assets_updated"`
}

type PODeletionPreview struct {
	PurchaseOrderID      int            `json:"purchase_order_id"`
	PONumber             string         `json:"po_number"`
	AssetCount           int            `json:"asset_count"`
	Assets               []AssetSummary `json:"assets"`
	RequiresConfirmation bool           `json:"requires_confirmation"`
}

type PODeletionResult struct {
	PONumber      string `json:"po_number"`
	AssetsDeleted int    `json:"assets_deleted"`
}

type PurchaseOrderRequest struct {
	PONumber      string              `json:"po_number" binding:"required,po_number"`
	VendorID      *int                `json:"vendor_id" binding:"omitempty,min=1"`
	OrderDate     *time.Time          `json:"order_date"`
	InvoiceNumber *string             `json:"invoice_number"`
	TotalAmount   decimal.NullDecimal `json:"total_amount"`
	Currency      *string             `json:"currency" binding:"omitempty,len=3"`
	Notes         *string             `json:"notes"`
}

// UpdatePurchaseOrderRequest never touches the PO number; renumbering goes
// through the migration so dependent assets follow.
type UpdatePurchaseOrderRequest struct {
	VendorID      *int                `json:"vendor_id" binding:"omitempty,min=1"`
	OrderDate     *time.Time          `json:"order_date"`
	InvoiceNumber *string             `json:"invoice_number"`
	TotalAmount   decimal.NullDecimal `json:"total_amount"`
	Currency      *string             `json:"currency" binding:"omitempty,len=3"`
	Notes         *string             `json:"notes"`
}

type PONumberMigrationRequest struct {
	OldPONumber string `json:"old_po_number" binding:"required"`
	NewPONumber string `json:"new_po_number" binding:"required,po_number"`
}
