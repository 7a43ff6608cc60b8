package assets

import (
	"strings"

	"github.com/doug-martin/goqu/v9"
)

// AssetListQuery holds the list filters bound from the query string.
type AssetListQuery struct {
	Status          string `form:"status" binding:"omitempty,asset_status"`
	TypeID          *int   `form:"asset_type_id" binding:"omitempty,min=1"`
	MakeID          *int   `form:"asset_make_id" binding:"omitempty,min=1"`
	ModelID         *int   `form:"asset_model_id" binding:"omitempty,min=1"`
	UserID          *int   `form:"current_user_id" binding:"omitempty,min=1"`
	PurchaseOrderID *int   `form:"purchase_order_id" binding:"omitempty,min=1"`
	VendorID        *int   `form:"vendor_id" binding:"omitempty,min=1"`
	IncludeDeleted  bool   `form:"include_deleted"`
}

var assetListAliases = map[string]string{
	"status":            "a.status",
	"asset_type_id":     "a.asset_type_id",
	"asset_make_id":     "a.asset_make_id",
	"asset_model_id":    "a.asset_model_id",
	"current_user_id":   "a.current_user_id",
	"purchase_order_id": "a.purchase_order_id",
	"vendor_id":         "a.vendor_id",
	"deleted":           "a.deleted",
}

func (q *AssetListQuery) BuildConditions(aliases map[string]string) goqu.Ex {
	conditions := goqu.Ex{}

	if q.Status != "" {
		conditions[aliases["status"]] = strings.ToUpper(q.Status)
	}
	if q.TypeID != nil {
		conditions[aliases["asset_type_id"]] = *q.TypeID
	}
	if q.MakeID != nil {
		conditions[aliases["asset_make_id"]] = *q.MakeID
	}
	if q.ModelID != nil {
		conditions[aliases["asset_model_id"]] = *q.ModelID
	}
	if q.UserID != nil {
		conditions[aliases["current_user_id"]] = *q.UserID
	}
	if q.PurchaseOrderID != nil {
		conditions[aliases["purchase_order_id"]] = *q.PurchaseOrderID
	}
	if q.VendorID != nil {
		conditions[aliases["vendor_id"]] = *q.VendorID
	}
	if !q.IncludeDeleted {
		conditions[aliases["deleted"]] = false
	}

	return conditions
}
