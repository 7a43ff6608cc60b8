package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type AssetRequest struct {
	Name                     *string             `json:"name" binding:"omitempty,max=255"`
	SerialNumber             *string             `json:"serial_number"`
	ITAssetCode              *string             `json:"it_asset_code"`
	MacAddress               *string             `json:"mac_address"`
	IPAddress                *string             `json:"ip_address" binding:"omitempty,ip"`
	Status                   string              `json:"status" binding:"omitempty,asset_status"`
	AssetTypeID              *int                `json:"asset_type_id"`
	AssetMakeID              *int                `json:"asset_make_id"`
	AssetModelID             *int                `json:"asset_model_id"`
	OSID                     *int                `json:"os_id"`
	OSVersionID              *int                `json:"os_version_id"`
	VendorID                 *int                `json:"vendor_id"`
	ExtendedWarrantyVendorID *int                `json:"extended_warranty_vendor_id"`
	CurrentUserID            *int                `json:"current_user_id"`
	PONumber                 *string             `json:"po_number" binding:"omitempty,po_number"`
	PurchaseDate             *time.Time          `json:"purchase_date"`
	WarrantyExpiry           *time.Time          `json:"warranty_expiry"`
	ExtendedWarrantyExpiry   *time.Time          `json:"extended_warranty_expiry"`
	PurchaseCost             decimal.NullDecimal `json:"purchase_cost"`
	Notes                    *string             `json:"notes"`
	TagIDs                   []int               `json:"tag_ids"`
}

type BulkAssetRequest struct {
	Assets []AssetRequest `json:"assets" binding:"required,min=1,dive"`
}

// UpdateAssetRequest changes only the supplied fields. Status and the
// current user have dedicated operations because they are tracked in history.
type UpdateAssetRequest struct {
	Name                     *string             `json:"name" binding:"omitempty,max=255"`
	SerialNumber             *string             `json:"serial_number"`
	ITAssetCode              *string             `json:"it_asset_code"`
	MacAddress               *string             `json:"mac_address"`
	IPAddress                *string             `json:"ip_address" binding:"omitempty,ip"`
	AssetTypeID              *int                `json:"asset_type_id"`
	AssetMakeID              *int                `json:"asset_make_id"`
	AssetModelID             *int                `json:"asset_model_id"`
	OSID                     *int                `json:"os_id"`
	OSVersionID              *int                `json:"os_version_id"`
	VendorID                 *int                `json:"vendor_id"`
	ExtendedWarrantyVendorID *int                `json:"extended_warranty_vendor_id"`
	PONumber                 *string             `json:"po_number" binding:"omitempty,po_number"`
	PurchaseDate             *time.Time          `json:"purchase_date"`
	WarrantyExpiry           *time.Time          `json:"warranty_expiry"`
	ExtendedWarrantyExpiry   *time.Time          `json:"extended_warranty_expiry"`
	PurchaseCost             decimal.NullDecimal `json:"purchase_cost"`
	Notes                    *string             `json:"notes"`
}

// AsAssetRequest exposes the identifying and relational fields of an update
// to the same checks a creation goes through.
func (r UpdateAssetRequest) AsAssetRequest() AssetRequest {
	return AssetRequest{
		SerialNumber:             r.SerialNumber,
		ITAssetCode:              r.ITAssetCode,
		MacAddress:               r.MacAddress,
		AssetTypeID:              r.AssetTypeID,
		AssetMakeID:              r.AssetMakeID,
		AssetModelID:             r.AssetModelID,
		OSID:                     r.OSID,
		OSVersionID:              r.OSVersionID,
		VendorID:                 r.VendorID,
		ExtendedWarrantyVendorID: r.ExtendedWarrantyVendorID,
		PONumber:                 r.PONumber,
	}
}

type AssetStatusRequest struct {
	Status string  `json:"status" binding:"required,asset_status"`
	Reason *string `json:"reason"`
}

type AssetAssignmentRequest struct {
	UserID *int    `json:"user_id"`
	Notes  *string `json:"notes"`
}

type AssetTagsRequest struct {
	TagIDs []int `json:"tag_ids"`
}

type BulkAssetFailure struct {
	Index  int      `json:"index"`
	Errors []string `json:"errors"`
}

type BulkAssetResult struct {
	Created []Asset            `json:"created"`
	Failed  []BulkAssetFailure `json:"failed"`
}

// Trimmed returns the trimmed value, or "" for nil.
func Trimmed(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}
