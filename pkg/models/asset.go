package models

import (
	"time"

	"itinventory/pkg/metadata"

	"github.com/shopspring/decimal"
)

type Reference struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type PurchaseOrderReference struct {
	ID       int    `json:"id"`
	PONumber string `json:"po_number"`
}

type UserReference struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Fullname string `json:"fullname"`
}

type Asset struct {
	ID                     int                     `json:"id"`
	Name                   string                  `json:"name,omitempty"`
	SerialNumber           string                  `json:"serial_number,omitempty"`
	ITAssetCode            string                  `json:"it_asset_code"`
	MacAddress             string                  `json:"mac_address,omitempty"`
	IPAddress              string                  `json:"ip_address,omitempty"`
	Status                 metadata.Status         `json:"status"`
	Type                   *Reference              `json:"asset_type,omitempty"`
	Make                   *Reference              `json:"asset_make,omitempty"`
	Model                  *Reference              `json:"asset_model,omitempty"`
	OS                     *Reference              `json:"os,omitempty"`
	OSVersion              *Reference              `json:"os_version,omitempty"`
	Vendor                 *Reference              `json:"vendor,omitempty"`
	ExtendedWarrantyVendor *Reference              `json:"extended_warranty_vendor,omitempty"`
	PurchaseOrder          *PurchaseOrderReference `json:"purchase_order,omitempty"`
	CurrentUser            *UserReference          `json:"current_user,omitempty"`
	PurchaseDate           *time.Time              `json:"purchase_date,omitempty"`
	WarrantyExpiry         *time.Time              `json:"warranty_expiry,omitempty"`
	ExtendedWarrantyExpiry *time.Time              `json:"extended_warranty_expiry,omitempty"`
	PurchaseCost           decimal.NullDecimal     `json:"purchase_cost"`
	Notes                  string                  `json:"notes,omitempty"`
	Deleted                bool                    `json:"deleted"`
	Tags                   []AssetTag              `json:"tags,omitempty"`
	CreatedAt              time.Time               `json:"created_at"`
	UpdatedAt              time.Time               `json:"updated_at"`
}

// AssetSummary is the short form used in previews of destructive operations.
type AssetSummary struct {
	ID           int             `json:"id" db:"id"`
	SerialNumber *string         `json:"serial_number,omitempty" db:"serial_number"`
	ITAssetCode  *string         `json:"it_asset_code,omitempty" db:"it_asset_code"`
	Status       metadata.Status `json:"status" db:"status"`
}

type FlatAssetRecord struct {
	ID                     int                 `db:"asset_id"`
	Name                   *string             `db:"name"`
	SerialNumber           *string             `db:"serial_number"`
	ITAssetCode            *string             `db:"it_asset_code"`
	MacAddress             *string             `db:"mac_address"`
	IPAddress              *string             `db:"ip_address"`
	Status                 string              `db:"status"`
	TypeID                 *int                `db:"type_id"`
	TypeName               *string             `db:"type_name"`
	MakeID                 *int                `db:"make_id"`
	MakeName               *string             `db:"make_name"`
	ModelID                *int                `db:"model_id"`
	ModelName              *string             `db:"model_name"`
	OSID                   *int                `db:"os_id"`
	OSName                 *string             `db:"os_name"`
	OSVersionID            *int                `db:"os_version_id"`
	OSVersionName          *string             `db:"os_version_name"`
	VendorID               *int                `db:"vendor_id"`
	VendorName             *string             `db:"vendor_name"`
	ExtVendorID            *int                `db:"ext_vendor_id"`
	ExtVendorName          *string             `db:"ext_vendor_name"`
	PurchaseOrderID        *int                `db:"po_id"`
	PONumber               *string             `db:"po_number"`
	UserID                 *int                `db:"user_id"`
	Username               *string             `db:"user_username"`
	UserFullname           *string             `db:"user_fullname"`
	PurchaseDate           *time.Time          `db:"purchase_date"`
	WarrantyExpiry         *time.Time          `db:"warranty_expiry"`
	ExtendedWarrantyExpiry *time.Time          `db:"extended_warranty_expiry"`
	PurchaseCost           decimal.NullDecimal `db:"purchase_cost"`
	Notes                  *string             `db:"notes"`
	Deleted                bool                `db:"deleted"`
	CreatedAt              time.Time           `db:"created_at"`
	UpdatedAt              time.Time           `db:"updated_at"`
}

func (fa *FlatAssetRecord) TransformToAsset() Asset {
	asset := Asset{
		ID:                     fa.ID,
		Name:                   deref(fa.Name),
		SerialNumber:           deref(fa.SerialNumber),
		ITAssetCode:            deref(fa.ITAssetCode),
		MacAddress:             deref(fa.MacAddress),
		IPAddress:              deref(fa.IPAddress),
		Status:                 metadata.Status(fa.Status),
		Type:                   reference(fa.TypeID, fa.TypeName),
		Make:                   reference(fa.MakeID, fa.MakeName),
		Model:                  reference(fa.ModelID, fa.ModelName),
		OS:                     reference(fa.OSID, fa.OSName),
		OSVersion:              reference(fa.OSVersionID, fa.OSVersionName),
		Vendor:                 reference(fa.VendorID, fa.VendorName),
		ExtendedWarrantyVendor: reference(fa.ExtVendorID, fa.ExtVendorName),
		PurchaseDate:           fa.PurchaseDate,
		WarrantyExpiry:         fa.WarrantyExpiry,
		ExtendedWarrantyExpiry: fa.ExtendedWarrantyExpiry,
		PurchaseCost:           fa.PurchaseCost,
		Notes:                  deref(fa.Notes),
		Deleted:                fa.Deleted,
		CreatedAt:              fa.CreatedAt,
		UpdatedAt:              fa.UpdatedAt,
	}

	if fa.PurchaseOrderID != nil {
		asset.PurchaseOrder = &PurchaseOrderReference{ID: *fa.PurchaseOrderID, PONumber: deref(fa.PONumber)}
	}
	if fa.UserID != nil {
		asset.CurrentUser = &UserReference{ID: *fa.UserID, Username: deref(fa.Username), Fullname: deref(fa.UserFullname)}
	}

	return asset
}

func (a *Asset) CreateLogView() AuditLog {
	return AuditLog{
		ResourceID:   a.ID,
		ResourceType: "asset",
	}
}

func reference(id *int, name *string) *Reference {
	if id == nil {
		return nil
	}
	return &Reference{ID: *id, Name: deref(name)}
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
