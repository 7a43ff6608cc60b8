package models

type AssetType struct {
	ID          int     `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"`
	CodePrefix  string  `json:"code_prefix" db:"code_prefix"`
	Description *string `json:"description,omitempty" db:"description"`
}

type AssetMake struct {
	ID          int     `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"`
	AssetTypeID *int    `json:"asset_type_id" db:"asset_type_id"`
	TypeName    *string `json:"asset_type_name,omitempty" db:"type_name"`
}

type AssetModel struct {
	ID          int     `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"`
	AssetMakeID *int    `json:"asset_make_id" db:"asset_make_id"`
	MakeName    *string `json:"asset_make_name,omitempty" db:"make_name"`
}

func (t *AssetType) CreateLogView() AuditLog {
	return AuditLog{ResourceID: t.ID, ResourceType: "asset_type"}
}

func (m *AssetMake) CreateLogView() AuditLog {
	return AuditLog{ResourceID: m.ID, ResourceType: "asset_make"}
}

func (m *AssetModel) CreateLogView() AuditLog {
	return AuditLog{ResourceID: m.ID, ResourceType: "asset_model"}
}

type AssetTypeRequest struct {
	Name        string  `json:"name" binding:"required,max=128"`
	CodePrefix  string  `json:"code_prefix" binding:"omitempty,alphanum,max=3"`
	Description *string `json:"description"`
}

type AssetMakeRequest struct {
	Name        string `json:"name" binding:"required,max=128"`
	AssetTypeID *int   `json:"asset_type_id" binding:"omitempty,min=1"`
}

type AssetModelRequest struct {
	Name        string `json:"name" binding:"required,max=128"`
	AssetMakeID *int   `json:"asset_make_id" binding:"omitempty,min=1"`
}
