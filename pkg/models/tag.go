package models

import "time"

type AssetTag struct {
	ID    int     `json:"id" db:"id"`
	Name  string  `json:"name" db:"name"`
	Color *string `json:"color,omitempty" db:"color"`
}

type AssetTagAssignment struct {
	ID         int       `json:"id" db:"id"`
	AssetID    int       `json:"asset_id" db:"asset_id"`
	TagID      int       `json:"tag_id" db:"tag_id"`
	AssignedAt time.Time `json:"assigned_at" db:"assigned_at"`
}

func (t *AssetTag) CreateLogView() AuditLog {
	return AuditLog{ResourceID: t.ID, ResourceType: "asset_tag"}
}
