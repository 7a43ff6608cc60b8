package models

import "time"

type AssetStatusHistory struct {
	ID        int       `json:"id" db:"id"`
	AssetID   int       `json:"asset_id" db:"asset_id"`
	OldStatus *string   `json:"old_status,omitempty" db:"old_status"`
	NewStatus string    `json:"new_status" db:"new_status"`
	ChangedBy *int      `json:"changed_by,omitempty" db:"changed_by"`
	Reason    *string   `json:"reason,omitempty" db:"reason"`
	ChangedAt time.Time `json:"changed_at" db:"changed_at"`
}

type AssetAssignmentHistory struct {
	ID             int       `json:"id" db:"id"`
	AssetID        int       `json:"asset_id" db:"asset_id"`
	PreviousUserID *int      `json:"previous_user_id,omitempty" db:"previous_user_id"`
	UserID         *int      `json:"user_id,omitempty" db:"user_id"`
	AssignedBy     *int      `json:"assigned_by,omitempty" db:"assigned_by"`
	Notes          *string   `json:"notes,omitempty" db:"notes"`
	AssignedAt     time.Time `json:"assigned_at" db:"assigned_at"`
}
