package models

import "time"

type Vendor struct {
	ID           int       `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	ContactName  *string   `json:"contact_name,omitempty" db:"contact_name"`
	ContactEmail *string   `json:"contact_email,omitempty" db:"contact_email"`
	Phone        *string   `json:"phone,omitempty" db:"phone"`
	Website      *string   `json:"website,omitempty" db:"website"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

func (v *Vendor) CreateLogView() AuditLog {
	return AuditLog{
		ResourceID:   v.ID,
		ResourceType: "vendor",
	}
}

type VendorRequest struct {
	Name         string  `json:"name" binding:"required,max=255"`
	ContactName  *string `json:"contact_name"`
	ContactEmail *string `json:"contact_email" binding:"omitempty,email"`
	Phone        *string `json:"phone" binding:"omitempty,max=64"`
	Website      *string `json:"website" binding:"omitempty,url"`
}
