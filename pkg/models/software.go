package models

type OperatingSystem struct {
	ID   int    `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

type OSVersion struct {
	ID     int     `json:"id" db:"id"`
	Name   string  `json:"name" db:"name"`
	OSID   *int    `json:"os_id" db:"os_id"`
	OSName *string `json:"os_name,omitempty" db:"os_name"`
}

func (o *OperatingSystem) CreateLogView() AuditLog {
	return AuditLog{ResourceID: o.ID, ResourceType: "os"}
}

func (v *OSVersion) CreateLogView() AuditLog {
	return AuditLog{ResourceID: v.ID, ResourceType: "os_version"}
}

type OperatingSystemRequest struct {
	Name string `json:"name" binding:"required,max=128"`
}

type OSVersionRequest struct {
	Name string `json:"name" binding:"required,max=128"`
	OSID *int   `json:"os_id" binding:"omitempty,min=1"`
}
