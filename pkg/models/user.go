package models

import (
	"time"

	"itinventory/pkg/roles"
)

type User struct {
	ID           int        `json:"id" db:"id"`
	Username     string     `json:"username" db:"username"`
	Fullname     string     `json:"fullname" db:"fullname"`
	Email        *string    `json:"email,omitempty" db:"email"`
	Department   *string    `json:"department,omitempty" db:"department"`
	PasswordHash string     `json:"-" db:"password_hash"`
	Role         roles.Role `json:"role" db:"role"`
	Active       bool       `json:"active" db:"active"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

type CreateUserRequest struct {
	Username   string     `json:"username" binding:"required,alphanum,min=3,max=50"`
	Password   string     `json:"password" binding:"required,min=6"`
	Fullname   string     `json:"fullname" binding:"required"`
	Email      *string    `json:"email" binding:"omitempty,email"`
	Department *string    `json:"department"`
	Role       roles.Role `json:"role" binding:"required,oneof=user moderator admin"`
}

type UpdateUserRequest struct {
	Fullname   *string     `json:"fullname"`
	Email      *string     `json:"email" binding:"omitempty,email"`
	Department *string     `json:"department"`
	Password   *string     `json:"password"`
	Role       *roles.Role `json:"role" binding:"omitempty,oneof=user moderator admin"`
	Active     *bool       `json:"active"`
}

type UserChanges struct {
	Fullname     *string
	Email        *string
	Department   *string
	PasswordHash *string
	Role         *string
	Active       *bool
}

func (c *UserChanges) HasChanges() bool {
	return c.Fullname != nil || c.Email != nil || c.Department != nil ||
		c.PasswordHash != nil || c.Role != nil || c.Active != nil
}

func (u *User) CreateLogView() AuditLog {
	return AuditLog{ResourceID: u.ID, ResourceType: "user"}
}
