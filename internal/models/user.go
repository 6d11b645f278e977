package models

import (
	"time"

	id "atelier/pkg/domain"
)

// UserStatus is mutated only through the user-admin service.
type UserStatus string

const (
	UserStatusPending  UserStatus = "PENDING"
	UserStatusActive   UserStatus = "ACTIVE"
	UserStatusDisabled UserStatus = "DISABLED"
)

var userStatuses = []UserStatus{UserStatusPending, UserStatusActive, UserStatusDisabled}

func ParseUserStatus(s string) (UserStatus, error) {
	return parseEnum("user_status", s, userStatuses)
}

// User is an account. Email is unique and stored lowercased.
// Users are never hard-deleted.
type User struct {
	ID        id.UserID  `json:"id"`
	Email     string     `json:"email"`
	Status    UserStatus `json:"status"`
	Roles     []string   `json:"roles,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Role names a permission bundle held by users.
type Role struct {
	ID          id.RoleID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
}

const (
	RoleAdmin      = "admin"
	RoleStaff      = "staff"
	RoleInstructor = "instructor"
)

// KnownRoles lists the roles the platform ships with.
var KnownRoles = []Role{
	{ID: "role-admin", Name: RoleAdmin, Description: "full administrative access"},
	{ID: "role-staff", Name: RoleStaff, Description: "event operations"},
	{ID: "role-instructor", Name: RoleInstructor, Description: "delivers events"},
}
