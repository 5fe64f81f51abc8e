package models

import "slices"

const (
	RoleMasterAdmin = "master-admin"
	RoleUser        = "user"
)

// Tenant is stored under tenant:{Name}. ID is the foreign key used by config and analytics records.
type Tenant struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	DisplayName string   `json:"displayName"`
	Users       []string `json:"users"`
	CreatedAt   int64    `json:"createdAt,omitempty"`
}

// User is stored under user:{Email}. Tenants[0] is the default active tenant.
type User struct {
	ID        string   `json:"id"`
	Email     string   `json:"email"`
	Tenants   []string `json:"tenants"`
	Role      string   `json:"role"`
	CreatedAt int64    `json:"createdAt,omitempty"`
}

func (u *User) IsMasterAdmin() bool {
	return u != nil && u.Role == RoleMasterAdmin
}

func (u *User) MemberOf(tenantID string) bool {
	return slices.Contains(u.Tenants, tenantID)
}

// ActiveTenant returns the first tenant id, or "" for a user without memberships.
func (u *User) ActiveTenant() string {
	if len(u.Tenants) == 0 {
		return ""
	}
	return u.Tenants[0]
}

func (t *Tenant) HasUser(userID string) bool {
	return slices.Contains(t.Users, userID)
}
