package model

import (
	"strings"
	"time"
)

// Roles a profile can hold within a tenant
const (
	RoleEmployee = "employee"
	RoleManager  = "manager"
	RoleAdmin    = "admin"
)

// Tenant represents an isolated company workspace. The ID is a human-chosen
// slug derived from the display name, and the two access codes are the shared
// secrets members use to self-assign a role when joining.
type Tenant struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(100)"`
	Name         string    `json:"name" gorm:"type:varchar(100);not null"`
	ManagerCode  string    `json:"manager_code" gorm:"type:varchar(64);not null"`
	EmployeeCode string    `json:"employee_code" gorm:"type:varchar(64);not null"`
	CreatedAt    time.Time `json:"created_at"`
}

// Slugify derives a tenant id from a display name: lower-cased, trimmed,
// runs of non-alphanumeric characters collapsed to single hyphens.
func Slugify(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))

	var b strings.Builder
	pendingHyphen := false
	for _, r := range name {
		alnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !alnum {
			pendingHyphen = b.Len() > 0
			continue
		}
		if pendingHyphen {
			b.WriteByte('-')
			pendingHyphen = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
