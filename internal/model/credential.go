package model

import (
	"time"
)

// Credential is the authentication identity: email, bcrypt hash and the
// stable uid that tenant profiles reference. PasswordResetRequired is set
// when an approver provisions the identity with a one-time password.
type Credential struct {
	UID                   string    `json:"uid" gorm:"primaryKey;type:varchar(64)"`
	Email                 string    `json:"email" gorm:"type:varchar(100);uniqueIndex;not null"`
	Password              string    `json:"-" gorm:"type:varchar(255)"`
	PasswordResetRequired bool      `json:"password_reset_required" gorm:"default:false"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}
