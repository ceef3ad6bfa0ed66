package model

import (
	"time"
)

// Message belongs to the append-only conversation between an employee and
// their manager, keyed by (company, employee). The read flag is stored but
// drives no control flow.
type Message struct {
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(64)"`
	CompanyID  string    `json:"company_id" gorm:"type:varchar(100);index:idx_messages_conversation;not null"`
	EmployeeID string    `json:"employee_id" gorm:"type:varchar(64);index:idx_messages_conversation;not null"`
	SenderID   string    `json:"sender_id" gorm:"type:varchar(64);not null"`
	Text       string    `json:"text" gorm:"type:text;not null"`
	Read       bool      `json:"read" gorm:"default:false"`
	CreatedAt  time.Time `json:"created_at"`
}
