package repository

import (
	"context"

	"taskpoints-service/internal/model"

	"gorm.io/gorm"
)

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository returns a gorm-backed MessageRepository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Append(ctx context.Context, msg *model.Message) error {
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return backendError(err)
	}
	return nil
}

func (r *messageRepository) Conversation(ctx context.Context, companyID, employeeID string) ([]model.Message, error) {
	var messages []model.Message
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND employee_id = ?", companyID, employeeID).
		Order("created_at").
		Find(&messages).Error
	if err != nil {
		return nil, backendError(err)
	}
	return messages, nil
}
