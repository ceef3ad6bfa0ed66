package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"taskpoints-service/internal/apperr"
	"taskpoints-service/internal/model"

	"gorm.io/gorm"
)

type joinRequestRepository struct {
	db *gorm.DB
}

// NewJoinRequestRepository returns a gorm-backed JoinRequestRepository
func NewJoinRequestRepository(db *gorm.DB) JoinRequestRepository {
	return &joinRequestRepository{db: db}
}

func (r *joinRequestRepository) Create(ctx context.Context, req *model.JoinRequest) error {
	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		return backendError(err)
	}
	return nil
}

func (r *joinRequestRepository) ByID(ctx context.Context, id string) (*model.JoinRequest, error) {
	var req model.JoinRequest
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&req).Error; err != nil {
		return nil, mapLookupError(err, "join request not found")
	}
	return &req, nil
}

func (r *joinRequestRepository) PendingByApprover(ctx context.Context, approverEmail string) ([]model.JoinRequest, error) {
	var requests []model.JoinRequest
	// Approver emails are lower-cased at write time, so this stays an
	// index-friendly equality match.
	err := r.db.WithContext(ctx).
		Where("approver_email = ? AND status = ?", strings.ToLower(approverEmail), model.JoinPending).
		Order("created_at").
		Find(&requests).Error
	if err != nil {
		return nil, backendError(err)
	}
	return requests, nil
}

func (r *joinRequestRepository) PendingByEmail(ctx context.Context, email, companySlug string) (*model.JoinRequest, error) {
	var req model.JoinRequest
	err := r.db.WithContext(ctx).
		Where("email = ? AND company_slug = ? AND status = ?",
			strings.ToLower(email), companySlug, model.JoinPending).
		First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, backendError(err)
	}
	return &req, nil
}

func (r *joinRequestRepository) SetStatus(ctx context.Context, id, status string, at time.Time) error {
	// Guarded write: only a PENDING request can be decided, so a second
	// approver's decision finds zero rows.
	res := r.db.WithContext(ctx).Model(&model.JoinRequest{}).
		Where("id = ? AND status = ?", id, model.JoinPending).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": at,
		})
	if res.Error != nil {
		return backendError(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.New(apperr.Conflict, "join request already decided")
	}
	return nil
}
