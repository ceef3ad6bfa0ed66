package repository

import (
	"context"
	"time"

	"taskpoints-service/internal/apperr"
	"taskpoints-service/internal/model"

	"gorm.io/gorm"
)

type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository returns a gorm-backed TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) CreateAssigned(ctx context.Context, task *model.Task) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(task).Error; err != nil {
			return err
		}
		// Assignment flips the owner to busy and stamps the assignment time
		return tx.Model(&model.UserProfile{}).
			Where("uid = ?", task.OwnerUID).
			Updates(map[string]interface{}{
				"presence":         model.PresenceBusy,
				"last_assigned_at": task.CreatedAt,
			}).Error
	})
	if err != nil {
		return backendError(err)
	}
	return nil
}

func (r *taskRepository) ByID(ctx context.Context, companyID, ownerUID, taskID string) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).
		Where("id = ? AND company_id = ? AND owner_uid = ?", taskID, companyID, ownerUID).
		First(&task).Error
	if err != nil {
		return nil, mapLookupError(err, "task not found")
	}
	return &task, nil
}

func (r *taskRepository) ListByOwner(ctx context.Context, companyID, ownerUID string) ([]model.Task, error) {
	var tasks []model.Task
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND owner_uid = ?", companyID, ownerUID).
		Order("created_at DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, backendError(err)
	}
	return tasks, nil
}

func (r *taskRepository) SubmitProof(ctx context.Context, companyID, ownerUID, taskID, proofURL, proofType string, completedAt time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Conditional write: only tasks still awaiting proof move forward
		res := tx.Model(&model.Task{}).
			Where("id = ? AND company_id = ? AND owner_uid = ? AND status IN ?",
				taskID, companyID, ownerUID,
				[]string{model.TaskAssigned, model.TaskRejected}).
			Updates(map[string]interface{}{
				"status":       model.TaskVerificationPending,
				"proof_url":    proofURL,
				"proof_type":   proofType,
				"completed_at": completedAt,
			})
		if res.Error != nil {
			return backendError(res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.New(apperr.Conflict, "task is not awaiting proof")
		}

		// Pending count keeps managers aware of unverified work
		return tx.Model(&model.UserProfile{}).
			Where("uid = ?", ownerUID).
			UpdateColumn("pending_task_count", gorm.Expr("pending_task_count + 1")).Error
	})
}

func (r *taskRepository) Decide(ctx context.Context, d Decision) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":      d.Verdict,
			"verified_at": d.VerifiedAt,
			"verified_by": d.VerifiedBy,
		}
		if d.Verdict == model.TaskRejected {
			updates["rejection_message"] = d.RejectionMessage
		}

		// The status guard makes the decision at-most-once: a concurrent
		// verifier finds zero rows and never reaches the point increments.
		res := tx.Model(&model.Task{}).
			Where("id = ? AND company_id = ? AND owner_uid = ? AND status = ?",
				d.TaskID, d.CompanyID, d.OwnerUID, model.TaskVerificationPending).
			Updates(updates)
		if res.Error != nil {
			return backendError(res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.New(apperr.Conflict, "task is not awaiting verification")
		}

		ownerUpdates := map[string]interface{}{
			"pending_task_count": gorm.Expr("pending_task_count - 1"),
		}
		if d.Verdict == model.TaskVerified {
			ownerUpdates["points_total_earned"] = gorm.Expr("points_total_earned + ?", d.Points)
			ownerUpdates["points_current_balance"] = gorm.Expr("points_current_balance + ?", d.Points)
		}

		if err := tx.Model(&model.UserProfile{}).
			Where("uid = ?", d.OwnerUID).
			UpdateColumns(ownerUpdates).Error; err != nil {
			return backendError(err)
		}
		return nil
	})
}
