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

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a gorm-backed UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) CreateCredential(ctx context.Context, cred *model.Credential) error {
	// Check if the email is already registered
	var existing model.Credential
	err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(cred.Email)).First(&existing).Error
	if err == nil {
		return apperr.New(apperr.Conflict, "email already registered")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return backendError(err)
	}

	cred.Email = strings.ToLower(cred.Email)
	if err := r.db.WithContext(ctx).Create(cred).Error; err != nil {
		return backendError(err)
	}
	return nil
}

func (r *userRepository) CredentialByEmail(ctx context.Context, email string) (*model.Credential, error) {
	var cred model.Credential
	if err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&cred).Error; err != nil {
		return nil, mapLookupError(err, "credential not found")
	}
	return &cred, nil
}

func (r *userRepository) CreateProfile(ctx context.Context, profile *model.UserProfile) error {
	// The uid is unique across all tenants, so an existing profile means the
	// identity already belongs to a company.
	var existing model.UserProfile
	err := r.db.WithContext(ctx).Where("uid = ?", profile.UID).First(&existing).Error
	if err == nil {
		return apperr.New(apperr.Conflict, "a profile already exists for this account")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return backendError(err)
	}

	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		return backendError(err)
	}
	return nil
}

func (r *userRepository) ProfileByUID(ctx context.Context, uid string) (*model.UserProfile, error) {
	var profile model.UserProfile
	if err := r.db.WithContext(ctx).Where("uid = ?", uid).First(&profile).Error; err != nil {
		return nil, mapLookupError(err, "profile not found")
	}
	return &profile, nil
}

func (r *userRepository) ProfilesByCompany(ctx context.Context, companyID string) ([]model.UserProfile, error) {
	var profiles []model.UserProfile
	if err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("created_at").
		Find(&profiles).Error; err != nil {
		return nil, backendError(err)
	}
	return profiles, nil
}

func (r *userRepository) UpdatePresence(ctx context.Context, uid, presence string) error {
	res := r.db.WithContext(ctx).Model(&model.UserProfile{}).
		Where("uid = ?", uid).
		Update("presence", presence)
	if res.Error != nil {
		return backendError(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.New(apperr.NotFound, "profile not found")
	}
	return nil
}

func (r *userRepository) StampLastLogin(ctx context.Context, uid string, at time.Time) error {
	if err := r.db.WithContext(ctx).Model(&model.UserProfile{}).
		Where("uid = ?", uid).
		Update("last_login_at", at).Error; err != nil {
		return backendError(err)
	}
	return nil
}
