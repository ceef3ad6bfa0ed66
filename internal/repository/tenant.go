package repository

import (
	"context"
	"errors"

	"taskpoints-service/internal/apperr"
	"taskpoints-service/internal/model"

	"gorm.io/gorm"
)

type tenantRepository struct {
	db *gorm.DB
}

// NewTenantRepository returns a gorm-backed TenantRepository
func NewTenantRepository(db *gorm.DB) TenantRepository {
	return &tenantRepository{db: db}
}

func (r *tenantRepository) Create(ctx context.Context, tenant *model.Tenant) error {
	// Check if the slug is already taken
	var existing model.Tenant
	err := r.db.WithContext(ctx).Where("id = ?", tenant.ID).First(&existing).Error
	if err == nil {
		return apperr.Newf(apperr.Conflict, "company '%s' already exists", tenant.ID)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return backendError(err)
	}

	if err := r.db.WithContext(ctx).Create(tenant).Error; err != nil {
		return backendError(err)
	}
	return nil
}

func (r *tenantRepository) BySlug(ctx context.Context, slug string) (*model.Tenant, error) {
	var tenant model.Tenant
	if err := r.db.WithContext(ctx).Where("id = ?", slug).First(&tenant).Error; err != nil {
		return nil, mapLookupError(err, "company not found")
	}
	return &tenant, nil
}

func (r *tenantRepository) List(ctx context.Context) ([]model.Tenant, error) {
	var tenants []model.Tenant
	if err := r.db.WithContext(ctx).Order("created_at").Find(&tenants).Error; err != nil {
		return nil, backendError(err)
	}
	return tenants, nil
}

func (r *tenantRepository) Delete(ctx context.Context, slug string) error {
	res := r.db.WithContext(ctx).Where("id = ?", slug).Delete(&model.Tenant{})
	if res.Error != nil {
		return backendError(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.New(apperr.NotFound, "company not found")
	}
	return nil
}
