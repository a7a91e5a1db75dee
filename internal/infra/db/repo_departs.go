package db

import (
	"context"
	"errors"
	"time"

	"yundao/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DepartRepository struct {
	db *gorm.DB
}

func NewDepartRepository(db *gorm.DB) *DepartRepository {
	return &DepartRepository{db: db}
}

func (r *DepartRepository) Create(ctx context.Context, depart domain.Depart) (string, error) {
	if r.db == nil {
		return "", errDBUnavailable
	}
	model := DepartModel{
		ID:        uuid.NewString(),
		SubjectID: depart.SubjectID,
		Name:      depart.Name,
		Code:      depart.Code,
		Remark:    depart.Remark,
		CreatedAt: time.Now(),
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return "", err
	}
	return model.ID, nil
}

func (r *DepartRepository) GetByID(ctx context.Context, id string) (*domain.Depart, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model DepartModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	depart := toDepart(model)
	return &depart, nil
}

func (r *DepartRepository) Update(ctx context.Context, depart domain.Depart) error {
	if r.db == nil {
		return errDBUnavailable
	}
	result := r.db.WithContext(ctx).Model(&DepartModel{}).Where("id = ?", depart.ID).Updates(map[string]any{
		"name":   depart.Name,
		"code":   depart.Code,
		"remark": depart.Remark,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *DepartRepository) Delete(ctx context.Context, id string) error {
	if r.db == nil {
		return errDBUnavailable
	}
	result := r.db.WithContext(ctx).Delete(&DepartModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *DepartRepository) ListBySubject(ctx context.Context, subjectID string, page, size int) (domain.Page[domain.Depart], error) {
	if r.db == nil {
		return domain.Page[domain.Depart]{}, errDBUnavailable
	}
	query := r.db.WithContext(ctx).Model(&DepartModel{})
	if subjectID != "" {
		query = query.Where("subject_id = ?", subjectID)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return domain.Page[domain.Depart]{}, err
	}
	var models []DepartModel
	err := query.
		Order("created_at desc").
		Offset((page - 1) * size).
		Limit(size).
		Find(&models).Error
	if err != nil {
		return domain.Page[domain.Depart]{}, err
	}
	departs := make([]domain.Depart, 0, len(models))
	for _, model := range models {
		departs = append(departs, toDepart(model))
	}
	return domain.Page[domain.Depart]{Items: departs, Total: total, Page: page, Size: size}, nil
}

func toDepart(model DepartModel) domain.Depart {
	return domain.Depart{
		ID:        model.ID,
		SubjectID: model.SubjectID,
		Name:      model.Name,
		Code:      model.Code,
		Remark:    model.Remark,
		CreatedAt: model.CreatedAt,
	}
}
