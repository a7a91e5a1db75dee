package db

import (
	"context"
	"errors"
	"time"

	"yundao/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SubjectRepository struct {
	db *gorm.DB
}

func NewSubjectRepository(db *gorm.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

func (r *SubjectRepository) Create(ctx context.Context, subject domain.Subject) (string, error) {
	if r.db == nil {
		return "", errDBUnavailable
	}
	model := SubjectModel{
		ID:        uuid.NewString(),
		Name:      subject.Name,
		Address:   subject.Address,
		Remark:    subject.Remark,
		CreatedAt: time.Now(),
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return "", err
	}
	return model.ID, nil
}

func (r *SubjectRepository) GetByID(ctx context.Context, id string) (*domain.Subject, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model SubjectModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	subject := toSubject(model)
	return &subject, nil
}

func (r *SubjectRepository) Update(ctx context.Context, subject domain.Subject) error {
	if r.db == nil {
		return errDBUnavailable
	}
	result := r.db.WithContext(ctx).Model(&SubjectModel{}).Where("id = ?", subject.ID).Updates(map[string]any{
		"name":    subject.Name,
		"address": subject.Address,
		"remark":  subject.Remark,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *SubjectRepository) Delete(ctx context.Context, id string) error {
	if r.db == nil {
		return errDBUnavailable
	}
	result := r.db.WithContext(ctx).Delete(&SubjectModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *SubjectRepository) List(ctx context.Context, page, size int) (domain.Page[domain.Subject], error) {
	if r.db == nil {
		return domain.Page[domain.Subject]{}, errDBUnavailable
	}
	var total int64
	if err := r.db.WithContext(ctx).Model(&SubjectModel{}).Count(&total).Error; err != nil {
		return domain.Page[domain.Subject]{}, err
	}
	var models []SubjectModel
	err := r.db.WithContext(ctx).
		Order("created_at desc").
		Offset((page - 1) * size).
		Limit(size).
		Find(&models).Error
	if err != nil {
		return domain.Page[domain.Subject]{}, err
	}
	subjects := make([]domain.Subject, 0, len(models))
	for _, model := range models {
		subjects = append(subjects, toSubject(model))
	}
	return domain.Page[domain.Subject]{Items: subjects, Total: total, Page: page, Size: size}, nil
}

func toSubject(model SubjectModel) domain.Subject {
	return domain.Subject{
		ID:        model.ID,
		Name:      model.Name,
		Address:   model.Address,
		Remark:    model.Remark,
		CreatedAt: model.CreatedAt,
	}
}
