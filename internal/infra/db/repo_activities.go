package db

import (
	"context"
	"errors"
	"time"

	"yundao/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ActivityStatusDraft     = "draft"
	ActivityStatusReleased  = "released"
	ActivityStatusCancelled = "cancelled"
)

type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Create(ctx context.Context, activity domain.Activity) (string, error) {
	if r.db == nil {
		return "", errDBUnavailable
	}
	model := ActivityModel{
		ID:        uuid.NewString(),
		SubjectID: activity.SubjectID,
		Title:     activity.Title,
		Content:   activity.Content,
		Status:    activity.Status,
		StartTime: activity.StartTime,
		EndTime:   activity.EndTime,
		CreatedAt: time.Now(),
	}
	if model.Status == "" {
		model.Status = ActivityStatusDraft
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return "", err
	}
	return model.ID, nil
}

func (r *ActivityRepository) GetByID(ctx context.Context, id string) (*domain.Activity, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model ActivityModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	activity := toActivity(model)
	return &activity, nil
}

func (r *ActivityRepository) Update(ctx context.Context, activity domain.Activity) error {
	if r.db == nil {
		return errDBUnavailable
	}
	result := r.db.WithContext(ctx).Model(&ActivityModel{}).Where("id = ?", activity.ID).Updates(map[string]any{
		"title":      activity.Title,
		"content":    activity.Content,
		"start_time": activity.StartTime,
		"end_time":   activity.EndTime,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ActivityRepository) SetStatus(ctx context.Context, id, status string) error {
	if r.db == nil {
		return errDBUnavailable
	}
	result := r.db.WithContext(ctx).Model(&ActivityModel{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ActivityRepository) Delete(ctx context.Context, id string) error {
	if r.db == nil {
		return errDBUnavailable
	}
	result := r.db.WithContext(ctx).Delete(&ActivityModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ActivityRepository) ListBySubject(ctx context.Context, subjectID string, page, size int) (domain.Page[domain.Activity], error) {
	if r.db == nil {
		return domain.Page[domain.Activity]{}, errDBUnavailable
	}
	query := r.db.WithContext(ctx).Model(&ActivityModel{})
	if subjectID != "" {
		query = query.Where("subject_id = ?", subjectID)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return domain.Page[domain.Activity]{}, err
	}
	var models []ActivityModel
	err := query.
		Order("created_at desc").
		Offset((page - 1) * size).
		Limit(size).
		Find(&models).Error
	if err != nil {
		return domain.Page[domain.Activity]{}, err
	}
	activities := make([]domain.Activity, 0, len(models))
	for _, model := range models {
		activities = append(activities, toActivity(model))
	}
	return domain.Page[domain.Activity]{Items: activities, Total: total, Page: page, Size: size}, nil
}

func toActivity(model ActivityModel) domain.Activity {
	return domain.Activity{
		ID:        model.ID,
		SubjectID: model.SubjectID,
		Title:     model.Title,
		Content:   model.Content,
		Status:    model.Status,
		StartTime: model.StartTime,
		EndTime:   model.EndTime,
		CreatedAt: model.CreatedAt,
	}
}
