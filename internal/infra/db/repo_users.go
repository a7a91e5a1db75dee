package db

import (
	"context"
	"errors"
	"time"

	"yundao/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByAccount(ctx context.Context, account string) (*domain.User, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model UserModel
	err := r.db.WithContext(ctx).First(&model, "account = ?", account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	user := toUser(model)
	return &user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model UserModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	user := toUser(model)
	return &user, nil
}

// FindByDeviceBinding resolves a pre-registered device identifier to its
// user for the app login route.
func (r *UserRepository) FindByDeviceBinding(ctx context.Context, openID string) (*domain.User, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var binding DeviceBindingModel
	err := r.db.WithContext(ctx).First(&binding, "open_id = ?", openID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return r.FindByID(ctx, binding.UserID)
}

func (r *UserRepository) RolePermissions(ctx context.Context, role string) ([]string, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var rows []RolePermissionModel
	if err := r.db.WithContext(ctx).Where("role = ?", role).Find(&rows).Error; err != nil {
		return nil, err
	}
	permissions := make([]string, 0, len(rows))
	for _, row := range rows {
		permissions = append(permissions, row.Permission)
	}
	return permissions, nil
}

func (r *UserRepository) Create(ctx context.Context, user domain.User) (string, error) {
	if r.db == nil {
		return "", errDBUnavailable
	}
	model := UserModel{
		ID:        uuid.NewString(),
		Account:   user.Account,
		Name:      user.Name,
		Password:  user.PasswordHash,
		Status:    user.Status,
		Role:      user.Role,
		CreatedAt: time.Now(),
	}
	if model.Status == "" {
		model.Status = domain.StatusNormal
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return "", err
	}
	return model.ID, nil
}

func (r *UserRepository) Update(ctx context.Context, user domain.User) error {
	if r.db == nil {
		return errDBUnavailable
	}
	updates := map[string]any{}
	if user.Name != "" {
		updates["name"] = user.Name
	}
	if user.Status != "" {
		updates["status"] = user.Status
	}
	if user.Role != "" {
		updates["role"] = user.Role
	}
	if user.PasswordHash != "" {
		updates["password"] = user.PasswordHash
	}
	if len(updates) == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).Model(&UserModel{}).Where("id = ?", user.ID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	if r.db == nil {
		return errDBUnavailable
	}
	result := r.db.WithContext(ctx).Delete(&UserModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context, page, size int) (domain.Page[domain.User], error) {
	if r.db == nil {
		return domain.Page[domain.User]{}, errDBUnavailable
	}
	var total int64
	if err := r.db.WithContext(ctx).Model(&UserModel{}).Count(&total).Error; err != nil {
		return domain.Page[domain.User]{}, err
	}
	var models []UserModel
	err := r.db.WithContext(ctx).
		Order("created_at desc").
		Offset((page - 1) * size).
		Limit(size).
		Find(&models).Error
	if err != nil {
		return domain.Page[domain.User]{}, err
	}
	users := make([]domain.User, 0, len(models))
	for _, model := range models {
		users = append(users, toUser(model))
	}
	return domain.Page[domain.User]{Items: users, Total: total, Page: page, Size: size}, nil
}

func (r *UserRepository) BindDevice(ctx context.Context, userID, openID string) (string, error) {
	if r.db == nil {
		return "", errDBUnavailable
	}
	model := DeviceBindingModel{
		ID:        uuid.NewString(),
		UserID:    userID,
		OpenID:    openID,
		CreatedAt: time.Now(),
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return "", err
	}
	return model.ID, nil
}

func toUser(model UserModel) domain.User {
	return domain.User{
		ID:           model.ID,
		Account:      model.Account,
		Name:         model.Name,
		PasswordHash: model.Password,
		Status:       model.Status,
		Role:         model.Role,
		CreatedAt:    model.CreatedAt,
	}
}
