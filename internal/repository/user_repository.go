package repository

import (
	"context"
	"errors"

	"smart_quiz_portal/internal/model"
	"smart_quiz_portal/internal/util"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	err := r.DB.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// 并发注册时由唯一索引兜底
		return r.duplicateCause(ctx, user)
	}
	return err
}

// duplicateCause 唯一索引冲突后区分用户名和邮箱
func (r *UserRepository) duplicateCause(ctx context.Context, user *model.User) error {
	if r.exists(ctx, "username = ?", user.Username) {
		return util.ErrUsernameTaken
	}
	if r.exists(ctx, "email = ?", user.Email) {
		return util.ErrEmailRegistered
	}
	return util.ErrAccountExists
}

func (r *UserRepository) exists(ctx context.Context, query string, arg interface{}) bool {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.User{}).Where(query, arg).Count(&count).Error
	return err == nil && count > 0
}

func (r *UserRepository) first(ctx context.Context, query interface{}, args ...interface{}) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).Where(query, args...).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.first(ctx, "username = ?", username)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.first(ctx, "email = ?", email)
}

// FindByLogin 登录名可以是用户名或邮箱
func (r *UserRepository) FindByLogin(ctx context.Context, login string) (*model.User, error) {
	return r.first(ctx, "username = ? OR email = ?", login, login)
}

func (r *UserRepository) List(ctx context.Context, role model.UserRole, page, limit int) ([]model.User, int64, error) {
	query := r.DB.WithContext(ctx).Model(&model.User{})
	if role != "" {
		query = query.Where("role = ?", role)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []model.User
	err := query.Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&users).Error
	return users, total, err
}

func (r *UserRepository) Delete(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&model.User{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return util.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) CountByRole(ctx context.Context) (map[model.UserRole]int64, error) {
	var rows []struct {
		Role  model.UserRole
		Total int64
	}
	err := r.DB.WithContext(ctx).Model(&model.User{}).
		Select("role, COUNT(*) AS total").
		Group("role").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := map[model.UserRole]int64{model.Student: 0, model.Teacher: 0, model.Admin: 0}
	for _, row := range rows {
		counts[row.Role] = row.Total
	}
	return counts, nil
}

func (r *UserRepository) HasRole(ctx context.Context, role model.UserRole) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.User{}).Where("role = ?", role).Count(&count).Error
	return count > 0, err
}
