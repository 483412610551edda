package service

import (
	"context"

	"smart_quiz_portal/internal/model"
	"smart_quiz_portal/internal/util"
	"smart_quiz_portal/pkg/logger"

	"go.uber.org/zap"
)

// UserService 管理员的用户管理
type UserService struct {
	Users UserStore
}

func NewUserService(users UserStore) *UserService {
	return &UserService{Users: users}
}

func (s *UserService) List(ctx context.Context, role model.UserRole, page, limit int) ([]model.User, int64, error) {
	if role != "" && !role.Valid() {
		return nil, 0, util.Invalid("unknown role %q", role)
	}
	page, limit = NormalizePage(page, limit)
	return s.Users.List(ctx, role, page, limit)
}

// NormalizePage 页码从 1 开始，每页最多 100 条
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

// Delete 删除用户，关联的班级、选课与成绩由外键级联删除
func (s *UserService) Delete(ctx context.Context, p *util.Principal, id uint) error {
	if p == nil {
		return util.ErrMissingSession
	}
	if p.UserID == id {
		return util.Invalid("cannot delete the current account")
	}
	if err := s.Users.Delete(ctx, id); err != nil {
		return err
	}
	logger.Log.Info("User deleted", zap.Uint("userID", id), zap.Uint("by", p.UserID))
	return nil
}
