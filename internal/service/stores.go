package service

import (
	"context"
	"time"

	"smart_quiz_portal/internal/model"
	"smart_quiz_portal/internal/repository"
)

// 服务层依赖的存储接口，由 internal/repository 中的 gorm/redis 实现

type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uint) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByLogin(ctx context.Context, login string) (*model.User, error)
	List(ctx context.Context, role model.UserRole, page, limit int) ([]model.User, int64, error)
	Delete(ctx context.Context, id uint) error
	CountByRole(ctx context.Context) (map[model.UserRole]int64, error)
	HasRole(ctx context.Context, role model.UserRole) (bool, error)
}

type ClassStore interface {
	Create(ctx context.Context, class *model.Class) error
	FindByID(ctx context.Context, id uint) (*model.Class, error)
	FindByCode(ctx context.Context, code string) (*model.Class, error)
	FindWithStats(ctx context.Context, id uint) (*model.ClassWithStats, error)
	ListByTeacher(ctx context.Context, teacherID uint) ([]model.ClassWithStats, error)
	ListByStudent(ctx context.Context, studentID uint) ([]model.ClassWithStats, error)
	ListAll(ctx context.Context) ([]model.ClassWithStats, error)
	Delete(ctx context.Context, id uint) error
	Enroll(ctx context.Context, userID, classID uint) error
	IsEnrolled(ctx context.Context, userID, classID uint) (bool, error)
	Count(ctx context.Context) (int64, error)
}

type QuizStore interface {
	Create(ctx context.Context, quiz *model.Quiz) error
	FindByID(ctx context.Context, id uint) (*model.Quiz, error)
	FindWithQuestions(ctx context.Context, id uint) (*model.Quiz, error)
	FindListItem(ctx context.Context, id uint) (*model.QuizListItem, error)
	List(ctx context.Context, q repository.QuizListQuery) ([]model.QuizListItem, error)
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
}

type ResultStore interface {
	Create(ctx context.Context, result *model.Result) error
	FindRows(ctx context.Context, filter repository.ResultFilter) ([]model.ResultRow, error)
	Count(ctx context.Context) (int64, error)
}

type SessionStore interface {
	Save(ctx context.Context, sessionID string, userID uint, ttl time.Duration) error
	Lookup(ctx context.Context, sessionID string) (uint, bool, error)
	Delete(ctx context.Context, sessionID string) error
}

var (
	_ UserStore    = (*repository.UserRepository)(nil)
	_ ClassStore   = (*repository.ClassRepository)(nil)
	_ QuizStore    = (*repository.QuizRepository)(nil)
	_ ResultStore  = (*repository.ResultRepository)(nil)
	_ SessionStore = (*repository.RedisSessionRepository)(nil)
	_ SessionStore = (*repository.MemorySessionRepository)(nil)
)
