package repository

import (
	"context"
	"errors"

	"smart_quiz_portal/internal/model"
	"smart_quiz_portal/internal/util"

	"gorm.io/gorm"
)

type ResultRepository struct {
	DB *gorm.DB
}

func NewResultRepository(db *gorm.DB) *ResultRepository {
	return &ResultRepository{DB: db}
}

// Create 开启单次作答限制时，重复提交会触发唯一索引冲突
func (r *ResultRepository) Create(ctx context.Context, result *model.Result) error {
	err := r.DB.WithContext(ctx).Create(result).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return util.ErrQuizAlreadyCompleted
	}
	return err
}

func (r *ResultRepository) rowsQuery(db *gorm.DB, filter ResultFilter) *gorm.DB {
	return db.Table("results").
		Select("results.id AS result_id, results.user_id, results.quiz_id, quizzes.class_id, classes.teacher_id, " +
			"users.name AS student_name, quizzes.title AS quiz_title, classes.name AS class_name, " +
			"results.total_score, results.max_score, results.percentage, results.completed_at").
		Joins("JOIN quizzes ON quizzes.id = results.quiz_id").
		Joins("JOIN classes ON classes.id = quizzes.class_id").
		Joins("JOIN users ON users.id = results.user_id").
		Scopes(filter.Scope()).
		Order("results.completed_at DESC, results.id DESC")
}

// FindRows 按过滤条件查询成绩行，聚合计算由 stats 包完成
func (r *ResultRepository) FindRows(ctx context.Context, filter ResultFilter) ([]model.ResultRow, error) {
	var rows []model.ResultRow
	err := r.rowsQuery(r.DB.WithContext(ctx), filter).Find(&rows).Error
	return rows, err
}

func (r *ResultRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Result{}).Count(&count).Error
	return count, err
}
