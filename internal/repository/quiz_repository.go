package repository

import (
	"context"
	"errors"

	"smart_quiz_portal/internal/model"
	"smart_quiz_portal/internal/util"

	"gorm.io/gorm"
)

type QuizRepository struct {
	DB *gorm.DB
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{DB: db}
}

// QuizListQuery 列表过滤条件，零值字段不参与过滤
type QuizListQuery struct {
	TeacherID uint
	ClassID   uint
	// StudentID 非零时只返回该学生所在班级的测验，AttemptCount 统计该学生的作答次数
	StudentID uint
}

// Create 在一个事务中写入测验、题目和选项
func (r *QuizRepository) Create(ctx context.Context, quiz *model.Quiz) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(quiz).Error
	})
}

func (r *QuizRepository) FindByID(ctx context.Context, id uint) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.DB.WithContext(ctx).First(&quiz, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrQuizNotFound
	}
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (r *QuizRepository) FindWithQuestions(ctx context.Context, id uint) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.DB.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, id ASC")
		}).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		First(&quiz, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrQuizNotFound
	}
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

const quizListColumns = "quizzes.*, classes.name AS class_name, " +
	"(SELECT COUNT(*) FROM questions qs WHERE qs.quiz_id = quizzes.id) AS question_count, " +
	"(SELECT COALESCE(SUM(qs.points), 0) FROM questions qs WHERE qs.quiz_id = quizzes.id) AS total_points, "

func (r *QuizRepository) listQuery(db *gorm.DB, q QuizListQuery) *gorm.DB {
	db = db.Table("quizzes")
	if q.StudentID != 0 {
		db = db.Select(quizListColumns+"(SELECT COUNT(*) FROM results r WHERE r.quiz_id = quizzes.id AND r.user_id = ?) AS attempt_count", q.StudentID).
			Joins("JOIN user_classes e ON e.class_id = quizzes.class_id AND e.user_id = ?", q.StudentID)
	} else {
		db = db.Select(quizListColumns + "(SELECT COUNT(*) FROM results r WHERE r.quiz_id = quizzes.id) AS attempt_count")
	}
	db = db.Joins("JOIN classes ON classes.id = quizzes.class_id")

	if q.TeacherID != 0 {
		db = db.Where("classes.teacher_id = ?", q.TeacherID)
	}
	if q.ClassID != 0 {
		db = db.Where("quizzes.class_id = ?", q.ClassID)
	}
	return db.Order("quizzes.created_at DESC")
}

func (r *QuizRepository) List(ctx context.Context, q QuizListQuery) ([]model.QuizListItem, error) {
	var items []model.QuizListItem
	err := r.listQuery(r.DB.WithContext(ctx), q).Find(&items).Error
	return items, err
}

func (r *QuizRepository) FindListItem(ctx context.Context, id uint) (*model.QuizListItem, error) {
	var items []model.QuizListItem
	err := r.listQuery(r.DB.WithContext(ctx), QuizListQuery{}).
		Where("quizzes.id = ?", id).
		Limit(1).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, util.ErrQuizNotFound
	}
	return &items[0], nil
}

func (r *QuizRepository) Delete(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&model.Quiz{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return util.ErrQuizNotFound
	}
	return nil
}

func (r *QuizRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Quiz{}).Count(&count).Error
	return count, err
}
