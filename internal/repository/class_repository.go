package repository

import (
	"context"
	"errors"

	"smart_quiz_portal/internal/model"
	"smart_quiz_portal/internal/util"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ClassRepository struct {
	DB *gorm.DB
}

func NewClassRepository(db *gorm.DB) *ClassRepository {
	return &ClassRepository{DB: db}
}

func (r *ClassRepository) Create(ctx context.Context, class *model.Class) error {
	err := r.DB.WithContext(ctx).Create(class).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return util.ErrClassCodeTaken
	}
	return err
}

func (r *ClassRepository) FindByID(ctx context.Context, id uint) (*model.Class, error) {
	var class model.Class
	err := r.DB.WithContext(ctx).First(&class, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrClassNotFound
	}
	if err != nil {
		return nil, err
	}
	return &class, nil
}

func (r *ClassRepository) FindByCode(ctx context.Context, code string) (*model.Class, error) {
	var class model.Class
	err := r.DB.WithContext(ctx).Where("code = ?", code).First(&class).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrClassNotFound
	}
	if err != nil {
		return nil, err
	}
	return &class, nil
}

func (r *ClassRepository) statsQuery(ctx context.Context) *gorm.DB {
	return r.DB.WithContext(ctx).Table("classes").
		Select("classes.*, users.name AS teacher_name, " +
			"(SELECT COUNT(*) FROM user_classes uc WHERE uc.class_id = classes.id) AS student_count, " +
			"(SELECT COUNT(*) FROM quizzes q WHERE q.class_id = classes.id) AS quiz_count").
		Joins("LEFT JOIN users ON users.id = classes.teacher_id")
}

func (r *ClassRepository) FindWithStats(ctx context.Context, id uint) (*model.ClassWithStats, error) {
	var classes []model.ClassWithStats
	if err := r.statsQuery(ctx).Where("classes.id = ?", id).Limit(1).Find(&classes).Error; err != nil {
		return nil, err
	}
	if len(classes) == 0 {
		return nil, util.ErrClassNotFound
	}
	return &classes[0], nil
}

func (r *ClassRepository) ListByTeacher(ctx context.Context, teacherID uint) ([]model.ClassWithStats, error) {
	var classes []model.ClassWithStats
	err := r.statsQuery(ctx).
		Where("classes.teacher_id = ?", teacherID).
		Order("classes.created_at DESC").
		Find(&classes).Error
	return classes, err
}

func (r *ClassRepository) ListByStudent(ctx context.Context, studentID uint) ([]model.ClassWithStats, error) {
	var classes []model.ClassWithStats
	err := r.statsQuery(ctx).
		Joins("JOIN user_classes e ON e.class_id = classes.id").
		Where("e.user_id = ?", studentID).
		Order("classes.name ASC").
		Find(&classes).Error
	return classes, err
}

func (r *ClassRepository) ListAll(ctx context.Context) ([]model.ClassWithStats, error) {
	var classes []model.ClassWithStats
	err := r.statsQuery(ctx).Order("classes.created_at DESC").Find(&classes).Error
	return classes, err
}

// Delete 依赖外键级联删除测验、题目、选项、成绩与选课记录
func (r *ClassRepository) Delete(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&model.Class{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return util.ErrClassNotFound
	}
	return nil
}

// Enroll 重复加入不报错
func (r *ClassRepository) Enroll(ctx context.Context, userID, classID uint) error {
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.Enrollment{UserID: userID, ClassID: classID}).Error
}

func (r *ClassRepository) IsEnrolled(ctx context.Context, userID, classID uint) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Enrollment{}).
		Where("user_id = ? AND class_id = ?", userID, classID).
		Count(&count).Error
	return count > 0, err
}

func (r *ClassRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Class{}).Count(&count).Error
	return count, err
}
