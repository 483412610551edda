package repository

import (
	"time"

	"gorm.io/gorm"
)

// ResultClause 报表查询的一个过滤条件。条件以类型化的值表示，
// 统一通过参数绑定生成 WHERE，不拼接请求中的字符串。
type ResultClause interface {
	Apply(db *gorm.DB) *gorm.DB
}

type ByClass uint

func (c ByClass) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("quizzes.class_id = ?", uint(c))
}

type ByQuiz uint

func (c ByQuiz) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("results.quiz_id = ?", uint(c))
}

type ByStudent uint

func (c ByStudent) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("results.user_id = ?", uint(c))
}

// ByTeacher 只包含该教师所带班级的成绩
type ByTeacher uint

func (c ByTeacher) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("classes.teacher_id = ?", uint(c))
}

// CompletedFrom 完成时间下界（含）
type CompletedFrom time.Time

func (c CompletedFrom) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("results.completed_at >= ?", time.Time(c))
}

// CompletedTo 完成时间上界（不含），按日期查询时传入次日零点
type CompletedTo time.Time

func (c CompletedTo) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("results.completed_at < ?", time.Time(c))
}

type ResultFilter []ResultClause

// Scope 依次应用全部条件
func (f ResultFilter) Scope() func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for _, clause := range f {
			db = clause.Apply(db)
		}
		return db
	}
}
