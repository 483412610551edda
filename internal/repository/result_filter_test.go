package repository

import (
	"strings"
	"testing"
	"time"

	"smart_quiz_portal/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// dryRunDB 只生成 SQL，不连接数据库
func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(mysql.New(mysql.Config{
		DSN:                       "quiz:quiz@tcp(127.0.0.1:3306)/quiz?charset=utf8mb4&parseTime=True&loc=Local",
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open dry run db: %v", err)
	}
	return db
}

func TestResultFilterSQL(t *testing.T) {
	db := dryRunDB(t)
	repo := NewResultRepository(db)
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		filter  ResultFilter
		want    []string
		notWant []string
	}{
		{
			name:    "no clauses",
			filter:  nil,
			want:    []string{"FROM `results`", "JOIN quizzes ON quizzes.id = results.quiz_id", "ORDER BY results.completed_at DESC"},
			notWant: []string{"WHERE"},
		},
		{
			name:   "class and student",
			filter: ResultFilter{ByClass(3), ByStudent(7)},
			want:   []string{"quizzes.class_id = 3", "results.user_id = 7"},
		},
		{
			name:   "quiz and teacher",
			filter: ResultFilter{ByQuiz(9), ByTeacher(2)},
			want:   []string{"results.quiz_id = 9", "classes.teacher_id = 2"},
		},
		{
			name:   "date range",
			filter: ResultFilter{CompletedFrom(from), CompletedTo(to)},
			want:   []string{"results.completed_at >= '2024-03-01", "results.completed_at < '2024-04-01"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
				var rows []model.ResultRow
				return repo.rowsQuery(tx, tt.filter).Find(&rows)
			})
			for _, w := range tt.want {
				if !strings.Contains(sql, w) {
					t.Errorf("SQL missing %q:\n%s", w, sql)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(sql, w) {
					t.Errorf("SQL unexpectedly contains %q:\n%s", w, sql)
				}
			}
		})
	}
}

func TestResultFilterScopeOrder(t *testing.T) {
	db := dryRunDB(t)
	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var results []model.Result
		return tx.Model(&model.Result{}).Scopes(ResultFilter{ByStudent(1), ByQuiz(2)}.Scope()).Find(&results)
	})
	if !strings.Contains(sql, "results.user_id = 1 AND results.quiz_id = 2") {
		t.Errorf("clauses not combined with AND in order:\n%s", sql)
	}
}

func TestQuizListSQL(t *testing.T) {
	db := dryRunDB(t)
	repo := NewQuizRepository(db)

	tests := []struct {
		name  string
		query QuizListQuery
		want  []string
	}{
		{
			name:  "student sees enrolled classes with own attempts",
			query: QuizListQuery{StudentID: 5},
			want:  []string{"r.user_id = 5) AS attempt_count", "JOIN user_classes e ON e.class_id = quizzes.class_id AND e.user_id = 5"},
		},
		{
			name:  "teacher filtered by class",
			query: QuizListQuery{TeacherID: 2, ClassID: 4},
			want:  []string{"classes.teacher_id = 2", "quizzes.class_id = 4", "AS total_points"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
				var items []model.QuizListItem
				return repo.listQuery(tx, tt.query).Find(&items)
			})
			for _, w := range tt.want {
				if !strings.Contains(sql, w) {
					t.Errorf("SQL missing %q:\n%s", w, sql)
				}
			}
		})
	}
}
