package model

import "time"

// Result 一次测验作答的得分记录，写入后不再修改
type Result struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"userId"`
	QuizID      uint      `gorm:"not null;index" json:"quizId"`
	TotalScore  int       `gorm:"not null" json:"totalScore"`
	MaxScore    int       `gorm:"not null" json:"maxScore"`
	Percentage  float64   `gorm:"type:decimal(5,2);not null" json:"percentage"`
	CompletedAt time.Time `gorm:"not null;index" json:"completedAt"`
	User        *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Quiz        *Quiz     `gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Result) TableName() string {
	return "results"
}

// ResultRow 报表查询得到的结果行（联表 quizzes/classes/users）
type ResultRow struct {
	ResultID    uint      `json:"resultId"`
	UserID      uint      `json:"userId"`
	QuizID      uint      `json:"quizId"`
	ClassID     uint      `json:"classId"`
	TeacherID   uint      `json:"teacherId"`
	StudentName string    `json:"studentName"`
	QuizTitle   string    `json:"quizTitle"`
	ClassName   string    `json:"className"`
	TotalScore  int       `json:"totalScore"`
	MaxScore    int       `json:"maxScore"`
	Percentage  float64   `json:"percentage"`
	CompletedAt time.Time `json:"completedAt"`
}
