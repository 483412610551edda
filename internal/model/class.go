package model

import "time"

// Class 班级，由一名教师创建，学生通过班级码加入
type Class struct {
	BaseModel
	Name      string `gorm:"size:100;not null" json:"name"`
	Code      string `gorm:"size:10;uniqueIndex;not null" json:"code"`
	TeacherID uint   `gorm:"not null;index" json:"teacherId"`
	Teacher   *User  `gorm:"foreignKey:TeacherID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Class) TableName() string {
	return "classes"
}

// Enrollment 学生与班级的多对多关系
type Enrollment struct {
	UserID   uint      `gorm:"primaryKey;autoIncrement:false" json:"userId"`
	ClassID  uint      `gorm:"primaryKey;autoIncrement:false;index" json:"classId"`
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joinedAt"`
	User     *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Class    *Class    `gorm:"foreignKey:ClassID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Enrollment) TableName() string {
	return "user_classes"
}

type ClassWithStats struct {
	Class
	TeacherName  string `json:"teacherName"`
	StudentCount int64  `json:"studentCount"`
	QuizCount    int64  `json:"quizCount"`
}
