package model

type UserRole string

const (
	Student UserRole = "student"
	Teacher UserRole = "teacher"
	Admin   UserRole = "admin"
)

func (r UserRole) Valid() bool {
	switch r {
	case Student, Teacher, Admin:
		return true
	}
	return false
}

type User struct {
	BaseModel
	Username string   `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email    string   `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Password string   `gorm:"size:100;not null" json:"-"`
	Name     string   `gorm:"size:100;not null" json:"name"`
	Role     UserRole `gorm:"size:20;not null;default:'student';index" json:"role"`
}

func (User) TableName() string {
	return "users"
}
