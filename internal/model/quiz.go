package model

type Quiz struct {
	BaseModel
	Title            string     `gorm:"size:200;not null" json:"title"`
	TimeLimitMinutes int        `gorm:"not null;default:0" json:"timeLimitMinutes"`
	ClassID          uint       `gorm:"not null;index" json:"classId"`
	CreatedBy        uint       `gorm:"not null;index" json:"createdBy"`
	Class            *Class     `gorm:"foreignKey:ClassID;constraint:OnDelete:CASCADE" json:"-"`
	Questions        []Question `gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE" json:"questions,omitempty"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// MaxScore 题目分值之和
func (q *Quiz) MaxScore() int {
	total := 0
	for _, question := range q.Questions {
		total += question.Points
	}
	return total
}

type Question struct {
	ID      uint     `gorm:"primaryKey;autoIncrement" json:"id"`
	QuizID  uint     `gorm:"not null;index" json:"quizId"`
	Text    string   `gorm:"type:text;not null" json:"text"`
	Points  int      `gorm:"not null;default:1" json:"points"`
	Order   int      `gorm:"column:sort_order;not null;default:0" json:"order"`
	Options []Option `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"options,omitempty"`
}

func (Question) TableName() string {
	return "questions"
}

type Option struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	QuestionID uint   `gorm:"not null;index" json:"questionId"`
	Text       string `gorm:"size:500;not null" json:"text"`
	IsCorrect  bool   `gorm:"not null;default:false" json:"isCorrect"`
}

func (Option) TableName() string {
	return "options"
}

// QuizListItem 列表视图，附带题目数量与学生作答次数
type QuizListItem struct {
	Quiz
	ClassName     string `json:"className"`
	QuestionCount int64  `json:"questionCount"`
	TotalPoints   int64  `json:"totalPoints"`
	AttemptCount  int64  `json:"attemptCount"`
}

// QuizView 学生作答视图，不包含正确答案
type QuizView struct {
	ID               uint           `json:"id"`
	Title            string         `json:"title"`
	TimeLimitMinutes int            `json:"timeLimitMinutes"`
	ClassID          uint           `json:"classId"`
	MaxScore         int            `json:"maxScore"`
	Questions        []QuestionView `json:"questions"`
}

type QuestionView struct {
	ID      uint         `json:"id"`
	Text    string       `json:"text"`
	Points  int          `json:"points"`
	Multi   bool         `json:"multi"`
	Options []OptionView `json:"options"`
}

type OptionView struct {
	ID   uint   `json:"id"`
	Text string `json:"text"`
}

// NewQuizView 去掉 IsCorrect 标记，多选题通过 Multi 提示
func NewQuizView(q *Quiz) QuizView {
	view := QuizView{
		ID:               q.ID,
		Title:            q.Title,
		TimeLimitMinutes: q.TimeLimitMinutes,
		ClassID:          q.ClassID,
		MaxScore:         q.MaxScore(),
		Questions:        make([]QuestionView, 0, len(q.Questions)),
	}
	for _, question := range q.Questions {
		qv := QuestionView{
			ID:      question.ID,
			Text:    question.Text,
			Points:  question.Points,
			Options: make([]OptionView, 0, len(question.Options)),
		}
		correct := 0
		for _, opt := range question.Options {
			if opt.IsCorrect {
				correct++
			}
			qv.Options = append(qv.Options, OptionView{ID: opt.ID, Text: opt.Text})
		}
		qv.Multi = correct > 1
		view.Questions = append(view.Questions, qv)
	}
	return view
}
