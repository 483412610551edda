package service

import (
	"context"
	"strings"

	"smart_quiz_portal/internal/model"
	"smart_quiz_portal/internal/repository"
	"smart_quiz_portal/internal/util"
	"smart_quiz_portal/pkg/logger"

	"go.uber.org/zap"
)

type QuizService struct {
	Quizzes QuizStore
	Classes ClassStore
}

func NewQuizService(quizzes QuizStore, classes ClassStore) *QuizService {
	return &QuizService{
		Quizzes: quizzes,
		Classes: classes,
	}
}

type OptionInput struct {
	Text      string `json:"text" binding:"required"`
	IsCorrect bool   `json:"is_correct"`
}

type QuestionInput struct {
	Text    string        `json:"text" binding:"required"`
	Points  int           `json:"points"`
	Options []OptionInput `json:"options" binding:"required,dive"`
}

type CreateQuizInput struct {
	Title            string          `json:"title" binding:"required,max=200"`
	TimeLimitMinutes int             `json:"time_limit_minutes"`
	ClassID          uint            `json:"class_id" binding:"required"`
	Questions        []QuestionInput `json:"questions" binding:"required,dive"`
}

// validate 每道题至少两个选项且至少一个正确选项，分值不能为负
func (in *CreateQuizInput) validate() error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return util.Invalid("quiz title is required")
	}
	if in.TimeLimitMinutes < 0 {
		return util.Invalid("time_limit_minutes must not be negative")
	}
	if len(in.Questions) == 0 {
		return util.Invalid("quiz needs at least one question")
	}
	for i, q := range in.Questions {
		if strings.TrimSpace(q.Text) == "" {
			return util.Invalid("question %d: text is required", i+1)
		}
		if q.Points < 0 {
			return util.Invalid("question %d: points must not be negative", i+1)
		}
		if len(q.Options) < 2 {
			return util.Invalid("question %d: at least two options are required", i+1)
		}
		correct := 0
		for j, opt := range q.Options {
			if strings.TrimSpace(opt.Text) == "" {
				return util.Invalid("question %d option %d: text is required", i+1, j+1)
			}
			if opt.IsCorrect {
				correct++
			}
		}
		if correct == 0 {
			return util.Invalid("question %d: at least one option must be correct", i+1)
		}
	}
	return nil
}

func (s *QuizService) Create(ctx context.Context, teacherID uint, in CreateQuizInput) (*model.Quiz, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := s.ownClass(ctx, teacherID, in.ClassID); err != nil {
		return nil, err
	}

	quiz := &model.Quiz{
		Title:            in.Title,
		TimeLimitMinutes: in.TimeLimitMinutes,
		ClassID:          in.ClassID,
		CreatedBy:        teacherID,
		Questions:        make([]model.Question, 0, len(in.Questions)),
	}
	for i, q := range in.Questions {
		question := model.Question{
			Text:    strings.TrimSpace(q.Text),
			Points:  q.Points,
			Order:   i + 1,
			Options: make([]model.Option, 0, len(q.Options)),
		}
		for _, opt := range q.Options {
			question.Options = append(question.Options, model.Option{
				Text:      strings.TrimSpace(opt.Text),
				IsCorrect: opt.IsCorrect,
			})
		}
		quiz.Questions = append(quiz.Questions, question)
	}

	if err := s.Quizzes.Create(ctx, quiz); err != nil {
		return nil, err
	}

	logger.Log.Info("Quiz created",
		zap.Uint("quizID", quiz.ID),
		zap.Uint("classID", quiz.ClassID),
		zap.Int("questions", len(quiz.Questions)),
	)
	return quiz, nil
}

func (s *QuizService) ownClass(ctx context.Context, teacherID, classID uint) error {
	class, err := s.Classes.FindByID(ctx, classID)
	if err != nil {
		return err
	}
	if class.TeacherID != teacherID {
		return util.ErrClassNotFound
	}
	return nil
}

// ownQuiz 测验所属班级必须由该教师负责
func (s *QuizService) ownQuiz(ctx context.Context, teacherID, quizID uint) (*model.Quiz, error) {
	quiz, err := s.Quizzes.FindByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	class, err := s.Classes.FindByID(ctx, quiz.ClassID)
	if err != nil {
		return nil, err
	}
	if class.TeacherID != teacherID {
		return nil, util.ErrQuizNotFound
	}
	return quiz, nil
}

func (s *QuizService) ListForTeacher(ctx context.Context, teacherID, classID uint) ([]model.QuizListItem, error) {
	return s.Quizzes.List(ctx, repository.QuizListQuery{TeacherID: teacherID, ClassID: classID})
}

func (s *QuizService) GetForTeacher(ctx context.Context, teacherID, quizID uint) (*model.Quiz, error) {
	if _, err := s.ownQuiz(ctx, teacherID, quizID); err != nil {
		return nil, err
	}
	return s.Quizzes.FindWithQuestions(ctx, quizID)
}

func (s *QuizService) Delete(ctx context.Context, teacherID, quizID uint) error {
	if _, err := s.ownQuiz(ctx, teacherID, quizID); err != nil {
		return err
	}
	if err := s.Quizzes.Delete(ctx, quizID); err != nil {
		return err
	}
	logger.Log.Info("Quiz deleted", zap.Uint("quizID", quizID), zap.Uint("teacherID", teacherID))
	return nil
}

func (s *QuizService) ListForStudent(ctx context.Context, studentID uint) ([]model.QuizListItem, error) {
	return s.Quizzes.List(ctx, repository.QuizListQuery{StudentID: studentID})
}

// GetForStudent 返回不含正确答案的作答视图，未加入班级的学生看不到测验
func (s *QuizService) GetForStudent(ctx context.Context, studentID, quizID uint) (*model.QuizView, error) {
	quiz, err := enrolledQuiz(ctx, s.Quizzes, s.Classes, studentID, quizID)
	if err != nil {
		return nil, err
	}
	view := model.NewQuizView(quiz)
	return &view, nil
}

func enrolledQuiz(ctx context.Context, quizzes QuizStore, classes ClassStore, studentID, quizID uint) (*model.Quiz, error) {
	quiz, err := quizzes.FindWithQuestions(ctx, quizID)
	if err != nil {
		return nil, err
	}
	enrolled, err := classes.IsEnrolled(ctx, studentID, quiz.ClassID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, util.ErrQuizNotFound
	}
	return quiz, nil
}
