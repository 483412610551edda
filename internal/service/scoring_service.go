package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"smart_quiz_portal/internal/config"
	"smart_quiz_portal/internal/model"
	"smart_quiz_portal/internal/stats"
	"smart_quiz_portal/internal/util"
	"smart_quiz_portal/pkg/logger"
	"smart_quiz_portal/pkg/monitoring"
	"smart_quiz_portal/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Answer 单选题传 option_id，多选题传 option_ids，两者可同时出现
type Answer struct {
	QuestionID uint   `json:"question_id" binding:"required"`
	OptionID   uint   `json:"option_id"`
	OptionIDs  []uint `json:"option_ids"`
}

func (a Answer) selected() map[uint]struct{} {
	set := make(map[uint]struct{}, len(a.OptionIDs)+1)
	if a.OptionID != 0 {
		set[a.OptionID] = struct{}{}
	}
	for _, id := range a.OptionIDs {
		if id != 0 {
			set[id] = struct{}{}
		}
	}
	return set
}

type Submission struct {
	Answers   []Answer   `json:"answers"`
	StartedAt *time.Time `json:"started_at"`
}

type Score struct {
	Total      int     `json:"totalScore"`
	Max        int     `json:"maxScore"`
	Percentage float64 `json:"percentage"`
}

// ScoreQuiz 所选选项集合与正确选项集合完全一致时得分。
// 不属于本测验的题目被忽略；同一题出现多次时以最后一次为准。
func ScoreQuiz(quiz *model.Quiz, answers []Answer) Score {
	byQuestion := make(map[uint]map[uint]struct{}, len(answers))
	for _, a := range answers {
		byQuestion[a.QuestionID] = a.selected()
	}

	score := Score{Max: quiz.MaxScore()}
	for _, q := range quiz.Questions {
		selected, ok := byQuestion[q.ID]
		if !ok || len(selected) == 0 {
			continue
		}
		if answeredCorrectly(q, selected) {
			score.Total += q.Points
		}
	}
	score.Percentage = Percentage(score.Total, score.Max)
	return score
}

func answeredCorrectly(q model.Question, selected map[uint]struct{}) bool {
	correct := 0
	for _, opt := range q.Options {
		_, picked := selected[opt.ID]
		if opt.IsCorrect {
			correct++
			if !picked {
				return false
			}
		} else if picked {
			return false
		}
	}
	// 选中了不属于该题的选项
	return correct > 0 && len(selected) == correct
}

// Percentage 保留两位小数并限制在 [0,100]，满分为 0 时返回 0
func Percentage(total, max int) float64 {
	if max <= 0 {
		return 0
	}
	p := stats.Round(float64(total)/float64(max)*100, 2)
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}

// ScoringSettings 可热更新的评分参数
type ScoringSettings struct {
	mu            sync.RWMutex
	passThreshold float64
	grace         time.Duration
}

func NewScoringSettings(cfg config.ScoringConfig) *ScoringSettings {
	s := &ScoringSettings{}
	s.apply(cfg)
	return s
}

func (s *ScoringSettings) apply(cfg config.ScoringConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.passThreshold = cfg.PassThreshold
	s.grace = time.Duration(cfg.GraceSeconds) * time.Second
}

// ApplyConfig 配置文件变更回调。allow_retake 依赖数据库唯一索引，需重启迁移后生效
func (s *ScoringSettings) ApplyConfig(cfg *config.Config) {
	s.apply(cfg.Scoring)
	logger.Log.Info("Scoring settings reloaded",
		zap.Float64("passThreshold", cfg.Scoring.PassThreshold),
		zap.Int("graceSeconds", cfg.Scoring.GraceSeconds),
	)
}

func (s *ScoringSettings) PassThreshold() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.passThreshold
}

func (s *ScoringSettings) Grace() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.grace
}

type SubmitResult struct {
	Result            *model.Result   `json:"result"`
	DisplayPercentage int             `json:"displayPercentage"`
	Band              model.ScoreBand `json:"band"`
	Passed            bool            `json:"passed"`
	Late              bool            `json:"late"`
}

type ScoringService struct {
	Quizzes  QuizStore
	Classes  ClassStore
	Results  ResultStore
	Settings *ScoringSettings
	now      func() time.Time
}

func NewScoringService(quizzes QuizStore, classes ClassStore, results ResultStore, settings *ScoringSettings) *ScoringService {
	return &ScoringService{
		Quizzes:  quizzes,
		Classes:  classes,
		Results:  results,
		Settings: settings,
		now:      time.Now,
	}
}

// SubmitQuiz 评分并写入一条成绩记录。超时提交仍然保存，只在返回值中标记
func (s *ScoringService) SubmitQuiz(ctx context.Context, studentID, quizID uint, sub Submission) (*SubmitResult, error) {
	ctx, span := tracing.Start(ctx, "ScoringService.SubmitQuiz",
		attribute.Int("quiz.id", int(quizID)),
		attribute.Int("user.id", int(studentID)),
	)
	defer span.End()

	quiz, err := enrolledQuiz(ctx, s.Quizzes, s.Classes, studentID, quizID)
	if err != nil {
		tracing.Fail(span, err)
		return nil, err
	}

	now := s.now()
	score := ScoreQuiz(quiz, sub.Answers)
	late := s.isLate(quiz, sub.StartedAt, now)

	result := &model.Result{
		UserID:      studentID,
		QuizID:      quiz.ID,
		TotalScore:  score.Total,
		MaxScore:    score.Max,
		Percentage:  score.Percentage,
		CompletedAt: now,
	}
	if err := s.Results.Create(ctx, result); err != nil {
		outcome := "error"
		if isConflict(err) {
			outcome = "duplicate"
		}
		monitoring.QuizSubmissions.WithLabelValues(outcome).Inc()
		tracing.Fail(span, err)
		return nil, err
	}

	outcome := "scored"
	if late {
		outcome = "late"
		logger.Named("scoring").Warn("Quiz submitted after time limit",
			zap.Uint("quizID", quiz.ID),
			zap.Uint("userID", studentID),
			zap.Int("timeLimitMinutes", quiz.TimeLimitMinutes),
		)
	}
	monitoring.QuizSubmissions.WithLabelValues(outcome).Inc()
	monitoring.QuizScore.Observe(score.Percentage)
	span.SetAttributes(attribute.Float64("quiz.percentage", score.Percentage))

	return &SubmitResult{
		Result:            result,
		DisplayPercentage: stats.DisplayPercentage(score.Percentage),
		Band:              stats.ScoreBand(score.Percentage),
		Passed:            score.Percentage >= s.Settings.PassThreshold(),
		Late:              late,
	}, nil
}

func (s *ScoringService) isLate(quiz *model.Quiz, startedAt *time.Time, now time.Time) bool {
	if quiz.TimeLimitMinutes <= 0 || startedAt == nil || startedAt.IsZero() {
		return false
	}
	deadline := startedAt.Add(time.Duration(quiz.TimeLimitMinutes)*time.Minute + s.Settings.Grace())
	return now.After(deadline)
}

func isConflict(err error) bool {
	return errors.Is(err, util.ErrConflict)
}
