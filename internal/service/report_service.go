package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"smart_quiz_portal/internal/model"
	"smart_quiz_portal/internal/repository"
	"smart_quiz_portal/internal/stats"
	"smart_quiz_portal/internal/util"
	"smart_quiz_portal/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Uploader interface {
	Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error)
}

// ReportService 所有报表都从 results 表实时聚合，不做缓存
type ReportService struct {
	Results  ResultStore
	Classes  ClassStore
	Quizzes  QuizStore
	Users    UserStore
	Settings *ScoringSettings
	Storage  Uploader
}

func NewReportService(results ResultStore, classes ClassStore, quizzes QuizStore, users UserStore, settings *ScoringSettings, storage Uploader) *ReportService {
	return &ReportService{
		Results:  results,
		Classes:  classes,
		Quizzes:  quizzes,
		Users:    users,
		Settings: settings,
		Storage:  storage,
	}
}

func (s *ReportService) StudentResults(ctx context.Context, studentID uint) ([]model.StudentResult, error) {
	rows, err := s.Results.FindRows(ctx, repository.ResultFilter{repository.ByStudent(studentID)})
	if err != nil {
		return nil, err
	}

	out := make([]model.StudentResult, 0, len(rows))
	for _, row := range rows {
		out = append(out, model.StudentResult{
			ResultRow:         row,
			DisplayPercentage: stats.DisplayPercentage(row.Percentage),
			Band:              stats.ScoreBand(row.Percentage),
		})
	}
	return out, nil
}

func (s *ReportService) StudentSummary(ctx context.Context, studentID uint) (*model.StudentReport, error) {
	rows, err := s.Results.FindRows(ctx, repository.ResultFilter{repository.ByStudent(studentID)})
	if err != nil {
		return nil, err
	}

	threshold := s.Settings.PassThreshold()
	return &model.StudentReport{
		Summary:       stats.Summarize(rows, threshold),
		Participation: stats.ParticipationTier(len(rows)),
		Band:          stats.ScoreBand(stats.AverageScore(rows)),
		Quizzes:       stats.GroupByQuiz(rows, threshold),
	}, nil
}

// reportableClass 教师只能查看自己的班级，管理员可查看全部
func (s *ReportService) reportableClass(ctx context.Context, p *util.Principal, classID uint) (*model.ClassWithStats, error) {
	if p == nil {
		return nil, util.ErrMissingSession
	}
	class, err := s.Classes.FindWithStats(ctx, classID)
	if err != nil {
		return nil, err
	}
	if !p.Is(model.Admin) && class.TeacherID != p.UserID {
		return nil, util.ErrClassNotFound
	}
	return class, nil
}

func (s *ReportService) ClassReport(ctx context.Context, p *util.Principal, classID uint) (*model.ClassReport, error) {
	class, err := s.reportableClass(ctx, p, classID)
	if err != nil {
		return nil, err
	}

	rows, err := s.Results.FindRows(ctx, repository.ResultFilter{repository.ByClass(classID)})
	if err != nil {
		return nil, err
	}

	threshold := s.Settings.PassThreshold()
	return &model.ClassReport{
		Class:    *class,
		Summary:  stats.Summarize(rows, threshold),
		Quizzes:  stats.GroupByQuiz(rows, threshold),
		Students: stats.GroupByStudent(rows, threshold),
	}, nil
}

func (s *ReportService) QuizReport(ctx context.Context, p *util.Principal, quizID uint) (*model.QuizReport, error) {
	if p == nil {
		return nil, util.ErrMissingSession
	}
	quiz, err := s.Quizzes.FindListItem(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if !p.Is(model.Admin) {
		class, err := s.Classes.FindByID(ctx, quiz.ClassID)
		if err != nil {
			return nil, err
		}
		if class.TeacherID != p.UserID {
			return nil, util.ErrQuizNotFound
		}
	}

	rows, err := s.Results.FindRows(ctx, repository.ResultFilter{repository.ByQuiz(quizID)})
	if err != nil {
		return nil, err
	}

	threshold := s.Settings.PassThreshold()
	return &model.QuizReport{
		Quiz:       *quiz,
		Summary:    stats.Summarize(rows, threshold),
		Difficulty: stats.DifficultyTier(stats.AverageScore(rows)),
		Students:   stats.GroupByStudent(rows, threshold),
		Results:    rows,
	}, nil
}

// AnalyticsQuery 分析报表的过滤条件，From/To 按日期闭区间。
// TeacherID 非零时只统计该教师班级内的成绩
type AnalyticsQuery struct {
	TeacherID uint
	ClassID   uint
	QuizID    uint
	StudentID uint
	From      time.Time
	To        time.Time
}

func (q AnalyticsQuery) Filter() (repository.ResultFilter, error) {
	if !q.From.IsZero() && !q.To.IsZero() && q.To.Before(q.From) {
		return nil, util.Invalid("to must not be before from")
	}

	var filter repository.ResultFilter
	if q.TeacherID != 0 {
		filter = append(filter, repository.ByTeacher(q.TeacherID))
	}
	if q.ClassID != 0 {
		filter = append(filter, repository.ByClass(q.ClassID))
	}
	if q.QuizID != 0 {
		filter = append(filter, repository.ByQuiz(q.QuizID))
	}
	if q.StudentID != 0 {
		filter = append(filter, repository.ByStudent(q.StudentID))
	}
	if !q.From.IsZero() {
		filter = append(filter, repository.CompletedFrom(q.From))
	}
	if !q.To.IsZero() {
		filter = append(filter, repository.CompletedTo(q.To.AddDate(0, 0, 1)))
	}
	return filter, nil
}

// TeacherAnalytics 教师跨班级的汇总，范围固定为本人的班级
func (s *ReportService) TeacherAnalytics(ctx context.Context, p *util.Principal, q AnalyticsQuery) (*model.AnalyticsReport, error) {
	if p == nil {
		return nil, util.ErrUnauthorized
	}
	q.TeacherID = p.UserID
	return s.Analytics(ctx, q)
}

func (s *ReportService) Analytics(ctx context.Context, q AnalyticsQuery) (*model.AnalyticsReport, error) {
	filter, err := q.Filter()
	if err != nil {
		return nil, err
	}

	rows, err := s.Results.FindRows(ctx, filter)
	if err != nil {
		return nil, err
	}

	threshold := s.Settings.PassThreshold()
	return &model.AnalyticsReport{
		Summary:  stats.Summarize(rows, threshold),
		Quizzes:  stats.GroupByQuiz(rows, threshold),
		Students: stats.GroupByStudent(rows, threshold),
		Results:  rows,
	}, nil
}

func (s *ReportService) Overview(ctx context.Context) (*model.Overview, error) {
	users, err := s.Users.CountByRole(ctx)
	if err != nil {
		return nil, err
	}
	classes, err := s.Classes.Count(ctx)
	if err != nil {
		return nil, err
	}
	quizzes, err := s.Quizzes.Count(ctx)
	if err != nil {
		return nil, err
	}
	results, err := s.Results.Count(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.Results.FindRows(ctx, nil)
	if err != nil {
		return nil, err
	}

	return &model.Overview{
		Users:   users,
		Classes: classes,
		Quizzes: quizzes,
		Results: results,
		Summary: stats.Summarize(rows, s.Settings.PassThreshold()),
	}, nil
}

// ExportClassReport 生成班级报表 CSV 并上传，返回访问地址
func (s *ReportService) ExportClassReport(ctx context.Context, p *util.Principal, classID uint) (string, error) {
	report, err := s.ClassReport(ctx, p, classID)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := WriteClassReportCSV(&buf, report); err != nil {
		return "", err
	}

	filename := fmt.Sprintf("reports/class-%d-%s.csv", classID, uuid.New().String())
	size := int64(buf.Len())
	url, err := s.Storage.Upload(ctx, filename, &buf, size, util.MimeCSV)
	if err != nil {
		return "", fmt.Errorf("upload report: %w", err)
	}

	logger.Log.Info("Class report exported",
		zap.Uint("classID", classID),
		zap.Uint("by", p.UserID),
		zap.String("file", filename),
	)
	return url, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteClassReportCSV 先输出测验汇总，再输出学生汇总，两段之间空一行
func WriteClassReportCSV(w io.Writer, report *model.ClassReport) error {
	cw := csv.NewWriter(w)

	records := [][]string{
		{"class", report.Class.Name, report.Class.Code},
		{"attempts", strconv.Itoa(report.Summary.Attempts), "average", formatFloat(report.Summary.AverageScore), "pass_rate", formatFloat(report.Summary.PassRate)},
		{},
		{"quiz", "attempts", "students", "average", "highest", "lowest", "pass_rate", "difficulty"},
	}
	for _, q := range report.Quizzes {
		records = append(records, []string{
			q.QuizTitle,
			strconv.Itoa(q.Attempts),
			strconv.Itoa(q.Students),
			formatFloat(q.AverageScore),
			formatFloat(q.HighestScore),
			formatFloat(q.LowestScore),
			formatFloat(q.PassRate),
			string(q.Difficulty),
		})
	}

	records = append(records, []string{}, []string{"student", "attempts", "average", "pass_rate", "participation", "band"})
	for _, st := range report.Students {
		records = append(records, []string{
			st.StudentName,
			strconv.Itoa(st.Attempts),
			formatFloat(st.AverageScore),
			formatFloat(st.PassRate),
			string(st.Participation),
			string(st.Band),
		})
	}

	if err := cw.WriteAll(records); err != nil {
		return err
	}
	return cw.Error()
}
