package service

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"strings"

	"smart_quiz_portal/internal/model"
	"smart_quiz_portal/internal/util"
	"smart_quiz_portal/pkg/logger"

	"go.uber.org/zap"
)

const classCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// 生成班级码时遇到冲突的重试次数
const classCodeAttempts = 5

type ClassService struct {
	Classes ClassStore
}

func NewClassService(classes ClassStore) *ClassService {
	return &ClassService{Classes: classes}
}

type CreateClassInput struct {
	Name string `json:"name" binding:"required,max=100"`
	Code string `json:"code" binding:"omitempty,classcode"`
}

func (s *ClassService) Create(ctx context.Context, teacherID uint, in CreateClassInput) (*model.Class, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, util.Invalid("class name is required")
	}

	// 与 binding 的 classcode 规则一致：不做大小写转换
	code := in.Code
	if code != "" {
		if !util.ValidClassCode(code) {
			return nil, util.Invalid("class code must be 1-%d uppercase letters or digits", util.ClassCodeMaxLen)
		}
		class := &model.Class{Name: name, Code: code, TeacherID: teacherID}
		if err := s.Classes.Create(ctx, class); err != nil {
			return nil, err
		}
		return class, nil
	}

	for i := 0; i < classCodeAttempts; i++ {
		generated, err := generateClassCode(util.GeneratedCodeLen)
		if err != nil {
			return nil, err
		}
		class := &model.Class{Name: name, Code: generated, TeacherID: teacherID}
		err = s.Classes.Create(ctx, class)
		if err == nil {
			return class, nil
		}
		if !errors.Is(err, util.ErrClassCodeTaken) {
			return nil, err
		}
		logger.Log.Debug("Generated class code collided", zap.String("code", generated))
	}
	return nil, util.ErrClassCodeTaken
}

func generateClassCode(n int) (string, error) {
	var b strings.Builder
	limit := big.NewInt(int64(len(classCodeAlphabet)))
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		b.WriteByte(classCodeAlphabet[idx.Int64()])
	}
	return b.String(), nil
}

// Owned 返回教师自己的班级；不属于该教师时与不存在一样处理
func (s *ClassService) Owned(ctx context.Context, teacherID, classID uint) (*model.Class, error) {
	class, err := s.Classes.FindByID(ctx, classID)
	if err != nil {
		return nil, err
	}
	if class.TeacherID != teacherID {
		return nil, util.ErrClassNotFound
	}
	return class, nil
}

func (s *ClassService) ListForTeacher(ctx context.Context, teacherID uint) ([]model.ClassWithStats, error) {
	return s.Classes.ListByTeacher(ctx, teacherID)
}

func (s *ClassService) ListForStudent(ctx context.Context, studentID uint) ([]model.ClassWithStats, error) {
	return s.Classes.ListByStudent(ctx, studentID)
}

func (s *ClassService) ListAll(ctx context.Context) ([]model.ClassWithStats, error) {
	return s.Classes.ListAll(ctx)
}

func (s *ClassService) Delete(ctx context.Context, teacherID, classID uint) error {
	if _, err := s.Owned(ctx, teacherID, classID); err != nil {
		return err
	}
	if err := s.Classes.Delete(ctx, classID); err != nil {
		return err
	}
	logger.Log.Info("Class deleted", zap.Uint("classID", classID), zap.Uint("teacherID", teacherID))
	return nil
}

// Join 学生通过班级码加入，重复加入视为成功
func (s *ClassService) Join(ctx context.Context, studentID uint, code string) (*model.Class, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !util.ValidClassCode(code) {
		return nil, util.Invalid("class code must be 1-%d uppercase letters or digits", util.ClassCodeMaxLen)
	}

	class, err := s.Classes.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := s.Classes.Enroll(ctx, studentID, class.ID); err != nil {
		return nil, err
	}
	return class, nil
}
