package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"smart_quiz_portal/internal/model"
	"smart_quiz_portal/internal/repository"
	"smart_quiz_portal/internal/util"
)

type fakeUsers struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]*model.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: make(map[uint]*model.User)}
}

func (f *fakeUsers) Create(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == user.Username || u.Email == user.Email {
			return util.ErrUsernameTaken
		}
	}
	f.nextID++
	user.ID = f.nextID
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUsers) find(match func(*model.User) bool) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, util.ErrUserNotFound
}

func (f *fakeUsers) FindByID(_ context.Context, id uint) (*model.User, error) {
	return f.find(func(u *model.User) bool { return u.ID == id })
}

func (f *fakeUsers) FindByUsername(_ context.Context, username string) (*model.User, error) {
	return f.find(func(u *model.User) bool { return u.Username == username })
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*model.User, error) {
	return f.find(func(u *model.User) bool { return u.Email == email })
}

func (f *fakeUsers) FindByLogin(_ context.Context, login string) (*model.User, error) {
	return f.find(func(u *model.User) bool { return u.Username == login || u.Email == login })
}

func (f *fakeUsers) List(_ context.Context, role model.UserRole, page, limit int) ([]model.User, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []model.User
	for _, u := range f.users {
		if role == "" || u.Role == role {
			all = append(all, *u)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	total := int64(len(all))
	start := (page - 1) * limit
	if start > len(all) {
		start = len(all)
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (f *fakeUsers) Delete(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return util.ErrUserNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUsers) CountByRole(_ context.Context) (map[model.UserRole]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := map[model.UserRole]int64{model.Student: 0, model.Teacher: 0, model.Admin: 0}
	for _, u := range f.users {
		counts[u.Role]++
	}
	return counts, nil
}

func (f *fakeUsers) HasRole(_ context.Context, role model.UserRole) (bool, error) {
	_, err := f.find(func(u *model.User) bool { return u.Role == role })
	return err == nil, nil
}

type enrollmentKey struct {
	userID  uint
	classID uint
}

type fakeClasses struct {
	mu          sync.Mutex
	nextID      uint
	classes     map[uint]*model.Class
	enrollments map[enrollmentKey]bool
	// 模拟唯一索引冲突的班级码
	taken map[string]bool
}

func newFakeClasses() *fakeClasses {
	return &fakeClasses{
		classes:     make(map[uint]*model.Class),
		enrollments: make(map[enrollmentKey]bool),
		taken:       make(map[string]bool),
	}
}

func (f *fakeClasses) add(name, code string, teacherID uint) *model.Class {
	class := &model.Class{Name: name, Code: code, TeacherID: teacherID}
	if err := f.Create(context.Background(), class); err != nil {
		panic(err)
	}
	return class
}

func (f *fakeClasses) Create(_ context.Context, class *model.Class) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.taken[class.Code] {
		return util.ErrClassCodeTaken
	}
	f.nextID++
	class.ID = f.nextID
	cp := *class
	f.classes[class.ID] = &cp
	f.taken[class.Code] = true
	return nil
}

func (f *fakeClasses) FindByID(_ context.Context, id uint) (*model.Class, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.classes[id]
	if !ok {
		return nil, util.ErrClassNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeClasses) FindByCode(_ context.Context, code string) (*model.Class, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.classes {
		if c.Code == code {
			cp := *c
			return &cp, nil
		}
	}
	return nil, util.ErrClassNotFound
}

func (f *fakeClasses) withStats(c *model.Class) model.ClassWithStats {
	var students int64
	for k := range f.enrollments {
		if k.classID == c.ID {
			students++
		}
	}
	return model.ClassWithStats{Class: *c, StudentCount: students}
}

func (f *fakeClasses) FindWithStats(_ context.Context, id uint) (*model.ClassWithStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.classes[id]
	if !ok {
		return nil, util.ErrClassNotFound
	}
	cs := f.withStats(c)
	return &cs, nil
}

func (f *fakeClasses) list(match func(*model.Class) bool) []model.ClassWithStats {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.ClassWithStats
	for _, c := range f.classes {
		if match(c) {
			out = append(out, f.withStats(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeClasses) ListByTeacher(_ context.Context, teacherID uint) ([]model.ClassWithStats, error) {
	return f.list(func(c *model.Class) bool { return c.TeacherID == teacherID }), nil
}

func (f *fakeClasses) ListByStudent(_ context.Context, studentID uint) ([]model.ClassWithStats, error) {
	return f.list(func(c *model.Class) bool { return f.enrollments[enrollmentKey{studentID, c.ID}] }), nil
}

func (f *fakeClasses) ListAll(_ context.Context) ([]model.ClassWithStats, error) {
	return f.list(func(*model.Class) bool { return true }), nil
}

func (f *fakeClasses) Delete(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.classes[id]; !ok {
		return util.ErrClassNotFound
	}
	delete(f.classes, id)
	return nil
}

func (f *fakeClasses) Enroll(_ context.Context, userID, classID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enrollments[enrollmentKey{userID, classID}] = true
	return nil
}

func (f *fakeClasses) IsEnrolled(_ context.Context, userID, classID uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enrollments[enrollmentKey{userID, classID}], nil
}

func (f *fakeClasses) Count(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.classes)), nil
}

type fakeQuizzes struct {
	mu      sync.Mutex
	nextID  uint
	quizzes map[uint]*model.Quiz
}

func newFakeQuizzes() *fakeQuizzes {
	return &fakeQuizzes{quizzes: make(map[uint]*model.Quiz)}
}

func (f *fakeQuizzes) Create(_ context.Context, quiz *model.Quiz) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	quiz.ID = f.nextID
	for i := range quiz.Questions {
		q := &quiz.Questions[i]
		if q.ID == 0 {
			q.ID = quiz.ID*100 + uint(i) + 1
		}
		q.QuizID = quiz.ID
		for j := range q.Options {
			if q.Options[j].ID == 0 {
				q.Options[j].ID = q.ID*10 + uint(j) + 1
			}
			q.Options[j].QuestionID = q.ID
		}
	}
	cp := *quiz
	f.quizzes[quiz.ID] = &cp
	return nil
}

func (f *fakeQuizzes) FindByID(_ context.Context, id uint) (*model.Quiz, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.quizzes[id]
	if !ok {
		return nil, util.ErrQuizNotFound
	}
	cp := *q
	cp.Questions = nil
	return &cp, nil
}

func (f *fakeQuizzes) FindWithQuestions(_ context.Context, id uint) (*model.Quiz, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.quizzes[id]
	if !ok {
		return nil, util.ErrQuizNotFound
	}
	cp := *q
	return &cp, nil
}

func listItem(q *model.Quiz) model.QuizListItem {
	return model.QuizListItem{
		Quiz:          *q,
		QuestionCount: int64(len(q.Questions)),
		TotalPoints:   int64(q.MaxScore()),
	}
}

func (f *fakeQuizzes) FindListItem(_ context.Context, id uint) (*model.QuizListItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.quizzes[id]
	if !ok {
		return nil, util.ErrQuizNotFound
	}
	item := listItem(q)
	return &item, nil
}

func (f *fakeQuizzes) List(_ context.Context, query repository.QuizListQuery) ([]model.QuizListItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.QuizListItem
	for _, q := range f.quizzes {
		if query.ClassID != 0 && q.ClassID != query.ClassID {
			continue
		}
		out = append(out, listItem(q))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeQuizzes) Delete(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.quizzes[id]; !ok {
		return util.ErrQuizNotFound
	}
	delete(f.quizzes, id)
	return nil
}

func (f *fakeQuizzes) Count(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.quizzes)), nil
}

type fakeResults struct {
	mu      sync.Mutex
	nextID  uint
	created []model.Result
	rows    []model.ResultRow
	// 模拟 results(user_id, quiz_id) 唯一索引
	unique bool
}

func (f *fakeResults) Create(_ context.Context, result *model.Result) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.unique {
		for _, r := range f.created {
			if r.UserID == result.UserID && r.QuizID == result.QuizID {
				return util.ErrQuizAlreadyCompleted
			}
		}
	}
	f.nextID++
	result.ID = f.nextID
	f.created = append(f.created, *result)
	return nil
}

// FindRows 在内存中解释类型化的过滤条件
func (f *fakeResults) FindRows(_ context.Context, filter repository.ResultFilter) ([]model.ResultRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.ResultRow
rows:
	for _, r := range f.rows {
		for _, clause := range filter {
			switch c := clause.(type) {
			case repository.ByClass:
				if r.ClassID != uint(c) {
					continue rows
				}
			case repository.ByQuiz:
				if r.QuizID != uint(c) {
					continue rows
				}
			case repository.ByStudent:
				if r.UserID != uint(c) {
					continue rows
				}
			case repository.ByTeacher:
				if r.TeacherID != uint(c) {
					continue rows
				}
			case repository.CompletedFrom:
				if r.CompletedAt.Before(time.Time(c)) {
					continue rows
				}
			case repository.CompletedTo:
				if !r.CompletedAt.Before(time.Time(c)) {
					continue rows
				}
			}
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeResults) Count(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.rows)), nil
}

var (
	_ UserStore   = (*fakeUsers)(nil)
	_ ClassStore  = (*fakeClasses)(nil)
	_ QuizStore   = (*fakeQuizzes)(nil)
	_ ResultStore = (*fakeResults)(nil)
)
