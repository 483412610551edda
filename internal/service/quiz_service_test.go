package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"smart_quiz_portal/internal/util"
)

func validQuizInput(classID uint) CreateQuizInput {
	return CreateQuizInput{
		Title:            "Week 1",
		TimeLimitMinutes: 15,
		ClassID:          classID,
		Questions: []QuestionInput{
			{Text: "2+2", Points: 2, Options: []OptionInput{{Text: "4", IsCorrect: true}, {Text: "5"}}},
			{Text: "Primes", Points: 3, Options: []OptionInput{{Text: "2", IsCorrect: true}, {Text: "3", IsCorrect: true}, {Text: "4"}}},
		},
	}
}

func TestCreateQuizValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *CreateQuizInput)
	}{
		{"no title", func(in *CreateQuizInput) { in.Title = " " }},
		{"no questions", func(in *CreateQuizInput) { in.Questions = nil }},
		{"negative points", func(in *CreateQuizInput) { in.Questions[0].Points = -1 }},
		{"single option", func(in *CreateQuizInput) { in.Questions[0].Options = in.Questions[0].Options[:1] }},
		{"no correct option", func(in *CreateQuizInput) { in.Questions[0].Options[0].IsCorrect = false }},
		{"negative time limit", func(in *CreateQuizInput) { in.TimeLimitMinutes = -5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classes := newFakeClasses()
			class := classes.add("Math", "MATH", 1)
			svc := NewQuizService(newFakeQuizzes(), classes)
			in := validQuizInput(class.ID)
			tt.mutate(&in)
			if _, err := svc.Create(context.Background(), 1, in); !errors.Is(err, util.ErrValidation) {
				t.Fatalf("err = %v, want validation error", err)
			}
		})
	}
}

func TestCreateQuizOwnership(t *testing.T) {
	classes := newFakeClasses()
	class := classes.add("Math", "MATH", 1)
	quizzes := newFakeQuizzes()
	svc := NewQuizService(quizzes, classes)
	ctx := context.Background()

	if _, err := svc.Create(ctx, 2, validQuizInput(class.ID)); !errors.Is(err, util.ErrNotFound) {
		t.Fatalf("other teacher err = %v", err)
	}

	quiz, err := svc.Create(ctx, 1, validQuizInput(class.ID))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if quiz.MaxScore() != 5 || quiz.Questions[1].Order != 2 {
		t.Errorf("quiz = %+v", quiz)
	}

	if _, err := svc.GetForTeacher(ctx, 2, quiz.ID); !errors.Is(err, util.ErrQuizNotFound) {
		t.Errorf("GetForTeacher by other teacher err = %v", err)
	}
	if err := svc.Delete(ctx, 2, quiz.ID); !errors.Is(err, util.ErrQuizNotFound) {
		t.Errorf("Delete by other teacher err = %v", err)
	}
	if err := svc.Delete(ctx, 1, quiz.ID); err != nil {
		t.Errorf("Delete by owner: %v", err)
	}
}

func TestGetForStudentHidesAnswers(t *testing.T) {
	classes := newFakeClasses()
	class := classes.add("Math", "MATH", 1)
	svc := NewQuizService(newFakeQuizzes(), classes)
	ctx := context.Background()

	quiz, err := svc.Create(ctx, 1, validQuizInput(class.ID))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.GetForStudent(ctx, 9, quiz.ID); !errors.Is(err, util.ErrQuizNotFound) {
		t.Fatalf("not enrolled err = %v", err)
	}

	classes.Enroll(ctx, 9, class.ID)
	view, err := svc.GetForStudent(ctx, 9, quiz.ID)
	if err != nil {
		t.Fatalf("GetForStudent: %v", err)
	}
	if len(view.Questions) != 2 || view.MaxScore != 5 {
		t.Fatalf("view = %+v", view)
	}
	if view.Questions[0].Multi || !view.Questions[1].Multi {
		t.Errorf("multi flags = %v %v", view.Questions[0].Multi, view.Questions[1].Multi)
	}

	body, _ := json.Marshal(view)
	if strings.Contains(string(body), "isCorrect") {
		t.Errorf("student view leaks correct answers: %s", body)
	}
}
