package util

import (
	"errors"
	"testing"
	"time"

	"smart_quiz_portal/internal/model"
)

func TestValidClassCode(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"MATH101", true},
		{"A", true},
		{"ABCDEFGHIJ", true},
		{"ABCDEFGHIJK", false},
		{"math101", false},
		{"MATH-101", false},
		{"", false},
		{"A' OR 1=1", false},
	}
	for _, tt := range tests {
		if got := ValidClassCode(tt.code); got != tt.want {
			t.Errorf("ValidClassCode(%q) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestErrorCategories(t *testing.T) {
	if !errors.Is(ErrQuizNotFound, ErrNotFound) {
		t.Error("ErrQuizNotFound should be a not-found error")
	}
	if !errors.Is(ErrQuizAlreadyCompleted, ErrConflict) {
		t.Error("ErrQuizAlreadyCompleted should be a conflict")
	}
	if !errors.Is(ErrInvalidCredentials, ErrUnauthorized) {
		t.Error("ErrInvalidCredentials should be unauthorized")
	}
	err := Invalid("points must be >= 0, got %d", -1)
	if !errors.Is(err, ErrValidation) {
		t.Fatal("Invalid() should wrap ErrValidation")
	}
	if err.Error() != "validation failed: points must be >= 0, got -1" {
		t.Errorf("message = %q", err.Error())
	}
}

func TestJWTRoundTrip(t *testing.T) {
	user := &model.User{Role: model.Teacher}
	user.ID = 42

	token, err := GenerateJWT(user, "sid-1", "secret", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	claims, err := ParseJWT(token, "secret")
	if err != nil {
		t.Fatalf("ParseJWT: %v", err)
	}
	if claims.UserID != 42 || claims.Role != model.Teacher || claims.ID != "sid-1" {
		t.Errorf("claims = %+v", claims)
	}

	if _, err := ParseJWT(token, "other-secret"); err == nil {
		t.Error("token signed with another secret must be rejected")
	}
}

func TestParseJWTRejectsExpired(t *testing.T) {
	user := &model.User{Role: model.Student}
	token, err := GenerateJWT(user, "sid", "secret", time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	if _, err := ParseJWT(token, "secret"); err == nil {
		t.Error("expired token must be rejected")
	}
}

func TestParseDate(t *testing.T) {
	if d, err := ParseDate(""); err != nil || !d.IsZero() {
		t.Errorf("ParseDate(\"\") = %v, %v", d, err)
	}
	d, err := ParseDate("2024-03-01")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if d.Year() != 2024 || d.Month() != time.March || d.Day() != 1 {
		t.Errorf("date = %v", d)
	}
	if _, err := ParseDate("03/01/2024"); !errors.Is(err, ErrValidation) {
		t.Errorf("bad format err = %v, want validation error", err)
	}
}
