package service

import (
	"context"
	"errors"
	"testing"

	"smart_quiz_portal/internal/config"
	"smart_quiz_portal/internal/model"
	"smart_quiz_portal/internal/util"
)

func validRegistration() RegisterInput {
	return RegisterInput{
		Username:        "alice",
		Email:           "Alice@Example.com",
		Name:            "Alice",
		Password:        "password123",
		ConfirmPassword: "password123",
	}
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *RegisterInput)
	}{
		{"short password", func(in *RegisterInput) { in.Password, in.ConfirmPassword = "short", "short" }},
		{"password mismatch", func(in *RegisterInput) { in.ConfirmPassword = "password124" }},
		{"bad email", func(in *RegisterInput) { in.Email = "not-an-email" }},
		{"admin role", func(in *RegisterInput) { in.Role = model.Admin }},
		{"unknown role", func(in *RegisterInput) { in.Role = "guest" }},
		{"blank name", func(in *RegisterInput) { in.Name = "  " }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := NewAuthService(newFakeUsers(), newTestSessions())
			in := validRegistration()
			tt.mutate(&in)
			_, err := auth.Register(context.Background(), in)
			if !errors.Is(err, util.ErrValidation) {
				t.Fatalf("err = %v, want validation error", err)
			}
		})
	}
}

func TestRegisterAndLogin(t *testing.T) {
	users := newFakeUsers()
	sessions := newTestSessions()
	auth := NewAuthService(users, sessions)
	ctx := context.Background()

	user, err := auth.Register(ctx, validRegistration())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Role != model.Student {
		t.Errorf("default role = %q, want student", user.Role)
	}
	if user.Email != "alice@example.com" {
		t.Errorf("email = %q, want lower-cased", user.Email)
	}
	if user.Password == "password123" {
		t.Error("password stored in plain text")
	}

	dup := validRegistration()
	if _, err := auth.Register(ctx, dup); !errors.Is(err, util.ErrUsernameTaken) {
		t.Errorf("duplicate username err = %v", err)
	}
	dup.Username = "alice2"
	if _, err := auth.Register(ctx, dup); !errors.Is(err, util.ErrEmailRegistered) {
		t.Errorf("duplicate email err = %v", err)
	}

	for _, login := range []string{"alice", "ALICE@example.com"} {
		res, err := auth.Login(ctx, login, "password123")
		if err != nil {
			t.Fatalf("Login(%q): %v", login, err)
		}
		if res.Token == "" || res.User.ID != user.ID {
			t.Errorf("login result = %+v", res)
		}
	}

	if _, err := auth.Login(ctx, "alice", "wrong-password"); !errors.Is(err, util.ErrInvalidCredentials) {
		t.Errorf("wrong password err = %v", err)
	}
	if _, err := auth.Login(ctx, "nobody", "password123"); !errors.Is(err, util.ErrInvalidCredentials) {
		t.Errorf("unknown user err = %v", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	auth := NewAuthService(newFakeUsers(), newTestSessions())
	ctx := context.Background()

	in := validRegistration()
	in.Role = model.Teacher
	if _, err := auth.Register(ctx, in); err != nil {
		t.Fatal(err)
	}
	res, err := auth.Login(ctx, "alice", "password123")
	if err != nil {
		t.Fatal(err)
	}

	p, err := auth.Sessions.Authorize(ctx, res.Token, model.Teacher)
	if err != nil {
		t.Fatalf("Authorize: %v", err)
	}
	me, err := auth.CurrentUser(ctx, p)
	if err != nil || me.Username != "alice" {
		t.Fatalf("CurrentUser = %+v, %v", me, err)
	}

	if err := auth.Logout(ctx, p); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := auth.Sessions.Authorize(ctx, res.Token, model.Teacher); !errors.Is(err, util.ErrUnauthorized) {
		t.Fatalf("token still valid after logout: %v", err)
	}
}

func TestEnsureAdmin(t *testing.T) {
	users := newFakeUsers()
	auth := NewAuthService(users, newTestSessions())
	ctx := context.Background()
	cfg := config.AdminConfig{Username: "admin", Email: "admin@example.com", Password: "admin12345"}

	for i := 0; i < 2; i++ {
		if err := auth.EnsureAdmin(ctx, cfg); err != nil {
			t.Fatalf("EnsureAdmin: %v", err)
		}
	}

	counts, _ := users.CountByRole(ctx)
	if counts[model.Admin] != 1 {
		t.Fatalf("admins = %d, want 1", counts[model.Admin])
	}
	if _, err := auth.Login(ctx, "admin", "admin12345"); err != nil {
		t.Fatalf("seeded admin cannot log in: %v", err)
	}
}

func TestEnsureAdminIncompleteConfig(t *testing.T) {
	users := newFakeUsers()
	auth := NewAuthService(users, newTestSessions())
	if err := auth.EnsureAdmin(context.Background(), config.AdminConfig{Username: "admin"}); err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}
	if ok, _ := users.HasRole(context.Background(), model.Admin); ok {
		t.Fatal("admin created from incomplete config")
	}
}
