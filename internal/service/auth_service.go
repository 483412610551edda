package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"smart_quiz_portal/internal/config"
	"smart_quiz_portal/internal/model"
	"smart_quiz_portal/internal/util"
	"smart_quiz_portal/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	Users    UserStore
	Sessions *SessionService
}

func NewAuthService(users UserStore, sessions *SessionService) *AuthService {
	return &AuthService{
		Users:    users,
		Sessions: sessions,
	}
}

type RegisterInput struct {
	Username        string         `json:"username" binding:"required,min=3,max=50"`
	Email           string         `json:"email" binding:"required,email"`
	Name            string         `json:"name" binding:"required,max=100"`
	Password        string         `json:"password" binding:"required"`
	ConfirmPassword string         `json:"confirm_password" binding:"required"`
	Role            model.UserRole `json:"role"`
}

func (in *RegisterInput) normalize() error {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)

	if in.Username == "" || in.Name == "" {
		return util.Invalid("username and name are required")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return util.Invalid("email %q is not valid", in.Email)
	}
	if len(in.Password) < util.MinPasswordLength {
		return util.Invalid("password must be at least %d characters", util.MinPasswordLength)
	}
	if in.Password != in.ConfirmPassword {
		return util.Invalid("passwords do not match")
	}

	// 管理员只能通过配置初始化
	switch in.Role {
	case "":
		in.Role = model.Student
	case model.Student, model.Teacher:
	default:
		return util.Invalid("role must be student or teacher")
	}
	return nil
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	if err := s.ensureAvailable(ctx, in.Username, in.Email); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username: in.Username,
		Email:    in.Email,
		Name:     in.Name,
		Password: string(hashedPassword),
		Role:     in.Role,
	}
	if err := s.Users.Create(ctx, user); err != nil {
		return nil, err
	}

	logger.Log.Info("User registered",
		zap.Uint("userID", user.ID),
		zap.String("role", string(user.Role)),
	)
	return user, nil
}

func (s *AuthService) ensureAvailable(ctx context.Context, username, email string) error {
	_, err := s.Users.FindByUsername(ctx, username)
	if err == nil {
		return util.ErrUsernameTaken
	} else if !errors.Is(err, util.ErrNotFound) {
		return err
	}

	_, err = s.Users.FindByEmail(ctx, email)
	if err == nil {
		return util.ErrEmailRegistered
	} else if !errors.Is(err, util.ErrNotFound) {
		return err
	}
	return nil
}

type LoginResult struct {
	*IssuedSession
	User *model.User `json:"user"`
}

// Login 用户名或邮箱登录；账号不存在与密码错误返回相同的错误
func (s *AuthService) Login(ctx context.Context, login, password string) (*LoginResult, error) {
	login = strings.TrimSpace(login)
	if strings.Contains(login, "@") {
		login = strings.ToLower(login)
	}

	user, err := s.Users.FindByLogin(ctx, login)
	if errors.Is(err, util.ErrNotFound) {
		logger.Log.Warn("Login failed: unknown account", zap.String("login", login))
		return nil, util.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		logger.Log.Warn("Login failed: wrong password", zap.Uint("userID", user.ID))
		return nil, util.ErrInvalidCredentials
	}

	session, err := s.Sessions.Issue(ctx, user)
	if err != nil {
		return nil, err
	}
	return &LoginResult{IssuedSession: session, User: user}, nil
}

func (s *AuthService) Logout(ctx context.Context, p *util.Principal) error {
	return s.Sessions.Revoke(ctx, p)
}

func (s *AuthService) CurrentUser(ctx context.Context, p *util.Principal) (*model.User, error) {
	if p == nil {
		return nil, util.ErrMissingSession
	}
	return s.Users.FindByID(ctx, p.UserID)
}

// EnsureAdmin 系统中没有管理员时按配置创建一个
func (s *AuthService) EnsureAdmin(ctx context.Context, cfg config.AdminConfig) error {
	exists, err := s.Users.HasRole(ctx, model.Admin)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	if cfg.Username == "" || cfg.Email == "" || len(cfg.Password) < util.MinPasswordLength {
		logger.Log.Warn("No admin account exists and admin seed config is incomplete")
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	name := cfg.Name
	if name == "" {
		name = "Administrator"
	}
	admin := &model.User{
		Username: cfg.Username,
		Email:    strings.ToLower(cfg.Email),
		Name:     name,
		Password: string(hashedPassword),
		Role:     model.Admin,
	}
	if err := s.Users.Create(ctx, admin); err != nil {
		return err
	}

	logger.Log.Info("Seeded admin account", zap.String("username", admin.Username))
	return nil
}
