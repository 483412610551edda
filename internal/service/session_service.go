package service

import (
	"context"
	"fmt"
	"time"

	"smart_quiz_portal/internal/model"
	"smart_quiz_portal/internal/util"
	"smart_quiz_portal/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionService 签发与校验会话令牌。令牌本身只证明签名有效，
// 会话是否仍然存在以会话存储为准（登出后立即失效）。
type SessionService struct {
	Store  SessionStore
	Secret string
	TTL    time.Duration
	now    func() time.Time
}

func NewSessionService(store SessionStore, secret string, ttl time.Duration) *SessionService {
	return &SessionService{
		Store:  store,
		Secret: secret,
		TTL:    ttl,
		now:    time.Now,
	}
}

type IssuedSession struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *SessionService) Issue(ctx context.Context, user *model.User) (*IssuedSession, error) {
	sessionID := uuid.New().String()
	expiresAt := s.now().Add(s.TTL)

	token, err := util.GenerateJWT(user, sessionID, s.Secret, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	if err := s.Store.Save(ctx, sessionID, user.ID, s.TTL); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return &IssuedSession{Token: token, ExpiresAt: expiresAt}, nil
}

func (s *SessionService) Revoke(ctx context.Context, p *util.Principal) error {
	if p == nil || p.SessionID == "" {
		return nil
	}
	return s.Store.Delete(ctx, p.SessionID)
}

// Authorize 校验令牌并检查角色是否在允许集合中。
// 返回的错误都包装 util.ErrUnauthorized，具体原因仅用于日志与指标；
// 会话存储不可用时返回普通错误。
func (s *SessionService) Authorize(ctx context.Context, token string, allowed ...model.UserRole) (*util.Principal, error) {
	if token == "" {
		return nil, util.ErrMissingSession
	}

	claims, err := util.ParseJWT(token, s.Secret)
	if err != nil {
		logger.Log.Debug("Rejected session token", zap.Error(err))
		return nil, util.ErrSessionExpired
	}

	userID, ok, err := s.Store.Lookup(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("lookup session: %w", err)
	}
	if !ok || userID != claims.UserID {
		return nil, util.ErrSessionExpired
	}

	if !roleAllowed(claims.Role, allowed) {
		return nil, util.ErrRoleDenied
	}

	return &util.Principal{
		UserID:    claims.UserID,
		Role:      claims.Role,
		SessionID: claims.ID,
	}, nil
}

// roleAllowed 精确匹配，管理员不会自动获得其他角色的权限
func roleAllowed(role model.UserRole, allowed []model.UserRole) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}
