package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"smart_quiz_portal/internal/model"
	"smart_quiz_portal/internal/util"
	"smart_quiz_portal/pkg/logger"
	"smart_quiz_portal/pkg/monitoring"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const LoginPath = "/login"

// Authorizer 校验令牌并返回请求身份
type Authorizer interface {
	Authorize(ctx context.Context, token string, allowed ...model.UserRole) (*util.Principal, error)
}

type Guard struct {
	Auth       Authorizer
	CookieName string
}

func NewGuard(auth Authorizer, cookieName string) *Guard {
	if cookieName == "" {
		cookieName = "session"
	}
	return &Guard{Auth: auth, CookieName: cookieName}
}

// RequireRoles 只放行角色在 roles 中的会话。
// 无会话、会话失效和角色不符对客户端返回完全相同的响应。
func (g *Guard) RequireRoles(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := g.Auth.Authorize(c.Request.Context(), g.token(c), roles...)
		if err != nil {
			if !errors.Is(err, util.ErrUnauthorized) {
				logger.Log.Error("Access guard failed", zap.String("path", c.FullPath()), zap.Error(err))
				util.InternalServerError(c)
				c.Abort()
				return
			}

			reason := rejectReason(err)
			monitoring.GuardRejections.WithLabelValues(reason).Inc()
			logger.Log.Debug("Access denied",
				zap.String("path", c.FullPath()),
				zap.String("reason", reason),
			)
			deny(c)
			return
		}

		util.SetPrincipal(c, principal)
		c.Next()
	}
}

func (g *Guard) token(c *gin.Context) string {
	if authHeader := c.GetHeader("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	if cookie, err := c.Cookie(g.CookieName); err == nil {
		return cookie
	}
	return ""
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, util.ErrMissingSession):
		return "missing"
	case errors.Is(err, util.ErrRoleDenied):
		return "role"
	default:
		return "invalid"
	}
}

// deny 浏览器请求跳转登录页，接口请求返回 401
func deny(c *gin.Context) {
	if wantsHTML(c.Request) {
		c.Redirect(http.StatusFound, LoginPath)
		c.Abort()
		return
	}
	util.Unauthorized(c)
	c.Abort()
}

func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
