package util

import (
	"context"
	"errors"
	"time"

	"smart_quiz_portal/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	UserID uint           `json:"user_id"`
	Role   model.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// GenerateJWT 签发会话令牌，sessionID 写入 jti，由会话存储决定是否仍然有效
func GenerateJWT(user *model.User, sessionID, secret string, expiresAt time.Time) (string, error) {
	claims := &Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ParseJWT(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token claims")
}

// Principal 已通过访问控制的请求身份
type Principal struct {
	UserID    uint           `json:"userId"`
	Role      model.UserRole `json:"role"`
	SessionID string         `json:"-"`
}

func (p *Principal) Is(role model.UserRole) bool {
	return p != nil && p.Role == role
}

type principalKey struct{}

const principalContextKey = "principal"

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey{}).(*Principal)
	return p
}

// SetPrincipal 同时写入 gin 上下文和请求 context，便于服务层通过 ctx 读取
func SetPrincipal(c *gin.Context, p *Principal) {
	c.Set(principalContextKey, p)
	c.Request = c.Request.WithContext(WithPrincipal(c.Request.Context(), p))
}

func GetPrincipal(c *gin.Context) *Principal {
	v, exists := c.Get(principalContextKey)
	if !exists {
		return nil
	}
	p, ok := v.(*Principal)
	if !ok {
		return nil
	}
	return p
}
