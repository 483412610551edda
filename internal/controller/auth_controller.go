package controller

import (
	"net/http"

	"smart_quiz_portal/internal/service"
	"smart_quiz_portal/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService *service.AuthService
	CookieName  string
	IsRelease   bool // 生产环境下 cookie 仅通过 HTTPS 发送
}

func NewAuthController(authService *service.AuthService, cookieName string, isRelease bool) *AuthController {
	return &AuthController{
		AuthService: authService,
		CookieName:  cookieName,
		IsRelease:   isRelease,
	}
}

// Register godoc
// @Summary 注册新用户
// @Description 学生或教师注册，管理员只能由配置初始化
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body service.RegisterInput true "用户注册信息"
// @Success 201 {object} util.Response{data=model.User} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 409 {object} util.Response "用户名或邮箱已被注册"
// @Router /api/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req service.RegisterInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.AuthService.Register(ctx.Request.Context(), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Created(ctx, user)
}

type LoginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login godoc
// @Summary 用户登录
// @Description 使用用户名或邮箱登录，返回令牌并写入会话 cookie
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body LoginRequest true "登录信息"
// @Success 200 {object} util.Response{data=service.LoginResult} "登录成功"
// @Failure 401 {object} util.Response "用户名或密码错误"
// @Router /api/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	res, err := c.AuthService.Login(ctx.Request.Context(), req.Login, req.Password)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	maxAge := int(c.AuthService.Sessions.TTL.Seconds())
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(c.CookieName, res.Token, maxAge, "/", "", c.IsRelease, true)
	util.Success(ctx, res)
}

func (c *AuthController) Logout(ctx *gin.Context) {
	if err := c.AuthService.Logout(ctx.Request.Context(), util.GetPrincipal(ctx)); err != nil {
		util.HandleError(ctx, err)
		return
	}

	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(c.CookieName, "", -1, "/", "", c.IsRelease, true)
	util.Success(ctx, nil)
}

func (c *AuthController) Profile(ctx *gin.Context) {
	user, err := c.AuthService.CurrentUser(ctx.Request.Context(), util.GetPrincipal(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, user)
}

// LoginPage 访问控制拒绝浏览器请求后的跳转目标
func (c *AuthController) LoginPage(ctx *gin.Context) {
	util.Success(ctx, gin.H{
		"message": "login required",
		"login":   "/api/login",
	})
}
