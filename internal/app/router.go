package app

import (
	"smart_quiz_portal/internal/middleware"
	"smart_quiz_portal/internal/model"
	"smart_quiz_portal/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

var anyRole = []model.UserRole{model.Student, model.Teacher, model.Admin}

func (a *App) registerRoutes(router *gin.Engine, c *controllers, guard *middleware.Guard) {
	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET(middleware.LoginPath, c.auth.LoginPage)

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 任意已登录用户
	authGroup := router.Group("/api")
	authGroup.Use(guard.RequireRoles(anyRole...))
	{
		authGroup.POST("/logout", c.auth.Logout)
		authGroup.GET("/profile", c.auth.Profile)
	}

	a.registerStudentRoutes(router, c, guard)
	a.registerTeacherRoutes(router, c, guard)
	a.registerAdminRoutes(router, c, guard)
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}
}

func (a *App) registerStudentRoutes(router *gin.Engine, c *controllers, guard *middleware.Guard) {
	student := router.Group("/api/student")
	student.Use(guard.RequireRoles(model.Student))
	{
		student.POST("/classes/join", c.class.JoinClass)
		student.GET("/classes", c.class.StudentClasses)

		student.GET("/quizzes", c.quiz.StudentQuizzes)
		student.GET("/quizzes/:id", c.quiz.StudentQuiz)
		student.POST("/quizzes/:id/submit", c.quiz.SubmitQuiz)

		student.GET("/results", c.report.StudentResults)
		student.GET("/summary", c.report.StudentSummary)
	}
}

func (a *App) registerTeacherRoutes(router *gin.Engine, c *controllers, guard *middleware.Guard) {
	teacher := router.Group("/api/teacher")
	teacher.Use(guard.RequireRoles(model.Teacher))
	{
		teacher.POST("/classes", c.class.CreateClass)
		teacher.GET("/classes", c.class.TeacherClasses)
		teacher.DELETE("/classes/:id", c.class.DeleteClass)
		teacher.GET("/classes/:id/report", c.report.ClassReport)
		teacher.POST("/classes/:id/report/export", c.report.ExportClassReport)

		teacher.POST("/quizzes", c.quiz.CreateQuiz)
		teacher.GET("/quizzes", c.quiz.TeacherQuizzes)
		teacher.GET("/quizzes/:id", c.quiz.TeacherQuiz)
		teacher.DELETE("/quizzes/:id", c.quiz.DeleteQuiz)
		teacher.GET("/quizzes/:id/report", c.report.QuizReport)
		teacher.GET("/analytics", c.report.TeacherAnalytics)
	}
}

func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers, guard *middleware.Guard) {
	admin := router.Group("/api/admin")
	admin.Use(guard.RequireRoles(model.Admin))
	{
		admin.GET("/users", c.user.GetUsers)
		admin.DELETE("/users/:id", c.user.DeleteUser)

		admin.GET("/classes", c.class.AllClasses)
		admin.GET("/classes/:id/report", c.report.ClassReport)
		admin.POST("/classes/:id/report/export", c.report.ExportClassReport)
		admin.GET("/quizzes/:id/report", c.report.QuizReport)

		admin.GET("/analytics", c.report.Analytics)
		admin.GET("/overview", c.report.Overview)
	}
}
