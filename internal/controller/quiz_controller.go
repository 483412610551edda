package controller

import (
	"smart_quiz_portal/internal/service"
	"smart_quiz_portal/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	QuizService    *service.QuizService
	ScoringService *service.ScoringService
}

func NewQuizController(quizService *service.QuizService, scoringService *service.ScoringService) *QuizController {
	return &QuizController{
		QuizService:    quizService,
		ScoringService: scoringService,
	}
}

// CreateQuiz godoc
// @Summary 创建测验
// @Description 测验、题目和选项在同一事务中写入
// @Tags 测验
// @Accept  json
// @Produce  json
// @Param   body body service.CreateQuizInput true "测验内容"
// @Success 201 {object} util.Response{data=model.Quiz}
// @Failure 400 {object} util.Response "题目或选项不合法"
// @Failure 404 {object} util.Response "班级不存在"
// @Router /api/teacher/quizzes [post]
func (c *QuizController) CreateQuiz(ctx *gin.Context) {
	var req service.CreateQuizInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	quiz, err := c.QuizService.Create(ctx.Request.Context(), util.GetPrincipal(ctx).UserID, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, quiz)
}

func (c *QuizController) TeacherQuizzes(ctx *gin.Context) {
	classID, ok := queryID(ctx, "class_id")
	if !ok {
		return
	}

	quizzes, err := c.QuizService.ListForTeacher(ctx.Request.Context(), util.GetPrincipal(ctx).UserID, classID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, quizzes)
}

func (c *QuizController) TeacherQuiz(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	quiz, err := c.QuizService.GetForTeacher(ctx.Request.Context(), util.GetPrincipal(ctx).UserID, id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, quiz)
}

func (c *QuizController) DeleteQuiz(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	if err := c.QuizService.Delete(ctx.Request.Context(), util.GetPrincipal(ctx).UserID, id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

func (c *QuizController) StudentQuizzes(ctx *gin.Context) {
	quizzes, err := c.QuizService.ListForStudent(ctx.Request.Context(), util.GetPrincipal(ctx).UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, quizzes)
}

// StudentQuiz 返回作答视图，不含正确答案
func (c *QuizController) StudentQuiz(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	view, err := c.QuizService.GetForStudent(ctx.Request.Context(), util.GetPrincipal(ctx).UserID, id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// SubmitQuiz godoc
// @Summary 提交测验
// @Description 评分并保存成绩，超时提交会被标记 late
// @Tags 测验
// @Accept  json
// @Produce  json
// @Param   id path int true "测验ID"
// @Param   body body service.Submission true "作答"
// @Success 201 {object} util.Response{data=service.SubmitResult}
// @Failure 404 {object} util.Response "测验不存在或未加入班级"
// @Failure 409 {object} util.Response "已完成该测验"
// @Router /api/student/quizzes/{id}/submit [post]
func (c *QuizController) SubmitQuiz(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	var req service.Submission
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	res, err := c.ScoringService.SubmitQuiz(ctx.Request.Context(), util.GetPrincipal(ctx).UserID, id, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, res)
}
