package controller

import (
	"smart_quiz_portal/internal/service"
	"smart_quiz_portal/internal/util"

	"github.com/gin-gonic/gin"
)

type ClassController struct {
	ClassService *service.ClassService
}

func NewClassController(classService *service.ClassService) *ClassController {
	return &ClassController{ClassService: classService}
}

// CreateClass godoc
// @Summary 创建班级
// @Description 班级码为 1-10 位大写字母或数字，留空时自动生成
// @Tags 班级
// @Accept  json
// @Produce  json
// @Param   body body service.CreateClassInput true "班级信息"
// @Success 201 {object} util.Response{data=model.Class}
// @Failure 409 {object} util.Response "班级码已被使用"
// @Router /api/teacher/classes [post]
func (c *ClassController) CreateClass(ctx *gin.Context) {
	var req service.CreateClassInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	class, err := c.ClassService.Create(ctx.Request.Context(), util.GetPrincipal(ctx).UserID, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, class)
}

func (c *ClassController) TeacherClasses(ctx *gin.Context) {
	classes, err := c.ClassService.ListForTeacher(ctx.Request.Context(), util.GetPrincipal(ctx).UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, classes)
}

func (c *ClassController) DeleteClass(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	if err := c.ClassService.Delete(ctx.Request.Context(), util.GetPrincipal(ctx).UserID, id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

type JoinClassRequest struct {
	Code string `json:"code" binding:"required,max=10"`
}

func (c *ClassController) JoinClass(ctx *gin.Context) {
	var req JoinClassRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	class, err := c.ClassService.Join(ctx.Request.Context(), util.GetPrincipal(ctx).UserID, req.Code)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, class)
}

func (c *ClassController) StudentClasses(ctx *gin.Context) {
	classes, err := c.ClassService.ListForStudent(ctx.Request.Context(), util.GetPrincipal(ctx).UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, classes)
}

func (c *ClassController) AllClasses(ctx *gin.Context) {
	classes, err := c.ClassService.ListAll(ctx.Request.Context())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, classes)
}
