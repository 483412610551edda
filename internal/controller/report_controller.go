package controller

import (
	"smart_quiz_portal/internal/service"
	"smart_quiz_portal/internal/util"

	"github.com/gin-gonic/gin"
)

type ReportController struct {
	ReportService *service.ReportService
}

func NewReportController(reportService *service.ReportService) *ReportController {
	return &ReportController{ReportService: reportService}
}

func (c *ReportController) StudentResults(ctx *gin.Context) {
	results, err := c.ReportService.StudentResults(ctx.Request.Context(), util.GetPrincipal(ctx).UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, results)
}

func (c *ReportController) StudentSummary(ctx *gin.Context) {
	summary, err := c.ReportService.StudentSummary(ctx.Request.Context(), util.GetPrincipal(ctx).UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, summary)
}

func (c *ReportController) ClassReport(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	report, err := c.ReportService.ClassReport(ctx.Request.Context(), util.GetPrincipal(ctx), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, report)
}

func (c *ReportController) QuizReport(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	report, err := c.ReportService.QuizReport(ctx.Request.Context(), util.GetPrincipal(ctx), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, report)
}

// ExportClassReport godoc
// @Summary 导出班级报表
// @Description 生成 CSV 并上传到对象存储
// @Tags 报表
// @Produce  json
// @Param   id path int true "班级ID"
// @Success 201 {object} util.Response{data=object} "文件地址"
// @Router /api/teacher/classes/{id}/report/export [post]
func (c *ReportController) ExportClassReport(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	url, err := c.ReportService.ExportClassReport(ctx.Request.Context(), util.GetPrincipal(ctx), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, gin.H{"url": url})
}

// analyticsQuery 解析公共的过滤参数，出错时已写入响应
func analyticsQuery(ctx *gin.Context) (service.AnalyticsQuery, bool) {
	var q service.AnalyticsQuery
	var ok bool
	if q.TeacherID, ok = queryID(ctx, "teacher_id"); !ok {
		return q, false
	}
	if q.ClassID, ok = queryID(ctx, "class_id"); !ok {
		return q, false
	}
	if q.QuizID, ok = queryID(ctx, "quiz_id"); !ok {
		return q, false
	}
	if q.StudentID, ok = queryID(ctx, "student_id"); !ok {
		return q, false
	}

	var err error
	if q.From, err = util.ParseDate(ctx.Query("from")); err != nil {
		util.HandleError(ctx, err)
		return q, false
	}
	if q.To, err = util.ParseDate(ctx.Query("to")); err != nil {
		util.HandleError(ctx, err)
		return q, false
	}
	return q, true
}

// Analytics godoc
// @Summary 成绩分析
// @Description 按班级、测验、学生和日期范围过滤后汇总
// @Tags 报表
// @Produce  json
// @Param   teacher_id query int false "教师ID"
// @Param   class_id query int false "班级ID"
// @Param   quiz_id query int false "测验ID"
// @Param   student_id query int false "学生ID"
// @Param   from query string false "开始日期 yyyy-mm-dd"
// @Param   to query string false "结束日期 yyyy-mm-dd（含）"
// @Success 200 {object} util.Response{data=model.AnalyticsReport}
// @Router /api/admin/analytics [get]
func (c *ReportController) Analytics(ctx *gin.Context) {
	q, ok := analyticsQuery(ctx)
	if !ok {
		return
	}

	report, err := c.ReportService.Analytics(ctx.Request.Context(), q)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, report)
}

// TeacherAnalytics 教师本人所有班级的汇总，teacher_id 参数被忽略
func (c *ReportController) TeacherAnalytics(ctx *gin.Context) {
	q, ok := analyticsQuery(ctx)
	if !ok {
		return
	}

	report, err := c.ReportService.TeacherAnalytics(ctx.Request.Context(), util.GetPrincipal(ctx), q)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, report)
}

func (c *ReportController) Overview(ctx *gin.Context) {
	overview, err := c.ReportService.Overview(ctx.Request.Context())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, overview)
}
