package controller

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"learno_backend/internal/model"
	"learno_backend/internal/service"
	"learno_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// CourseController serves the saved-course endpoints. Bodies are the plain
// {message} shape the web client already understands, not util.Response.
type CourseController struct {
	Service *service.CourseService
}

func NewCourseController(svc *service.CourseService) *CourseController {
	return &CourseController{Service: svc}
}

type DeleteCourseResponse struct {
	Message       string        `json:"message"`
	DeletedCourse *model.Course `json:"deletedCourse"`
}

type ExportCourseResponse struct {
	Message string `json:"message"`
	URL     string `json:"url"`
}

// @Summary 保存课程
// @Tags 课程
// @Accept json
// @Produce json
// @Param body body service.SaveCourseInput true "课程信息"
// @Success 201 {object} util.MessageResponse
// @Failure 400 {object} util.MessageResponse
// @Failure 409 {object} util.MessageResponse
// @Failure 500 {object} util.MessageResponse
// @Router /api/courses/save-course [post]
func (c *CourseController) SaveCourse(ctx *gin.Context) {
	var req service.SaveCourseInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.Message(ctx, http.StatusBadRequest, err.Error())
		return
	}
	// 开启课程鉴权时只能保存到自己名下
	if user := util.GetUserFromContext(ctx); user != nil && user.Username != req.Username {
		util.Message(ctx, http.StatusForbidden, "Forbidden")
		return
	}

	if _, err := c.Service.Save(ctx.Request.Context(), req); err != nil {
		switch {
		case errors.Is(err, util.ErrInvalidCourse), errors.Is(err, util.ErrInvalidSkill):
			util.Message(ctx, http.StatusBadRequest, err.Error())
		case errors.Is(err, util.ErrDuplicateCourse):
			util.Message(ctx, http.StatusConflict, err.Error())
		default:
			util.LogServerError(ctx, err)
		}
		return
	}

	util.Message(ctx, http.StatusCreated, util.MsgCourseSaved)
}

// @Summary 获取用户课程列表
// @Tags 课程
// @Produce json
// @Param username path string true "用户名"
// @Success 200 {array} model.Course
// @Failure 404 {object} util.MessageResponse
// @Router /api/courses/get-courses/{username} [get]
func (c *CourseController) GetCourses(ctx *gin.Context) {
	courses, err := c.Service.List(ctx.Request.Context(), ctx.Param("username"))
	if err != nil {
		util.LogServerError(ctx, err)
		return
	}
	if len(courses) == 0 {
		util.Message(ctx, http.StatusNotFound, util.MsgNoCoursesForUser)
		return
	}
	ctx.JSON(http.StatusOK, courses)
}

// @Summary 获取单个课程
// @Description courseName 忽略大小写，连字符视为空格
// @Tags 课程
// @Produce json
// @Param username path string true "用户名"
// @Param courseName path string true "课程名"
// @Success 200 {object} model.Course
// @Failure 404 {object} util.MessageResponse
// @Router /api/courses/get-course/{username}/{courseName} [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	course, err := c.Service.Get(ctx.Request.Context(), ctx.Param("username"), ctx.Param("courseName"))
	if err != nil {
		c.notFoundOr500(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, course)
}

// @Summary 删除课程
// @Tags 课程
// @Produce json
// @Param username path string true "用户名"
// @Param courseName path string true "课程名"
// @Success 200 {object} DeleteCourseResponse
// @Failure 404 {object} util.MessageResponse
// @Router /api/courses/delete-course/{username}/{courseName} [delete]
func (c *CourseController) DeleteCourse(ctx *gin.Context) {
	course, err := c.Service.Delete(ctx.Request.Context(), ctx.Param("username"), ctx.Param("courseName"))
	if err != nil {
		c.notFoundOr500(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, DeleteCourseResponse{
		Message:       util.MsgCourseDeleted,
		DeletedCourse: course,
	})
}

// @Summary 导出课程
// @Description format=txt|xlsx；store=true 时上传到对象存储并返回链接
// @Tags 课程
// @Produce plain
// @Param username path string true "用户名"
// @Param courseName path string true "课程名"
// @Param format query string false "导出格式" default(txt)
// @Param store query bool false "上传到对象存储"
// @Success 200 {object} ExportCourseResponse
// @Router /api/courses/export/{username}/{courseName} [get]
func (c *CourseController) ExportCourse(ctx *gin.Context) {
	format := ctx.DefaultQuery("format", service.ExportText)
	if format != service.ExportText && format != service.ExportXLSX {
		util.Message(ctx, http.StatusBadRequest, fmt.Sprintf("unsupported export format %q", format))
		return
	}

	username := ctx.Param("username")
	file, err := c.Service.Export(ctx.Request.Context(), username, ctx.Param("courseName"), format)
	if err != nil {
		c.notFoundOr500(ctx, err)
		return
	}

	if ctx.Query("store") == "true" {
		link, err := c.Service.StoreExport(ctx.Request.Context(), file)
		if err != nil {
			util.LogServerError(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, ExportCourseResponse{Message: util.MsgCourseExported, URL: link})
		return
	}

	ctx.DataFromReader(http.StatusOK, int64(len(file.Data)), file.ContentType, bytes.NewReader(file.Data), map[string]string{
		"Content-Disposition": "attachment; filename*=UTF-8''" + url.PathEscape(file.Filename),
	})
}

func (c *CourseController) notFoundOr500(ctx *gin.Context, err error) {
	if errors.Is(err, util.ErrCourseNotFound) {
		util.Message(ctx, http.StatusNotFound, util.MsgCourseNotFound)
		return
	}
	util.LogServerError(ctx, err)
}
