package controller

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"learno_backend/internal/config"
	"learno_backend/internal/llm"
	"learno_backend/internal/middleware"
	"learno_backend/internal/model"
	"learno_backend/internal/normalize"
	"learno_backend/internal/service"
	"learno_backend/internal/util"
	"learno_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type LearnController struct {
	Service *service.LearnService
}

func NewLearnController(svc *service.LearnService) *LearnController {
	return &LearnController{Service: svc}
}

type SetTopicRequest struct {
	Name string `json:"name" binding:"required"`
}

type SetSkillLevelRequest struct {
	SkillLevel string `json:"skillLevel" binding:"required"`
}

type SubmitAnswersRequest struct {
	Answers []model.UserAnswer `json:"answers"`
}

type SignInRequired struct {
	SignInURL string `json:"signInUrl"`
}

func viewer(ctx *gin.Context) service.Viewer {
	if user := util.GetUserFromContext(ctx); user != nil {
		return service.Viewer{Username: user.Username}
	}
	return service.Viewer{}
}

// @Summary 创建学习会话
// @Tags 学习
// @Produce json
// @Success 201 {object} util.Response{data=service.SessionView}
// @Router /api/learn/sessions [post]
func (c *LearnController) CreateSession(ctx *gin.Context) {
	view, err := c.Service.Create(ctx.Request.Context())
	if err != nil {
		c.fail(ctx, err)
		return
	}
	util.Created(ctx, view)
}

// @Summary 获取学习会话
// @Tags 学习
// @Produce json
// @Security BearerAuth
// @Param id path string true "会话ID"
// @Success 200 {object} util.Response{data=service.SessionView}
// @Router /api/learn/sessions/{id} [get]
func (c *LearnController) GetSession(ctx *gin.Context) {
	view, err := c.Service.Get(ctx.Request.Context(), ctx.Param("id"), viewer(ctx))
	if err != nil {
		c.fail(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// @Summary 选择主题
// @Tags 学习
// @Accept json
// @Produce json
// @Param id path string true "会话ID"
// @Param body body SetTopicRequest true "主题"
// @Success 200 {object} util.Response{data=service.SessionView}
// @Router /api/learn/sessions/{id}/topic [put]
func (c *LearnController) SetTopic(ctx *gin.Context) {
	var req SetTopicRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	view, err := c.Service.SetTopic(ctx.Request.Context(), ctx.Param("id"), viewer(ctx), req.Name)
	if err != nil {
		c.fail(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// @Summary 选择技能等级并生成测验
// @Tags 学习
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "会话ID"
// @Param body body SetSkillLevelRequest true "技能等级"
// @Success 200 {object} util.Response{data=service.SessionView}
// @Failure 502 {object} util.Response
// @Failure 504 {object} util.Response
// @Router /api/learn/sessions/{id}/skill-level [put]
func (c *LearnController) SetSkillLevel(ctx *gin.Context) {
	var req SetSkillLevelRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	view, err := c.Service.SetSkillLevel(ctx.Request.Context(), ctx.Param("id"), viewer(ctx), req.SkillLevel)
	if err != nil {
		c.fail(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// @Summary 提交答案
// @Tags 学习
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "会话ID"
// @Param body body SubmitAnswersRequest true "答案"
// @Success 200 {object} util.Response{data=service.SessionView}
// @Router /api/learn/sessions/{id}/answers [post]
func (c *LearnController) SubmitAnswers(ctx *gin.Context) {
	var req SubmitAnswersRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	view, err := c.Service.SubmitAnswers(ctx.Request.Context(), ctx.Param("id"), viewer(ctx), req.Answers)
	if err != nil {
		c.fail(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// @Summary 获取测验结果与学习路线
// @Tags 学习
// @Produce json
// @Security BearerAuth
// @Param id path string true "会话ID"
// @Success 200 {object} util.Response{data=service.ResultsView}
// @Router /api/learn/sessions/{id}/results [get]
func (c *LearnController) Results(ctx *gin.Context) {
	res, err := c.Service.Results(ctx.Request.Context(), ctx.Param("id"), viewer(ctx))
	if err != nil {
		c.fail(ctx, err)
		return
	}
	util.Success(ctx, res)
}

// @Summary 重新生成学习路线
// @Tags 学习
// @Produce json
// @Security BearerAuth
// @Param id path string true "会话ID"
// @Success 200 {object} util.Response{data=service.ResultsView}
// @Router /api/learn/sessions/{id}/roadmap/regenerate [post]
func (c *LearnController) RegenerateRoadmap(ctx *gin.Context) {
	res, err := c.Service.RegenerateRoadmap(ctx.Request.Context(), ctx.Param("id"), viewer(ctx))
	if err != nil {
		c.fail(ctx, err)
		return
	}
	util.Success(ctx, res)
}

// @Summary 保存为课程
// @Tags 学习
// @Produce json
// @Security BearerAuth
// @Param id path string true "会话ID"
// @Success 201 {object} util.Response{data=model.Course}
// @Failure 409 {object} util.Response
// @Router /api/learn/sessions/{id}/save [post]
func (c *LearnController) Save(ctx *gin.Context) {
	course, err := c.Service.Save(ctx.Request.Context(), ctx.Param("id"), viewer(ctx))
	if err != nil {
		c.fail(ctx, err)
		return
	}
	util.Created(ctx, course)
}

// @Summary 重置学习会话
// @Tags 学习
// @Produce json
// @Param id path string true "会话ID"
// @Success 200 {object} util.Response{data=service.SessionView}
// @Router /api/learn/sessions/{id}/reset [post]
func (c *LearnController) Reset(ctx *gin.Context) {
	view, err := c.Service.Reset(ctx.Request.Context(), ctx.Param("id"), viewer(ctx))
	if err != nil {
		c.fail(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// @Summary 删除学习会话
// @Tags 学习
// @Produce json
// @Param id path string true "会话ID"
// @Success 200 {object} util.Response
// @Router /api/learn/sessions/{id} [delete]
func (c *LearnController) DeleteSession(ctx *gin.Context) {
	if err := c.Service.Delete(ctx.Request.Context(), ctx.Param("id")); err != nil {
		c.fail(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

func (c *LearnController) fail(ctx *gin.Context, err error) {
	var (
		parseErr     *normalize.ParseError
		rateErr      *llm.ErrRateLimit
		unavailable  *llm.ErrProviderUnavailable
		invalidResp  *llm.ErrInvalidResponse
		maxTokensErr *llm.ErrMaxTokensExceeded
	)

	switch {
	case errors.Is(err, util.ErrSignInRequired):
		signIn := "/sign-in"
		if cfg, ok := ctx.Get(middleware.ContextConfigKey); ok {
			signIn = cfg.(*config.Config).JWT.SignInURL
		}
		util.ErrorWithData(ctx, http.StatusUnauthorized, err.Error(), SignInRequired{SignInURL: signIn})
	case errors.Is(err, util.ErrSessionNotFound):
		util.Error(ctx, http.StatusNotFound, err.Error())
	case errors.Is(err, util.ErrInvalidAnswer),
		errors.Is(err, util.ErrInvalidSkill),
		errors.Is(err, util.ErrInvalidTopic):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, util.ErrStepOutOfOrder),
		errors.Is(err, util.ErrStaleSession),
		errors.Is(err, util.ErrDuplicateCourse):
		util.Conflict(ctx, err.Error())
	case errors.Is(err, service.ErrGenerationTimeout):
		util.Error(ctx, http.StatusGatewayTimeout, err.Error())
	case errors.As(err, &parseErr):
		logger.Log.Warn("AI response could not be parsed",
			zap.String("stage", parseErr.Stage),
			zap.String("reason", parseErr.Reason))
		util.Error(ctx, http.StatusBadGateway, "The AI response could not be understood, please try again")
	case errors.As(err, &invalidResp), errors.As(err, &maxTokensErr):
		logger.Log.Warn("AI response rejected", zap.Error(err))
		util.Error(ctx, http.StatusBadGateway, "The AI response could not be understood, please try again")
	case errors.As(err, &rateErr):
		if rateErr.RetryAfter > 0 {
			ctx.Header("Retry-After", strconv.Itoa(int(math.Ceil(rateErr.RetryAfter.Seconds()))))
		}
		util.Error(ctx, http.StatusTooManyRequests, "The AI service is busy, please try again later")
	case errors.As(err, &unavailable):
		logger.Log.Error("AI provider unavailable", zap.Error(err))
		util.Error(ctx, http.StatusServiceUnavailable, "The AI service is unavailable")
	default:
		util.LogInternalError(ctx, err)
	}
}
