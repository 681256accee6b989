package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/user/bingewatch/internal/config"
	"github.com/user/bingewatch/internal/logger"
	"github.com/user/bingewatch/internal/model"
	"github.com/user/bingewatch/internal/pipeline"
	"github.com/user/bingewatch/internal/service"
	"github.com/user/bingewatch/internal/utils"
)

// Handler HTTP 处理器
type Handler struct {
	Config *config.Config
	Query  *service.QueryService
	Runner *pipeline.Runner
	Log    *logger.Logger
}

// NewHandler 创建处理器，runner 为 nil 时管理后台不可触发流水线
func NewHandler(cfg *config.Config, query *service.QueryService, runner *pipeline.Runner, log *logger.Logger) *Handler {
	return &Handler{
		Config: cfg,
		Query:  query,
		Runner: runner,
		Log:    log.With("component", "Handler"),
	}
}

// RenderData 统一封装公共渲染数据
func (h *Handler) RenderData(c *gin.Context, data gin.H) gin.H {
	res := gin.H{
		"SiteName":   h.Config.SiteName,
		"Path":       c.Request.URL.Path,
		"ActiveMenu": h.getActiveMenu(c.Request.URL.Path),
	}
	for k, v := range data {
		res[k] = v
	}
	return res
}

// getActiveMenu 根据路径判断当前高亮菜单
func (h *Handler) getActiveMenu(path string) string {
	switch path {
	case "/":
		return "home"
	case "/recommender":
		return "recommender"
	case "/top":
		return "top"
	case "/moods":
		return "moods"
	default:
		return ""
	}
}

// statusFor 查询错误映射为 HTTP 状态码
func statusFor(err error) int {
	var du *model.DataUnavailableError
	var ext *model.ExternalServiceError
	switch {
	case errors.As(err, &du), errors.As(err, &ext):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// fail 输出 JSON 错误并记录日志
func (h *Handler) fail(c *gin.Context, err error) {
	status := statusFor(err)
	_ = c.Error(err)
	if status == http.StatusServiceUnavailable {
		h.Log.Warn("数据不可用", "path", c.Request.URL.Path, "error", err)
		utils.ServiceUnavailable(c, "数据暂不可用，请先运行数据流水线")
		return
	}
	h.Log.Error("请求处理失败", "path", c.Request.URL.Path, "error", err)
	utils.InternalServerError(c, "")
}

// bindMessage 参数校验错误转为可读消息
func bindMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "参数格式错误"
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s 不能为空", fe.Field()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s 必须是 [%s] 之一", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s 不满足 %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		}
	}
	return strings.Join(msgs, "; ")
}

// scored 统一为带分数的结果，便于模板复用同一卡片
func scored(rows []model.Series) []model.ScoredSeries {
	out := make([]model.ScoredSeries, len(rows))
	for i := range rows {
		out[i] = model.ScoredSeries{Series: rows[i]}
	}
	return out
}
