package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/user/bingewatch/internal/model"
	"github.com/user/bingewatch/internal/service"
	"github.com/user/bingewatch/internal/utils"
)

// ==================== 公开页面 ====================

// Home 首页（项目介绍）
func (h *Handler) Home(c *gin.Context) {
	c.HTML(http.StatusOK, "home.html", h.RenderData(c, gin.H{
		"Title": h.Config.SiteName,
		"Moods": moodOptions(),
	}))
}

// Recommender 推荐页：标题 / 演员 / 剧情搜索
func (h *Handler) Recommender(c *gin.Context) {
	var q SearchQuery
	data := gin.H{
		"Title": "推荐 - " + h.Config.SiteName,
		"Modes": []service.SearchMode{service.ModeTitle, service.ModeCast, service.ModeSynopsis},
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		data["Error"] = bindMessage(err)
		c.HTML(http.StatusBadRequest, "recommender.html", h.RenderData(c, data))
		return
	}

	mode := service.ModeSynopsis
	if q.Type != "" {
		mode, _ = service.ParseSearchMode(q.Type)
	}
	data["Query"] = q.Q
	data["Mode"] = string(mode)
	data["MinRating"] = q.MinRating

	if q.Q == "" {
		c.HTML(http.StatusOK, "recommender.html", h.RenderData(c, data))
		return
	}

	res, err := h.Query.Search(c.Request.Context(), q.Q, mode, q.MinRating)
	switch {
	case err == nil:
		data["Items"] = res.Items
		data["Searched"] = true
	case res != nil && res.ExternalError:
		_ = c.Error(err)
		h.Log.Warn("语义搜索降级为空结果", "query", q.Q, "error", err)
		data["Items"] = res.Items
		data["Searched"] = true
		data["Message"] = res.Message
	default:
		h.renderError(c, "recommender.html", data, err)
		return
	}
	c.HTML(http.StatusOK, "recommender.html", h.RenderData(c, data))
}

// Top 类型排行页
func (h *Handler) Top(c *gin.Context) {
	data := gin.H{"Title": "类型排行 - " + h.Config.SiteName}

	opts, err := h.Query.Genres(c.Request.Context())
	if err != nil {
		h.renderError(c, "top.html", data, err)
		return
	}
	data["Genres"] = opts

	var q TopGenreQuery
	if c.Query("genre") == "" {
		c.HTML(http.StatusOK, "top.html", h.RenderData(c, data))
		return
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		data["Error"] = bindMessage(err)
		c.HTML(http.StatusBadRequest, "top.html", h.RenderData(c, data))
		return
	}
	data["Genre"] = q.Genre
	data["Selected"] = selectedSet(q.Subgenres)

	rows, err := h.Query.TopByGenre(c.Request.Context(), q.Genre, q.Subgenres, q.N)
	if err != nil {
		h.renderError(c, "top.html", data, err)
		return
	}
	data["Items"] = scored(rows)
	data["Searched"] = true
	c.HTML(http.StatusOK, "top.html", h.RenderData(c, data))
}

// Moods 心情排行页
func (h *Handler) Moods(c *gin.Context) {
	data := gin.H{
		"Title": "心情 - " + h.Config.SiteName,
		"Moods": moodOptions(),
	}

	name := c.Query("mood")
	if name == "" {
		c.HTML(http.StatusOK, "moods.html", h.RenderData(c, data))
		return
	}
	mood, ok := model.ParseMood(name)
	if !ok {
		data["Error"] = "未知心情: " + name
		c.HTML(http.StatusBadRequest, "moods.html", h.RenderData(c, data))
		return
	}
	data["Mood"] = string(mood)
	data["MoodLabel"] = mood.Label()

	rows, err := h.Query.TopByMood(c.Request.Context(), mood, 0)
	if err != nil {
		h.renderError(c, "moods.html", data, err)
		return
	}
	data["Items"] = scored(rows)
	data["Searched"] = true
	c.HTML(http.StatusOK, "moods.html", h.RenderData(c, data))
}

// NotFound 404 页面
func (h *Handler) NotFound(c *gin.Context) {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		utils.NotFound(c, "接口不存在")
		return
	}
	c.HTML(http.StatusNotFound, "404.html", h.RenderData(c, gin.H{
		"Title": "页面不存在 - " + h.Config.SiteName,
	}))
}

// renderError 页面内展示错误，数据表缺失时返回 503
func (h *Handler) renderError(c *gin.Context, page string, data gin.H, err error) {
	_ = c.Error(err)
	status := statusFor(err)
	var du *model.DataUnavailableError
	if errors.As(err, &du) {
		h.Log.Warn("数据不可用", "path", c.Request.URL.Path, "error", err)
		data["Error"] = "数据暂不可用，请先运行数据流水线"
	} else {
		h.Log.Error("页面渲染失败", "path", c.Request.URL.Path, "error", err)
		data["Error"] = "服务器内部错误"
	}
	c.HTML(status, page, h.RenderData(c, data))
}

func selectedSet(values []string) map[string]bool {
	out := make(map[string]bool, len(values))
	for _, v := range values {
		out[v] = true
	}
	return out
}
