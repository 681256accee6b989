package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/user/bingewatch/internal/model"
	"github.com/user/bingewatch/internal/service"
	"github.com/user/bingewatch/internal/utils"
)

// SearchQuery 搜索参数
type SearchQuery struct {
	Q         string  `form:"q" binding:"max=200"`
	Type      string  `form:"type" binding:"omitempty,oneof=title cast synopsis"`
	MinRating float64 `form:"min_rating" binding:"gte=0,lte=10"`
}

// TopGenreQuery 类型排行参数
type TopGenreQuery struct {
	Genre     string   `form:"genre" binding:"required,max=50"`
	Subgenres []string `form:"subgenre" binding:"max=20,dive,max=50"`
	N         int      `form:"n" binding:"omitempty,gte=1,lte=100"`
}

// TopMoodQuery 心情排行参数
type TopMoodQuery struct {
	Mood string `form:"mood" binding:"required"`
	N    int    `form:"n" binding:"omitempty,gte=1,lte=100"`
}

// MoodOption 心情选项
type MoodOption struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

// APISearch 按标题/演员/剧情搜索
// 语义搜索的外部服务失败时仍返回 200，data.external_error 为 true，items 为空。
func (h *Handler) APISearch(c *gin.Context) {
	var q SearchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.BadRequest(c, bindMessage(err))
		return
	}
	mode := service.ModeTitle
	if q.Type != "" {
		mode, _ = service.ParseSearchMode(q.Type)
	}

	res, err := h.Query.Search(c.Request.Context(), q.Q, mode, q.MinRating)
	if err != nil {
		if res != nil && res.ExternalError {
			_ = c.Error(err)
			h.Log.Warn("语义搜索降级为空结果", "query", q.Q, "error", err)
			utils.SuccessWithMessage(c, res.Message, res)
			return
		}
		h.fail(c, err)
		return
	}
	utils.Success(c, res)
}

// APITopGenre 按类型排行
func (h *Handler) APITopGenre(c *gin.Context) {
	var q TopGenreQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.BadRequest(c, bindMessage(err))
		return
	}

	rows, err := h.Query.TopByGenre(c.Request.Context(), q.Genre, q.Subgenres, q.N)
	if err != nil {
		h.fail(c, err)
		return
	}
	utils.Success(c, gin.H{"items": rows})
}

// APITopMood 按心情排行
func (h *Handler) APITopMood(c *gin.Context) {
	var q TopMoodQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.BadRequest(c, bindMessage(err))
		return
	}
	mood, ok := model.ParseMood(q.Mood)
	if !ok {
		utils.BadRequest(c, "未知心情: "+q.Mood)
		return
	}

	rows, err := h.Query.TopByMood(c.Request.Context(), mood, q.N)
	if err != nil {
		h.fail(c, err)
		return
	}
	utils.Success(c, gin.H{"mood": mood, "label": mood.Label(), "items": rows})
}

// APIGenres 类型选择器数据
func (h *Handler) APIGenres(c *gin.Context) {
	opts, err := h.Query.Genres(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	utils.Success(c, opts)
}

// APIMoods 全部心情
func (h *Handler) APIMoods(c *gin.Context) {
	utils.Success(c, moodOptions())
}

func moodOptions() []MoodOption {
	out := make([]MoodOption, len(model.AllMoods))
	for i, m := range model.AllMoods {
		out[i] = MoodOption{Name: string(m), Label: m.Label()}
	}
	return out
}
