package router

import (
	"fmt"
	"html/template"
	"net/http"
	"path/filepath"

	"github.com/gin-contrib/multitemplate"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/user/bingewatch/internal/handler"
	"github.com/user/bingewatch/internal/middleware"
	"github.com/user/bingewatch/internal/model"
	"github.com/user/bingewatch/internal/utils"
)

// RegisterRoutes 注册所有路由
func RegisterRoutes(r *gin.Engine, h *handler.Handler) {
	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ==================== 公开页面 ====================
	r.GET("/", h.Home)
	r.GET("/recommender", h.Recommender)
	r.GET("/top", h.Top)
	r.GET("/moods", h.Moods)
	r.NoRoute(h.NotFound)

	// ==================== JSON API ====================
	api := r.Group("/api")
	{
		api.GET("/search", h.APISearch)
		api.GET("/top/genre", h.APITopGenre)
		api.GET("/top/mood", h.APITopMood)
		api.GET("/genres", h.APIGenres)
		api.GET("/moods", h.APIMoods)
	}

	// ==================== 认证 ====================
	auth := r.Group("/auth")
	{
		auth.POST("/login", h.Login)
	}

	// ==================== 管理后台 ====================
	admin := r.Group("/admin")
	admin.Use(middleware.RequireAuth(h.Config.AppSecret))
	admin.Use(middleware.RequireAdmin())
	{
		admin.POST("/pipeline/run", h.AdminRunPipeline)
	}
}

// LoadTemplates 使用 multitemplate 加载模板，解决模板继承问题
func LoadTemplates(templatesDir string) multitemplate.Renderer {
	r := multitemplate.NewRenderer()

	// 获取布局和局部模板
	layouts, err := filepath.Glob(templatesDir + "/layouts/*.html")
	if err != nil {
		panic(err)
	}

	partials, err := filepath.Glob(templatesDir + "/partials/*.html")
	if err != nil {
		panic(err)
	}

	// 组装模板文件列表
	assemble := func(view string) []string {
		files := make([]string, 0)
		files = append(files, layouts...)
		files = append(files, partials...)
		files = append(files, view)
		return files
	}

	// 模板函数
	funcMap := template.FuncMap{
		"dict": func(values ...interface{}) (map[string]interface{}, error) {
			if len(values)%2 != 0 {
				return nil, fmt.Errorf("invalid dict call")
			}
			dict := make(map[string]interface{}, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict keys must be strings")
				}
				dict[key] = values[i+1]
			}
			return dict, nil
		},
		"votes": utils.FormatVotes,
		"rating": func(v float64) string {
			return fmt.Sprintf("%.1f", v)
		},
		"score": func(v float64) string {
			return fmt.Sprintf("%.3f", v)
		},
		"moodLabel": func(m model.Mood) string {
			return m.Label()
		},
	}

	// 注册所有页面模板
	pages := []string{"home", "recommender", "top", "moods", "404"}

	for _, page := range pages {
		viewPath := templatesDir + "/pages/" + page + ".html"
		r.AddFromFilesFuncs(page+".html", funcMap, assemble(viewPath)...)
	}

	return r
}
