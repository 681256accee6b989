package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata" // 确保在精简镜像中也能识别时区

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/user/bingewatch/internal/config"
	"github.com/user/bingewatch/internal/handler"
	"github.com/user/bingewatch/internal/logger"
	"github.com/user/bingewatch/internal/middleware"
	"github.com/user/bingewatch/internal/pipeline"
	"github.com/user/bingewatch/internal/repository"
	"github.com/user/bingewatch/internal/router"
	"github.com/user/bingewatch/internal/service"
)

func main() {
	// 加载环境变量
	if err := godotenv.Load(); err != nil {
		log.Println("未找到 .env 文件，使用系统环境变量")
	}

	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	appLog, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer appLog.Sync()

	// 规范表（由数据流水线生成）
	catalog := repository.NewCatalogRepository(cfg.CleanDataPath)

	// 定时重新加载规范表（预热缓存、更新指标）
	refresh := service.NewRefreshService(catalog, cfg.CatalogRefresh, appLog)
	refresh.Start(context.Background())
	defer refresh.Stop()

	// 外部服务：嵌入 + 向量索引。初始化失败时语义搜索降级，其余查询照常
	embedder, err := service.NewEmbedder(cfg, service.EmbedForQuery)
	if err != nil {
		appLog.Warn("嵌入服务不可用，语义搜索将返回空结果", "backend", cfg.EmbeddingBackend, "error", err)
	}
	var searcher service.VectorSearcher
	index, closeIndex, err := service.NewVectorIndex(context.Background(), cfg)
	if err != nil {
		appLog.Warn("向量索引不可用，语义搜索将返回空结果", "backend", cfg.VectorBackend, "error", err)
	} else {
		searcher = index
		defer closeIndex()
	}

	query := service.NewQueryService(catalog, embedder, searcher, service.NewQueryConfig(cfg), appLog)
	runner := pipeline.NewRunner(
		pipeline.New(pipeline.NewLoader(cfg.RawDataDir, nil), cfg.CleanDataPath, appLog),
		catalog.Invalidate,
	)

	// 初始化 Gin
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	// 启用 gzip，默认压缩级别
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	// 加载模板（使用 multitemplate 解决继承问题）
	r.HTMLRender = router.LoadTemplates("./web/templates")

	// 静态文件
	r.Static("/static", "./web/static")

	// 中间件
	r.Use(middleware.Logger(appLog))

	// 注册路由
	h := handler.NewHandler(cfg, query, runner, appLog)
	router.RegisterRoutes(r, h)

	srv := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   cfg.ExternalTimeout + 10*time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	// 在 goroutine 中启动服务器，这样我们就可以监听信号
	go func() {
		appLog.Info("服务器启动", "addr", "http://localhost:"+cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal("服务器启动失败", "error", err)
		}
	}()

	// 等待中断信号以优雅地关闭服务器
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("正在关闭服务器...")

	// 5 秒超时上下文用于关闭过程
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLog.Error("服务器强制关闭", "error", err)
		return
	}

	appLog.Info("服务器已退出")
}
