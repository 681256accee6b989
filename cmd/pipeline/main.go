package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/user/bingewatch/internal/config"
	"github.com/user/bingewatch/internal/logger"
	"github.com/user/bingewatch/internal/pipeline"
	"github.com/user/bingewatch/internal/service"
)

func main() {
	// 加载环境变量
	if err := godotenv.Load(); err != nil {
		log.Println("未找到 .env 文件，使用系统环境变量")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	rawDir := flag.String("raw", cfg.RawDataDir, "原始数据目录")
	out := flag.String("out", cfg.CleanDataPath, "规范表输出路径")
	sources := flag.String("sources", "", "逗号分隔的数据源文件名，默认全部类型")
	index := flag.Bool("index", false, "运行后将嵌入文本写入向量索引")
	flag.Parse()

	appLog, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer appLog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, appLog, *rawDir, *out, splitSources(*sources), *index); err != nil {
		appLog.Error("流水线运行失败", "error", err)
		appLog.Sync()
		os.Exit(1)
	}
}

// splitSources 解析逗号分隔的文件名，忽略空白与空项
func splitSources(s string) []string {
	var names []string
	for _, name := range strings.Split(s, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func run(ctx context.Context, cfg *config.Config, appLog *logger.Logger, rawDir, out string, sources []string, index bool) error {
	p := pipeline.New(pipeline.NewLoader(rawDir, sources), out, appLog)
	res, err := p.Run(ctx)
	if err != nil {
		return err
	}
	appLog.Info("流水线运行完成",
		"loaded", res.Report.Loaded,
		"persisted", res.Report.Persisted,
		"moods", res.Report.MoodCounts,
		"duration", res.Report.Duration,
	)

	if !index {
		return nil
	}

	embedder, err := service.NewEmbedder(cfg, service.EmbedForDocument)
	if err != nil {
		return fmt.Errorf("初始化嵌入服务失败: %w", err)
	}
	vectors, closeIndex, err := service.NewVectorIndex(ctx, cfg)
	if err != nil {
		return fmt.Errorf("初始化向量索引失败 (%s): %w", cfg.VectorBackend, err)
	}
	defer closeIndex()

	written, err := pipeline.NewIndexer(embedder, vectors, cfg.IndexConcurrency, appLog).Sync(ctx, res.Rows)
	if err != nil {
		return fmt.Errorf("向量索引同步失败 (已写入 %d): %w", written, err)
	}
	appLog.Info("向量索引同步完成", "backend", cfg.VectorBackend, "written", written)
	return nil
}
