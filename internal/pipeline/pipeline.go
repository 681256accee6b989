package pipeline

import (
	"context"
	"time"

	"github.com/user/bingewatch/internal/logger"
	"github.com/user/bingewatch/internal/metrics"
	"github.com/user/bingewatch/internal/model"
	"golang.org/x/sync/singleflight"
)

// Report 一次运行的统计
type Report struct {
	SourceRows   map[string]int `json:"source_rows"`
	Loaded       int            `json:"loaded"`
	Clean        CleanStats     `json:"clean"`
	DroppedDedup int            `json:"dropped_dedup"`
	Persisted    int            `json:"persisted"`
	MoodCounts   map[string]int `json:"mood_counts"`
	Output       string         `json:"output"`
	Duration     string         `json:"duration"`
}

// Result 运行结果，Rows 为最终写出的表
type Result struct {
	Report Report
	Rows   []model.Series
}

// Pipeline 离线数据准备：加载 → 清洗 → 去重 → 派生 → 持久化
type Pipeline struct {
	loader  *Loader
	outPath string
	log     *logger.Logger
}

// New 创建流水线
func New(loader *Loader, outPath string, log *logger.Logger) *Pipeline {
	return &Pipeline{
		loader:  loader,
		outPath: outPath,
		log:     log.With("component", "Pipeline"),
	}
}

// OutPath 规范表路径
func (p *Pipeline) OutPath() string {
	return p.outPath
}

// Run 执行一次完整的批处理。任一阶段失败都会在写文件之前返回。
func (p *Pipeline) Run(ctx context.Context) (res *Result, err error) {
	start := time.Now()
	defer func() { metrics.ObservePipeline(start, err) }()

	// 1. 加载
	loaded, err := p.loader.Load()
	if err != nil {
		p.log.Error("加载原始数据失败", "error", err)
		return nil, err
	}
	metrics.RecordStage("load", len(loaded.Records))
	p.log.Info("原始数据加载完成", "sources", len(loaded.SourceRows), "rows", len(loaded.Records))
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 2. 清洗
	cleaned, stats := Clean(loaded.Records)
	metrics.RecordStage("clean", stats.Output)
	metrics.RecordDropped("null", stats.DroppedNull)
	metrics.RecordDropped("duplicate", stats.DroppedDup)
	metrics.RecordDropped("numeric", stats.DroppedNumeric)
	if stats.DroppedNumeric > 0 {
		p.log.Warn("数值转换失败的行已丢弃", "rows", stats.DroppedNumeric)
	}
	p.log.Info("清洗完成",
		"input", stats.Input,
		"dropped_null", stats.DroppedNull,
		"dropped_duplicate", stats.DroppedDup,
		"output", stats.Output,
	)

	// 3. 去重
	unique, dropped := Deduplicate(cleaned)
	metrics.RecordStage("dedup", len(unique))
	metrics.RecordDropped("dedup", dropped)
	p.log.Info("去重完成", "dropped", dropped, "output", len(unique))

	// 4. 派生列
	derived := Derive(unique)
	moods := make(map[string]int, len(model.AllMoods))
	for _, s := range derived {
		moods[string(s.Mood)]++
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 5. 持久化
	if err := Persist(p.outPath, derived); err != nil {
		p.log.Error("写入规范表失败", "path", p.outPath, "error", err)
		return nil, err
	}
	metrics.RecordStage("persist", len(derived))
	p.log.Info("规范表已写入", "path", p.outPath, "rows", len(derived))

	return &Result{
		Report: Report{
			SourceRows:   loaded.SourceRows,
			Loaded:       len(loaded.Records),
			Clean:        stats,
			DroppedDedup: dropped,
			Persisted:    len(derived),
			MoodCounts:   moods,
			Output:       p.outPath,
			Duration:     time.Since(start).Round(time.Millisecond).String(),
		},
		Rows: derived,
	}, nil
}

// Runner 进程内触发流水线（管理后台），同一输出路径同时只会有一次运行
type Runner struct {
	pipeline *Pipeline
	sf       singleflight.Group
	afterRun func()
}

// NewRunner 创建触发器，afterRun 在成功写入后调用（如清除目录缓存）
func NewRunner(p *Pipeline, afterRun func()) *Runner {
	return &Runner{pipeline: p, afterRun: afterRun}
}

// Run 执行流水线；并发调用共享同一次运行的结果，shared 表示结果来自其他调用者发起的运行
func (r *Runner) Run(ctx context.Context) (report *Report, shared bool, err error) {
	// 共享的运行不随首个调用者的请求取消
	runCtx := context.WithoutCancel(ctx)
	val, err, shared := r.sf.Do(r.pipeline.OutPath(), func() (interface{}, error) {
		res, err := r.pipeline.Run(runCtx)
		if err != nil {
			return nil, err
		}
		if r.afterRun != nil {
			r.afterRun()
		}
		return &res.Report, nil
	})
	if err != nil {
		return nil, shared, err
	}
	return val.(*Report), shared, nil
}
