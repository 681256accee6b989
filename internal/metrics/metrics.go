// Package metrics 提供流水线与查询层的 Prometheus 指标。
//
// 指标分两组：
//   - 流水线：各阶段输出行数、按原因统计的丢弃行数、运行耗时
//   - 查询：按模式和结果统计的查询次数、外部服务调用耗时、当前规范表行数
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PipelineRows 各阶段输出的行数（最近一次运行）
	PipelineRows = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bingewatch_pipeline_rows",
			Help: "Rows produced by each pipeline stage in the last run",
		},
		[]string{"stage"},
	)

	// PipelineDroppedTotal 清洗与去重丢弃的行数
	PipelineDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bingewatch_pipeline_dropped_rows_total",
			Help: "Rows dropped by the pipeline, by reason",
		},
		[]string{"reason"},
	)

	// PipelineDuration 流水线运行耗时
	PipelineDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bingewatch_pipeline_duration_seconds",
			Help:    "Duration of pipeline runs",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)

	// QueriesTotal 查询次数
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bingewatch_queries_total",
			Help: "Queries served, by mode and outcome",
		},
		[]string{"mode", "outcome"},
	)

	// CatalogRows 当前加载的规范表行数，加载失败时为 0
	CatalogRows = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bingewatch_catalog_rows",
			Help: "Rows in the canonical table currently served",
		},
	)

	// ExternalCallDuration 嵌入服务与向量索引调用耗时
	ExternalCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bingewatch_external_call_duration_seconds",
			Help:    "Latency of embedding and vector index calls",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"service", "outcome"},
	)
)

// RecordStage 记录阶段输出行数
func RecordStage(stage string, rows int) {
	PipelineRows.WithLabelValues(stage).Set(float64(rows))
}

// RecordDropped 记录丢弃行数
func RecordDropped(reason string, rows int) {
	if rows > 0 {
		PipelineDroppedTotal.WithLabelValues(reason).Add(float64(rows))
	}
}

// RecordCatalog 记录当前规范表行数
func RecordCatalog(rows int) {
	CatalogRows.Set(float64(rows))
}

// RecordQuery 记录一次查询
func RecordQuery(mode, outcome string) {
	QueriesTotal.WithLabelValues(mode, outcome).Inc()
}

// ObserveExternal 记录一次外部调用
func ObserveExternal(service string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	ExternalCallDuration.WithLabelValues(service, outcome).Observe(time.Since(start).Seconds())
}

// ObservePipeline 记录一次流水线运行
func ObservePipeline(start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	PipelineDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
}
