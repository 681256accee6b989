package pipeline

import (
	"context"
	"fmt"

	"github.com/user/bingewatch/internal/logger"
	"github.com/user/bingewatch/internal/model"
	"golang.org/x/sync/errgroup"
)

// Embedder 文本转向量
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// VectorWriter 向量索引写入端
type VectorWriter interface {
	Upsert(ctx context.Context, vectors []model.Vector) error
}

// Indexer 将规范表的嵌入文本写入向量索引，向量以 IMDb ID 为键
type Indexer struct {
	embedder    Embedder
	index       VectorWriter
	concurrency int
	batchSize   int
	log         *logger.Logger
}

// NewIndexer 创建索引同步器
func NewIndexer(embedder Embedder, index VectorWriter, concurrency int, log *logger.Logger) *Indexer {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Indexer{
		embedder:    embedder,
		index:       index,
		concurrency: concurrency,
		batchSize:   100,
		log:         log.With("component", "Indexer"),
	}
}

// Sync 为每行生成向量并分批写入。同一 IMDb ID 只写第一行，与查询时的回表规则一致。
func (x *Indexer) Sync(ctx context.Context, rows []model.Series) (int, error) {
	seen := make(map[string]struct{}, len(rows))
	todo := make([]model.Series, 0, len(rows))
	for _, s := range rows {
		if _, ok := seen[s.IMDbID]; ok {
			continue
		}
		seen[s.IMDbID] = struct{}{}
		todo = append(todo, s)
	}

	written := 0
	for start := 0; start < len(todo); start += x.batchSize {
		end := start + x.batchSize
		if end > len(todo) {
			end = len(todo)
		}
		batch := todo[start:end]
		vectors := make([]model.Vector, len(batch))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(x.concurrency)
		for i := range batch {
			i := i
			g.Go(func() error {
				vec, err := x.embedder.Embed(gctx, batch[i].EmbeddingText)
				if err != nil {
					return fmt.Errorf("生成向量失败 (%s): %w", batch[i].IMDbID, err)
				}
				vectors[i] = model.Vector{ID: batch[i].IMDbID, Values: vec}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return written, &model.ExternalServiceError{Service: "embedding", Err: err}
		}

		if err := x.index.Upsert(ctx, vectors); err != nil {
			return written, &model.ExternalServiceError{Service: "vector-index", Err: err}
		}
		written += len(vectors)
		x.log.Info("向量批次写入完成", "written", written, "total", len(todo))
	}
	return written, nil
}
