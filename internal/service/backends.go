package service

import (
	"context"
	"fmt"

	"github.com/user/bingewatch/internal/config"
	"github.com/user/bingewatch/internal/model"
	"github.com/user/bingewatch/internal/repository"
	"github.com/user/bingewatch/internal/utils"
)

// VectorIndex 向量索引（查询 + 写入）
type VectorIndex interface {
	VectorSearcher
	Upsert(ctx context.Context, vectors []model.Vector) error
}

// EmbedPurpose 嵌入用途：部分后端对查询与文档使用不同的模型参数
type EmbedPurpose int

const (
	EmbedForQuery EmbedPurpose = iota
	EmbedForDocument
)

// NewEmbedder 按配置创建嵌入后端
func NewEmbedder(cfg *config.Config, purpose EmbedPurpose) (Embedder, error) {
	if err := cfg.ValidateEmbedding(); err != nil {
		return nil, err
	}
	client := utils.NewHTTPClient(cfg.ExternalTimeout)
	switch cfg.EmbeddingBackend {
	case "ollama":
		return utils.NewOllamaEmbedder(client, cfg.OllamaHost, cfg.OllamaModel, cfg.EmbeddingDim), nil
	case "gemini":
		task := utils.GeminiTaskQuery
		if purpose == EmbedForDocument {
			task = utils.GeminiTaskDocument
		}
		return utils.NewGeminiEmbedder(client, cfg.GeminiAPIKey, cfg.GeminiEmbedModel, task, cfg.EmbeddingDim), nil
	default:
		return nil, fmt.Errorf("未知嵌入后端: %q", cfg.EmbeddingBackend)
	}
}

// NewVectorIndex 按配置创建向量索引，返回的 closer 用于释放数据库连接
func NewVectorIndex(ctx context.Context, cfg *config.Config) (VectorIndex, func() error, error) {
	if err := cfg.ValidateVectorIndex(); err != nil {
		return nil, nil, err
	}
	switch cfg.VectorBackend {
	case "pinecone":
		client := utils.NewHTTPClient(cfg.ExternalTimeout)
		idx := repository.NewPineconeIndex(client, cfg.PineconeIndexHost, cfg.PineconeAPIKey, cfg.PineconeNamespace)
		return idx, func() error { return nil }, nil
	case "pgvector":
		db, err := repository.InitDB(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, err
		}
		idx := repository.NewPgVectorIndex(db, cfg.EmbeddingDim)
		if err := idx.EnsureSchema(ctx); err != nil {
			sqlDB.Close()
			return nil, nil, err
		}
		return idx, sqlDB.Close, nil
	default:
		return nil, nil, fmt.Errorf("未知向量索引后端: %q", cfg.VectorBackend)
	}
}

// NewQueryConfig 从应用配置提取查询参数
func NewQueryConfig(cfg *config.Config) QueryConfig {
	return QueryConfig{
		TopK:             cfg.SemanticTopK,
		SemanticMinVotes: cfg.SemanticMinVotes,
		TopMinVotes:      cfg.TopMinVotes,
		DefaultTopN:      cfg.DefaultTopN,
		Timeout:          cfg.ExternalTimeout,
		EmbedCacheSize:   cfg.EmbedCacheSize,
	}
}
