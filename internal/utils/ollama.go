package utils

import (
	"context"
	"fmt"
	"strings"

	"github.com/user/bingewatch/internal/model"
)

// EmbeddingRequest Ollama embedding API 请求结构
type EmbeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

// EmbeddingResponse Ollama embedding API 响应结构
type EmbeddingResponse struct {
	Embedding []float32 `json:"embedding"`
}

// OllamaEmbedder 调用本地 Ollama API 生成向量
type OllamaEmbedder struct {
	client *HTTPClient
	host   string
	model  string
	dim    int
}

// NewOllamaEmbedder 创建 Ollama 嵌入客户端，dim 为期望的向量维度（0 表示不校验）
func NewOllamaEmbedder(client *HTTPClient, host, model string, dim int) *OllamaEmbedder {
	return &OllamaEmbedder{
		client: client,
		host:   strings.TrimRight(host, "/"),
		model:  model,
		dim:    dim,
	}
}

// Embed 生成文本向量
func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	reqBody := EmbeddingRequest{
		Model:  e.model,
		Prompt: text,
	}

	var result EmbeddingResponse
	if err := e.client.PostJSON(ctx, e.host+"/api/embeddings", nil, reqBody, &result); err != nil {
		return nil, fmt.Errorf("post request to ollama failed: %w", err)
	}

	return checkDim(result.Embedding, e.dim)
}

// checkDim 校验向量非空且维度一致
func checkDim(vec []float32, dim int) ([]float32, error) {
	if len(vec) == 0 {
		return nil, model.ErrNoEmbedding
	}
	if dim > 0 && len(vec) != dim {
		return nil, fmt.Errorf("向量维度不匹配: 期望 %d, 实际 %d", dim, len(vec))
	}
	return vec, nil
}
