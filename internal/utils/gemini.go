package utils

import (
	"context"
	"fmt"
)

// GeminiEmbedRequest Gemini embedContent 请求结构
type GeminiEmbedRequest struct {
	Model   string        `json:"model"`
	Content GeminiContent `json:"content"`
	// 语义搜索场景：查询与文档使用不同的 task type
	TaskType string `json:"taskType,omitempty"`
}

type GeminiContent struct {
	Parts []GeminiPart `json:"parts"`
}

type GeminiPart struct {
	Text string `json:"text"`
}

// GeminiEmbedResponse Gemini embedContent 响应结构
type GeminiEmbedResponse struct {
	Embedding struct {
		Values []float32 `json:"values"`
	} `json:"embedding"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

const (
	GeminiTaskQuery    = "RETRIEVAL_QUERY"
	GeminiTaskDocument = "RETRIEVAL_DOCUMENT"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiEmbedder 调用 Gemini API 生成向量
type GeminiEmbedder struct {
	client   *HTTPClient
	baseURL  string
	apiKey   string
	model    string
	taskType string
	dim      int
}

// NewGeminiEmbedder 创建 Gemini 嵌入客户端
func NewGeminiEmbedder(client *HTTPClient, apiKey, model, taskType string, dim int) *GeminiEmbedder {
	return &GeminiEmbedder{
		client:   client,
		baseURL:  geminiBaseURL,
		apiKey:   apiKey,
		model:    model,
		taskType: taskType,
		dim:      dim,
	}
}

// WithBaseURL 替换 API 地址（测试用）
func (e *GeminiEmbedder) WithBaseURL(u string) *GeminiEmbedder {
	e.baseURL = u
	return e
}

// Embed 生成文本向量
func (e *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if e.apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}

	url := fmt.Sprintf("%s/models/%s:embedContent", e.baseURL, e.model)
	reqBody := GeminiEmbedRequest{
		Model:    "models/" + e.model,
		Content:  GeminiContent{Parts: []GeminiPart{{Text: text}}},
		TaskType: e.taskType,
	}

	var result GeminiEmbedResponse
	err := e.client.PostJSON(ctx, url, map[string]string{"x-goog-api-key": e.apiKey}, reqBody, &result)
	if err != nil {
		return nil, fmt.Errorf("post request to gemini failed: %w", err)
	}
	if result.Error != nil {
		return nil, fmt.Errorf("gemini api error: %s", result.Error.Message)
	}

	return checkDim(result.Embedding.Values, e.dim)
}
