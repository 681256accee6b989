package repository

import (
	"context"
	"strings"

	"github.com/user/bingewatch/internal/model"
	"github.com/user/bingewatch/internal/utils"
)

const pineconeUpsertBatch = 100

// pineconeQueryRequest Pinecone /query 请求
type pineconeQueryRequest struct {
	Namespace       string    `json:"namespace,omitempty"`
	Vector          []float32 `json:"vector"`
	TopK            int       `json:"topK"`
	IncludeValues   bool      `json:"includeValues"`
	IncludeMetadata bool      `json:"includeMetadata"`
}

// pineconeQueryResponse Pinecone /query 响应
type pineconeQueryResponse struct {
	Matches []struct {
		ID    string  `json:"id"`
		Score float64 `json:"score"`
	} `json:"matches"`
}

type pineconeUpsertRequest struct {
	Namespace string         `json:"namespace,omitempty"`
	Vectors   []model.Vector `json:"vectors"`
}

// PineconeIndex 托管向量索引的 REST 客户端
type PineconeIndex struct {
	client    *utils.HTTPClient
	host      string
	apiKey    string
	namespace string
}

// NewPineconeIndex 创建 Pinecone 客户端，host 为索引的数据面地址
func NewPineconeIndex(client *utils.HTTPClient, host, apiKey, namespace string) *PineconeIndex {
	host = strings.TrimRight(strings.TrimSpace(host), "/")
	if host != "" && !strings.HasPrefix(host, "http") {
		host = "https://" + host
	}
	return &PineconeIndex{
		client:    client,
		host:      host,
		apiKey:    apiKey,
		namespace: namespace,
	}
}

func (p *PineconeIndex) headers() map[string]string {
	return map[string]string{"Api-Key": p.apiKey}
}

// Query 返回相似度从高到低的近邻
func (p *PineconeIndex) Query(ctx context.Context, vector []float32, topK int) ([]model.Match, error) {
	req := pineconeQueryRequest{
		Namespace: p.namespace,
		Vector:    vector,
		TopK:      topK,
	}
	var resp pineconeQueryResponse
	if err := p.client.PostJSON(ctx, p.host+"/query", p.headers(), req, &resp); err != nil {
		return nil, err
	}

	out := make([]model.Match, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		if strings.TrimSpace(m.ID) == "" {
			continue
		}
		out = append(out, model.Match{ID: m.ID, Score: m.Score})
	}
	return out, nil
}

// Upsert 分批写入向量
func (p *PineconeIndex) Upsert(ctx context.Context, vectors []model.Vector) error {
	for start := 0; start < len(vectors); start += pineconeUpsertBatch {
		end := start + pineconeUpsertBatch
		if end > len(vectors) {
			end = len(vectors)
		}
		req := pineconeUpsertRequest{Namespace: p.namespace, Vectors: vectors[start:end]}
		if err := p.client.PostJSON(ctx, p.host+"/vectors/upsert", p.headers(), req, nil); err != nil {
			return err
		}
	}
	return nil
}
