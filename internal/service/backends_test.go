package service

import (
	"context"
	"testing"
	"time"

	"github.com/user/bingewatch/internal/config"
	"github.com/user/bingewatch/internal/repository"
	"github.com/user/bingewatch/internal/utils"
)

func TestNewEmbedderSelectsBackend(t *testing.T) {
	cfg := &config.Config{EmbeddingBackend: "ollama", OllamaHost: "http://localhost:11434", EmbeddingDim: 384, ExternalTimeout: time.Second}
	e, err := NewEmbedder(cfg, EmbedForQuery)
	if err != nil {
		t.Fatalf("NewEmbedder: %v", err)
	}
	if _, ok := e.(*utils.OllamaEmbedder); !ok {
		t.Fatalf("want *OllamaEmbedder got=%T", e)
	}

	cfg.EmbeddingBackend = "gemini"
	cfg.GeminiAPIKey = "gk"
	if e, _ = NewEmbedder(cfg, EmbedForDocument); e == nil {
		t.Fatalf("gemini embedder is nil")
	}
	if _, ok := e.(*utils.GeminiEmbedder); !ok {
		t.Fatalf("want *GeminiEmbedder got=%T", e)
	}

	cfg.GeminiAPIKey = ""
	if _, err := NewEmbedder(cfg, EmbedForQuery); err == nil {
		t.Fatalf("gemini without key should fail")
	}

	cfg.EmbeddingBackend = "word2vec"
	if _, err := NewEmbedder(cfg, EmbedForQuery); err == nil {
		t.Fatalf("unknown backend should fail")
	}
}

func TestNewVectorIndexPinecone(t *testing.T) {
	cfg := &config.Config{VectorBackend: "pinecone", PineconeIndexHost: "idx.svc.pinecone.io", PineconeAPIKey: "k", ExternalTimeout: time.Second}
	idx, closer, err := NewVectorIndex(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewVectorIndex: %v", err)
	}
	defer closer()
	if _, ok := idx.(*repository.PineconeIndex); !ok {
		t.Fatalf("want *PineconeIndex got=%T", idx)
	}

	cfg.VectorBackend = "faiss"
	if _, _, err := NewVectorIndex(context.Background(), cfg); err == nil {
		t.Fatalf("unknown backend should fail")
	}
}

func TestNewQueryConfig(t *testing.T) {
	cfg := &config.Config{SemanticTopK: 7, SemanticMinVotes: 1000, TopMinVotes: 5000, DefaultTopN: 3, ExternalTimeout: 2 * time.Second, EmbedCacheSize: 9}
	qc := NewQueryConfig(cfg)
	if qc.TopK != 7 || qc.SemanticMinVotes != 1000 || qc.TopMinVotes != 5000 || qc.DefaultTopN != 3 || qc.Timeout != 2*time.Second || qc.EmbedCacheSize != 9 {
		t.Fatalf("QueryConfig: got=%+v", qc)
	}
}
