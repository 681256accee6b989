package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/user/bingewatch/internal/model"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func jsonResponse(t *testing.T, status int, v any) *http.Response {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewReader(b)),
	}
}

func TestOllamaEmbedderRequestShape(t *testing.T) {
	var captured EmbeddingRequest
	client := NewHTTPClient(time.Second).WithTransport(roundTripFunc(func(r *http.Request) (*http.Response, error) {
		if r.URL.Path != "/api/embeddings" {
			t.Fatalf("path: want=%q got=%q", "/api/embeddings", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		return jsonResponse(t, http.StatusOK, EmbeddingResponse{Embedding: []float32{0.1, 0.2, 0.3}}), nil
	}))

	e := NewOllamaEmbedder(client, "http://ollama:11434/", "all-minilm", 3)
	vec, err := e.Embed(context.Background(), "space cowboys")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vec) != 3 {
		t.Fatalf("len: want=3 got=%d", len(vec))
	}
	if captured.Model != "all-minilm" || captured.Prompt != "space cowboys" {
		t.Fatalf("request: got=%+v", captured)
	}
}

func TestOllamaEmbedderDimensionMismatch(t *testing.T) {
	client := NewHTTPClient(time.Second).WithTransport(roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return jsonResponse(t, http.StatusOK, EmbeddingResponse{Embedding: []float32{1, 2}}), nil
	}))
	_, err := NewOllamaEmbedder(client, "http://ollama", "m", 384).Embed(context.Background(), "x")
	if err == nil {
		t.Fatalf("expected dimension error")
	}
}

func TestOllamaEmbedderEmptyVector(t *testing.T) {
	client := NewHTTPClient(time.Second).WithTransport(roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return jsonResponse(t, http.StatusOK, EmbeddingResponse{}), nil
	}))
	_, err := NewOllamaEmbedder(client, "http://ollama", "m", 0).Embed(context.Background(), "x")
	if !errors.Is(err, model.ErrNoEmbedding) {
		t.Fatalf("err: want=ErrNoEmbedding got=%v", err)
	}
}

func TestOllamaEmbedderStatusError(t *testing.T) {
	client := NewHTTPClient(time.Second).WithTransport(roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return jsonResponse(t, http.StatusInternalServerError, map[string]string{"error": "model not loaded"}), nil
	}))
	_, err := NewOllamaEmbedder(client, "http://ollama", "m", 0).Embed(context.Background(), "x")
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("err: want=*StatusError got=%T %v", err, err)
	}
	if se.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status: want=500 got=%d", se.StatusCode)
	}
}

func TestGeminiEmbedder(t *testing.T) {
	var captured GeminiEmbedRequest
	client := NewHTTPClient(time.Second).WithTransport(roundTripFunc(func(r *http.Request) (*http.Response, error) {
		if r.URL.Path != "/v1beta/models/text-embedding-004:embedContent" {
			t.Fatalf("path: got=%q", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "secret" {
			t.Fatalf("api key header missing")
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		resp := GeminiEmbedResponse{}
		resp.Embedding.Values = []float32{1, 0}
		return jsonResponse(t, http.StatusOK, resp), nil
	}))

	e := NewGeminiEmbedder(client, "secret", "text-embedding-004", GeminiTaskQuery, 2).
		WithBaseURL("https://gemini.test/v1beta")
	vec, err := e.Embed(context.Background(), "a heist in space")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vec) != 2 {
		t.Fatalf("len: want=2 got=%d", len(vec))
	}
	if captured.TaskType != GeminiTaskQuery {
		t.Fatalf("task type: want=%q got=%q", GeminiTaskQuery, captured.TaskType)
	}
	if len(captured.Content.Parts) != 1 || captured.Content.Parts[0].Text != "a heist in space" {
		t.Fatalf("content: got=%+v", captured.Content)
	}
}

func TestGeminiEmbedderRequiresKey(t *testing.T) {
	e := NewGeminiEmbedder(NewHTTPClient(time.Second), "", "m", "", 0)
	if _, err := e.Embed(context.Background(), "x"); err == nil {
		t.Fatalf("expected missing key error")
	}
}
