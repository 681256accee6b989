package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/user/bingewatch/internal/model"
	"github.com/user/bingewatch/internal/utils"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func okResponse(t *testing.T, v any) *http.Response {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewReader(b)),
	}
}

func newTestPinecone(t *testing.T, fn roundTripFunc) *PineconeIndex {
	t.Helper()
	client := utils.NewHTTPClient(time.Second).WithTransport(fn)
	return NewPineconeIndex(client, "series-abc.svc.pinecone.io", "pk-test", "prod")
}

func TestPineconeQueryRequestShape(t *testing.T) {
	var captured map[string]any
	idx := newTestPinecone(t, func(r *http.Request) (*http.Response, error) {
		if r.URL.String() != "https://series-abc.svc.pinecone.io/query" {
			t.Fatalf("url: got=%q", r.URL.String())
		}
		if r.Header.Get("Api-Key") != "pk-test" {
			t.Fatalf("Api-Key header: got=%q", r.Header.Get("Api-Key"))
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		return okResponse(t, map[string]any{
			"matches": []map[string]any{
				{"id": "tt1", "score": 0.91},
				{"id": "", "score": 0.9},
				{"id": "tt2", "score": 0.72},
			},
		}), nil
	})

	matches, err := idx.Query(context.Background(), []float32{0.5, 0.25}, 5)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if captured["topK"] != float64(5) {
		t.Fatalf("topK: want=5 got=%v", captured["topK"])
	}
	if captured["namespace"] != "prod" {
		t.Fatalf("namespace: want=prod got=%v", captured["namespace"])
	}
	want := []model.Match{{ID: "tt1", Score: 0.91}, {ID: "tt2", Score: 0.72}}
	if len(matches) != len(want) {
		t.Fatalf("matches: want=%v got=%v", want, matches)
	}
	for i := range want {
		if matches[i] != want[i] {
			t.Fatalf("match[%d]: want=%v got=%v", i, want[i], matches[i])
		}
	}
}

func TestPineconeQueryStatusError(t *testing.T) {
	idx := newTestPinecone(t, func(r *http.Request) (*http.Response, error) {
		resp := okResponse(t, map[string]string{"message": "unauthorized"})
		resp.StatusCode = http.StatusUnauthorized
		return resp, nil
	})
	if _, err := idx.Query(context.Background(), []float32{1}, 5); err == nil {
		t.Fatalf("expected error on 401")
	}
}

func TestPineconeUpsertBatches(t *testing.T) {
	var batches []int
	idx := newTestPinecone(t, func(r *http.Request) (*http.Response, error) {
		if r.URL.Path != "/vectors/upsert" {
			t.Fatalf("path: got=%q", r.URL.Path)
		}
		var body pineconeUpsertRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		batches = append(batches, len(body.Vectors))
		return okResponse(t, map[string]int{"upsertedCount": len(body.Vectors)}), nil
	})

	vectors := make([]model.Vector, 250)
	for i := range vectors {
		vectors[i] = model.Vector{ID: "tt", Values: []float32{1}}
	}
	if err := idx.Upsert(context.Background(), vectors); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if len(batches) != 3 || batches[0] != 100 || batches[2] != 50 {
		t.Fatalf("batches: got=%v", batches)
	}
}
