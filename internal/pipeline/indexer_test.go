package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/user/bingewatch/internal/logger"
	"github.com/user/bingewatch/internal/model"
)

type fakeEmbedder struct {
	mu    sync.Mutex
	texts []string
	fail  string
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if text == f.fail {
		return nil, errors.New("model offline")
	}
	f.texts = append(f.texts, text)
	return []float32{float32(len(text))}, nil
}

type fakeWriter struct {
	batches [][]model.Vector
	err     error
}

func (f *fakeWriter) Upsert(_ context.Context, vectors []model.Vector) error {
	if f.err != nil {
		return f.err
	}
	f.batches = append(f.batches, vectors)
	return nil
}

func seriesN(n int) []model.Series {
	rows := make([]model.Series, n)
	for i := range rows {
		rows[i] = model.Series{
			Title:         fmt.Sprintf("S%d", i),
			IMDbID:        fmt.Sprintf("tt%d", i),
			EmbeddingText: fmt.Sprintf("S%d synopsis", i),
		}
	}
	return rows
}

func TestIndexerSyncBatchesAndSkipsRepeatedIDs(t *testing.T) {
	rows := seriesN(150)
	rows = append(rows, model.Series{Title: "Other", IMDbID: "tt0", EmbeddingText: "Other"})

	emb := &fakeEmbedder{}
	w := &fakeWriter{}
	n, err := NewIndexer(emb, w, 4, logger.Nop()).Sync(context.Background(), rows)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if n != 150 {
		t.Fatalf("written: want=150 got=%d", n)
	}
	if len(w.batches) != 2 || len(w.batches[0]) != 100 || len(w.batches[1]) != 50 {
		t.Fatalf("batches: got=%d", len(w.batches))
	}
	if w.batches[0][0].ID != "tt0" || w.batches[0][0].Values[0] != float32(len("S0 synopsis")) {
		t.Fatalf("first vector: got=%+v", w.batches[0][0])
	}
}

func TestIndexerSyncEmbeddingFailure(t *testing.T) {
	rows := seriesN(3)
	emb := &fakeEmbedder{fail: rows[1].EmbeddingText}
	w := &fakeWriter{}

	_, err := NewIndexer(emb, w, 2, logger.Nop()).Sync(context.Background(), rows)
	var ext *model.ExternalServiceError
	if !errors.As(err, &ext) || ext.Service != "embedding" {
		t.Fatalf("err: want embedding ExternalServiceError got=%v", err)
	}
	if len(w.batches) != 0 {
		t.Fatalf("nothing should be written after embedding failure")
	}
}

func TestIndexerSyncIndexFailure(t *testing.T) {
	w := &fakeWriter{err: errors.New("503")}
	_, err := NewIndexer(&fakeEmbedder{}, w, 1, logger.Nop()).Sync(context.Background(), seriesN(2))
	var ext *model.ExternalServiceError
	if !errors.As(err, &ext) || ext.Service != "vector-index" {
		t.Fatalf("err: want vector-index ExternalServiceError got=%v", err)
	}
}
