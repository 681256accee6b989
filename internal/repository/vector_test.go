package repository

import (
	"context"
	"os"
	"testing"

	"github.com/user/bingewatch/internal/model"
)

// 需要带 pgvector 扩展的 Postgres，设置 TEST_DATABASE_URL 后运行
func TestPgVectorIndexIntegration(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := InitDB(dsn)
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	ctx := context.Background()
	idx := NewPgVectorIndex(db, 3)
	if err := idx.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	t.Cleanup(func() { db.Exec(`DELETE FROM series_vectors WHERE imdb_id LIKE 'test-%'`) })

	err = idx.Upsert(ctx, []model.Vector{
		{ID: "test-a", Values: []float32{1, 0, 0}},
		{ID: "test-b", Values: []float32{0, 1, 0}},
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	matches, err := idx.Query(ctx, []float32{0.9, 0.1, 0}, 1)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(matches) != 1 || matches[0].ID != "test-a" {
		t.Fatalf("matches: got=%v", matches)
	}
	if matches[0].Score <= 0.9 {
		t.Fatalf("score: want>0.9 got=%v", matches[0].Score)
	}
}
