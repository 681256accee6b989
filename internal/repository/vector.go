package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"
	"github.com/user/bingewatch/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeriesVector 向量表中的一行
type SeriesVector struct {
	IMDbID    string          `gorm:"column:imdb_id;primaryKey"`
	Embedding pgvector.Vector `gorm:"column:embedding"`
	UpdatedAt time.Time       `gorm:"column:updated_at"`
}

// TableName 表名
func (SeriesVector) TableName() string {
	return "series_vectors"
}

// PgVectorIndex 基于 Postgres + pgvector 的向量索引
type PgVectorIndex struct {
	db  *gorm.DB
	dim int
}

// NewPgVectorIndex 创建 pgvector 索引
func NewPgVectorIndex(db *gorm.DB, dim int) *PgVectorIndex {
	return &PgVectorIndex{db: db, dim: dim}
}

// EnsureSchema 创建扩展、表和 HNSW 索引
func (r *PgVectorIndex) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS series_vectors (
			imdb_id    TEXT PRIMARY KEY,
			embedding  vector(%d) NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, r.dim),
		`CREATE INDEX IF NOT EXISTS series_vectors_embedding_idx
			ON series_vectors USING hnsw (embedding vector_cosine_ops)`,
	}
	for _, stmt := range stmts {
		if err := r.db.WithContext(ctx).Exec(stmt).Error; err != nil {
			return fmt.Errorf("初始化向量表失败: %w", err)
		}
	}
	return nil
}

// Query 余弦距离最近的 topK 条，score = 1 - 距离
func (r *PgVectorIndex) Query(ctx context.Context, vector []float32, topK int) ([]model.Match, error) {
	v := pgvector.NewVector(vector)
	var matches []model.Match
	err := r.db.WithContext(ctx).Raw(`
		SELECT imdb_id AS id, 1 - (embedding <=> ?) AS score
		FROM series_vectors
		ORDER BY embedding <=> ?
		LIMIT ?
	`, v, v, topK).Scan(&matches).Error
	if err != nil {
		return nil, err
	}
	return matches, nil
}

// Upsert 写入或更新向量
func (r *PgVectorIndex) Upsert(ctx context.Context, vectors []model.Vector) error {
	if len(vectors) == 0 {
		return nil
	}
	now := time.Now()
	rows := make([]SeriesVector, 0, len(vectors))
	for _, v := range vectors {
		rows = append(rows, SeriesVector{
			IMDbID:    v.ID,
			Embedding: pgvector.NewVector(v.Values),
			UpdatedAt: now,
		})
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "imdb_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"embedding", "updated_at"}),
	}).CreateInBatches(rows, 200).Error
}
