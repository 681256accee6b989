package pipeline

import (
	"github.com/user/bingewatch/internal/model"
	"github.com/user/bingewatch/internal/utils"
)

// Derive 计算派生列：嵌入文本、主类型、心情。只新增列，不改写已有字段。
func Derive(rows []model.Series) []model.Series {
	out := make([]model.Series, len(rows))
	for i, s := range rows {
		s.EmbeddingText = s.Title + " " + s.Synopsis
		s.MainGenre = utils.FirstGenre(s.Genre)
		s.Mood = model.ClassifyMood(s.Genre)
		out[i] = s
	}
	return out
}
