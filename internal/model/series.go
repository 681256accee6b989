package model

import "strings"

// CSV 列名（持久化表与原始表共用）
const (
	ColTitle         = "Title"
	ColGenre         = "Genre"
	ColMainGenre     = "Main Genre"
	ColCast          = "Cast"
	ColSynopsis      = "Synopsis"
	ColRating        = "Rating"
	ColVotes         = "Number of Votes"
	ColIMDbID        = "IMDb ID"
	ColMood          = "Mood"
	ColEmbeddingText = "embedding"

	// 原始表中存在但不进入工作表的列
	ColRuntime     = "Runtime"
	ColCertificate = "Certificate"
	ColGross       = "Gross Revenue"
)

// RetainedColumns 清洗阶段保留的原始列
var RetainedColumns = []string{ColTitle, ColIMDbID, ColGenre, ColCast, ColSynopsis, ColRating, ColVotes}

// PersistedColumns 持久化表的列顺序
var PersistedColumns = []string{
	ColTitle, ColGenre, ColMainGenre, ColCast, ColSynopsis,
	ColRating, ColVotes, ColIMDbID, ColMood, ColEmbeddingText,
}

// RawRecord 原始表中的一行（保留列，全部为字符串，尚未做数值转换）
type RawRecord struct {
	Title    string
	IMDbID   string
	Genre    string
	Cast     string
	Synopsis string
	Rating   string
	Votes    string
}

// Series 剧集记录（工作表中的一行）
type Series struct {
	Title         string  `json:"title"`
	IMDbID        string  `json:"imdb_id"`
	Genre         string  `json:"genre"`
	MainGenre     string  `json:"main_genre"`
	Cast          string  `json:"cast"`
	Synopsis      string  `json:"synopsis"`
	Rating        float64 `json:"rating"`
	Votes         float64 `json:"votes"`
	Mood          Mood    `json:"mood"`
	EmbeddingText string  `json:"embedding_text"`
}

// Key 去重键（标题 + IMDb ID）
func (s *Series) Key() SeriesKey {
	return SeriesKey{Title: s.Title, IMDbID: s.IMDbID}
}

// GetGenres 获取类型切片（去除首尾空白）
func (s *Series) GetGenres() []string {
	if s.Genre == "" {
		return nil
	}
	res := []string{}
	for _, p := range strings.Split(s.Genre, ",") {
		if g := strings.TrimSpace(p); g != "" {
			res = append(res, g)
		}
	}
	return res
}

// SeriesKey 标识同一部剧
type SeriesKey struct {
	Title  string
	IMDbID string
}

// ScoredSeries 语义搜索结果（附带相似度）
type ScoredSeries struct {
	Series
	Score float64 `json:"score"`
}

// Match 向量索引返回的单条近邻
type Match struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// Vector 写入向量索引的单条向量
type Vector struct {
	ID     string    `json:"id"`
	Values []float32 `json:"values"`
}
