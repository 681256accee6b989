package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/user/bingewatch/internal/logger"
	"github.com/user/bingewatch/internal/metrics"
	"github.com/user/bingewatch/internal/model"
	"github.com/user/bingewatch/internal/repository"
	"github.com/user/bingewatch/internal/utils"
)

// Embedder 查询文本转向量
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// VectorSearcher 向量索引查询端
type VectorSearcher interface {
	Query(ctx context.Context, vector []float32, topK int) ([]model.Match, error)
}

// CatalogSource 规范表来源
type CatalogSource interface {
	Load() (*repository.Catalog, error)
}

// SearchMode 搜索模式
type SearchMode string

const (
	ModeTitle    SearchMode = "title"
	ModeCast     SearchMode = "cast"
	ModeSynopsis SearchMode = "synopsis"
)

// ParseSearchMode 解析搜索模式（不区分大小写）
func ParseSearchMode(s string) (SearchMode, bool) {
	switch m := SearchMode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeTitle, ModeCast, ModeSynopsis:
		return m, true
	}
	return "", false
}

// QueryConfig 查询阈值与外部调用参数
type QueryConfig struct {
	TopK             int
	SemanticMinVotes float64
	TopMinVotes      float64
	DefaultTopN      int
	Timeout          time.Duration
	EmbedCacheSize   int
}

// SearchResult 搜索结果
type SearchResult struct {
	Items         []model.ScoredSeries `json:"items"`
	ExternalError bool                 `json:"external_error"`
	Message       string               `json:"message,omitempty"`
}

// QueryService 只读查询层
type QueryService struct {
	catalog  CatalogSource
	embedder Embedder
	index    VectorSearcher
	cfg      QueryConfig
	breaker  *gobreaker.CircuitBreaker[[]model.Match]
	embeds   *utils.SearchCache[[]float32]
	log      *logger.Logger
}

// NewQueryService 创建查询服务。embedder 或 index 为 nil 时语义搜索返回外部服务错误。
func NewQueryService(catalog CatalogSource, embedder Embedder, index VectorSearcher, cfg QueryConfig, log *logger.Logger) *QueryService {
	if cfg.TopK <= 0 {
		cfg.TopK = 5
	}
	if cfg.DefaultTopN <= 0 {
		cfg.DefaultTopN = 10
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.EmbedCacheSize <= 0 {
		cfg.EmbedCacheSize = 1000
	}

	log = log.With("component", "QueryService")
	breaker := gobreaker.NewCircuitBreaker[[]model.Match](gobreaker.Settings{
		Name:        "semantic-search",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("熔断器状态变化", "name", name, "from", from.String(), "to", to.String())
		},
	})

	return &QueryService{
		catalog:  catalog,
		embedder: embedder,
		index:    index,
		cfg:      cfg,
		breaker:  breaker,
		embeds:   utils.NewSearchCache[[]float32](cfg.EmbedCacheSize, 0),
		log:      log,
	}
}

// Config 当前查询配置
func (s *QueryService) Config() QueryConfig {
	return s.cfg
}

// Search 按标题、演员或剧情搜索
// 标题与演员为不区分大小写的子串匹配，按表中顺序返回；
// 剧情搜索调用嵌入服务与向量索引，结果保持索引返回的相似度顺序。
func (s *QueryService) Search(ctx context.Context, query string, mode SearchMode, minRating float64) (*SearchResult, error) {
	catalog, err := s.catalog.Load()
	if err != nil {
		metrics.RecordQuery(string(mode), "unavailable")
		return nil, err
	}

	var res *SearchResult
	switch mode {
	case ModeTitle:
		res = &SearchResult{Items: filterSubstring(catalog.Rows, query, minRating, func(r *model.Series) string { return r.Title })}
	case ModeCast:
		res = &SearchResult{Items: filterSubstring(catalog.Rows, query, minRating, func(r *model.Series) string { return r.Cast })}
	case ModeSynopsis:
		res, err = s.semantic(ctx, catalog, query, minRating)
		if err != nil {
			metrics.RecordQuery(string(mode), "external_error")
			return res, err
		}
	default:
		return nil, fmt.Errorf("未知搜索模式: %q", mode)
	}

	metrics.RecordQuery(string(mode), outcome(len(res.Items)))
	return res, nil
}

func filterSubstring(rows []model.Series, query string, minRating float64, field func(*model.Series) string) []model.ScoredSeries {
	items := make([]model.ScoredSeries, 0)
	for i := range rows {
		r := &rows[i]
		if r.Rating >= minRating && utils.ContainsFold(field(r), query) {
			items = append(items, model.ScoredSeries{Series: *r})
		}
	}
	return items
}

// semantic 剧情搜索。外部调用失败时返回空结果并标记 ExternalError，同时返回错误供调用方记录。
func (s *QueryService) semantic(ctx context.Context, catalog *repository.Catalog, query string, minRating float64) (*SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return &SearchResult{Items: []model.ScoredSeries{}}, nil
	}

	matches, err := s.neighbors(ctx, query)
	if err != nil {
		s.log.Warn("语义搜索外部调用失败", "error", err)
		return &SearchResult{
			Items:         []model.ScoredSeries{},
			ExternalError: true,
			Message:       "语义搜索暂时不可用，请稍后再试",
		}, err
	}

	items := make([]model.ScoredSeries, 0, len(matches))
	for _, m := range matches {
		row := catalog.FindByIMDbID(m.ID)
		if row == nil {
			s.log.Debug("向量索引返回未知 ID", "id", m.ID)
			continue
		}
		if row.Votes >= s.cfg.SemanticMinVotes && row.Rating >= minRating {
			items = append(items, model.ScoredSeries{Series: *row, Score: m.Score})
		}
	}
	return &SearchResult{Items: items}, nil
}

// neighbors 一次外部往返：嵌入（带缓存）+ 向量查询，整体受超时与熔断器保护
func (s *QueryService) neighbors(ctx context.Context, query string) ([]model.Match, error) {
	if s.embedder == nil || s.index == nil {
		return nil, &model.ExternalServiceError{Service: "semantic-search", Err: errors.New("未配置嵌入服务或向量索引")}
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	matches, err := s.breaker.Execute(func() ([]model.Match, error) {
		vec, err := s.embed(ctx, query)
		if err != nil {
			return nil, err
		}

		start := time.Now()
		matches, err := s.index.Query(ctx, vec, s.cfg.TopK)
		metrics.ObserveExternal("vector-index", start, err)
		if err != nil {
			return nil, &model.ExternalServiceError{Service: "vector-index", Err: err}
		}
		return matches, nil
	})
	if err != nil {
		var ext *model.ExternalServiceError
		if errors.As(err, &ext) {
			return nil, err
		}
		// 熔断器打开或半开状态请求过多
		return nil, &model.ExternalServiceError{Service: "semantic-search", Err: err}
	}
	return matches, nil
}

func (s *QueryService) embed(ctx context.Context, text string) ([]float32, error) {
	if vec, ok := s.embeds.Get(text); ok {
		return vec, nil
	}

	start := time.Now()
	vec, err := s.embedder.Embed(ctx, text)
	metrics.ObserveExternal("embedding", start, err)
	if err != nil {
		return nil, &model.ExternalServiceError{Service: "embedding", Err: err}
	}
	s.embeds.Set(text, vec)
	return vec, nil
}

// TopByGenre 按类型取评分最高的 n 部剧
// genre 为不区分大小写的子串匹配；subgenres 非空时至少命中其中一个；需达到投票数下限。
func (s *QueryService) TopByGenre(ctx context.Context, genre string, subgenres []string, n int) ([]model.Series, error) {
	catalog, err := s.catalog.Load()
	if err != nil {
		metrics.RecordQuery("top_genre", "unavailable")
		return nil, err
	}

	subs := make([]string, 0, len(subgenres))
	for _, sg := range subgenres {
		if sg = strings.TrimSpace(sg); sg != "" {
			subs = append(subs, sg)
		}
	}

	rows := s.topN(catalog.Rows, n, func(r *model.Series) bool {
		if !utils.ContainsFold(r.Genre, genre) {
			return false
		}
		return len(subs) == 0 || utils.ContainsAnyFold(r.Genre, subs)
	})
	metrics.RecordQuery("top_genre", outcome(len(rows)))
	return rows, nil
}

// TopByMood 按心情取评分最高的 n 部剧
func (s *QueryService) TopByMood(ctx context.Context, mood model.Mood, n int) ([]model.Series, error) {
	catalog, err := s.catalog.Load()
	if err != nil {
		metrics.RecordQuery("top_mood", "unavailable")
		return nil, err
	}

	rows := s.topN(catalog.Rows, n, func(r *model.Series) bool {
		return r.Mood == mood
	})
	metrics.RecordQuery("top_mood", outcome(len(rows)))
	return rows, nil
}

// topN 过滤 + 投票数下限 + 评分降序，评分相同保持表中顺序
func (s *QueryService) topN(rows []model.Series, n int, keep func(*model.Series) bool) []model.Series {
	if n <= 0 {
		n = s.cfg.DefaultTopN
	}

	out := make([]model.Series, 0)
	for i := range rows {
		r := &rows[i]
		if r.Votes >= s.cfg.TopMinVotes && keep(r) {
			out = append(out, *r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Rating > out[j].Rating
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// GenreOptions 类型选择器数据
type GenreOptions struct {
	MainGenres []string `json:"main_genres"`
	Subgenres  []string `json:"subgenres"`
}

// Genres 主类型与全部子类型（去重、排序）
func (s *QueryService) Genres(ctx context.Context) (*GenreOptions, error) {
	catalog, err := s.catalog.Load()
	if err != nil {
		return nil, err
	}

	var mains, subs []string
	for i := range catalog.Rows {
		mains = append(mains, strings.TrimSpace(catalog.Rows[i].MainGenre))
		subs = append(subs, utils.SplitGenres(catalog.Rows[i].Genre)...)
	}
	return &GenreOptions{
		MainGenres: utils.UniqueSorted(mains),
		Subgenres:  utils.UniqueSorted(subs),
	}, nil
}

func outcome(n int) string {
	if n == 0 {
		return "empty"
	}
	return "ok"
}
