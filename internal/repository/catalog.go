package repository

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/user/bingewatch/internal/model"
)

// Catalog 已加载的规范表（只读）
type Catalog struct {
	Rows []model.Series
	byID map[string]int
}

// NewCatalog 由行构建目录，同一 IMDb ID 出现多次时索引指向表中第一行
func NewCatalog(rows []model.Series) *Catalog {
	byID := make(map[string]int, len(rows))
	for i := range rows {
		if _, ok := byID[rows[i].IMDbID]; !ok {
			byID[rows[i].IMDbID] = i
		}
	}
	return &Catalog{Rows: rows, byID: byID}
}

// FindByIMDbID 根据 IMDb ID 查找，未找到返回 nil
func (c *Catalog) FindByIMDbID(id string) *model.Series {
	i, ok := c.byID[id]
	if !ok {
		return nil
	}
	return &c.Rows[i]
}

// Len 行数
func (c *Catalog) Len() int {
	return len(c.Rows)
}

// catalogEntry 缓存项，文件修改时间或大小变化即失效
type catalogEntry struct {
	modTime time.Time
	size    int64
	catalog *Catalog
}

// CatalogRepository 读取流水线产出的规范表
type CatalogRepository struct {
	path  string
	cache *cache.Cache
}

// NewCatalogRepository 创建目录仓库
func NewCatalogRepository(path string) *CatalogRepository {
	// 默认过期时间30分钟，清理间隔10分钟
	return &CatalogRepository{
		path:  path,
		cache: cache.New(30*time.Minute, 10*time.Minute),
	}
}

// Path 规范表路径
func (r *CatalogRepository) Path() string {
	return r.path
}

// Load 加载规范表。每次调用都会 stat 文件，文件变化后重新解析，
// 因此查询总是看到磁盘上的最新版本。
func (r *CatalogRepository) Load() (*Catalog, error) {
	info, err := os.Stat(r.path)
	if err != nil {
		return nil, &model.DataUnavailableError{Path: r.path, Err: err}
	}

	if cached, found := r.cache.Get(r.path); found {
		if entry, ok := cached.(*catalogEntry); ok &&
			entry.modTime.Equal(info.ModTime()) && entry.size == info.Size() {
			return entry.catalog, nil
		}
	}

	f, err := os.Open(r.path)
	if err != nil {
		return nil, &model.DataUnavailableError{Path: r.path, Err: err}
	}
	defer f.Close()

	rows, err := ReadSeriesCSV(f)
	if err != nil {
		return nil, &model.DataUnavailableError{Path: r.path, Err: err}
	}

	catalog := NewCatalog(rows)
	r.cache.SetDefault(r.path, &catalogEntry{
		modTime: info.ModTime(),
		size:    info.Size(),
		catalog: catalog,
	})
	return catalog, nil
}

// Invalidate 清除缓存（流水线重新运行后调用）
func (r *CatalogRepository) Invalidate() {
	r.cache.Delete(r.path)
}

// WriteSeriesCSV 以规范列顺序写出表头和所有行
func WriteSeriesCSV(w io.Writer, rows []model.Series) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(model.PersistedColumns); err != nil {
		return err
	}
	for i := range rows {
		s := &rows[i]
		record := []string{
			s.Title,
			s.Genre,
			s.MainGenre,
			s.Cast,
			s.Synopsis,
			FormatNumber(s.Rating),
			FormatNumber(s.Votes),
			s.IMDbID,
			string(s.Mood),
			s.EmbeddingText,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadSeriesCSV 解析规范表，列按表头名称定位
func ReadSeriesCSV(r io.Reader) ([]model.Series, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("读取表头失败: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}
	for _, col := range model.PersistedColumns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("缺少列 %q", col)
		}
	}

	var rows []model.Series
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("第 %d 行解析失败: %w", line, err)
		}

		rating, err := strconv.ParseFloat(rec[idx[model.ColRating]], 64)
		if err != nil {
			return nil, fmt.Errorf("第 %d 行评分无效: %w", line, err)
		}
		votes, err := strconv.ParseFloat(rec[idx[model.ColVotes]], 64)
		if err != nil {
			return nil, fmt.Errorf("第 %d 行投票数无效: %w", line, err)
		}
		mood := model.Mood(rec[idx[model.ColMood]])
		if !mood.Valid() {
			return nil, fmt.Errorf("第 %d 行心情无效: %q", line, mood)
		}

		rows = append(rows, model.Series{
			Title:         rec[idx[model.ColTitle]],
			IMDbID:        rec[idx[model.ColIMDbID]],
			Genre:         rec[idx[model.ColGenre]],
			MainGenre:     rec[idx[model.ColMainGenre]],
			Cast:          rec[idx[model.ColCast]],
			Synopsis:      rec[idx[model.ColSynopsis]],
			Rating:        rating,
			Votes:         votes,
			Mood:          mood,
			EmbeddingText: rec[idx[model.ColEmbeddingText]],
		})
	}
	return rows, nil
}

// FormatNumber 最短的十进制表示，保证同样的输入写出同样的字节
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
