package pipeline

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/user/bingewatch/internal/model"
)

// DefaultSources 按类型拆分的原始数据文件
var DefaultSources = []string{
	"action_series.csv", "adventure_series.csv", "animation_series.csv", "biography_series.csv",
	"comedy_series.csv", "crime_series.csv", "documentary_series.csv", "drama_series.csv",
	"family_series.csv", "fantasy_series.csv", "history_series.csv", "horror_series.csv",
	"music_series.csv", "musical_series.csv", "mystery_series.csv", "romance_series.csv",
	"sci-fi_series.csv", "sport_series.csv", "superhero_series.csv", "thriller_series.csv",
	"war_series.csv", "western_series.csv",
}

// Loader 读取各类型原始表并拼接
type Loader struct {
	dir     string
	sources []string
}

// NewLoader 创建加载器，sources 为空时使用 DefaultSources
func NewLoader(dir string, sources []string) *Loader {
	if len(sources) == 0 {
		sources = DefaultSources
	}
	return &Loader{dir: dir, sources: sources}
}

// LoadResult 加载结果
type LoadResult struct {
	Header     []string
	Records    []model.RawRecord
	SourceRows map[string]int
}

// Load 按顺序读取所有数据源，保留每一行（不做任何过滤）。
// 所有数据源的表头必须与第一个数据源完全一致。
func (l *Loader) Load() (*LoadResult, error) {
	res := &LoadResult{SourceRows: make(map[string]int, len(l.sources))}

	for _, name := range l.sources {
		header, rows, err := readSource(filepath.Join(l.dir, name))
		if err != nil {
			return nil, err
		}

		if res.Header == nil {
			if err := checkRetained(name, header); err != nil {
				return nil, err
			}
			res.Header = header
		} else if !sameColumns(res.Header, header) {
			return nil, &model.SchemaMismatchError{Source: name, Want: res.Header, Got: header}
		}

		idx := columnIndex(header)
		for _, row := range rows {
			res.Records = append(res.Records, toRawRecord(row, idx))
		}
		res.SourceRows[name] = len(rows)
	}

	return res, nil
}

// readSource 读取单个 CSV，返回表头与数据行
func readSource(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("打开数据源失败: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	// 简介中常见未转义的引号
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("读取 %s 表头失败: %w", filepath.Base(path), err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	var rows [][]string
	for line := 2; ; line++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("读取 %s 第 %d 行失败: %w", filepath.Base(path), line, err)
		}
		if len(rec) > len(header) {
			return nil, nil, fmt.Errorf("%s 第 %d 行字段过多: 期望 %d, 实际 %d",
				filepath.Base(path), line, len(header), len(rec))
		}
		rows = append(rows, rec)
	}
	return header, rows, nil
}

func checkRetained(source string, header []string) error {
	idx := columnIndex(header)
	var missing []string
	for _, col := range model.RetainedColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &model.SchemaMismatchError{
			Source: source,
			Want:   model.RetainedColumns,
			Got:    header,
			Reason: "缺少列 " + strings.Join(missing, ", "),
		}
	}
	return nil
}

func sameColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func columnIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}
	return idx
}

// toRawRecord 取出保留列，行字段不足时缺失列视为空值
func toRawRecord(row []string, idx map[string]int) model.RawRecord {
	get := func(col string) string {
		i := idx[col]
		if i < len(row) {
			return row[i]
		}
		return ""
	}
	return model.RawRecord{
		Title:    get(model.ColTitle),
		IMDbID:   get(model.ColIMDbID),
		Genre:    get(model.ColGenre),
		Cast:     get(model.ColCast),
		Synopsis: get(model.ColSynopsis),
		Rating:   get(model.ColRating),
		Votes:    get(model.ColVotes),
	}
}
