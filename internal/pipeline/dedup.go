package pipeline

import (
	"sort"

	"github.com/user/bingewatch/internal/model"
)

// Deduplicate 按投票数降序稳定排序，每个 (标题, IMDb ID) 只保留第一行。
// 投票数相同时保持输入顺序，即先加载的行胜出。
func Deduplicate(rows []model.Series) ([]model.Series, int) {
	sorted := make([]model.Series, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Votes > sorted[j].Votes
	})

	seen := make(map[model.SeriesKey]struct{}, len(sorted))
	out := make([]model.Series, 0, len(sorted))
	for _, s := range sorted {
		key := s.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out, len(rows) - len(out)
}
