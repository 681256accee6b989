package pipeline

import (
	"math"
	"strconv"

	"github.com/user/bingewatch/internal/model"
)

// naTokens CSV 中视为缺失值的字段（精确匹配，不去空白）
var naTokens = map[string]struct{}{
	"": {}, "NA": {}, "N/A": {}, "n/a": {}, "NaN": {}, "nan": {}, "-NaN": {}, "-nan": {},
	"null": {}, "NULL": {}, "None": {}, "<NA>": {}, "#N/A": {}, "#NA": {}, "#N/A N/A": {},
}

// IsNA 判断字段是否为缺失值
func IsNA(v string) bool {
	_, ok := naTokens[v]
	return ok
}

// CleanStats 清洗统计
type CleanStats struct {
	Input          int `json:"input"`
	DroppedNull    int `json:"dropped_null"`
	DroppedDup     int `json:"dropped_duplicate"`
	DroppedNumeric int `json:"dropped_numeric"`
	Output         int `json:"output"`
}

// Clean 依次执行：丢弃含缺失值的行、丢弃完全重复的行、数值转换（失败即丢弃）。
// 数值转换放在最后，因为它可能产生新的缺失值。
func Clean(records []model.RawRecord) ([]model.Series, CleanStats) {
	stats := CleanStats{Input: len(records)}

	// 1. 缺失值
	complete := make([]model.RawRecord, 0, len(records))
	for _, r := range records {
		if hasNA(r) {
			stats.DroppedNull++
			continue
		}
		complete = append(complete, r)
	}

	// 2. 完全重复（保留首次出现）
	seen := make(map[model.RawRecord]struct{}, len(complete))
	unique := make([]model.RawRecord, 0, len(complete))
	for _, r := range complete {
		if _, ok := seen[r]; ok {
			stats.DroppedDup++
			continue
		}
		seen[r] = struct{}{}
		unique = append(unique, r)
	}

	// 3. 数值转换
	out := make([]model.Series, 0, len(unique))
	for _, r := range unique {
		votes, err := strconv.ParseFloat(r.Votes, 64)
		if err != nil || !isFinite(votes) {
			stats.DroppedNumeric++
			continue
		}
		rating, err := strconv.ParseFloat(r.Rating, 64)
		if err != nil || !isFinite(rating) {
			stats.DroppedNumeric++
			continue
		}
		out = append(out, model.Series{
			Title:    r.Title,
			IMDbID:   r.IMDbID,
			Genre:    r.Genre,
			Cast:     r.Cast,
			Synopsis: r.Synopsis,
			Rating:   rating,
			Votes:    votes,
		})
	}

	stats.Output = len(out)
	return out, stats
}

func hasNA(r model.RawRecord) bool {
	return IsNA(r.Title) || IsNA(r.IMDbID) || IsNA(r.Genre) || IsNA(r.Cast) ||
		IsNA(r.Synopsis) || IsNA(r.Rating) || IsNA(r.Votes)
}

// isFinite ParseFloat 会接受 "Inf"/"NaN"，这些同样视为缺失
func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
