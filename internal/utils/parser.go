package utils

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// SplitGenres 按逗号拆分类型列表并去除空白，空项丢弃
func SplitGenres(genre string) []string {
	if genre == "" {
		return nil
	}
	parts := strings.Split(genre, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			res = append(res, s)
		}
	}
	return res
}

// FirstGenre 取类型列表的第一项，保留原始大小写与空白
func FirstGenre(genre string) string {
	return strings.Split(genre, ",")[0]
}

// ContainsFold 不区分大小写的子串匹配
func ContainsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// ContainsAnyFold 命中任意一个子串即返回 true，subs 为空时返回 false
func ContainsAnyFold(s string, subs []string) bool {
	lower := strings.ToLower(s)
	for _, sub := range subs {
		if strings.Contains(lower, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}

// UniqueSorted 去重并排序，忽略空字符串
func UniqueSorted(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	res := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		res = append(res, v)
	}
	sort.Strings(res)
	return res
}

// FormatVotes 投票数展示：千分位分隔，如 1234567 -> "1,234,567"
func FormatVotes(v float64) string {
	s := strconv.FormatFloat(math.Round(v), 'f', 0, 64)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	var b strings.Builder
	pre := len(s) % 3
	if pre > 0 {
		b.WriteString(s[:pre])
	}
	for i := pre; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
