package model

import "strings"

// Mood 心情分类
type Mood string

const (
	MoodFun         Mood = "Fun"
	MoodRomantic    Mood = "Romantic"
	MoodSad         Mood = "Sad"
	MoodAdventurous Mood = "Adventurous"
	MoodTense       Mood = "Tense"
	MoodMixed       Mood = "Mixed"
)

// moodRule 一条分类规则：类型文本包含任意关键词即命中
type moodRule struct {
	Mood     Mood
	Keywords []string
}

// moodRules 按优先级排列，先命中先返回。
// "comedy, crime" 同时命中 Fun 与 Tense，结果必须是 Fun。
var moodRules = []moodRule{
	{MoodFun, []string{"comedy", "animation", "family", "fantasy", "musical", "music", "reality-tv"}},
	{MoodRomantic, []string{"romance"}},
	{MoodSad, []string{"drama", "documentary", "biography"}},
	{MoodAdventurous, []string{"adventure", "sci-fi", "action", "war", "western"}},
	{MoodTense, []string{"thriller", "crime", "mystery", "horror"}},
}

// AllMoods 全部心情（展示顺序）
var AllMoods = []Mood{MoodFun, MoodRomantic, MoodSad, MoodAdventurous, MoodTense, MoodMixed}

var moodEmoji = map[Mood]string{
	MoodFun:         "😂",
	MoodRomantic:    "🥰",
	MoodSad:         "😢",
	MoodAdventurous: "🤠",
	MoodTense:       "🫣",
	MoodMixed:       "🤪",
}

// ClassifyMood 根据类型文本分类心情，纯函数，永远返回六类之一
func ClassifyMood(genre string) Mood {
	text := strings.ToLower(genre)
	for _, rule := range moodRules {
		for _, kw := range rule.Keywords {
			if strings.Contains(text, kw) {
				return rule.Mood
			}
		}
	}
	return MoodMixed
}

// ParseMood 解析心情名称（不区分大小写），未知名称返回 false
func ParseMood(s string) (Mood, bool) {
	s = strings.TrimSpace(s)
	for _, m := range AllMoods {
		if strings.EqualFold(string(m), s) {
			return m, true
		}
	}
	return "", false
}

// Valid 是否为六类之一
func (m Mood) Valid() bool {
	_, ok := moodEmoji[m]
	return ok
}

// Label 带表情的展示文案，如 "😂 Fun 😂"
func (m Mood) Label() string {
	e, ok := moodEmoji[m]
	if !ok {
		return string(m)
	}
	return e + " " + string(m) + " " + e
}
