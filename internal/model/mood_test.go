package model

import "testing"

func TestClassifyMood(t *testing.T) {
	cases := []struct {
		genre string
		want  Mood
	}{
		{"Comedy, Drama", MoodFun},
		{"Crime, Comedy", MoodFun},
		{"Romance, Drama", MoodRomantic},
		{"Drama, Thriller", MoodSad},
		{"Documentary", MoodSad},
		{"Action, Crime", MoodAdventurous},
		{"Sci-Fi", MoodAdventurous},
		{"Crime, Mystery", MoodTense},
		{"HORROR", MoodTense},
		{"Talk-Show", MoodMixed},
		{"", MoodMixed},
	}
	for _, c := range cases {
		if got := ClassifyMood(c.genre); got != c.want {
			t.Fatalf("ClassifyMood(%q): want=%s got=%s", c.genre, c.want, got)
		}
	}
}

func TestClassifyMoodIsTotal(t *testing.T) {
	for _, g := range []string{"News", "Game-Show", "Short", "???", "Reality-TV, Crime"} {
		if m := ClassifyMood(g); !m.Valid() {
			t.Fatalf("ClassifyMood(%q) returned invalid mood %q", g, m)
		}
	}
}

func TestParseMood(t *testing.T) {
	if m, ok := ParseMood(" romantic "); !ok || m != MoodRomantic {
		t.Fatalf("ParseMood: want=Romantic got=%q ok=%v", m, ok)
	}
	if _, ok := ParseMood("Inspirador"); ok {
		t.Fatalf("unknown mood should not parse")
	}
}

func TestMoodLabel(t *testing.T) {
	if got := MoodFun.Label(); got != "😂 Fun 😂" {
		t.Fatalf("Label: got=%q", got)
	}
	if got := Mood("Other").Label(); got != "Other" {
		t.Fatalf("Label: got=%q", got)
	}
}
