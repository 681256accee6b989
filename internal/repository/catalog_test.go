package repository

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/user/bingewatch/internal/model"
)

func sampleRows() []model.Series {
	return []model.Series{
		{
			Title: "Dark", IMDbID: "tt5753856", Genre: "Crime, Drama, Mystery", MainGenre: "Crime",
			Cast: "Louis Hofmann, Karoline Eichhorn", Synopsis: "A family saga with a supernatural twist, \"set\" in a German town.",
			Rating: 8.7, Votes: 415000, Mood: model.MoodSad, EmbeddingText: "Dark A family saga",
		},
		{
			Title: "Bluey", IMDbID: "tt7678620", Genre: "Animation, Comedy, Family", MainGenre: "Animation",
			Cast: "Dave McCormack", Synopsis: "The slice-of-life adventures of an Australian Blue Heeler.",
			Rating: 9.3, Votes: 30500.5, Mood: model.MoodFun, EmbeddingText: "Bluey The slice-of-life",
		},
	}
}

func TestSeriesCSVRoundTripPreservesRows(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSeriesCSV(&buf, sampleRows()); err != nil {
		t.Fatalf("WriteSeriesCSV: %v", err)
	}

	header := strings.SplitN(buf.String(), "\n", 2)[0]
	if header != strings.Join(model.PersistedColumns, ",") {
		t.Fatalf("header: got=%q", header)
	}

	got, err := ReadSeriesCSV(&buf)
	if err != nil {
		t.Fatalf("ReadSeriesCSV: %v", err)
	}
	if !reflect.DeepEqual(got, sampleRows()) {
		t.Fatalf("rows differ:\nwant=%+v\ngot=%+v", sampleRows(), got)
	}
}

func TestReadSeriesCSVRejectsMissingColumn(t *testing.T) {
	_, err := ReadSeriesCSV(strings.NewReader("Title,Genre\nX,Drama\n"))
	if err == nil {
		t.Fatalf("expected missing column error")
	}
}

func TestReadSeriesCSVRejectsUnknownMood(t *testing.T) {
	var buf bytes.Buffer
	rows := sampleRows()[:1]
	rows[0].Mood = "Inspiring"
	if err := WriteSeriesCSV(&buf, rows); err != nil {
		t.Fatalf("WriteSeriesCSV: %v", err)
	}
	if _, err := ReadSeriesCSV(&buf); err == nil {
		t.Fatalf("expected invalid mood error")
	}
}

func TestFormatNumber(t *testing.T) {
	cases := map[float64]string{1500: "1500", 8.7: "8.7", 0: "0", 30500.5: "30500.5"}
	for in, want := range cases {
		if got := FormatNumber(in); got != want {
			t.Fatalf("FormatNumber(%v): want=%q got=%q", in, want, got)
		}
	}
}

func writeCatalog(t *testing.T, path string, rows []model.Series) {
	t.Helper()
	var buf bytes.Buffer
	if err := WriteSeriesCSV(&buf, rows); err != nil {
		t.Fatalf("WriteSeriesCSV: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestCatalogRepositoryMissingFile(t *testing.T) {
	repo := NewCatalogRepository(filepath.Join(t.TempDir(), "series.csv"))
	_, err := repo.Load()
	var du *model.DataUnavailableError
	if !errors.As(err, &du) {
		t.Fatalf("err: want=*DataUnavailableError got=%T %v", err, err)
	}
}

func TestCatalogRepositoryCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "series.csv")
	if err := os.WriteFile(path, []byte("not,a,catalog\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := NewCatalogRepository(path).Load()
	var du *model.DataUnavailableError
	if !errors.As(err, &du) {
		t.Fatalf("err: want=*DataUnavailableError got=%T %v", err, err)
	}
}

func TestCatalogRepositoryReloadsChangedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "series.csv")
	writeCatalog(t, path, sampleRows())

	repo := NewCatalogRepository(path)
	first, err := repo.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if first.Len() != 2 {
		t.Fatalf("len: want=2 got=%d", first.Len())
	}

	again, err := repo.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if again != first {
		t.Fatalf("unchanged file should hit the cache")
	}

	writeCatalog(t, path, sampleRows()[:1])
	second, err := repo.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if second.Len() != 1 {
		t.Fatalf("len after rewrite: want=1 got=%d", second.Len())
	}
}

func TestCatalogFindByIMDbIDReturnsFirstRow(t *testing.T) {
	rows := sampleRows()
	dup := rows[0]
	dup.Title = "Dark (Recut)"
	rows = append(rows, dup)

	c := NewCatalog(rows)
	got := c.FindByIMDbID("tt5753856")
	if got == nil || got.Title != "Dark" {
		t.Fatalf("FindByIMDbID: got=%+v", got)
	}
	if c.FindByIMDbID("tt0000000") != nil {
		t.Fatalf("unknown id should return nil")
	}
}
