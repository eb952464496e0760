package cmd

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/VastSea0/italiano-sub000/internal/entity"
)

const vocabularyJSON = `{"verbs":[{"infinitive":"essere","translation":"to be"}],"nouns":[{"word":"casa","translation":"house"}]}`

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestPrepareCachePath(t *testing.T) {
	dir := t.TempDir()
	base, path, cached, err := prepareCachePath("https://example.com/data/vocab.JSON?v=2", dir, false)
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if base != dir || cached || filepath.Ext(path) != ".json" || !strings.HasPrefix(filepath.Base(path), "vocabulary-") {
		t.Fatalf("unexpected cache path: %s %s %v", base, path, cached)
	}

	if err := os.WriteFile(path, []byte("{}"), 0o600); err != nil {
		t.Fatalf("seed cache: %v", err)
	}
	if _, again, cached, _ := prepareCachePath("https://example.com/data/vocab.JSON?v=2", dir, false); !cached || again != path {
		t.Fatalf("expected cache hit at %s, got %s (%v)", path, again, cached)
	}
	if _, _, cached, _ := prepareCachePath("https://example.com/data/vocab.JSON?v=2", dir, true); cached {
		t.Fatalf("no-cache must force a download")
	}
	if _, other, _, _ := prepareCachePath("https://example.com/other", dir, false); other == path || filepath.Ext(other) != "" {
		t.Fatalf("unexpected path for extensionless url: %s", other)
	}
}

func TestInstallVocabularyFromArchive(t *testing.T) {
	var archive bytes.Buffer
	zw := zip.NewWriter(&archive)
	for name, body := range map[string]string{"README.txt": "hello", "data/vocabulary.json": vocabularyJSON} {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create: %v", err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("zip write: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write(archive.Bytes())
	}))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	output := filepath.Join(dir, "data", "vocabulary.json")
	cacheDir := filepath.Join(dir, "cache")
	for i := 0; i < 2; i++ {
		data, err := installVocabulary(context.Background(), quietLogger(), srv.URL+"/bundle.zip", output, cacheDir, false)
		if err != nil {
			t.Fatalf("install #%d: %v", i+1, err)
		}
		if data.Len() != 2 {
			t.Fatalf("expected 2 entries, got %d", data.Len())
		}
	}
	if n := hits.Load(); n != 1 {
		t.Fatalf("second install should come from cache, got %d downloads", n)
	}
	installed, err := os.ReadFile(output)
	if err != nil || string(installed) != vocabularyJSON {
		t.Fatalf("unexpected installed file %q (%v)", installed, err)
	}

	var summary bytes.Buffer
	printDatasetSummary(&summary, output, mustLoad(t, output))
	if !strings.Contains(summary.String(), "2 entries, 2 cards") {
		t.Fatalf("unexpected summary: %s", summary.String())
	}
}

func TestInstallVocabularyRejectsEmptyDataset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"colors": []}`))
	}))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	output := filepath.Join(dir, "vocabulary.json")
	if _, err := installVocabulary(context.Background(), quietLogger(), srv.URL+"/v.json", output, dir, true); err == nil {
		t.Fatalf("expected error for empty vocabulary")
	}
	if _, err := os.Stat(output); !os.IsNotExist(err) {
		t.Fatalf("empty vocabulary must not be installed")
	}
}

func TestDownloadFileFailsOnStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	t.Cleanup(srv.Close)

	dst := filepath.Join(t.TempDir(), "v.json")
	if err := downloadFile(context.Background(), srv.URL, dst); err == nil {
		t.Fatalf("expected status error")
	}
	if _, err := os.Stat(dst); !os.IsNotExist(err) {
		t.Fatalf("failed download must not leave a file")
	}
}

func TestNormalizeTables(t *testing.T) {
	got := normalizeTables([]string{" Progress ", "review_sessions,,PROGRESS", ""})
	if !reflect.DeepEqual(got, []string{"progress", "review_sessions", "progress"}) {
		t.Fatalf("unexpected tables: %v", got)
	}
	if normalizeTables([]string{" ", ","}) != nil || normalizeTables(nil) != nil {
		t.Fatalf("blank input should give nil")
	}
}

func TestProgressStep(t *testing.T) {
	cases := map[int]int{0: 1000, -5: 1000, 10: 1, 100: 5, 100000: 1000}
	for total, want := range cases {
		if got := progressStep(total); got != want {
			t.Fatalf("progressStep(%d) = %d, want %d", total, got, want)
		}
	}
}

func TestCLIProgressOutput(t *testing.T) {
	var out bytes.Buffer
	p := newCLIProgress(&out, "export")
	p.StartTable("progress", 3)
	p.Increment("progress", 1)
	p.Increment("progress", 2)
	p.FinishTable("progress")

	want := "export progress: 3 rows\n  progress: 1/3\n  progress: 3/3\nexport progress done: 3 rows\n"
	if out.String() != want {
		t.Fatalf("unexpected progress output:\n%s", out.String())
	}
}

func mustLoad(t *testing.T, path string) entity.VocabularyDataset {
	t.Helper()
	data, err := validateLocalVocabulary(path)
	if err != nil {
		t.Fatalf("load %s: %v", path, err)
	}
	return data
}
