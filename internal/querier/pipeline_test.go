package querier_test

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/tiny-search-engine/internal/crawler"
	"github.com/Adithya-Monish-Kumar-K/tiny-search-engine/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/tiny-search-engine/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/tiny-search-engine/internal/pagedir"
	"github.com/Adithya-Monish-Kumar-K/tiny-search-engine/internal/querier"
	"github.com/Adithya-Monish-Kumar-K/tiny-search-engine/pkg/config"
)

// TestPipeline crawls a small site, builds and saves the index, reloads it
// and answers queries against the saved pages.
func TestPipeline(t *testing.T) {
	pages := map[string]string{
		"/":           `<html><body><h1>Letters</h1><a href="/alpha.html">A</a><a href="/beta.html">B</a></body></html>`,
		"/alpha.html": `<p>Algorithm algorithm search</p><a href="/">home</a>`,
		"/beta.html":  `<p>Breadth first search</p><script>var hidden = 1;</script>`,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, body)
	}))
	defer srv.Close()

	dir := t.TempDir()
	store, err := pagedir.Init(dir)
	if err != nil {
		t.Fatal(err)
	}
	policy, err := crawler.NewURLPolicy("", srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	c := crawler.New(store, crawler.NewHTTPFetcher(config.CrawlerConfig{FetchTimeout: 5 * time.Second}), crawler.Options{
		MaxDepth: 1,
		Delay:    time.Millisecond,
		Policy:   policy,
	})
	stats, err := c.Run(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("crawl: %v", err)
	}
	if stats.Saved != 3 {
		t.Fatalf("crawl saved %d pages, want 3", stats.Saved)
	}

	validated, err := pagedir.Validate(dir)
	if err != nil {
		t.Fatal(err)
	}
	x, _, err := indexer.NewEngine(config.IndexerConfig{MinWordLength: 3, LoadWorkers: 2}, nil).Build(context.Background(), validated)
	if err != nil {
		t.Fatalf("index: %v", err)
	}
	indexPath := filepath.Join(t.TempDir(), "index")
	if err := index.WriteFile(indexPath, x); err != nil {
		t.Fatal(err)
	}
	loaded, _, err := index.ReadFile(indexPath)
	if err != nil {
		t.Fatal(err)
	}
	if !index.Equal(x, loaded) {
		t.Fatal("index changed across save and load")
	}
	if _, ok := loaded.Find("hidden"); ok {
		t.Error("script text was indexed")
	}

	q := querier.New(loaded, validated, querier.Options{Prompt: "Query? "})
	var out, diag bytes.Buffer
	in := strings.NewReader("algorithm\nsearch and breadth\nsearch or letters\n")
	if err := q.Run(context.Background(), in, &out, &diag); err != nil {
		t.Fatalf("query: %v", err)
	}
	if diag.Len() != 0 {
		t.Errorf("unexpected diagnostics: %q", diag.String())
	}

	got := out.String()
	for _, want := range []string{
		"Matches 1 documents (ranked):\nscore 2 doc ",
		"alpha.html\n",
		"beta.html\n",
		"Matches 3 documents (ranked):",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}
