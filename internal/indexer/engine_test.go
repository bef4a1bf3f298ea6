package indexer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/tiny-search-engine/internal/pagedir"
	"github.com/Adithya-Monish-Kumar-K/tiny-search-engine/pkg/config"
)

func newStore(t *testing.T, pages ...pagedir.Page) *pagedir.Store {
	t.Helper()
	store, err := pagedir.Init(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for i, page := range pages {
		if err := store.Save(page, i+1); err != nil {
			t.Fatal(err)
		}
	}
	return store
}

func TestBuild(t *testing.T) {
	store := newStore(t,
		pagedir.Page{URL: "http://example.test/", Depth: 0, HTML: "<p>Cats and DOGS and cats</p>"},
		pagedir.Page{URL: "http://example.test/a", Depth: 1, HTML: "<p>dogs eat a lot</p>"},
		pagedir.Page{URL: "http://example.test/b", Depth: 1, HTML: ""},
	)
	for _, workers := range []int{1, 2, 4} {
		engine := NewEngine(config.IndexerConfig{MinWordLength: 3, LoadWorkers: workers}, nil)
		x, stats, err := engine.Build(context.Background(), store)
		if err != nil {
			t.Fatalf("workers=%d: Build: %v", workers, err)
		}
		if stats.Documents != 3 || stats.Skipped != 0 {
			t.Errorf("workers=%d: stats = %+v", workers, stats)
		}
		cats, ok := x.Find("cats")
		if !ok || cats.Get(1) != 2 || cats.Size() != 1 {
			t.Errorf("workers=%d: cats = %v", workers, cats)
		}
		dogs, ok := x.Find("dogs")
		if !ok || dogs.Get(1) != 1 || dogs.Get(2) != 1 {
			t.Errorf("workers=%d: dogs = %v", workers, dogs)
		}
		if _, ok := x.Find("a"); ok {
			t.Errorf("workers=%d: short word indexed", workers)
		}
		if _, ok := x.Find("lot"); !ok {
			t.Errorf("workers=%d: three-letter word missing", workers)
		}
	}
}

func TestBuildSkipsMalformedPage(t *testing.T) {
	store := newStore(t,
		pagedir.Page{URL: "http://example.test/", Depth: 0, HTML: "alpha"},
	)
	os.WriteFile(filepath.Join(store.Dir(), "2"), []byte("http://example.test/x\nbogus\n"), 0o644)
	store.Save(pagedir.Page{URL: "http://example.test/y", Depth: 1, HTML: "omega"}, 3)

	engine := NewEngine(config.IndexerConfig{MinWordLength: 3, LoadWorkers: 2}, nil)
	x, stats, err := engine.Build(context.Background(), store)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if stats.Documents != 2 || stats.Skipped != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if omega, ok := x.Find("omega"); !ok || omega.Get(3) != 1 {
		t.Errorf("omega = %v", omega)
	}
}

func TestBuildStopsAtGap(t *testing.T) {
	store := newStore(t, pagedir.Page{URL: "http://example.test/", HTML: "first"})
	store.Save(pagedir.Page{URL: "http://example.test/z", HTML: "unreachable"}, 3)

	engine := NewEngine(config.IndexerConfig{MinWordLength: 3, LoadWorkers: 4}, nil)
	x, stats, err := engine.Build(context.Background(), store)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if stats.Documents != 1 {
		t.Errorf("documents = %d, want 1", stats.Documents)
	}
	if _, ok := x.Find("unreachable"); ok {
		t.Error("document after a gap was indexed")
	}
}

func TestBuildCancelled(t *testing.T) {
	store := newStore(t, pagedir.Page{URL: "http://example.test/", HTML: "first"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	engine := NewEngine(config.IndexerConfig{}, nil)
	if _, _, err := engine.Build(ctx, store); err == nil {
		t.Fatal("expected cancellation error")
	}
}

// cancellingSource cancels the build when document at is loaded.
type cancellingSource struct {
	*pagedir.Store
	at     int
	cancel context.CancelFunc
}

func (s cancellingSource) Load(docID int) (pagedir.Page, error) {
	if docID == s.at {
		s.cancel()
	}
	return s.Store.Load(docID)
}

func TestBuildCancelledMidway(t *testing.T) {
	var pages []pagedir.Page
	for range 8 {
		pages = append(pages, pagedir.Page{URL: "http://example.test/", HTML: "words"})
	}
	store := newStore(t, pages...)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	engine := NewEngine(config.IndexerConfig{MinWordLength: 3, LoadWorkers: 2}, nil)
	x, stats, err := engine.Build(ctx, cancellingSource{Store: store, at: 3, cancel: cancel})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if x != nil || stats.Documents >= len(pages) {
		t.Errorf("build continued after cancellation: stats = %+v", stats)
	}
}

func BenchmarkBuild(b *testing.B) {
	store, err := pagedir.Init(b.TempDir())
	if err != nil {
		b.Fatal(err)
	}
	for i := 1; i <= 200; i++ {
		store.Save(pagedir.Page{
			URL:  "http://example.test/page",
			HTML: "<p>distributed search engine with indexing and query processing</p>",
		}, i)
	}
	engine := NewEngine(config.IndexerConfig{MinWordLength: 3, LoadWorkers: 4}, nil)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := engine.Build(context.Background(), store); err != nil {
			b.Fatal(err)
		}
	}
}
