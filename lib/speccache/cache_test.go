package speccache

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"

	"github.com/pthm/hxprops/lib/paramspec"
)

func newCache(t *testing.T, size int) *Cache {
	t.Helper()
	c, err := New(nil, size)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func countingLoader(templates map[string]string, calls *atomic.Int32) Loader {
	inner := MapLoader(templates)
	return func(key string) (Entry, error) {
		calls.Add(1)
		return inner(key)
	}
}

func TestCacheGet(t *testing.T) {
	c := newCache(t, 8)
	var calls atomic.Int32
	load := countingLoader(map[string]string{"card": "{# props title size:int=3 #}"}, &calls)

	for i := 0; i < 3; i++ {
		specs, err := c.Get("card", load, AlwaysFresh)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if specs.Len() != 2 {
			t.Errorf("Len() = %d, want 2", specs.Len())
		}
	}
	if calls.Load() != 1 {
		t.Errorf("loader calls = %d, want 1", calls.Load())
	}
	if s := c.Stats(); s.Hits != 2 || s.Misses != 1 {
		t.Errorf("Stats() = %+v", s)
	}
}

func TestCacheStaleProbeReloads(t *testing.T) {
	c := newCache(t, 8)
	var calls atomic.Int32
	load := countingLoader(map[string]string{"card": "{# props a #}"}, &calls)
	stale := func(string, string) bool { return false }

	c.Get("card", load, stale)
	c.Get("card", load, stale)
	if calls.Load() != 2 {
		t.Errorf("loader calls = %d, want 2", calls.Load())
	}
	if c.Stats().Reloads != 1 {
		t.Errorf("Reloads = %d, want 1", c.Stats().Reloads)
	}
}

func TestCacheDoesNotStoreSyntaxErrors(t *testing.T) {
	c := newCache(t, 8)
	_, err := c.Get("bad", MapLoader(map[string]string{"bad": "{# props 1x #}"}), nil)
	var syn *paramspec.SyntaxError
	if !errors.As(err, &syn) {
		t.Fatalf("Get() error = %v, want *paramspec.SyntaxError", err)
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
}

func TestCacheLoaderError(t *testing.T) {
	c := newCache(t, 8)
	_, err := c.Get("missing", MapLoader(nil), nil)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Get() error = %v, want fs.ErrNotExist", err)
	}
}

func TestCacheInvalidateAndClear(t *testing.T) {
	c := newCache(t, 8)
	load := MapLoader(map[string]string{"a": "", "b": ""})
	c.Get("a", load, nil)
	c.Get("b", load, nil)

	c.Invalidate("a")
	if c.Len() != 1 {
		t.Errorf("Len() after Invalidate = %d, want 1", c.Len())
	}
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", c.Len())
	}
}

func TestCacheEvicts(t *testing.T) {
	c := newCache(t, 2)
	load := MapLoader(map[string]string{"a": "", "b": "", "c": ""})
	for _, k := range []string{"a", "b", "c"} {
		c.Get(k, load, nil)
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
}

func TestCacheConcurrentGet(t *testing.T) {
	c := newCache(t, 8)
	load := MapLoader(map[string]string{"card": "{# props title variant=a,b #}"})

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			specs, err := c.Get("card", load, AlwaysFresh)
			if err != nil {
				errs <- err
				return
			}
			if specs.Len() != 2 {
				errs <- errors.New("wrong spec length")
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestFSLoaderAndModTimeProbe(t *testing.T) {
	now := time.Now()
	fsys := fstest.MapFS{
		"card.html": &fstest.MapFile{Data: []byte("<div>\n{# props title #}\n</div>"), ModTime: now},
	}
	entry, err := FSLoader(fsys)("card.html")
	if err != nil {
		t.Fatalf("FSLoader() error = %v", err)
	}
	if entry.Source.Declaration != "title" || entry.Source.Line != 2 {
		t.Errorf("Source = %+v", entry.Source)
	}

	probe := ModTimeProbe(fsys)
	if !probe("card.html", entry.Version) {
		t.Error("probe reported an unchanged file stale")
	}
	fsys["card.html"].ModTime = now.Add(time.Second)
	if probe("card.html", entry.Version) {
		t.Error("probe reported a modified file fresh")
	}
	delete(fsys, "card.html")
	if probe("card.html", entry.Version) {
		t.Error("probe reported a deleted file fresh")
	}
}

func TestWatcherInvalidates(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "card.html")
	if err := os.WriteFile(path, []byte("{# props a #}"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := newCache(t, 8)
	if _, err := c.Get("card.html", FSLoader(os.DirFS(root)), nil); err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	changed := make(chan string, 4)
	w, err := NewWatcher(c, WatcherConfig{
		Root:     root,
		Ignore:   []string{"**/*.tmp"},
		OnChange: func(key string) {
			select {
			case changed <- key:
			default:
			}
		},
	})
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	if err := os.WriteFile(filepath.Join(root, "x.tmp"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{# props a b #}"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case key := <-changed:
		if key != "card.html" {
			t.Errorf("OnChange key = %q, want card.html", key)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no change event")
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0 after change", c.Len())
	}
}

func TestWatcherIgnored(t *testing.T) {
	w := &Watcher{cfg: WatcherConfig{Root: "/tpl", Ignore: []string{"vendor/**", "**/*.bak"}}}
	tests := []struct {
		path string
		want bool
	}{
		{"/tpl/card.html", false},
		{"/tpl/vendor/x.html", true},
		{"/tpl/a/b/c.bak", true},
		{"/tpl/.hidden", true},
		{"/elsewhere/x.html", true},
	}
	for _, tt := range tests {
		if got := w.ignored(tt.path); got != tt.want {
			t.Errorf("ignored(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
