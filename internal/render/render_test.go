package render

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/debemdeboas/archive-comments/internal/cache"
	"github.com/debemdeboas/archive-comments/internal/config"
)

func setupTest(t *testing.T, renderer string) {
	t.Helper()
	cache.ClearRenderedMarkdownCache()
	original := Renderer
	Renderer = renderer
	t.Cleanup(func() { Renderer = original })
}

var renderers = []string{config.MarkdownRendererMmark, config.MarkdownRendererClassic}

func TestRenderMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		markdown string
		contains []string
		excludes []string
	}{
		{
			name:     "emphasis",
			markdown: "some **bold** text",
			contains: []string{"<strong>bold</strong>"},
		},
		{
			name:     "fenced code is highlighted",
			markdown: "```go\nfunc main() {}\n```",
			contains: []string{`<div class="highlight">`, "chroma"},
		},
		{
			name:     "raw html is dropped",
			markdown: "hi <script>alert('xss')</script> there",
			excludes: []string{"<script>"},
		},
		{
			name:     "links open in a new tab",
			markdown: "[site](https://example.com)",
			contains: []string{`href="https://example.com"`, `target="_blank"`},
		},
		{
			name:     "unicode",
			markdown: "测试 🚀 ñáéíóú",
			contains: []string{"测试 🚀 ñáéíóú"},
		},
	}

	for _, renderer := range renderers {
		for _, tt := range tests {
			t.Run(renderer+"/"+tt.name, func(t *testing.T) {
				setupTest(t, renderer)
				out := string(RenderMarkdown([]byte(tt.markdown), "github"))

				for _, want := range tt.contains {
					if !strings.Contains(out, want) {
						t.Errorf("Expected output to contain %q, got %q", want, out)
					}
				}
				for _, unwanted := range tt.excludes {
					if strings.Contains(out, unwanted) {
						t.Errorf("Expected output not to contain %q, got %q", unwanted, out)
					}
				}
			})
		}
	}
}

func TestMmarkIgnoresIncludes(t *testing.T) {
	setupTest(t, config.MarkdownRendererMmark)

	out := string(RenderMarkdown([]byte("{{/etc/passwd}}"), "github"))
	if strings.Contains(out, "root:") {
		t.Errorf("Expected includes to be disabled, got %q", out)
	}
}

func TestHighlightCodeEscapes(t *testing.T) {
	out := HighlightCode(`<b>"x"</b>`, "html", "github")
	if strings.Contains(out, "<b>") {
		t.Errorf("Expected code to be escaped, got %q", out)
	}
}

func TestRenderMarkdownCached(t *testing.T) {
	setupTest(t, config.MarkdownRendererMmark)

	html1 := RenderMarkdownCached([]byte("# Title"), "hash-1", "github")
	cached, found := cache.GetRenderedMarkdown("hash-1", "github")
	if !found {
		t.Fatal("Expected rendered content to be cached")
	}
	if !bytes.Equal(cached.HTML, html1) {
		t.Errorf("Cached HTML mismatch. Expected %q, got %q", html1, cached.HTML)
	}

	// A cache hit ignores the markdown argument.
	html2 := RenderMarkdownCached([]byte("# Something else"), "hash-1", "github")
	if !bytes.Equal(html1, html2) {
		t.Error("Expected cache hit to return identical HTML")
	}

	if _, found := cache.GetRenderedMarkdown("hash-1", "monokai"); found {
		t.Error("Expected theme to be part of the cache key")
	}
}

func TestRenderMarkdownCachedEmptyHash(t *testing.T) {
	setupTest(t, config.MarkdownRendererMmark)

	out := RenderMarkdownCached([]byte("plain"), "", "github")
	if len(out) == 0 {
		t.Error("Expected rendered output without a hash")
	}
	if _, found := cache.GetRenderedMarkdown("", "github"); found {
		t.Error("Expected empty hash to bypass the cache")
	}
}

func TestRenderMarkdownCachedConcurrency(t *testing.T) {
	setupTest(t, config.MarkdownRendererMmark)

	const numGoroutines = 50
	md := []byte("# Concurrent\n\nContent with `code`")

	var wg sync.WaitGroup
	results := make([][]byte, numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = RenderMarkdownCached(md, "concurrent-hash", "github")
		}(i)
	}
	wg.Wait()

	for i, r := range results {
		if !bytes.Equal(r, results[0]) {
			t.Errorf("Result %d differs from first result", i)
		}
	}
}

func TestHighlightSource(t *testing.T) {
	out, err := HighlightSource("# Title\n\n*em*", "github")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.HasPrefix(out, `<div class="comment-source">`) {
		t.Errorf("Expected wrapper div, got %q", out)
	}
	if !strings.Contains(out, "<br>") {
		t.Error("Expected newlines to become <br>")
	}
}

func BenchmarkRenderMarkdownCached(b *testing.B) {
	cache.ClearRenderedMarkdownCache()
	md := []byte("Some **bold** and `code`\n\n```go\nfunc main() {}\n```\n")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		RenderMarkdownCached(md, "perf-test-hash", "github")
	}
}
