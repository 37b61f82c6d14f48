package theme

import (
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"github.com/debemdeboas/archive-comments/internal/cache"
	"github.com/debemdeboas/archive-comments/internal/config"
)

func TestGenerateSyntaxCSS(t *testing.T) {
	testCases := []struct {
		name  string
		theme string
	}{
		{"Monokai", "monokai"},
		{"Github", "github"},
		{"Gruvbox", "gruvbox"},
		{"Unknown theme falls back", "nonexistent-theme-12345"},
		{"Empty theme name", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			css := GenerateSyntaxCSS(tc.theme)
			if !strings.Contains(string(css), ".chroma") {
				t.Errorf("Expected CSS to contain '.chroma', got %q", css)
			}

			cached, found := cache.GetSyntaxCSS(tc.theme)
			if !found {
				t.Fatal("Expected CSS to be cached")
			}
			if cached != css {
				t.Error("Expected cached CSS to match generated CSS")
			}
		})
	}
}

func TestGetSyntaxThemes(t *testing.T) {
	themes := GetSyntaxThemes()
	if len(themes) == 0 {
		t.Fatal("Expected at least one syntax theme")
	}
	if !slices.IsSorted(themes) {
		t.Error("Expected themes to be sorted")
	}
	if !slices.Contains(themes, config.DefaultSyntaxTheme) {
		t.Errorf("Expected themes to include %q", config.DefaultSyntaxTheme)
	}
}

func TestResolve(t *testing.T) {
	original := config.AppConfig
	t.Cleanup(func() { config.AppConfig = original })

	config.AppConfig = &config.Config{}
	config.AppConfig.Theme.SyntaxTheme = "monokai"

	tests := []struct {
		in   string
		want string
	}{
		{"github", "github"},
		{"", "monokai"},
		{"not-a-theme", "monokai"},
	}
	for _, tt := range tests {
		if got := Resolve(tt.in); got != tt.want {
			t.Errorf("Resolve(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}

	config.AppConfig.Theme.SyntaxTheme = ""
	if got := Resolve(""); got != config.DefaultSyntaxTheme {
		t.Errorf("Expected built-in default %q, got %q", config.DefaultSyntaxTheme, got)
	}
}

func TestFromRequest(t *testing.T) {
	original := config.AppConfig
	t.Cleanup(func() { config.AppConfig = original })
	config.AppConfig = &config.Config{}

	r := httptest.NewRequest("GET", "/partials/preview?syntax_theme=github", nil)
	if got := FromRequest(r); got != "github" {
		t.Errorf("Expected 'github', got %q", got)
	}

	r = httptest.NewRequest("GET", "/partials/preview", nil)
	if got := FromRequest(r); got != config.DefaultSyntaxTheme {
		t.Errorf("Expected default theme, got %q", got)
	}
}
