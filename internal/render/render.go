// Package render turns comment markdown into preview HTML with highlighted
// code blocks.
package render

import (
	"fmt"
	"html"
	"io"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/debemdeboas/archive-comments/internal/cache"
	"github.com/debemdeboas/archive-comments/internal/config"
	"github.com/debemdeboas/archive-comments/internal/theme"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	md_html "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/rs/zerolog"

	"github.com/mmarkdown/mmark/v2/lang"
	"github.com/mmarkdown/mmark/v2/mparser"
	"github.com/mmarkdown/mmark/v2/render/mhtml"
)

var renderLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	renderLogger = l
}

// Renderer selects the markdown dialect: config.MarkdownRendererMmark or
// config.MarkdownRendererClassic.
var Renderer = config.MarkdownRendererMmark

// Comments never carry raw HTML into the page.
const commentFlags = md_html.CommonFlags | md_html.SkipHTML | md_html.HrefTargetBlank

func HighlightCode(code, language, highlightTheme string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return html.EscapeString(code)
	}

	var buf strings.Builder
	style := styles.Get(highlightTheme)
	if err := theme.GetFormatter().Format(&buf, style, iterator); err != nil {
		return html.EscapeString(code)
	}

	return buf.String()
}

func codeBlockHook(highlightTheme string) func(w io.Writer, node ast.Node, entering bool) (ast.WalkStatus, bool) {
	return func(w io.Writer, node ast.Node, entering bool) (ast.WalkStatus, bool) {
		code, ok := node.(*ast.CodeBlock)
		if !ok || !entering {
			return ast.GoToNext, false
		}
		var lang string
		if info := code.Info; info != nil {
			lang = string(info)
		}
		fmt.Fprintf(w, "<div class=\"highlight\">%s</div>", HighlightCode(string(code.Literal), lang, highlightTheme))
		return ast.GoToNext, true
	}
}

func RenderMarkdown(md []byte, highlightTheme string) []byte {
	switch Renderer {
	case config.MarkdownRendererClassic:
		return RenderMarkdownClassic(md, highlightTheme)
	default:
		return RenderMarkdownMmark(md, highlightTheme)
	}
}

// Guards the check-render-set sequence in RenderMarkdownCached.
var renderCacheMutex sync.Mutex

// RenderMarkdownCached renders md once per content hash and theme.
func RenderMarkdownCached(md []byte, contentHash, highlightTheme string) []byte {
	if contentHash == "" {
		renderLogger.Warn().Msg("Content hash is empty, skipping cache check")
		return RenderMarkdown(md, highlightTheme)
	}

	if cached, found := cache.GetRenderedMarkdown(contentHash, highlightTheme); found {
		renderLogger.Debug().Str("contentHash", contentHash).Str("highlightTheme", highlightTheme).Msg("Cache hit for rendered markdown")
		return cached.HTML
	}

	renderCacheMutex.Lock()
	defer renderCacheMutex.Unlock()

	if cached, found := cache.GetRenderedMarkdown(contentHash, highlightTheme); found {
		return cached.HTML
	}

	renderLogger.Debug().Str("contentHash", contentHash).Str("highlightTheme", highlightTheme).Msg("Cache miss for rendered markdown")
	out := RenderMarkdown(md, highlightTheme)
	cache.SetRenderedMarkdown(contentHash, highlightTheme, out)
	return out
}

func RenderMarkdownClassic(md []byte, highlightTheme string) []byte {
	opts := md_html.RendererOptions{
		Flags:          commentFlags,
		RenderNodeHook: codeBlockHook(highlightTheme),
	}

	doc := parser.NewWithExtensions(
		parser.Tables | parser.FencedCode | parser.Autolink | parser.Strikethrough | parser.SpaceHeadings |
			parser.BackslashLineBreak | parser.SuperSubscript | parser.MathJax | parser.NoIntraEmphasis |
			parser.OrderedListStart | parser.NonBlockingSpace,
	).Parse(md)

	return markdown.Render(doc, md_html.NewRenderer(opts))
}

// RenderMarkdownMmark renders with the mmark dialect. File includes are
// disabled.
func RenderMarkdownMmark(md []byte, highlightTheme string) []byte {
	md = markdown.NormalizeNewlines(md)

	extensions := (mparser.Extensions | parser.NoIntraEmphasis) &^ parser.Includes
	p := parser.NewWithExtensions(extensions)
	p.Opts = parser.Options{
		ParserHook: mparser.Hook,
		Flags:      parser.FlagsNone,
	}

	doc := markdown.Parse(md, p)

	mhtmlOpts := mhtml.RendererOptions{
		Language: lang.New("en"),
	}
	hook := codeBlockHook(highlightTheme)

	opts := md_html.RendererOptions{
		RenderNodeHook: func(w io.Writer, node ast.Node, entering bool) (ast.WalkStatus, bool) {
			if status, handled := hook(w, node, entering); handled {
				return status, true
			}
			return mhtmlOpts.RenderHook(w, node, entering)
		},
		Flags: commentFlags | md_html.FootnoteNoHRTag | md_html.FootnoteReturnLinks,
	}

	return markdown.Render(doc, md_html.NewRenderer(opts))
}

// WarmCache renders md in the background so the next cached read is a hit.
func WarmCache(md []byte, contentHash, highlightTheme string) {
	go func() {
		RenderMarkdownCached(md, contentHash, highlightTheme)
		renderLogger.Debug().Str("contentHash", contentHash).Msg("Cache warming completed")
	}()
}
