// Package preview is the composer plugin that shows the draft rendered as
// markdown.
package preview

import (
	"sync"

	"github.com/debemdeboas/archive-comments/internal/composer"
	"github.com/debemdeboas/archive-comments/internal/render"
	"github.com/debemdeboas/archive-comments/internal/util"
)

const Name = "preview"

// Plugin follows the transformed draft and renders it when its panel is
// drawn. Renders are cached by content hash and syntax theme.
type Plugin struct {
	theme string

	mu      sync.Mutex
	content string
	visible bool
}

func New(syntaxTheme string) *Plugin {
	return &Plugin{theme: syntaxTheme}
}

func Factory(syntaxTheme string) composer.PluginFactory {
	return func(*composer.Editor) composer.Plugin {
		return New(syntaxTheme)
	}
}

func (p *Plugin) Name() string         { return Name }
func (p *Plugin) ToggleMarkup() string { return "Preview" }

func (p *Plugin) Panel() composer.Panel {
	return composer.PanelFunc(func() string {
		return string(p.HTML())
	})
}

func (p *Plugin) OnShow() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.visible = true
}

func (p *Plugin) OnHide() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.visible = false
}

func (p *Plugin) Visible() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visible
}

func (p *Plugin) ContentChanged(content string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.content = content
	if p.visible {
		render.WarmCache([]byte(content), util.PreviewKey(content, render.Renderer), p.theme)
	}
}

// HTML renders the latest content.
func (p *Plugin) HTML() []byte {
	p.mu.Lock()
	content := p.content
	p.mu.Unlock()

	if content == "" {
		return nil
	}
	return render.RenderMarkdownCached([]byte(content), util.PreviewKey(content, render.Renderer), p.theme)
}
