// Package tui renders the composer in a terminal with lipgloss.
package tui

import (
	"fmt"
	"strings"
	"sync"

	"github.com/debemdeboas/archive-comments/internal/composer"
	"github.com/debemdeboas/archive-comments/internal/model"
)

const (
	caretMark     = "▏"
	minHeight     = 3
	maxHeight     = 12
	closedBanner  = "Comments are closed"
	loadingMarker = "Sending..."
)

type toggle struct {
	name   string
	markup string
	active bool
}

// Notification is a message the composer asked to show.
type Notification struct {
	Msg  string
	Type model.NotifyType
}

// View is a composer.View that keeps what the composer shows and renders it
// on demand. It never calls back into the Editor.
type View struct {
	mu sync.Mutex

	width       int
	placeholder string
	sendButton  string
	fields      map[model.ProfileField]string

	content string
	caret   int
	height  int
	focused bool

	inputVisible  bool
	bottomVisible bool
	closed        bool

	toggles          []toggle
	panels           map[string]composer.Panel
	panelVisible     map[string]bool
	containerVisible bool

	reply        string
	replyVisible bool

	loading       int
	notifications []Notification
	scrolls       int
}

var _ composer.View = (*View)(nil)

func New(width int) *View {
	if width <= 0 {
		width = 72
	}
	return &View{
		width:         width,
		fields:        make(map[model.ProfileField]string),
		height:        minHeight,
		inputVisible:  true,
		bottomVisible: true,
		panels:        make(map[string]composer.Panel),
		panelVisible:  make(map[string]bool),
	}
}

func (v *View) SetPlaceholder(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.placeholder = text
}

func (v *View) SetSendButtonText(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.sendButton = text
}

func (v *View) SetFieldValue(field model.ProfileField, value string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.fields[field] = value
}

func (v *View) RenderContent(text string, caret int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.content = text
	v.caret = caret
}

func (v *View) AdjustHeight() {
	v.mu.Lock()
	defer v.mu.Unlock()
	lines := strings.Count(v.content, "\n") + 1
	v.height = min(max(lines, minHeight), maxHeight)
}

func (v *View) Focus() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.focused = true
}

func (v *View) ScrollIntoView() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.scrolls++
}

func (v *View) SetInputVisible(visible bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.inputVisible = visible
}

func (v *View) SetBottomVisible(visible bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.bottomVisible = visible
}

func (v *View) SetClosedBannerVisible(visible bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = visible
}

func (v *View) AddPluginToggle(name, markup string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.toggles = append(v.toggles, toggle{name: name, markup: markup})
}

func (v *View) SetActiveToggle(name string, active bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for i := range v.toggles {
		if v.toggles[i].name == name {
			v.toggles[i].active = active
		}
	}
}

func (v *View) MountPanel(name string, panel composer.Panel) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.panels[name] = panel
}

func (v *View) SetPanelVisible(name string, visible bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.panelVisible[name] = visible
}

func (v *View) SetPanelContainerVisible(visible bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.containerVisible = visible
}

func (v *View) ClearPanels() {
	v.mu.Lock()
	defer v.mu.Unlock()
	clear(v.panels)
	clear(v.panelVisible)
}

func (v *View) ResetPlugins() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.toggles = nil
	clear(v.panels)
	clear(v.panelVisible)
	v.containerVisible = false
}

func (v *View) ShowReply(label string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.reply = label
	v.replyVisible = true
}

func (v *View) HideReply() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.replyVisible = false
}

func (v *View) ShowLoading() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.loading++
}

func (v *View) HideLoading() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.loading > 0 {
		v.loading--
	}
}

func (v *View) Notify(msg string, typ model.NotifyType) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.notifications = append(v.notifications, Notification{Msg: msg, Type: typ})
}

// Loading reports whether a loading indicator is showing.
func (v *View) Loading() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loading > 0
}

// Notifications returns and forgets the pending notifications.
func (v *View) Notifications() []Notification {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := v.notifications
	v.notifications = nil
	return out
}

// Render draws the composer. Panels are rendered here, outside the Editor
// lock.
func (v *View) Render() string {
	v.mu.Lock()
	defer v.mu.Unlock()

	var b strings.Builder

	if v.closed {
		b.WriteString(bannerStyle.Render(closedBanner))
		b.WriteString("\n")
	}

	if v.inputVisible {
		for _, field := range []model.ProfileField{model.FieldNick, model.FieldEmail, model.FieldLink} {
			value := v.fields[field]
			if value == "" {
				value = mutedStyle.Render("-")
			}
			fmt.Fprintf(&b, "%s %s\n", labelStyle.Render(string(field)), value)
		}

		if v.replyVisible {
			b.WriteString(accentStyle.Render(v.reply))
			b.WriteString(mutedStyle.Render("  (/cancel)"))
			b.WriteString("\n")
		}

		b.WriteString(v.renderTextArea())
		b.WriteString("\n")
	}

	if v.containerVisible {
		for _, t := range v.toggles {
			panel, mounted := v.panels[t.name]
			if !mounted || !v.panelVisible[t.name] {
				continue
			}
			b.WriteString(panelStyle.Width(v.width - 2).Render(panel.Render()))
			b.WriteString("\n")
		}
	}

	if v.bottomVisible {
		b.WriteString(v.renderBottom())
		b.WriteString("\n")
	}

	for _, n := range v.notifications {
		b.WriteString(notifyStyle(n.Type).Render(n.Msg))
		b.WriteString("\n")
	}

	return b.String()
}

func (v *View) renderTextArea() string {
	text := v.content
	if text == "" {
		text = mutedStyle.Render(v.placeholder)
	} else if v.focused {
		runes := []rune(text)
		caret := min(max(v.caret, 0), len(runes))
		text = string(runes[:caret]) + caretMark + string(runes[caret:])
	}

	style := textAreaStyle
	if v.focused {
		style = focusedTextAreaStyle
	}
	return style.Width(v.width - 2).Height(v.height).Render(text)
}

func (v *View) renderBottom() string {
	parts := make([]string, 0, len(v.toggles)+2)
	for _, t := range v.toggles {
		if t.active {
			parts = append(parts, activeToggleStyle.Render(t.markup))
		} else {
			parts = append(parts, toggleStyle.Render(t.markup))
		}
	}

	send := v.sendButton
	if v.loading > 0 {
		send = loadingMarker
	}
	parts = append(parts, sendStyle.Render(send))
	return strings.Join(parts, " ")
}
