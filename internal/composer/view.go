package composer

import "github.com/debemdeboas/archive-comments/internal/model"

// View is the rendering surface of the composer. The Editor calls it while
// holding its lock, so implementations must not call back into the Editor
// synchronously. User gestures (typing, clicking a plugin toggle or the reply
// affordance, pressing send) are reported by calling the Editor from outside
// any View method.
type View interface {
	SetPlaceholder(text string)
	SetSendButtonText(text string)
	SetFieldValue(field model.ProfileField, value string)

	// RenderContent replaces the text area with text and puts the caret at
	// rune offset caret.
	RenderContent(text string, caret int)
	// AdjustHeight resizes the text area to fit its content.
	AdjustHeight()
	Focus()
	ScrollIntoView()

	SetInputVisible(visible bool)
	SetBottomVisible(visible bool)
	SetClosedBannerVisible(visible bool)

	AddPluginToggle(name, markup string)
	SetActiveToggle(name string, active bool)
	MountPanel(name string, panel Panel)
	SetPanelVisible(name string, visible bool)
	SetPanelContainerVisible(visible bool)
	// ClearPanels unmounts every panel but keeps the toggles.
	ClearPanels()
	// ResetPlugins removes every toggle and panel.
	ResetPlugins()

	// ShowReply creates the reply affordance on first use and labels it.
	// Clicking it must end up in Editor.CancelReply.
	ShowReply(label string)
	HideReply()

	ShowLoading()
	HideLoading()
	Notify(msg string, typ model.NotifyType)
}

// Panel is the content a plugin shows when its toggle is active.
type Panel interface {
	Render() string
}

// PanelFunc adapts a function to Panel.
type PanelFunc func() string

func (f PanelFunc) Render() string { return f() }
