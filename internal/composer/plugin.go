package composer

// Plugin is a content-insertion extension hosted by the composer. Name,
// ToggleMarkup and Panel are called with the Editor lock held and must not
// call back into the Editor. OnShow and OnHide run after the lock is
// released.
type Plugin interface {
	Name() string
	ToggleMarkup() string
	Panel() Panel
	OnShow()
	OnHide()
}

// Transformer is implemented by plugins that rewrite the draft when content
// is read for display or submission. Transform runs under the Editor lock and
// must be pure.
type Transformer interface {
	Transform(content string) string
}

// ContentObserver is implemented by plugins that follow the draft, such as a
// live preview. ContentChanged receives the transformed content.
type ContentObserver interface {
	ContentChanged(content string)
}

// PluginFactory builds a plugin for e. Factories run during construction and
// reset, and must not call Editor methods; the plugin may keep e and call it
// later from user gestures.
type PluginFactory func(e *Editor) Plugin
