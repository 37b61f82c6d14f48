package composer

import (
	"fmt"
	"slices"
)

type hostedPlugin struct {
	plugin  Plugin
	mounted bool
}

// PluginHost instantiates the registered plugins and keeps at most one panel
// open.
type PluginHost struct {
	editor    *Editor
	view      View
	factories []PluginFactory

	plugins []*hostedPlugin
	open    string
}

func newPluginHost(e *Editor, view View, factories []PluginFactory) *PluginHost {
	return &PluginHost{
		editor:    e,
		view:      view,
		factories: slices.Clone(factories),
	}
}

// init builds every plugin in registration order and adds its toggle.
func (h *PluginHost) init() {
	h.plugins = make([]*hostedPlugin, 0, len(h.factories))
	for _, factory := range h.factories {
		p := factory(h.editor)
		if p == nil {
			continue
		}
		h.plugins = append(h.plugins, &hostedPlugin{plugin: p})
		h.view.AddPluginToggle(p.Name(), p.ToggleMarkup())
	}
	h.open = ""
}

func (h *PluginHost) find(name string) *hostedPlugin {
	for _, hp := range h.plugins {
		if hp.plugin.Name() == name {
			return hp
		}
	}
	return nil
}

func (h *PluginHost) clearActive() {
	for _, hp := range h.plugins {
		h.view.SetActiveToggle(hp.plugin.Name(), false)
	}
}

// Toggle opens the named plugin's panel, or closes it when it is already
// open.
func (h *PluginHost) Toggle(name string) error {
	target := h.find(name)
	if target == nil {
		return fmt.Errorf("unknown plugin %q", name)
	}

	h.clearActive()

	if h.open == name {
		h.editor.later(target.plugin.OnHide)
		h.view.SetPanelContainerVisible(false)
		h.open = ""
		return nil
	}

	if !target.mounted {
		h.view.MountPanel(name, target.plugin.Panel())
		target.mounted = true
	}

	for _, hp := range h.plugins {
		if !hp.mounted {
			continue
		}
		if hp == target {
			h.view.SetPanelVisible(hp.plugin.Name(), true)
			h.editor.later(hp.plugin.OnShow)
		} else {
			h.view.SetPanelVisible(hp.plugin.Name(), false)
			h.editor.later(hp.plugin.OnHide)
		}
	}

	h.view.SetPanelContainerVisible(true)
	h.view.SetActiveToggle(name, true)
	h.open = name
	return nil
}

// CloseAll hides the open plugin and unmounts every panel. Panels are mounted
// again on their next toggle.
func (h *PluginHost) CloseAll() {
	if hp := h.find(h.open); hp != nil {
		h.editor.later(hp.plugin.OnHide)
	}
	for _, hp := range h.plugins {
		hp.mounted = false
	}
	h.view.ClearPanels()
	h.view.SetPanelContainerVisible(false)
	h.clearActive()
	h.open = ""
}

// Reset discards every plugin and builds fresh instances.
func (h *PluginHost) Reset() {
	if hp := h.find(h.open); hp != nil {
		h.editor.later(hp.plugin.OnHide)
	}
	h.view.ResetPlugins()
	h.view.SetPanelContainerVisible(false)
	h.init()
}

func (h *PluginHost) Open() string {
	return h.open
}

// Transform applies every Transformer plugin in registration order.
func (h *PluginHost) Transform(raw string) string {
	content := raw
	for _, hp := range h.plugins {
		if t, ok := hp.plugin.(Transformer); ok {
			content = t.Transform(content)
		}
	}
	return content
}

func (h *PluginHost) observers() []ContentObserver {
	var out []ContentObserver
	for _, hp := range h.plugins {
		if o, ok := hp.plugin.(ContentObserver); ok {
			out = append(out, o)
		}
	}
	return out
}

// Names lists the hosted plugins in registration order.
func (h *PluginHost) Names() []string {
	names := make([]string, 0, len(h.plugins))
	for _, hp := range h.plugins {
		names = append(names, hp.plugin.Name())
	}
	return names
}
