package composer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hostHarness(names ...string) (*harness, map[string]*testPlugin) {
	plugins := make(map[string]*testPlugin, len(names))
	var factories []PluginFactory
	for _, name := range names {
		p := &testPlugin{name: name}
		plugins[name] = p
		factories = append(factories, func(*Editor) Plugin { return p })
	}
	return newHarness(Options{Plugins: factories}), plugins
}

func TestPluginTogglesRegisteredInOrder(t *testing.T) {
	h, _ := hostHarness("emoticons", "preview", "markdown")

	assert.Equal(t, []string{"emoticons", "preview", "markdown"}, h.view.toggles)
	assert.Equal(t, []string{"emoticons", "preview", "markdown"}, h.editor.PluginNames())
	assert.Empty(t, h.view.mounted, "panels mount lazily")
}

func TestNilFactoryIsSkipped(t *testing.T) {
	h := newHarness(Options{Plugins: []PluginFactory{
		func(*Editor) Plugin { return nil },
		func(*Editor) Plugin { return &testPlugin{name: "preview"} },
	}})

	assert.Equal(t, []string{"preview"}, h.editor.PluginNames())
}

func TestTogglePluginMutualExclusion(t *testing.T) {
	h, plugins := hostHarness("emoticons", "preview")

	require.NoError(t, h.editor.TogglePlugin("emoticons"))
	assert.Equal(t, []string{"emoticons"}, h.view.visiblePanels())
	assert.True(t, h.view.active["emoticons"])
	assert.Equal(t, "emoticons", h.editor.State().OpenPlugin)

	require.NoError(t, h.editor.TogglePlugin("preview"))
	assert.Equal(t, []string{"preview"}, h.view.visiblePanels())
	assert.False(t, h.view.active["emoticons"])
	assert.True(t, h.view.active["preview"])
	assert.Equal(t, "preview", h.editor.State().OpenPlugin)

	shows, hides := plugins["emoticons"].counts()
	assert.Equal(t, 1, shows)
	assert.Equal(t, 1, hides)
	shows, hides = plugins["preview"].counts()
	assert.Equal(t, 1, shows)
	assert.Equal(t, 0, hides)
}

func TestTogglePluginMountsOnce(t *testing.T) {
	h, _ := hostHarness("emoticons", "preview")

	for range 3 {
		require.NoError(t, h.editor.TogglePlugin("emoticons"))
		require.NoError(t, h.editor.TogglePlugin("preview"))
	}

	assert.Equal(t, 1, h.view.mounts["emoticons"])
	assert.Equal(t, 1, h.view.mounts["preview"])
	assert.Equal(t, "emoticons panel", h.view.mounted["emoticons"].Render())
}

func TestToggleOpenPluginClosesIt(t *testing.T) {
	h, plugins := hostHarness("emoticons")

	require.NoError(t, h.editor.TogglePlugin("emoticons"))
	require.NoError(t, h.editor.TogglePlugin("emoticons"))

	assert.False(t, h.view.containerVisible)
	assert.Empty(t, h.view.visiblePanels())
	assert.False(t, h.view.active["emoticons"])
	assert.Empty(t, h.editor.State().OpenPlugin)
	shows, hides := plugins["emoticons"].counts()
	assert.Equal(t, 1, shows)
	assert.Equal(t, 1, hides)

	require.NoError(t, h.editor.TogglePlugin("emoticons"))
	assert.Equal(t, []string{"emoticons"}, h.view.visiblePanels())
}

func TestToggleUnknownPlugin(t *testing.T) {
	h, _ := hostHarness("emoticons")
	require.NoError(t, h.editor.TogglePlugin("emoticons"))

	err := h.editor.TogglePlugin("nope")

	require.Error(t, err)
	assert.Contains(t, err.Error(), `"nope"`)
	assert.Equal(t, "emoticons", h.editor.State().OpenPlugin, "unknown names leave the open panel alone")
}

func TestClosePlugins(t *testing.T) {
	h, plugins := hostHarness("emoticons", "preview")
	require.NoError(t, h.editor.TogglePlugin("preview"))

	h.editor.ClosePlugins()

	assert.Empty(t, h.view.mounted)
	assert.False(t, h.view.containerVisible)
	assert.False(t, h.view.active["preview"])
	assert.Empty(t, h.editor.State().OpenPlugin)
	_, hides := plugins["preview"].counts()
	assert.Equal(t, 1, hides)

	require.NoError(t, h.editor.TogglePlugin("preview"))
	assert.Equal(t, 2, h.view.mounts["preview"], "closed panels mount again")
}

func TestResetPluginsBuildsFreshInstances(t *testing.T) {
	built := 0
	h := newHarness(Options{Plugins: []PluginFactory{
		func(*Editor) Plugin {
			built++
			return &testPlugin{name: "emoticons"}
		},
	}})
	require.NoError(t, h.editor.TogglePlugin("emoticons"))

	h.editor.ResetPlugins()

	assert.Equal(t, 2, built)
	assert.Equal(t, []string{"emoticons"}, h.view.toggles)
	assert.Empty(t, h.view.mounted)
	assert.Empty(t, h.editor.State().OpenPlugin)
}

func TestPluginMayCallEditorFromCallbacks(t *testing.T) {
	var e *Editor
	p := &callbackPlugin{testPlugin: &testPlugin{name: "emoticons"}}
	h := newHarness(Options{Plugins: []PluginFactory{
		func(editor *Editor) Plugin {
			e = editor
			p.editor = editor
			return p
		},
	}})
	require.Same(t, h.editor, e)

	require.NoError(t, h.editor.TogglePlugin("emoticons"))

	assert.Equal(t, ":)", h.editor.ContentOriginal())
}

// callbackPlugin inserts text when its panel opens.
type callbackPlugin struct {
	*testPlugin
	editor *Editor
}

func (p *callbackPlugin) OnShow() {
	p.testPlugin.OnShow()
	p.editor.InsertContent(":)")
}
