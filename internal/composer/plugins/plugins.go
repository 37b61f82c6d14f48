// Package plugins builds the composer plugin list from configuration.
package plugins

import (
	"fmt"

	"github.com/debemdeboas/archive-comments/internal/composer"
	"github.com/debemdeboas/archive-comments/internal/composer/plugins/emoticons"
	"github.com/debemdeboas/archive-comments/internal/composer/plugins/preview"
	"github.com/debemdeboas/archive-comments/internal/config"
)

// Factories returns the enabled plugins in configured order.
func Factories(cfg config.PluginsConfig, syntaxTheme string) ([]composer.PluginFactory, error) {
	factories := make([]composer.PluginFactory, 0, len(cfg.Enabled))
	seen := make(map[string]bool)

	for _, name := range cfg.Enabled {
		if seen[name] {
			return nil, fmt.Errorf("plugin %q enabled twice", name)
		}
		seen[name] = true

		switch name {
		case emoticons.Name:
			sets, err := emoticons.Load(cfg.EmoticonsFile)
			if err != nil {
				return nil, err
			}
			factories = append(factories, emoticons.Factory(sets))
		case preview.Name:
			factories = append(factories, preview.Factory(syntaxTheme))
		default:
			return nil, fmt.Errorf("unknown plugin %q", name)
		}
	}
	return factories, nil
}
