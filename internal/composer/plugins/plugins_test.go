package plugins

import (
	"testing"

	"github.com/debemdeboas/archive-comments/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactories(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.PluginsConfig
		want    int
		wantErr string
	}{
		{name: "defaults", cfg: config.PluginsConfig{Enabled: []string{"emoticons", "preview"}}, want: 2},
		{name: "none", cfg: config.PluginsConfig{}, want: 0},
		{name: "unknown", cfg: config.PluginsConfig{Enabled: []string{"giphy"}}, wantErr: `unknown plugin "giphy"`},
		{name: "duplicate", cfg: config.PluginsConfig{Enabled: []string{"preview", "preview"}}, wantErr: "enabled twice"},
		{name: "bad emoticon file", cfg: config.PluginsConfig{Enabled: []string{"emoticons"}, EmoticonsFile: "/does/not/exist.toml"}, wantErr: "failed to load"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Factories(tt.cfg, "github")
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}
}
