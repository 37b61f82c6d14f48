// Package emoticons is the composer plugin that inserts emoticons from
// TOML-defined sets.
package emoticons

import (
	_ "embed"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/debemdeboas/archive-comments/internal/composer"
)

const Name = "emoticons"

const (
	TypeText  = "text"
	TypeImage = "image"
)

//go:embed default.toml
var defaultSets []byte

type Item struct {
	Key string `toml:"key"`
	Val string `toml:"val"`
}

type Set struct {
	Name  string `toml:"name"`
	Type  string `toml:"type"`
	Items []Item `toml:"items"`
}

type file struct {
	Sets []Set `toml:"sets"`
}

// Parse decodes emoticon sets from TOML.
func Parse(data []byte) ([]Set, error) {
	var f file
	if _, err := toml.Decode(string(data), &f); err != nil {
		return nil, fmt.Errorf("failed to parse emoticon sets: %w", err)
	}
	if err := validate(f.Sets); err != nil {
		return nil, err
	}
	return f.Sets, nil
}

// Load reads emoticon sets from path, or the built-in sets when path is
// empty.
func Load(path string) ([]Set, error) {
	if path == "" {
		return Parse(defaultSets)
	}
	var f file
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("failed to load emoticon sets from %s: %w", path, err)
	}
	if err := validate(f.Sets); err != nil {
		return nil, err
	}
	return f.Sets, nil
}

func validate(sets []Set) error {
	if len(sets) == 0 {
		return errors.New("no emoticon sets defined")
	}
	seen := make(map[string]bool)
	for _, s := range sets {
		if s.Type != TypeText && s.Type != TypeImage {
			return fmt.Errorf("emoticon set %q: unknown type %q", s.Name, s.Type)
		}
		for _, it := range s.Items {
			if it.Key == "" {
				return fmt.Errorf("emoticon set %q: item without key", s.Name)
			}
			if s.Type == TypeImage {
				if seen[it.Key] {
					return fmt.Errorf("emoticon set %q: duplicate image key %q", s.Name, it.Key)
				}
				seen[it.Key] = true
			}
		}
	}
	return nil
}

// Inserter is the part of the composer the plugin drives.
type Inserter interface {
	InsertContent(text string)
}

// Plugin offers the emoticon sets in its panel. Image emoticons are stored in
// the draft as :[key] tokens and expanded by Transform.
type Plugin struct {
	editor   Inserter
	sets     []Set
	replacer *strings.Replacer
}

func New(editor Inserter, sets []Set) *Plugin {
	var pairs []string
	for _, s := range sets {
		if s.Type != TypeImage {
			continue
		}
		for _, it := range s.Items {
			pairs = append(pairs, token(it.Key), imageTag(it))
		}
	}
	return &Plugin{
		editor:   editor,
		sets:     sets,
		replacer: strings.NewReplacer(pairs...),
	}
}

// Factory registers the plugin with a composer.
func Factory(sets []Set) composer.PluginFactory {
	return func(e *composer.Editor) composer.Plugin {
		return New(e, sets)
	}
}

func token(key string) string {
	return ":[" + key + "]"
}

func imageTag(it Item) string {
	return fmt.Sprintf(`<img class="emoticon" src="%s" alt="%s" />`, html.EscapeString(it.Val), html.EscapeString(it.Key))
}

func (p *Plugin) Name() string         { return Name }
func (p *Plugin) ToggleMarkup() string { return "☺" }
func (p *Plugin) OnShow()              {}
func (p *Plugin) OnHide()              {}

func (p *Plugin) Panel() composer.Panel {
	return composer.PanelFunc(p.render)
}

func (p *Plugin) render() string {
	var b strings.Builder
	for i, s := range p.sets {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s:", s.Name)
		for _, it := range s.Items {
			if s.Type == TypeImage {
				fmt.Fprintf(&b, " %s", token(it.Key))
			} else {
				fmt.Fprintf(&b, " [%s] %s", it.Key, it.Val)
			}
		}
	}
	return b.String()
}

// Transform expands image tokens into <img> tags.
func (p *Plugin) Transform(content string) string {
	return p.replacer.Replace(content)
}

// Pick inserts the emoticon with the given key and reports whether it exists.
func (p *Plugin) Pick(key string) bool {
	for _, s := range p.sets {
		for _, it := range s.Items {
			if it.Key != key {
				continue
			}
			if s.Type == TypeImage {
				p.editor.InsertContent(token(it.Key))
			} else {
				p.editor.InsertContent(it.Val)
			}
			return true
		}
	}
	return false
}

// Keys lists every emoticon key in set order.
func (p *Plugin) Keys() []string {
	var keys []string
	for _, s := range p.sets {
		for _, it := range s.Items {
			keys = append(keys, it.Key)
		}
	}
	return keys
}
