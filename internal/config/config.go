package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/debemdeboas/archive-comments/internal/util/compression"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

var configLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	configLogger = l
}

// Config represents the complete configuration structure
type Config struct {
	Site     SiteConfig     `yaml:"site"`
	Server   ServerConfig   `yaml:"server"`
	Composer ComposerConfig `yaml:"composer"`
	API      APIConfig      `yaml:"api"`
	Plugins  PluginsConfig  `yaml:"plugins"`
	Auth     AuthConfig     `yaml:"auth"`
	Limits   LimitsConfig   `yaml:"limits"`
	Theme    ThemeConfig    `yaml:"theme"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" default:"info"`
	Format string `yaml:"format" default:"console"`
	File   string `yaml:"file" default:""`
}

type SiteConfig struct {
	Name    string `yaml:"name" default:"The Archive"`
	PageKey string `yaml:"page_key" default:"/"`
}

type ServerConfig struct {
	Host         string `yaml:"host" default:"0.0.0.0"`
	Port         string `yaml:"port" default:"12600"`
	DatabasePath string `yaml:"database_path" default:"./comments.db"`
}

type ComposerConfig struct {
	Placeholder string        `yaml:"placeholder" default:"Leave a comment..."`
	SendButton  string        `yaml:"send_button" default:"Send"`
	DebounceMS  int           `yaml:"debounce_ms" default:"400"`
	DraftKey    string        `yaml:"draft_key" default:"ArchiveCommentDraft"`
	ProfileKey  string        `yaml:"profile_key" default:"ArchiveCommentUser"`
	Storage     StorageConfig `yaml:"storage"`
}

// Debounce is the quiet period before an identity lookup fires.
func (c ComposerConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

type StorageConfig struct {
	Backend     string `yaml:"backend" default:"fs"`
	Path        string `yaml:"path" default:".composer"`
	Bucket      string `yaml:"bucket" default:""`
	Prefix      string `yaml:"prefix" default:"composer/"`
	Endpoint    string `yaml:"endpoint" default:""`
	Compression string `yaml:"compression" default:"zstd"`
}

type APIConfig struct {
	BaseURL        string `yaml:"base_url" default:"http://localhost:12600"`
	TimeoutSeconds int    `yaml:"timeout_seconds" default:"15"`
}

func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

type PluginsConfig struct {
	Enabled       []string `yaml:"enabled" default:"emoticons,preview"`
	EmoticonsFile string   `yaml:"emoticons_file" default:""`
	Renderer      string   `yaml:"renderer" default:"mmark"`
}

type AuthConfig struct {
	AdminNick     string `yaml:"admin_nick" default:""`
	AdminEmail    string `yaml:"admin_email" default:""`
	HeaderName    string `yaml:"header_name" default:"Authorization"`
	TokenTTLHours int    `yaml:"token_ttl_hours" default:"24"`
	Clerk         bool   `yaml:"clerk" default:"false"`
}

func (c AuthConfig) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLHours) * time.Hour
}

type LimitsConfig struct {
	CommentsPerMinute int `yaml:"comments_per_minute" default:"6"`
	Burst             int `yaml:"burst" default:"2"`
}

type ThemeConfig struct {
	SyntaxTheme string `yaml:"syntax_theme" default:"gruvbox"`
}

var AppConfig *Config

func LoadConfig(path string) error {
	config := &Config{}

	// Apply default values first
	applyDefaults(config)

	// Try to read and parse the config file
	data, err := os.ReadFile(path)
	if err != nil {
		// If file doesn't exist, just use defaults
		configLogger.Info().Str("path", path).Msg("Config file not found, using defaults")
		AppConfig = config
		return nil
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return err
	}

	AppConfig = config
	return nil
}

// Validate rejects values the composer cannot run with.
func (c *Config) Validate() error {
	if c.Composer.DebounceMS < 0 {
		return fmt.Errorf("invalid composer.debounce_ms %d: must not be negative", c.Composer.DebounceMS)
	}
	if c.Composer.DraftKey == "" {
		return fmt.Errorf("composer.draft_key must not be empty")
	}
	if c.Composer.DraftKey == c.Composer.ProfileKey {
		return fmt.Errorf("composer.draft_key and composer.profile_key must differ")
	}
	switch c.Composer.Storage.Backend {
	case StorageMemory, StorageFS, StorageSQLite:
	case StorageS3:
		if c.Composer.Storage.Bucket == "" {
			return fmt.Errorf("composer.storage.bucket is required for the s3 backend")
		}
	default:
		return fmt.Errorf("unsupported storage backend %q", c.Composer.Storage.Backend)
	}
	if _, err := compression.ForName(c.Composer.Storage.Compression); err != nil {
		return fmt.Errorf("composer.storage.compression: %w", err)
	}
	return nil
}

func ApplyDefaults(config interface{}) {
	applyDefaults(config)
}

func applyDefaults(config interface{}) {
	v := reflect.ValueOf(config)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		if !field.IsValid() || !field.CanSet() {
			continue
		}

		// Recursively apply defaults to nested structs
		if field.Kind() == reflect.Struct {
			applyDefaults(field.Addr().Interface())
			continue
		}

		defaultValue := fieldType.Tag.Get("default")
		if defaultValue == "" {
			continue
		}

		switch field.Kind() {
		case reflect.String:
			field.SetString(defaultValue)
		case reflect.Bool:
			if val, err := strconv.ParseBool(defaultValue); err == nil {
				field.SetBool(val)
			}
		case reflect.Int:
			if val, err := strconv.ParseInt(defaultValue, 10, 64); err == nil {
				field.SetInt(val)
			}
		case reflect.Float64:
			if val, err := strconv.ParseFloat(defaultValue, 64); err == nil {
				field.SetFloat(val)
			}
		case reflect.Slice:
			if field.Len() == 0 && field.Type().Elem().Kind() == reflect.String {
				parts := strings.Split(defaultValue, ",")
				slice := reflect.MakeSlice(field.Type(), len(parts), len(parts))
				for j, part := range parts {
					slice.Index(j).SetString(strings.TrimSpace(part))
				}
				field.Set(slice)
			}
		default:
			configLogger.Warn().
				Str("field_name", fieldType.Name).
				Str("field_type", field.Kind().String()).
				Msg("Unsupported field type for default value")
		}
	}
}
