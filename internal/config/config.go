package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const appName = "dukedoc"

// Formats lists output serializations. It decodes from a TOML array or a
// comma-separated string such as DUKEDOC_OUTPUT_FORMATS=yml,json.
type Formats []string

type IndexConfig struct {
	File   string `mapstructure:"file"`
	Prefix string `mapstructure:"prefix"`
}

type OutputConfig struct {
	Dir     string  `mapstructure:"dir"`
	Formats Formats `mapstructure:"formats"`
}

type ParseConfig struct {
	SkipBrokenMembers bool   `mapstructure:"skip_broken_members"`
	OverloadOrder     string `mapstructure:"overload_order"`
}

type FetchConfig struct {
	TimeoutSeconds int  `mapstructure:"timeout_seconds"`
	Cache          bool `mapstructure:"cache"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type Config struct {
	Index  IndexConfig  `mapstructure:"index"`
	Output OutputConfig `mapstructure:"output"`
	Parse  ParseConfig  `mapstructure:"parse"`
	Fetch  FetchConfig  `mapstructure:"fetch"`
	Log    LogConfig    `mapstructure:"log"`
}

// cacheBase returns the base cache directory for dukedoc.
// Checks XDG_CACHE_HOME, then ~/.cache, then the system temp dir.
func cacheBase() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".cache", appName)
	}
	return filepath.Join(os.TempDir(), appName)
}

// DBPath returns the path to the DuckDB index file.
func DBPath() string {
	return filepath.Join(cacheBase(), "index.db")
}

// CASDir returns the path to the content-addressable store of class documents.
func CASDir() string {
	return filepath.Join(cacheBase(), "cas")
}

// PageCacheDir holds compressed copies of pages fetched over HTTP.
func PageCacheDir() string {
	return filepath.Join(cacheBase(), "pages")
}

// LogPath returns the path to the MCP server's log file.
func LogPath() string {
	return filepath.Join(cacheBase(), "mcp.log")
}

func InitializeViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("toml")

	viper.AddConfigPath(".")
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		viper.AddConfigPath(filepath.Join(xdg, appName))
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".config", appName))
	}

	viper.SetDefault("index.file", "allclasses-index.html")
	viper.SetDefault("index.prefix", "")
	viper.SetDefault("output.dir", "dist")
	viper.SetDefault("output.formats", []string{"yml", "json"})
	viper.SetDefault("parse.skip_broken_members", false)
	viper.SetDefault("parse.overload_order", "encounter")
	viper.SetDefault("fetch.timeout_seconds", 60)
	viper.SetDefault("fetch.cache", true)
	viper.SetDefault("log.level", "info")

	viper.SetEnvPrefix("DUKEDOC")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return nil
}

func stringToFormatsHookFunc() mapstructure.DecodeHookFunc {
	return func(f, t reflect.Type, data interface{}) (interface{}, error) {
		if t != reflect.TypeOf(Formats{}) || f.Kind() != reflect.String {
			return data, nil
		}
		var out Formats
		for _, part := range strings.Split(data.(string), ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out, nil
	}
}

func Load() (*Config, error) {
	if err := InitializeViper(); err != nil {
		return nil, err
	}

	var config Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       stringToFormatsHookFunc(),
		WeaklyTypedInput: true,
		Result:           &config,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(viper.AllSettings()); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if len(config.Output.Formats) == 0 {
		return nil, fmt.Errorf("output.formats must name at least one format")
	}
	if config.Fetch.TimeoutSeconds <= 0 {
		return nil, fmt.Errorf("fetch.timeout_seconds must be positive, got %d", config.Fetch.TimeoutSeconds)
	}

	return &config, nil
}
