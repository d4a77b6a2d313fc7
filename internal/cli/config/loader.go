package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// loggerKey is used to store logger in context.
// This key is shared with root.go via both using the same type.
type loggerKey struct{}

// Config file names, looked up in the working directory first, then in
// the user config directory.
const (
	ConfigFileName    = "radops.yaml"
	ConfigFileNameAlt = "radops.yml"
)

// Package-level koanf instance and config file tracking.
var (
	k              = koanf.New(".")
	configFileUsed string
	currentConfig  *Config
)

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
	currentConfig = nil
}

// findConfigFile finds the config file to use.
// Priority: explicit path > ./radops.yaml > ./radops.yml > user config dir.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{ConfigFileName, ConfigFileNameAlt} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	if dir, err := os.UserConfigDir(); err == nil {
		for _, name := range []string{ConfigFileName, ConfigFileNameAlt} {
			candidate := filepath.Join(dir, "radops", name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
	}
	return ""
}

// Load loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k = koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]interface{}{
		"api.url":         DefaultAPIURL,
		"api.timeout":     "15s",
		"radacct.port":    5432,
		"radacct.sslmode": "disable",
		"ui.page_size":    DefaultPageSize,
		"ui.theme":        DefaultTheme,
		"ui.mouse":        true,
		"log.level":       DefaultLogLevel,
		"verbose":         false,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	configFileUsed = findConfigFile(cfgFile)
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// RADOPS_API__TOKEN -> api.token, RADOPS_VERBOSE -> verbose. A double
	// underscore separates nesting levels so keys like ui.page_size stay
	// addressable (RADOPS_UI__PAGE_SIZE).
	if err := k.Load(env.Provider("RADOPS_", ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, "RADOPS_"))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			// Only flags the user actually set override lower layers.
			if !f.Changed {
				return "", nil
			}
			// Flag names are flat, config keys are nested.
			switch f.Name {
			case "api-url":
				return "api.url", posflag.FlagVal(flags, f)
			case "api-token":
				return "api.token", posflag.FlagVal(flags, f)
			case "log-file":
				return "log.file", posflag.FlagVal(flags, f)
			case "verbose":
				return "verbose", posflag.FlagVal(flags, f)
			case "output":
				return "output", posflag.FlagVal(flags, f)
			}
			// Flags without a config key (--config itself, command flags)
			return "", nil
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// Env and flag values arrive as strings, so weak typing plus the
	// duration hook turn "50" and "15s" into their typed fields.
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.TextUnmarshallerHookFunc(),
			),
			WeaklyTypedInput: true,
			Result:           &cfg,
			TagName:          "koanf",
		},
	}); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// ${VAR} references in credential fields expand here, so config files
	// can be committed without secrets in them.
	cfg.API.Token = expandEnvVars(cfg.API.Token)
	cfg.Radacct.Host = expandEnvVars(cfg.Radacct.Host)
	cfg.Radacct.Username = expandEnvVars(cfg.Radacct.Username)
	cfg.Radacct.Password = expandEnvVars(cfg.Radacct.Password)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	currentConfig = &cfg
	return &cfg, nil
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// GetCurrentConfig returns the most recently loaded configuration. Commands
// use this instead of importing the cli package, which would be a cycle.
// Returns defaults when Load has not run, which keeps tests that build
// commands directly from panicking.
func GetCurrentConfig() *Config {
	if currentConfig != nil {
		return currentConfig
	}
	return &Config{
		API: API{URL: DefaultAPIURL, Timeout: 15 * time.Second},
		UI:  UI{PageSize: DefaultPageSize, Theme: DefaultTheme, Mouse: true},
		Log: Log{Level: DefaultLogLevel},
	}
}

// LoggerKey returns the context key used for storing the logger.
// This allows the commands package to retrieve the logger from context
// without creating an import cycle with the cli package.
func LoggerKey() interface{} {
	return loggerKey{}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}

// expandEnvVars expands ${VAR} patterns in a string with environment
// variable values.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match // Return original if not found
	})
}
