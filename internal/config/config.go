// Package config loads snip settings from defaults, an optional YAML file,
// SNIP_-prefixed environment variables, a .env file and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/yiyuanh/snip/internal/snipgen"
	"github.com/yiyuanh/snip/pkg/model"
)

// APIKeyEnv is the environment variable holding the Anthropic credential.
const APIKeyEnv = "ANTHROPIC_API_KEY"

// Config holds all runtime settings.
type Config struct {
	Model   string    `mapstructure:"model"`
	Store   string    `mapstructure:"store"`
	Stack   string    `mapstructure:"stack"`
	Mode    string    `mapstructure:"mode"`
	Bedrock bool      `mapstructure:"bedrock"`
	Verbose bool      `mapstructure:"verbose"`
	Log     LogConfig `mapstructure:"log"`

	// APIKey is read from ANTHROPIC_API_KEY, never from the config file.
	APIKey string
}

// LogConfig controls the diagnostic logger.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
}

// Options says where Load should look besides the defaults.
type Options struct {
	ConfigFile string         // explicit config file; empty searches ./.snip.yaml and ~/.snip.yaml
	EnvFile    string         // dotenv file; empty means ".env"
	Flags      *pflag.FlagSet // flags bound by their config key name
}

// Load builds the configuration. Precedence: flags > env > config file > defaults.
func Load(opts Options) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && opts.EnvFile != "" {
		return nil, fmt.Errorf("loading env file %s: %w", envFile, err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("snip")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName(".snip")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.ConfigFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	if opts.Flags != nil {
		if err := bindFlags(v, opts.Flags); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.APIKey = os.Getenv(APIKeyEnv)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("model", snipgen.DefaultModel)
	v.SetDefault("store", "snippets.json")
	v.SetDefault("stack", model.DefaultStack)
	v.SetDefault("mode", string(snipgen.ModeDefault))
	v.SetDefault("bedrock", false)
	v.SetDefault("verbose", false)

	v.SetDefault("log.level", "warn")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age", 28)
}

// flagKeys maps flag names to config keys.
var flagKeys = map[string]string{
	"model":     "model",
	"store":     "store",
	"stack":     "stack",
	"mode":      "mode",
	"bedrock":   "bedrock",
	"verbose":   "verbose",
	"log-level": "log.level",
	"log-file":  "log.file",
}

// bindFlags binds only the flags present in fs, so commands may register a subset.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding flag %s: %w", name, err)
		}
	}
	return nil
}

func validate(cfg *Config) error {
	if strings.TrimSpace(cfg.Store) == "" {
		return fmt.Errorf("store path must not be empty")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return fmt.Errorf("model must not be empty")
	}
	if _, err := snipgen.ParseMode(cfg.Mode); err != nil {
		return err
	}
	if _, err := zapcore.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	return nil
}

// GenerationMode returns the configured persona mode.
func (c *Config) GenerationMode() snipgen.Mode {
	mode, err := snipgen.ParseMode(c.Mode)
	if err != nil {
		return snipgen.ModeDefault
	}
	return mode
}

// RequireCredentials fails when neither an API key nor Bedrock is configured.
func (c *Config) RequireCredentials() error {
	if c.APIKey == "" && !c.Bedrock {
		return fmt.Errorf("%s environment variable is required (or use --bedrock)", APIKeyEnv)
	}
	return nil
}
