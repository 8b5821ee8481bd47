package config

import (
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"layer-manager/core/database"
	"layer-manager/core/logger"
	"layer-manager/core/resolver"
	"layer-manager/core/server"
	"layer-manager/core/storage"
	"layer-manager/feature/viewer"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the full service configuration. Each section belongs to the
// package that consumes it.
type Config struct {
	Server   server.Config   `mapstructure:"server"`
	Storage  storage.Config  `mapstructure:"storage"`
	Log      logger.Config   `mapstructure:"log"`
	Database database.Config `mapstructure:"database"`
	Resolver resolver.Config `mapstructure:"resolver"`
	Viewer   viewer.Config   `mapstructure:"viewer"`
}

// LoadConfig reads dir/.env when present, then the environment. Keys map to
// variables by upper-casing and replacing dots, so viewer.exaggeration is
// VIEWER_EXAGGERATION.
func LoadConfig(dir string) (*Config, error) {
	// a missing .env is normal outside development
	_ = godotenv.Overload(filepath.Join(dir, ".env"))

	v := viper.New()
	setDefaults(v, reflect.TypeOf(Config{}), "")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values that have no usable fallback.
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if c.Viewer.Exaggeration <= 0 {
		return fmt.Errorf("invalid viewer exaggeration %v", c.Viewer.Exaggeration)
	}
	return nil
}

// setDefaults registers every tagged leaf field with viper. A key must be
// registered, even with an empty default, for AutomaticEnv to fill it.
func setDefaults(v *viper.Viper, t reflect.Type, prefix string) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name := f.Tag.Get("mapstructure")
		if name == "" {
			continue
		}
		if prefix != "" {
			name = prefix + "." + name
		}
		if f.Type.Kind() == reflect.Struct {
			setDefaults(v, f.Type, name)
			continue
		}
		v.SetDefault(name, f.Tag.Get("default"))
	}
}
