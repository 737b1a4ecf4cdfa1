// Package settings loads tool settings from .aiqrc files, AIQ_* environment
// variables and command-line flags.
package settings

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/sagearbor/ai-skill-eval-kit/internal/config"
)

// Settings are the resolved tool settings.
type Settings struct {
	Config         string   `mapstructure:"config"`
	Descriptions   string   `mapstructure:"descriptions"`
	Profile        string   `mapstructure:"profile" validate:"required"`
	Schema         string   `mapstructure:"schema"`
	LogLevel       string   `mapstructure:"logLevel" validate:"oneof=trace debug info warn warning error"`
	LogFormat      string   `mapstructure:"logFormat" validate:"oneof=console json"`
	Listen         string   `mapstructure:"listen" validate:"required"`
	AllowedOrigins []string `mapstructure:"allowedOrigins"`

	// File is the settings file that was read, if any.
	File string `mapstructure:"-"`
}

// EnvPrefix prefixes every environment override, as in AIQ_PROFILE.
const EnvPrefix = "AIQ"

// Defaults registers the default value of every key on v.
func Defaults(v *viper.Viper) {
	v.SetDefault("config", "")
	v.SetDefault("descriptions", "")
	v.SetDefault("profile", "standard")
	v.SetDefault("schema", "")
	v.SetDefault("logLevel", "info")
	v.SetDefault("logFormat", "console")
	v.SetDefault("listen", ":8080")
	v.SetDefault("allowedOrigins", []string{"*"})
}

// Load resolves settings on v. An explicit file must exist; otherwise
// .aiqrc.{yaml,yml,json,toml} is looked up in the working directory and then
// the home directory, and a missing file is not an error.
func Load(v *viper.Viper, file string) (*Settings, error) {
	Defaults(v)

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("settings.Load: %w", err)
		}
	} else {
		v.SetConfigName(".aiqrc")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("settings.Load: %w", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("settings.Load: %w", err)
	}
	s.File = v.ConfigFileUsed()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

var validate = validator.New()

// Validate checks enumerated values and that the profile is built in.
func (s *Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("settings: invalid: %w", err)
	}
	profiles, err := config.Profiles()
	if err != nil {
		return fmt.Errorf("settings.Validate: %w", err)
	}
	for _, p := range profiles {
		if p == s.Profile {
			return nil
		}
	}
	return fmt.Errorf("settings: unknown profile %q (have %v)", s.Profile, profiles)
}

// Provider returns the configuration provider the settings describe: the
// configured files, falling back to the selected built-in profile.
func (s *Settings) Provider() config.Provider {
	return config.FileProvider{
		WeightsPath:      s.Config,
		DescriptionsPath: s.Descriptions,
		Base:             config.BuiltinProvider{Profile: s.Profile},
	}
}
