package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/imdario/mergo"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the data structure of our user provided yaml configuration.
// Every field is a default for the matching scan flag.
type Config struct {
	Threads   int     `yaml:"threads"`
	Timeout   float64 `yaml:"timeout"`
	Grab      bool    `yaml:"grab"`
	JSON      bool    `yaml:"json"`
	Randomize bool    `yaml:"randomize"`
	Save      bool    `yaml:"save"`
	Output    string  `yaml:"output"`
}

// TimeoutDuration returns the configured per-port timeout as a duration
func (c Config) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout * float64(time.Second))
}

// Default returns the built in configuration
func Default() *Config {
	return &Config{
		Threads: 100,
		Timeout: 1,
	}
}

// Load returns unmarshaled data structure of user provided config with any
// unset fields filled from Default. A missing file is not an error.
func Load(confPath string) (*Config, error) {
	conf := Config{}

	raw, err := os.ReadFile(confPath)

	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}

		return nil, err
	}

	if err := yaml.Unmarshal(raw, &conf); err != nil {
		return nil, err
	}

	if err := mergo.Merge(&conf, Default()); err != nil {
		return nil, err
	}

	return &conf, nil
}

// Write writes conf to the config file registered in viper
func Write(conf Config) error {
	configFile, ok := viper.Get("config-file").(string)

	if !ok || configFile == "" {
		return errors.New("failed to find config file path config")
	}

	if err := os.MkdirAll(filepath.Dir(configFile), 0755); err != nil {
		return err
	}

	file, err := os.Create(configFile)

	if err != nil {
		return err
	}

	defer file.Close()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)

	return encoder.Encode(conf)
}
