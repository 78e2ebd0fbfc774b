package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// PathEnvVar overrides the config file location.
const PathEnvVar = "CINEMATCH_CONFIG"

const envPrefix = "CINEMATCH_"

// DefaultPaths are searched when no explicit path is given.
var DefaultPaths = []string{"cinematch.yaml", "cinematch.yml", "/etc/cinematch/config.yaml"}

// envAliases maps well-known variable names onto config paths.
var envAliases = map[string]string{
	"TMDB_API_KEY": "catalog.tmdb.api_key",
	"LLM_API_KEY":  "summary.api_key",
}

// Load builds the configuration from defaults, the optional YAML file at path
// (or the first of PathEnvVar / DefaultPaths that exists) and the environment.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("config: load defaults: %w", err)
	}

	if path == "" {
		path = findFile()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: load %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("config: load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func findFile() string {
	if p := os.Getenv(PathEnvVar); p != "" {
		return p
	}
	for _, p := range DefaultPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// envKey maps CINEMATCH_ENCODER__BATCH_SIZE to encoder.batch_size. Variables
// outside the prefix and alias set are ignored.
func envKey(key string) string {
	if alias, ok := envAliases[key]; ok {
		return alias
	}
	if !strings.HasPrefix(key, envPrefix) || key == PathEnvVar {
		return ""
	}
	key = strings.TrimPrefix(key, envPrefix)
	return strings.ReplaceAll(strings.ToLower(key), "__", ".")
}
