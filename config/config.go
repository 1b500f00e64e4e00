// Package config loads the pmocontrol settings from a YAML file, lets
// environment variables override them and turns them into the option
// structs of the controlpoint and events packages.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"sync"

	"gargoton.petite-maison-orange.fr/eric/pmocontrol/pmolog"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

//go:embed pmocontrol.yaml
var defaultConfig []byte

const (
	envConfigFile = "PMOCONTROL_CONFIG"
	envPrefix     = "PMOCONTROL_CONFIG__"
	fileName      = ".pmocontrol.yml"
)

// Config is a tree of settings with case-insensitive keys.
type Config struct {
	path   string
	mutex  sync.Mutex
	config map[string]any
}

// LoadConfig reads the first readable file among:
//   - filename, when not empty
//   - the file named by $PMOCONTROL_CONFIG
//   - ./.pmocontrol.yml
//   - ~/.pmocontrol.yml
//
// and falls back on the embedded defaults. Keys missing from the file take
// their default value. Variables named PMOCONTROL_CONFIG__SECTION__KEY then
// override single settings.
//
// Save writes to the file read, or to the first writable candidate when the
// defaults were used.
func LoadConfig(filename string, logger logrus.FieldLogger) (*Config, error) {
	log := pmolog.OrDiscard(logger)

	candidates := []struct{ path, origin string }{
		{filename, "argument"},
		{os.Getenv(envConfigFile), "env var " + envConfigFile},
		{fileName, "current directory"},
		{homeYmlPath(), "user's home"},
	}

	var data []byte
	path := ""
	for _, c := range candidates {
		if c.path == "" {
			continue
		}
		log.Infof("✅ Trying to load config %s (%s)", c.path, c.origin)
		b, err := os.ReadFile(c.path)
		if err != nil {
			log.Warnf("❌ cannot read config file %s", c.path)
			continue
		}
		data, path = b, c.path
		break
	}

	cfg, err := FromYAML(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if path == "" {
		log.Infof("✅ Using default embedded config")
	}

	applyEnvOverrides(cfg)

	if path == "" || !isWriteable(path) {
		path = ""
		for _, c := range candidates {
			if c.path != "" && isWriteable(c.path) {
				path = c.path
				break
			}
		}
	}
	cfg.path = path
	if path != "" {
		log.Infof("✅ Config file will be stored in %s", path)
	}
	return cfg, nil
}

// FromYAML builds a config from a document layered over the embedded
// defaults. Environment overrides are not applied.
func FromYAML(data []byte) (*Config, error) {
	var base map[string]any
	if err := yaml.Unmarshal(defaultConfig, &base); err != nil {
		return nil, fmt.Errorf("invalid embedded config: %w", err)
	}

	var custom map[string]any
	if err := yaml.Unmarshal(data, &custom); err != nil {
		return nil, fmt.Errorf("invalid YAML config: %w", err)
	}

	return &Config{config: mergeMaps(lowerKeysMap(base), lowerKeysMap(custom))}, nil
}

// Path is where Save writes, empty when no writable location was found.
func (cfg *Config) Path() string {
	cfg.mutex.Lock()
	defer cfg.mutex.Unlock()
	return cfg.path
}

func (cfg *Config) SetPath(path string) {
	cfg.mutex.Lock()
	defer cfg.mutex.Unlock()
	cfg.path = path
}

func (cfg *Config) Save() error {
	cfg.mutex.Lock()
	defer cfg.mutex.Unlock()

	if cfg.path == "" {
		return fmt.Errorf("no writable location for the config file")
	}

	data, err := yaml.Marshal(cfg.config)
	if err != nil {
		return err
	}
	return os.WriteFile(cfg.path, data, 0644)
}

func (cfg *Config) GetValue(path []string) (any, error) {
	cfg.mutex.Lock()
	defer cfg.mutex.Unlock()

	current := cfg.config
	for i, key := range path {
		next, ok := current[strings.ToLower(key)]
		if !ok {
			return nil, fmt.Errorf("path %s does not exist", strings.Join(path[:i+1], "."))
		}
		if i == len(path)-1 {
			return next, nil
		}
		if current, ok = next.(map[string]any); !ok {
			return nil, fmt.Errorf("path %s is not a section", strings.Join(path[:i+1], "."))
		}
	}
	return nil, fmt.Errorf("empty path")
}

// SetValue stores value at path, creating sections on the way. A setting
// standing where a section is needed is replaced.
func (cfg *Config) SetValue(path []string, value any) {
	cfg.mutex.Lock()
	defer cfg.mutex.Unlock()

	current := cfg.config
	for i, key := range path {
		key = strings.ToLower(key)
		if i == len(path)-1 {
			current[key] = value
			return
		}
		next, ok := current[key].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[key] = next
		}
		current = next
	}
}

func homeYmlPath() string {
	usr, err := user.Current()
	if err != nil {
		return ""
	}
	return filepath.Join(usr.HomeDir, fileName)
}

func applyEnvOverrides(cfg *Config) {
	for _, env := range os.Environ() {
		if !strings.HasPrefix(env, envPrefix) {
			continue
		}
		key, value, ok := strings.Cut(env, "=")
		if !ok {
			continue
		}
		keyPath := strings.Split(strings.TrimPrefix(key, envPrefix), "__")
		cfg.SetValue(keyPath, convertYAMLScalar(value))
	}
}

func convertYAMLScalar(s string) any {
	var out any
	if err := yaml.Unmarshal([]byte(s), &out); err != nil {
		return s
	}
	return out
}

func lowerKeysMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if vv, ok := v.(map[string]any); ok {
			out[strings.ToLower(k)] = lowerKeysMap(vv)
			continue
		}
		out[strings.ToLower(k)] = v
	}
	return out
}

// mergeMaps returns base overridden by over, section by section.
func mergeMaps(base, over map[string]any) map[string]any {
	for k, v := range over {
		if sub, ok := v.(map[string]any); ok {
			if bsub, ok := base[k].(map[string]any); ok {
				base[k] = mergeMaps(bsub, sub)
				continue
			}
		}
		base[k] = v
	}
	return base
}

// isWriteable tells whether path can be written: an existing file with the
// owner write bit, or a missing file in a writable directory.
func isWriteable(path string) bool {
	info, err := os.Stat(path)
	if err == nil {
		return info.Mode().IsRegular() && info.Mode().Perm()&0200 != 0
	}
	if !os.IsNotExist(err) {
		return false
	}
	dirInfo, err := os.Stat(filepath.Dir(path))
	if err != nil {
		return false
	}
	return dirInfo.IsDir() && dirInfo.Mode().Perm()&0200 != 0
}
