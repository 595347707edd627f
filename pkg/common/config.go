package common

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

//go:embed config.default.yaml
var defaultConfig []byte

const (
	configPathEnv = "CONFIG_PATH"
	configJSONEnv = "CONFIG_JSON"
)

// ConfigManager layers configuration sources: embedded defaults, then the file
// at CONFIG_PATH, then a JSON document in CONFIG_JSON.
type ConfigManager[T any] struct {
	mu    sync.Mutex
	koanf *koanf.Koanf
}

func NewConfigManager[T any]() (*ConfigManager[T], error) {
	cm := &ConfigManager[T]{
		koanf: koanf.New("."),
	}

	if err := cm.LoadConfig(rawbytes.Provider(defaultConfig), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load default config: %w", err)
	}

	if path := os.Getenv(configPathEnv); path != "" {
		if err := cm.LoadConfigFile(path); err != nil {
			return nil, err
		}
	}

	if raw := os.Getenv(configJSONEnv); raw != "" {
		if err := cm.LoadConfig(rawbytes.Provider([]byte(raw)), json.Parser()); err != nil {
			return nil, fmt.Errorf("load %s: %w", configJSONEnv, err)
		}
	}

	return cm, nil
}

// LoadConfig merges a provider over the current configuration
func (cm *ConfigManager[T]) LoadConfig(provider koanf.Provider, parser koanf.Parser) error {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	return cm.koanf.Load(provider, parser)
}

// LoadConfigFile merges a yaml or json file, chosen by extension
func (cm *ConfigManager[T]) LoadConfigFile(path string) error {
	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		parser = json.Parser()
	case ".yaml", ".yml":
		parser = yaml.Parser()
	default:
		return fmt.Errorf("unsupported config file type: %s", path)
	}

	if err := cm.LoadConfig(file.Provider(path), parser); err != nil {
		return fmt.Errorf("load config file %s: %w", path, err)
	}
	return nil
}

// GetConfig decodes the merged configuration into T
func (cm *ConfigManager[T]) GetConfig() T {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	var c T
	err := cm.koanf.UnmarshalWithConf("", &c, koanf.UnmarshalConf{
		Tag: "key",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
				mapstructure.TextUnmarshallerHookFunc(),
			),
			Result:           &c,
			WeaklyTypedInput: true,
			TagName:          "key",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("decode config: %v", err))
	}
	return c
}
