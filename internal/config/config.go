package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration accepts human-friendly values like "10s" in yaml.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

type Config struct {
	Host       HostConfig       `yaml:"host"`
	Connection ConnectionConfig `yaml:"connection"`
	Probe      bool             `yaml:"probe"`
}

type HostConfig struct {
	URL      string `yaml:"url"`
	PluginID string `yaml:"plugin_id"`
}

type ConnectionConfig struct {
	RetryInterval  Duration `yaml:"retry_interval"`
	ConnectTimeout Duration `yaml:"connect_timeout"`
}

func Default() *Config {
	return &Config{
		Host: HostConfig{
			URL:      "ws://127.0.0.1:59371/plugin/ws",
			PluginID: "com.tilepad.obs-studio",
		},
		Connection: ConnectionConfig{
			RetryInterval:  Duration(10 * time.Second),
			ConnectTimeout: Duration(5 * time.Second),
		},
		Probe: true,
	}
}

// Load reads the config file at path over the defaults. A missing file is
// not an error; the plugin runs fine on defaults alone.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
