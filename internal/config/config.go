package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// RecorderConfig holds session recorder settings.
type RecorderConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Type    string `json:"type" mapstructure:"type"`
	Path    string `json:"path" mapstructure:"path"`
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	// Set default values
	viper.SetDefault("autoStart", false)
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./vrlogs")

	// Init retry cool-down, seconds
	viper.SetDefault("cooldownSeconds", 10)

	// Per-scene world scale (world units per meter)
	viper.SetDefault("worldScale.menu", 1.0)
	viper.SetDefault("worldScale.vehicleInterior", 1.0)
	viper.SetDefault("worldScale.extravehicular", 1.0)
	viper.SetDefault("worldScale.editor", 1.0)

	viper.SetDefault("recorder.enabled", false)
	viper.SetDefault("recorder.type", "memory")
	viper.SetDefault("recorder.path", "./vrsessions.db")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "")
	viper.SetDefault("influx.org", "vrlink-metrics")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.endpoint", "")

	viper.SetConfigName("vrlink.cfg.json")
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// Recorder returns the session recorder settings.
func Recorder() RecorderConfig {
	return RecorderConfig{
		Enabled: viper.GetBool("recorder.enabled"),
		Type:    viper.GetString("recorder.type"),
		Path:    viper.GetString("recorder.path"),
	}
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetFloat64 returns a float config value.
func GetFloat64(key string) float64 {
	return viper.GetFloat64(key)
}
