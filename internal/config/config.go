package config

import (
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// FileName is the config file looked up in the plugin directory.
const FileName = "c4timer.cfg.json"

// OTelConfig holds OpenTelemetry settings
type OTelConfig struct {
	Enabled      bool          `json:"enabled" mapstructure:"enabled"`
	ServiceName  string        `json:"serviceName" mapstructure:"serviceName"`
	BatchTimeout time.Duration `json:"batchTimeout" mapstructure:"batchTimeout"`
	Endpoint     string        `json:"endpoint" mapstructure:"endpoint"`
	Insecure     bool          `json:"insecure" mapstructure:"insecure"`
}

// GraylogConfig holds the optional GELF log sink settings
type GraylogConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Address string `json:"address" mapstructure:"address"`
}

// SimConfig drives the scripted round of the simulated server
type SimConfig struct {
	TickRate    int     `json:"tickRate" mapstructure:"tickRate"`
	FuseLength  float64 `json:"fuseLength" mapstructure:"fuseLength"`
	RoundLength float64 `json:"roundLength" mapstructure:"roundLength"`
	PlantAt     float64 `json:"plantAt" mapstructure:"plantAt"`
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	// Set default values
	viper.SetDefault("timer", true)
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./c4timerlogs")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "c4timer")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)

	viper.SetDefault("sim.tickRate", 64)
	viper.SetDefault("sim.fuseLength", 40.0)
	viper.SetDefault("sim.roundLength", 60.0)
	viper.SetDefault("sim.plantAt", 5.0)

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// Watch reloads the config file whenever it changes on disk and calls onChange
// afterwards. Load must have succeeded first.
func Watch(onChange func()) {
	viper.OnConfigChange(func(fsnotify.Event) {
		if onChange != nil {
			onChange()
		}
	})
	viper.WatchConfig()
}

// TimerEnabled reports whether the bomb timer is switched on. It reads the
// live value so a reloaded file takes effect immediately.
func TimerEnabled() bool {
	return viper.GetBool("timer")
}

// GetOTelConfig returns the OpenTelemetry settings
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}

// GetGraylogConfig returns the GELF sink settings
func GetGraylogConfig() GraylogConfig {
	return GraylogConfig{
		Enabled: viper.GetBool("graylog.enabled"),
		Address: viper.GetString("graylog.address"),
	}
}

// GetSimConfig returns the simulated round settings
func GetSimConfig() SimConfig {
	return SimConfig{
		TickRate:    viper.GetInt("sim.tickRate"),
		FuseLength:  viper.GetFloat64("sim.fuseLength"),
		RoundLength: viper.GetFloat64("sim.roundLength"),
		PlantAt:     viper.GetFloat64("sim.plantAt"),
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
