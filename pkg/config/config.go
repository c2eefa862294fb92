// Package config loads the modulator's on-disk configuration: the
// ensemble transmission mode, EDI listen address, subchannel table,
// output sink, gain control and remote-control/metrics bind
// addresses. Same shape as the teacher's viper-backed loader.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config is the top-level configuration loaded from file, env vars
// and defaults.
type Config struct {
	Ensemble EnsembleConfig `mapstructure:"ensemble"`
	Gain     GainConfig     `mapstructure:"gain"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Control  ControlConfig  `mapstructure:"control"`
	Monitor  MonitorConfig  `mapstructure:"monitor"`
	Audit    AuditConfig    `mapstructure:"audit"`
	Output   OutputConfig   `mapstructure:"output"`
}

// EnsembleConfig describes the multiplex being modulated.
type EnsembleConfig struct {
	Mode        int                `mapstructure:"mode"` // transmission mode, 1-4
	EDIListen   string             `mapstructure:"edi_listen"`
	MaxDelay    int                `mapstructure:"max_delay"` // PFT reassembly window, in AF packets; not passed to the EDI receiver, which always uses edi.DefaultMaxDelay
	Subchannels []SubchannelConfig `mapstructure:"subchannels"`
	OutputRate  int                `mapstructure:"output_rate"` // Hz
}

// SubchannelConfig is one subchannel's ETI STC fields, as configured
// rather than decoded from a live frame (used to validate a multiplex
// definition ahead of any traffic arriving).
type SubchannelConfig struct {
	SCID             int  `mapstructure:"scid"`
	StartAddressCU   int  `mapstructure:"start_address_cu"`
	ProtectionForm   bool `mapstructure:"protection_form_long"` // true = EEP, false = UEP
	ProtectionOption int  `mapstructure:"protection_option"`
	ProtectionLevel  int  `mapstructure:"protection_level"`
	Bitrate          int  `mapstructure:"bitrate"` // kb/s
}

// GainConfig selects the modulator's output gain strategy.
type GainConfig struct {
	Mode   string  `mapstructure:"mode"` // fix, max, var
	Factor float64 `mapstructure:"factor"`
}

// LoggingConfig matches the teacher's logging shape.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// MetricsConfig controls the Prometheus HTTP endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Listen  string `mapstructure:"listen"`
	Path    string `mapstructure:"path"`
}

// ControlConfig controls the UDP remote-control listener.
type ControlConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Listen  string `mapstructure:"listen"`
}

// MonitorConfig controls the optional websocket telemetry hub.
type MonitorConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Listen  string `mapstructure:"listen"`
}

// AuditConfig controls the optional sqlite audit store.
type AuditConfig struct {
	DBPath string `mapstructure:"db_path"` // empty disables persistence
}

// OutputConfig selects the I/Q sample sink.
type OutputConfig struct {
	Path string `mapstructure:"path"` // file path, or "-" for stdout
}

// Load reads configuration from configFile (or the default search
// path when empty), environment variables prefixed DABMOD_, and
// built-in defaults, then validates it.
func Load(configFile string) (*Config, error) {
	setDefaults()

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./configs")
		viper.AddConfigPath("/etc/dabmod")
	}

	viper.SetEnvPrefix("DABMOD")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// fall through on defaults
		} else if os.IsNotExist(err) {
			// fall through on defaults
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("ensemble.mode", 1)
	viper.SetDefault("ensemble.edi_listen", "0.0.0.0:9000")
	viper.SetDefault("ensemble.max_delay", 10)
	viper.SetDefault("ensemble.output_rate", 2048000)

	viper.SetDefault("gain.mode", "fix")
	viper.SetDefault("gain.factor", 1.0)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")

	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.listen", "0.0.0.0:9100")
	viper.SetDefault("metrics.path", "/metrics")

	viper.SetDefault("control.enabled", true)
	viper.SetDefault("control.listen", "0.0.0.0:9200")

	viper.SetDefault("monitor.enabled", false)
	viper.SetDefault("monitor.listen", "0.0.0.0:9300")

	viper.SetDefault("audit.db_path", "")

	viper.SetDefault("output.path", "-")
}
