package config

import (
	"testing"

	"github.com/spf13/viper"
)

func TestLoad_UsesDefaults_WhenNoFile(t *testing.T) {
	// Reset viper to avoid cross-test pollution
	viper.Reset()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Ensemble.Mode != 1 {
		t.Errorf("expected Ensemble.Mode default 1, got %d", cfg.Ensemble.Mode)
	}
	if cfg.Ensemble.OutputRate != 2048000 {
		t.Errorf("expected Ensemble.OutputRate default 2048000, got %d", cfg.Ensemble.OutputRate)
	}
	if cfg.Gain.Mode != "fix" {
		t.Errorf("expected Gain.Mode default fix, got %q", cfg.Gain.Mode)
	}
	if cfg.Metrics.Listen != "0.0.0.0:9100" {
		t.Errorf("expected Metrics.Listen default 0.0.0.0:9100, got %q", cfg.Metrics.Listen)
	}
	if cfg.Audit.DBPath != "" {
		t.Errorf("expected Audit.DBPath to default to empty (disabled), got %q", cfg.Audit.DBPath)
	}
}

func TestValidate_Errors(t *testing.T) {
	t.Run("unsupported transmission mode", func(t *testing.T) {
		cfg := &Config{Ensemble: EnsembleConfig{Mode: 9, OutputRate: 2048000}, Gain: GainConfig{Mode: "fix", Factor: 1}}
		if err := validate(cfg); err == nil {
			t.Fatal("expected error for unsupported mode")
		}
	})

	t.Run("non-positive output rate", func(t *testing.T) {
		cfg := &Config{Ensemble: EnsembleConfig{Mode: 1, OutputRate: 0}, Gain: GainConfig{Mode: "fix", Factor: 1}}
		if err := validate(cfg); err == nil {
			t.Fatal("expected error for non-positive output_rate")
		}
	})

	t.Run("unrecognised UEP subchannel combination", func(t *testing.T) {
		cfg := &Config{
			Ensemble: EnsembleConfig{
				Mode:       1,
				OutputRate: 2048000,
				Subchannels: []SubchannelConfig{
					{SCID: 1, Bitrate: 56, ProtectionForm: false, ProtectionLevel: 1}, // 56kb/s level 1 does not exist
				},
			},
			Gain: GainConfig{Mode: "fix", Factor: 1},
		}
		if err := validate(cfg); err == nil {
			t.Fatal("expected error for unrecognised UEP (bitrate, level) combination")
		}
	})

	t.Run("unknown gain mode", func(t *testing.T) {
		cfg := &Config{Ensemble: EnsembleConfig{Mode: 1, OutputRate: 2048000}, Gain: GainConfig{Mode: "turbo", Factor: 1}}
		if err := validate(cfg); err == nil {
			t.Fatal("expected error for unknown gain mode")
		}
	})

	t.Run("non-positive gain factor", func(t *testing.T) {
		cfg := &Config{Ensemble: EnsembleConfig{Mode: 1, OutputRate: 2048000}, Gain: GainConfig{Mode: "fix", Factor: 0}}
		if err := validate(cfg); err == nil {
			t.Fatal("expected error for non-positive gain factor")
		}
	})

	t.Run("accepts a well formed configuration", func(t *testing.T) {
		cfg := &Config{
			Ensemble: EnsembleConfig{
				Mode:       1,
				OutputRate: 2048000,
				Subchannels: []SubchannelConfig{
					{SCID: 1, Bitrate: 64, ProtectionForm: true, ProtectionOption: 0, ProtectionLevel: 1},
				},
			},
			Gain: GainConfig{Mode: "var", Factor: 1},
		}
		if err := validate(cfg); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}
