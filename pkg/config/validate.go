package config

import (
	"github.com/dbehnke/dabmod/pkg/daberr"
	"github.com/dbehnke/dabmod/pkg/modeparams"
	"github.com/dbehnke/dabmod/pkg/ofdm"
	"github.com/dbehnke/dabmod/pkg/subchannel"
)

// validate rejects an ensemble configuration that cannot be started:
// an unsupported transmission mode, an unrecognised subchannel
// protection profile, or an unknown gain mode. Subchannel protection
// profiles are checked the same way the live decoder checks them
// (via subchannel.Subchannel.Rules/FramesizeCU), so a bad multiplex
// definition is caught at load time rather than on first traffic.
func validate(cfg *Config) error {
	if _, err := modeparams.Lookup(cfg.Ensemble.Mode); err != nil {
		return err
	}

	if cfg.Ensemble.OutputRate <= 0 {
		return daberr.NewConfig("ensemble: output_rate must be positive, got %d", cfg.Ensemble.OutputRate)
	}

	for _, sc := range cfg.Ensemble.Subchannels {
		s := sc.toSubchannel()
		if _, err := s.Rules(); err != nil {
			return err
		}
		if _, err := s.FramesizeCU(); err != nil {
			return err
		}
	}

	if _, err := GainMode(cfg.Gain.Mode); err != nil {
		return err
	}
	if cfg.Gain.Factor <= 0 {
		return daberr.NewConfig("gain: factor must be positive, got %f", cfg.Gain.Factor)
	}

	return nil
}

// ToSubchannel builds the runtime subchannel.Subchannel value (with its
// packed TPL byte) that the encoder's rule tables key off of. Exported
// so the binary entrypoint can turn the configured multiplex definition
// into the table NewEncoder expects without duplicating the TPL packing.
func (sc SubchannelConfig) ToSubchannel() subchannel.Subchannel {
	return sc.toSubchannel()
}

// toSubchannel builds the runtime subchannel.Subchannel value (with
// its packed TPL byte) that the decoder's rule tables key off of.
func (sc SubchannelConfig) toSubchannel() subchannel.Subchannel {
	tpl := 0
	if sc.ProtectionForm {
		tpl |= 1 << 5
		tpl |= (sc.ProtectionOption & 0x7) << 2
		tpl |= (sc.ProtectionLevel - 1) & 0x3
	} else {
		tpl |= (sc.ProtectionLevel - 1) & 0x7
	}
	return subchannel.Subchannel{
		SCID:           sc.SCID,
		StartAddressCU: sc.StartAddressCU,
		Framesize:      sc.Bitrate * 3,
		TPL:            tpl,
	}
}

// GainMode parses a configuration string into an ofdm.GainMode, or a
// ConfigError for anything other than fix, max or var.
func GainMode(s string) (ofdm.GainMode, error) {
	switch s {
	case "fix":
		return ofdm.GainFix, nil
	case "max":
		return ofdm.GainMax, nil
	case "var":
		return ofdm.GainVar, nil
	default:
		return 0, daberr.NewConfig("gain: unknown mode %q, want fix, max or var", s)
	}
}
