package config

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"ld3320.dev/driver/ld3320"
)

var micGains = map[string]ld3320.MicGain{
	"common": ld3320.MicGainCommon,
	"noise":  ld3320.MicGainNoise,
}

var vads = map[string]ld3320.VAD{
	"common": ld3320.VADCommon,
	"far":    ld3320.VADFar,
}

// Validate checks the configuration without modifying it. All
// problems are reported.
func Validate(cfg *Config) error {
	var errs []error
	b := cfg.Board
	if b.SpeedHz <= 0 {
		errs = append(errs, fmt.Errorf("board: speed_hz %d must be positive", b.SpeedHz))
	}
	if b.CrystalMHz <= 2 {
		errs = append(errs, fmt.Errorf("board: crystal_mhz %g out of range", b.CrystalMHz))
	}
	if b.ResetPin == b.IRQPin {
		errs = append(errs, fmt.Errorf("board: reset_pin and irq_pin are both %s", b.ResetPin))
	}

	a := cfg.ASR
	if _, ok := micGains[a.MicGain]; !ok {
		errs = append(errs, fmt.Errorf("asr: unknown mic_gain %q", a.MicGain))
	}
	if _, ok := vads[a.VAD]; !ok {
		errs = append(errs, fmt.Errorf("asr: unknown vad %q", a.VAD))
	}
	if len(a.Keywords) > ld3320.MaxKeywords {
		errs = append(errs, fmt.Errorf("asr: %d keywords, at most %d", len(a.Keywords), ld3320.MaxKeywords))
	}
	for i, k := range a.Keywords {
		if _, err := ld3320.ParseKeyword(k); err != nil {
			errs = append(errs, fmt.Errorf("asr: keywords[%d]: %w", i, err))
		}
	}
	if a.Timeout < 0 {
		errs = append(errs, fmt.Errorf("asr: negative timeout %v", a.Timeout))
	}

	m := cfg.MP3
	if m.SpeakerVolume != nil && *m.SpeakerVolume > ld3320.MaxVolume {
		errs = append(errs, fmt.Errorf("mp3: speaker_volume %d above %d", *m.SpeakerVolume, ld3320.MaxVolume))
	}
	if m.HeadsetVolume != nil && *m.HeadsetVolume > ld3320.MaxVolume {
		errs = append(errs, fmt.Errorf("mp3: headset_volume %d above %d", *m.HeadsetVolume, ld3320.MaxVolume))
	}
	if m.Timeout < 0 {
		errs = append(errs, fmt.Errorf("mp3: negative timeout %v", m.Timeout))
	}

	if cfg.Console.Port != "" && cfg.Console.Baud <= 0 {
		errs = append(errs, fmt.Errorf("console: baud %d must be positive", cfg.Console.Baud))
	}
	if _, err := logrus.ParseLevel(cfg.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log: %w", err))
	}
	return errors.Join(errs...)
}

// Gain returns the configured microphone gain.
func (a ASRConfig) Gain() ld3320.MicGain {
	return micGains[a.MicGain]
}

// Sensitivity returns the configured voice activity detection level.
func (a ASRConfig) Sensitivity() ld3320.VAD {
	return vads[a.VAD]
}
