package config

import (
	"strings"
	"time"

	"ld3320.dev/driver/ld3320"
)

// Defaults of a Raspberry Pi carrier board.
const (
	DefaultSPI         = "SPI0.0"
	DefaultSpeedHz     = 2_000_000
	DefaultResetPin    = "GPIO27"
	DefaultIRQPin      = "GPIO17"
	DefaultASRTimeout  = 10 * time.Second
	DefaultMP3Timeout  = 10 * time.Minute
	DefaultVolume      = 1
	DefaultConsoleBaud = 115200
	DefaultLogLevel    = "info"
	defaultMicGain     = "common"
	defaultVAD         = "common"
)

// Normalize fills in defaults and canonicalizes names. It must be
// called before Validate.
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}
	b := &cfg.Board
	if b.SPI == "" {
		b.SPI = DefaultSPI
	}
	if b.SpeedHz == 0 {
		b.SpeedHz = DefaultSpeedHz
	}
	if b.ResetPin == "" {
		b.ResetPin = DefaultResetPin
	}
	if b.IRQPin == "" {
		b.IRQPin = DefaultIRQPin
	}
	if b.CrystalMHz == 0 {
		b.CrystalMHz = ld3320.DefaultCrystalMHz
	}
	b.ResetPin = strings.ToUpper(strings.TrimSpace(b.ResetPin))
	b.IRQPin = strings.ToUpper(strings.TrimSpace(b.IRQPin))

	a := &cfg.ASR
	a.MicGain = strings.ToLower(strings.TrimSpace(a.MicGain))
	if a.MicGain == "" {
		a.MicGain = defaultMicGain
	}
	a.VAD = strings.ToLower(strings.TrimSpace(a.VAD))
	if a.VAD == "" {
		a.VAD = defaultVAD
	}
	for i, k := range a.Keywords {
		a.Keywords[i] = strings.TrimSpace(k)
	}
	if a.Timeout == 0 {
		a.Timeout = DefaultASRTimeout
	}

	m := &cfg.MP3
	if m.SpeakerVolume == nil {
		v := uint8(DefaultVolume)
		m.SpeakerVolume = &v
	}
	if m.HeadsetVolume == nil {
		v := uint8(DefaultVolume)
		m.HeadsetVolume = &v
	}
	if m.Timeout == 0 {
		m.Timeout = DefaultMP3Timeout
	}

	if cfg.Console.Port != "" && cfg.Console.Baud == 0 {
		cfg.Console.Baud = DefaultConsoleBaud
	}
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
}
