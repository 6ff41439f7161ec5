// Package config loads the board and session configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Board   BoardConfig   `yaml:"board"`
	ASR     ASRConfig     `yaml:"asr"`
	MP3     MP3Config     `yaml:"mp3"`
	Console ConsoleConfig `yaml:"console"`
	Log     LogConfig     `yaml:"log"`
}

// BoardConfig describes how the chip is wired to the host.
type BoardConfig struct {
	SPI        string  `yaml:"spi"`
	SpeedHz    int64   `yaml:"speed_hz"`
	ResetPin   string  `yaml:"reset_pin"`
	IRQPin     string  `yaml:"irq_pin"`
	CrystalMHz float64 `yaml:"crystal_mhz"`
}

type ASRConfig struct {
	MicGain  string        `yaml:"mic_gain"` // common or noise
	VAD      string        `yaml:"vad"`      // common or far
	Keywords []string      `yaml:"keywords"`
	Timeout  time.Duration `yaml:"timeout"`
}

type MP3Config struct {
	Dir           string        `yaml:"dir"`
	SpeakerVolume *uint8        `yaml:"speaker_volume"`
	HeadsetVolume *uint8        `yaml:"headset_volume"`
	Timeout       time.Duration `yaml:"timeout"`
}

// ConsoleConfig mirrors log output to a serial port. Disabled when
// Port is empty.
type ConsoleConfig struct {
	Port string `yaml:"port"`
	Baud int    `yaml:"baud"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads, normalizes and validates the file at path.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a YAML configuration. Unknown fields are rejected.
func Parse(b []byte) (*Config, error) {
	cfg := new(Config)
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	// An empty document decodes to io.EOF and means all defaults.
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	Normalize(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration of an unconfigured board.
func Default() *Config {
	cfg := new(Config)
	Normalize(cfg)
	return cfg
}
