package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"ld3320.dev/driver/ld3320"
)

func TestDefaults(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Board.SPI != DefaultSPI || cfg.Board.ResetPin != "GPIO27" || cfg.Board.IRQPin != "GPIO17" {
		t.Errorf("board defaults %+v", cfg.Board)
	}
	if cfg.Board.CrystalMHz != ld3320.DefaultCrystalMHz {
		t.Errorf("crystal %g", cfg.Board.CrystalMHz)
	}
	if cfg.ASR.Gain() != ld3320.MicGainCommon || cfg.ASR.Sensitivity() != ld3320.VADCommon {
		t.Errorf("asr defaults %+v", cfg.ASR)
	}
	if cfg.ASR.Timeout != 10*time.Second || cfg.MP3.Timeout != 10*time.Minute {
		t.Errorf("timeouts %v, %v", cfg.ASR.Timeout, cfg.MP3.Timeout)
	}
	if *cfg.MP3.SpeakerVolume != 1 || *cfg.MP3.HeadsetVolume != 1 {
		t.Errorf("volumes %d, %d", *cfg.MP3.SpeakerVolume, *cfg.MP3.HeadsetVolume)
	}
	if cfg.Console.Port != "" || cfg.Log.Level != "info" {
		t.Errorf("console %+v, log %+v", cfg.Console, cfg.Log)
	}
	if d := Default(); d.Board != cfg.Board {
		t.Errorf("Default() board %+v differs from empty document %+v", d.Board, cfg.Board)
	}
}

func TestLoad(t *testing.T) {
	const doc = `
board:
  spi: /dev/spidev1.0
  speed_hz: 1000000
  reset_pin: gpio22
asr:
  mic_gain: Noise
  vad: far
  keywords:
    - ni hao
    - " kai deng "
  timeout: 30s
mp3:
  dir: /srv/music
  speaker_volume: 0
console:
  port: /dev/ttyAMA0
log:
  level: DEBUG
`
	path := filepath.Join(t.TempDir(), "ld3320.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Board.SPI != "/dev/spidev1.0" || cfg.Board.SpeedHz != 1_000_000 || cfg.Board.ResetPin != "GPIO22" {
		t.Errorf("board %+v", cfg.Board)
	}
	if cfg.ASR.Gain() != ld3320.MicGainNoise || cfg.ASR.Sensitivity() != ld3320.VADFar {
		t.Errorf("asr %+v", cfg.ASR)
	}
	if want := []string{"ni hao", "kai deng"}; !slices.Equal(cfg.ASR.Keywords, want) {
		t.Errorf("keywords %q, want %q", cfg.ASR.Keywords, want)
	}
	if cfg.ASR.Timeout != 30*time.Second {
		t.Errorf("asr timeout %v", cfg.ASR.Timeout)
	}
	if *cfg.MP3.SpeakerVolume != 0 || *cfg.MP3.HeadsetVolume != DefaultVolume {
		t.Errorf("volumes %d, %d", *cfg.MP3.SpeakerVolume, *cfg.MP3.HeadsetVolume)
	}
	if cfg.Console.Baud != DefaultConsoleBaud {
		t.Errorf("console baud %d", cfg.Console.Baud)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level %q", cfg.Log.Level)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"unknown field", "board:\n  pins: 3\n", "field pins not found"},
		{"mic gain", "asr:\n  mic_gain: loud\n", `unknown mic_gain "loud"`},
		{"vad", "asr:\n  vad: near\n", `unknown vad "near"`},
		{"volume", "mp3:\n  speaker_volume: 16\n", "speaker_volume 16 above 15"},
		{"pins", "board:\n  reset_pin: GPIO17\n", "both GPIO17"},
		{"keyword", "asr:\n  keywords: [" + strings.Repeat("a", 50) + "]\n", "keywords[0]"},
		{"log level", "log:\n  level: chatty\n", "log:"},
		{"crystal", "board:\n  crystal_mhz: 1\n", "crystal_mhz 1 out of range"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Parse([]byte(test.doc))
			if err == nil {
				t.Fatal("invalid configuration accepted")
			}
			if !strings.Contains(err.Error(), test.want) {
				t.Errorf("error %q does not mention %q", err, test.want)
			}
		})
	}
}

func TestValidateReportsAll(t *testing.T) {
	_, err := Parse([]byte("asr:\n  mic_gain: loud\n  vad: near\n"))
	if err == nil {
		t.Fatal("invalid configuration accepted")
	}
	for _, want := range []string{"mic_gain", "vad"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}
