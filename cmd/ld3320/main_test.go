package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func TestInfo(t *testing.T) {
	out, err := exec(t, "info")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"IC Route LD3320", "driver version: 1.0", "166.70mA"} {
		if !strings.Contains(out, want) {
			t.Errorf("info output %q lacks %q", out, want)
		}
	}
}

func TestPins(t *testing.T) {
	out, err := exec(t, "pins")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"SPI0.0 at 2MHz", "RSTB  GPIO27", "INTB  GPIO17"} {
		if !strings.Contains(out, want) {
			t.Errorf("pins output %q lacks %q", out, want)
		}
	}
	cfg := writeConfig(t, "board:\n  reset_pin: gpio5\n")
	out, err = exec(t, "--config", cfg, "pins")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "RSTB  GPIO5") {
		t.Errorf("pins output %q ignores the configuration", out)
	}
}

func TestRegisterTest(t *testing.T) {
	if _, err := exec(t, "--sim", "test", "reg"); err != nil {
		t.Fatal(err)
	}
}

func TestASR(t *testing.T) {
	if _, err := exec(t, "--sim", "test", "asr"); err != nil {
		t.Fatal(err)
	}
	out, err := exec(t, "--sim", "run", "asr", "-k", "ni-hao", "-k", "kai deng")
	if err != nil {
		t.Fatal(err)
	}
	if out != "0 ni hao\n" {
		t.Errorf("run asr printed %q", out)
	}
	// Flags must not leak between runs.
	cfg := writeConfig(t, "asr:\n  keywords: [guan deng]\n")
	out, err = exec(t, "--sim", "--config", cfg, "run", "asr")
	if err != nil {
		t.Fatal(err)
	}
	if out != "0 guan deng\n" {
		t.Errorf("run asr with configured keywords printed %q", out)
	}
}

func TestASRErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no keywords", []string{"--sim", "run", "asr"}},
		{"long keyword", []string{"--sim", "run", "asr", "-k", strings.Repeat("a", 60)}},
		{"log level", []string{"--sim", "--log-level", "chatty", "run", "asr", "-k", "ni-hao"}},
		{"missing config", []string{"--sim", "--config", "/nonexistent/ld3320.yaml", "run", "asr", "-k", "ni-hao"}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := exec(t, test.args...); err == nil {
				t.Error("command succeeded")
			}
		})
	}
}

func TestMP3(t *testing.T) {
	dir := t.TempDir()
	data := bytes.Repeat([]byte{0xff, 0xfb, 0x90, 0x00}, 750)
	if err := os.WriteFile(filepath.Join(dir, "song.mp3"), data, 0o600); err != nil {
		t.Fatal(err)
	}
	cfg := writeConfig(t, "mp3:\n  dir: "+dir+"\n  speaker_volume: 3\n")
	out, err := exec(t, "--sim", "--config", cfg, "run", "mp3", "-f", "song.mp3")
	if err != nil {
		t.Fatal(err)
	}
	if out != "played song.mp3\n" {
		t.Errorf("run mp3 printed %q", out)
	}
	if _, err := exec(t, "--sim", "--config", cfg, "test", "mp3", "-f", "missing.mp3"); err == nil {
		t.Error("playing a missing file succeeded")
	}
	if _, err := exec(t, "--sim", "run", "mp3"); err == nil {
		t.Error("run mp3 without a file succeeded")
	}
}

func writeConfig(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ld3320.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// exec runs the command line args and returns its standard output.
func exec(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	out, log := new(bytes.Buffer), new(bytes.Buffer)
	rootCmd.SetOut(out)
	rootCmd.SetErr(log)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	if err != nil {
		t.Logf("%s: %v\n%s", strings.Join(args, " "), err, log)
	}
	return out.String(), err
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if s, ok := f.Value.(pflag.SliceValue); ok {
			s.Replace(nil)
		} else {
			f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}
