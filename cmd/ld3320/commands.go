package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"ld3320.dev/driver/ld3320"
	"periph.io/x/conn/v3/physic"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show chip and driver information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := ld3320.Info()
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "chip:           %s\n", info.ChipName)
		fmt.Fprintf(w, "manufacturer:   %s\n", info.Manufacturer)
		fmt.Fprintf(w, "interface:      %s\n", info.Interface)
		fmt.Fprintf(w, "driver version: %d.%d\n", info.DriverVersion/1000, info.DriverVersion%1000/100)
		fmt.Fprintf(w, "supply:         %.1fV to %.1fV\n", info.SupplyVoltageMin, info.SupplyVoltageMax)
		fmt.Fprintf(w, "max current:    %.2fmA\n", info.MaxCurrent)
		fmt.Fprintf(w, "temperature:    %.1fC to %.1fC\n", info.TemperatureMin, info.TemperatureMax)
		return nil
	},
}

var pinsCmd = &cobra.Command{
	Use:   "pins",
	Short: "Show how the module is wired to the board",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.close()
		b := e.cfg.Board
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "SPI   %s at %v, mode 2\n", b.SPI, physic.Frequency(b.SpeedHz)*physic.Hertz)
		fmt.Fprintf(w, "RSTB  %s\n", b.ResetPin)
		fmt.Fprintf(w, "INTB  %s\n", b.IRQPin)
		fmt.Fprintf(w, "CLK   %g MHz crystal\n", b.CrystalMHz)
		fmt.Fprintln(w, "MD    VCC (serial mode)")
		fmt.Fprintln(w, "WRB   GND")
		return nil
	},
}

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Exercise the chip",
}

var testFile string

func init() {
	testCmd.AddCommand(&cobra.Command{
		Use:   "reg",
		Short: "Read back every setting after writing it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, registerTest)
		},
	})
	testCmd.AddCommand(&cobra.Command{
		Use:   "asr",
		Short: `Listen for "ha lou"`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, e *env, s *session) error {
				ev, err := s.recognize(ctx, e.cfg.ASR, []string{"ha lou"})
				if err != nil {
					return err
				}
				e.log.Infof("recognized %q", ev.Keyword)
				return nil
			})
		},
	})
	mp3 := &cobra.Command{
		Use:   "mp3",
		Short: "Play a file from the music directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, e *env, s *session) error {
				return s.play(ctx, e.cfg.MP3, testFile)
			})
		},
	}
	mp3.Flags().StringVarP(&testFile, "file", "f", "", "file to play")
	mp3.MarkFlagRequired("file")
	testCmd.AddCommand(mp3)
}

// withSession runs fn with an initialized device and closes it
// afterwards.
func withSession(cmd *cobra.Command, fn func(ctx context.Context, e *env, s *session) error) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.close()
	s, err := openSession(e.cfg, simulate, e.log)
	if err != nil {
		return err
	}
	err = fn(cmd.Context(), e, s)
	return errors.Join(err, s.close())
}

// registerTest writes each setting and checks that it reads back.
func registerTest(ctx context.Context, e *env, s *session) error {
	d := s.dev
	var errs []error
	check := func(what string, ok bool) {
		if ok {
			e.log.Infof("check %s ok", what)
			return
		}
		e.log.Errorf("check %s failed", what)
		errs = append(errs, fmt.Errorf("%s does not read back", what))
	}
	for _, m := range []ld3320.Mode{ld3320.ModeMP3, ld3320.ModeASR} {
		if err := d.SetMode(m); err != nil {
			return err
		}
		got, err := d.Mode()
		if err != nil {
			return err
		}
		check("mode "+m.String(), got == m)
	}

	if err := d.SetKeywords("ni hao"); err != nil {
		return err
	}
	words, err := d.Keywords()
	if err != nil {
		return err
	}
	check("keywords", slices.Equal(words, []string{"ni hao"}))

	for _, g := range []ld3320.MicGain{ld3320.MicGainCommon, ld3320.MicGainNoise} {
		if err := d.SetMicGain(g); err != nil {
			return err
		}
		got, err := d.MicGain()
		if err != nil {
			return err
		}
		check(fmt.Sprintf("mic gain %#x", byte(g)), got == g)
	}
	for _, v := range []ld3320.VAD{ld3320.VADCommon, ld3320.VADFar} {
		if err := d.SetVAD(v); err != nil {
			return err
		}
		got, err := d.VAD()
		if err != nil {
			return err
		}
		check(fmt.Sprintf("vad %#x", byte(v)), got == v)
	}

	left := uint8(rand.IntN(ld3320.MaxVolume + 1))
	right := uint8(rand.IntN(ld3320.MaxVolume + 1))
	if err := d.SetSpeakerVolume(left); err != nil {
		return err
	}
	vol, err := d.SpeakerVolume()
	if err != nil {
		return err
	}
	check(fmt.Sprintf("speaker volume %d", left), vol == left)
	if err := d.SetHeadsetVolume(left, right); err != nil {
		return err
	}
	l, r, err := d.HeadsetVolume()
	if err != nil {
		return err
	}
	check(fmt.Sprintf("headset volume %d/%d", left, right), l == left && r == right)

	status, err := d.Status()
	if err != nil {
		return err
	}
	e.log.Infof("status is %v", status)
	return errors.Join(errs...)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Recognize keywords or play a file",
}

var (
	runKeywords []string
	runFile     string
)

func init() {
	asr := &cobra.Command{
		Use:   "asr",
		Short: "Listen for keywords",
		Long: "Listen for keywords until one is recognized. Hyphens in a keyword\n" +
			"stand for spaces, so -k ni-hao listens for \"ni hao\". Without -k the\n" +
			"keywords of the configuration are used.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, e *env, s *session) error {
				keywords := e.cfg.ASR.Keywords
				if len(runKeywords) > 0 {
					keywords = keywords[:0:0]
					for _, k := range runKeywords {
						keywords = append(keywords, strings.ReplaceAll(k, "-", " "))
					}
				}
				if len(keywords) == 0 {
					return errors.New("no keywords")
				}
				ev, err := s.recognize(ctx, e.cfg.ASR, keywords)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d %s\n", ev.Index, ev.Keyword)
				return nil
			})
		},
	}
	asr.Flags().StringArrayVarP(&runKeywords, "keyword", "k", nil, "keyword to listen for (repeatable)")
	runCmd.AddCommand(asr)

	mp3 := &cobra.Command{
		Use:   "mp3",
		Short: "Play a file from the music directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, e *env, s *session) error {
				if err := s.play(ctx, e.cfg.MP3, runFile); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "played %s\n", runFile)
				return nil
			})
		},
	}
	mp3.Flags().StringVarP(&runFile, "file", "f", "", "file to play")
	mp3.MarkFlagRequired("file")
	runCmd.AddCommand(mp3)
}
