package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"ld3320.dev/audiosrc"
	"ld3320.dev/board"
	"ld3320.dev/driver/ld3320"
	"ld3320.dev/internal/config"
)

// irqPoll bounds the delay before a cancelled wait returns.
const irqPoll = 100 * time.Millisecond

var errDone = errors.New("done")

// session is an initialized device with the means to wait for its
// events.
type session struct {
	dev    *ld3320.Device
	log    *logrus.Entry
	events []ld3320.Event
	// interrupts calls handle for every interrupt until ctx is done or
	// handle fails.
	interrupts func(ctx context.Context, handle func() error) error
	board      *board.Board
}

func openSession(cfg *config.Config, sim bool, log *logrus.Entry) (*session, error) {
	s := &session{log: log}
	p := ld3320.Platform{
		Source:     &audiosrc.Dir{Root: cfg.MP3.Dir},
		Notify:     s.notify,
		Log:        log,
		CrystalMHz: cfg.Board.CrystalMHz,
	}
	if sim {
		chip := ld3320.NewSimulator()
		p.Bus, p.Reset, p.Clock = chip, chip, chip
		s.interrupts = s.simulate(chip)
	} else {
		b, err := board.Open(cfg.Board)
		if err != nil {
			return nil, err
		}
		s.board = b
		p.Bus, p.Reset, p.Clock = b.Bus, b.Reset, b.Clock
		s.interrupts = func(ctx context.Context, handle func() error) error {
			return board.Serve(ctx, b.IRQ, irqPoll, handle)
		}
	}
	s.dev = ld3320.New(p)
	if err := s.dev.Init(); err != nil {
		if s.board != nil {
			s.board.Close()
		}
		return nil, err
	}
	log.WithField("sim", sim).Debug("device initialized")
	return s, nil
}

func (s *session) notify(ev ld3320.Event) {
	s.events = append(s.events, ev)
}

// simulate returns an interrupt source for chip. Recognition passes
// alternate between no match and a match of the first keyword.
// Playback drains the FIFO before every interrupt.
func (s *session) simulate(chip *ld3320.Simulator) func(context.Context, func() error) error {
	pass := 0
	return func(ctx context.Context, handle func() error) error {
		for {
			if err := ctx.Err(); err != nil {
				return err
			}
			mode, err := s.dev.Mode()
			if err != nil {
				return err
			}
			switch mode {
			case ld3320.ModeASR:
				if pass%2 == 0 {
					chip.Reject()
				} else {
					chip.Recognize(0, 1)
				}
				pass++
			case ld3320.ModeMP3:
				chip.Drain()
			}
			if err := handle(); err != nil {
				return err
			}
		}
	}
}

// wait handles interrupts and passes the delivered events to done
// until it reports true.
func (s *session) wait(ctx context.Context, done func(ld3320.Event) (bool, error)) error {
	drain := func() error {
		for len(s.events) > 0 {
			ev := s.events[0]
			s.events = s.events[1:]
			s.log.WithFields(logrus.Fields{"event": ev.Kind, "index": ev.Index}).Debug("event")
			ok, err := done(ev)
			if err != nil {
				return err
			}
			if ok {
				return errDone
			}
		}
		return nil
	}
	err := drain()
	if err == nil {
		err = s.interrupts(ctx, func() error {
			if err := s.dev.HandleInterrupt(); err != nil {
				return err
			}
			return drain()
		})
	}
	if errors.Is(err, errDone) {
		return nil
	}
	return err
}

func (s *session) close() error {
	err := s.dev.Close()
	if s.board != nil {
		err = errors.Join(err, s.board.Close())
	}
	return err
}

// recognize listens for keywords until one is recognized or the
// timeout expires. A pass without a match restarts recognition.
func (s *session) recognize(ctx context.Context, cfg config.ASRConfig, keywords []string) (ld3320.Event, error) {
	d := s.dev
	if err := d.SetMode(ld3320.ModeASR); err != nil {
		return ld3320.Event{}, err
	}
	if err := d.SetMicGain(cfg.Gain()); err != nil {
		return ld3320.Event{}, err
	}
	if err := d.SetVAD(cfg.Sensitivity()); err != nil {
		return ld3320.Event{}, err
	}
	if err := d.SetKeywords(keywords...); err != nil {
		return ld3320.Event{}, err
	}
	if err := d.Start(); err != nil {
		return ld3320.Event{}, err
	}
	s.log.WithField("keywords", keywords).Info("listening")
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	var match ld3320.Event
	err := s.wait(ctx, func(ev ld3320.Event) (bool, error) {
		switch ev.Kind {
		case ld3320.FoundOK:
			match = ev
			return true, nil
		case ld3320.FoundZero:
			s.log.Debug("no match, listening again")
			return false, d.Start()
		}
		return false, nil
	})
	if stopErr := d.Stop(); err == nil {
		err = stopErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		err = fmt.Errorf("nothing recognized within %v", cfg.Timeout)
	}
	return match, err
}

// play streams the named file from the music directory to the
// decoder until it ends or the timeout expires.
func (s *session) play(ctx context.Context, cfg config.MP3Config, name string) error {
	d := s.dev
	if err := d.SetMode(ld3320.ModeMP3); err != nil {
		return err
	}
	if err := d.ConfigureMP3(name); err != nil {
		return err
	}
	if err := d.Start(); err != nil {
		return err
	}
	if err := d.SetSpeakerVolume(*cfg.SpeakerVolume); err != nil {
		return err
	}
	if err := d.SetHeadsetVolume(*cfg.HeadsetVolume, *cfg.HeadsetVolume); err != nil {
		return err
	}
	_, size := d.Progress()
	s.log.WithFields(logrus.Fields{"file": name, "size": size}).Info("playing")
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	err := s.wait(ctx, func(ev ld3320.Event) (bool, error) {
		if ev.Kind == ld3320.MP3Load {
			pos, size := d.Progress()
			s.log.Debugf("loaded %d of %d bytes", pos, size)
		}
		return ev.Kind == ld3320.MP3End, nil
	})
	if stopErr := d.Stop(); err == nil {
		err = stopErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		err = fmt.Errorf("playback of %s not done within %v", name, cfg.Timeout)
	}
	return err
}
