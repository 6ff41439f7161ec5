package ld3320

import (
	"fmt"
	"io"
	"time"
)

const (
	// byteInterval paces writes to the data FIFO.
	byteInterval = 60 * time.Microsecond
	// startVolume is the speaker volume playback starts at.
	startVolume = 5
)

// ConfigureMP3 opens the named stream on the source and rewinds
// playback to its start.
func (d *Device) ConfigureMP3(name string) error {
	if err := d.check(); err != nil {
		return fmt.Errorf("ld3320: configure mp3: %w", err)
	}
	size, err := d.src.Open(name)
	if err != nil {
		return fmt.Errorf("ld3320: configure mp3: %w", err)
	}
	if size < 0 {
		return fmt.Errorf("ld3320: configure mp3: %w: size %d", ErrInvalidArgument, size)
	}
	d.size = size
	d.pos = 0
	d.ended = false
	return nil
}

// Progress returns the playback position and the stream size in bytes.
func (d *Device) Progress() (pos, size int64) {
	if d == nil {
		return 0, 0
	}
	return d.pos, d.size
}

// loadChunk feeds at most one chunk of the stream to the data FIFO,
// stopping early if the FIFO fills up. Bytes not written are read
// again on the next call. Reaching the end of the stream delivers the
// session's MP3End event.
func (d *Device) loadChunk() error {
	status, err := d.readReg(regFIFOStatus)
	if err != nil {
		return err
	}
	n := min(int64(len(d.chunk)), d.size-d.pos)
	if n > 0 {
		buf := d.chunk[:n]
		got, err := d.src.ReadAt(buf, d.pos)
		if got < len(buf) {
			if err == nil {
				err = io.ErrUnexpectedEOF
			}
			return fmt.Errorf("%w: read %d bytes at %d: %w", ErrStreamExhausted, len(buf), d.pos, err)
		}
		for _, b := range buf {
			if status&fifoFull != 0 {
				break
			}
			if err := d.writeReg(regFIFOData, b); err != nil {
				return err
			}
			d.clock.Sleep(byteInterval)
			d.pos++
			status, err = d.readReg(regFIFOStatus)
			if err != nil {
				return err
			}
		}
	}
	if d.pos >= d.size && !d.ended {
		d.ended = true
		d.status = StatusMP3End
		d.debugf("mp3 stream of %d bytes fed", d.size)
		d.notify(Event{Kind: MP3End})
	}
	return nil
}

func (d *Device) startMP3() error {
	if d.pos >= d.size {
		return fmt.Errorf("%w: position %d of %d", ErrStreamExhausted, d.pos, d.size)
	}
	d.ended = false
	if err := d.mp3ModeInit(); err != nil {
		return err
	}
	err := d.writeRegs(
		regSpeaker, encodeVolume(startVolume),
		regAnalogControl1, analogVolumeOn,
	)
	if err != nil {
		return fmt.Errorf("mp3 volume: %w", err)
	}
	if err := d.loadChunk(); err != nil {
		return fmt.Errorf("mp3 load: %w", err)
	}
	err = d.writeRegs(
		regIntAux, 0x00,
		regCmd, cmdDSPActivate,
		regMP3Conf, mp3PlayEnabled,
		regIntConf, intEnableMP3,
		regFIFOIntConf, fifoIntEnabled,
		regFeedback, feedbackPlaying,
	)
	if err != nil {
		return fmt.Errorf("mp3 play: %w", err)
	}
	return nil
}

func encodeVolume(level uint8) byte {
	return (MaxVolume-level)&0x0f<<2 | 0xc3
}

func decodeVolume(v byte) uint8 {
	return MaxVolume - (v>>2)&0x0f
}

// SetSpeakerVolume sets the speaker level, 0 to MaxVolume.
func (d *Device) SetSpeakerVolume(level uint8) error {
	if err := d.check(); err != nil {
		return fmt.Errorf("ld3320: set speaker volume: %w", err)
	}
	if level > MaxVolume {
		return fmt.Errorf("ld3320: set speaker volume: %w: level %d", ErrInvalidArgument, level)
	}
	err := d.writeRegs(
		regSpeaker, encodeVolume(level),
		regAnalogControl1, analogVolumeOn,
	)
	if err != nil {
		return fmt.Errorf("ld3320: set speaker volume: %w", err)
	}
	return nil
}

func (d *Device) SpeakerVolume() (uint8, error) {
	if err := d.check(); err != nil {
		return 0, fmt.Errorf("ld3320: speaker volume: %w", err)
	}
	v, err := d.readReg(regSpeaker)
	if err != nil {
		return 0, fmt.Errorf("ld3320: speaker volume: %w", err)
	}
	return decodeVolume(v), nil
}

// SetHeadsetVolume sets the left and right headset levels, 0 to
// MaxVolume.
func (d *Device) SetHeadsetVolume(left, right uint8) error {
	if err := d.check(); err != nil {
		return fmt.Errorf("ld3320: set headset volume: %w", err)
	}
	if left > MaxVolume || right > MaxVolume {
		return fmt.Errorf("ld3320: set headset volume: %w: levels %d, %d", ErrInvalidArgument, left, right)
	}
	err := d.writeRegs(
		regHeadsetLeft, encodeVolume(left),
		regHeadsetRight, encodeVolume(right),
		regAnalogControl1, analogVolumeOn,
	)
	if err != nil {
		return fmt.Errorf("ld3320: set headset volume: %w", err)
	}
	return nil
}

func (d *Device) HeadsetVolume() (left, right uint8, err error) {
	if err := d.check(); err != nil {
		return 0, 0, fmt.Errorf("ld3320: headset volume: %w", err)
	}
	l, err := d.readReg(regHeadsetLeft)
	if err != nil {
		return 0, 0, fmt.Errorf("ld3320: headset volume: %w", err)
	}
	r, err := d.readReg(regHeadsetRight)
	if err != nil {
		return 0, 0, fmt.Errorf("ld3320: headset volume: %w", err)
	}
	return decodeVolume(l), decodeVolume(r), nil
}
