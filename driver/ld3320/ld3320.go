// Package ld3320 implements a driver for the IC Route LD3320 speech
// recognition and MP3 decoder chip on an SPI bus.
//
// The driver is interrupt driven: after Start, the caller must call
// HandleInterrupt every time the chip asserts its interrupt line, and
// never concurrently with any other method. Results are delivered
// through the Notify callback of the Platform.
package ld3320

import (
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// Platform is the set of collaborators the driver needs.
type Platform struct {
	Bus   Bus
	Reset ResetPin
	Clock Clock
	// Source supplies MP3 data.
	Source Source
	// Notify receives recognition and playback events. It is called
	// from HandleInterrupt, and from Start in MP3 mode.
	Notify func(Event)
	// Log receives diagnostics. Optional.
	Log Logger
	// CrystalMHz is the crystal frequency. Zero means
	// DefaultCrystalMHz.
	CrystalMHz float64
}

// ResetPin drives the chip's active low reset line. A gpio.PinOut
// satisfies it.
type ResetPin interface {
	Out(l gpio.Level) error
}

// Clock implements blocking delays.
type Clock interface {
	Sleep(d time.Duration)
}

// Source is a random access byte source for MP3 playback.
type Source interface {
	// Open the named stream and return its size.
	Open(name string) (int64, error)
	ReadAt(p []byte, off int64) (int, error)
	Close() error
}

// Logger receives diagnostic messages. A logrus.FieldLogger
// satisfies it.
type Logger interface {
	Debugf(format string, args ...any)
}

type Mode uint8

const (
	ModeASR Mode = 0x01
	ModeMP3 Mode = 0x02
)

func (m Mode) String() string {
	switch m {
	case ModeASR:
		return "asr"
	case ModeMP3:
		return "mp3"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

// MicGain is the microphone amplifier setting.
type MicGain uint8

const (
	MicGainCommon MicGain = 0x43
	MicGainNoise  MicGain = 0x2f
)

// VAD is the voice activity detection sensitivity.
type VAD uint8

const (
	VADCommon VAD = 0x12
	VADFar    VAD = 0x0a
)

// Status is the running state of the device.
type Status uint8

const (
	StatusNone Status = iota
	StatusASRRunning
	StatusASRFoundOK
	StatusASRFoundZero
	StatusASRError
	StatusMP3Running
	StatusMP3Load
	StatusMP3End
	StatusMP3Error
)

var statusNames = [...]string{
	StatusNone:         "none",
	StatusASRRunning:   "asr running",
	StatusASRFoundOK:   "asr found ok",
	StatusASRFoundZero: "asr found zero",
	StatusASRError:     "asr error",
	StatusMP3Running:   "mp3 running",
	StatusMP3Load:      "mp3 load",
	StatusMP3End:       "mp3 end",
	StatusMP3Error:     "mp3 error",
}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("Status(%d)", uint8(s))
}

// EventKind identifies the events delivered to Platform.Notify.
type EventKind uint8

const (
	// FoundOK reports a recognized keyword.
	FoundOK EventKind = iota + 1
	// FoundZero reports a recognition pass without a match.
	FoundZero
	// MP3Load reports that more MP3 data was fed to the chip.
	MP3Load
	// MP3End reports the end of playback.
	MP3End
)

func (k EventKind) String() string {
	switch k {
	case FoundOK:
		return "found ok"
	case FoundZero:
		return "found zero"
	case MP3Load:
		return "mp3 load"
	case MP3End:
		return "mp3 end"
	default:
		return fmt.Sprintf("EventKind(%d)", uint8(k))
	}
}

type Event struct {
	Kind EventKind
	// Index and Keyword are only valid for FoundOK.
	Index   int
	Keyword string
}

const (
	// MaxKeywords is the capacity of the keyword table.
	MaxKeywords = 50
	// ChunkSize is the number of bytes fed to the chip per load.
	ChunkSize = 512
	// MaxVolume is the loudest speaker and headset volume level.
	MaxVolume = 15
)

type Device struct {
	bus    Bus
	rst    ResetPin
	clock  Clock
	src    Source
	notify func(Event)
	log    Logger
	xtal   float64

	inited  bool
	mode    Mode
	status  Status
	micGain MicGain
	vad     VAD

	keywords  [MaxKeywords]Keyword
	nkeywords int

	// pos and size describe the MP3 stream; pos <= size.
	pos, size int64
	// ended is set once the MP3End event of the session has been
	// delivered.
	ended bool
	chunk [ChunkSize]byte

	scratch [3]byte
}

func New(p Platform) *Device {
	xtal := p.CrystalMHz
	if xtal == 0 {
		xtal = DefaultCrystalMHz
	}
	return &Device{
		bus:    p.Bus,
		rst:    p.Reset,
		clock:  p.Clock,
		src:    p.Source,
		notify: p.Notify,
		log:    p.Log,
		xtal:   xtal,
	}
}

func (d *Device) debugf(format string, args ...any) {
	if d.log != nil {
		d.log.Debugf("ld3320: "+format, args...)
	}
}

func (d *Device) check() error {
	if d == nil {
		return ErrNullHandle
	}
	if !d.inited {
		return ErrNotInitialized
	}
	return nil
}

// Init resets the chip and prepares the device for use. The mode must
// be set with SetMode before Start.
func (d *Device) Init() error {
	if d == nil {
		return ErrNullHandle
	}
	var missing []string
	if d.bus == nil {
		missing = append(missing, "bus")
	}
	if d.rst == nil {
		missing = append(missing, "reset")
	}
	if d.clock == nil {
		missing = append(missing, "clock")
	}
	if d.src == nil {
		missing = append(missing, "source")
	}
	if d.notify == nil {
		missing = append(missing, "notify")
	}
	if len(missing) > 0 {
		return fmt.Errorf("ld3320: init: %w: %v", ErrCapabilityMissing, missing)
	}
	if err := d.reset(); err != nil {
		d.debugf("reset failed: %v", err)
		return fmt.Errorf("ld3320: init: %w", err)
	}
	d.micGain = MicGainCommon
	d.vad = VADCommon
	d.status = StatusNone
	d.inited = true
	return nil
}

// Close resets the chip and releases the reset line and, in MP3 mode,
// the source. The bus stays with its owner so that the device may be
// initialized again.
func (d *Device) Close() error {
	if err := d.check(); err != nil {
		return fmt.Errorf("ld3320: close: %w", err)
	}
	if d.mode != ModeASR && d.mode != ModeMP3 {
		return fmt.Errorf("ld3320: close: %w: mode %v", ErrInvalidArgument, d.mode)
	}
	if err := d.reset(); err != nil {
		return fmt.Errorf("ld3320: close: %w", err)
	}
	d.inited = false
	d.status = StatusNone
	var errs []error
	if h, ok := d.rst.(interface{ Halt() error }); ok {
		errs = append(errs, h.Halt())
	}
	if d.mode == ModeMP3 {
		errs = append(errs, d.src.Close())
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("ld3320: close: %w", err)
	}
	return nil
}

// Start runs a recognition or playback session depending on the mode.
func (d *Device) Start() error {
	if err := d.check(); err != nil {
		return fmt.Errorf("ld3320: start: %w", err)
	}
	switch d.mode {
	case ModeASR:
		if err := d.runASR(); err != nil {
			d.debugf("run asr failed: %v", err)
			return fmt.Errorf("ld3320: start: %w", err)
		}
		d.status = StatusASRRunning
	case ModeMP3:
		if err := d.startMP3(); err != nil {
			d.debugf("start mp3 failed: %v", err)
			return fmt.Errorf("ld3320: start: %w", err)
		}
		d.status = StatusMP3Running
	default:
		return fmt.Errorf("ld3320: start: %w: mode %v", ErrInvalidArgument, d.mode)
	}
	return nil
}

// Stop aborts the running session by resetting the chip.
func (d *Device) Stop() error {
	if err := d.check(); err != nil {
		return fmt.Errorf("ld3320: stop: %w", err)
	}
	if d.mode != ModeASR && d.mode != ModeMP3 {
		return fmt.Errorf("ld3320: stop: %w: mode %v", ErrInvalidArgument, d.mode)
	}
	if err := d.reset(); err != nil {
		return fmt.Errorf("ld3320: stop: %w", err)
	}
	return nil
}

// reset pulses the reset line and probes the bus.
func (d *Device) reset() error {
	if err := d.rst.Out(gpio.High); err != nil {
		return fmt.Errorf("%w: %w", ErrReset, err)
	}
	d.clock.Sleep(2 * time.Millisecond)
	if err := d.rst.Out(gpio.Low); err != nil {
		return fmt.Errorf("%w: %w", ErrReset, err)
	}
	d.clock.Sleep(2 * time.Millisecond)
	if err := d.rst.Out(gpio.High); err != nil {
		return fmt.Errorf("%w: %w", ErrReset, err)
	}
	if err := d.bus.Write(nil); err != nil {
		return fmt.Errorf("%w: probe: %w", ErrReset, err)
	}
	d.clock.Sleep(2 * time.Millisecond)
	return nil
}

func (d *Device) SetMode(m Mode) error {
	if err := d.check(); err != nil {
		return fmt.Errorf("ld3320: set mode: %w", err)
	}
	if m != ModeASR && m != ModeMP3 {
		return fmt.Errorf("ld3320: set mode: %w: %v", ErrInvalidArgument, m)
	}
	d.mode = m
	return nil
}

func (d *Device) Mode() (Mode, error) {
	if err := d.check(); err != nil {
		return 0, fmt.Errorf("ld3320: mode: %w", err)
	}
	return d.mode, nil
}

func (d *Device) SetMicGain(g MicGain) error {
	if err := d.check(); err != nil {
		return fmt.Errorf("ld3320: set mic gain: %w", err)
	}
	d.micGain = g
	return nil
}

func (d *Device) MicGain() (MicGain, error) {
	if err := d.check(); err != nil {
		return 0, fmt.Errorf("ld3320: mic gain: %w", err)
	}
	return d.micGain, nil
}

func (d *Device) SetVAD(v VAD) error {
	if err := d.check(); err != nil {
		return fmt.Errorf("ld3320: set vad: %w", err)
	}
	d.vad = v
	return nil
}

func (d *Device) VAD() (VAD, error) {
	if err := d.check(); err != nil {
		return 0, fmt.Errorf("ld3320: vad: %w", err)
	}
	return d.vad, nil
}

// Status returns the running state.
func (d *Device) Status() (Status, error) {
	if err := d.check(); err != nil {
		return 0, fmt.Errorf("ld3320: status: %w", err)
	}
	return d.status, nil
}

// SetReg writes a raw register.
func (d *Device) SetReg(reg, val byte) error {
	if err := d.check(); err != nil {
		return fmt.Errorf("ld3320: set reg: %w", err)
	}
	if err := d.writeReg(reg, val); err != nil {
		return fmt.Errorf("ld3320: %w", err)
	}
	return nil
}

// Reg reads a raw register.
func (d *Device) Reg(reg byte) (byte, error) {
	if err := d.check(); err != nil {
		return 0, fmt.Errorf("ld3320: reg: %w", err)
	}
	v, err := d.readReg(reg)
	if err != nil {
		return 0, fmt.Errorf("ld3320: %w", err)
	}
	return v, nil
}

// ChipInfo describes the chip and driver.
type ChipInfo struct {
	ChipName         string
	Manufacturer     string
	Interface        string
	SupplyVoltageMin float32 // V
	SupplyVoltageMax float32 // V
	MaxCurrent       float32 // mA
	TemperatureMin   float32 // C
	TemperatureMax   float32 // C
	DriverVersion    int
}

func Info() ChipInfo {
	return ChipInfo{
		ChipName:         "IC Route LD3320",
		Manufacturer:     "IC Route",
		Interface:        "SPI",
		SupplyVoltageMin: 3.0,
		SupplyVoltageMax: 3.3,
		MaxCurrent:       166.7,
		TemperatureMin:   -40,
		TemperatureMax:   85,
		DriverVersion:    1000,
	}
}
