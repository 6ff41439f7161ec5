package ld3320

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// Simulator is a register level model of the chip. It implements Bus,
// ResetPin and Clock, and records every transaction.
type Simulator struct {
	// Regs is the register file. Reads of the FIFO status and ASR
	// status registers are synthesized.
	Regs [256]byte
	// ASRStatus is returned by reads of the ASR status register.
	ASRStatus byte
	// FIFOCapacity is the number of bytes the data FIFO accepts before
	// reporting full. Zero means unlimited.
	FIFOCapacity int
	// Data collects the bytes written to the data FIFO.
	Data []byte
	// Uploaded collects the keywords added to the recognizer.
	Uploaded []SimKeyword
	// Resets counts reset pulses.
	Resets int
	// Probes counts empty bus writes.
	Probes int
	// Elapsed is the total simulated delay.
	Elapsed time.Duration
	// Trace records transactions when enabled.
	Trace []string
	// TraceDelays includes delays in the trace.
	TraceDelays bool
	tracing     bool

	// FailWrite and FailRead inject bus failures.
	FailWrite func(reg, val byte) error
	FailRead  func(reg byte) error
	// FailReset injects reset line failures.
	FailReset error

	level  gpio.Level
	queue  int
	ext    []byte
	reads  map[byte]int
	writes map[[2]byte]int
}

type SimKeyword struct {
	Index int
	Text  string
}

var errSimFrame = errors.New("sim: invalid frame")

func NewSimulator() *Simulator {
	return &Simulator{
		ASRStatus: asrReady,
		level:     gpio.High,
		reads:     make(map[byte]int),
		writes:    make(map[[2]byte]int),
	}
}

// StartTrace clears and enables the transaction trace.
func (s *Simulator) StartTrace() {
	s.Trace = s.Trace[:0]
	s.tracing = true
}

func (s *Simulator) trace(format string, args ...any) {
	if s.tracing {
		s.Trace = append(s.Trace, fmt.Sprintf(format, args...))
	}
}

// TraceText returns the trace, one transaction per line.
func (s *Simulator) TraceText() string {
	if len(s.Trace) == 0 {
		return ""
	}
	return strings.Join(s.Trace, "\n") + "\n"
}

// Reads returns the number of reads of reg.
func (s *Simulator) Reads(reg byte) int {
	return s.reads[reg]
}

// Writes returns the number of writes of val to reg.
func (s *Simulator) Writes(reg, val byte) int {
	return s.writes[[2]byte{reg, val}]
}

// Recognize primes the result registers with a completed recognition
// of count candidates, the best at index.
func (s *Simulator) Recognize(index, count byte) {
	s.Regs[regIntFlag] |= intASRDone
	s.ASRStatus = asrValidLow
	s.Regs[regASRStatus2] = asrValidHigh
	s.Regs[regIntAux] = count
	s.Regs[regASRRes1] = index
}

// Reject primes the result registers with a completed recognition
// that matched nothing.
func (s *Simulator) Reject() {
	s.Recognize(0, 0)
}

// Drain empties the data FIFO, as playback does.
func (s *Simulator) Drain() {
	s.queue = 0
}

// RequestStop raises the stop request flag of the decoder.
func (s *Simulator) RequestStop() {
	s.Regs[regIntAux] |= auxStopRequested
}

func (s *Simulator) Write(w []byte) error {
	if len(w) == 0 {
		s.Probes++
		s.trace("probe")
		return nil
	}
	if len(w) != 3 || w[0] != cmdWrite {
		return fmt.Errorf("%w: write % x", errSimFrame, w)
	}
	reg, val := w[1], w[2]
	if s.FailWrite != nil {
		if err := s.FailWrite(reg, val); err != nil {
			return err
		}
	}
	s.trace("write %#.2x %#.2x", reg, val)
	s.writes[[2]byte{reg, val}]++
	s.Regs[reg] = val
	switch reg {
	case regIntFlag:
		// Acknowledging the interrupt returns the recognizer to idle.
		if val == 0 {
			s.ASRStatus = asrReady
		}
	case regFIFOData:
		s.Data = append(s.Data, val)
		s.queue++
	case regFIFOExt:
		s.ext = append(s.ext, val)
	case regFIFOClear:
		if val&fifoClearExt != 0 {
			s.ext = s.ext[:0]
		}
		if val&fifoClearData != 0 {
			s.queue = 0
		}
	case regDSPCmd:
		if val == dspAddWord {
			n := min(int(s.Regs[regASRStrLen]), len(s.ext))
			s.Uploaded = append(s.Uploaded, SimKeyword{
				Index: int(s.Regs[regASRIndex]),
				Text:  string(s.ext[:n]),
			})
		}
	}
	return nil
}

func (s *Simulator) ReadReg16(addr uint16, r []byte) error {
	if addr>>8 != cmdRead || len(r) != 1 {
		return fmt.Errorf("%w: read %#.4x of %d bytes", errSimFrame, addr, len(r))
	}
	reg := byte(addr)
	if s.FailRead != nil {
		if err := s.FailRead(reg); err != nil {
			return err
		}
	}
	s.reads[reg]++
	var v byte
	switch reg {
	case regFIFOStatus:
		if s.FIFOCapacity > 0 && s.queue >= s.FIFOCapacity {
			v = fifoFull
		}
	case regASRStatus:
		v = s.ASRStatus
	default:
		v = s.Regs[reg]
	}
	s.trace("read %#.2x", reg)
	r[0] = v
	return nil
}

func (s *Simulator) Out(l gpio.Level) error {
	if s.FailReset != nil {
		return s.FailReset
	}
	if s.level == gpio.High && l == gpio.Low {
		s.Resets++
		s.queue = 0
		s.ext = s.ext[:0]
	}
	s.level = l
	s.trace("reset %v", l)
	return nil
}

func (s *Simulator) Sleep(d time.Duration) {
	s.Elapsed += d
	if s.TraceDelays {
		s.trace("sleep %v", d)
	}
}
