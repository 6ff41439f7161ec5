package ld3320

import (
	"fmt"
)

// HandleInterrupt services the chip's interrupt line. It advances the
// running state and delivers at most one event to Notify.
func (d *Device) HandleInterrupt() error {
	if err := d.check(); err != nil {
		return fmt.Errorf("ld3320: interrupt: %w", err)
	}
	var err error
	switch d.mode {
	case ModeASR:
		err = d.asrInterrupt()
	case ModeMP3:
		err = d.mp3Interrupt()
	default:
		return fmt.Errorf("ld3320: interrupt: %w: mode %v", ErrInvalidArgument, d.mode)
	}
	if err != nil {
		return fmt.Errorf("ld3320: interrupt: %w", err)
	}
	if err := d.dispatch(); err != nil {
		return fmt.Errorf("ld3320: interrupt: %w", err)
	}
	return nil
}

func (d *Device) asrInterrupt() error {
	d.status = StatusASRError
	flag, err := d.readReg(regIntFlag)
	if err != nil {
		return err
	}
	if err := d.writeRegs(regIntConf, 0x00, regFIFOIntConf, 0x00); err != nil {
		return err
	}
	status, err := d.readReg(regASRStatus)
	if err != nil {
		return err
	}
	status2, err := d.readReg(regASRStatus2)
	if err != nil {
		return err
	}
	result := StatusASRFoundZero
	if flag&intASRDone != 0 && status == asrValidLow && status2 == asrValidHigh {
		count, err := d.readReg(regIntAux)
		if err != nil {
			return err
		}
		if count >= minResults && count <= maxResults {
			result = StatusASRFoundOK
		}
	}
	if err := d.writeRegs(regIntFlag, 0x00, regADCConf, 0x00); err != nil {
		return err
	}
	d.status = result
	return nil
}

func (d *Device) mp3Interrupt() error {
	prev := d.status
	d.status = StatusMP3Error
	if _, err := d.readReg(regIntFlag); err != nil {
		return err
	}
	intConf, err := d.readReg(regIntConf)
	if err != nil {
		return err
	}
	fifoIntConf, err := d.readReg(regFIFOIntConf)
	if err != nil {
		return err
	}
	if err := d.writeRegs(regIntConf, 0x00, regFIFOIntConf, 0x00); err != nil {
		return err
	}
	aux, err := d.readReg(regIntAux)
	if err != nil {
		return err
	}
	switch {
	case aux&auxStopRequested != 0:
		err := d.writeRegs(
			regIntFlag, 0x00,
			regIntAux, 0x00,
			regASRForceStop, 0x00,
		)
		if err != nil {
			return err
		}
		d.pos = 0
		err = d.writeRegs(
			regFIFOClear, fifoClearData,
			regFIFOClear, 0x00,
			regMP3Conf, 0x00,
		)
		if err != nil {
			return err
		}
		d.status = StatusMP3End
	case d.pos >= d.size && prev == StatusASRRunning:
		if err := d.writeRegs(regASRForceStop, 0x01, regIntConf, intEnableASR); err != nil {
			return err
		}
		d.status = StatusMP3End
	default:
		wasEnded := d.ended
		if err := d.loadChunk(); err != nil {
			d.status = StatusMP3Error
			return err
		}
		if err := d.writeRegs(regIntConf, intConf, regFIFOIntConf, fifoIntConf); err != nil {
			d.status = StatusMP3Error
			return err
		}
		if !wasEnded && d.ended {
			// loadChunk delivered the end of the stream. The next
			// interrupt stops the decoder.
			d.status = StatusASRRunning
			return nil
		}
		d.status = StatusMP3Load
	}
	return nil
}

// dispatch delivers the event for the state reached by the interrupt.
func (d *Device) dispatch() error {
	switch d.status {
	case StatusNone, StatusASRRunning:
		return nil
	case StatusASRFoundOK:
		d.status = StatusNone
		i, err := d.readReg(regASRRes1)
		if err != nil {
			d.status = StatusASRError
			return err
		}
		if int(i) >= d.nkeywords {
			d.status = StatusASRError
			return fmt.Errorf("%w: index %d of %d keywords", ErrIndexOutOfRange, i, d.nkeywords)
		}
		d.notify(Event{Kind: FoundOK, Index: int(i), Keyword: d.keywords[i].String()})
	case StatusASRFoundZero:
		d.status = StatusNone
		d.notify(Event{Kind: FoundZero})
	case StatusMP3End:
		d.status = StatusNone
		if !d.ended {
			d.ended = true
			d.notify(Event{Kind: MP3End})
		}
	case StatusMP3Load:
		// A load leaves the state at ASR running, which the next
		// interrupt uses to detect the end of the stream.
		d.status = StatusASRRunning
		d.notify(Event{Kind: MP3Load})
	default:
		return fmt.Errorf("%w: %v", ErrUnexpectedState, d.status)
	}
	return nil
}
