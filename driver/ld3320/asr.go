package ld3320

import (
	"fmt"
	"time"
)

const (
	busyPolls    = 10
	busyInterval = 10 * time.Millisecond
	asrAttempts  = 5
	// maxUploadLen is the number of keyword bytes the extended FIFO
	// accepts per word.
	maxUploadLen = 50
)

// asrReady polls the ASR status register until the chip reports ready.
// Not being ready is not an error.
func (d *Device) asrReady() (bool, error) {
	for range busyPolls {
		v, err := d.readReg(regASRStatus)
		if err != nil {
			return false, err
		}
		if v == asrReady {
			return true, nil
		}
		d.clock.Sleep(busyInterval)
	}
	return false, nil
}

// addKeyword uploads a single keyword with its recognition index.
func (d *Device) addKeyword(index int, k *Keyword) error {
	if err := d.writeRegs(regASRIndex, byte(index), regASRData, 0x00); err != nil {
		return err
	}
	if err := d.writeReg(regFIFOClear, fifoClearExt); err != nil {
		return err
	}
	d.clock.Sleep(2 * time.Millisecond)
	if err := d.writeReg(regFIFOClear, 0x00); err != nil {
		return err
	}
	d.clock.Sleep(2 * time.Millisecond)
	text := k.bytes()
	if len(text) > maxUploadLen {
		text = text[:maxUploadLen]
	}
	for _, b := range text {
		if err := d.writeReg(regFIFOExt, b); err != nil {
			return err
		}
	}
	return d.writeRegs(
		regASRStrLen, byte(len(text)),
		regASRStatus, asrStatusIdle,
		regDSPCmd, dspAddWord,
	)
}

// uploadKeywords sends the keyword table to the chip.
func (d *Device) uploadKeywords() error {
	for i := range d.nkeywords {
		ready, err := d.asrReady()
		if err != nil {
			return fmt.Errorf("upload keyword %d: %w", i, err)
		}
		if !ready {
			return fmt.Errorf("upload keyword %d: %w", i, ErrNotReady)
		}
		if err := d.addKeyword(i, &d.keywords[i]); err != nil {
			return fmt.Errorf("upload keyword %d: %w", i, err)
		}
	}
	return nil
}

// asrStart starts a recognition pass with the configured gain and VAD.
func (d *Device) asrStart() error {
	err := d.writeRegs(
		regADCGain, byte(d.micGain),
		regASRVADParam, byte(d.vad),
		regADCConf, adcConfInit,
		regInitControl, initControlASRPrep,
		regFIFOClear, fifoClearData,
	)
	if err != nil {
		return fmt.Errorf("asr start: %w", err)
	}
	d.clock.Sleep(2 * time.Millisecond)
	if err := d.writeReg(regFIFOClear, 0x00); err != nil {
		return fmt.Errorf("asr start: %w", err)
	}
	d.clock.Sleep(2 * time.Millisecond)
	ready, err := d.asrReady()
	if err != nil {
		return fmt.Errorf("asr start: %w", err)
	}
	if !ready {
		return fmt.Errorf("asr start: %w", ErrNotReady)
	}
	if err := d.writeRegs(regASRStatus, asrStatusIdle, regDSPCmd, dspStartASR); err != nil {
		return fmt.Errorf("asr start: %w", err)
	}
	d.clock.Sleep(5 * time.Millisecond)
	err = d.writeRegs(
		regADCConf, adcConfRecord,
		regIntConf, intEnableASR,
		regInitControl, initControlASR,
	)
	if err != nil {
		return fmt.Errorf("asr start: %w", err)
	}
	return nil
}

// runASR initializes the chip for recognition, uploads the keywords
// and starts listening. Upload and start failures are retried after a
// reset; initialization failures are not.
func (d *Device) runASR() error {
	policy := retryPolicy{
		attempts: asrAttempts,
		recover: func() error {
			err := d.reset()
			if err != nil {
				d.debugf("recovery reset failed: %v", err)
			}
			d.clock.Sleep(100 * time.Millisecond)
			return err
		},
	}
	return policy.do(func(attempt int) error {
		if attempt > 0 {
			d.debugf("asr attempt %d", attempt+1)
		}
		if err := d.asrModeInit(); err != nil {
			return errAbort{err}
		}
		d.clock.Sleep(100 * time.Millisecond)
		if err := d.uploadKeywords(); err != nil {
			d.debugf("%v", err)
			return err
		}
		d.clock.Sleep(10 * time.Millisecond)
		if err := d.asrStart(); err != nil {
			d.debugf("%v", err)
			return err
		}
		return nil
	})
}
