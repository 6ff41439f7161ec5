package ld3320

import (
	"time"
)

// commonInit brings the chip out of reset and programs the clock tree
// for the configured mode.
func (d *Device) commonInit() error {
	if _, err := d.readReg(regFIFOStatus); err != nil {
		return stepError("probe fifo status", err)
	}
	if err := d.writeReg(regCmd, cmdSoftReset); err != nil {
		return stepError("soft reset", err)
	}
	d.clock.Sleep(10 * time.Millisecond)
	if _, err := d.readReg(regFIFOStatus); err != nil {
		return stepError("probe fifo status", err)
	}
	if err := d.writeReg(regAnalogControl2, 0x03); err != nil {
		return stepError("analog control", err)
	}
	d.clock.Sleep(5 * time.Millisecond)
	if err := d.writeReg(regLowPower, 0x43); err != nil {
		return stepError("low power", err)
	}
	d.clock.Sleep(5 * time.Millisecond)
	p := pllFor(d.mode, d.xtal)
	err := d.writeRegs(
		regASRRes4, 0x02,
		regClkConf1, p.conf1,
		regADCControl, 0x00,
		regClkConf2, p.conf2,
		regClkConf3, p.conf3,
		regClkConf4, p.conf4,
	)
	if err != nil {
		return stepError("clock", err)
	}
	d.clock.Sleep(10 * time.Millisecond)
	if err := d.writeRegs(regASRDSPSleep, 0x04, regCmd, cmdDSPSleep); err != nil {
		return stepError("dsp sleep", err)
	}
	d.clock.Sleep(5 * time.Millisecond)
	err = d.writeRegs(
		regASRStrLen, 0x00,
		regLowPower, 0x4f,
		regInit, 0xff,
	)
	if err != nil {
		return stepError("init trigger", err)
	}
	return nil
}

func (d *Device) asrModeInit() error {
	if err := d.commonInit(); err != nil {
		return err
	}
	if err := d.writeRegs(regInitControl, initControlASR, regCmd, cmdDSPActivate); err != nil {
		return stepError("activate dsp", err)
	}
	d.clock.Sleep(10 * time.Millisecond)
	// Keyword upload region of the extended FIFO.
	err := d.writeRegs(
		regFIFOExtLowerLow, 0x80,
		regFIFOExtLowerHigh, 0x07,
		regFIFOExtUpperLow, 0xff,
		regFIFOExtUpperHigh, 0x07,
		regFIFOExtMCUMarkLow, 0x00,
		regFIFOExtMCUMarkHi, 0x08,
		regFIFOExtDSPMarkLow, 0x00,
		regFIFOExtDSPMarkHi, 0x08,
	)
	if err != nil {
		return stepError("extended fifo", err)
	}
	d.clock.Sleep(2 * time.Millisecond)
	return nil
}

func (d *Device) mp3ModeInit() error {
	if err := d.commonInit(); err != nil {
		return err
	}
	if err := d.writeRegs(regInitControl, initControlMP3, regCmd, cmdDSPActivate); err != nil {
		return stepError("activate dsp", err)
	}
	d.clock.Sleep(10 * time.Millisecond)
	err := d.writeRegs(
		regFeedback, 0x52,
		regLineout, 0x00,
		regHeadsetLeft, 0x00,
		regHeadsetRight, 0x00,
	)
	if err != nil {
		return stepError("audio outputs", err)
	}
	d.clock.Sleep(2 * time.Millisecond)
	if err := d.writeRegs(regSpeaker, 0xff, regGainControl, 0xff); err != nil {
		return stepError("speaker", err)
	}
	d.clock.Sleep(2 * time.Millisecond)
	if err := d.writeRegs(regAnalogControl1, 0xff, regAnalogControl2, 0xff); err != nil {
		return stepError("analog control", err)
	}
	d.clock.Sleep(2 * time.Millisecond)
	// Data FIFO region and watermarks.
	err = d.writeRegs(
		regFIFODataLowerLow, 0x00,
		regFIFODataLowerHigh, 0x00,
		regFIFODataUpperLow, 0xef,
		regFIFODataUpperHigh, 0x07,
		regFIFOMCUMarkLow, 0x77,
		regFIFOMCUMarkHigh, 0x03,
		regFIFODSPMarkLow, 0xbb,
		regFIFODSPMarkHigh, 0x01,
	)
	if err != nil {
		return stepError("data fifo", err)
	}
	return nil
}
