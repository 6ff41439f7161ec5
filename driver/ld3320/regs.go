package ld3320

// Register addresses.
const (
	regFIFOData          = 0x01
	regFIFOIntConf       = 0x02
	regFIFOExt           = 0x05
	regFIFOStatus        = 0x06
	regFIFOClear         = 0x08
	regClkConf1          = 0x11
	regCmd               = 0x17
	regClkConf2          = 0x19
	regClkConf3          = 0x1b
	regADCConf           = 0x1c
	regClkConf4          = 0x1d
	regADCControl        = 0x1e
	regFIFODataUpperLow  = 0x20
	regFIFODataUpperHigh = 0x21
	regFIFODataLowerLow  = 0x22
	regFIFODataLowerHigh = 0x23
	regFIFOMCUMarkLow    = 0x24
	regFIFOMCUMarkHigh   = 0x25
	regFIFODSPMarkLow    = 0x26
	regFIFODSPMarkHigh   = 0x27
	regIntConf           = 0x29
	regIntFlag           = 0x2b
	regMP3Conf           = 0x33
	regADCGain           = 0x35
	regDSPCmd            = 0x37
	regFIFOExtUpperLow   = 0x38
	regFIFOExtUpperHigh  = 0x3a
	regFIFOExtLowerLow   = 0x3c
	regFIFOExtLowerHigh  = 0x3e
	regFIFOExtMCUMarkLow = 0x40
	regFIFOExtMCUMarkHi  = 0x42
	regFIFOExtDSPMarkLow = 0x44
	regFIFOExtDSPMarkHi  = 0x46
	regInit              = 0x6f
	regClkConf5          = 0x79
	regHeadsetLeft       = 0x81
	regHeadsetRight      = 0x83
	regFeedback          = 0x85
	regAnalogControl1    = 0x87
	regAnalogControl2    = 0x89
	regGainControl       = 0x8d
	regSpeaker           = 0x8e
	regLineout           = 0x8f
	regASRStatus         = 0xb2
	regASRVADParam       = 0xb3
	regASRVADStart       = 0xb4
	regASRVADSilenceEnd  = 0xb5
	regASRVADVoiceMaxLen = 0xb6
	regASRPassFrame      = 0xb7
	regASRTime           = 0xb8
	regASRStrLen         = 0xb9
	regIntAux            = 0xba
	regASRForceStop      = 0xbc
	regInitControl       = 0xbd
	regASRStatus2        = 0xbf
	regASRIndex          = 0xc1
	regASRData           = 0xc3
	regASRRes1           = 0xc5
	regASRRes2           = 0xc7
	regASRRes3           = 0xc9
	regASRRes4           = 0xcb
	regASRDSPSleep       = 0xcd
	regLowPower          = 0xcf
)

// Wire framing.
const (
	// cmdWrite prefixes every register write frame.
	cmdWrite = 0x04
	// cmdRead is the high byte of the 16-bit read address.
	cmdRead = 0x05
)

// Register values.
const (
	// Command register.
	cmdSoftReset   = 0x35
	cmdDSPActivate = 0x48
	cmdDSPSleep    = 0x4c

	// DSP command register.
	dspAddWord  = 0x04
	dspStartASR = 0x06

	// FIFO clear register.
	fifoClearData = 0x01
	fifoClearExt  = 0x04

	// FIFO status bits.
	fifoFull = 0x08

	// ASR status values.
	asrReady      = 0x21
	asrValidLow   = 0x21
	asrValidHigh  = 0x35
	asrStatusIdle = 0xff

	// Interrupt flag bits.
	intASRDone = 0x10

	// Interrupt aux bits.
	auxStopRequested = 0x20

	// Interrupt configuration values.
	intEnableASR    = 0x10
	intEnableMP3    = 0x04
	fifoIntEnabled  = 0x01
	mp3PlayEnabled  = 0x01
	analogVolumeOn  = 0x78
	feedbackPlaying = 0x5a

	// ADC configuration values.
	adcConfInit   = 0x09
	adcConfRecord = 0x0b

	// Init control values.
	initControlASR     = 0x00
	initControlMP3     = 0x02
	initControlASRPrep = 0x20

	// ASR result count bounds.
	minResults = 1
	maxResults = 4
)

// Fixed PLL settings; the remaining ones depend on the crystal.
const (
	pllASR1B = 0x48
	pllASR1D = 0x1f
	pllMP319 = 0x0f
	pllMP31B = 0x18
)

// DefaultCrystalMHz is the crystal fitted on common LD3320 boards.
const DefaultCrystalMHz = 22.1184

// pll holds the clock configuration triple for a mode.
type pll struct {
	conf1, conf2, conf3, conf4 byte
}

// pllFor derives the clock configuration for mode from the crystal
// frequency in MHz.
func pllFor(mode Mode, xtal float64) pll {
	conf1 := byte(xtal/2 - 1)
	if mode == ModeMP3 {
		return pll{
			conf1: conf1,
			conf2: pllMP319,
			conf3: pllMP31B,
			conf4: byte(90*(float64(conf1)+1)/xtal - 1),
		}
	}
	return pll{
		conf1: conf1,
		conf2: byte(xtal*32/(float64(conf1)+1) - 0.51),
		conf3: pllASR1B,
		conf4: pllASR1D,
	}
}
