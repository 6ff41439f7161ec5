package ld3320

import (
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/spi"
)

// Bus is the serial transport to the chip.
type Bus interface {
	// Write sends w in a single transaction. An empty w is a
	// synchronization probe.
	Write(w []byte) error
	// ReadReg16 sends the 16-bit address addr, most significant byte
	// first, and reads len(r) bytes in the same transaction.
	ReadReg16(addr uint16, r []byte) error
}

func (d *Device) readReg(reg byte) (byte, error) {
	res := d.scratch[:1]
	if err := d.bus.ReadReg16(uint16(cmdRead)<<8|uint16(reg), res); err != nil {
		return 0, &RegError{Op: "read", Reg: reg, Err: err}
	}
	return res[0], nil
}

func (d *Device) writeReg(reg, val byte) error {
	req := d.scratch[:3]
	req[0] = cmdWrite
	req[1] = reg
	req[2] = val
	if err := d.bus.Write(req); err != nil {
		return &RegError{Op: "write", Reg: reg, Err: err}
	}
	return nil
}

// writeRegs in pairs of (register, value).
func (d *Device) writeRegs(values ...byte) error {
	if len(values)%2 != 0 {
		panic("register values not paired")
	}
	for i := 0; i < len(values); i += 2 {
		if err := d.writeReg(values[i], values[i+1]); err != nil {
			return err
		}
	}
	return nil
}

// SPIBus adapts a periph SPI connection to the chip's framing. The
// connection must be configured for mode 2, 8 bits per word.
type SPIBus struct {
	Conn spi.Conn

	buf [3 + 16]byte
}

func (b *SPIBus) Write(w []byte) error {
	if len(w) == 0 {
		// spidev rejects empty transfers. The probe only needs the
		// chip select edge that the next transaction provides.
		return nil
	}
	return b.Conn.Tx(w, nil)
}

func (b *SPIBus) ReadReg16(addr uint16, r []byte) error {
	n := 2 + len(r)
	var tx, rx []byte
	if n <= len(b.buf)/2 {
		tx, rx = b.buf[:n], b.buf[n:2*n]
		clear(tx)
	} else {
		tx, rx = make([]byte, n), make([]byte, n)
	}
	if lim, ok := b.Conn.(conn.Limits); ok && n > lim.MaxTxSize() {
		return errTxTooLarge
	}
	tx[0] = byte(addr >> 8)
	tx[1] = byte(addr)
	if err := b.Conn.Tx(tx, rx); err != nil {
		return err
	}
	copy(r, rx[2:])
	return nil
}
