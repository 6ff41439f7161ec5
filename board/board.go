// Package board connects an LD3320 module to the SPI bus and GPIO pins
// of a Linux single board computer.
package board

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ld3320.dev/driver/ld3320"
	"ld3320.dev/internal/config"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// Board holds the host resources wired to the chip.
type Board struct {
	Bus   *ld3320.SPIBus
	Reset gpio.PinOut
	IRQ   gpio.PinIn
	Clock Clock

	port spi.PortCloser
}

// Open initializes the host drivers and claims the SPI port and pins
// named by cfg.
func Open(cfg config.BoardConfig) (*Board, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("board: %w", err)
	}
	p, err := spireg.Open(cfg.SPI)
	if err != nil {
		return nil, fmt.Errorf("board: %w", err)
	}
	c, err := p.Connect(physic.Frequency(cfg.SpeedHz)*physic.Hertz, spi.Mode2, 8)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("board: %w", err)
	}
	rst := gpioreg.ByName(cfg.ResetPin)
	if rst == nil {
		p.Close()
		return nil, fmt.Errorf("board: no reset pin %s", cfg.ResetPin)
	}
	irq := gpioreg.ByName(cfg.IRQPin)
	if irq == nil {
		p.Close()
		return nil, fmt.Errorf("board: no interrupt pin %s", cfg.IRQPin)
	}
	// The chip holds its interrupt line low while a request is pending.
	if err := irq.In(gpio.PullUp, gpio.FallingEdge); err != nil {
		p.Close()
		return nil, fmt.Errorf("board: interrupt pin: %w", err)
	}
	if err := rst.Out(gpio.High); err != nil {
		p.Close()
		return nil, fmt.Errorf("board: reset pin: %w", err)
	}
	return &Board{
		Bus:   &ld3320.SPIBus{Conn: c},
		Reset: rst,
		IRQ:   irq,
		port:  p,
	}, nil
}

func (b *Board) Close() error {
	return errors.Join(b.IRQ.Halt(), b.port.Close())
}

// Serve calls handle for every falling edge of irq until ctx is done or
// handle fails. Edges are polled so that cancellation is observed
// within poll.
func Serve(ctx context.Context, irq gpio.PinIn, poll time.Duration, handle func() error) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !irq.WaitForEdge(poll) {
			continue
		}
		if err := handle(); err != nil {
			return err
		}
	}
}
