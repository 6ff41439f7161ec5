package board

import (
	"context"
	"errors"
	"testing"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

func TestServe(t *testing.T) {
	irq := &gpiotest.Pin{N: "IRQ", Num: 17, EdgesChan: make(chan gpio.Level, 4)}
	if err := irq.In(gpio.PullUp, gpio.FallingEdge); err != nil {
		t.Fatal(err)
	}
	for range 3 {
		irq.EdgesChan <- gpio.Low
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	calls := 0
	err := Serve(ctx, irq, time.Millisecond, func() error {
		calls++
		if calls == 3 {
			cancel()
		}
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("serve returned %v", err)
	}
	if calls != 3 {
		t.Errorf("%d interrupts handled, want 3", calls)
	}
}

func TestServeError(t *testing.T) {
	irq := &gpiotest.Pin{N: "IRQ", EdgesChan: make(chan gpio.Level, 1)}
	irq.EdgesChan <- gpio.Low
	errHandler := errors.New("bus failure")
	err := Serve(context.Background(), irq, time.Millisecond, func() error {
		return errHandler
	})
	if !errors.Is(err, errHandler) {
		t.Errorf("serve returned %v", err)
	}
}

func TestServeTimeout(t *testing.T) {
	irq := &gpiotest.Pin{N: "IRQ", EdgesChan: make(chan gpio.Level)}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := Serve(ctx, irq, time.Millisecond, func() error {
		t.Error("handler called without an edge")
		return nil
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("serve returned %v", err)
	}
}

func TestClock(t *testing.T) {
	start := time.Now()
	Clock{}.Sleep(2 * time.Millisecond)
	if d := time.Since(start); d < 2*time.Millisecond {
		t.Errorf("slept %v", d)
	}
}
