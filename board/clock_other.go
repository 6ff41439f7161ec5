//go:build !linux

package board

import (
	"time"
)

type Clock struct{}

func (Clock) Sleep(d time.Duration) {
	time.Sleep(d)
}
