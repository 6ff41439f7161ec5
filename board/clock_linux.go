package board

import (
	"errors"
	"time"

	"golang.org/x/sys/unix"
)

// Clock sleeps with nanosleep, which keeps sub-millisecond delays
// accurate on an idle system.
type Clock struct{}

func (Clock) Sleep(d time.Duration) {
	ts := unix.NsecToTimespec(d.Nanoseconds())
	for {
		err := unix.Nanosleep(&ts, &ts)
		if !errors.Is(err, unix.EINTR) {
			return
		}
	}
}
