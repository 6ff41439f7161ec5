package audiosrc

import (
	"errors"
	"math"
	"testing"
)

func TestMapLen(t *testing.T) {
	const limit = math.MaxInt32
	tests := []struct {
		size int64
		ok   bool
	}{
		{0, true},
		{4096, true},
		{limit, true},
		{limit + 1, false},
		{1 << 40, false},
		{-1, false},
	}
	for _, test := range tests {
		n, err := mapLen(test.size, limit)
		if !test.ok {
			if !errors.Is(err, errTooLarge) {
				t.Errorf("size %d: returned (%d, %v), want %v", test.size, n, err, errTooLarge)
			}
			continue
		}
		if err != nil || int64(n) != test.size {
			t.Errorf("size %d: returned (%d, %v)", test.size, n, err)
		}
	}
}
