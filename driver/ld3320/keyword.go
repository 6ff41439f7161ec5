package ld3320

import (
	"fmt"
)

// MaxKeywordLen is the longest keyword in bytes.
const MaxKeywordLen = 49

// Keyword is a recognition phrase in the chip's pinyin notation, for
// example "ni hao". Its length never exceeds MaxKeywordLen.
type Keyword struct {
	n    uint8
	text [MaxKeywordLen]byte
}

// ParseKeyword validates s as a keyword.
func ParseKeyword(s string) (Keyword, error) {
	var k Keyword
	if len(s) > MaxKeywordLen {
		return k, fmt.Errorf("%w: keyword %q longer than %d bytes", ErrInvalidArgument, s, MaxKeywordLen)
	}
	k.n = uint8(copy(k.text[:], s))
	return k, nil
}

func (k Keyword) String() string {
	return string(k.text[:k.n])
}

func (k *Keyword) bytes() []byte {
	return k.text[:k.n]
}

// SetKeywords replaces the keyword table. The position of a word is
// its recognition index.
func (d *Device) SetKeywords(words ...string) error {
	if err := d.check(); err != nil {
		return fmt.Errorf("ld3320: set keywords: %w", err)
	}
	if len(words) > MaxKeywords {
		return fmt.Errorf("ld3320: set keywords: %w: %d keywords, at most %d", ErrInvalidArgument, len(words), MaxKeywords)
	}
	var table [MaxKeywords]Keyword
	for i, w := range words {
		k, err := ParseKeyword(w)
		if err != nil {
			return fmt.Errorf("ld3320: set keywords: %w", err)
		}
		table[i] = k
	}
	d.keywords = table
	d.nkeywords = len(words)
	return nil
}

// Keywords returns a copy of the keyword table.
func (d *Device) Keywords() ([]string, error) {
	if err := d.check(); err != nil {
		return nil, fmt.Errorf("ld3320: keywords: %w", err)
	}
	words := make([]string, d.nkeywords)
	for i := range d.nkeywords {
		words[i] = d.keywords[i].String()
	}
	return words, nil
}
