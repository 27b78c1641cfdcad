// Copyright 2024 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ec

import (
	"errors"
	"fmt"
	"strconv"
)

var ErrFanParse = errors.New("ec: malformed fan period")

// LEDColor is the state of the bi-color VGA LED.
type LEDColor int

const (
	Green LEDColor = iota
	Yellow
)

func (c LEDColor) String() string {
	if c == Green {
		return "GREEN"
	}
	return "YELLOW"
}

// SetArgument is the SET_LED argument selecting c. The firmware takes 1
// for green although the status register reads 0 for green.
func (c LEDColor) SetArgument() byte {
	if c == Green {
		return 1
	}
	return 0
}

// Layout locates the decoded registers.
type Layout struct {
	LEDStatus uint8
	FanHigh   uint8
	FanLow    uint8
	// FanMagic divided by the tachometer period gives RPM.
	FanMagic uint32
	// LegacyFanHex renders the period bytes without zero padding, as
	// the vendor driver did.
	LegacyFanHex bool
}

// DecodeLED maps the LED status register to a color.
func DecodeLED(v uint8) LEDColor {
	if v == 0 {
		return Green
	}
	return Yellow
}

// FanPeriod renders both bytes in hex, concatenates and parses them.
// With legacy set, bytes below 0x10 render as a single digit, which
// makes e.g. 0x1,0x23 and 0x12,0x3 indistinguishable.
func FanPeriod(hi, lo uint8, legacy bool) (uint32, error) {
	format := "%02x%02x"
	if legacy {
		format = "%x%x"
	}
	s := fmt.Sprintf(format, hi, lo)
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrFanParse, s, err)
	}
	return uint32(v), nil
}

// FanRPM converts a tachometer period, a stopped fan reads as period 0.
func FanRPM(magic, period uint32) uint32 {
	if period == 0 {
		return 0
	}
	return magic / period
}

// ReadLED reads and decodes the LED status register.
func ReadLED(r Registers, l Layout) (LEDColor, error) {
	v, err := r.Read8(l.LEDStatus)
	if err != nil {
		return Green, err
	}
	return DecodeLED(v), nil
}

// ReadFanRPM reads both tachometer registers and returns RPM.
func ReadFanRPM(r Registers, l Layout) (uint32, error) {
	hi, err := r.Read8(l.FanHigh)
	if err != nil {
		return 0, err
	}
	lo, err := r.Read8(l.FanLow)
	if err != nil {
		return 0, err
	}
	p, err := FanPeriod(hi, lo, l.LegacyFanHex)
	if err != nil {
		return 0, err
	}
	return FanRPM(l.FanMagic, p), nil
}
