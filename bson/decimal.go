// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"encoding/binary"
	"fmt"
	"math/big"
	"regexp"
	"strconv"
	"strings"
)

// Exponent bounds of an IEEE 754-2008 decimal128 value.
const (
	MaxDecimal128Exp = 6111
	MinDecimal128Exp = -6176
)

// Decimal128 holds a 128-bit decimal value. The codec treats it as 16 opaque
// bytes: two values are equal when their bytes are equal.
type Decimal128 struct {
	h, l uint64
}

// NewDecimal128 creates a Decimal128 using the provided high and low uint64s.
func NewDecimal128(h, l uint64) Decimal128 {
	return Decimal128{h: h, l: l}
}

// NewDecimal128FromBytes creates a Decimal128 from its 16 wire bytes: the low
// half little-endian followed by the high half little-endian.
func NewDecimal128FromBytes(b [16]byte) Decimal128 {
	return Decimal128{
		l: binary.LittleEndian.Uint64(b[0:8]),
		h: binary.LittleEndian.Uint64(b[8:16]),
	}
}

// Bytes returns the 16 wire bytes of d.
func (d Decimal128) Bytes() [16]byte {
	var b [16]byte
	binary.LittleEndian.PutUint64(b[0:8], d.l)
	binary.LittleEndian.PutUint64(b[8:16], d.h)
	return b
}

// String returns a string representation of the decimal value.
func (d Decimal128) String() string {
	var pos int     // positive sign
	var e int       // exponent
	var h, l uint64 // significand high/low

	if d.h>>63&1 == 0 {
		pos = 1
	}

	switch d.h >> 58 & (1<<5 - 1) {
	case 0x1F:
		return "NaN"
	case 0x1E:
		return "-Infinity"[pos:]
	}

	l = d.l
	if d.h>>61&3 == 3 {
		// Bits: 1*sign 2*ignored 14*exponent 111*significand.
		// Every significand in this form is out of range.
		e = int(d.h>>47&(1<<14-1)) + MinDecimal128Exp
		h, l = 0, 0
	} else {
		// Bits: 1*sign 14*exponent 113*significand
		e = int(d.h>>49&(1<<14-1)) + MinDecimal128Exp
		h = d.h & (1<<49 - 1)
	}

	if h == 0 && l == 0 && e == 0 {
		return "-0"[pos:]
	}

	var repr [48]byte // 5 rounds of 9 digits plus dot, sign and leading zero.
	var last = len(repr)
	var i = len(repr)
	var dot = len(repr) + e
	var rem uint32
Loop:
	for d9 := 0; d9 < 5; d9++ {
		h, l, rem = divmod(h, l, 1e9)
		for d1 := 0; d1 < 9; d1++ {
			// "-0.0", "0.00123400", "-1.00E-6", "1.050E+3", ...
			if i < len(repr) && (dot == i || l == 0 && h == 0 && rem > 0 && rem < 10 && (dot < i-6 || e > 0)) {
				e += len(repr) - i
				i--
				repr[i] = '.'
				last = i - 1
				dot = len(repr)
			}
			c := '0' + byte(rem%10)
			rem /= 10
			i--
			repr[i] = c
			// "0E+3", "1E+3", ...
			if l == 0 && h == 0 && rem == 0 && i == len(repr)-1 && (dot < i-5 || e > 0) {
				last = i
				break Loop
			}
			if c != '0' {
				last = i
			}
			if dot > i && l == 0 && h == 0 && rem == 0 {
				break Loop
			}
		}
	}
	repr[last-1] = '-'
	last--

	if e > 0 {
		return string(repr[last+pos:]) + "E+" + strconv.Itoa(e)
	}
	if e < 0 {
		return string(repr[last+pos:]) + "E" + strconv.Itoa(e)
	}
	return string(repr[last+pos:])
}

func divmod(h, l uint64, div uint32) (qh, ql uint64, rem uint32) {
	div64 := uint64(div)
	a := h >> 32
	aq := a / div64
	ar := a % div64
	b := ar<<32 + h&(1<<32-1)
	bq := b / div64
	br := b % div64
	c := br<<32 + l>>32
	cq := c / div64
	cr := c % div64
	d := cr<<32 + l&(1<<32-1)
	dq := d / div64
	dr := d % div64
	return (aq<<32 | bq), (cq<<32 | dq), uint32(dr)
}

var (
	dNaN    = Decimal128{0x1F << 58, 0}
	dPosInf = Decimal128{0x1E << 58, 0}
	dNegInf = Decimal128{0x3E << 58, 0}
)

var regDecimal128 = regexp.MustCompile(`^(?P<int>[-+]?\d+)(?:\.(?P<dec>\d+))?(?:[Ee](?P<exp>[-+]?\d+))?$`)

// ParseDecimal128 parses s into a Decimal128. It accepts the output of
// String as well as NaN, Inf and Infinity in any case, optionally signed.
func ParseDecimal128(s string) (Decimal128, error) {
	matches := regDecimal128.FindStringSubmatch(s)
	if len(matches) == 0 {
		switch strings.ToLower(s) {
		case "nan":
			return dNaN, nil
		case "inf", "+inf", "infinity", "+infinity":
			return dPosInf, nil
		case "-inf", "-infinity":
			return dNegInf, nil
		}
		return dNaN, fmt.Errorf("cannot parse %q as a decimal128", s)
	}

	ip, dp, ep := matches[1], matches[2], matches[3]

	e := 0
	if ep != "" {
		var err error
		e, err = strconv.Atoi(ep)
		if err != nil {
			return dNaN, fmt.Errorf("cannot parse %q as a decimal128", s)
		}
	}
	e -= len(dp)

	if len(strings.Trim(ip+dp, "-+0")) > 35 {
		return dNaN, fmt.Errorf("cannot parse %q as a decimal128: too many digits", s)
	}

	bi, ok := new(big.Int).SetString(ip+dp, 10)
	if !ok {
		return dNaN, fmt.Errorf("cannot parse %q as a decimal128", s)
	}

	d, ok := decimalFromBigInt(bi, e)
	if !ok {
		return dNaN, fmt.Errorf("cannot parse %q as a decimal128: out of range", s)
	}
	return d, nil
}

var (
	ten  = big.NewInt(10)
	zero = new(big.Int)
	maxS = new(big.Int).SetBytes([]byte{0x1, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}) // 113 bits
)

func decimalFromBigInt(bi *big.Int, exp int) (Decimal128, bool) {
	bi = new(big.Int).Set(bi)
	q := new(big.Int)
	r := new(big.Int)

	for bi.CmpAbs(maxS) == 1 {
		bi, _ = q.QuoRem(bi, ten, r)
		if r.Cmp(zero) != 0 {
			return Decimal128{}, false
		}
		exp++
		if exp > MaxDecimal128Exp {
			return Decimal128{}, false
		}
	}

	// Subnormal.
	for exp < MinDecimal128Exp {
		bi, _ = q.QuoRem(bi, ten, r)
		if r.Cmp(zero) != 0 {
			return Decimal128{}, false
		}
		exp++
	}
	// Clamped.
	for exp > MaxDecimal128Exp {
		bi.Mul(bi, ten)
		if bi.CmpAbs(maxS) == 1 {
			return Decimal128{}, false
		}
		exp--
	}

	// The significand fits in 113 bits, so 16 big-endian bytes hold it.
	var b [16]byte
	new(big.Int).Abs(bi).FillBytes(b[:])
	h := binary.BigEndian.Uint64(b[0:8])
	l := binary.BigEndian.Uint64(b[8:16])

	h |= uint64(exp-MinDecimal128Exp) & uint64(1<<14-1) << 49
	if bi.Sign() == -1 {
		h |= 1 << 63
	}

	return Decimal128{h: h, l: l}, true
}
