// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package wire

import (
	"fmt"
	"math"
	"math/big"

	"github.com/Mytherin/postgres-scanner/pgerr"
)

const (
	numericPos  = 0x0000
	numericNeg  = 0x4000
	numericNaN  = 0xC000
	numericPInf = 0xD000
	numericNInf = 0xF000
)

func pow10(n int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

func ratPow10(n int) *big.Rat {
	return new(big.Rat).SetInt(pow10(n))
}

// DecodeNumeric decodes a "numeric" field payload into a signed
// integer scaled by 10^targetScale (i.e. the value the caller should
// store as value / 10^targetScale), following the digit-group
// reconstruction in the wire codec design. Overflow of the caller's
// target integer width is the caller's responsibility.
//
// Each digit group digits[i] contributes digits[i] * 10000^(weight-i)
// to the value, exactly mirroring DecodeNumericFloat64's per-digit
// exponent (weight-i); the contributions are summed as exact
// rationals rather than floats so that scaling by 10^targetScale and
// truncating to an integer at the end loses no precision the target
// scale wasn't already going to drop. This also means a negative
// weight (any |value| < 1, e.g. 0.5) is handled the same way as a
// non-negative one, with no separate "integral part" seeding step
// that could double-count or skip a digit group.
func DecodeNumeric(payload []byte, targetScale int) (*big.Int, error) {
	c := NewCursor(payload)
	ndigits, err := c.U16()
	if err != nil {
		return nil, err
	}
	weight, err := c.I16()
	if err != nil {
		return nil, err
	}
	sign, err := c.U16()
	if err != nil {
		return nil, err
	}
	if _, err := c.U16(); err != nil { // dscale, not needed for reconstruction
		return nil, err
	}

	switch sign {
	case numericPos, numericNeg:
	case numericNaN, numericPInf, numericNInf:
		return nil, pgerr.New(pgerr.UnsupportedType, "wire: DecodeNumeric", fmt.Sprintf("unsupported numeric sign 0x%04x", sign))
	default:
		return nil, pgerr.New(pgerr.Protocol, "wire: DecodeNumeric", fmt.Sprintf("bad numeric sign 0x%04x", sign))
	}

	digits := make([]int32, ndigits)
	for i := range digits {
		d, err := c.I16()
		if err != nil {
			return nil, err
		}
		digits[i] = int32(d)
	}

	value := new(big.Rat)
	for i, d := range digits {
		if d == 0 {
			continue
		}
		term := new(big.Rat).SetInt64(int64(d))
		exp := 4*(int(weight)-i) + targetScale
		switch {
		case exp > 0:
			term.Mul(term, ratPow10(exp))
		case exp < 0:
			term.Quo(term, ratPow10(-exp))
		}
		value.Add(value, term)
	}

	result := new(big.Int).Quo(value.Num(), value.Denom())
	if sign == numericNeg {
		result.Neg(result)
	}
	return result, nil
}

// DecodeNumericFloat64 decodes a "numeric" field payload directly
// into a float64, using the digit groups' own implied scale rather
// than a caller-chosen target scale. This is the path used for
// columns mapped from an unconstrained numeric (typmod = -1) to F64.
func DecodeNumericFloat64(payload []byte) (float64, error) {
	c := NewCursor(payload)
	ndigits, err := c.U16()
	if err != nil {
		return 0, err
	}
	weight, err := c.I16()
	if err != nil {
		return 0, err
	}
	sign, err := c.U16()
	if err != nil {
		return 0, err
	}
	if _, err := c.U16(); err != nil {
		return 0, err
	}
	switch sign {
	case numericPos, numericNeg:
	case numericNaN, numericPInf, numericNInf:
		return 0, pgerr.New(pgerr.UnsupportedType, "wire: DecodeNumericFloat64", fmt.Sprintf("unsupported numeric sign 0x%04x", sign))
	default:
		return 0, pgerr.New(pgerr.Protocol, "wire: DecodeNumericFloat64", fmt.Sprintf("bad numeric sign 0x%04x", sign))
	}

	var val float64
	for i := 0; i < int(ndigits); i++ {
		d, err := c.I16()
		if err != nil {
			return 0, err
		}
		exp := float64(int(weight) - i)
		val += float64(d) * math.Pow(10000, exp)
	}
	if sign == numericNeg {
		val = -val
	}
	return val, nil
}
