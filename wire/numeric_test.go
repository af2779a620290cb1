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
	"math"
	"testing"

	"github.com/Mytherin/postgres-scanner/pgerr"
)

func TestDecodeNumericToScaledInt(t *testing.T) {
	cases := []struct {
		name   string
		digits []int16
		weight int16
		sign   uint16
		scale  int
		want   int64
	}{
		{"zero", nil, 0, numericPos, 2, 0},
		{"1.23", []int16{1, 2300}, 0, numericPos, 2, 123},
		{"-999.99", []int16{999, 9900}, 0, numericNeg, 2, -99999},
		{"integer-only 42", []int16{42}, 0, numericPos, 2, 4200},
		{"0.5 (weight=-1)", []int16{5000}, -1, numericPos, 1, 5},
		{"-0.01 (weight=-1)", []int16{100}, -1, numericNeg, 2, -1},
		{"weight=-2, single digit", []int16{1}, -2, numericPos, 8, 1},
	}
	for _, c := range cases {
		payload := encodeNumeric(c.digits, c.weight, c.sign, 2)
		got, err := DecodeNumeric(payload, c.scale)
		if err != nil {
			t.Fatalf("%s: %s", c.name, err)
		}
		if got.Int64() != c.want {
			t.Fatalf("%s: got %s, want %d", c.name, got, c.want)
		}
	}
}

func TestDecodeNumericRejectsNaNAndInf(t *testing.T) {
	for _, sign := range []uint16{numericNaN, numericPInf, numericNInf} {
		payload := encodeNumeric(nil, 0, sign, 0)
		_, err := DecodeNumeric(payload, 0)
		if !pgerr.Of(err, pgerr.UnsupportedType) {
			t.Fatalf("sign 0x%04x: expected UnsupportedType, got %v", sign, err)
		}
	}
}

func TestDecodeNumericFloat64(t *testing.T) {
	cases := []struct {
		name   string
		digits []int16
		weight int16
		sign   uint16
		want   float64
	}{
		{"1.23", []int16{1, 2300}, 0, numericPos, 1.23},
		{"-999.99", []int16{999, 9900}, 0, numericNeg, -999.99},
		{"zero", nil, 0, numericPos, 0},
		{"large integer 123456", []int16{12, 3456}, 1, numericPos, 123456},
		{"0.5 (weight=-1)", []int16{5000}, -1, numericPos, 0.5},
	}
	for _, c := range cases {
		payload := encodeNumeric(c.digits, c.weight, c.sign, 0)
		got, err := DecodeNumericFloat64(payload)
		if err != nil {
			t.Fatalf("%s: %s", c.name, err)
		}
		if math.Abs(got-c.want) > 1e-9 {
			t.Fatalf("%s: got %v, want %v", c.name, got, c.want)
		}
	}
}
