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

import "encoding/binary"

// encodeNumeric builds a raw "numeric" field payload from its digit
// groups, the inverse of DecodeNumeric/DecodeNumericFloat64, for use
// in tests that exercise the decoder without a live server.
func encodeNumeric(digits []int16, weight int16, sign uint16, dscale uint16) []byte {
	buf := make([]byte, 8+2*len(digits))
	binary.BigEndian.PutUint16(buf[0:], uint16(len(digits)))
	binary.BigEndian.PutUint16(buf[2:], uint16(weight))
	binary.BigEndian.PutUint16(buf[4:], sign)
	binary.BigEndian.PutUint16(buf[6:], dscale)
	for i, d := range digits {
		binary.BigEndian.PutUint16(buf[8+2*i:], uint16(d))
	}
	return buf
}

func encodeCopyHeader() []byte {
	buf := make([]byte, 19)
	copy(buf, signature[:])
	// flags and extension length are both zero
	return buf
}

func be32(v int32) []byte {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, uint32(v))
	return buf
}

func be16(v int16) []byte {
	buf := make([]byte, 2)
	binary.BigEndian.PutUint16(buf, uint16(v))
	return buf
}
