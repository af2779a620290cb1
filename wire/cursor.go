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
	"encoding/binary"
	"math"

	"github.com/Mytherin/postgres-scanner/pgerr"
)

// Cursor is a read cursor over a single field's payload bytes. It is
// the stateless building block the composite decoders (numeric,
// array, uuid) use to walk a field's contents; it never allocates
// and never outlives the []byte it was built from.
type Cursor struct {
	buf []byte
	pos int
}

// NewCursor builds a Cursor over buf, starting at offset 0.
func NewCursor(buf []byte) Cursor {
	return Cursor{buf: buf}
}

// Len returns the number of unread bytes left in the cursor.
func (c *Cursor) Len() int { return len(c.buf) - c.pos }

func (c *Cursor) need(n int, op string) error {
	if c.Len() < n {
		return pgerr.New(pgerr.Protocol, op, "truncated field payload")
	}
	return nil
}

// I16 reads a big-endian signed 16-bit integer.
func (c *Cursor) I16() (int16, error) {
	if err := c.need(2, "wire: Cursor.I16"); err != nil {
		return 0, err
	}
	v := int16(binary.BigEndian.Uint16(c.buf[c.pos:]))
	c.pos += 2
	return v, nil
}

// U16 reads a big-endian unsigned 16-bit integer.
func (c *Cursor) U16() (uint16, error) {
	if err := c.need(2, "wire: Cursor.U16"); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint16(c.buf[c.pos:])
	c.pos += 2
	return v, nil
}

// I32 reads a big-endian signed 32-bit integer.
func (c *Cursor) I32() (int32, error) {
	if err := c.need(4, "wire: Cursor.I32"); err != nil {
		return 0, err
	}
	v := int32(binary.BigEndian.Uint32(c.buf[c.pos:]))
	c.pos += 4
	return v, nil
}

// U32 reads a big-endian unsigned 32-bit integer.
func (c *Cursor) U32() (uint32, error) {
	if err := c.need(4, "wire: Cursor.U32"); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(c.buf[c.pos:])
	c.pos += 4
	return v, nil
}

// I64 reads a big-endian signed 64-bit integer.
func (c *Cursor) I64() (int64, error) {
	if err := c.need(8, "wire: Cursor.I64"); err != nil {
		return 0, err
	}
	v := int64(binary.BigEndian.Uint64(c.buf[c.pos:]))
	c.pos += 8
	return v, nil
}

// F32 reads a big-endian IEEE-754 single-precision float.
func (c *Cursor) F32() (float32, error) {
	if err := c.need(4, "wire: Cursor.F32"); err != nil {
		return 0, err
	}
	v := math.Float32frombits(binary.BigEndian.Uint32(c.buf[c.pos:]))
	c.pos += 4
	return v, nil
}

// F64 reads a big-endian IEEE-754 double-precision float.
func (c *Cursor) F64() (float64, error) {
	if err := c.need(8, "wire: Cursor.F64"); err != nil {
		return 0, err
	}
	v := math.Float64frombits(binary.BigEndian.Uint64(c.buf[c.pos:]))
	c.pos += 8
	return v, nil
}

// Bytes reads the next n raw bytes. The returned slice aliases the
// cursor's backing array and is only valid as long as that array is.
func (c *Cursor) Bytes(n int) ([]byte, error) {
	if err := c.need(n, "wire: Cursor.Bytes"); err != nil {
		return nil, err
	}
	v := c.buf[c.pos : c.pos+n]
	c.pos += n
	return v, nil
}

// Rest returns all remaining unread bytes.
func (c *Cursor) Rest() []byte {
	return c.buf[c.pos:]
}
