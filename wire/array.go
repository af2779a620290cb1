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

	"github.com/Mytherin/postgres-scanner/pgerr"
)

// ArrayElement is one decoded-but-not-yet-value-interpreted element
// of a one-dimensional array payload. Null elements carry no
// payload; callers recursively decode non-null payloads using the
// column's element type.
type ArrayElement struct {
	Null    bool
	Payload []byte
}

// DecodeArray parses a one-dimensional array envelope: a flag word
// (0 for empty, 1 for one dimension, anything else unsupported), a
// second flag word the wire format defines but whose meaning this
// decoder does not need to trust, the element type OID, and then -
// only when non-empty - the axis length and lower bound followed by
// length-prefixed elements.
//
// expectedElemOID, when non-zero, is checked against the element OID
// carried on the wire; pass 0 to skip that check.
func DecodeArray(payload []byte, expectedElemOID uint32) ([]ArrayElement, error) {
	c := NewCursor(payload)
	ndimFlag, err := c.U32()
	if err != nil {
		return nil, err
	}
	// second flag word: documented as "has nulls" but the reference
	// implementation parses it without ever trusting its value, so
	// we do the same - skip it, don't branch on it.
	if _, err := c.U32(); err != nil {
		return nil, err
	}
	elemOID, err := c.U32()
	if err != nil {
		return nil, err
	}
	if ndimFlag == 0 {
		return nil, nil
	}
	if ndimFlag != 1 {
		return nil, pgerr.New(pgerr.UnsupportedType, "wire: DecodeArray", fmt.Sprintf("unsupported array dimensionality %d", ndimFlag))
	}
	if expectedElemOID != 0 && elemOID != expectedElemOID {
		return nil, pgerr.New(pgerr.Protocol, "wire: DecodeArray", fmt.Sprintf("array element oid %d does not match column element oid %d", elemOID, expectedElemOID))
	}
	length, err := c.I32()
	if err != nil {
		return nil, err
	}
	if _, err := c.I32(); err != nil { // lower bound, not needed to reconstruct values
		return nil, err
	}
	if length < 0 {
		return nil, pgerr.New(pgerr.Protocol, "wire: DecodeArray", fmt.Sprintf("negative array length %d", length))
	}
	elems := make([]ArrayElement, length)
	for i := int32(0); i < length; i++ {
		n, err := c.I32()
		if err != nil {
			return nil, err
		}
		if n == -1 {
			elems[i] = ArrayElement{Null: true}
			continue
		}
		if n < 0 {
			return nil, pgerr.New(pgerr.Protocol, "wire: DecodeArray", fmt.Sprintf("negative array element length %d", n))
		}
		b, err := c.Bytes(int(n))
		if err != nil {
			return nil, err
		}
		elems[i] = ArrayElement{Payload: b}
	}
	return elems, nil
}
