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
	"bytes"
	"testing"

	"github.com/Mytherin/postgres-scanner/pgerr"
)

const int4OID = 23

func encodeArrayEnvelope(ndimFlag uint32, hasNullsFlag uint32, elemOID uint32, elements [][]byte) []byte {
	var buf bytes.Buffer
	buf.Write(be32(int32(ndimFlag)))
	buf.Write(be32(int32(hasNullsFlag)))
	buf.Write(be32(int32(elemOID)))
	if ndimFlag != 0 {
		buf.Write(be32(int32(len(elements))))
		buf.Write(be32(1)) // lower bound
		for _, e := range elements {
			if e == nil {
				buf.Write(be32(-1))
				continue
			}
			buf.Write(be32(int32(len(e))))
			buf.Write(e)
		}
	}
	return buf.Bytes()
}

func TestDecodeArrayEmpty(t *testing.T) {
	payload := encodeArrayEnvelope(0, 0, int4OID, nil)
	elems, err := DecodeArray(payload, int4OID)
	if err != nil {
		t.Fatal(err)
	}
	if len(elems) != 0 {
		t.Fatalf("got %d elements, want 0", len(elems))
	}
}

func TestDecodeArrayOneDimensional(t *testing.T) {
	payload := encodeArrayEnvelope(1, 0, int4OID, [][]byte{be32(10), nil, be32(30)})
	elems, err := DecodeArray(payload, int4OID)
	if err != nil {
		t.Fatal(err)
	}
	if len(elems) != 3 {
		t.Fatalf("got %d elements, want 3", len(elems))
	}
	if elems[1].Null != true {
		t.Fatalf("element 1 should be null")
	}
	v, err := DecodeI32(elems[0].Payload)
	if err != nil || v != 10 {
		t.Fatalf("element 0: v=%d err=%v", v, err)
	}
	v, err = DecodeI32(elems[2].Payload)
	if err != nil || v != 30 {
		t.Fatalf("element 2: v=%d err=%v", v, err)
	}
}

func TestDecodeArrayRejectsMultiDimensional(t *testing.T) {
	payload := encodeArrayEnvelope(2, 0, int4OID, [][]byte{be32(1)})
	_, err := DecodeArray(payload, int4OID)
	if !pgerr.Of(err, pgerr.UnsupportedType) {
		t.Fatalf("expected UnsupportedType, got %v", err)
	}
}

func TestDecodeArrayIgnoresSecondFlagWordValue(t *testing.T) {
	// hasNullsFlag set to a nonsense value; decode should not fail
	// or otherwise depend on it.
	payload := encodeArrayEnvelope(1, 0xDEADBEEF, int4OID, [][]byte{be32(5)})
	elems, err := DecodeArray(payload, int4OID)
	if err != nil {
		t.Fatal(err)
	}
	if len(elems) != 1 {
		t.Fatalf("got %d elements", len(elems))
	}
}

func TestDecodeArrayRejectsElementOIDMismatch(t *testing.T) {
	payload := encodeArrayEnvelope(1, 0, 999, [][]byte{be32(1)})
	_, err := DecodeArray(payload, int4OID)
	if !pgerr.Of(err, pgerr.Protocol) {
		t.Fatalf("expected Protocol error, got %v", err)
	}
}
