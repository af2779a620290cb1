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
	"errors"
	"testing"

	"github.com/Mytherin/postgres-scanner/pgerr"
)

func buildStream(tuples [][][]byte) []byte {
	var buf bytes.Buffer
	buf.Write(encodeCopyHeader())
	for _, fields := range tuples {
		buf.Write(be16(int16(len(fields))))
		for _, f := range fields {
			if f == nil {
				buf.Write(be32(-1))
				continue
			}
			buf.Write(be32(int32(len(f))))
			buf.Write(f)
		}
	}
	buf.Write(be16(-1)) // trailer
	return buf.Bytes()
}

func TestDecoderReadsHeaderAndTuples(t *testing.T) {
	stream := buildStream([][][]byte{
		{[]byte("hello"), nil},
		{[]byte("world"), []byte("!")},
	})
	d := NewDecoder(bytes.NewReader(stream))
	if err := d.ReadHeader(); err != nil {
		t.Fatal(err)
	}

	n, done, err := d.NextTuple()
	if err != nil || done || n != 2 {
		t.Fatalf("tuple 1: n=%d done=%v err=%v", n, done, err)
	}
	f0, null0, err := d.ReadField()
	if err != nil || null0 || string(f0) != "hello" {
		t.Fatalf("field 0: %q null=%v err=%v", f0, null0, err)
	}
	_, null1, err := d.ReadField()
	if err != nil || !null1 {
		t.Fatalf("field 1: expected null, null=%v err=%v", null1, err)
	}

	n, done, err = d.NextTuple()
	if err != nil || done || n != 2 {
		t.Fatalf("tuple 2: n=%d done=%v err=%v", n, done, err)
	}
	f0, _, _ = d.ReadField()
	f1, _, _ := d.ReadField()
	if string(f0) != "world" || string(f1) != "!" {
		t.Fatalf("tuple 2 fields: %q %q", f0, f1)
	}

	_, done, err = d.NextTuple()
	if err != nil || !done {
		t.Fatalf("expected trailer, done=%v err=%v", done, err)
	}
}

func TestDecoderRejectsBadSignature(t *testing.T) {
	bad := append([]byte("NOTACOPY\x00\x00\x00"), make([]byte, 8)...)
	d := NewDecoder(bytes.NewReader(bad))
	err := d.ReadHeader()
	if !pgerr.Of(err, pgerr.Protocol) {
		t.Fatalf("expected protocol error, got %v", err)
	}
}

func TestDecoderSkipsHeaderExtension(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(signature[:])
	buf.Write(be32(0)) // flags
	buf.Write(be32(4)) // extension length
	buf.Write([]byte("xtra"))
	buf.Write(be16(-1))
	d := NewDecoder(&buf)
	if err := d.ReadHeader(); err != nil {
		t.Fatal(err)
	}
	_, done, err := d.NextTuple()
	if err != nil || !done {
		t.Fatalf("done=%v err=%v", done, err)
	}
}

func TestDecoderTruncatedStreamIsProtocolError(t *testing.T) {
	d := NewDecoder(bytes.NewReader(signature[:5]))
	err := d.ReadHeader()
	if err == nil {
		t.Fatal("expected error")
	}
	var perr *pgerr.Error
	if !errors.As(err, &perr) || perr.Kind != pgerr.Protocol {
		t.Fatalf("got %v", err)
	}
}
