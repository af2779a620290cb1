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

// Package wire decodes the PostgreSQL binary COPY stream: header
// validation, tuple framing, per-field length-prefixed values, and
// the endian-aware primitive/numeric/array value decoders.
package wire

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/Mytherin/postgres-scanner/pgerr"
)

// signature is the 11-byte magic that opens every binary COPY stream.
var signature = [11]byte{'P', 'G', 'C', 'O', 'P', 'Y', '\n', 0xff, '\r', '\n', 0}

// Decoder reads a binary COPY stream tuple by tuple. It owns a
// scratch buffer that every ReadField call reuses for its payload;
// callers that need to retain a field's bytes past the next
// ReadField or NextTuple call must copy them out first.
type Decoder struct {
	r   *bufio.Reader
	buf []byte // scratch space, reused across tuples/fields
}

// NewDecoder wraps r, ready to have ReadHeader called on it.
func NewDecoder(r io.Reader) *Decoder {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &Decoder{r: br}
}

// ReadHeader validates the 11-byte signature, reads (and ignores)
// the 4-byte flags word, and reads-and-skips the header extension
// area. It must be called exactly once before the first NextTuple.
func (d *Decoder) ReadHeader() error {
	var sig [11]byte
	if _, err := io.ReadFull(d.r, sig[:]); err != nil {
		return pgerr.Wrap(pgerr.Protocol, "wire: read signature", err)
	}
	if sig != signature {
		return pgerr.New(pgerr.Protocol, "wire: read signature", fmt.Sprintf("bad COPY signature %q", sig[:]))
	}
	var flags [4]byte
	if _, err := io.ReadFull(d.r, flags[:]); err != nil {
		return pgerr.Wrap(pgerr.Protocol, "wire: read flags", err)
	}
	var extLen [4]byte
	if _, err := io.ReadFull(d.r, extLen[:]); err != nil {
		return pgerr.Wrap(pgerr.Protocol, "wire: read header extension length", err)
	}
	n := binary.BigEndian.Uint32(extLen[:])
	if n > 0 {
		if _, err := io.CopyN(io.Discard, d.r, int64(n)); err != nil {
			return pgerr.Wrap(pgerr.Protocol, "wire: skip header extension", err)
		}
	}
	return nil
}

// NextTuple reads the i16 field count that opens the next tuple. A
// field count of -1 is the stream trailer; done is true and no more
// tuples follow. Any other negative count is a protocol error.
func (d *Decoder) NextTuple() (fieldCount int16, done bool, err error) {
	var b [2]byte
	if _, err := io.ReadFull(d.r, b[:]); err != nil {
		return 0, false, pgerr.Wrap(pgerr.Protocol, "wire: read field count", err)
	}
	n := int16(binary.BigEndian.Uint16(b[:]))
	if n == -1 {
		return 0, true, nil
	}
	if n < 0 {
		return 0, false, pgerr.New(pgerr.Protocol, "wire: read field count", fmt.Sprintf("negative field count %d", n))
	}
	return n, false, nil
}

// ReadField reads the next field's length prefix and payload. A
// length of -1 denotes SQL NULL: isNull is true and the returned
// slice is nil. The returned slice is only valid until the next call
// to ReadField or NextTuple.
func (d *Decoder) ReadField() (payload []byte, isNull bool, err error) {
	var lb [4]byte
	if _, err := io.ReadFull(d.r, lb[:]); err != nil {
		return nil, false, pgerr.Wrap(pgerr.Protocol, "wire: read field length", err)
	}
	n := int32(binary.BigEndian.Uint32(lb[:]))
	if n == -1 {
		return nil, true, nil
	}
	if n < 0 {
		return nil, false, pgerr.New(pgerr.Protocol, "wire: read field length", fmt.Sprintf("negative field length %d", n))
	}
	if cap(d.buf) < int(n) {
		d.buf = make([]byte, n)
	}
	buf := d.buf[:n]
	if _, err := io.ReadFull(d.r, buf); err != nil {
		return nil, false, pgerr.Wrap(pgerr.Protocol, "wire: read field payload", err)
	}
	return buf, false, nil
}

// Reset releases the decoder's scratch buffer. Call it once the
// decoder (and the stream it wraps) is no longer needed.
func (d *Decoder) Reset() {
	d.buf = nil
}
