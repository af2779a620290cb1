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

package scan

import (
	"context"

	"github.com/Mytherin/postgres-scanner/bind"
)

// defaultChunkRows caps how many decoded rows accumulate before a
// worker flushes a Chunk to its sink, bounding a worker's resident
// memory independent of table size.
const defaultChunkRows = 4096

// ColumnChunk is one column's worth of decoded values across a Chunk.
// Values holds exactly len(Chunk.RowIDs) entries, boxed per-row
// because a column's target pgtype.Kind determines which concrete Go
// type each non-null entry holds (bool, int16, int32, int64, uint32,
// float32, float64, string, []byte, date.Time, wire.Interval,
// uuid.UUID, int enum ordinal, or []any for ListKind; decimals are
// int64 scaled by 10^scale and timetz values are int64
// microseconds); Values[i] is
// nil exactly when the row is SQL NULL in this column.
type ColumnChunk struct {
	Values []any
}

// Chunk is one batch of decoded rows, laid out column-major so a
// ChunkSink can append each column's values to its own destination
// buffer without re-walking row boundaries.
type Chunk struct {
	Columns []ColumnChunk
	RowIDs  []int64
}

// Len reports how many rows are in the chunk.
func (c *Chunk) Len() int { return len(c.RowIDs) }

func newChunk(ncols int) *Chunk {
	cols := make([]ColumnChunk, ncols)
	return &Chunk{Columns: cols}
}

func (c *Chunk) append(rowID int64, values []any) {
	c.RowIDs = append(c.RowIDs, rowID)
	for i, v := range values {
		c.Columns[i].Values = append(c.Columns[i].Values, v)
	}
}

func (c *Chunk) full() bool { return len(c.RowIDs) >= defaultChunkRows }

// ChunkSink receives the decoded Chunks a scan produces, one table
// worth of columns at a time; it is called concurrently from every
// worker goroutine and must serialize its own writes. Columns is the
// scan's projected column list (every ScanDescriptor.Columns entry
// when no projection was requested), in the order of Chunk.Columns.
type ChunkSink interface {
	WriteChunk(ctx context.Context, columns []bind.ColumnDescriptor, chunk *Chunk) error
}
