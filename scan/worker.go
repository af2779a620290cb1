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
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/Mytherin/postgres-scanner/bind"
	"github.com/Mytherin/postgres-scanner/pgerr"
	"github.com/Mytherin/postgres-scanner/predicate"
	"github.com/Mytherin/postgres-scanner/wire"
)

// worker owns one exclusive connection to the server and drains
// PageRangeTasks from a SharedCursor until it is empty, decoding each
// task's rows into Chunks and handing them to sink.
type worker struct {
	dsn     string
	desc    bind.ScanDescriptor
	columns []bind.ColumnDescriptor // projected subset of desc.Columns
	cursor  *SharedCursor
	sink    ChunkSink
	filter  predicate.Node // nil means no pushdown
	id      int
}

// run adopts the bound snapshot (when one was exported) and then
// loops: take a task, run its COPY, decode every tuple, flush full
// chunks, move on. It returns nil once the cursor reports no more
// tasks, or the first error (including cooperative cancellation).
func (w *worker) run(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, w.dsn)
	if err != nil {
		return pgerr.Wrap(pgerr.Connection, fmt.Sprintf("scan: worker[%d] connect", w.id), err)
	}
	defer conn.Close(ctx)

	tx, err := conn.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return pgerr.Wrap(pgerr.Connection, fmt.Sprintf("scan: worker[%d] begin", w.id), err)
	}
	defer tx.Rollback(ctx)

	if w.desc.SnapshotID != "" {
		_, err := tx.Exec(ctx, fmt.Sprintf("SET TRANSACTION SNAPSHOT '%s'", w.desc.SnapshotID))
		if err != nil {
			return pgerr.Wrap(pgerr.Connection, fmt.Sprintf("scan: worker[%d] adopt snapshot", w.id), err)
		}
	}

	tmpl := buildQuery(w.desc, w.columns, w.filter)
	chunk := newChunk(len(w.columns))

	for {
		if err := checkCanceled(ctx); err != nil {
			return err
		}
		task, ok := w.cursor.Next()
		if !ok {
			break
		}
		if err := w.scanTask(ctx, tx, tmpl, task, chunk); err != nil {
			return err
		}
	}

	if chunk.Len() > 0 {
		if err := w.sink.WriteChunk(ctx, w.columns, chunk); err != nil {
			return pgerr.Wrap(pgerr.Connection, fmt.Sprintf("scan: worker[%d] write chunk", w.id), err)
		}
	}
	return nil
}

func (w *worker) scanTask(ctx context.Context, tx pgx.Tx, tmpl queryTemplate, task PageRangeTask, chunk *Chunk) error {
	taskQuery := tmpl.render(task)

	var buf bytes.Buffer
	_, err := tx.Conn().PgConn().CopyTo(ctx, &buf, fmt.Sprintf("COPY (%s) TO STDOUT (FORMAT BINARY)", taskQuery))
	if err != nil {
		return pgerr.Wrap(pgerr.Connection, fmt.Sprintf("scan: worker[%d] copy", w.id), err)
	}

	dec := wire.NewDecoder(&buf)
	if err := dec.ReadHeader(); err != nil {
		return err
	}
	for {
		if err := checkCanceled(ctx); err != nil {
			return err
		}
		n, done, err := dec.NextTuple()
		if err != nil {
			return err
		}
		if done {
			break
		}
		// n is len(columns)+1: the synthetic leading ctid field.
		if int(n) != len(w.columns)+1 {
			return pgerr.New(pgerr.Protocol, fmt.Sprintf("scan: worker[%d] decode tuple", w.id),
				fmt.Sprintf("got %d fields, want %d", n, len(w.columns)+1))
		}

		ctidPayload, isNull, err := dec.ReadField()
		if err != nil {
			return err
		}
		if isNull {
			return pgerr.New(pgerr.Protocol, fmt.Sprintf("scan: worker[%d] decode tuple", w.id), "ctid field is null")
		}
		block, offset, err := ParseCTID(string(wire.DecodeText(ctidPayload)))
		if err != nil {
			return err
		}

		values := make([]any, len(w.columns))
		for i, col := range w.columns {
			payload, isNull, err := dec.ReadField()
			if err != nil {
				return err
			}
			if isNull {
				continue
			}
			v, err := decodeValue(col, payload)
			if err != nil {
				return pgerr.Wrap(pgerr.UnsupportedType, fmt.Sprintf("scan: worker[%d] decode column %q", w.id, col.Name), err)
			}
			values[i] = v
		}

		chunk.append(RowID(block, offset), values)
		if chunk.full() {
			if err := w.sink.WriteChunk(ctx, w.columns, chunk); err != nil {
				return pgerr.Wrap(pgerr.Connection, fmt.Sprintf("scan: worker[%d] write chunk", w.id), err)
			}
			*chunk = *newChunk(len(w.columns))
		}
	}
	return nil
}

// queryTemplate holds the static prefix/suffix of a task's COPY
// query around the one part that varies per task: the ctid page
// range. Splitting it this way (rather than building the whole
// string with fmt.Sprintf) keeps a "%" in a pushed-down string
// literal or LIKE pattern from ever being mistaken for a verb.
type queryTemplate struct {
	prefix string // up to and including "WHERE ctid >= ('("
	suffix string // from ",0')::tid" through any AND <predicate>
}

func (t queryTemplate) render(task PageRangeTask) string {
	var b strings.Builder
	b.WriteString(t.prefix)
	b.WriteString(strconv.FormatUint(task.StartPage, 10))
	b.WriteString(",0')::tid AND ctid < ('(")
	b.WriteString(strconv.FormatUint(task.EndPage, 10))
	b.WriteString(t.suffix)
	return b.String()
}

// buildQuery renders the static parts of the SELECT every task's COPY
// wraps, projecting only columns (the caller's resolved projection,
// defaulting to every bound column). The leading projected column is
// always ctid::text, letting the worker decode row identity without
// depending on a binary ctid codec, regardless of whether the caller's
// projection names the row identifier explicitly.
func buildQuery(desc bind.ScanDescriptor, columns []bind.ColumnDescriptor, filter predicate.Node) queryTemplate {
	var b strings.Builder
	b.WriteString("SELECT ctid::text")
	for _, col := range columns {
		b.WriteString(", ")
		b.WriteString(quoteIdent(col.Name))
		if col.NeedsTextCast {
			b.WriteString("::VARCHAR")
		}
	}
	b.WriteString(" FROM ")
	b.WriteString(quoteIdent(desc.Schema))
	b.WriteString(".")
	b.WriteString(quoteIdent(desc.Table))
	b.WriteString(" WHERE ctid >= ('(")
	prefix := b.String()

	var suffix strings.Builder
	suffix.WriteString(",0')::tid")
	if filter != nil {
		if rendered, err := predicate.Render(filter); err == nil {
			suffix.WriteString(" AND ")
			suffix.WriteString(rendered)
		}
		// an UnsupportedPredicate error here is swallowed
		// deliberately: pushdown is an optimization, and falling
		// back to scanning the range unfiltered is always correct.
	}
	return queryTemplate{prefix: prefix, suffix: suffix.String()}
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
