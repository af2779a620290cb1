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

// Package scan drives the parallel table scan: a SharedCursor hands
// page-range tasks out to a fixed worker pool, each worker runs its
// own COPY over its own connection under the bound snapshot, decodes
// the binary tuples it receives, and flushes them to a ChunkSink.
package scan

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/Mytherin/postgres-scanner/bind"
	"github.com/Mytherin/postgres-scanner/predicate"
)

// DefaultMaxWorkers is used when Options.MaxWorkers is zero.
var DefaultMaxWorkers = runtime.GOMAXPROCS(0)

// Options configures a Run call.
type Options struct {
	// MaxWorkers caps how many connections the scan opens
	// concurrently. Zero selects DefaultMaxWorkers.
	MaxWorkers int

	// Filter, when non-nil, is pushed down into every task's COPY
	// query as an additional WHERE term. A filter this package can't
	// translate is dropped silently rather than failing the scan.
	Filter predicate.Node

	// ProjectedColumns, when non-nil, restricts the scan to only
	// these columns of desc.Columns, named by index in the order they
	// should be projected; ProjectedRowID selects the row identifier
	// already always carried in Chunk.RowIDs. A nil slice projects
	// every column.
	ProjectedColumns []int
}

// Run scans every row of the bound table, in page-range tasks fanned
// out across up to Options.MaxWorkers connections, decoding tuples
// and flushing Chunks to sink. It returns the first error any worker
// produces (including ctx cancellation) and stops the remaining
// workers as soon as one fails.
func Run(ctx context.Context, dsn string, desc bind.ScanDescriptor, sink ChunkSink, opts Options) error {
	maxWorkers := opts.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = DefaultMaxWorkers
	}
	if maxWorkers < 1 {
		maxWorkers = 1
	}

	columns, err := resolveProjection(desc.Columns, opts.ProjectedColumns)
	if err != nil {
		return err
	}

	cursor := NewSharedCursor(desc.ApproxPageCount, desc.PagesPerTask)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < maxWorkers; i++ {
		w := &worker{
			dsn:     dsn,
			desc:    desc,
			columns: columns,
			cursor:  cursor,
			sink:    sink,
			filter:  opts.Filter,
			id:      i,
		}
		g.Go(func() error { return w.run(gctx) })
	}
	return g.Wait()
}
