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

import "math"

// PageRangeTask is one unit of work: a half-open range of physical
// pages [StartPage, EndPage) to scan via the ctid range predicate
// ctid >= '(StartPage,0)' AND ctid < '(EndPage,0)'.
type PageRangeTask struct {
	StartPage uint64
	EndPage   uint64
}

// SharedCursor hands out PageRangeTask values from a single
// monotonically advancing cursor, shared by every worker in a scan.
// It is the concurrency primitive that lets an arbitrary number of
// workers drain a fixed page range without any one of them owning a
// fixed slice of it up front: a worker that finishes its rows faster
// just asks for another task.
type SharedCursor struct {
	pagesPerTask uint64
	totalPages   uint64

	mu   chan struct{} // 1-buffered mutex; see Next()
	next uint64
}

// NewSharedCursor builds a cursor over approxPageCount pages, handed
// out pagesPerTask pages at a time. The final task's EndPage is
// extended to math.MaxUint32 rather than stopping at approxPageCount,
// because relpages is a planner estimate, not an authoritative page
// count: a table that has grown since the last ANALYZE would silently
// lose its tail rows if the last task stopped exactly at the estimate.
func NewSharedCursor(approxPageCount, pagesPerTask uint64) *SharedCursor {
	if pagesPerTask == 0 {
		pagesPerTask = 1
	}
	c := &SharedCursor{
		pagesPerTask: pagesPerTask,
		totalPages:   approxPageCount,
		mu:           make(chan struct{}, 1),
	}
	c.mu <- struct{}{}
	return c
}

// Next returns the next PageRangeTask, or ok=false once the cursor has
// passed the table's estimated page count. The very last task (the
// one whose StartPage+pagesPerTask reaches totalPages) always ends at
// math.MaxUint32 so it covers any pages beyond the estimate.
func (c *SharedCursor) Next() (task PageRangeTask, ok bool) {
	<-c.mu
	defer func() { c.mu <- struct{}{} }()

	if c.next >= c.totalPages {
		return PageRangeTask{}, false
	}
	start := c.next
	end := start + c.pagesPerTask
	if end >= c.totalPages {
		end = math.MaxUint32
	}
	c.next = end
	return PageRangeTask{StartPage: start, EndPage: end}, true
}
