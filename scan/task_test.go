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
	"math"
	"sync"
	"testing"
)

func TestSharedCursorCoversWholeRangeAndExtendsLast(t *testing.T) {
	c := NewSharedCursor(25, 10)

	t1, ok := c.Next()
	if !ok || t1.StartPage != 0 || t1.EndPage != 10 {
		t.Fatalf("task 1: %+v ok=%v", t1, ok)
	}
	t2, ok := c.Next()
	if !ok || t2.StartPage != 10 || t2.EndPage != 20 {
		t.Fatalf("task 2: %+v ok=%v", t2, ok)
	}
	t3, ok := c.Next()
	if !ok || t3.StartPage != 20 || t3.EndPage != math.MaxUint32 {
		t.Fatalf("task 3 (last, extended): %+v ok=%v", t3, ok)
	}
	_, ok = c.Next()
	if ok {
		t.Fatalf("expected cursor exhausted")
	}
}

func TestSharedCursorConcurrentDrainNeverRepeatsATask(t *testing.T) {
	c := NewSharedCursor(1000, 10)
	seen := make(map[uint64]bool)
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				task, ok := c.Next()
				if !ok {
					return
				}
				mu.Lock()
				if seen[task.StartPage] {
					t.Errorf("task starting at %d handed out twice", task.StartPage)
				}
				seen[task.StartPage] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if len(seen) != 100 {
		t.Fatalf("got %d distinct tasks, want 100", len(seen))
	}
}
