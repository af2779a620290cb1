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

// Package bind introspects a remote PostgreSQL table and produces a
// stable ScanDescriptor: the column list, mapped types, an exported
// snapshot, and a page-count estimate for the Scan Coordinator.
package bind

import (
	"github.com/Mytherin/postgres-scanner/pgtype"
)

// ColumnDescriptor is one column of a bound table, immutable once
// the bind completes.
type ColumnDescriptor struct {
	Name string

	RemoteNamespace string
	RemoteTypeName  string
	RemoteKind      pgtype.RemoteKind
	TypeLength      int16
	TypeModifier    int32

	// ElementTypeName/ElementKind/ElementOID are populated only
	// when RemoteKind == pgtype.Array.
	ElementTypeName string
	ElementKind     pgtype.RemoteKind
	ElementOID      uint32

	Target        pgtype.Type
	NeedsTextCast bool
}

// ScanDescriptor is the immutable, read-only-shared result of a
// bind: everything every worker needs to know about the table being
// scanned and the snapshot it should read under.
type ScanDescriptor struct {
	Schema string
	Table  string

	Columns []ColumnDescriptor

	// ApproxPageCount is the server's best estimate of the
	// relation's physical page count, always >= 1. It is not
	// authoritative: the last page-range task extends to
	// math.MaxUint32 to cover any pages beyond this estimate.
	ApproxPageCount uint64

	// SnapshotID is the exported snapshot every worker adopts so
	// they all see the same consistent view. It is empty when
	// InRecovery is true, since a replica in recovery has no
	// writable transaction to export a snapshot from.
	SnapshotID string
	InRecovery bool

	// PagesPerTask sizes the page-range tasks the Scan Coordinator
	// hands out; it must be > 0.
	PagesPerTask uint64
}
