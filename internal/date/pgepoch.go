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

package date

// pgEpochUnixMicro is the PostgreSQL epoch (2000-01-01 00:00:00 UTC)
// expressed as microseconds since the Unix epoch.
const pgEpochUnixMicro = 946684800000000

// FromPGDate builds a Time from a PostgreSQL "date" wire value: the
// number of days since 2000-01-01.
func FromPGDate(days int32) Time {
	usec := pgEpochUnixMicro + int64(days)*86400*1_000_000
	return UnixMicro(usec)
}

// FromPGTimestamp builds a Time from a PostgreSQL "timestamp" or
// "timestamptz" wire value: the number of microseconds since
// 2000-01-01 00:00:00 UTC. The wire representation carries no zone
// information of its own; timestamptz values are already normalized
// to UTC by the server before transmission.
func FromPGTimestamp(usecSinceEpoch int64) Time {
	return UnixMicro(pgEpochUnixMicro + usecSinceEpoch)
}

// FromPGTimeOfDay builds a Time (on 1970-01-01, the Unix epoch date)
// from a PostgreSQL "time" wire value: microseconds since midnight.
func FromPGTimeOfDay(usec int64) Time {
	return UnixMicro(usec)
}
