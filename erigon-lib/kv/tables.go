// Copyright 2021 The Erigon Authors
// This file is part of Erigon.
//
// Erigon is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Erigon is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Erigon. If not, see <http://www.gnu.org/licenses/>.

// Package kv names the on-disk buckets used by the fork RPC client's cache.
// A full chain-database schema (headers, bodies, history, changesets, ...)
// is out of scope: this core doesn't persist to disk beyond the fork cache,
// so only the handful of buckets that cache actually needs are kept here.
package kv

// DBSchemaVersion identifies the fork-cache bucket layout, bumped whenever a
// bucket's key or value encoding changes. DiskCache neither writes it to
// nor checks it against an existing cache file.
var DBSchemaVersion = struct{ Major, Minor, Patch uint32 }{Major: 1, Minor: 0, Patch: 0}

const (
	// ForkBlockByNumber
	// key   - 8-byte big-endian block number
	// value - JSON-encoded remote block header
	ForkBlockByNumber = "ForkBlockByNumber"

	// ForkBlockByHash
	// key   - 32-byte block hash
	// value - 8-byte big-endian block number (secondary index into ForkBlockByNumber)
	ForkBlockByHash = "ForkBlockByHash"

	// ForkAccountAt
	// key   - 20-byte address + 8-byte big-endian block number
	// value - JSON-encoded account (balance, nonce, code hash)
	ForkAccountAt = "ForkAccountAt"

	// ForkStorageAt
	// key   - 20-byte address + 32-byte slot index + 8-byte big-endian block number
	// value - 32-byte storage value
	ForkStorageAt = "ForkStorageAt"

	// ForkCodeByHash
	// key   - 32-byte code hash
	// value - contract bytecode
	ForkCodeByHash = "ForkCodeByHash"
)

// Buckets lists every bucket the fork cache must create on open.
var Buckets = []string{
	ForkBlockByNumber,
	ForkBlockByHash,
	ForkAccountAt,
	ForkStorageAt,
	ForkCodeByHash,
}
