// Copyright 2024 The Erigon Authors
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

// Package filter implements the three event filter kinds a dev-node serves:
// new blocks, new pending transactions, and logs. Each filter buffers events
// until drained; polling filters drain on GetFilterChanges, subscriptions
// are removed instead of drained by the transport layer once it has
// delivered an event.
package filter

import (
	libcommon "github.com/erigontech/erigon-lib/common"

	"github.com/erigontech/erigon-devnet/core/evmexec"
)

type Kind int

const (
	NewBlocks Kind = iota
	NewPendingTransactions
	Logs
)

func (k Kind) String() string {
	switch k {
	case NewBlocks:
		return "newBlocks"
	case NewPendingTransactions:
		return "newPendingTransactions"
	case Logs:
		return "logs"
	default:
		return "unknown"
	}
}

// LogEntry is a single matched log, tagged with the block it came from so
// callers can resolve full context without a second lookup.
type LogEntry struct {
	BlockNumber uint64
	BlockHash   libcommon.Hash
	Log         evmexec.Log
}

// Filter is one registered subscription or poll handle. IsSubscription
// distinguishes an eth_subscribe-style filter (removed outright once the
// transport has delivered its events) from an eth_newFilter-style polling
// filter (drained repeatedly via GetFilterChanges until explicitly removed).
type Filter struct {
	ID             libcommon.U256
	Kind           Kind
	IsSubscription bool
	Criteria       *LogCriteria // non-nil only for Kind == Logs

	blockEvents []libcommon.Hash
	txEvents    []libcommon.Hash
	logEvents   []LogEntry
}

// takeBlocks, takeTransactions and takeLogs drain and return a filter's
// buffered events; the buffer is empty afterward regardless of kind.
func (f *Filter) takeBlocks() []libcommon.Hash {
	out := f.blockEvents
	f.blockEvents = nil
	return out
}

func (f *Filter) takeTransactions() []libcommon.Hash {
	out := f.txEvents
	f.txEvents = nil
	return out
}

func (f *Filter) takeLogs() []LogEntry {
	out := f.logEvents
	f.logEvents = nil
	return out
}
