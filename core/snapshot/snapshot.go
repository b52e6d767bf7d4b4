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

// Package snapshot implements evm_snapshot/evm_revert: capturing and
// restoring the provider engine's full mutable state at a point in time.
// The registry is a monotonic id -> Snapshot map with cascading delete: a
// revert to snapshot N discards N and every snapshot taken after it, since
// those later snapshots' diffs no longer apply to the state N restores.
package snapshot

import (
	"time"

	libcommon "github.com/erigontech/erigon-lib/common"

	"github.com/erigontech/erigon-devnet/core/randhash"
	"github.com/erigontech/erigon-devnet/core/state"
	"github.com/erigontech/erigon-devnet/core/txpool"
)

// Snapshot is a deep, point-in-time copy of every piece of mutable engine
// state that block production and state mutation touch. The world-state
// field is a WorldState handle, not a deep copy of every account: callers
// (MemoryState) clone copy-on-write, so snapshotting it here is cheap and
// later mutation of the live state never observes through to the snapshot.
type Snapshot struct {
	LastBlockNumber     uint64
	BlockTimeOffsetSecs int64
	Beneficiary         libcommon.Address
	Irregular           *state.IrregularState
	Mempool             *txpool.Mempool
	NextBlockBaseFee    *libcommon.U256
	NextBlockTimestamp  *uint64
	Randomness          *randhash.Generator
	WorldState          state.WorldState
	CapturedAt          time.Time
}

func (s *Snapshot) clone() *Snapshot {
	c := *s
	c.Irregular = s.Irregular.Clone()
	c.Mempool = s.Mempool.Clone()
	c.Randomness = s.Randomness.Clone()
	c.WorldState = s.WorldState.Clone()
	if s.NextBlockBaseFee != nil {
		v := *s.NextBlockBaseFee
		c.NextBlockBaseFee = &v
	}
	if s.NextBlockTimestamp != nil {
		v := *s.NextBlockTimestamp
		c.NextBlockTimestamp = &v
	}
	return &c
}
