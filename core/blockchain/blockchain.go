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

// Package blockchain is the append-only block/receipt index behind the
// provider engine: an ordered sequence of blocks plus secondary indexes by
// hash and by transaction hash, in a local-genesis variant and a
// remote-fork variant, dispatched through a common interface rather than a
// closed sum type.
package blockchain

import (
	"github.com/erigontech/erigon-lib/chain"
	libcommon "github.com/erigontech/erigon-lib/common"

	"github.com/erigontech/erigon-devnet/core/state"
)

// Blockchain is the capability set the provider engine needs from either
// backend: last_block, block_by_*, state_at_block_number, insert_block,
// revert_to_block, receipt_by_transaction_hash, total_difficulty_by_hash,
// chain_id, spec_id.
type Blockchain interface {
	LastBlock() *Block
	LastBlockNumber() uint64
	BlockByNumber(n uint64) (*Block, error)
	BlockByHash(hash libcommon.Hash) (*Block, error)
	BlockByTransactionHash(hash libcommon.Hash) (*Block, error)
	ReceiptByTransactionHash(hash libcommon.Hash) (*Receipt, error)
	TotalDifficultyByHash(hash libcommon.Hash) (libcommon.U256, error)
	// InsertBlock appends block together with the resulting world state
	// snapshot; diff is the StateDiff produced by mining it, which
	// LocalBlockchain accepts but does not store. Fails with
	// ErrParentMismatch if block.ParentHash() doesn't match the current tip.
	InsertBlock(block *Block, diff *state.StateDiff, resultState state.WorldState) (*Block, error)
	// RevertToBlock truncates every block with number > n. Idempotent when
	// n equals the current height.
	RevertToBlock(n uint64) error
	// StateAtBlockNumber returns a contextual read view of the state as of
	// block n with overrides layered atop it.
	StateAtBlockNumber(n uint64, overrides []*state.StateOverride) (state.WorldState, error)
	ChainID() uint64
	SpecID() chain.Spec
}
