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

package blockchain

import (
	"fmt"

	"github.com/erigontech/erigon-lib/chain"
	libcommon "github.com/erigontech/erigon-lib/common"

	"github.com/erigontech/erigon-devnet/core/state"
)

type storedBlock struct {
	block           *Block
	state           state.WorldState
	totalDifficulty libcommon.U256
}

// LocalBlockchain is a synthesized chain rooted at a local genesis block:
// every block is produced by this process's own block producer, so there is
// no remote fork point and no cache.
type LocalBlockchain struct {
	chainID uint64
	specID  chain.Spec

	blocks    []*storedBlock
	byHash    map[libcommon.Hash]*storedBlock
	byTxHash  map[libcommon.Hash]*storedBlock
	// postMergeDifficultyIncrement is 0 for any chain whose spec is already
	// at or past the Merge (difficulty is frozen to 0 by the Merge itself);
	// pre-merge local chains accrue a nominal per-block increment instead of
	// simulating real proof-of-work difficulty adjustment, which is out of
	// scope for a dev node.
	postMergeDifficultyIncrement libcommon.U256
}

// NewLocalBlockchain seeds the chain with a genesis block and the state it
// produced (genesis allocations already applied).
func NewLocalBlockchain(chainID uint64, specID chain.Spec, genesis *Block, genesisState state.WorldState, initialTotalDifficulty libcommon.U256) *LocalBlockchain {
	bc := &LocalBlockchain{
		chainID:  chainID,
		specID:   specID,
		byHash:   make(map[libcommon.Hash]*storedBlock),
		byTxHash: make(map[libcommon.Hash]*storedBlock),
	}
	if !specID.IsPostMerge() {
		bc.postMergeDifficultyIncrement = libcommon.NewU256(1)
	}
	sb := &storedBlock{block: genesis, state: genesisState, totalDifficulty: initialTotalDifficulty}
	bc.blocks = append(bc.blocks, sb)
	bc.index(sb)
	return bc
}

func (bc *LocalBlockchain) index(sb *storedBlock) {
	bc.byHash[sb.block.Hash()] = sb
	for _, tx := range sb.block.Transactions {
		bc.byTxHash[tx] = sb
	}
}

func (bc *LocalBlockchain) LastBlock() *Block { return bc.blocks[len(bc.blocks)-1].block }

func (bc *LocalBlockchain) LastBlockNumber() uint64 { return bc.LastBlock().Number() }

func (bc *LocalBlockchain) BlockByNumber(n uint64) (*Block, error) {
	genesis := bc.blocks[0].block.Number()
	idx := int(n - genesis)
	if idx < 0 || idx >= len(bc.blocks) {
		return nil, ErrBlockNotFound
	}
	return bc.blocks[idx].block, nil
}

func (bc *LocalBlockchain) BlockByHash(hash libcommon.Hash) (*Block, error) {
	sb, ok := bc.byHash[hash]
	if !ok {
		return nil, ErrBlockNotFound
	}
	return sb.block, nil
}

func (bc *LocalBlockchain) BlockByTransactionHash(hash libcommon.Hash) (*Block, error) {
	sb, ok := bc.byTxHash[hash]
	if !ok {
		return nil, ErrBlockNotFound
	}
	return sb.block, nil
}

func (bc *LocalBlockchain) ReceiptByTransactionHash(hash libcommon.Hash) (*Receipt, error) {
	sb, ok := bc.byTxHash[hash]
	if !ok {
		return nil, ErrReceiptNotFound
	}
	for i, tx := range sb.block.Transactions {
		if tx == hash {
			return sb.block.Receipts[i], nil
		}
	}
	return nil, ErrReceiptNotFound
}

func (bc *LocalBlockchain) TotalDifficultyByHash(hash libcommon.Hash) (libcommon.U256, error) {
	sb, ok := bc.byHash[hash]
	if !ok {
		return libcommon.U256{}, ErrBlockNotFound
	}
	return sb.totalDifficulty, nil
}

func (bc *LocalBlockchain) InsertBlock(block *Block, _ *state.StateDiff, resultState state.WorldState) (*Block, error) {
	tip := bc.LastBlock()
	if block.ParentHash() != tip.Hash() {
		return nil, fmt.Errorf("%w: block %d parent %s, tip %s", ErrParentMismatch, block.Number(), block.ParentHash(), tip.Hash())
	}
	parentTD, _ := bc.TotalDifficultyByHash(tip.Hash())
	td, _ := parentTD.Add(bc.postMergeDifficultyIncrement)
	sb := &storedBlock{block: block, state: resultState, totalDifficulty: td}
	bc.blocks = append(bc.blocks, sb)
	bc.index(sb)
	return block, nil
}

func (bc *LocalBlockchain) RevertToBlock(n uint64) error {
	genesis := bc.blocks[0].block.Number()
	idx := int(n - genesis)
	if idx < 0 || idx >= len(bc.blocks) {
		return ErrBlockNotFound
	}
	for _, sb := range bc.blocks[idx+1:] {
		delete(bc.byHash, sb.block.Hash())
		for _, tx := range sb.block.Transactions {
			delete(bc.byTxHash, tx)
		}
	}
	bc.blocks = bc.blocks[:idx+1]
	return nil
}

func (bc *LocalBlockchain) StateAtBlockNumber(n uint64, overrides []*state.StateOverride) (state.WorldState, error) {
	genesis := bc.blocks[0].block.Number()
	idx := int(n - genesis)
	if idx < 0 || idx >= len(bc.blocks) {
		return nil, ErrBlockNotFound
	}
	return state.NewContextualState(n, bc.blocks[idx].state, overrides), nil
}

func (bc *LocalBlockchain) ChainID() uint64     { return bc.chainID }
func (bc *LocalBlockchain) SpecID() chain.Spec  { return bc.specID }
