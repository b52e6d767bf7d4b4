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
	"context"
	"fmt"

	"github.com/erigontech/erigon-lib/chain"
	libcommon "github.com/erigontech/erigon-lib/common"

	"github.com/erigontech/erigon-devnet/core/forkclient"
	"github.com/erigontech/erigon-devnet/core/state"
)

// ForkedBlockchain splits at forkBlockNumber: every height below it
// resolves against the remote chain (forkclient.RPCClient); the fork block
// itself is the local chain's genesis, and every height above it is a block
// mined locally since the fork, stored the same way LocalBlockchain stores
// its chain.
type ForkedBlockchain struct {
	ctx context.Context

	client          forkclient.RPCClient
	cache           *forkclient.DiskCache
	forkBlockNumber uint64

	local *LocalBlockchain
}

// NewForkedBlockchain forks at forkBlockNumber: the provided remote header
// becomes the local suffix's synthetic "genesis" (the first block the local
// chain can build directly on top of). cache backs the remote state reads
// (accounts, storage, code) so a restarted engine doesn't re-fetch them;
// block lookups below the fork point go to client directly and are not
// cached.
func NewForkedBlockchain(ctx context.Context, client forkclient.RPCClient, cache *forkclient.DiskCache, chainID uint64, specID chain.Spec, forkBlockNumber uint64, forkHeader *Header, initialTotalDifficulty libcommon.U256) *ForkedBlockchain {
	remoteState := forkclient.NewRemoteState(ctx, client, cache, forkBlockNumber)
	genesis := &Block{Header: forkHeader}
	local := NewLocalBlockchain(chainID, specID, genesis, remoteState, initialTotalDifficulty)
	return &ForkedBlockchain{ctx: ctx, client: client, cache: cache, forkBlockNumber: forkBlockNumber, local: local}
}

func (bc *ForkedBlockchain) isLocal(n uint64) bool { return n >= bc.forkBlockNumber }

func (bc *ForkedBlockchain) LastBlock() *Block      { return bc.local.LastBlock() }
func (bc *ForkedBlockchain) LastBlockNumber() uint64 { return bc.local.LastBlockNumber() }

func (bc *ForkedBlockchain) BlockByNumber(n uint64) (*Block, error) {
	if bc.isLocal(n) {
		return bc.local.BlockByNumber(n)
	}
	remote, err := bc.client.BlockByNumber(bc.ctx, n)
	if err != nil {
		return nil, fmt.Errorf("forked blockchain: fetch block %d: %w", n, err)
	}
	return remoteToBlock(remote), nil
}

func (bc *ForkedBlockchain) BlockByHash(hash libcommon.Hash) (*Block, error) {
	if block, err := bc.local.BlockByHash(hash); err == nil {
		return block, nil
	}
	// Not found locally: the caller would need a remote hash->number index
	// to resolve this, which this minimal client does not maintain; callers
	// resolve pre-fork blocks by number instead.
	return nil, ErrBlockNotFound
}

func (bc *ForkedBlockchain) BlockByTransactionHash(hash libcommon.Hash) (*Block, error) {
	return bc.local.BlockByTransactionHash(hash)
}

func (bc *ForkedBlockchain) ReceiptByTransactionHash(hash libcommon.Hash) (*Receipt, error) {
	return bc.local.ReceiptByTransactionHash(hash)
}

func (bc *ForkedBlockchain) TotalDifficultyByHash(hash libcommon.Hash) (libcommon.U256, error) {
	return bc.local.TotalDifficultyByHash(hash)
}

func (bc *ForkedBlockchain) InsertBlock(block *Block, diff *state.StateDiff, resultState state.WorldState) (*Block, error) {
	return bc.local.InsertBlock(block, diff, resultState)
}

func (bc *ForkedBlockchain) RevertToBlock(n uint64) error {
	if !bc.isLocal(n) {
		return fmt.Errorf("%w: cannot revert below fork point %d", ErrBlockNotFound, bc.forkBlockNumber)
	}
	return bc.local.RevertToBlock(n)
}

func (bc *ForkedBlockchain) StateAtBlockNumber(n uint64, overrides []*state.StateOverride) (state.WorldState, error) {
	if bc.isLocal(n) {
		return bc.local.StateAtBlockNumber(n, overrides)
	}
	remoteState := forkclient.NewRemoteState(bc.ctx, bc.client, bc.cache, n)
	return state.NewContextualState(n, remoteState, overrides), nil
}

func (bc *ForkedBlockchain) ChainID() uint64 { return bc.local.ChainID() }
func (bc *ForkedBlockchain) SpecID() chain.Spec { return bc.local.SpecID() }

func remoteToBlock(remote *forkclient.RemoteBlock) *Block {
	h := &Header{
		Number:        remote.Header.Number,
		ParentHash:    remote.Header.ParentHash,
		Timestamp:     remote.Header.Timestamp,
		Beneficiary:   remote.Header.Beneficiary,
		BaseFeePerGas: remote.Header.BaseFeePerGas,
		GasLimit:      remote.Header.GasLimit,
		GasUsed:       remote.Header.GasUsed,
		StateRoot:     remote.Header.StateRoot,
	}
	return &Block{Header: h, Transactions: remote.Transactions}
}
