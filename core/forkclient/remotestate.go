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

package forkclient

import (
	"context"

	libcommon "github.com/erigontech/erigon-lib/common"

	"github.com/erigontech/erigon-devnet/core/state"
)

// RemoteState is a state.WorldState backed by the remote RPC client (with
// DiskCache in front), pinned to a single block number. It is the backing
// state the forked blockchain returns for heights at or before the fork
// point; writes are not supported (history below the fork point is
// immutable from this process's point of view).
type RemoteState struct {
	ctx         context.Context
	client      RPCClient
	cache       *DiskCache
	blockNumber uint64
}

func NewRemoteState(ctx context.Context, client RPCClient, cache *DiskCache, blockNumber uint64) *RemoteState {
	return &RemoteState{ctx: ctx, client: client, cache: cache, blockNumber: blockNumber}
}

func (r *RemoteState) Basic(address libcommon.Address) (*state.AccountInfo, error) {
	if acct, ok := r.cache.GetAccount(address, r.blockNumber); ok {
		return remoteAccountToInfo(r, address, acct), nil
	}
	acct, err := r.client.AccountAt(r.ctx, address, r.blockNumber)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, nil
	}
	_ = r.cache.PutAccount(address, r.blockNumber, acct)
	return remoteAccountToInfo(r, address, acct), nil
}

func remoteAccountToInfo(r *RemoteState, address libcommon.Address, acct *RemoteAccount) *state.AccountInfo {
	info := &state.AccountInfo{Balance: acct.Balance, Nonce: acct.Nonce, CodeHash: acct.CodeHash}
	if acct.CodeHash != libcommon.EmptyCodeHash {
		if code, ok := r.cache.GetCode(acct.CodeHash); ok {
			bc := state.NewBytecode(code)
			info.Code = &bc
		}
	}
	return info
}

func (r *RemoteState) CodeByHash(hash libcommon.Hash) (state.Bytecode, error) {
	if hash == libcommon.EmptyCodeHash {
		return state.Bytecode{Hash: libcommon.EmptyCodeHash}, nil
	}
	if code, ok := r.cache.GetCode(hash); ok {
		return state.NewBytecode(code), nil
	}
	return state.Bytecode{}, state.ErrCodeNotFound
}

// FetchCode pulls code for address from the remote, used by callers that
// know the address but not yet the code hash (the reverse of CodeByHash).
func (r *RemoteState) FetchCode(address libcommon.Address) (libcommon.Bytes, error) {
	code, err := r.client.CodeAt(r.ctx, address, r.blockNumber)
	if err != nil {
		return nil, err
	}
	if len(code) > 0 {
		_ = r.cache.PutCode(libcommon.Keccak256(code), code)
	}
	return code, nil
}

func (r *RemoteState) Storage(address libcommon.Address, index libcommon.U256) (libcommon.U256, error) {
	if v, ok := r.cache.GetStorage(address, index, r.blockNumber); ok {
		return v, nil
	}
	v, err := r.client.StorageAt(r.ctx, address, index, r.blockNumber)
	if err != nil {
		return libcommon.U256{}, err
	}
	_ = r.cache.PutStorage(address, index, r.blockNumber, v)
	return v, nil
}

func (r *RemoteState) StateRoot() (libcommon.Hash, error) {
	if h, ok := r.cache.GetHeader(r.blockNumber); ok {
		return h.StateRoot, nil
	}
	h, err := r.client.HeaderByNumber(r.ctx, r.blockNumber)
	if err != nil {
		return libcommon.Hash{}, err
	}
	_ = r.cache.PutHeader(h)
	return h.StateRoot, nil
}

func (r *RemoteState) ModifyAccount(libcommon.Address, state.AccountModifierFn, func() (state.AccountInfo, error)) (state.AccountInfo, error) {
	return state.AccountInfo{}, state.ErrReadOnlyContext
}

func (r *RemoteState) SetAccountStorageSlot(libcommon.Address, libcommon.U256, libcommon.U256) (libcommon.U256, error) {
	return libcommon.U256{}, state.ErrReadOnlyContext
}

func (r *RemoteState) Clone() state.WorldState {
	return &RemoteState{ctx: r.ctx, client: r.client, cache: r.cache, blockNumber: r.blockNumber}
}
