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

package state

import (
	"errors"
	"fmt"

	libcommon "github.com/erigontech/erigon-lib/common"
)

// ErrReadOnlyContext is returned by ContextualState's write methods: a
// contextual state is a point-in-time read view layering irregular
// overrides onto a canonical base, not a place state mutations land.
var ErrReadOnlyContext = errors.New("state: contextual state is read-only")

// ContextualState is the world-state view backing state_at_block_number: a
// canonical per-block base (the state the blockchain store recorded when it
// inserted block N, or a remote-backed reader for forked history) layered
// with every irregular override at a height <= N, in height order, so a
// later override always supersedes an earlier one touching the same
// address or slot. The key is a block number; the backing transaction is an
// in-memory base plus an override list rather than a temporal DB transaction
// keyed by tx-num.
type ContextualState struct {
	blockNumber uint64
	trace       bool
	base        WorldState
	overrides   []*StateOverride
}

// NewContextualState layers overrides (already filtered and ordered by the
// caller to heights <= blockNumber) on top of base.
func NewContextualState(blockNumber uint64, base WorldState, overrides []*StateOverride) *ContextualState {
	return &ContextualState{blockNumber: blockNumber, base: base, overrides: overrides}
}

func (r *ContextualState) String() string { return fmt.Sprintf("blockNumber:%d", r.blockNumber) }

// SetBlockNumber and GetBlockNumber set and report the height label. Reads
// always come from the base and overrides given to NewContextualState;
// changing the label does not change what they return.
func (r *ContextualState) SetBlockNumber(n uint64) { r.blockNumber = n }
func (r *ContextualState) GetBlockNumber() uint64  { return r.blockNumber }
func (r *ContextualState) SetTrace(trace bool)     { r.trace = trace }

func (r *ContextualState) Basic(address libcommon.Address) (*AccountInfo, error) {
	info, err := r.base.Basic(address)
	if err != nil {
		return nil, fmt.Errorf("contextual basic(%s): %w", address, err)
	}
	for _, ov := range r.overrides {
		if d, ok := ov.Diff.Get(address); ok && d.Info != nil {
			clone := d.Info.Clone()
			info = &clone
		}
	}
	if r.trace {
		fmt.Printf("Basic [%x] => %+v\n", address, info)
	}
	return info, nil
}

func (r *ContextualState) CodeByHash(hash libcommon.Hash) (Bytecode, error) {
	if hash == libcommon.EmptyCodeHash {
		return Bytecode{Hash: libcommon.EmptyCodeHash}, nil
	}
	for i := len(r.overrides) - 1; i >= 0; i-- {
		for _, addr := range r.overrides[i].Diff.Accounts() {
			d, _ := r.overrides[i].Diff.Get(addr)
			if d.Info != nil && d.Info.Code != nil && d.Info.Code.Hash == hash {
				return *d.Info.Code, nil
			}
		}
	}
	return r.base.CodeByHash(hash)
}

func (r *ContextualState) Storage(address libcommon.Address, index libcommon.U256) (libcommon.U256, error) {
	value, err := r.base.Storage(address, index)
	if err != nil {
		return libcommon.U256{}, err
	}
	for _, ov := range r.overrides {
		if d, ok := ov.Diff.Get(address); ok {
			if slot, ok := d.Storage[index]; ok {
				value = slot.PresentValue
			}
		}
	}
	if r.trace {
		fmt.Printf("Storage [%x %x] => %x\n", address, index, value)
	}
	return value, nil
}

// StateRoot returns the synthetic root of the most recent override layered
// in, if any (forced writes bypass execution and so cannot share a
// canonical root), else the base's own root.
func (r *ContextualState) StateRoot() (libcommon.Hash, error) {
	if len(r.overrides) > 0 {
		return r.overrides[len(r.overrides)-1].StateRoot, nil
	}
	return r.base.StateRoot()
}

func (r *ContextualState) ModifyAccount(libcommon.Address, AccountModifierFn, func() (AccountInfo, error)) (AccountInfo, error) {
	return AccountInfo{}, ErrReadOnlyContext
}

func (r *ContextualState) SetAccountStorageSlot(libcommon.Address, libcommon.U256, libcommon.U256) (libcommon.U256, error) {
	return libcommon.U256{}, ErrReadOnlyContext
}

func (r *ContextualState) Clone() WorldState {
	out := make([]*StateOverride, len(r.overrides))
	copy(out, r.overrides)
	return &ContextualState{blockNumber: r.blockNumber, trace: r.trace, base: r.base.Clone(), overrides: out}
}
