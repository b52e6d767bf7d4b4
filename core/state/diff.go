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

import libcommon "github.com/erigontech/erigon-lib/common"

// AccountDiff is the change recorded for a single account within a block: an
// optional account-info replacement and a set of storage-slot changes keyed
// by index.
type AccountDiff struct {
	Info    *AccountInfo
	Storage map[libcommon.U256]StorageSlot
}

func newAccountDiff() *AccountDiff {
	return &AccountDiff{Storage: make(map[libcommon.U256]StorageSlot)}
}

// StateDiff is the mapping from address to accumulated account change for a
// single block. Application is commutative within a block: the diff records
// insertion order via Order, but replaying entries in any order that
// respects "last write per (address[, slot]) wins" yields the same result.
type StateDiff struct {
	accounts map[libcommon.Address]*AccountDiff
	Order    []libcommon.Address
}

func NewStateDiff() *StateDiff {
	return &StateDiff{accounts: make(map[libcommon.Address]*AccountDiff)}
}

// FromGenesisAccounts builds a StateDiff seeding every given address with
// the given account info, used to construct genesis state and fork
// account-override state.
func FromGenesisAccounts(accounts map[libcommon.Address]AccountInfo) *StateDiff {
	d := NewStateDiff()
	for addr, info := range accounts {
		infoCopy := info.Clone()
		d.ApplyAccountChange(addr, infoCopy)
	}
	return d
}

func (d *StateDiff) entry(addr libcommon.Address) *AccountDiff {
	e, ok := d.accounts[addr]
	if !ok {
		e = newAccountDiff()
		d.accounts[addr] = e
		d.Order = append(d.Order, addr)
	}
	return e
}

// ApplyAccountChange records the post-change AccountInfo for addr. A later
// call for the same address replaces the earlier one.
func (d *StateDiff) ApplyAccountChange(addr libcommon.Address, info AccountInfo) {
	e := d.entry(addr)
	infoCopy := info.Clone()
	e.Info = &infoCopy
}

// ApplyStorageChange records a single storage-slot change for addr,
// optionally also updating the account info (set_account_storage_slot does
// not change balance/nonce/code, so info may be nil).
func (d *StateDiff) ApplyStorageChange(addr libcommon.Address, index libcommon.U256, slot StorageSlot, info *AccountInfo) {
	e := d.entry(addr)
	if info != nil {
		infoCopy := info.Clone()
		e.Info = &infoCopy
	}
	e.Storage[index] = slot
}

// Accounts returns the addresses that have a diff, in insertion order; Get
// returns the diff for one of them.
func (d *StateDiff) Accounts() []libcommon.Address {
	out := make([]libcommon.Address, len(d.Order))
	copy(out, d.Order)
	return out
}

func (d *StateDiff) Get(addr libcommon.Address) (*AccountDiff, bool) {
	e, ok := d.accounts[addr]
	return e, ok
}

// Clone deep-copies the diff, used when a StateOverride is captured in a
// snapshot.
func (d *StateDiff) Clone() *StateDiff {
	out := NewStateDiff()
	for _, addr := range d.Order {
		src := d.accounts[addr]
		dst := newAccountDiff()
		if src.Info != nil {
			infoCopy := src.Info.Clone()
			dst.Info = &infoCopy
		}
		for k, v := range src.Storage {
			dst.Storage[k] = v
		}
		out.accounts[addr] = dst
		out.Order = append(out.Order, addr)
	}
	return out
}
