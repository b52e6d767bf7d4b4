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
	"github.com/google/btree"

	libcommon "github.com/erigontech/erigon-lib/common"
)

// StateOverride is a forced, non-transactional mutation attached to a block
// height, together with a synthetic state root: forced writes bypass normal
// transaction execution, so they cannot share the canonical root.
type StateOverride struct {
	Diff      *StateDiff
	StateRoot libcommon.Hash
}

func newStateOverride(stateRoot libcommon.Hash) *StateOverride {
	return &StateOverride{Diff: NewStateDiff(), StateRoot: stateRoot}
}

func (o *StateOverride) clone() *StateOverride {
	return &StateOverride{Diff: o.Diff.Clone(), StateRoot: o.StateRoot}
}

type overrideEntry struct {
	blockNumber uint64
	override    *StateOverride
}

func overrideLess(a, b overrideEntry) bool { return a.blockNumber < b.blockNumber }

// RootSource mints synthetic state roots for newly created overrides.
// Satisfied by *randhash.Generator.
type RootSource interface {
	NextValue() libcommon.Hash
}

// IrregularState is the ordered, per-block-height map of forced overrides.
// Invariant: materializing state at height h applies overrides at every
// height <= h in height order; a later override at the same height replaces
// an earlier one (it's the same *StateOverride, mutated in place).
type IrregularState struct {
	tree *btree.BTreeG[overrideEntry]
}

func NewIrregularState() *IrregularState {
	return &IrregularState{tree: btree.NewG(32, overrideLess)}
}

// OverrideAt returns the mutable StateOverride at block number n, creating
// one (with a synthetic root drawn from roots) if none exists yet. The
// randomness source is passed in, rather than held by IrregularState, since
// it is exclusively owned by the provider engine and must always be the
// engine's *current* generator, not whatever generator was live when this
// IrregularState was constructed or last cloned.
func (s *IrregularState) OverrideAt(n uint64, roots RootSource) *StateOverride {
	if existing, ok := s.tree.Get(overrideEntry{blockNumber: n}); ok {
		return existing.override
	}
	ov := newStateOverride(roots.NextValue())
	s.tree.ReplaceOrInsert(overrideEntry{blockNumber: n, override: ov})
	return ov
}

// ApplyAccountChange is a convenience wrapper combining OverrideAt with
// StateDiff.ApplyAccountChange.
func (s *IrregularState) ApplyAccountChange(n uint64, addr libcommon.Address, info AccountInfo, roots RootSource) {
	s.OverrideAt(n, roots).Diff.ApplyAccountChange(addr, info)
}

// ApplyStorageChange is a convenience wrapper combining OverrideAt with
// StateDiff.ApplyStorageChange.
func (s *IrregularState) ApplyStorageChange(n uint64, addr libcommon.Address, index libcommon.U256, slot StorageSlot, info *AccountInfo, roots RootSource) {
	s.OverrideAt(n, roots).Diff.ApplyStorageChange(addr, index, slot, info)
}

// StateOverrides returns a read-only view of overrides at every height <= h,
// in height order, for layering onto canonical state.
func (s *IrregularState) StateOverrides(upTo uint64) []*StateOverride {
	var out []*StateOverride
	s.tree.AscendRange(overrideEntry{blockNumber: 0}, overrideEntry{blockNumber: upTo + 1}, func(e overrideEntry) bool {
		out = append(out, e.override)
		return true
	})
	return out
}

// Clone deep-copies every override, used when the provider engine makes a
// snapshot.
func (s *IrregularState) Clone() *IrregularState {
	out := NewIrregularState()
	s.tree.Ascend(func(e overrideEntry) bool {
		out.tree.ReplaceOrInsert(overrideEntry{blockNumber: e.blockNumber, override: e.override.clone()})
		return true
	})
	return out
}
