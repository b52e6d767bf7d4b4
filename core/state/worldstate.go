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
	"maps"

	libcommon "github.com/erigontech/erigon-lib/common"
)

// AccountModifierFn mutates an account's balance, nonce and/or code in
// place. Any of the three pointers may be left untouched; ModifyAccount
// writes back whatever the function changed.
type AccountModifierFn func(balance *libcommon.U256, nonce *uint64, code **Bytecode)

// WorldState is the block-contextual view of accounts, storage and code
// that every read and write in the provider goes through. Implementations:
// MemoryState (genesis/post-block states) and the contextual reader in
// history_reader_v3.go (arbitrary historical height layered with irregular
// overrides).
type WorldState interface {
	Basic(addr libcommon.Address) (*AccountInfo, error)
	CodeByHash(hash libcommon.Hash) (Bytecode, error)
	Storage(addr libcommon.Address, index libcommon.U256) (libcommon.U256, error)
	StateRoot() (libcommon.Hash, error)
	// ModifyAccount applies modifier to the existing account if present,
	// else creates one via defaultFactory, and returns the resulting
	// AccountInfo.
	ModifyAccount(addr libcommon.Address, modifier AccountModifierFn, defaultFactory func() (AccountInfo, error)) (AccountInfo, error)
	// SetAccountStorageSlot writes value at index and returns the prior
	// value. Exactly one underlying write per call (see DESIGN.md, Open
	// Question (i)).
	SetAccountStorageSlot(addr libcommon.Address, index, value libcommon.U256) (libcommon.U256, error)
	// Clone returns an independent, cheap copy-on-write view: mutating the
	// clone never affects the original and vice versa.
	Clone() WorldState
}

type accountRecord struct {
	info    AccountInfo
	storage map[libcommon.U256]libcommon.U256
	code    *Bytecode
}

func (r *accountRecord) clone() *accountRecord {
	out := &accountRecord{info: r.info.Clone(), storage: maps.Clone(r.storage)}
	if r.code != nil {
		c := *r.code
		c.Code = r.code.Code.Clone()
		out.code = &c
	}
	return out
}

// MemoryState is a trie-free, map-of-maps world-state implementation: the
// authoritative representation for genesis state and for the state
// resulting from mining a block. Cloning copies only the top-level account
// map (linear in the number of accounts, no per-account copy); individual
// account records are copy-on-write.
type MemoryState struct {
	accounts map[libcommon.Address]*accountRecord
	root     libcommon.Hash
}

// NewMemoryState builds a state from an initial StateDiff (e.g. genesis
// allocations), giving it the provided root.
func NewMemoryState(initial *StateDiff, root libcommon.Hash) *MemoryState {
	accounts := make(map[libcommon.Address]*accountRecord)
	if initial != nil {
		for _, addr := range initial.Accounts() {
			d, _ := initial.Get(addr)
			rec := &accountRecord{storage: make(map[libcommon.U256]libcommon.U256)}
			if d.Info != nil {
				rec.info = d.Info.Clone()
				rec.code = d.Info.Code
			}
			for idx, slot := range d.Storage {
				rec.storage[idx] = slot.PresentValue
			}
			accounts[addr] = rec
		}
	}
	return &MemoryState{accounts: accounts, root: root}
}

func (s *MemoryState) Basic(addr libcommon.Address) (*AccountInfo, error) {
	rec, ok := s.accounts[addr]
	if !ok {
		return nil, nil
	}
	info := rec.info.Clone()
	return &info, nil
}

func (s *MemoryState) CodeByHash(hash libcommon.Hash) (Bytecode, error) {
	if hash == libcommon.EmptyCodeHash {
		return Bytecode{Hash: libcommon.EmptyCodeHash}, nil
	}
	for _, rec := range s.accounts {
		if rec.code != nil && rec.code.Hash == hash {
			return *rec.code, nil
		}
	}
	return Bytecode{}, ErrCodeNotFound
}

func (s *MemoryState) Storage(addr libcommon.Address, index libcommon.U256) (libcommon.U256, error) {
	rec, ok := s.accounts[addr]
	if !ok {
		return libcommon.U256{}, nil
	}
	return rec.storage[index], nil
}

func (s *MemoryState) StateRoot() (libcommon.Hash, error) { return s.root, nil }

// SetStateRoot is used by the block producer to seal a newly mined state
// with its freshly computed root.
func (s *MemoryState) SetStateRoot(root libcommon.Hash) { s.root = root }

func (s *MemoryState) ModifyAccount(addr libcommon.Address, modifier AccountModifierFn, defaultFactory func() (AccountInfo, error)) (AccountInfo, error) {
	existing, ok := s.accounts[addr]
	var rec *accountRecord
	if ok {
		rec = existing.clone()
	} else {
		info, err := defaultFactory()
		if err != nil {
			return AccountInfo{}, err
		}
		rec = &accountRecord{info: info.Clone(), storage: make(map[libcommon.U256]libcommon.U256), code: info.Code}
	}

	balance := rec.info.Balance
	nonce := rec.info.Nonce
	code := rec.code
	modifier(&balance, &nonce, &code)
	rec.info.Balance = balance
	rec.info.Nonce = nonce
	if code != nil {
		rec.code = code
		rec.info.Code = code
		rec.info.CodeHash = code.Hash
	}

	s.accounts[addr] = rec
	return rec.info.Clone(), nil
}

func (s *MemoryState) SetAccountStorageSlot(addr libcommon.Address, index, value libcommon.U256) (libcommon.U256, error) {
	existing, ok := s.accounts[addr]
	var rec *accountRecord
	if ok {
		rec = existing.clone()
	} else {
		rec = &accountRecord{info: EmptyAccount(), storage: make(map[libcommon.U256]libcommon.U256)}
	}
	prior := rec.storage[index]
	rec.storage[index] = value
	s.accounts[addr] = rec
	return prior, nil
}

func (s *MemoryState) Clone() WorldState {
	return &MemoryState{accounts: maps.Clone(s.accounts), root: s.root}
}
