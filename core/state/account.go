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

// Bytecode is contract code together with its hash, cached so repeated
// CodeByHash lookups don't re-hash the same bytes.
type Bytecode struct {
	Code libcommon.Bytes
	Hash libcommon.Hash
}

// NewBytecode hashes code and wraps it. Empty code always hashes to
// EmptyCodeHash, matching the data model's invariant.
func NewBytecode(code libcommon.Bytes) Bytecode {
	if len(code) == 0 {
		return Bytecode{Code: nil, Hash: libcommon.EmptyCodeHash}
	}
	return Bytecode{Code: code, Hash: libcommon.Keccak256(code)}
}

// AccountInfo is the account-level state this core tracks: balance, nonce,
// and an optional code body. Invariant: CodeHash always equals the hash of
// Code when Code is non-nil; EmptyCodeHash denotes no code.
type AccountInfo struct {
	Balance  libcommon.U256
	Nonce    uint64
	CodeHash libcommon.Hash
	Code     *Bytecode
}

// EmptyAccount returns a zero-balance, zero-nonce, codeless account, the
// default new accounts are created with throughout set_balance/set_nonce.
func EmptyAccount() AccountInfo {
	return AccountInfo{CodeHash: libcommon.EmptyCodeHash}
}

// WithCode returns a copy of a with its code (and code hash) replaced.
func (a AccountInfo) WithCode(code libcommon.Bytes) AccountInfo {
	bc := NewBytecode(code)
	a.Code = &bc
	a.CodeHash = bc.Hash
	return a
}

func (a AccountInfo) Clone() AccountInfo {
	out := a
	if a.Code != nil {
		codeCopy := *a.Code
		codeCopy.Code = a.Code.Code.Clone()
		out.Code = &codeCopy
	}
	return out
}

// StorageSlot tracks a single storage value together with the value it had
// before any change in the current context, so callers can distinguish
// "unchanged" from "changed since load".
type StorageSlot struct {
	PresentValue  libcommon.U256
	OriginalValue libcommon.U256
}

// NewUnchangedSlot records a value that has not been modified.
func NewUnchangedSlot(value libcommon.U256) StorageSlot {
	return StorageSlot{PresentValue: value, OriginalValue: value}
}

// NewChangedSlot records a value change from original to present.
func NewChangedSlot(original, present libcommon.U256) StorageSlot {
	return StorageSlot{PresentValue: present, OriginalValue: original}
}

func (s StorageSlot) IsChanged() bool { return s.PresentValue.Cmp(s.OriginalValue) != 0 }
