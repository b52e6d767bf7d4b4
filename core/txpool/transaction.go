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

// Package txpool is the mempool: per-sender pending/future queues with
// gas-limit, nonce and balance validity invariants, re-validated on every
// state mutation.
package txpool

import (
	"github.com/holiman/uint256"

	libcommon "github.com/erigontech/erigon-lib/common"
)

// PendingTransaction is a signed transaction together with its recovered
// (or impersonated) sender, validated against a specific state snapshot and
// hard-fork spec. The transaction/block codec is out of scope; Hash is
// supplied by the caller (the signer) rather than derived here from an RLP
// encoding this package doesn't own.
type PendingTransaction struct {
	Hash         libcommon.Hash
	Sender       libcommon.Address
	Recipient    *libcommon.Address // nil denotes contract creation
	Nonce        uint64
	GasLimit     uint64
	MaxFeePerGas libcommon.U256
	Value        libcommon.U256
	ChainID      uint64
	Impersonated bool
}

// IntrinsicGas is the minimum gas a transaction consumes before any EVM
// opcode executes. A full calldata-based derivation is part of the EVM
// executor's domain (out of scope here); the mempool only needs a value to
// check against GasLimit, so it uses the flat pre-EIP-2028 base cost as a
// conservative floor.
const IntrinsicGas = 21000

// MaxCost is the maximum amount this transaction could withdraw from the
// sender's balance: max_fee_per_gas * gas_limit + value.
func (tx *PendingTransaction) MaxCost() libcommon.U256 {
	gas := libcommon.NewU256(tx.GasLimit)
	feeCost, overflow := mulU256(tx.MaxFeePerGas, gas)
	if overflow {
		return libcommon.NewU256(^uint64(0))
	}
	total, overflow := feeCost.Add(tx.Value)
	if overflow {
		return libcommon.NewU256(^uint64(0))
	}
	return total
}

func mulU256(a, b libcommon.U256) (libcommon.U256, bool) {
	out := new(uint256.Int)
	_, overflow := out.MulOverflow(a.Uint256(), b.Uint256())
	return libcommon.U256FromBig(out), overflow
}
