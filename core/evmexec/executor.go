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

// Package evmexec defines the narrow interface the block producer needs
// from an EVM interpreter. The interpreter's opcode semantics are out of
// scope for this core; production hosts supply a real one (e.g. a cgo
// binding) behind this interface.
package evmexec

import (
	libcommon "github.com/erigontech/erigon-lib/common"
	"github.com/erigontech/erigon-lib/chain"

	"github.com/erigontech/erigon-devnet/core/state"
)

// BlockContext is the subset of block header fields a transaction executes
// against.
type BlockContext struct {
	Number        uint64
	Timestamp     uint64
	Beneficiary   libcommon.Address
	BaseFeePerGas *libcommon.U256
	Prevrandao    *libcommon.Hash
	GasLimit      uint64
}

// EVMConfig carries the hard-fork rules and chain id a transaction executes
// under.
type EVMConfig struct {
	Spec    chain.Spec
	ChainID uint64
}

// Receipt is the execution outcome the executor reports back; the
// blockchain store wraps it with indexing fields the executor doesn't know
// about (block hash, transaction index).
type Receipt struct {
	GasUsed         uint64
	Status          uint64
	ContractAddress *libcommon.Address
	Logs            []Log
}

type Log struct {
	Address libcommon.Address
	Topics  []libcommon.Hash
	Data    libcommon.Bytes
}

// Trace is execution tracing output; opaque to the block producer.
type Trace struct {
	Steps int
}

// Executor applies a single transaction against state, returning its
// receipt and (possibly empty) trace.
type Executor interface {
	ApplyTransaction(cfg EVMConfig, worldState state.WorldState, header BlockContext, tx PendingTransaction) (Receipt, Trace, error)
}

// PendingTransaction is the minimal transaction shape an executor needs;
// kept separate from txpool.PendingTransaction so this package doesn't
// depend on the mempool.
type PendingTransaction struct {
	Hash         libcommon.Hash
	Sender       libcommon.Address
	Nonce        uint64
	GasLimit     uint64
	MaxFeePerGas libcommon.U256
	Value        libcommon.U256
	Recipient    *libcommon.Address
	Data         libcommon.Bytes
}
