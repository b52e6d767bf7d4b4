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

package provider

import (
	libcommon "github.com/erigontech/erigon-lib/common"

	"github.com/erigontech/erigon-devnet/core/blockchain"
	"github.com/erigontech/erigon-devnet/core/txpool"
)

// TransactionRequest is an eth_sendTransaction-shaped request: From is
// required, everything else defaults (Nonce from the account, GasLimit
// from a reasonable ceiling, Value to zero, ChainID from the engine's own
// chain). A caller submitting a request built for a different chain (e.g.
// replaying a signed request captured against another network) sets
// ChainID explicitly; the mempool rejects it with ErrChainIDMismatch
// rather than silently accepting it under the engine's chain id.
type TransactionRequest struct {
	From         libcommon.Address
	To           *libcommon.Address
	Nonce        *uint64
	GasLimit     *uint64
	MaxFeePerGas *libcommon.U256
	Value        *libcommon.U256
	Data         libcommon.Bytes
	ChainID      *uint64
}

// ForkMetadata describes the remote chain a ForkedBlockchain is rooted on.
type ForkMetadata struct {
	ChainID         uint64
	ForkBlockNumber uint64
	ForkBlockHash   libcommon.Hash
}

// BlockDataForTransaction locates a mined transaction within its block.
type BlockDataForTransaction struct {
	Block           *blockchain.Block
	TransactionIndex uint64
}

// TransactionAndBlock is the result of transaction_by_hash. While the
// transaction is pending in the mempool, Transaction is set and BlockData is
// nil; once it has been mined, only BlockData (its block location) is set
// and Transaction is nil.
type TransactionAndBlock struct {
	Transaction *txpool.PendingTransaction
	BlockData   *BlockDataForTransaction
}
