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

// Package forkclient is the narrow remote collaborator a ForkedBlockchain
// needs: fetch historical headers/blocks/account state from a remote
// JSON-RPC endpoint, and cache what it fetches on disk so a restarted
// engine doesn't re-fetch the same history.
package forkclient

import (
	"context"

	libcommon "github.com/erigontech/erigon-lib/common"
)

// RPCClient is the surface ForkedBlockchain needs from the remote chain.
type RPCClient interface {
	BlockByNumber(ctx context.Context, number uint64) (*RemoteBlock, error)
	HeaderByNumber(ctx context.Context, number uint64) (*RemoteHeader, error)
	AccountAt(ctx context.Context, address libcommon.Address, blockNumber uint64) (*RemoteAccount, error)
	StorageAt(ctx context.Context, address libcommon.Address, slot libcommon.U256, blockNumber uint64) (libcommon.U256, error)
	CodeAt(ctx context.Context, address libcommon.Address, blockNumber uint64) (libcommon.Bytes, error)
}

// RemoteHeader is the subset of a remote header the fork backend needs to
// seed a local Header.
type RemoteHeader struct {
	Number        uint64
	Hash          libcommon.Hash
	ParentHash    libcommon.Hash
	Timestamp     uint64
	Beneficiary   libcommon.Address
	BaseFeePerGas *libcommon.U256
	StateRoot     libcommon.Hash
	GasLimit      uint64
	GasUsed       uint64
}

// RemoteBlock is a remote header plus its transaction hashes.
type RemoteBlock struct {
	Header       RemoteHeader
	Transactions []libcommon.Hash
}

// RemoteAccount is the balance/nonce/code-hash triple a remote eth_getProof
// or eth_getBalance/eth_getTransactionCount/eth_getCode combination yields.
type RemoteAccount struct {
	Balance  libcommon.U256
	Nonce    uint64
	CodeHash libcommon.Hash
}
