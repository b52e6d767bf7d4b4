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

package blockchain

import (
	libcommon "github.com/erigontech/erigon-lib/common"
)

// Header carries everything about a block except its transactions and
// receipts. BaseFeePerGas and Prevrandao are optional: absent pre-London and
// pre-Merge respectively.
type Header struct {
	Number        uint64
	ParentHash    libcommon.Hash
	Timestamp     uint64
	Beneficiary   libcommon.Address
	BaseFeePerGas *libcommon.U256
	Prevrandao    *libcommon.Hash
	GasLimit      uint64
	GasUsed       uint64
	StateRoot     libcommon.Hash
	// TransactionsRoot and ReceiptsRoot commit to the block's transaction
	// and receipt lists via a Merkle tree over their leaf hashes.
	TransactionsRoot libcommon.Hash
	ReceiptsRoot     libcommon.Hash
	BlobGasUsed      *uint64
	ExcessBlobGas    *uint64
	// ParentBeaconBlockRoot is the beacon-chain root Cancun attaches to
	// every execution header; nil pre-Cancun.
	ParentBeaconBlockRoot *libcommon.Hash
}

// Hash returns a deterministic identifier for the header. The real
// transaction/block codec (RLP encoding + keccak) is out of scope here, so
// the header is instead identified by hashing a stable field encoding; it
// plays the same role (block lookup by hash, parent-hash linkage) without
// reimplementing the wire format.
func (h *Header) Hash() libcommon.Hash {
	var buf []byte
	buf = appendUint64(buf, h.Number)
	buf = append(buf, h.ParentHash[:]...)
	buf = appendUint64(buf, h.Timestamp)
	buf = append(buf, h.Beneficiary[:]...)
	buf = append(buf, h.StateRoot[:]...)
	buf = append(buf, h.TransactionsRoot[:]...)
	buf = append(buf, h.ReceiptsRoot[:]...)
	buf = appendUint64(buf, h.GasLimit)
	buf = appendUint64(buf, h.GasUsed)
	return libcommon.Keccak256(buf)
}

func appendUint64(buf []byte, v uint64) []byte {
	var tmp [8]byte
	for i := 0; i < 8; i++ {
		tmp[7-i] = byte(v)
		v >>= 8
	}
	return append(buf, tmp[:]...)
}

// Receipt records the outcome of executing a single transaction.
type Receipt struct {
	TransactionHash libcommon.Hash
	BlockNumber     uint64
	BlockHash       libcommon.Hash
	TransactionIdx  int
	GasUsed         uint64
	CumulativeGas   uint64
	Status          uint64
	ContractAddress *libcommon.Address
	Logs            []Log
}

// Log is a single EVM log entry, address + topics + data.
type Log struct {
	Address libcommon.Address
	Topics  []libcommon.Hash
	Data    libcommon.Bytes
}

// Block is a header, its ordered transaction hashes (the codec for the
// transactions themselves is out of scope), and the receipts produced by
// executing them.
type Block struct {
	Header       *Header
	Transactions []libcommon.Hash
	Receipts     []*Receipt
}

func (b *Block) Number() uint64          { return b.Header.Number }
func (b *Block) Hash() libcommon.Hash    { return b.Header.Hash() }
func (b *Block) ParentHash() libcommon.Hash { return b.Header.ParentHash }
