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

package miner

import (
	"crypto/sha256"

	merkle "github.com/xsleonard/go-merkle"

	libcommon "github.com/erigontech/erigon-lib/common"
)

// TransactionsRoot and ReceiptsRoot hash a block's transaction/receipt
// leaves into a single root via a binary Merkle tree. The real transaction
// and receipt codecs (and their RLP-based trie roots) are out of scope for
// this core; committing to a Merkle root over the already-computed leaf
// hashes is a reasonable stand-in that still gives every block a root that
// changes if, and only if, its transactions or receipts do.
func merkleRoot(leaves [][]byte) libcommon.Hash {
	if len(leaves) == 0 {
		return libcommon.Hash{}
	}
	tree := merkle.NewTreeWithHashStrategy(sha256.New)
	if err := tree.Generate(leaves, sha256.New()); err != nil {
		return libcommon.Keccak256(nil)
	}
	root := tree.Root()
	return libcommon.BytesToHash(root.Hash)
}

// TransactionsRoot commits to the ordered list of transaction hashes.
func TransactionsRoot(txHashes []libcommon.Hash) libcommon.Hash {
	leaves := make([][]byte, len(txHashes))
	for i, h := range txHashes {
		leaves[i] = h[:]
	}
	return merkleRoot(leaves)
}

// ReceiptsRoot commits to the ordered list of receipt hashes (callers hash
// each receipt's fields before calling this).
func ReceiptsRoot(receiptHashes []libcommon.Hash) libcommon.Hash {
	leaves := make([][]byte, len(receiptHashes))
	for i, h := range receiptHashes {
		leaves[i] = h[:]
	}
	return merkleRoot(leaves)
}
