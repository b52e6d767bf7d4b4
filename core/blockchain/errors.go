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

import "errors"

var (
	// ErrParentMismatch is returned by InsertBlock when the new block's
	// parent hash does not equal the current tip's hash.
	ErrParentMismatch = errors.New("blockchain: parent hash mismatch")
	// ErrBlockNotFound is returned by the by-number/by-hash/by-tx-hash
	// lookups when no matching block exists (including blocks truncated by
	// a prior RevertToBlock).
	ErrBlockNotFound = errors.New("blockchain: block not found")
	// ErrReceiptNotFound is returned by ReceiptByTransactionHash when the
	// transaction hash is unknown or its block has been reverted.
	ErrReceiptNotFound = errors.New("blockchain: receipt not found")
)
