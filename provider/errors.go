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
	"errors"
	"fmt"
)

var (
	// ErrInvalidBlockNumberOrHash is returned when a BlockSpec names a
	// concrete number or hash that the blockchain store doesn't have.
	ErrInvalidBlockNumberOrHash = errors.New("provider: invalid block number or hash")

	// ErrInvalidTransactionRequest is returned when a transaction request
	// can't be turned into a transaction (e.g. missing required fields).
	ErrInvalidTransactionRequest = errors.New("provider: invalid transaction request")
)

// InvalidBlockTagError is returned when a BlockSpec names Safe or Finalized
// pre-Merge, the one tag pair that depends on the chain's hard-fork state.
type InvalidBlockTagError struct {
	BlockSpec BlockSpec
	Spec      fmt.Stringer
}

func (e *InvalidBlockTagError) Error() string {
	return fmt.Sprintf("provider: block tag %s is invalid pre-merge (spec %s)", e.BlockSpec, e.Spec)
}

// TimestampLowerThanPreviousError is returned by set_next_block_timestamp
// and mine_and_commit_block when the proposed timestamp precedes the
// parent's.
type TimestampLowerThanPreviousError struct {
	Proposed uint64
	Previous uint64
}

func (e *TimestampLowerThanPreviousError) Error() string {
	return fmt.Sprintf("provider: timestamp %d is lower than previous block's %d", e.Proposed, e.Previous)
}

// TimestampEqualsPreviousError is returned when the proposed timestamp
// exactly equals the parent's and equal timestamps aren't allowed.
type TimestampEqualsPreviousError struct {
	Proposed uint64
}

func (e *TimestampEqualsPreviousError) Error() string {
	return fmt.Sprintf("provider: timestamp %d equals previous block's timestamp", e.Proposed)
}
