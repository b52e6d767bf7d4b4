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

package txpool

import (
	"errors"
	"fmt"

	libcommon "github.com/erigontech/erigon-lib/common"
)

var (
	ErrKnownTransaction    = errors.New("txpool: transaction with this hash already known")
	ErrNonceTooLow         = errors.New("txpool: nonce lower than account nonce")
	ErrInsufficientFunds   = errors.New("txpool: balance insufficient to cover max cost")
	ErrGasLimitExceeded    = errors.New("txpool: gas limit exceeds mempool block gas limit")
	ErrIntrinsicGas        = errors.New("txpool: gas limit below intrinsic gas")
	ErrChainIDMismatch     = errors.New("txpool: chain id mismatch")
	ErrOrderingNotImplemented = errors.New("txpool: requested mine ordering is not implemented")
)

// UnknownAddressError is returned when a transaction's sender is neither
// impersonated nor present among the local signing accounts.
type UnknownAddressError struct {
	Address libcommon.Address
}

func (e *UnknownAddressError) Error() string {
	return fmt.Sprintf("txpool: unknown address %s", e.Address)
}
