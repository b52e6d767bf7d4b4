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

package filter

import (
	"errors"
	"fmt"

	libcommon "github.com/erigontech/erigon-lib/common"
)

var ErrFilterNotFound = errors.New("filter: not found")

// InvalidSubscriptionTypeError is returned when an operation is attempted
// against a filter of the wrong kind or the wrong is_subscription flag, e.g.
// GetFilterLogs on a NewPendingTransactions filter, or RemoveFilter on a
// subscription.
type InvalidSubscriptionTypeError struct {
	FilterID libcommon.U256
	Expected string
	Actual   string
}

func (e *InvalidSubscriptionTypeError) Error() string {
	return fmt.Sprintf("filter: invalid subscription type for %s: expected %s, got %s", e.FilterID.Uint256().String(), e.Expected, e.Actual)
}
