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

package signer

import (
	"fmt"

	libcommon "github.com/erigontech/erigon-lib/common"
)

// UnknownAddressError is returned when a sign request names an address that
// is neither impersonated nor present in the local-accounts key store.
type UnknownAddressError struct {
	Address libcommon.Address
}

func (e *UnknownAddressError) Error() string {
	return fmt.Sprintf("signer: unknown address %s", e.Address)
}
