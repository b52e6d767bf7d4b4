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
	libcommon "github.com/erigontech/erigon-lib/common"

	"github.com/erigontech/erigon-devnet/core/evmexec"
)

// LogCriteria is an eth_newFilter-style log filter: an address allow-list
// (empty means any address) and a per-position topic allow-list (a nil
// entry at position i means "any topic at position i").
type LogCriteria struct {
	FromBlock *uint64
	ToBlock   *uint64
	Addresses []libcommon.Address
	Topics    [][]libcommon.Hash
}

// Matches reports whether log, emitted at blockNumber, satisfies c.
func (c *LogCriteria) Matches(blockNumber uint64, log evmexec.Log) bool {
	if c.FromBlock != nil && blockNumber < *c.FromBlock {
		return false
	}
	if c.ToBlock != nil && blockNumber > *c.ToBlock {
		return false
	}
	if len(c.Addresses) > 0 {
		found := false
		for _, a := range c.Addresses {
			if a == log.Address {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	for i, wanted := range c.Topics {
		if len(wanted) == 0 {
			continue
		}
		if i >= len(log.Topics) {
			return false
		}
		found := false
		for _, w := range wanted {
			if w == log.Topics[i] {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
