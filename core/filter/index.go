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
	"github.com/RoaringBitmap/roaring/v2"

	libcommon "github.com/erigontech/erigon-lib/common"
)

// addressIndex maps each address that has ever emitted a log to the set of
// block numbers it emitted one in. A log filter with a narrow address list
// intersects those bitmaps instead of rescanning every receipt in its block
// range; it's purely an acceleration structure; LogCriteria.Matches remains
// the source of truth for whether a given log actually matches.
type addressIndex struct {
	byAddress map[libcommon.Address]*roaring.Bitmap
}

func newAddressIndex() *addressIndex {
	return &addressIndex{byAddress: make(map[libcommon.Address]*roaring.Bitmap)}
}

func (idx *addressIndex) record(blockNumber uint64, addresses []libcommon.Address) {
	for _, addr := range addresses {
		bm, ok := idx.byAddress[addr]
		if !ok {
			bm = roaring.New()
			idx.byAddress[addr] = bm
		}
		bm.Add(uint32(blockNumber))
	}
}

// candidateBlocks returns the union of block numbers that might contain a
// log from any of addresses, within [from, to]. An empty addresses list
// means "every block in range is a candidate" (nil signals that to the
// caller, which then falls back to a full scan).
func (idx *addressIndex) candidateBlocks(addresses []libcommon.Address, from, to uint64) *roaring.Bitmap {
	if len(addresses) == 0 {
		return nil
	}
	union := roaring.New()
	for _, addr := range addresses {
		if bm, ok := idx.byAddress[addr]; ok {
			union.Or(bm)
		}
	}
	rangeBitmap := roaring.New()
	rangeBitmap.AddRange(uint64(from), uint64(to)+1)
	union.And(rangeBitmap)
	return union
}
