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

import libcommon "github.com/erigontech/erigon-lib/common"

// BlockTag is the symbolic half of a BlockSpec.
type BlockTag int

const (
	Earliest BlockTag = iota
	Latest
	Pending
	Safe
	Finalized
)

func (t BlockTag) String() string {
	switch t {
	case Earliest:
		return "earliest"
	case Latest:
		return "latest"
	case Pending:
		return "pending"
	case Safe:
		return "safe"
	case Finalized:
		return "finalized"
	default:
		return "unknown"
	}
}

// BlockSpec names a block by number, hash, or tag; exactly one of Number,
// Hash, Tag is set.
type BlockSpec struct {
	Number *uint64
	Hash   *libcommon.Hash
	Tag    *BlockTag
}

func BlockSpecNumber(n uint64) BlockSpec {
	return BlockSpec{Number: &n}
}

func BlockSpecHash(h libcommon.Hash) BlockSpec {
	return BlockSpec{Hash: &h}
}

func BlockSpecTag(t BlockTag) BlockSpec {
	return BlockSpec{Tag: &t}
}

func (s BlockSpec) String() string {
	switch {
	case s.Number != nil:
		return "number"
	case s.Hash != nil:
		return "hash"
	case s.Tag != nil:
		return s.Tag.String()
	default:
		return "unknown"
	}
}
