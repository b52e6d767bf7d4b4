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

// Package randhash implements the deterministic seed->hash chain the
// provider uses to derive PREVRANDAO values and synthetic state-override
// roots.
package randhash

import libcommon "github.com/erigontech/erigon-lib/common"

// Generator holds a single 32-byte value and advances it by re-hashing.
// Given equal seeds and equal call sequences, two Generators produce
// bit-identical output sequences.
type Generator struct {
	current libcommon.Hash
}

// NewWithSeed seeds the chain from an arbitrary string, matching the
// teacher's RandomHashGenerator::with_seed convention of deriving the
// initial value from a human-readable label rather than raw bytes.
func NewWithSeed(seed string) *Generator {
	return &Generator{current: libcommon.Keccak256([]byte(seed))}
}

// Seed returns the current value without advancing the chain.
func (g *Generator) Seed() libcommon.Hash { return g.current }

// NextValue replaces the current value with H(current) and returns it.
func (g *Generator) NextValue() libcommon.Hash {
	g.current = libcommon.Keccak256(g.current[:])
	return g.current
}

// SetNext forcibly replaces the current value, used by
// hardhat_setPrevRandao-style overrides.
func (g *Generator) SetNext(v libcommon.Hash) { g.current = v }

// Clone returns an independent copy, used when the provider engine snapshots
// itself.
func (g *Generator) Clone() *Generator {
	clone := *g
	return &clone
}
