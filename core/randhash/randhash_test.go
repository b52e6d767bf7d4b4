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

package randhash

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	libcommon "github.com/erigontech/erigon-lib/common"
)

func TestEqualSeedsProduceEqualSequences(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		seed := rapid.String().Draw(t, "seed")
		steps := rapid.IntRange(0, 20).Draw(t, "steps")

		a := NewWithSeed(seed)
		b := NewWithSeed(seed)
		for i := 0; i < steps; i++ {
			require.Equal(t, a.NextValue(), b.NextValue())
		}
		require.Equal(t, a.Seed(), b.Seed())
	})
}

func TestDifferentSeedsDivergeImmediately(t *testing.T) {
	a := NewWithSeed("alpha")
	b := NewWithSeed("beta")
	require.NotEqual(t, a.Seed(), b.Seed())
}

func TestNextValueAdvancesChain(t *testing.T) {
	g := NewWithSeed("chain")
	seed := g.Seed()
	next := g.NextValue()
	require.NotEqual(t, seed, next)
	require.Equal(t, libcommon.Keccak256(seed[:]), next)
	require.Equal(t, next, g.Seed())
}

func TestSetNextOverridesChain(t *testing.T) {
	g := NewWithSeed("override")
	forced := libcommon.RandomHash()
	g.SetNext(forced)
	require.Equal(t, forced, g.Seed())
}

func TestCloneIsIndependent(t *testing.T) {
	g := NewWithSeed("clone")
	g.NextValue()
	clone := g.Clone()
	g.NextValue()
	require.NotEqual(t, g.Seed(), clone.Seed())
}
