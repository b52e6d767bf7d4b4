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

package miner

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestCalcBaseFeeUnchangedAtTarget(t *testing.T) {
	parentBaseFee := uint256.NewInt(1_000_000_000)
	next := CalcBaseFee(30_000_000, 15_000_000, parentBaseFee)
	require.Equal(t, parentBaseFee.String(), next.String())
}

func TestCalcBaseFeeRisesAboveTargetAndFallsBelow(t *testing.T) {
	parentBaseFee := uint256.NewInt(1_000_000_000)

	above := CalcBaseFee(30_000_000, 30_000_000, parentBaseFee)
	require.True(t, above.Gt(parentBaseFee), "base fee should rise when parent used more than target")

	below := CalcBaseFee(30_000_000, 0, parentBaseFee)
	require.True(t, below.Lt(parentBaseFee), "base fee should fall when parent used less than target")
}

// TestCalcBaseFeeNeverGoesNegative checks the invariant CalcBaseFee documents
// for the below-target branch across randomized parent gas usage.
func TestCalcBaseFeeNeverGoesNegative(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		gasLimit := rapid.Uint64Range(2, 60_000_000).Draw(t, "gasLimit")
		gasUsed := rapid.Uint64Range(0, gasLimit).Draw(t, "gasUsed")
		baseFeeGwei := rapid.Uint64Range(0, 1000).Draw(t, "baseFeeGwei")

		parentBaseFee := uint256.NewInt(baseFeeGwei * 1_000_000_000)
		next := CalcBaseFee(gasLimit, gasUsed, parentBaseFee)
		require.False(t, next.Sign() < 0)
	})
}

func TestCalcExcessBlobGas(t *testing.T) {
	require.Equal(t, uint64(0), CalcExcessBlobGas(0, 0))
	require.Equal(t, uint64(0), CalcExcessBlobGas(0, targetBlobGasPerBlock))
	require.Equal(t, uint64(blobGasPerBlob), CalcExcessBlobGas(0, targetBlobGasPerBlock+blobGasPerBlob))
}

func TestGetBlobGasUsed(t *testing.T) {
	require.Equal(t, uint64(0), GetBlobGasUsed(0))
	require.Equal(t, uint64(blobGasPerBlob*3), GetBlobGasUsed(3))
}
