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
	"fmt"

	"github.com/holiman/uint256"
)

const (
	baseFeeChangeDenominator = 8
	elasticityMultiplier     = 2
	minBlobGasPrice          = 1
	blobGasPriceUpdateFraction = 3338477
	blobGasPerBlob           = 131072
	targetBlobGasPerBlock    = 3 * blobGasPerBlob
)

// CalcBaseFee derives the next block's base fee per gas from its parent,
// per EIP-1559: unchanged if the parent was exactly at its gas target,
// otherwise adjusted by up to 1/8th proportional to how far over or under
// target the parent was.
func CalcBaseFee(parentGasLimit, parentGasUsed uint64, parentBaseFee *uint256.Int) *uint256.Int {
	parentGasTarget := parentGasLimit / elasticityMultiplier
	if parentGasTarget == 0 {
		return new(uint256.Int).Set(parentBaseFee)
	}
	if parentGasUsed == parentGasTarget {
		return new(uint256.Int).Set(parentBaseFee)
	}

	if parentGasUsed > parentGasTarget {
		gasUsedDelta := parentGasUsed - parentGasTarget
		x := new(uint256.Int).Mul(parentBaseFee, uint256.NewInt(gasUsedDelta))
		y := x.Div(x, uint256.NewInt(parentGasTarget))
		baseFeeDelta := y.Div(y, uint256.NewInt(baseFeeChangeDenominator))
		if baseFeeDelta.IsZero() {
			baseFeeDelta = uint256.NewInt(1)
		}
		return new(uint256.Int).Add(parentBaseFee, baseFeeDelta)
	}

	gasUsedDelta := parentGasTarget - parentGasUsed
	x := new(uint256.Int).Mul(parentBaseFee, uint256.NewInt(gasUsedDelta))
	y := x.Div(x, uint256.NewInt(parentGasTarget))
	baseFeeDelta := y.Div(y, uint256.NewInt(baseFeeChangeDenominator))
	next := new(uint256.Int).Sub(parentBaseFee, baseFeeDelta)
	if next.Sign() < 0 {
		return uint256.NewInt(0)
	}
	return next
}

// CalcExcessBlobGas implements calc_excess_blob_gas from EIP-4844. Only the
// accounting formula is needed here, not header-field verification: this
// core produces block headers, it doesn't validate a wire-format one.
func CalcExcessBlobGas(parentExcessBlobGas, parentBlobGasUsed uint64) uint64 {
	if parentExcessBlobGas+parentBlobGasUsed < targetBlobGasPerBlock {
		return 0
	}
	return parentExcessBlobGas + parentBlobGasUsed - targetBlobGasPerBlock
}

// FakeExponential approximates factor * e ** (num / denom) using a Taylor
// expansion, as described in the EIP-4844 spec.
func FakeExponential(factor, denom *uint256.Int, excessBlobGas uint64) (*uint256.Int, error) {
	numerator := uint256.NewInt(excessBlobGas)
	output := uint256.NewInt(0)
	numeratorAccum := new(uint256.Int)
	_, overflow := numeratorAccum.MulOverflow(factor, denom)
	if overflow {
		return nil, fmt.Errorf("FakeExponential: overflow in MulOverflow(factor=%v, denom=%v)", factor, denom)
	}
	divisor := new(uint256.Int)
	for i := 1; numeratorAccum.Sign() > 0; i++ {
		_, overflow = output.AddOverflow(output, numeratorAccum)
		if overflow {
			return nil, fmt.Errorf("FakeExponential: overflow in AddOverflow(output=%v, numeratorAccum=%v)", output, numeratorAccum)
		}
		_, overflow = divisor.MulOverflow(denom, uint256.NewInt(uint64(i)))
		if overflow {
			return nil, fmt.Errorf("FakeExponential: overflow in MulOverflow(denom=%v, i=%v)", denom, i)
		}
		_, overflow = numeratorAccum.MulDivOverflow(numeratorAccum, numerator, divisor)
		if overflow {
			return nil, fmt.Errorf("FakeExponential: overflow in MulDivOverflow(numeratorAccum=%v, numerator=%v, divisor=%v)", numeratorAccum, numerator, divisor)
		}
	}
	return output.Div(output, denom), nil
}

// GetBlobGasPrice derives the blob gas price from excess blob gas.
func GetBlobGasPrice(excessBlobGas uint64) (*uint256.Int, error) {
	return FakeExponential(uint256.NewInt(minBlobGasPrice), uint256.NewInt(blobGasPriceUpdateFraction), excessBlobGas)
}

// GetBlobGasUsed returns the blob gas consumed by numBlobs blobs.
func GetBlobGasUsed(numBlobs int) uint64 {
	return uint64(numBlobs) * blobGasPerBlob
}
