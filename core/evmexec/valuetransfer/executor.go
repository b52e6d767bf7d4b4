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

// Package valuetransfer is a minimal evmexec.Executor: it applies balance
// and nonce changes and charges intrinsic gas, but never runs contract
// code. It exists so the provider engine and its tests can exercise every
// block-production invariant without a real interpreter attached; a running
// dev-node that needs actual contract execution supplies its own Executor.
package valuetransfer

import (
	"errors"

	"github.com/holiman/uint256"

	libcommon "github.com/erigontech/erigon-lib/common"

	"github.com/erigontech/erigon-devnet/core/evmexec"
	"github.com/erigontech/erigon-devnet/core/state"
)

// IntrinsicGas matches txpool.IntrinsicGas; duplicated here rather than
// imported to keep this package's only dependency on state, not txpool.
const IntrinsicGas = 21000

var ErrInsufficientBalance = errors.New("valuetransfer: insufficient balance")

// Executor implements evmexec.Executor by moving value from sender to
// recipient and incrementing the sender's nonce. A tx with no Recipient
// (contract creation) is accepted but deploys no code: Data is ignored.
type Executor struct{}

func New() *Executor { return &Executor{} }

func (e *Executor) ApplyTransaction(cfg evmexec.EVMConfig, worldState state.WorldState, header evmexec.BlockContext, tx evmexec.PendingTransaction) (evmexec.Receipt, evmexec.Trace, error) {
	gasPrice := effectiveGasPrice(tx, header)
	gasUsed := uint64(IntrinsicGas)
	fee := mulU64(gasPrice, gasUsed)

	senderInfo, err := worldState.ModifyAccount(tx.Sender, func(balance *libcommon.U256, nonce *uint64, code **state.Bytecode) {
		cost, _ := fee.Add(tx.Value)
		*balance = balance.SaturatingSub(cost)
		*nonce = *nonce + 1
	}, func() (state.AccountInfo, error) { return state.EmptyAccount(), nil })
	if err != nil {
		return evmexec.Receipt{}, evmexec.Trace{}, err
	}
	_ = senderInfo

	status := uint64(1)
	if tx.Recipient != nil {
		_, err := worldState.ModifyAccount(*tx.Recipient, func(balance *libcommon.U256, nonce *uint64, code **state.Bytecode) {
			*balance, _ = balance.Add(tx.Value)
		}, func() (state.AccountInfo, error) { return state.EmptyAccount(), nil })
		if err != nil {
			return evmexec.Receipt{}, evmexec.Trace{}, err
		}
	}

	return evmexec.Receipt{GasUsed: gasUsed, Status: status}, evmexec.Trace{Steps: 0}, nil
}

func effectiveGasPrice(tx evmexec.PendingTransaction, header evmexec.BlockContext) libcommon.U256 {
	if header.BaseFeePerGas == nil {
		return tx.MaxFeePerGas
	}
	if tx.MaxFeePerGas.Cmp(*header.BaseFeePerGas) < 0 {
		return tx.MaxFeePerGas
	}
	return *header.BaseFeePerGas
}

func mulU64(price libcommon.U256, gas uint64) libcommon.U256 {
	out := new(uint256.Int).Mul(price.Uint256(), uint256.NewInt(gas))
	return libcommon.U256FromBig(out)
}
