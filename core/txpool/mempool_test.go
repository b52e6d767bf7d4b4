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

package txpool

import (
	"testing"

	"github.com/maticnetwork/crand"
	"github.com/stretchr/testify/require"

	libcommon "github.com/erigontech/erigon-lib/common"

	"github.com/erigontech/erigon-devnet/core/state"
)

const testChainID = 1337

// testAddress draws a random address from a crypto-seeded math/rand source,
// used here purely as fixture data: the mempool doesn't care where an
// address came from, only that many distinct senders are easy to generate.
func testAddress(t *testing.T) libcommon.Address {
	t.Helper()
	r := crand.New()
	var a libcommon.Address
	_, err := r.Read(a[:])
	require.NoError(t, err)
	return a
}

func fundedState(t *testing.T, addr libcommon.Address, balance libcommon.U256, nonce uint64) state.WorldState {
	t.Helper()
	diff := state.FromGenesisAccounts(map[libcommon.Address]state.AccountInfo{
		addr: {Balance: balance, Nonce: nonce, CodeHash: libcommon.EmptyCodeHash},
	})
	return state.NewMemoryState(diff, libcommon.Hash{})
}

func TestAddTransactionRoutesPendingVsFuture(t *testing.T) {
	sender := testAddress(t)
	st := fundedState(t, sender, libcommon.NewU256(1_000_000), 0)
	mp := NewMempool(30_000_000, testChainID)

	pending := &PendingTransaction{Hash: libcommon.RandomHash(), Sender: sender, Nonce: 0, GasLimit: 21000, MaxFeePerGas: libcommon.NewU256(1), ChainID: testChainID}
	future := &PendingTransaction{Hash: libcommon.RandomHash(), Sender: sender, Nonce: 1, GasLimit: 21000, MaxFeePerGas: libcommon.NewU256(1), ChainID: testChainID}

	require.NoError(t, mp.AddTransaction(st, future))
	require.NoError(t, mp.AddTransaction(st, pending))
	require.False(t, mp.HasPendingTransactions() == false && mp.HasFutureTransactions() == false)

	ready, err := mp.PendingTransactionsFIFO(Fifo)
	require.NoError(t, err)
	require.Len(t, ready, 1)
	require.Equal(t, pending.Hash, ready[0].Hash)
}

func TestAddTransactionRejectsDuplicateHash(t *testing.T) {
	sender := testAddress(t)
	st := fundedState(t, sender, libcommon.NewU256(1_000_000), 0)
	mp := NewMempool(30_000_000, testChainID)

	tx := &PendingTransaction{Hash: libcommon.RandomHash(), Sender: sender, Nonce: 0, GasLimit: 21000, MaxFeePerGas: libcommon.NewU256(1), ChainID: testChainID}
	require.NoError(t, mp.AddTransaction(st, tx))
	require.ErrorIs(t, mp.AddTransaction(st, tx), ErrKnownTransaction)
}

func TestAddTransactionRejectsInsufficientFunds(t *testing.T) {
	sender := testAddress(t)
	st := fundedState(t, sender, libcommon.NewU256(100), 0)
	mp := NewMempool(30_000_000, testChainID)

	tx := &PendingTransaction{Hash: libcommon.RandomHash(), Sender: sender, Nonce: 0, GasLimit: 21000, MaxFeePerGas: libcommon.NewU256(1000), Value: libcommon.NewU256(0), ChainID: testChainID}
	require.ErrorIs(t, mp.AddTransaction(st, tx), ErrInsufficientFunds)
}

func TestAddTransactionRejectsBelowIntrinsicGas(t *testing.T) {
	sender := testAddress(t)
	st := fundedState(t, sender, libcommon.NewU256(1_000_000), 0)
	mp := NewMempool(30_000_000, testChainID)

	tx := &PendingTransaction{Hash: libcommon.RandomHash(), Sender: sender, Nonce: 0, GasLimit: 100, MaxFeePerGas: libcommon.NewU256(1), ChainID: testChainID}
	require.ErrorIs(t, mp.AddTransaction(st, tx), ErrIntrinsicGas)
}

func TestAddTransactionRejectsChainIDMismatch(t *testing.T) {
	sender := testAddress(t)
	st := fundedState(t, sender, libcommon.NewU256(1_000_000), 0)
	mp := NewMempool(30_000_000, testChainID)

	tx := &PendingTransaction{Hash: libcommon.RandomHash(), Sender: sender, Nonce: 0, GasLimit: 21000, MaxFeePerGas: libcommon.NewU256(1), ChainID: testChainID + 1}
	require.ErrorIs(t, mp.AddTransaction(st, tx), ErrChainIDMismatch)
}

func TestUpdatePromotesFutureAfterNonceAdvance(t *testing.T) {
	sender := testAddress(t)
	st := fundedState(t, sender, libcommon.NewU256(1_000_000), 0)
	mp := NewMempool(30_000_000, testChainID)

	future := &PendingTransaction{Hash: libcommon.RandomHash(), Sender: sender, Nonce: 1, GasLimit: 21000, MaxFeePerGas: libcommon.NewU256(1), ChainID: testChainID}
	require.NoError(t, mp.AddTransaction(st, future))

	advanced := fundedState(t, sender, libcommon.NewU256(1_000_000), 1)
	require.NoError(t, mp.Update(advanced))

	ready, err := mp.PendingTransactionsFIFO(Fifo)
	require.NoError(t, err)
	require.Len(t, ready, 1)
	require.Equal(t, future.Hash, ready[0].Hash)
}

func TestPendingTransactionsFIFORejectsUnimplementedOrdering(t *testing.T) {
	mp := NewMempool(30_000_000, testChainID)
	_, err := mp.PendingTransactionsFIFO(PriorityFee)
	require.ErrorIs(t, err, ErrOrderingNotImplemented)
}

func TestCloneIsIndependent(t *testing.T) {
	sender := testAddress(t)
	st := fundedState(t, sender, libcommon.NewU256(1_000_000), 0)
	mp := NewMempool(30_000_000, testChainID)
	tx := &PendingTransaction{Hash: libcommon.RandomHash(), Sender: sender, Nonce: 0, GasLimit: 21000, MaxFeePerGas: libcommon.NewU256(1), ChainID: testChainID}
	require.NoError(t, mp.AddTransaction(st, tx))

	clone := mp.Clone()
	other := &PendingTransaction{Hash: libcommon.RandomHash(), Sender: sender, Nonce: 1, GasLimit: 21000, MaxFeePerGas: libcommon.NewU256(1), ChainID: testChainID}
	require.NoError(t, mp.AddTransaction(st, other))

	_, ok := clone.TransactionByHash(other.Hash)
	require.False(t, ok, "clone must not observe mutations made to the original after cloning")
}
