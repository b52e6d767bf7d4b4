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

import (
	"context"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/erigontech/erigon-lib/chain"
	libcommon "github.com/erigontech/erigon-lib/common"

	"github.com/erigontech/erigon-devnet/core/evmexec/valuetransfer"
	"github.com/erigontech/erigon-devnet/core/metrics"
	"github.com/erigontech/erigon-devnet/logging"
	"github.com/erigontech/erigon-devnet/providercfg"
)

func newTestProvider(t *testing.T) *Provider {
	t.Helper()

	zapLogger := zap.NewNop()
	logger, err := logging.New(zapLogger, false)
	require.NoError(t, err)

	cfg := &providercfg.Configuration{
		ChainID:       1337,
		NetworkID:     1337,
		Spec:          chain.Shanghai,
		BlockGasLimit: 30_000_000,
	}

	p, err := NewProvider(context.Background(), cfg, valuetransfer.New(), nil, nil, logger, metrics.New(prometheus.NewRegistry()))
	require.NoError(t, err)
	return p
}

func TestSendTransactionQueuesThenMinesRemovesFromMempool(t *testing.T) {
	key, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)

	p := newTestProvider(t)
	sender := p.AddLocalAccount(key)
	require.NoError(t, p.SetBalance(sender, libcommon.NewU256(1_000_000_000_000_000)))

	recipient := libcommon.Address{0x01}
	value := libcommon.NewU256(1000)
	hash, err := p.SendTransaction(TransactionRequest{From: sender, To: &recipient, Value: &value})
	require.NoError(t, err)

	pending, err := p.TransactionByHash(hash)
	require.NoError(t, err)
	require.NotNil(t, pending.Transaction)
	require.Nil(t, pending.BlockData)

	result, err := p.MineAndCommitBlock(nil)
	require.NoError(t, err)
	require.Len(t, result.TxResults, 1)
	require.Equal(t, uint64(1), p.LastBlockNumber())
	_, inPool := p.mempool.TransactionByHash(hash)
	require.False(t, inPool)

	recipientBalance, err := p.Balance(recipient, nil)
	require.NoError(t, err)
	require.Equal(t, value.String(), recipientBalance.String())
}

func TestImpersonatedAccountCanSendWithoutLocalKey(t *testing.T) {
	p := newTestProvider(t)
	impersonated := libcommon.Address{0x42}
	require.NoError(t, p.SetBalance(impersonated, libcommon.NewU256(1_000_000_000_000_000)))

	require.True(t, p.ImpersonateAccount(impersonated))
	require.True(t, p.IsImpersonated(impersonated))

	recipient := libcommon.Address{0x02}
	value := libcommon.NewU256(500)
	_, err := p.SendTransaction(TransactionRequest{From: impersonated, To: &recipient, Value: &value})
	require.NoError(t, err)

	require.True(t, p.StopImpersonatingAccount(impersonated))
	require.False(t, p.IsImpersonated(impersonated))
}

func TestSnapshotAndRevertRestoresBalanceAndBlockHeight(t *testing.T) {
	key, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)

	p := newTestProvider(t)
	sender := p.AddLocalAccount(key)
	require.NoError(t, p.SetBalance(sender, libcommon.NewU256(1_000_000_000_000_000)))

	before, err := p.Balance(sender, nil)
	require.NoError(t, err)

	id := p.MakeSnapshot()

	recipient := libcommon.Address{0x03}
	value := libcommon.NewU256(2000)
	_, err = p.SendTransaction(TransactionRequest{From: sender, To: &recipient, Value: &value})
	require.NoError(t, err)
	_, err = p.MineAndCommitBlock(nil)
	require.NoError(t, err)

	ok, err := p.RevertToSnapshot(id)
	require.NoError(t, err)
	require.True(t, ok)

	after, err := p.Balance(sender, nil)
	require.NoError(t, err)
	require.Equal(t, before.String(), after.String())
	require.Equal(t, uint64(0), p.LastBlockNumber())
}

func TestMinePendingBlockDoesNotCommit(t *testing.T) {
	p := newTestProvider(t)
	before := p.LastBlockNumber()

	result, err := p.MinePendingBlock()
	require.NoError(t, err)
	require.NotNil(t, result.Block)
	require.Equal(t, before, p.LastBlockNumber())
}

func TestSetNextBlockTimestampRejectsNonIncreasing(t *testing.T) {
	p := newTestProvider(t)
	latest := p.LastBlock().Header.Timestamp

	_, err := p.SetNextBlockTimestamp(latest)
	require.Error(t, err)

	_, err = p.SetNextBlockTimestamp(latest - 1)
	require.Error(t, err)

	accepted, err := p.SetNextBlockTimestamp(latest + 100)
	require.NoError(t, err)
	require.Equal(t, latest+100, accepted)
}

func TestAddTransactionRejectsUnknownNonLocalSender(t *testing.T) {
	p := newTestProvider(t)
	unknown := libcommon.Address{0x09}
	recipient := libcommon.Address{0x0a}
	value := libcommon.NewU256(1)
	_, err := p.SendTransaction(TransactionRequest{From: unknown, To: &recipient, Value: &value})
	require.Error(t, err)
}

