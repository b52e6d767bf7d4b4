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

// Package miner is the block producer: given a parent header, the current
// state and mempool, it drains pending transactions, applies them, and
// seals a new block. It never inserts the block into the blockchain or
// touches the mempool itself — that's the provider engine's job, so the
// same producer serves both committed blocks and one-shot "pending" block
// materialization.
package miner

import (
	"fmt"

	"github.com/erigontech/erigon-lib/chain"
	"github.com/erigontech/erigon-lib/common/math"
	libcommon "github.com/erigontech/erigon-lib/common"
	"github.com/holiman/uint256"

	"github.com/erigontech/erigon-devnet/core/blockchain"
	"github.com/erigontech/erigon-devnet/core/evmexec"
	"github.com/erigontech/erigon-devnet/core/state"
	"github.com/erigontech/erigon-devnet/core/txpool"
)

// Config carries the block-production policy that does not change from one
// block to the next.
type Config struct {
	ChainID                    uint64
	Spec                       chain.Spec
	Beneficiary                libcommon.Address
	BlockGasLimit              uint64
	MinGasPrice                libcommon.U256
	AllowUnlimitedContractSize bool
}

// Input is everything that does change from one block to the next.
type Input struct {
	ParentHeader             *blockchain.Header
	State                    state.WorldState
	Mempool                  *txpool.Mempool
	Timestamp                uint64
	Prevrandao               *libcommon.Hash
	Ordering                 txpool.MineOrdering
	NextBlockBaseFeeOverride *libcommon.U256
}

// TxResult pairs one applied transaction with its outcome.
type TxResult struct {
	Transaction *txpool.PendingTransaction
	Receipt     *blockchain.Receipt
	Trace       evmexec.Trace
}

// MineBlockResult is the block producer's full output: the sealed block,
// per-transaction results, the resulting world state, and the diff that
// produced it (the engine passes the diff to Blockchain.InsertBlock, whose
// per-block record keeps State, not the diff).
type MineBlockResult struct {
	Block     *blockchain.Block
	TxResults []TxResult
	State     state.WorldState
	Diff      *state.StateDiff
}

// Producer drains the mempool and applies transactions via an
// evmexec.Executor to produce one block.
type Producer struct {
	cfg      Config
	executor evmexec.Executor
}

func New(cfg Config, executor evmexec.Executor) *Producer {
	return &Producer{cfg: cfg, executor: executor}
}

// MineBlock never mutates input.State or input.Mempool in place: it clones
// the state before touching it and only reads the mempool.
func (p *Producer) MineBlock(input Input) (*MineBlockResult, error) {
	baseFee := p.selectBaseFee(input)

	newState := input.State.Clone()
	diff := state.NewStateDiff()

	var txs []*txpool.PendingTransaction
	if input.Mempool != nil {
		var err error
		txs, err = input.Mempool.PendingTransactionsFIFO(input.Ordering)
		if err != nil {
			return nil, err
		}
	}

	gasUsed := uint64(0)
	var txHashes []libcommon.Hash
	var results []TxResult
	var totalTip libcommon.U256

	header := &blockchain.Header{
		Number:        input.ParentHeader.Number + 1,
		ParentHash:    input.ParentHeader.Hash(),
		Timestamp:     input.Timestamp,
		Beneficiary:   p.cfg.Beneficiary,
		BaseFeePerGas: baseFee,
		Prevrandao:    input.Prevrandao,
		GasLimit:      p.cfg.BlockGasLimit,
	}

	for _, tx := range txs {
		newGasUsed, overflow := math.SafeAdd(gasUsed, tx.GasLimit)
		if overflow || newGasUsed > p.cfg.BlockGasLimit {
			break
		}

		execTx := evmexec.PendingTransaction{
			Hash:         tx.Hash,
			Sender:       tx.Sender,
			Recipient:    tx.Recipient,
			Nonce:        tx.Nonce,
			GasLimit:     tx.GasLimit,
			MaxFeePerGas: tx.MaxFeePerGas,
			Value:        tx.Value,
		}
		blockCtx := evmexec.BlockContext{
			Number:        header.Number,
			Timestamp:     header.Timestamp,
			Beneficiary:   header.Beneficiary,
			BaseFeePerGas: header.BaseFeePerGas,
			Prevrandao:    header.Prevrandao,
			GasLimit:      header.GasLimit,
		}
		cfg := evmexec.EVMConfig{Spec: p.cfg.Spec, ChainID: p.cfg.ChainID}

		execReceipt, trace, err := p.executor.ApplyTransaction(cfg, newState, blockCtx, execTx)
		if err != nil {
			return nil, fmt.Errorf("miner: apply transaction %s: %w", tx.Hash, err)
		}

		gasUsed = newGasUsed
		txHashes = append(txHashes, tx.Hash)

		recordAccount(diff, newState, tx.Sender)

		receipt := &blockchain.Receipt{
			TransactionHash: tx.Hash,
			BlockNumber:     header.Number,
			TransactionIdx:  len(txHashes) - 1,
			GasUsed:         execReceipt.GasUsed,
			CumulativeGas:   gasUsed,
			Status:          execReceipt.Status,
			ContractAddress: execReceipt.ContractAddress,
		}
		for _, l := range execReceipt.Logs {
			receipt.Logs = append(receipt.Logs, blockchain.Log{Address: l.Address, Topics: l.Topics, Data: l.Data})
		}
		results = append(results, TxResult{Transaction: tx, Receipt: receipt, Trace: trace})

		tip := tx.MaxFeePerGas
		if baseFee != nil && tip.Cmp(*baseFee) > 0 {
			tip = tip.SaturatingSub(*baseFee)
		} else if baseFee != nil {
			tip = libcommon.U256{}
		}
		fee := mulU64(tip, execReceipt.GasUsed)
		totalTip, _ = totalTip.Add(fee)
	}

	if !totalTip.IsZero() {
		_, err := newState.ModifyAccount(p.cfg.Beneficiary, func(balance *libcommon.U256, nonce *uint64, code **state.Bytecode) {
			*balance, _ = balance.Add(totalTip)
		}, func() (state.AccountInfo, error) { return state.EmptyAccount(), nil })
		if err != nil {
			return nil, fmt.Errorf("miner: credit beneficiary: %w", err)
		}
		recordAccount(diff, newState, p.cfg.Beneficiary)
	}

	header.GasUsed = gasUsed
	header.TransactionsRoot = TransactionsRoot(txHashes)
	header.ReceiptsRoot = receiptsRootOf(results)
	if p.cfg.Spec.IsCancun() {
		var parentExcess, parentUsed uint64
		if input.ParentHeader.ExcessBlobGas != nil {
			parentExcess = *input.ParentHeader.ExcessBlobGas
		}
		if input.ParentHeader.BlobGasUsed != nil {
			parentUsed = *input.ParentHeader.BlobGasUsed
		}
		excess := CalcExcessBlobGas(parentExcess, parentUsed)
		used := GetBlobGasUsed(0)
		header.ExcessBlobGas = &excess
		header.BlobGasUsed = &used
	}
	header.StateRoot = syntheticStateRoot(input.ParentHeader, header, txHashes)
	if ms, ok := newState.(*state.MemoryState); ok {
		ms.SetStateRoot(header.StateRoot)
	}

	block := &blockchain.Block{Header: header, Transactions: txHashes}
	for _, r := range results {
		block.Receipts = append(block.Receipts, r.Receipt)
	}

	return &MineBlockResult{Block: block, TxResults: results, State: newState, Diff: diff}, nil
}

// receiptsRootOf commits to every applied transaction's receipt via
// ReceiptsRoot, hashing each receipt's outcome fields into a leaf first
// since Receipt itself carries no stable hash.
func receiptsRootOf(results []TxResult) libcommon.Hash {
	leaves := make([]libcommon.Hash, len(results))
	for i, r := range results {
		var buf []byte
		buf = append(buf, r.Receipt.TransactionHash[:]...)
		buf = appendUint64(buf, r.Receipt.GasUsed)
		buf = appendUint64(buf, r.Receipt.CumulativeGas)
		buf = appendUint64(buf, r.Receipt.Status)
		for _, l := range r.Receipt.Logs {
			buf = append(buf, l.Address[:]...)
			buf = append(buf, l.Data...)
		}
		leaves[i] = libcommon.Keccak256(buf)
	}
	return ReceiptsRoot(leaves)
}

func appendUint64(buf []byte, v uint64) []byte {
	var tmp [8]byte
	for i := 0; i < 8; i++ {
		tmp[7-i] = byte(v)
		v >>= 8
	}
	return append(buf, tmp[:]...)
}

func recordAccount(diff *state.StateDiff, ws state.WorldState, addr libcommon.Address) {
	info, err := ws.Basic(addr)
	if err == nil && info != nil {
		diff.ApplyAccountChange(addr, *info)
	}
}

func (p *Producer) selectBaseFee(input Input) *libcommon.U256 {
	if input.NextBlockBaseFeeOverride != nil {
		v := *input.NextBlockBaseFeeOverride
		return &v
	}
	if !p.cfg.Spec.IsLondon() {
		return nil
	}
	if input.ParentHeader.BaseFeePerGas == nil {
		v := libcommon.NewU256(1_000_000_000)
		return &v
	}
	next := CalcBaseFee(input.ParentHeader.GasLimit, input.ParentHeader.GasUsed, input.ParentHeader.BaseFeePerGas.Uint256())
	v := libcommon.U256FromBig(next)
	return &v
}

func syntheticStateRoot(parent *blockchain.Header, header *blockchain.Header, txHashes []libcommon.Hash) libcommon.Hash {
	buf := append([]byte(nil), parent.StateRoot[:]...)
	for _, h := range txHashes {
		buf = append(buf, h[:]...)
	}
	buf = append(buf, header.Beneficiary[:]...)
	return libcommon.Keccak256(buf)
}

func mulU64(price libcommon.U256, gas uint64) libcommon.U256 {
	out := new(uint256.Int).Mul(price.Uint256(), uint256.NewInt(gas))
	return libcommon.U256FromBig(out)
}
