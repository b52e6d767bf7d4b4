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

// Package provider is the composing engine: it owns every sub-component
// (blockchain store, world state, mempool, block producer, snapshot and
// filter registries, signer, randomness source) and implements the
// operations a JSON-RPC dev-node host calls into (eth_sendTransaction,
// evm_mine, evm_snapshot, hardhat_impersonateAccount, and friends). Every
// sub-component is independently testable in isolation; this package's job
// is sequencing calls between them in the right order, one operation at a
// time.
package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/erigontech/erigon-lib/chain"
	libcommon "github.com/erigontech/erigon-lib/common"

	"github.com/erigontech/erigon-devnet/core/blockchain"
	"github.com/erigontech/erigon-devnet/core/evmexec"
	"github.com/erigontech/erigon-devnet/core/filter"
	"github.com/erigontech/erigon-devnet/core/forkclient"
	"github.com/erigontech/erigon-devnet/core/metrics"
	"github.com/erigontech/erigon-devnet/core/miner"
	"github.com/erigontech/erigon-devnet/core/randhash"
	"github.com/erigontech/erigon-devnet/core/signer"
	"github.com/erigontech/erigon-devnet/core/snapshot"
	"github.com/erigontech/erigon-devnet/core/state"
	"github.com/erigontech/erigon-devnet/core/txpool"
	"github.com/erigontech/erigon-devnet/logging"
	"github.com/erigontech/erigon-devnet/providercfg"
)

// Provider is the full engine instance a dev-node host constructs once and
// drives for its lifetime.
type Provider struct {
	blockchain blockchain.Blockchain
	state      state.WorldState
	irregular  *state.IrregularState
	mempool    *txpool.Mempool
	executor   evmexec.Executor

	signer     *signer.Registry
	filters    *filter.Registry
	snapshots  *snapshot.Registry
	randomness *randhash.Generator
	metrics    *metrics.Metrics
	logger     *logging.Logger

	networkID   uint64
	beneficiary libcommon.Address
	minGasPrice libcommon.U256
	ordering    txpool.MineOrdering

	blockTimeOffsetSeconds     int64
	forkMetadata               *ForkMetadata
	instanceID                 libcommon.Hash
	isAutoMining               bool
	nextBlockBaseFeePerGas     *libcommon.U256
	nextBlockTimestamp         *uint64
	allowBlocksWithSameTimestamp bool
	allowUnlimitedContractSize   bool
}

// now is the engine's clock; a package variable (not a field) so every
// timestamp-sensitive method reads the same source without threading it
// through every call.
var now = time.Now

// NewProvider constructs a Provider from cfg: a local genesis chain if
// cfg.Fork is nil, or a chain forked from a remote JSON-RPC endpoint
// otherwise. metricsInstance and logger are supplied by the host so every
// engine in a process shares one Prometheus registry and logging sink.
func NewProvider(ctx context.Context, cfg *providercfg.Configuration, executor evmexec.Executor, client forkclient.RPCClient, cache *forkclient.DiskCache, logger *logging.Logger, metricsInstance *metrics.Metrics) (*Provider, error) {
	randomness := randhash.NewWithSeed(fmt.Sprintf("devnet-%d", cfg.ChainID))
	irregular := state.NewIrregularState()

	genesisDiff := buildGenesisDiff(cfg)

	var bc blockchain.Blockchain
	var worldState state.WorldState
	var forkMeta *ForkMetadata

	if cfg.Fork != nil {
		forkedBc, fm, fs, err := forkBlockchain(ctx, cfg, client, cache, genesisDiff, irregular, randomness)
		if err != nil {
			return nil, err
		}
		bc = forkedBc
		forkMeta = fm
		worldState = fs
	} else {
		localBc, ls := localGenesisBlockchain(cfg, genesisDiff)
		bc = localBc
		worldState = ls
	}

	offset, err := initialBlockTimeOffset(cfg, now())
	if err != nil {
		return nil, err
	}

	p := &Provider{
		blockchain:                   bc,
		state:                        worldState,
		irregular:                    irregular,
		mempool:                      txpool.NewMempool(cfg.BlockGasLimit, cfg.ChainID),
		signer:                       signer.NewRegistry(),
		filters:                      filter.NewRegistry(),
		snapshots:                    snapshot.NewRegistry(),
		randomness:                   randomness,
		metrics:                      metricsInstance,
		logger:                       logger,
		networkID:                    cfg.NetworkID,
		beneficiary:                  cfg.Coinbase,
		minGasPrice:                  libcommon.NewU256(0),
		ordering:                     cfg.Mining.MemPoolOrder,
		blockTimeOffsetSeconds:       offset,
		forkMetadata:                 forkMeta,
		instanceID:                   libcommon.RandomHash(),
		isAutoMining:                 cfg.Mining.AutoMine,
		allowBlocksWithSameTimestamp: cfg.AllowBlocksWithSameTimestamp,
		allowUnlimitedContractSize:   cfg.AllowUnlimitedContractSize,
	}
	if cfg.InitialBaseFeePerGas != nil {
		v := *cfg.InitialBaseFeePerGas
		p.nextBlockBaseFeePerGas = &v
	}
	p.executor = executor
	return p, nil
}

func buildGenesisDiff(cfg *providercfg.Configuration) *state.StateDiff {
	accounts := make(map[libcommon.Address]state.AccountInfo)
	for _, ga := range cfg.GenesisAccounts {
		info := state.AccountInfo{Balance: ga.Balance, Nonce: ga.Nonce, CodeHash: libcommon.EmptyCodeHash}
		if len(ga.Code) > 0 {
			info = info.WithCode(ga.Code)
		}
		accounts[ga.Address] = info
	}
	if seed := cfg.GenesisAccountsSeed; seed != nil {
		gen := randhash.NewWithSeed(seed.Seed)
		for i := 0; i < seed.Count; i++ {
			h := gen.NextValue()
			addr := libcommon.BytesToAddress(h[12:])
			accounts[addr] = state.AccountInfo{Balance: seed.Balance, CodeHash: libcommon.EmptyCodeHash}
		}
	}
	return state.FromGenesisAccounts(accounts)
}

func localGenesisBlockchain(cfg *providercfg.Configuration, genesisDiff *state.StateDiff) (*blockchain.LocalBlockchain, *state.MemoryState) {
	genesisState := state.NewMemoryState(genesisDiff, libcommon.Hash{})
	header := &blockchain.Header{
		Number:        0,
		Timestamp:     genesisTimestamp(cfg),
		Beneficiary:   cfg.Coinbase,
		GasLimit:      cfg.BlockGasLimit,
		BlobGasUsed:   cfg.InitialBlobGas,
		ExcessBlobGas: cfg.InitialBlobGas,
	}
	if cfg.Spec.IsCancun() {
		header.ParentBeaconBlockRoot = cfg.InitialParentBeaconBlockRoot
	}
	if cfg.Spec.IsLondon() {
		if cfg.InitialBaseFeePerGas != nil {
			v := *cfg.InitialBaseFeePerGas
			header.BaseFeePerGas = &v
		} else {
			v := libcommon.NewU256(1_000_000_000)
			header.BaseFeePerGas = &v
		}
	}
	genesis := &blockchain.Block{Header: header}
	bc := blockchain.NewLocalBlockchain(cfg.ChainID, cfg.Spec, genesis, genesisState, libcommon.NewU256(0))
	return bc, genesisState
}

func forkBlockchain(ctx context.Context, cfg *providercfg.Configuration, client forkclient.RPCClient, cache *forkclient.DiskCache, genesisDiff *state.StateDiff, irregular *state.IrregularState, randomness state.RootSource) (*blockchain.ForkedBlockchain, *ForkMetadata, state.WorldState, error) {
	forkNumber, err := resolveForkBlockNumber(ctx, client, cfg.Fork)
	if err != nil {
		return nil, nil, nil, err
	}
	remoteHeader, err := client.HeaderByNumber(ctx, forkNumber)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("provider: fetch fork header %d: %w", forkNumber, err)
	}
	header := &blockchain.Header{
		Number:        remoteHeader.Number,
		ParentHash:    remoteHeader.ParentHash,
		Timestamp:     remoteHeader.Timestamp,
		Beneficiary:   remoteHeader.Beneficiary,
		BaseFeePerGas: remoteHeader.BaseFeePerGas,
		GasLimit:      remoteHeader.GasLimit,
		GasUsed:       remoteHeader.GasUsed,
		StateRoot:     remoteHeader.StateRoot,
	}
	bc := blockchain.NewForkedBlockchain(ctx, client, cache, cfg.ChainID, cfg.Spec, forkNumber, header, libcommon.NewU256(0))

	// Genesis accounts named in the config are layered as an irregular
	// override at the fork height, rather than folded into a fresh
	// genesis state the way a local chain does it: the fork point's real
	// state is the base, and the configured accounts are forced writes on
	// top of it, exactly like any other cheat-code mutation.
	fm := &ForkMetadata{ChainID: cfg.ChainID, ForkBlockNumber: forkNumber, ForkBlockHash: header.Hash()}
	for _, addr := range genesisDiff.Accounts() {
		d, _ := genesisDiff.Get(addr)
		if d.Info != nil {
			irregular.ApplyAccountChange(forkNumber, addr, *d.Info, randomness)
		}
	}
	worldState, err := bc.StateAtBlockNumber(forkNumber, irregular.StateOverrides(forkNumber))
	if err != nil {
		return nil, nil, nil, err
	}
	return bc, fm, worldState, nil
}

func resolveForkBlockNumber(ctx context.Context, client forkclient.RPCClient, fork *providercfg.ForkConfig) (uint64, error) {
	if fork.BlockNumber != nil {
		return *fork.BlockNumber, nil
	}
	// "latest" isn't in RPCClient's surface, which is scoped to numbered
	// lookups; a host wiring a real client is expected to resolve "latest"
	// itself and set BlockNumber before construction reaches here.
	return 0, fmt.Errorf("provider: fork.block_number is required (latest-block resolution is a host responsibility)")
}

func genesisTimestamp(cfg *providercfg.Configuration) uint64 {
	if cfg.InitialDate != nil {
		return uint64(cfg.InitialDate.Unix())
	}
	return uint64(now().Unix())
}

// initialBlockTimeOffset derives block_time_offset_seconds from
// cfg.InitialDate: the gap between the requested genesis time and wall
// clock at construction, so the first mined block's timestamp continues
// naturally from InitialDate rather than jumping to "now".
func initialBlockTimeOffset(cfg *providercfg.Configuration, at time.Time) (int64, error) {
	if cfg.InitialDate == nil {
		return 0, nil
	}
	return cfg.InitialDate.Unix() - at.Unix(), nil
}

func (p *Provider) minerConfig() miner.Config {
	return miner.Config{
		ChainID:                    p.blockchain.ChainID(),
		Spec:                       p.blockchain.SpecID(),
		Beneficiary:                p.beneficiary,
		BlockGasLimit:              p.mempoolGasLimit(),
		MinGasPrice:                p.minGasPrice,
		AllowUnlimitedContractSize: p.allowUnlimitedContractSize,
	}
}

func (p *Provider) mempoolGasLimit() uint64 {
	return p.blockchain.LastBlock().Header.GasLimit
}

// ---- read-only accessors ----

func (p *Provider) ChainID() uint64     { return p.blockchain.ChainID() }
func (p *Provider) NetworkID() uint64   { return p.networkID }
func (p *Provider) SpecID() chain.Spec  { return p.blockchain.SpecID() }
func (p *Provider) Coinbase() libcommon.Address { return p.beneficiary }
func (p *Provider) InstanceID() libcommon.Hash  { return p.instanceID }
func (p *Provider) Logger() *logging.Logger     { return p.logger }
func (p *Provider) ForkMetadata() *ForkMetadata { return p.forkMetadata }

func (p *Provider) LastBlock() *blockchain.Block   { return p.blockchain.LastBlock() }
func (p *Provider) LastBlockNumber() uint64        { return p.blockchain.LastBlockNumber() }

func (p *Provider) TotalDifficultyByHash(hash libcommon.Hash) (libcommon.U256, error) {
	return p.blockchain.TotalDifficultyByHash(hash)
}

// BlockByBlockSpec resolves spec against the current chain. Pending
// resolves to nil with no error: callers that need pending-block data go
// through MinePendingBlock instead of getting a manufactured placeholder
// block back.
func (p *Provider) BlockByBlockSpec(spec BlockSpec) (*blockchain.Block, error) {
	switch {
	case spec.Number != nil:
		block, err := p.blockchain.BlockByNumber(*spec.Number)
		if err != nil {
			return nil, ErrInvalidBlockNumberOrHash
		}
		return block, nil
	case spec.Hash != nil:
		block, err := p.blockchain.BlockByHash(*spec.Hash)
		if err != nil {
			return nil, ErrInvalidBlockNumberOrHash
		}
		return block, nil
	case spec.Tag != nil:
		switch *spec.Tag {
		case Earliest:
			block, err := p.blockchain.BlockByNumber(0)
			if err != nil {
				return nil, ErrInvalidBlockNumberOrHash
			}
			return block, nil
		case Latest:
			return p.blockchain.LastBlock(), nil
		case Safe, Finalized:
			if !p.blockchain.SpecID().IsPostMerge() {
				return nil, &InvalidBlockTagError{BlockSpec: spec, Spec: p.blockchain.SpecID()}
			}
			return p.blockchain.LastBlock(), nil
		case Pending:
			return nil, nil
		}
	}
	return nil, ErrInvalidBlockNumberOrHash
}

// StateByBlockSpec resolves the world-state view backing a JSON-RPC call
// tagged with blockSpec. A nil blockSpec means "latest". Pending resolves
// by materializing (but not committing) a pending block.
func (p *Provider) StateByBlockSpec(blockSpec *BlockSpec) (state.WorldState, error) {
	if blockSpec == nil {
		return p.blockchain.StateAtBlockNumber(p.blockchain.LastBlockNumber(), p.irregular.StateOverrides(p.blockchain.LastBlockNumber()))
	}
	block, err := p.BlockByBlockSpec(*blockSpec)
	if err != nil {
		return nil, err
	}
	if block == nil {
		result, err := p.minePendingBlock()
		if err != nil {
			return nil, err
		}
		return result.State, nil
	}
	return p.blockchain.StateAtBlockNumber(block.Number(), p.irregular.StateOverrides(block.Number()))
}

func (p *Provider) Balance(address libcommon.Address, blockSpec *BlockSpec) (libcommon.U256, error) {
	ws, err := p.StateByBlockSpec(blockSpec)
	if err != nil {
		return libcommon.U256{}, err
	}
	info, err := ws.Basic(address)
	if err != nil {
		return libcommon.U256{}, err
	}
	if info == nil {
		return libcommon.U256{}, nil
	}
	return info.Balance, nil
}

func (p *Provider) GetTransactionCount(address libcommon.Address, blockSpec *BlockSpec) (uint64, error) {
	ws, err := p.StateByBlockSpec(blockSpec)
	if err != nil {
		return 0, err
	}
	info, err := ws.Basic(address)
	if err != nil {
		return 0, err
	}
	if info == nil {
		return 0, nil
	}
	return info.Nonce, nil
}

func (p *Provider) GetCode(address libcommon.Address, blockSpec *BlockSpec) (libcommon.Bytes, error) {
	ws, err := p.StateByBlockSpec(blockSpec)
	if err != nil {
		return nil, err
	}
	info, err := ws.Basic(address)
	if err != nil {
		return nil, err
	}
	if info == nil || info.Code == nil {
		return nil, nil
	}
	return info.Code.Code, nil
}

func (p *Provider) GetStorageAt(address libcommon.Address, index libcommon.U256, blockSpec *BlockSpec) (libcommon.U256, error) {
	ws, err := p.StateByBlockSpec(blockSpec)
	if err != nil {
		return libcommon.U256{}, err
	}
	return ws.Storage(address, index)
}

// ---- mutation ----

// SetBalance force-sets address's balance via an irregular-state override
// at the current block height, then re-validates the mempool against the
// new balance.
func (p *Provider) SetBalance(address libcommon.Address, balance libcommon.U256) error {
	info, err := p.state.ModifyAccount(address, func(bal *libcommon.U256, nonce *uint64, code **state.Bytecode) {
		*bal = balance
	}, func() (state.AccountInfo, error) { return state.EmptyAccount(), nil })
	if err != nil {
		return err
	}
	p.recordOverride(address, info)
	return p.mempool.Update(p.state)
}

func (p *Provider) SetNonce(address libcommon.Address, nonce uint64) error {
	info, err := p.state.ModifyAccount(address, func(bal *libcommon.U256, n *uint64, code **state.Bytecode) {
		*n = nonce
	}, func() (state.AccountInfo, error) { return state.EmptyAccount(), nil })
	if err != nil {
		return err
	}
	p.recordOverride(address, info)
	return p.mempool.Update(p.state)
}

// SetCode force-sets address's code. Unlike SetBalance/SetNonce this does
// not re-validate the mempool: code has no bearing on the gas-limit/nonce/
// balance checks AddTransaction and Update perform.
func (p *Provider) SetCode(address libcommon.Address, code libcommon.Bytes) error {
	bc := state.NewBytecode(code)
	info, err := p.state.ModifyAccount(address, func(bal *libcommon.U256, nonce *uint64, c **state.Bytecode) {
		*c = &bc
	}, func() (state.AccountInfo, error) { return state.EmptyAccount(), nil })
	if err != nil {
		return err
	}
	info.Code = &bc
	info.CodeHash = bc.Hash
	p.recordOverride(address, info)
	return nil
}

func (p *Provider) recordOverride(address libcommon.Address, info state.AccountInfo) {
	p.irregular.ApplyAccountChange(p.blockchain.LastBlockNumber(), address, info, p.randomness)
}

// SetAccountStorageSlot writes value at index and records the change (prior
// value to value) as an irregular-state override. The slot is written exactly once: the
// underlying write returns the prior value directly rather than requiring
// a separate read beforehand.
func (p *Provider) SetAccountStorageSlot(address libcommon.Address, index, value libcommon.U256) (libcommon.U256, error) {
	prior, err := p.state.SetAccountStorageSlot(address, index, value)
	if err != nil {
		return libcommon.U256{}, err
	}
	slot := state.NewChangedSlot(prior, value)
	p.irregular.ApplyStorageChange(p.blockchain.LastBlockNumber(), address, index, slot, nil, p.randomness)
	return prior, nil
}

func (p *Provider) SetCoinbase(address libcommon.Address) { p.beneficiary = address }

func (p *Provider) SetNextBlockBaseFeePerGas(fee libcommon.U256) { p.nextBlockBaseFeePerGas = &fee }

func (p *Provider) SetNextPrevRandao(value libcommon.Hash) { p.randomness.SetNext(value) }

// SetNextBlockTimestamp validates timestamp against the tip's timestamp
// before recording it.
func (p *Provider) SetNextBlockTimestamp(timestamp uint64) (uint64, error) {
	latest := p.blockchain.LastBlock().Header.Timestamp
	switch {
	case timestamp < latest:
		return 0, &TimestampLowerThanPreviousError{Proposed: timestamp, Previous: latest}
	case timestamp == latest:
		return 0, &TimestampEqualsPreviousError{Proposed: timestamp}
	default:
		p.nextBlockTimestamp = &timestamp
		return timestamp, nil
	}
}

func (p *Provider) SetAutoMining(enabled bool) { p.isAutoMining = enabled }
func (p *Provider) IsAutoMining() bool         { return p.isAutoMining }

// IncreaseBlockTime adds seconds to the running offset applied to every
// future mined block's timestamp (hardhat's evm_increaseTime).
func (p *Provider) IncreaseBlockTime(seconds int64) int64 {
	p.blockTimeOffsetSeconds += seconds
	return p.blockTimeOffsetSeconds
}

// ---- impersonation ----

func (p *Provider) ImpersonateAccount(address libcommon.Address) bool {
	return p.signer.Impersonation.Impersonate(address)
}

func (p *Provider) StopImpersonatingAccount(address libcommon.Address) bool {
	return p.signer.Impersonation.StopImpersonating(address)
}

func (p *Provider) IsImpersonated(address libcommon.Address) bool {
	return p.signer.Impersonation.IsImpersonated(address)
}

// AddLocalAccount registers a signing key the engine can sign transactions
// and messages with directly, without impersonation.
func (p *Provider) AddLocalAccount(key *secp256k1.PrivateKey) libcommon.Address {
	return p.signer.AddLocalAccount(key)
}

func (p *Provider) Sign(address libcommon.Address, message []byte) (*signer.SignedTransaction, error) {
	return p.signer.Sign(address, message)
}

// ---- transactions ----

// SendTransaction signs req (impersonated or local-account) and queues the
// resulting transaction in the mempool, notifying pending-transaction
// filters on success.
func (p *Provider) SendTransaction(req TransactionRequest) (libcommon.Hash, error) {
	tx, err := p.buildPendingTransaction(req)
	if err != nil {
		return libcommon.Hash{}, err
	}
	return p.addPendingTransaction(tx)
}

func (p *Provider) buildPendingTransaction(req TransactionRequest) (*txpool.PendingTransaction, error) {
	nonce := req.Nonce
	if nonce == nil {
		n, err := p.GetTransactionCount(req.From, nil)
		if err != nil {
			return nil, err
		}
		nonce = &n
	}
	gasLimit := req.GasLimit
	if gasLimit == nil {
		limit := p.mempoolGasLimit()
		gasLimit = &limit
	}
	maxFee := req.MaxFeePerGas
	if maxFee == nil {
		v := p.minGasPrice
		maxFee = &v
	}
	value := req.Value
	if value == nil {
		v := libcommon.NewU256(0)
		value = &v
	}
	chainID := p.blockchain.ChainID()
	if req.ChainID != nil {
		chainID = *req.ChainID
	}

	unsigned := unsignedDigest(req.From, req.To, *nonce, *gasLimit, *maxFee, *value, req.Data, chainID)
	signed, err := p.signer.SignTransactionRequest(req.From, unsigned)
	if err != nil {
		return nil, err
	}

	return &txpool.PendingTransaction{
		Hash:         signed.Digest,
		Sender:       signed.RecoveredSigner,
		Recipient:    req.To,
		Nonce:        *nonce,
		GasLimit:     *gasLimit,
		MaxFeePerGas: *maxFee,
		Value:        *value,
		ChainID:      chainID,
		Impersonated: signed.Impersonated,
	}, nil
}

// unsignedDigest stands in for the transaction/RLP codec this core doesn't
// own: a stable hash of the request's fields, playing the role the real
// signing hash would.
func unsignedDigest(from libcommon.Address, to *libcommon.Address, nonce, gasLimit uint64, maxFee, value libcommon.U256, data libcommon.Bytes, chainID uint64) libcommon.Hash {
	var buf []byte
	buf = append(buf, from[:]...)
	if to != nil {
		buf = append(buf, to[:]...)
	}
	buf = appendUint64(buf, nonce)
	buf = appendUint64(buf, gasLimit)
	maxFeeBytes := maxFee.Uint256().Bytes32()
	valueBytes := value.Uint256().Bytes32()
	buf = append(buf, maxFeeBytes[:]...)
	buf = append(buf, valueBytes[:]...)
	buf = append(buf, data...)
	buf = appendUint64(buf, chainID)
	return libcommon.Keccak256(buf)
}

func appendUint64(buf []byte, v uint64) []byte {
	var tmp [8]byte
	for i := 0; i < 8; i++ {
		tmp[7-i] = byte(v)
		v >>= 8
	}
	return append(buf, tmp[:]...)
}

func (p *Provider) addPendingTransaction(tx *txpool.PendingTransaction) (libcommon.Hash, error) {
	if err := p.mempool.AddTransaction(p.state, tx); err != nil {
		if p.metrics != nil {
			p.metrics.TransactionsRejected.Inc()
		}
		return libcommon.Hash{}, err
	}
	if p.metrics != nil {
		p.metrics.TransactionsAccepted.Inc()
	}
	p.filters.NotifyPendingTransaction(tx.Hash)
	if p.isAutoMining {
		if _, err := p.MineAndCommitBlock(nil); err != nil {
			return libcommon.Hash{}, err
		}
	}
	return tx.Hash, nil
}

func (p *Provider) TransactionByHash(hash libcommon.Hash) (*TransactionAndBlock, error) {
	if tx, ok := p.mempool.TransactionByHash(hash); ok {
		return &TransactionAndBlock{Transaction: tx}, nil
	}
	block, err := p.blockchain.BlockByTransactionHash(hash)
	if err != nil {
		return nil, nil
	}
	receipt, err := p.blockchain.ReceiptByTransactionHash(hash)
	if err != nil {
		return nil, nil
	}
	return &TransactionAndBlock{
		BlockData: &BlockDataForTransaction{Block: block, TransactionIndex: uint64(receipt.TransactionIdx)},
	}, nil
}

func (p *Provider) TransactionReceipt(hash libcommon.Hash) (*blockchain.Receipt, error) {
	return p.blockchain.ReceiptByTransactionHash(hash)
}

// ---- filters ----

func (p *Provider) NewBlockFilter(isSubscription bool) libcommon.U256 {
	return p.filters.NewBlockFilter(isSubscription)
}

func (p *Provider) NewPendingTransactionFilter(isSubscription bool) libcommon.U256 {
	return p.filters.NewPendingTransactionFilter(isSubscription)
}

func (p *Provider) NewLogFilter(criteria filter.LogCriteria, isSubscription bool) libcommon.U256 {
	return p.filters.NewLogFilter(criteria, isSubscription)
}

func (p *Provider) GetFilterChanges(id libcommon.U256) (*filter.Filter, error) {
	return p.filters.GetFilterChanges(id)
}

func (p *Provider) GetFilterLogs(id libcommon.U256) ([]filter.LogEntry, error) {
	return p.filters.GetFilterLogs(id)
}

func (p *Provider) RemoveFilter(id libcommon.U256) error      { return p.filters.RemoveFilter(id) }
func (p *Provider) RemoveSubscription(id libcommon.U256) error { return p.filters.RemoveSubscription(id) }

// ---- snapshots ----

// MakeSnapshot captures every mutable piece of engine state so a later
// RevertToSnapshot can restore it exactly.
func (p *Provider) MakeSnapshot() uint64 {
	id := p.snapshots.MakeSnapshot(&snapshot.Snapshot{
		LastBlockNumber:     p.blockchain.LastBlockNumber(),
		BlockTimeOffsetSecs: p.blockTimeOffsetSeconds,
		Beneficiary:         p.beneficiary,
		Irregular:           p.irregular,
		Mempool:             p.mempool,
		NextBlockBaseFee:    p.nextBlockBaseFeePerGas,
		NextBlockTimestamp:  p.nextBlockTimestamp,
		Randomness:          p.randomness,
		WorldState:          p.state,
		CapturedAt:          now(),
	})
	if p.metrics != nil {
		p.metrics.LiveSnapshots.Set(float64(p.snapshots.Len()))
	}
	return id
}

// RevertToSnapshot restores engine state captured by MakeSnapshot(id),
// setting blockTimeOffsetSeconds to the snapshot's offset plus the whole
// wall-clock seconds that elapsed since the snapshot was taken, and
// discards every later snapshot.
func (p *Provider) RevertToSnapshot(id uint64) (bool, error) {
	snap, err := p.snapshots.RevertToSnapshot(id)
	if err != nil {
		return false, nil
	}
	elapsed := now().Sub(snap.CapturedAt)
	p.blockTimeOffsetSeconds = snap.BlockTimeOffsetSecs + int64(elapsed.Seconds())
	p.beneficiary = snap.Beneficiary
	if err := p.blockchain.RevertToBlock(snap.LastBlockNumber); err != nil {
		return false, err
	}
	p.irregular = snap.Irregular
	p.mempool = snap.Mempool
	p.nextBlockBaseFeePerGas = snap.NextBlockBaseFee
	p.nextBlockTimestamp = snap.NextBlockTimestamp
	p.randomness = snap.Randomness
	p.state = snap.WorldState
	if p.metrics != nil {
		p.metrics.LiveSnapshots.Set(float64(p.snapshots.Len()))
	}
	return true, nil
}

// ---- block production ----

// MineAndCommitBlockResult is the host-facing shape of a committed block:
// the block itself plus per-transaction outcomes.
type MineAndCommitBlockResult struct {
	Block     *blockchain.Block
	TxResults []miner.TxResult
}

// MineAndCommitBlock computes the next block's timestamp and PREVRANDAO,
// mines it via the block producer, then commits it: inserts it into the
// blockchain store, re-validates the mempool against the resulting state,
// and advances the engine's live state pointer. timestamp overrides
// next_block_timestamp/the running offset when non-nil, matching
// evm_mine's optional explicit-timestamp argument.
func (p *Provider) MineAndCommitBlock(timestamp *uint64) (*MineAndCommitBlockResult, error) {
	blockTimestamp, newOffset, err := p.nextBlockTimestampValue(timestamp)
	if err != nil {
		return nil, err
	}

	var prevrandao *libcommon.Hash
	if p.blockchain.SpecID().IsPostMerge() {
		v := p.randomness.NextValue()
		prevrandao = &v
	}

	result, err := p.mineBlock(blockTimestamp, prevrandao)
	if err != nil {
		return nil, err
	}

	if newOffset != nil {
		p.blockTimeOffsetSeconds = *newOffset
	}
	p.nextBlockBaseFeePerGas = nil
	p.nextBlockTimestamp = nil

	if _, err := p.blockchain.InsertBlock(result.Block, result.Diff, result.State); err != nil {
		return nil, err
	}
	if err := p.mempool.Update(result.State); err != nil {
		return nil, err
	}
	p.state = result.State

	var logs []evmexec.Log
	for _, txr := range result.TxResults {
		for _, l := range txr.Receipt.Logs {
			logs = append(logs, evmexec.Log{Address: l.Address, Topics: l.Topics, Data: l.Data})
		}
	}
	p.filters.NotifyNewBlock(result.Block.Number(), result.Block.Hash(), logs)

	if p.metrics != nil {
		p.metrics.BlocksMined.Inc()
		p.metrics.MempoolPending.Set(boolToFloat(p.mempool.HasPendingTransactions()))
		p.metrics.MempoolFuture.Set(boolToFloat(p.mempool.HasFutureTransactions()))
	}
	if p.logger != nil && p.logger.PrintLogs() {
		p.logger.Info(p.logger.PrintIntervalMinedBlockNumber(result.Block.Number(), len(result.TxResults) == 0, result.Block.Header.BaseFeePerGas))
	}

	return &MineAndCommitBlockResult{Block: result.Block, TxResults: result.TxResults}, nil
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// IntervalMine is the tick the auto-mining scheduler calls: mine and commit
// exactly one block with no explicit timestamp.
func (p *Provider) IntervalMine() error {
	_, err := p.MineAndCommitBlock(nil)
	return err
}

// MinePendingBlockResult is a one-shot materialization: the produced block
// and state are returned but never committed to the blockchain store.
type MinePendingBlockResult struct {
	Block     *blockchain.Block
	State     state.WorldState
	TxResults []miner.TxResult
}

// MinePendingBlock materializes what the next block would look like without
// committing it or advancing any engine state: no timestamp offset update,
// no PREVRANDAO advance (it peeks the generator's current seed instead),
// no mempool re-partition, no blockchain insertion.
func (p *Provider) MinePendingBlock() (*MinePendingBlockResult, error) {
	return p.minePendingBlock()
}

func (p *Provider) minePendingBlock() (*MinePendingBlockResult, error) {
	blockTimestamp, _, err := p.nextBlockTimestampValue(nil)
	if err != nil {
		return nil, err
	}
	var prevrandao *libcommon.Hash
	if p.blockchain.SpecID().IsPostMerge() {
		v := p.randomness.Seed()
		prevrandao = &v
	}
	result, err := p.mineBlock(blockTimestamp, prevrandao)
	if err != nil {
		return nil, err
	}
	return &MinePendingBlockResult{Block: result.Block, State: result.State, TxResults: result.TxResults}, nil
}

// mineBlock constructs a fresh miner.Producer from the current config each
// call: Config carries fields (beneficiary, gas limit) that can change
// between blocks, so nothing is gained by holding a Producer across calls
// for an otherwise stateless wrapper around cfg+executor.
func (p *Provider) mineBlock(timestamp uint64, prevrandao *libcommon.Hash) (*miner.MineBlockResult, error) {
	producer := miner.New(p.minerConfig(), p.executor)
	return producer.MineBlock(miner.Input{
		ParentHeader:             p.blockchain.LastBlock().Header,
		State:                    p.state,
		Mempool:                  p.mempool,
		Timestamp:                timestamp,
		Prevrandao:               prevrandao,
		Ordering:                 p.ordering,
		NextBlockBaseFeeOverride: p.nextBlockBaseFeePerGas,
	})
}

// nextBlockTimestampValue ports hardhat's next_block_timestamp algorithm:
// an explicit argument wins if given (and must not precede the tip);
// otherwise a previously set
// next_block_timestamp wins; otherwise wall-clock plus the running offset.
// If the result would equal the tip's timestamp and same-timestamp blocks
// are disallowed, it is nudged forward by one second. The second return
// value is the new running offset to adopt after commit (nil if the
// caller's offset should stay as-is, e.g. when committing didn't consume
// an explicit timestamp).
func (p *Provider) nextBlockTimestampValue(timestamp *uint64) (uint64, *int64, error) {
	current := uint64(now().Unix())
	latest := p.blockchain.LastBlock().Header.Timestamp

	var blockTimestamp uint64
	var newOffset *int64

	switch {
	case timestamp != nil:
		if *timestamp < latest {
			return 0, nil, &TimestampLowerThanPreviousError{Proposed: *timestamp, Previous: latest}
		}
		blockTimestamp = *timestamp
		offset := int64(*timestamp) - int64(current)
		newOffset = &offset
	case p.nextBlockTimestamp != nil:
		blockTimestamp = *p.nextBlockTimestamp
		offset := int64(blockTimestamp) - int64(current)
		newOffset = &offset
	default:
		blockTimestamp = uint64(int64(current) + p.blockTimeOffsetSeconds)
	}

	if blockTimestamp == latest && !p.allowBlocksWithSameTimestamp {
		blockTimestamp++
	}
	return blockTimestamp, newOffset, nil
}
