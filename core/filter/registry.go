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

package filter

import (
	"sync"

	libcommon "github.com/erigontech/erigon-lib/common"

	"github.com/erigontech/erigon-devnet/core/evmexec"
)

// Registry owns every live filter for one provider engine instance. Ids are
// strictly increasing U256 values, matching the wire type JSON-RPC expects
// for filter/subscription ids.
type Registry struct {
	mu      sync.Mutex
	nextID  uint64
	filters map[libcommon.U256]*Filter
	index   *addressIndex
}

func NewRegistry() *Registry {
	return &Registry{
		nextID:  1,
		filters: make(map[libcommon.U256]*Filter),
		index:   newAddressIndex(),
	}
}

func (r *Registry) allocate(kind Kind, isSubscription bool, criteria *LogCriteria) *Filter {
	id := libcommon.NewU256(r.nextID)
	r.nextID++
	f := &Filter{ID: id, Kind: kind, IsSubscription: isSubscription, Criteria: criteria}
	r.filters[id] = f
	return f
}

func (r *Registry) NewBlockFilter(isSubscription bool) libcommon.U256 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.allocate(NewBlocks, isSubscription, nil).ID
}

func (r *Registry) NewPendingTransactionFilter(isSubscription bool) libcommon.U256 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.allocate(NewPendingTransactions, isSubscription, nil).ID
}

func (r *Registry) NewLogFilter(criteria LogCriteria, isSubscription bool) libcommon.U256 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.allocate(Logs, isSubscription, &criteria).ID
}

// GetFilterChanges drains and returns whatever is buffered for id,
// regardless of kind; callers type-switch on the filter's Kind to interpret
// the result.
func (r *Registry) GetFilterChanges(id libcommon.U256) (*Filter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.filters[id]
	if !ok {
		return nil, ErrFilterNotFound
	}
	drained := &Filter{ID: f.ID, Kind: f.Kind, IsSubscription: f.IsSubscription, Criteria: f.Criteria}
	drained.blockEvents = f.takeBlocks()
	drained.txEvents = f.takeTransactions()
	drained.logEvents = f.takeLogs()
	return drained, nil
}

// GetFilterLogs is like GetFilterChanges but only valid for a Logs filter.
func (r *Registry) GetFilterLogs(id libcommon.U256) ([]LogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.filters[id]
	if !ok {
		return nil, ErrFilterNotFound
	}
	if f.Kind != Logs {
		return nil, &InvalidSubscriptionTypeError{FilterID: id, Expected: Logs.String(), Actual: f.Kind.String()}
	}
	return f.takeLogs(), nil
}

// RemoveFilter removes a polling filter. It refuses to remove a
// subscription; use RemoveSubscription for those.
func (r *Registry) RemoveFilter(id libcommon.U256) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.filters[id]
	if !ok {
		return ErrFilterNotFound
	}
	if f.IsSubscription {
		return &InvalidSubscriptionTypeError{FilterID: id, Expected: "filter", Actual: "subscription"}
	}
	delete(r.filters, id)
	return nil
}

// RemoveSubscription removes a subscription. It refuses to remove a polling
// filter; use RemoveFilter for those.
func (r *Registry) RemoveSubscription(id libcommon.U256) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.filters[id]
	if !ok {
		return ErrFilterNotFound
	}
	if !f.IsSubscription {
		return &InvalidSubscriptionTypeError{FilterID: id, Expected: "subscription", Actual: "filter"}
	}
	delete(r.filters, id)
	return nil
}

// NotifyPendingTransaction appends hash to every NewPendingTransactions
// filter's buffer. Called once per transaction accepted into the mempool.
func (r *Registry) NotifyPendingTransaction(hash libcommon.Hash) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.filters {
		if f.Kind == NewPendingTransactions {
			f.txEvents = append(f.txEvents, hash)
		}
	}
}

// NotifyNewBlock appends blockHash to every NewBlocks filter's buffer, and
// records logs against the address index and every matching Logs filter.
// Called once per block committed.
func (r *Registry) NotifyNewBlock(blockNumber uint64, blockHash libcommon.Hash, logs []evmexec.Log) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, f := range r.filters {
		if f.Kind == NewBlocks {
			f.blockEvents = append(f.blockEvents, blockHash)
		}
	}

	if len(logs) == 0 {
		return
	}
	addresses := make([]libcommon.Address, 0, len(logs))
	for _, l := range logs {
		addresses = append(addresses, l.Address)
	}
	r.index.record(blockNumber, addresses)

	for _, f := range r.filters {
		if f.Kind != Logs {
			continue
		}
		for _, l := range logs {
			if f.Criteria.Matches(blockNumber, l) {
				f.logEvents = append(f.logEvents, LogEntry{BlockNumber: blockNumber, BlockHash: blockHash, Log: l})
			}
		}
	}
}

// CandidateBlocks exposes the address index to historical eth_getLogs
// lookups so callers can narrow a [from, to] block range before reading
// receipts, when the criteria names specific addresses.
func (r *Registry) CandidateBlocks(addresses []libcommon.Address, from, to uint64) []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	bm := r.index.candidateBlocks(addresses, from, to)
	if bm == nil {
		return nil
	}
	arr := bm.ToArray()
	out := make([]uint64, len(arr))
	for i, v := range arr {
		out[i] = uint64(v)
	}
	return out
}
