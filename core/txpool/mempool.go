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
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/btree"

	libcommon "github.com/erigontech/erigon-lib/common"

	"github.com/erigontech/erigon-devnet/core/state"
)

// MineOrdering selects how the block producer drains ready transactions.
// FIFO is the only mandated ordering; PriorityFee is a permitted extension
// that is not implemented yet.
type MineOrdering int

const (
	Fifo MineOrdering = iota
	PriorityFee
)

func (o MineOrdering) String() string {
	if o == PriorityFee {
		return "PriorityFee"
	}
	return "FIFO"
}

// UnmarshalYAML lets a Configuration name mem_pool_order as "FIFO" or
// "PriorityFee" rather than by ordinal.
func (o *MineOrdering) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var name string
	if err := unmarshal(&name); err != nil {
		return err
	}
	switch name {
	case "FIFO", "":
		*o = Fifo
	case "PriorityFee":
		*o = PriorityFee
	default:
		return fmt.Errorf("txpool: unknown mem_pool_order %q", name)
	}
	return nil
}

func (o MineOrdering) MarshalYAML() (interface{}, error) {
	return o.String(), nil
}

type queuedTx struct {
	nonce uint64
	tx    *PendingTransaction
}

func queuedLess(a, b queuedTx) bool { return a.nonce < b.nonce }

type senderQueue struct {
	pending *btree.BTreeG[queuedTx]
	future  *btree.BTreeG[queuedTx]
}

func newSenderQueue() *senderQueue {
	return &senderQueue{pending: btree.NewG(16, queuedLess), future: btree.NewG(16, queuedLess)}
}

// Mempool holds every known, not-yet-mined transaction, partitioned per
// sender into pending (nonce == account.nonce) and future (nonce ahead).
// A transaction whose max cost exceeds the sender's balance is not queued
// at all. Every transaction is in exactly one queue.
type Mempool struct {
	blockGasLimit uint64
	chainID       uint64
	bySender      map[libcommon.Address]*senderQueue
	knownHashes   mapset.Set[libcommon.Hash]
	byHash        map[libcommon.Hash]*PendingTransaction
	arrival       []libcommon.Hash
}

func NewMempool(blockGasLimit uint64, chainID uint64) *Mempool {
	return &Mempool{
		blockGasLimit: blockGasLimit,
		chainID:       chainID,
		bySender:      make(map[libcommon.Address]*senderQueue),
		knownHashes:   mapset.NewSet[libcommon.Hash](),
		byHash:        make(map[libcommon.Hash]*PendingTransaction),
	}
}

func (m *Mempool) queueFor(sender libcommon.Address) *senderQueue {
	q, ok := m.bySender[sender]
	if !ok {
		q = newSenderQueue()
		m.bySender[sender] = q
	}
	return q
}

// validate checks everything AddTransaction's doc comment promises except
// nonce-vs-queue routing, which the caller performs afterward.
func (m *Mempool) validate(st state.WorldState, tx *PendingTransaction, account *state.AccountInfo) error {
	if tx.ChainID != m.chainID {
		return ErrChainIDMismatch
	}
	if tx.GasLimit > m.blockGasLimit {
		return ErrGasLimitExceeded
	}
	if tx.GasLimit < IntrinsicGas {
		return ErrIntrinsicGas
	}
	if account.Balance.Cmp(tx.MaxCost()) < 0 {
		return ErrInsufficientFunds
	}
	return nil
}

// AddTransaction validates tx against st and routes it to the pending queue
// (nonce == account.nonce) or the future queue (nonce > account.nonce),
// deduplicating by hash. Sender-known/impersonated checks are the caller's
// responsibility (the signer/provider engine resolves the sender before
// this is reached); this enforces the pool-level invariants that belong to
// the mempool itself, chain id included.
func (m *Mempool) AddTransaction(st state.WorldState, tx *PendingTransaction) error {
	if m.knownHashes.Contains(tx.Hash) {
		return ErrKnownTransaction
	}
	account, err := st.Basic(tx.Sender)
	if err != nil {
		return err
	}
	if account == nil {
		empty := state.EmptyAccount()
		account = &empty
	}
	if tx.Nonce < account.Nonce {
		return ErrNonceTooLow
	}
	if err := m.validate(st, tx, account); err != nil {
		return err
	}

	q := m.queueFor(tx.Sender)
	entry := queuedTx{nonce: tx.Nonce, tx: tx}
	if tx.Nonce == account.Nonce {
		q.pending.ReplaceOrInsert(entry)
	} else {
		q.future.ReplaceOrInsert(entry)
	}
	m.knownHashes.Add(tx.Hash)
	m.byHash[tx.Hash] = tx
	m.arrival = append(m.arrival, tx.Hash)
	return nil
}

// SetBlockGasLimit evicts every transaction whose gas limit exceeds the new
// limit, then re-validates everything that remains against the given state.
func (m *Mempool) SetBlockGasLimit(st state.WorldState, limit uint64) error {
	m.blockGasLimit = limit
	for sender, q := range m.bySender {
		m.evictOverLimit(q.pending, sender)
		m.evictOverLimit(q.future, sender)
	}
	return m.Update(st)
}

func (m *Mempool) evictOverLimit(tree *btree.BTreeG[queuedTx], sender libcommon.Address) {
	var toDelete []queuedTx
	tree.Ascend(func(e queuedTx) bool {
		if e.tx.GasLimit > m.blockGasLimit {
			toDelete = append(toDelete, e)
		}
		return true
	})
	for _, e := range toDelete {
		tree.Delete(e)
		m.forget(e.tx.Hash)
	}
}

func (m *Mempool) forget(hash libcommon.Hash) {
	m.knownHashes.Remove(hash)
	delete(m.byHash, hash)
}

// Update re-partitions every known transaction against st: promotes
// future -> pending when the nonce now matches, demotes pending -> future
// when the nonce is ahead again, and drops whatever no longer validates
// (nonce strictly below the account's current nonce, or max cost above the
// sender's current balance).
func (m *Mempool) Update(st state.WorldState) error {
	for sender, q := range m.bySender {
		account, err := st.Basic(sender)
		if err != nil {
			return err
		}
		if account == nil {
			empty := state.EmptyAccount()
			account = &empty
		}

		var all []queuedTx
		q.pending.Ascend(func(e queuedTx) bool { all = append(all, e); return true })
		q.future.Ascend(func(e queuedTx) bool { all = append(all, e); return true })
		q.pending = btree.NewG(16, queuedLess)
		q.future = btree.NewG(16, queuedLess)

		for _, e := range all {
			if e.nonce < account.Nonce {
				m.forget(e.tx.Hash)
				continue
			}
			if err := m.validate(st, e.tx, account); err != nil {
				m.forget(e.tx.Hash)
				continue
			}
			if e.nonce == account.Nonce {
				q.pending.ReplaceOrInsert(e)
			} else {
				q.future.ReplaceOrInsert(e)
			}
		}
		if q.pending.Len() == 0 && q.future.Len() == 0 {
			delete(m.bySender, sender)
		}
	}
	return nil
}

func (m *Mempool) TransactionByHash(hash libcommon.Hash) (*PendingTransaction, bool) {
	tx, ok := m.byHash[hash]
	return tx, ok
}

func (m *Mempool) HasPendingTransactions() bool {
	for _, q := range m.bySender {
		if q.pending.Len() > 0 {
			return true
		}
	}
	return false
}

func (m *Mempool) HasFutureTransactions() bool {
	for _, q := range m.bySender {
		if q.future.Len() > 0 {
			return true
		}
	}
	return false
}

// PendingTransactionsFIFO returns every ready (pending-queue) transaction in
// overall arrival order, for ordering == Fifo. PriorityFee is a permitted
// extension that is not implemented.
func (m *Mempool) PendingTransactionsFIFO(ordering MineOrdering) ([]*PendingTransaction, error) {
	if ordering != Fifo {
		return nil, ErrOrderingNotImplemented
	}
	pendingHashes := make(map[libcommon.Hash]bool)
	for _, q := range m.bySender {
		q.pending.Ascend(func(e queuedTx) bool {
			pendingHashes[e.tx.Hash] = true
			return true
		})
	}
	var out []*PendingTransaction
	for _, hash := range m.arrival {
		if pendingHashes[hash] {
			out = append(out, m.byHash[hash])
		}
	}
	return out, nil
}

// Clone deep-copies the mempool, used by the snapshot registry.
func (m *Mempool) Clone() *Mempool {
	out := NewMempool(m.blockGasLimit, m.chainID)
	for sender, q := range m.bySender {
		nq := newSenderQueue()
		q.pending.Ascend(func(e queuedTx) bool { nq.pending.ReplaceOrInsert(e); return true })
		q.future.Ascend(func(e queuedTx) bool { nq.future.ReplaceOrInsert(e); return true })
		out.bySender[sender] = nq
	}
	for hash, tx := range m.byHash {
		out.byHash[hash] = tx
		out.knownHashes.Add(hash)
	}
	out.arrival = append([]libcommon.Hash(nil), m.arrival...)
	return out
}
