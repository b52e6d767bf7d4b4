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

package snapshot

import (
	"errors"

	"github.com/google/btree"
)

var ErrSnapshotNotFound = errors.New("snapshot: not found")

type entry struct {
	id       uint64
	snapshot *Snapshot
}

func entryLess(a, b entry) bool { return a.id < b.id }

// Registry is the ordered id -> Snapshot map. It is not safe for concurrent
// use without external locking; the provider engine takes no lock around
// it, so callers of the engine serialize access.
type Registry struct {
	tree   *btree.BTreeG[entry]
	nextID uint64
}

func NewRegistry() *Registry {
	return &Registry{tree: btree.NewG(16, entryLess), nextID: 1}
}

// MakeSnapshot deep-copies s (via Snapshot.clone) and returns its new id.
func (r *Registry) MakeSnapshot(s *Snapshot) uint64 {
	id := r.nextID
	r.nextID++
	r.tree.ReplaceOrInsert(entry{id: id, snapshot: s.clone()})
	return id
}

// RevertToSnapshot removes id and every snapshot with a larger id (use-once
// semantics: a snapshot, once reverted to, cannot be reverted to again, nor
// can anything taken after it), and returns the deep copy to restore from.
func (r *Registry) RevertToSnapshot(id uint64) (*Snapshot, error) {
	found, ok := r.tree.Get(entry{id: id})
	if !ok {
		return nil, ErrSnapshotNotFound
	}

	var toRemove []entry
	r.tree.AscendGreaterOrEqual(entry{id: id}, func(e entry) bool {
		toRemove = append(toRemove, e)
		return true
	})
	for _, e := range toRemove {
		r.tree.Delete(e)
	}

	return found.snapshot, nil
}

// Len reports the number of live snapshots, surfaced as a gauge metric.
func (r *Registry) Len() int { return r.tree.Len() }
