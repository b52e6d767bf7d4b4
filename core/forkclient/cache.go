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

package forkclient

import (
	"encoding/binary"
	"fmt"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/gofrs/flock"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/holiman/uint256"
	bolt "go.etcd.io/bbolt"

	libcommon "github.com/erigontech/erigon-lib/common"
	"github.com/erigontech/erigon-lib/kv"
)

// DiskCache persists remote fetches under a cache directory so a restarted
// engine doesn't re-fetch chain history it has already seen. A gofrs/flock
// lock makes the cache directory exclusive to one DiskCache at a time:
// NewDiskCache fails while another holder has it open, so engine instances
// cannot share one directory concurrently. An in-memory LRU sits in front
// for hot reads so most lookups never touch disk.
type DiskCache struct {
	db    *bolt.DB
	flock *flock.Flock
	front *lru.Cache[string, []byte]
}

// NewDiskCache opens (creating if absent) a bbolt database at
// <dir>/fork-cache.db, sized for frontCacheEntries hot entries in memory.
func NewDiskCache(dir string, frontCacheEntries int) (*DiskCache, error) {
	lock := flock.New(filepath.Join(dir, "fork-cache.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("forkclient: lock cache dir: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("forkclient: cache dir %s locked by another process", dir)
	}

	db, err := bolt.Open(filepath.Join(dir, "fork-cache.db"), 0o600, nil)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("forkclient: open cache: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range kv.Buckets {
			if _, err := tx.CreateBucketIfNotExists([]byte(bucket)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, fmt.Errorf("forkclient: init cache buckets: %w", err)
	}

	front, err := lru.New[string, []byte](frontCacheEntries)
	if err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}
	return &DiskCache{db: db, flock: lock, front: front}, nil
}

func (c *DiskCache) Close() error {
	dbErr := c.db.Close()
	lockErr := c.flock.Unlock()
	if dbErr != nil {
		return dbErr
	}
	return lockErr
}

func accountKey(address libcommon.Address, blockNumber uint64) []byte {
	key := make([]byte, libcommon.AddressLength+8)
	copy(key, address[:])
	binary.BigEndian.PutUint64(key[libcommon.AddressLength:], blockNumber)
	return key
}

func storageKey(address libcommon.Address, slot libcommon.U256, blockNumber uint64) []byte {
	key := make([]byte, libcommon.AddressLength+32+8)
	copy(key, address[:])
	slotBytes := slot.Uint256().Bytes32()
	copy(key[libcommon.AddressLength:], slotBytes[:])
	binary.BigEndian.PutUint64(key[libcommon.AddressLength+32:], blockNumber)
	return key
}

func blockNumberKey(n uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, n)
	return key
}

func (c *DiskCache) get(bucket string, key []byte) ([]byte, bool) {
	front := bucket + ":" + string(key)
	if v, ok := c.front.Get(front); ok {
		return v, true
	}
	var value []byte
	_ = c.db.View(func(tx *bolt.Tx) error {
		if b := tx.Bucket([]byte(bucket)); b != nil {
			if v := b.Get(key); v != nil {
				value = append([]byte(nil), v...)
			}
		}
		return nil
	})
	if value == nil {
		return nil, false
	}
	c.front.Add(front, value)
	return value, true
}

func (c *DiskCache) put(bucket string, key, value []byte) error {
	front := bucket + ":" + string(key)
	c.front.Add(front, value)
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucket)).Put(key, value)
	})
}

func (c *DiskCache) GetAccount(address libcommon.Address, blockNumber uint64) (*RemoteAccount, bool) {
	raw, ok := c.get(kv.ForkAccountAt, accountKey(address, blockNumber))
	if !ok {
		return nil, false
	}
	var a RemoteAccount
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, false
	}
	return &a, true
}

func (c *DiskCache) PutAccount(address libcommon.Address, blockNumber uint64, account *RemoteAccount) error {
	raw, err := json.Marshal(account)
	if err != nil {
		return err
	}
	return c.put(kv.ForkAccountAt, accountKey(address, blockNumber), raw)
}

func (c *DiskCache) GetStorage(address libcommon.Address, slot libcommon.U256, blockNumber uint64) (libcommon.U256, bool) {
	raw, ok := c.get(kv.ForkStorageAt, storageKey(address, slot, blockNumber))
	if !ok || len(raw) != 32 {
		return libcommon.U256{}, false
	}
	return libcommon.U256FromBig(new(uint256.Int).SetBytes(raw)), true
}

func (c *DiskCache) PutStorage(address libcommon.Address, slot libcommon.U256, blockNumber uint64, value libcommon.U256) error {
	b := value.Uint256().Bytes32()
	return c.put(kv.ForkStorageAt, storageKey(address, slot, blockNumber), b[:])
}

func (c *DiskCache) GetHeader(blockNumber uint64) (*RemoteHeader, bool) {
	raw, ok := c.get(kv.ForkBlockByNumber, blockNumberKey(blockNumber))
	if !ok {
		return nil, false
	}
	var h RemoteHeader
	if err := json.Unmarshal(raw, &h); err != nil {
		return nil, false
	}
	return &h, true
}

func (c *DiskCache) PutHeader(h *RemoteHeader) error {
	raw, err := json.Marshal(h)
	if err != nil {
		return err
	}
	if err := c.put(kv.ForkBlockByNumber, blockNumberKey(h.Number), raw); err != nil {
		return err
	}
	return c.put(kv.ForkBlockByHash, h.Hash[:], blockNumberKey(h.Number))
}

func (c *DiskCache) GetCode(hash libcommon.Hash) (libcommon.Bytes, bool) {
	raw, ok := c.get(kv.ForkCodeByHash, hash[:])
	if !ok {
		return nil, false
	}
	return libcommon.Bytes(raw), true
}

func (c *DiskCache) PutCode(hash libcommon.Hash, code libcommon.Bytes) error {
	return c.put(kv.ForkCodeByHash, hash[:], code)
}
