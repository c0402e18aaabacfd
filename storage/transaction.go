// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"

	"github.com/bitmark-inc/galleryd/fault"
	"github.com/bitmark-inc/logger"
)

// Transaction - a staged batch of writes that commits atomically
//
// reads through the transaction observe its own staged writes
type Transaction interface {
	Begin() error
	Put(*PoolHandle, []byte, []byte)
	PutN(*PoolHandle, []byte, uint64)
	Delete(*PoolHandle, []byte)
	Get(*PoolHandle, []byte) []byte
	GetN(*PoolHandle, []byte) (uint64, bool)
	Has(*PoolHandle, []byte) bool
	Commit() error
	Abort()
}

type transactionData struct {
	sync.Mutex
	inUse  bool
	db     *leveldb.DB
	batch  *leveldb.Batch
	staged map[string][]byte // staged writes; nil value marks a delete
}

func newTransaction(db *leveldb.DB) Transaction {
	return &transactionData{
		db:     db,
		batch:  new(leveldb.Batch),
		staged: make(map[string][]byte),
	}
}

// Begin - mark the transaction in use
func (t *transactionData) Begin() error {
	t.Lock()
	defer t.Unlock()

	if t.inUse {
		return fault.TransactionAlreadyInUse
	}
	t.inUse = true
	return nil
}

// Put - stage a key/value pair
func (t *transactionData) Put(p *PoolHandle, key []byte, value []byte) {
	prefixed := p.prefixKey(key)

	// copy since callers may reuse their buffers before commit
	v := make([]byte, len(value))
	copy(v, value)

	t.staged[string(prefixed)] = v
	t.batch.Put(prefixed, v)
}

// PutN - stage a uint64 as an 8 byte big endian record
func (t *transactionData) PutN(p *PoolHandle, key []byte, value uint64) {
	buffer := make([]byte, 8)
	binary.BigEndian.PutUint64(buffer, value)
	t.Put(p, key, buffer)
}

// Delete - stage the removal of a key
func (t *transactionData) Delete(p *PoolHandle, key []byte) {
	prefixed := p.prefixKey(key)
	t.staged[string(prefixed)] = nil
	t.batch.Delete(prefixed)
}

// Get - read through the staged writes then the database
func (t *transactionData) Get(p *PoolHandle, key []byte) []byte {
	prefixed := p.prefixKey(key)

	if value, ok := t.staged[string(prefixed)]; ok {
		return value // nil if staged delete
	}

	value, err := t.db.Get(prefixed, nil)
	if leveldb.ErrNotFound == err {
		return nil
	}
	logger.PanicIfError("transaction.Get", err)
	return value
}

// GetN - read a record and decode first 8 bytes as big endian uint64
func (t *transactionData) GetN(p *PoolHandle, key []byte) (uint64, bool) {
	buffer := t.Get(p, key)
	if nil == buffer {
		return 0, false
	}
	if len(buffer) < 8 {
		logger.Panicf("transaction.GetN truncated record for: %x: %s", key, buffer)
	}
	return binary.BigEndian.Uint64(buffer[:8]), true
}

// Has - check if a key exists
func (t *transactionData) Has(p *PoolHandle, key []byte) bool {
	return nil != t.Get(p, key)
}

// Commit - atomically write all staged changes
func (t *transactionData) Commit() error {
	t.Lock()
	defer t.Unlock()

	err := t.db.Write(t.batch, nil)
	t.reset()
	return err
}

// Abort - discard all staged changes
func (t *transactionData) Abort() {
	t.Lock()
	defer t.Unlock()
	t.reset()
}

func (t *transactionData) reset() {
	t.batch.Reset()
	t.staged = make(map[string][]byte)
	t.inUse = false
}
