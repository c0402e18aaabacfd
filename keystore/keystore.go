// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package keystore - durable write-once storage of decryption secrets
//
// secrets live in their own Bolt database, never in the ledger store:
// the ledger is publicly readable while this file is the confidential
// half of the system
//
// a Put is write-once: the insert happens inside a single Bolt update
// so two concurrent puts for the same asset cannot both succeed, and
// the database has committed before Put returns
package keystore

import (
	"encoding/binary"
	"sync"

	"github.com/boltdb/bolt"

	"github.com/bitmark-inc/galleryd/fault"
)

// secret material sizes
const (
	KeySize   = 32
	NonceSize = 24

	secretRecordSize = KeySize + NonceSize
)

var secretsBucket = []byte("secrets")

// Secret - key material and nonce for one asset's content
type Secret struct {
	KeyMaterial [KeySize]byte
	Nonce       [NonceSize]byte
}

var globalData struct {
	sync.RWMutex
	db *bolt.DB

	// set once during initialise
	initialised bool
}

// Initialise - open the secret database
func Initialise(databaseFile string) error {
	globalData.Lock()
	defer globalData.Unlock()

	if globalData.initialised {
		return fault.AlreadyInitialised
	}

	db, err := bolt.Open(databaseFile, 0600, nil)
	if nil != err {
		return err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(secretsBucket)
		return err
	})
	if nil != err {
		db.Close()
		return err
	}

	globalData.db = db
	globalData.initialised = true
	return nil
}

// Finalise - close the secret database
func Finalise() error {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.NotInitialised
	}

	globalData.db.Close()
	globalData.db = nil
	globalData.initialised = false
	return nil
}

// Put - store the secret for an asset, exactly once
//
// fails with AlreadyExists if a secret is already present; on a nil
// error return the record is durably committed
func Put(assetId uint64, secret Secret) error {
	globalData.RLock()
	defer globalData.RUnlock()

	if !globalData.initialised {
		return fault.NotInitialised
	}

	return globalData.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(secretsBucket)

		key := assetKey(assetId)
		if nil != b.Get(key) {
			return fault.AlreadyExists
		}

		record := make([]byte, 0, secretRecordSize)
		record = append(record, secret.KeyMaterial[:]...)
		record = append(record, secret.Nonce[:]...)

		return b.Put(key, record)
	})
}

// Get - fetch the secret for an asset
func Get(assetId uint64) (*Secret, error) {
	globalData.RLock()
	defer globalData.RUnlock()

	if !globalData.initialised {
		return nil, fault.NotInitialised
	}

	var secret *Secret

	err := globalData.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(secretsBucket)

		record := b.Get(assetKey(assetId))
		if nil == record {
			return fault.SecretNotFound
		}
		if secretRecordSize != len(record) {
			return fault.InvalidSecretLength
		}

		secret = &Secret{}
		copy(secret.KeyMaterial[:], record[:KeySize])
		copy(secret.Nonce[:], record[KeySize:])
		return nil
	})
	if nil != err {
		return nil, err
	}

	return secret, nil
}

func assetKey(assetId uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, assetId)
	return key
}
