// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package keystore_test

import (
	"crypto/rand"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/galleryd/fault"
	"github.com/bitmark-inc/galleryd/keystore"
)

const testingDirName = "testing-keystore"

func setup(t *testing.T) {
	removeFiles()
	_ = os.Mkdir(testingDirName, 0700)

	err := keystore.Initialise(filepath.Join(testingDirName, "secrets.db"))
	assert.Nil(t, err, "keystore.Initialise")
}

func teardown() {
	_ = keystore.Finalise()
	removeFiles()
}

func removeFiles() {
	_ = os.RemoveAll(testingDirName)
}

func makeSecret(t *testing.T) keystore.Secret {
	var secret keystore.Secret
	_, err := rand.Read(secret.KeyMaterial[:])
	assert.Nil(t, err, "rand key")
	_, err = rand.Read(secret.Nonce[:])
	assert.Nil(t, err, "rand nonce")
	return secret
}

func TestPutGet(t *testing.T) {
	setup(t)
	defer teardown()

	secret := makeSecret(t)

	err := keystore.Put(7, secret)
	assert.Nil(t, err, "Put")

	stored, err := keystore.Get(7)
	assert.Nil(t, err, "Get")
	assert.Equal(t, secret, *stored, "round trip")

	// repeated gets return the identical secret
	again, err := keystore.Get(7)
	assert.Nil(t, err, "Get again")
	assert.Equal(t, *stored, *again, "idempotent get")
}

func TestGetMissing(t *testing.T) {
	setup(t)
	defer teardown()

	_, err := keystore.Get(404)
	assert.Equal(t, fault.SecretNotFound, err, "missing secret")
}

func TestWriteOnce(t *testing.T) {
	setup(t)
	defer teardown()

	first := makeSecret(t)
	second := makeSecret(t)

	err := keystore.Put(1, first)
	assert.Nil(t, err, "first put")

	err = keystore.Put(1, second)
	assert.Equal(t, fault.AlreadyExists, err, "second put")

	stored, err := keystore.Get(1)
	assert.Nil(t, err, "Get")
	assert.Equal(t, first, *stored, "first secret preserved")
}

// two concurrent puts for the same asset: exactly one succeeds
func TestConcurrentPut(t *testing.T) {
	setup(t)
	defer teardown()

	const writers = 8

	var wg sync.WaitGroup
	results := make([]error, writers)

	for i := 0; i < writers; i += 1 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			results[n] = keystore.Put(42, makeSecret(t))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if nil == err {
			succeeded += 1
		} else {
			assert.Equal(t, fault.AlreadyExists, err, "loser observes AlreadyExists")
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one winner")
}

// a put survives close and reopen
func TestDurability(t *testing.T) {
	setup(t)

	secret := makeSecret(t)
	err := keystore.Put(9, secret)
	assert.Nil(t, err, "Put")

	err = keystore.Finalise()
	assert.Nil(t, err, "Finalise")

	err = keystore.Initialise(filepath.Join(testingDirName, "secrets.db"))
	assert.Nil(t, err, "reopen")
	defer teardown()

	stored, err := keystore.Get(9)
	assert.Nil(t, err, "Get after reopen")
	assert.Equal(t, secret, *stored, "durable secret")
}
