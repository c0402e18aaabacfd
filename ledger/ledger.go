// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"encoding/binary"
	"sync"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/galleryd/account"
	"github.com/bitmark-inc/galleryd/fault"
)

// DefaultPayeeLimit - bound on the payee list length unless configured otherwise
const DefaultPayeeLimit = 16

// names of the identifier sequences in the Counters pool
var (
	assetSequence   = []byte("assets")
	listingSequence = []byte("listings")
)

// globalData - the ledger state
//
// the mutex makes each exposed operation an indivisible transaction
var globalData struct {
	sync.Mutex
	log        *logger.L
	platform   []byte // account encoding of the platform identity
	payeeLimit int

	// set once during initialise
	initialised bool
}

// Initialise - set up the ledger
//
// storage must already be initialised
func Initialise(platform *account.Account, payeeLimit int) error {
	globalData.Lock()
	defer globalData.Unlock()

	if globalData.initialised {
		return fault.AlreadyInitialised
	}

	if nil == platform {
		return fault.MissingParameters
	}

	if payeeLimit <= 0 {
		payeeLimit = DefaultPayeeLimit
	}

	globalData.log = logger.New("ledger")
	globalData.platform = platform.Bytes()
	globalData.payeeLimit = payeeLimit
	globalData.initialised = true

	globalData.log.Info("starting…")
	return nil
}

// Finalise - shut down the ledger
func Finalise() error {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.NotInitialised
	}

	globalData.log.Info("shutting down…")
	globalData.log.Flush()
	globalData.initialised = false
	return nil
}

// uint64 key for asset and listing identifiers
func idKey(id uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, id)
	return key
}

// owner ⧺ assetId key into the Balances pool
func balanceKey(owner []byte, assetId uint64) []byte {
	key := make([]byte, 0, len(owner)+8)
	key = append(key, owner...)
	return append(key, idKey(assetId)...)
}
