// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package authorize - release a decryption secret against proof of ownership
//
// stateless per request: a request carries its own identity, timestamp
// and signature, and is checked against the current ledger state; no
// session or nonce is tracked, so replay of a captured request inside
// the freshness window is accepted as a residual risk (it only repeats
// a release to the already-authorized owner)
//
// the precise denial cause is logged here and must not be echoed to
// remote callers; the serving layer presents one uniform denial
package authorize

import (
	"fmt"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/galleryd/account"
	"github.com/bitmark-inc/galleryd/fault"
	"github.com/bitmark-inc/galleryd/keystore"
	"github.com/bitmark-inc/galleryd/ledger"
)

// DefaultFreshnessWindow - maximum age of an acceptable request
const DefaultFreshnessWindow = 5 * time.Minute

// tolerated forward clock skew of a requesting client
const allowedClockSkew = 30 * time.Second

// per-identity request rate
const (
	requestRate  = 10 // per second
	requestBurst = 20
)

// Request - one ownership proof
//
// the signature covers the canonical message
// "prove-ownership:<assetId>:<timestamp>" where timestamp is unix
// seconds in decimal
type Request struct {
	Identity  *account.Account
	AssetId   uint64
	Timestamp uint64
	Signature account.Signature
}

var globalData struct {
	sync.RWMutex
	log       *logger.L
	freshness time.Duration
	limiters  *gocache.Cache

	// set once during initialise
	initialised bool
}

// Initialise - set up the authorizer
//
// a zero freshness selects the default window
func Initialise(freshness time.Duration) error {
	globalData.Lock()
	defer globalData.Unlock()

	if globalData.initialised {
		return fault.AlreadyInitialised
	}

	if freshness <= 0 {
		freshness = DefaultFreshnessWindow
	}

	globalData.log = logger.New("authorize")
	globalData.freshness = freshness
	globalData.limiters = gocache.New(10*time.Minute, time.Minute)
	globalData.initialised = true

	globalData.log.Info("starting…")
	return nil
}

// Finalise - shut down the authorizer
func Finalise() error {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.NotInitialised
	}

	globalData.log.Info("shutting down…")
	globalData.log.Flush()
	globalData.limiters = nil
	globalData.initialised = false
	return nil
}

// CanonicalMessage - the exact byte string a requester must sign
func CanonicalMessage(assetId uint64, timestamp uint64) []byte {
	return []byte(fmt.Sprintf("prove-ownership:%d:%d", assetId, timestamp))
}

// Authorize - run the full release protocol for one request
//
// checks in order: freshness, signature, current ownership, secret
// presence; the secret is only ever returned from the final success
// path and never appears in any log or error
func Authorize(request *Request, now time.Time) (*keystore.Secret, error) {
	globalData.RLock()
	defer globalData.RUnlock()

	if !globalData.initialised {
		return nil, fault.NotInitialised
	}

	if nil == request || nil == request.Identity {
		return nil, fault.MissingParameters
	}

	log := globalData.log
	identity := request.Identity.String()

	if !limiterFor(identity).Allow() {
		log.Warnf("rate limited: %s", identity)
		return nil, fault.RateLimiting
	}

	// freshness window bounds replay exposure
	requested := time.Unix(int64(request.Timestamp), 0)
	age := now.Sub(requested)
	if age > globalData.freshness || age < -allowedClockSkew {
		log.Infof("stale request: asset: %d  identity: %s  age: %s", request.AssetId, identity, age)
		return nil, fault.StaleRequest
	}

	// message authenticity
	message := CanonicalMessage(request.AssetId, request.Timestamp)
	err := request.Identity.CheckSignature(message, request.Signature)
	if nil != err {
		log.Infof("invalid signature: asset: %d  identity: %s", request.AssetId, identity)
		return nil, fault.InvalidSignature
	}

	// current on-ledger ownership
	if 0 == ledger.BalanceOf(request.Identity, request.AssetId) {
		log.Infof("not owner: asset: %d  identity: %s", request.AssetId, identity)
		return nil, fault.NotOwner
	}

	secret, err := keystore.Get(request.AssetId)
	if nil != err {
		// an owned asset without a secret is a data integrity fault,
		// not an access denial
		log.Criticalf("integrity fault: asset: %d exists with owner but has no secret", request.AssetId)
		return nil, fault.SecretNotFound
	}

	log.Infof("released secret: asset: %d  identity: %s", request.AssetId, identity)
	return secret, nil
}

// fetch or create the rate limiter of an identity
func limiterFor(identity string) *rate.Limiter {
	if cached, ok := globalData.limiters.Get(identity); ok {
		return cached.(*rate.Limiter)
	}

	limiter := rate.NewLimiter(requestRate, requestBurst)
	globalData.limiters.SetDefault(identity, limiter)
	return limiter
}
