// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpc

import (
	"encoding/hex"
	"time"

	"golang.org/x/time/rate"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/galleryd/account"
	"github.com/bitmark-inc/galleryd/authorize"
	"github.com/bitmark-inc/galleryd/fault"
)

// Access - type for the RPC
type Access struct {
	Log     *logger.L
	Limiter *rate.Limiter
}

const (
	rateLimitAccess = 100
	rateBurstAccess = 50
)

// NewAccess - create the secret release service
func NewAccess(log *logger.L) *Access {
	return &Access{
		Log:     log,
		Limiter: rate.NewLimiter(rateLimitAccess, rateBurstAccess),
	}
}

// AccessArguments - arguments for RPC request
type AccessArguments struct {
	Identity  *account.Account  `json:"identity"`
	AssetId   uint64            `json:"assetId"`
	Timestamp uint64            `json:"timestamp"`
	Signature account.Signature `json:"signature"`
}

// AccessReply - results from access RPC request
//
// secret material is hex encoded for transport
type AccessReply struct {
	AssetId     uint64 `json:"assetId"`
	KeyMaterial string `json:"keyMaterial"`
	Nonce       string `json:"nonce"`
}

// Request - release the decryption secret of an owned asset
//
// a remote caller only ever sees three outcomes: the secret, a rate
// limit, or one uniform denial; the particular check that failed is
// logged but never echoed, so a prober cannot separate a stale
// timestamp from a bad signature or a missing balance
func (access *Access) Request(arguments *AccessArguments, reply *AccessReply) error {
	if err := rateLimit(access.Limiter); nil != err {
		return err
	}

	request := authorize.Request{
		Identity:  arguments.Identity,
		AssetId:   arguments.AssetId,
		Timestamp: arguments.Timestamp,
		Signature: arguments.Signature,
	}

	secret, err := authorize.Authorize(&request, time.Now())
	if nil != err {
		switch {
		case fault.IsErrStale(err), err == fault.InvalidSignature, err == fault.NotOwner:
			return fault.AccessDenied
		case err == fault.RateLimiting:
			return err
		case err == fault.SecretNotFound:
			return fault.KeyServiceFault
		default:
			return err
		}
	}

	reply.AssetId = arguments.AssetId
	reply.KeyMaterial = hex.EncodeToString(secret.KeyMaterial[:])
	reply.Nonce = hex.EncodeToString(secret.Nonce[:])
	return nil
}
