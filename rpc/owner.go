// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpc

import (
	"golang.org/x/time/rate"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/galleryd/account"
	"github.com/bitmark-inc/galleryd/ledger"
)

// Owner - type for the RPC
type Owner struct {
	Log     *logger.L
	Limiter *rate.Limiter
}

const (
	rateLimitOwner = 200
	rateBurstOwner = 100
)

// NewOwner - create the ownership query service
func NewOwner(log *logger.L) *Owner {
	return &Owner{
		Log:     log,
		Limiter: rate.NewLimiter(rateLimitOwner, rateBurstOwner),
	}
}

// BalanceArguments - arguments for RPC request
type BalanceArguments struct {
	Owner   *account.Account `json:"owner"`
	AssetId uint64           `json:"assetId"`
}

// BalanceReply - results from balance RPC request
type BalanceReply struct {
	AssetId uint64 `json:"assetId"`
	Balance uint64 `json:"balance"`
}

// Balance - count of units held outside escrow
func (owner *Owner) Balance(arguments *BalanceArguments, reply *BalanceReply) error {
	if err := rateLimit(owner.Limiter); nil != err {
		return err
	}

	reply.AssetId = arguments.AssetId
	reply.Balance = ledger.BalanceOf(arguments.Owner, arguments.AssetId)
	return nil
}

// PayeeBalanceArguments - arguments for RPC request
type PayeeBalanceArguments struct {
	Identity *account.Account `json:"identity"`
}

// PayeeBalanceReply - results from payee balance RPC request
type PayeeBalanceReply struct {
	Amount uint64 `json:"amount"`
}

// PayeeBalance - accumulated sale proceeds of an identity
func (owner *Owner) PayeeBalance(arguments *PayeeBalanceArguments, reply *PayeeBalanceReply) error {
	if err := rateLimit(owner.Limiter); nil != err {
		return err
	}

	reply.Amount = ledger.PayeeBalance(arguments.Identity)
	return nil
}
