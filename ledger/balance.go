// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"github.com/bitmark-inc/galleryd/account"
	"github.com/bitmark-inc/galleryd/fault"
	"github.com/bitmark-inc/galleryd/storage"
)

// BalanceOf - spendable units of an asset held by an owner
//
// escrowed units are excluded; a missing record reads as zero
func BalanceOf(owner *account.Account, assetId uint64) uint64 {
	if nil == owner {
		return 0
	}
	n, _ := storage.Pool.Balances.GetN(balanceKey(owner.Bytes(), assetId))
	return n
}

// PayeeBalance - accrued sale proceeds payable to an identity
func PayeeBalance(identity *account.Account) uint64 {
	if nil == identity {
		return 0
	}
	n, _ := storage.Pool.Fees.GetN(identity.Bytes())
	return n
}

// stage a balance increase
func creditBalance(trx storage.Transaction, owner []byte, assetId uint64, units uint64) {
	key := balanceKey(owner, assetId)
	n, _ := trx.GetN(storage.Pool.Balances, key)
	trx.PutN(storage.Pool.Balances, key, n+units)
}

// stage a balance decrease
//
// the record is deleted when it reaches zero so the pool only holds
// positive balances
func debitBalance(trx storage.Transaction, owner []byte, assetId uint64, units uint64) error {
	key := balanceKey(owner, assetId)
	n, _ := trx.GetN(storage.Pool.Balances, key)
	if n < units {
		return fault.InsufficientBalance
	}
	if n == units {
		trx.Delete(storage.Pool.Balances, key)
	} else {
		trx.PutN(storage.Pool.Balances, key, n-units)
	}
	return nil
}

// stage accrual of sale proceeds to an identity
func creditProceeds(trx storage.Transaction, identity []byte, amount uint64) {
	if 0 == amount {
		return
	}
	n, _ := trx.GetN(storage.Pool.Fees, identity)
	trx.PutN(storage.Pool.Fees, identity, n+amount)
}
