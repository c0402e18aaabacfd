// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"bytes"

	"github.com/bitmark-inc/galleryd/account"
	"github.com/bitmark-inc/galleryd/fault"
	"github.com/bitmark-inc/galleryd/storage"
)

// Withdraw - pay out the accumulated platform fee balance
//
// restricted to the platform identity; the balance is reset to zero
// and committed before the amount is reported to the caller, so a
// reentrant call cannot observe or withdraw the same balance twice
func Withdraw(caller *account.Account) (uint64, error) {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return 0, fault.NotInitialised
	}

	if nil == caller {
		return 0, fault.MissingParameters
	}

	if !bytes.Equal(globalData.platform, caller.Bytes()) {
		return 0, fault.NotPlatform
	}

	trx, err := storage.NewDBTransaction()
	if nil != err {
		return 0, err
	}

	amount, found := trx.GetN(storage.Pool.Fees, globalData.platform)
	if !found || 0 == amount {
		trx.Abort()
		return 0, fault.NothingToWithdraw
	}

	// state mutated before any value leaves the system
	trx.Delete(storage.Pool.Fees, globalData.platform)

	err = trx.Commit()
	if nil != err {
		return 0, err
	}

	globalData.log.Infof("withdraw: %d", amount)
	return amount, nil
}
