// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"github.com/bitmark-inc/galleryd/account"
	"github.com/bitmark-inc/galleryd/fault"
	"github.com/bitmark-inc/galleryd/royalty"
	"github.com/bitmark-inc/galleryd/storage"
)

// Purchase - mint one unit of an asset to the buyer
//
// exact-payment policy: the payment must equal the unit price, an
// excess is rejected rather than silently absorbed or refunded
//
// the payment is disbursed in full: 10% platform fee, the remainder
// across the payees in proportion to their shares, rounding residue to
// the platform
func Purchase(buyer *account.Account, assetId uint64, paymentAmount uint64) error {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.NotInitialised
	}

	if nil == buyer {
		return fault.MissingParameters
	}

	trx, err := storage.NewDBTransaction()
	if nil != err {
		return err
	}

	asset, err := getAsset(trx, assetId)
	if nil != err {
		trx.Abort()
		return err
	}

	if !asset.Active {
		trx.Abort()
		return fault.AssetInactive
	}

	if 0 != asset.MaxSupply && asset.MintedSupply >= asset.MaxSupply {
		trx.Abort()
		return fault.SupplyExhausted
	}

	if paymentAmount < asset.UnitPrice {
		trx.Abort()
		return fault.InsufficientPayment
	}
	if paymentAmount > asset.UnitPrice {
		trx.Abort()
		return fault.ExcessivePayment
	}

	// mint one unit
	asset.MintedSupply += 1
	trx.Put(storage.Pool.Assets, idKey(assetId), asset.Pack())
	creditBalance(trx, buyer.Bytes(), assetId, 1)

	// disburse the payment in full
	platform, disbursements := royalty.SplitPrimary(paymentAmount, asset.Payees)
	creditProceeds(trx, globalData.platform, platform)
	for _, d := range disbursements {
		creditProceeds(trx, d.Identity, d.Amount)
	}

	err = trx.Commit()
	if nil != err {
		return err
	}

	globalData.log.Infof("purchase: asset: %d  minted: %d/%d  payment: %d", assetId, asset.MintedSupply, asset.MaxSupply, paymentAmount)
	return nil
}
