// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"bytes"

	"github.com/bitmark-inc/galleryd/account"
	"github.com/bitmark-inc/galleryd/fault"
	"github.com/bitmark-inc/galleryd/royalty"
	"github.com/bitmark-inc/galleryd/storage"
)

// CreateAsset - register a new work
//
// allocates the next assetId and persists the asset with zero minted
// supply; the payee list is fixed for the life of the asset
//
// register, when not nil, runs after the record is staged but before
// it is committed; if it fails the whole creation is abandoned and
// the asset never appears on the ledger
func CreateAsset(creator *account.Account, contentRef string, metadataRef string, unitPrice uint64, maxSupply uint64, payees []royalty.Payee, register func(assetId uint64) error) (uint64, error) {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return 0, fault.NotInitialised
	}

	if nil == creator {
		return 0, fault.MissingParameters
	}

	// references are stored behind a 16-bit length prefix; an
	// oversized one would wrap the prefix and corrupt the record
	if len(contentRef) > maxReferenceLength || len(metadataRef) > maxReferenceLength {
		return 0, fault.ReferenceTooLong
	}

	err := royalty.Validate(payees, globalData.payeeLimit)
	if nil != err {
		return 0, err
	}

	trx, err := storage.NewDBTransaction()
	if nil != err {
		return 0, err
	}

	assetId := nextId(trx, assetSequence)

	asset := Asset{
		AssetId:      assetId,
		ContentRef:   contentRef,
		MetadataRef:  metadataRef,
		UnitPrice:    unitPrice,
		MaxSupply:    maxSupply,
		MintedSupply: 0,
		Active:       true,
		Creator:      creator.Bytes(),
		Payees:       payees,
	}
	trx.Put(storage.Pool.Assets, idKey(assetId), asset.Pack())

	if nil != register {
		err = register(assetId)
		if nil != err {
			trx.Abort()
			return 0, err
		}
	}

	err = trx.Commit()
	if nil != err {
		return 0, err
	}

	globalData.log.Infof("created asset: %d  price: %d  supply: %d  payees: %d", assetId, unitPrice, maxSupply, len(payees))
	return assetId, nil
}

// DeactivateAsset - block further primary sales of an asset
//
// restricted to the creator; one-directional, a deactivated asset
// cannot be reactivated
func DeactivateAsset(caller *account.Account, assetId uint64) error {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.NotInitialised
	}

	if nil == caller {
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

	if !bytes.Equal(asset.Creator, caller.Bytes()) {
		trx.Abort()
		return fault.NotOwner
	}

	if !asset.Active {
		trx.Abort()
		return fault.AssetInactive
	}

	asset.Active = false
	trx.Put(storage.Pool.Assets, idKey(assetId), asset.Pack())

	err = trx.Commit()
	if nil != err {
		return err
	}

	globalData.log.Infof("deactivated asset: %d", assetId)
	return nil
}

// GetAsset - read one asset record
func GetAsset(assetId uint64) (*Asset, error) {
	packed := storage.Pool.Assets.Get(idKey(assetId))
	if nil == packed {
		return nil, fault.AssetNotFound
	}
	return PackedAsset(packed).Unpack(assetId)
}

// read an asset through a transaction
func getAsset(trx storage.Transaction, assetId uint64) (*Asset, error) {
	packed := trx.Get(storage.Pool.Assets, idKey(assetId))
	if nil == packed {
		return nil, fault.AssetNotFound
	}
	return PackedAsset(packed).Unpack(assetId)
}

// allocate the next identifier of a named sequence
//
// identifiers are monotonic starting from 1
func nextId(trx storage.Transaction, sequence []byte) uint64 {
	n, _ := trx.GetN(storage.Pool.Counters, sequence)
	n += 1
	trx.PutN(storage.Pool.Counters, sequence, n)
	return n
}
