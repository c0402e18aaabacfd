// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"bytes"
	"encoding/binary"

	"github.com/bitmark-inc/galleryd/account"
	"github.com/bitmark-inc/galleryd/fault"
	"github.com/bitmark-inc/galleryd/royalty"
	"github.com/bitmark-inc/galleryd/storage"
)

// ListForResale - place one unit into escrow for resale
//
// the unit leaves the seller's spendable balance for as long as the
// listing is active
func ListForResale(seller *account.Account, assetId uint64, askPrice uint64) (uint64, error) {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return 0, fault.NotInitialised
	}

	if nil == seller {
		return 0, fault.MissingParameters
	}

	trx, err := storage.NewDBTransaction()
	if nil != err {
		return 0, err
	}

	// move one unit from the seller to escrow
	err = debitBalance(trx, seller.Bytes(), assetId, 1)
	if nil != err {
		trx.Abort()
		return 0, err
	}

	listingId := nextId(trx, listingSequence)

	listing := Listing{
		ListingId: listingId,
		AssetId:   assetId,
		Seller:    seller.Bytes(),
		AskPrice:  askPrice,
		Active:    true,
	}
	trx.Put(storage.Pool.Listings, idKey(listingId), listing.Pack())

	err = trx.Commit()
	if nil != err {
		return 0, err
	}

	globalData.log.Infof("listed: %d  asset: %d  ask: %d", listingId, assetId, askPrice)
	return listingId, nil
}

// CancelListing - return an escrowed unit to its seller
//
// restricted to the seller; the listing becomes inactive, terminally
func CancelListing(caller *account.Account, listingId uint64) error {
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

	listing, err := getListing(trx, listingId)
	if nil != err {
		trx.Abort()
		return err
	}

	if !listing.Active {
		trx.Abort()
		return fault.ListingInactive
	}

	if !bytes.Equal(listing.Seller, caller.Bytes()) {
		trx.Abort()
		return fault.NotSeller
	}

	// escrow unit returns to the seller
	creditBalance(trx, listing.Seller, listing.AssetId, 1)

	listing.Active = false
	trx.Put(storage.Pool.Listings, idKey(listingId), listing.Pack())

	err = trx.Commit()
	if nil != err {
		return err
	}

	globalData.log.Infof("cancelled listing: %d  asset: %d", listingId, listing.AssetId)
	return nil
}

// BuyResale - buy an escrowed unit
//
// exact-payment policy as for Purchase; the payment is disbursed in
// full: 10% platform, 30% across the payees, 60% to the seller,
// rounding residue to the platform
func BuyResale(buyer *account.Account, listingId uint64, paymentAmount uint64) error {
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

	listing, err := getListing(trx, listingId)
	if nil != err {
		trx.Abort()
		return err
	}

	if !listing.Active {
		trx.Abort()
		return fault.ListingInactive
	}

	if paymentAmount < listing.AskPrice {
		trx.Abort()
		return fault.InsufficientPayment
	}
	if paymentAmount > listing.AskPrice {
		trx.Abort()
		return fault.ExcessivePayment
	}

	// payee shares come from the listed asset
	asset, err := getAsset(trx, listing.AssetId)
	if nil != err {
		trx.Abort()
		return err
	}

	// the listing terminates and the escrow unit moves to the buyer
	listing.Active = false
	trx.Put(storage.Pool.Listings, idKey(listingId), listing.Pack())
	creditBalance(trx, buyer.Bytes(), listing.AssetId, 1)

	// disburse the payment in full
	platform, seller, disbursements := royalty.SplitResale(paymentAmount, asset.Payees)
	creditProceeds(trx, globalData.platform, platform)
	creditProceeds(trx, listing.Seller, seller)
	for _, d := range disbursements {
		creditProceeds(trx, d.Identity, d.Amount)
	}

	err = trx.Commit()
	if nil != err {
		return err
	}

	globalData.log.Infof("resale: listing: %d  asset: %d  payment: %d", listingId, listing.AssetId, paymentAmount)
	return nil
}

// ActiveListings - all listings currently open for purchase
//
// scans the listings pool in listingId order; cancelled and sold
// listings are skipped
func ActiveListings() ([]Listing, error) {
	listings := []Listing{}
	var scanErr error
	storage.Pool.Listings.Scan(func(key []byte, value []byte) bool {
		listingId := binary.BigEndian.Uint64(key)
		listing, err := PackedListing(value).Unpack(listingId)
		if nil != err {
			scanErr = err
			return false
		}
		if listing.Active {
			listings = append(listings, *listing)
		}
		return true
	})
	if nil != scanErr {
		return nil, scanErr
	}
	return listings, nil
}

// GetListing - read one listing record
func GetListing(listingId uint64) (*Listing, error) {
	packed := storage.Pool.Listings.Get(idKey(listingId))
	if nil == packed {
		return nil, fault.ListingNotFound
	}
	return PackedListing(packed).Unpack(listingId)
}

// read a listing through a transaction
func getListing(trx storage.Transaction, listingId uint64) (*Listing, error) {
	packed := trx.Get(storage.Pool.Listings, idKey(listingId))
	if nil == packed {
		return nil, fault.ListingNotFound
	}
	return PackedListing(packed).Unpack(listingId)
}
