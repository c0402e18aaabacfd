// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/galleryd/fault"
	"github.com/bitmark-inc/galleryd/ledger"
)

// create an asset and mint one unit to carol
func mintToCarol(t *testing.T, unitPrice uint64) uint64 {
	assetId := createStandardAsset(t, unitPrice, 0)
	err := ledger.Purchase(carol, assetId, unitPrice)
	assert.Nil(t, err, "Purchase")
	return assetId
}

func TestListForResale(t *testing.T) {
	setup(t)
	defer teardown()

	assetId := mintToCarol(t, 1000)

	listingId, err := ledger.ListForResale(carol, assetId, 500)
	assert.Nil(t, err, "ListForResale")
	assert.Equal(t, uint64(1), listingId, "first listing id")

	// the unit is escrowed, not spendable
	assert.Equal(t, uint64(0), ledger.BalanceOf(carol, assetId), "seller balance")

	listing, err := ledger.GetListing(listingId)
	assert.Nil(t, err, "GetListing")
	assert.Equal(t, assetId, listing.AssetId, "asset id")
	assert.Equal(t, carol.Bytes(), listing.Seller, "seller")
	assert.Equal(t, uint64(500), listing.AskPrice, "ask price")
	assert.True(t, listing.Active, "active")

	// no second unit to list
	_, err = ledger.ListForResale(carol, assetId, 500)
	assert.Equal(t, fault.InsufficientBalance, err, "zero balance")
}

func TestCancelListing(t *testing.T) {
	setup(t)
	defer teardown()

	assetId := mintToCarol(t, 1000)
	listingId, err := ledger.ListForResale(carol, assetId, 500)
	assert.Nil(t, err, "ListForResale")

	err = ledger.CancelListing(bob, listingId)
	assert.Equal(t, fault.NotSeller, err, "not the seller")

	err = ledger.CancelListing(carol, listingId)
	assert.Nil(t, err, "cancel")

	// escrow unit returned
	assert.Equal(t, uint64(1), ledger.BalanceOf(carol, assetId), "seller balance restored")

	listing, _ := ledger.GetListing(listingId)
	assert.False(t, listing.Active, "terminal state")

	// terminal: no further transitions
	err = ledger.CancelListing(carol, listingId)
	assert.Equal(t, fault.ListingInactive, err, "repeated cancel")
	err = ledger.BuyResale(bob, listingId, 500)
	assert.Equal(t, fault.ListingInactive, err, "buy after cancel")

	err = ledger.CancelListing(carol, 999)
	assert.Equal(t, fault.ListingNotFound, err, "missing listing")
}

// scenario: resale at 500, payees 60/40 → platform 50, A 90, B 60, seller 300
func TestBuyResaleDisbursement(t *testing.T) {
	setup(t)
	defer teardown()

	assetId := mintToCarol(t, 1000)

	// drain the primary-sale proceeds so only the resale remains
	_, err := ledger.Withdraw(platform)
	assert.Nil(t, err, "drain platform")
	alicePrimary := ledger.PayeeBalance(alice)
	bobPrimary := ledger.PayeeBalance(bob)

	listingId, err := ledger.ListForResale(carol, assetId, 500)
	assert.Nil(t, err, "ListForResale")

	err = ledger.BuyResale(bob, listingId, 500)
	assert.Nil(t, err, "BuyResale")

	assert.Equal(t, uint64(1), ledger.BalanceOf(bob, assetId), "buyer balance")
	assert.Equal(t, uint64(0), ledger.BalanceOf(carol, assetId), "seller balance")

	assert.Equal(t, uint64(50), ledger.PayeeBalance(platform), "platform fee")
	assert.Equal(t, alicePrimary+90, ledger.PayeeBalance(alice), "payee A royalty")
	assert.Equal(t, bobPrimary+60, ledger.PayeeBalance(bob), "payee B royalty")
	assert.Equal(t, uint64(300), ledger.PayeeBalance(carol), "seller proceeds")

	listing, _ := ledger.GetListing(listingId)
	assert.False(t, listing.Active, "terminal state")

	// terminal: cannot be bought or cancelled again
	err = ledger.BuyResale(alice, listingId, 500)
	assert.Equal(t, fault.ListingInactive, err, "repeated buy")
	err = ledger.CancelListing(carol, listingId)
	assert.Equal(t, fault.ListingInactive, err, "cancel after sale")
}

func TestBuyResalePaymentErrors(t *testing.T) {
	setup(t)
	defer teardown()

	assetId := mintToCarol(t, 1000)
	listingId, err := ledger.ListForResale(carol, assetId, 500)
	assert.Nil(t, err, "ListForResale")

	err = ledger.BuyResale(bob, listingId, 499)
	assert.Equal(t, fault.InsufficientPayment, err, "underpayment")

	err = ledger.BuyResale(bob, listingId, 501)
	assert.Equal(t, fault.ExcessivePayment, err, "overpayment")

	err = ledger.BuyResale(bob, 999, 500)
	assert.Equal(t, fault.ListingNotFound, err, "missing listing")

	// listing still active and intact after failed attempts
	listing, _ := ledger.GetListing(listingId)
	assert.True(t, listing.Active, "still active")
	assert.Equal(t, uint64(0), ledger.BalanceOf(bob, assetId), "buyer unchanged")
}

// resale of a deactivated asset is still possible: deactivation blocks
// primary minting while preserving existing ownership and its market
func TestResaleAfterDeactivation(t *testing.T) {
	setup(t)
	defer teardown()

	assetId := mintToCarol(t, 1000)

	err := ledger.DeactivateAsset(alice, assetId)
	assert.Nil(t, err, "deactivate")

	listingId, err := ledger.ListForResale(carol, assetId, 500)
	assert.Nil(t, err, "list after deactivation")

	err = ledger.BuyResale(bob, listingId, 500)
	assert.Nil(t, err, "buy after deactivation")
	assert.Equal(t, uint64(1), ledger.BalanceOf(bob, assetId), "buyer owns the unit")
}

func TestActiveListings(t *testing.T) {
	setup(t)
	defer teardown()

	listings, err := ledger.ActiveListings()
	assert.Nil(t, err, "ActiveListings")
	assert.Equal(t, 0, len(listings), "empty market")

	assetId := createStandardAsset(t, 1000, 0)
	err = ledger.Purchase(carol, assetId, 1000)
	assert.Nil(t, err, "first purchase")
	err = ledger.Purchase(bob, assetId, 1000)
	assert.Nil(t, err, "second purchase")

	first, err := ledger.ListForResale(carol, assetId, 500)
	assert.Nil(t, err, "first listing")
	second, err := ledger.ListForResale(bob, assetId, 700)
	assert.Nil(t, err, "second listing")

	listings, err = ledger.ActiveListings()
	assert.Nil(t, err, "ActiveListings")
	assert.Equal(t, 2, len(listings), "both active")
	assert.Equal(t, first, listings[0].ListingId, "listing order")
	assert.Equal(t, second, listings[1].ListingId, "listing order")
	assert.Equal(t, uint64(500), listings[0].AskPrice, "first ask price")
	assert.Equal(t, carol.Bytes(), listings[0].Seller, "first seller")

	// cancelled listings disappear from the index
	err = ledger.CancelListing(carol, first)
	assert.Nil(t, err, "cancel")

	listings, err = ledger.ActiveListings()
	assert.Nil(t, err, "ActiveListings")
	assert.Equal(t, 1, len(listings), "one active")
	assert.Equal(t, second, listings[0].ListingId, "remaining listing")

	// sold listings disappear too
	err = ledger.BuyResale(carol, second, 700)
	assert.Nil(t, err, "resale")

	listings, err = ledger.ActiveListings()
	assert.Nil(t, err, "ActiveListings")
	assert.Equal(t, 0, len(listings), "none active")
}
