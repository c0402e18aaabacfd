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

// Market - type for the RPC
type Market struct {
	Log     *logger.L
	Limiter *rate.Limiter
}

const (
	rateLimitMarket = 200
	rateBurstMarket = 100
)

// NewMarket - create the marketplace service
func NewMarket(log *logger.L) *Market {
	return &Market{
		Log:     log,
		Limiter: rate.NewLimiter(rateLimitMarket, rateBurstMarket),
	}
}

// PurchaseArguments - arguments for RPC request
type PurchaseArguments struct {
	Buyer         *account.Account `json:"buyer"`
	AssetId       uint64           `json:"assetId"`
	PaymentAmount uint64           `json:"paymentAmount"`
}

// PurchaseReply - results from purchase RPC request
type PurchaseReply struct {
	AssetId uint64 `json:"assetId"`
	Balance uint64 `json:"balance"`
}

// Purchase - mint one unit of an asset to the buyer
func (market *Market) Purchase(arguments *PurchaseArguments, reply *PurchaseReply) error {
	if err := rateLimit(market.Limiter); nil != err {
		return err
	}

	market.Log.Infof("Market.Purchase: asset: %d  amount: %d", arguments.AssetId, arguments.PaymentAmount)

	err := ledger.Purchase(arguments.Buyer, arguments.AssetId, arguments.PaymentAmount)
	if nil != err {
		return err
	}

	reply.AssetId = arguments.AssetId
	reply.Balance = ledger.BalanceOf(arguments.Buyer, arguments.AssetId)
	return nil
}

// ListArguments - arguments for RPC request
type ListArguments struct {
	Seller   *account.Account `json:"seller"`
	AssetId  uint64           `json:"assetId"`
	AskPrice uint64           `json:"askPrice"`
}

// ListReply - results from list RPC request
type ListReply struct {
	ListingId uint64 `json:"listingId"`
}

// List - escrow one unit for resale
func (market *Market) List(arguments *ListArguments, reply *ListReply) error {
	if err := rateLimit(market.Limiter); nil != err {
		return err
	}

	market.Log.Infof("Market.List: asset: %d  ask: %d", arguments.AssetId, arguments.AskPrice)

	listingId, err := ledger.ListForResale(arguments.Seller, arguments.AssetId, arguments.AskPrice)
	if nil != err {
		return err
	}

	reply.ListingId = listingId
	return nil
}

// CancelArguments - arguments for RPC request
type CancelArguments struct {
	Caller    *account.Account `json:"caller"`
	ListingId uint64           `json:"listingId"`
}

// CancelReply - results from cancel RPC request
type CancelReply struct {
	ListingId uint64 `json:"listingId"`
	Active    bool   `json:"active"`
}

// Cancel - return an escrowed unit to its seller
func (market *Market) Cancel(arguments *CancelArguments, reply *CancelReply) error {
	if err := rateLimit(market.Limiter); nil != err {
		return err
	}

	market.Log.Infof("Market.Cancel: listing: %d", arguments.ListingId)

	err := ledger.CancelListing(arguments.Caller, arguments.ListingId)
	if nil != err {
		return err
	}

	reply.ListingId = arguments.ListingId
	reply.Active = false
	return nil
}

// BuyResaleArguments - arguments for RPC request
type BuyResaleArguments struct {
	Buyer         *account.Account `json:"buyer"`
	ListingId     uint64           `json:"listingId"`
	PaymentAmount uint64           `json:"paymentAmount"`
}

// BuyResaleReply - results from buy resale RPC request
type BuyResaleReply struct {
	ListingId uint64 `json:"listingId"`
	AssetId   uint64 `json:"assetId"`
	Balance   uint64 `json:"balance"`
}

// BuyResale - buy an escrowed unit
func (market *Market) BuyResale(arguments *BuyResaleArguments, reply *BuyResaleReply) error {
	if err := rateLimit(market.Limiter); nil != err {
		return err
	}

	market.Log.Infof("Market.BuyResale: listing: %d  amount: %d", arguments.ListingId, arguments.PaymentAmount)

	err := ledger.BuyResale(arguments.Buyer, arguments.ListingId, arguments.PaymentAmount)
	if nil != err {
		return err
	}

	listing, err := ledger.GetListing(arguments.ListingId)
	if nil != err {
		return err
	}

	reply.ListingId = arguments.ListingId
	reply.AssetId = listing.AssetId
	reply.Balance = ledger.BalanceOf(arguments.Buyer, listing.AssetId)
	return nil
}

// GetListingArguments - arguments for RPC request
type GetListingArguments struct {
	ListingId uint64 `json:"listingId"`
}

// GetListingReply - results from get listing RPC request
type GetListingReply struct {
	ListingId uint64 `json:"listingId"`
	AssetId   uint64 `json:"assetId"`
	Seller    string `json:"seller"`
	AskPrice  uint64 `json:"askPrice"`
	Active    bool   `json:"active"`
}

// GetListing - RPC to fetch listing data
func (market *Market) GetListing(arguments *GetListingArguments, reply *GetListingReply) error {
	if err := rateLimit(market.Limiter); nil != err {
		return err
	}

	listing, err := ledger.GetListing(arguments.ListingId)
	if nil != err {
		return err
	}

	seller, err := account.AccountFromBytes(listing.Seller)
	if nil != err {
		return err
	}

	reply.ListingId = listing.ListingId
	reply.AssetId = listing.AssetId
	reply.Seller = seller.String()
	reply.AskPrice = listing.AskPrice
	reply.Active = listing.Active
	return nil
}

// ListingsArguments - arguments for RPC request
type ListingsArguments struct {
}

// ListingsReply - results from listings RPC request
type ListingsReply struct {
	Listings []GetListingReply `json:"listings"`
}

// Listings - RPC to enumerate all active listings
func (market *Market) Listings(arguments *ListingsArguments, reply *ListingsReply) error {
	if err := rateLimit(market.Limiter); nil != err {
		return err
	}

	listings, err := ledger.ActiveListings()
	if nil != err {
		return err
	}

	items := make([]GetListingReply, 0, len(listings))
	for _, listing := range listings {
		seller, err := account.AccountFromBytes(listing.Seller)
		if nil != err {
			return err
		}
		items = append(items, GetListingReply{
			ListingId: listing.ListingId,
			AssetId:   listing.AssetId,
			Seller:    seller.String(),
			AskPrice:  listing.AskPrice,
			Active:    listing.Active,
		})
	}
	reply.Listings = items
	return nil
}

// WithdrawArguments - arguments for RPC request
type WithdrawArguments struct {
	Caller *account.Account `json:"caller"`
}

// WithdrawReply - results from withdraw RPC request
type WithdrawReply struct {
	Amount uint64 `json:"amount"`
}

// Withdraw - pay out the accumulated platform fee balance
func (market *Market) Withdraw(arguments *WithdrawArguments, reply *WithdrawReply) error {
	if err := rateLimit(market.Limiter); nil != err {
		return err
	}

	market.Log.Info("Market.Withdraw")

	amount, err := ledger.Withdraw(arguments.Caller)
	if nil != err {
		return err
	}

	reply.Amount = amount
	return nil
}
