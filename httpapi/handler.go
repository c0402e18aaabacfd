// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bitmark-inc/galleryd/account"
	"github.com/bitmark-inc/galleryd/fault"
	"github.com/bitmark-inc/galleryd/rpc"
)

func handleAssetCreate(assetService *rpc.Asset) gin.HandlerFunc {
	return func(c *gin.Context) {
		var arguments rpc.CreateArguments
		if err := c.BindJSON(&arguments); nil != err {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		var reply rpc.CreateReply
		if err := assetService.Create(&arguments, &reply); nil != err {
			replyError(c, err)
			return
		}
		c.JSON(http.StatusCreated, reply)
	}
}

func handleAssetGet(assetService *rpc.Asset) gin.HandlerFunc {
	return func(c *gin.Context) {
		assetId, ok := pathId(c, "assetId")
		if !ok {
			return
		}

		var reply rpc.GetReply
		if err := assetService.Get(&rpc.GetArguments{AssetId: assetId}, &reply); nil != err {
			replyError(c, err)
			return
		}
		c.JSON(http.StatusOK, reply)
	}
}

func handleAssetDeactivate(assetService *rpc.Asset) gin.HandlerFunc {
	return func(c *gin.Context) {
		assetId, ok := pathId(c, "assetId")
		if !ok {
			return
		}

		var body struct {
			Caller *account.Account `json:"caller"`
		}
		if err := c.BindJSON(&body); nil != err {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		var reply rpc.DeactivateReply
		err := assetService.Deactivate(&rpc.DeactivateArguments{Caller: body.Caller, AssetId: assetId}, &reply)
		if nil != err {
			replyError(c, err)
			return
		}
		c.JSON(http.StatusOK, reply)
	}
}

func handlePurchase(marketService *rpc.Market) gin.HandlerFunc {
	return func(c *gin.Context) {
		assetId, ok := pathId(c, "assetId")
		if !ok {
			return
		}

		var body struct {
			Buyer         *account.Account `json:"buyer"`
			PaymentAmount uint64           `json:"paymentAmount"`
		}
		if err := c.BindJSON(&body); nil != err {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		arguments := rpc.PurchaseArguments{
			Buyer:         body.Buyer,
			AssetId:       assetId,
			PaymentAmount: body.PaymentAmount,
		}
		var reply rpc.PurchaseReply
		if err := marketService.Purchase(&arguments, &reply); nil != err {
			replyError(c, err)
			return
		}
		c.JSON(http.StatusOK, reply)
	}
}

func handleListingCreate(marketService *rpc.Market) gin.HandlerFunc {
	return func(c *gin.Context) {
		var arguments rpc.ListArguments
		if err := c.BindJSON(&arguments); nil != err {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		var reply rpc.ListReply
		if err := marketService.List(&arguments, &reply); nil != err {
			replyError(c, err)
			return
		}
		c.JSON(http.StatusCreated, reply)
	}
}

func handleListingGet(marketService *rpc.Market) gin.HandlerFunc {
	return func(c *gin.Context) {
		listingId, ok := pathId(c, "listingId")
		if !ok {
			return
		}

		var reply rpc.GetListingReply
		if err := marketService.GetListing(&rpc.GetListingArguments{ListingId: listingId}, &reply); nil != err {
			replyError(c, err)
			return
		}
		c.JSON(http.StatusOK, reply)
	}
}

func handleListingIndex(marketService *rpc.Market) gin.HandlerFunc {
	return func(c *gin.Context) {
		var reply rpc.ListingsReply
		if err := marketService.Listings(&rpc.ListingsArguments{}, &reply); nil != err {
			replyError(c, err)
			return
		}
		c.JSON(http.StatusOK, reply)
	}
}

func handleListingCancel(marketService *rpc.Market) gin.HandlerFunc {
	return func(c *gin.Context) {
		listingId, ok := pathId(c, "listingId")
		if !ok {
			return
		}

		var body struct {
			Caller *account.Account `json:"caller"`
		}
		if err := c.BindJSON(&body); nil != err {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		var reply rpc.CancelReply
		err := marketService.Cancel(&rpc.CancelArguments{Caller: body.Caller, ListingId: listingId}, &reply)
		if nil != err {
			replyError(c, err)
			return
		}
		c.JSON(http.StatusOK, reply)
	}
}

func handleListingBuy(marketService *rpc.Market) gin.HandlerFunc {
	return func(c *gin.Context) {
		listingId, ok := pathId(c, "listingId")
		if !ok {
			return
		}

		var body struct {
			Buyer         *account.Account `json:"buyer"`
			PaymentAmount uint64           `json:"paymentAmount"`
		}
		if err := c.BindJSON(&body); nil != err {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		arguments := rpc.BuyResaleArguments{
			Buyer:         body.Buyer,
			ListingId:     listingId,
			PaymentAmount: body.PaymentAmount,
		}
		var reply rpc.BuyResaleReply
		if err := marketService.BuyResale(&arguments, &reply); nil != err {
			replyError(c, err)
			return
		}
		c.JSON(http.StatusOK, reply)
	}
}

func handleWithdraw(marketService *rpc.Market) gin.HandlerFunc {
	return func(c *gin.Context) {
		var arguments rpc.WithdrawArguments
		if err := c.BindJSON(&arguments); nil != err {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		var reply rpc.WithdrawReply
		if err := marketService.Withdraw(&arguments, &reply); nil != err {
			replyError(c, err)
			return
		}
		c.JSON(http.StatusOK, reply)
	}
}

func handleBalance(ownerService *rpc.Owner) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, err := account.AccountFromBase58(c.Param("owner"))
		if nil != err {
			replyError(c, err)
			return
		}
		assetId, ok := pathId(c, "assetId")
		if !ok {
			return
		}

		var reply rpc.BalanceReply
		if err := ownerService.Balance(&rpc.BalanceArguments{Owner: owner, AssetId: assetId}, &reply); nil != err {
			replyError(c, err)
			return
		}
		c.JSON(http.StatusOK, reply)
	}
}

func handlePayeeBalance(ownerService *rpc.Owner) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := account.AccountFromBase58(c.Param("identity"))
		if nil != err {
			replyError(c, err)
			return
		}

		var reply rpc.PayeeBalanceReply
		if err := ownerService.PayeeBalance(&rpc.PayeeBalanceArguments{Identity: identity}, &reply); nil != err {
			replyError(c, err)
			return
		}
		c.JSON(http.StatusOK, reply)
	}
}

func handleAccess(accessService *rpc.Access) gin.HandlerFunc {
	return func(c *gin.Context) {
		var arguments rpc.AccessArguments
		if err := c.BindJSON(&arguments); nil != err {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		var reply rpc.AccessReply
		if err := accessService.Request(&arguments, &reply); nil != err {
			replyError(c, err)
			return
		}
		c.JSON(http.StatusOK, reply)
	}
}

// parse a numeric path parameter, replying 400 on garbage
func pathId(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if nil != err {
		c.JSON(http.StatusBadRequest, gin.H{"error": fault.MissingParameters.Error()})
		return 0, false
	}
	return id, true
}
