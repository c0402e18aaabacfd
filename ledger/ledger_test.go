// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/galleryd/account"
	"github.com/bitmark-inc/galleryd/fault"
	"github.com/bitmark-inc/galleryd/ledger"
	"github.com/bitmark-inc/galleryd/royalty"
	"github.com/bitmark-inc/galleryd/rpc/fixtures"
	"github.com/bitmark-inc/galleryd/storage"
)

var (
	platform *account.Account
	alice    *account.Account
	bob      *account.Account
	carol    *account.Account
)

func setup(t *testing.T) {
	fixtures.SetupTestLogger()

	err := storage.Initialise(fixtures.DatabaseDirectory("ledger.leveldb"))
	assert.Nil(t, err, "storage.Initialise")

	platform, _ = fixtures.MakeAccount()
	alice, _ = fixtures.MakeAccount()
	bob, _ = fixtures.MakeAccount()
	carol, _ = fixtures.MakeAccount()

	err = ledger.Initialise(platform, ledger.DefaultPayeeLimit)
	assert.Nil(t, err, "ledger.Initialise")
}

func teardown() {
	_ = ledger.Finalise()
	storage.Finalise()
	fixtures.TeardownTestLogger()
}

// payees: alice 60%, bob 40%
func standardPayees() []royalty.Payee {
	return []royalty.Payee{
		{Identity: alice.Bytes(), Shares: 6000},
		{Identity: bob.Bytes(), Shares: 4000},
	}
}

func createStandardAsset(t *testing.T, unitPrice uint64, maxSupply uint64) uint64 {
	assetId, err := ledger.CreateAsset(alice, "content-ref", "metadata-ref", unitPrice, maxSupply, standardPayees(), nil)
	assert.Nil(t, err, "CreateAsset")
	return assetId
}

func TestCreateAsset(t *testing.T) {
	setup(t)
	defer teardown()

	assetId := createStandardAsset(t, 1000, 10)
	assert.Equal(t, uint64(1), assetId, "first asset id")

	asset, err := ledger.GetAsset(assetId)
	assert.Nil(t, err, "GetAsset")
	assert.Equal(t, "content-ref", asset.ContentRef, "content ref")
	assert.Equal(t, "metadata-ref", asset.MetadataRef, "metadata ref")
	assert.Equal(t, uint64(1000), asset.UnitPrice, "unit price")
	assert.Equal(t, uint64(10), asset.MaxSupply, "max supply")
	assert.Equal(t, uint64(0), asset.MintedSupply, "minted supply")
	assert.True(t, asset.Active, "active")
	assert.Equal(t, alice.Bytes(), asset.Creator, "creator")
	assert.Equal(t, standardPayees(), asset.Payees, "payees")

	// identifiers are monotonic
	second := createStandardAsset(t, 500, 0)
	assert.Equal(t, uint64(2), second, "second asset id")
}

func TestCreateAssetValidation(t *testing.T) {
	setup(t)
	defer teardown()

	_, err := ledger.CreateAsset(alice, "c", "m", 10, 0, nil, nil)
	assert.Equal(t, fault.EmptyPayeeList, err, "empty payees")

	_, err = ledger.CreateAsset(alice, "c", "m", 10, 0, []royalty.Payee{
		{Identity: alice.Bytes(), Shares: 9000},
	}, nil)
	assert.Equal(t, fault.InvalidRoyaltySplit, err, "bad split")

	_, err = ledger.CreateAsset(alice, "c", "m", 10, 0, []royalty.Payee{
		{Identity: alice.Bytes(), Shares: 6000},
		{Identity: alice.Bytes(), Shares: 4000},
	}, nil)
	assert.Equal(t, fault.DuplicatePayee, err, "duplicate payee")

	_, err = ledger.GetAsset(9)
	assert.Equal(t, fault.AssetNotFound, err, "missing asset")
}

// scenario: unit price 1000, payees 60/40 → platform 100, A 540, B 360
func TestPurchaseDisbursement(t *testing.T) {
	setup(t)
	defer teardown()

	assetId := createStandardAsset(t, 1000, 0)

	err := ledger.Purchase(carol, assetId, 1000)
	assert.Nil(t, err, "Purchase")

	assert.Equal(t, uint64(1), ledger.BalanceOf(carol, assetId), "buyer balance")
	assert.Equal(t, uint64(100), ledger.PayeeBalance(platform), "platform fee")
	assert.Equal(t, uint64(540), ledger.PayeeBalance(alice), "payee A")
	assert.Equal(t, uint64(360), ledger.PayeeBalance(bob), "payee B")

	asset, _ := ledger.GetAsset(assetId)
	assert.Equal(t, uint64(1), asset.MintedSupply, "minted supply")
}

// scenario: unit price 1000 split across the full sixteen-payee limit;
// each 625-share payee earns floor(900*625/10000) = 56, the 4-unit
// rounding residual joins the 100 platform fee
func TestPurchaseDisbursementAtPayeeLimit(t *testing.T) {
	setup(t)
	defer teardown()

	payeeAccounts := make([]*account.Account, ledger.DefaultPayeeLimit)
	payees := make([]royalty.Payee, ledger.DefaultPayeeLimit)
	for i := range payees {
		payeeAccounts[i], _ = fixtures.MakeAccount()
		payees[i] = royalty.Payee{
			Identity: payeeAccounts[i].Bytes(),
			Shares:   625,
		}
	}

	assetId, err := ledger.CreateAsset(alice, "content-ref", "metadata-ref", 1000, 0, payees, nil)
	assert.Nil(t, err, "CreateAsset")

	err = ledger.Purchase(carol, assetId, 1000)
	assert.Nil(t, err, "Purchase")

	assert.Equal(t, uint64(1), ledger.BalanceOf(carol, assetId), "buyer balance")

	total := ledger.PayeeBalance(platform)
	assert.Equal(t, uint64(104), total, "platform fee plus residual")
	for i, payeeAccount := range payeeAccounts {
		credited := ledger.PayeeBalance(payeeAccount)
		assert.Equal(t, uint64(56), credited, fmt.Sprintf("payee %d", i))
		total += credited
	}
	assert.Equal(t, uint64(1000), total, "full price disbursed")
}

func TestPurchaseErrors(t *testing.T) {
	setup(t)
	defer teardown()

	assetId := createStandardAsset(t, 1000, 0)

	err := ledger.Purchase(carol, 999, 1000)
	assert.Equal(t, fault.AssetNotFound, err, "missing asset")

	err = ledger.Purchase(carol, assetId, 999)
	assert.Equal(t, fault.InsufficientPayment, err, "underpayment")

	err = ledger.Purchase(carol, assetId, 1001)
	assert.Equal(t, fault.ExcessivePayment, err, "overpayment")

	// nothing minted, nothing disbursed
	assert.Equal(t, uint64(0), ledger.BalanceOf(carol, assetId), "balance unchanged")
	assert.Equal(t, uint64(0), ledger.PayeeBalance(platform), "no fee accrued")
}

// scenario: maxSupply = 1; first purchase succeeds, second fails
func TestPurchaseSupplyExhausted(t *testing.T) {
	setup(t)
	defer teardown()

	assetId := createStandardAsset(t, 1000, 1)

	err := ledger.Purchase(carol, assetId, 1000)
	assert.Nil(t, err, "first purchase")

	err = ledger.Purchase(bob, assetId, 1000)
	assert.Equal(t, fault.SupplyExhausted, err, "second purchase")

	asset, _ := ledger.GetAsset(assetId)
	assert.Equal(t, uint64(1), asset.MintedSupply, "minted supply capped")
}

func TestPurchaseUnboundedSupply(t *testing.T) {
	setup(t)
	defer teardown()

	assetId := createStandardAsset(t, 10, 0)

	for i := 0; i < 25; i += 1 {
		err := ledger.Purchase(carol, assetId, 10)
		assert.Nil(t, err, "purchase")
	}
	assert.Equal(t, uint64(25), ledger.BalanceOf(carol, assetId), "buyer balance")
}

func TestDeactivateAsset(t *testing.T) {
	setup(t)
	defer teardown()

	assetId := createStandardAsset(t, 1000, 0)

	err := ledger.DeactivateAsset(bob, assetId)
	assert.Equal(t, fault.NotOwner, err, "not the creator")

	err = ledger.DeactivateAsset(alice, assetId)
	assert.Nil(t, err, "deactivate")

	err = ledger.Purchase(carol, assetId, 1000)
	assert.Equal(t, fault.AssetInactive, err, "purchase after deactivation")

	// one-directional: a second deactivation is rejected
	err = ledger.DeactivateAsset(alice, assetId)
	assert.Equal(t, fault.AssetInactive, err, "repeated deactivation")
}

func TestCreateAssetRejectsOversizedReference(t *testing.T) {
	setup(t)
	defer teardown()

	longRef := strings.Repeat("x", 70000)

	_, err := ledger.CreateAsset(alice, longRef, "m", 10, 0, standardPayees(), nil)
	assert.Equal(t, fault.ReferenceTooLong, err, "oversized content ref")

	_, err = ledger.CreateAsset(alice, "c", longRef, 10, 0, standardPayees(), nil)
	assert.Equal(t, fault.ReferenceTooLong, err, "oversized metadata ref")

	// nothing was committed
	_, err = ledger.GetAsset(1)
	assert.Equal(t, fault.AssetNotFound, err, "no asset recorded")
}

func TestCreateAssetAbandonedOnRegisterFailure(t *testing.T) {
	setup(t)
	defer teardown()

	registerFault := fault.ProcessError("register failed")
	var seenId uint64

	_, err := ledger.CreateAsset(alice, "c", "m", 10, 0, standardPayees(),
		func(assetId uint64) error {
			seenId = assetId
			return registerFault
		})
	assert.Equal(t, registerFault, err, "creation abandoned")
	assert.Equal(t, uint64(1), seenId, "register saw the staged id")

	_, err = ledger.GetAsset(seenId)
	assert.Equal(t, fault.AssetNotFound, err, "no asset recorded")

	// the abandoned identifier is reused by the next creation
	assetId := createStandardAsset(t, 1000, 0)
	assert.Equal(t, uint64(1), assetId, "sequence not consumed")
}

func TestWithdraw(t *testing.T) {
	setup(t)
	defer teardown()

	assetId := createStandardAsset(t, 1000, 0)

	_, err := ledger.Withdraw(platform)
	assert.Equal(t, fault.NothingToWithdraw, err, "empty balance")

	err = ledger.Purchase(carol, assetId, 1000)
	assert.Nil(t, err, "purchase")

	_, err = ledger.Withdraw(alice)
	assert.Equal(t, fault.NotPlatform, err, "restricted to platform")

	amount, err := ledger.Withdraw(platform)
	assert.Nil(t, err, "withdraw")
	assert.Equal(t, uint64(100), amount, "accumulated fee")

	// balance reset
	_, err = ledger.Withdraw(platform)
	assert.Equal(t, fault.NothingToWithdraw, err, "balance reset to zero")
}
