// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package royalty_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/galleryd/fault"
	"github.com/bitmark-inc/galleryd/royalty"
)

const payeeLimit = 16

func payee(name string, shares uint32) royalty.Payee {
	return royalty.Payee{
		Identity: []byte(name),
		Shares:   shares,
	}
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name     string
		payees   []royalty.Payee
		expected error
	}{
		{"single payee", []royalty.Payee{payee("a", 10000)}, nil},
		{"two payees", []royalty.Payee{payee("a", 6000), payee("b", 4000)}, nil},
		{"empty list", []royalty.Payee{}, fault.EmptyPayeeList},
		{"under total", []royalty.Payee{payee("a", 9999)}, fault.InvalidRoyaltySplit},
		{"over total", []royalty.Payee{payee("a", 6000), payee("b", 4001)}, fault.InvalidRoyaltySplit},
		{"duplicate", []royalty.Payee{payee("a", 6000), payee("a", 4000)}, fault.DuplicatePayee},
	}

	for _, testCase := range testCases {
		err := royalty.Validate(testCase.payees, payeeLimit)
		assert.Equal(t, testCase.expected, err, testCase.name)
	}
}

func TestValidateTooManyPayees(t *testing.T) {
	payees := make([]royalty.Payee, 17)
	for i := range payees {
		shares := uint32(588)
		if 16 == i {
			shares = 10000 - 16*588
		}
		payees[i] = payee(fmt.Sprintf("p%d", i), shares)
	}

	err := royalty.Validate(payees, payeeLimit)
	assert.Equal(t, fault.TooManyPayees, err, "17 payees")

	err = royalty.Validate(payees, 20)
	assert.Nil(t, err, "higher limit accepts the same list")
}

// scenario from the marketplace design: unit price 1000, payees 60/40
func TestSplitPrimaryScenario(t *testing.T) {
	payees := []royalty.Payee{payee("A", 6000), payee("B", 4000)}

	platform, disbursements := royalty.SplitPrimary(1000, payees)

	assert.Equal(t, uint64(100), platform, "platform fee")
	assert.Equal(t, uint64(540), disbursements[0].Amount, "payee A")
	assert.Equal(t, uint64(360), disbursements[1].Amount, "payee B")
}

// scenario: resale at 500 → platform 50, A 90, B 60, seller 300
func TestSplitResaleScenario(t *testing.T) {
	payees := []royalty.Payee{payee("A", 6000), payee("B", 4000)}

	platform, seller, disbursements := royalty.SplitResale(500, payees)

	assert.Equal(t, uint64(50), platform, "platform fee")
	assert.Equal(t, uint64(300), seller, "seller")
	assert.Equal(t, uint64(90), disbursements[0].Amount, "payee A")
	assert.Equal(t, uint64(60), disbursements[1].Amount, "payee B")
}

// adversarial share partitions to provoke rounding residue
func adversarialPartitions() [][]uint32 {
	return [][]uint32{
		{10000},
		{9999, 1},
		{5000, 5000},
		{3333, 3333, 3334},
		{1, 1, 1, 1, 9996},
		{2500, 2500, 2500, 2500},
		{1429, 1429, 1429, 1429, 1428, 1428, 1428},
		{7, 11, 13, 17, 19, 23, 29, 31, 9850},
		{625, 625, 625, 625, 625, 625, 625, 625,
			625, 625, 625, 625, 625, 625, 625, 625},
	}
}

func toPayees(partition []uint32) []royalty.Payee {
	payees := make([]royalty.Payee, len(partition))
	for i, shares := range partition {
		payees[i] = payee(fmt.Sprintf("p%d", i), shares)
	}
	return payees
}

func TestSplitPrimaryExactSum(t *testing.T) {
	amounts := []uint64{0, 1, 2, 3, 9, 10, 99, 100, 101, 997, 1000, 65537, 999999999}

	for _, partition := range adversarialPartitions() {
		payees := toPayees(partition)
		assert.Nil(t, royalty.Validate(payees, payeeLimit), "partition valid")

		for _, amount := range amounts {
			platform, disbursements := royalty.SplitPrimary(amount, payees)

			total := platform
			for _, d := range disbursements {
				total += d.Amount
			}
			assert.Equal(t, amount, total,
				fmt.Sprintf("primary split of %d over %v", amount, partition))
		}
	}
}

func TestSplitResaleExactSum(t *testing.T) {
	amounts := []uint64{0, 1, 2, 3, 9, 10, 99, 100, 101, 500, 503, 997, 65537, 999999999}

	for _, partition := range adversarialPartitions() {
		payees := toPayees(partition)

		for _, amount := range amounts {
			platform, seller, disbursements := royalty.SplitResale(amount, payees)

			total := platform + seller
			for _, d := range disbursements {
				total += d.Amount
			}
			assert.Equal(t, amount, total,
				fmt.Sprintf("resale split of %d over %v", amount, partition))

			// seller never exceeds 60%
			assert.True(t, seller <= amount*6/10,
				fmt.Sprintf("seller share of %d", amount))
		}
	}
}

// payouts are strictly proportional floors so a payee with more shares
// never receives less
func TestSplitPrimaryMonotonic(t *testing.T) {
	payees := []royalty.Payee{payee("small", 1), payee("large", 9999)}

	for _, amount := range []uint64{1, 10, 100, 12345} {
		_, disbursements := royalty.SplitPrimary(amount, payees)
		assert.True(t, disbursements[0].Amount <= disbursements[1].Amount,
			fmt.Sprintf("monotonic at %d", amount))
	}
}

// amounts beyond 1.8e15 would wrap a 64-bit share product; the split
// must stay proportional, not hand everything to the platform
func TestSplitHugeAmount(t *testing.T) {
	amount := uint64(1) << 63
	payees := []royalty.Payee{payee("a", 6000), payee("b", 4000)}

	platform, disbursements := royalty.SplitPrimary(amount, payees)

	assert.Equal(t, uint64(922337203685477581), platform, "platform share")
	assert.Equal(t, uint64(4980620899901578936), disbursements[0].Amount, "payee a")
	assert.Equal(t, uint64(3320413933267719291), disbursements[1].Amount, "payee b")

	total := platform
	for _, d := range disbursements {
		total += d.Amount
	}
	assert.Equal(t, amount, total, "primary split exact sum")

	// every payee receives a strictly positive proportional share
	for _, d := range disbursements {
		assert.True(t, d.Amount > amount/4, "proportional payout")
	}

	resalePlatform, seller, resaleDisbursements := royalty.SplitResale(amount, payees)
	assert.Equal(t, uint64(5534023222112865484), seller, "seller share")

	total = resalePlatform + seller
	for _, d := range resaleDisbursements {
		total += d.Amount
	}
	assert.Equal(t, amount, total, "resale split exact sum")
}
