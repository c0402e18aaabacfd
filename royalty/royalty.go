// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package royalty - payee share validation and exact-sum payment splitting
//
// amounts are in the smallest currency unit and shares in basis points
// (1/100 of a percent), the full share total being 10000
//
// floor division under-disburses by up to one smallest unit per payee;
// every split here credits that rounding residual to the platform fee
// so the outputs of a split always sum exactly to the input amount
package royalty

import (
	"math/bits"

	"github.com/bitmark-inc/galleryd/fault"
)

// share arithmetic constants
const (
	// TotalShareBasisPoints - the whole: 100%
	TotalShareBasisPoints = 10000

	// PlatformShareBasisPoints - platform fee on every sale: 10%
	PlatformShareBasisPoints = 1000

	// ResaleRoyaltyBasisPoints - payee royalty on a resale: 30%
	ResaleRoyaltyBasisPoints = 3000

	// ResaleSellerBasisPoints - seller proceeds on a resale: 60%
	ResaleSellerBasisPoints = 6000
)

// Payee - one royalty recipient
//
// Identity is the account byte encoding (see account.Bytes)
type Payee struct {
	Identity []byte
	Shares   uint32
}

// Disbursement - one payment output of a split
type Disbursement struct {
	Identity []byte
	Amount   uint64
}

// Validate - check a payee list is acceptable for asset creation
//
// the list must be non-empty, within the configured size limit, free of
// duplicate identities and its shares must sum to exactly 10000
func Validate(payees []Payee, limit int) error {
	if 0 == len(payees) {
		return fault.EmptyPayeeList
	}
	if len(payees) > limit {
		return fault.TooManyPayees
	}

	total := uint64(0)
	seen := make(map[string]struct{}, len(payees))
	for _, payee := range payees {
		key := string(payee.Identity)
		if _, ok := seen[key]; ok {
			return fault.DuplicatePayee
		}
		seen[key] = struct{}{}
		total += uint64(payee.Shares)
	}

	if TotalShareBasisPoints != total {
		return fault.InvalidRoyaltySplit
	}
	return nil
}

// SplitPrimary - divide a primary sale payment
//
// platform fee is 10% by floor division, the remainder is split across
// the payees in proportion to their shares; rounding residue joins the
// platform fee
//
// guarantees: platform + sum(disbursements) == amount
func SplitPrimary(amount uint64, payees []Payee) (uint64, []Disbursement) {
	platform := basisPoints(amount, PlatformShareBasisPoints)
	pool := amount - platform

	disbursements, paid := splitPool(pool, payees)
	platform += pool - paid

	return platform, disbursements
}

// SplitResale - divide a resale payment
//
// 10% platform, 30% across the payees, 60% to the seller, all by floor
// division; rounding residue joins the platform fee
//
// guarantees: platform + seller + sum(disbursements) == amount
func SplitResale(amount uint64, payees []Payee) (uint64, uint64, []Disbursement) {
	pool := basisPoints(amount, ResaleRoyaltyBasisPoints)
	seller := basisPoints(amount, ResaleSellerBasisPoints)

	disbursements, paid := splitPool(pool, payees)

	// platform takes its 10% and all rounding residue
	platform := amount - seller - paid

	return platform, seller, disbursements
}

// amount * share / 10000 with a 128-bit intermediate product
//
// a plain 64-bit multiply wraps for amounts above ~1.8e15; Div64 is
// safe here because share never exceeds the divisor, so the quotient
// always fits 64 bits
func basisPoints(amount uint64, share uint64) uint64 {
	hi, lo := bits.Mul64(amount, share)
	quotient, _ := bits.Div64(hi, lo, TotalShareBasisPoints)
	return quotient
}

// divide a pool across payees by floor division
// returns the disbursements and their exact total
func splitPool(pool uint64, payees []Payee) ([]Disbursement, uint64) {
	disbursements := make([]Disbursement, len(payees))
	paid := uint64(0)

	for i, payee := range payees {
		amount := basisPoints(pool, uint64(payee.Shares))
		disbursements[i] = Disbursement{
			Identity: payee.Identity,
			Amount:   amount,
		}
		paid += amount
	}

	return disbursements, paid
}
