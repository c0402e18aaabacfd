// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package storage - maintain the on-disk ledger data
//
// maintains a single LevelDB database with prefixed subsets of
// key→value pairs, one prefix per pool:
//
// Assets:
//
//	A ⧺ assetId            - packed asset record
//
// Balances:
//
//	Q ⧺ owner ⧺ assetId    - count of units of assetId spendable by owner
//	                         (deleted if the count becomes zero)
//
// Listings:
//
//	L ⧺ listingId          - packed listing record; the escrowed unit is
//	                         counted here and not in any Q record
//
// Counters:
//
//	N ⧺ name               - next identifier for the named sequence
//
// Fees:
//
//	F ⧺ identity           - accumulated balance payable to identity
//
// all writes of one ledger operation are staged in a transaction and
// committed as a single batch
package storage
