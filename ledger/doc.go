// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ledger - the asset, ownership, listing and fee state machine
//
// the single source of truth for who owns what; every exposed mutating
// operation runs under one lock and commits its writes as a single
// storage transaction, so concurrent callers observe either the full
// pre-state or the full post-state of an operation
//
// all monetary disbursement is internal accounting: sale payments
// accrue to per-identity balances in the Fees pool and leave the system
// only through Withdraw, after the internal state is finalised
package ledger
