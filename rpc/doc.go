// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package rpc - JSON RPC services
//
// the services are registered on a net/rpc server behind a TLS
// listener; the same argument and reply records are reused by the
// HTTP gateway
package rpc
