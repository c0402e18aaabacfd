// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/bitmark-inc/exitwithstatus"

	"github.com/bitmark-inc/galleryd/configuration"
)

// setup commands that run before the daemon starts
//
// returns true if the command was handled and the program should exit
func processSetupCommand(program string, arguments []string, theConfiguration *configuration.Configuration) bool {

	command := arguments[0]

	switch command {

	case "gen-rpc-cert":
		err := makeSelfSignedCertificate("rpc", theConfiguration.ClientRPC.Certificate, theConfiguration.ClientRPC.PrivateKey, false, arguments[1:])
		if nil != err {
			exitwithstatus.Message("%s: generate RPC keypair error: %s", program, err)
		}
		fmt.Printf("generated: %q and %q\n", theConfiguration.ClientRPC.Certificate, theConfiguration.ClientRPC.PrivateKey)
		return true

	case "version":
		fmt.Printf("%s\n", Version)
		return true

	case "help":
		printHelp(program)
		return true

	default:
		exitwithstatus.Message("%s: unknown command: %q", program, command)
	}

	return false
}

func printHelp(program string) {
	fmt.Printf("usage: %s [--help] [--verbose] [--quiet] --config-file=FILE [command]\n", program)
	fmt.Printf("supported commands:\n\n")
	fmt.Printf("  help                 show this message\n")
	fmt.Printf("  version              display the program version\n")
	fmt.Printf("  gen-rpc-cert [host…] generate a self signed RPC keypair\n")
}
