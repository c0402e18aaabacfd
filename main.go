// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// galleryd - digital work marketplace daemon
//
// a single daemon holding the sales ledger, the write-once key store
// and the ownership-proof secret release service, served over JSON
// RPC (TLS) and a REST gateway
package main

import (
	"fmt"
	"io/ioutil"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/getoptions"
	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/galleryd/account"
	"github.com/bitmark-inc/galleryd/authorize"
	"github.com/bitmark-inc/galleryd/configuration"
	"github.com/bitmark-inc/galleryd/httpapi"
	"github.com/bitmark-inc/galleryd/keystore"
	"github.com/bitmark-inc/galleryd/ledger"
	"github.com/bitmark-inc/galleryd/rpc"
	"github.com/bitmark-inc/galleryd/storage"
)

// main program
func main() {
	// ensure exit handler is first
	defer exitwithstatus.Handler()

	flags := []getoptions.Option{
		{Long: "help", HasArg: getoptions.NO_ARGUMENT, Short: 'h'},
		{Long: "verbose", HasArg: getoptions.NO_ARGUMENT, Short: 'v'},
		{Long: "quiet", HasArg: getoptions.NO_ARGUMENT, Short: 'q'},
		{Long: "version", HasArg: getoptions.NO_ARGUMENT, Short: 'V'},
		{Long: "config-file", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'c'},
	}

	program, options, arguments, err := getoptions.GetOS(flags)
	if nil != err {
		exitwithstatus.Message("%s: getoptions error: %s", program, err)
	}

	if len(options["version"]) > 0 {
		exitwithstatus.Message("%s: version: %s", program, Version)
	}

	if len(options["help"]) > 0 {
		printHelp(program)
		return
	}

	if 1 != len(options["config-file"]) {
		exitwithstatus.Message("%s: only one config-file option is required, %d were detected", program, len(options["config-file"]))
	}

	// read options and parse the configuration file
	configurationFile := options["config-file"][0]
	theConfiguration, err := configuration.GetConfiguration(configurationFile)
	if nil != err {
		exitwithstatus.Message("%s: failed to read configuration from: %q  error: %s", program, configurationFile, err)
	}

	// these commands require the configuration
	if len(arguments) > 0 && processSetupCommand(program, arguments, theConfiguration) {
		return
	}

	// start logging
	if err = logger.Initialise(theConfiguration.Logging); nil != err {
		exitwithstatus.Message("%s: logger setup failed with error: %s", program, err)
	}
	defer logger.Finalise()

	// create a logger channel for the main program
	log := logger.New("main")
	defer log.Info("finished")
	log.Info("starting…")
	log.Infof("version: %s", Version)

	// ------------------
	// start of real main
	// ------------------

	// optional PID file
	// use if not running under a supervisor program like daemon(8)
	if "" != theConfiguration.PidFile {
		lockFile, err := os.OpenFile(theConfiguration.PidFile, os.O_WRONLY|os.O_EXCL|os.O_CREATE, os.ModeExclusive|0600)
		if err != nil {
			if os.IsExist(err) {
				exitwithstatus.Message("%s: another instance is already running", program)
			}
			exitwithstatus.Message("%s: PID file: %q creation failed, error: %s", program, theConfiguration.PidFile, err)
		}
		fmt.Fprintf(lockFile, "%d\n", os.Getpid())
		lockFile.Close()
		defer os.Remove(theConfiguration.PidFile)
	}

	// a missing keypair is generated on first start
	if !ensureFileExists(theConfiguration.ClientRPC.Certificate) && !ensureFileExists(theConfiguration.ClientRPC.PrivateKey) {
		log.Infof("generating self signed certificate: %q", theConfiguration.ClientRPC.Certificate)
		err = makeSelfSignedCertificate("rpc", theConfiguration.ClientRPC.Certificate, theConfiguration.ClientRPC.PrivateKey, false, nil)
		if nil != err {
			log.Criticalf("certificate generation error: %s", err)
			exitwithstatus.Message("%s: certificate generation error: %s", program, err)
		}
	}

	// the identity entitled to platform fee withdrawal
	platform, err := account.AccountFromBase58(theConfiguration.Market.Platform)
	if nil != err {
		log.Criticalf("invalid platform identity: %q  error: %s", theConfiguration.Market.Platform, err)
		exitwithstatus.Message("%s: invalid platform identity: %q  error: %s", program, theConfiguration.Market.Platform, err)
	}

	// start the ledger storage
	log.Info("initialise storage")
	err = storage.Initialise(theConfiguration.Database.Ledger)
	if nil != err {
		log.Criticalf("storage initialise error: %s", err)
		exitwithstatus.Message("%s: storage initialise error: %s", program, err)
	}
	defer storage.Finalise()

	// start the write-once key store
	log.Info("initialise keystore")
	err = keystore.Initialise(theConfiguration.Database.Keys)
	if nil != err {
		log.Criticalf("keystore initialise error: %s", err)
		exitwithstatus.Message("%s: keystore initialise error: %s", program, err)
	}
	defer keystore.Finalise()

	// the ledger depends on storage
	log.Info("initialise ledger")
	err = ledger.Initialise(platform, theConfiguration.Market.PayeeLimit)
	if nil != err {
		log.Criticalf("ledger initialise error: %s", err)
		exitwithstatus.Message("%s: ledger initialise error: %s", program, err)
	}
	defer ledger.Finalise()

	// the authorizer depends on ledger and keystore
	log.Info("initialise authorize")
	err = authorize.Initialise(time.Duration(theConfiguration.Access.FreshnessSeconds) * time.Second)
	if nil != err {
		log.Criticalf("authorize initialise error: %s", err)
		exitwithstatus.Message("%s: authorize initialise error: %s", program, err)
	}
	defer authorize.Finalise()

	// the RPC wants certificate contents, not file names
	rpcConfiguration := theConfiguration.ClientRPC
	if err := loadKeyPairContents(&rpcConfiguration); nil != err {
		log.Criticalf("RPC keypair error: %s", err)
		exitwithstatus.Message("%s: RPC keypair error: %s", program, err)
	}

	log.Info("initialise rpc")
	rpcServer, err := rpc.NewServer(&rpcConfiguration)
	if nil != err {
		log.Criticalf("rpc initialise error: %s", err)
		exitwithstatus.Message("%s: rpc initialise error: %s", program, err)
	}
	if err := rpcServer.Serve(); nil != err {
		log.Criticalf("rpc serve error: %s", err)
		exitwithstatus.Message("%s: rpc serve error: %s", program, err)
	}
	defer rpcServer.Stop()

	if "" != theConfiguration.HTTP.Listen {
		log.Info("initialise http")
		httpServer := httpapi.NewServer(&theConfiguration.HTTP)
		go func() {
			err := httpServer.Serve()
			log.Criticalf("http serve error: %s", err)
		}()
	}

	// wait for CTRL-C before shutting down to allow manual testing
	if 0 == len(options["quiet"]) {
		fmt.Printf("\n\nWaiting for CTRL-C (SIGINT) or 'kill <pid>' (SIGTERM)…")
	}

	// turn Signals into channel messages
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	sig := <-ch
	log.Infof("received signal: %v", sig)
	if 0 == len(options["quiet"]) {
		fmt.Printf("\nreceived signal: %v\n", sig)
		fmt.Printf("\nshutting down…\n")
	}
}

// read the certificate and private key files into the configuration
func loadKeyPairContents(rpcConfiguration *rpc.RPCConfiguration) error {
	certificate, err := ioutil.ReadFile(rpcConfiguration.Certificate)
	if nil != err {
		return err
	}
	privateKey, err := ioutil.ReadFile(rpcConfiguration.PrivateKey)
	if nil != err {
		return err
	}
	rpcConfiguration.Certificate = string(certificate)
	rpcConfiguration.PrivateKey = string(privateKey)
	return nil
}
