// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package configuration - parse the daemon's HCL configuration file
//
// all relative paths in the file are resolved against the data
// directory; "." selects the directory holding the configuration file
package configuration

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/galleryd/authorize"
	"github.com/bitmark-inc/galleryd/httpapi"
	"github.com/bitmark-inc/galleryd/ledger"
	"github.com/bitmark-inc/galleryd/rpc"
)

// basic defaults (directories and files are relative to the "DataDirectory" from the configuration file)
const (
	defaultDataDirectory = "" // this will error; use "." for the same directory as the config file

	defaultKeyFile         = "rpc.key"
	defaultCertificateFile = "rpc.crt"

	defaultLevelDBDirectory = "data"
	defaultLedgerDatabase   = "gallery.leveldb"
	defaultKeysDatabase     = "keys.db"

	defaultLogDirectory = "log"
	defaultLogFile      = "galleryd.log"
	defaultLogCount     = 10          //  number of log files retained
	defaultLogSize      = 1024 * 1024 // rotate when <logfile> exceeds this size

	defaultRPCClients   = 10
	defaultRPCBandwidth = 25000000 // 25Mbps
)

// to hold log levels
type LoglevelMap map[string]string

var defaultLogLevels = LoglevelMap{
	logger.DefaultTag: "critical",
}

// DatabaseType - where the ledger and key databases live
type DatabaseType struct {
	Directory string `hcl:"directory" json:"directory"`
	Ledger    string `hcl:"ledger" json:"ledger"`
	Keys      string `hcl:"keys" json:"keys"`
}

// MarketType - marketplace parameters
type MarketType struct {
	// base58 identity entitled to withdraw accrued platform fees
	Platform string `hcl:"platform" json:"platform"`

	// maximum payees on one asset
	PayeeLimit int `hcl:"payee_limit" json:"payee_limit"`
}

// AccessType - secret release parameters
type AccessType struct {
	// maximum age of an ownership proof in seconds
	FreshnessSeconds int `hcl:"freshness_seconds" json:"freshness_seconds"`
}

// Configuration - the full configuration file contents
type Configuration struct {
	DataDirectory string       `hcl:"data_directory" json:"data_directory"`
	PidFile       string       `hcl:"pidfile" json:"pidfile"`
	Database      DatabaseType `hcl:"database" json:"database"`

	Market MarketType `hcl:"market" json:"market"`
	Access AccessType `hcl:"access" json:"access"`

	ClientRPC rpc.RPCConfiguration      `hcl:"client_rpc" json:"client_rpc"`
	HTTP      httpapi.HTTPConfiguration `hcl:"http" json:"http"`
	Logging   logger.Configuration      `hcl:"logging" json:"logging"`
}

// GetConfiguration - read, decode and verify the configuration
func GetConfiguration(configurationFileName string) (*Configuration, error) {

	configurationFileName, err := filepath.Abs(filepath.Clean(configurationFileName))
	if nil != err {
		return nil, err
	}

	// absolute path to the main directory
	dataDirectory, _ := filepath.Split(configurationFileName)

	options := &Configuration{

		DataDirectory: defaultDataDirectory,
		PidFile:       "", // no PidFile by default

		Database: DatabaseType{
			Directory: defaultLevelDBDirectory,
			Ledger:    defaultLedgerDatabase,
			Keys:      defaultKeysDatabase,
		},

		Market: MarketType{
			PayeeLimit: ledger.DefaultPayeeLimit,
		},

		Access: AccessType{
			FreshnessSeconds: int(authorize.DefaultFreshnessWindow.Seconds()),
		},

		ClientRPC: rpc.RPCConfiguration{
			MaximumConnections: defaultRPCClients,
			Bandwidth:          defaultRPCBandwidth,
			Certificate:        defaultCertificateFile,
			PrivateKey:         defaultKeyFile,
		},

		HTTP: httpapi.HTTPConfiguration{
			Certificate: defaultCertificateFile,
			PrivateKey:  defaultKeyFile,
		},

		Logging: logger.Configuration{
			Directory: defaultLogDirectory,
			File:      defaultLogFile,
			Size:      defaultLogSize,
			Count:     defaultLogCount,
			Levels:    defaultLogLevels,
		},
	}

	if err := ParseConfigurationFile(configurationFileName, options); nil != err {
		return nil, err
	}

	if "" == options.Market.Platform {
		return nil, fmt.Errorf("Market: platform identity is not configured")
	}
	if options.Market.PayeeLimit <= 0 {
		return nil, fmt.Errorf("Market: payee_limit: %d is not positive", options.Market.PayeeLimit)
	}
	if options.Access.FreshnessSeconds <= 0 {
		return nil, fmt.Errorf("Access: freshness_seconds: %d is not positive", options.Access.FreshnessSeconds)
	}

	// ensure absolute data directory
	if "" == options.DataDirectory || "~" == options.DataDirectory {
		return nil, fmt.Errorf("Path: %q is not a valid directory", options.DataDirectory)
	} else if "." == options.DataDirectory {
		options.DataDirectory = dataDirectory // same directory as the configuration file
	} else {
		options.DataDirectory = filepath.Clean(options.DataDirectory)
	}

	// this directory must exist - i.e. must be created prior to running
	if fileInfo, err := os.Stat(options.DataDirectory); nil != err {
		return nil, err
	} else if !fileInfo.IsDir() {
		return nil, fmt.Errorf("Path: %q is not a directory", options.DataDirectory)
	}

	// force all relevant items to be absolute paths
	// if not, assign them to the data directory
	mustBeAbsolute := []*string{
		&options.Database.Directory,
		&options.ClientRPC.Certificate,
		&options.ClientRPC.PrivateKey,
		&options.HTTP.Certificate,
		&options.HTTP.PrivateKey,
		&options.Logging.Directory,
	}
	for _, f := range mustBeAbsolute {
		*f = ensureAbsolute(options.DataDirectory, *f)
	}

	// optional absolute paths i.e. blank or an absolute path
	optionalAbsolute := []*string{
		&options.PidFile,
	}
	for _, f := range optionalAbsolute {
		if "" != *f {
			*f = ensureAbsolute(options.DataDirectory, *f)
		}
	}

	// fail if any of these are not simple file names i.e. must
	// not contain a path separator, then add the database directory
	mustNotBePaths := []*string{
		&options.Database.Ledger,
		&options.Database.Keys,
	}
	for _, f := range mustNotBePaths {
		switch filepath.Dir(*f) {
		case "", ".":
			*f = ensureAbsolute(options.Database.Directory, *f)
		default:
			return nil, fmt.Errorf("Files: %q is not a plain name", *f)
		}
	}

	// make absolute and create directories if they do not already exist
	for _, d := range []*string{
		&options.Database.Directory,
		&options.Logging.Directory,
	} {
		*d = ensureAbsolute(options.DataDirectory, *d)
		if err := os.MkdirAll(*d, 0700); nil != err {
			return nil, err
		}
	}

	return options, nil
}

// ensure the path is absolute
// if not, prepend the directory to make an absolute path
func ensureAbsolute(directory string, filePath string) string {
	if !filepath.IsAbs(filePath) {
		filePath = filepath.Join(directory, filePath)
	}
	return filepath.Clean(filePath)
}
