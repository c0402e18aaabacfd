// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpc

import (
	"encoding/hex"

	"golang.org/x/time/rate"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/galleryd/account"
	"github.com/bitmark-inc/galleryd/fault"
	"github.com/bitmark-inc/galleryd/keystore"
	"github.com/bitmark-inc/galleryd/ledger"
	"github.com/bitmark-inc/galleryd/royalty"
)

// Asset - type for the RPC
type Asset struct {
	Log     *logger.L
	Limiter *rate.Limiter
}

const (
	rateLimitAsset = 200
	rateBurstAsset = 100
)

// NewAsset - create the asset service
func NewAsset(log *logger.L) *Asset {
	return &Asset{
		Log:     log,
		Limiter: rate.NewLimiter(rateLimitAsset, rateBurstAsset),
	}
}

// PayeeItem - one royalty recipient in an asset request or reply
type PayeeItem struct {
	Identity *account.Account `json:"identity"`
	Shares   uint32           `json:"shares"`
}

// SecretArguments - secret material registered at creation, hex encoded
type SecretArguments struct {
	KeyMaterial string `json:"keyMaterial"`
	Nonce       string `json:"nonce"`
}

// CreateArguments - arguments for RPC request
type CreateArguments struct {
	Creator     *account.Account `json:"creator"`
	ContentRef  string           `json:"contentRef"`
	MetadataRef string           `json:"metadataRef"`
	UnitPrice   uint64           `json:"unitPrice"`
	MaxSupply   uint64           `json:"maxSupply"`
	Payees      []PayeeItem      `json:"payees"`
	Secret      SecretArguments  `json:"secret"`
}

// CreateReply - results from create RPC request
type CreateReply struct {
	AssetId uint64 `json:"assetId"`
}

// Create - register a new work and its decryption secret
//
// the ledger record is only committed once the secret is durably
// stored; a failed secret write abandons the whole creation
func (asset *Asset) Create(arguments *CreateArguments, reply *CreateReply) error {
	log := asset.Log

	if err := rateLimit(asset.Limiter); nil != err {
		return err
	}

	log.Infof("Asset.Create: %q", arguments.ContentRef)

	secret, err := decodeSecret(&arguments.Secret)
	if nil != err {
		return err
	}

	payees := make([]royalty.Payee, len(arguments.Payees))
	for i, item := range arguments.Payees {
		if nil == item.Identity {
			return fault.MissingParameters
		}
		payees[i] = royalty.Payee{
			Identity: item.Identity.Bytes(),
			Shares:   item.Shares,
		}
	}

	// durability of the secret decides the whole creation: the
	// ledger record is only committed after the secret is stored
	storeFailed := false
	assetId, err := ledger.CreateAsset(arguments.Creator, arguments.ContentRef, arguments.MetadataRef, arguments.UnitPrice, arguments.MaxSupply, payees,
		func(assetId uint64) error {
			storeErr := keystore.Put(assetId, *secret)
			if nil != storeErr {
				storeFailed = true
			}
			return storeErr
		})
	if nil != err {
		if storeFailed {
			log.Errorf("Asset.Create: secret store failed: %v", err)
			return fault.KeyServiceFault
		}
		return err
	}

	reply.AssetId = assetId
	return nil
}

// GetArguments - arguments for RPC request
type GetArguments struct {
	AssetId uint64 `json:"assetId"`
}

// GetReply - results from get RPC request
type GetReply struct {
	AssetId      uint64      `json:"assetId"`
	ContentRef   string      `json:"contentRef"`
	MetadataRef  string      `json:"metadataRef"`
	UnitPrice    uint64      `json:"unitPrice"`
	MaxSupply    uint64      `json:"maxSupply"`
	MintedSupply uint64      `json:"mintedSupply"`
	Active       bool        `json:"active"`
	Creator      string      `json:"creator"`
	Payees       []PayeeItem `json:"payees"`
}

// Get - RPC to fetch asset data
func (asset *Asset) Get(arguments *GetArguments, reply *GetReply) error {
	if err := rateLimit(asset.Limiter); nil != err {
		return err
	}

	record, err := ledger.GetAsset(arguments.AssetId)
	if nil != err {
		return err
	}

	return fillAssetReply(record, reply)
}

// DeactivateArguments - arguments for RPC request
type DeactivateArguments struct {
	Caller  *account.Account `json:"caller"`
	AssetId uint64           `json:"assetId"`
}

// DeactivateReply - results from deactivate RPC request
type DeactivateReply struct {
	AssetId uint64 `json:"assetId"`
	Active  bool   `json:"active"`
}

// Deactivate - block further primary sales of an asset
func (asset *Asset) Deactivate(arguments *DeactivateArguments, reply *DeactivateReply) error {
	if err := rateLimit(asset.Limiter); nil != err {
		return err
	}

	asset.Log.Infof("Asset.Deactivate: %d", arguments.AssetId)

	err := ledger.DeactivateAsset(arguments.Caller, arguments.AssetId)
	if nil != err {
		return err
	}

	reply.AssetId = arguments.AssetId
	reply.Active = false
	return nil
}

// convert a ledger asset to its reply form
func fillAssetReply(record *ledger.Asset, reply *GetReply) error {
	creator, err := account.AccountFromBytes(record.Creator)
	if nil != err {
		return err
	}

	payees := make([]PayeeItem, len(record.Payees))
	for i, payee := range record.Payees {
		identity, err := account.AccountFromBytes(payee.Identity)
		if nil != err {
			return err
		}
		payees[i] = PayeeItem{
			Identity: identity,
			Shares:   payee.Shares,
		}
	}

	reply.AssetId = record.AssetId
	reply.ContentRef = record.ContentRef
	reply.MetadataRef = record.MetadataRef
	reply.UnitPrice = record.UnitPrice
	reply.MaxSupply = record.MaxSupply
	reply.MintedSupply = record.MintedSupply
	reply.Active = record.Active
	reply.Creator = creator.String()
	reply.Payees = payees
	return nil
}

// decode hex secret material checking exact sizes
func decodeSecret(arguments *SecretArguments) (*keystore.Secret, error) {
	keyMaterial, err := hex.DecodeString(arguments.KeyMaterial)
	if nil != err || keystore.KeySize != len(keyMaterial) {
		return nil, fault.InvalidSecretLength
	}

	nonce, err := hex.DecodeString(arguments.Nonce)
	if nil != err || keystore.NonceSize != len(nonce) {
		return nil, fault.InvalidSecretLength
	}

	secret := &keystore.Secret{}
	copy(secret.KeyMaterial[:], keyMaterial)
	copy(secret.Nonce[:], nonce)
	return secret, nil
}
