// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"encoding/binary"

	"github.com/bitmark-inc/galleryd/fault"
	"github.com/bitmark-inc/galleryd/royalty"
)

// record layout sizes
const (
	uint64ByteSize = 8
	uint32ByteSize = 4
	oneByteSize    = 1
	twoByteSize    = 2
)

// record flag bits
const (
	activeFlag = 0x01
)

// Asset - one published work
type Asset struct {
	AssetId      uint64          `json:"assetId"`
	ContentRef   string          `json:"contentRef"`
	MetadataRef  string          `json:"metadataRef"`
	UnitPrice    uint64          `json:"unitPrice"`
	MaxSupply    uint64          `json:"maxSupply"` // zero means unbounded
	MintedSupply uint64          `json:"mintedSupply"`
	Active       bool            `json:"active"`
	Creator      []byte          `json:"creator"`
	Payees       []royalty.Payee `json:"payees"`
}

// Listing - one escrowed unit offered for resale
type Listing struct {
	ListingId uint64 `json:"listingId"`
	AssetId   uint64 `json:"assetId"`
	Seller    []byte `json:"seller"`
	AskPrice  uint64 `json:"askPrice"`
	Active    bool   `json:"active"`
}

// PackedAsset - packed byte form for the Assets pool
type PackedAsset []byte

// PackedListing - packed byte form for the Listings pool
type PackedListing []byte

// structure of the packed asset record:
//
//	unit price     8
//	max supply     8
//	minted supply  8
//	flags          1
//	creator        1 length ⧺ bytes
//	content ref    2 length ⧺ bytes
//	metadata ref   2 length ⧺ bytes
//	payee count    1
//	per payee      1 length ⧺ identity ⧺ 4 shares

// Pack - pack an asset to its byte form
//
// the AssetId is the record key and is not stored in the value
func (asset Asset) Pack() PackedAsset {
	size := 3*uint64ByteSize + oneByteSize +
		oneByteSize + len(asset.Creator) +
		twoByteSize + len(asset.ContentRef) +
		twoByteSize + len(asset.MetadataRef) +
		oneByteSize
	for _, payee := range asset.Payees {
		size += oneByteSize + len(payee.Identity) + uint32ByteSize
	}

	packed := make(PackedAsset, 0, size)
	packed = appendUint64(packed, asset.UnitPrice)
	packed = appendUint64(packed, asset.MaxSupply)
	packed = appendUint64(packed, asset.MintedSupply)

	flags := byte(0)
	if asset.Active {
		flags |= activeFlag
	}
	packed = append(packed, flags)

	packed = append(packed, byte(len(asset.Creator)))
	packed = append(packed, asset.Creator...)

	packed = appendString16(packed, asset.ContentRef)
	packed = appendString16(packed, asset.MetadataRef)

	packed = append(packed, byte(len(asset.Payees)))
	for _, payee := range asset.Payees {
		packed = append(packed, byte(len(payee.Identity)))
		packed = append(packed, payee.Identity...)

		shares := make([]byte, uint32ByteSize)
		binary.BigEndian.PutUint32(shares, payee.Shares)
		packed = append(packed, shares...)
	}

	return packed
}

// Unpack - unpack an asset record
func (packed PackedAsset) Unpack(assetId uint64) (*Asset, error) {
	asset := &Asset{
		AssetId: assetId,
	}

	r := &reader{buffer: packed}

	asset.UnitPrice = r.uint64()
	asset.MaxSupply = r.uint64()
	asset.MintedSupply = r.uint64()

	flags := r.byte()
	asset.Active = 0 != flags&activeFlag

	asset.Creator = r.bytes8()
	asset.ContentRef = string(r.bytes16())
	asset.MetadataRef = string(r.bytes16())

	payeeCount := int(r.byte())
	asset.Payees = make([]royalty.Payee, payeeCount)
	for i := 0; i < payeeCount; i += 1 {
		identity := r.bytes8()
		shares := r.uint32()
		asset.Payees[i] = royalty.Payee{
			Identity: identity,
			Shares:   shares,
		}
	}

	if r.failed {
		return nil, fault.ProcessError("asset record corrupt")
	}
	return asset, nil
}

// structure of the packed listing record:
//
//	asset id   8
//	ask price  8
//	flags      1
//	seller     1 length ⧺ bytes

// Pack - pack a listing to its byte form
//
// the ListingId is the record key and is not stored in the value
func (listing Listing) Pack() PackedListing {
	size := 2*uint64ByteSize + oneByteSize + oneByteSize + len(listing.Seller)

	packed := make(PackedListing, 0, size)
	packed = appendUint64(packed, listing.AssetId)
	packed = appendUint64(packed, listing.AskPrice)

	flags := byte(0)
	if listing.Active {
		flags |= activeFlag
	}
	packed = append(packed, flags)

	packed = append(packed, byte(len(listing.Seller)))
	packed = append(packed, listing.Seller...)

	return packed
}

// Unpack - unpack a listing record
func (packed PackedListing) Unpack(listingId uint64) (*Listing, error) {
	listing := &Listing{
		ListingId: listingId,
	}

	r := &reader{buffer: packed}

	listing.AssetId = r.uint64()
	listing.AskPrice = r.uint64()

	flags := r.byte()
	listing.Active = 0 != flags&activeFlag

	listing.Seller = r.bytes8()

	if r.failed {
		return nil, fault.ProcessError("listing record corrupt")
	}
	return listing, nil
}

// packing helpers
// ---------------

func appendUint64(buffer []byte, value uint64) []byte {
	b := make([]byte, uint64ByteSize)
	binary.BigEndian.PutUint64(b, value)
	return append(buffer, b...)
}

// longest string a 16-bit length prefix can carry
const maxReferenceLength = 65535

func appendString16(buffer []byte, value string) []byte {
	b := make([]byte, twoByteSize)
	binary.BigEndian.PutUint16(b, uint16(len(value)))
	buffer = append(buffer, b...)
	return append(buffer, value...)
}

// sequential reader that latches failure instead of panicking on a
// truncated record
type reader struct {
	buffer []byte
	offset int
	failed bool
}

func (r *reader) take(n int) []byte {
	if r.failed || r.offset+n > len(r.buffer) {
		r.failed = true
		return nil
	}
	b := r.buffer[r.offset : r.offset+n]
	r.offset += n
	return b
}

func (r *reader) byte() byte {
	b := r.take(oneByteSize)
	if nil == b {
		return 0
	}
	return b[0]
}

func (r *reader) uint32() uint32 {
	b := r.take(uint32ByteSize)
	if nil == b {
		return 0
	}
	return binary.BigEndian.Uint32(b)
}

func (r *reader) uint64() uint64 {
	b := r.take(uint64ByteSize)
	if nil == b {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}

func (r *reader) bytes8() []byte {
	n := int(r.byte())
	b := r.take(n)
	if nil == b {
		return nil
	}
	result := make([]byte, n)
	copy(result, b)
	return result
}

func (r *reader) bytes16() []byte {
	lengthBytes := r.take(twoByteSize)
	if nil == lengthBytes {
		return nil
	}
	n := int(binary.BigEndian.Uint16(lengthBytes))
	b := r.take(n)
	if nil == b {
		return nil
	}
	result := make([]byte, n)
	copy(result, b)
	return result
}
