// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

// error base
type GenericError string

// to allow for different classes of errors
type ExistsError GenericError
type InvalidError GenericError
type NotFoundError GenericError
type ProcessError GenericError
type StaleError GenericError

// common errors - keep in alphabetic order
var (
	AccessDenied            = InvalidError("access denied")
	AlreadyExists           = ExistsError("record already exists")
	AlreadyInitialised      = ProcessError("already initialised")
	AssetInactive           = ProcessError("asset is inactive")
	AssetNotFound           = NotFoundError("asset not found")
	CannotDecodeIdentity    = InvalidError("cannot decode identity")
	CertificateFileExists   = ExistsError("certificate file already exists")
	ChecksumMismatch        = InvalidError("checksum mismatch")
	DuplicatePayee          = InvalidError("duplicate payee")
	EmptyPayeeList          = InvalidError("payee list cannot be empty")
	ExcessivePayment        = InvalidError("excessive payment")
	InsufficientBalance     = ProcessError("insufficient balance")
	InsufficientPayment     = InvalidError("insufficient payment")
	InvalidCount            = InvalidError("invalid count")
	InvalidIpAddress        = InvalidError("invalid IP Address")
	InvalidKeyLength        = InvalidError("invalid key length")
	InvalidKeyType          = InvalidError("invalid key type")
	InvalidRoyaltySplit     = InvalidError("royalty shares must sum to 10000")
	InvalidSecretLength     = InvalidError("invalid secret length")
	InvalidSignature        = InvalidError("invalid signature")
	InvalidStructPointer    = InvalidError("invalid struct pointer")
	InvalidTimestamp        = InvalidError("invalid timestamp")
	KeyFileExists           = ExistsError("key file already exists")
	KeyServiceFault         = ProcessError("key service fault")
	ListingInactive         = ProcessError("listing is inactive")
	ListingNotFound         = NotFoundError("listing not found")
	MissingParameters       = InvalidError("missing parameters")
	NotInitialised          = ProcessError("not initialised")
	NotOwner                = InvalidError("not the owner")
	NotPlatform             = InvalidError("not the platform identity")
	NotPublicKey            = InvalidError("not a public key")
	NotSeller               = InvalidError("not the seller")
	NothingToWithdraw       = ProcessError("nothing to withdraw")
	RateLimiting            = ProcessError("rate limiting")
	ReferenceTooLong        = InvalidError("reference too long")
	SecretNotFound          = NotFoundError("secret not found")
	StaleRequest            = StaleError("stale request")
	SupplyExhausted         = ProcessError("supply exhausted")
	TooManyPayees           = InvalidError("too many payees")
	TransactionAlreadyInUse = ProcessError("transaction already in use")
	WrongPassword           = InvalidError("wrong password")
)

// the error interface base method
func (e GenericError) Error() string { return string(e) }

// the error interface methods
func (e ExistsError) Error() string   { return string(e) }
func (e InvalidError) Error() string  { return string(e) }
func (e NotFoundError) Error() string { return string(e) }
func (e ProcessError) Error() string  { return string(e) }
func (e StaleError) Error() string    { return string(e) }

// determine the class of an error
func IsErrExists(e error) bool   { _, ok := e.(ExistsError); return ok }
func IsErrInvalid(e error) bool  { _, ok := e.(InvalidError); return ok }
func IsErrNotFound(e error) bool { _, ok := e.(NotFoundError); return ok }
func IsErrProcess(e error) bool  { _, ok := e.(ProcessError); return ok }
func IsErrStale(e error) bool    { _, ok := e.(StaleError); return ok }
