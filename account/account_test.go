// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package account_test

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/ed25519"

	"github.com/bitmark-inc/galleryd/account"
	"github.com/bitmark-inc/galleryd/fault"
)

// create a keypair for testing
func makeAccount(t *testing.T) (*account.Account, ed25519.PrivateKey) {
	publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
	assert.Nil(t, err, "ed25519.GenerateKey")

	acc := &account.Account{
		AccountInterface: &account.ED25519Account{
			Test:      true,
			PublicKey: publicKey,
		},
	}
	return acc, privateKey
}

func TestBase58RoundTrip(t *testing.T) {
	acc, _ := makeAccount(t)

	encoded := acc.String()
	decoded, err := account.AccountFromBase58(encoded)
	assert.Nil(t, err, "AccountFromBase58")
	assert.Equal(t, acc.PublicKeyBytes(), decoded.PublicKeyBytes(), "public key")
	assert.Equal(t, account.ED25519, decoded.KeyType(), "key type")
	assert.True(t, decoded.IsTesting(), "test flag")
}

func TestBytesRoundTrip(t *testing.T) {
	acc, _ := makeAccount(t)

	decoded, err := account.AccountFromBytes(acc.Bytes())
	assert.Nil(t, err, "AccountFromBytes")
	assert.Equal(t, acc.PublicKeyBytes(), decoded.PublicKeyBytes(), "public key")
}

func TestCorruptedBase58(t *testing.T) {
	acc, _ := makeAccount(t)

	encoded := acc.String()

	// flip one character to break the checksum
	tampered := []byte(encoded)
	if tampered[4] == '2' {
		tampered[4] = '3'
	} else {
		tampered[4] = '2'
	}

	_, err := account.AccountFromBase58(string(tampered))
	assert.NotNil(t, err, "tampered account must not decode")
}

func TestCheckSignature(t *testing.T) {
	acc, privateKey := makeAccount(t)

	message := []byte("prove-ownership:7:1594000000")
	signature := account.Signature(ed25519.Sign(privateKey, message))

	err := acc.CheckSignature(message, signature)
	assert.Nil(t, err, "valid signature")

	// tampered message
	err = acc.CheckSignature([]byte("prove-ownership:8:1594000000"), signature)
	assert.Equal(t, fault.InvalidSignature, err, "tampered message")

	// tampered signature
	tampered := make(account.Signature, len(signature))
	copy(tampered, signature)
	tampered[0] ^= 0xff
	err = acc.CheckSignature(message, tampered)
	assert.Equal(t, fault.InvalidSignature, err, "tampered signature")

	// truncated signature
	err = acc.CheckSignature(message, signature[:16])
	assert.Equal(t, fault.InvalidSignature, err, "short signature")
}

func TestNothingAccount(t *testing.T) {
	acc := &account.Account{
		AccountInterface: &account.NothingAccount{
			Test:      true,
			PublicKey: []byte{0x12, 0x34},
		},
	}

	err := acc.CheckSignature([]byte("anything"), account.Signature("sig"))
	assert.Equal(t, fault.InvalidSignature, err, "nothing account never verifies")

	decoded, err := account.AccountFromBase58(acc.String())
	assert.Nil(t, err, "AccountFromBase58")
	assert.Equal(t, account.Nothing, decoded.KeyType(), "key type")
}

func TestSignatureText(t *testing.T) {
	signature := account.Signature{0xde, 0xad, 0xbe, 0xef}

	text, err := signature.MarshalText()
	assert.Nil(t, err, "MarshalText")
	assert.Equal(t, "deadbeef", string(text), "hex form")

	var decoded account.Signature
	err = decoded.UnmarshalText(text)
	assert.Nil(t, err, "UnmarshalText")
	assert.Equal(t, signature, decoded, "round trip")
}
