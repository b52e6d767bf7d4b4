// Copyright 2024 The Erigon Authors
// This file is part of Erigon.
//
// Erigon is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Erigon is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Erigon. If not, see <http://www.gnu.org/licenses/>.

package signer

import (
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	libcommon "github.com/erigontech/erigon-lib/common"
)

// Signature is a recoverable ECDSA signature over a 32-byte digest.
type Signature struct {
	R, S libcommon.U256
	V    byte
}

// SignedTransaction is the result of sign_transaction_request: a signature
// plus the caller address the engine will treat the transaction as coming
// from. For an impersonated sender the signature is a sentinel value, not a
// valid recoverable signature; Impersonated tells callers not to try to
// recover a signer from it.
type SignedTransaction struct {
	Digest          libcommon.Hash
	Signature       Signature
	RecoveredSigner libcommon.Address
	Impersonated    bool
}

// Registry is the local-accounts key store plus the impersonation set,
// composed behind the single lookup-then-delegate policy every sign
// operation uses.
type Registry struct {
	Impersonation *ImpersonationSet
	accounts      map[libcommon.Address]*secp256k1.PrivateKey
}

func NewRegistry() *Registry {
	return &Registry{
		Impersonation: NewImpersonationSet(),
		accounts:      make(map[libcommon.Address]*secp256k1.PrivateKey),
	}
}

// AddLocalAccount derives an address from key and registers it, returning
// the address.
func (r *Registry) AddLocalAccount(key *secp256k1.PrivateKey) libcommon.Address {
	pub := key.PubKey().SerializeUncompressed()
	h := libcommon.Keccak256(pub[1:])
	addr := libcommon.BytesToAddress(h[12:])
	r.accounts[addr] = key
	return addr
}

func (r *Registry) HasLocalAccount(addr libcommon.Address) bool {
	_, ok := r.accounts[addr]
	return ok
}

// SignTransactionRequest: an impersonated sender gets a fake signature with
// the recovered caller forced to from; otherwise the local account's key
// signs digest, or UnknownAddressError if from is neither.
func (r *Registry) SignTransactionRequest(from libcommon.Address, digest libcommon.Hash) (*SignedTransaction, error) {
	if r.Impersonation.IsImpersonated(from) {
		return &SignedTransaction{Digest: digest, Signature: fakeSignature(), RecoveredSigner: from, Impersonated: true}, nil
	}
	key, ok := r.accounts[from]
	if !ok {
		return nil, &UnknownAddressError{Address: from}
	}
	sig, err := sign(key, digest)
	if err != nil {
		return nil, err
	}
	return &SignedTransaction{Digest: digest, Signature: *sig, RecoveredSigner: from}, nil
}

// Sign implements personal_sign-style arbitrary message signing: same
// lookup-then-delegate policy as SignTransactionRequest, applied to the
// Ethereum "personal message" digest instead of a transaction hash.
func (r *Registry) Sign(from libcommon.Address, message []byte) (*SignedTransaction, error) {
	digest := PersonalSignHash(message)
	return r.SignTransactionRequest(from, digest)
}

// PersonalSignHash computes the digest eth_sign / personal_sign signs: the
// keccak256 of the standard Ethereum message prefix followed by message.
func PersonalSignHash(message []byte) libcommon.Hash {
	prefix := []byte(fmt.Sprintf("\x19Ethereum Signed Message:\n%d", len(message)))
	return libcommon.Keccak256(prefix, message)
}

func sign(key *secp256k1.PrivateKey, digest libcommon.Hash) (*Signature, error) {
	compact := ecdsa.SignCompact(key, digest[:], false)
	if len(compact) != 65 {
		return nil, fmt.Errorf("signer: unexpected compact signature length %d", len(compact))
	}
	recoveryID := compact[0]
	r := libcommon.BytesToU256(compact[1:33])
	s := libcommon.BytesToU256(compact[33:65])
	return &Signature{R: r, S: s, V: recoveryID}, nil
}

// fakeSignature is the sentinel signature attached to impersonated
// transactions: never a valid recoverable signature over any digest, so a
// caller that tries to recover a signer from it (instead of trusting
// Impersonated) gets garbage rather than a different real address.
func fakeSignature() Signature {
	return Signature{R: libcommon.NewU256(1), S: libcommon.NewU256(1), V: 0}
}
