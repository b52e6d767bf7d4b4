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

// Package common holds the primitive identifiers shared by every package in
// this module: fixed-size addresses and hashes, the 256-bit unsigned integer,
// and an immutable byte string.
package common

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
	"golang.org/x/crypto/sha3"
)

const (
	AddressLength = 20
	HashLength    = 32
)

// Address is a 20-byte account identifier.
type Address [AddressLength]byte

func (a Address) String() string { return "0x" + hex.EncodeToString(a[:]) }

func (a Address) IsZero() bool { return a == Address{} }

func BytesToAddress(b []byte) Address {
	var a Address
	if len(b) > AddressLength {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
	return a
}

// RandomAddress returns a cryptographically random address, for callers
// that need a fresh, non-deterministic identifier (e.g. test fixtures),
// never for consensus-relevant values.
func RandomAddress() Address {
	var a Address
	_, _ = rand.Read(a[:])
	return a
}

func (a Address) MarshalJSON() ([]byte, error) { return []byte(`"` + a.String() + `"`), nil }

func (a *Address) UnmarshalJSON(data []byte) error {
	s := trimJSONHex(data)
	b, err := hex.DecodeString(s)
	if err != nil {
		return err
	}
	*a = BytesToAddress(b)
	return nil
}

func (a Address) MarshalYAML() (interface{}, error) { return a.String(), nil }

func (a *Address) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return err
	}
	*a = BytesToAddress(b)
	return nil
}

// Hash is a 32-byte identifier, typically the output of Keccak256.
type Hash [HashLength]byte

func (h Hash) String() string { return "0x" + hex.EncodeToString(h[:]) }

func (h Hash) IsZero() bool { return h == Hash{} }

func BytesToHash(b []byte) Hash {
	var h Hash
	if len(b) > HashLength {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
	return h
}

func RandomHash() Hash {
	var h Hash
	_, _ = rand.Read(h[:])
	return h
}

func (h Hash) MarshalJSON() ([]byte, error) { return []byte(`"` + h.String() + `"`), nil }

func (h *Hash) UnmarshalJSON(data []byte) error {
	s := trimJSONHex(data)
	b, err := hex.DecodeString(s)
	if err != nil {
		return err
	}
	*h = BytesToHash(b)
	return nil
}

func (h Hash) MarshalYAML() (interface{}, error) { return h.String(), nil }

func (h *Hash) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return err
	}
	*h = BytesToHash(b)
	return nil
}

func trimJSONHex(data []byte) string {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	return strings.TrimPrefix(s, "0x")
}

// Keccak256 hashes the concatenation of data using the Ethereum hash
// function. Used both for code hashes and as the building block of the
// randomness source's hash chain.
func Keccak256(data ...[]byte) Hash {
	d := sha3.NewLegacyKeccak256()
	for _, b := range data {
		d.Write(b)
	}
	var h Hash
	d.Sum(h[:0])
	return h
}

// EmptyCodeHash is the Keccak256 hash of the empty byte string, the
// distinguished value denoting "no code" for an account.
var EmptyCodeHash = Keccak256(nil)

// U256 is a 256-bit unsigned integer with saturating and overflow-checked
// arithmetic, backed by holiman/uint256.
type U256 struct {
	v uint256.Int
}

func NewU256(n uint64) U256 { return U256{v: *uint256.NewInt(n)} }

func U256FromBig(b *uint256.Int) U256 { return U256{v: *b} }

// BytesToU256 interprets b as a big-endian unsigned integer, truncating to
// the low 256 bits if b is longer.
func BytesToU256(b []byte) U256 { return U256{v: *new(uint256.Int).SetBytes(b)} }

func (u U256) Uint256() *uint256.Int { return new(uint256.Int).Set(&u.v) }

func (u U256) IsZero() bool { return u.v.IsZero() }

func (u U256) Cmp(o U256) int { return u.v.Cmp(&o.v) }

func (u U256) String() string { return u.v.Dec() }

// Add returns u+o and whether the addition overflowed 256 bits.
func (u U256) Add(o U256) (U256, bool) {
	var out uint256.Int
	_, overflow := out.AddOverflow(&u.v, &o.v)
	return U256{v: out}, overflow
}

// Sub returns u-o and whether the subtraction underflowed.
func (u U256) Sub(o U256) (U256, bool) {
	var out uint256.Int
	_, underflow := out.SubOverflow(&u.v, &o.v)
	return U256{v: out}, underflow
}

// SaturatingSub returns u-o, clamped to zero on underflow.
func (u U256) SaturatingSub(o U256) U256 {
	out, underflow := u.Sub(o)
	if underflow {
		return U256{}
	}
	return out
}

// GreaterOrEqual reports whether u >= o.
func (u U256) GreaterOrEqual(o U256) bool { return u.Cmp(o) >= 0 }

// MarshalJSON renders u as a 0x-prefixed hex string, the usual Ethereum JSON
// convention, and the shape the fork cache stores account/header fields in.
func (u U256) MarshalJSON() ([]byte, error) {
	return []byte(`"` + u.v.Hex() + `"`), nil
}

// UnmarshalJSON accepts the same 0x-prefixed hex string MarshalJSON writes.
func (u *U256) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	return u.v.UnmarshalText([]byte(s))
}

// MarshalYAML renders u the same 0x-prefixed hex way MarshalJSON does, the
// shape providercfg.Configuration's genesis balances are authored in.
func (u U256) MarshalYAML() (interface{}, error) { return u.v.Hex(), nil }

func (u *U256) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	return u.v.UnmarshalText([]byte(s))
}

// Bytes is an immutable byte sequence. It is a distinct type (rather than a
// bare []byte) so that call sites documenting "immutable" in the data model
// are enforced by convention: callers must not mutate a Bytes value in
// place; Clone makes that explicit at the one place it's needed.
type Bytes []byte

func (b Bytes) Clone() Bytes {
	if b == nil {
		return nil
	}
	out := make(Bytes, len(b))
	copy(out, b)
	return out
}

func (b Bytes) String() string { return fmt.Sprintf("0x%x", []byte(b)) }

func (b Bytes) MarshalYAML() (interface{}, error) { return b.String(), nil }

func (b *Bytes) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	decoded, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return err
	}
	*b = decoded
	return nil
}
