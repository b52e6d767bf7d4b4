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

// Package signer holds the local-accounts key store, the impersonated-
// address set, and the lookup-then-delegate policy around both. The
// underlying ECDSA math is out of scope for this core's primary concern
// (block production and state bookkeeping); it's implemented here anyway
// because the policy around it — impersonated vs. known vs. unknown — is
// provider-engine behavior, not primitive crypto.
package signer

import (
	mapset "github.com/deckarep/golang-set/v2"

	libcommon "github.com/erigontech/erigon-lib/common"
)

// ImpersonationSet is the in-memory set of addresses the engine will accept
// transactions from without holding their private key.
type ImpersonationSet struct {
	addresses mapset.Set[libcommon.Address]
}

func NewImpersonationSet() *ImpersonationSet {
	return &ImpersonationSet{addresses: mapset.NewThreadUnsafeSet[libcommon.Address]()}
}

// Impersonate adds a, reporting whether it was newly added.
func (s *ImpersonationSet) Impersonate(a libcommon.Address) bool {
	return s.addresses.Add(a)
}

// StopImpersonating removes a, reporting whether it was present.
func (s *ImpersonationSet) StopImpersonating(a libcommon.Address) bool {
	present := s.addresses.Contains(a)
	s.addresses.Remove(a)
	return present
}

func (s *ImpersonationSet) IsImpersonated(a libcommon.Address) bool {
	return s.addresses.Contains(a)
}

// Clone deep-copies the set, used by the snapshot registry.
func (s *ImpersonationSet) Clone() *ImpersonationSet {
	return &ImpersonationSet{addresses: s.addresses.Clone()}
}
