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

package common

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestAddressJSONRoundTrip(t *testing.T) {
	f := fuzz.New().NilChance(0).Funcs(func(a *Address, c fuzz.Continue) {
		for i := range a {
			a[i] = byte(c.Intn(256))
		}
	})
	for i := 0; i < 50; i++ {
		var a Address
		f.Fuzz(&a)

		data, err := a.MarshalJSON()
		require.NoError(t, err)
		var out Address
		require.NoError(t, out.UnmarshalJSON(data))
		require.True(t, a == out, "json round trip: %s != %s", a, out)

		y, err := yaml.Marshal(a)
		require.NoError(t, err)
		var outYAML Address
		require.NoError(t, yaml.Unmarshal(y, &outYAML))
		require.True(t, a == outYAML, "yaml round trip: %s != %s", a, outYAML)
	}
}

func TestHashJSONAndYAMLRoundTrip(t *testing.T) {
	for i := 0; i < 20; i++ {
		h := RandomHash()

		data, err := h.MarshalJSON()
		require.NoError(t, err)
		var out Hash
		require.NoError(t, out.UnmarshalJSON(data))
		require.True(t, h == out)

		y, err := yaml.Marshal(h)
		require.NoError(t, err)
		var outYAML Hash
		require.NoError(t, yaml.Unmarshal(y, &outYAML))
		require.True(t, h == outYAML)
	}
}

func TestU256YAMLRoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 12345, ^uint64(0)}
	for _, n := range cases {
		u := NewU256(n)
		y, err := yaml.Marshal(u)
		require.NoError(t, err)
		var out U256
		require.NoError(t, yaml.Unmarshal(y, &out))
		require.Equal(t, 0, u.Cmp(out), "round trip for %d", n)
	}
}

func TestBytesYAMLRoundTrip(t *testing.T) {
	original := Bytes{0xde, 0xad, 0xbe, 0xef}
	y, err := yaml.Marshal(original)
	require.NoError(t, err)
	var out Bytes
	require.NoError(t, yaml.Unmarshal(y, &out))
	if diff := cmp.Diff([]byte(original), []byte(out)); diff != "" {
		t.Fatalf("bytes round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestU256Arithmetic(t *testing.T) {
	a := NewU256(10)
	b := NewU256(3)

	sum, overflow := a.Add(b)
	require.False(t, overflow)
	require.Equal(t, "13", sum.String())

	diff, underflow := b.Sub(a)
	require.True(t, underflow)
	_ = diff

	require.True(t, b.SaturatingSub(a).IsZero())
	require.True(t, a.GreaterOrEqual(b))
	require.False(t, b.GreaterOrEqual(a))
}

func TestBytecodeHashInvariant(t *testing.T) {
	empty := Keccak256(nil)
	require.Equal(t, EmptyCodeHash, empty)
}
