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

// Package chain holds the hard-fork milestone enumeration. Unlike the
// production erigon-lib/chain package (which carries a full per-network
// activation schedule), this is scoped to what the provider core needs: a
// totally ordered Spec and three ordering gates: IsPostMerge (PREVRANDAO,
// the safe/finalized tags), IsLondon (base-fee presence) and IsCancun (blob
// gas).
package chain

import "fmt"

// Spec enumerates hard-fork milestones in activation order. Comparing two
// Spec values with < / >= answers "was fork A active at or before fork B".
type Spec int

const (
	Frontier Spec = iota
	Homestead
	TangerineWhistle
	SpuriousDragon
	Byzantium
	Constantinople
	Petersburg
	Istanbul
	Berlin
	London
	Merge
	Shanghai
	Cancun
)

func (s Spec) String() string {
	names := [...]string{
		"Frontier", "Homestead", "TangerineWhistle", "SpuriousDragon",
		"Byzantium", "Constantinople", "Petersburg", "Istanbul", "Berlin",
		"London", "Merge", "Shanghai", "Cancun",
	}
	if int(s) < 0 || int(s) >= len(names) {
		return "Unknown"
	}
	return names[s]
}

// IsPostMerge reports whether s is at or after the Merge, the gate used
// throughout the provider for PREVRANDAO sourcing and the safe/finalized
// block tags.
func (s Spec) IsPostMerge() bool { return s >= Merge }

// IsLondon reports whether s is at or after London, the gate for EIP-1559
// base-fee presence.
func (s Spec) IsLondon() bool { return s >= London }

// IsCancun reports whether s is at or after Cancun, the gate for EIP-4844
// blob gas accounting.
func (s Spec) IsCancun() bool { return s >= Cancun }

var specNames = map[string]Spec{
	"Frontier": Frontier, "Homestead": Homestead, "TangerineWhistle": TangerineWhistle,
	"SpuriousDragon": SpuriousDragon, "Byzantium": Byzantium, "Constantinople": Constantinople,
	"Petersburg": Petersburg, "Istanbul": Istanbul, "Berlin": Berlin, "London": London,
	"Merge": Merge, "Shanghai": Shanghai, "Cancun": Cancun,
}

// ParseSpec resolves a hard-fork name (as configuration files spell it) to
// a Spec, case-sensitively matching the names String returns.
func ParseSpec(name string) (Spec, error) {
	s, ok := specNames[name]
	if !ok {
		return 0, fmt.Errorf("chain: unknown spec %q", name)
	}
	return s, nil
}

// UnmarshalYAML lets a Configuration name its spec by hard-fork name in
// YAML rather than by ordinal.
func (s *Spec) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var name string
	if err := unmarshal(&name); err != nil {
		return err
	}
	parsed, err := ParseSpec(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// MarshalYAML renders s by hard-fork name.
func (s Spec) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}
