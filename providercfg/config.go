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

// Package providercfg is the provider engine's YAML-loadable configuration:
// everything NewProvider needs to construct a local or forked engine instance.
package providercfg

import (
	"fmt"
	"os"
	"time"

	"github.com/c2h5oh/datasize"
	"gopkg.in/yaml.v3"

	libcommon "github.com/erigontech/erigon-lib/common"
	"github.com/erigontech/erigon-lib/chain"

	"github.com/erigontech/erigon-devnet/core/txpool"
)

// MiningConfig controls automatic and interval block production.
type MiningConfig struct {
	AutoMine     bool               `yaml:"auto_mine"`
	Interval     *time.Duration     `yaml:"interval"`
	MemPoolOrder txpool.MineOrdering `yaml:"mem_pool_order"`
}

// ForkConfig, when set, makes the engine a forked blockchain rooted at
// BlockNumber instead of a fresh local genesis. BlockNumber must be set:
// construction fails when it is nil, and the remote latest block is not
// looked up.
type ForkConfig struct {
	JSONRPCURL  string  `yaml:"json_rpc_url"`
	BlockNumber *uint64 `yaml:"block_number"`
}

// GenesisAccount is an explicitly listed funded account.
type GenesisAccount struct {
	Address libcommon.Address `yaml:"address"`
	Balance libcommon.U256    `yaml:"balance"`
	Nonce   uint64            `yaml:"nonce"`
	Code    libcommon.Bytes   `yaml:"code"`
}

// GenesisAccountsSeed derives Count accounts deterministically from Seed,
// each funded with Balance, as an alternative to listing accounts
// explicitly.
type GenesisAccountsSeed struct {
	Seed    string         `yaml:"seed"`
	Count   int            `yaml:"count"`
	Balance libcommon.U256 `yaml:"balance"`
}

// Configuration is the full set of recognized engine construction options.
type Configuration struct {
	ChainID   uint64     `yaml:"chain_id"`
	NetworkID uint64     `yaml:"network_id"`
	Spec      chain.Spec `yaml:"spec"`

	Coinbase      libcommon.Address `yaml:"coinbase"`
	BlockGasLimit uint64            `yaml:"block_gas_limit"`

	AllowBlocksWithSameTimestamp bool `yaml:"allow_blocks_with_same_timestamp"`
	AllowUnlimitedContractSize  bool `yaml:"allow_unlimited_contract_size"`

	Mining MiningConfig `yaml:"mining"`

	InitialDate                  *time.Time     `yaml:"initial_date"`
	InitialBaseFeePerGas         *libcommon.U256 `yaml:"initial_base_fee_per_gas"`
	InitialBlobGas               *uint64        `yaml:"initial_blob_gas"`
	InitialParentBeaconBlockRoot *libcommon.Hash `yaml:"initial_parent_beacon_block_root"`

	CacheDir     string            `yaml:"cache_dir"`
	MaxCacheSize datasize.ByteSize `yaml:"max_cache_size"`

	GenesisAccounts     []GenesisAccount     `yaml:"genesis_accounts"`
	GenesisAccountsSeed *GenesisAccountsSeed `yaml:"genesis_accounts_seed"`

	Fork *ForkConfig `yaml:"fork"`
}

// ErrInvalidInitialDate is returned when InitialDate names a future time.
var ErrInvalidInitialDate = fmt.Errorf("providercfg: initial_date must not be in the future")

// Load reads and parses a YAML configuration file.
func Load(path string) (*Configuration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("providercfg: read %s: %w", path, err)
	}
	var cfg Configuration
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("providercfg: parse %s: %w", path, err)
	}
	cfg.applyDefaults()
	return &cfg, cfg.Validate(time.Now)
}

func (c *Configuration) applyDefaults() {
	if c.BlockGasLimit == 0 {
		c.BlockGasLimit = 30_000_000
	}
	if c.MaxCacheSize == 0 {
		c.MaxCacheSize = 256 * datasize.MB
	}
}

// Validate checks invariants Load cannot enforce purely from the YAML
// shape. now is injected so callers (and tests) control "the present" for
// the InitialDate-in-the-future check.
func (c *Configuration) Validate(now func() time.Time) error {
	if c.InitialDate != nil && c.InitialDate.After(now()) {
		return ErrInvalidInitialDate
	}
	if c.Fork != nil && c.Fork.JSONRPCURL == "" {
		return fmt.Errorf("providercfg: fork.json_rpc_url is required when fork is set")
	}
	return nil
}
