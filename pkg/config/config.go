// Package config provides configuration management for the predeployed
// genesis generator.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/tyler-smith/go-bip39"

	"github.com/streaming-dev/IMA/pkg/addresses"
	"github.com/streaming-dev/IMA/pkg/storage"
)

// Default values.
var (
	DefaultChainID       = uint64(31337)
	DefaultGasLimit      = uint64(30000000)
	DefaultMnemonic      = "test test test test test test test test test test test junk"
	DefaultDeployerIndex = 0
	DefaultArtifactsDir  = "artifacts"
)

// Config defines the generator configuration.
type Config struct {
	// Chain configuration
	ChainID  uint64 `json:"chainId"`
	GasLimit uint64 `json:"gasLimit"`

	// Deployer: an explicit address wins over the mnemonic-derived one
	DeployerAddress *common.Address `json:"deployerAddress,omitempty"`
	Mnemonic        string          `json:"mnemonic"`
	DeployerIndex   int             `json:"deployerIndex"`

	// CommunityLocker initialization
	SchainName           string          `json:"schainName"`
	CommunityPoolAddress *common.Address `json:"communityPoolAddress,omitempty"`
	TimeLimitPerMessage  uint64          `json:"timeLimitPerMessage,omitempty"` // 0 = contract default

	// Collaborator inputs
	ArtifactsDir string                    `json:"artifactsDir"`
	Addresses    map[string]common.Address `json:"addresses,omitempty"`

	// Proxy deployment (optional)
	Upgradeable *UpgradeableConfig `json:"upgradeable,omitempty"`
}

// UpgradeableConfig places the contract behind a transparent proxy.
type UpgradeableConfig struct {
	ImplementationAddress common.Address  `json:"implementationAddress"`
	ProxyAdminOwner       *common.Address `json:"proxyAdminOwner,omitempty"` // nil = deployer
}

// Default returns a configuration with default values.
func Default() *Config {
	return &Config{
		ChainID:       DefaultChainID,
		GasLimit:      DefaultGasLimit,
		Mnemonic:      DefaultMnemonic,
		DeployerIndex: DefaultDeployerIndex,
		ArtifactsDir:  DefaultArtifactsDir,
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	var errs []string

	if c.ChainID == 0 {
		errs = append(errs, "chainId must be greater than 0")
	}

	if c.GasLimit == 0 {
		errs = append(errs, "gasLimit must be greater than 0")
	}

	if c.DeployerAddress == nil && c.Mnemonic == "" {
		errs = append(errs, "deployerAddress or mnemonic is required")
	}

	if c.Mnemonic != "" && !bip39.IsMnemonicValid(c.Mnemonic) {
		errs = append(errs, "mnemonic is invalid")
	}

	if c.DeployerIndex < 0 {
		errs = append(errs, "deployerIndex must not be negative")
	}

	if c.CommunityPoolAddress == nil {
		errs = append(errs, "communityPoolAddress is required")
	}

	if len(c.SchainName) > storage.MaxStringLength {
		errs = append(errs, fmt.Sprintf("schainName must not exceed %d bytes", storage.MaxStringLength))
	}

	if c.ArtifactsDir == "" {
		errs = append(errs, "artifactsDir cannot be empty")
	}

	known := addresses.Default()
	for name := range c.Addresses {
		if _, ok := known.Lookup(name); !ok {
			errs = append(errs, fmt.Sprintf("addresses.%s is not one of %s", name, strings.Join(known.Names(), ", ")))
		}
	}

	if c.Upgradeable != nil {
		if c.Upgradeable.ImplementationAddress == (common.Address{}) {
			errs = append(errs, "upgradeable.implementationAddress is required")
		}
		table := c.AddressTable()
		if proxy, ok := table.Lookup(addresses.CommunityLocker); ok && proxy == c.Upgradeable.ImplementationAddress {
			errs = append(errs, "upgradeable.implementationAddress must differ from the community_locker address")
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

// LoadFromFile loads configuration from a JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return MergeWithDefaults(&cfg), nil
}

// MergeWithDefaults merges partial config with default values.
func MergeWithDefaults(partial *Config) *Config {
	def := Default()

	if partial.ChainID != 0 {
		def.ChainID = partial.ChainID
	}
	if partial.GasLimit != 0 {
		def.GasLimit = partial.GasLimit
	}
	if partial.Mnemonic != "" {
		def.Mnemonic = partial.Mnemonic
	}
	if partial.DeployerIndex != 0 {
		def.DeployerIndex = partial.DeployerIndex
	}
	if partial.ArtifactsDir != "" {
		def.ArtifactsDir = partial.ArtifactsDir
	}
	def.DeployerAddress = partial.DeployerAddress
	def.SchainName = partial.SchainName
	def.CommunityPoolAddress = partial.CommunityPoolAddress
	def.TimeLimitPerMessage = partial.TimeLimitPerMessage
	def.Addresses = partial.Addresses
	def.Upgradeable = partial.Upgradeable

	return def
}

// Copy creates a deep copy of the configuration.
func (c *Config) Copy() *Config {
	copied := *c

	if c.DeployerAddress != nil {
		addr := *c.DeployerAddress
		copied.DeployerAddress = &addr
	}
	if c.CommunityPoolAddress != nil {
		addr := *c.CommunityPoolAddress
		copied.CommunityPoolAddress = &addr
	}
	if c.Addresses != nil {
		copied.Addresses = make(map[string]common.Address, len(c.Addresses))
		for k, v := range c.Addresses {
			copied.Addresses[k] = v
		}
	}
	if c.Upgradeable != nil {
		upgradeableCopy := *c.Upgradeable
		if c.Upgradeable.ProxyAdminOwner != nil {
			owner := *c.Upgradeable.ProxyAdminOwner
			upgradeableCopy.ProxyAdminOwner = &owner
		}
		copied.Upgradeable = &upgradeableCopy
	}

	return &copied
}

// AddressTable returns the default address table with configured overrides.
func (c *Config) AddressTable() addresses.Table {
	return addresses.Default().Merge(c.Addresses)
}

// IsUpgradeable returns true if the contract is deployed behind a proxy.
func (c *Config) IsUpgradeable() bool {
	return c.Upgradeable != nil
}
