// Package genesis assembles predeployed IMA contracts into a genesis state.
package genesis

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/params"
	"github.com/tyler-smith/go-bip39"

	"github.com/streaming-dev/IMA/pkg/config"
	"github.com/streaming-dev/IMA/pkg/state"
)

// Account represents a key-backed account with its private key.
type Account struct {
	Address    common.Address
	PrivateKey *ecdsa.PrivateKey
}

// GenerateAccounts generates deterministic accounts from a mnemonic.
func GenerateAccounts(mnemonic string, count int) ([]*Account, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, fmt.Errorf("invalid mnemonic")
	}

	seed := bip39.NewSeed(mnemonic, "")
	accounts := make([]*Account, count)

	for i := 0; i < count; i++ {
		key, err := deriveKey(seed, uint32(i))
		if err != nil {
			return nil, fmt.Errorf("failed to derive key %d: %w", i, err)
		}

		accounts[i] = &Account{
			Address:    crypto.PubkeyToAddress(key.PublicKey),
			PrivateKey: key,
		}
	}

	return accounts, nil
}

// deriveKey derives a private key from seed at the given index as
// keccak256(seed . index). This is not BIP-32; it only needs to be stable.
func deriveKey(seed []byte, index uint32) (*ecdsa.PrivateKey, error) {
	indexBytes := []byte{byte(index >> 24), byte(index >> 16), byte(index >> 8), byte(index)}

	combined := make([]byte, 0, len(seed)+len(indexBytes))
	combined = append(combined, seed...)
	combined = append(combined, indexBytes...)

	return crypto.ToECDSA(crypto.Keccak256(combined))
}

// ResolveDeployer returns the configured deployer address, or derives it from
// the mnemonic at DeployerIndex.
func ResolveDeployer(cfg *config.Config) (common.Address, error) {
	if cfg.DeployerAddress != nil {
		return *cfg.DeployerAddress, nil
	}
	accounts, err := GenerateAccounts(cfg.Mnemonic, cfg.DeployerIndex+1)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to derive deployer: %w", err)
	}
	return accounts[cfg.DeployerIndex].Address, nil
}

// createChainConfig creates a chain configuration with every fork active
// from genesis.
func createChainConfig(chainID uint64) *params.ChainConfig {
	return &params.ChainConfig{
		ChainID:                       new(big.Int).SetUint64(chainID),
		HomesteadBlock:                big.NewInt(0),
		EIP150Block:                   big.NewInt(0),
		EIP155Block:                   big.NewInt(0),
		EIP158Block:                   big.NewInt(0),
		ByzantiumBlock:                big.NewInt(0),
		ConstantinopleBlock:           big.NewInt(0),
		PetersburgBlock:               big.NewInt(0),
		IstanbulBlock:                 big.NewInt(0),
		MuirGlacierBlock:              big.NewInt(0),
		BerlinBlock:                   big.NewInt(0),
		LondonBlock:                   big.NewInt(0),
		ArrowGlacierBlock:             big.NewInt(0),
		GrayGlacierBlock:              big.NewInt(0),
		TerminalTotalDifficulty:       big.NewInt(0),
		TerminalTotalDifficultyPassed: true,
		ShanghaiTime:                  new(uint64),
		CancunTime:                    new(uint64),
	}
}

// ToGenesisAlloc converts a state image into a go-ethereum genesis
// allocation. Zero-valued slots are dropped.
func ToGenesisAlloc(image *state.Allocation) core.GenesisAlloc {
	alloc := make(core.GenesisAlloc, image.AccountCount())

	for _, addr := range image.Addresses() {
		account := core.GenesisAccount{
			Code:    image.GetCode(addr),
			Balance: image.GetBalance(addr),
			Nonce:   image.GetNonce(addr),
		}
		for slot, value := range image.Storage(addr) {
			if value == (common.Hash{}) {
				continue
			}
			if account.Storage == nil {
				account.Storage = make(map[common.Hash]common.Hash)
			}
			account.Storage[slot] = value
		}
		alloc[addr] = account
	}

	return alloc
}

// CreateGenesis builds a genesis definition holding the configured
// predeployed contracts.
func CreateGenesis(b *Builder) (*core.Genesis, error) {
	image, err := b.Allocation()
	if err != nil {
		return nil, err
	}

	return &core.Genesis{
		Config:     createChainConfig(b.cfg.ChainID),
		Nonce:      0,
		Timestamp:  0,
		GasLimit:   b.cfg.GasLimit,
		Difficulty: big.NewInt(0),
		Alloc:      ToGenesisAlloc(image),
	}, nil
}
