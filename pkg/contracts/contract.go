// Package contracts generates the genesis storage of predeployed contracts
// and wraps it, together with the contract code, into genesis allocations.
package contracts

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/streaming-dev/IMA/pkg/artifact"
	"github.com/streaming-dev/IMA/pkg/storage"
)

// Generator produces the post-initialization storage of one contract kind.
type Generator interface {
	Name() string
	Code() []byte
	GenerateStorage(params Params) (storage.Storage, error)
}

// Contract carries a compiled artifact for the generators built on it.
type Contract struct {
	artifact *artifact.Artifact
}

// NewContract wraps an artifact. A nil artifact yields a contract with no
// code, which is enough to compute storage.
func NewContract(art *artifact.Artifact) Contract {
	return Contract{artifact: art}
}

// Name returns the artifact's contract name.
func (c Contract) Name() string {
	if c.artifact == nil {
		return ""
	}
	return c.artifact.ContractName
}

// Code returns the deployed bytecode.
func (c Contract) Code() []byte {
	if c.artifact == nil {
		return nil
	}
	return c.artifact.DeployedBytecode
}

// Account is a predeployed genesis account.
type Account struct {
	Code    []byte
	Balance *big.Int
	Nonce   uint64
	Storage storage.Storage
}

// Allocation maps addresses to predeployed accounts.
type Allocation map[common.Address]Account

// Merge adds other's accounts. Nothing is added when an address is taken.
func (a Allocation) Merge(other Allocation) error {
	for addr := range other {
		if _, exists := a[addr]; exists {
			return fmt.Errorf("%w: %s", ErrAddressConflict, addr.Hex())
		}
	}
	for addr, acc := range other {
		a[addr] = acc
	}
	return nil
}

// GenerateAllocation places gen's code and generated storage at address.
func GenerateAllocation(gen Generator, address common.Address, params Params) (Allocation, error) {
	s, err := gen.GenerateStorage(params)
	if err != nil {
		return nil, fmt.Errorf("failed to generate %s storage: %w", gen.Name(), err)
	}
	return Allocation{
		address: {
			Code:    gen.Code(),
			Balance: big.NewInt(0),
			Storage: s,
		},
	}, nil
}
