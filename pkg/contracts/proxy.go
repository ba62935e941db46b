package contracts

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"

	"github.com/streaming-dev/IMA/pkg/artifact"
	"github.com/streaming-dev/IMA/pkg/layout"
	"github.com/streaming-dev/IMA/pkg/storage"
)

// Proxy parameter names.
const (
	ParamImplementationAddress = "implementation_address"
	ParamAdminAddress          = "admin_address"
	ParamOwnerAddress          = "owner_address"
)

const (
	UpgradeableProxyName = "TransparentUpgradeableProxy"
	ProxyAdminName       = "ProxyAdmin"
)

// EIP-1967 proxy slots.
var (
	ImplementationSlot = eip1967Slot("eip1967.proxy.implementation")
	AdminSlot          = eip1967Slot("eip1967.proxy.admin")
)

// eip1967Slot is keccak256(label) - 1.
func eip1967Slot(label string) common.Hash {
	h := crypto.Keccak256Hash([]byte(label))
	v := new(uint256.Int).SetBytes32(h[:])
	v.Sub(v, uint256.NewInt(1))
	return common.Hash(v.Bytes32())
}

// UpgradeableProxy generates the storage of a transparent upgradeable proxy.
type UpgradeableProxy struct {
	Contract
}

// NewUpgradeableProxy creates a proxy generator.
func NewUpgradeableProxy(art *artifact.Artifact) *UpgradeableProxy {
	return &UpgradeableProxy{Contract: NewContract(art)}
}

// Name returns the contract name.
func (g *UpgradeableProxy) Name() string {
	if name := g.Contract.Name(); name != "" {
		return name
	}
	return UpgradeableProxyName
}

// GenerateStorage writes the implementation and admin slots.
func (g *UpgradeableProxy) GenerateStorage(params Params) (storage.Storage, error) {
	implementation, err := params.Address(ParamImplementationAddress)
	if err != nil {
		return nil, err
	}
	admin, err := params.Address(ParamAdminAddress)
	if err != nil {
		return nil, err
	}

	s := storage.New()
	if err := s.WriteAddress(ImplementationSlot, implementation); err != nil {
		return nil, err
	}
	if err := s.WriteAddress(AdminSlot, admin); err != nil {
		return nil, err
	}
	return s, nil
}

// ProxyAdminLayout is Ownable: the owner sits in slot 0.
var ProxyAdminLayout = layout.NewBuilder(ProxyAdminName).Field("_owner").MustBuild()

// ProxyAdmin generates the storage of the proxy admin contract.
type ProxyAdmin struct {
	Contract
}

// NewProxyAdmin creates a proxy admin generator.
func NewProxyAdmin(art *artifact.Artifact) *ProxyAdmin {
	return &ProxyAdmin{Contract: NewContract(art)}
}

// Name returns the contract name.
func (g *ProxyAdmin) Name() string {
	if name := g.Contract.Name(); name != "" {
		return name
	}
	return ProxyAdminName
}

// GenerateStorage writes the owner.
func (g *ProxyAdmin) GenerateStorage(params Params) (storage.Storage, error) {
	owner, err := params.Address(ParamOwnerAddress)
	if err != nil {
		return nil, err
	}
	s := storage.New()
	if err := s.WriteAddress(ProxyAdminLayout.MustSlot("_owner"), owner); err != nil {
		return nil, err
	}
	return s, nil
}

// UpgradeableDeployment places a contract behind a proxy.
type UpgradeableDeployment struct {
	ProxyAddress          common.Address
	ImplementationAddress common.Address
	AdminAddress          common.Address
}

// GenerateUpgradeableAllocation returns the proxy account, holding the proxy
// code together with gen's storage and the EIP-1967 slots, and the
// implementation account, holding gen's code and no storage.
func GenerateUpgradeableAllocation(gen Generator, proxy *UpgradeableProxy, d UpgradeableDeployment, params Params) (Allocation, error) {
	if d.ProxyAddress == d.ImplementationAddress {
		return nil, fmt.Errorf("%w: proxy and implementation share %s", ErrAddressConflict, d.ProxyAddress.Hex())
	}

	contractStorage, err := gen.GenerateStorage(params)
	if err != nil {
		return nil, fmt.Errorf("failed to generate %s storage: %w", gen.Name(), err)
	}
	proxyStorage, err := proxy.GenerateStorage(Params{
		ParamImplementationAddress: d.ImplementationAddress,
		ParamAdminAddress:          d.AdminAddress,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate %s storage: %w", proxy.Name(), err)
	}
	if err := contractStorage.Merge(proxyStorage); err != nil {
		return nil, fmt.Errorf("%s storage clashes with proxy slots: %w", gen.Name(), err)
	}

	return Allocation{
		d.ProxyAddress: {
			Code:    proxy.Code(),
			Balance: big.NewInt(0),
			Storage: contractStorage,
		},
		d.ImplementationAddress: {
			Code:    gen.Code(),
			Balance: big.NewInt(0),
			Storage: storage.New(),
		},
	}, nil
}
