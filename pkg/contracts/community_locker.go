package contracts

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/streaming-dev/IMA/pkg/access"
	"github.com/streaming-dev/IMA/pkg/addresses"
	"github.com/streaming-dev/IMA/pkg/artifact"
	"github.com/streaming-dev/IMA/pkg/layout"
	"github.com/streaming-dev/IMA/pkg/storage"
)

// CommunityLocker parameter names.
const (
	ParamDeployerAddress      = "deployer_address"
	ParamChainName            = "chain_name"
	ParamCommunityPoolAddress = "community_pool_address"
	ParamTimeLimitPerMessage  = "time_limit_per_message"
)

const (
	CommunityLockerName = "CommunityLocker"

	// DefaultTimeLimitSec is the minimum delay between two messages of one
	// user, in seconds.
	DefaultTimeLimitSec = 5 * 60
)

// CommunityLockerLayout is the storage layout of CommunityLocker.
var CommunityLockerLayout = layout.Extend(CommunityLockerName, layout.AccessControlEnumerableUpgradeable).
	Field("messageProxy").
	Field("tokenManagerLinker").
	Field("communityPool").
	Field("schainHash").
	Field("timeLimitPerMessage").
	Field("_unfrozenUsers").
	Field("_lastMessageTimeStamp").
	MustBuild()

var (
	CommunityLockerInitializedSlot         = CommunityLockerLayout.MustSlot(layout.FieldInitialized)
	CommunityLockerMessageProxySlot        = CommunityLockerLayout.MustSlot("messageProxy")
	CommunityLockerTokenManagerLinkerSlot  = CommunityLockerLayout.MustSlot("tokenManagerLinker")
	CommunityLockerCommunityPoolSlot       = CommunityLockerLayout.MustSlot("communityPool")
	CommunityLockerSchainHashSlot          = CommunityLockerLayout.MustSlot("schainHash")
	CommunityLockerTimeLimitPerMessageSlot = CommunityLockerLayout.MustSlot("timeLimitPerMessage")

	CommunityLockerRoles = access.RolesSlots{
		Roles:       CommunityLockerLayout.MustSlot(layout.FieldRoles),
		RoleMembers: CommunityLockerLayout.MustSlot(layout.FieldRoleMembers),
	}
)

// CommunityLockerParams is the typed form of the CommunityLocker inputs.
type CommunityLockerParams struct {
	DeployerAddress      common.Address
	ChainName            string
	CommunityPoolAddress common.Address
}

// Params converts p to generator parameters.
func (p CommunityLockerParams) Params() Params {
	return Params{
		ParamDeployerAddress:      p.DeployerAddress,
		ParamChainName:            p.ChainName,
		ParamCommunityPoolAddress: p.CommunityPoolAddress,
	}
}

// CommunityLocker generates the storage of an initialized CommunityLocker.
type CommunityLocker struct {
	Contract
	addresses addresses.Table
}

// NewCommunityLocker creates a generator reading the message proxy and token
// manager linker addresses from table.
func NewCommunityLocker(art *artifact.Artifact, table addresses.Table) *CommunityLocker {
	return &CommunityLocker{
		Contract:  NewContract(art),
		addresses: table,
	}
}

// Name returns the contract name.
func (g *CommunityLocker) Name() string {
	if name := g.Contract.Name(); name != "" {
		return name
	}
	return CommunityLockerName
}

type communityLockerInputs struct {
	deployer           common.Address
	chainName          string
	communityPool      common.Address
	timeLimit          *big.Int
	messageProxy       common.Address
	tokenManagerLinker common.Address
}

func (g *CommunityLocker) resolve(params Params) (*communityLockerInputs, error) {
	in := &communityLockerInputs{}
	var err error

	if in.deployer, err = params.Address(ParamDeployerAddress); err != nil {
		return nil, err
	}
	if in.chainName, err = params.String(ParamChainName); err != nil {
		return nil, err
	}
	if in.communityPool, err = params.Address(ParamCommunityPoolAddress); err != nil {
		return nil, err
	}
	if in.timeLimit, err = params.UintOr(ParamTimeLimitPerMessage, DefaultTimeLimitSec); err != nil {
		return nil, err
	}

	var ok bool
	if in.messageProxy, ok = g.addresses.Lookup(addresses.MessageProxy); !ok {
		return nil, &MissingParameterError{Name: addresses.MessageProxy}
	}
	if in.tokenManagerLinker, ok = g.addresses.Lookup(addresses.TokenManagerLinker); !ok {
		return nil, &MissingParameterError{Name: addresses.TokenManagerLinker}
	}
	return in, nil
}

// GenerateStorage returns the storage CommunityLocker holds after
// initialize(): admin role granted to the deployer, links to the message
// proxy, token manager linker and community pool, the schain name and the
// default message time limit.
func (g *CommunityLocker) GenerateStorage(params Params) (storage.Storage, error) {
	in, err := g.resolve(params)
	if err != nil {
		return nil, err
	}

	s := storage.New()
	if err := s.WriteUint64(CommunityLockerInitializedSlot, 1); err != nil {
		return nil, err
	}
	if err := access.GrantRole(s, CommunityLockerRoles, access.DefaultAdminRole, []common.Address{in.deployer}); err != nil {
		return nil, err
	}
	if err := s.WriteAddress(CommunityLockerMessageProxySlot, in.messageProxy); err != nil {
		return nil, err
	}
	if err := s.WriteAddress(CommunityLockerTokenManagerLinkerSlot, in.tokenManagerLinker); err != nil {
		return nil, err
	}
	if err := s.WriteAddress(CommunityLockerCommunityPoolSlot, in.communityPool); err != nil {
		return nil, err
	}
	if err := s.WriteString(CommunityLockerSchainHashSlot, in.chainName); err != nil {
		return nil, err
	}
	if err := s.WriteUint256(CommunityLockerTimeLimitPerMessageSlot, in.timeLimit); err != nil {
		return nil, err
	}
	return s, nil
}
