package genesis

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/streaming-dev/IMA/pkg/addresses"
	"github.com/streaming-dev/IMA/pkg/artifact"
	"github.com/streaming-dev/IMA/pkg/config"
	"github.com/streaming-dev/IMA/pkg/contracts"
	"github.com/streaming-dev/IMA/pkg/state"
	"github.com/streaming-dev/IMA/pkg/storage"
)

// Artifact names looked up in the artifacts directory.
const (
	CommunityLockerArtifact  = "CommunityLocker"
	UpgradeableProxyArtifact = "TransparentUpgradeableProxy"
	ProxyAdminArtifact       = "ProxyAdmin"
)

// Artifacts are the compiled contracts the builder places in genesis.
// Proxy artifacts are only needed for upgradeable deployments.
type Artifacts struct {
	CommunityLocker  *artifact.Artifact
	UpgradeableProxy *artifact.Artifact
	ProxyAdmin       *artifact.Artifact
}

// LoadArtifacts reads the artifacts a configuration needs from its
// artifacts directory.
func LoadArtifacts(cfg *config.Config) (*Artifacts, error) {
	arts := &Artifacts{}
	var err error

	if arts.CommunityLocker, err = artifact.LoadDir(cfg.ArtifactsDir, CommunityLockerArtifact); err != nil {
		return nil, err
	}
	if !cfg.IsUpgradeable() {
		return arts, nil
	}
	if arts.UpgradeableProxy, err = artifact.LoadDir(cfg.ArtifactsDir, UpgradeableProxyArtifact); err != nil {
		return nil, err
	}
	if arts.ProxyAdmin, err = artifact.LoadDir(cfg.ArtifactsDir, ProxyAdminArtifact); err != nil {
		return nil, err
	}
	return arts, nil
}

// Builder turns a configuration into predeployed genesis state.
type Builder struct {
	cfg   *config.Config
	arts  *Artifacts
	table addresses.Table
	sugar *zap.SugaredLogger
}

// NewBuilder creates a builder. A nil logger disables logging; nil artifacts
// produce accounts without code.
func NewBuilder(cfg *config.Config, arts *Artifacts, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	if arts == nil {
		arts = &Artifacts{}
	}
	return &Builder{
		cfg:   cfg,
		arts:  arts,
		table: cfg.AddressTable(),
		sugar: logger.Sugar(),
	}
}

// CommunityLocker returns the CommunityLocker generator.
func (b *Builder) CommunityLocker() *contracts.CommunityLocker {
	return contracts.NewCommunityLocker(b.arts.CommunityLocker, b.table)
}

// CommunityLockerParams resolves the CommunityLocker inputs.
func (b *Builder) CommunityLockerParams() (contracts.Params, error) {
	deployer, err := ResolveDeployer(b.cfg)
	if err != nil {
		return nil, err
	}
	params := contracts.Params{
		contracts.ParamDeployerAddress: deployer,
		contracts.ParamChainName:       b.cfg.SchainName,
	}
	if b.cfg.CommunityPoolAddress != nil {
		params[contracts.ParamCommunityPoolAddress] = *b.cfg.CommunityPoolAddress
	}
	if b.cfg.TimeLimitPerMessage != 0 {
		params[contracts.ParamTimeLimitPerMessage] = b.cfg.TimeLimitPerMessage
	}
	return params, nil
}

// StorageJob returns the CommunityLocker storage generation as a batch job.
func (b *Builder) StorageJob() (Job, error) {
	params, err := b.CommunityLockerParams()
	if err != nil {
		return Job{}, err
	}
	return Job{Generator: b.CommunityLocker(), Params: params}, nil
}

// Storage generates the CommunityLocker storage image alone.
func (b *Builder) Storage() (storage.Storage, error) {
	job, err := b.StorageJob()
	if err != nil {
		return nil, err
	}
	s, err := job.Generator.GenerateStorage(job.Params)
	if err != nil {
		return nil, fmt.Errorf("failed to generate %s storage: %w", contracts.CommunityLockerName, err)
	}
	b.sugar.Debugw("generated storage", "contract", contracts.CommunityLockerName, "slots", len(s))
	return s, nil
}

// Allocation generates every configured predeployed account into a fresh
// state image.
func (b *Builder) Allocation() (*state.Allocation, error) {
	image := state.NewAllocation()
	if err := b.ApplyTo(image); err != nil {
		return nil, err
	}
	return image, nil
}

// ApplyTo generates every configured predeployed account and writes it into
// image, which may already hold accounts. Nothing is written on failure.
func (b *Builder) ApplyTo(image *state.Allocation) error {
	params, err := b.CommunityLockerParams()
	if err != nil {
		return err
	}

	lockerAddress, ok := b.table.Lookup(addresses.CommunityLocker)
	if !ok {
		return &contracts.MissingParameterError{Name: addresses.CommunityLocker}
	}

	var alloc contracts.Allocation
	if b.cfg.IsUpgradeable() {
		alloc, err = b.upgradeableAllocation(lockerAddress, params)
	} else {
		alloc, err = contracts.GenerateAllocation(b.CommunityLocker(), lockerAddress, params)
	}
	if err != nil {
		return err
	}

	if err := image.Apply(alloc); err != nil {
		return fmt.Errorf("failed to apply allocation: %w", err)
	}

	for _, addr := range image.Addresses() {
		if _, generated := alloc[addr]; !generated {
			continue
		}
		root, err := image.StorageRoot(addr)
		if err != nil {
			return fmt.Errorf("failed to hash storage of %s: %w", addr.Hex(), err)
		}
		b.sugar.Infow("predeployed account",
			"address", addr.Hex(),
			"codeSize", len(image.GetCode(addr)),
			"slots", len(image.Storage(addr)),
			"storageRoot", root.Hex(),
		)
	}
	return nil
}

func (b *Builder) upgradeableAllocation(proxyAddress common.Address, params contracts.Params) (contracts.Allocation, error) {
	adminAddress, ok := b.table.Lookup(addresses.ProxyAdmin)
	if !ok {
		return nil, &contracts.MissingParameterError{Name: addresses.ProxyAdmin}
	}

	owner, err := params.Address(contracts.ParamDeployerAddress)
	if err != nil {
		return nil, err
	}
	if b.cfg.Upgradeable.ProxyAdminOwner != nil {
		owner = *b.cfg.Upgradeable.ProxyAdminOwner
	}

	alloc, err := contracts.GenerateUpgradeableAllocation(
		b.CommunityLocker(),
		contracts.NewUpgradeableProxy(b.arts.UpgradeableProxy),
		contracts.UpgradeableDeployment{
			ProxyAddress:          proxyAddress,
			ImplementationAddress: b.cfg.Upgradeable.ImplementationAddress,
			AdminAddress:          adminAddress,
		},
		params,
	)
	if err != nil {
		return nil, err
	}

	adminAlloc, err := contracts.GenerateAllocation(
		contracts.NewProxyAdmin(b.arts.ProxyAdmin),
		adminAddress,
		contracts.Params{contracts.ParamOwnerAddress: owner},
	)
	if err != nil {
		return nil, err
	}
	if err := alloc.Merge(adminAlloc); err != nil {
		return nil, err
	}
	return alloc, nil
}
