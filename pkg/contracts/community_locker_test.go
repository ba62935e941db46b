package contracts

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streaming-dev/IMA/pkg/access"
	"github.com/streaming-dev/IMA/pkg/addresses"
	"github.com/streaming-dev/IMA/pkg/artifact"
	"github.com/streaming-dev/IMA/pkg/storage"
)

var (
	testDeployer      = common.HexToAddress("0x1111111111111111111111111111111111111111")
	testCommunityPool = common.HexToAddress("0x2222222222222222222222222222222222222222")
)

func testParams() Params {
	return CommunityLockerParams{
		DeployerAddress:      testDeployer,
		ChainName:            "mainnet",
		CommunityPoolAddress: testCommunityPool,
	}.Params()
}

func TestCommunityLockerSlots(t *testing.T) {
	assert.Equal(t, storage.SlotFromUint64(0), CommunityLockerInitializedSlot)
	assert.Equal(t, storage.SlotFromUint64(101), CommunityLockerRoles.Roles)
	assert.Equal(t, storage.SlotFromUint64(151), CommunityLockerRoles.RoleMembers)
	assert.Equal(t, storage.SlotFromUint64(201), CommunityLockerMessageProxySlot)
	assert.Equal(t, storage.SlotFromUint64(202), CommunityLockerTokenManagerLinkerSlot)
	assert.Equal(t, storage.SlotFromUint64(203), CommunityLockerCommunityPoolSlot)
	assert.Equal(t, storage.SlotFromUint64(204), CommunityLockerSchainHashSlot)
	assert.Equal(t, storage.SlotFromUint64(205), CommunityLockerTimeLimitPerMessageSlot)

	last, ok := CommunityLockerLayout.Position("_lastMessageTimeStamp")
	require.True(t, ok)
	assert.Equal(t, uint64(207), last)
}

func TestCommunityLocker_GenerateStorage(t *testing.T) {
	gen := NewCommunityLocker(nil, addresses.Default())

	s, err := gen.GenerateStorage(testParams())
	require.NoError(t, err)

	hex := s.Hex()
	one := "0x0000000000000000000000000000000000000000000000000000000000000001"

	assert.Equal(t, one, hex["0x0000000000000000000000000000000000000000000000000000000000000000"])
	assert.Equal(t, one, hex[CommunityLockerRoles.MemberSlot(access.DefaultAdminRole, testDeployer).Hex()])
	assert.Equal(t, one, hex[CommunityLockerRoles.CountSlot(access.DefaultAdminRole).Hex()])
	assert.Equal(t, "0x0000000000000000000000001111111111111111111111111111111111111111",
		hex[CommunityLockerRoles.MemberAtSlot(access.DefaultAdminRole, 0).Hex()])
	assert.Equal(t, one, hex[CommunityLockerRoles.IndexSlot(access.DefaultAdminRole, testDeployer).Hex()])

	assert.Equal(t, "0x000000000000000000000000d2aaa00100000000000000000000000000000000",
		hex["0x00000000000000000000000000000000000000000000000000000000000000c9"])
	assert.Equal(t, "0x000000000000000000000000d2aaa00800000000000000000000000000000000",
		hex["0x00000000000000000000000000000000000000000000000000000000000000ca"])
	assert.Equal(t, "0x0000000000000000000000002222222222222222222222222222222222222222",
		hex["0x00000000000000000000000000000000000000000000000000000000000000cb"])
	assert.Equal(t, "0x6d61696e6e65740000000000000000000000000000000000000000000000000e",
		hex["0x00000000000000000000000000000000000000000000000000000000000000cc"])
	assert.Equal(t, "0x000000000000000000000000000000000000000000000000000000000000012c",
		hex["0x00000000000000000000000000000000000000000000000000000000000000cd"])

	assert.Len(t, hex, 10)
}

func TestCommunityLocker_Deterministic(t *testing.T) {
	gen := NewCommunityLocker(nil, addresses.Default())

	first, err := gen.GenerateStorage(testParams())
	require.NoError(t, err)
	second, err := gen.GenerateStorage(testParams())
	require.NoError(t, err)

	assert.Equal(t, first.Hex(), second.Hex())
}

func randomAddress(t *testing.T) common.Address {
	var addr common.Address
	_, err := rand.Read(addr[:])
	require.NoError(t, err)
	return addr
}

func TestCommunityLocker_KeysUniqueForRandomInputs(t *testing.T) {
	gen := NewCommunityLocker(nil, addresses.Default())

	for i := 0; i < 50; i++ {
		name := strings.Repeat("s", i*3)
		s, err := gen.GenerateStorage(CommunityLockerParams{
			DeployerAddress:      randomAddress(t),
			ChainName:            name,
			CommunityPoolAddress: randomAddress(t),
		}.Params())
		require.NoError(t, err)

		// every write landed on its own slot
		stringSlots := 1
		if len(name) > 31 {
			stringSlots += (len(name) + 31) / 32
		}
		assert.Len(t, s, 9+stringSlots, "chain name length %d", len(name))

		decoded, err := storage.DecodeString(s, CommunityLockerSchainHashSlot)
		require.NoError(t, err)
		assert.Equal(t, name, decoded)
	}
}

func TestCommunityLocker_EmptyChainName(t *testing.T) {
	gen := NewCommunityLocker(nil, addresses.Default())
	params := testParams()
	params[ParamChainName] = ""

	s, err := gen.GenerateStorage(params)
	require.NoError(t, err)
	assert.Equal(t, common.Hash{}, s.Get(CommunityLockerSchainHashSlot))
}

func TestCommunityLocker_ChainNameTooLong(t *testing.T) {
	gen := NewCommunityLocker(nil, addresses.Default())
	params := testParams()
	params[ParamChainName] = strings.Repeat("x", storage.MaxStringLength+1)

	s, err := gen.GenerateStorage(params)
	assert.Nil(t, s)

	var encErr *storage.EncodingError
	require.True(t, errors.As(err, &encErr))
	assert.Equal(t, "string", encErr.Kind)
}

func TestCommunityLocker_MissingParameters(t *testing.T) {
	gen := NewCommunityLocker(nil, addresses.Default())

	for _, name := range []string{ParamDeployerAddress, ParamChainName, ParamCommunityPoolAddress} {
		t.Run(name, func(t *testing.T) {
			params := testParams()
			delete(params, name)

			s, err := gen.GenerateStorage(params)
			assert.Nil(t, s)

			var missing *MissingParameterError
			require.True(t, errors.As(err, &missing))
			assert.Equal(t, name, missing.Name)
		})
	}
}

func TestCommunityLocker_MissingAddressTableEntry(t *testing.T) {
	for _, name := range []string{addresses.MessageProxy, addresses.TokenManagerLinker} {
		t.Run(name, func(t *testing.T) {
			table := addresses.Default()
			delete(table, name)

			_, err := NewCommunityLocker(nil, table).GenerateStorage(testParams())

			var missing *MissingParameterError
			require.True(t, errors.As(err, &missing))
			assert.Equal(t, name, missing.Name)
		})
	}
}

func TestCommunityLocker_TimeLimitOverride(t *testing.T) {
	gen := NewCommunityLocker(nil, addresses.Default())
	params := testParams()
	params[ParamTimeLimitPerMessage] = uint64(60)

	s, err := gen.GenerateStorage(params)
	require.NoError(t, err)
	assert.Equal(t, storage.EncodeUint64(60), s.Get(CommunityLockerTimeLimitPerMessageSlot))
}

func TestCommunityLocker_TimeLimitFullRange(t *testing.T) {
	gen := NewCommunityLocker(nil, addresses.Default())
	params := testParams()
	wide := new(big.Int).Lsh(big.NewInt(1), 64)
	params[ParamTimeLimitPerMessage] = wide

	s, err := gen.GenerateStorage(params)
	require.NoError(t, err)
	assert.Equal(t, wide, storage.DecodeUint256(s.Get(CommunityLockerTimeLimitPerMessageSlot)))
}

func TestCommunityLocker_TimeLimitNilUsesDefault(t *testing.T) {
	gen := NewCommunityLocker(nil, addresses.Default())
	params := testParams()
	params[ParamTimeLimitPerMessage] = nil

	s, err := gen.GenerateStorage(params)
	require.NoError(t, err)
	assert.Equal(t, storage.EncodeUint64(DefaultTimeLimitSec), s.Get(CommunityLockerTimeLimitPerMessageSlot))
}

func TestCommunityLocker_AddressOverride(t *testing.T) {
	override := common.HexToAddress("0x9999999999999999999999999999999999999999")
	table := addresses.Default().Merge(addresses.Table{addresses.MessageProxy: override})

	s, err := NewCommunityLocker(nil, table).GenerateStorage(testParams())
	require.NoError(t, err)
	assert.Equal(t, storage.EncodeAddress(override), s.Get(CommunityLockerMessageProxySlot))
}

func TestCommunityLocker_Artifact(t *testing.T) {
	art, err := artifact.New("CommunityLocker", []byte{0x60, 0x80}, "")
	require.NoError(t, err)

	gen := NewCommunityLocker(art, addresses.Default())
	assert.Equal(t, "CommunityLocker", gen.Name())
	assert.Equal(t, []byte{0x60, 0x80}, gen.Code())

	assert.Equal(t, CommunityLockerName, NewCommunityLocker(nil, addresses.Default()).Name())
	assert.Nil(t, NewCommunityLocker(nil, addresses.Default()).Code())
}

func TestGenerateAllocation(t *testing.T) {
	art, err := artifact.New("CommunityLocker", []byte{0x60, 0x80}, "")
	require.NoError(t, err)
	gen := NewCommunityLocker(art, addresses.Default())
	addr := addresses.Default()[addresses.CommunityLocker]

	alloc, err := GenerateAllocation(gen, addr, testParams())
	require.NoError(t, err)
	require.Len(t, alloc, 1)

	acc := alloc[addr]
	assert.Equal(t, []byte{0x60, 0x80}, acc.Code)
	assert.Equal(t, int64(0), acc.Balance.Int64())
	assert.Len(t, acc.Storage, 10)

	_, err = GenerateAllocation(gen, addr, Params{})
	assert.ErrorIs(t, err, ErrMissingParameter)
}

func TestAllocation_Merge(t *testing.T) {
	a := Allocation{testDeployer: {}}
	require.NoError(t, a.Merge(Allocation{testCommunityPool: {}}))
	assert.Len(t, a, 2)

	err := a.Merge(Allocation{common.HexToAddress("0x03"): {}, testDeployer: {}})
	assert.ErrorIs(t, err, ErrAddressConflict)
	assert.Len(t, a, 2)
}
