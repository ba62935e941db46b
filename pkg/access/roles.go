// Package access writes the genesis storage of OpenZeppelin
// AccessControlEnumerableUpgradeable role grants.
package access

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/streaming-dev/IMA/pkg/storage"
)

// DefaultAdminRole is the all-zero role id.
var DefaultAdminRole = common.Hash{}

// ErrDuplicateMember is returned when one grant lists an account twice.
var ErrDuplicateMember = errors.New("duplicate role member")

// RoleID returns the id of a named role, keccak256(name), matching
// `bytes32 public constant NAME = keccak256("NAME")`.
func RoleID(name string) common.Hash {
	return crypto.Keccak256Hash([]byte(name))
}

// RolesSlots holds the base slots of the two role mappings:
//
//	mapping(bytes32 => RoleData) _roles;                           // RoleData{members, adminRole}
//	mapping(bytes32 => EnumerableSet.AddressSet) _roleMembers;     // Set{_values, _indexes}
type RolesSlots struct {
	Roles       common.Hash
	RoleMembers common.Hash
}

// membersSlot is _roles[role].members.
func (s RolesSlots) membersSlot(role common.Hash) common.Hash {
	return storage.MappingSlot(s.Roles, role)
}

// valuesSlot is _roleMembers[role]._values; it holds the member count.
func (s RolesSlots) valuesSlot(role common.Hash) common.Hash {
	return storage.MappingSlot(s.RoleMembers, role)
}

// indexesSlot is _roleMembers[role]._indexes.
func (s RolesSlots) indexesSlot(role common.Hash) common.Hash {
	return storage.OffsetSlot(s.valuesSlot(role), 1)
}

// MemberSlot returns the slot of _roles[role].members[account].
func (s RolesSlots) MemberSlot(role common.Hash, account common.Address) common.Hash {
	return storage.MappingSlot(s.membersSlot(role), storage.AddressKey(account))
}

// CountSlot returns the slot holding the number of members of role.
func (s RolesSlots) CountSlot(role common.Hash) common.Hash {
	return s.valuesSlot(role)
}

// MemberAtSlot returns the slot of the index-th enumerable member of role.
func (s RolesSlots) MemberAtSlot(role common.Hash, index uint64) common.Hash {
	return storage.ArraySlot(s.valuesSlot(role), index)
}

// IndexSlot returns the slot of the 1-based position of account in the
// enumerable member set of role.
func (s RolesSlots) IndexSlot(role common.Hash, account common.Address) common.Hash {
	return storage.MappingSlot(s.indexesSlot(role), storage.AddressKey(account))
}

// GrantRole grants role to accounts on a contract with no members yet.
// Enumeration order is the order of accounts. The grant is written to s as a
// whole or not at all.
func GrantRole(s storage.Storage, slots RolesSlots, role common.Hash, accounts []common.Address) error {
	seen := make(map[common.Address]struct{}, len(accounts))
	for _, account := range accounts {
		if _, dup := seen[account]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateMember, account.Hex())
		}
		seen[account] = struct{}{}
	}

	grant := storage.New()
	if err := grant.WriteUint64(slots.CountSlot(role), uint64(len(accounts))); err != nil {
		return err
	}
	for i, account := range accounts {
		if err := grant.WriteBool(slots.MemberSlot(role, account), true); err != nil {
			return err
		}
		if err := grant.WriteAddress(slots.MemberAtSlot(role, uint64(i)), account); err != nil {
			return err
		}
		if err := grant.WriteUint64(slots.IndexSlot(role, account), uint64(i+1)); err != nil {
			return err
		}
	}
	return s.Merge(grant)
}

// HasRole reads _roles[role].members[account].
func HasRole(r storage.Reader, slots RolesSlots, role common.Hash, account common.Address) bool {
	return storage.DecodeBool(r.Get(slots.MemberSlot(role, account)))
}

// RoleMemberCount reads the number of members of role.
func RoleMemberCount(r storage.Reader, slots RolesSlots, role common.Hash) uint64 {
	count := storage.DecodeUint256(r.Get(slots.CountSlot(role)))
	if !count.IsUint64() {
		return 0
	}
	return count.Uint64()
}

// RoleMember reads the index-th member of role.
func RoleMember(r storage.Reader, slots RolesSlots, role common.Hash, index uint64) (common.Address, error) {
	return storage.DecodeAddress(r.Get(slots.MemberAtSlot(role, index)))
}

// RoleMembers reads every member of role in enumeration order.
func RoleMembers(r storage.Reader, slots RolesSlots, role common.Hash) ([]common.Address, error) {
	count := RoleMemberCount(r, slots, role)
	members := make([]common.Address, 0, count)
	for i := uint64(0); i < count; i++ {
		member, err := RoleMember(r, slots, role, i)
		if err != nil {
			return nil, err
		}
		members = append(members, member)
	}
	return members, nil
}
