package storage

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// SlotFromUint64 returns the fixed slot with the given position.
func SlotFromUint64(n uint64) common.Hash {
	return common.Hash(uint256.NewInt(n).Bytes32())
}

// AddressKey left-pads an address to a 32-byte mapping key.
func AddressKey(addr common.Address) common.Hash {
	return common.BytesToHash(addr.Bytes())
}

// MappingSlot calculates the storage slot of mapping[key] for a mapping
// declared at base: keccak256(key . base).
func MappingSlot(base, key common.Hash) common.Hash {
	data := make([]byte, 64)
	copy(data[:32], key[:])
	copy(data[32:], base[:])
	return crypto.Keccak256Hash(data)
}

// NestedMappingSlot walks mapping[k0][k1]...; every level hashes the key
// with the slot derived by the previous level.
func NestedMappingSlot(base common.Hash, keys ...common.Hash) common.Hash {
	slot := base
	for _, key := range keys {
		slot = MappingSlot(slot, key)
	}
	return slot
}

// ArraySlot calculates the slot of element index of a dynamic array (or the
// index-th data word of a long string) whose length lives at base.
func ArraySlot(base common.Hash, index uint64) common.Hash {
	return OffsetSlot(crypto.Keccak256Hash(base[:]), index)
}

// OffsetSlot adds n to slot modulo 2^256, as the EVM does for struct members
// and array elements.
func OffsetSlot(slot common.Hash, n uint64) common.Hash {
	v := new(uint256.Int).SetBytes32(slot[:])
	v.Add(v, uint256.NewInt(n))
	return common.Hash(v.Bytes32())
}

// NextSlot returns the first free slot after last when last is followed by a
// reserved gap of the given size.
func NextSlot(last common.Hash, gap uint64) common.Hash {
	return OffsetSlot(OffsetSlot(last, gap), 1)
}
