// Package storage encodes values into EVM contract storage words and keeps
// the resulting slot image of one contract.
package storage

import (
	"bytes"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/common"
)

// Storage is the storage image of a single contract.
type Storage map[common.Hash]common.Hash

// New creates an empty storage image.
func New() Storage {
	return make(Storage)
}

// Get returns the word at slot, zero when unset.
func (s Storage) Get(slot common.Hash) common.Hash {
	return s[slot]
}

// Set writes value at slot. Rewriting the same value is allowed; a
// different value yields a *SlotCollisionError and leaves the slot intact.
func (s Storage) Set(slot, value common.Hash) error {
	if existing, ok := s[slot]; ok && existing != value {
		return &SlotCollisionError{Slot: slot, Existing: existing, Value: value}
	}
	s[slot] = value
	return nil
}

// WriteUint256 writes an unsigned 256-bit integer.
func (s Storage) WriteUint256(slot common.Hash, v *big.Int) error {
	word, err := EncodeUint256(v)
	if err != nil {
		return err
	}
	return s.Set(slot, word)
}

// WriteUint64 writes an unsigned integer.
func (s Storage) WriteUint64(slot common.Hash, n uint64) error {
	return s.Set(slot, EncodeUint64(n))
}

// WriteAddress writes an address.
func (s Storage) WriteAddress(slot common.Hash, addr common.Address) error {
	return s.Set(slot, EncodeAddress(addr))
}

// WriteBool writes a boolean.
func (s Storage) WriteBool(slot common.Hash, b bool) error {
	return s.Set(slot, EncodeBool(b))
}

// WriteBytes32 writes a raw word.
func (s Storage) WriteBytes32(slot common.Hash, word common.Hash) error {
	return s.Set(slot, word)
}

// WriteString writes a string using the short/long string layout.
func (s Storage) WriteString(slot common.Hash, str string) error {
	writes, err := EncodeString(slot, str)
	if err != nil {
		return err
	}
	return s.apply(writes)
}

// Merge copies every slot of other into s. Nothing is written when any slot
// collides.
func (s Storage) Merge(other Storage) error {
	writes := make([]Write, 0, len(other))
	for _, slot := range other.Slots() {
		writes = append(writes, Write{Slot: slot, Value: other[slot]})
	}
	return s.apply(writes)
}

func (s Storage) apply(writes []Write) error {
	for _, w := range writes {
		if existing, ok := s[w.Slot]; ok && existing != w.Value {
			return &SlotCollisionError{Slot: w.Slot, Existing: existing, Value: w.Value}
		}
	}
	for _, w := range writes {
		s[w.Slot] = w.Value
	}
	return nil
}

// Slots returns the written slots in ascending order.
func (s Storage) Slots() []common.Hash {
	slots := make([]common.Hash, 0, len(s))
	for slot := range s {
		slots = append(slots, slot)
	}
	sort.Slice(slots, func(i, j int) bool {
		return bytes.Compare(slots[i][:], slots[j][:]) < 0
	})
	return slots
}

// Copy returns an independent copy.
func (s Storage) Copy() Storage {
	copied := make(Storage, len(s))
	for k, v := range s {
		copied[k] = v
	}
	return copied
}

// Hex renders the image with 0x-prefixed 64-digit lowercase keys and values.
func (s Storage) Hex() map[string]string {
	out := make(map[string]string, len(s))
	for slot, value := range s {
		out[slot.Hex()] = value.Hex()
	}
	return out
}
