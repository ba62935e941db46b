package storage

import (
	"math/big"
	"unicode/utf8"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// MaxStringLength bounds the byte length of strings written to genesis
// storage. A longer value is rejected as an encoding error.
const MaxStringLength = 1 << 20

// maxShortStringLength is the longest string packed into its own slot.
const maxShortStringLength = 31

// Write is a single slot assignment.
type Write struct {
	Slot  common.Hash
	Value common.Hash
}

// EncodeUint256 encodes v as a 32-byte big-endian word.
func EncodeUint256(v *big.Int) (common.Hash, error) {
	if v == nil {
		return common.Hash{}, encodingErrorf("uint256", "nil value")
	}
	if v.Sign() < 0 {
		return common.Hash{}, encodingErrorf("uint256", "negative value %s", v)
	}
	u, overflow := uint256.FromBig(v)
	if overflow {
		return common.Hash{}, encodingErrorf("uint256", "value exceeds 256 bits")
	}
	return common.Hash(u.Bytes32()), nil
}

// EncodeUint64 encodes n as a 32-byte big-endian word.
func EncodeUint64(n uint64) common.Hash {
	return SlotFromUint64(n)
}

// EncodeAddress left-pads addr to a full word.
func EncodeAddress(addr common.Address) common.Hash {
	return common.BytesToHash(addr.Bytes())
}

// EncodeBool sets only the lowest bit for true.
func EncodeBool(b bool) common.Hash {
	if b {
		return EncodeUint64(1)
	}
	return common.Hash{}
}

// ParseAddress parses a 20-byte hex address, with or without 0x prefix.
func ParseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, encodingErrorf("address", "%q is not a 20-byte hex address", s)
	}
	return common.HexToAddress(s), nil
}

// EncodeString lays s out the way Solidity stores a string state variable
// at slot. Strings up to 31 bytes share the slot with 2*len in the lowest
// byte; longer strings store 2*len+1 at slot and the data at keccak256(slot)
// onwards, the last word right-padded with zeros.
func EncodeString(slot common.Hash, s string) ([]Write, error) {
	if !utf8.ValidString(s) {
		return nil, encodingErrorf("string", "value is not valid UTF-8")
	}
	data := []byte(s)
	n := len(data)
	if n > MaxStringLength {
		return nil, encodingErrorf("string", "length %d exceeds %d bytes", n, MaxStringLength)
	}

	if n <= maxShortStringLength {
		var word common.Hash
		copy(word[:], data)
		word[31] = byte(2 * n)
		return []Write{{Slot: slot, Value: word}}, nil
	}

	words := (n + 31) / 32
	writes := make([]Write, 0, words+1)
	writes = append(writes, Write{Slot: slot, Value: EncodeUint64(uint64(2*n + 1))})
	for i := 0; i < words; i++ {
		var word common.Hash
		copy(word[:], data[i*32:])
		writes = append(writes, Write{Slot: ArraySlot(slot, uint64(i)), Value: word})
	}
	return writes, nil
}

// Reader reads single storage words.
type Reader interface {
	Get(slot common.Hash) common.Hash
}

// DecodeUint256 returns the integer held by a word.
func DecodeUint256(word common.Hash) *big.Int {
	return new(big.Int).SetBytes(word[:])
}

// DecodeAddress returns the address held by a word. Non-zero padding bytes
// mean the word does not hold an address.
func DecodeAddress(word common.Hash) (common.Address, error) {
	for _, b := range word[:common.HashLength-common.AddressLength] {
		if b != 0 {
			return common.Address{}, encodingErrorf("address", "word %s has dirty high-order bytes", word.Hex())
		}
	}
	return common.BytesToAddress(word[common.HashLength-common.AddressLength:]), nil
}

// DecodeBool reports whether the word holds true.
func DecodeBool(word common.Hash) bool {
	return word == EncodeBool(true)
}

// DecodeString reads back a string written by EncodeString.
func DecodeString(r Reader, slot common.Hash) (string, error) {
	head := r.Get(slot)
	if head[31]&1 == 0 {
		n := int(head[31] / 2)
		if n > maxShortStringLength {
			return "", encodingErrorf("string", "short string length %d out of range", n)
		}
		return string(head[:n]), nil
	}

	encoded := DecodeUint256(head)
	if !encoded.IsUint64() || encoded.Uint64() > 2*MaxStringLength+1 {
		return "", encodingErrorf("string", "long string length word %s out of range", head.Hex())
	}
	n := int((encoded.Uint64() - 1) / 2)
	data := make([]byte, 0, n+31)
	for i := 0; len(data) < n; i++ {
		word := r.Get(ArraySlot(slot, uint64(i)))
		data = append(data, word[:]...)
	}
	return string(data[:n]), nil
}
