package storage

import (
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeUint256(t *testing.T) {
	word, err := EncodeUint256(big.NewInt(300))
	require.NoError(t, err)
	assert.Equal(t, "0x000000000000000000000000000000000000000000000000000000000000012c", word.Hex())

	max := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	word, err = EncodeUint256(max)
	require.NoError(t, err)
	assert.Equal(t, max, DecodeUint256(word))
}

func TestEncodeUint256_OutOfRange(t *testing.T) {
	tests := []struct {
		name  string
		value *big.Int
	}{
		{"nil", nil},
		{"negative", big.NewInt(-1)},
		{"2^256", new(big.Int).Lsh(big.NewInt(1), 256)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EncodeUint256(tt.value)
			require.Error(t, err)

			var encErr *EncodingError
			assert.True(t, errors.As(err, &encErr))
			assert.Equal(t, "uint256", encErr.Kind)
			assert.ErrorIs(t, err, ErrEncoding)
		})
	}
}

func TestUint256RoundTrip(t *testing.T) {
	values := []*big.Int{
		big.NewInt(0),
		big.NewInt(1),
		big.NewInt(300),
		new(big.Int).Lsh(big.NewInt(1), 128),
		new(big.Int).Lsh(big.NewInt(1), 255),
	}
	for _, v := range values {
		word, err := EncodeUint256(v)
		require.NoError(t, err)
		assert.Equal(t, 0, v.Cmp(DecodeUint256(word)), "value %s", v)
	}
}

func TestEncodeAddress(t *testing.T) {
	addr := common.HexToAddress("0x2222222222222222222222222222222222222222")
	word := EncodeAddress(addr)

	assert.Equal(t, "0x0000000000000000000000002222222222222222222222222222222222222222", word.Hex())

	decoded, err := DecodeAddress(word)
	require.NoError(t, err)
	assert.Equal(t, addr, decoded)
}

func TestDecodeAddress_DirtyWord(t *testing.T) {
	_, err := DecodeAddress(common.HexToHash("0x0100000000000000000000002222222222222222222222222222222222222222"))
	assert.ErrorIs(t, err, ErrEncoding)
}

func TestParseAddress(t *testing.T) {
	addr, err := ParseAddress("0x1111111111111111111111111111111111111111")
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0x1111111111111111111111111111111111111111"), addr)

	addr, err = ParseAddress("2222222222222222222222222222222222222222")
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0x2222222222222222222222222222222222222222"), addr)

	for _, bad := range []string{"", "0x1234", "0x11111111111111111111111111111111111111111111", "0xzz11111111111111111111111111111111111111"} {
		_, err := ParseAddress(bad)
		assert.ErrorIs(t, err, ErrEncoding, "input %q", bad)
	}
}

func TestEncodeBool(t *testing.T) {
	assert.Equal(t, common.HexToHash("0x01"), EncodeBool(true))
	assert.Equal(t, common.Hash{}, EncodeBool(false))
	assert.True(t, DecodeBool(EncodeBool(true)))
	assert.False(t, DecodeBool(EncodeBool(false)))
}

func TestEncodeString_Short(t *testing.T) {
	slot := SlotFromUint64(204)

	writes, err := EncodeString(slot, "mainnet")
	require.NoError(t, err)
	require.Len(t, writes, 1)

	assert.Equal(t, slot, writes[0].Slot)
	assert.Equal(t, "0x6d61696e6e65740000000000000000000000000000000000000000000000000e", writes[0].Value.Hex())
}

func TestEncodeString_Empty(t *testing.T) {
	writes, err := EncodeString(SlotFromUint64(1), "")
	require.NoError(t, err)
	require.Len(t, writes, 1)
	assert.Equal(t, common.Hash{}, writes[0].Value)
}

func TestEncodeString_Long(t *testing.T) {
	slot := SlotFromUint64(3)
	value := strings.Repeat("a", 32) + "bc"

	writes, err := EncodeString(slot, value)
	require.NoError(t, err)
	require.Len(t, writes, 3)

	assert.Equal(t, slot, writes[0].Slot)
	assert.Equal(t, EncodeUint64(2*34+1), writes[0].Value)

	assert.Equal(t, ArraySlot(slot, 0), writes[1].Slot)
	assert.Equal(t, common.BytesToHash([]byte(strings.Repeat("a", 32))), writes[1].Value)

	assert.Equal(t, ArraySlot(slot, 1), writes[2].Slot)
	assert.Equal(t, common.RightPadBytes([]byte("bc"), 32), writes[2].Value.Bytes())
}

func TestEncodeString_TooLong(t *testing.T) {
	_, err := EncodeString(SlotFromUint64(0), strings.Repeat("x", MaxStringLength+1))
	require.Error(t, err)

	var encErr *EncodingError
	require.True(t, errors.As(err, &encErr))
	assert.Equal(t, "string", encErr.Kind)
}

func TestEncodeString_InvalidUTF8(t *testing.T) {
	_, err := EncodeString(SlotFromUint64(0), string([]byte{0xff, 0xfe}))
	assert.ErrorIs(t, err, ErrEncoding)
}

func TestStringRoundTrip(t *testing.T) {
	lengths := []int{0, 1, 7, 30, 31, 32, 33, 63, 64, 65, 1000}

	for _, n := range lengths {
		s := New()
		slot := SlotFromUint64(uint64(n))
		value := strings.Repeat("é", n/2) + strings.Repeat("z", n%2)

		require.NoError(t, s.WriteString(slot, value))

		decoded, err := DecodeString(s, slot)
		require.NoError(t, err)
		assert.Equal(t, value, decoded, "length %d", n)
	}
}
