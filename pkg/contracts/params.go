package contracts

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/streaming-dev/IMA/pkg/storage"
)

// Params are the named initialization inputs of a generator.
type Params map[string]interface{}

// Address returns an address parameter given as common.Address or hex string.
func (p Params) Address(name string) (common.Address, error) {
	v, ok := p[name]
	if !ok || v == nil {
		return common.Address{}, &MissingParameterError{Name: name}
	}
	switch addr := v.(type) {
	case common.Address:
		return addr, nil
	case *common.Address:
		if addr == nil {
			return common.Address{}, &MissingParameterError{Name: name}
		}
		return *addr, nil
	case string:
		return storage.ParseAddress(addr)
	default:
		return common.Address{}, &storage.EncodingError{Kind: "address", Reason: name + " has unsupported type"}
	}
}

// String returns a string parameter. An empty string is a valid value.
func (p Params) String(name string) (string, error) {
	v, ok := p[name]
	if !ok || v == nil {
		return "", &MissingParameterError{Name: name}
	}
	s, ok := v.(string)
	if !ok {
		return "", &storage.EncodingError{Kind: "string", Reason: name + " has unsupported type"}
	}
	return s, nil
}

// Uint returns an unsigned integer parameter given as a Go integer, *big.Int
// or decimal/hex string.
func (p Params) Uint(name string) (*big.Int, error) {
	v, ok := p[name]
	if !ok || v == nil {
		return nil, &MissingParameterError{Name: name}
	}
	var n *big.Int
	switch x := v.(type) {
	case uint64:
		n = new(big.Int).SetUint64(x)
	case uint32:
		n = new(big.Int).SetUint64(uint64(x))
	case int:
		n = big.NewInt(int64(x))
	case int64:
		n = big.NewInt(x)
	case *big.Int:
		if x == nil {
			return nil, &MissingParameterError{Name: name}
		}
		n = new(big.Int).Set(x)
	case string:
		parsed, ok := math.ParseBig256(x)
		if !ok {
			return nil, &storage.EncodingError{Kind: "uint256", Reason: name + " is not a 256-bit integer"}
		}
		n = parsed
	default:
		return nil, &storage.EncodingError{Kind: "uint256", Reason: name + " has unsupported type"}
	}
	if _, err := storage.EncodeUint256(n); err != nil {
		return nil, err
	}
	return n, nil
}

// UintOr is Uint with a fallback for an absent or nil parameter.
func (p Params) UintOr(name string, fallback uint64) (*big.Int, error) {
	if v, ok := p[name]; !ok || v == nil {
		return new(big.Int).SetUint64(fallback), nil
	}
	return p.Uint(name)
}
