// Package state holds the genesis state image that predeployed contracts are
// written into.
package state

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/ethereum/go-ethereum/trie"

	"github.com/streaming-dev/IMA/pkg/contracts"
	"github.com/streaming-dev/IMA/pkg/storage"
)

type account struct {
	balance *big.Int
	nonce   uint64
	code    []byte
	storage storage.Storage
}

func newAccount() *account {
	return &account{
		balance: big.NewInt(0),
		storage: storage.New(),
	}
}

// Allocation is an in-memory genesis state image.
type Allocation struct {
	mu       sync.RWMutex
	accounts map[common.Address]*account
}

// NewAllocation creates an empty state image.
func NewAllocation() *Allocation {
	return &Allocation{
		accounts: make(map[common.Address]*account),
	}
}

// GetBalance returns the balance of an account, zero when absent.
func (a *Allocation) GetBalance(addr common.Address) *big.Int {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if acc, ok := a.accounts[addr]; ok {
		return new(big.Int).Set(acc.balance)
	}
	return big.NewInt(0)
}

// GetNonce returns the nonce of an account.
func (a *Allocation) GetNonce(addr common.Address) uint64 {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if acc, ok := a.accounts[addr]; ok {
		return acc.nonce
	}
	return 0
}

// GetCode returns the code of an account.
func (a *Allocation) GetCode(addr common.Address) []byte {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if acc, ok := a.accounts[addr]; ok {
		return common.CopyBytes(acc.code)
	}
	return nil
}

// Storage returns a copy of an account's storage.
func (a *Allocation) Storage(addr common.Address) storage.Storage {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if acc, ok := a.accounts[addr]; ok {
		return acc.storage.Copy()
	}
	return storage.New()
}

// Apply writes predeployed accounts into the image. Code, balance and a
// non-zero nonce replace those of an existing account; storage is merged
// slot by slot with the collision rules of storage.Storage. Nothing is
// written if any account fails to merge.
func (a *Allocation) Apply(alloc contracts.Allocation) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	addrs := make([]common.Address, 0, len(alloc))
	for addr := range alloc {
		addrs = append(addrs, addr)
	}
	sortAddresses(addrs)

	for _, addr := range addrs {
		existing, ok := a.accounts[addr]
		if !ok {
			continue
		}
		if err := existing.storage.Copy().Merge(alloc[addr].Storage); err != nil {
			return fmt.Errorf("account %s: %w", addr.Hex(), err)
		}
	}

	for _, addr := range addrs {
		in := alloc[addr]
		acc, ok := a.accounts[addr]
		if !ok {
			acc = newAccount()
			a.accounts[addr] = acc
		}
		if in.Code != nil {
			acc.code = common.CopyBytes(in.Code)
		}
		if in.Balance != nil {
			acc.balance = new(big.Int).Set(in.Balance)
		}
		if in.Nonce != 0 {
			acc.nonce = in.Nonce
		}
		if err := acc.storage.Merge(in.Storage); err != nil {
			return fmt.Errorf("account %s: %w", addr.Hex(), err)
		}
	}
	return nil
}

// StorageRoot returns the Merkle-Patricia root of an account's storage.
func (a *Allocation) StorageRoot(addr common.Address) (common.Hash, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	acc, ok := a.accounts[addr]
	if !ok {
		return types.EmptyRootHash, nil
	}
	return storageRoot(acc.storage)
}

// storageRoot hashes the non-zero slots into a storage trie keyed by
// keccak256(slot) with RLP-encoded, left-trimmed values.
func storageRoot(s storage.Storage) (common.Hash, error) {
	type leaf struct {
		key   []byte
		value []byte
	}
	leaves := make([]leaf, 0, len(s))
	for slot, value := range s {
		if value == (common.Hash{}) {
			continue
		}
		enc, err := rlp.EncodeToBytes(common.TrimLeftZeroes(value[:]))
		if err != nil {
			return common.Hash{}, err
		}
		leaves = append(leaves, leaf{key: crypto.Keccak256(slot[:]), value: enc})
	}
	if len(leaves) == 0 {
		return types.EmptyRootHash, nil
	}
	sort.Slice(leaves, func(i, j int) bool {
		return bytes.Compare(leaves[i].key, leaves[j].key) < 0
	})

	hasher := trie.NewStackTrie(nil)
	for _, l := range leaves {
		if err := hasher.Update(l.key, l.value); err != nil {
			return common.Hash{}, err
		}
	}
	return hasher.Hash(), nil
}

// Addresses returns all account addresses in ascending order.
func (a *Allocation) Addresses() []common.Address {
	a.mu.RLock()
	defer a.mu.RUnlock()

	addrs := make([]common.Address, 0, len(a.accounts))
	for addr := range a.accounts {
		addrs = append(addrs, addr)
	}
	sortAddresses(addrs)
	return addrs
}

func sortAddresses(addrs []common.Address) {
	sort.Slice(addrs, func(i, j int) bool {
		return bytes.Compare(addrs[i][:], addrs[j][:]) < 0
	})
}

// AccountCount returns the number of accounts in the image.
func (a *Allocation) AccountCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.accounts)
}

// AccountDump is one account of a dump.
type AccountDump struct {
	Balance string            `json:"balance"`
	Nonce   uint64            `json:"nonce"`
	Code    string            `json:"code,omitempty"`
	Storage map[string]string `json:"storage,omitempty"`
}

// StateDump is the "accounts" section of a genesis config.
type StateDump struct {
	Accounts map[string]AccountDump `json:"accounts"`
}

// Dump exports the image. Zero-valued slots are left out, as the state trie
// does.
func (a *Allocation) Dump() *StateDump {
	a.mu.RLock()
	defer a.mu.RUnlock()

	dump := &StateDump{Accounts: make(map[string]AccountDump, len(a.accounts))}
	for addr, acc := range a.accounts {
		out := AccountDump{
			Balance: hexutil.EncodeBig(acc.balance),
			Nonce:   acc.nonce,
		}
		if len(acc.code) > 0 {
			out.Code = hexutil.Encode(acc.code)
		}
		for slot, value := range acc.storage {
			if value == (common.Hash{}) {
				continue
			}
			if out.Storage == nil {
				out.Storage = make(map[string]string)
			}
			out.Storage[slot.Hex()] = value.Hex()
		}
		dump.Accounts[addr.Hex()] = out
	}
	return dump
}

// Load adds the accounts of a dump to the image, replacing accounts with the
// same address. Nothing is loaded if any entry is malformed.
func (a *Allocation) Load(dump *StateDump) error {
	if dump == nil {
		return nil
	}

	loaded := make(map[common.Address]*account, len(dump.Accounts))
	for addrHex, in := range dump.Accounts {
		addr, err := storage.ParseAddress(addrHex)
		if err != nil {
			return err
		}

		acc := newAccount()
		acc.nonce = in.Nonce
		if in.Balance != "" {
			if acc.balance, err = hexutil.DecodeBig(in.Balance); err != nil {
				return fmt.Errorf("account %s balance: %w", addrHex, err)
			}
		}
		if in.Code != "" {
			if acc.code, err = hexutil.Decode(in.Code); err != nil {
				return fmt.Errorf("account %s code: %w", addrHex, err)
			}
		}
		for slotHex, valueHex := range in.Storage {
			slot, err := decodeWord(slotHex)
			if err != nil {
				return fmt.Errorf("account %s storage key %s: %w", addrHex, slotHex, err)
			}
			value, err := decodeWord(valueHex)
			if err != nil {
				return fmt.Errorf("account %s storage value at %s: %w", addrHex, slotHex, err)
			}
			acc.storage[slot] = value
		}
		loaded[addr] = acc
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	for addr, acc := range loaded {
		a.accounts[addr] = acc
	}
	return nil
}

// LoadJSON adds the accounts of a JSON dump to the image.
func (a *Allocation) LoadJSON(data []byte) error {
	var dump StateDump
	if err := json.Unmarshal(data, &dump); err != nil {
		return err
	}
	return a.Load(&dump)
}

// decodeWord decodes a 0x-prefixed storage word of at most 32 bytes,
// left-padding shorter input.
func decodeWord(s string) (common.Hash, error) {
	b, err := hexutil.Decode(s)
	if err != nil {
		return common.Hash{}, err
	}
	if len(b) > common.HashLength {
		return common.Hash{}, fmt.Errorf("%d bytes exceed a storage word", len(b))
	}
	return common.BytesToHash(b), nil
}
