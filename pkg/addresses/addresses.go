// Package addresses holds the table of well-known predeployed contract
// addresses on an IMA schain.
package addresses

import (
	"sort"

	"github.com/ethereum/go-ethereum/common"
)

// Recognized table keys.
const (
	ProxyAdmin         = "proxy_admin"
	MessageProxy       = "message_proxy"
	CommunityLocker    = "community_locker"
	TokenManagerLinker = "token_manager_linker"
)

// Table maps logical contract names to addresses.
type Table map[string]common.Address

// Default returns the predeploy addresses used on IMA schains.
func Default() Table {
	return Table{
		ProxyAdmin:         common.HexToAddress("0xd2aAa00000000000000000000000000000000000"),
		MessageProxy:       common.HexToAddress("0xd2AAa00100000000000000000000000000000000"),
		CommunityLocker:    common.HexToAddress("0xD2aaa00300000000000000000000000000000000"),
		TokenManagerLinker: common.HexToAddress("0xD2aAA00800000000000000000000000000000000"),
	}
}

// Lookup returns the address registered under name.
func (t Table) Lookup(name string) (common.Address, bool) {
	addr, ok := t[name]
	return addr, ok
}

// Merge returns a new table with overrides applied on top of t.
func (t Table) Merge(overrides Table) Table {
	merged := make(Table, len(t)+len(overrides))
	for k, v := range t {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	return merged
}

// Names returns the registered names in sorted order.
func (t Table) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
