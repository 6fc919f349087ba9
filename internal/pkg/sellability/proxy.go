package sellability

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// There is no universal "get implementation" call, so we probe the known
// storage slot conventions in a fixed priority order.
var implementationSlots = []common.Hash{
	// EIP-1967 implementation slot
	common.HexToHash("0x360894a13ba1a3210667c828492db98dca3e2076cc3735a920a3ca505d382bbc"),
	// legacy ZeppelinOS slot, used by Circle's FiatTokenProxy
	common.HexToHash("0x7050c9e0f4ca769c69bd3a8ef740bc37934f8e2c036e5a723fd8ee048ed3f8c3"),
	// EIP-1822 UUPS "PROXIABLE" slot
	common.HexToHash("0xc5f16f0fcc639fa48a6947836d9850f504798523bf8c9a3a87d5876cf622bcf7"),
	// EIP-1967 beacon slot
	common.HexToHash("0xa3f0ad74e5423aebfd80d3ef4346578335a9a72aeaee59ff6cb3582b35133d50"),
}

// ResolveImplementation scans the known proxy slots of proxyAddr and returns
// the first candidate with deployed code. Read errors on a slot mean "slot
// not applicable" and never abort the scan.
func ResolveImplementation(ctx context.Context, client ChainReader, proxyAddr common.Address) (common.Address, bool) {
	for _, slot := range implementationSlots {
		word, err := client.StorageAt(ctx, proxyAddr, slot, nil)
		if err != nil || len(word) == 0 {
			continue
		}

		candidate := common.BytesToAddress(word)
		if candidate == (common.Address{}) {
			continue
		}

		code, err := client.CodeAt(ctx, candidate, nil)
		if err != nil || len(code) == 0 {
			continue
		}

		return candidate, true
	}

	return common.Address{}, false
}
