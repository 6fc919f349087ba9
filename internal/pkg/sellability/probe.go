package sellability

import (
	"context"
	"encoding/hex"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// The three methods a token must expose for an allowance/transferFrom based
// sale to go through.
var requiredMethods = []string{
	"allowance(address,address)",
	"approve(address,uint256)",
	"transferFrom(address,address,uint256)",
}

// argCounts maps each required method to its word-padded argument count,
// used to build harmless zero-value calldata.
var argCounts = map[string]int{
	"allowance(address,address)":            2,
	"approve(address,uint256)":              2,
	"transferFrom(address,address,uint256)": 3,
}

// CapabilityMap reports, per required method signature, whether the contract
// exposes it. Produced fresh per probed address.
type CapabilityMap map[string]bool

// All reports whether every required method probed true.
func (m CapabilityMap) All() bool {
	if len(m) == 0 {
		return false
	}
	for _, sig := range requiredMethods {
		if !m[sig] {
			return false
		}
	}
	return true
}

func selector(sig string) []byte {
	h := crypto.Keccak256([]byte(sig))
	return h[:4]
}

// zeroCalldata builds selector + n zero-padded words. Zero address / zero
// amount arguments keep the probe side-effect free.
func zeroCalldata(sig string) []byte {
	data := selector(sig)
	for i := 0; i < argCounts[sig]; i++ {
		data = append(data, make([]byte, 32)...)
	}
	return data
}

// ProbeMethods checks each required method against the contract at addr.
// The deployed bytecode is fetched once and scanned for the 4-byte selector
// as a hex substring; a hit marks the method true without any further
// network round-trip (false positives from coincidental 4-byte collisions
// are accepted). On a miss the probe falls back to eth_call and finally gas
// estimation; any failure there reduces to false, never an error.
func ProbeMethods(ctx context.Context, client ChainReader, addr common.Address) CapabilityMap {
	caps := make(CapabilityMap, len(requiredMethods))

	codeHex := ""
	if code, err := client.CodeAt(ctx, addr, nil); err == nil {
		codeHex = strings.ToLower(hex.EncodeToString(code))
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, sig := range requiredMethods {
		wg.Add(1)
		go func(sig string) {
			defer wg.Done()
			ok := probeMethod(ctx, client, addr, sig, codeHex)
			mu.Lock()
			caps[sig] = ok
			mu.Unlock()
		}(sig)
	}
	wg.Wait()

	return caps
}

func probeMethod(ctx context.Context, client ChainReader, addr common.Address, sig, codeHex string) bool {
	selHex := hex.EncodeToString(selector(sig))
	if codeHex != "" && strings.Contains(codeHex, selHex) {
		return true
	}

	msg := ethereum.CallMsg{To: &addr, Data: zeroCalldata(sig)}
	if _, err := client.CallContract(ctx, msg, nil); err == nil {
		return true
	}

	if _, err := client.EstimateGas(ctx, msg); err == nil {
		return true
	}

	return false
}
