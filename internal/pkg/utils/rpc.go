package utils

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/ethclient"
)

// GetEvmClient dials one of the configured RPCs, starting from a random
// index so load spreads across providers, and walking the list until one
// answers.
func GetEvmClient(ctx context.Context, rpcs []string) (*ethclient.Client, error) {
	rpcsLen := len(rpcs)
	if rpcsLen == 0 {
		return nil, fmt.Errorf("no rpcs configured")
	}
	indexRand, err := rand.Int(rand.Reader, big.NewInt(int64(rpcsLen)))
	if err != nil {
		return nil, err
	}
	index := int(indexRand.Int64())

	for i := 0; i < rpcsLen; i++ {
		rpc := rpcs[(index+i)%rpcsLen]
		client, err := ethclient.Dial(rpc)
		if err == nil {
			return client, nil
		}
		fmt.Printf("failed to connect %s, err: %v\n", rpc, err)
	}

	return nil, fmt.Errorf("failed to connect any rpcs")
}
