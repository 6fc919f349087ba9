package subgraph

import (
	"fmt"

	"github.com/dustsweep/dustnode/internal/pkg/model"
)

// Endpoint locates one DEX subgraph behind the gateway. SubgraphURL is the
// path appended to the gateway base.
type Endpoint struct {
	Name        string `mapstructure:"name"`
	SubgraphURL string `mapstructure:"subgraphUrl"`
}

// defaultEndpoints covers the mainnet deployment out of the box; other
// chains come from the config file via Client.Configure.
var defaultEndpoints = map[string]map[uint64]Endpoint{
	"uniswapv3": {
		1: {
			Name:        "Uniswap V3",
			SubgraphURL: "subgraphs/id/5zvR82QoaXYFyDEKLZ9t6v9adgnptxYpKpSbxtgVENFV",
		},
	},
}

func (c *Client) lookupEndpoint(appName string, chainID uint64) (Endpoint, error) {
	if chains, ok := c.endpoints[appName]; ok {
		if ep, ok := chains[chainID]; ok {
			return ep, nil
		}
	}
	return Endpoint{}, fmt.Errorf("no subgraph endpoint for app %s on chain %d", appName, chainID)
}

// Configure merges per-app endpoint overrides on top of the defaults.
func (c *Client) Configure(appName string, chainID uint64, ep Endpoint) {
	if _, ok := c.endpoints[appName]; !ok {
		c.endpoints[appName] = make(map[uint64]Endpoint)
	}
	c.endpoints[appName][chainID] = ep
}

func copyDefaultEndpoints() map[string]map[uint64]Endpoint {
	out := make(map[string]map[uint64]Endpoint, len(defaultEndpoints))
	for app, chains := range defaultEndpoints {
		out[app] = make(map[uint64]Endpoint, len(chains))
		for id, ep := range chains {
			out[app][id] = ep
		}
	}
	return out
}

// ChunkPairs splits pairs into bounded chunks so a single query stays within
// payload limits.
func ChunkPairs(pairs []model.TokenPair, size int) [][]model.TokenPair {
	if size <= 0 {
		size = ChunkSize
	}
	var chunks [][]model.TokenPair
	for start := 0; start < len(pairs); start += size {
		end := start + size
		if end > len(pairs) {
			end = len(pairs)
		}
		chunks = append(chunks, pairs[start:end])
	}
	return chunks
}
