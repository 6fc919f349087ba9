package subgraph

import (
	"context"
	"encoding/json"

	"github.com/hermeznetwork/tracerr"

	"github.com/dustsweep/dustnode/internal/pkg/model"
)

// Pool is one liquidity pool row as returned by the subgraph.
type Pool struct {
	ID     string `json:"id"`
	Token0 struct {
		ID string `json:"id"`
	} `json:"token0"`
	Token1 struct {
		ID string `json:"id"`
	} `json:"token1"`
}

// QueryPools looks up the pools matching the given canonicalized pairs on
// one app/chain. Callers chunk the pair list with ChunkPairs before calling.
func (c *Client) QueryPools(ctx context.Context, chainID uint64, appName string, pairs []model.TokenPair) ([]Pool, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	ep, err := c.lookupEndpoint(appName, chainID)
	if err != nil {
		return nil, tracerr.Wrap(err)
	}
	builder, err := builderFor(appName)
	if err != nil {
		return nil, tracerr.Wrap(err)
	}

	query, variables := builder.BuildPoolsQuery(pairs)
	data, err := c.Query(ctx, chainID, ep.SubgraphURL, query, variables)
	if err != nil {
		return nil, err
	}

	var out struct {
		Pools []Pool `json:"pools"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, tracerr.Wrap(err)
	}
	return out.Pools, nil
}
