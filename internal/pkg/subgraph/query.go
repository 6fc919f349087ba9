package subgraph

import (
	"fmt"

	"github.com/dustsweep/dustnode/internal/pkg/model"
)

// QueryBuilder produces the pools query for one DEX flavor. Builders are
// pluggable by app name.
type QueryBuilder interface {
	BuildPoolsQuery(pairs []model.TokenPair) (query string, variables map[string]interface{})
}

var queryBuilders = map[string]QueryBuilder{
	"uniswapv3": uniswapV3Builder{},
}

func builderFor(appName string) (QueryBuilder, error) {
	b, ok := queryBuilders[appName]
	if !ok {
		return nil, fmt.Errorf("no query builder for app %s", appName)
	}
	return b, nil
}

// uniswapV3Builder queries pools by an OR over canonicalized pairs. Pairs
// travel as variables so the coalescing key covers them.
type uniswapV3Builder struct{}

const uniswapV3PoolsQuery = `query pools($filters: [Pool_filter!]) {
  pools(where: { or: $filters }) {
    id
    token0 { id }
    token1 { id }
  }
}`

func (uniswapV3Builder) BuildPoolsQuery(pairs []model.TokenPair) (string, map[string]interface{}) {
	filters := make([]map[string]interface{}, 0, len(pairs))
	for _, p := range pairs {
		filters = append(filters, map[string]interface{}{
			"token0": p.Token0,
			"token1": p.Token1,
		})
	}
	return uniswapV3PoolsQuery, map[string]interface{}{"filters": filters}
}
