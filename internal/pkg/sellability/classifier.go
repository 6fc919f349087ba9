package sellability

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// Classification is the sellability verdict for one token contract. Sellable
// is true when either the proxy address itself or its resolved
// implementation exposes all required methods; some tokens implement the
// interface directly, others only through the implementation, and either is
// enough for a transferFrom based sale.
type Classification struct {
	Sellable        bool            `json:"sellable"`
	ProxyHasMethods bool            `json:"proxyHasMethods"`
	ImplHasMethods  bool            `json:"implHasMethods"`
	Implementation  *common.Address `json:"implementation,omitempty"`
}

// Classify probes tokenAddr and, if a proxy implementation resolves, the
// implementation as well. The implementation probe depends on the resolution
// result and runs after it.
func Classify(ctx context.Context, client ChainReader, tokenAddr common.Address) Classification {
	out := Classification{}
	out.ProxyHasMethods = ProbeMethods(ctx, client, tokenAddr).All()

	if impl, ok := ResolveImplementation(ctx, client, tokenAddr); ok {
		out.Implementation = &impl
		out.ImplHasMethods = ProbeMethods(ctx, client, impl).All()
	}

	out.Sellable = out.ProxyHasMethods || out.ImplHasMethods
	return out
}
