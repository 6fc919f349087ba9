package quote

import (
	"regexp"
	"strings"

	"github.com/dustsweep/dustnode/internal/pkg/model"
)

// The aggregator reports unsellable tokens inside an unstructured detail
// string as a bracketed, comma-separated address list, e.g.
// "Tokens [0xAAA..., 0xBBB...] are unsellable".
var unsellableListPattern = regexp.MustCompile(`\[(0x[0-9a-fA-F]{40}(?:\s*,\s*0x[0-9a-fA-F]{40})*)\]`)

// UnsellableParse is the typed result of scanning an aggregator error
// detail. Matched is false when no bracketed address list was found.
type UnsellableParse struct {
	Matched   bool
	Addresses []string
}

// ParseUnsellable recovers the unsellable token addresses from an error
// detail string. Addresses come back normalized.
func ParseUnsellable(detail string) UnsellableParse {
	m := unsellableListPattern.FindStringSubmatch(detail)
	if m == nil {
		return UnsellableParse{}
	}

	parts := strings.Split(m[1], ",")
	addrs := make([]string, 0, len(parts))
	for _, p := range parts {
		addrs = append(addrs, model.NormalizeAddr(strings.TrimSpace(p)))
	}
	return UnsellableParse{Matched: true, Addresses: addrs}
}
