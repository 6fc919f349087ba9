package model

import (
	"fmt"
	"math/big"
	"strings"
)

// Token is an immutable balance snapshot for one ERC-20 contract, as
// delivered by the external balances source. Identity is the lowercased
// address.
type Token struct {
	Address          string   `json:"address"`
	Symbol           string   `json:"symbol"`
	Name             string   `json:"name"`
	Decimals         uint8    `json:"decimals"`
	RawBalance       *big.Int `json:"rawBalance"`
	FormattedBalance string   `json:"formattedBalance"`
	LogoURL          string   `json:"logoUrl,omitempty"`
	PriceUSD         float64  `json:"priceUsd"`
}

// SelectedToken is a Token plus the user's selection state for the current
// selection session.
type SelectedToken struct {
	Token
	IsSelected bool `json:"isSelected"`
}

// ApprovingToken is a projection over SelectedToken recomputed from the
// global selected/approved sets, never stored on its own.
type ApprovingToken struct {
	SelectedToken
	IsApproving bool `json:"isApproving"`
	IsApproved  bool `json:"isApproved"`
}

// NormalizeAddr lowercases an address for set/map membership. All address
// comparisons in the pipeline go through this.
func NormalizeAddr(addr string) string {
	return strings.ToLower(addr)
}

// TokenPair is the unit of subgraph liquidity lookup. Token0 < Token1
// lexicographically, always.
type TokenPair struct {
	Token0 string `json:"token0"`
	Token1 string `json:"token1"`
}

// NewTokenPair canonicalizes the pair by lexicographic sort of the
// lowercased addresses.
func NewTokenPair(a, b string) TokenPair {
	a = NormalizeAddr(a)
	b = NormalizeAddr(b)
	if a > b {
		a, b = b, a
	}
	return TokenPair{Token0: a, Token1: b}
}

// SellabilityResult partitions a token set by address into sellable and
// burnable. Addresses are normalized.
type SellabilityResult struct {
	Sellable []string `json:"sellable"`
	Burnable []string `json:"burnable"`
}

// CachedSellability is the persisted form of a SellabilityResult, stamped so
// readers can enforce the 24h expiry.
type CachedSellability struct {
	Result    SellabilityResult `json:"result"`
	Timestamp int64             `json:"timestamp"`
}

// SellabilityCacheKey builds the persisted-cache key for one chain and
// wallet.
func SellabilityCacheKey(chainID uint64, userAddr string) string {
	return fmt.Sprintf("token_sellability_%d_%s", chainID, NormalizeAddr(userAddr))
}
