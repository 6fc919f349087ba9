package tokencheck

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dustsweep/dustnode/internal/pkg/model"
	"github.com/dustsweep/dustnode/internal/pkg/subgraph"
)

var (
	// ErrCheckInFlight is returned when a check is already running for this
	// checker; redundant calls are dropped, callers wait for the current one.
	ErrCheckInFlight = errors.New("tokencheck: check already in flight")
	// ErrDuplicateCheck is returned when the dedup guard matches the last
	// completed check; the persisted cache already holds the result.
	ErrDuplicateCheck = errors.New("tokencheck: duplicate of last completed check")
)

// CheckParams describes one token-check round.
type CheckParams struct {
	ChainID        uint64
	UserAddr       string
	AppName        string
	ToReceiveToken string
	Tokens         []model.Token
}

// Update is one incremental delivery of the partition. Pending stays true
// until every chunk has resolved.
type Update struct {
	TokensToSell []model.Token
	TokensToBurn []model.Token
	Pending      bool
}

// Checker partitions a wallet's tokens into sellable and burnable, spam
// first, then liquidity lookups in chunks, streaming partial results as each
// chunk resolves. At most one check runs per Checker.
type Checker struct {
	sg    *subgraph.Client
	cache model.ICache

	mu      sync.Mutex
	running bool
	lastKey string
}

func NewChecker(sg *subgraph.Client, cache model.ICache) *Checker {
	return &Checker{sg: sg, cache: cache}
}

// CachedResult returns the persisted partition for one chain and wallet, if
// a live entry exists.
func (c *Checker) CachedResult(ctx context.Context, chainID uint64, userAddr string) (model.SellabilityResult, bool) {
	var cached model.CachedSellability
	err := c.cache.Get(ctx, model.SellabilityCacheKey(chainID, userAddr), &cached)
	if err != nil {
		return model.SellabilityResult{}, false
	}
	return cached.Result, true
}

// CheckTokens runs the orchestration state machine described in the package
// docs: guard, dedup guard, persisted cache, spam pre-burn, chunked subgraph
// rounds with incremental callbacks, final persist. onUpdate is invoked once
// per resolved chunk plus a terminal call with Pending=false; calls are
// serialized, and every Update carries its own slice copies.
func (c *Checker) CheckTokens(ctx context.Context, p CheckParams, onUpdate func(Update)) error {
	if onUpdate == nil {
		onUpdate = func(Update) {}
	}

	if p.ToReceiveToken == "" || len(p.Tokens) == 0 {
		onUpdate(Update{Pending: false})
		return nil
	}

	dedupKey := fmt.Sprintf("%d:%s:%d", p.ChainID, model.NormalizeAddr(p.UserAddr), len(p.Tokens))

	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return ErrCheckInFlight
	}
	if c.lastKey == dedupKey {
		c.mu.Unlock()
		return ErrDuplicateCheck
	}
	c.running = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
	}()

	cacheKey := model.SellabilityCacheKey(p.ChainID, p.UserAddr)
	var cached model.CachedSellability
	err := c.cache.Get(ctx, cacheKey, &cached)
	if err == nil {
		sell, burn := partitionByResult(p.Tokens, cached.Result)
		c.setLastKey(dedupKey)
		onUpdate(Update{TokensToSell: sell, TokensToBurn: burn, Pending: false})
		return nil
	}
	if !model.IsNilErr(err) {
		fmt.Printf("failed to read sellability cache, err: %v\n", err)
	}

	receive := model.NormalizeAddr(p.ToReceiveToken)
	spam, clean := SplitSpam(p.Tokens)

	// The receive token itself is always sellable.
	result := model.SellabilityResult{Sellable: []string{receive}}
	var sell, burn []model.Token
	for _, t := range spam {
		burn = append(burn, t)
		result.Burnable = append(result.Burnable, model.NormalizeAddr(t.Address))
	}

	var toCheck []model.Token
	for _, t := range clean {
		if model.NormalizeAddr(t.Address) == receive {
			sell = append(sell, t)
			continue
		}
		toCheck = append(toCheck, t)
	}

	chunks := chunkTokens(toCheck, subgraph.ChunkSize)
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, chunk := range chunks {
		wg.Add(1)
		go func(chunk []model.Token) {
			defer wg.Done()
			chunkSell, chunkBurn := c.checkChunk(ctx, p, receive, chunk)

			mu.Lock()
			sell = append(sell, chunkSell...)
			burn = append(burn, chunkBurn...)
			for _, t := range chunkSell {
				result.Sellable = append(result.Sellable, model.NormalizeAddr(t.Address))
			}
			for _, t := range chunkBurn {
				result.Burnable = append(result.Burnable, model.NormalizeAddr(t.Address))
			}
			// onUpdate runs under the lock so deliveries are serialized;
			// callers never see overlapping callbacks.
			onUpdate(Update{
				TokensToSell: append([]model.Token{}, sell...),
				TokensToBurn: append([]model.Token{}, burn...),
				Pending:      true,
			})
			mu.Unlock()
		}(chunk)
	}
	wg.Wait()

	if err := c.cache.Set(ctx, cacheKey, model.CachedSellability{
		Result:    result,
		Timestamp: time.Now().UnixMilli(),
	}, model.SellabilityTTL); err != nil {
		// Persist failures only cost a re-check next session.
		fmt.Printf("failed to persist sellability cache, err: %v\n", err)
	}

	c.setLastKey(dedupKey)
	onUpdate(Update{
		TokensToSell: append([]model.Token{}, sell...),
		TokensToBurn: append([]model.Token{}, burn...),
		Pending:      false,
	})
	return nil
}

// checkChunk resolves one chunk against the subgraph. A chunk whose query
// fails after retries is conservatively burnable for this round.
func (c *Checker) checkChunk(ctx context.Context, p CheckParams, receive string, chunk []model.Token) (sell, burn []model.Token) {
	pairs := make([]model.TokenPair, 0, len(chunk))
	for _, t := range chunk {
		pairs = append(pairs, model.NewTokenPair(t.Address, receive))
	}

	pools, err := c.sg.QueryPools(ctx, p.ChainID, p.AppName, pairs)
	if err != nil {
		fmt.Printf("failed to query pools, chunk treated as burnable, err: %v\n", err)
		return nil, chunk
	}

	pooled := make(map[model.TokenPair]bool, len(pools))
	for _, pool := range pools {
		pooled[model.NewTokenPair(pool.Token0.ID, pool.Token1.ID)] = true
	}

	for _, t := range chunk {
		if pooled[model.NewTokenPair(t.Address, receive)] {
			sell = append(sell, t)
		} else {
			burn = append(burn, t)
		}
	}
	return sell, burn
}

func (c *Checker) setLastKey(key string) {
	c.mu.Lock()
	c.lastKey = key
	c.mu.Unlock()
}

func partitionByResult(tokens []model.Token, result model.SellabilityResult) (sell, burn []model.Token) {
	sellable := make(map[string]bool, len(result.Sellable))
	for _, addr := range result.Sellable {
		sellable[addr] = true
	}
	for _, t := range tokens {
		if sellable[model.NormalizeAddr(t.Address)] {
			sell = append(sell, t)
		} else {
			burn = append(burn, t)
		}
	}
	return sell, burn
}

func chunkTokens(tokens []model.Token, size int) [][]model.Token {
	var chunks [][]model.Token
	for start := 0; start < len(tokens); start += size {
		end := start + size
		if end > len(tokens) {
			end = len(tokens)
		}
		chunks = append(chunks, tokens[start:end])
	}
	return chunks
}
